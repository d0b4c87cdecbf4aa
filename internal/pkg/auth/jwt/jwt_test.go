package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(&Payload{UserID: "u-1", Name: "Ada"}, secret, time.Hour)
	require.NoError(t, err)

	payload, err := ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "u-1", payload.UserID)
	assert.Equal(t, "Ada", payload.Name)
	assert.Equal(t, TokenIssuer, payload.Issuer)

	_, err = ParseToken(token, "other-secret")
	assert.Error(t, err)

	expired, err := GenerateToken(&Payload{UserID: "u-1"}, secret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, secret)
	assert.Error(t, err)

	anonymous, err := GenerateToken(&Payload{}, secret, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(anonymous, secret)
	assert.Error(t, err)
}

func TestIdentityMiddleware(t *testing.T) {
	token, err := GenerateToken(&Payload{UserID: "u-7"}, secret, time.Hour)
	require.NoError(t, err)

	var seen *Payload
	h := IdentityExtractorMiddleware(secret)(RequireIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetPayloadFromContext(r)
	})))

	tests := []struct {
		name     string
		build    func(r *http.Request)
		wantCode int
		wantUser string
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK, "u-7"},
		{"query token", func(r *http.Request) { r.URL.RawQuery = "token=" + token }, http.StatusOK, "u-7"},
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized, ""},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", "Token "+token) }, http.StatusUnauthorized, ""},
		{"bad signature", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token+"x") }, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			r := httptest.NewRequest(http.MethodGet, "/api/rooms/active", nil)
			tt.build(r)
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, r)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantUser != "" {
				require.NotNil(t, seen)
				assert.Equal(t, tt.wantUser, seen.UserID)
			}
		})
	}
}
