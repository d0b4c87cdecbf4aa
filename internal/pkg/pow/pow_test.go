package pow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typerace/internal/pkg/errs"
)

func solve(t *testing.T, nonce string, difficulty int) string {
	t.Helper()
	for i := 0; i < 1_000_000; i++ {
		counter := strconv.Itoa(i)
		if Solves(nonce, counter, difficulty) {
			return counter
		}
	}
	t.Fatal("no solution found")
	return ""
}

func TestProofFlow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager(ctx, 2)
	ch := m.NewChallenge()
	assert.Equal(t, 2, ch.Difficulty)

	counter := solve(t, ch.Nonce, ch.Difficulty)
	token, cerr := m.ValidateProof(ch.Nonce, counter)
	require.Nil(t, cerr)
	require.NotEmpty(t, token)

	_, cerr = m.ValidateProof(ch.Nonce, counter)
	require.NotNil(t, cerr)
	assert.Equal(t, errs.ErrPowChallengeInvalid, cerr.Code)

	r := httptest.NewRequest(http.MethodPost, "/api/rooms", nil)
	r.Header.Set(TokenHeaderKey, token)
	assert.True(t, m.ConsumeProofToken(r))
	assert.False(t, m.ConsumeProofToken(r), "proof tokens are single use")
}

func TestValidateProofRejectsWrongCounter(t *testing.T) {
	m := NewManager(context.Background(), 4)
	ch := m.NewChallenge()

	counter := "0"
	for Solves(ch.Nonce, counter, 4) {
		counter += "0"
	}
	_, cerr := m.ValidateProof(ch.Nonce, counter)
	require.NotNil(t, cerr)
	assert.Equal(t, errs.ErrPowChallengeInvalid, cerr.Code)
}

func TestExpiredEntries(t *testing.T) {
	m := NewManager(context.Background(), 1)
	now := time.Now()
	m.now = func() time.Time { return now }

	ch := m.NewChallenge()
	counter := solve(t, ch.Nonce, 1)

	now = now.Add(NonceExpiryDuration + time.Second)
	_, cerr := m.ValidateProof(ch.Nonce, counter)
	require.NotNil(t, cerr)

	m.sweep()
	assert.Empty(t, m.nonceStore)
}

func TestRequireProof(t *testing.T) {
	m := NewManager(context.Background(), 1)
	h := m.RequireProof(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":3001`)

	ch := m.NewChallenge()
	token, cerr := m.ValidateProof(ch.Nonce, solve(t, ch.Nonce, 1))
	require.Nil(t, cerr)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/?pow_token="+token, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
