package jwt

import (
	"context"
	"net/http"
	"strings"

	"typerace/internal/pkg/errs"
	"typerace/internal/pkg/logx"
	"typerace/internal/pkg/resp"
)

type contextKey string

// ContextAuthPayloadKey stores the parsed *Payload in the request context.
const ContextAuthPayloadKey contextKey = "auth_payload"

// tokenFromRequest reads "Authorization: Bearer <token>" and falls back to the
// token query parameter, which is the only option for browser WebSocket upgrades.
func tokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// IdentityExtractorMiddleware injects the token's Payload into the context when
// a valid token is present. Requests without one pass through as anonymous.
func IdentityExtractorMiddleware(secretKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := tokenFromRequest(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			payload, err := ParseToken(tokenString, secretKey)
			if err != nil {
				logx.Warn("Invalid or expired JWT provided, treating as anonymous", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextAuthPayloadKey, payload)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity rejects anonymous requests with ErrNotAuthenticated.
// It must run after IdentityExtractorMiddleware.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetPayloadFromContext(r) == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrNotAuthenticated))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetPayloadFromContext returns the authenticated Payload, or nil for anonymous requests.
func GetPayloadFromContext(r *http.Request) *Payload {
	payload, ok := r.Context().Value(ContextAuthPayloadKey).(*Payload)
	if !ok {
		return nil
	}
	return payload
}
