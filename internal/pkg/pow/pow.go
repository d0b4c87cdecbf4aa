/*
Package pow implements the proof-of-work gate in front of room creation.

A client fetches a nonce, searches for a counter whose SHA-256 of nonce+counter starts
with the configured number of hex zeros, and trades the solution for a short-lived,
single-use proof token that room creation consumes.
*/
package pow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"typerace/internal/pkg/errs"
	"typerace/internal/pkg/resp"
)

const (
	// TokenHeaderKey is the HTTP header key used by the client to send the Proof Token.
	TokenHeaderKey = "X-PoW-Token"

	// ProofTokenDuration is the validity period for the Proof Token issued after successful PoW validation.
	ProofTokenDuration = 30 * time.Second

	// NonceExpiryDuration is the validity period for the challenge Nonce.
	NonceExpiryDuration = 5 * time.Minute
)

// Challenge is handed to the client to solve.
type Challenge struct {
	Nonce      string    `json:"nonce"`
	Difficulty int       `json:"difficulty"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Manager issues challenges and proof tokens. Safe for concurrent use.
type Manager struct {
	difficulty int
	now        func() time.Time

	mu         sync.Mutex
	nonceStore map[string]time.Time
	tokenStore map[string]time.Time
}

// NewManager returns a Manager requiring difficulty leading zeros. Expired
// entries are swept every minute until ctx is done.
func NewManager(ctx context.Context, difficulty int) *Manager {
	m := &Manager{
		difficulty: difficulty,
		now:        time.Now,
		nonceStore: make(map[string]time.Time),
		tokenStore: make(map[string]time.Time),
	}

	go m.cleanupExpiredEntries(ctx)

	return m
}

// NewChallenge stores and returns a fresh nonce.
func (m *Manager) NewChallenge() Challenge {
	m.mu.Lock()
	defer m.mu.Unlock()

	expires := m.now().Add(NonceExpiryDuration)
	nonce := uuid.NewString()
	m.nonceStore[nonce] = expires

	return Challenge{Nonce: nonce, Difficulty: m.difficulty, ExpiresAt: expires}
}

// Solves reports whether counter solves nonce at the given difficulty.
func Solves(nonce, counter string, difficulty int) bool {
	hash := sha256.Sum256([]byte(nonce + counter))
	return strings.HasPrefix(hex.EncodeToString(hash[:]), strings.Repeat("0", difficulty))
}

// ValidateProof consumes nonce and returns a proof token when counter solves it.
func (m *Manager) ValidateProof(nonce, counter string) (string, *errs.CustomError) {
	if nonce == "" || counter == "" {
		return "", errs.NewError(errs.ErrInvalidParams)
	}

	if !Solves(nonce, counter, m.difficulty) {
		return "", errs.NewError(errs.ErrPowChallengeInvalid)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.nonceStore[nonce]
	if !ok || m.now().After(expiry) {
		return "", errs.NewError(errs.ErrPowChallengeInvalid)
	}
	delete(m.nonceStore, nonce)

	token := uuid.NewString()
	m.tokenStore[token] = m.now().Add(ProofTokenDuration)
	return token, nil
}

// ConsumeProofToken redeems the request's proof token from the X-PoW-Token header
// or the pow_token query parameter. A token is good for one request.
func (m *Manager) ConsumeProofToken(r *http.Request) bool {
	token := r.Header.Get(TokenHeaderKey)
	if token == "" {
		token = r.URL.Query().Get("pow_token")
	}
	if token == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.tokenStore[token]
	if !ok {
		return false
	}
	delete(m.tokenStore, token)
	return !m.now().After(expiry)
}

// RequireProof rejects requests without a valid proof token.
func (m *Manager) RequireProof(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.ConsumeProofToken(r) {
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeRequired))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Manager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for nonce, expiry := range m.nonceStore {
		if now.After(expiry) {
			delete(m.nonceStore, nonce)
		}
	}
	for token, expiry := range m.tokenStore {
		if now.After(expiry) {
			delete(m.tokenStore, token)
		}
	}
}

func (m *Manager) cleanupExpiredEntries(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}
