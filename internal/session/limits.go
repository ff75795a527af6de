package session

import (
	"errors"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
)

var (
	ErrBadToken     = errors.New("action token mismatch")
	ErrTokenExpired = errors.New("action token expired")
	ErrRateLimited  = errors.New("too many actions")
)

const (
	tokenTTL   = 35 * time.Second
	rateLimit  = 6
	rateWindow = 2 * time.Second
)

type issuedToken struct {
	value   string
	expires time.Time
}

// tokenStore issues single-use action tokens bound to a player. A token
// outlives its turn timer slightly so an action racing the timeout is
// still honored.
type tokenStore struct {
	clock  quartz.Clock
	tokens map[string]issuedToken
}

func newTokenStore(clock quartz.Clock) *tokenStore {
	return &tokenStore{clock: clock, tokens: make(map[string]issuedToken)}
}

// Issue mints a fresh token for a player, replacing any outstanding one
func (ts *tokenStore) Issue(playerID string) string {
	tok := issuedToken{
		value:   uuid.NewString(),
		expires: ts.clock.Now().Add(tokenTTL),
	}
	ts.tokens[playerID] = tok
	return tok.value
}

// Consume validates and spends a player's token
func (ts *tokenStore) Consume(playerID, token string) error {
	tok, ok := ts.tokens[playerID]
	if !ok || tok.value != token {
		return ErrBadToken
	}
	delete(ts.tokens, playerID)
	if ts.clock.Now().After(tok.expires) {
		return ErrTokenExpired
	}
	return nil
}

// Revoke discards a player's outstanding token
func (ts *tokenStore) Revoke(playerID string) {
	delete(ts.tokens, playerID)
}

// rateLimiter enforces a sliding-window cap on gameplay actions
type rateLimiter struct {
	clock quartz.Clock
	hits  map[string][]time.Time
}

func newRateLimiter(clock quartz.Clock) *rateLimiter {
	return &rateLimiter{clock: clock, hits: make(map[string][]time.Time)}
}

// Allow records an action attempt and reports whether it is within the
// window.
func (rl *rateLimiter) Allow(playerID string) bool {
	now := rl.clock.Now()
	cutoff := now.Add(-rateWindow)
	kept := rl.hits[playerID][:0]
	for _, t := range rl.hits[playerID] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= rateLimit {
		rl.hits[playerID] = kept
		return false
	}
	rl.hits[playerID] = append(kept, now)
	return true
}

// Forget drops a player's rate-limit history
func (rl *rateLimiter) Forget(playerID string) {
	delete(rl.hits, playerID)
}
