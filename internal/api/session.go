package api

import (
	"context"
	"strconv"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tgienger/teamboard/internal/logger"
)

// SessionTokenKey is where the token is remembered between runs
const SessionTokenKey = "session_token"

// TokenStore persists the session token. store.KV satisfies it.
type TokenStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Session holds the bearer token sent with every request
type Session struct {
	mu    sync.RWMutex
	token string
	store TokenStore
}

// NewSession creates a session, restoring a persisted token when store is
// not nil.
func NewSession(ctx context.Context, store TokenStore) *Session {
	s := &Session{store: store}
	if store == nil {
		return s
	}
	token, ok, err := store.Get(ctx, SessionTokenKey)
	if err != nil {
		logger.Warn("restore session token: %v", err)
		return s
	}
	if ok {
		s.token = token
	}
	return s
}

// Token returns the current token, empty when logged out
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a token is present
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// SetToken stores a new token
func (s *Session) SetToken(ctx context.Context, token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if s.store == nil {
		return
	}
	if err := s.store.Set(ctx, SessionTokenKey, token); err != nil {
		logger.Warn("persist session token: %v", err)
	}
}

// Clear forgets the token
func (s *Session) Clear(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	if s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, SessionTokenKey); err != nil {
		logger.Warn("clear session token: %v", err)
	}
}

// CurrentUserID reads the user id from the token's claims. The signature is
// not checked here; the server does that on every request.
func (s *Session) CurrentUserID() (int64, bool) {
	token := s.Token()
	if token == "" {
		return 0, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		logger.Debug("parse session token: %v", err)
		return 0, false
	}

	for _, key := range []string{"userId", "user_id", "id", "sub"} {
		switch v := claims[key].(type) {
		case float64:
			return int64(v), true
		case string:
			if id, err := strconv.ParseInt(v, 10, 64); err == nil {
				return id, true
			}
		}
	}
	return 0, false
}
