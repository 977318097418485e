// Package session holds the login state of one dashboard user: whether a
// bearer token is present in the client-persisted storage.
//
// A Session is constructed explicitly and handed to the code that needs it.
// It never writes the token on its own; login code persists the token through
// the TokenStore and then flips the session with SetAuthenticated.
package session

import (
	"errors"
	"sync"
)

// ErrNoStore is returned when a Session has no backing TokenStore.
var ErrNoStore = errors.New("session: no token store")

// TokenStore is the canonical location of the bearer token.
type TokenStore interface {
	Token() (string, error)
	SetToken(token string) error
	Clear() error
}

// Session reflects token presence. A stale but present token counts as
// authenticated until the backend rejects it.
type Session struct {
	mu            sync.Mutex
	store         TokenStore
	authenticated bool
	onLogout      func()
}

// New reads the persisted token once and derives the initial state. onLogout,
// when non-nil, is called after Logout cleared the token; it is the
// navigation back to the login view.
func New(store TokenStore, onLogout func()) *Session {
	s := &Session{store: store, onLogout: onLogout}
	if store != nil {
		if tok, err := store.Token(); err == nil && tok != "" {
			s.authenticated = true
		}
	}
	return s
}

// IsAuthenticated reports the current state.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// SetAuthenticated flips the state without touching the stored token.
func (s *Session) SetAuthenticated(v bool) {
	s.mu.Lock()
	s.authenticated = v
	s.mu.Unlock()
}

// Store returns the backing token store.
func (s *Session) Store() TokenStore {
	return s.store
}

// Logout clears the stored token, marks the session unauthenticated and
// triggers the logout navigation. The state is flipped even if clearing the
// store fails; the error is returned for logging.
func (s *Session) Logout() error {
	var err error
	if s.store == nil {
		err = ErrNoStore
	} else {
		err = s.store.Clear()
	}
	s.SetAuthenticated(false)
	if s.onLogout != nil {
		s.onLogout()
	}
	return err
}
