// Package session owns the bearer token lifecycle: it is read once when the
// session is opened, written at login and expired at logout.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	// CookieName is the key the token is stored under.
	CookieName = "token"
	// TTL is the lifetime given to a token at login.
	TTL = 24 * time.Hour
)

// Source tells where the held token came from.
type Source string

const (
	SourceNone   Source = ""
	SourceEnv    Source = "env"
	SourceCookie Source = "cookie"
)

// ErrEmptyToken is returned by Begin when the backend handed back nothing usable.
var ErrEmptyToken = errors.New("empty token")

// Session holds at most one token. It is safe for concurrent use.
type Session struct {
	store Store

	mu      sync.RWMutex
	token   string
	source  Source
	expires time.Time
}

// Option tunes Open.
type Option func(*Session)

// WithOverride makes the session use token instead of the stored cookie.
// An empty token is ignored.
func WithOverride(token string) Option {
	return func(s *Session) {
		token = stripBearer(token)
		if token == "" {
			return
		}
		s.token = token
		s.source = SourceEnv
	}
}

// Open reads the token from store once. Later store changes made by other
// processes are not observed.
func Open(store Store, opts ...Option) (*Session, error) {
	s := &Session{store: store}
	for _, o := range opts {
		o(s)
	}
	if s.source == SourceEnv {
		return s, nil
	}
	c, err := store.Cookie(CookieName)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	if c != nil && c.Value != "" {
		s.token = c.Value
		s.source = SourceCookie
		s.expires = c.Expires
	}
	return s, nil
}

// Token returns the held token or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Source reports where the held token came from.
func (s *Session) Source() Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Expires returns the cookie expiry, zero when unknown.
func (s *Session) Expires() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expires
}

// Begin persists token, exactly as given, with a one-day lifetime and
// holds it.
func (s *Session) Begin(token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrEmptyToken
	}
	c := &http.Cookie{
		Name:   CookieName,
		Value:  token,
		Path:   "/",
		MaxAge: int(TTL / time.Second),
	}
	if err := s.store.SetCookie(c); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	s.mu.Lock()
	s.token = token
	s.source = SourceCookie
	s.expires = time.Now().Add(TTL)
	s.mu.Unlock()
	return nil
}

// End expires the stored token and forgets the held one. A token that came
// from an override is only forgotten; the stored cookie belongs to another
// session and is left alone.
func (s *Session) End() error {
	if s.Source() == SourceEnv {
		s.forget()
		return nil
	}
	// MaxAge < 0 is net/http's spelling of "Max-Age=0".
	c := &http.Cookie{Name: CookieName, Path: "/", MaxAge: -1}
	if err := s.store.SetCookie(c); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	s.forget()
	return nil
}

func (s *Session) forget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.source = SourceNone
	s.expires = time.Time{}
}

func stripBearer(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 6 && strings.EqualFold(s[:6], "bearer") && (len(s) == 6 || s[6] == ' ') {
		return strings.TrimSpace(s[6:])
	}
	return s
}
