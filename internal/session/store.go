package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const jarFileName = "cookies.json"

// Store is a cookie-like key/value store. SetCookie follows the browser
// rules for Max-Age: positive sets an expiry, negative expires immediately
// (serialized as "Max-Age=0"), zero keeps the cookie without an expiry.
type Store interface {
	Cookie(name string) (*http.Cookie, error) // nil, nil when absent or expired
	SetCookie(c *http.Cookie) error
}

type storedCookie struct {
	Name    string     `json:"name"`
	Value   string     `json:"value"`
	Path    string     `json:"path"`
	Expires *time.Time `json:"expires,omitempty"`
}

func (s storedCookie) expired(now time.Time) bool {
	return s.Expires != nil && !now.Before(*s.Expires)
}

func (s storedCookie) httpCookie() *http.Cookie {
	c := &http.Cookie{Name: s.Name, Value: s.Value, Path: s.Path}
	if s.Expires != nil {
		c.Expires = *s.Expires
	}
	return c
}

// FileStore keeps cookies in a single JSON file, owner-only permissions.
type FileStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewFileStore returns a store backed by dir/cookies.json. The directory is
// created lazily on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, jarFileName), now: time.Now}
}

// Path returns the jar file location.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Cookie(name string) (*http.Cookie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	jar, err := f.load()
	if err != nil {
		return nil, err
	}
	sc, found := jar[name]
	if !found {
		return nil, nil
	}
	if sc.expired(f.now()) {
		delete(jar, name)
		if err := f.save(jar); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return sc.httpCookie(), nil
}

func (f *FileStore) SetCookie(c *http.Cookie) error {
	if c == nil || c.Name == "" {
		return errors.New("set cookie: missing name")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	jar, err := f.load()
	if err != nil {
		return err
	}
	sc, keep := toStored(c, f.now())
	if keep {
		jar[c.Name] = sc
	} else {
		delete(jar, c.Name)
	}
	return f.save(jar)
}

func toStored(c *http.Cookie, now time.Time) (storedCookie, bool) {
	sc := storedCookie{Name: c.Name, Value: c.Value, Path: c.Path}
	switch {
	case c.MaxAge < 0:
		return sc, false
	case c.MaxAge > 0:
		exp := now.Add(time.Duration(c.MaxAge) * time.Second)
		sc.Expires = &exp
	case !c.Expires.IsZero():
		if !now.Before(c.Expires) {
			return sc, false
		}
		exp := c.Expires
		sc.Expires = &exp
	}
	return sc, true
}

func (f *FileStore) load() (map[string]storedCookie, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]storedCookie{}, nil
		}
		return nil, fmt.Errorf("read cookies: %w", err)
	}
	var list []storedCookie
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("parse cookies: %w", err)
	}
	jar := make(map[string]storedCookie, len(list))
	for _, sc := range list {
		jar[sc.Name] = sc
	}
	return jar, nil
}

func (f *FileStore) save(jar map[string]storedCookie) error {
	if len(jar) == 0 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove cookies: %w", err)
		}
		return nil
	}
	// ensure the state dir exists with 0700
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	list := make([]storedCookie, 0, len(jar))
	for _, sc := range jar {
		list = append(list, sc)
	}
	b, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cookies: %w", err)
	}
	if err := os.WriteFile(f.path, b, 0o600); err != nil {
		return fmt.Errorf("write cookies: %w", err)
	}
	return nil
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu  sync.Mutex
	jar map[string]storedCookie
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jar: map[string]storedCookie{}, now: time.Now}
}

func (m *MemoryStore) Cookie(name string) (*http.Cookie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, found := m.jar[name]
	if !found {
		return nil, nil
	}
	if sc.expired(m.now()) {
		delete(m.jar, name)
		return nil, nil
	}
	return sc.httpCookie(), nil
}

func (m *MemoryStore) SetCookie(c *http.Cookie) error {
	if c == nil || c.Name == "" {
		return errors.New("set cookie: missing name")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, keep := toStored(c, m.now())
	if keep {
		m.jar[c.Name] = sc
	} else {
		delete(m.jar, c.Name)
	}
	return nil
}
