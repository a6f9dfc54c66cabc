package session

import (
	"net/http"
	"os"
	"testing"
	"time"
)

func TestBeginPersistsTokenWithOneDayLifetime(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewFileStore(t.TempDir())
	store.now = func() time.Time { return now }

	s, err := Open(store)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Authenticated() {
		t.Fatal("fresh session should be anonymous")
	}
	if err := s.Begin("abc123"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if got := s.Token(); got != "abc123" {
		t.Errorf("Token: got %q, want %q", got, "abc123")
	}

	c, err := store.Cookie(CookieName)
	if err != nil {
		t.Fatalf("Cookie: %v", err)
	}
	if c == nil {
		t.Fatal("token cookie not stored")
	}
	if c.Value != "abc123" || c.Path != "/" {
		t.Errorf("cookie: got value=%q path=%q", c.Value, c.Path)
	}
	if want := now.Add(86400 * time.Second); !c.Expires.Equal(want) {
		t.Errorf("Expires: got %v, want %v", c.Expires, want)
	}

	// A new page load sees the stored token.
	again, err := Open(store)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if again.Token() != "abc123" || again.Source() != SourceCookie {
		t.Errorf("reopen: got %q from %q", again.Token(), again.Source())
	}
}

func TestEndClearsToken(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	s, _ := Open(store)
	if err := s.Begin("abc123"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := s.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	if s.Authenticated() {
		t.Error("session still authenticated after End")
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Errorf("jar file should be gone, stat err = %v", err)
	}
	again, _ := Open(store)
	if again.Authenticated() {
		t.Error("reopened session should be anonymous")
	}
}

func TestStoredTokenExpires(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewFileStore(t.TempDir())
	store.now = func() time.Time { return now }

	s, _ := Open(store)
	if err := s.Begin("abc123"); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	store.now = func() time.Time { return now.Add(TTL - time.Second) }
	if s2, _ := Open(store); !s2.Authenticated() {
		t.Fatal("token dropped before its lifetime")
	}

	store.now = func() time.Time { return now.Add(TTL) }
	if s3, _ := Open(store); s3.Authenticated() {
		t.Fatal("token survived its lifetime")
	}
}

func TestBeginRejectsEmptyToken(t *testing.T) {
	s, _ := Open(NewMemoryStore())
	for _, tok := range []string{"", "   ", "\t\n"} {
		if err := s.Begin(tok); err != ErrEmptyToken {
			t.Errorf("Begin(%q): got %v, want ErrEmptyToken", tok, err)
		}
	}
}

func TestBeginKeepsTokenVerbatim(t *testing.T) {
	store := NewMemoryStore()
	s, _ := Open(store)
	const tok = "Bearer abc "
	if err := s.Begin(tok); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if s.Token() != tok {
		t.Errorf("Token: got %q, want %q", s.Token(), tok)
	}
	if c, _ := store.Cookie(CookieName); c == nil || c.Value != tok {
		t.Errorf("stored cookie: got %+v, want value %q", c, tok)
	}
}

func TestEndWithOverrideKeepsStoredCookie(t *testing.T) {
	store := NewMemoryStore()
	_ = store.SetCookie(&http.Cookie{Name: CookieName, Value: "stored", MaxAge: 60})

	s, _ := Open(store, WithOverride("from-env"))
	if err := s.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	if s.Authenticated() || s.Source() != SourceNone {
		t.Errorf("held token after End: %q (%q)", s.Token(), s.Source())
	}
	c, _ := store.Cookie(CookieName)
	if c == nil || c.Value != "stored" {
		t.Errorf("stored cookie: got %+v, want stored", c)
	}
}

func TestOverrideWins(t *testing.T) {
	store := NewMemoryStore()
	_ = store.SetCookie(&http.Cookie{Name: CookieName, Value: "stored", MaxAge: 60})

	s, err := Open(store, WithOverride("Bearer from-env"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Token() != "from-env" {
		t.Errorf("Token: got %q, want from-env", s.Token())
	}
	if s.Source() != SourceEnv {
		t.Errorf("Source: got %q, want env", s.Source())
	}

	blank, _ := Open(store, WithOverride("  "))
	if blank.Token() != "stored" {
		t.Errorf("blank override: got %q, want stored", blank.Token())
	}
}

func TestMemoryStoreMaxAgeRules(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryStore()
	m.now = func() time.Time { return now }

	tests := []struct {
		name   string
		cookie *http.Cookie
		want   bool
	}{
		{"positive max-age", &http.Cookie{Name: "a", Value: "1", MaxAge: 10}, true},
		{"no max-age", &http.Cookie{Name: "b", Value: "1"}, true},
		{"expire now", &http.Cookie{Name: "c", Value: "1", MaxAge: -1}, false},
		{"past expires", &http.Cookie{Name: "d", Value: "1", Expires: now.Add(-time.Minute)}, false},
		{"future expires", &http.Cookie{Name: "e", Value: "1", Expires: now.Add(time.Minute)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := m.SetCookie(tt.cookie); err != nil {
				t.Fatalf("SetCookie: %v", err)
			}
			c, _ := m.Cookie(tt.cookie.Name)
			if got := c != nil; got != tt.want {
				t.Errorf("present: got %v, want %v", got, tt.want)
			}
		})
	}

	if err := m.SetCookie(&http.Cookie{}); err == nil {
		t.Error("SetCookie without name should fail")
	}
}

func TestFileStoreCorruptJar(t *testing.T) {
	store := NewFileStore(t.TempDir())
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(store); err == nil {
		t.Fatal("expected parse error")
	}
}
