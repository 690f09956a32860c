package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var (
	primaryKey   = []byte("primary-signing-key-0123456789ab")
	secondaryKey = []byte("secondary-signing-key-0123456789")
)

func newTestCookieStore(t *testing.T, keys ...[]byte) *CookieStore {
	t.Helper()
	s, err := NewCookieStore(keys, DefaultCookieOptions)
	if err != nil {
		t.Fatalf("NewCookieStore() error = %v", err)
	}
	return s
}

func TestNewCookieStore_RequiresKeys(t *testing.T) {
	if _, err := NewCookieStore(nil, DefaultCookieOptions); err == nil {
		t.Error("expected error without keys")
	}
	if _, err := NewCookieStore([][]byte{{}}, DefaultCookieOptions); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestCookieStore_RoundTrip(t *testing.T) {
	s := newTestCookieStore(t, primaryKey, secondaryKey)

	rec := httptest.NewRecorder()
	if err := s.Save(rec, httptest.NewRequest(http.MethodGet, "/", nil), testProfile()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	c := findCookie(rec, DefaultCookieName)
	if c == nil {
		t.Fatal("expected session cookie")
	}
	if c.MaxAge != int(DefaultMaxAge.Seconds()) {
		t.Errorf("cookie MaxAge = %d, want %d", c.MaxAge, int(DefaultMaxAge.Seconds()))
	}
	if !c.HttpOnly || !c.Secure {
		t.Errorf("cookie should be HttpOnly and Secure: %+v", c)
	}

	p, err := s.Load(requestWithCookies(rec))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p == nil || p.ID != "123" || p.DisplayName != "Jane" || p.PrimaryEmail().Value != "jane@x.com" {
		t.Fatalf("Load() = %+v", p)
	}
}

func TestCookieStore_NoCookie(t *testing.T) {
	s := newTestCookieStore(t, primaryKey)
	p, err := s.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil || p != nil {
		t.Fatalf("Load() = %v, %v; want nil, nil", p, err)
	}
}

func TestCookieStore_TamperedCookie(t *testing.T) {
	s := newTestCookieStore(t, primaryKey)

	rec := httptest.NewRecorder()
	if err := s.Save(rec, httptest.NewRequest(http.MethodGet, "/", nil), testProfile()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	c := findCookie(rec, DefaultCookieName)

	tests := map[string]string{
		"flipped last char": flipLast(c.Value),
		"truncated":         c.Value[:len(c.Value)/2],
		"garbage":           "not-a-session",
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: value})
			p, err := s.Load(req)
			if err != nil || p != nil {
				t.Fatalf("Load() = %v, %v; want nil, nil", p, err)
			}
		})
	}
}

func TestCookieStore_UnknownKey(t *testing.T) {
	signer := newTestCookieStore(t, []byte("some-other-key-entirely-unknown!"))
	rec := httptest.NewRecorder()
	_ = signer.Save(rec, httptest.NewRequest(http.MethodGet, "/", nil), testProfile())

	verifier := newTestCookieStore(t, primaryKey, secondaryKey)
	if p, _ := verifier.Load(requestWithCookies(rec)); p != nil {
		t.Fatalf("cookie signed with an unknown key was accepted: %+v", p)
	}
}

func TestCookieStore_KeyRotation(t *testing.T) {
	// A cookie issued before rotation, when secondaryKey was primary.
	old := newTestCookieStore(t, secondaryKey)
	rec := httptest.NewRecorder()
	_ = old.Save(rec, httptest.NewRequest(http.MethodGet, "/", nil), testProfile())

	rotated := newTestCookieStore(t, primaryKey, secondaryKey)
	p, err := rotated.Load(requestWithCookies(rec))
	if err != nil || p == nil || p.ID != "123" {
		t.Fatalf("rotated store Load() = %+v, %v", p, err)
	}

	// New cookies are signed with the primary key only.
	rec = httptest.NewRecorder()
	_ = rotated.Save(rec, httptest.NewRequest(http.MethodGet, "/", nil), testProfile())
	if p, _ := old.Load(requestWithCookies(rec)); p != nil {
		t.Error("cookie signed after rotation should not verify with the secondary key alone")
	}
	primaryOnly := newTestCookieStore(t, primaryKey)
	if p, _ := primaryOnly.Load(requestWithCookies(rec)); p == nil {
		t.Error("cookie signed after rotation should verify with the primary key")
	}
}

func TestCookieStore_Expired(t *testing.T) {
	s := newTestCookieStore(t, primaryKey)
	issued := time.Now()
	s.now = func() time.Time { return issued }

	rec := httptest.NewRecorder()
	_ = s.Save(rec, httptest.NewRequest(http.MethodGet, "/", nil), testProfile())

	s.now = func() time.Time { return issued.Add(DefaultMaxAge + time.Second) }
	if p, _ := s.Load(requestWithCookies(rec)); p != nil {
		t.Fatalf("expired cookie accepted: %+v", p)
	}
}

func TestCookieStore_Clear(t *testing.T) {
	s := newTestCookieStore(t, primaryKey)
	rec := httptest.NewRecorder()
	if err := s.Clear(rec, httptest.NewRequest(http.MethodGet, "/", nil)); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	c := findCookie(rec, DefaultCookieName)
	if c == nil || c.MaxAge >= 0 || c.Value != "" {
		t.Fatalf("expected expiring cookie, got %+v", c)
	}
}

func flipLast(s string) string {
	last := s[len(s)-1]
	repl := "A"
	if last == 'A' {
		repl = "B"
	}
	return strings.TrimSuffix(s, string(last)) + repl
}
