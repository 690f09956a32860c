package session

import (
	"net/http"
	"time"

	"https-examples/internal/auth"
	"https-examples/internal/logger"
)

// CookieStore keeps the whole profile in a signed client cookie.
// There is no server-side state.
type CookieStore struct {
	cookie *signedCookie
	now    func() time.Time
}

type cookiePayload struct {
	Profile   *auth.Profile `json:"profile"`
	ExpiresAt int64         `json:"exp"`
}

// NewCookieStore creates a store signing with keys[0] and verifying with
// any key in keys.
func NewCookieStore(keys [][]byte, opts CookieOptions) (*CookieStore, error) {
	c, err := newSignedCookie(DefaultCookieName, keys, DefaultMaxAge, opts)
	if err != nil {
		return nil, err
	}
	return &CookieStore{cookie: c, now: time.Now}, nil
}

func (s *CookieStore) Load(r *http.Request) (*auth.Profile, error) {
	var payload cookiePayload
	if !s.cookie.read(r, &payload) {
		return nil, nil
	}

	if !s.now().Before(time.Unix(payload.ExpiresAt, 0)) {
		return nil, nil
	}

	if err := payload.Profile.Validate(); err != nil {
		logger.Warn("session cookie carried invalid profile", map[string]any{
			"error": err.Error(),
		})
		return nil, nil
	}

	return payload.Profile, nil
}

func (s *CookieStore) Save(w http.ResponseWriter, r *http.Request, p *auth.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.cookie.write(w, cookiePayload{
		Profile:   p,
		ExpiresAt: s.now().Add(s.cookie.maxAge).Unix(),
	})
}

func (s *CookieStore) Clear(w http.ResponseWriter, r *http.Request) error {
	s.cookie.clear(w)
	return nil
}
