package session

import (
	"net/http"
	"time"

	"https-examples/internal/auth"
)

const (
	// DefaultCookieName matches the cookie name used by the session example.
	DefaultCookieName = "session"
	// DefaultMaxAge is how long a login lasts.
	DefaultMaxAge = 24 * time.Hour
)

// Store resolves the identity attached to a request.
//
// Load returns (nil, nil) when the request carries no usable identity:
// a missing, tampered, expired or malformed session is not an error for
// the caller, it is simply a logged-out request.
type Store interface {
	Load(r *http.Request) (*auth.Profile, error)
	Save(w http.ResponseWriter, r *http.Request, p *auth.Profile) error
	Clear(w http.ResponseWriter, r *http.Request) error
}
