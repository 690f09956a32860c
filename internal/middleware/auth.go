package middleware

import (
	"context"
	"net/http"

	"https-examples/internal/auth"
	"https-examples/internal/logger"
	"https-examples/internal/session"
)

// unexported, collision-proof context key
type profileContextKeyType struct{}

var profileKey = profileContextKeyType{}

// ProfileFromContext extracts the authenticated profile from context.
func ProfileFromContext(ctx context.Context) (*auth.Profile, bool) {
	p, ok := ctx.Value(profileKey).(*auth.Profile)
	return p, ok && p != nil
}

// WithProfile returns a context carrying p.
func WithProfile(ctx context.Context, p *auth.Profile) context.Context {
	return context.WithValue(ctx, profileKey, p)
}

// DenyRedirect is where unauthenticated requests to gated routes are sent.
const DenyRedirect = "/"

type AuthMiddleware struct {
	Store session.Store

	// Denied is called for every request the guard rejects. Optional.
	Denied func(r *http.Request)
}

func NewAuthMiddleware(store session.Store, denied func(r *http.Request)) *AuthMiddleware {
	return &AuthMiddleware{Store: store, Denied: denied}
}

// ResolveSession loads the request's identity once and attaches it to the
// context. Requests without an identity pass through unchanged.
func (a *AuthMiddleware) ResolveSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := a.load(r); p != nil {
			r = r.WithContext(WithProfile(r.Context(), p))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth lets the request through only when a profile is resolvable;
// otherwise it redirects to DenyRedirect.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Identity already resolved by an earlier stage?
		p, ok := ProfileFromContext(r.Context())

		// 2. Otherwise resolve it now
		if !ok {
			p = a.load(r)
		}

		// 3. Deny
		if p == nil {
			if a.Denied != nil {
				a.Denied(r)
			}
			http.Redirect(w, r, DenyRedirect, http.StatusFound)
			return
		}

		// 4. Attach profile and continue
		next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), p)))
	})
}

func (a *AuthMiddleware) load(r *http.Request) *auth.Profile {
	p, err := a.Store.Load(r)
	if err != nil {
		logger.Error("session load failed", map[string]any{
			"path":  r.URL.Path,
			"error": err.Error(),
		})
		return nil
	}
	return p
}
