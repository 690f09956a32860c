package provider

import (
	"context"

	"https-examples/internal/auth"
)

// OAuthProvider defines the contract every external auth provider
// must implement. Implementations return identity facts only and
// must not perform session management.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "google", "keycloak").
	// It is also the path segment of the provider's login routes.
	Name() string

	// AuthCodeURL returns the OAuth authorization URL.
	// State, PKCE challenge and the absolute callback URL are provided by the caller.
	AuthCodeURL(state, codeChallenge, redirectURL string) string

	// ExchangeCode exchanges the authorization code for provider credentials
	// and returns the user's profile. redirectURL must match the one sent
	// with AuthCodeURL.
	ExchangeCode(
		ctx context.Context,
		code string,
		codeVerifier string,
		redirectURL string,
	) (*auth.Profile, error)
}
