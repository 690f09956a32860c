package google

import (
	"context"
	"errors"

	"https-examples/internal/auth/provider"

	"github.com/coreos/go-oidc/v3/oidc"
)

// ProviderName is the registry name, and so the route segment, of Google.
const ProviderName = "google"

const issuer = "https://accounts.google.com"

// New discovers Google's OIDC endpoints and returns a provider requesting
// the email and profile scopes.
func New(ctx context.Context, clientID, clientSecret string) (*provider.OIDC, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	return provider.NewOIDC(ctx, provider.OIDCConfig{
		Name:         ProviderName,
		Issuer:       issuer,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes: []string{
			oidc.ScopeOpenID,
			"email",
			"profile",
		},
	})
}
