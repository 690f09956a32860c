package keycloak

import (
	"context"
	"errors"

	"https-examples/internal/auth/provider"
)

const providerName = "keycloak"

// New initializes a Keycloak OIDC provider using discovery.
// issuer must be the realm issuer URL, e.g.
// http://localhost:8081/realms/examples
//
// Keycloak clients used here are public, so no secret is sent.
// publicBaseURL is optional and rewrites the browser-facing authorization
// endpoint when Keycloak runs behind a different hostname.
func New(ctx context.Context, issuer, clientID, publicBaseURL string) (*provider.OIDC, error) {
	if issuer == "" || clientID == "" {
		return nil, errors.New("keycloak oauth config missing required fields")
	}

	return provider.NewOIDC(ctx, provider.OIDCConfig{
		Name:          providerName,
		Issuer:        issuer,
		ClientID:      clientID,
		PublicBaseURL: publicBaseURL,
	})
}
