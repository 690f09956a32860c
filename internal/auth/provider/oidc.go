package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"https-examples/internal/auth"
	"https-examples/internal/logger"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDCConfig describes an OpenID Connect provider found through discovery.
type OIDCConfig struct {
	Name         string
	Issuer       string
	ClientID     string
	ClientSecret string // empty for public clients
	Scopes       []string

	// PublicBaseURL replaces scheme and host of the discovered authorization
	// endpoint. Used when the issuer is reachable under a different address
	// from the browser than from this server.
	PublicBaseURL string

	HTTPClient *http.Client
}

// OIDC implements the authorization-code flow with PKCE against any
// OpenID Connect issuer and reads the profile from the userinfo endpoint.
type OIDC struct {
	name         string
	oauthConfig  *oauth2.Config
	oidcProvider *oidc.Provider
	httpClient   *http.Client
}

// NewOIDC runs discovery against cfg.Issuer. The call blocks on the network.
func NewOIDC(ctx context.Context, cfg OIDCConfig) (*OIDC, error) {
	if cfg.Name == "" || cfg.Issuer == "" || cfg.ClientID == "" {
		return nil, errors.New("oidc provider config missing required fields")
	}

	if cfg.HTTPClient != nil {
		ctx = oidc.ClientContext(ctx, cfg.HTTPClient)
	}

	oidcProvider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init %s oidc provider: %w", cfg.Name, err)
	}

	ep := oidcProvider.Endpoint()
	if cfg.PublicBaseURL != "" {
		authURL, err := rebase(ep.AuthURL, cfg.PublicBaseURL)
		if err != nil {
			return nil, fmt.Errorf("%s public base url: %w", cfg.Name, err)
		}
		ep.AuthURL = authURL
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "email", "profile"}
	}

	return &OIDC{
		name: cfg.Name,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     ep,
			Scopes:       scopes,
		},
		oidcProvider: oidcProvider,
		httpClient:   cfg.HTTPClient,
	}, nil
}

// Name returns the provider identifier used by the registry.
func (p *OIDC) Name() string {
	return p.name
}

// AuthCodeURL builds the OAuth authorization URL with PKCE parameters.
func (p *OIDC) AuthCodeURL(state, codeChallenge, redirectURL string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("redirect_uri", redirectURL),
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// ExchangeCode trades the code for a token and fetches the userinfo profile.
// It is not retried; the caller decides what a failure means.
func (p *OIDC) ExchangeCode(
	ctx context.Context,
	code string,
	codeVerifier string,
	redirectURL string,
) (*auth.Profile, error) {
	if p.httpClient != nil {
		ctx = oidc.ClientContext(ctx, p.httpClient)
	}

	token, err := p.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("redirect_uri", redirectURL),
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("%s token exchange failed: %w", p.name, err)
	}

	info, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(token))
	if err != nil {
		return nil, fmt.Errorf("%s userinfo request failed: %w", p.name, err)
	}

	var claims struct {
		Name              string `json:"name"`
		GivenName         string `json:"given_name"`
		FamilyName        string `json:"family_name"`
		Picture           string `json:"picture"`
		PreferredUsername string `json:"preferred_username"`
	}
	if err := info.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%s userinfo claims parse failed: %w", p.name, err)
	}

	profile := &auth.Profile{
		ID:          info.Subject,
		DisplayName: firstNonEmpty(claims.Name, claims.PreferredUsername, info.Email),
		Name: auth.Name{
			GivenName:  claims.GivenName,
			FamilyName: claims.FamilyName,
		},
		Provider: p.name,
	}
	if info.Email != "" {
		profile.Emails = []auth.Email{{Value: info.Email, Verified: info.EmailVerified}}
	}
	if claims.Picture != "" {
		profile.Photos = []auth.Photo{{URL: claims.Picture}}
	}

	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("%s returned unusable profile: %w", p.name, err)
	}

	logger.Info("oidc profile fetched", map[string]any{
		"provider":       p.name,
		"subject":        profile.ID,
		"email_present":  info.Email != "",
		"email_verified": info.EmailVerified,
	})

	return profile, nil
}

func rebase(rawURL, base string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if b.Scheme == "" || b.Host == "" {
		return "", fmt.Errorf("%q is not an absolute url", base)
	}
	u.Scheme = b.Scheme
	u.Host = b.Host
	return u.String(), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
