package resolver

import (
	"context"

	"https-examples/internal/auth"
)

// Resolver records a freshly fetched profile in the account directory and
// returns the account ID it maps to. Login fails when it returns an error.
type Resolver interface {
	Resolve(ctx context.Context, profile *auth.Profile) (accountID string, err error)
}
