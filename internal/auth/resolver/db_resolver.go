package resolver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"https-examples/internal/auth"
	"https-examples/internal/db"

	"github.com/google/uuid"
)

// DBResolver resolves profiles using the accounts tables.
type DBResolver struct {
	db *db.DB
}

func NewDBResolver(db *db.DB) *DBResolver {
	return &DBResolver{db: db}
}

func (r *DBResolver) Resolve(
	ctx context.Context,
	profile *auth.Profile,
) (string, error) {
	if err := profile.Validate(); err != nil {
		return "", err
	}

	provider := profile.Provider
	email := profile.PrimaryEmail()

	// 1. Known identity (provider + provider_user_id)
	var userID uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		UPDATE identities
		SET last_login_at = NOW()
		WHERE provider = $1
		  AND provider_user_id = $2
		RETURNING user_id
	`,
		provider,
		profile.ID,
	).Scan(&userID)

	if err == nil {
		return userID.String(), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("resolver: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// 2. Existing account with the same verified email, new provider
	if email.Value != "" && email.Verified {
		userID, err = accountByEmail(ctx, tx, email.Value)
		if err == nil {
			return commitLink(ctx, tx, userID, provider, profile.ID)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
	}

	// 3. New account. An address already held by another account is not
	// claimed: unverified, or lost to a concurrent login, it is dropped.
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (email, email_verified, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT ((LOWER(email))) DO NOTHING
		RETURNING id
	`,
		sql.NullString{String: email.Value, Valid: email.Value != ""},
		email.Verified,
		profile.DisplayName,
	).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO users (email, email_verified, display_name)
			VALUES (NULL, false, $1)
			RETURNING id
		`,
			profile.DisplayName,
		).Scan(&userID)
	}
	if err != nil {
		return "", fmt.Errorf("resolver: create account: %w", err)
	}

	// 4. Identity mapping
	return commitLink(ctx, tx, userID, provider, profile.ID)
}

func accountByEmail(ctx context.Context, tx *sql.Tx, email string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := tx.QueryRowContext(ctx, `
		SELECT id
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`,
		email,
	).Scan(&userID)
	return userID, err
}

// commitLink maps the identity to userID and commits tx.
func commitLink(ctx context.Context, tx *sql.Tx, userID uuid.UUID, provider, providerUserID string) (string, error) {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO identities (user_id, provider, provider_user_id)
		VALUES ($1, $2, $3)
	`,
		userID,
		provider,
		providerUserID,
	)
	if err != nil {
		return "", fmt.Errorf("resolver: link identity: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("resolver: commit: %w", err)
	}
	return userID.String(), nil
}
