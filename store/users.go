// server/store/users.go
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lumina-notes/lumina-server/domain"
)

// EnsureUser makes sure a user row exists for the given identity. It never
// overwrites an existing row; a fresh row gets the placeholder email until
// the identity webhook delivers the real one.
func (s *Store) EnsureUser(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING`,
		userID, domain.PlaceholderEmail)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// UpsertUser creates or updates a user row from an identity webhook event.
func (s *Store) UpsertUser(ctx context.Context, userID, email string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email, updated_at = now()`,
		userID, email)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// CreateLocalUser registers a password-bearing user for the local sign-up
// flow that stands in for the external identity provider.
func (s *Store) CreateLocalUser(ctx context.Context, userID, email, passwordHash string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash)
		VALUES ($1, $2, $3)`,
		userID, email, passwordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("create local user: %w", err)
	}
	return nil
}

// LocalUserByEmail looks up a locally registered user for sign-in.
func (s *Store) LocalUserByEmail(ctx context.Context, email string) (domain.User, string, error) {
	var user domain.User
	var hash string
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1 AND password_hash IS NOT NULL`,
		email).Scan(&user.ID, &user.Email, &hash, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, "", domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, "", fmt.Errorf("local user by email: %w", err)
	}
	return user, hash, nil
}
