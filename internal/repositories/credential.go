package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/cinefav/internal/shared"
)

// CredentialRepository stores credentials in the SQLite credentials table.
type CredentialRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewCredentialRepository creates a new [CredentialRepository] with the given database connection
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db, now: time.Now}
}

// Put inserts or replaces the value stored under key.
func (r *CredentialRepository) Put(ctx context.Context, key, value string, expiresAt *time.Time) error {
	if key == "" {
		return fmt.Errorf("%w: empty credential key", shared.ErrInvalidInput)
	}

	now := r.now()
	query := `
		INSERT INTO credentials (key, value, expires_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at, updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, key, value, nullTime(expiresAt), now, now); err != nil {
		return fmt.Errorf("failed to store credential %s: %w", key, err)
	}
	return nil
}

// Get returns the credential stored under key, or [ErrNotFound].
func (r *CredentialRepository) Get(ctx context.Context, key string) (*Credential, error) {
	query := `SELECT key, value, expires_at, created_at, updated_at FROM credentials WHERE key = ?`

	var (
		c         Credential
		expiresAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, key).Scan(&c.Key, &c.Value, &expiresAt, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query credential %s: %w", key, err)
	}

	if expiresAt.Valid {
		t := expiresAt.Time
		c.ExpiresAt = &t
	}
	return &c, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *CredentialRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete credential %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys in alphabetical order.
func (r *CredentialRepository) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key FROM credentials ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan credential key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return keys, nil
}

// Token returns the stored bearer token or [shared.ErrNotAuthenticated].
func (r *CredentialRepository) Token(ctx context.Context) (string, error) {
	c, err := r.Get(ctx, KeyToken)
	if errors.Is(err, ErrNotFound) {
		return "", shared.ErrNotAuthenticated
	}
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

// SetToken stores the bearer token, recording the expiry from its exp claim when it is a JWT.
func (r *CredentialRepository) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidInput)
	}

	var expiresAt *time.Time
	if claims, err := shared.InspectToken(token); err == nil && !claims.ExpiresAt.IsZero() {
		expiresAt = &claims.ExpiresAt
	}
	return r.Put(ctx, KeyToken, token, expiresAt)
}

// Clear removes the bearer token.
func (r *CredentialRepository) Clear(ctx context.Context) error {
	return r.Delete(ctx, KeyToken)
}

// RememberEmail stores the login email used to prefill the login form.
func (r *CredentialRepository) RememberEmail(ctx context.Context, email string) error {
	return r.Put(ctx, KeyEmail, email, nil)
}

// RememberedEmail returns the stored login email, or "" when none is stored.
func (r *CredentialRepository) RememberedEmail(ctx context.Context) (string, error) {
	c, err := r.Get(ctx, KeyEmail)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

// ForgetEmail removes the remembered login email.
func (r *CredentialRepository) ForgetEmail(ctx context.Context) error {
	return r.Delete(ctx, KeyEmail)
}
