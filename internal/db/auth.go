package db

import (
	"context"
	"time"

	"github.com/analytica/backend/internal/model"
)

func (db *Postgres) CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error) {
	query := `
		INSERT INTO users (username, password_hash, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, username, password_hash, created_at
	`
	var user model.User
	err := db.Pool.QueryRow(ctx, query, username, passwordHash).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Postgres) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = $1
	`
	var user model.User
	err := db.Pool.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// RevokeToken records jti as revoked. Revoking the same jti twice is a no-op.
func (db *Postgres) RevokeToken(ctx context.Context, jti, username string, expiresAt time.Time) error {
	query := `
		INSERT INTO revoked_tokens (jti, username, expires_at, revoked_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (jti) DO NOTHING
	`
	_, err := db.Pool.Exec(ctx, query, jti, username, expiresAt)
	return err
}

func (db *Postgres) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1)`, jti).Scan(&revoked)
	return revoked, err
}

// PurgeRevokedTokens drops ledger rows whose token has already expired.
func (db *Postgres) PurgeRevokedTokens(ctx context.Context, before time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
