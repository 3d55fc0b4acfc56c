package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurelius/mintbid/internal/domain/accounts"
)

// PostgresUserRepository implements accounts.UserRepository using pgx.
// Lookups return (nil, nil) when no row matches.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgreSQL user repository
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, full_name, role, created_at, updated_at`

// CreateUser inserts a user inside an existing transaction
func (r *PostgresUserRepository) CreateUser(ctx context.Context, tx pgx.Tx, user *accounts.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, full_name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by ID, or (nil, nil) when absent
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*accounts.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetUserByEmail retrieves a user by email, or (nil, nil) when absent
func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*accounts.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *PostgresUserRepository) getUser(ctx context.Context, query string, arg any) (*accounts.User, error) {
	var u accounts.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FullName,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// PostgresTokenRepository implements accounts.TokenRepository using pgx
type PostgresTokenRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTokenRepository creates a new PostgreSQL refresh-token repository
func NewPostgresTokenRepository(pool *pgxpool.Pool) *PostgresTokenRepository {
	return &PostgresTokenRepository{pool: pool}
}

// CreateRefreshToken stores a refresh token hash inside an existing transaction
func (r *PostgresTokenRepository) CreateRefreshToken(ctx context.Context, tx pgx.Tx, token *accounts.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token_hash, user_id, expires_at, revoked, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := tx.Exec(ctx, query,
		token.TokenHash,
		token.UserID,
		token.ExpiresAt,
		token.Revoked,
		token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert refresh token: %w", err)
	}
	return nil
}

// GetRefreshToken retrieves a stored refresh token by hash, or (nil, nil)
func (r *PostgresTokenRepository) GetRefreshToken(ctx context.Context, tokenHash []byte) (*accounts.RefreshToken, error) {
	query := `
		SELECT token_hash, user_id, expires_at, revoked, created_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`
	var t accounts.RefreshToken
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&t.TokenHash,
		&t.UserID,
		&t.ExpiresAt,
		&t.Revoked,
		&t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return &t, nil
}

// RevokeRefreshToken marks a token revoked inside an existing transaction
func (r *PostgresTokenRepository) RevokeRefreshToken(ctx context.Context, tx pgx.Tx, tokenHash []byte) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE token_hash = $1`
	if _, err := tx.Exec(ctx, query, tokenHash); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllUserTokens marks every token of a user revoked
func (r *PostgresTokenRepository) RevokeAllUserTokens(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1`
	if _, err := tx.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	return nil
}
