package accounts

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository interface {
	CreateUser(ctx context.Context, tx pgx.Tx, user *User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

type TokenRepository interface {
	CreateRefreshToken(ctx context.Context, tx pgx.Tx, token *RefreshToken) error
	GetRefreshToken(ctx context.Context, tokenHash []byte) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tx pgx.Tx, tokenHash []byte) error
	// RevokeAllUserTokens backs "logout from all devices"
	RevokeAllUserTokens(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error
}
