package accounts

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aurelius/mintbid/pkg/auth"
	"github.com/aurelius/mintbid/pkg/database"
)

var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidInput       = errors.New("invalid input")
)

const refreshTokenTTL = 7 * 24 * time.Hour

type Service struct {
	userRepo  UserRepository
	tokenRepo TokenRepository
	signer    *auth.Signer
	txManager database.TransactionManager
}

func NewService(
	userRepo UserRepository,
	tokenRepo TokenRepository,
	signer *auth.Signer,
	txManager database.TransactionManager,
) *Service {
	return &Service{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		signer:    signer,
		txManager: txManager,
	}
}

func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*User, error) {
	if err := validateRegistration(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	existing, err := s.userRepo.GetUserByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hash, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := cmd.Role
	if role == "" {
		role = auth.RoleBuyer
	}

	now := time.Now()
	user := &User{
		ID:           uuid.New(),
		Email:        cmd.Email,
		PasswordHash: hash,
		FullName:     cmd.FullName,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.userRepo.CreateUser(ctx, tx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, string, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", "", ErrInvalidCredentials
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return "", "", fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return "", "", ErrInvalidCredentials
	}

	return s.generateAndSaveTokens(ctx, user)
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued in the same transaction.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	tokenHash := hashToken(refreshToken)

	storedToken, err := s.tokenRepo.GetRefreshToken(ctx, tokenHash)
	if err != nil {
		return "", "", fmt.Errorf("failed to get refresh token: %w", err)
	}
	if storedToken == nil || storedToken.Revoked || time.Now().After(storedToken.ExpiresAt) {
		return "", "", ErrInvalidToken
	}

	user, err := s.userRepo.GetUserByID(ctx, storedToken.UserID)
	if err != nil {
		return "", "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", "", ErrUserNotFound
	}

	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.tokenRepo.RevokeRefreshToken(ctx, tx, tokenHash); err != nil {
		return "", "", fmt.Errorf("failed to revoke token: %w", err)
	}

	tokenPair, err := s.signer.GenerateTokens(user.ID, user.Email, user.Role)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	newStoredToken := &RefreshToken{
		TokenHash: hashToken(tokenPair.RefreshToken),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
		Revoked:   false,
		CreatedAt: time.Now(),
	}

	if err := s.tokenRepo.CreateRefreshToken(ctx, tx, newStoredToken); err != nil {
		return "", "", fmt.Errorf("failed to save refresh token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return tokenPair.AccessToken, tokenPair.RefreshToken, nil
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := hashToken(refreshToken)

	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.tokenRepo.RevokeRefreshToken(ctx, tx, tokenHash); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *Service) generateAndSaveTokens(ctx context.Context, user *User) (string, string, error) {
	tokenPair, err := s.signer.GenerateTokens(user.ID, user.Email, user.Role)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	refreshToken := &RefreshToken{
		TokenHash: hashToken(tokenPair.RefreshToken),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
		Revoked:   false,
		CreatedAt: time.Now(),
	}

	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.tokenRepo.CreateRefreshToken(ctx, tx, refreshToken); err != nil {
		return "", "", fmt.Errorf("failed to save refresh token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return tokenPair.AccessToken, tokenPair.RefreshToken, nil
}

func hashToken(token string) []byte {
	hash := sha256.Sum256([]byte(token))
	return hash[:]
}

func validateRegistration(cmd RegisterCommand) error {
	if !strings.Contains(cmd.Email, "@") || len(cmd.Email) < 3 {
		return errors.New("invalid email format")
	}
	if len(cmd.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if strings.TrimSpace(cmd.FullName) == "" {
		return errors.New("full name cannot be empty")
	}
	switch cmd.Role {
	case "", auth.RoleBuyer, auth.RoleClient:
	default:
		return errors.New("role must be buyer or client")
	}
	return nil
}
