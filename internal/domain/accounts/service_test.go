package accounts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/aurelius/mintbid/pkg/auth"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, tx pgx.Tx, user *User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func TestService_Register_Validation(t *testing.T) {
	tests := []struct {
		name string
		cmd  RegisterCommand
	}{
		{
			name: "rejects malformed email",
			cmd:  RegisterCommand{Email: "not-an-email", Password: "longenough", FullName: "A Collector"},
		},
		{
			name: "rejects short password",
			cmd:  RegisterCommand{Email: "c@example.com", Password: "short", FullName: "A Collector"},
		},
		{
			name: "rejects empty full name",
			cmd:  RegisterCommand{Email: "c@example.com", Password: "longenough", FullName: "   "},
		},
		{
			name: "rejects self-service admin role",
			cmd:  RegisterCommand{Email: "c@example.com", Password: "longenough", FullName: "A Collector", Role: auth.RoleAdmin},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewService(new(MockUserRepository), nil, nil, nil)
			user, err := service.Register(context.Background(), tt.cmd)

			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, user)
		})
	}
}

func TestService_Login_UnknownUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

	service := NewService(userRepo, nil, nil, nil)
	access, refresh, err := service.Login(context.Background(), "ghost@example.com", "whatever123")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, access)
	assert.Empty(t, refresh)
	userRepo.AssertExpectations(t)
}

func TestService_GetProfile(t *testing.T) {
	userID := uuid.New()
	userRepo := new(MockUserRepository)
	userRepo.On("GetUserByID", mock.Anything, userID).Return(&User{
		ID:    userID,
		Email: "collector@example.com",
		Role:  auth.RoleBuyer,
	}, nil)

	service := NewService(userRepo, nil, nil, nil)
	user, err := service.GetProfile(context.Background(), userID)

	assert.NoError(t, err)
	assert.Equal(t, "collector@example.com", user.Email)
	userRepo.AssertExpectations(t)
}
