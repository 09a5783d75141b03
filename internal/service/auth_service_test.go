package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"tableserve-backend/internal/core/domain"
	"tableserve-backend/internal/core/ports/mocks"
)

type authDeps struct {
	userRepo *mocks.MockUserRepository
	hasher   *mocks.MockHashService
	tokens   *mocks.MockTokenService
}

func newAuthService(t *testing.T) (*AuthService, authDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)
	deps := authDeps{
		userRepo: mocks.NewMockUserRepository(ctrl),
		hasher:   mocks.NewMockHashService(ctrl),
		tokens:   mocks.NewMockTokenService(ctrl),
	}
	return NewAuthService(deps.userRepo, deps.hasher, deps.tokens, zerolog.Nop()), deps
}

func TestAuthService_Register(t *testing.T) {
	svc, deps := newAuthService(t)

	deps.hasher.EXPECT().Hash("s3cretpass").Return("$argon2id$...", nil)
	deps.userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *domain.User) error {
			assert.Equal(t, "ada@example.com", u.Email)
			assert.Equal(t, "$argon2id$...", u.PasswordHash)
			return nil
		})
	deps.tokens.EXPECT().Generate(gomock.Any()).Return("token", time.Now().Add(time.Hour), nil)

	tokens, err := svc.Register(context.Background(), "  ADA@Example.com ", "s3cretpass", "Ada Obi")
	require.NoError(t, err)
	assert.Equal(t, "token", tokens.AccessToken)
	assert.Equal(t, "ada@example.com", tokens.User.Email)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	svc, deps := newAuthService(t)

	deps.hasher.EXPECT().Hash(gomock.Any()).Return("$argon2id$...", nil)
	deps.userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domain.ErrEmailExists)

	_, err := svc.Register(context.Background(), "ada@example.com", "s3cretpass", "Ada Obi")
	assertAppError(t, err, "AUTH_003")
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(context.Background(), "ada@example.com", "short", "Ada Obi")
	assertAppError(t, err, "SYS_001")
}

func TestAuthService_Login(t *testing.T) {
	svc, deps := newAuthService(t)
	userID := uuid.New()

	deps.userRepo.EXPECT().GetByEmail(gomock.Any(), "ada@example.com").
		Return(&domain.User{ID: userID, Email: "ada@example.com", PasswordHash: "$argon2id$..."}, nil)
	deps.hasher.EXPECT().Verify("s3cretpass", "$argon2id$...").Return(true, nil)
	deps.tokens.EXPECT().Generate(userID).Return("token", time.Now().Add(time.Hour), nil)

	tokens, err := svc.Login(context.Background(), "ada@example.com", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, "token", tokens.AccessToken)
}

func TestAuthService_Login_BadPassword(t *testing.T) {
	svc, deps := newAuthService(t)

	deps.userRepo.EXPECT().GetByEmail(gomock.Any(), "ada@example.com").
		Return(&domain.User{ID: uuid.New(), PasswordHash: "$argon2id$..."}, nil)
	deps.hasher.EXPECT().Verify("wrong", "$argon2id$...").Return(false, nil)

	_, err := svc.Login(context.Background(), "ada@example.com", "wrong")
	assertAppError(t, err, "AUTH_001")
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, deps := newAuthService(t)

	deps.userRepo.EXPECT().GetByEmail(gomock.Any(), "ghost@example.com").Return(nil, nil)

	_, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	assertAppError(t, err, "AUTH_001")
}
