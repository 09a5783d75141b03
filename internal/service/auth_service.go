package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"tableserve-backend/internal/core/domain"
	"tableserve-backend/internal/core/ports"
	"tableserve-backend/pkg/apperror"

	"github.com/google/uuid"
)

// AuthService registers and authenticates consumer accounts.
type AuthService struct {
	userRepo ports.UserRepository
	hasher   ports.HashService
	tokens   ports.TokenService
	logger   zerolog.Logger
}

func NewAuthService(
	userRepo ports.UserRepository,
	hasher ports.HashService,
	tokens ports.TokenService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (*ports.AuthTokens, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.NewValidation("a valid email is required")
	}
	if len(password) < 8 {
		return nil, apperror.NewValidation("password must be at least 8 characters")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(fullName),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailExists) {
			return nil, apperror.NewEmailTaken()
		}
		return nil, apperror.NewInternal(err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return s.issueTokens(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthTokens, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	if user == nil {
		return nil, apperror.NewInvalidCredentials()
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	if !ok {
		return nil, apperror.NewInvalidCredentials()
	}

	return s.issueTokens(user)
}

func (s *AuthService) issueTokens(user *domain.User) (*ports.AuthTokens, error) {
	token, expiresAt, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return &ports.AuthTokens{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}
