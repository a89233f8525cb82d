package identity

import (
	"context"
	"errors"

	"go.uber.org/zap"

	appshared "github.com/wimotos/backend/internal/application/shared"
	"github.com/wimotos/backend/internal/domain/identity"
	"github.com/wimotos/backend/internal/domain/shared"
	"github.com/wimotos/backend/internal/infrastructure/auth"
)

// AuthService handles authentication operations
type AuthService struct {
	txScope    appshared.TransactionScope
	jwtService *auth.JWTService
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(txScope appshared.TransactionScope, jwtService *auth.JWTService, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{txScope: txScope, jwtService: jwtService, logger: logger}
}

// Login checks email and password and issues an access token.
// Unknown emails and wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := identity.NormalizeEmail(req.Email)

	var user *identity.User
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		user, err = repos.Users().FindByEmail(ctx, email)
		return err
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("login for unknown email", zap.String("email", email))
			return nil, identity.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(req.Password) {
		s.logger.Warn("invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, identity.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateAccessToken(auth.TokenSubject{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		s.logger.Error("failed to generate access token", zap.Error(err))
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()))
	return &LoginResponse{
		AccessToken: token.Token,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
		User:        ToUserResponse(user),
	}, nil
}
