package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/inventory-service/internal/auth"
	"github.com/spec-kit/inventory-service/internal/config"
	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/repository"
	apperrors "github.com/spec-kit/inventory-service/pkg/util"
)

// AuthService coordinates the login flow.
type AuthService struct {
	users    repository.UserRepository
	tokenMgr *auth.TokenManager
	logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:    users,
		tokenMgr: auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL()),
		logger:   logger,
	}
}

// Login verifies the credentials and issues a role-bearing token.
// Unknown user and wrong password fail with the same error so callers
// cannot probe for usernames.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, domain.Role, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", "", apperrors.NewInvalidCredentials()
		}
		return "", "", apperrors.MapError(err)
	}
	if !auth.VerifyCredential(user.Password, password) {
		return "", "", apperrors.NewInvalidCredentials()
	}

	token, err := s.tokenMgr.Issue(domain.Identity{Subject: user.Username, Role: user.Role})
	if err != nil {
		return "", "", apperrors.MapError(err)
	}

	s.logger.Info("login succeeded", zap.String("username", username), zap.String("role", string(user.Role)))
	return token, user.Role, nil
}

// TokenManager exposes the token manager for the context resolver.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
