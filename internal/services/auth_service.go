package services

import (
	"context"

	"storefront/internal/models"

	"github.com/sirupsen/logrus"
)

// AuthService handles bearer-token authentication for the JSON API.
type AuthService struct {
	users  *UserService
	tokens *TokenService
	log    logrus.FieldLogger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *UserService, tokens *TokenService, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		log:    log,
	}
}

// LoginUser verifies credentials and returns a signed token with the default lifetime.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.Verify(ctx, email, password)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(user.ID, user.Role, 0)
	if err != nil {
		return "", err
	}

	s.log.WithField("user_id", user.ID).Info("api login")
	return token, nil
}

// Authenticate resolves the identity carried by an Authorization header value.
func (s *AuthService) Authenticate(authorization string) (*models.Identity, error) {
	token, err := BearerToken(authorization)
	if err != nil {
		return nil, err
	}
	return s.tokens.Verify(token)
}
