package services

import (
	"fmt"
	"strings"
	"time"

	"storefront/internal/models"

	"github.com/dgrijalva/jwt-go"
)

// DefaultTokenTTL is used when a token is issued without an explicit lifetime.
const DefaultTokenTTL = 3600 * time.Second

type tokenClaims struct {
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.StandardClaims
}

// TokenService issues and verifies HS256 bearer tokens. Tokens are stateless:
// they are never stored and only expire.
type TokenService struct {
	secret     []byte
	defaultTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

// NewTokenService creates a TokenService signing with secret.
func NewTokenService(secret string, defaultTTL time.Duration, now func() time.Time) *TokenService {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &TokenService{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
		now:        now,
		// Expiry is checked against the injected clock after the signature,
		// so the library's own time-based validation is skipped.
		parser: &jwt.Parser{
			ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
			SkipClaimsValidation: true,
		},
	}
}

// Issue signs a token for userID and role valid for ttl (default when ttl <= 0).
func (s *TokenService) Issue(userID string, role models.Role, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID: userID,
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature first and the expiry second: a tampered token
// is ErrTokenInvalid even when it is also past its exp.
func (s *TokenService) Verify(tokenString string) (*models.Identity, error) {
	claims := &tokenClaims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrTokenInvalid.WithCause(err)
	}
	if !token.Valid || claims.UserID == "" || claims.ExpiresAt == 0 {
		return nil, ErrTokenInvalid
	}
	if s.now().Unix() >= claims.ExpiresAt {
		return nil, ErrTokenExpired
	}

	role := claims.Role
	if role == "" {
		role = models.RoleUser
	}
	return &models.Identity{UserID: claims.UserID, Role: role}, nil
}

// BearerToken extracts the token from an Authorization header value.
// A missing header or any scheme other than "Bearer" is ErrTokenMissing.
func BearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", ErrTokenMissing
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrTokenMissing
	}
	return token, nil
}
