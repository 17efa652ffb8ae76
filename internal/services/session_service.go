package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SessionService authenticates browser sessions. A session is created on
// login or lazily on the first cart mutation, and destroyed on logout.
type SessionService struct {
	repo  repositories.SessionRepository
	users *UserService
	ttl   time.Duration
	now   func() time.Time
	log   logrus.FieldLogger
}

// NewSessionService creates a SessionService whose sessions live for ttl after their last save.
func NewSessionService(repo repositories.SessionRepository, users *UserService, ttl time.Duration, now func() time.Time, log logrus.FieldLogger) *SessionService {
	if now == nil {
		now = time.Now
	}
	return &SessionService{
		repo:  repo,
		users: users,
		ttl:   ttl,
		now:   now,
		log:   log,
	}
}

// New returns a fresh anonymous session. It is not stored until Save.
func (s *SessionService) New() *models.Session {
	now := s.now()
	return &models.Session{
		ID:        uuid.NewString(),
		Cart:      models.Cart{},
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
}

// Load returns the session for id, or nil when id is empty, unknown or expired.
func (s *SessionService) Load(ctx context.Context, id string) (*models.Session, error) {
	if id == "" {
		return nil, nil
	}
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

// Save persists the session and extends its expiry by the configured TTL.
func (s *SessionService) Save(ctx context.Context, session *models.Session) error {
	session.ExpiresAt = s.now().Add(s.ttl)
	if err := s.repo.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Login verifies credentials and binds the user to a newly issued session ID.
// The previous session (if any) is discarded but its cart is carried over.
func (s *SessionService) Login(ctx context.Context, current *models.Session, email, password string) (*models.Session, error) {
	user, err := s.users.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}

	session := s.New()
	session.UserID = user.ID
	if current != nil {
		for id, qty := range current.Cart {
			session.Cart[id] = qty
		}
		if err := s.repo.Delete(ctx, current.ID); err != nil {
			return nil, fmt.Errorf("failed to rotate session: %w", err)
		}
	}
	if err := s.Save(ctx, session); err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("session login")
	return session, nil
}

// Logout destroys the session. It succeeds for unknown or empty IDs.
func (s *SessionService) Logout(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// IdentityOf resolves the user bound to session. It returns nil for
// anonymous sessions and for sessions whose user no longer exists.
// The role is read from the user record, not cached in the session.
func (s *SessionService) IdentityOf(ctx context.Context, session *models.Session) (*models.Identity, error) {
	if session == nil || !session.Authenticated() {
		return nil, nil
	}
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &models.Identity{UserID: user.ID, Role: user.Role}, nil
}

// CurrentIdentity loads the session for id and resolves its identity.
func (s *SessionService) CurrentIdentity(ctx context.Context, id string) (*models.Identity, error) {
	session, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.IdentityOf(ctx, session)
}
