package repositories

import (
	"context"

	"storefront/internal/models"
)

// SessionRepository stores server-side sessions keyed by their cookie value.
// Get returns ErrNotFound for sessions that are absent or past ExpiresAt.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id string) error
}

func cloneSession(s *models.Session) *models.Session {
	cp := *s
	cp.Cart = make(models.Cart, len(s.Cart))
	for id, qty := range s.Cart {
		cp.Cart[id] = qty
	}
	return &cp
}
