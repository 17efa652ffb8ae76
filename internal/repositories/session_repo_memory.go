package repositories

import (
	"context"
	"sync"
	"time"

	"storefront/internal/models"
)

// MemorySessionRepository keeps sessions in process memory. Expired entries
// are dropped lazily on read and by Sweep.
type MemorySessionRepository struct {
	sessions map[string]*models.Session
	now      func() time.Time
	mu       sync.RWMutex
}

// NewMemorySessionRepository creates an in-memory session store using now as its clock.
func NewMemorySessionRepository(now func() time.Time) *MemorySessionRepository {
	if now == nil {
		now = time.Now
	}
	return &MemorySessionRepository{
		sessions: make(map[string]*models.Session),
		now:      now,
	}
}

// Get returns a copy of the stored session.
func (r *MemorySessionRepository) Get(_ context.Context, id string) (*models.Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if s.Expired(r.now()) {
		r.mu.Lock()
		// A concurrent Save may have refreshed the entry since RUnlock.
		if cur, ok := r.sessions[id]; ok && cur.Expired(r.now()) {
			delete(r.sessions, id)
		}
		r.mu.Unlock()
		return nil, ErrNotFound
	}
	return cloneSession(s), nil
}

// Save stores a copy of session, replacing any previous value.
func (r *MemorySessionRepository) Save(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID] = cloneSession(session)
	return nil
}

// Delete removes a session; deleting a missing session is not an error.
func (r *MemorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}

// Sweep drops every expired session and returns how many were removed.
func (r *MemorySessionRepository) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}
