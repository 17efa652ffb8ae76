package services_test

import (
	"io"
	"sync"
	"time"

	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

// fixture wires the services over in-memory repositories.
type fixture struct {
	clock    *fakeClock
	users    *services.UserService
	sessions *services.SessionService
	products *repositories.MockProductRepository
	carts    *services.CartService
	userRepo *repositories.MockUserRepository
}

func newFixture() *fixture {
	log := quietLogger()
	clock := newFakeClock()
	userRepo := repositories.NewMockUserRepository()
	users := services.NewUserService(userRepo, bcrypt.MinCost, log)
	sessions := services.NewSessionService(repositories.NewMemorySessionRepository(clock.Now), users, time.Hour, clock.Now, log)
	products := repositories.NewMockProductRepository()
	return &fixture{
		clock:    clock,
		users:    users,
		sessions: sessions,
		products: products,
		carts:    services.NewCartService(products, sessions, log),
		userRepo: userRepo,
	}
}
