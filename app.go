package main

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// application is the wired storefront: storage, services and the HTTP app.
type application struct {
	cfg *config.Config
	log *logrus.Logger
	db  *gorm.DB

	redis         *redis.Client
	memorySession *repositories.MemorySessionRepository
	mq            *rabbitmq.Client

	users    *services.UserService
	products *services.ProductService
	sessions *services.SessionService

	http *fiber.App
}

// newApp wires every component over db. Redis and RabbitMQ are connected
// only when the configuration asks for them.
func newApp(ctx context.Context, cfg *config.Config, log *logrus.Logger, db *gorm.DB) (*application, error) {
	a := &application{cfg: cfg, log: log, db: db}

	var sessionRepo repositories.SessionRepository
	switch cfg.SessionStore {
	case "redis":
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.redis.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		sessionRepo = repositories.NewRedisSessionRepository(a.redis, time.Now)
	default:
		a.memorySession = repositories.NewMemorySessionRepository(time.Now)
		sessionRepo = a.memorySession
	}

	var publisher services.OrderPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, log)
		if err != nil {
			a.close()
			return nil, err
		}
		a.mq = mq
		publisher = mq
	}

	productRepo := repositories.NewGORMProductRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	a.users = services.NewUserService(userRepo, cfg.BcryptCost, log)
	a.products = services.NewProductService(productRepo, log)
	a.sessions = services.NewSessionService(sessionRepo, a.users, cfg.SessionTTL, time.Now, log)
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL, time.Now)
	authService := services.NewAuthService(a.users, tokens, log)
	carts := services.NewCartService(productRepo, a.sessions, log)
	checkout := services.NewCheckoutService(carts, a.sessions, publisher, time.Now, log)

	cookie := handlers.SessionCookie{Name: cfg.SessionCookieName, Secure: cfg.SessionCookieSecure}

	// Request values outlive the handler in session carts.
	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: handlers.ErrorHandler(log),
		Immutable:    true,
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{Output: log.Out}))

	app.Get("/health", a.handleHealth)

	// JSON API, bearer tokens
	api := app.Group("/api")
	tokenRequired := middleware.AuthRequired(authService, log)
	handlers.NewAuthHandler(a.users, authService, log).RegisterRoutes(api)
	handlers.NewProfileHandler(a.users).RegisterRoutes(api, tokenRequired)
	handlers.NewProductHandler(a.products).RegisterRoutes(api, tokenRequired, middleware.AdminRequired())

	// Browser routes, cookie sessions
	web := app.Group("/", middleware.LoadSession(a.sessions, cfg.SessionCookieName))
	handlers.NewAccountHandler(a.users, a.sessions, cookie, log).RegisterRoutes(web)
	handlers.NewShopHandler(a.products, carts, checkout, a.sessions, cookie).RegisterRoutes(web)

	a.http = app
	return a, nil
}

func (a *application) handleHealth(c *fiber.Ctx) error {
	status := fiber.StatusOK
	body := fiber.Map{
		"status":        "healthy",
		"time":          time.Now().Format(time.RFC3339),
		"session_store": a.cfg.SessionStore,
		"rabbitmq":      "disabled",
	}
	if a.mq != nil {
		body["rabbitmq"] = "connected"
	}

	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.UserContext())
	}
	if err != nil {
		a.log.WithError(err).Warn("health check: database unreachable")
		status = fiber.StatusServiceUnavailable
		body["status"] = "unhealthy"
	}
	return c.Status(status).JSON(body)
}

// sweepSessions drops expired in-memory sessions until ctx is done.
// Redis expires keys on its own.
func (a *application) sweepSessions(ctx context.Context, every time.Duration) {
	if a.memorySession == nil {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.memorySession.Sweep(); n > 0 {
				a.log.WithField("sessions", n).Debug("expired sessions swept")
			}
		}
	}
}

func (a *application) close() {
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			a.log.WithError(err).Warn("failed to close rabbitmq client")
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("failed to close redis client")
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
}
