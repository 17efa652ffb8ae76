package middleware

import (
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AuthRequired is a Fiber middleware to check for a valid bearer token.
// Missing, expired and invalid tokens are rejected with distinct 401 errors.
func AuthRequired(authService *services.AuthService, log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := authService.Authenticate(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			log.WithError(err).WithField("path", c.Path()).Debug("bearer authentication failed")
			return err
		}

		// Store the identity in Fiber context for subsequent handlers
		SetIdentity(c, identity)
		return c.Next()
	}
}

// AdminRequired rejects callers without an identity (401) before it checks
// the role (403). It must run after AuthRequired or SessionRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := Identity(c)
		if identity == nil {
			return services.ErrUnauthenticated
		}
		if identity.Role != models.RoleAdmin {
			return services.ErrAdminRequired
		}
		return c.Next()
	}
}
