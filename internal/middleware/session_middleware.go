package middleware

import (
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// LoadSession attaches the session named by the cookie, if it exists and has
// not expired. Requests without a session pass through untouched.
func LoadSession(sessions *services.SessionService, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := sessions.Load(c.UserContext(), c.Cookies(cookieName))
		if err != nil {
			return err
		}
		if session != nil {
			SetSession(c, session)
		}
		return c.Next()
	}
}

// SessionRequired resolves the user bound to the request's session and
// rejects the request with 401 when there is none. Run it after LoadSession.
func SessionRequired(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := sessions.IdentityOf(c.UserContext(), Session(c))
		if err != nil {
			return err
		}
		if identity == nil {
			return services.ErrUnauthenticated
		}
		SetIdentity(c, identity)
		return c.Next()
	}
}
