package handlers

import (
	"time"

	"storefront/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie describes the browser session cookie. It is always
// HttpOnly and SameSite=Lax; Secure is set from configuration.
type SessionCookie struct {
	Name   string
	Secure bool
}

func (sc SessionCookie) set(c *fiber.Ctx, session *models.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     sc.Name,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   sc.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (sc SessionCookie) clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sc.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   sc.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
