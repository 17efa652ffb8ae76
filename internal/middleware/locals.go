package middleware

import (
	"storefront/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	identityKey = "identity"
	sessionKey  = "session"
)

// SetIdentity stores the authenticated caller on the request.
func SetIdentity(c *fiber.Ctx, identity *models.Identity) {
	c.Locals(identityKey, identity)
}

// Identity returns the authenticated caller, or nil.
func Identity(c *fiber.Ctx) *models.Identity {
	identity, _ := c.Locals(identityKey).(*models.Identity)
	return identity
}

// SetSession stores the browser session on the request.
func SetSession(c *fiber.Ctx, session *models.Session) {
	c.Locals(sessionKey, session)
}

// Session returns the browser session attached by LoadSession, or nil.
func Session(c *fiber.Ctx) *models.Session {
	session, _ := c.Locals(sessionKey).(*models.Session)
	return session
}
