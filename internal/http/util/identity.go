// Package util holds small request-scoped helpers shared by handlers and
// middleware.
package util

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/slugster/slugster/internal/app/model"
)

// IdentityKey is the fiber locals key carrying the request identity.
const IdentityKey = "identity"

// BearerToken extracts the token from an Authorization header. Returns ""
// when the header is absent or not a bearer scheme.
func BearerToken(c *fiber.Ctx) string {
	auth := c.Get(fiber.HeaderAuthorization)
	if auth == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// IdentityFrom returns the authenticated identity stored on the request,
// or nil for an anonymous request.
func IdentityFrom(c *fiber.Ctx) *model.Identity {
	id, _ := c.Locals(IdentityKey).(*model.Identity)
	return id
}
