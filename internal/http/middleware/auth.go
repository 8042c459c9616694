package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/slugster/slugster/internal/app/service"
	httpUtil "github.com/slugster/slugster/internal/http/util"
)

// Identify resolves an optional bearer token into a request identity.
// Absent or invalid tokens leave the request anonymous; authorization is
// enforced per-endpoint, never here.
func Identify(auth *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := httpUtil.BearerToken(c)
		if token == "" {
			return c.Next()
		}

		identity, err := auth.ParseToken(token)
		if err != nil {
			return c.Next()
		}

		c.Locals(httpUtil.IdentityKey, identity)
		return c.Next()
	}
}

// RequireIdentity rejects anonymous requests on protected endpoints.
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if httpUtil.IdentityFrom(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":     "error",
				"statusCode": fiber.StatusUnauthorized,
				"code":       "UNAUTHORIZED",
				"message":    "You are unauthorized",
			})
		}
		return c.Next()
	}
}
