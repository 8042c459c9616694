package handler

import "github.com/gofiber/fiber/v2"

// Machine-readable error codes surfaced in the response envelope. Closed
// set: handlers never invent codes outside of it.
const (
	codeValidation   = "VALIDATION_ERROR"
	codeNotFound     = "NOT_FOUND"
	codeUnauthorized = "UNAUTHORIZED"
	codeConflict     = "CONFLICT"
	codeStore        = "STORE_ERROR"
)

// fail writes the structured error envelope.
func fail(c *fiber.Ctx, status int, code, message, details string) error {
	body := fiber.Map{
		"status":     "error",
		"statusCode": status,
		"code":       code,
		"message":    message,
		"data":       fiber.Map{},
	}
	if details != "" {
		body["details"] = details
	}
	return c.Status(status).JSON(body)
}

// ok writes the structured success envelope.
func ok(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"status":     "success",
		"statusCode": status,
		"message":    message,
		"data":       data,
	})
}
