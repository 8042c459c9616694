package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/slugster/slugster/internal/app/repository"
	"github.com/slugster/slugster/internal/app/service"
	"go.uber.org/zap"
)

// AuthDeps groups dependencies required by the auth handlers.
type AuthDeps struct {
	Logger *zap.Logger
	Auth   *service.AuthService
}

// AuthHandler implements the signup and login collaborator endpoints.
type AuthHandler struct {
	logger *zap.Logger
	auth   *service.AuthService
}

// NewAuthHandler creates an auth handler with the provided dependencies.
func NewAuthHandler(deps AuthDeps) *AuthHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{logger: logger, auth: deps.Auth}
}

// Register wires auth routes onto the provided router.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/signup", h.Signup)
	router.Post("/login", h.Login)
}

// SignupRequest is the body of POST /signup.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, codeValidation, "invalid request body", err.Error())
	}

	user, err := h.auth.Signup(userContext(c), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFieldsMissing):
			return fail(c, fiber.StatusBadRequest, codeValidation, "All fields are required", "")
		case errors.Is(err, repository.ErrEmailTaken):
			return fail(c, fiber.StatusBadRequest, codeConflict, "User already exist.", "")
		default:
			h.logger.Error("failed to create user", zap.Error(err))
			return fail(c, fiber.StatusInternalServerError, codeStore, "failed to create user", "")
		}
	}

	return ok(c, fiber.StatusCreated, "User Created Successfully.", fiber.Map{
		"name":  user.Name,
		"email": user.Email,
	})
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, codeValidation, "invalid request body", err.Error())
	}

	token, err := h.auth.Login(userContext(c), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFieldsMissing):
			return fail(c, fiber.StatusBadRequest, codeValidation, "Email or Password is missing.", "")
		case errors.Is(err, repository.ErrUserNotFound):
			return fail(c, fiber.StatusNotFound, codeNotFound, "User not found, Please Sign Up First.", "")
		case errors.Is(err, service.ErrBadCredentials):
			return fail(c, fiber.StatusBadRequest, codeValidation, "Email or Password is wrong.", "")
		default:
			h.logger.Error("failed to login user", zap.Error(err))
			return fail(c, fiber.StatusInternalServerError, codeStore, "failed to login", "")
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":     "success",
		"statusCode": fiber.StatusOK,
		"message":    "You are loggedin.",
		"token":      token,
	})
}
