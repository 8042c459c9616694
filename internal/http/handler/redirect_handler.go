package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/slugster/slugster/internal/app/repository"
	"github.com/slugster/slugster/internal/app/service"
	"go.uber.org/zap"
)

// RedirectDeps groups dependencies required by the redirect handler.
type RedirectDeps struct {
	Logger   *zap.Logger
	Redirect *service.RedirectService
}

// RedirectHandler serves the slug catch-all route.
type RedirectHandler struct {
	logger   *zap.Logger
	redirect *service.RedirectService
}

// NewRedirectHandler creates a redirect handler with the provided dependencies.
func NewRedirectHandler(deps RedirectDeps) *RedirectHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedirectHandler{
		logger:   logger,
		redirect: deps.Redirect,
	}
}

// Register wires redirect routes onto the provided router. The slug route
// is a catch-all, so this must run after every other GET route.
func (h *RedirectHandler) Register(router fiber.Router) {
	router.Get("/health", h.Health)
	router.Get("/:slug", h.Visit)
}

// Health is a simple endpoint so we know the service is running.
func (h *RedirectHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "slugster",
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Visit handles GET /:slug and issues the redirect.
func (h *RedirectHandler) Visit(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return fail(c, fiber.StatusBadRequest, codeValidation, "missing link slug", "")
	}

	meta := service.VisitMeta{
		UserAgent:     c.Get(fiber.HeaderUserAgent),
		Referer:       c.Get(fiber.HeaderReferer),
		ForwardedFor:  c.Get(fiber.HeaderXForwardedFor),
		RemoteAddr:    c.IP(),
		CFCountry:     c.Get("CF-IPCountry"),
		VercelCountry: c.Get("X-Vercel-IP-Country"),
	}

	target, err := h.redirect.Visit(userContext(c), slug, meta)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return fail(c, fiber.StatusNotFound, codeNotFound, "Url not found or expired", "Such url is not present in our database")
		}
		h.logger.Error("failed to resolve link", zap.Error(err), zap.String("slug", slug))
		return fail(c, fiber.StatusInternalServerError, codeStore, "Error in redirection", "")
	}

	h.logger.Debug("redirecting short link", zap.String("slug", slug), zap.String("target", target))
	return c.Redirect(target, fiber.StatusFound)
}
