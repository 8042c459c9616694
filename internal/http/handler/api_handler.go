package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/slugster/slugster/internal/app/repository"
	"github.com/slugster/slugster/internal/app/service"
	"github.com/slugster/slugster/internal/http/middleware"
	httpUtil "github.com/slugster/slugster/internal/http/util"
	"go.uber.org/zap"
)

// APIDeps groups dependencies required by the link API handlers.
type APIDeps struct {
	Logger *zap.Logger
	Links  service.LinkService
	Stats  service.StatsService
}

// APIHandler implements link creation, listing, deletion, stats and the
// global count.
type APIHandler struct {
	logger *zap.Logger
	links  service.LinkService
	stats  service.StatsService
}

// NewAPIHandler creates an API handler with the provided dependencies.
func NewAPIHandler(deps APIDeps) *APIHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		logger: logger,
		links:  deps.Links,
		stats:  deps.Stats,
	}
}

// Register wires API routes onto the provided router. Must run before the
// catch-all slug route is registered.
func (h *APIHandler) Register(router fiber.Router) {
	router.Post("/shorten", h.Shorten)
	router.Get("/my-urls", middleware.RequireIdentity(), h.MyURLs)
	router.Get("/get-number-of-all-urls", h.CountAll)
	router.Get("/stats/:slug", middleware.RequireIdentity(), h.Stats)
	router.Delete("/delete/:slug", middleware.RequireIdentity(), h.Delete)
}

// ShortenRequest is the body of POST /shorten.
type ShortenRequest struct {
	URL string `json:"url"`
}

// Shorten handles POST /shorten. The link is attributed to the requester
// when an identity is present, otherwise created anonymous.
func (h *APIHandler) Shorten(c *fiber.Ctx) error {
	var req ShortenRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, codeValidation, "invalid request body", err.Error())
	}

	var ownerID *uint64
	if identity := httpUtil.IdentityFrom(c); identity != nil {
		ownerID = &identity.UserID
	}

	link, err := h.links.CreateLink(userContext(c), req.URL, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrURLMissing):
			return fail(c, fiber.StatusBadRequest, codeValidation, err.Error(), "")
		case errors.Is(err, service.ErrSlugExhausted):
			return fail(c, fiber.StatusConflict, codeConflict, err.Error(), "")
		default:
			h.logger.Error("failed to create link", zap.Error(err))
			return fail(c, fiber.StatusInternalServerError, codeStore, "failed to shorten url", "")
		}
	}

	return ok(c, fiber.StatusOK, "Url shortened successfully.", fiber.Map{
		"id":   link.ID,
		"slug": link.Slug,
	})
}

// linkSummary is one entry of GET /my-urls.
type linkSummary struct {
	ID          uint64 `json:"id"`
	OriginalURL string `json:"original_url"`
	TotalClicks int64  `json:"total_clicks"`
	Slug        string `json:"slug"`
}

// MyURLs handles GET /my-urls.
func (h *APIHandler) MyURLs(c *fiber.Ctx) error {
	identity := httpUtil.IdentityFrom(c)

	links, err := h.links.ListByOwner(userContext(c), identity.UserID)
	if err != nil {
		h.logger.Error("failed to list links", zap.Error(err), zap.Uint64("owner_id", identity.UserID))
		return fail(c, fiber.StatusInternalServerError, codeStore, "failed to list urls", "")
	}

	if len(links) == 0 {
		return fail(c, fiber.StatusNotFound, codeNotFound, "No urls found.", "")
	}

	summaries := make([]linkSummary, len(links))
	for i, link := range links {
		summaries[i] = linkSummary{
			ID:          link.ID,
			OriginalURL: link.OriginalURL,
			TotalClicks: link.TotalClicks,
			Slug:        link.Slug,
		}
	}

	return ok(c, fiber.StatusOK, "Urls found.", fiber.Map{"urls": summaries})
}

// CountAll handles GET /get-number-of-all-urls.
func (h *APIHandler) CountAll(c *fiber.Ctx) error {
	count, err := h.links.Count(userContext(c))
	if err != nil {
		h.logger.Error("failed to count links", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, codeStore, "failed to count urls", "")
	}
	return ok(c, fiber.StatusOK, "Count fetched.", fiber.Map{"count": count})
}

// Stats handles GET /stats/:slug.
func (h *APIHandler) Stats(c *fiber.Ctx) error {
	slug := c.Params("slug")
	identity := httpUtil.IdentityFrom(c)

	report, err := h.stats.GetStats(userContext(c), slug, identity)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrLinkNotFound):
			return fail(c, fiber.StatusNotFound, codeNotFound, "Url not found or expired", "Such url is not present in our database")
		case errors.Is(err, service.ErrUnauthorized):
			return fail(c, fiber.StatusUnauthorized, codeUnauthorized, "You are unauthorized", "")
		default:
			h.logger.Error("failed to build stats", zap.Error(err), zap.String("slug", slug))
			return fail(c, fiber.StatusInternalServerError, codeStore, "failed to get record", "")
		}
	}

	message := "Record Found Successfully."
	if report.TotalClicks == 0 {
		message = "No Record Found."
	}
	return ok(c, fiber.StatusOK, message, report)
}

// Delete handles DELETE /delete/:slug. Non-owners get not-found so link
// existence is never leaked.
func (h *APIHandler) Delete(c *fiber.Ctx) error {
	slug := c.Params("slug")
	identity := httpUtil.IdentityFrom(c)

	link, err := h.links.DeleteLink(userContext(c), slug, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return fail(c, fiber.StatusNotFound, codeNotFound, "Url not found or expired", "")
		}
		h.logger.Error("failed to delete link", zap.Error(err), zap.String("slug", slug))
		return fail(c, fiber.StatusInternalServerError, codeStore, "failed to delete url", "")
	}

	return ok(c, fiber.StatusOK, "Url deleted successfully.", fiber.Map{
		"id":   link.ID,
		"slug": link.Slug,
	})
}

func userContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}
