package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slugster/slugster/internal/app/model"
	"github.com/slugster/slugster/internal/app/repository"
	"github.com/slugster/slugster/internal/app/slug"
	"go.uber.org/zap"
)

const slugRetries = 5

var (
	// ErrURLMissing signals that the create request carried no URL.
	ErrURLMissing = errors.New("url is missing from request body")

	// ErrSlugExhausted signals that slug generation collided on every
	// attempt. With a 62^7 space this effectively never happens.
	ErrSlugExhausted = errors.New("could not allocate a unique slug")
)

// LinkService owns link lifecycle operations: creation with slug
// allocation, owner-scoped listing and deletion, and the global count.
type LinkService interface {
	CreateLink(ctx context.Context, originalURL string, ownerID *uint64) (*model.Link, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Link, error)
	DeleteLink(ctx context.Context, slug string, ownerID uint64) (*model.Link, error)
	Count(ctx context.Context) (int64, error)
}

type linkService struct {
	links  repository.LinkRepository
	clicks repository.ClickRepository
	filter *SlugFilter
	logger *zap.Logger
}

// NewLinkService returns a service backed by the given repositories. The
// filter may be nil (lookups then always hit the store).
func NewLinkService(links repository.LinkRepository, clicks repository.ClickRepository, filter *SlugFilter, logger *zap.Logger) LinkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &linkService{links: links, clicks: clicks, filter: filter, logger: logger}
}

// CreateLink allocates a fresh slug and inserts the link. On the rare slug
// collision it retries with a fresh slug a bounded number of times.
func (s *linkService) CreateLink(ctx context.Context, originalURL string, ownerID *uint64) (*model.Link, error) {
	if strings.TrimSpace(originalURL) == "" {
		return nil, ErrURLMissing
	}

	for attempt := 0; attempt < slugRetries; attempt++ {
		sl, err := slug.Generate()
		if err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}

		link := &model.Link{
			Slug:        sl,
			OriginalURL: originalURL,
			OwnerID:     ownerID,
			TotalClicks: 0,
		}

		err = s.links.Create(ctx, link)
		if err == nil {
			if s.filter != nil {
				s.filter.Add(sl)
			}
			return link, nil
		}
		if !errors.Is(err, repository.ErrSlugTaken) {
			return nil, fmt.Errorf("create link: %w", err)
		}
		s.logger.Warn("slug collision, retrying", zap.String("slug", sl), zap.Int("attempt", attempt+1))
	}

	return nil, ErrSlugExhausted
}

func (s *linkService) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Link, error) {
	links, err := s.links.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}

// DeleteLink removes the link and cascades to its click rows. The two
// deletes are not wrapped in a transaction; a crash in between leaves
// orphaned click rows that are never queried without a live link.
func (s *linkService) DeleteLink(ctx context.Context, slug string, ownerID uint64) (*model.Link, error) {
	link, err := s.links.DeleteBySlugForOwner(ctx, slug, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.clicks.DeleteByLinkID(ctx, link.ID); err != nil {
		s.logger.Error("failed to cascade click delete",
			zap.Uint64("link_id", link.ID),
			zap.String("slug", slug),
			zap.Error(err))
	}
	return link, nil
}

func (s *linkService) Count(ctx context.Context) (int64, error) {
	return s.links.Count(ctx)
}
