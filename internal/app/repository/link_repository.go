package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/slugster/slugster/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrLinkNotFound signals that the requested short link does not exist
	// (or, for owner-scoped operations, is not owned by the caller).
	ErrLinkNotFound = errors.New("link not found")

	// ErrSlugTaken signals a unique-index violation on the slug column.
	ErrSlugTaken = errors.New("slug already taken")
)

// LinkRepository defines the data access contract for short links.
type LinkRepository interface {
	Create(ctx context.Context, link *model.Link) error
	GetBySlug(ctx context.Context, slug string) (*model.Link, error)
	RecordVisit(ctx context.Context, slug string) (*model.Link, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Link, error)
	DeleteBySlugForOwner(ctx context.Context, slug string, ownerID uint64) (*model.Link, error)
	ListSlugs(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

type linkRepository struct {
	db   *gorm.DB
	pool *pgxpool.Pool
}

// NewLinkRepository returns a GORM-backed LinkRepository. The pgx pool is
// used for raw aggregate queries.
func NewLinkRepository(db *gorm.DB, pool *pgxpool.Pool) LinkRepository {
	return &linkRepository{db: db, pool: pool}
}

func (r *linkRepository) Create(ctx context.Context, link *model.Link) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}

func (r *linkRepository) GetBySlug(ctx context.Context, slug string) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

// RecordVisit bumps total_clicks and last_visited_at in a single UPDATE so
// concurrent visits to the same slug never lose increments.
func (r *linkRepository) RecordVisit(ctx context.Context, slug string) (*model.Link, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("slug = ?", slug).
		Updates(map[string]interface{}{
			"total_clicks":    gorm.Expr("total_clicks + 1"),
			"last_visited_at": time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrLinkNotFound
	}

	var link model.Link
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Link, error) {
	var result []model.Link
	if err := r.db.WithContext(ctx).
		Select("id", "original_url", "total_clicks", "slug").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteBySlugForOwner removes the link only when the owner matches. A
// non-owner gets ErrLinkNotFound so existence is never leaked.
func (r *linkRepository) DeleteBySlugForOwner(ctx context.Context, slug string, ownerID uint64) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).
		Where("slug = ? AND owner_id = ?", slug, ownerID).
		First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", link.ID, ownerID).
		Delete(&model.Link{})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrLinkNotFound
	}
	return &link, nil
}

func (r *linkRepository) ListSlugs(ctx context.Context) ([]string, error) {
	var slugs []string
	if err := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Pluck("slug", &slugs).Error; err != nil {
		return nil, err
	}
	return slugs, nil
}

func (r *linkRepository) Count(ctx context.Context) (int64, error) {
	if r.pool != nil {
		var count int64
		if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM links").Scan(&count); err != nil {
			return 0, err
		}
		return count, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Link{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
