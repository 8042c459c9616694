package repository

import (
	"context"

	"github.com/slugster/slugster/internal/app/model"
	"gorm.io/gorm"
)

// ClickRepository defines the data access contract for the append-only
// click log.
type ClickRepository interface {
	Append(ctx context.Context, click *model.Click) error
	FindBySlug(ctx context.Context, slug string) ([]model.Click, error)
	DeleteByLinkID(ctx context.Context, linkID uint64) error
}

type clickRepository struct {
	db *gorm.DB
}

// NewClickRepository returns a GORM-backed ClickRepository.
func NewClickRepository(db *gorm.DB) ClickRepository {
	return &clickRepository{db: db}
}

func (r *clickRepository) Append(ctx context.Context, click *model.Click) error {
	return r.db.WithContext(ctx).Create(click).Error
}

func (r *clickRepository) FindBySlug(ctx context.Context, slug string) ([]model.Click, error) {
	var clicks []model.Click
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		Order("created_at ASC").
		Find(&clicks).Error; err != nil {
		return nil, err
	}
	return clicks, nil
}

func (r *clickRepository) DeleteByLinkID(ctx context.Context, linkID uint64) error {
	return r.db.WithContext(ctx).Where("link_id = ?", linkID).Delete(&model.Click{}).Error
}
