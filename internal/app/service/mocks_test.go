package service

import (
	"context"

	"github.com/slugster/slugster/internal/app/model"
	"github.com/slugster/slugster/internal/app/repository"
)

type mockLinkRepository struct {
	createFn      func(ctx context.Context, link *model.Link) error
	getFn         func(ctx context.Context, slug string) (*model.Link, error)
	recordVisitFn func(ctx context.Context, slug string) (*model.Link, error)
	listOwnerFn   func(ctx context.Context, ownerID uint64) ([]model.Link, error)
	deleteFn      func(ctx context.Context, slug string, ownerID uint64) (*model.Link, error)
	listSlugsFn   func(ctx context.Context) ([]string, error)
	countFn       func(ctx context.Context) (int64, error)
}

func (m *mockLinkRepository) Create(ctx context.Context, link *model.Link) error {
	if m.createFn != nil {
		return m.createFn(ctx, link)
	}
	return nil
}

func (m *mockLinkRepository) GetBySlug(ctx context.Context, slug string) (*model.Link, error) {
	if m.getFn != nil {
		return m.getFn(ctx, slug)
	}
	return nil, repository.ErrLinkNotFound
}

func (m *mockLinkRepository) RecordVisit(ctx context.Context, slug string) (*model.Link, error) {
	if m.recordVisitFn != nil {
		return m.recordVisitFn(ctx, slug)
	}
	return nil, repository.ErrLinkNotFound
}

func (m *mockLinkRepository) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Link, error) {
	if m.listOwnerFn != nil {
		return m.listOwnerFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockLinkRepository) DeleteBySlugForOwner(ctx context.Context, slug string, ownerID uint64) (*model.Link, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, slug, ownerID)
	}
	return nil, repository.ErrLinkNotFound
}

func (m *mockLinkRepository) ListSlugs(ctx context.Context) ([]string, error) {
	if m.listSlugsFn != nil {
		return m.listSlugsFn(ctx)
	}
	return nil, nil
}

func (m *mockLinkRepository) Count(ctx context.Context) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockClickRepository struct {
	appendFn func(ctx context.Context, click *model.Click) error
	findFn   func(ctx context.Context, slug string) ([]model.Click, error)
	deleteFn func(ctx context.Context, linkID uint64) error
}

func (m *mockClickRepository) Append(ctx context.Context, click *model.Click) error {
	if m.appendFn != nil {
		return m.appendFn(ctx, click)
	}
	return nil
}

func (m *mockClickRepository) FindBySlug(ctx context.Context, slug string) ([]model.Click, error) {
	if m.findFn != nil {
		return m.findFn(ctx, slug)
	}
	return nil, nil
}

func (m *mockClickRepository) DeleteByLinkID(ctx context.Context, linkID uint64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, linkID)
	}
	return nil
}

type mockUserRepository struct {
	createFn     func(ctx context.Context, user *model.User) error
	getByEmailFn func(ctx context.Context, email string) (*model.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, repository.ErrUserNotFound
}

// captureRecorder collects clicks handed to it, optionally failing.
type captureRecorder struct {
	clicks []*model.Click
	err    error
}

func (r *captureRecorder) Record(ctx context.Context, click *model.Click) error {
	if r.err != nil {
		return r.err
	}
	r.clicks = append(r.clicks, click)
	return nil
}
