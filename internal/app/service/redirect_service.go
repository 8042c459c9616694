package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/slugster/slugster/internal/app/device"
	"github.com/slugster/slugster/internal/app/model"
	"github.com/slugster/slugster/internal/app/repository"
	infraprom "github.com/slugster/slugster/internal/infra/prometheus"
	infraredis "github.com/slugster/slugster/internal/infra/redis"
	"go.uber.org/zap"
)

// VisitMeta carries the raw request attributes a visit is classified from.
type VisitMeta struct {
	UserAgent     string
	Referer       string
	ForwardedFor  string
	RemoteAddr    string
	CFCountry     string
	VercelCountry string
}

// RedirectService resolves a slug to its target URL and records the visit.
//
// Owned links get an atomic counter bump plus a click record; anonymous
// links are not tracked and may be served straight from cache. Click
// recording is best-effort: once the link is found the visitor is always
// redirected, whether or not the click makes it into the log.
type RedirectService struct {
	links    repository.LinkRepository
	filter   *SlugFilter
	cache    *infraredis.LinkCache
	recorder ClickRecorder
	logger   *zap.Logger
}

// RedirectDeps groups the collaborators of a RedirectService. Filter,
// cache and recorder are optional.
type RedirectDeps struct {
	Links    repository.LinkRepository
	Filter   *SlugFilter
	Cache    *infraredis.LinkCache
	Recorder ClickRecorder
	Logger   *zap.Logger
}

// NewRedirectService creates a redirect service with the provided dependencies.
func NewRedirectService(deps RedirectDeps) *RedirectService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedirectService{
		links:    deps.Links,
		filter:   deps.Filter,
		cache:    deps.Cache,
		recorder: deps.Recorder,
		logger:   logger,
	}
}

// Visit resolves slug and returns the redirect target, recording the
// visit when the link is owned.
func (s *RedirectService) Visit(ctx context.Context, slug string, meta VisitMeta) (string, error) {
	if s.filter != nil && !s.filter.MayExist(slug) {
		return "", repository.ErrLinkNotFound
	}

	if s.cache != nil {
		if target, ok := s.cache.GetURL(ctx, slug); ok {
			infraprom.RedirectsServed.WithLabelValues("false").Inc()
			return target, nil
		}
	}

	link, err := s.links.GetBySlug(ctx, slug)
	if err != nil {
		return "", err
	}

	if !link.Owned() {
		// Anonymous links carry no analytics, which also makes them
		// safe to cache.
		if s.cache != nil {
			s.cache.SetURL(ctx, slug, link.OriginalURL)
		}
		infraprom.RedirectsServed.WithLabelValues("false").Inc()
		return link.OriginalURL, nil
	}

	updated, err := s.links.RecordVisit(ctx, slug)
	if err != nil {
		// The link existed a moment ago; treat a vanished row as not found.
		return "", err
	}

	s.captureClick(ctx, updated, meta)

	infraprom.RedirectsServed.WithLabelValues("true").Inc()
	return link.OriginalURL, nil
}

// captureClick classifies the request and hands the click to the recorder.
// Failures are logged and swallowed: the redirect already happened.
func (s *RedirectService) captureClick(ctx context.Context, link *model.Link, meta VisitMeta) {
	if s.recorder == nil {
		return
	}

	ua := meta.UserAgent
	if ua == "" {
		ua = "unknown"
	}
	info := device.Classify(ua)

	var referer *string
	if meta.Referer != "" {
		referer = &meta.Referer
	}

	click := &model.Click{
		ID:        uuid.New().String(),
		LinkID:    link.ID,
		Slug:      link.Slug,
		IP:        clientIP(meta),
		UserAgent: ua,
		Device:    info.Device,
		Browser:   info.Browser,
		OS:        info.OS,
		Country:   clientCountry(meta),
		Referer:   referer,
	}

	if err := s.recorder.Record(ctx, click); err != nil {
		s.logger.Error("failed to record click",
			zap.String("slug", link.Slug),
			zap.Error(err))
	}
}

// clientIP prefers the first forwarded-for entry, then the raw connection
// address.
func clientIP(meta VisitMeta) string {
	if meta.ForwardedFor != "" {
		first := strings.TrimSpace(strings.SplitN(meta.ForwardedFor, ",", 2)[0])
		if first != "" {
			return first
		}
	}
	if meta.RemoteAddr != "" {
		return meta.RemoteAddr
	}
	return "unknown"
}

// clientCountry prefers the CDN-supplied header, then the platform one.
func clientCountry(meta VisitMeta) string {
	if meta.CFCountry != "" {
		return meta.CFCountry
	}
	if meta.VercelCountry != "" {
		return meta.VercelCountry
	}
	return "unknown"
}
