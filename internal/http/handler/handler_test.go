package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	appserver "github.com/slugster/slugster/internal/app/server"
	"github.com/slugster/slugster/internal/app/model"
	"github.com/slugster/slugster/internal/app/repository"
	"github.com/slugster/slugster/internal/app/service"
	"go.uber.org/zap"
)

// memoryLinks is an in-memory LinkRepository good enough to drive the full
// HTTP surface in tests.
type memoryLinks struct {
	mu     sync.Mutex
	nextID uint64
	links  map[string]*model.Link
}

func newMemoryLinks() *memoryLinks {
	return &memoryLinks{links: map[string]*model.Link{}}
}

func (m *memoryLinks) Create(ctx context.Context, link *model.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[link.Slug]; ok {
		return repository.ErrSlugTaken
	}
	m.nextID++
	link.ID = m.nextID
	link.CreatedAt = time.Now()
	cp := *link
	m.links[link.Slug] = &cp
	return nil
}

func (m *memoryLinks) GetBySlug(ctx context.Context, slug string) (*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[slug]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	cp := *link
	return &cp, nil
}

func (m *memoryLinks) RecordVisit(ctx context.Context, slug string) (*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[slug]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	now := time.Now()
	link.TotalClicks++
	link.LastVisitedAt = &now
	cp := *link
	return &cp, nil
}

func (m *memoryLinks) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Link
	for _, link := range m.links {
		if link.OwnerID != nil && *link.OwnerID == ownerID {
			out = append(out, *link)
		}
	}
	return out, nil
}

func (m *memoryLinks) DeleteBySlugForOwner(ctx context.Context, slug string, ownerID uint64) (*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[slug]
	if !ok || link.OwnerID == nil || *link.OwnerID != ownerID {
		return nil, repository.ErrLinkNotFound
	}
	delete(m.links, slug)
	return link, nil
}

func (m *memoryLinks) ListSlugs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for s := range m.links {
		out = append(out, s)
	}
	return out, nil
}

func (m *memoryLinks) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.links)), nil
}

type memoryClicks struct {
	mu     sync.Mutex
	clicks []model.Click
}

func (m *memoryClicks) Append(ctx context.Context, click *model.Click) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if click.CreatedAt.IsZero() {
		click.CreatedAt = time.Now()
	}
	m.clicks = append(m.clicks, *click)
	return nil
}

func (m *memoryClicks) FindBySlug(ctx context.Context, slug string) ([]model.Click, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Click
	for _, c := range m.clicks {
		if c.Slug == slug {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryClicks) DeleteByLinkID(ctx context.Context, linkID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.clicks[:0]
	for _, c := range m.clicks {
		if c.LinkID != linkID {
			kept = append(kept, c)
		}
	}
	m.clicks = kept
	return nil
}

type memoryUsers struct {
	mu     sync.Mutex
	nextID uint64
	users  map[string]*model.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[string]*model.User{}}
}

func (m *memoryUsers) Create(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Email]; ok {
		return repository.ErrEmailTaken
	}
	m.nextID++
	user.ID = m.nextID
	cp := *user
	m.users[user.Email] = &cp
	return nil
}

func (m *memoryUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

// appendRecorder persists clicks synchronously, standing in for the
// stream pipeline.
type appendRecorder struct {
	clicks repository.ClickRepository
}

func (r *appendRecorder) Record(ctx context.Context, click *model.Click) error {
	return r.clicks.Append(ctx, click)
}

type testEnv struct {
	server *appserver.Server
	links  *memoryLinks
	clicks *memoryClicks
	auth   *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	links := newMemoryLinks()
	clicks := &memoryClicks{}
	users := newMemoryUsers()
	logger := zap.NewNop()

	auth := service.NewAuthService(users, []byte("test-secret"), time.Hour)
	linkService := service.NewLinkService(links, clicks, nil, logger)
	statsService := service.NewStatsService(links, clicks)
	redirect := service.NewRedirectService(service.RedirectDeps{
		Links:    links,
		Recorder: &appendRecorder{clicks: clicks},
		Logger:   logger,
	})

	srv := appserver.New(appserver.Dependencies{
		Logger:   logger,
		Auth:     auth,
		Links:    linkService,
		Stats:    statsService,
		Redirect: redirect,
	})

	return &testEnv{server: srv, links: links, clicks: clicks, auth: auth}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, path, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.App().Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func (e *testEnv) signupAndLogin(t *testing.T, email string) string {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/signup", "", map[string]string{
		"name": "Tester", "email": email, "password": "pw123456",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d", resp.StatusCode)
	}

	resp = e.do(t, http.MethodPost, "/login", "", map[string]string{
		"email": email, "password": "pw123456",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode login body: %v", err)
	}
	if body.Token == "" {
		t.Fatal("login returned empty token")
	}
	return body.Token
}

func (e *testEnv) shorten(t *testing.T, token, url string) string {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/shorten", token, map[string]string{"url": url})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("shorten status = %d", resp.StatusCode)
	}

	var body struct {
		Data struct {
			Slug string `json:"slug"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode shorten body: %v", err)
	}
	if body.Data.Slug == "" {
		t.Fatal("shorten returned empty slug")
	}
	return body.Data.Slug
}

func TestShorten_MissingURL(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPost, "/shorten", "", map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestVisit_UnknownSlug(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/nothere1", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestVisit_AnonymousLink(t *testing.T) {
	env := newTestEnv(t)
	slug := env.shorten(t, "", "https://example.com")

	resp := env.do(t, http.MethodGet, "/"+slug, "", nil)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "https://example.com" {
		t.Fatalf("location = %q", loc)
	}

	link, err := env.links.GetBySlug(context.Background(), slug)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if link.TotalClicks != 0 {
		t.Fatalf("anonymous link tracked: totalClicks = %d", link.TotalClicks)
	}
	if len(env.clicks.clicks) != 0 {
		t.Fatalf("anonymous link produced %d click rows", len(env.clicks.clicks))
	}
}

func TestVisit_OwnedLinkTracked(t *testing.T) {
	env := newTestEnv(t)
	token := env.signupAndLogin(t, "owner@example.com")
	slug := env.shorten(t, token, "https://example.com")

	resp := env.do(t, http.MethodGet, "/"+slug, "", nil)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}

	link, err := env.links.GetBySlug(context.Background(), slug)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if link.TotalClicks != 1 {
		t.Fatalf("totalClicks = %d, want 1", link.TotalClicks)
	}
	if link.LastVisitedAt == nil {
		t.Fatal("lastVisitedAt not set")
	}
	if len(env.clicks.clicks) != 1 {
		t.Fatalf("click rows = %d, want 1", len(env.clicks.clicks))
	}
}

func TestStats_AuthorizationAndReport(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signupAndLogin(t, "owner@example.com")
	other := env.signupAndLogin(t, "other@example.com")
	slug := env.shorten(t, owner, "https://example.com")

	env.do(t, http.MethodGet, "/"+slug, "", nil)
	env.do(t, http.MethodGet, "/"+slug, "", nil)

	if resp := env.do(t, http.MethodGet, "/stats/"+slug, "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous stats status = %d, want 401", resp.StatusCode)
	}
	if resp := env.do(t, http.MethodGet, "/stats/"+slug, other, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("non-owner stats status = %d, want 401", resp.StatusCode)
	}

	resp := env.do(t, http.MethodGet, "/stats/"+slug, owner, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner stats status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Data struct {
			TotalClicks int `json:"totalClicks"`
			Devices     []struct {
				Device string `json:"device"`
				Count  int    `json:"count"`
			} `json:"devices"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode stats body: %v", err)
	}
	if body.Data.TotalClicks != 2 {
		t.Fatalf("totalClicks = %d, want 2", body.Data.TotalClicks)
	}
	sum := 0
	for _, d := range body.Data.Devices {
		sum += d.Count
	}
	if sum != body.Data.TotalClicks {
		t.Fatalf("device counts sum to %d, want %d", sum, body.Data.TotalClicks)
	}
}

func TestDelete_OwnershipAndCascade(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signupAndLogin(t, "owner@example.com")
	other := env.signupAndLogin(t, "other@example.com")
	slug := env.shorten(t, owner, "https://example.com")

	env.do(t, http.MethodGet, "/"+slug, "", nil)

	if resp := env.do(t, http.MethodDelete, "/delete/"+slug, other, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("non-owner delete status = %d, want 404", resp.StatusCode)
	}
	if _, err := env.links.GetBySlug(context.Background(), slug); err != nil {
		t.Fatal("non-owner delete must not remove the link")
	}

	if resp := env.do(t, http.MethodDelete, "/delete/"+slug, owner, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("owner delete status = %d, want 200", resp.StatusCode)
	}
	if len(env.clicks.clicks) != 0 {
		t.Fatalf("click rows survived the cascade: %d", len(env.clicks.clicks))
	}
	if resp := env.do(t, http.MethodGet, "/stats/"+slug, owner, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("stats after delete status = %d, want 404", resp.StatusCode)
	}
}

func TestMyURLs(t *testing.T) {
	env := newTestEnv(t)
	token := env.signupAndLogin(t, "owner@example.com")

	if resp := env.do(t, http.MethodGet, "/my-urls", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous my-urls status = %d, want 401", resp.StatusCode)
	}
	if resp := env.do(t, http.MethodGet, "/my-urls", token, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("empty my-urls status = %d, want 404", resp.StatusCode)
	}

	for i := 0; i < 3; i++ {
		env.shorten(t, token, fmt.Sprintf("https://example.com/%d", i))
	}

	resp := env.do(t, http.MethodGet, "/my-urls", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("my-urls status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Data struct {
			URLs []struct {
				Slug string `json:"slug"`
			} `json:"urls"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode my-urls body: %v", err)
	}
	if len(body.Data.URLs) != 3 {
		t.Fatalf("urls = %d, want 3", len(body.Data.URLs))
	}
}

func TestCountAll(t *testing.T) {
	env := newTestEnv(t)
	env.shorten(t, "", "https://one.example.com")
	env.shorten(t, "", "https://two.example.com")

	resp := env.do(t, http.MethodGet, "/get-number-of-all-urls", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("count status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Data struct {
			Count int64 `json:"count"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode count body: %v", err)
	}
	if body.Data.Count != 2 {
		t.Fatalf("count = %d, want 2", body.Data.Count)
	}
}
