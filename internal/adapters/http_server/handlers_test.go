package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"reviewking/internal/app"
	"reviewking/internal/domain"
)

// ---- port fakes ----

type memCache struct {
	mu   sync.Mutex
	kv   map[string][]byte
	sets map[string]map[string]struct{}
}

func newMemCache() *memCache {
	return &memCache{kv: map[string][]byte{}, sets: map[string]map[string]struct{}{}}
}

func (m *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.kv[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (m *memCache) Set(_ context.Context, key string, v any, _ int) error {
	b, _ := json.Marshal(v)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv[key] = b
	return nil
}

func (m *memCache) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.kv, key)
	return nil
}

func (m *memCache) AddToSet(_ context.Context, key, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sets[key] == nil {
		m.sets[key] = map[string]struct{}{}
	}
	m.sets[key][member] = struct{}{}
	return nil
}

func (m *memCache) SetMembers(_ context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for member := range m.sets[key] {
		out = append(out, member)
	}
	return out, nil
}

type fakeFetcher struct {
	reviews []domain.Review
	err     error
}

func (f *fakeFetcher) Fetch(context.Context, string, int, int) ([]domain.Review, error) {
	return f.reviews, f.err
}

type fakeCatalog struct {
	mu     sync.Mutex
	added  []string
	failOn string
}

func (f *fakeCatalog) SearchProducts(_ context.Context, query string) ([]domain.CatalogProduct, error) {
	return []domain.CatalogProduct{{ID: "111", Title: "Match for " + query, Handle: "match"}}, nil
}

func (f *fakeCatalog) GetProduct(context.Context, string) (domain.CatalogProduct, error) {
	return domain.CatalogProduct{ID: "111"}, nil
}

func (f *fakeCatalog) AddReview(_ context.Context, _ string, r domain.Review) (string, error) {
	if r.ID == f.failOn {
		return "", fmt.Errorf("metafield rejected")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, r.ID)
	return r.ID, nil
}

type fakeEvents struct {
	mu      sync.Mutex
	events  []domain.Event
	imports []domain.ImportRecord
}

func (f *fakeEvents) LogEvent(_ context.Context, e domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.CreatedAt = time.Now()
	f.events = append(f.events, e)
	return nil
}

func (f *fakeEvents) RecentEvents(_ context.Context, limit int) ([]domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) > limit {
		return f.events[len(f.events)-limit:], nil
	}
	return f.events, nil
}

func (f *fakeEvents) CountEvents(_ context.Context, category, action string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if (category == "" || e.Category == category) && (action == "" || e.Action == action) {
			n++
		}
	}
	return n, nil
}

func (f *fakeEvents) LogImport(_ context.Context, rec domain.ImportRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imports = append(f.imports, rec)
	return nil
}

// ---- harness ----

type harness struct {
	srv     *httptest.Server
	cache   *memCache
	catalog *fakeCatalog
	events  *fakeEvents
}

func newHarness(t *testing.T, fetcher domain.Fetcher) *harness {
	t.Helper()
	cache := newMemCache()
	catalog := &fakeCatalog{}
	events := &fakeEvents{}

	fetchers := map[domain.Platform]domain.Fetcher{
		domain.PlatformAliExpress: fetcher,
	}
	extract := app.NewExtractService(fetchers, app.DefaultScoreConfig(), cache, time.Minute, 150)
	sessions := app.NewSessionService(cache, time.Hour)
	imports := app.NewImportService(catalog, sessions, events)

	s := New()
	NewHandlers(extract, imports, sessions, catalog, events, 100).Register(s.Router())

	srv := httptest.NewServer(s.Mux())
	t.Cleanup(srv.Close)
	return &harness{srv: srv, cache: cache, catalog: catalog, events: events}
}

func (h *harness) getJSON(t *testing.T, path string, wantStatus int) map[string]any {
	t.Helper()
	resp, err := http.Get(h.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantStatus, resp.StatusCode)
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (h *harness) postJSON(t *testing.T, path string, body any, wantStatus int) map[string]any {
	t.Helper()
	b, _ := json.Marshal(body)
	resp, err := http.Post(h.srv.URL+path, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantStatus, resp.StatusCode)
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return out
}

func sampleReviews() []domain.Review {
	return []domain.Review{
		{ID: "r1", Platform: domain.PlatformAliExpress, Text: strings.Repeat("great quality product ", 10), Rating: 100, Verified: true, Images: []string{"a", "b"}, Country: "US", Position: 1},
		{ID: "r2", Platform: domain.PlatformAliExpress, Text: "short", Rating: 40, Country: "DE", Position: 2},
	}
}

// ---- tests ----

func TestImportURLPreview(t *testing.T) {
	h := newHarness(t, &fakeFetcher{reviews: sampleReviews()})

	out := h.getJSON(t, "/admin/reviews/import/url?productId=777&platform=aliexpress", http.StatusOK)
	require.Equal(t, true, out["success"])
	require.NotEmpty(t, out["session_id"])

	reviews := out["reviews"].([]any)
	require.Len(t, reviews, 2)
	first := reviews[0].(map[string]any)
	require.Equal(t, "r1", first["id"], "highest quality ranks first")
	require.NotZero(t, first["quality_score"])
	require.Equal(t, true, first["ai_recommended"])

	pg := out["pagination"].(map[string]any)
	require.Equal(t, float64(1), pg["page"])
	require.Equal(t, float64(150), pg["total"])
	require.Equal(t, true, pg["has_next"])
}

func TestImportURLAliasRoute(t *testing.T) {
	h := newHarness(t, &fakeFetcher{reviews: sampleReviews()})
	out := h.getJSON(t, "/-/admin/reviews/import/url?productId=777", http.StatusOK)
	require.Equal(t, true, out["success"])
}

func TestImportURLValidation(t *testing.T) {
	h := newHarness(t, &fakeFetcher{reviews: sampleReviews()})

	out := h.getJSON(t, "/admin/reviews/import/url", http.StatusBadRequest)
	require.Equal(t, false, out["success"])
	require.Equal(t, "productId parameter required", out["error"])
	require.Equal(t, []any{}, out["reviews"], "error envelope carries an empty review list")
	val, present := out["pagination"]
	require.True(t, present)
	require.Nil(t, val, "error envelope pagination is explicit null")

	out = h.getJSON(t, "/admin/reviews/import/url?productId=1&platform=etsy", http.StatusBadRequest)
	require.Equal(t, false, out["success"])

	out = h.getJSON(t, "/admin/reviews/import/url?productId=1&rating=abc", http.StatusBadRequest)
	require.Equal(t, "Invalid parameters", out["error"])
}

func TestImportURLUpstreamExhausted(t *testing.T) {
	h := newHarness(t, &fakeFetcher{err: domain.ErrUpstreamUnavailable})

	out := h.getJSON(t, "/admin/reviews/import/url?productId=777", http.StatusOK)
	require.Equal(t, false, out["success"])
	require.Equal(t, "service_unavailable", out["error"])
	require.Contains(t, out["message"], "Oops! Something went wrong")
	require.Empty(t, out["reviews"])
}

func TestSkipThenBulkImport(t *testing.T) {
	h := newHarness(t, &fakeFetcher{reviews: sampleReviews()})

	preview := h.getJSON(t, "/admin/reviews/import/url?productId=777", http.StatusOK)
	sessionID := preview["session_id"].(string)

	out := h.postJSON(t, "/admin/reviews/skip", map[string]any{
		"review_id": "r1", "session_id": sessionID,
	}, http.StatusOK)
	require.Equal(t, true, out["success"])

	out = h.postJSON(t, "/admin/reviews/import/bulk", map[string]any{
		"reviews":            sampleReviews(),
		"shopify_product_id": "111",
		"session_id":         sessionID,
	}, http.StatusOK)
	require.Equal(t, true, out["success"])
	require.Equal(t, float64(1), out["imported_count"], "skipped review excluded")
	require.Equal(t, float64(1), out["skipped_count"])
	require.Equal(t, []string{"r2"}, h.catalog.added)
}

func TestBulkImportValidation(t *testing.T) {
	h := newHarness(t, &fakeFetcher{})

	out := h.postJSON(t, "/admin/reviews/import/bulk", map[string]any{
		"reviews": []any{},
	}, http.StatusBadRequest)
	require.Equal(t, "No reviews provided", out["error"])

	out = h.postJSON(t, "/admin/reviews/import/bulk", map[string]any{
		"reviews": sampleReviews(),
	}, http.StatusBadRequest)
	require.Equal(t, "Shopify product ID required", out["error"])
}

func TestImportSingle(t *testing.T) {
	h := newHarness(t, &fakeFetcher{})

	review := sampleReviews()[0]
	out := h.postJSON(t, "/admin/reviews/import/single", map[string]any{
		"review":             review,
		"shopify_product_id": "111",
	}, http.StatusOK)
	require.Equal(t, true, out["success"])
	require.Equal(t, "Review imported successfully", out["message"])
	require.Equal(t, []string{"r1"}, h.catalog.added)
	require.Len(t, h.events.imports, 1)
}

func TestSearchProducts(t *testing.T) {
	h := newHarness(t, &fakeFetcher{})

	out := h.getJSON(t, "/shopify/products/search?q=hoops", http.StatusOK)
	require.Equal(t, true, out["success"])
	require.Len(t, out["products"], 1)

	out = h.getJSON(t, "/shopify/products/search", http.StatusBadRequest)
	require.Equal(t, "Search query required", out["error"])
}

func TestTrackEventAndSummary(t *testing.T) {
	h := newHarness(t, &fakeFetcher{})

	resp, err := http.Get(h.srv.URL + "/e?cat=Import+by+URL&a=preview&c=client1&country=US&lang=en")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	b, _ := json.Marshal(map[string]string{"cat": "review", "a": "Post imported"})
	resp, err = http.Post(h.srv.URL+"/analytics/track", "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	out := h.getJSON(t, "/admin/analytics", http.StatusOK)
	require.Equal(t, true, out["success"])
	require.Equal(t, float64(2), out["total_events"])
	stats := out["stats"].(map[string]any)
	require.Equal(t, float64(1), stats["imports"])
	require.Equal(t, float64(1), stats["previews"])
}

func TestHealthAndIndex(t *testing.T) {
	h := newHarness(t, &fakeFetcher{})

	out := h.getJSON(t, "/health", http.StatusOK)
	require.Equal(t, "healthy", out["status"])

	out = h.getJSON(t, "/", http.StatusOK)
	require.Equal(t, "operational", out["status"])
	require.Contains(t, out["platforms_supported"], "aliexpress")
}
