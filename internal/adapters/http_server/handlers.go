package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"reviewking/internal/adapters/observability"
	"reviewking/internal/app"
	"reviewking/internal/domain"
)

const recentEventsLimit = 50

// Handlers binds the application services to the public route surface.
// The admin paths mirror the import tool the storefront bookmarklet
// talks to, including the /-/ prefixed aliases.
type Handlers struct {
	extract  *app.ExtractService
	imports  *app.ImportService
	sessions *app.SessionService
	catalog  domain.CatalogClient
	events   domain.EventStore

	defaultPerPage int
}

func NewHandlers(extract *app.ExtractService, imports *app.ImportService, sessions *app.SessionService, catalog domain.CatalogClient, events domain.EventStore, defaultPerPage int) *Handlers {
	if defaultPerPage <= 0 {
		defaultPerPage = 100
	}
	return &Handlers{
		extract:        extract,
		imports:        imports,
		sessions:       sessions,
		catalog:        catalog,
		events:         events,
		defaultPerPage: defaultPerPage,
	}
}

func (h *Handlers) Register(r chi.Router) {
	r.Get("/", h.index)
	r.Get("/health", h.health)

	r.Get("/admin/reviews/import/url", h.importURL)
	r.Get("/-/admin/reviews/import/url", h.importURL)
	r.Post("/admin/reviews/import/single", h.importSingle)
	r.Post("/admin/reviews/skip", h.skipReview)
	r.Post("/admin/reviews/import/bulk", h.importBulk)

	r.Get("/shopify/products/search", h.searchProducts)

	r.Get("/e", h.trackEvent)
	r.Post("/e", h.trackEvent)
	r.Get("/analytics/track", h.trackEvent)
	r.Post("/analytics/track", h.trackEvent)
	r.Get("/admin/analytics", h.analyticsSummary)
}

// ---- shared response helpers ----

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	// Error bodies keep the envelope shape clients already parse:
	// an empty review list and an explicit null pagination block.
	writeJSON(w, status, map[string]any{
		"success":    false,
		"error":      msg,
		"reviews":    []domain.Review{},
		"pagination": nil,
	})
}

// ---- routes ----

func (h *Handlers) index(w http.ResponseWriter, r *http.Request) {
	platforms := make([]string, 0, len(domain.Platforms()))
	for _, p := range domain.Platforms() {
		platforms = append(platforms, string(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service":             "ReviewKing API",
		"status":              "operational",
		"platforms_supported": platforms,
		"endpoints": map[string]string{
			"import_url":    "/admin/reviews/import/url",
			"import_single": "/admin/reviews/import/single",
			"bulk_import":   "/admin/reviews/import/bulk",
			"analytics":     "/e",
		},
	})
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type extractResponse struct {
	domain.ExtractResult
	SessionID string `json:"session_id,omitempty"`
}

// importURL runs the extraction pipeline and opens a preview session.
func (h *Handlers) importURL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	productID := q.Get("productId")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "productId parameter required")
		return
	}
	platform := q.Get("platform")
	if platform == "" {
		platform = string(domain.PlatformAliExpress)
	}
	page := intParam(q.Get("page"), 1)
	perPage := intParam(q.Get("per_page"), h.defaultPerPage)

	filters, err := app.ParseFilters(map[string]string{
		"rating":            q.Get("rating"),
		"country":           q.Get("country"),
		"with_photos":       q.Get("with_photos"),
		"min_quality_score": q.Get("min_quality_score"),
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid parameters")
		return
	}

	result, err := h.extract.Extract(r.Context(), app.ExtractRequest{
		Platform:  platform,
		ProductID: productID,
		Page:      page,
		PerPage:   perPage,
		Filters:   filters,
	})
	switch {
	case errors.Is(err, domain.ErrMissingProductID):
		writeError(w, http.StatusBadRequest, "productId parameter required")
		return
	case errors.Is(err, domain.ErrUnsupportedPlatform):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported platform: %s", platform))
		return
	case err != nil:
		log.Error().Err(err).Str("product_id", productID).Msg("extraction failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	observability.ObserveExtraction(platform, extractionOutcome(result))

	resp := extractResponse{ExtractResult: result}
	if h.sessions != nil {
		sess, err := h.sessions.Start(r.Context(), q.Get("id"), productID, domain.Platform(platform))
		if err != nil {
			log.Warn().Err(err).Msg("session start failed")
		} else {
			resp.SessionID = sess.ID
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func extractionOutcome(res domain.ExtractResult) string {
	switch {
	case !res.Success:
		return "error"
	case len(res.Reviews) == 0:
		return "empty"
	default:
		return "ok"
	}
}

type singleImportRequest struct {
	Review           *domain.Review `json:"review"`
	ShopifyProductID string         `json:"shopify_product_id"`
	SessionID        string         `json:"session_id"`
}

func (h *Handlers) importSingle(w http.ResponseWriter, r *http.Request) {
	var req singleImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Review == nil {
		writeError(w, http.StatusBadRequest, "Review data required")
		return
	}

	imported, err := h.imports.ImportOne(r.Context(), *req.Review, req.ShopifyProductID, req.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidFilter) {
			writeError(w, http.StatusBadRequest, "Shopify product ID required")
			return
		}
		log.Error().Err(err).Str("review", req.Review.ID).Msg("single import failed")
		observability.ObserveImport("single", "failed")
		writeError(w, http.StatusInternalServerError, "Import failed")
		return
	}
	observability.ObserveImport("single", "ok")

	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"imported_review": imported,
		"message":         "Review imported successfully",
	})
}

type skipRequest struct {
	ReviewID  string `json:"review_id"`
	SessionID string `json:"session_id"`
}

func (h *Handlers) skipReview(w http.ResponseWriter, r *http.Request) {
	var req skipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ReviewID == "" || req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "Review ID and session ID required")
		return
	}
	if err := h.sessions.Skip(r.Context(), req.SessionID, req.ReviewID); err != nil {
		log.Error().Err(err).Str("review", req.ReviewID).Msg("skip failed")
		writeError(w, http.StatusInternalServerError, "Skip failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Review skipped",
	})
}

type bulkImportRequest struct {
	Reviews          []domain.Review      `json:"reviews"`
	ShopifyProductID string               `json:"shopify_product_id"`
	SessionID        string               `json:"session_id"`
	Filters          domain.ReviewFilters `json:"filters"`
}

func (h *Handlers) importBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Reviews) == 0 {
		writeError(w, http.StatusBadRequest, "No reviews provided")
		return
	}
	if req.ShopifyProductID == "" {
		writeError(w, http.StatusBadRequest, "Shopify product ID required")
		return
	}

	minQuality := 0.0
	if req.Filters.MinQuality != nil {
		minQuality = *req.Filters.MinQuality
	}
	outcome, err := h.imports.ImportBulk(r.Context(), req.Reviews, req.ShopifyProductID, req.SessionID, minQuality)
	if err != nil {
		log.Error().Err(err).Msg("bulk import failed")
		writeError(w, http.StatusInternalServerError, "Bulk import failed")
		return
	}
	for range outcome.Imported {
		observability.ObserveImport("bulk", "ok")
	}
	for range outcome.Failed {
		observability.ObserveImport("bulk", "failed")
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"imported_count":   len(outcome.Imported),
		"failed_count":     len(outcome.Failed),
		"skipped_count":    outcome.SkippedCount,
		"imported_reviews": outcome.Imported,
		"failed_reviews":   outcome.Failed,
		"message": fmt.Sprintf("Bulk import completed: %d imported, %d failed, %d skipped",
			len(outcome.Imported), len(outcome.Failed), outcome.SkippedCount),
	})
}

func (h *Handlers) searchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Search query required")
		return
	}
	products, err := h.catalog.SearchProducts(r.Context(), query)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("product search failed")
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"products": products,
	})
}

// trackEvent accepts the short-form analytics beacon. It never fails
// outward: a storefront widget must not see tracking errors.
func (h *Handlers) trackEvent(w http.ResponseWriter, r *http.Request) {
	params := map[string]string{}
	if r.Method == http.MethodPost {
		_ = json.NewDecoder(r.Body).Decode(&params)
	} else {
		for k, vs := range r.URL.Query() {
			if len(vs) > 0 {
				params[k] = vs[0]
			}
		}
	}

	e := domain.Event{
		Category:  defaulted(params["cat"], "unknown"),
		Action:    defaulted(params["a"], "unknown"),
		ClientID:  params["c"],
		Country:   params["country"],
		Language:  params["lang"],
		UserAgent: r.UserAgent(),
		IP:        remoteIP(r),
	}
	if h.events != nil {
		if err := h.events.LogEvent(r.Context(), e); err != nil {
			log.Error().Err(err).Msg("analytics event not recorded")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

type eventView struct {
	Category  string `json:"category"`
	Action    string `json:"action"`
	ClientID  string `json:"client_id"`
	Country   string `json:"country"`
	Language  string `json:"language"`
	Timestamp string `json:"timestamp"`
}

func (h *Handlers) analyticsSummary(w http.ResponseWriter, r *http.Request) {
	total, err := h.events.CountEvents(r.Context(), "", "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	recent, err := h.events.RecentEvents(r.Context(), recentEventsLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	imports, _ := h.events.CountEvents(r.Context(), "", "Post imported")
	previews, _ := h.events.CountEvents(r.Context(), "Import by URL", "")

	views := make([]eventView, 0, len(recent))
	for _, e := range recent {
		views = append(views, eventView{
			Category:  e.Category,
			Action:    e.Action,
			ClientID:  e.ClientID,
			Country:   e.Country,
			Language:  e.Language,
			Timestamp: e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"total_events":  total,
		"recent_events": views,
		"stats": map[string]int{
			"imports":  imports,
			"previews": previews,
		},
	})
}

func intParam(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func defaulted(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
