package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"reviewking/internal/domain"
)

// At most this many reviews go to the catalog per bulk call.
const bulkImportLimit = 50

type ImportedReview struct {
	ID               string `json:"id"`
	CatalogReviewID  string `json:"review_id"`
	ShopifyProductID string `json:"shopify_product_id"`
	QualityScore     int    `json:"quality_score"`
	ImportedAt       string `json:"imported_at"`
}

type FailedImport struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type BulkOutcome struct {
	Imported     []ImportedReview `json:"imported_reviews"`
	Failed       []FailedImport   `json:"failed_reviews"`
	SkippedCount int              `json:"skipped_count"`
}

// ImportService pushes extracted reviews into the destination catalog
// and records the outcome for analytics and session tracking.
type ImportService struct {
	catalog  domain.CatalogClient
	sessions *SessionService
	events   domain.EventStore
}

func NewImportService(catalog domain.CatalogClient, sessions *SessionService, events domain.EventStore) *ImportService {
	return &ImportService{catalog: catalog, sessions: sessions, events: events}
}

// ImportOne writes a single review to the catalog product.
func (s *ImportService) ImportOne(ctx context.Context, r domain.Review, productID, sessionID string) (ImportedReview, error) {
	if productID == "" {
		return ImportedReview{}, fmt.Errorf("%w: catalog product id required", domain.ErrInvalidFilter)
	}
	catalogID, err := s.catalog.AddReview(ctx, productID, r)
	if err != nil {
		return ImportedReview{}, fmt.Errorf("add review %s: %w", r.ID, err)
	}
	s.logImport(ctx, r, productID, sessionID)
	if s.sessions != nil {
		_ = s.sessions.RecordImports(ctx, sessionID, 1)
	}
	return ImportedReview{
		ID:               r.ID,
		CatalogReviewID:  catalogID,
		ShopifyProductID: productID,
		QualityScore:     r.QualityScore,
		ImportedAt:       time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// ImportBulk writes many reviews at once, excluding ids skipped during
// the session and anything under the optional quality floor. Individual
// catalog failures do not abort the batch.
func (s *ImportService) ImportBulk(ctx context.Context, reviews []domain.Review, productID, sessionID string, minQuality float64) (BulkOutcome, error) {
	if productID == "" {
		return BulkOutcome{}, fmt.Errorf("%w: catalog product id required", domain.ErrInvalidFilter)
	}

	var skipped map[string]struct{}
	if s.sessions != nil && sessionID != "" {
		var err error
		skipped, err = s.sessions.Skipped(ctx, sessionID)
		if err != nil {
			log.Warn().Err(err).Str("session", sessionID).Msg("skip set unavailable")
		}
	}

	eligible := make([]domain.Review, 0, len(reviews))
	for _, r := range reviews {
		if _, ok := skipped[r.ID]; ok {
			continue
		}
		if float64(r.QualityScore) < minQuality {
			continue
		}
		eligible = append(eligible, r)
	}
	if len(eligible) > bulkImportLimit {
		eligible = eligible[:bulkImportLimit]
	}

	out := BulkOutcome{
		Imported:     []ImportedReview{},
		Failed:       []FailedImport{},
		SkippedCount: len(skipped),
	}
	for _, r := range eligible {
		catalogID, err := s.catalog.AddReview(ctx, productID, r)
		if err != nil {
			log.Warn().Err(err).Str("review", r.ID).Msg("bulk import item failed")
			out.Failed = append(out.Failed, FailedImport{ID: r.ID, Error: err.Error()})
			continue
		}
		s.logImport(ctx, r, productID, sessionID)
		out.Imported = append(out.Imported, ImportedReview{
			ID:               r.ID,
			CatalogReviewID:  catalogID,
			ShopifyProductID: productID,
			QualityScore:     r.QualityScore,
			ImportedAt:       time.Now().UTC().Format(time.RFC3339),
		})
	}

	if s.sessions != nil {
		_ = s.sessions.RecordImports(ctx, sessionID, len(out.Imported))
	}
	return out, nil
}

func (s *ImportService) logImport(ctx context.Context, r domain.Review, productID, sessionID string) {
	if s.events == nil {
		return
	}
	err := s.events.LogImport(ctx, domain.ImportRecord{
		ReviewID:     r.ID,
		SessionID:    sessionID,
		ProductID:    productID,
		Platform:     r.Platform,
		QualityScore: r.QualityScore,
	})
	if err != nil {
		log.Error().Err(err).Str("review", r.ID).Msg("record import failed")
	}
}
