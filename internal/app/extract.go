package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"reviewking/internal/domain"
)

// Shown to callers when every acquisition strategy came back empty.
const unavailableMessage = "Oops! Something went wrong while fetching reviews. " +
	"Our team is working on it. Please try again in a few minutes."

const codeServiceUnavailable = "service_unavailable"

type ExtractRequest struct {
	Platform  string
	ProductID string
	Page      int
	PerPage   int
	Filters   domain.ReviewFilters
}

// ExtractService runs the full pipeline: platform dispatch, fetch
// strategy chain, scoring, filtering, ranking and the result envelope.
// Successful unfiltered envelopes are cached for repeat previews.
type ExtractService struct {
	fetchers     map[domain.Platform]domain.Fetcher
	scoring      ScoreConfig
	cache        domain.Cache
	cacheTTL     time.Duration
	nominalTotal int
}

func NewExtractService(fetchers map[domain.Platform]domain.Fetcher, scoring ScoreConfig, cache domain.Cache, cacheTTL time.Duration, nominalTotal int) *ExtractService {
	return &ExtractService{
		fetchers:     fetchers,
		scoring:      scoring,
		cache:        cache,
		cacheTTL:     cacheTTL,
		nominalTotal: nominalTotal,
	}
}

// Extract validates the request, acquires reviews through the platform's
// strategy chain and produces the result envelope. Validation failures
// return an error; total upstream failure returns a structured
// success=false envelope instead.
func (s *ExtractService) Extract(ctx context.Context, req ExtractRequest) (domain.ExtractResult, error) {
	if strings.TrimSpace(req.ProductID) == "" {
		return domain.ExtractResult{}, domain.ErrMissingProductID
	}
	platform, err := domain.ParsePlatform(req.Platform)
	if err != nil {
		return domain.ExtractResult{}, err
	}
	fetcher, ok := s.fetchers[platform]
	if !ok {
		return domain.ExtractResult{}, domain.ErrUnsupportedPlatform
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	perPage := req.PerPage
	if perPage < 1 {
		perPage = 1
	}

	cacheable := s.cache != nil && req.Filters.Empty()
	key := fmt.Sprintf("extract:%s:%s:%d:%d", platform, req.ProductID, page, perPage)
	if cacheable {
		var cached domain.ExtractResult
		if ok, _ := s.cache.Get(ctx, key, &cached); ok {
			return cached, nil
		}
	}

	reviews, err := fetcher.Fetch(ctx, req.ProductID, page, perPage)
	if errors.Is(err, domain.ErrUpstreamUnavailable) {
		log.Warn().
			Str("platform", string(platform)).
			Str("product_id", req.ProductID).
			Msg("all fetch strategies exhausted")
		return domain.ExtractResult{
			Success:        false,
			ErrorCode:      codeServiceUnavailable,
			Message:        unavailableMessage,
			Reviews:        []domain.Review{},
			FiltersApplied: req.Filters,
		}, nil
	}
	if err != nil {
		return domain.ExtractResult{}, err
	}

	// Score before filtering so the quality floor sees real scores.
	s.scoring.ScoreAll(reviews)
	reviews = ApplyFilters(reviews, req.Filters)
	SortByQuality(reviews)
	if reviews == nil {
		reviews = []domain.Review{}
	}

	pg := Paginate(page, perPage, s.nominalTotal)
	res := domain.ExtractResult{
		Success:        true,
		Reviews:        reviews,
		Pagination:     &pg,
		Stats:          Summarize(reviews),
		FiltersApplied: req.Filters,
	}
	if cacheable {
		_ = s.cache.Set(ctx, key, res, int(s.cacheTTL.Seconds()))
	}
	return res, nil
}
