package app

import (
	"fmt"
	"strconv"

	"reviewking/internal/domain"
)

// ParseFilters converts raw query-string filter values into typed
// predicates. Non-numeric thresholds fail with ErrInvalidFilter; empty
// values are simply absent filters.
func ParseFilters(raw map[string]string) (domain.ReviewFilters, error) {
	var f domain.ReviewFilters

	if v := raw["rating"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return domain.ReviewFilters{}, fmt.Errorf("%w: rating=%q", domain.ErrInvalidFilter, v)
		}
		f.MinRating = &n
	}
	f.Country = raw["country"]
	if raw["with_photos"] == "true" {
		f.WithPhotos = true
	}
	if v := raw["min_quality_score"]; v != "" {
		q, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return domain.ReviewFilters{}, fmt.Errorf("%w: min_quality_score=%q", domain.ErrInvalidFilter, v)
		}
		f.MinQuality = &q
	}
	return f, nil
}

// ApplyFilters keeps the reviews satisfying every supplied predicate.
// The rating floor uses the review's native scale; the quality floor
// expects quality_score to already be populated. Idempotent.
func ApplyFilters(reviews []domain.Review, f domain.ReviewFilters) []domain.Review {
	if f.Empty() {
		return reviews
	}
	out := make([]domain.Review, 0, len(reviews))
	for _, r := range reviews {
		if f.MinRating != nil && r.Rating < *f.MinRating {
			continue
		}
		if f.Country != "" && r.Country != f.Country {
			continue
		}
		if f.WithPhotos && len(r.Images) == 0 {
			continue
		}
		if f.MinQuality != nil && float64(r.QualityScore) < *f.MinQuality {
			continue
		}
		out = append(out, r)
	}
	return out
}
