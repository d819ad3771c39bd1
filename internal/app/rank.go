package app

import (
	"sort"

	"reviewking/internal/domain"
)

// SortByQuality orders reviews by quality score descending. The sort is
// stable so same-score reviews keep their extraction order, which is
// itself the position order.
func SortByQuality(reviews []domain.Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].QualityScore > reviews[j].QualityScore
	})
}

// Summarize computes aggregate stats over the returned set. All fields
// are zero for an empty set.
func Summarize(reviews []domain.Review) domain.Stats {
	var s domain.Stats
	if len(reviews) == 0 {
		return s
	}
	var ratingSum, qualitySum int
	for _, r := range reviews {
		if len(r.Images) > 0 {
			s.WithPhotos++
		}
		if r.AIRecommended {
			s.AIRecommended++
		}
		ratingSum += r.Rating
		qualitySum += r.QualityScore
	}
	n := float64(len(reviews))
	s.AverageRating = float64(ratingSum) / n
	s.AverageQuality = float64(qualitySum) / n
	return s
}

// Paginate builds the envelope from the nominal total via ceiling
// division.
func Paginate(page, perPage, total int) domain.Pagination {
	return domain.Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		HasNext:    page*perPage < total,
		HasPrev:    page > 1,
		TotalPages: (total + perPage - 1) / perPage,
	}
}
