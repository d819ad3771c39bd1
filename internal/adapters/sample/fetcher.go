// Package sample serves deterministic demo reviews for platforms whose
// live connectors are not built yet. The generator is pure: the same
// (platform, product, page) always yields the same batch, so previews
// and cached envelopes stay stable.
package sample

import (
	"context"
	"fmt"

	"reviewking/internal/domain"
)

type template struct {
	name   string
	text   string
	rating int
	images []string
}

var templates = []template{
	{
		name:   "A***v",
		text:   "These are beautiful pieces honestly. Second time I bought them, like that much so. Amazing for catching the eyes of possible clients.",
		rating: 5,
		images: []string{"https://via.placeholder.com/200x200/4CAF50/ffffff?text=Photo+1"},
	},
	{
		name:   "M***k",
		text:   "Great quality! Fast shipping and exactly as described. Very happy with this purchase.",
		rating: 5,
		images: []string{"https://via.placeholder.com/200x200/2196F3/ffffff?text=Photo+2", "https://via.placeholder.com/200x200/2196F3/ffffff?text=Photo+3"},
	},
	{
		name:   "S***e",
		text:   "Perfect size and color. Very happy with this purchase.",
		rating: 4,
		images: []string{},
	},
	{
		name:   "J***n",
		text:   "Item as described. Good quality for the price. Would recommend!",
		rating: 4,
		images: []string{"https://via.placeholder.com/200x200/FF9800/ffffff?text=Photo+4"},
	},
	{
		name:   "L***a",
		text:   "Love these! Exactly what I was looking for. Will order again.",
		rating: 5,
		images: []string{"https://via.placeholder.com/200x200/E91E63/ffffff?text=Photo+5"},
	},
	{
		name:   "D***d",
		text:   "Good product. Shipping took a while but worth the wait.",
		rating: 4,
		images: []string{},
	},
}

var dates = []string{
	"2024-12-15", "2024-12-10", "2024-12-05", "2024-11-28",
	"2024-11-20", "2024-11-15", "2024-11-10", "2024-11-05",
}

var countries = []string{"US", "CA", "UK", "DE", "AU", "FR"}

// Fetcher generates reviews for one platform.
type Fetcher struct {
	platform domain.Platform
}

func NewFetcher(platform domain.Platform) *Fetcher {
	return &Fetcher{platform: platform}
}

var _ domain.Fetcher = (*Fetcher)(nil)

func (f *Fetcher) Fetch(_ context.Context, productID string, page, perPage int) ([]domain.Review, error) {
	start := (page - 1) * perPage
	reviews := make([]domain.Review, 0, perPage)
	for i := 0; i < perPage; i++ {
		idx := start + i
		tpl := templates[idx%len(templates)]
		images := make([]string, len(tpl.images))
		copy(images, tpl.images)
		reviews = append(reviews, domain.Review{
			ID:           fmt.Sprintf("%s_%s_%d", f.platform, productID, idx+1),
			Platform:     f.platform,
			ProductID:    productID,
			ReviewerName: tpl.name,
			Text:         tpl.text,
			Rating:       tpl.rating,
			Date:         dates[idx%len(dates)],
			Country:      countries[idx%len(countries)],
			Verified:     true,
			Images:       images,
			HelpfulCount: idx * 7 % 51,
			Position:     idx + 1,
		})
	}
	return reviews, nil
}
