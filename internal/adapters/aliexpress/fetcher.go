package aliexpress

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"reviewking/internal/adapters/observability"
	"reviewking/internal/domain"
)

// The feedback API truncates every response to this many records no
// matter what pageSize the request asks for.
const apiBatchSize = 20

// Fetcher acquires aliexpress reviews through a fixed strategy chain:
// feedback API, embedded page state, DOM scrape, then a relay liveness
// probe. The first strategy returning a non-empty batch wins; a failed
// strategy is logged and demoted to the next one.
type Fetcher struct {
	client *Client
}

func NewFetcher(c *Client) *Fetcher { return &Fetcher{client: c} }

var _ domain.Fetcher = (*Fetcher)(nil)

func (f *Fetcher) Fetch(ctx context.Context, productID string, page, perPage int) ([]domain.Review, error) {
	if reviews := f.fromAPI(ctx, productID, perPage); len(reviews) > 0 {
		observability.ObserveStrategy("aliexpress", "api")
		return reviews, nil
	}

	pageBody := f.productPage(ctx, productID)
	if pageBody != nil {
		if reviews := f.fromEmbeddedState(pageBody, productID); len(reviews) > 0 {
			observability.ObserveStrategy("aliexpress", "embedded_state")
			return truncate(reviews, perPage), nil
		}
		if reviews := f.fromDOM(pageBody, productID); len(reviews) > 0 {
			observability.ObserveStrategy("aliexpress", "dom")
			return truncate(reviews, perPage), nil
		}
	}

	// The relay never yields records directly; a 200 only tells us the
	// aggregator side is reachable while the product itself has nothing.
	f.relayProbe(ctx, productID)

	observability.ObserveStrategy("aliexpress", "none")
	return nil, domain.ErrUpstreamUnavailable
}

// fromAPI walks feedback API pages in fixed batches until perPage
// canonical reviews are gathered or the upstream runs dry. A short or
// malformed page ends the walk; earlier batches are kept.
func (f *Fetcher) fromAPI(ctx context.Context, productID string, perPage int) []domain.Review {
	var all []domain.Review
	pages := (perPage + apiBatchSize - 1) / apiBatchSize
	for page := 1; page <= pages; page++ {
		body, status, err := f.client.FeedbackPage(ctx, productID, page, apiBatchSize)
		if err != nil {
			log.Warn().Err(err).Str("product_id", productID).Int("page", page).Msg("feedback api call failed")
			break
		}
		if status != http.StatusOK {
			log.Warn().Int("status", status).Str("product_id", productID).Int("page", page).Msg("feedback api rejected request")
			break
		}
		batch, err := parseFeedbackAPI(body, productID, page, apiBatchSize)
		if err != nil {
			log.Warn().Err(err).Str("product_id", productID).Int("page", page).Msg("feedback api payload malformed")
			break
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		if len(all) >= perPage {
			return all[:perPage]
		}
		if len(batch) < apiBatchSize {
			break
		}
	}
	return all
}

func (f *Fetcher) productPage(ctx context.Context, productID string) []byte {
	body, status, err := f.client.ProductPage(ctx, productID)
	if err != nil {
		log.Warn().Err(err).Str("product_id", productID).Msg("product page fetch failed")
		return nil
	}
	if status != http.StatusOK {
		log.Warn().Int("status", status).Str("product_id", productID).Msg("product page unavailable")
		return nil
	}
	return body
}

func (f *Fetcher) fromEmbeddedState(page []byte, productID string) []domain.Review {
	reviews, err := parseEmbeddedState(page, productID)
	if err != nil {
		log.Warn().Err(err).Str("product_id", productID).Msg("embedded state unparseable")
		return nil
	}
	return reviews
}

func (f *Fetcher) fromDOM(page []byte, productID string) []domain.Review {
	reviews, err := parseReviewDOM(page, productID)
	if err != nil {
		log.Warn().Err(err).Str("product_id", productID).Msg("dom scrape failed")
		return nil
	}
	return reviews
}

// The probe always asks for the first page; it checks reachability,
// not pagination.
func (f *Fetcher) relayProbe(ctx context.Context, productID string) {
	status, err := f.client.Relay(ctx, productID, 1, "")
	switch {
	case err != nil:
		log.Warn().Err(err).Str("product_id", productID).Msg("relay unreachable")
	case status == http.StatusOK:
		log.Info().Str("product_id", productID).Msg("relay alive, no reviews for product")
	default:
		log.Warn().Int("status", status).Str("product_id", productID).Msg("relay refused probe")
	}
}

func truncate(reviews []domain.Review, n int) []domain.Review {
	if len(reviews) > n {
		return reviews[:n]
	}
	return reviews
}
