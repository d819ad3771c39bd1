// internal/adapters/aliexpress/client.go
package aliexpress

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"reviewking/internal/adapters/observability"
)

// Client talks to the three aliexpress-side endpoints the fetch chain
// uses: the feedback search API, the public product page and the
// last-resort relay aggregator. Every call is synchronous, rate limited
// client-side and bounded by a fixed generous timeout.
type Client struct {
	feedbackURL string
	itemBase    string
	relayURL    string
	relayID     string
	hc          *http.Client
	rl          *rate.Limiter
}

func New(feedbackURL, itemBase, relayURL, relayID string, rps int) *Client {
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		feedbackURL: feedbackURL,
		itemBase:    itemBase,
		relayURL:    relayURL,
		relayID:     relayID,
		hc:          &http.Client{Timeout: 15 * time.Second},
		rl:          rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// FeedbackPage requests one page of the review search API. The upstream
// caps each response at ~20 records regardless of pageSize.
func (c *Client) FeedbackPage(ctx context.Context, productID string, page, pageSize int) ([]byte, int, error) {
	q := url.Values{}
	q.Set("productId", productID)
	q.Set("lang", "en_US")
	q.Set("country", "US")
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("filter", "all")
	q.Set("sort", "complex_default")
	q.Set("page", strconv.Itoa(page))
	return c.get(ctx, "feedback", c.feedbackURL+"?"+q.Encode())
}

// ProductPage fetches the canonical item page markup for the embedded
// state and DOM fallbacks.
func (c *Client) ProductPage(ctx context.Context, productID string) ([]byte, int, error) {
	return c.get(ctx, "item_page", fmt.Sprintf("%s/%s.html", c.itemBase, productID))
}

// Relay hits the third-party aggregator endpoint. It is a liveness
// probe: a 200 means the relay is reachable, not that it returned data.
func (c *Client) Relay(ctx context.Context, productID string, page int, ownerMemberID string) (int, error) {
	q := url.Values{}
	q.Set("id", c.relayID)
	q.Set("productId", productID)
	q.Set("page", strconv.Itoa(page))
	if ownerMemberID != "" {
		q.Set("ownerMemberId", ownerMemberID)
	}
	_, status, err := c.get(ctx, "relay", c.relayURL+"?"+q.Encode())
	return status, err
}

func (c *Client) get(ctx context.Context, endpoint, rawURL string) ([]byte, int, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "*/*")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("aliexpress", endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("aliexpress", endpoint, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
