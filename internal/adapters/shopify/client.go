// Package shopify writes imported reviews into a Shopify store.
// Shopify has no native review API, so reviews live in product
// metafields under the app's namespace.
package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"reviewking/internal/adapters/observability"
	"reviewking/internal/domain"
)

const metafieldNamespace = "reviewking"

var productHandleRe = regexp.MustCompile(`/products/([^/?]+)`)

type Client struct {
	shopDomain string
	rc         *resty.Client
}

func New(shopDomain, token, apiVersion string) *Client {
	base := fmt.Sprintf("https://%s/admin/api/%s", shopDomain, apiVersion)
	return newWithBase(shopDomain, base, token)
}

// NewWithBaseURL points the client at an arbitrary admin API base,
// used by tests to target a local fake.
func NewWithBaseURL(shopDomain, baseURL, token string) *Client {
	return newWithBase(shopDomain, baseURL, token)
}

func newWithBase(shopDomain, baseURL, token string) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetHeader("X-Shopify-Access-Token", token).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &Client{shopDomain: shopDomain, rc: rc}
}

var _ domain.CatalogClient = (*Client)(nil)

type productPayload struct {
	ID     json.Number `json:"id"`
	Title  string      `json:"title"`
	Handle string      `json:"handle"`
	Images []struct {
		Src string `json:"src"`
	} `json:"images"`
}

func (p productPayload) toDomain(shopDomain string) domain.CatalogProduct {
	out := domain.CatalogProduct{
		ID:     p.ID.String(),
		Title:  p.Title,
		Handle: p.Handle,
		URL:    fmt.Sprintf("https://%s/products/%s", shopDomain, p.Handle),
	}
	if len(p.Images) > 0 {
		out.Image = p.Images[0].Src
	}
	return out
}

// SearchProducts resolves a storefront URL to its product, or filters
// the first 50 products by title. The admin API has no title search
// parameter, so the filter is client-side.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]domain.CatalogProduct, error) {
	req := c.rc.R().SetContext(ctx)
	byURL := strings.Contains(query, "products/")
	if byURL {
		m := productHandleRe.FindStringSubmatch(query)
		if m == nil {
			return nil, fmt.Errorf("%w: not a product url", domain.ErrInvalidFilter)
		}
		req.SetQueryParam("handle", m[1])
	} else {
		req.SetQueryParam("limit", "50")
	}

	resp, err := req.Get("/products.json")
	if err != nil {
		return nil, fmt.Errorf("shopify product search: %w", err)
	}
	observability.ObserveExternal("shopify", "products_search", resp.StatusCode(), resp.Time())
	if resp.IsError() {
		return nil, fmt.Errorf("shopify product search: status %d", resp.StatusCode())
	}

	var body struct {
		Products []productPayload `json:"products"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("decode product search: %w", err)
	}

	out := make([]domain.CatalogProduct, 0, len(body.Products))
	needle := strings.ToLower(query)
	for _, p := range body.Products {
		if !byURL && needle != "" && !strings.Contains(strings.ToLower(p.Title), needle) {
			continue
		}
		out = append(out, p.toDomain(c.shopDomain))
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (domain.CatalogProduct, error) {
	resp, err := c.rc.R().SetContext(ctx).Get(fmt.Sprintf("/products/%s.json", id))
	if err != nil {
		return domain.CatalogProduct{}, fmt.Errorf("shopify get product %s: %w", id, err)
	}
	observability.ObserveExternal("shopify", "product_get", resp.StatusCode(), resp.Time())
	if resp.StatusCode() == 404 {
		return domain.CatalogProduct{}, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	if resp.IsError() {
		return domain.CatalogProduct{}, fmt.Errorf("shopify get product %s: status %d", id, resp.StatusCode())
	}

	var body struct {
		Product productPayload `json:"product"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return domain.CatalogProduct{}, fmt.Errorf("decode product %s: %w", id, err)
	}
	return body.Product.toDomain(c.shopDomain), nil
}

// AddReview stores one review as a JSON metafield on the product. The
// metafield key embeds the review id so re-imports overwrite instead
// of duplicating.
func (c *Client) AddReview(ctx context.Context, productID string, r domain.Review) (string, error) {
	value := map[string]any{
		"rating":         r.Rating,
		"text":           r.Text,
		"reviewer_name":  r.ReviewerName,
		"date":           r.Date,
		"country":        r.Country,
		"verified":       r.Verified,
		"images":         r.Images,
		"quality_score":  r.QualityScore,
		"ai_recommended": r.AIRecommended,
		"platform":       string(r.Platform),
		"imported_at":    time.Now().UTC().Format(time.RFC3339),
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode review %s: %w", r.ID, err)
	}

	payload := map[string]any{
		"metafield": map[string]any{
			"namespace": metafieldNamespace,
			"key":       "review_" + r.ID,
			"value":     string(raw),
			"type":      "json",
		},
	}
	resp, err := c.rc.R().SetContext(ctx).SetBody(payload).
		Post(fmt.Sprintf("/products/%s/metafields.json", productID))
	if err != nil {
		return "", fmt.Errorf("shopify add review %s: %w", r.ID, err)
	}
	observability.ObserveExternal("shopify", "metafield_create", resp.StatusCode(), resp.Time())
	if resp.IsError() {
		return "", fmt.Errorf("shopify add review %s: status %d", r.ID, resp.StatusCode())
	}
	return r.ID, nil
}
