package domain

import (
	"context"
	"time"
)

// Fetcher acquires up to perPage reviews for one product on one
// platform. Implementations own their fallback chain; they return
// ErrUpstreamUnavailable only when every strategy came back empty.
type Fetcher interface {
	Fetch(ctx context.Context, productID string, page, perPage int) ([]Review, error)
}

// Cache is a TTL'd JSON cache plus string-set operations, backing
// response caching, import sessions and per-session skip sets.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
	AddToSet(ctx context.Context, key, member string) error
	SetMembers(ctx context.Context, key string) ([]string, error)
}

// Event is a single analytics event recorded by the tracking endpoint.
type Event struct {
	Category  string
	Action    string
	ClientID  string
	Country   string
	Language  string
	UserAgent string
	IP        string
	CreatedAt time.Time
}

// ImportRecord logs one review pushed into the destination catalog.
type ImportRecord struct {
	ReviewID     string
	SessionID    string
	ProductID    string // destination catalog product
	Platform     Platform
	QualityScore int
}

type EventStore interface {
	LogEvent(ctx context.Context, e Event) error
	RecentEvents(ctx context.Context, limit int) ([]Event, error)
	CountEvents(ctx context.Context, category, action string) (int, error)
	LogImport(ctx context.Context, rec ImportRecord) error
}

// CatalogProduct is a destination-store product reviews get attached to.
type CatalogProduct struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
	Image  string `json:"image,omitempty"`
	URL    string `json:"url"`
}

// CatalogClient writes imported reviews into the destination catalog
// through its metafield-like extension mechanism.
type CatalogClient interface {
	SearchProducts(ctx context.Context, query string) ([]CatalogProduct, error)
	GetProduct(ctx context.Context, id string) (CatalogProduct, error)
	AddReview(ctx context.Context, productID string, r Review) (string, error)
}
