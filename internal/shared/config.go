package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	// AliExpress upstream endpoints.
	FeedbackAPIBase string
	ProductPageBase string

	// Last-resort relay aggregator.
	RelayEndpoint string
	RelayID       string

	// Destination catalog (Shopify admin API).
	ShopifyDomain     string
	ShopifyToken      string
	ShopifyAPIVersion string

	Workers      int
	PerPage      int
	CacheTTL     time.Duration
	SessionTTL   time.Duration
	NominalTotal int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviewking?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),

		FeedbackAPIBase: env("ALIEXPRESS_FEEDBACK_URL", "https://feedback.aliexpress.com/pc/searchEvaluation.do"),
		ProductPageBase: env("ALIEXPRESS_ITEM_URL", "https://www.aliexpress.com/item"),
		RelayEndpoint:   env("RELAY_ENDPOINT", "https://loox.io/-/admin/reviews/import/url"),
		RelayID:         env("RELAY_ID", ""),

		ShopifyDomain:     env("SHOPIFY_SHOP_DOMAIN", ""),
		ShopifyToken:      env("SHOPIFY_ACCESS_TOKEN", ""),
		ShopifyAPIVersion: env("SHOPIFY_API_VERSION", "2025-10"),

		Workers:      atoi("IMPORT_WORKERS", 8),
		PerPage:      atoi("EXTRACT_PER_PAGE", 100),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		SessionTTL:   time.Duration(atoi("SESSION_TTL_SECONDS", 3600)) * time.Second,
		NominalTotal: atoi("NOMINAL_TOTAL_REVIEWS", 150),
	}
	if c.ShopifyToken == "" {
		log.Warn().Msg("SHOPIFY_ACCESS_TOKEN is empty; catalog import disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
