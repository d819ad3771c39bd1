// The importer extracts reviews for a list of source products and
// pushes the qualifying ones straight into one Shopify product,
// bypassing the interactive preview flow. Products are processed
// concurrently under a worker cap.
package main

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"strings"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"reviewking/internal/adapters/aliexpress"
	"reviewking/internal/adapters/observability"
	redisad "reviewking/internal/adapters/redis"
	"reviewking/internal/adapters/sample"
	"reviewking/internal/adapters/shopify"
	"reviewking/internal/app"
	"reviewking/internal/domain"
	"reviewking/internal/shared"
	mysqlrepo "reviewking/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	platformName := env("PLATFORM", string(domain.PlatformAliExpress))
	platform, err := domain.ParsePlatform(platformName)
	if err != nil {
		log.Fatal().Str("platform", platformName).Msg("unsupported platform")
	}
	shopifyProductID := os.Getenv("SHOPIFY_PRODUCT_ID")
	if shopifyProductID == "" {
		log.Fatal().Msg("SHOPIFY_PRODUCT_ID required")
	}
	productIDs := splitIDs(os.Getenv("PRODUCT_IDS"))
	if len(productIDs) == 0 {
		productIDs = os.Args[1:]
	}
	if len(productIDs) == 0 {
		log.Fatal().Msg("no product ids; set PRODUCT_IDS or pass them as args")
	}
	minQuality := floatEnv("MIN_QUALITY_SCORE", 0)

	log.Info().
		Str("platform", string(platform)).
		Str("shopify_product", shopifyProductID).
		Int("products", len(productIDs)).
		Int("workers", cfg.Workers).
		Float64("min_quality", minQuality).
		Msg("importer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	events := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	catalog := shopify.New(cfg.ShopifyDomain, cfg.ShopifyToken, cfg.ShopifyAPIVersion)

	aliClient := aliexpress.New(cfg.FeedbackAPIBase, cfg.ProductPageBase, cfg.RelayEndpoint, cfg.RelayID, 5)
	fetchers := map[domain.Platform]domain.Fetcher{
		domain.PlatformAliExpress: aliexpress.NewFetcher(aliClient),
		domain.PlatformAmazon:     sample.NewFetcher(domain.PlatformAmazon),
		domain.PlatformEBay:       sample.NewFetcher(domain.PlatformEBay),
		domain.PlatformWalmart:    sample.NewFetcher(domain.PlatformWalmart),
	}

	extract := app.NewExtractService(fetchers, app.DefaultScoreConfig(), cache, cfg.CacheTTL, cfg.NominalTotal)
	imports := app.NewImportService(catalog, nil, events)

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, id := range productIDs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(productID string) {
			defer wg.Done()
			defer sem.Release(1)

			res, err := extract.Extract(ctx, app.ExtractRequest{
				Platform:  string(platform),
				ProductID: productID,
				Page:      1,
				PerPage:   cfg.PerPage,
			})
			if err != nil {
				log.Warn().Str("product", productID).Err(err).Msg("extract failed")
				return
			}
			if !res.Success {
				log.Warn().Str("product", productID).Str("error", res.ErrorCode).Msg("no reviews extracted")
				return
			}

			outcome, err := imports.ImportBulk(ctx, res.Reviews, shopifyProductID, "", minQuality)
			if err != nil {
				log.Warn().Str("product", productID).Err(err).Msg("import failed")
				return
			}
			log.Info().
				Str("product", productID).
				Int("imported", len(outcome.Imported)).
				Int("failed", len(outcome.Failed)).
				Msg("import ok")
		}(id)
	}

	wg.Wait()
	log.Info().Msg("import completed")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func floatEnv(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func splitIDs(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
