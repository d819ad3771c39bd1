package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"reviewking/internal/adapters/aliexpress"
	server "reviewking/internal/adapters/http_server"
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
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
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
	sessions := app.NewSessionService(cache, cfg.SessionTTL)
	imports := app.NewImportService(catalog, sessions, events)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	server.NewHandlers(extract, imports, sessions, catalog, events, cfg.PerPage).Register(srv.Router())

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
