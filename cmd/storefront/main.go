package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aureliajewels/storefront-core/api/controllers"
	"github.com/aureliajewels/storefront-core/api/routes"
	"github.com/aureliajewels/storefront-core/internal/cart"
	"github.com/aureliajewels/storefront-core/internal/catalog"
	"github.com/aureliajewels/storefront-core/internal/wishlist"
	"github.com/aureliajewels/storefront-core/pkg/config"
	"github.com/aureliajewels/storefront-core/pkg/logger"
	"github.com/aureliajewels/storefront-core/pkg/metrics"
	"github.com/aureliajewels/storefront-core/pkg/redis"
	"github.com/aureliajewels/storefront-core/pkg/session"
	"github.com/aureliajewels/storefront-core/pkg/shopapi"
	"github.com/aureliajewels/storefront-core/pkg/statestore"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	state, err := statestore.Open(cfg.State.Path)
	if err != nil {
		logg.Error(context.Background(), "failed to open state store", err)
		os.Exit(1)
	}
	defer func() {
		if err := state.Close(); err != nil {
			logg.Error(context.Background(), "error closing state store", err)
		}
	}()

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	shopClient, err := shopapi.NewClient(cfg.ShopAPI, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create shop api client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	storeMetrics := metrics.NewStoreMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	cartStore, err := cart.NewStore(cart.StoreParams{
		Persister: state,
		Remote:    shopClient,
		Logger:    logg,
		Metrics:   storeMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}
	defer cartStore.Close()

	wishlistStore, err := wishlist.NewStore(wishlist.StoreParams{
		Persister: state,
		Remote:    shopClient,
		Logger:    logg,
		Metrics:   storeMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist store", err)
		os.Exit(1)
	}
	defer wishlistStore.Close()

	cartStore.Hydrate(context.Background())
	wishlistStore.Hydrate(context.Background())

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		API:      shopClient,
		Cache:    redisClient,
		CacheTTL: cfg.Catalog.CacheTTL,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting storefront server")

	readiness := []controllers.Pinger{state}
	if redisClient != nil {
		readiness = append(readiness, redisClient)
	}

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			registry,
			httpMetrics,
			session.NewHolder(),
			catalogService,
			cartStore,
			wishlistStore,
			readiness...,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "storefront server stopped unexpectedly", err)
		os.Exit(1)
	}
}
