package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/grengcry/cart-service/api/controllers"
	"github.com/grengcry/cart-service/api/routes"
	"github.com/grengcry/cart-service/internal/cart"
	"github.com/grengcry/cart-service/internal/catalog"
	"github.com/grengcry/cart-service/internal/checkout"
	"github.com/grengcry/cart-service/internal/orders"
	"github.com/grengcry/cart-service/pkg/config"
	"github.com/grengcry/cart-service/pkg/db"
	"github.com/grengcry/cart-service/pkg/logger"
	"github.com/grengcry/cart-service/pkg/metrics"
	"github.com/grengcry/cart-service/pkg/migrate"
	"github.com/grengcry/cart-service/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	var dbClient *db.Client
	var store cart.SnapshotStore
	if cfg.Cart.Backend == config.CartBackendDB {
		dbClient, err = db.New(context.Background(), cfg.DB, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap database", err)
			os.Exit(1)
		}
		if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
			logg.Error(context.Background(), "failed to run dev migrations", err)
			os.Exit(1)
		}
		store = cart.NewDBSnapshotStore(dbClient)
	} else {
		store = cart.NewRedisSnapshotStore(redisClient, cfg.Cart.SnapshotTTL)
	}

	catalogClient, err := catalog.NewClient(cfg.Catalog.BaseURL,
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.Catalog.Timeout}))
	if err != nil {
		logg.Error(context.Background(), "failed to build catalog client", err)
		os.Exit(1)
	}

	ordersClient, err := orders.NewClient(cfg.Orders.BaseURL,
		orders.WithHTTPClient(&http.Client{Timeout: cfg.Orders.Timeout}))
	if err != nil {
		logg.Error(context.Background(), "failed to build orders client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	cartMetrics := metrics.NewCartMetrics(registry)

	manager := cart.NewManager(store)

	cartService, err := cart.NewService(cart.ServiceParams{
		Manager:  manager,
		Products: catalogClient,
		Metrics:  cartMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Carts:           manager,
		Catalog:         catalogClient,
		Orders:          ordersClient,
		Limiter:         redisClient,
		Logger:          logg,
		Metrics:         cartMetrics,
		RateLimitMax:    cfg.Checkout.RateLimitMax,
		RateLimitWindow: cfg.Checkout.RateLimitWindow,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	health := map[string]controllers.Pinger{"redis": redisClient}
	if dbClient != nil {
		health["db"] = dbClient
	}

	handler := routes.NewRouter(routes.RouterParams{
		Config:   cfg,
		Logger:   logg,
		Cart:     cartService,
		Checkout: checkoutService,
		Products: catalogClient,
		Health:   health,
		Registry: registry,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"backend": cfg.Cart.Backend,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	var closeErr error
	closeErr = multierr.Append(closeErr, redisClient.Close())
	if dbClient != nil {
		closeErr = multierr.Append(closeErr, dbClient.Close())
	}
	if closeErr != nil {
		logg.Error(ctx, "error closing dependencies", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}
