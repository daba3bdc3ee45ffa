package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/storefront-backend/api/routes"
	"github.com/angelmondragon/storefront-backend/internal/address"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/inventory"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/instance"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/angelmondragon/storefront-backend/pkg/telemetry"
)

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

	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.LogFormat == "console",
	})

	_, shutdownTracing, err := telemetry.Setup(context.Background(), "storefront-api", cfg.App, cfg.Telemetry)
	if err != nil {
		logg.Error(context.Background(), "failed to set up tracing", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logg.Error(context.Background(), "error flushing traces", err)
		}
	}()

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	orderMetrics := metrics.NewOrderMetrics(reg)

	deps, err := buildDependencies(cfg, logg, dbClient, orderMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}
	deps.Gatherer = reg
	deps.HTTPMetrics = metrics.NewHTTPMetrics(reg)
	deps.DB = dbClient
	deps.Redis = redisClient
	deps.Idempotency = redisClient
	deps.RateLimiter = redisClient

	addr := ":" + cfg.App.Port
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"addr":        addr,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "api server shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}

func buildDependencies(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, orderMetrics *metrics.OrderMetrics) (routes.Dependencies, error) {
	gdb := dbClient.DB()

	cartRepo := cart.NewRepository(gdb)
	cartService, err := cart.NewService(cartRepo, dbClient, catalog.NewRepository(gdb))
	if err != nil {
		return routes.Dependencies{}, err
	}

	addressService, err := address.NewService(gdb, dbClient)
	if err != nil {
		return routes.Dependencies{}, err
	}

	couponEngine, err := coupons.NewEngine(coupons.NewRepository(gdb))
	if err != nil {
		return routes.Dependencies{}, err
	}

	calculator, err := pricing.NewCalculator(cfg.Pricing, pricing.NewMethodRepository(gdb))
	if err != nil {
		return routes.Dependencies{}, err
	}

	ledger := inventory.NewLedger(gdb)
	emitter := outbox.NewService(outbox.NewRepository(gdb), logg)
	orderRepo := orders.NewRepository(gdb)

	orderService, err := orders.NewService(orderRepo, dbClient, ledger, emitter, logg, orderMetrics)
	if err != nil {
		return routes.Dependencies{}, err
	}

	checkoutService, err := checkout.NewService(checkout.Dependencies{
		Tx:             dbClient,
		Carts:          cartRepo,
		Ledger:         ledger,
		Coupons:        couponEngine,
		Pricing:        calculator,
		Orders:         orderRepo,
		Outbox:         emitter,
		Logger:         logg,
		Recorder:       orderMetrics,
		Numbers:        checkout.NewNumberGenerator(),
		NumberAttempts: cfg.Checkout.OrderNumberAttempts,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	return routes.Dependencies{
		Config:    cfg,
		Logger:    logg,
		Checkout:  checkoutService,
		Orders:    orderService,
		Cart:      cartService,
		Addresses: addressService,
		Coupons:   couponEngine,
		Shipping:  calculator,
	}, nil
}
