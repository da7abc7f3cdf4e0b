package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tru-distribution/orderdesk-backend/api/routes"
	"github.com/tru-distribution/orderdesk-backend/internal/catalog"
	"github.com/tru-distribution/orderdesk-backend/internal/importer"
	"github.com/tru-distribution/orderdesk-backend/internal/orders"
	"github.com/tru-distribution/orderdesk-backend/pkg/config"
	"github.com/tru-distribution/orderdesk-backend/pkg/db"
	"github.com/tru-distribution/orderdesk-backend/pkg/logger"
	"github.com/tru-distribution/orderdesk-backend/pkg/metrics"
	"github.com/tru-distribution/orderdesk-backend/pkg/migrate"
	"github.com/tru-distribution/orderdesk-backend/pkg/redis"
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

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
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

	catalogRepo := catalog.NewRepository(dbClient.DB())
	reconciler, err := catalog.NewReconciler(catalogRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create import reconciler", err)
		os.Exit(1)
	}

	progressStore, err := importer.NewRedisProgressStore(redisClient, cfg.Import.ProgressTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create progress store", err)
		os.Exit(1)
	}

	importMetrics := metrics.NewImportMetrics(prometheus.DefaultRegisterer)
	executor, err := importer.NewExecutor(reconciler, progressStore, importMetrics, logg, cfg.Import.ChunkSize)
	if err != nil {
		logg.Error(context.Background(), "failed to create import executor", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersSvc, err := orders.NewService(ordersRepo, dbClient, catalogRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
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
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, executor, progressStore, ordersSvc),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
