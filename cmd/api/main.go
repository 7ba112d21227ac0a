// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/domain/analytics"
	"github.com/your-org/ecommerce-storefront/internal/domain/cart"
	"github.com/your-org/ecommerce-storefront/internal/domain/checkout"
	"github.com/your-org/ecommerce-storefront/internal/domain/events"
	"github.com/your-org/ecommerce-storefront/internal/domain/session"
	"github.com/your-org/ecommerce-storefront/internal/domain/theme"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/database/postgres"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/database/redis"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/storage"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/handlers"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/routes"
	"github.com/your-org/ecommerce-storefront/internal/pkg/logger"
	"github.com/your-org/ecommerce-storefront/internal/pkg/pdf"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg := logger.New(cfg)
	logg.WithFields(logrus.Fields{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"storage":     cfg.Storage.Driver,
	}).Infof("🚀 Starting %s", cfg.App.Name)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]http.HealthChecker{}

	var redisClient *redis.Client
	if cfg.UsesRedis() {
		redisClient, err = redis.NewConnection(cfg, logg)
		if err != nil {
			logg.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redisClient.Close()
		checks["redis"] = redisClient
	}

	var st storage.Storage
	switch cfg.Storage.Driver {
	case config.StorageDriverRedis:
		st = storage.NewRedis(redisClient.GetClient(), cfg.Storage.KeyPrefix, cfg.Storage.Retention)
	case config.StorageDriverPostgres:
		db, err := postgres.NewConnection(cfg, logg)
		if err != nil {
			logg.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()
		checks["database"] = db

		migration := postgres.NewMigration(db.GetDB(), logg)
		if err := migration.RunAutoMigrations(); err != nil {
			logg.WithError(err).Fatal("Database migration failed")
		}
		if err := migration.CreateIndexes(); err != nil {
			logg.WithError(err).Warn("Index creation failed")
		}
		st = storage.NewPostgres(db.GetDB())
	default:
		logg.Warn("Using in-memory storage: visitor state is lost on restart")
		st = storage.NewMemory()
	}

	bus := events.NewBus()
	if redisClient != nil {
		relay := events.NewRedisRelay(redisClient.GetClient(), cfg.Redis.EventsChannel, bus, logg)
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logg.WithError(err).Error("Event relay stopped")
			}
		}()
	}

	api := backend.NewClient(cfg.Backend, logg)
	carts := cart.NewStore(st, bus, logg)

	deps := routes.Dependencies{
		Config:    cfg,
		Backend:   api,
		Sessions:  session.NewStore(st, bus, logg),
		Themes:    theme.NewStore(st, bus, logg),
		Carts:     carts,
		Flashes:   handlers.NewFlashStore(st, logg),
		Checkout:  checkout.NewService(carts, st, api, logg),
		Analytics: analytics.NewService(api, logg),
		Invoices:  pdf.NewService(cfg.App),
		Bus:       bus,
		Logger:    logg,
	}

	var rateLimitClient *goredis.Client
	if redisClient != nil {
		rateLimitClient = redisClient.GetClient()
	}

	server := http.NewServer(cfg, logg, deps, rateLimitClient, checks)

	go func() {
		if err := server.Start(); err != nil {
			logg.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	logg.Info("✅ All systems operational!")
	<-ctx.Done()
	logg.Info("👋 Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logg.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	logg.Info("✅ Server shutdown completed")
}
