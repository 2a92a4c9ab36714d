package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"acervo/internal/config"
	"acervo/internal/database"
	"acervo/internal/database/migration"
	handlers "acervo/internal/http/handler"
	"acervo/internal/http/middleware"
	"acervo/internal/otel"
	"acervo/internal/repository"
	"acervo/internal/repository/memory"
	"acervo/internal/repository/postgres"
	"acervo/internal/service"
	"acervo/internal/storage"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	if cfg.Auth.Secret == "" {
		logger.Fatal("AUTH_SECRET is required")
	}

	// Tracing degrades to a no-op when the exporter cannot be built
	shutdownTracing, err := otel.Init(context.Background(), logger)
	if err != nil {
		logger.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	var (
		db       *sql.DB
		docRepo  repository.DocumentRepository
		userRepo repository.UserRepository
		objStore storage.Storage
	)

	if cfg.DemoMode {
		// Demo mode: in-memory corpus, no database or object storage.
		store := memory.New()
		if err := memory.SeedDemo(store, service.HashPassword); err != nil {
			logger.Fatal("failed to seed demo data", zap.Error(err))
		}
		docRepo = store.Documents()
		userRepo = store.Users()
		objStore = storage.NewMemory()
		logger.Info("running in demo mode with the built-in corpus")
	} else {
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := migration.EnsureMigrated(context.Background(), db, logger, cfg.Database.Host); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}

		// Reusable S3-compatible object storage client (MinIO-supported)
		objStore, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			logger.Fatal("failed to initialize object storage", zap.Error(err))
		}

		docRepo = postgres.NewDocumentPostgres(db)
		userRepo = postgres.NewUserPostgres(db)
	}

	svcs := handlers.Services{
		Documents: service.NewDocumentService(objStore, docRepo),
		Users:     service.NewUserService(userRepo),
		Auth:      service.NewAuthService(userRepo, []byte(cfg.Auth.Secret), cfg.Auth.SessionTTL),
		Stats:     service.NewStatsService(docRepo, userRepo),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    12 * 1024 * 1024, // leaves headroom over the 10 MB document limit
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// Structured request logs
	app.Use(middleware.Logger(logger))
	app.Use(otelfiber.Middleware())

	registry := prometheus.NewRegistry()
	promMw, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		logger.Fatal("failed to register metrics", zap.Error(err))
	}
	app.Use(promMw.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, svcs, handlers.Options{
		SessionCookie: cfg.Auth.CookieName,
		SessionTTL:    cfg.Auth.SessionTTL,
		PageSize:      cfg.PageSize,
	})

	addr := ":" + cfg.Port
	logger.Info("starting server", zap.String("addr", addr), zap.Bool("demo", cfg.DemoMode))

	if err := app.Listen(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
