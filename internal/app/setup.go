// Package app contains the application setup for the catalog service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/catalog/internal/config"
	"github.com/abgdnv/catalog/internal/service"
	"github.com/abgdnv/catalog/internal/store"
	grpcImpl "github.com/abgdnv/catalog/internal/transport/grpc"
	"github.com/abgdnv/catalog/internal/transport/rest"
	"github.com/abgdnv/catalog/migrations"
	"github.com/abgdnv/catalog/pkg/bootstrap"
	pkgconfig "github.com/abgdnv/catalog/pkg/config"
	"github.com/abgdnv/catalog/pkg/messaging"
	pnats "github.com/abgdnv/catalog/pkg/nats"
	"github.com/abgdnv/catalog/pkg/server"
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"
)

type Dependencies struct {
	Store          store.ProductStore
	ProductService service.ProductService
	HealthReporter *grpcImpl.HealthReporter
	// MetricsHandler is mounted on /metrics when set.
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// SetupDependencies wires the service on top of the given store.
// A nil publisher disables product events.
func SetupDependencies(productStore store.ProductStore, publisher messaging.Publisher, cfg *config.Config, logger *slog.Logger) *Dependencies {
	pService := service.NewService(productStore, publisher, cfg.Catalog.DeleteMode)

	return &Dependencies{
		Store:          productStore,
		ProductService: pService,
		HealthReporter: grpcImpl.NewHealthReporter(productStore, cfg.Health, logger),
		Logger:         logger,
	}
}

// SetupStore opens the configured database, prepares the schema and returns the store
// with a function releasing the connection.
func SetupStore(ctx context.Context, cfg pkgconfig.DatabaseConfig, logger *slog.Logger) (store.ProductStore, func(), error) {
	switch cfg.Driver {
	case pkgconfig.DriverSqlite:
		db, err := bootstrap.NewSqliteDB(ctx, cfg.URL, cfg.Timeout, logger.Enabled(ctx, slog.LevelDebug))
		if err != nil {
			return nil, nil, err
		}
		gormStore := store.NewGormStore(db)
		if err := gormStore.AutoMigrate(ctx); err != nil {
			_ = bootstrap.CloseSqliteDB(db)
			return nil, nil, err
		}
		logger.InfoContext(ctx, "Successfully connected to the database!", "driver", cfg.Driver)
		return gormStore, func() { _ = bootstrap.CloseSqliteDB(db) }, nil
	case pkgconfig.DriverPostgres, "":
		if cfg.Migrate {
			if err := migrations.Apply(cfg.URL); err != nil {
				return nil, nil, err
			}
			logger.InfoContext(ctx, "Database migrations applied")
		}
		dbPool, err := bootstrap.NewDbPool(ctx, cfg.URL, cfg.Timeout)
		if err != nil {
			return nil, nil, err
		}
		logger.InfoContext(ctx, "Successfully connected to the database!", "driver", pkgconfig.DriverPostgres)
		return store.NewPgStore(dbPool), dbPool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}

// SetupPublisher connects to NATS and ensures the product stream when messaging is enabled.
// Otherwise it returns a publisher that drops events.
func SetupPublisher(ctx context.Context, cfg pkgconfig.NATSConfig, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.Enabled {
		return messaging.NopPublisher{}, func() {}, nil
	}
	nc, err := pnats.NewClient(cfg.Url, cfg.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := pnats.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	if _, err := pnats.EnsureStream(ctx, js, cfg.Stream, messaging.ProductsSubjects); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.InfoContext(ctx, "Connected to NATS", "stream", cfg.Stream)
	return pnats.NewNatsPublisher(js), nc.Close, nil
}

// SetupHttpHandler initializes the router and routes for the catalog service.
// Used by tests to run the application in an httptest.Server.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the catalog service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Store, deps.Logger)
	productHandler.RegisterRoutes(mux)
	if deps.MetricsHandler != nil {
		mux.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
}

// SetupHttpServer creates and configures an HTTP server for the catalog service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config, serviceName string) *http.Server {

	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, serviceName, mux)
}

// SetupGrpcServer initializes the gRPC server exposing the health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(reflectionEnabled, deps.HealthReporter.Register)
}
