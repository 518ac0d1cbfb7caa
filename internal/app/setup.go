// Package app contains the application setup for the storefront.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/internal/recent"
	"github.com/abgdnv/storefront/internal/search"
	"github.com/abgdnv/storefront/internal/service"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/internal/transport/rest"
	pconfig "github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/messaging"
	natsclient "github.com/abgdnv/storefront/pkg/nats"
	"github.com/abgdnv/storefront/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

const grpcServiceName = "storefront.v1.Storefront"

// Infra holds the external connections opened by main. Nil members are disabled.
type Infra struct {
	DB        *pgxpool.Pool
	Redis     *redis.Client
	JetStream jetstream.JetStream
	// Metrics serves the Prometheus registry; mounted at MetricsPath when set.
	Metrics     http.Handler
	MetricsPath string
}

type Dependencies struct {
	ProductService service.ProductService
	Store          store.ProductStore
	Logger         *slog.Logger
	Health         *health.Server
	MaxImageBytes  int64
	Metrics        http.Handler
	MetricsPath    string
}

// SetupDependencies builds the service graph for the configured backends.
func SetupDependencies(infra Infra, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	productStore, images, err := setupStores(infra, cfg)
	if err != nil {
		return nil, err
	}

	merger, err := search.NewMerger(productStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create search merger: %w", err)
	}

	var total catalog.TotalCounter = catalog.NewStoreTotal(productStore)
	if infra.Redis != nil {
		total = catalog.NewCachedTotal(productStore, infra.Redis, cfg.Catalog.TotalTTL, logger)
	}

	var recents recent.Store
	switch cfg.Recent.Backend {
	case config.RecentBackendRedis:
		if infra.Redis == nil {
			return nil, fmt.Errorf("recent backend %q requires a redis client", cfg.Recent.Backend)
		}
		recents = recent.NewRedis(infra.Redis, cfg.Recent.Cap, cfg.Recent.TTL)
	default:
		recents = recent.NewMemory(cfg.Recent.Cap)
	}

	var publisher messaging.Publisher = messaging.NoopPublisher{}
	if infra.JetStream != nil {
		publisher = natsclient.NewNatsPublisher(infra.JetStream)
	}

	svc := service.NewService(service.Components{
		Store:     productStore,
		Images:    images,
		Planner:   search.NewPlanner(cfg.Search.Limit),
		Merger:    merger,
		Pager:     catalog.NewPager(productStore, total, cfg.Catalog.PageSize, logger),
		Total:     total,
		Recent:    recents,
		Publisher: publisher,
		Logger:    logger,
	})

	return &Dependencies{
		ProductService: svc,
		Store:          productStore,
		Logger:         logger,
		Health:         health.NewServer(),
		MaxImageBytes:  cfg.Images.MaxBytes,
		Metrics:        infra.Metrics,
		MetricsPath:    infra.MetricsPath,
	}, nil
}

// setupStores selects the product and image stores for the database driver and
// wraps the product store in a circuit breaker when enabled.
func setupStores(infra Infra, cfg *config.Config) (store.ProductStore, store.ImageStorage, error) {
	var (
		productStore store.ProductStore
		images       store.ImageStorage
	)
	switch cfg.Database.Driver {
	case "", pconfig.DriverPostgres:
		if infra.DB == nil {
			return nil, nil, fmt.Errorf("database driver %q requires a connection pool", pconfig.DriverPostgres)
		}
		productStore = store.NewPgStore(infra.DB)
		images = store.NewPgImageStore(infra.DB, cfg.Images.BaseURL)
	case pconfig.DriverMemory:
		productStore = store.NewInMemoryStore()
		images = store.NewInMemoryImages(cfg.Images.BaseURL)
	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	if cfg.Resilience.CircuitBreaker.Enabled {
		productStore = store.NewBreakerStore(productStore, cfg.Resilience.CircuitBreaker)
	}
	return productStore, images, nil
}

// SetupHttpHandler builds the instrumented router of the storefront.
// Used by tests to exercise the full middleware chain.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return otelhttp.NewHandler(mux, "storefront",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/healthz" && r.URL.Path != deps.MetricsPath
		}),
	)
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	rest.NewHandler(deps.ProductService, deps.Logger, deps.MaxImageBytes).RegisterRoutes(mux)
	if deps.Metrics != nil && deps.MetricsPath != "" {
		mux.Handle(deps.MetricsPath, deps.Metrics)
	}
}

// SetupHttpServer creates and configures the HTTP server.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}

// SetupGrpcServer creates the gRPC server exposing the health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(reflectionEnabled, server.HealthRegistration(deps.Health, grpcServiceName))
}
