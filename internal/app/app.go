package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/stockreturn/config"
	"github.com/guttosm/stockreturn/internal/api"
	"github.com/guttosm/stockreturn/internal/marketdata"
	"github.com/guttosm/stockreturn/internal/metrics"
	"github.com/guttosm/stockreturn/internal/pricing"
	"github.com/guttosm/stockreturn/internal/service"
	"github.com/guttosm/stockreturn/internal/storage"
)

// requestSlack is added to the upstream timeout to bound a whole HTTP request.
const requestSlack = 5 * time.Second

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Builds the configured market data provider (Yahoo or PostgreSQL).
//   - Wraps it with Prometheus instrumentation.
//   - Creates the price resolver, the investment service and the HTTP handlers.
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close resources (e.g., DB connection).
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp() (*gin.Engine, func(), error) {
	// Load global configuration
	cfg := config.AppConfig

	rec := metrics.New()

	src, err := buildSource(cfg)
	if err != nil {
		return nil, nil, err
	}

	// Price resolution over the instrumented provider
	resolver := pricing.NewResolver(marketdata.Instrument(src.provider, rec))

	// Initialize service layer (business logic)
	svc := service.NewInvestmentService(resolver, cfg.MarketData.Timeout)

	// Initialize HTTP handler layer (business logic to HTTP mapping)
	handler := api.NewHandler(svc, rec)

	// Setup Gin router with routes
	router := api.NewRouter(handler, api.RouterConfig{
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		AllowOrigins:       cfg.Server.AllowOrigins,
		RequestTimeout:     cfg.MarketData.Timeout + requestSlack,
		Metrics:            rec.Handler(),
	})

	// Register health and readiness probes
	api.NewHealthHandler(src.provider.Name(), src.ping).Register(router)

	return router, src.close, nil
}

// source bundles a provider with the lifecycle hooks of its backing store.
type source struct {
	provider marketdata.Provider
	ping     func() error
	close    func()
}

func buildSource(cfg config.Config) (source, error) {
	switch cfg.MarketData.Provider {
	case config.ProviderPostgres:
		// indirection for unit testing
		db, err := postgresOpener(cfg)
		if err != nil {
			return source{}, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		return source{
			provider: marketdata.NewPostgresProvider(storage.NewClosesRepository(db)),
			ping:     db.Ping,
			close:    func() { _ = db.Close() },
		}, nil

	case config.ProviderYahoo, "":
		opts := []marketdata.YahooOption{
			marketdata.WithRateLimit(cfg.MarketData.RateLimit),
			marketdata.WithMaxRetries(cfg.MarketData.MaxRetries),
		}
		if cfg.MarketData.YahooBaseURL != "" {
			opts = append(opts, marketdata.WithBaseURL(cfg.MarketData.YahooBaseURL))
		}
		if cfg.MarketData.Timeout > 0 {
			opts = append(opts, marketdata.WithHTTPClient(&http.Client{Timeout: cfg.MarketData.Timeout}))
		}
		return source{
			provider: marketdata.NewYahooProvider(opts...),
			close:    func() {},
		}, nil

	default:
		return source{}, fmt.Errorf("unknown market data provider %q", cfg.MarketData.Provider)
	}
}
