package bootstrap

import (
	"context"
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"investtrack/internal/application"
	"investtrack/internal/config"
	httpserver "investtrack/internal/infrastructure/http"
	"investtrack/internal/infrastructure/httpx"
	"investtrack/internal/infrastructure/logx"
	"investtrack/internal/infrastructure/pg"
	"investtrack/internal/infrastructure/provider"
	"investtrack/internal/infrastructure/ratelimit"
	redisstore "investtrack/internal/infrastructure/redis"
	"investtrack/internal/infrastructure/worker"
)

var ErrMissingDBURL = errors.New("DATABASE_URL is required")

type Repos struct {
	Quotes    application.QuoteStore
	Positions application.PositionRepo
	Goals     application.GoalRepo
}

type Services struct {
	Stocks    *application.StockService
	Portfolio *application.PortfolioService
	Goals     *application.GoalService
	Idem      application.IdempotencyStore
}

func ProvideLogger() *zap.Logger { return logx.L() }

func ProvideConfig() config.Config { return config.Load() }

func ProvideDB(ctx context.Context, log *zap.Logger, cfg config.Config) (*pg.DB, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, func() {}, ErrMissingDBURL
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, func() {}, err
	}
	if err := pg.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, func() {}, err
	}
	cleanup := func() {
		log.Info("closing pg")
		db.Close()
	}
	return db, cleanup, nil
}

func ProvideRepos(db *pg.DB) Repos {
	return Repos{
		Quotes:    pg.NewStockRepo(db),
		Positions: pg.NewPositionRepo(db),
		Goals:     pg.NewGoalRepo(db),
	}
}

// ProvideIdempotency backs the admin refresh dedup with Redis when an address
// is configured, and degrades to the no-op store otherwise.
func ProvideIdempotency(cfg config.Config, log *zap.Logger) (application.IdempotencyStore, func()) {
	if cfg.RedisAddr == "" {
		log.Info("idempotency disabled; no REDIS_ADDR configured")
		return application.NoopIdempotency{}, func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return redisstore.New(client, cfg.RedisTTL), func() { _ = client.Close() }
}

// ProvideMarketProvider picks the upstream client. Without an API key the
// Alpha Vantage profile degrades to the disabled provider, which serves
// cache-only traffic through the refresher's fallback path.
func ProvideMarketProvider(cfg config.Config, log *zap.Logger) application.MarketProvider {
	switch cfg.Provider {
	case "alphavantage":
		if cfg.AlphaVantageKey == "" {
			log.Warn("no ALPHA_VANTAGE_API_KEY; serving cached quotes only")
			return provider.Disabled{}
		}
		return &provider.AlphaVantageProvider{
			BaseURL: cfg.AlphaVantageBase,
			APIKey:  cfg.AlphaVantageKey,
			Client:  &httpx.Client{HTTP: &http.Client{Timeout: cfg.RequestTimeout}},
		}
	case "disabled":
		return provider.Disabled{}
	default:
		return provider.NewFake(123.45)
	}
}

func ProvideGate(cfg config.Config) application.FetchGate {
	return ratelimit.NewIntervalGate(cfg.PacingInterval)
}

func ProvideRefresher(r Repos, mp application.MarketProvider, gate application.FetchGate, cfg config.Config, log *zap.Logger) *application.Refresher {
	return application.NewRefresher(r.Quotes, mp, gate,
		application.WithFreshnessWindow(cfg.FreshnessWindow),
		application.WithLogger(log),
	)
}

func ProvideServices(r Repos, refresher *application.Refresher, idem application.IdempotencyStore, cfg config.Config, log *zap.Logger) Services {
	return Services{
		Stocks:    application.NewStockService(r.Quotes, refresher, cfg.MaxBatchSymbols),
		Portfolio: application.NewPortfolioService(r.Positions, r.Quotes, refresher, log),
		Goals:     application.NewGoalService(r.Goals),
		Idem:      idem,
	}
}

func ProvideServer(s Services, db *pg.DB) *httpserver.Server {
	return httpserver.NewServer(s.Stocks, s.Portfolio, s.Goals, s.Idem, db.Ping)
}

func ProvideWorker(r Repos, refresher *application.Refresher, cfg config.Config, log *zap.Logger) *worker.RefreshWorker {
	return &worker.RefreshWorker{
		Refresher:  refresher,
		Positions:  r.Positions,
		PollEvery:  cfg.WorkerPoll,
		BatchLimit: cfg.MaxBatchSymbols,
		Log:        log,
	}
}
