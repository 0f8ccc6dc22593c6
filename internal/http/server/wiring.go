// Package server cablea store, cache, services y controllers en un http.Handler.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hallapmark/vaiki-backend/internal/cache"
	"github.com/hallapmark/vaiki-backend/internal/cdnsign"
	"github.com/hallapmark/vaiki-backend/internal/config"
	httpmetrics "github.com/hallapmark/vaiki-backend/internal/http"
	catalogctrl "github.com/hallapmark/vaiki-backend/internal/http/controllers/catalog"
	healthctrl "github.com/hallapmark/vaiki-backend/internal/http/controllers/health"
	playbackctrl "github.com/hallapmark/vaiki-backend/internal/http/controllers/playback"
	"github.com/hallapmark/vaiki-backend/internal/http/router"
	catalogsvc "github.com/hallapmark/vaiki-backend/internal/http/services/catalog"
	healthsvc "github.com/hallapmark/vaiki-backend/internal/http/services/health"
	playbacksvc "github.com/hallapmark/vaiki-backend/internal/http/services/playback"
	"github.com/hallapmark/vaiki-backend/internal/metrics"
	"github.com/hallapmark/vaiki-backend/internal/observability/logger"
	"github.com/hallapmark/vaiki-backend/internal/rate"
	"github.com/hallapmark/vaiki-backend/internal/store"
	"github.com/hallapmark/vaiki-backend/internal/store/core"
	"github.com/hallapmark/vaiki-backend/internal/store/pg"
	"github.com/hallapmark/vaiki-backend/internal/store/seed"
)

// Deps: lo que main ya resolvió antes de cablear HTTP.
type Deps struct {
	Config *config.Config
	// Issuer ya listo; Build no arranca sin él.
	Issuer *cdnsign.Issuer

	// Registry/Gatherer de Prometheus; nil => default.
	Registry prometheus.Registerer
	Gatherer prometheus.Gatherer

	// Repo/Cache opcionales (tests); nil => se abren según Config.
	Repo  core.Repository
	Cache cache.Client
}

// App es el resultado del wiring.
type App struct {
	Handler http.Handler
	Repo    core.Repository
	Cache   cache.Client

	closers []func() error
}

// Close libera cache y store (en orden inverso de apertura).
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build abre dependencias y arma el handler. Ante error libera lo ya abierto.
func Build(ctx context.Context, deps Deps) (_ *App, err error) {
	if deps.Config == nil {
		return nil, errors.New("server: config is required")
	}
	if deps.Issuer == nil {
		return nil, fmt.Errorf("server: %w: issuer is required", cdnsign.ErrConfiguration)
	}
	cfg := deps.Config
	log := logger.From(ctx).With(logger.Component("server"), logger.Op("Build"))

	app := &App{}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	// 1) Store
	repo := deps.Repo
	if repo == nil {
		repo, err = store.Open(ctx, StoreConfig(cfg))
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, repo.Close)
	}

	if cfg.Flags.Seed {
		res, err := seed.Run(ctx, repo, cfg.CloudFront.Domain)
		if err != nil {
			return nil, fmt.Errorf("server: seed: %w", err)
		}
		log.Info("catalog seeded", logger.Int("categories", res.Categories), logger.Int("movies", res.Movies))
	}

	// 2) Cache
	cc := deps.Cache
	if cc == nil {
		cc, err = cache.New(ctx, CacheConfig(cfg))
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, cc.Close)
	}
	cached := store.NewCached(repo, cc, config.Duration(cfg.Cache.CatalogTTL, 30*time.Second))

	app.Repo = cached
	app.Cache = cc

	// 3) Métricas
	if err := metrics.Register(deps.Registry); err != nil {
		return nil, fmt.Errorf("server: metrics: %w", err)
	}
	metrics.SignerReady.Set(1)

	mcfg := httpmetrics.MetricsConfig{Registry: deps.Registry, Gatherer: deps.Gatherer}
	if ps, ok := repo.(*pg.Store); ok {
		mcfg.Pool = func() *pgxpool.Pool { return ps.Pool() }
	}
	metricsHandler, err := httpmetrics.RegisterMetrics(mcfg)
	if err != nil {
		return nil, fmt.Errorf("server: http metrics: %w", err)
	}

	// 4) Services + controllers
	catalogService := catalogsvc.NewCatalogService(catalogsvc.Deps{Repo: cached})
	playbackService := playbacksvc.NewPlaybackService(playbacksvc.Deps{Movies: cached, Issuer: deps.Issuer})
	healthService := healthsvc.NewHealthService(healthsvc.Deps{
		Issuer:      deps.Issuer,
		StoreCheck:  repo.Ping,
		StoreDriver: repo.Driver(),
		Cache:       cc,
	})

	app.Handler = router.New(router.Deps{
		Catalog:         catalogctrl.NewCatalogController(catalogService),
		Playback:        playbackctrl.NewPlaybackController(playbackService),
		Health:          healthctrl.NewHealthController(healthService),
		Metrics:         metricsHandler,
		Instrument:      httpmetrics.WithMetrics,
		CORSOrigins:     cfg.Server.CORSAllowedOrigins,
		PlaybackLimiter: PlaybackLimiter(cfg, cc),
	})

	log.Info("http wiring ready",
		logger.Driver(repo.Driver()),
		logger.String("cache", cfg.Cache.Kind),
		logger.KeyPairID(deps.Issuer.KeyPairID()),
		logger.Bool("rate_limit", cfg.Rate.Enabled),
	)
	return app, nil
}

// StoreConfig traduce el bloque storage.
func StoreConfig(cfg *config.Config) store.Config {
	return store.Config{
		Driver: cfg.Storage.Driver,
		DSN:    cfg.Storage.DSN,
		Pool: pg.PoolConfig{
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: config.Duration(cfg.Storage.Postgres.ConnMaxLifetime, 0),
		},
		Migrate: cfg.Flags.Migrate,
	}
}

// CacheConfig traduce el bloque cache.
func CacheConfig(cfg *config.Config) cache.Config {
	return cache.Config{
		Driver:     cfg.Cache.Kind,
		Addr:       cfg.Cache.Redis.Addr,
		Password:   cfg.Cache.Redis.Password,
		DB:         cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: config.Duration(cfg.Cache.Memory.DefaultTTL, 2*time.Minute),
	}
}

// PlaybackLimiter elige el backend del rate limit: redis si el cache es
// redis (contador compartido entre réplicas), memoria en otro caso.
func PlaybackLimiter(cfg *config.Config, cc cache.Client) rate.Limiter {
	if !cfg.Rate.Enabled {
		return nil
	}
	window := config.Duration(cfg.Rate.Window, time.Minute)
	if r, ok := cc.(*cache.Redis); ok {
		return rate.NewRedisLimiter(r.Client(), r.Prefix()+"rl:", cfg.Rate.MaxRequests, window)
	}
	return rate.NewMemoryLimiter(cfg.Rate.MaxRequests, window)
}
