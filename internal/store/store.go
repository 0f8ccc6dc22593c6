// Package store abre el repositorio del catálogo según la config y le agrega
// el cache de lecturas.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hallapmark/vaiki-backend/internal/observability/logger"
	"github.com/hallapmark/vaiki-backend/internal/store/core"
	"github.com/hallapmark/vaiki-backend/internal/store/memory"
	"github.com/hallapmark/vaiki-backend/internal/store/pg"
)

// Config para Open.
type Config struct {
	Driver  string // memory | postgres
	DSN     string
	Pool    pg.PoolConfig
	Migrate bool // aplica migraciones embebidas al abrir (sólo postgres)
}

// Open crea el repositorio. Con Migrate=true y postgres, corre migraciones.
func Open(ctx context.Context, cfg Config) (core.Repository, error) {
	log := logger.From(ctx).With(logger.Component("store"), logger.Driver(cfg.Driver))

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "memory":
		log.Info("using in-memory catalog store")
		return memory.New(), nil
	case "postgres", "pg":
		s, err := pg.New(ctx, cfg.DSN, cfg.Pool)
		if err != nil {
			return nil, err
		}
		if cfg.Migrate {
			start := time.Now()
			n, err := s.Migrate(ctx)
			if err != nil {
				_ = s.Close()
				return nil, fmt.Errorf("store: migrate: %w", err)
			}
			log.Info("catalog migrations done", logger.Count(n), logger.Duration(time.Since(start)))
		}
		return s, nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
