// Package pg implementa core.Repository sobre Postgres (pgxpool).
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hallapmark/vaiki-backend/internal/observability/logger"
	"github.com/hallapmark/vaiki-backend/internal/store/core"
)

type Store struct{ pool *pgxpool.Pool }

var _ core.Repository = (*Store)(nil)

// PoolConfig: tuning opcional del pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// New abre el pool. El ping inicial no es fatal: la DB puede levantar
// después que el servicio, /readyz lo refleja.
func New(ctx context.Context, dsn string, cfg PoolConfig) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	// MaxIdleConns → MinConns (pgxpool)
	if cfg.MaxIdleConns > 0 {
		pcfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
		pcfg.MaxConnIdleTime = cfg.ConnMaxLifetime
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 8
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	log := logger.Named("pg")
	if err := pool.Ping(ctx); err != nil {
		log.Warn("pg pool startup ping failed", logger.Err(err))
	} else {
		log.Info("pg pool ready", logger.Int("max_conns", int(pcfg.MaxConns)))
	}
	return &Store{pool: pool}, nil
}

// Pool expone el pool (métricas, migraciones).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

func (s *Store) Driver() string { return "postgres" }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close es idempotente.
func (s *Store) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// ====================== MOVIES ======================

const movieColumns = `m.id, m.slug, m.title, m.year, m.description, m.duration_minutes,
	m.poster_url, m.backdrop_url, m.director, m.country, m.hls_path, m.featured, m.feature_text,
	COALESCE(ARRAY(SELECT mc.category FROM movie_categories mc WHERE mc.movie_id = m.id ORDER BY mc.position), '{}')`

func scanMovie(row pgx.Row) (*core.Movie, error) {
	var (
		m                                                  core.Movie
		year, duration                                     *int32
		desc, poster, backdrop, director, country, hls, ft *string
	)
	if err := row.Scan(&m.ID, &m.Slug, &m.Title, &year, &desc, &duration,
		&poster, &backdrop, &director, &country, &hls, &m.Featured, &ft, &m.Categories); err != nil {
		return nil, err
	}
	m.Year = int(deref(year))
	m.DurationMinutes = int(deref(duration))
	m.Description = deref(desc)
	m.PosterURL = deref(poster)
	m.BackdropURL = deref(backdrop)
	m.Director = deref(director)
	m.Country = deref(country)
	m.HLSPath = deref(hls)
	m.FeatureText = deref(ft)
	return &m, nil
}

func (s *Store) ListMovies(ctx context.Context) ([]core.Movie, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+movieColumns+` FROM movies m ORDER BY m.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (s *Store) GetMovieBySlug(ctx context.Context, slug string) (*core.Movie, error) {
	m, err := scanMovie(s.pool.QueryRow(ctx, `SELECT `+movieColumns+` FROM movies m WHERE m.slug = $1`, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	return m, err
}

func (s *Store) GetFeaturedMovie(ctx context.Context) (*core.Movie, error) {
	m, err := scanMovie(s.pool.QueryRow(ctx, `SELECT `+movieColumns+` FROM movies m WHERE m.featured ORDER BY m.id LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	return m, err
}

func (s *Store) UpsertMovie(ctx context.Context, m *core.Movie) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		const q = `
INSERT INTO movies (slug, title, year, description, duration_minutes, poster_url, backdrop_url,
                    director, country, hls_path, featured, feature_text)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (slug) DO UPDATE SET
    title = EXCLUDED.title, year = EXCLUDED.year, description = EXCLUDED.description,
    duration_minutes = EXCLUDED.duration_minutes, poster_url = EXCLUDED.poster_url,
    backdrop_url = EXCLUDED.backdrop_url, director = EXCLUDED.director, country = EXCLUDED.country,
    hls_path = EXCLUDED.hls_path, featured = EXCLUDED.featured, feature_text = EXCLUDED.feature_text
RETURNING id`
		if err := tx.QueryRow(ctx, q,
			m.Slug, m.Title, nullInt(m.Year), nullStr(m.Description), nullInt(m.DurationMinutes),
			nullStr(m.PosterURL), nullStr(m.BackdropURL), nullStr(m.Director), nullStr(m.Country),
			nullStr(m.HLSPath), m.Featured, nullStr(m.FeatureText),
		).Scan(&m.ID); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM movie_categories WHERE movie_id = $1`, m.ID); err != nil {
			return err
		}
		if len(m.Categories) == 0 {
			return nil
		}
		rows := make([][]any, len(m.Categories))
		for i, c := range m.Categories {
			rows[i] = []any{m.ID, i, c}
		}
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"movie_categories"}, []string{"movie_id", "position", "category"}, pgx.CopyFromRows(rows))
		return err
	})
}

func (s *Store) CountMovies(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM movies`).Scan(&n)
	return n, err
}

// ====================== CATEGORIES ======================

func (s *Store) ListVisibleCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, slug, title, order_index, visible
FROM categories WHERE visible
ORDER BY order_index, id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (core.Category, error) {
		var c core.Category
		err := r.Scan(&c.ID, &c.Slug, &c.Title, &c.OrderIndex, &c.Visible)
		return c, err
	})
}

func (s *Store) UpsertCategory(ctx context.Context, c *core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	const q = `
INSERT INTO categories (slug, title, order_index, visible)
VALUES ($1, $2, $3, $4)
ON CONFLICT (slug) DO UPDATE SET
    title = EXCLUDED.title, order_index = EXCLUDED.order_index, visible = EXCLUDED.visible
RETURNING id`
	return s.pool.QueryRow(ctx, q, c.Slug, c.Title, c.OrderIndex, c.Visible).Scan(&c.ID)
}

func (s *Store) CountCategories(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n)
	return n, err
}

// ---- helpers ----

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullInt(v int) *int32 {
	if v == 0 {
		return nil
	}
	n := int32(v)
	return &n
}
