package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hallapmark/vaiki-backend/internal/cache"
	"github.com/hallapmark/vaiki-backend/internal/metrics"
	"github.com/hallapmark/vaiki-backend/internal/observability/logger"
	"github.com/hallapmark/vaiki-backend/internal/store/core"
)

const (
	keyMovies     = "catalog:movies"
	keyFeatured   = "catalog:featured"
	keyCategories = "catalog:categories"
	keyMoviePfx   = "catalog:movie:"

	// loadTimeout acota una carga compartida desde el repo.
	loadTimeout = 10 * time.Second
)

// Cached envuelve un core.Repository con cache read-through de las lecturas
// del catálogo. Los misses concurrentes de la misma key se colapsan con
// singleflight. Un error del cache nunca falla la lectura: se va al repo.
type Cached struct {
	core.Repository
	c   cache.Client
	ttl time.Duration
	sf  singleflight.Group
}

var _ core.Repository = (*Cached)(nil)

// NewCached: ttl <= 0 => 30s.
func NewCached(repo core.Repository, c cache.Client, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Cached{Repository: repo, c: c, ttl: ttl}
}

func readThrough[T any](ctx context.Context, s *Cached, entity, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T
	log := logger.From(ctx)

	b, err := s.c.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		if uerr := json.Unmarshal(b, &v); uerr == nil {
			metrics.CacheLookup(entity, "hit")
			return v, nil
		}
		// entrada corrupta o de otra versión: se descarta
		_ = s.c.Delete(ctx, key)
		metrics.CacheLookup(entity, "miss")
	case errors.Is(err, cache.ErrNotFound):
		metrics.CacheLookup(entity, "miss")
	default:
		metrics.CacheLookup(entity, "error")
		log.Warn("catalog cache get failed", logger.Key(key), logger.Err(err))
	}

	// La carga compartida no hereda la cancelación del primer caller;
	// cada caller corta solo con su propio ctx.
	ch := s.sf.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		v, err := load(lctx)
		if err != nil {
			return nil, err
		}
		if b, merr := json.Marshal(v); merr == nil {
			if serr := s.c.Set(lctx, key, b, s.ttl); serr != nil {
				log.Warn("catalog cache set failed", logger.Key(key), logger.Err(serr))
			}
		}
		return v, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return zero, res.Err
	}
	return res.Val.(T), nil
}

func (s *Cached) ListMovies(ctx context.Context) ([]core.Movie, error) {
	return readThrough(ctx, s, "movies", keyMovies, s.Repository.ListMovies)
}

func (s *Cached) GetMovieBySlug(ctx context.Context, slug string) (*core.Movie, error) {
	m, err := readThrough(ctx, s, "movie", keyMoviePfx+slug, func(ctx context.Context) (*core.Movie, error) {
		return s.Repository.GetMovieBySlug(ctx, slug)
	})
	if err != nil {
		return nil, err
	}
	// cada caller recibe su copia (singleflight comparte el puntero)
	c := m.Clone()
	return &c, nil
}

func (s *Cached) GetFeaturedMovie(ctx context.Context) (*core.Movie, error) {
	m, err := readThrough(ctx, s, "featured", keyFeatured, s.Repository.GetFeaturedMovie)
	if err != nil {
		return nil, err
	}
	c := m.Clone()
	return &c, nil
}

func (s *Cached) ListVisibleCategories(ctx context.Context) ([]core.Category, error) {
	return readThrough(ctx, s, "categories", keyCategories, s.Repository.ListVisibleCategories)
}

func (s *Cached) UpsertMovie(ctx context.Context, m *core.Movie) error {
	if err := s.Repository.UpsertMovie(ctx, m); err != nil {
		return err
	}
	s.invalidate(ctx, keyMovies, keyFeatured, keyMoviePfx+m.Slug)
	return nil
}

func (s *Cached) UpsertCategory(ctx context.Context, c *core.Category) error {
	if err := s.Repository.UpsertCategory(ctx, c); err != nil {
		return err
	}
	s.invalidate(ctx, keyCategories)
	return nil
}

// Close cierra el repo; el cache lo cierra quien lo creó.
func (s *Cached) Close() error { return s.Repository.Close() }

func (s *Cached) invalidate(ctx context.Context, keys ...string) {
	for _, k := range keys {
		if err := s.c.Delete(ctx, k); err != nil {
			logger.From(ctx).Warn("catalog cache invalidate failed", logger.Key(k), logger.Err(err))
		}
	}
}
