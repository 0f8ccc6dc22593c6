// Package memory implementa core.Repository en memoria (dev, tests, demo sin DB).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/hallapmark/vaiki-backend/internal/store/core"
)

type Store struct {
	mu         sync.RWMutex
	nextID     int64
	movies     map[string]core.Movie // slug -> movie
	categories map[string]core.Category
}

var _ core.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		movies:     make(map[string]core.Movie),
		categories: make(map[string]core.Category),
	}
}

func (s *Store) Driver() string { return "memory" }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }

func (s *Store) ListMovies(ctx context.Context) ([]core.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]core.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		out = append(out, m.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetMovieBySlug(ctx context.Context, slug string) (*core.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.movies[slug]
	if !ok {
		return nil, core.ErrNotFound
	}
	c := m.Clone()
	return &c, nil
}

func (s *Store) GetFeaturedMovie(ctx context.Context) (*core.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *core.Movie
	for _, m := range s.movies {
		if !m.Featured {
			continue
		}
		if best == nil || m.ID < best.ID {
			c := m.Clone()
			best = &c
		}
	}
	if best == nil {
		return nil, core.ErrNotFound
	}
	return best, nil
}

func (s *Store) UpsertMovie(ctx context.Context, m *core.Movie) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.movies[m.Slug]; ok {
		m.ID = prev.ID
	} else {
		s.nextID++
		m.ID = s.nextID
	}
	s.movies[m.Slug] = m.Clone()
	return nil
}

func (s *Store) CountMovies(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.movies), nil
}

func (s *Store) ListVisibleCategories(ctx context.Context) ([]core.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if c.Visible {
			out = append(out, c)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpsertCategory(ctx context.Context, c *core.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.categories[c.Slug]; ok {
		c.ID = prev.ID
	} else {
		s.nextID++
		c.ID = s.nextID
	}
	s.categories[c.Slug] = *c
	return nil
}

func (s *Store) CountCategories(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.categories), nil
}
