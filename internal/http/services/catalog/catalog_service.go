// Package catalog contiene el service de lectura del catálogo.
package catalog

import (
	"context"
	"errors"
	"fmt"

	dto "github.com/hallapmark/vaiki-backend/internal/http/dto/catalog"
	"github.com/hallapmark/vaiki-backend/internal/observability/logger"
	"github.com/hallapmark/vaiki-backend/internal/store/core"
)

// CatalogService define las lecturas públicas del catálogo.
type CatalogService interface {
	ListMovies(ctx context.Context) ([]dto.MovieDTO, error)
	GetMovie(ctx context.Context, slug string) (*dto.MovieDTO, error)
	// GetFeatured devuelve nil, nil cuando no hay destacada.
	GetFeatured(ctx context.Context) (*dto.MovieDTO, error)
	ListCategories(ctx context.Context) ([]dto.CategoryDTO, error)
}

// Deps contiene las dependencias del service.
type Deps struct {
	Repo core.Repository
}

type catalogService struct {
	deps Deps
}

// NewCatalogService crea el service de catálogo.
func NewCatalogService(deps Deps) CatalogService {
	return &catalogService{deps: deps}
}

var ErrMovieNotFound = errors.New("movie not found")

const componentCatalog = "catalog"

func (s *catalogService) ListMovies(ctx context.Context) ([]dto.MovieDTO, error) {
	movies, err := s.deps.Repo.ListMovies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return dto.NewMovieDTOs(movies), nil
}

func (s *catalogService) GetMovie(ctx context.Context, slug string) (*dto.MovieDTO, error) {
	m, err := s.deps.Repo.GetMovieBySlug(ctx, slug)
	if errors.Is(err, core.ErrNotFound) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get movie %q: %w", slug, err)
	}
	out := dto.NewMovieDTO(*m)
	return &out, nil
}

func (s *catalogService) GetFeatured(ctx context.Context) (*dto.MovieDTO, error) {
	m, err := s.deps.Repo.GetFeaturedMovie(ctx)
	if errors.Is(err, core.ErrNotFound) {
		logger.From(ctx).Debug("no featured movie",
			logger.Layer("service"),
			logger.Component(componentCatalog),
			logger.Op("GetFeatured"),
		)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("featured movie: %w", err)
	}
	out := dto.NewMovieDTO(*m)
	return &out, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]dto.CategoryDTO, error) {
	cats, err := s.deps.Repo.ListVisibleCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return dto.NewCategoryDTOs(cats), nil
}
