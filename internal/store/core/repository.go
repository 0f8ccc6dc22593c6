package core

import "context"

// MovieRepository: lecturas y escrituras de películas.
type MovieRepository interface {
	// ListMovies devuelve todas las películas ordenadas por id.
	ListMovies(ctx context.Context) ([]Movie, error)
	// GetMovieBySlug devuelve ErrNotFound si no existe.
	GetMovieBySlug(ctx context.Context, slug string) (*Movie, error)
	// GetFeaturedMovie devuelve la primera destacada (menor id) o ErrNotFound.
	GetFeaturedMovie(ctx context.Context) (*Movie, error)
	// UpsertMovie inserta o actualiza por slug y completa m.ID.
	UpsertMovie(ctx context.Context, m *Movie) error
	CountMovies(ctx context.Context) (int, error)
}

// CategoryRepository: categorías del home.
type CategoryRepository interface {
	// ListVisibleCategories devuelve las visibles ordenadas por order_index.
	ListVisibleCategories(ctx context.Context) ([]Category, error)
	// UpsertCategory inserta o actualiza por slug y completa c.ID.
	UpsertCategory(ctx context.Context, c *Category) error
	CountCategories(ctx context.Context) (int, error)
}

// Repository es el store completo del catálogo.
type Repository interface {
	MovieRepository
	CategoryRepository

	// Driver identifica el backend ("memory", "postgres").
	Driver() string
	Ping(ctx context.Context) error
	Close() error
}
