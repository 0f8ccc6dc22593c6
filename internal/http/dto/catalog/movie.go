package catalog

import (
	"time"

	"github.com/hallapmark/vaiki-backend/internal/store/core"
)

// MovieDTO es la vista pública de una película. Nunca expone el HLS path:
// el cliente sólo recibe URLs firmadas vía playback-url.
type MovieDTO struct {
	Slug            string   `json:"slug"`
	Title           string   `json:"title"`
	Year            *int     `json:"year"`
	Description     string   `json:"description"`
	DurationMinutes *int     `json:"durationMinutes"`
	PosterURL       string   `json:"posterUrl"`
	BackdropURL     string   `json:"backdropUrl"`
	Categories      []string `json:"categories"`
	Director        string   `json:"director"`
	Country         string   `json:"country"`
	Featured        bool     `json:"featured"`
	FeatureText     string   `json:"featureText"`
}

// CategoryDTO: categoría visible del home.
type CategoryDTO struct {
	Slug       string `json:"slug"`
	Title      string `json:"title"`
	OrderIndex int    `json:"orderIndex"`
}

// PlaybackURLResponse responde GET /api/movies/{slug}/playback-url.
type PlaybackURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewMovieDTO mapea core.Movie; año y duración 0 salen como null.
func NewMovieDTO(m core.Movie) MovieDTO {
	cats := append(make([]string, 0, len(m.Categories)), m.Categories...)
	return MovieDTO{
		Slug:            m.Slug,
		Title:           m.Title,
		Year:            nonZero(m.Year),
		Description:     m.Description,
		DurationMinutes: nonZero(m.DurationMinutes),
		PosterURL:       m.PosterURL,
		BackdropURL:     m.BackdropURL,
		Categories:      cats,
		Director:        m.Director,
		Country:         m.Country,
		Featured:        m.Featured,
		FeatureText:     m.FeatureText,
	}
}

// NewMovieDTOs mapea una lista; nunca devuelve nil (JSON "[]").
func NewMovieDTOs(ms []core.Movie) []MovieDTO {
	out := make([]MovieDTO, 0, len(ms))
	for _, m := range ms {
		out = append(out, NewMovieDTO(m))
	}
	return out
}

// NewCategoryDTOs mapea categorías visibles.
func NewCategoryDTOs(cs []core.Category) []CategoryDTO {
	out := make([]CategoryDTO, 0, len(cs))
	for _, c := range cs {
		out = append(out, CategoryDTO{Slug: c.Slug, Title: c.Title, OrderIndex: c.OrderIndex})
	}
	return out
}

func nonZero(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
