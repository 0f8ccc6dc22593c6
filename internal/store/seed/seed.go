// Package seed carga el catálogo inicial (dos películas de dominio público).
package seed

import (
	"context"
	"strings"

	"github.com/hallapmark/vaiki-backend/internal/observability/logger"
	"github.com/hallapmark/vaiki-backend/internal/store/core"
)

// Result indica cuántas filas se insertaron (0 si ya había datos).
type Result struct {
	Categories int
	Movies     int
}

// Categories devuelve las categorías base.
func Categories() []core.Category {
	return []core.Category{
		{Slug: "classics", Title: "Classics", OrderIndex: 0, Visible: true},
		{Slug: "anti-war", Title: "Anti-War", OrderIndex: 1, Visible: true},
		{Slug: "comedies", Title: "Comedies", OrderIndex: 2, Visible: true},
	}
}

// Movies devuelve las películas base. Con cdnDomain, poster/backdrop se
// sirven desde la distribución; sin él, imágenes placeholder.
func Movies(cdnDomain string) []core.Movie {
	prefix := ""
	if d := strings.TrimSpace(cdnDomain); d != "" {
		prefix = "https://" + d
	}
	art := func(slug, file, fallback string) string {
		if prefix == "" {
			return fallback
		}
		return prefix + "/" + slug + "/" + file
	}

	const (
		allQuiet = "all-quiet-on-the-western-front-1930"
		friday   = "his-girl-friday"
	)
	return []core.Movie{
		{
			Slug:            allQuiet,
			Title:           "All Quiet on the Western Front",
			Year:            1930,
			Description:     "A young soldier faces profound disillusionment in the soul-destroying horror of World War I.",
			DurationMinutes: 152,
			PosterURL:       art(allQuiet, "poster.jpg", "https://images.unsplash.com/photo-1526392060635-9d6019884377?w=400&h=600&fit=crop"),
			BackdropURL:     art(allQuiet, "backdrop.jpg", "https://images.unsplash.com/photo-1526392060635-9d6019884377?w=1920&h=1080&fit=crop"),
			Categories:      []string{"classics", "anti-war"},
			Director:        "Lewis Milestone",
			Country:         "United States",
			HLSPath:         "/" + allQuiet + "/master.m3u8",
			Featured:        true,
		},
		{
			Slug:            friday,
			Title:           "His Girl Friday",
			Year:            1940,
			Description:     "A fast-talking reporter and her ex-husband mix love and news in this classic screwball comedy.",
			DurationMinutes: 92,
			PosterURL:       art(friday, "poster.jpg", "https://images.unsplash.com/photo-1518709268805-4e9042af9f23?w=400&h=600&fit=crop"),
			BackdropURL:     art(friday, "backdrop.jpg", "https://images.unsplash.com/photo-1518709268805-4e9042af9f23?w=1920&h=1080&fit=crop"),
			Categories:      []string{"classics", "comedies"},
			Director:        "Howard Hawks",
			Country:         "United States",
			HLSPath:         "/" + friday + "/master.m3u8",
		},
	}
}

// Run siembra categorías y películas. Cada tabla se salta si ya tiene filas.
func Run(ctx context.Context, repo core.Repository, cdnDomain string) (Result, error) {
	log := logger.From(ctx).With(logger.Component("seed"))
	var res Result

	n, err := repo.CountCategories(ctx)
	if err != nil {
		return res, err
	}
	if n > 0 {
		log.Info("categories already seeded, skipping", logger.Count(n))
	} else {
		for _, c := range Categories() {
			c := c
			if err := repo.UpsertCategory(ctx, &c); err != nil {
				return res, err
			}
			res.Categories++
		}
		log.Info("seeded categories", logger.Count(res.Categories))
	}

	n, err = repo.CountMovies(ctx)
	if err != nil {
		return res, err
	}
	if n > 0 {
		log.Info("movies already seeded, skipping", logger.Count(n))
		return res, nil
	}
	for _, m := range Movies(cdnDomain) {
		m := m
		if err := repo.UpsertMovie(ctx, &m); err != nil {
			return res, err
		}
		res.Movies++
	}
	log.Info("seeded movies", logger.Count(res.Movies))
	return res, nil
}
