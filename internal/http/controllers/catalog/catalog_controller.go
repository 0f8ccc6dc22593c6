// Package catalog contiene los controllers de lectura del catálogo.
package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	httperrors "github.com/hallapmark/vaiki-backend/internal/http/errors"
	"github.com/hallapmark/vaiki-backend/internal/http/helpers"
	svc "github.com/hallapmark/vaiki-backend/internal/http/services/catalog"
	"github.com/hallapmark/vaiki-backend/internal/observability/logger"
)

// CatalogController maneja /api/movies, /api/featured y /api/categories.
type CatalogController struct {
	service svc.CatalogService
}

// NewCatalogController crea el controller de catálogo.
func NewCatalogController(service svc.CatalogService) *CatalogController {
	return &CatalogController{service: service}
}

// ListMovies maneja GET /api/movies
func (c *CatalogController) ListMovies(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("CatalogController.ListMovies"))

	movies, err := c.service.ListMovies(r.Context())
	if err != nil {
		c.handleError(w, r, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, movies)
}

// GetMovie maneja GET /api/movies/{slug}
func (c *CatalogController) GetMovie(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("CatalogController.GetMovie"), logger.Slug(slug))

	movie, err := c.service.GetMovie(r.Context(), slug)
	if err != nil {
		c.handleError(w, r, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, movie)
}

// GetFeatured maneja GET /api/featured. Sin destacada => 204.
func (c *CatalogController) GetFeatured(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("CatalogController.GetFeatured"))

	movie, err := c.service.GetFeatured(r.Context())
	if err != nil {
		c.handleError(w, r, err, log)
		return
	}
	if movie == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, movie)
}

// ListCategories maneja GET /api/categories
func (c *CatalogController) ListCategories(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("CatalogController.ListCategories"))

	cats, err := c.service.ListCategories(r.Context())
	if err != nil {
		c.handleError(w, r, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, cats)
}

// handleError mapea errores del service a respuestas HTTP.
func (c *CatalogController) handleError(w http.ResponseWriter, r *http.Request, err error, log *zap.Logger) {
	switch {
	case errors.Is(err, svc.ErrMovieNotFound):
		httperrors.WriteError(w, httperrors.ErrMovieNotFound)
	default:
		log.Error("unexpected catalog error", logger.Err(err))
		httperrors.WriteErrorCtx(w, r, err)
	}
}
