// Package playback contiene el controller de URLs de reproducción.
package playback

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hallapmark/vaiki-backend/internal/cdnsign"
	httperrors "github.com/hallapmark/vaiki-backend/internal/http/errors"
	"github.com/hallapmark/vaiki-backend/internal/http/helpers"
	svc "github.com/hallapmark/vaiki-backend/internal/http/services/playback"
	"github.com/hallapmark/vaiki-backend/internal/observability/logger"
)

// PlaybackController maneja GET /api/movies/{slug}/playback-url.
type PlaybackController struct {
	service svc.PlaybackService
}

// NewPlaybackController crea el controller de playback.
func NewPlaybackController(service svc.PlaybackService) *PlaybackController {
	return &PlaybackController{service: service}
}

// GetPlaybackURL maneja GET /api/movies/{slug}/playback-url?ttl=<segundos>
func (c *PlaybackController) GetPlaybackURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("PlaybackController.GetPlaybackURL"), logger.Slug(slug))

	ttl, err := parseTTL(r.URL.Query().Get("ttl"))
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("ttl must be a positive integer number of seconds"))
		return
	}

	res, err := c.service.IssueURL(ctx, slug, ttl)
	switch {
	case err == nil:
	case errors.Is(err, svc.ErrMovieNotFound):
		httperrors.WriteError(w, httperrors.ErrMovieNotFound)
		return
	case errors.Is(err, svc.ErrNoHLSContent):
		httperrors.WriteError(w, httperrors.ErrNoPlayableContent)
		return
	case errors.Is(err, cdnsign.ErrValidation):
		// el path viene del catálogo: dato roto, no culpa del cliente
		log.Error("catalog has an invalid hls path", logger.Err(err))
		httperrors.WriteErrorCtx(w, r, httperrors.ErrInternalServerError.WithCause(err))
		return
	default:
		httperrors.WriteErrorCtx(w, r, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, res)
}

// parseTTL: vacío => 0 (default del issuer); si viene, entero positivo.
func parseTTL(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, strconv.ErrRange
	}
	return time.Duration(n) * time.Second, nil
}
