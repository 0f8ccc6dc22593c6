// Package playback emite URLs firmadas para el HLS de una película.
package playback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hallapmark/vaiki-backend/internal/cdnsign"
	dto "github.com/hallapmark/vaiki-backend/internal/http/dto/catalog"
	"github.com/hallapmark/vaiki-backend/internal/metrics"
	"github.com/hallapmark/vaiki-backend/internal/observability/logger"
	"github.com/hallapmark/vaiki-backend/internal/store/core"
)

// URLIssuer es lo que el service necesita de *cdnsign.Issuer.
type URLIssuer interface {
	Issue(objectPath string, ttl time.Duration) (*cdnsign.SignedURL, error)
}

// PlaybackService define la emisión de URLs de reproducción.
type PlaybackService interface {
	// IssueURL firma el HLS de la película slug. ttl <= 0 usa el default del issuer.
	IssueURL(ctx context.Context, slug string, ttl time.Duration) (*dto.PlaybackURLResponse, error)
}

// Deps contiene las dependencias del service.
type Deps struct {
	Movies core.MovieRepository
	Issuer URLIssuer
}

type playbackService struct {
	deps Deps
}

// NewPlaybackService crea el service de playback.
func NewPlaybackService(deps Deps) PlaybackService {
	return &playbackService{deps: deps}
}

var (
	ErrMovieNotFound = errors.New("movie not found")
	ErrNoHLSContent  = errors.New("no hls content")
)

func (s *playbackService) IssueURL(ctx context.Context, slug string, ttl time.Duration) (*dto.PlaybackURLResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("playback"),
		logger.Op("IssueURL"),
		logger.Slug(slug),
	)

	m, err := s.deps.Movies.GetMovieBySlug(ctx, slug)
	switch {
	case errors.Is(err, core.ErrNotFound):
		metrics.ObserveIssue("not_found", 0)
		return nil, ErrMovieNotFound
	case err != nil:
		return nil, fmt.Errorf("get movie %q: %w", slug, err)
	}
	if !m.Playable() {
		metrics.ObserveIssue("not_found", 0)
		return nil, ErrNoHLSContent
	}

	start := time.Now()
	signed, err := s.deps.Issuer.Issue(m.HLSPath, ttl)
	took := time.Since(start)
	if err != nil {
		switch {
		case errors.Is(err, cdnsign.ErrValidation):
			metrics.ObserveIssue("invalid", took)
			log.Warn("invalid object path", logger.ObjectPath(m.HLSPath), logger.Err(err))
		default:
			metrics.ObserveIssue("signing_failed", took)
			log.Error("signing failed", logger.ObjectPath(m.HLSPath), logger.Err(err))
		}
		return nil, err
	}
	metrics.ObserveIssue("ok", took)

	// la URL firmada es una credencial: no se loguea
	log.Debug("playback url issued", logger.ObjectPath(m.HLSPath), logger.Expires(signed.ExpiresAt))

	return &dto.PlaybackURLResponse{URL: signed.URL, ExpiresAt: signed.ExpiresAt}, nil
}
