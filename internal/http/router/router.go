// Package router arma el chi.Router de la API pública.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	catalogctrl "github.com/hallapmark/vaiki-backend/internal/http/controllers/catalog"
	healthctrl "github.com/hallapmark/vaiki-backend/internal/http/controllers/health"
	playbackctrl "github.com/hallapmark/vaiki-backend/internal/http/controllers/playback"
	httperrors "github.com/hallapmark/vaiki-backend/internal/http/errors"
	mw "github.com/hallapmark/vaiki-backend/internal/http/middlewares"
	"github.com/hallapmark/vaiki-backend/internal/rate"
)

// Deps contiene todas las dependencias del router.
type Deps struct {
	Catalog  *catalogctrl.CatalogController
	Playback *playbackctrl.PlaybackController
	Health   *healthctrl.HealthController

	// Metrics es el handler de /metrics; nil => no se expone.
	Metrics http.Handler
	// Instrument envuelve cada request ruteado (métricas HTTP).
	Instrument mw.Middleware

	CORSOrigins []string
	// PlaybackLimiter limita playback-url por IP; nil => sin límite.
	PlaybackLimiter rate.Limiter
}

// New registra todas las rutas.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Base: aplica a todo, incluidos 404/405 y preflight.
	r.Use(mw.Stack(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithSecurityHeaders(),
		mw.WithCORS(deps.CORSOrigins),
		deps.Instrument,
	))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	registerHealthRoutes(r, deps)
	registerCatalogRoutes(r, deps)

	return r
}

// registerHealthRoutes: sin logging por request (muy frecuentes).
func registerHealthRoutes(r chi.Router, deps Deps) {
	if deps.Health != nil {
		r.Get("/healthz", deps.Health.Healthz)
		r.Get("/readyz", deps.Health.Readyz)
	}
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
}

func registerCatalogRoutes(r chi.Router, deps Deps) {
	r.Route("/api", func(r chi.Router) {
		r.Use(mw.WithLogging())

		if c := deps.Catalog; c != nil {
			r.Get("/movies", c.ListMovies)
			r.Get("/movies/{slug}", c.GetMovie)
			r.Get("/featured", c.GetFeatured)
			r.Get("/categories", c.ListCategories)
		}

		if p := deps.Playback; p != nil {
			r.With(
				mw.WithNoStore(),
				mw.WithRateLimit(mw.RateLimitConfig{Limiter: deps.PlaybackLimiter, Scope: "playback"}),
			).Get("/movies/{slug}/playback-url", p.GetPlaybackURL)
		}
	})
}
