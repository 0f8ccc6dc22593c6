package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hallapmark/vaiki-backend/internal/http/errors"
	"github.com/hallapmark/vaiki-backend/internal/http/helpers"
	"github.com/hallapmark/vaiki-backend/internal/observability/logger"
	"github.com/hallapmark/vaiki-backend/internal/rate"
)

// RateKeyFunc define cómo generar la clave de rate limiting.
type RateKeyFunc func(r *http.Request) string

// IPOnlyRateKey: una cuota por IP de cliente.
func IPOnlyRateKey(r *http.Request) string {
	return helpers.ClientIP(r)
}

// RateLimitConfig configura el middleware de rate limiting.
type RateLimitConfig struct {
	Limiter rate.Limiter
	KeyFunc RateKeyFunc
	Scope   string // prefijo de la clave, p.ej. "playback"
}

// WithRateLimit corta con 429 cuando el cliente excede su ventana.
// Si el limiter falla, el request pasa (fail-open).
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPOnlyRateKey
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := cfg.KeyFunc(r)
			if cfg.Scope != "" {
				key = cfg.Scope + "|" + key
			}

			res, err := cfg.Limiter.Allow(r.Context(), key)
			if err != nil {
				logger.From(r.Context()).Warn("rate limit error", logger.Component("rate"), logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			if res.WindowTTL > 0 {
				resetAt := time.Now().Add(res.WindowTTL).Unix()
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))
			}

			if !res.Allowed {
				if res.RetryAfter > 0 {
					secs := int(res.RetryAfter.Round(time.Second) / time.Second)
					if secs < 1 {
						secs = 1
					}
					w.Header().Set("Retry-After", strconv.Itoa(secs))
				}
				errors.WriteErrorCtx(w, r, errors.ErrRateLimitExceeded)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			next.ServeHTTP(w, r)
		})
	}
}
