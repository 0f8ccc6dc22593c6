// Package health contiene el controller para health checks.
package health

import (
	"net/http"

	"github.com/hallapmark/vaiki-backend/internal/http/helpers"
	svc "github.com/hallapmark/vaiki-backend/internal/http/services/health"
	"github.com/hallapmark/vaiki-backend/internal/observability/logger"
)

// HealthController maneja las rutas de health check.
type HealthController struct {
	service svc.HealthService
}

// NewHealthController crea un nuevo controller de health check.
func NewHealthController(service svc.HealthService) *HealthController {
	return &HealthController{service: service}
}

// Healthz maneja GET /healthz (liveness, sin dependencias).
func (c *HealthController) Healthz(w http.ResponseWriter, _ *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz maneja GET /readyz
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	response := c.service.Check(ctx)

	if response.Version != "" {
		w.Header().Set("X-Service-Version", response.Version)
	}
	if response.Commit != "" {
		w.Header().Set("X-Service-Commit", response.Commit)
	}

	statusCode := http.StatusOK // ready o degraded
	if response.Status == "unavailable" {
		statusCode = http.StatusServiceUnavailable
	}

	log.Debug("health check completed",
		logger.String("status", response.Status),
		logger.Int("components_count", len(response.Components)),
	)

	w.Header().Set("Cache-Control", "no-store")
	helpers.WriteJSON(w, statusCode, response)
}
