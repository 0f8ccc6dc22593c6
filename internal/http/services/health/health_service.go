// Package health contiene el service para health checks.
package health

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hallapmark/vaiki-backend/internal/cache"
	"github.com/hallapmark/vaiki-backend/internal/cdnsign"
	dto "github.com/hallapmark/vaiki-backend/internal/http/dto/health"
	"github.com/hallapmark/vaiki-backend/internal/observability/logger"
)

// HealthService define las operaciones de health check.
type HealthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

// Deps contiene las dependencias inyectables para el health service.
type Deps struct {
	Issuer *cdnsign.Issuer
	// StoreCheck hace ping al catálogo; StoreDriver sólo informa.
	StoreCheck  func(ctx context.Context) error
	StoreDriver string
	Cache       cache.Client
}

type healthService struct {
	deps Deps
}

// NewHealthService crea un nuevo service de health check.
func NewHealthService(deps Deps) HealthService {
	return &healthService{deps: deps}
}

const (
	componentHealth = "health"
	selfCheckPath   = "/healthz-selfcheck"
	checkTimeout    = 2 * time.Second
)

func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(componentHealth),
		logger.Op("Check"),
	)

	response := dto.HealthResponse{
		Components: make(map[string]dto.HealthStatus),
		Timestamp:  time.Now().UTC(),
		Version:    os.Getenv("SERVICE_VERSION"),
		Commit:     os.Getenv("SERVICE_COMMIT"),
	}

	hasErrors := false
	hasCriticalErrors := false

	// 1) Signer (crítico): firma y verifica una URL de prueba
	if s.deps.Issuer != nil {
		response.KeyPairID = s.deps.Issuer.KeyPairID()
		if err := s.checkSigner(); err != nil {
			response.Components["signer"] = dto.HealthStatus{Status: "error", Message: err.Error()}
			hasCriticalErrors = true
			log.Error("signer self-check failed", logger.Err(err))
		} else {
			response.Components["signer"] = dto.HealthStatus{Status: "ok"}
		}
	} else {
		response.Components["signer"] = dto.HealthStatus{Status: "error", Message: "issuer not initialized"}
		hasCriticalErrors = true
	}

	// 2) Catálogo (crítico)
	if s.deps.StoreCheck != nil {
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := s.deps.StoreCheck(cctx)
		cancel()
		if err != nil {
			response.Components["storage"] = dto.HealthStatus{Status: "error", Message: fmt.Sprintf("unavailable: %v", err)}
			hasCriticalErrors = true
			log.Error("storage unavailable", logger.Driver(s.deps.StoreDriver), logger.Err(err))
		} else {
			response.Components["storage"] = dto.HealthStatus{Status: "ok", Message: s.deps.StoreDriver}
		}
	} else {
		response.Components["storage"] = dto.HealthStatus{Status: "error", Message: "store not initialized"}
		hasCriticalErrors = true
	}

	// 3) Cache (no crítico: el store cacheado cae al backend)
	if s.deps.Cache != nil {
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := s.deps.Cache.Ping(cctx)
		var st cache.Stats
		if err == nil {
			st, err = s.deps.Cache.Stats(cctx)
		}
		cancel()
		if err != nil {
			response.Components["cache"] = dto.HealthStatus{Status: "error", Message: fmt.Sprintf("unavailable: %v", err)}
			hasErrors = true
			log.Warn("cache unavailable", logger.Err(err))
		} else {
			response.Components["cache"] = dto.HealthStatus{
				Status:  "ok",
				Message: fmt.Sprintf("%s (keys=%d hits=%d misses=%d)", st.Driver, st.Keys, st.Hits, st.Misses),
			}
		}
	} else {
		response.Components["cache"] = dto.HealthStatus{Status: "disabled"}
	}

	switch {
	case hasCriticalErrors:
		response.Status = "unavailable"
	case hasErrors:
		response.Status = "degraded"
	default:
		response.Status = "ready"
	}
	return response
}

// checkSigner emite una URL de prueba y la verifica igual que el edge.
func (s *healthService) checkSigner() error {
	signed, err := s.deps.Issuer.Issue(selfCheckPath, time.Minute)
	if err != nil {
		return fmt.Errorf("sign failed: %w", err)
	}
	if err := cdnsign.VerifyURL(s.deps.Issuer.PublicKey(), signed.URL); err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}
	return nil
}
