// Package metrics define las métricas de dominio (firma de URLs, cache de
// catálogo). Vive aparte de internal/http para que store y services puedan
// registrar sin importar la capa HTTP.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	PlaybackURLsIssued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "playback_urls_issued_total",
		Help: "URLs de reproducción firmadas por resultado",
	}, []string{"result"}) // ok | invalid | signing_failed | not_found

	PlaybackSignLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "playback_url_sign_duration_seconds",
		Help:    "Latencia de la firma RSA de una URL",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
	})

	CatalogCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_lookups_total",
		Help: "Lecturas del cache de catálogo por resultado",
	}, []string{"entity", "result"}) // result: hit | miss | error

	SignerReady = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "playback_signer_ready",
		Help: "1 si la clave de firma está cargada",
	})
)

// Register registra las métricas de dominio (default registry si reg es nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{PlaybackURLsIssued, PlaybackSignLatency, CatalogCacheLookups, SignerReady} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}

// ObserveIssue registra una emisión y, si fue exitosa, su latencia.
func ObserveIssue(result string, took time.Duration) {
	PlaybackURLsIssued.WithLabelValues(result).Inc()
	if result == "ok" {
		PlaybackSignLatency.Observe(took.Seconds())
	}
}

// CacheLookup registra hit/miss/error del cache de catálogo.
func CacheLookup(entity, result string) {
	CatalogCacheLookups.WithLabelValues(entity, result).Inc()
}
