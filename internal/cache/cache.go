// Package cache abstrae el cache de lecturas del catálogo.
//
// Backends:
//   - memory: in-process (go-cache), para desarrollo y una sola réplica.
//   - redis: compartido entre réplicas.
//
// Sólo guarda datos públicos del catálogo. Las URLs firmadas no pasan por acá.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Client define las operaciones de cache.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe o expiró.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set guarda un valor. ttl 0 usa el default del backend.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete elimina una key. No falla si no existe.
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
	Close() error
	Stats(ctx context.Context) (Stats, error)
}

// Stats contiene estadísticas del cache.
type Stats struct {
	Driver string `json:"driver"`
	Keys   int64  `json:"keys"`
	Hits   int64  `json:"hits"`
	Misses int64  `json:"misses"`
}

// Config para crear un Client.
type Config struct {
	Driver     string // "memory" | "redis"
	Addr       string // host:port (redis)
	Password   string
	DB         int
	Prefix     string        // prefijo para todas las keys
	DefaultTTL time.Duration // memory; 0 => 2m
}

// ErrNotFound: la key no existe o expiró.
var ErrNotFound = errors.New("cache: key not found")

// New crea un cliente de cache según la configuración.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedis(ctx, cfg)
	case "memory", "":
		return NewMemory(cfg.Prefix, cfg.DefaultTTL), nil
	default:
		return nil, fmt.Errorf("cache: unknown driver %q", cfg.Driver)
	}
}

func prefixed(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + k
}
