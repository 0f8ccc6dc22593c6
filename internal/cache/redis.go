package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implementa Client sobre go-redis.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis conecta y hace un ping inicial (5s máx).
func NewRedis(ctx context.Context, cfg Config) (*Redis, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	} else if !strings.Contains(addr, ":") {
		addr += ":6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping %s: %w", addr, err)
	}
	return &Redis{client: rdb, prefix: cfg.Prefix}, nil
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, prefixed(c.prefix, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (c *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, prefixed(c.prefix, key), value, ttl).Err()
}

func (c *Redis) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, prefixed(c.prefix, key)).Err()
}

func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	return c.client.Close()
}

func (c *Redis) Stats(ctx context.Context) (Stats, error) {
	keys, err := c.client.DBSize(ctx).Result()
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Driver: "redis", Keys: keys}

	info, err := c.client.Info(ctx, "stats").Result()
	if err != nil {
		return st, nil
	}
	for _, line := range strings.Split(info, "\r\n") {
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		switch k {
		case "keyspace_hits":
			st.Hits, _ = strconv.ParseInt(v, 10, 64)
		case "keyspace_misses":
			st.Misses, _ = strconv.ParseInt(v, 10, 64)
		}
	}
	return st, nil
}

// Client expone el cliente go-redis para componentes que comparten conexión (rate limit).
func (c *Redis) Client() *redis.Client { return c.client }

// Prefix devuelve el prefijo de claves configurado.
func (c *Redis) Prefix() string { return c.prefix }
