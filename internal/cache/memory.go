package cache

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory implementa Client sobre go-cache.
type Memory struct {
	c      *gocache.Cache
	prefix string
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemory crea un cache en memoria. defaultTTL 0 => 2m.
func NewMemory(prefix string, defaultTTL time.Duration) *Memory {
	if defaultTTL <= 0 {
		defaultTTL = 2 * time.Minute
	}
	return &Memory{c: gocache.New(defaultTTL, time.Minute), prefix: prefix}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(prefixed(m.prefix, key))
	if !ok {
		m.misses.Add(1)
		return nil, ErrNotFound
	}
	m.hits.Add(1)
	b, _ := v.([]byte)
	return b, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	// copia: el caller puede reutilizar el slice
	cp := make([]byte, len(value))
	copy(cp, value)
	m.c.Set(prefixed(m.prefix, key), cp, ttl)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.c.Delete(prefixed(m.prefix, key))
	return nil
}

// DeletePrefix borra todas las keys que empiezan con p (invalidación tras seed).
func (m *Memory) DeletePrefix(p string) int {
	full := prefixed(m.prefix, p)
	n := 0
	for k := range m.c.Items() {
		if strings.HasPrefix(k, full) {
			m.c.Delete(k)
			n++
		}
	}
	return n
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error {
	m.c.Flush()
	return nil
}

func (m *Memory) Stats(context.Context) (Stats, error) {
	return Stats{
		Driver: "memory",
		Keys:   int64(m.c.ItemCount()),
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
	}, nil
}
