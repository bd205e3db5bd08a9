// Package cache provides the reference-data cache. The cache is an
// explicit object owned by the application and passed to whoever needs
// it; nothing in this package is global state.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores small reference payloads with a TTL. Lookups are
// best-effort; a miss and a backend failure look the same to callers.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
	// Healthy reports live redis connectivity for the health document.
	Healthy(ctx context.Context) bool
	Close() error
}

// Options selects the backend. An empty Addr selects the in-process map.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// New builds a cache from options.
func New(opts Options) Cache {
	if opts.Addr == "" {
		return NewMemory()
	}
	return NewRedis(opts)
}

// Redis is the redis-backed cache.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a redis cache. Connectivity is probed lazily; a dead
// redis degrades the health document but never fails requests.
func NewRedis(opts Options) *Redis {
	return &Redis{client: redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	r.client.Set(ctx, key, value, ttl)
}

func (r *Redis) Delete(ctx context.Context, key string) {
	r.client.Del(ctx, key)
}

func (r *Redis) Healthy(ctx context.Context) bool {
	return r.client.Ping(ctx).Err() == nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// Memory is the in-process fallback used when no redis is configured.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expires: expires}
	m.mu.Unlock()
}

func (m *Memory) Delete(_ context.Context, key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// Healthy is always false: the health document's redis check reports
// redis connectivity, and the in-process map is not redis.
func (m *Memory) Healthy(context.Context) bool {
	return false
}

func (m *Memory) Close() error {
	return nil
}
