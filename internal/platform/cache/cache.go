package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache stores JSON-encoded values under string keys.
type Cache interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
	// Generation reads the counter stored at key, 0 when unset.
	Generation(ctx context.Context, key string) (int64, error)
	// Bump increments the counter at key and returns the new value.
	Bump(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

type noop struct{}

// Noop never stores anything; every Get misses.
func Noop() Cache { return noop{} }

func (noop) Get(context.Context, string, any) error                { return ErrMiss }
func (noop) Set(context.Context, string, any, time.Duration) error { return nil }
func (noop) DeletePrefix(context.Context, string) error            { return nil }
func (noop) Generation(context.Context, string) (int64, error)     { return 0, nil }
func (noop) Bump(context.Context, string) (int64, error)           { return 0, nil }
func (noop) Ping(context.Context) error                            { return nil }
func (noop) Close() error                                          { return nil }

type memEntry struct {
	raw     []byte
	expires time.Time
}

type memory struct {
	mu    sync.Mutex
	items map[string]memEntry
	gens  map[string]int64
	now   func() time.Time
}

// NewMemory returns a process-local cache for tests. Invalidation never
// reaches other processes, so it is not wired into the server.
func NewMemory() Cache {
	return &memory{items: map[string]memEntry{}, gens: map[string]int64{}, now: time.Now}
}

func (m *memory) Get(_ context.Context, key string, dst any) error {
	m.mu.Lock()
	e, ok := m.items[key]
	if ok && !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.items, key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return ErrMiss
	}
	return json.Unmarshal(e.raw, dst)
}

func (m *memory) Set(_ context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	e := memEntry{raw: raw}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.items[key] = e
	m.mu.Unlock()
	return nil
}

func (m *memory) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			delete(m.items, k)
		}
	}
	return nil
}

func (m *memory) Generation(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gens[key], nil
}

func (m *memory) Bump(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gens[key]++
	return m.gens[key], nil
}

func (m *memory) Ping(context.Context) error { return nil }
func (m *memory) Close() error               { return nil }
