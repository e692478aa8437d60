package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local cache. A janitor goroutine evicts expired
// entries until Close is called.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	prefix  string

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

const janitorInterval = time.Minute

// NewMemory creates a memory cache and starts its janitor.
func NewMemory(cfg Config) *Memory {
	m := &Memory{
		entries: make(map[string]entry),
		ttl:     cfg.TTL,
		prefix:  cfg.Prefix,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go m.janitor(janitorInterval)
	return m
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	e, ok := m.entries[m.prefix+key]
	m.mu.RUnlock()

	if !ok || e.expired(time.Now()) {
		return nil, ErrMiss
	}
	return e.value, nil
}

// Set stores value. A zero ttl uses the configured TTL; a negative ttl never
// expires.
func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl == 0 {
		ttl = m.ttl
	}

	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[m.prefix+key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.entries, m.prefix+key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close stops the janitor and waits for it to exit.
func (m *Memory) Close() error {
	m.once.Do(func() { close(m.stop) })
	<-m.done
	return nil
}

func (m *Memory) janitor(interval time.Duration) {
	defer close(m.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.evictExpired(now)
		}
	}
}

func (m *Memory) evictExpired(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
		}
	}
}
