package cache

import (
	"context"
	"sync"

	"github.com/huntdb95-cloud/PERSONALAUTO/internal/intake"
	"github.com/huntdb95-cloud/PERSONALAUTO/pkg/logger"
)

// MemoryCache is a process-local Store used in tests and when no durable
// backend is reachable. It keeps the encoded record, like the real backends.
type MemoryCache struct {
	mu     sync.RWMutex
	raw    []byte
	writes int
	log    *logger.Entry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{log: logger.With("cmp", "cache.memory")}
}

func (m *MemoryCache) Load(_ context.Context) (*intake.Document, error) {
	m.mu.RLock()
	raw := m.raw
	m.mu.RUnlock()
	if raw == nil {
		return nil, nil
	}
	return decodeRecord(m.log, raw), nil
}

func (m *MemoryCache) Save(_ context.Context, doc intake.Document) error {
	b, err := intake.Encode(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.raw = b
	m.writes++
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Clear(_ context.Context) error {
	m.mu.Lock()
	m.raw = nil
	m.mu.Unlock()
	return nil
}

// SetRaw stores raw bytes as the record, bypassing encoding.
func (m *MemoryCache) SetRaw(raw []byte) {
	m.mu.Lock()
	m.raw = append([]byte(nil), raw...)
	m.mu.Unlock()
}

// Writes returns how many times Save succeeded.
func (m *MemoryCache) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
