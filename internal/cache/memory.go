package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/realibuddy/citecheck/internal/model"
)

// Memory is a TTL-bound in-process cache for source lookup results.
type Memory struct {
	cache *gocache.Cache
}

// NewMemory creates a memory cache with the given default TTL.
func NewMemory(defaultTTL, cleanupInterval time.Duration) *Memory {
	return &Memory{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// GetRecords returns the cached candidate list for a search key.
func (m *Memory) GetRecords(key string) ([]model.SourceRecord, bool) {
	if val, found := m.cache.Get(key); found {
		if recs, ok := val.([]model.SourceRecord); ok {
			return recs, true
		}
	}
	return nil, false
}

// SetRecords caches a candidate list under a search key.
func (m *Memory) SetRecords(key string, records []model.SourceRecord) {
	m.cache.SetDefault(key, records)
}

// GetRecord returns the cached record for an exact-DOI key.
func (m *Memory) GetRecord(key string) (model.SourceRecord, bool) {
	if val, found := m.cache.Get(key); found {
		if rec, ok := val.(model.SourceRecord); ok {
			return rec, true
		}
	}
	return model.SourceRecord{}, false
}

// SetRecord caches a single record under an exact-DOI key.
func (m *Memory) SetRecord(key string, record model.SourceRecord) {
	m.cache.SetDefault(key, record)
}

// Flush drops everything.
func (m *Memory) Flush() {
	m.cache.Flush()
}
