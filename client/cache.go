package client

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"hoarding-server/geo"
	"hoarding-server/models"
)

const (
	// NearbyKeyPrefix starts every nearby-query cache key.
	NearbyKeyPrefix = "nearby_hoardings_"
	// DefaultCacheTTL is how long a nearby entry counts as fresh.
	DefaultCacheTTL = 2 * time.Minute
)

// Entry is a cached nearby result.
type Entry struct {
	Data      []models.Hoarding `json:"data"`
	Timestamp int64             `json:"timestamp"` // epoch milliseconds
}

// Fresh reports whether the entry is younger than ttl at now. An entry
// stamped in the future, by a writer with a skewed clock, is stale.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	age := now.UnixMilli() - e.Timestamp
	return age >= 0 && age < ttl.Milliseconds()
}

// Cache is the client's key-value store. Entries never expire on their own:
// stale ones stay until overwritten or invalidated.
type Cache interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, e Entry) error
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
}

// NearbyKey rounds the center to three decimals so that queries from a
// drifting GPS fix share an entry.
func NearbyKey(lat, lng, radius float64) string {
	return NearbyKeyPrefix + geo.Round3(lat) + "_" + geo.Round3(lng) + "_" + strconv.FormatFloat(radius, 'f', -1, 64)
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]Entry)}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return Entry{}, false, nil
	}
	return copyEntry(e), true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, e Entry) error {
	c.mu.Lock()
	c.entries[key] = copyEntry(e)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			n++
		}
	}
	return n, nil
}

// Keys lists cached keys, for diagnostics.
func (c *MemoryCache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

func copyEntry(e Entry) Entry {
	data := make([]models.Hoarding, len(e.Data))
	for i, h := range e.Data {
		h.Location.Coordinates = append([]float64(nil), h.Location.Coordinates...)
		data[i] = h
	}
	return Entry{Data: data, Timestamp: e.Timestamp}
}
