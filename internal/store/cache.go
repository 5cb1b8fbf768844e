// Package store provides bouquet persistence backed by SQLite, fronted by a Bloom filter
// of known IDs and an LRU read cache.
package store

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"

	"digibouquet/internal/core"
)

// CachedRepository wraps a repository with a known-ID Bloom filter and an LRU cache.
// Lookups for IDs the filter has never seen skip the backing repository.
type CachedRepository struct {
	repo                   core.BouquetRepository
	known                  *bloom.BloomFilter
	lru                    *lru.Cache[string, *core.Bouquet]
	mutex                  sync.RWMutex
	knownCapacity          int
	bloomFalsePositiveRate float64
	hits                   uint64
	misses                 uint64
	filtered               uint64
}

// CacheStats contains cache statistics.
type CacheStats struct {
	Cached   int    `json:"cached"`
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	Filtered uint64 `json:"filtered"`
}

// NewCachedRepository creates a cache of cacheSize bouquets over repo, with a filter sized
// for knownCapacity IDs at the given false positive rate.
func NewCachedRepository(
	repo core.BouquetRepository,
	cacheSize int,
	knownCapacity int,
	bloomFalsePositiveRate float64,
) (*CachedRepository, error) {
	lruCache, err := lru.New[string, *core.Bouquet](cacheSize)
	if err != nil {
		return nil, err
	}

	if knownCapacity < 0 || knownCapacity > int(^uint(0)>>1) {
		panic("knownCapacity value out of range for uint conversion")
	}

	return &CachedRepository{
		repo:                   repo,
		known:                  bloom.NewWithEstimates(uint(knownCapacity), bloomFalsePositiveRate),
		lru:                    lruCache,
		knownCapacity:          knownCapacity,
		bloomFalsePositiveRate: bloomFalsePositiveRate,
	}, nil
}

// Load resets the known-ID filter to the provided IDs and empties the cache.
func (c *CachedRepository) Load(ids []string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.known = bloom.NewWithEstimates(uint(c.knownCapacity), c.bloomFalsePositiveRate)
	for _, id := range ids {
		if id != "" {
			c.known.AddString(id)
		}
	}
	c.lru.Purge()
}

// Save stores b and marks its ID as known.
func (c *CachedRepository) Save(ctx context.Context, b *core.Bouquet) error {
	if err := c.repo.Save(ctx, b); err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.known.AddString(b.ID)
	c.lru.Add(b.ID, cloneBouquet(b))

	return nil
}

// Get returns a bouquet from the cache or the backing repository.
func (c *CachedRepository) Get(ctx context.Context, id string) (*core.Bouquet, error) {
	c.mutex.Lock()
	if !c.known.TestString(id) {
		c.filtered++
		c.mutex.Unlock()
		return nil, core.ErrNotFound
	}
	if b, ok := c.lru.Get(id); ok {
		c.hits++
		c.mutex.Unlock()
		return cloneBouquet(b), nil
	}
	c.misses++
	c.mutex.Unlock()

	b, err := c.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	c.lru.Add(id, cloneBouquet(b))
	c.mutex.Unlock()

	return b, nil
}

// Count delegates to the backing repository.
func (c *CachedRepository) Count(ctx context.Context) (int, error) {
	return c.repo.Count(ctx)
}

// Stats returns cache statistics for monitoring.
func (c *CachedRepository) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return CacheStats{
		Cached:   c.lru.Len(),
		Hits:     c.hits,
		Misses:   c.misses,
		Filtered: c.filtered,
	}
}

func cloneBouquet(b *core.Bouquet) *core.Bouquet {
	clone := *b
	clone.Flowers = append([]core.Flower(nil), b.Flowers...)
	return &clone
}
