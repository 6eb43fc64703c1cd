package catalog

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/leonardcser/kvcache/internal/cache"
)

// CachedStore serves reads cache-aside: results are looked up in an
// in-memory cache first and recomputed from the Store only on a miss. Writes
// go straight through and invalidate whatever they may have made stale.
//
// Pages and single items live in separate caches because their invalidation
// differs: a write shifts an unknown set of pages but touches exactly one
// item key.
type CachedStore struct {
	store *Store
	pages *cache.Cache[[]Item]
	items *cache.Cache[Item]
	ttl   time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachedStore wraps store with caches bounded to capacity entries each.
// Cached results are served for at most ttl; ttl <= 0 keeps them until
// invalidation or eviction.
func NewCachedStore(store *Store, capacity int, ttl time.Duration) *CachedStore {
	return &CachedStore{
		store: store,
		pages: cache.New[[]Item](capacity),
		items: cache.New[Item](capacity),
		ttl:   ttl,
	}
}

// ListPage returns one page of items, preferring the cache.
func (c *CachedStore) ListPage(page, perPage int) ([]Item, error) {
	key := cache.PageKey("items", page, perPage)
	if items, ok := c.pages.Get(key); ok {
		c.hits.Add(1)
		return items, nil
	}
	c.misses.Add(1)

	items, err := c.store.ListPage(page, perPage)
	if err != nil {
		return nil, err
	}
	c.pages.Set(key, items, c.ttl)
	return items, nil
}

// Get returns a single item, preferring the cache. ErrNotFound comes from
// the store; the cache itself never produces errors.
func (c *CachedStore) Get(id uint64) (Item, error) {
	key := itemCacheKey(id)
	if item, ok := c.items.Get(key); ok {
		c.hits.Add(1)
		return item, nil
	}
	c.misses.Add(1)

	item, err := c.store.Get(id)
	if err != nil {
		return Item{}, err
	}
	c.items.Set(key, item, c.ttl)
	return item, nil
}

// Put writes through to the store, then drops the item's cache entry and
// every cached page. Any page at or after the touched item may have shifted,
// and tracking which ones is not worth it at this scale.
func (c *CachedStore) Put(item *Item) error {
	if err := c.store.Put(item); err != nil {
		return err
	}
	c.items.Delete(itemCacheKey(item.ID))
	c.pages.Clear()
	return nil
}

// Stats reports cache hits and misses since construction.
func (c *CachedStore) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func itemCacheKey(id uint64) string {
	return cache.Key("item", strconv.FormatUint(id, 10))
}
