package store

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedStore is a read-through LRU cache in front of another Store.
// Save and Delete write through to the inner store before updating the cache.
type CachedStore struct {
	inner Store
	cache *lru.Cache[string, Record]
}

// Compile-time interface check.
var _ Store = (*CachedStore)(nil)

// NewCachedStore wraps inner with an LRU cache holding up to size records.
func NewCachedStore(inner Store, size int) (*CachedStore, error) {
	cache, err := lru.New[string, Record](size)
	if err != nil {
		return nil, fmt.Errorf("create record cache: %w", err)
	}
	return &CachedStore{inner: inner, cache: cache}, nil
}

// Save implements Store.
func (c *CachedStore) Save(rec Record) (Record, error) {
	saved, err := c.inner.Save(rec)
	if err != nil {
		return Record{}, err
	}
	c.cache.Add(saved.Name, saved)
	return saved, nil
}

// Load implements Store. Misses fall through to the inner store.
func (c *CachedStore) Load(name string) (Record, error) {
	if rec, ok := c.cache.Get(name); ok {
		return rec, nil
	}
	rec, err := c.inner.Load(name)
	if err != nil {
		return Record{}, err
	}
	c.cache.Add(name, rec)
	return rec, nil
}

// List implements Store. It always reads the inner store.
func (c *CachedStore) List() ([]Record, error) {
	return c.inner.List()
}

// Delete implements Store.
func (c *CachedStore) Delete(name string) error {
	if err := c.inner.Delete(name); err != nil {
		return err
	}
	c.cache.Remove(name)
	return nil
}

// Close implements Store.
func (c *CachedStore) Close() error {
	c.cache.Purge()
	return c.inner.Close()
}

// Cached reports whether name is currently held in the cache.
func (c *CachedStore) Cached(name string) bool {
	return c.cache.Contains(name)
}
