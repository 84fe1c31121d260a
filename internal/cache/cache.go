// Package cache holds the observable in-memory collections the services keep
// for each resource type.
package cache

import (
	"errors"
	"slices"
	"sync"
)

// ErrDuplicateID is returned by Append when the id is already cached. It
// usually means the caller worked from a stale read.
var ErrDuplicateID = errors.New("cache: duplicate id")

// Snapshot is what subscribers receive after a mutation
type Snapshot[T any] struct {
	Items   []T
	Version uint64
}

// Cache is an ordered collection of view models keyed by id. The slice held
// internally is never mutated in place, so a snapshot handed out stays valid.
type Cache[T any] struct {
	mu      sync.RWMutex
	items   []T
	version uint64
	idOf    func(T) int64

	changes *Value[Snapshot[T]]
	loading *Value[bool]
}

// New creates an empty cache. idOf extracts the identity of an item.
func New[T any](idOf func(T) int64) *Cache[T] {
	return &Cache[T]{
		idOf:    idOf,
		changes: NewValue(Snapshot[T]{}),
		loading: NewValue(false),
	}
}

// Items returns a copy of the current collection
func (c *Cache[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Get returns the item with the given id
func (c *Cache[T]) Get(id int64) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Len returns the number of cached items
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Version increases by one on every change to the collection
func (c *Cache[T]) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// IDOf returns the identity of item
func (c *Cache[T]) IDOf(item T) int64 {
	return c.idOf(item)
}

// Loading reports whether a load is in flight
func (c *Cache[T]) Loading() bool {
	return c.loading.Get()
}

// SetLoading updates the loading flag
func (c *Cache[T]) SetLoading(v bool) {
	c.loading.Set(v)
}

// Subscribe is called with a fresh snapshot after every change
func (c *Cache[T]) Subscribe(fn func(Snapshot[T])) (unsubscribe func()) {
	return c.changes.Subscribe(fn)
}

// SubscribeLoading is called whenever the loading flag is set
func (c *Cache[T]) SubscribeLoading(fn func(bool)) (unsubscribe func()) {
	return c.loading.Subscribe(fn)
}

// ReplaceAll swaps the whole collection. Duplicate ids in items keep the
// first occurrence.
func (c *Cache[T]) ReplaceAll(items []T) {
	next := make([]T, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, it := range items {
		id := c.idOf(it)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		next = append(next, it)
	}

	c.mu.Lock()
	c.items = next
	snap := c.commit()
	c.mu.Unlock()
	c.changes.Set(snap)
}

// Append adds item at the end
func (c *Cache[T]) Append(item T) error {
	c.mu.Lock()
	if c.indexOf(c.idOf(item)) >= 0 {
		c.mu.Unlock()
		return ErrDuplicateID
	}
	next := make([]T, len(c.items), len(c.items)+1)
	copy(next, c.items)
	c.items = append(next, item)
	snap := c.commit()
	c.mu.Unlock()

	c.changes.Set(snap)
	return nil
}

// Remove drops the item with the given id. It reports whether anything was
// removed; an unknown id is not an error.
func (c *Cache[T]) Remove(id int64) bool {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	c.items = slices.Concat(c.items[:i], c.items[i+1:])
	snap := c.commit()
	c.mu.Unlock()

	c.changes.Set(snap)
	return true
}

// Patch applies fn to a copy of the item with the given id and stores the
// result in the same position. The item's id cannot be changed.
func (c *Cache[T]) Patch(id int64, fn func(*T)) (T, bool) {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		var zero T
		return zero, false
	}
	updated := c.items[i]
	fn(&updated)
	if c.idOf(updated) != id {
		orig := c.items[i]
		c.mu.Unlock()
		return orig, true
	}
	next := slices.Clone(c.items)
	next[i] = updated
	c.items = next
	snap := c.commit()
	c.mu.Unlock()

	c.changes.Set(snap)
	return updated, true
}

// commit bumps the version; the lock must be held
func (c *Cache[T]) commit() Snapshot[T] {
	c.version++
	return Snapshot[T]{Items: slices.Clone(c.items), Version: c.version}
}

func (c *Cache[T]) indexOf(id int64) int {
	return slices.IndexFunc(c.items, func(it T) bool { return c.idOf(it) == id })
}
