package cache

import "sync"

// Value is an observable cell. Subscribers are called synchronously, outside
// the lock, once per Set.
type Value[T any] struct {
	mu     sync.RWMutex
	v      T
	subs   map[int]func(T)
	nextID int
}

// NewValue creates a Value holding initial
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{v: initial, subs: make(map[int]func(T))}
}

// Get returns the current value
func (o *Value[T]) Get() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.v
}

// Set stores v and notifies subscribers
func (o *Value[T]) Set(v T) {
	o.mu.Lock()
	o.v = v
	subs := o.snapshotSubs()
	o.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Subscribe registers fn and returns a function that removes it
func (o *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs[id] = fn
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subs, id)
			o.mu.Unlock()
		})
	}
}

// snapshotSubs must be called with the lock held. Subscribers are returned in
// registration order.
func (o *Value[T]) snapshotSubs() []func(T) {
	out := make([]func(T), 0, len(o.subs))
	for id := 0; id < o.nextID; id++ {
		if fn, ok := o.subs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}
