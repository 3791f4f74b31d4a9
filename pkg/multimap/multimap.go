package multimap

import (
	"sync"
)

// bucket holds the values of a single key behind its own lock.
type bucket[V any] struct {
	mu     sync.Mutex
	values []V
}

// Map is a concurrent multimap. The zero value is not usable; use New.
type Map[K comparable, V any] struct {
	mu      sync.RWMutex
	buckets map[K]*bucket[V]
}

// New creates an empty Map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		buckets: make(map[K]*bucket[V]),
	}
}

// Verdict is the decision AppendOrEvict takes for one stored value.
type Verdict int

const (
	// Keep leaves the value in place.
	Keep Verdict = iota
	// Evict removes the value.
	Evict
	// Block keeps the value and prevents the append.
	Block
)

// AppendIfAbsent appends v to the list of key unless an element already stored
// under key satisfies equal(existing, v). The key is created if missing.
// Reports whether v was appended.
func (m *Map[K, V]) AppendIfAbsent(key K, v V, equal func(existing, v V) bool) bool {
	_, appended := m.AppendOrEvict(key, v, func(existing V) Verdict {
		if equal != nil && equal(existing, v) {
			return Block
		}
		return Keep
	})
	return appended
}

// AppendOrEvict judges every value of key exactly once with decide, removes
// the evicted ones and appends v unless a value blocked it, all under a single
// acquisition of the key lock. The key is created if missing.
// Returns the number of evicted values and whether v was appended.
func (m *Map[K, V]) AppendOrEvict(key K, v V, decide func(existing V) Verdict) (evicted int, appended bool) {
	b := m.touch(key)

	b.mu.Lock()
	defer b.mu.Unlock()

	blocked := false
	if decide != nil {
		kept := b.values[:0]
		for _, existing := range b.values {
			switch decide(existing) {
			case Evict:
				continue
			case Block:
				blocked = true
			}
			kept = append(kept, existing)
		}
		evicted = b.truncate(kept)
	}

	if blocked {
		return evicted, false
	}
	b.values = append(b.values, v)
	return evicted, true
}

// ForEach calls fn once for each value currently stored under key.
// Missing keys are a no-op.
func (m *Map[K, V]) ForEach(key K, fn func(V)) {
	b := m.lookup(key)
	if b == nil || fn == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, v := range b.values {
		fn(v)
	}
}

// RemoveIf replaces the list of key with the values for which pred returns false.
// Returns the number of removed values. Missing keys are a no-op.
func (m *Map[K, V]) RemoveIf(key K, pred func(V) bool) int {
	b := m.lookup(key)
	if b == nil || pred == nil {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.values[:0]
	for _, v := range b.values {
		if !pred(v) {
			kept = append(kept, v)
		}
	}
	return b.truncate(kept)
}

// truncate replaces values with kept, a prefix-aliased filter of it, and
// returns the number of dropped values. Callers hold b.mu.
func (b *bucket[V]) truncate(kept []V) int {
	removed := len(b.values) - len(kept)

	// Zero the tail so removed values can be collected
	var zero V
	for i := len(kept); i < len(b.values); i++ {
		b.values[i] = zero
	}
	b.values = kept

	return removed
}

// Keys returns a point-in-time snapshot of the keys.
func (m *Map[K, V]) Keys() []K {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]K, 0, len(m.buckets))
	for k := range m.buckets {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of values stored under key.
func (m *Map[K, V]) Len(key K) int {
	b := m.lookup(key)
	if b == nil {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.values)
}

// lookup returns the bucket of key, or nil. Only the structural read lock is taken.
func (m *Map[K, V]) lookup(key K) *bucket[V] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.buckets[key]
}

// touch returns the bucket of key, creating it under the structural lock if needed.
func (m *Map[K, V]) touch(key K) *bucket[V] {
	if b := m.lookup(key); b != nil {
		return b
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another goroutine may have created it between the two locks
	if b, ok := m.buckets[key]; ok {
		return b
	}
	b := &bucket[V]{}
	m.buckets[key] = b
	return b
}
