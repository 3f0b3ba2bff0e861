package viewstate

import "sync"

// Table holds the rows a page renders. Rows loaded from the backend are
// authoritative; Upsert, Remove and SetOrder apply optimistic patches that the
// next Replace overwrites.
type Table[T any, K comparable] struct {
	mu    sync.RWMutex
	key   func(T) K
	rows  []T
	dirty bool
}

// NewTable builds an empty table keyed by key.
func NewTable[T any, K comparable](key func(T) K) *Table[T, K] {
	return &Table[T, K]{key: key}
}

// Replace installs authoritative rows and drops optimistic state.
func (t *Table[T, K]) Replace(rows []T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = clone(rows)
	t.dirty = false
}

// Upsert replaces the row with the same key, or appends it.
func (t *Table[T, K]) Upsert(row T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := t.key(row)
	t.dirty = true
	for i := range t.rows {
		if t.key(t.rows[i]) == k {
			t.rows[i] = row
			return
		}
	}
	t.rows = append(t.rows, row)
}

// Remove drops the row with key k. It reports whether a row was removed.
func (t *Table[T, K]) Remove(k K) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.rows {
		if t.key(t.rows[i]) == k {
			t.rows = append(t.rows[:i:i], t.rows[i+1:]...)
			t.dirty = true
			return true
		}
	}
	return false
}

// SetOrder replaces the rows with an optimistically reordered copy.
func (t *Table[T, K]) SetOrder(rows []T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = clone(rows)
	t.dirty = true
}

// Get returns the row with key k.
func (t *Table[T, K]) Get(k K) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, row := range t.rows {
		if t.key(row) == k {
			return row, true
		}
	}
	var zero T
	return zero, false
}

// Rows returns a copy of the current rows.
func (t *Table[T, K]) Rows() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return clone(t.rows)
}

// Len returns the row count.
func (t *Table[T, K]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Dirty reports whether optimistic patches were applied since the last Replace.
func (t *Table[T, K]) Dirty() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dirty
}

func clone[T any](rows []T) []T {
	out := make([]T, len(rows))
	copy(out, rows)
	return out
}
