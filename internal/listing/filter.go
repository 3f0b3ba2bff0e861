package listing

import (
	"strings"
	"time"
)

// Predicate decides whether an item is shown.
type Predicate[T any] func(T) bool

// FilterKey names a filter control (search box, category select, date range).
type FilterKey string

// Common filter keys used by the list pages.
const (
	KeySearch    FilterKey = "search"
	KeyCategory  FilterKey = "category"
	KeyDateRange FilterKey = "date_range"
	KeyStatus    FilterKey = "status"
)

// Filters is the set of active predicates for a list. A key mapped to a nil
// predicate is inactive. Keys keep insertion order.
type Filters[T any] struct {
	keys  []FilterKey
	preds map[FilterKey]Predicate[T]
}

// NewFilters returns an empty filter set.
func NewFilters[T any]() *Filters[T] {
	return &Filters[T]{preds: make(map[FilterKey]Predicate[T])}
}

// Set installs or replaces the predicate for key. A nil predicate clears it.
func (f *Filters[T]) Set(key FilterKey, pred Predicate[T]) {
	if pred == nil {
		f.Clear(key)
		return
	}
	if _, exists := f.preds[key]; !exists {
		f.keys = append(f.keys, key)
	}
	f.preds[key] = pred
}

// Clear removes the predicate for key.
func (f *Filters[T]) Clear(key FilterKey) {
	if _, exists := f.preds[key]; !exists {
		return
	}
	delete(f.preds, key)
	for i, k := range f.keys {
		if k == key {
			f.keys = append(f.keys[:i:i], f.keys[i+1:]...)
			break
		}
	}
}

// Reset clears every predicate.
func (f *Filters[T]) Reset() {
	f.keys = nil
	f.preds = make(map[FilterKey]Predicate[T])
}

// Active lists the keys with a predicate installed.
func (f *Filters[T]) Active() []FilterKey {
	out := make([]FilterKey, len(f.keys))
	copy(out, f.keys)
	return out
}

// Match reports whether item passes every active predicate.
func (f *Filters[T]) Match(item T) bool {
	for _, key := range f.keys {
		if !f.preds[key](item) {
			return false
		}
	}
	return true
}

// Apply returns the items passing every active predicate, in source order.
// items is never modified.
func (f *Filters[T]) Apply(items []T) []T {
	return Filter(items, f.Match)
}

// Filter is a stable, non-destructive filter.
func Filter[T any](items []T, keep Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep == nil || keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// All combines predicates with AND. Nil predicates are skipped.
func All[T any](preds ...Predicate[T]) Predicate[T] {
	active := compact(preds)
	if len(active) == 0 {
		return nil
	}
	return func(item T) bool {
		for _, p := range active {
			if !p(item) {
				return false
			}
		}
		return true
	}
}

// Any combines predicates with OR. Nil predicates are skipped.
func Any[T any](preds ...Predicate[T]) Predicate[T] {
	active := compact(preds)
	if len(active) == 0 {
		return nil
	}
	return func(item T) bool {
		for _, p := range active {
			if p(item) {
				return true
			}
		}
		return false
	}
}

func compact[T any](preds []Predicate[T]) []Predicate[T] {
	out := make([]Predicate[T], 0, len(preds))
	for _, p := range preds {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Search matches a case-insensitive substring against any of the text fields.
// A blank query yields an inactive (nil) predicate.
func Search[T any](query string, fields ...func(T) string) Predicate[T] {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" || len(fields) == 0 {
		return nil
	}
	return func(item T) bool {
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field(item)), needle) {
				return true
			}
		}
		return false
	}
}

// Equals matches items whose key equals want. The zero value means "all".
func Equals[T any, K comparable](want K, get func(T) K) Predicate[T] {
	var zero K
	if want == zero {
		return nil
	}
	return func(item T) bool {
		return get(item) == want
	}
}

// EqualFold is Equals for strings, ignoring case and surrounding space.
func EqualFold[T any](want string, get func(T) string) Predicate[T] {
	want = strings.TrimSpace(want)
	if want == "" {
		return nil
	}
	return func(item T) bool {
		return strings.EqualFold(strings.TrimSpace(get(item)), want)
	}
}

// Between matches items whose timestamp lies within [from, to]. Either bound
// may be nil; both nil yields an inactive predicate. A zero timestamp never
// matches an active range.
func Between[T any](from, to *time.Time, get func(T) time.Time) Predicate[T] {
	if from == nil && to == nil {
		return nil
	}
	return func(item T) bool {
		ts := get(item)
		if ts.IsZero() {
			return false
		}
		if from != nil && ts.Before(*from) {
			return false
		}
		if to != nil && ts.After(*to) {
			return false
		}
		return true
	}
}
