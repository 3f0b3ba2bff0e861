package listing

import (
	"sort"
)

// DefaultPageSize is used when a view is built without a page size.
const DefaultPageSize = 10

// Less orders two items.
type Less[T any] func(a, b T) bool

// SortBy returns a stably sorted copy of items. items is not modified.
func SortBy[T any](items []T, less Less[T], desc bool) []T {
	out := make([]T, len(items))
	copy(out, items)
	if less == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// Page is one slice of a filtered list.
type Page[T any] struct {
	Items      []T
	Number     int
	Size       int
	TotalItems int
	TotalPages int
}

// Paginate returns the 1-based page of items. Out-of-range page numbers are
// clamped to the first or last page.
func Paginate[T any](items []T, number, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(items)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > pages {
		number = pages
	}

	start := (number - 1) * size
	end := start + size
	if end > total {
		end = total
	}

	chunk := make([]T, end-start)
	copy(chunk, items[start:end])
	return Page[T]{
		Items:      chunk,
		Number:     number,
		Size:       size,
		TotalItems: total,
		TotalPages: pages,
	}
}

// View combines a source list with filters, sort order, pagination and stat
// selectors. Snapshot derives everything from one filtered slice, so the
// visible rows and the stat cards always agree.
type View[T any] struct {
	Filters  *Filters[T]
	Stats    []Stat[T]
	Less     Less[T]
	Desc     bool
	PageNum  int
	PageSize int
}

// NewView builds a view with empty filters.
func NewView[T any](pageSize int, stats ...Stat[T]) *View[T] {
	return &View[T]{
		Filters:  NewFilters[T](),
		Stats:    stats,
		PageNum:  1,
		PageSize: pageSize,
	}
}

// Snapshot is the rendered state of a view.
type Snapshot[T any] struct {
	Filtered []T
	Page     Page[T]
	Stats    Stats
}

// Snapshot filters, sorts, aggregates and paginates source.
func (v *View[T]) Snapshot(source []T) Snapshot[T] {
	filtered := v.Filters.Apply(source)
	if v.Less != nil {
		filtered = SortBy(filtered, v.Less, v.Desc)
	}
	return Snapshot[T]{
		Filtered: filtered,
		Page:     Paginate(filtered, v.PageNum, v.PageSize),
		Stats:    Aggregate(filtered, v.Stats...),
	}
}
