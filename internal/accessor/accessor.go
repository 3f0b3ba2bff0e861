// Package accessor resolves fields that records expose under several names.
package accessor

import "strings"

// Accessor reads one candidate value from v.
type Accessor[T any] func(v T) string

// First evaluates accessors in priority order and returns the first value
// that is non-empty after trimming. ok is false when every accessor is empty.
func First[T any](v T, accessors ...Accessor[T]) (string, bool) {
	for _, get := range accessors {
		if get == nil {
			continue
		}
		if value := strings.TrimSpace(get(v)); value != "" {
			return value, true
		}
	}
	return "", false
}

// Or is First with a fallback value.
func Or[T any](v T, fallback string, accessors ...Accessor[T]) string {
	if value, ok := First(v, accessors...); ok {
		return value
	}
	return fallback
}

// Chain freezes an ordered accessor list into a single accessor.
func Chain[T any](accessors ...Accessor[T]) Accessor[T] {
	return func(v T) string {
		value, _ := First(v, accessors...)
		return value
	}
}

// Index returns an accessor reading element i of a slice field, empty when
// the slice is too short.
func Index[T, E any](list func(T) []E, i int, get func(E) string) Accessor[T] {
	return func(v T) string {
		items := list(v)
		if i < 0 || i >= len(items) {
			return ""
		}
		return get(items[i])
	}
}
