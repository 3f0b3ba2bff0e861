// Package reorder implements drag-and-drop ranking inside a partition.
package reorder

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned when a move references a missing index.
var ErrIndexOutOfRange = errors.New("reorder: index out of range")

// Keys extracts the identity, partition and stored position of an item.
type Keys[T any] struct {
	ID        func(T) string
	Partition func(T) string
	Position  func(T) int
}

// PositionPatch is one position update to persist.
type PositionPatch struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// Result is the outcome of a move. Changed is false for no-op moves, in
// which case Items is the original order and Patches is nil.
type Result[T any] struct {
	Items     []T
	Patches   []PositionPatch
	Partition string
	Changed   bool
}

// Move removes the item at from and reinserts it at to. Both indexes refer
// to items; the move is rejected as a no-op when the two items belong to
// different partitions. Positions are renumbered 1..N by new index within
// the partition and only entries whose stored position changes are patched.
func Move[T any](items []T, from, to int, keys Keys[T]) (Result[T], error) {
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
		return Result[T]{Items: items}, fmt.Errorf("%w: move %d -> %d of %d", ErrIndexOutOfRange, from, to, len(items))
	}

	partition := keys.Partition(items[from])
	if from == to || keys.Partition(items[to]) != partition {
		return Result[T]{Items: items, Partition: partition}, nil
	}

	moved := items[from]
	next := make([]T, 0, len(items))
	next = append(next, items[:from]...)
	next = append(next, items[from+1:]...)

	tail := make([]T, len(next[to:]))
	copy(tail, next[to:])
	next = append(append(next[:to], moved), tail...)

	return Result[T]{
		Items:     next,
		Patches:   Renumber(next, partition, keys),
		Partition: partition,
		Changed:   true,
	}, nil
}

// Renumber returns the patches needed to number the partition's items 1..N in
// their current order.
func Renumber[T any](items []T, partition string, keys Keys[T]) []PositionPatch {
	var patches []PositionPatch
	position := 0
	for _, item := range items {
		if keys.Partition(item) != partition {
			continue
		}
		position++
		if keys.Position != nil && keys.Position(item) == position {
			continue
		}
		patches = append(patches, PositionPatch{ID: keys.ID(item), Position: position})
	}
	return patches
}

// InPartition returns the partition's items in order.
func InPartition[T any](items []T, partition string, keys Keys[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keys.Partition(item) == partition {
			out = append(out, item)
		}
	}
	return out
}
