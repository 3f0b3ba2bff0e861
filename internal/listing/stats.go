package listing

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Stat is one rollup over a list: either a sum of a selector or a count of
// items matching a predicate.
type Stat[T any] struct {
	Name  string
	sum   func(T) decimal.Decimal
	count Predicate[T]
}

// Sum builds a stat adding selector(item) over the items.
func Sum[T any](name string, selector func(T) decimal.Decimal) Stat[T] {
	return Stat[T]{Name: name, sum: selector}
}

// Count builds a stat counting the items matching pred. A nil pred counts all.
func Count[T any](name string, pred Predicate[T]) Stat[T] {
	if pred == nil {
		pred = func(T) bool { return true }
	}
	return Stat[T]{Name: name, count: pred}
}

// Stats maps a stat name to its value.
type Stats map[string]decimal.Decimal

// Get returns the named stat, zero when absent.
func (s Stats) Get(name string) decimal.Decimal {
	if v, ok := s[name]; ok {
		return v
	}
	return decimal.Zero
}

// Int returns the named stat truncated to an int, for counters.
func (s Stats) Int(name string) int64 {
	return s.Get(name).IntPart()
}

// Aggregate computes every stat over items in one pass.
func Aggregate[T any](items []T, stats ...Stat[T]) Stats {
	out := make(Stats, len(stats))
	for _, st := range stats {
		out[st.Name] = decimal.Zero
	}
	for _, item := range items {
		for _, st := range stats {
			switch {
			case st.sum != nil:
				out[st.Name] = out[st.Name].Add(st.sum(item))
			case st.count != nil && st.count(item):
				out[st.Name] = out[st.Name].Add(decimal.NewFromInt(1))
			}
		}
	}
	return out
}

// PercentOf returns part / total * 100 rounded to two places, zero when total
// is not positive.
func PercentOf(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return part.Mul(hundred).DivRound(total, 2)
}
