// Package derive keeps related form fields mutually consistent.
//
// A Calculator receives the field the user just edited together with the
// current form state and returns a Patch: the edited field plus every field
// recomputed from it. Only rules triggered by the edited field run, so a
// recomputed field never triggers another rule and edits cannot cycle.
package derive

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Form field names understood by the default rule table.
const (
	FieldRatePerTenGram = "ratePerTenGram"
	FieldRatePerGram    = "ratePerGram"
	FieldCurrentPrice   = "currentPrice"
	FieldPredictedPrice = "predictedPrice"
	FieldChangePercent  = "changePercent"
)

// DisplayPlaces is the rounding applied to computed display fields.
const DisplayPlaces int32 = 2

var (
	ten     = decimal.NewFromInt(10)
	hundred = decimal.NewFromInt(100)
)

// Field is a single edited form input.
type Field struct {
	Name  string
	Value string
}

// Patch holds field values to merge into the caller's state. An empty string
// means the field must be shown blank.
type Patch map[string]string

// Merge writes the patch into state and returns it.
func (p Patch) Merge(state map[string]string) map[string]string {
	if state == nil {
		state = make(map[string]string, len(p))
	}
	for k, v := range p {
		state[k] = v
	}
	return state
}

// ComputeFunc derives a value from the state. ok=false leaves the target blank.
type ComputeFunc func(state map[string]string) (value decimal.Decimal, ok bool)

// Rule recomputes Target whenever one of the Triggers changes.
type Rule struct {
	Triggers []string
	Target   string
	Compute  ComputeFunc
}

func (r Rule) triggeredBy(name string) bool {
	for _, t := range r.Triggers {
		if t == name {
			return true
		}
	}
	return false
}

// Calculator applies a rule table.
type Calculator struct {
	rules []Rule
}

// New builds a calculator from rules, evaluated in order.
func New(rules ...Rule) *Calculator {
	return &Calculator{rules: rules}
}

// Default returns the rate and price-change rule table.
func Default() *Calculator {
	return New(
		Rule{
			Triggers: []string{FieldRatePerTenGram},
			Target:   FieldRatePerGram,
			Compute: func(state map[string]string) (decimal.Decimal, bool) {
				rate, ok := Parse(state[FieldRatePerTenGram])
				if !ok {
					return decimal.Decimal{}, false
				}
				return PerGram(rate), true
			},
		},
		Rule{
			Triggers: []string{FieldRatePerGram},
			Target:   FieldRatePerTenGram,
			Compute: func(state map[string]string) (decimal.Decimal, bool) {
				rate, ok := Parse(state[FieldRatePerGram])
				if !ok {
					return decimal.Decimal{}, false
				}
				return PerTenGram(rate), true
			},
		},
		Rule{
			Triggers: []string{FieldCurrentPrice, FieldPredictedPrice},
			Target:   FieldChangePercent,
			Compute: func(state map[string]string) (decimal.Decimal, bool) {
				current, ok := Parse(state[FieldCurrentPrice])
				if !ok {
					return decimal.Decimal{}, false
				}
				predicted, ok := Parse(state[FieldPredictedPrice])
				if !ok {
					return decimal.Decimal{}, false
				}
				return ChangePercent(current, predicted)
			},
		},
	)
}

// Apply returns the patch produced by editing changed on top of state.
// state is not modified.
func (c *Calculator) Apply(changed Field, state map[string]string) Patch {
	view := make(map[string]string, len(state)+1)
	for k, v := range state {
		view[k] = v
	}
	view[changed.Name] = changed.Value

	patch := Patch{changed.Name: changed.Value}
	for _, rule := range c.rules {
		if !rule.triggeredBy(changed.Name) || rule.Target == changed.Name {
			continue
		}
		value, ok := rule.Compute(view)
		if !ok {
			patch[rule.Target] = ""
			continue
		}
		patch[rule.Target] = Display(value)
	}
	return patch
}

// Parse reads a user-entered number. Blank or malformed input is absent.
func Parse(raw string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if cleaned == "" {
		return decimal.Decimal{}, false
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return value, true
}

// PerGram converts a ten-gram rate into a per-gram rate without rounding.
func PerGram(ratePerTenGram decimal.Decimal) decimal.Decimal {
	return ratePerTenGram.DivRound(ten, 16)
}

// PerTenGram converts a per-gram rate into a ten-gram rate without rounding.
func PerTenGram(ratePerGram decimal.Decimal) decimal.Decimal {
	return ratePerGram.Mul(ten)
}

// ChangePercent returns (predicted - current) / current * 100.
// ok is false when current is not positive.
func ChangePercent(current, predicted decimal.Decimal) (decimal.Decimal, bool) {
	if !current.IsPositive() {
		return decimal.Decimal{}, false
	}
	return predicted.Sub(current).Mul(hundred).DivRound(current, 16), true
}

// Display formats a computed value with DisplayPlaces decimals.
func Display(value decimal.Decimal) string {
	return value.StringFixed(DisplayPlaces)
}
