package derive

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyRateConversions(t *testing.T) {
	calc := Default()

	tests := []struct {
		name    string
		changed Field
		state   map[string]string
		want    Patch
	}{
		{
			name:    "ten gram rate fills per gram",
			changed: Field{Name: FieldRatePerTenGram, Value: "62450"},
			want:    Patch{FieldRatePerTenGram: "62450", FieldRatePerGram: "6245.00"},
		},
		{
			name:    "per gram rate fills ten gram",
			changed: Field{Name: FieldRatePerGram, Value: "74.55"},
			want:    Patch{FieldRatePerGram: "74.55", FieldRatePerTenGram: "745.50"},
		},
		{
			name:    "malformed rate leaves dependent blank",
			changed: Field{Name: FieldRatePerTenGram, Value: "abc"},
			state:   map[string]string{FieldRatePerGram: "6245.00"},
			want:    Patch{FieldRatePerTenGram: "abc", FieldRatePerGram: ""},
		},
		{
			name:    "cleared rate clears dependent",
			changed: Field{Name: FieldRatePerGram, Value: ""},
			want:    Patch{FieldRatePerGram: "", FieldRatePerTenGram: ""},
		},
		{
			name:    "unrelated field has no dependents",
			changed: Field{Name: "purity", Value: "22K"},
			want:    Patch{"purity": "22K"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calc.Apply(tt.changed, tt.state))
		})
	}
}

func TestApplyChangePercentSign(t *testing.T) {
	calc := Default()

	up := calc.Apply(Field{Name: FieldPredictedPrice, Value: "1100"}, map[string]string{FieldCurrentPrice: "1000"})
	assert.Equal(t, "10.00", up[FieldChangePercent])

	down := calc.Apply(Field{Name: FieldPredictedPrice, Value: "900"}, map[string]string{FieldCurrentPrice: "1000"})
	assert.Equal(t, "-10.00", down[FieldChangePercent])

	viaCurrent := calc.Apply(Field{Name: FieldCurrentPrice, Value: "1000"}, map[string]string{FieldPredictedPrice: "1100"})
	assert.Equal(t, "10.00", viaCurrent[FieldChangePercent])
}

func TestApplyChangePercentZeroGuard(t *testing.T) {
	calc := Default()

	cases := []map[string]string{
		{FieldCurrentPrice: "0", FieldPredictedPrice: "500"},
		{FieldCurrentPrice: "-5", FieldPredictedPrice: "500"},
		{FieldCurrentPrice: "1000", FieldPredictedPrice: "n/a"},
		{FieldCurrentPrice: "NaN", FieldPredictedPrice: "500"},
		{FieldCurrentPrice: "Infinity", FieldPredictedPrice: "500"},
	}
	for _, state := range cases {
		var patch Patch
		require.NotPanics(t, func() {
			patch = calc.Apply(Field{Name: FieldPredictedPrice, Value: state[FieldPredictedPrice]}, state)
		})
		value, present := patch[FieldChangePercent]
		assert.True(t, present)
		assert.Empty(t, value, "state %v", state)
	}
}

func TestApplyDoesNotMutateState(t *testing.T) {
	state := map[string]string{FieldCurrentPrice: "1000"}
	Default().Apply(Field{Name: FieldPredictedPrice, Value: "1200"}, state)
	assert.Equal(t, map[string]string{FieldCurrentPrice: "1000"}, state)
}

func TestPatchMerge(t *testing.T) {
	state := Patch{FieldRatePerGram: "1.00", FieldRatePerTenGram: "10.00"}.Merge(map[string]string{"metal": "gold"})
	assert.Equal(t, map[string]string{"metal": "gold", FieldRatePerGram: "1.00", FieldRatePerTenGram: "10.00"}, state)

	fresh := Patch{"a": "1"}.Merge(nil)
	assert.Equal(t, "1", fresh["a"])
}

func TestRateRoundTrip(t *testing.T) {
	tolerance := decimal.RequireFromString("0.01")
	for _, raw := range []string{"0.01", "1", "9.99", "62450", "74123.45", "12345.67", "99999999.99"} {
		r := decimal.RequireFromString(raw)
		back := PerTenGram(PerGram(r))
		assert.True(t, back.Sub(r).Abs().LessThanOrEqual(tolerance), "round trip of %s gave %s", raw, back)
	}
}

func TestParse(t *testing.T) {
	v, ok := Parse(" 1,00,000.50 ")
	require.True(t, ok)
	assert.Equal(t, "100000.5", v.String())

	_, ok = Parse("")
	assert.False(t, ok)
	_, ok = Parse("12abc")
	assert.False(t, ok)
}

func TestChangePercentUnrounded(t *testing.T) {
	pct, ok := ChangePercent(decimal.NewFromInt(3), decimal.NewFromInt(4))
	require.True(t, ok)
	assert.True(t, pct.GreaterThan(decimal.RequireFromString("33.33")))
	assert.Equal(t, "33.33", Display(pct))
}
