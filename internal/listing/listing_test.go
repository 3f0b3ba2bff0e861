package listing

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name     string
	Code     string
	Category string
	Price    decimal.Decimal
	Active   bool
	Created  time.Time
}

func sample() []item {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 10, 0, 0, 0, time.UTC) }
	return []item{
		{Name: "Gold Ring", Code: "GR-01", Category: "rings", Price: decimal.NewFromInt(25000), Active: true, Created: day(1)},
		{Name: "Silver Chain", Code: "SC-02", Category: "chains", Price: decimal.NewFromInt(3000), Active: true, Created: day(5)},
		{Name: "Gold Bangle", Code: "GB-03", Category: "bangles", Price: decimal.NewFromInt(48000), Active: false, Created: day(10)},
		{Name: "Diamond Stud", Code: "DS-04", Category: "earrings", Price: decimal.NewFromInt(61000), Active: true, Created: day(15)},
		{Name: "Gold Chain", Code: "GC-05", Category: "chains", Price: decimal.NewFromInt(52000), Active: true, Created: day(20)},
	}
}

func names(items []item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func byName(it item) string { return it.Name }
func byCode(it item) string { return it.Code }

func TestFilterIsStable(t *testing.T) {
	src := sample()
	keep := map[string]bool{"Gold Ring": true, "Gold Bangle": true, "Gold Chain": true}
	got := Filter(src, func(it item) bool { return keep[it.Name] })

	want := []string{src[0].Name, src[2].Name, src[4].Name}
	if diff := cmp.Diff(want, names(got)); diff != "" {
		t.Fatalf("filter order mismatch (-want +got):\n%s", diff)
	}
}

func TestFiltersAreNonDestructive(t *testing.T) {
	src := sample()
	before := names(src)

	f := NewFilters[item]()
	f.Set(KeySearch, Search("gold", byName))
	_ = f.Apply(src)

	assert.Equal(t, before, names(src))
}

func TestSearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	src := sample()

	got := Filter(src, Search("sc-0", byName, byCode))
	assert.Equal(t, []string{"Silver Chain"}, names(got))

	got = Filter(src, Search("  GOLD ", byName, byCode))
	assert.Equal(t, []string{"Gold Ring", "Gold Bangle", "Gold Chain"}, names(got))

	assert.Nil(t, Search[item]("   ", byName))
}

func TestFiltersAndCombined(t *testing.T) {
	src := sample()
	from := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	f := NewFilters[item]()
	f.Set(KeySearch, Search("chain", byName))
	f.Set(KeyCategory, EqualFold("Chains", func(it item) string { return it.Category }))
	f.Set(KeyDateRange, Between(&from, &to, func(it item) time.Time { return it.Created }))
	assert.Equal(t, []string{"Silver Chain", "Gold Chain"}, names(f.Apply(src)))

	f.Set(KeyStatus, Equals(true, func(it item) bool { return it.Active }))
	assert.Len(t, f.Active(), 4)

	f.Set(KeySearch, nil)
	assert.Equal(t, []FilterKey{KeyCategory, KeyDateRange, KeyStatus}, f.Active())

	f.Reset()
	assert.Len(t, f.Apply(src), len(src))
}

func TestInactivePredicates(t *testing.T) {
	assert.Nil(t, Equals("", func(it item) string { return it.Category }))
	assert.Nil(t, Between[item](nil, nil, func(it item) time.Time { return it.Created }))
	assert.Nil(t, All[item](nil, nil))
	assert.Nil(t, Any[item]())
}

func TestBetweenInclusiveAndOpenEnded(t *testing.T) {
	src := sample()
	from := src[1].Created
	got := Filter(src, Between(&from, nil, func(it item) time.Time { return it.Created }))
	assert.Equal(t, []string{"Silver Chain", "Gold Bangle", "Diamond Stud", "Gold Chain"}, names(got))

	to := src[1].Created
	got = Filter(src, Between(nil, &to, func(it item) time.Time { return it.Created }))
	assert.Equal(t, []string{"Gold Ring", "Silver Chain"}, names(got))

	zero := []item{{Name: "undated"}}
	assert.Empty(t, Filter(zero, Between(&from, nil, func(it item) time.Time { return it.Created })))
}

func TestAnyAll(t *testing.T) {
	src := sample()
	isChain := EqualFold[item]("chains", func(it item) string { return it.Category })
	isRing := EqualFold[item]("rings", func(it item) string { return it.Category })

	assert.Equal(t, []string{"Gold Ring", "Silver Chain", "Gold Chain"}, names(Filter(src, Any(isChain, isRing))))
	assert.Equal(t, []string{"Gold Chain"}, names(Filter(src, All(isChain, Search("gold", byName)))))
}

func TestAggregateFollowsFilteredView(t *testing.T) {
	src := sample()
	price := func(it item) decimal.Decimal { return it.Price }
	stats := []Stat[item]{
		Sum("revenue", price),
		Count[item]("total", nil),
		Count("active", func(it item) bool { return it.Active }),
	}

	all := Aggregate(src, stats...)
	assert.Equal(t, "189000", all.Get("revenue").String())
	assert.EqualValues(t, 5, all.Int("total"))
	assert.EqualValues(t, 4, all.Int("active"))

	excluded := Filter(src, func(it item) bool { return it.Category == "chains" })
	filtered := Filter(src, func(it item) bool { return it.Category != "chains" })
	got := Aggregate(filtered, stats...)

	excludedSum := Aggregate(excluded, stats...).Get("revenue")
	assert.True(t, got.Get("revenue").Equal(all.Get("revenue").Sub(excludedSum)))
	assert.EqualValues(t, 3, got.Int("total"))

	var manual decimal.Decimal
	for _, it := range filtered {
		manual = manual.Add(it.Price)
	}
	assert.True(t, manual.Equal(got.Get("revenue")))
}

func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate[item](nil, Count[item]("total", nil))
	assert.True(t, stats.Get("total").IsZero())
	assert.True(t, stats.Get("missing").IsZero())
}

func TestPercentOf(t *testing.T) {
	assert.Equal(t, "25", PercentOf(decimal.NewFromInt(1), decimal.NewFromInt(4)).String())
	assert.True(t, PercentOf(decimal.NewFromInt(1), decimal.Zero).IsZero())
}

func TestSortByIsStableCopy(t *testing.T) {
	src := sample()
	byCategory := func(a, b item) bool { return a.Category < b.Category }

	sorted := SortBy(src, byCategory, false)
	assert.Equal(t, []string{"Gold Bangle", "Silver Chain", "Gold Chain", "Diamond Stud", "Gold Ring"}, names(sorted))
	assert.Equal(t, "Gold Ring", src[0].Name)

	desc := SortBy(src, func(a, b item) bool { return a.Price.LessThan(b.Price) }, true)
	assert.Equal(t, "Diamond Stud", desc[0].Name)
}

func TestPaginateClamps(t *testing.T) {
	src := sample()

	p := Paginate(src, 2, 2)
	assert.Equal(t, []string{"Gold Bangle", "Diamond Stud"}, names(p.Items))
	assert.Equal(t, 3, p.TotalPages)

	last := Paginate(src, 99, 2)
	assert.Equal(t, 3, last.Number)
	assert.Equal(t, []string{"Gold Chain"}, names(last.Items))

	empty := Paginate[item](nil, 0, 0)
	assert.Equal(t, 1, empty.Number)
	assert.Equal(t, DefaultPageSize, empty.Size)
	assert.Empty(t, empty.Items)
}

func TestViewSnapshotStatsMatchRows(t *testing.T) {
	src := sample()
	v := NewView(2,
		Sum("revenue", func(it item) decimal.Decimal { return it.Price }),
		Count[item]("total", nil),
	)
	v.Filters.Set(KeySearch, Search("gold", byName))
	v.Less = func(a, b item) bool { return a.Price.LessThan(b.Price) }

	snap := v.Snapshot(src)
	require.Len(t, snap.Filtered, 3)
	assert.Equal(t, []string{"Gold Ring", "Gold Bangle"}, names(snap.Page.Items))
	assert.EqualValues(t, len(snap.Filtered), snap.Stats.Int("total"))
	assert.Equal(t, "125000", snap.Stats.Get("revenue").String())
}
