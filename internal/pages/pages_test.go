package pages

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jewelry-admin/internal/adminapi"
	"jewelry-admin/internal/derive"
	"jewelry-admin/internal/notify"
	"jewelry-admin/internal/reorder"
)

// fakeBackend records every call; each list can be swapped between calls.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	rates     []adminapi.MetalRate
	products  []adminapi.Product
	users     []adminapi.User
	discounts []adminapi.Discount
	banners   []adminapi.Banner

	lastQuery   adminapi.ListQuery
	lastPatches []reorder.PositionPatch
	failWrite   error
	onList      func()
}

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeBackend) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBackend) ListRates(context.Context) ([]adminapi.MetalRate, error) {
	f.record("ListRates")
	return f.rates, nil
}

func (f *fakeBackend) UpdateRate(_ context.Context, id int64, u adminapi.RateUpdate) (adminapi.MetalRate, error) {
	f.record("UpdateRate")
	if f.failWrite != nil {
		return adminapi.MetalRate{}, f.failWrite
	}
	return adminapi.MetalRate{
		ID: id, Metal: "gold", RatePerGram: u.RatePerGram, RatePerTenGram: u.RatePerTenGram,
		CurrentPrice: u.CurrentPrice, PredictedPrice: u.PredictedPrice, ChangePercent: u.ChangePercent,
	}, nil
}

func (f *fakeBackend) ListProducts(_ context.Context, q adminapi.ListQuery) ([]adminapi.Product, error) {
	f.record("ListProducts")
	f.mu.Lock()
	f.lastQuery = q
	hook := f.onList
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return f.products, nil
}

func (f *fakeBackend) ListUsers(_ context.Context, q adminapi.ListQuery) ([]adminapi.User, error) {
	f.record("ListUsers")
	return f.users, nil
}

func (f *fakeBackend) ListDiscounts(context.Context) ([]adminapi.Discount, error) {
	f.record("ListDiscounts")
	return f.discounts, nil
}

func (f *fakeBackend) CreateDiscount(_ context.Context, d adminapi.Discount) (adminapi.Discount, error) {
	f.record("CreateDiscount")
	if f.failWrite != nil {
		return adminapi.Discount{}, f.failWrite
	}
	d.ID = 99
	return d, nil
}

func (f *fakeBackend) DeleteDiscount(context.Context, int64) error {
	f.record("DeleteDiscount")
	return f.failWrite
}

func (f *fakeBackend) ListBanners(context.Context) ([]adminapi.Banner, error) {
	f.record("ListBanners")
	out := make([]adminapi.Banner, len(f.banners))
	copy(out, f.banners)
	return out, nil
}

func (f *fakeBackend) UpdateBannerPositions(_ context.Context, patches []reorder.PositionPatch) error {
	f.record("UpdateBannerPositions")
	f.lastPatches = patches
	return f.failWrite
}

var (
	_ adminapi.RateAPI     = (*fakeBackend)(nil)
	_ adminapi.ProductAPI  = (*fakeBackend)(nil)
	_ adminapi.UserAPI     = (*fakeBackend)(nil)
	_ adminapi.DiscountAPI = (*fakeBackend)(nil)
	_ adminapi.BannerAPI   = (*fakeBackend)(nil)
)

func newDeps() (Deps, *notify.Recorder) {
	rec := &notify.Recorder{}
	return Deps{Bus: notify.NewBus(zerolog.Nop(), rec), Logger: zerolog.Nop(), PageSize: 2}, rec
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestRateFormDerivesDependents(t *testing.T) {
	api := &fakeBackend{rates: []adminapi.MetalRate{{
		ID: 1, Metal: "gold", RatePerGram: dec("600"), RatePerTenGram: dec("6000"),
		CurrentPrice: dec("1000"), PredictedPrice: dec("1100"),
	}}}
	deps, _ := newDeps()
	page := NewRatesPage(api, deps)
	require.NoError(t, page.Load(context.Background()))

	form, err := page.Edit(1)
	require.NoError(t, err)
	assert.Equal(t, "10.00", form.Value(derive.FieldChangePercent))

	form.Set(derive.FieldRatePerTenGram, "6,250")
	assert.Equal(t, "625.00", form.Value(derive.FieldRatePerGram))

	form.Set(derive.FieldPredictedPrice, "900")
	assert.Equal(t, "-10.00", form.Value(derive.FieldChangePercent))

	// 当前价为 0 时，变化率留空
	form.Set(derive.FieldCurrentPrice, "0")
	assert.Equal(t, "", form.Value(derive.FieldChangePercent))
}

func TestRateEditKeepsUntouchedPrecision(t *testing.T) {
	api := &fakeBackend{rates: []adminapi.MetalRate{{
		ID: 1, Metal: "gold", RatePerGram: dec("6245.125"), RatePerTenGram: dec("62451.255"),
		CurrentPrice: dec("1000.005"), PredictedPrice: dec("1100"),
	}}}
	deps, _ := newDeps()
	page := NewRatesPage(api, deps)
	ctx := context.Background()
	require.NoError(t, page.Load(ctx))

	form, err := page.Edit(1)
	require.NoError(t, err)
	form.Set(derive.FieldPredictedPrice, "1200")

	update, errs := form.Update()
	require.Empty(t, errs)
	// 只改预测价，其余字段原样提交
	assert.True(t, update.RatePerGram.Equal(dec("6245.125")), "got %s", update.RatePerGram)
	assert.True(t, update.RatePerTenGram.Equal(dec("62451.255")), "got %s", update.RatePerTenGram)
	assert.True(t, update.CurrentPrice.Equal(dec("1000.005")), "got %s", update.CurrentPrice)
	assert.True(t, update.PredictedPrice.Equal(dec("1200")))

	_, err = page.Save(ctx, form)
	require.NoError(t, err)
	row, ok := page.table.Get(1)
	require.True(t, ok)
	assert.True(t, row.RatePerGram.Equal(dec("6245.125")))
}

func TestRateSaveValidatesBeforeNetwork(t *testing.T) {
	api := &fakeBackend{rates: []adminapi.MetalRate{{ID: 1, RatePerGram: dec("600"), RatePerTenGram: dec("6000")}}}
	deps, rec := newDeps()
	page := NewRatesPage(api, deps)
	require.NoError(t, page.Load(context.Background()))

	form, err := page.Edit(1)
	require.NoError(t, err)
	form.Set(derive.FieldRatePerGram, "abc")

	errs, err := page.Save(context.Background(), form)
	require.Error(t, err)
	assert.True(t, errs.Has(derive.FieldRatePerGram))
	assert.Zero(t, api.count("UpdateRate"))
	assert.Empty(t, rec.Notes())
}

func TestRateSaveSuccessAndFailure(t *testing.T) {
	api := &fakeBackend{rates: []adminapi.MetalRate{{
		ID: 1, RatePerGram: dec("600"), RatePerTenGram: dec("6000"),
		CurrentPrice: dec("1000"), PredictedPrice: dec("1050"),
	}}}
	deps, rec := newDeps()
	page := NewRatesPage(api, deps)
	ctx := context.Background()
	require.NoError(t, page.Load(ctx))

	form, err := page.Edit(1)
	require.NoError(t, err)
	form.Set(derive.FieldRatePerGram, "610")

	_, err = page.Save(ctx, form)
	require.NoError(t, err)
	row, ok := page.table.Get(1)
	require.True(t, ok)
	assert.True(t, row.RatePerTenGram.Equal(dec("6100")))
	last, _ := rec.Last()
	assert.Equal(t, notify.LevelSuccess, last.Level)

	api.failWrite = &adminapi.APIError{Status: 409, Message: "Rate is locked"}
	_, err = page.Save(ctx, form)
	require.Error(t, err)
	last, _ = rec.Last()
	assert.Equal(t, notify.LevelError, last.Level)
	assert.Equal(t, "Rate is locked", last.Message)
}

func TestProductsStatsFollowFilters(t *testing.T) {
	api := &fakeBackend{products: []adminapi.Product{
		{ID: 1, Name: "Gold Ring", SKU: "GR1", Category: "rings", Price: dec("100"), Stock: 2, IsActive: true},
		{ID: 2, Name: "Silver Chain", SKU: "SC1", Category: "chains", Price: dec("50"), Stock: 0},
		{ID: 3, Name: "Gold Chain", SKU: "GC1", Category: "chains", Price: dec("300"), Stock: 1, IsActive: true},
	}}
	deps, _ := newDeps()
	page := NewProductsPage(api, deps)
	require.NoError(t, page.Load(context.Background()))

	page.Search("gold")
	page.FilterCategory("CHAINS")
	snap := page.Snapshot()
	require.Len(t, snap.Filtered, 1)
	assert.Equal(t, int64(3), snap.Filtered[0].ID)
	assert.Equal(t, int64(1), snap.Stats.Int(StatProducts))
	assert.True(t, snap.Stats.Get(StatStockValue).Equal(dec("300")))

	page.ClearFilters()
	page.SortBy(SortPrice, true)
	snap = page.Snapshot()
	assert.Equal(t, 3, snap.Page.TotalItems)
	assert.Equal(t, 2, snap.Page.TotalPages)
	assert.Equal(t, int64(3), snap.Page.Items[0].ID)
	assert.Equal(t, int64(1), snap.Stats.Int(StatOutOfStock))
	assert.True(t, snap.Stats.Get(StatStockValue).Equal(dec("500")))
}

func TestProductsRemoteSearchSendsQuery(t *testing.T) {
	api := &fakeBackend{}
	deps, _ := newDeps()
	page := NewProductsPage(api, deps)
	defer page.Close()

	var got error = errors.New("not called")
	page.RemoteSearch(context.Background(), "  bangle ", func(err error) { got = err })
	require.NoError(t, got)
	assert.Equal(t, "bangle", api.lastQuery.Search)
}

func TestProductsStaleResponseDiscarded(t *testing.T) {
	api := &fakeBackend{products: []adminapi.Product{{ID: 1, Name: "Ring"}}}
	deps, rec := newDeps()
	page := NewProductsPage(api, deps)
	api.onList = page.Close

	err := page.Load(context.Background())
	assert.ErrorIs(t, err, ErrStale)
	assert.Empty(t, page.Rows())
	assert.Empty(t, rec.Notes())
}

func TestUsersDateRangeAndShare(t *testing.T) {
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	api := &fakeBackend{users: []adminapi.User{
		{ID: 1, Name: "Asha", Email: "asha@example.com", IsActive: true, CreatedAt: jan},
		{ID: 2, FullName: "Ravi Kumar", Email: "ravi@example.com", CreatedAt: mar},
		{ID: 3, Name: "Meera", Email: "meera@example.com", IsActive: true, CreatedAt: mar},
		{ID: 4, Name: "Old", Email: "old@example.com", IsActive: true},
	}}
	deps, _ := newDeps()
	page := NewUsersPage(api, deps)
	require.NoError(t, page.Load(context.Background()))

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	page.FilterJoined(&from, nil)
	snap := page.Snapshot()
	assert.Equal(t, int64(2), snap.Stats.Int(StatUsers))
	assert.True(t, page.ActiveShare().Equal(dec("50")))

	page.FilterJoined(nil, nil)
	page.Search("kumar")
	snap = page.Snapshot()
	require.Len(t, snap.Filtered, 1)
	assert.Equal(t, int64(2), snap.Filtered[0].ID)
}

func TestDiscountWithoutTitleNeverReachesBackend(t *testing.T) {
	api := &fakeBackend{}
	deps, rec := newDeps()
	page := NewDiscountsPage(api, deps)

	errs, err := page.Create(context.Background(), adminapi.Discount{
		Title:         "",
		Code:          "SAVE10",
		DiscountValue: dec("10"),
	})
	require.Error(t, err)
	assert.Equal(t, "Title is required", errs["title"])
	assert.Zero(t, api.total())
	assert.Empty(t, rec.Notes())
}

func TestDiscountCreateAndFailedDeleteRefetches(t *testing.T) {
	api := &fakeBackend{discounts: []adminapi.Discount{{ID: 1, Title: "Diwali", Code: "DIWALI", DiscountType: adminapi.DiscountFixed}}}
	deps, rec := newDeps()
	page := NewDiscountsPage(api, deps)
	ctx := context.Background()
	require.NoError(t, page.Load(ctx))

	_, err := page.Create(ctx, adminapi.Discount{Title: "Save", Code: "SAVE10", DiscountValue: dec("10")})
	require.NoError(t, err)
	assert.Len(t, page.Rows(), 2)
	assert.Equal(t, int64(1), page.Snapshot().Stats.Int(StatPercentage))

	api.failWrite = errors.New("connection reset")
	err = page.Delete(ctx, 1)
	require.Error(t, err)
	assert.Equal(t, 2, api.count("ListDiscounts"))
	_, ok := page.table.Get(1)
	assert.True(t, ok, "删除失败后应通过重新拉取恢复")
	last, _ := rec.Last()
	assert.Equal(t, "Failed to delete discount", last.Message)
}

func banners() []adminapi.Banner {
	return []adminapi.Banner{
		{ID: 1, DeviceType: DeviceDesktop, Position: 1},
		{ID: 2, DeviceType: DeviceDesktop, Position: 2},
		{ID: 3, DeviceType: DeviceDesktop, Position: 3},
		{ID: 4, DeviceType: DeviceMobile, Position: 1},
		{ID: 5, DeviceType: DeviceMobile, Position: 2},
	}
}

func TestBannerMoveAcrossDevicesIsNoop(t *testing.T) {
	api := &fakeBackend{banners: banners()}
	deps, _ := newDeps()
	page := NewBannersPage(api, deps)
	ctx := context.Background()
	require.NoError(t, page.Load(ctx))

	res, err := page.Move(ctx, 0, 3)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Nil(t, res.Patches)
	assert.Zero(t, api.count("UpdateBannerPositions"))
	assert.False(t, page.table.Dirty())
}

func TestBannerMoveSendsOneBatch(t *testing.T) {
	api := &fakeBackend{banners: banners()}
	deps, _ := newDeps()
	page := NewBannersPage(api, deps)
	ctx := context.Background()
	require.NoError(t, page.Load(ctx))

	_, err := page.MoveWithin(ctx, DeviceDesktop, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, api.count("UpdateBannerPositions"))
	assert.Equal(t, []reorder.PositionPatch{
		{ID: "3", Position: 1},
		{ID: "1", Position: 2},
		{ID: "2", Position: 3},
	}, api.lastPatches)

	desktop := page.Device(DeviceDesktop)
	assert.Equal(t, int64(3), desktop[0].ID)
	assert.Equal(t, 1, desktop[0].Position)
	assert.Len(t, page.Device(DeviceMobile), 2)
}

func TestBannerMoveFailureRevertsByRefetch(t *testing.T) {
	api := &fakeBackend{banners: banners(), failWrite: errors.New("boom")}
	deps, rec := newDeps()
	page := NewBannersPage(api, deps)
	ctx := context.Background()
	require.NoError(t, page.Load(ctx))

	_, err := page.Move(ctx, 3, 4)
	require.Error(t, err)
	assert.Equal(t, 2, api.count("ListBanners"))
	assert.Equal(t, int64(4), page.Device(DeviceMobile)[0].ID)
	last, _ := rec.Last()
	assert.Equal(t, "Failed to update banner order", last.Message)
}
