package pages

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"jewelry-admin/internal/adminapi"
	"jewelry-admin/internal/listing"
	"jewelry-admin/internal/viewstate"
)

// Product stat names.
const (
	StatProducts   = "products"
	StatActive     = "active"
	StatOutOfStock = "out_of_stock"
	StatStockUnits = "stock_units"
	StatStockValue = "stock_value"
)

// Product sort fields.
const (
	SortName    = "name"
	SortPrice   = "price"
	SortStock   = "stock"
	SortCreated = "created"
)

// ProductsPage lists inventory with local filters and a debounced remote
// search.
type ProductsPage struct {
	base[adminapi.Product, int64]
	api      adminapi.ProductAPI
	debounce *viewstate.Debouncer

	mu    sync.Mutex
	query adminapi.ListQuery
}

// NewProductsPage wires the products screen.
func NewProductsPage(api adminapi.ProductAPI, deps Deps) *ProductsPage {
	return &ProductsPage{
		base: newBase("products", deps, func(p adminapi.Product) int64 { return p.ID },
			listing.Count[adminapi.Product](StatProducts, nil),
			listing.Count[adminapi.Product](StatActive, func(p adminapi.Product) bool { return p.IsActive }),
			listing.Count[adminapi.Product](StatOutOfStock, func(p adminapi.Product) bool { return p.Stock <= 0 }),
			listing.Sum(StatStockUnits, func(p adminapi.Product) decimal.Decimal { return decimal.NewFromInt(int64(p.Stock)) }),
			listing.Sum(StatStockValue, adminapi.Product.StockValue),
		),
		api:      api,
		debounce: viewstate.NewDebouncer(deps.SearchDelay),
	}
}

// Load fetches products with the current server-side query.
func (p *ProductsPage) Load(ctx context.Context) error {
	p.mu.Lock()
	q := p.query
	p.mu.Unlock()
	return p.fetch(ctx, "Failed to load products", func(ctx context.Context) ([]adminapi.Product, error) {
		return p.api.ListProducts(ctx, q)
	})
}

// Search filters the loaded rows by name, SKU or category.
func (p *ProductsPage) Search(query string) {
	p.setFilter(listing.KeySearch, listing.Search(query,
		func(pr adminapi.Product) string { return pr.Name },
		func(pr adminapi.Product) string { return pr.SKU },
		func(pr adminapi.Product) string { return pr.Category },
	))
}

// RemoteSearch re-queries the backend once typing has paused. done, when
// set, receives the load result.
func (p *ProductsPage) RemoteSearch(ctx context.Context, query string, done func(error)) {
	p.mu.Lock()
	p.query.Search = strings.TrimSpace(query)
	p.mu.Unlock()
	p.debounce.Trigger(func() {
		err := p.Load(ctx)
		if done != nil {
			done(err)
		}
	})
}

// FilterCategory keeps one category; blank shows all.
func (p *ProductsPage) FilterCategory(category string) {
	p.setFilter(listing.KeyCategory, listing.EqualFold(category, func(pr adminapi.Product) string { return pr.Category }))
}

// FilterStatus keeps "active" or "inactive" products; blank shows all.
func (p *ProductsPage) FilterStatus(status string) {
	p.setFilter(listing.KeyStatus, statusPredicate(status, func(pr adminapi.Product) bool { return pr.IsActive }))
}

// SortBy orders the view by one of the Sort* fields.
func (p *ProductsPage) SortBy(field string, desc bool) {
	var less listing.Less[adminapi.Product]
	switch field {
	case SortName:
		less = func(a, b adminapi.Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case SortPrice:
		less = func(a, b adminapi.Product) bool { return a.Price.LessThan(b.Price) }
	case SortStock:
		less = func(a, b adminapi.Product) bool { return a.Stock < b.Stock }
	case SortCreated:
		less = func(a, b adminapi.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
	p.sortBy(less, desc)
}

// Close stops a pending remote search and discards in-flight responses.
func (p *ProductsPage) Close() {
	p.debounce.Stop()
	p.base.Close()
}

// statusPredicate maps a status select ("active", "inactive", "") to a filter.
func statusPredicate[T any](status string, active func(T) bool) listing.Predicate[T] {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "active":
		return func(item T) bool { return active(item) }
	case "inactive":
		return func(item T) bool { return !active(item) }
	default:
		return nil
	}
}
