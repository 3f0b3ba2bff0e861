package export

import (
	"jewelry-admin/internal/adminapi"
	"jewelry-admin/internal/derive"
	"jewelry-admin/internal/storage"
)

// Entity names used in file names.
const (
	EntityProducts  = "products"
	EntityUsers     = "users"
	EntityDiscounts = "discounts"
	EntityRates     = "rates"
	EntityHistory   = "rate-history"
)

// ProductColumns lays out the products sheet.
var ProductColumns = []Column[adminapi.Product]{
	{Header: "ID", Width: 8, Value: func(p adminapi.Product) any { return p.ID }},
	{Header: "Name", Width: 32, Value: func(p adminapi.Product) any { return p.Name }},
	{Header: "SKU", Value: func(p adminapi.Product) any { return p.SKU }},
	{Header: "Category", Value: func(p adminapi.Product) any { return p.Category }},
	{Header: "Metal", Value: func(p adminapi.Product) any { return p.Metal }},
	{Header: "Price", Value: func(p adminapi.Product) any { return p.Price }},
	{Header: "Stock", Width: 10, Value: func(p adminapi.Product) any { return p.Stock }},
	{Header: "Stock Value", Value: func(p adminapi.Product) any { return p.StockValue() }},
	{Header: "Active", Width: 10, Value: func(p adminapi.Product) any { return p.IsActive }},
	{Header: "Image", Width: 40, Value: func(p adminapi.Product) any { return p.PrimaryImage() }},
}

// UserColumns lays out the users sheet.
var UserColumns = []Column[adminapi.User]{
	{Header: "ID", Width: 8, Value: func(u adminapi.User) any { return u.ID }},
	{Header: "Name", Width: 28, Value: func(u adminapi.User) any { return u.DisplayName() }},
	{Header: "Email", Width: 32, Value: func(u adminapi.User) any { return u.Email }},
	{Header: "Phone", Value: func(u adminapi.User) any { return u.Phone }},
	{Header: "Active", Width: 10, Value: func(u adminapi.User) any { return u.IsActive }},
	{Header: "Joined", Width: 22, Value: func(u adminapi.User) any { return u.CreatedAt }},
}

// DiscountColumns lays out the discounts sheet.
var DiscountColumns = []Column[adminapi.Discount]{
	{Header: "ID", Width: 8, Value: func(d adminapi.Discount) any { return d.ID }},
	{Header: "Title", Width: 28, Value: func(d adminapi.Discount) any { return d.Title }},
	{Header: "Code", Value: func(d adminapi.Discount) any { return d.Code }},
	{Header: "Type", Value: func(d adminapi.Discount) any { return d.DiscountType }},
	{Header: "Value", Value: func(d adminapi.Discount) any { return d.DiscountValue }},
	{Header: "Min Order", Value: func(d adminapi.Discount) any { return d.MinOrderAmount }},
	{Header: "Usage Limit", Value: func(d adminapi.Discount) any { return d.UsageLimit }},
	{Header: "Starts", Width: 22, Value: func(d adminapi.Discount) any { return d.StartsAt }},
	{Header: "Ends", Width: 22, Value: func(d adminapi.Discount) any { return d.EndsAt }},
	{Header: "Active", Width: 10, Value: func(d adminapi.Discount) any { return d.IsActive }},
}

// RateColumns lays out the current rates sheet.
var RateColumns = []Column[adminapi.MetalRate]{
	{Header: "Metal", Value: func(r adminapi.MetalRate) any { return r.Metal }},
	{Header: "Purity", Width: 10, Value: func(r adminapi.MetalRate) any { return r.Purity }},
	{Header: "Rate / g", Value: func(r adminapi.MetalRate) any { return r.RatePerGram }},
	{Header: "Rate / 10g", Value: func(r adminapi.MetalRate) any { return r.RatePerTenGram }},
	{Header: "Current", Value: func(r adminapi.MetalRate) any { return r.CurrentPrice }},
	{Header: "Predicted", Value: func(r adminapi.MetalRate) any { return r.PredictedPrice }},
	{Header: "Change %", Value: rateChange},
}

// rateChange derives the change from the exported prices and falls back to
// the stored value when the current price is not positive.
func rateChange(r adminapi.MetalRate) any {
	if pct, ok := derive.ChangePercent(r.CurrentPrice, r.PredictedPrice); ok {
		return pct.Round(derive.DisplayPlaces)
	}
	return r.ChangePercent
}

// HistoryColumns lays out stored rate snapshots.
var HistoryColumns = []Column[storage.RateSnapshot]{
	{Header: "Bucket", Width: 22, Value: func(s storage.RateSnapshot) any { return s.Bucket }},
	{Header: "Rate", Value: func(s storage.RateSnapshot) any { return s.Label() }},
	{Header: "Rate / g", Value: func(s storage.RateSnapshot) any { return s.RatePerGram }},
	{Header: "Rate / 10g", Value: func(s storage.RateSnapshot) any { return s.RatePerTenGram }},
	{Header: "Current", Value: func(s storage.RateSnapshot) any { return s.CurrentPrice }},
	{Header: "Predicted", Value: func(s storage.RateSnapshot) any { return s.PredictedPrice }},
	{Header: "Change %", Value: func(s storage.RateSnapshot) any { return s.ChangePct }},
	{Header: "Status", Width: 12, Value: func(s storage.RateSnapshot) any { return s.Status }},
	{Header: "Note", Width: 40, Value: func(s storage.RateSnapshot) any {
		if s.Error == nil {
			return ""
		}
		return *s.Error
	}},
}
