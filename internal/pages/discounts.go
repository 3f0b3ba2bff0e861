package pages

import (
	"context"
	"fmt"
	"time"

	"jewelry-admin/internal/adminapi"
	"jewelry-admin/internal/listing"
	"jewelry-admin/internal/validate"
)

// Discount stat names.
const (
	StatDiscounts  = "discounts"
	StatPercentage = "percentage"
	StatFixed      = "fixed"
	StatExpired    = "expired"
)

// DiscountsPage lists, creates and deletes discount codes.
type DiscountsPage struct {
	base[adminapi.Discount, int64]
	api adminapi.DiscountAPI
	now func() time.Time
}

// NewDiscountsPage wires the discounts screen.
func NewDiscountsPage(api adminapi.DiscountAPI, deps Deps) *DiscountsPage {
	p := &DiscountsPage{api: api, now: time.Now}
	p.base = newBase("discounts", deps, func(d adminapi.Discount) int64 { return d.ID },
		listing.Count[adminapi.Discount](StatDiscounts, nil),
		listing.Count[adminapi.Discount](StatActive, func(d adminapi.Discount) bool { return d.IsActive }),
		listing.Count[adminapi.Discount](StatPercentage, func(d adminapi.Discount) bool { return d.DiscountType == adminapi.DiscountPercentage }),
		listing.Count[adminapi.Discount](StatFixed, func(d adminapi.Discount) bool { return d.DiscountType == adminapi.DiscountFixed }),
		listing.Count[adminapi.Discount](StatExpired, func(d adminapi.Discount) bool { return d.EndsAt != nil && d.EndsAt.Before(p.now()) }),
	)
	return p
}

// Load fetches every discount.
func (p *DiscountsPage) Load(ctx context.Context) error {
	return p.fetch(ctx, "Failed to load discounts", p.api.ListDiscounts)
}

// Search filters by title or code.
func (p *DiscountsPage) Search(query string) {
	p.setFilter(listing.KeySearch, listing.Search(query,
		func(d adminapi.Discount) string { return d.Title },
		func(d adminapi.Discount) string { return d.Code },
	))
}

// FilterType keeps percentage or fixed discounts; blank shows all.
func (p *DiscountsPage) FilterType(kind string) {
	p.setFilter(listing.KeyCategory, listing.Equals(kind, func(d adminapi.Discount) string { return d.DiscountType }))
}

// FilterStatus keeps "active" or "inactive" discounts; blank shows all.
func (p *DiscountsPage) FilterStatus(status string) {
	p.setFilter(listing.KeyStatus, statusPredicate(status, func(d adminapi.Discount) bool { return d.IsActive }))
}

// Create validates d and, when valid, sends it. Field errors are returned
// without any backend call.
func (p *DiscountsPage) Create(ctx context.Context, d adminapi.Discount) (validate.Errors, error) {
	if d.DiscountType == "" {
		d.DiscountType = adminapi.DiscountPercentage
	}
	if errs := validate.Discount(d); len(errs) > 0 {
		return errs, errs.Err()
	}

	created, err := p.api.CreateDiscount(ctx, d)
	if err != nil {
		p.bus.Error(ctx, adminapi.UserMessage(err, "Failed to create discount"))
		return nil, err
	}
	p.table.Upsert(created)
	p.bus.Success(ctx, "Discount created successfully")
	return nil, nil
}

// Delete removes discount id optimistically. On failure the list is
// re-fetched so the row comes back.
func (p *DiscountsPage) Delete(ctx context.Context, id int64) error {
	if !p.table.Remove(id) {
		return fmt.Errorf("discount %d not loaded", id)
	}

	if err := p.api.DeleteDiscount(ctx, id); err != nil {
		p.bus.Error(ctx, adminapi.UserMessage(err, "Failed to delete discount"))
		if reloadErr := p.Load(ctx); reloadErr != nil {
			p.logger.Warn().Err(reloadErr).Msg("reload after failed delete")
		}
		return err
	}
	p.bus.Success(ctx, "Discount deleted successfully")
	return nil
}
