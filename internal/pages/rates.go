package pages

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"jewelry-admin/internal/adminapi"
	"jewelry-admin/internal/derive"
	"jewelry-admin/internal/listing"
	"jewelry-admin/internal/validate"
)

// Rate stat names.
const (
	StatRateCount   = "rates"
	StatRisingCount = "rising"
)

// RatesPage lists metal rates and edits them through a derived-field form.
type RatesPage struct {
	base[adminapi.MetalRate, int64]
	api  adminapi.RateAPI
	calc *derive.Calculator
}

// NewRatesPage wires the rates screen.
func NewRatesPage(api adminapi.RateAPI, deps Deps) *RatesPage {
	return &RatesPage{
		base: newBase("rates", deps, func(r adminapi.MetalRate) int64 { return r.ID },
			listing.Count[adminapi.MetalRate](StatRateCount, nil),
			listing.Count[adminapi.MetalRate](StatRisingCount, func(r adminapi.MetalRate) bool {
				change, ok := derive.ChangePercent(r.CurrentPrice, r.PredictedPrice)
				return ok && change.IsPositive()
			}),
		),
		api:  api,
		calc: derive.Default(),
	}
}

// Load fetches every rate.
func (p *RatesPage) Load(ctx context.Context) error {
	return p.fetch(ctx, "Failed to load rates", p.api.ListRates)
}

// FilterMetal narrows the table to one metal; blank clears the filter.
func (p *RatesPage) FilterMetal(metal string) {
	p.setFilter(listing.KeyCategory, listing.EqualFold(metal, func(r adminapi.MetalRate) string { return r.Metal }))
}

// Edit opens the form for rate id, prefilled from the current row.
func (p *RatesPage) Edit(id int64) (*RateForm, error) {
	rate, ok := p.table.Get(id)
	if !ok {
		return nil, fmt.Errorf("rate %d not loaded", id)
	}
	// source fields keep their stored precision; only derived values are rounded
	state := map[string]string{
		derive.FieldRatePerGram:    rate.RatePerGram.String(),
		derive.FieldRatePerTenGram: rate.RatePerTenGram.String(),
		derive.FieldCurrentPrice:   rate.CurrentPrice.String(),
		derive.FieldPredictedPrice: rate.PredictedPrice.String(),
		derive.FieldChangePercent:  "",
	}
	if change, ok := derive.ChangePercent(rate.CurrentPrice, rate.PredictedPrice); ok {
		state[derive.FieldChangePercent] = derive.Display(change)
	}
	return &RateForm{ID: id, calc: p.calc, state: state}, nil
}

// Save validates form and sends it. Invalid forms never reach the backend.
func (p *RatesPage) Save(ctx context.Context, form *RateForm) (validate.Errors, error) {
	update, errs := form.Update()
	if len(errs) > 0 {
		return errs, errs.Err()
	}

	saved, err := p.api.UpdateRate(ctx, form.ID, update)
	if err != nil {
		p.bus.Error(ctx, adminapi.UserMessage(err, "Failed to update rate"))
		return nil, err
	}
	p.table.Upsert(saved)
	p.bus.Success(ctx, "Rate updated successfully")
	return nil, nil
}

// RateForm is the edit state of one rate. Editing a source field recomputes
// its dependents immediately.
type RateForm struct {
	ID    int64
	calc  *derive.Calculator
	state map[string]string
}

// Set records a user edit and merges the derived patch.
func (f *RateForm) Set(field, value string) derive.Patch {
	patch := f.calc.Apply(derive.Field{Name: field, Value: value}, f.state)
	f.state = patch.Merge(f.state)
	return patch
}

// Value returns the displayed value of field.
func (f *RateForm) Value(field string) string {
	return f.state[field]
}

// Update parses the form into a request body.
func (f *RateForm) Update() (adminapi.RateUpdate, validate.Errors) {
	errs := validate.Errors{}
	number := func(field, label string) decimal.Decimal {
		v, ok := derive.Parse(f.state[field])
		if !ok {
			errs.Add(field, label+" must be a number")
		}
		return v
	}

	update := adminapi.RateUpdate{
		RatePerGram:    number(derive.FieldRatePerGram, "Rate per gram"),
		RatePerTenGram: number(derive.FieldRatePerTenGram, "Rate per 10 gram"),
		CurrentPrice:   number(derive.FieldCurrentPrice, "Current price"),
		PredictedPrice: number(derive.FieldPredictedPrice, "Predicted price"),
	}
	if change, ok := derive.Parse(f.state[derive.FieldChangePercent]); ok {
		update.ChangePercent = &change
	}

	for field, msg := range validate.Rate(update) {
		if name, ok := rateFormFields[field]; ok {
			field = name
		}
		errs.Add(field, msg)
	}
	return update, errs
}

// rateFormFields maps request field names to form field names.
var rateFormFields = map[string]string{
	"rate_per_gram":     derive.FieldRatePerGram,
	"rate_per_ten_gram": derive.FieldRatePerTenGram,
	"current_price":     derive.FieldCurrentPrice,
	"predicted_price":   derive.FieldPredictedPrice,
}
