package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"jewelry-admin/internal/adminapi"
	"jewelry-admin/internal/listing"
	"jewelry-admin/internal/pages"
)

// Summary is the dashboard overview.
type Summary struct {
	Rates    []adminapi.MetalRate
	Products listing.Stats
	Users    listing.Stats
}

// Summarize loads rates, products and users concurrently. The first failure
// cancels the other requests.
func (a *App) Summarize(ctx context.Context) (Summary, error) {
	deps := a.deps()
	rates := pages.NewRatesPage(a.backend(), deps)
	products := pages.NewProductsPage(a.backend(), deps)
	users := pages.NewUsersPage(a.backend(), deps)
	defer rates.Close()
	defer products.Close()
	defer users.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return rates.Load(gctx) })
	g.Go(func() error { return products.Load(gctx) })
	g.Go(func() error { return users.Load(gctx) })
	if err := g.Wait(); err != nil {
		return Summary{}, fmt.Errorf("load dashboard: %w", err)
	}

	return Summary{
		Rates:    rates.Rows(),
		Products: products.Snapshot().Stats,
		Users:    users.Snapshot().Stats,
	}, nil
}

// Dashboard prints the overview cards.
func (a *App) Dashboard(ctx context.Context) error {
	summary, err := a.Summarize(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.Out, "products: %d (active %d, out of stock %d), stock value %s\n",
		summary.Products.Int(pages.StatProducts),
		summary.Products.Int(pages.StatActive),
		summary.Products.Int(pages.StatOutOfStock),
		formatDecimal(summary.Products.Get(pages.StatStockValue), 2),
	)
	fmt.Fprintf(a.Out, "users: %d (active %s%%)\n",
		summary.Users.Int(pages.StatUsers),
		listing.PercentOf(summary.Users.Get(pages.StatActive), summary.Users.Get(pages.StatUsers)).StringFixed(2),
	)

	w := newTable(a.Out, "Metal", "Purity", "Rate/10g", "Current", "Predicted")
	for _, r := range summary.Rates {
		row(w, r.Metal, r.Purity, formatDecimal(r.RatePerTenGram, 2), formatDecimal(r.CurrentPrice, 2), formatDecimal(r.PredictedPrice, 2))
	}
	return w.Flush()
}
