package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"jewelry-admin/internal/adminapi"
	"jewelry-admin/internal/derive"
	"jewelry-admin/internal/export"
	"jewelry-admin/internal/pages"
)

// ListOptions drive the list commands.
type ListOptions struct {
	Search   string
	Remote   bool
	Category string
	Status   string
	Sort     string
	Desc     bool
	Page     int
	PageSize int
	From     *time.Time
	To       *time.Time
}

// ListRates prints the rates table.
func (a *App) ListRates(ctx context.Context, metal string) error {
	page := pages.NewRatesPage(a.backend(), a.deps())
	defer page.Close()
	if err := page.Load(ctx); err != nil {
		return err
	}
	page.FilterMetal(metal)
	snap := page.Snapshot()

	w := newTable(a.Out, "ID", "Metal", "Purity", "Rate/g", "Rate/10g", "Current", "Predicted", "Change%")
	for _, r := range snap.Filtered {
		change := formatOptional(r.ChangePercent, 2)
		if pct, ok := derive.ChangePercent(r.CurrentPrice, r.PredictedPrice); ok {
			change = derive.Display(pct)
		}
		row(w, strconv.FormatInt(r.ID, 10), r.Metal, r.Purity,
			formatDecimal(r.RatePerGram, 2), formatDecimal(r.RatePerTenGram, 2),
			formatDecimal(r.CurrentPrice, 2), formatDecimal(r.PredictedPrice, 2), change)
	}
	w.Flush()
	pageFooter(a.Out, snap.Page, snap.Stats, pages.StatRateCount, pages.StatRisingCount)
	return nil
}

// RateEdit is one field assignment, applied in order.
type RateEdit struct {
	Field string
	Value string
}

// SetRate edits rate id through the derived-field form and saves it.
func (a *App) SetRate(ctx context.Context, id int64, edits []RateEdit) error {
	page := pages.NewRatesPage(a.backend(), a.deps())
	defer page.Close()
	if err := page.Load(ctx); err != nil {
		return err
	}

	form, err := page.Edit(id)
	if err != nil {
		return err
	}
	for _, edit := range edits {
		patch := form.Set(edit.Field, edit.Value)
		a.Logger.Debug().Interface("patch", patch).Msg("rate form updated")
	}

	if _, err := page.Save(ctx, form); err != nil {
		return err
	}
	return a.ListRates(ctx, "")
}

func (a *App) productsPage(ctx context.Context, opts ListOptions) (*pages.ProductsPage, error) {
	deps := a.deps()
	deps.PageSize = a.Config.ResolvePageSize(opts.PageSize)
	page := pages.NewProductsPage(a.backend(), deps)

	if opts.Remote && opts.Search != "" {
		done := make(chan error, 1)
		page.RemoteSearch(ctx, opts.Search, func(err error) { done <- err })
		select {
		case err := <-done:
			if err != nil {
				page.Close()
				return nil, err
			}
		case <-ctx.Done():
			page.Close()
			return nil, ctx.Err()
		}
	} else {
		if err := page.Load(ctx); err != nil {
			page.Close()
			return nil, err
		}
		page.Search(opts.Search)
	}

	page.FilterCategory(opts.Category)
	page.FilterStatus(opts.Status)
	page.SortBy(opts.Sort, opts.Desc)
	page.GoTo(opts.Page)
	return page, nil
}

// ListProducts prints one page of the filtered products table.
func (a *App) ListProducts(ctx context.Context, opts ListOptions) error {
	page, err := a.productsPage(ctx, opts)
	if err != nil {
		return err
	}
	defer page.Close()
	snap := page.Snapshot()

	w := newTable(a.Out, "ID", "Name", "SKU", "Category", "Price", "Stock", "Active", "Image")
	for _, p := range snap.Page.Items {
		row(w, strconv.FormatInt(p.ID, 10), p.Name, p.SKU, p.Category,
			formatDecimal(p.Price, 2), strconv.Itoa(p.Stock), yesNo(p.IsActive), p.PrimaryImage())
	}
	w.Flush()
	pageFooter(a.Out, snap.Page, snap.Stats,
		pages.StatProducts, pages.StatActive, pages.StatOutOfStock, pages.StatStockValue)
	return nil
}

// ExportProducts writes every filtered product to a dated spreadsheet.
func (a *App) ExportProducts(ctx context.Context, opts ListOptions) error {
	page, err := a.productsPage(ctx, opts)
	if err != nil {
		return err
	}
	defer page.Close()

	path, err := export.Write(a.exporter(), export.EntityProducts, export.ProductColumns, page.Snapshot().Filtered)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, path)
	return nil
}

func (a *App) usersPage(ctx context.Context, opts ListOptions) (*pages.UsersPage, error) {
	deps := a.deps()
	deps.PageSize = a.Config.ResolvePageSize(opts.PageSize)
	page := pages.NewUsersPage(a.backend(), deps)
	if err := page.Load(ctx); err != nil {
		page.Close()
		return nil, err
	}
	page.Search(opts.Search)
	page.FilterStatus(opts.Status)
	page.FilterJoined(opts.From, opts.To)
	page.GoTo(opts.Page)
	return page, nil
}

// ListUsers prints one page of the filtered users table.
func (a *App) ListUsers(ctx context.Context, opts ListOptions) error {
	page, err := a.usersPage(ctx, opts)
	if err != nil {
		return err
	}
	defer page.Close()
	snap := page.Snapshot()

	w := newTable(a.Out, "ID", "Name", "Email", "Phone", "Active", "Joined")
	for _, u := range snap.Page.Items {
		joined := "-"
		if !u.CreatedAt.IsZero() {
			joined = u.CreatedAt.UTC().Format("2006-01-02")
		}
		row(w, strconv.FormatInt(u.ID, 10), u.DisplayName(), u.Email, u.Phone, yesNo(u.IsActive), joined)
	}
	w.Flush()
	pageFooter(a.Out, snap.Page, snap.Stats, pages.StatUsers, pages.StatActive, pages.StatInactive)
	fmt.Fprintf(a.Out, "active share: %s%%\n", page.ActiveShare().StringFixed(2))
	return nil
}

// ExportUsers writes every filtered user to a dated spreadsheet.
func (a *App) ExportUsers(ctx context.Context, opts ListOptions) error {
	page, err := a.usersPage(ctx, opts)
	if err != nil {
		return err
	}
	defer page.Close()

	path, err := export.Write(a.exporter(), export.EntityUsers, export.UserColumns, page.Snapshot().Filtered)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, path)
	return nil
}

// ListDiscounts prints the discounts table.
func (a *App) ListDiscounts(ctx context.Context, opts ListOptions) error {
	page := pages.NewDiscountsPage(a.backend(), a.deps())
	defer page.Close()
	if err := page.Load(ctx); err != nil {
		return err
	}
	page.Search(opts.Search)
	page.FilterType(opts.Category)
	page.FilterStatus(opts.Status)
	snap := page.Snapshot()

	w := newTable(a.Out, "ID", "Title", "Code", "Type", "Value", "Min order", "Ends", "Active")
	for _, d := range snap.Filtered {
		ends := "-"
		if d.EndsAt != nil {
			ends = d.EndsAt.UTC().Format("2006-01-02")
		}
		row(w, strconv.FormatInt(d.ID, 10), d.Title, d.Code, d.DiscountType,
			formatDecimal(d.DiscountValue, 2), formatDecimal(d.MinOrderAmount, 2), ends, yesNo(d.IsActive))
	}
	w.Flush()
	pageFooter(a.Out, snap.Page, snap.Stats,
		pages.StatDiscounts, pages.StatActive, pages.StatPercentage, pages.StatFixed, pages.StatExpired)
	return nil
}

// CreateDiscount validates and creates a discount. Field errors are printed
// one per line and nothing is sent.
func (a *App) CreateDiscount(ctx context.Context, d adminapi.Discount) error {
	page := pages.NewDiscountsPage(a.backend(), a.deps())
	defer page.Close()

	errs, err := page.Create(ctx, d)
	for _, field := range errs.Fields() {
		fmt.Fprintf(a.Err, "%s: %s\n", field, errs[field])
	}
	return err
}

// DeleteDiscount removes discount id.
func (a *App) DeleteDiscount(ctx context.Context, id int64) error {
	page := pages.NewDiscountsPage(a.backend(), a.deps())
	defer page.Close()
	if err := page.Load(ctx); err != nil {
		return err
	}
	return page.Delete(ctx, id)
}

// ListBanners prints banners grouped by device type.
func (a *App) ListBanners(ctx context.Context, device string) error {
	page := pages.NewBannersPage(a.backend(), a.deps())
	defer page.Close()
	if err := page.Load(ctx); err != nil {
		return err
	}
	return a.printBanners(page, device)
}

// ReorderBanners moves a banner within its device ranking and persists the
// changed positions.
func (a *App) ReorderBanners(ctx context.Context, device string, from, to int) error {
	page := pages.NewBannersPage(a.backend(), a.deps())
	defer page.Close()
	if err := page.Load(ctx); err != nil {
		return err
	}

	// positions on the command line are 1-based like the stored ones
	res, err := page.MoveWithin(ctx, device, from-1, to-1)
	if err != nil {
		return err
	}
	if !res.Changed {
		fmt.Fprintln(a.Err, "nothing to reorder")
	}
	return a.printBanners(page, device)
}

func (a *App) printBanners(page *pages.BannersPage, device string) error {
	rows := page.Rows()
	if device != "" {
		rows = page.Device(device)
	}
	w := newTable(a.Out, "Device", "Pos", "ID", "Title", "Active")
	for _, b := range rows {
		row(w, b.DeviceType, strconv.Itoa(b.Position), strconv.FormatInt(b.ID, 10), b.Title, yesNo(b.IsActive))
	}
	return w.Flush()
}
