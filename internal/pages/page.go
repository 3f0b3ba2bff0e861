// Package pages holds one controller per admin screen. Each controller owns
// its rows, filters, stale-response guard and form validation, and talks to
// the backend and the notification bus only through injected collaborators.
package pages

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"jewelry-admin/internal/adminapi"
	"jewelry-admin/internal/listing"
	"jewelry-admin/internal/notify"
	"jewelry-admin/internal/viewstate"
)

// ErrStale is returned when a response arrived after a newer request or
// after the page was closed; its data was discarded.
var ErrStale = errors.New("pages: stale response discarded")

// Deps are the collaborators shared by every page.
type Deps struct {
	Bus         *notify.Bus
	Logger      zerolog.Logger
	PageSize    int
	SearchDelay time.Duration
}

func (d Deps) pageSize() int {
	if d.PageSize > 0 {
		return d.PageSize
	}
	return listing.DefaultPageSize
}

// base is embedded by list pages.
type base[T any, K comparable] struct {
	name   string
	guard  *viewstate.Guard
	table  *viewstate.Table[T, K]
	view   *listing.View[T]
	bus    *notify.Bus
	logger zerolog.Logger
}

func newBase[T any, K comparable](name string, deps Deps, key func(T) K, stats ...listing.Stat[T]) base[T, K] {
	return base[T, K]{
		name:   name,
		guard:  &viewstate.Guard{},
		table:  viewstate.NewTable[T, K](key),
		view:   listing.NewView[T](deps.pageSize(), stats...),
		bus:    deps.Bus,
		logger: deps.Logger.With().Str("component", "page").Str("page", name).Logger(),
	}
}

// fetch runs one guarded load. On failure the current rows are kept and the
// backend message (or fallback) is shown.
func (b *base[T, K]) fetch(ctx context.Context, fallback string, get func(context.Context) ([]T, error)) error {
	token := b.guard.Begin()
	rows, err := get(ctx)
	if err != nil {
		if b.guard.Current(token) {
			b.bus.Error(ctx, adminapi.UserMessage(err, fallback))
		}
		b.logger.Warn().Err(err).Msg("load failed")
		return err
	}
	if !b.guard.Commit(token, func() { b.table.Replace(rows) }) {
		b.logger.Debug().Msg("discarding stale response")
		return ErrStale
	}
	b.logger.Debug().Int("rows", len(rows)).Msg("rows loaded")
	return nil
}

// Rows returns the unfiltered rows in display order.
func (b *base[T, K]) Rows() []T {
	return b.table.Rows()
}

// Snapshot renders the filtered, sorted, paginated view with stats.
func (b *base[T, K]) Snapshot() listing.Snapshot[T] {
	return b.view.Snapshot(b.table.Rows())
}

// GoTo selects a 1-based page of the filtered view.
func (b *base[T, K]) GoTo(page int) {
	b.view.PageNum = page
}

// ClearFilters drops every predicate.
func (b *base[T, K]) ClearFilters() {
	b.view.Filters.Reset()
	b.view.PageNum = 1
}

func (b *base[T, K]) setFilter(key listing.FilterKey, pred listing.Predicate[T]) {
	b.view.Filters.Set(key, pred)
	b.view.PageNum = 1
}

func (b *base[T, K]) sortBy(less listing.Less[T], desc bool) {
	b.view.Less = less
	b.view.Desc = desc
}

// Close tears the page down. In-flight responses are discarded afterwards.
func (b *base[T, K]) Close() {
	b.guard.Close()
}
