package pages

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"jewelry-admin/internal/adminapi"
	"jewelry-admin/internal/listing"
	"jewelry-admin/internal/viewstate"
)

// User stat names.
const (
	StatUsers    = "users"
	StatInactive = "inactive"
)

// UsersPage lists customer accounts.
type UsersPage struct {
	base[adminapi.User, int64]
	api      adminapi.UserAPI
	debounce *viewstate.Debouncer

	mu    sync.Mutex
	query adminapi.ListQuery
}

// NewUsersPage wires the users screen.
func NewUsersPage(api adminapi.UserAPI, deps Deps) *UsersPage {
	return &UsersPage{
		base: newBase("users", deps, func(u adminapi.User) int64 { return u.ID },
			listing.Count[adminapi.User](StatUsers, nil),
			listing.Count[adminapi.User](StatActive, func(u adminapi.User) bool { return u.IsActive }),
			listing.Count[adminapi.User](StatInactive, func(u adminapi.User) bool { return !u.IsActive }),
		),
		api:      api,
		debounce: viewstate.NewDebouncer(deps.SearchDelay),
	}
}

// Load fetches users with the current server-side query.
func (p *UsersPage) Load(ctx context.Context) error {
	p.mu.Lock()
	q := p.query
	p.mu.Unlock()
	return p.fetch(ctx, "Failed to load users", func(ctx context.Context) ([]adminapi.User, error) {
		return p.api.ListUsers(ctx, q)
	})
}

// Search filters loaded users by name, email or phone.
func (p *UsersPage) Search(query string) {
	p.setFilter(listing.KeySearch, listing.Search(query,
		adminapi.User.DisplayName,
		func(u adminapi.User) string { return u.Email },
		func(u adminapi.User) string { return u.Phone },
	))
}

// RemoteSearch re-queries the backend once typing has paused.
func (p *UsersPage) RemoteSearch(ctx context.Context, query string, done func(error)) {
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

// FilterStatus keeps "active" or "inactive" users; blank shows all.
func (p *UsersPage) FilterStatus(status string) {
	p.setFilter(listing.KeyStatus, statusPredicate(status, func(u adminapi.User) bool { return u.IsActive }))
}

// FilterJoined keeps users created within [from, to]; nil bounds are open.
func (p *UsersPage) FilterJoined(from, to *time.Time) {
	p.setFilter(listing.KeyDateRange, listing.Between(from, to, func(u adminapi.User) time.Time { return u.CreatedAt }))
}

// ActiveShare is the percentage of filtered users that are active.
func (p *UsersPage) ActiveShare() decimal.Decimal {
	stats := p.Snapshot().Stats
	return listing.PercentOf(stats.Get(StatActive), stats.Get(StatUsers))
}

// Close stops a pending remote search and discards in-flight responses.
func (p *UsersPage) Close() {
	p.debounce.Stop()
	p.base.Close()
}
