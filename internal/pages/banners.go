package pages

import (
	"context"
	"sort"
	"strconv"

	"jewelry-admin/internal/adminapi"
	"jewelry-admin/internal/listing"
	"jewelry-admin/internal/reorder"
)

// Banner device types.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
)

var bannerKeys = reorder.Keys[adminapi.Banner]{
	ID:        func(b adminapi.Banner) string { return strconv.FormatInt(b.ID, 10) },
	Partition: func(b adminapi.Banner) string { return b.DeviceType },
	Position:  func(b adminapi.Banner) int { return b.Position },
}

// BannersPage ranks CMS banners per device type by drag and drop.
type BannersPage struct {
	base[adminapi.Banner, int64]
	api adminapi.BannerAPI
}

// NewBannersPage wires the banners screen.
func NewBannersPage(api adminapi.BannerAPI, deps Deps) *BannersPage {
	return &BannersPage{
		base: newBase("banners", deps, func(b adminapi.Banner) int64 { return b.ID },
			listing.Count[adminapi.Banner](StatActive, func(b adminapi.Banner) bool { return b.IsActive }),
		),
		api: api,
	}
}

// Load fetches banners ordered by device type, then position.
func (p *BannersPage) Load(ctx context.Context) error {
	return p.fetch(ctx, "Failed to load banners", func(ctx context.Context) ([]adminapi.Banner, error) {
		banners, err := p.api.ListBanners(ctx)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(banners, func(i, j int) bool {
			if banners[i].DeviceType != banners[j].DeviceType {
				return banners[i].DeviceType < banners[j].DeviceType
			}
			return banners[i].Position < banners[j].Position
		})
		return banners, nil
	})
}

// Device returns one device type's banners in rank order.
func (p *BannersPage) Device(device string) []adminapi.Banner {
	return reorder.InPartition(p.table.Rows(), device, bannerKeys)
}

// Move drags the row at from onto the row at to, both indexes into Rows.
// Moves across device types are ignored. The new order is shown at once
// and persisted as one batch; when the batch fails the list is re-fetched.
func (p *BannersPage) Move(ctx context.Context, from, to int) (reorder.Result[adminapi.Banner], error) {
	res, err := reorder.Move(p.table.Rows(), from, to, bannerKeys)
	if err != nil {
		return res, err
	}
	if !res.Changed {
		return res, nil
	}

	res.Items = applyPositions(res.Items, res.Patches)
	p.table.SetOrder(res.Items)
	if len(res.Patches) == 0 {
		return res, nil
	}

	if err := p.api.UpdateBannerPositions(ctx, res.Patches); err != nil {
		p.bus.Error(ctx, adminapi.UserMessage(err, "Failed to update banner order"))
		if reloadErr := p.Load(ctx); reloadErr != nil {
			p.logger.Warn().Err(reloadErr).Msg("reload after failed reorder")
		}
		return res, err
	}
	p.bus.Success(ctx, "Banner order updated")
	return res, nil
}

// MoveWithin is Move with indexes into Device(device).
func (p *BannersPage) MoveWithin(ctx context.Context, device string, from, to int) (reorder.Result[adminapi.Banner], error) {
	rows := p.table.Rows()
	return p.Move(ctx, globalIndex(rows, device, from), globalIndex(rows, device, to))
}

func globalIndex(rows []adminapi.Banner, device string, local int) int {
	seen := 0
	for i, b := range rows {
		if b.DeviceType != device {
			continue
		}
		if seen == local {
			return i
		}
		seen++
	}
	return -1
}

func applyPositions(items []adminapi.Banner, patches []reorder.PositionPatch) []adminapi.Banner {
	positions := make(map[string]int, len(patches))
	for _, patch := range patches {
		positions[patch.ID] = patch.Position
	}
	out := make([]adminapi.Banner, len(items))
	for i, b := range items {
		if pos, ok := positions[bannerKeys.ID(b)]; ok {
			b.Position = pos
		}
		out[i] = b
	}
	return out
}
