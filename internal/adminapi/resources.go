package adminapi

import (
	"context"
	"fmt"
	"net/http"

	"jewelry-admin/internal/reorder"
)

// RateAPI reads and updates metal rates.
type RateAPI interface {
	ListRates(ctx context.Context) ([]MetalRate, error)
	UpdateRate(ctx context.Context, id int64, update RateUpdate) (MetalRate, error)
}

// ProductAPI lists inventory.
type ProductAPI interface {
	ListProducts(ctx context.Context, q ListQuery) ([]Product, error)
}

// UserAPI lists customer accounts.
type UserAPI interface {
	ListUsers(ctx context.Context, q ListQuery) ([]User, error)
}

// DiscountAPI manages discount codes.
type DiscountAPI interface {
	ListDiscounts(ctx context.Context) ([]Discount, error)
	CreateDiscount(ctx context.Context, d Discount) (Discount, error)
	DeleteDiscount(ctx context.Context, id int64) error
}

// BannerAPI lists banners and persists their ranking.
type BannerAPI interface {
	ListBanners(ctx context.Context) ([]Banner, error)
	UpdateBannerPositions(ctx context.Context, patches []reorder.PositionPatch) error
}

// ListRates fetches every metal rate.
func (c *Client) ListRates(ctx context.Context) ([]MetalRate, error) {
	var rates []MetalRate
	if err := c.do(ctx, http.MethodGet, "/rates", nil, nil, &rates); err != nil {
		return nil, err
	}
	return rates, nil
}

// UpdateRate saves one rate row and returns the stored version.
func (c *Client) UpdateRate(ctx context.Context, id int64, update RateUpdate) (MetalRate, error) {
	var rate MetalRate
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/rates/%d", id), nil, update, &rate); err != nil {
		return MetalRate{}, err
	}
	return rate, nil
}

// ListProducts fetches products, optionally filtered server-side.
func (c *Client) ListProducts(ctx context.Context, q ListQuery) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, http.MethodGet, "/products", listValues(q), nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListUsers fetches customer accounts.
func (c *Client) ListUsers(ctx context.Context, q ListQuery) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/users", listValues(q), nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListDiscounts fetches every discount code.
func (c *Client) ListDiscounts(ctx context.Context) ([]Discount, error) {
	var discounts []Discount
	if err := c.do(ctx, http.MethodGet, "/discounts", nil, nil, &discounts); err != nil {
		return nil, err
	}
	return discounts, nil
}

// CreateDiscount creates a discount code.
func (c *Client) CreateDiscount(ctx context.Context, d Discount) (Discount, error) {
	var created Discount
	if err := c.do(ctx, http.MethodPost, "/discounts", nil, d, &created); err != nil {
		return Discount{}, err
	}
	return created, nil
}

// DeleteDiscount removes a discount code.
func (c *Client) DeleteDiscount(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/discounts/%d", id), nil, nil, nil)
}

// ListBanners fetches banners of every device type.
func (c *Client) ListBanners(ctx context.Context) ([]Banner, error) {
	var banners []Banner
	if err := c.do(ctx, http.MethodGet, "/banners", nil, nil, &banners); err != nil {
		return nil, err
	}
	return banners, nil
}

// UpdateBannerPositions persists a batch of position changes in one call.
func (c *Client) UpdateBannerPositions(ctx context.Context, patches []reorder.PositionPatch) error {
	body := struct {
		Positions []reorder.PositionPatch `json:"positions"`
	}{Positions: patches}
	return c.do(ctx, http.MethodPut, "/banners/positions", nil, body, nil)
}

var (
	_ RateAPI     = (*Client)(nil)
	_ ProductAPI  = (*Client)(nil)
	_ UserAPI     = (*Client)(nil)
	_ DiscountAPI = (*Client)(nil)
	_ BannerAPI   = (*Client)(nil)
)
