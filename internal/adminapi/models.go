package adminapi

import (
	"time"

	"github.com/shopspring/decimal"

	"jewelry-admin/internal/accessor"
)

// Envelope is the response wrapper every backend endpoint returns.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// MetalRate is a gold/silver rate row.
type MetalRate struct {
	ID             int64            `json:"id"`
	Metal          string           `json:"metal"`
	Purity         string           `json:"purity"`
	RatePerGram    decimal.Decimal  `json:"rate_per_gram"`
	RatePerTenGram decimal.Decimal  `json:"rate_per_ten_gram"`
	CurrentPrice   decimal.Decimal  `json:"current_price"`
	PredictedPrice decimal.Decimal  `json:"predicted_price"`
	ChangePercent  *decimal.Decimal `json:"change_percent,omitempty"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// RateUpdate is the body of PUT /rates/{id}.
type RateUpdate struct {
	RatePerGram    decimal.Decimal  `json:"rate_per_gram"`
	RatePerTenGram decimal.Decimal  `json:"rate_per_ten_gram"`
	CurrentPrice   decimal.Decimal  `json:"current_price"`
	PredictedPrice decimal.Decimal  `json:"predicted_price"`
	ChangePercent  *decimal.Decimal `json:"change_percent"`
}

// ProductImage is one entry of a product gallery.
type ProductImage struct {
	URL string `json:"url"`
}

// Product is an inventory item. Image data arrives under several names
// depending on the endpoint revision.
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Category  string          `json:"category"`
	Metal     string          `json:"metal"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	IsActive  bool            `json:"is_active"`
	ImageURL  string          `json:"image_url,omitempty"`
	Image     string          `json:"image,omitempty"`
	Images    []ProductImage  `json:"images,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

var productImage = accessor.Chain[Product](
	func(p Product) string { return p.ImageURL },
	func(p Product) string { return p.Image },
	accessor.Index(func(p Product) []ProductImage { return p.Images }, 0, func(i ProductImage) string { return i.URL }),
)

// PrimaryImage resolves image_url, then image, then images[0].url.
func (p Product) PrimaryImage() string {
	return productImage(p)
}

// StockValue is price times units in stock.
func (p Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Stock)))
}

// User is a customer account.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	FullName  string    `json:"full_name,omitempty"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName prefers full_name, then name, then the email address.
func (u User) DisplayName() string {
	return accessor.Or(u, "-",
		func(u User) string { return u.FullName },
		func(u User) string { return u.Name },
		func(u User) string { return u.Email },
	)
}

// Discount types.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Discount is a promotional code.
type Discount struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	Code           string          `json:"code"`
	DiscountType   string          `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount"`
	UsageLimit     int             `json:"usage_limit"`
	StartsAt       *time.Time      `json:"starts_at,omitempty"`
	EndsAt         *time.Time      `json:"ends_at,omitempty"`
	IsActive       bool            `json:"is_active"`
}

// Banner is a CMS banner ranked per device type.
type Banner struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	DeviceType string `json:"device_type"`
	Position   int    `json:"position"`
	ImageURL   string `json:"image_url"`
	IsActive   bool   `json:"is_active"`
}

// ListQuery carries optional server-side list parameters.
type ListQuery struct {
	Search   string
	Category string
	Limit    int
}
