package validate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"jewelry-admin/internal/adminapi"
)

func TestDiscount(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)

	tests := []struct {
		name    string
		in      adminapi.Discount
		field   string
		message string
	}{
		{
			name:    "missing title",
			in:      adminapi.Discount{Title: "", Code: "SAVE10", DiscountValue: decimal.NewFromInt(10)},
			field:   "title",
			message: "Title is required",
		},
		{
			name:    "lowercase code",
			in:      adminapi.Discount{Title: "Summer", Code: "save10", DiscountValue: decimal.NewFromInt(10)},
			field:   "code",
			message: "Code must be 3-20 uppercase letters, digits, '-' or '_'",
		},
		{
			name:    "zero value",
			in:      adminapi.Discount{Title: "Summer", Code: "SAVE10"},
			field:   "discount_value",
			message: "Discount value must be greater than 0",
		},
		{
			name:    "percentage above 100",
			in:      adminapi.Discount{Title: "Summer", Code: "SAVE10", DiscountType: adminapi.DiscountPercentage, DiscountValue: decimal.NewFromInt(120)},
			field:   "discount_value",
			message: "Percentage discount cannot exceed 100",
		},
		{
			name:    "end before start",
			in:      adminapi.Discount{Title: "Summer", Code: "SAVE10", DiscountValue: decimal.NewFromInt(5), StartsAt: &start, EndsAt: &before},
			field:   "ends_at",
			message: "End date must be after start date",
		},
		{
			name:    "unknown type",
			in:      adminapi.Discount{Title: "Summer", Code: "SAVE10", DiscountType: "bogo", DiscountValue: decimal.NewFromInt(5)},
			field:   "discount_type",
			message: "Discount type must be percentage or fixed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Discount(tt.in)
			assert.Error(t, errs.Err())
			assert.Equal(t, tt.message, errs[tt.field])
		})
	}
}

func TestDiscountValid(t *testing.T) {
	fixed := adminapi.Discount{Title: "Festive", Code: "DIWALI-500", DiscountType: adminapi.DiscountFixed, DiscountValue: decimal.NewFromInt(500)}
	assert.NoError(t, Discount(fixed).Err())
}

func TestAddress(t *testing.T) {
	errs := CheckAddress(Address{Line1: "12 MG Road", City: "Pune", State: "MH", PostalCode: "41100"})
	assert.Equal(t, "Postal code must be 6 digits", errs["postal_code"])

	assert.NoError(t, CheckAddress(Address{Line1: "12 MG Road", City: "Pune", State: "MH", PostalCode: "411001"}).Err())

	empty := CheckAddress(Address{})
	assert.Equal(t, "Postal code is required", empty["postal_code"])
	assert.Len(t, empty, 4)
}

func TestProductAndRate(t *testing.T) {
	errs := Product(adminapi.Product{Name: "Ring", SKU: "R1", Category: "rings", Stock: -1})
	assert.True(t, errs.Has("price"))
	assert.True(t, errs.Has("stock"))

	rate := Rate(adminapi.RateUpdate{RatePerGram: decimal.NewFromInt(6245), PredictedPrice: decimal.NewFromInt(-1)})
	assert.True(t, rate.Has("rate_per_ten_gram"))
	assert.True(t, rate.Has("predicted_price"))
	assert.False(t, rate.Has("rate_per_gram"))
}

func TestUser(t *testing.T) {
	errs := User(adminapi.User{Name: "Asha", Email: "asha@", Phone: "12345"})
	assert.Equal(t, "Email is invalid", errs["email"])
	assert.Equal(t, "Phone must be a 10-digit mobile number", errs["phone"])

	assert.NoError(t, User(adminapi.User{Name: "Asha", Email: "asha@example.in", Phone: "9876543210"}).Err())
}

func TestErrorsMessage(t *testing.T) {
	errs := Errors{}
	errs.Add("title", "Title is required")
	errs.Add("title", "ignored")
	errs.Add("code", "Code is required")
	assert.Equal(t, "validation failed: code: Code is required; title: Title is required", errs.Error())
	assert.Equal(t, []string{"code", "title"}, errs.Fields())
	assert.Nil(t, Errors{}.Err())
}
