// Package validate holds the client-side form rules checked before any
// backend call is made.
package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"jewelry-admin/internal/adminapi"
)

var (
	postalCodePattern   = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	phonePattern        = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	emailPattern        = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	discountCodePattern = regexp.MustCompile(`^[A-Z0-9_-]{3,20}$`)
	hundred             = decimal.NewFromInt(100)
)

// Errors maps a form field to its inline message.
type Errors map[string]string

// Add records msg for field unless the field already has a message.
func (e Errors) Add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

// Has reports whether field failed.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Err returns nil when there are no messages.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Fields returns the failed field names sorted.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Error joins the messages in field order.
func (e Errors) Error() string {
	fields := e.Fields()
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func required(errs Errors, field, value, label string) {
	if strings.TrimSpace(value) == "" {
		errs.Add(field, label+" is required")
	}
}

// Discount checks the discount form.
func Discount(d adminapi.Discount) Errors {
	errs := Errors{}
	required(errs, "title", d.Title, "Title")
	required(errs, "code", d.Code, "Code")
	if code := strings.TrimSpace(d.Code); code != "" && !discountCodePattern.MatchString(code) {
		errs.Add("code", "Code must be 3-20 uppercase letters, digits, '-' or '_'")
	}

	switch d.DiscountType {
	case "", adminapi.DiscountPercentage, adminapi.DiscountFixed:
	default:
		errs.Add("discount_type", "Discount type must be percentage or fixed")
	}

	if !d.DiscountValue.IsPositive() {
		errs.Add("discount_value", "Discount value must be greater than 0")
	} else if d.DiscountType != adminapi.DiscountFixed && d.DiscountValue.GreaterThan(hundred) {
		errs.Add("discount_value", "Percentage discount cannot exceed 100")
	}

	if d.MinOrderAmount.IsNegative() {
		errs.Add("min_order_amount", "Minimum order amount cannot be negative")
	}
	if d.UsageLimit < 0 {
		errs.Add("usage_limit", "Usage limit cannot be negative")
	}
	if d.StartsAt != nil && d.EndsAt != nil && !d.EndsAt.After(*d.StartsAt) {
		errs.Add("ends_at", "End date must be after start date")
	}
	return errs
}

// Product checks the product form.
func Product(p adminapi.Product) Errors {
	errs := Errors{}
	required(errs, "name", p.Name, "Name")
	required(errs, "sku", p.SKU, "SKU")
	required(errs, "category", p.Category, "Category")
	if !p.Price.IsPositive() {
		errs.Add("price", "Price must be greater than 0")
	}
	if p.Stock < 0 {
		errs.Add("stock", "Stock cannot be negative")
	}
	return errs
}

// Rate checks a rate update before it is saved.
func Rate(u adminapi.RateUpdate) Errors {
	errs := Errors{}
	if !u.RatePerGram.IsPositive() {
		errs.Add("rate_per_gram", "Rate per gram must be greater than 0")
	}
	if !u.RatePerTenGram.IsPositive() {
		errs.Add("rate_per_ten_gram", "Rate per 10 gram must be greater than 0")
	}
	if u.CurrentPrice.IsNegative() {
		errs.Add("current_price", "Current price cannot be negative")
	}
	if u.PredictedPrice.IsNegative() {
		errs.Add("predicted_price", "Predicted price cannot be negative")
	}
	return errs
}

// Address is a shipping address form.
type Address struct {
	Line1      string
	City       string
	State      string
	PostalCode string
}

// CheckAddress checks an address form; postal codes are six digits.
func CheckAddress(a Address) Errors {
	errs := Errors{}
	required(errs, "line1", a.Line1, "Address line")
	required(errs, "city", a.City, "City")
	required(errs, "state", a.State, "State")
	required(errs, "postal_code", a.PostalCode, "Postal code")
	if pc := strings.TrimSpace(a.PostalCode); pc != "" && !postalCodePattern.MatchString(pc) {
		errs.Add("postal_code", "Postal code must be 6 digits")
	}
	return errs
}

// User checks a customer account form. Phone is optional.
func User(u adminapi.User) Errors {
	errs := Errors{}
	required(errs, "name", u.Name, "Name")
	required(errs, "email", u.Email, "Email")
	if email := strings.TrimSpace(u.Email); email != "" && !emailPattern.MatchString(email) {
		errs.Add("email", "Email is invalid")
	}
	if phone := strings.TrimSpace(u.Phone); phone != "" && !phonePattern.MatchString(phone) {
		errs.Add("phone", "Phone must be a 10-digit mobile number")
	}
	return errs
}
