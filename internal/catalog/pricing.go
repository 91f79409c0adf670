// Package catalog holds product pricing rules.
package catalog

import (
	"errors"

	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidMRP      = errors.New("mrp must be positive")
	ErrInvalidDiscount = errors.New("discount must be between 0 and mrp")
)

var hundred = decimal.NewFromInt(100)

// Pricing is the derived price breakdown of a product
type Pricing struct {
	MRP                decimal.Decimal
	DiscountPercentage decimal.Decimal
	DiscountAmount     decimal.Decimal
	SellingPrice       decimal.Decimal
}

// ComputePricing derives the discount amount and selling price from mrp.
// A positive percentage wins over a flat amount; the flat amount is then
// reported back as its percentage of mrp.
func ComputePricing(mrp, percentage, amount decimal.Decimal) (Pricing, error) {
	if !mrp.IsPositive() {
		return Pricing{}, ErrInvalidMRP
	}
	if percentage.IsNegative() || percentage.GreaterThan(hundred) || amount.IsNegative() {
		return Pricing{}, ErrInvalidDiscount
	}

	p := Pricing{MRP: mrp.Round(2)}
	switch {
	case percentage.IsPositive():
		p.DiscountPercentage = percentage.Round(2)
		p.DiscountAmount = mrp.Mul(percentage).Div(hundred).Round(2)
	case amount.IsPositive():
		if amount.GreaterThan(mrp) {
			return Pricing{}, ErrInvalidDiscount
		}
		p.DiscountAmount = amount.Round(2)
		p.DiscountPercentage = amount.Div(mrp).Mul(hundred).Round(2)
	}
	p.SellingPrice = p.MRP.Sub(p.DiscountAmount)
	return p, nil
}

// Apply copies the breakdown onto product
func (p Pricing) Apply(product *database.Product) {
	product.MRP = p.MRP
	product.DiscountPercentage = p.DiscountPercentage
	product.DiscountAmount = p.DiscountAmount
	product.SellingPrice = p.SellingPrice
}
