package dto

import "github.com/shopspring/decimal"

// CreateProductRequest adds a catalog item. Selling price and discount amount are
// derived from MRP and the discount fields.
type CreateProductRequest struct {
	Code               string          `json:"code" binding:"required,max=50"`
	Name               string          `json:"name" binding:"required,max=200"`
	Unit               string          `json:"unit" binding:"max=20"`
	MRP                decimal.Decimal `json:"mrp"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	DiscountAmount     decimal.Decimal `json:"discountAmount"`
}

// ListProductsQuery pages the product listing
type ListProductsQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}
