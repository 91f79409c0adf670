package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest invoices a dealer
type CreateOrderRequest struct {
	DealerID    uint            `json:"dealerId" binding:"required"`
	OrderNumber string          `json:"orderNumber" binding:"max=50"`
	OrderDate   *time.Time      `json:"orderDate"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Notes       string          `json:"notes"`
}

// PaymentRequest records money received against an order
type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Date   *time.Time      `json:"date"`
}

// OrderResponse carries the order and the dealer balance it left behind
type OrderResponse struct {
	Order         any             `json:"order"`
	DealerBalance decimal.Decimal `json:"dealerBalance"`
}
