package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateDealerRequest creates a dealer. An empty group lands in the default group.
type CreateDealerRequest struct {
	Code                 string           `json:"code" binding:"required,max=50"`
	Name                 string           `json:"name" binding:"required,max=200"`
	DealerGroupID        uint             `json:"dealerGroupId"`
	DealerGroup          string           `json:"dealerGroup"`
	Phone                string           `json:"phone"`
	Email                string           `json:"email" binding:"omitempty,email"`
	Address              string           `json:"address"`
	OpeningBalance       decimal.Decimal  `json:"openingBalance"`
	OpeningBalanceType   string           `json:"openingBalanceType" binding:"omitempty,oneof=credit debit"`
	CreditLimit          decimal.Decimal  `json:"creditLimit"`
	CreditDays           int              `json:"creditDays" binding:"min=0"`
	DiscountPercentage   *decimal.Decimal `json:"discountPercentage"`
	CommissionPercentage *decimal.Decimal `json:"commissionPercentage"`
}

// UpdateDealerRequest edits a dealer. Nil fields are left untouched.
// Changing the opening balance shifts the current balance by the signed difference.
type UpdateDealerRequest struct {
	Name                 *string          `json:"name" binding:"omitempty,max=200"`
	DealerGroupID        *uint            `json:"dealerGroupId"`
	Phone                *string          `json:"phone"`
	Email                *string          `json:"email" binding:"omitempty,email"`
	Address              *string          `json:"address"`
	OpeningBalance       *decimal.Decimal `json:"openingBalance"`
	OpeningBalanceType   *string          `json:"openingBalanceType" binding:"omitempty,oneof=credit debit"`
	CreditLimit          *decimal.Decimal `json:"creditLimit"`
	CreditDays           *int             `json:"creditDays" binding:"omitempty,min=0"`
	DiscountPercentage   *decimal.Decimal `json:"discountPercentage"`
	CommissionPercentage *decimal.Decimal `json:"commissionPercentage"`
}

// ListDealersQuery filters the dealer listing
type ListDealersQuery struct {
	Search   string `form:"search"`
	GroupID  uint   `form:"groupId"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// DealerTransactionRequest appends one ledger entry
type DealerTransactionRequest struct {
	Type          string          `json:"type" binding:"required,oneof=credit debit"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description" binding:"max=500"`
	Date          *time.Time      `json:"date"`
	ReferenceType string          `json:"referenceType" binding:"omitempty,oneof=order payment adjustment"`
	ReferenceID   string          `json:"referenceId" binding:"max=64"`
}

// StatementQuery bounds a statement. Dates are YYYY-MM-DD; To is inclusive.
type StatementQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}
