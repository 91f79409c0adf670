package database

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceType is the sign carrier for opening balances and ledger entries.
// A debit increases what the dealer owes, a credit reduces it.
type BalanceType string

const (
	BalanceCredit BalanceType = "credit"
	BalanceDebit  BalanceType = "debit"
)

// Valid reports whether t is credit or debit
func (t BalanceType) Valid() bool {
	return t == BalanceCredit || t == BalanceDebit
}

// Subscription plans
const (
	PlanTrial      = "trial"
	PlanBasic      = "basic"
	PlanPremium    = "premium"
	PlanEnterprise = "enterprise"
)

// Subscription statuses. Only SubscriptionActive grants access.
const (
	SubscriptionActive    = "active"
	SubscriptionInactive  = "inactive"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"
)

// Features maps a feature name to whether the plan grants it
type Features map[string]bool

// Unlimited is the limit value that is never enforced. Zero is a real limit.
const Unlimited = -1

// Subscription is embedded in Company
type Subscription struct {
	Plan        string     `json:"plan" gorm:"type:varchar(20);not null;default:'trial'"`
	Status      string     `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	MaxUsers    int        `json:"maxUsers"`
	MaxProducts int        `json:"maxProducts"`
	MaxOrders   int        `json:"maxOrders"`
	MaxDealers  int        `json:"maxDealers"`
	Features    Features   `json:"features" gorm:"type:text;serializer:json"`
}

// Company is a tenant. It is never hard-deleted.
type Company struct {
	ID               uint         `json:"id" gorm:"primaryKey;autoIncrement"`
	TenantID         string       `json:"tenantId" gorm:"type:varchar(32);uniqueIndex;not null"`
	Name             string       `json:"name" gorm:"type:varchar(200);not null"`
	Slug             string       `json:"slug" gorm:"type:varchar(200);uniqueIndex;not null"`
	Email            string       `json:"email" gorm:"type:varchar(200)"`
	Phone            string       `json:"phone" gorm:"type:varchar(30)"`
	Address          string       `json:"address" gorm:"type:text"`
	Subscription     Subscription `json:"subscription" gorm:"embedded;embeddedPrefix:sub_"`
	IsActive         bool         `json:"isActive" gorm:"not null;default:true"`
	IsSuspended      bool         `json:"isSuspended" gorm:"not null;default:false"`
	SuspensionReason string       `json:"suspensionReason,omitempty" gorm:"type:varchar(500)"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// User is an actor. super_admin users carry no tenant.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	TenantID  string    `json:"tenantId" gorm:"type:varchar(32);index"`
	Username  string    `json:"username" gorm:"type:varchar(50);uniqueIndex"`
	Password  string    `json:"-" gorm:"not null"`
	Name      string    `json:"name" gorm:"type:varchar(100)"`
	Role      string    `json:"role" gorm:"type:varchar(20);not null;default:'staff'"`
	IsActive  bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DealerGroup classifies dealers inside one tenant
type DealerGroup struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	TenantID    string    `json:"tenantId" gorm:"type:varchar(32);not null;uniqueIndex:idx_dealer_group_tenant_name,priority:1"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_dealer_group_tenant_name,priority:2"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FinancialInfo holds the dealer's money fields. CurrentBalance is only ever
// changed together with a ledger row or an opening-balance edit.
type FinancialInfo struct {
	OpeningBalance       decimal.Decimal `json:"openingBalance" gorm:"type:decimal(18,2);not null;default:0"`
	OpeningBalanceType   BalanceType     `json:"openingBalanceType" gorm:"type:varchar(10);not null;default:'debit'"`
	CurrentBalance       decimal.Decimal `json:"currentBalance" gorm:"type:decimal(18,2);not null;default:0"`
	CreditLimit          decimal.Decimal `json:"creditLimit" gorm:"type:decimal(18,2);not null;default:0"`
	CreditDays           int             `json:"creditDays"`
	DiscountPercentage   decimal.Decimal `json:"discountPercentage" gorm:"type:decimal(5,2);not null;default:0"`
	CommissionPercentage decimal.Decimal `json:"commissionPercentage" gorm:"type:decimal(5,2);not null;default:0"`
}

// Dealer belongs to exactly one tenant and one dealer group
type Dealer struct {
	ID            uint          `json:"id" gorm:"primaryKey;autoIncrement"`
	TenantID      string        `json:"tenantId" gorm:"type:varchar(32);not null;index;uniqueIndex:idx_dealer_tenant_code,priority:1"`
	Code          string        `json:"code" gorm:"type:varchar(50);not null;uniqueIndex:idx_dealer_tenant_code,priority:2"`
	Name          string        `json:"name" gorm:"type:varchar(200);not null"`
	DealerGroupID uint          `json:"dealerGroupId" gorm:"not null;index"`
	Phone         string        `json:"phone" gorm:"type:varchar(30)"`
	Email         string        `json:"email" gorm:"type:varchar(200)"`
	Address       string        `json:"address" gorm:"type:text"`
	FinancialInfo FinancialInfo `json:"financialInfo" gorm:"embedded"`
	IsActive      bool          `json:"isActive" gorm:"not null;default:true"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Reference points at the entity that caused a ledger entry
type Reference struct {
	Type string `json:"type" gorm:"type:varchar(30)"`
	ID   string `json:"id" gorm:"type:varchar(64)"`
}

// Reference types
const (
	RefOrder      = "order"
	RefPayment    = "payment"
	RefAdjustment = "adjustment"
)

// DealerTransaction is one append-only row of a dealer's ledger
type DealerTransaction struct {
	ID           uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	TenantID     string          `json:"tenantId" gorm:"type:varchar(32);not null;index:idx_dealer_tx_tenant_dealer_date,priority:1"`
	DealerID     uint            `json:"dealerId" gorm:"not null;index:idx_dealer_tx_tenant_dealer_date,priority:2"`
	Date         time.Time       `json:"date" gorm:"not null;index:idx_dealer_tx_tenant_dealer_date,priority:3"`
	Type         BalanceType     `json:"type" gorm:"type:varchar(10);not null"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(18,2);not null"`
	Description  string          `json:"description" gorm:"type:varchar(500)"`
	Reference    Reference       `json:"reference" gorm:"embedded;embeddedPrefix:reference_"`
	BalanceAfter decimal.Decimal `json:"balanceAfter" gorm:"type:decimal(18,2);not null;default:0"`
	CreatedBy    uint            `json:"createdBy"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Order statuses
const (
	OrderPending   = "pending"
	OrderPartial   = "partial"
	OrderPaid      = "paid"
	OrderCancelled = "cancelled"
)

// Order is a dealer invoice. Creating one debits the dealer ledger.
type Order struct {
	ID          uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	TenantID    string          `json:"tenantId" gorm:"type:varchar(32);not null;index;uniqueIndex:idx_order_tenant_number,priority:1"`
	OrderNumber string          `json:"orderNumber" gorm:"type:varchar(50);not null;uniqueIndex:idx_order_tenant_number,priority:2"`
	DealerID    uint            `json:"dealerId" gorm:"not null;index"`
	OrderDate   time.Time       `json:"orderDate" gorm:"not null;index"`
	Status      string          `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	TotalAmount decimal.Decimal `json:"totalAmount" gorm:"type:decimal(18,2);not null"`
	PaidAmount  decimal.Decimal `json:"paidAmount" gorm:"type:decimal(18,2);not null;default:0"`
	Notes       string          `json:"notes" gorm:"type:text"`
	CreatedBy   uint            `json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Outstanding is the unpaid part of a non-cancelled order
func (o *Order) Outstanding() decimal.Decimal {
	if o.Status == OrderCancelled {
		return decimal.Zero
	}
	out := o.TotalAmount.Sub(o.PaidAmount)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// Product is a catalog item. Pricing fields are derived before persistence.
type Product struct {
	ID                 uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	TenantID           string          `json:"tenantId" gorm:"type:varchar(32);not null;index;uniqueIndex:idx_product_tenant_code,priority:1"`
	Code               string          `json:"code" gorm:"type:varchar(50);not null;uniqueIndex:idx_product_tenant_code,priority:2"`
	Name               string          `json:"name" gorm:"type:varchar(200);not null"`
	Unit               string          `json:"unit" gorm:"type:varchar(20)"`
	MRP                decimal.Decimal `json:"mrp" gorm:"type:decimal(18,2);not null"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage" gorm:"type:decimal(5,2);not null;default:0"`
	DiscountAmount     decimal.Decimal `json:"discountAmount" gorm:"type:decimal(18,2);not null;default:0"`
	SellingPrice       decimal.Decimal `json:"sellingPrice" gorm:"type:decimal(18,2);not null"`
	IsActive           bool            `json:"isActive" gorm:"not null;default:true"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// Models lists every table managed by Migrate
func Models() []any {
	return []any{&Company{}, &User{}, &DealerGroup{}, &Dealer{}, &DealerTransaction{}, &Order{}, &Product{}}
}
