package dto

import "time"

// RegisterCompanyRequest creates a company together with its first admin user
type RegisterCompanyRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`

	AdminUsername string `json:"adminUsername" binding:"required,min=3,max=50"`
	AdminPassword string `json:"adminPassword" binding:"required,min=8"`
	AdminName     string `json:"adminName"`
}

// RegisterCompanyResponse is returned after registration
type RegisterCompanyResponse struct {
	TenantID string    `json:"tenantId"`
	Slug     string    `json:"slug"`
	Admin    *UserInfo `json:"admin"`
}

// UpdateSubscriptionRequest changes a company's plan. Nil fields are left untouched.
// Picking a plan resets limits and features to the plan defaults before the
// explicit overrides below apply.
type UpdateSubscriptionRequest struct {
	Plan      *string    `json:"plan"`
	Status    *string    `json:"status" binding:"omitempty,oneof=active inactive expired cancelled"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	// ClearEndDate makes the subscription open-ended. It cannot be combined
	// with EndDate.
	ClearEndDate bool     `json:"clearEndDate"`
	MaxUsers     *int     `json:"maxUsers" binding:"omitempty,min=-1"`
	MaxProducts  *int     `json:"maxProducts" binding:"omitempty,min=-1"`
	MaxOrders    *int     `json:"maxOrders" binding:"omitempty,min=-1"`
	MaxDealers   *int     `json:"maxDealers" binding:"omitempty,min=-1"`
	Features     []string `json:"features"`
}

// SuspensionRequest suspends or reinstates a company
type SuspensionRequest struct {
	Suspended *bool  `json:"suspended" binding:"required"`
	Reason    string `json:"reason" binding:"max=500"`
}

// StatusRequest activates or deactivates a company
type StatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// ListCompaniesQuery filters the admin company listing
type ListCompaniesQuery struct {
	Plan      string `form:"plan"`
	Status    string `form:"status"`
	Suspended *bool  `form:"suspended"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}

// UsageItem is the current consumption of one limited resource
type UsageItem struct {
	Used      int64 `json:"used"`
	Limit     int   `json:"limit"`
	Unlimited bool  `json:"unlimited"`
}

// UsageResponse reports usage against the plan limits
type UsageResponse struct {
	TenantID      string               `json:"tenantId"`
	Plan          string               `json:"plan"`
	Status        string               `json:"status"`
	DaysRemaining int                  `json:"daysRemaining"`
	Usage         map[string]UsageItem `json:"usage"`
}
