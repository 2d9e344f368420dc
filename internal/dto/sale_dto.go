package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// SaleFilter is bound from the query string of GET /v1/sales.
// Mode: A = all, R = regular, L = layaway, CN = consigned, C = cancelled,
// OD = overdue layaways, FP = fully paid, CT = one client's transactions.
type SaleFilter struct {
	Mode        string `form:"mode,default=A"    validate:"omitempty,oneof=A R L CN C OD FP CT"`
	Search      string `form:"search"`
	ClientExtID string `form:"client_ext_id"`
	DateFrom    string `form:"date_from"` // YYYY-MM-DD
	DateTo      string `form:"date_to"`   // YYYY-MM-DD
	SortBy      string `form:"sort_by,default=date_purchased"  validate:"omitempty,oneof=date_purchased total_amount status created_at"`
	OrderBy     string `form:"order_by,default=desc" validate:"omitempty,oneof=asc desc"`
	Page        int    `form:"page,default=1"    validate:"min=1"`
	Limit       int    `form:"limit,default=50"  validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	StockExtID string `json:"stock_ext_id" validate:"required"`
	Qty        int    `json:"qty"          validate:"required,min=1"`
}

type PaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"         validate:"required"`
	PaymentDate   time.Time       `json:"payment_date"   validate:"required"`
	PaymentMethod string          `json:"payment_method" validate:"required"`
}

type LayawayRequest struct {
	NoOfMonths int       `json:"no_of_months" validate:"required,min=1"`
	DueDate    time.Time `json:"due_date"     validate:"required"`
}

type CreateSaleRequest struct {
	ClientExtID      string            `json:"client_ext_id" validate:"required"`
	Type             string            `json:"type"          validate:"required,oneof=R L"`
	Items            []SaleItemRequest `json:"items"         validate:"required,min=1,dive"`
	Payment          PaymentRequest    `json:"payment"       validate:"required"`
	Layaway          *LayawayRequest   `json:"layaway"       validate:"omitempty"`
	IsDiscounted     bool              `json:"is_discounted"`
	DiscountPercent  *decimal.Decimal  `json:"discount_percent"`
	DiscountFlatRate *decimal.Decimal  `json:"discount_flat_rate"`
	DatePurchased    time.Time         `json:"date_purchased" validate:"required"`
	CreatedBy        string            `json:"created_by"     validate:"required"`
}

type RecordPaymentRequest struct {
	SaleExtID string         `json:"sale_ext_id" validate:"required"`
	Payment   PaymentRequest `json:"payment"     validate:"required"`
	CreatedBy string         `json:"created_by"  validate:"required"`
}

type CancelSaleRequest struct {
	SaleExtID   string `json:"sale_ext_id"  validate:"required"`
	CancelledBy string `json:"cancelled_by" validate:"required"`
}

type ExtendDueDateRequest struct {
	DueDate   time.Time `json:"due_date"   validate:"required"`
	UpdatedBy string    `json:"updated_by" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleTypeResponse struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type CustomerResponse struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
}

type SaleLineResponse struct {
	StockExtID  string          `json:"stock_ext_id"`
	Name        string          `json:"name"`
	Code        string          `json:"code"`
	Inclusions  []string        `json:"inclusions"`
	IsConsigned bool            `json:"is_consigned"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Qty         int             `json:"qty"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type PaymentLogResponse struct {
	ExternalID    string          `json:"external_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	PaymentMethod string          `json:"payment_method"`
}

type LayawayPlanResponse struct {
	IsOverdue      bool            `json:"is_overdue"`
	NoOfMonths     int             `json:"no_of_months"`
	AmountDue      decimal.Decimal `json:"amount_due"`
	CurrentDueDate time.Time       `json:"current_due_date"`
	OrigDueDate    time.Time       `json:"orig_due_date"`
	IsExtended     bool            `json:"is_extended"`
	Status         string          `json:"status"`
}

type SaleResponse struct {
	SaleExtID          string               `json:"sale_external_id"`
	DatePurchased      time.Time            `json:"date_purchased"`
	Customer           CustomerResponse     `json:"customer"`
	Type               SaleTypeResponse     `json:"type"`
	LayawayPlan        *LayawayPlanResponse `json:"layaway_plan,omitempty"`
	Items              []SaleLineResponse   `json:"items"`
	TotalAmount        decimal.Decimal      `json:"total_amount"`
	OutstandingBalance decimal.Decimal      `json:"outstanding_balance"`
	IsDiscounted       bool                 `json:"is_discounted"`
	DiscountPercent    *decimal.Decimal     `json:"discount_percent"`
	DiscountFlatRate   *decimal.Decimal     `json:"discount_flat_rate"`
	Status             string               `json:"status"`
	PaymentHistory     []PaymentLogResponse `json:"payment_history"`
	CreatedAt          time.Time            `json:"created_at"`
	CreatedBy          string               `json:"created_by"`
	CancelledAt        *time.Time           `json:"cancelled_at"`
	CancelledBy        *string              `json:"cancelled_by"`
}

type SaleListResponse struct {
	Data []SaleResponse `json:"data"`
	Meta PageMeta       `json:"meta"`
}
