package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleType distinguishes regular sales from layaway (installment) sales.
type SaleType string

const (
	SaleTypeRegular SaleType = "R"
	SaleTypeLayaway SaleType = "L"
)

func (t SaleType) Valid() bool {
	return t == SaleTypeRegular || t == SaleTypeLayaway
}

func (t SaleType) Description() string {
	if t == SaleTypeLayaway {
		return "Layaway"
	}
	return "Regular"
}

// SaleStatus is the lifecycle state of a sale. Transitions are monotone
// toward a terminal state: Deposit → Fully paid, Deposit → Cancelled.
// A regular sale is created directly in Fully paid.
type SaleStatus string

const (
	SaleStatusFullyPaid SaleStatus = "Fully paid"
	SaleStatusDeposit   SaleStatus = "Deposit"
	SaleStatusNotPaid   SaleStatus = "Not paid"
	SaleStatusCancelled SaleStatus = "Cancelled"
)

// Terminal reports whether no further payment/cancel transition is allowed
// from this status (cancel is still legal from Fully paid).
func (s SaleStatus) Terminal() bool {
	return s == SaleStatusFullyPaid || s == SaleStatusCancelled
}

// LayawayStatus mirrors the parent sale's payment state on the layaway plan.
type LayawayStatus string

const (
	LayawayStatusUnpaid LayawayStatus = "Unpaid"
	LayawayStatusPaid   LayawayStatus = "Paid"
)

// Sale is one sales transaction. Items, payment logs and the optional
// layaway plan share its lifecycle and are linked by ExternalID.
type Sale struct {
	ID               uint            `gorm:"primaryKey"`
	ExternalID       string          `gorm:"uniqueIndex;size:100;not null"`
	ClientExtID      string          `gorm:"size:100;index;not null"`
	Type             SaleType        `gorm:"type:varchar(1);not null"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	IsDiscounted     bool            `gorm:"not null;default:false"`
	DiscountPercent  *decimal.Decimal `gorm:"type:decimal(5,2)"`
	DiscountFlatRate *decimal.Decimal `gorm:"type:decimal(12,2)"`
	DatePurchased    time.Time        `gorm:"not null"`
	Status           SaleStatus       `gorm:"type:varchar(20);not null"`
	CreatedAt        time.Time
	CreatedBy        string `gorm:"size:100;not null"`
	CancelledAt      *time.Time
	CancelledBy      *string        `gorm:"size:100"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
	DeletedBy        *string        `gorm:"size:100"`
}

// SaleItem is one product line of a sale. Immutable once created: the
// unit price is snapshotted at sale time so later catalog price changes
// never alter historical totals.
type SaleItem struct {
	ID         uint            `gorm:"primaryKey"`
	ExternalID string          `gorm:"uniqueIndex;size:100;not null"`
	SaleExtID  string          `gorm:"size:100;index;not null"`
	StockExtID string          `gorm:"size:100;index;not null"`
	Qty        int             `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt  time.Time
	CreatedBy  string `gorm:"size:100;not null"`
}

// PaymentLog is an immutable entry in a sale's payment ledger.
// Rows are never updated or deleted; the sum of a sale's payments must
// never exceed its total amount.
type PaymentLog struct {
	ID             uint            `gorm:"primaryKey"`
	ExternalID     string          `gorm:"uniqueIndex;size:100;not null"`
	SaleExtID      string          `gorm:"size:100;index;not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentDate    time.Time       `gorm:"not null"`
	PaymentMethod  string          `gorm:"size:100;not null"`
	IsDeposit      bool            `gorm:"not null"`
	IsFinalPayment bool            `gorm:"not null"`
	CreatedAt      time.Time
	CreatedBy      string `gorm:"size:100;not null"`
}

// SaleLayaway is the installment plan attached one-to-one to a layaway
// sale. AmountDue is always recomputed from the payment ledger, never
// drifted; CurrentDueDate only moves forward via extensions.
type SaleLayaway struct {
	ID             uint            `gorm:"primaryKey"`
	SaleExtID      string          `gorm:"uniqueIndex;size:100;not null"`
	NoOfMonths     int             `gorm:"not null"`
	AmountDue      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentDate    *time.Time
	CurrentDueDate time.Time     `gorm:"not null"`
	OrigDueDate    time.Time     `gorm:"not null"`
	IsExtended     bool          `gorm:"not null;default:false"`
	Status         LayawayStatus `gorm:"type:varchar(20);not null"`
	CreatedAt      time.Time
	CreatedBy      string `gorm:"size:100;not null"`
	UpdatedAt      *time.Time
	UpdatedBy      *string `gorm:"size:100"`
}

func (Sale) TableName() string        { return "sales" }
func (SaleItem) TableName() string    { return "sales_items" }
func (PaymentLog) TableName() string  { return "payment_logs" }
func (SaleLayaway) TableName() string { return "sale_layaways" }
