package model

import "time"

// MovementType is the direction of a stock movement.
type MovementType string

const (
	MovementInbound  MovementType = "INBOUND"
	MovementOutbound MovementType = "OUTBOUND"
)

// MovementSource names the operation that produced a stock movement.
type MovementSource string

const (
	SourceNewProduct      MovementSource = "NEW PRODUCT ADDED"
	SourceStockAdjustment MovementSource = "STOCK ADJUSTMENT"
	SourceSale            MovementSource = "SALE"
	SourceLayaway         MovementSource = "LAYAWAY"
	SourceCancel          MovementSource = "CANCEL"
)

// Sold reports whether the source counts toward sold_qty.
func (s MovementSource) Sold() bool {
	return s == SourceSale || s == SourceLayaway
}

// StockMovement is an immutable audit record of one quantity change to a
// stock unit. Rows are never updated or deleted; replaying them in
// creation order from zero reproduces the current avail_qty exactly.
type StockMovement struct {
	ID         uint           `gorm:"primaryKey"`
	ExternalID string         `gorm:"uniqueIndex;size:100;not null"`
	StockExtID string         `gorm:"size:100;index;not null"`
	Type       MovementType   `gorm:"type:varchar(20);not null"`
	Source     MovementSource `gorm:"type:varchar(50);not null"`
	QtyBefore  int            `gorm:"not null"`
	QtyChange  int            `gorm:"not null"`
	QtyAfter   int            `gorm:"not null"`
	CreatedAt  time.Time
	CreatedBy  string `gorm:"size:100;not null"`
}

func (StockMovement) TableName() string { return "stock_movements" }
