package model

import (
	"time"

	"gorm.io/gorm"
)

// Stock tracks the sellable quantity of one product listing, independent
// of the product's descriptive metadata. AvailQty never goes negative;
// every change to it has exactly one corresponding StockMovement.
type Stock struct {
	ID            uint   `gorm:"primaryKey"`
	ExternalID    string `gorm:"uniqueIndex;size:100;not null"`
	ProductExtID  string `gorm:"size:100;index;not null"`
	IsConsigned   bool   `gorm:"not null;default:false"`
	ConsignedDate *time.Time
	MinQty        int `gorm:"not null;default:0"`
	AvailQty      int `gorm:"not null;default:0"`
	SoldQty       int `gorm:"not null;default:0"`
	CreatedAt     time.Time
	CreatedBy     string `gorm:"size:100;not null"`
	UpdatedAt     time.Time
	UpdatedBy     *string        `gorm:"size:100"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
	DeletedBy     *string        `gorm:"size:100"`
}

func (Stock) TableName() string { return "stocks" }
