package model

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product holds the descriptive catalog metadata for one listing. The
// sellable quantity lives on the Stock row referencing this product.
type Product struct {
	ID                    uint    `gorm:"primaryKey"`
	ExternalID            string  `gorm:"uniqueIndex;size:100;not null"`
	CategoryExtID         string  `gorm:"size:100;index;not null"`
	BrandExtID            string  `gorm:"size:100;index;not null"`
	AuthExtID             *string `gorm:"size:100"`
	Name                  string  `gorm:"size:100;index;not null"`
	Material              *string `gorm:"size:100"`
	Hardware              *string `gorm:"size:100"`
	Code                  *string `gorm:"size:100"`
	Measurement           *string `gorm:"size:100"`
	Model                 *string `gorm:"size:100"`
	Inclusions            pq.StringArray `gorm:"type:text[]"`
	ConditionExtID        string         `gorm:"size:100;not null"`
	Cost                  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Price                 decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	IsConsigned           bool            `gorm:"not null;default:false"`
	ConsignorExtID        *string         `gorm:"size:100"`
	ConsignorSellingPrice *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CreatedAt             time.Time
	CreatedBy             string `gorm:"size:100;not null"`
	UpdatedAt             time.Time
	UpdatedBy             *string        `gorm:"size:100"`
	DeletedAt             gorm.DeletedAt `gorm:"index"`
	DeletedBy             *string        `gorm:"size:100"`
}

// ProductCondition grades the physical state of a product.
type ProductCondition struct {
	ID           uint    `gorm:"primaryKey"`
	ExternalID   string  `gorm:"uniqueIndex;size:100;not null"`
	ProductExtID string  `gorm:"size:100;index;not null"`
	Interior     *string `gorm:"type:text"`
	Exterior     *string `gorm:"type:text"`
	Overall      *string `gorm:"type:text"`
	Description  *string `gorm:"type:text"`
	CreatedAt    time.Time
	CreatedBy    string `gorm:"size:100;not null"`
	UpdatedAt    time.Time
	UpdatedBy    *string        `gorm:"size:100"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
	DeletedBy    *string        `gorm:"size:100"`
}

func (Product) TableName() string          { return "products" }
func (ProductCondition) TableName() string { return "product_conditions" }
