package model

import (
	"time"

	"gorm.io/gorm"
)

// Category classifies products. Lookup table: no invariants beyond name
// uniqueness among non-deleted rows.
type Category struct {
	ID          uint    `gorm:"primaryKey"`
	ExternalID  string  `gorm:"uniqueIndex;size:100;not null"`
	Name        string  `gorm:"size:100;not null"`
	Description *string `gorm:"type:text"`
	CreatedAt   time.Time
	CreatedBy   string `gorm:"size:100;not null"`
	UpdatedAt   time.Time
	UpdatedBy   *string        `gorm:"size:100"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	DeletedBy   *string        `gorm:"size:100"`
}

// Brand is the maker of a product.
type Brand struct {
	ID          uint    `gorm:"primaryKey"`
	ExternalID  string  `gorm:"uniqueIndex;size:100;not null"`
	Name        string  `gorm:"size:100;not null"`
	Description *string `gorm:"type:text"`
	CreatedAt   time.Time
	CreatedBy   string `gorm:"size:100;not null"`
	UpdatedAt   time.Time
	UpdatedBy   *string        `gorm:"size:100"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	DeletedBy   *string        `gorm:"size:100"`
}

// Authenticator is a third party that verified a product's authenticity.
type Authenticator struct {
	ID          uint    `gorm:"primaryKey"`
	ExternalID  string  `gorm:"uniqueIndex;size:100;not null"`
	Name        string  `gorm:"size:100;not null"`
	Description *string `gorm:"type:text"`
	CreatedAt   time.Time
	CreatedBy   string `gorm:"size:100;not null"`
	UpdatedAt   time.Time
	UpdatedBy   *string        `gorm:"size:100"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	DeletedBy   *string        `gorm:"size:100"`
}

func (Category) TableName() string      { return "product_categories" }
func (Brand) TableName() string         { return "product_brands" }
func (Authenticator) TableName() string { return "product_authenticators" }
