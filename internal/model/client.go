package model

import (
	"time"

	"gorm.io/gorm"
)

// Client is a customer record. Consignors are clients flagged with
// IsConsignor; they supply goods sold on their behalf.
type Client struct {
	ID          uint    `gorm:"primaryKey"`
	ExternalID  string  `gorm:"uniqueIndex;size:100;not null"`
	FirstName   string  `gorm:"size:100;not null"`
	LastName    string  `gorm:"size:100;not null"`
	Email       *string `gorm:"size:100"`
	PhoneNumber *string `gorm:"size:50"`
	Address     *string `gorm:"type:text"`
	Birthdate   *time.Time
	IsConsignor bool `gorm:"not null;default:false"`
	CreatedAt   time.Time
	CreatedBy   string `gorm:"size:100;not null"`
	UpdatedAt   time.Time
	UpdatedBy   *string        `gorm:"size:100"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	DeletedBy   *string        `gorm:"size:100"`
}

func (Client) TableName() string { return "clients" }
