package model

import (
	"time"

	"gorm.io/gorm"
)

// User stores system users with role-based access.
// Role: "staff" | "manager" | "admin"
type User struct {
	ID           uint   `gorm:"primaryKey"`
	ExternalID   string `gorm:"uniqueIndex;size:100;not null"`
	Email        string `gorm:"uniqueIndex;size:100;not null"`
	FirstName    string `gorm:"size:100;not null"`
	LastName     string `gorm:"size:100;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"type:varchar(20);not null"`
	IsActive     bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	CreatedBy    string `gorm:"size:100;not null"`
	UpdatedAt    time.Time
	UpdatedBy    *string        `gorm:"size:100"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
	DeletedBy    *string        `gorm:"size:100"`
}

// DisplayName is the human-readable form used when resolving audit actors.
func (u *User) DisplayName() string { return u.FirstName + " " + u.LastName }

func (User) TableName() string { return "users" }
