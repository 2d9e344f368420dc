package model

import "time"

// ActivityLog is an append-only audit entry recorded after successful
// mutating operations. Writes are best-effort and never block or roll
// back the operation they describe.
type ActivityLog struct {
	ID          uint   `gorm:"primaryKey"`
	ExternalID  string `gorm:"uniqueIndex;size:100;not null"`
	Actor       string `gorm:"size:100;index;not null"`
	Module      string `gorm:"size:100;not null"`
	Action      string `gorm:"size:100;not null"`
	Description string `gorm:"type:text"`
	RefID       string `gorm:"size:100;index"`
	CreatedAt   time.Time
}

func (ActivityLog) TableName() string { return "activity_logs" }
