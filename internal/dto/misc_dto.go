package dto

import "time"

// CreateMiscRequest covers the product lookup tables (category, brand,
// authenticator) which share one shape.
type CreateMiscRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
	CreatedBy   string  `json:"created_by" validate:"required"`
}

type UpdateMiscRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
	UpdatedBy   string  `json:"updated_by" validate:"required"`
}

type DeleteMiscRequest struct {
	DeletedBy string `json:"deleted_by" validate:"required"`
}

type MiscResponse struct {
	ExternalID  string    `json:"external_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
}
