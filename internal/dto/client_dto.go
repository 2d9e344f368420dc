package dto

import "time"

type ClientFilter struct {
	Search      string `form:"search"`
	IsConsignor string `form:"is_consignor" validate:"omitempty,oneof=Y N y n"`
	SortBy      string `form:"sort_by,default=last_name" validate:"omitempty,oneof=first_name last_name created_at"`
	OrderBy     string `form:"order_by,default=asc"      validate:"omitempty,oneof=asc desc"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CreateClientRequest struct {
	FirstName   string     `json:"first_name" validate:"required"`
	LastName    string     `json:"last_name"  validate:"required"`
	Email       *string    `json:"email"      validate:"omitempty,email"`
	PhoneNumber *string    `json:"phone_number"`
	Address     *string    `json:"address"`
	Birthdate   *time.Time `json:"birthdate"`
	IsConsignor bool       `json:"is_consignor"`
	CreatedBy   string     `json:"created_by" validate:"required"`
}

type UpdateClientRequest struct {
	FirstName   string     `json:"first_name" validate:"required"`
	LastName    string     `json:"last_name"  validate:"required"`
	Email       *string    `json:"email"      validate:"omitempty,email"`
	PhoneNumber *string    `json:"phone_number"`
	Address     *string    `json:"address"`
	Birthdate   *time.Time `json:"birthdate"`
	IsConsignor bool       `json:"is_consignor"`
	UpdatedBy   string     `json:"updated_by" validate:"required"`
}

type DeleteClientRequest struct {
	DeletedBy string `json:"deleted_by" validate:"required"`
}

type ClientResponse struct {
	ExternalID  string     `json:"external_id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       *string    `json:"email"`
	PhoneNumber *string    `json:"phone_number"`
	Address     *string    `json:"address"`
	Birthdate   *time.Time `json:"birthdate"`
	IsConsignor bool       `json:"is_consignor"`
	CreatedAt   time.Time  `json:"created_at"`
	CreatedBy   string     `json:"created_by"`
}

type ClientListResponse struct {
	Data []ClientResponse `json:"data"`
	Meta PageMeta         `json:"meta"`
}
