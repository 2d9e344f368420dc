package dto

import "time"

type ActivityLogFilter struct {
	Actor   string `form:"actor"`
	Module  string `form:"module"`
	Search  string `form:"search"`
	Page    int    `form:"page,default=1"    validate:"min=1"`
	Limit   int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type ActivityLogResponse struct {
	ExternalID  string    `json:"external_id"`
	Actor       string    `json:"actor"`
	Module      string    `json:"module"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	RefID       string    `json:"ref_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type ActivityLogListResponse struct {
	Data []ActivityLogResponse `json:"data"`
	Meta PageMeta              `json:"meta"`
}
