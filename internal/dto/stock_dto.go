package dto

import "time"

// MovementFilter is bound from the query string of the movement list route.
type MovementFilter struct {
	Type   string `form:"type"   validate:"omitempty,oneof=INBOUND OUTBOUND"`
	Source string `form:"source"`
	Page   int    `form:"page,default=1"    validate:"min=1"`
	Limit  int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// MovementResponse is one row of a stock unit's movement history with the
// derived status line and resolved performer name.
type MovementResponse struct {
	StockExtID   string    `json:"stock_id"`
	ProductExtID string    `json:"product_id"`
	Type         string    `json:"type"`
	Source       string    `json:"source"`
	QtyBefore    int       `json:"qty_before"`
	QtyChange    int       `json:"change"`
	QtyAfter     int       `json:"qty_after"`
	Status       string    `json:"status"`
	PerformedBy  string    `json:"performed_by"`
	CreatedAt    time.Time `json:"created_at"`
}

type MovementListResponse struct {
	Data []MovementResponse `json:"data"`
	Meta PageMeta           `json:"meta"`
}
