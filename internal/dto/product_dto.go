package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

type ProductFilter struct {
	Search       string `form:"search"`
	IsConsigned  string `form:"is_consigned"  validate:"omitempty,oneof=Y N y n"`
	IsOutOfStock string `form:"is_out_of_stock" validate:"omitempty,oneof=Y N y n"`
	IsLowStock   string `form:"is_low_stock"  validate:"omitempty,oneof=Y N y n"`
	SortBy       string `form:"sort_by,default=name"  validate:"omitempty,oneof=name created_at price cost"`
	OrderBy      string `form:"order_by,default=asc"  validate:"omitempty,oneof=asc desc"`
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ConditionRequest struct {
	Interior    *string `json:"interior"`
	Exterior    *string `json:"exterior"`
	Overall     *string `json:"overall"`
	Description *string `json:"description"`
}

type InitialStockRequest struct {
	MinQty     int `json:"min_qty"      validate:"min=0"`
	QtyInStock int `json:"qty_in_stock" validate:"required,min=1"`
}

type CreateProductRequest struct {
	Name                  string              `json:"name"            validate:"required"`
	CategoryExtID         string              `json:"category_ext_id" validate:"required"`
	BrandExtID            string              `json:"brand_ext_id"    validate:"required"`
	AuthExtID             *string             `json:"auth_ext_id"`
	Material              *string             `json:"material"`
	Hardware              *string             `json:"hardware"`
	Code                  *string             `json:"code"`
	Measurement           *string             `json:"measurement"`
	Model                 *string             `json:"model"`
	Inclusions            []string            `json:"inclusions"`
	Condition             ConditionRequest    `json:"condition"`
	Cost                  decimal.Decimal     `json:"cost"  validate:"required"`
	Price                 decimal.Decimal     `json:"price" validate:"required"`
	IsConsigned           bool                `json:"is_consigned"`
	ConsignorExtID        *string             `json:"consignor_ext_id"`
	ConsignorSellingPrice *decimal.Decimal    `json:"consignor_selling_price"`
	ConsignedDate         *time.Time          `json:"consigned_date"`
	Stock                 InitialStockRequest `json:"stock" validate:"required"`
	CreatedBy             string              `json:"created_by" validate:"required"`
}

type UpdateProductRequest struct {
	Name                  string           `json:"name"            validate:"required"`
	CategoryExtID         string           `json:"category_ext_id" validate:"required"`
	BrandExtID            string           `json:"brand_ext_id"    validate:"required"`
	AuthExtID             *string          `json:"auth_ext_id"`
	Material              *string          `json:"material"`
	Hardware              *string          `json:"hardware"`
	Code                  *string          `json:"code"`
	Measurement           *string          `json:"measurement"`
	Model                 *string          `json:"model"`
	Inclusions            []string         `json:"inclusions"`
	Condition             *ConditionRequest `json:"condition"`
	Cost                  decimal.Decimal  `json:"cost"  validate:"required"`
	Price                 decimal.Decimal  `json:"price" validate:"required"`
	IsConsigned           bool             `json:"is_consigned"`
	ConsignorExtID        *string          `json:"consignor_ext_id"`
	ConsignorSellingPrice *decimal.Decimal `json:"consignor_selling_price"`
	ConsignedDate         *time.Time       `json:"consigned_date"`
	UpdatedBy             string           `json:"updated_by" validate:"required"`
}

// UpdateStockRequest is the manual stock adjustment path, distinct from
// sale-driven changes.
type UpdateStockRequest struct {
	Type      string           `json:"type" validate:"required,oneof=increase decrease"`
	Qty       int              `json:"qty"  validate:"required,min=1"`
	Cost      *decimal.Decimal `json:"cost"`
	UpdatedBy string           `json:"updated_by" validate:"required"`
}

type DeleteProductRequest struct {
	DeletedBy string `json:"deleted_by" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ConditionResponse struct {
	Interior    *string `json:"interior"`
	Exterior    *string `json:"exterior"`
	Overall     *string `json:"overall"`
	Description *string `json:"description"`
}

type StockLevelResponse struct {
	MinQty     int `json:"min_qty"`
	QtyInStock int `json:"qty_in_stock"`
	SoldStock  int `json:"sold_stock"`
}

type ConsignorResponse struct {
	Code      string `json:"code"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ProductResponse is the denormalized product view: product, condition,
// stock and resolved lookup names assembled into one payload.
type ProductResponse struct {
	StockExtID            string             `json:"stock_external_id"`
	ProductExtID          string             `json:"product_external_id"`
	Category              RefName            `json:"category"`
	Brand                 RefName            `json:"brand"`
	Authenticator         *RefName           `json:"authenticator,omitempty"`
	Name                  string             `json:"name"`
	Material              *string            `json:"material"`
	Hardware              *string            `json:"hardware"`
	Code                  *string            `json:"code"`
	Measurement           *string            `json:"measurement"`
	Model                 *string            `json:"model"`
	Inclusions            []string           `json:"inclusions"`
	Condition             *ConditionResponse `json:"condition"`
	Cost                  decimal.Decimal    `json:"cost"`
	Price                 decimal.Decimal    `json:"price"`
	Stock                 *StockLevelResponse `json:"stock"`
	IsConsigned           bool               `json:"is_consigned"`
	Consignor             *ConsignorResponse `json:"consignor,omitempty"`
	ConsignorSellingPrice *decimal.Decimal   `json:"consignor_selling_price"`
	ConsignedDate         *time.Time         `json:"consigned_date"`
	CreatedAt             time.Time          `json:"created_at"`
	CreatedBy             string             `json:"created_by"`
	UpdatedAt             time.Time          `json:"updated_at"`
	UpdatedBy             *string            `json:"updated_by"`
}

type ProductListResponse struct {
	Data []ProductResponse `json:"data"`
	Meta PageMeta          `json:"meta"`
}

type ProductCountResponse struct {
	TotalCount     int64 `json:"total_count"`
	TodayCount     int64 `json:"today_count"`
	YesterdayCount int64 `json:"yesterday_count"`
	LastWeekCount  int64 `json:"last_week_count"`
	LastMonthCount int64 `json:"last_month_count"`
	LastYearCount  int64 `json:"last_year_count"`
}
