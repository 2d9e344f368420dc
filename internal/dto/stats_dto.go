package dto

import "github.com/shopspring/decimal"

// StatsFilter selects the sale population for the stats endpoints.
// Mode: A = all, R = regular only, L = layaway only.
type StatsFilter struct {
	Mode     string `form:"mode,default=A" validate:"omitempty,oneof=A R L"`
	DateFrom string `form:"date_from"` // YYYY-MM-DD
	DateTo   string `form:"date_to"`   // YYYY-MM-DD
}

// StatusBucket is one aggregate cell: sum and count of sales in a status.
type StatusBucket struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalCount  int64           `json:"total_count"`
}

// StatusSeries is the time-bucketed breakdown for one sale status.
type StatusSeries struct {
	Total     StatusBucket `json:"total"`
	Today     StatusBucket `json:"today"`
	Yesterday StatusBucket `json:"yesterday"`
	LastWeek  StatusBucket `json:"last_week"`
	LastMonth StatusBucket `json:"last_month"`
	LastYear  StatusBucket `json:"last_year"`
}

type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// SalesStatsResponse aggregates sales by status. When a custom date range
// is given only the Range buckets are populated; otherwise the full
// time-bucketed series is returned.
type SalesStatsResponse struct {
	DataRange *DateRange `json:"data_range,omitempty"`

	PaidSales      *StatusSeries `json:"total_paid_sales,omitempty"`
	PendingSales   *StatusSeries `json:"total_pending_sales,omitempty"`
	CancelledSales *StatusSeries `json:"total_cancelled_sales,omitempty"`

	RangePaidSales      *StatusBucket `json:"range_paid_sales,omitempty"`
	RangePendingSales   *StatusBucket `json:"range_pending_sales,omitempty"`
	RangeCancelledSales *StatusBucket `json:"range_cancelled_sales,omitempty"`
}

// ─── Customer purchase frequency ────────────────────────────────────────────

type TopCustomer struct {
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	Orders       int64  `json:"orders"`
}

type FrequencyMetrics struct {
	NewCustomers       int           `json:"new_customers"`
	RepeatCustomers    int           `json:"repeat_customers"`
	TopRepeatCustomers []TopCustomer `json:"top_repeat_customers"`
}

type CustomerFrequencyResponse struct {
	DataRange   *DateRange        `json:"data_range,omitempty"`
	CustomRange *FrequencyMetrics `json:"custom_range,omitempty"`
	ThisMonth   *FrequencyMetrics `json:"this_month,omitempty"`
	LastMonth   *FrequencyMetrics `json:"last_month,omitempty"`
	LastSixMos  *FrequencyMetrics `json:"last_6mos,omitempty"`
	LastYear    *FrequencyMetrics `json:"last_year,omitempty"`
}
