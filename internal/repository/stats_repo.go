package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tddymnbt/CRCMS-API/internal/model"

	"gorm.io/gorm"
)

// StatusTotals is one aggregate cell of the sales stats: the money sum and
// row count of sales matching a status within a window.
type StatusTotals struct {
	TotalAmount decimal.Decimal
	TotalCount  int64
}

// CustomerOrdersRow is one client's order count within a window, carrying
// the client's first-ever purchase date so callers can split new from
// repeat customers.
type CustomerOrdersRow struct {
	ClientExtID string
	FirstName   string
	LastName    string
	Orders      int64
	FirstOrder  time.Time
}

// StatsRepository runs the aggregate queries behind the stats endpoints.
// Windows are half-open on neither side: from/to are inclusive bounds on
// date_purchased; a nil bound means unbounded.
type StatsRepository interface {
	// SumByStatus totals sales in the given status. For every status except
	// Deposit the cell is SUM(total_amount); Deposit is netted against the
	// payment ledger so partially paid layaways only count their unpaid
	// remainder.
	SumByStatus(ctx context.Context, status model.SaleStatus, saleType model.SaleType, from, to *time.Time) (StatusTotals, error)
	// CustomerOrders groups non-cancelled sales by client over the window.
	CustomerOrders(ctx context.Context, from, to time.Time) ([]CustomerOrdersRow, error)
	// CountProducts counts non-deleted products created within the window.
	CountProducts(ctx context.Context, from, to *time.Time) (int64, error)
}

type statsRepo struct{ db *gorm.DB }

func NewStatsRepository(db *gorm.DB) StatsRepository { return &statsRepo{db: db} }

func (r *statsRepo) SumByStatus(ctx context.Context, status model.SaleStatus, saleType model.SaleType, from, to *time.Time) (StatusTotals, error) {
	if status == model.SaleStatusDeposit {
		return r.sumDeposits(ctx, saleType, from, to)
	}

	q := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("COALESCE(SUM(total_amount), 0) AS total_amount, COUNT(*) AS total_count").
		Where("status = ?", status)
	q = r.scope(q, "", saleType, from, to)

	var out StatusTotals
	err := q.Scan(&out).Error
	return out, err
}

// sumDeposits reads each Deposit sale net of its recorded payments: the
// bucket reports money still owed, not face value.
func (r *statsRepo) sumDeposits(ctx context.Context, saleType model.SaleType, from, to *time.Time) (StatusTotals, error) {
	q := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("COALESCE(SUM(sales.total_amount - COALESCE(p.paid, 0)), 0) AS total_amount, COUNT(*) AS total_count").
		Joins("LEFT JOIN (SELECT sale_ext_id, SUM(amount) AS paid FROM payment_logs GROUP BY sale_ext_id) p ON p.sale_ext_id = sales.external_id").
		Where("sales.status = ?", model.SaleStatusDeposit)
	q = r.scope(q, "sales.", saleType, from, to)

	var out StatusTotals
	err := q.Scan(&out).Error
	return out, err
}

func (r *statsRepo) scope(q *gorm.DB, prefix string, saleType model.SaleType, from, to *time.Time) *gorm.DB {
	if saleType != "" {
		q = q.Where(prefix+"type = ?", saleType)
	}
	if from != nil {
		q = q.Where(prefix+"date_purchased >= ?", *from)
	}
	if to != nil {
		q = q.Where(prefix+"date_purchased <= ?", *to)
	}
	return q
}

func (r *statsRepo) CustomerOrders(ctx context.Context, from, to time.Time) ([]CustomerOrdersRow, error) {
	var rows []CustomerOrdersRow
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select(`sales.client_ext_id,
			c.first_name,
			c.last_name,
			COUNT(*) AS orders,
			(SELECT MIN(s2.date_purchased) FROM sales s2
			 WHERE s2.client_ext_id = sales.client_ext_id
			   AND s2.status <> ? AND s2.deleted_at IS NULL) AS first_order`,
			model.SaleStatusCancelled).
		Joins("JOIN clients c ON c.external_id = sales.client_ext_id").
		Where("sales.status <> ?", model.SaleStatusCancelled).
		Where("sales.date_purchased >= ? AND sales.date_purchased <= ?", from, to).
		Group("sales.client_ext_id, c.first_name, c.last_name").
		Order("orders DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *statsRepo) CountProducts(ctx context.Context, from, to *time.Time) (int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{})
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at <= ?", *to)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}
