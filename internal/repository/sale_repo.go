package repository

import (
	"context"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/model"

	"gorm.io/gorm"
)

// SaleRepository is the data access contract for sales and their owned
// rows (items, payment logs, layaway plans). Items and payment logs are
// append-only; the layaway plan is the only owned row that is updated.
type SaleRepository interface {
	CreateTx(tx *gorm.DB, s *model.Sale) error
	CreateItemsTx(tx *gorm.DB, items []model.SaleItem) error
	CreatePaymentTx(tx *gorm.DB, p *model.PaymentLog) error
	CreateLayawayTx(tx *gorm.DB, l *model.SaleLayaway) error
	SaveTx(tx *gorm.DB, s *model.Sale) error
	SaveLayawayTx(tx *gorm.DB, l *model.SaleLayaway) error

	FindByExtID(ctx context.Context, extID string) (*model.Sale, error)
	// FindByExtIDForUpdateTx locks the sale row so concurrent payments and
	// cancellations against the same sale serialize (payment sums are read
	// under the same lock).
	FindByExtIDForUpdateTx(tx *gorm.DB, extID string) (*model.Sale, error)
	FindItems(ctx context.Context, saleExtID string) ([]model.SaleItem, error)
	FindPayments(ctx context.Context, saleExtID string) ([]model.PaymentLog, error)
	FindPaymentsTx(tx *gorm.DB, saleExtID string) ([]model.PaymentLog, error)
	FindLayaway(ctx context.Context, saleExtID string) (*model.SaleLayaway, error)
	FindLayawayTx(tx *gorm.DB, saleExtID string) (*model.SaleLayaway, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error)

	// HasClientTransactions reports whether any sale references the client.
	// Clients with sales history must not be deleted.
	HasClientTransactions(ctx context.Context, clientExtID string) (bool, error)
	// HasStockTransactions reports whether any sale line references the
	// stock unit. Stock with sales history must not be deleted.
	HasStockTransactions(ctx context.Context, stockExtID string) (bool, error)

	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error { return tx.Create(s).Error }

func (r *saleRepo) CreateItemsTx(tx *gorm.DB, items []model.SaleItem) error {
	return tx.Create(&items).Error
}

func (r *saleRepo) CreatePaymentTx(tx *gorm.DB, p *model.PaymentLog) error {
	return tx.Create(p).Error
}

func (r *saleRepo) CreateLayawayTx(tx *gorm.DB, l *model.SaleLayaway) error {
	return tx.Create(l).Error
}

func (r *saleRepo) SaveTx(tx *gorm.DB, s *model.Sale) error { return tx.Save(s).Error }

func (r *saleRepo) SaveLayawayTx(tx *gorm.DB, l *model.SaleLayaway) error {
	return tx.Save(l).Error
}

func (r *saleRepo) FindByExtID(ctx context.Context, extID string) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Where("external_id = ?", extID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) FindByExtIDForUpdateTx(tx *gorm.DB, extID string) (*model.Sale, error) {
	var s model.Sale
	err := tx.Clauses(lockForUpdate()).Where("external_id = ?", extID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) FindItems(ctx context.Context, saleExtID string) ([]model.SaleItem, error) {
	var items []model.SaleItem
	err := r.db.WithContext(ctx).Where("sale_ext_id = ?", saleExtID).
		Order("id ASC").Find(&items).Error
	return items, err
}

func (r *saleRepo) FindPayments(ctx context.Context, saleExtID string) ([]model.PaymentLog, error) {
	var logs []model.PaymentLog
	err := r.db.WithContext(ctx).Where("sale_ext_id = ?", saleExtID).
		Order("payment_date DESC").Find(&logs).Error
	return logs, err
}

func (r *saleRepo) FindPaymentsTx(tx *gorm.DB, saleExtID string) ([]model.PaymentLog, error) {
	var logs []model.PaymentLog
	err := tx.Where("sale_ext_id = ?", saleExtID).
		Order("payment_date DESC").Find(&logs).Error
	return logs, err
}

func (r *saleRepo) FindLayaway(ctx context.Context, saleExtID string) (*model.SaleLayaway, error) {
	var l model.SaleLayaway
	err := r.db.WithContext(ctx).Where("sale_ext_id = ?", saleExtID).First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *saleRepo) FindLayawayTx(tx *gorm.DB, saleExtID string) (*model.SaleLayaway, error) {
	var l model.SaleLayaway
	err := tx.Where("sale_ext_id = ?", saleExtID).First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *saleRepo) HasClientTransactions(ctx context.Context, clientExtID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("client_ext_id = ?", clientExtID).
		Count(&count).Error
	return count > 0, err
}

func (r *saleRepo) HasStockTransactions(ctx context.Context, stockExtID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SaleItem{}).
		Where("stock_ext_id = ?", stockExtID).
		Count(&count).Error
	return count > 0, err
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("sales.*").
		Joins("LEFT JOIN clients c ON c.external_id = sales.client_ext_id")

	switch filter.Mode {
	case "R":
		q = q.Where("sales.type = ?", model.SaleTypeRegular)
	case "L":
		q = q.Where("sales.type = ?", model.SaleTypeLayaway)
	case "C":
		q = q.Where("sales.status = ?", model.SaleStatusCancelled)
	case "FP":
		q = q.Where("sales.status = ?", model.SaleStatusFullyPaid)
	case "CN":
		q = q.Joins("JOIN sales_items si ON si.sale_ext_id = sales.external_id").
			Joins("JOIN stocks st ON st.external_id = si.stock_ext_id").
			Where("st.is_consigned = true").
			Distinct()
	case "OD":
		q = q.Joins("JOIN sale_layaways sl ON sl.sale_ext_id = sales.external_id").
			Where("sl.current_due_date < NOW()").
			Where("sales.type = ?", model.SaleTypeLayaway).
			Where("sales.status = ?", model.SaleStatusDeposit)
	case "CT":
		q = q.Where("sales.client_ext_id = ?", filter.ClientExtID)
	}

	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		q = q.Where(
			"(sales.external_id ILIKE ? OR sales.created_by ILIKE ? OR CONCAT(c.first_name, ' ', c.last_name) ILIKE ?)",
			search, search, search,
		)
	}
	if filter.DateFrom != "" {
		q = q.Where("sales.date_purchased >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		q = q.Where("sales.date_purchased <= ?", filter.DateTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var sales []model.Sale
	err := q.Order("sales." + filter.SortBy + " " + order(filter.OrderBy)).
		Offset(offset).Limit(filter.Limit).
		Find(&sales).Error
	return sales, total, err
}
