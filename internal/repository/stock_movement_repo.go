package repository

import (
	"context"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/model"

	"gorm.io/gorm"
)

// StockMovementRepository appends and lists the immutable stock ledger.
// There is deliberately no update or delete.
type StockMovementRepository interface {
	CreateTx(tx *gorm.DB, m *model.StockMovement) error
	List(ctx context.Context, stockExtID string, filter dto.MovementFilter) ([]model.StockMovement, int64, error)
	// ListAll returns every movement of a stock unit in creation order,
	// used by ledger reconciliation.
	ListAll(ctx context.Context, stockExtID string) ([]model.StockMovement, error)
}

type stockMovementRepo struct{ db *gorm.DB }

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db: db}
}

func (r *stockMovementRepo) CreateTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

func (r *stockMovementRepo) List(ctx context.Context, stockExtID string, filter dto.MovementFilter) ([]model.StockMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Where("stock_ext_id = ?", stockExtID)
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Source != "" {
		q = q.Where("source = ?", filter.Source)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var movements []model.StockMovement
	err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&movements).Error
	return movements, total, err
}

func (r *stockMovementRepo) ListAll(ctx context.Context, stockExtID string) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("stock_ext_id = ?", stockExtID).
		Order("id ASC").
		Find(&movements).Error
	return movements, err
}
