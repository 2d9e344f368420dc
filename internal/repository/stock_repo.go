package repository

import (
	"context"

	"github.com/tddymnbt/CRCMS-API/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockRepository is the data access contract for stock units. Mutating
// methods take the caller's transaction: every check-then-write against a
// stock row must run with the row lock held (see FindByExtIDForUpdateTx).
type StockRepository interface {
	CreateTx(tx *gorm.DB, s *model.Stock) error
	FindByExtID(ctx context.Context, extID string) (*model.Stock, error)
	FindByProductExtID(ctx context.Context, productExtID string) (*model.Stock, error)
	// FindByExtIDForUpdateTx reads the stock row with SELECT ... FOR UPDATE so
	// concurrent reservations against the same unit serialize on the row lock.
	FindByExtIDForUpdateTx(tx *gorm.DB, extID string) (*model.Stock, error)
	SaveTx(tx *gorm.DB, s *model.Stock) error
	SoftDeleteTx(tx *gorm.DB, extID, deletedBy string) error
	DB() *gorm.DB
}

// lockForUpdate is the row-lock clause shared by the repositories that
// implement check-then-write sequences.
func lockForUpdate() clause.Locking { return clause.Locking{Strength: "UPDATE"} }

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) DB() *gorm.DB { return r.db }

func (r *stockRepo) CreateTx(tx *gorm.DB, s *model.Stock) error {
	return tx.Create(s).Error
}

func (r *stockRepo) FindByExtID(ctx context.Context, extID string) (*model.Stock, error) {
	var s model.Stock
	err := r.db.WithContext(ctx).Where("external_id = ?", extID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stockRepo) FindByProductExtID(ctx context.Context, productExtID string) (*model.Stock, error) {
	var s model.Stock
	err := r.db.WithContext(ctx).Where("product_ext_id = ?", productExtID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stockRepo) FindByExtIDForUpdateTx(tx *gorm.DB, extID string) (*model.Stock, error) {
	var s model.Stock
	err := tx.Clauses(lockForUpdate()).
		Where("external_id = ?", extID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stockRepo) SaveTx(tx *gorm.DB, s *model.Stock) error {
	return tx.Save(s).Error
}

func (r *stockRepo) SoftDeleteTx(tx *gorm.DB, extID, deletedBy string) error {
	if err := tx.Model(&model.Stock{}).Where("external_id = ?", extID).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return tx.Where("external_id = ?", extID).Delete(&model.Stock{}).Error
}
