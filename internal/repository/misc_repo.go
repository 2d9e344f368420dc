package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Lookup tables served by MiscRepository. The three product lookup tables
// share one row shape, so one repository handles all of them keyed by
// table name.
const (
	TableCategories     = "product_categories"
	TableBrands         = "product_brands"
	TableAuthenticators = "product_authenticators"
)

// LookupRow is the shared row shape of the product lookup tables.
type LookupRow struct {
	ID          uint   `gorm:"primaryKey"`
	ExternalID  string `gorm:"uniqueIndex;size:100;not null"`
	Name        string `gorm:"size:100;not null"`
	Description *string
	CreatedAt   time.Time
	CreatedBy   string
	UpdatedAt   time.Time
	UpdatedBy   *string
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	DeletedBy   *string
}

// MiscRepository is the data access contract for the product lookup tables.
type MiscRepository interface {
	Create(ctx context.Context, table string, row *LookupRow) error
	FindByExtID(ctx context.Context, table, extID string) (*LookupRow, error)
	// NameExists reports whether a non-deleted row with the same name exists,
	// compared case-insensitively. excludeExtID skips the row being updated.
	NameExists(ctx context.Context, table, name, excludeExtID string) (bool, error)
	Save(ctx context.Context, table string, row *LookupRow) error
	SoftDelete(ctx context.Context, table, extID, deletedBy string) error
	List(ctx context.Context, table, search string, page, limit int) ([]LookupRow, int64, error)
}

type miscRepo struct{ db *gorm.DB }

func NewMiscRepository(db *gorm.DB) MiscRepository { return &miscRepo{db: db} }

func (r *miscRepo) Create(ctx context.Context, table string, row *LookupRow) error {
	return r.db.WithContext(ctx).Table(table).Create(row).Error
}

func (r *miscRepo) FindByExtID(ctx context.Context, table, extID string) (*LookupRow, error) {
	var row LookupRow
	err := r.db.WithContext(ctx).Table(table).
		Where("external_id = ?", extID).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *miscRepo) NameExists(ctx context.Context, table, name, excludeExtID string) (bool, error) {
	q := r.db.WithContext(ctx).Table(table).Model(&LookupRow{}).
		Where("LOWER(name) = LOWER(?)", name).
		Where("deleted_at IS NULL")
	if excludeExtID != "" {
		q = q.Where("external_id <> ?", excludeExtID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *miscRepo) Save(ctx context.Context, table string, row *LookupRow) error {
	return r.db.WithContext(ctx).Table(table).Save(row).Error
}

func (r *miscRepo) SoftDelete(ctx context.Context, table, extID, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(table).Where("external_id = ?", extID).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Table(table).Where("external_id = ?", extID).Delete(&LookupRow{}).Error
	})
}

func (r *miscRepo) List(ctx context.Context, table, search string, page, limit int) ([]LookupRow, int64, error) {
	q := r.db.WithContext(ctx).Table(table).Model(&LookupRow{}).
		Where("deleted_at IS NULL")
	if search != "" {
		q = q.Where("name ILIKE ?", "%"+search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	var rows []LookupRow
	err := q.Order("name ASC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}
