package repository

import (
	"context"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/model"

	"gorm.io/gorm"
)

// ProductRepository is the data access contract for products and their
// condition records. Services depend on this interface, not on the
// concrete GORM implementation, enabling clean unit testing via stubs.
type ProductRepository interface {
	CreateTx(tx *gorm.DB, p *model.Product) error
	FindByExtID(ctx context.Context, extID string) (*model.Product, error)
	// FindDuplicate reports whether a non-deleted product with the same
	// (name, category, brand) tuple exists, name compared case-insensitively.
	// excludeExtID skips the product being updated.
	FindDuplicate(ctx context.Context, name, categoryExtID, brandExtID, excludeExtID string) (bool, error)
	Save(ctx context.Context, p *model.Product) error
	SoftDeleteTx(tx *gorm.DB, extID, deletedBy string) error
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	ListByConsignor(ctx context.Context, consignorExtID string, filter dto.ProductFilter) ([]model.Product, int64, error)

	// CountByLookup counts non-deleted products referencing a lookup row,
	// identified by the lookup's table name.
	CountByLookup(ctx context.Context, table, extID string) (int64, error)

	CreateConditionTx(tx *gorm.DB, c *model.ProductCondition) error
	FindConditionByProductExtID(ctx context.Context, productExtID string) (*model.ProductCondition, error)
	SaveCondition(ctx context.Context, c *model.ProductCondition) error
	SoftDeleteConditionTx(tx *gorm.DB, productExtID, deletedBy string) error

	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) CreateTx(tx *gorm.DB, p *model.Product) error {
	return tx.Create(p).Error
}

func (r *productRepo) FindByExtID(ctx context.Context, extID string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("external_id = ?", extID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindDuplicate(ctx context.Context, name, categoryExtID, brandExtID, excludeExtID string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("LOWER(name) = LOWER(?)", name).
		Where("category_ext_id = ?", categoryExtID).
		Where("brand_ext_id = ?", brandExtID)
	if excludeExtID != "" {
		q = q.Where("external_id <> ?", excludeExtID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *productRepo) Save(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) SoftDeleteTx(tx *gorm.DB, extID, deletedBy string) error {
	if err := tx.Model(&model.Product{}).Where("external_id = ?", extID).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return tx.Where("external_id = ?", extID).Delete(&model.Product{}).Error
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{})

	needsStockJoin := yes(filter.IsOutOfStock) || yes(filter.IsLowStock)
	if needsStockJoin {
		q = q.Joins("JOIN stocks ON stocks.product_ext_id = products.external_id AND stocks.deleted_at IS NULL")
	}
	if yes(filter.IsOutOfStock) {
		q = q.Where("stocks.avail_qty = 0")
	}
	if yes(filter.IsLowStock) {
		q = q.Where("stocks.avail_qty <= stocks.min_qty AND stocks.avail_qty > 0")
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		q = q.Where(
			"(products.name ILIKE ? OR products.material ILIKE ? OR products.hardware ILIKE ? OR products.code ILIKE ? OR products.measurement ILIKE ? OR products.model ILIKE ?)",
			search, search, search, search, search, search,
		)
	}
	if filter.IsConsigned != "" {
		q = q.Where("products.is_consigned = ?", yes(filter.IsConsigned))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var products []model.Product
	err := q.Order("products." + filter.SortBy + " " + order(filter.OrderBy)).
		Offset(offset).Limit(filter.Limit).
		Find(&products).Error
	return products, total, err
}

func (r *productRepo) ListByConsignor(ctx context.Context, consignorExtID string, filter dto.ProductFilter) ([]model.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("is_consigned = true").
		Where("consignor_ext_id = ?", consignorExtID)
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		q = q.Where(
			"(name ILIKE ? OR material ILIKE ? OR hardware ILIKE ? OR code ILIKE ? OR measurement ILIKE ? OR model ILIKE ?)",
			search, search, search, search, search, search,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var products []model.Product
	err := q.Order(filter.SortBy + " " + order(filter.OrderBy)).
		Offset(offset).Limit(filter.Limit).
		Find(&products).Error
	return products, total, err
}

func (r *productRepo) CountByLookup(ctx context.Context, table, extID string) (int64, error) {
	var column string
	switch table {
	case TableCategories:
		column = "category_ext_id"
	case TableBrands:
		column = "brand_ext_id"
	case TableAuthenticators:
		column = "auth_ext_id"
	default:
		return 0, gorm.ErrInvalidField
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where(column+" = ?", extID).
		Count(&count).Error
	return count, err
}

func (r *productRepo) CreateConditionTx(tx *gorm.DB, c *model.ProductCondition) error {
	return tx.Create(c).Error
}

func (r *productRepo) FindConditionByProductExtID(ctx context.Context, productExtID string) (*model.ProductCondition, error) {
	var c model.ProductCondition
	err := r.db.WithContext(ctx).Where("product_ext_id = ?", productExtID).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *productRepo) SaveCondition(ctx context.Context, c *model.ProductCondition) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *productRepo) SoftDeleteConditionTx(tx *gorm.DB, productExtID, deletedBy string) error {
	if err := tx.Model(&model.ProductCondition{}).Where("product_ext_id = ?", productExtID).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return tx.Where("product_ext_id = ?", productExtID).Delete(&model.ProductCondition{}).Error
}

// yes interprets the Y/N query-string flags.
func yes(flag string) bool { return flag == "Y" || flag == "y" }

func order(dir string) string {
	if dir == "desc" {
		return "DESC"
	}
	return "ASC"
}
