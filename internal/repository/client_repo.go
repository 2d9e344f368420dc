package repository

import (
	"context"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/model"

	"gorm.io/gorm"
)

// ClientRepository is the data access contract for customer records.
type ClientRepository interface {
	Create(ctx context.Context, c *model.Client) error
	FindByExtID(ctx context.Context, extID string) (*model.Client, error)
	Save(ctx context.Context, c *model.Client) error
	SoftDelete(ctx context.Context, extID, deletedBy string) error
	List(ctx context.Context, filter dto.ClientFilter) ([]model.Client, int64, error)
}

type clientRepo struct{ db *gorm.DB }

func NewClientRepository(db *gorm.DB) ClientRepository { return &clientRepo{db: db} }

func (r *clientRepo) Create(ctx context.Context, c *model.Client) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clientRepo) FindByExtID(ctx context.Context, extID string) (*model.Client, error) {
	var c model.Client
	err := r.db.WithContext(ctx).Where("external_id = ?", extID).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clientRepo) Save(ctx context.Context, c *model.Client) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clientRepo) SoftDelete(ctx context.Context, extID, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Client{}).Where("external_id = ?", extID).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("external_id = ?", extID).Delete(&model.Client{}).Error
	})
}

func (r *clientRepo) List(ctx context.Context, filter dto.ClientFilter) ([]model.Client, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Client{})
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		q = q.Where(
			"(first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR phone_number ILIKE ? OR CONCAT(first_name, ' ', last_name) ILIKE ?)",
			search, search, search, search, search,
		)
	}
	if filter.IsConsignor != "" {
		q = q.Where("is_consignor = ?", yes(filter.IsConsignor))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var clients []model.Client
	err := q.Order(filter.SortBy + " " + order(filter.OrderBy)).
		Offset(offset).Limit(filter.Limit).
		Find(&clients).Error
	return clients, total, err
}
