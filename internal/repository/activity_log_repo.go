package repository

import (
	"context"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/model"

	"gorm.io/gorm"
)

// ActivityLogRepository appends and lists the append-only audit trail.
// There is deliberately no update or delete.
type ActivityLogRepository interface {
	Create(ctx context.Context, l *model.ActivityLog) error
	List(ctx context.Context, filter dto.ActivityLogFilter) ([]model.ActivityLog, int64, error)
}

type activityLogRepo struct{ db *gorm.DB }

func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepo{db: db}
}

func (r *activityLogRepo) Create(ctx context.Context, l *model.ActivityLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *activityLogRepo) List(ctx context.Context, filter dto.ActivityLogFilter) ([]model.ActivityLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.ActivityLog{})
	if filter.Actor != "" {
		q = q.Where("actor = ?", filter.Actor)
	}
	if filter.Module != "" {
		q = q.Where("module = ?", filter.Module)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		q = q.Where("(description ILIKE ? OR ref_id ILIKE ?)", search, search)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var logs []model.ActivityLog
	err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&logs).Error
	return logs, total, err
}
