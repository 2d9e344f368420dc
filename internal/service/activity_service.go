package service

import (
	"context"
	"math"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/model"
	"github.com/tddymnbt/CRCMS-API/internal/repository"
)

// ActivityRecorder accepts audit entries for asynchronous persistence.
// Record must never block or fail the calling operation: implementations
// enqueue and return immediately.
type ActivityRecorder interface {
	Record(actor, module, action, description, refID string)
}

// NopRecorder discards audit entries. Used in tests and when the queue is
// not configured.
type NopRecorder struct{}

func (NopRecorder) Record(actor, module, action, description, refID string) {}

// ActivityService lists the persisted audit trail.
type ActivityService struct {
	logs repository.ActivityLogRepository
}

func NewActivityService(logs repository.ActivityLogRepository) *ActivityService {
	return &ActivityService{logs: logs}
}

func (s *ActivityService) FindAll(ctx context.Context, filter dto.ActivityLogFilter) (*dto.ActivityLogListResponse, error) {
	logs, total, err := s.logs.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	data := make([]dto.ActivityLogResponse, 0, len(logs))
	for _, l := range logs {
		data = append(data, toActivityResponse(l))
	}
	return &dto.ActivityLogListResponse{
		Data: data,
		Meta: pageMeta(filter.Page, filter.Limit, total),
	}, nil
}

func toActivityResponse(l model.ActivityLog) dto.ActivityLogResponse {
	return dto.ActivityLogResponse{
		ExternalID:  l.ExternalID,
		Actor:       l.Actor,
		Module:      l.Module,
		Action:      l.Action,
		Description: l.Description,
		RefID:       l.RefID,
		CreatedAt:   l.CreatedAt,
	}
}

// pageMeta builds the pagination envelope shared by every list endpoint.
func pageMeta(page, limit int, total int64) dto.PageMeta {
	pages := int(math.Ceil(float64(total) / float64(limit)))
	if pages == 0 {
		pages = 1
	}
	return dto.PageMeta{
		Page:        page,
		TotalNumber: total,
		TotalPages:  pages,
		DisplayPage: limit,
	}
}
