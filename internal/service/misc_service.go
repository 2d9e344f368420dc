package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/ids"
	"github.com/tddymnbt/CRCMS-API/internal/repository"
)

// LookupKind selects which product lookup table a MiscService call acts on.
type LookupKind string

const (
	KindCategory      LookupKind = "category"
	KindBrand         LookupKind = "brand"
	KindAuthenticator LookupKind = "authenticator"
)

func (k LookupKind) table() string {
	switch k {
	case KindBrand:
		return repository.TableBrands
	case KindAuthenticator:
		return repository.TableAuthenticators
	default:
		return repository.TableCategories
	}
}

func (k LookupKind) prefix() string {
	switch k {
	case KindBrand:
		return ids.PrefixBrand
	case KindAuthenticator:
		return ids.PrefixAuthenticator
	default:
		return ids.PrefixCategory
	}
}

// MiscService manages the product lookup tables: categories, brands and
// authenticators. The three share one row shape and one set of rules, so
// one service handles all of them keyed by kind.
type MiscService struct {
	misc     repository.MiscRepository
	products repository.ProductRepository
	recorder ActivityRecorder
}

func NewMiscService(misc repository.MiscRepository, products repository.ProductRepository, recorder ActivityRecorder) *MiscService {
	return &MiscService{misc: misc, products: products, recorder: recorder}
}

func (s *MiscService) Create(ctx context.Context, kind LookupKind, req dto.CreateMiscRequest) (*dto.MiscResponse, error) {
	exists, err := s.misc.NameExists(ctx, kind.table(), req.Name, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s %q already exists", ErrConflict, kind, req.Name)
	}

	row := &repository.LookupRow{
		ExternalID:  ids.New(kind.prefix()),
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
	}
	if err := s.misc.Create(ctx, kind.table(), row); err != nil {
		return nil, err
	}

	s.recorder.Record(req.CreatedBy, string(kind), "create",
		fmt.Sprintf("%s %s (%s) added", kind, row.ExternalID, row.Name), row.ExternalID)
	return toMiscResponse(row), nil
}

func (s *MiscService) FindOne(ctx context.Context, kind LookupKind, extID string) (*dto.MiscResponse, error) {
	row, err := s.misc.FindByExtID(ctx, kind.table(), extID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, extID)
		}
		return nil, err
	}
	return toMiscResponse(row), nil
}

func (s *MiscService) FindAll(ctx context.Context, kind LookupKind, search string, page, limit int) ([]dto.MiscResponse, dto.PageMeta, error) {
	rows, total, err := s.misc.List(ctx, kind.table(), search, page, limit)
	if err != nil {
		return nil, dto.PageMeta{}, err
	}

	data := make([]dto.MiscResponse, 0, len(rows))
	for i := range rows {
		data = append(data, *toMiscResponse(&rows[i]))
	}
	return data, pageMeta(page, limit, total), nil
}

func (s *MiscService) Update(ctx context.Context, kind LookupKind, extID string, req dto.UpdateMiscRequest) (*dto.MiscResponse, error) {
	row, err := s.misc.FindByExtID(ctx, kind.table(), extID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, extID)
		}
		return nil, err
	}

	exists, err := s.misc.NameExists(ctx, kind.table(), req.Name, extID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s %q already exists", ErrConflict, kind, req.Name)
	}

	row.Name = req.Name
	row.Description = req.Description
	row.UpdatedBy = &req.UpdatedBy
	if err := s.misc.Save(ctx, kind.table(), row); err != nil {
		return nil, err
	}

	s.recorder.Record(req.UpdatedBy, string(kind), "update",
		fmt.Sprintf("%s %s updated", kind, extID), extID)
	return toMiscResponse(row), nil
}

// Remove soft-deletes a lookup row. Refused while any product still
// references it.
func (s *MiscService) Remove(ctx context.Context, kind LookupKind, extID string, req dto.DeleteMiscRequest) error {
	if _, err := s.misc.FindByExtID(ctx, kind.table(), extID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s %s", ErrNotFound, kind, extID)
		}
		return err
	}

	count, err := s.products.CountByLookup(ctx, kind.table(), extID)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %s %s is referenced by %d product(s)", ErrConflict, kind, extID, count)
	}

	if err := s.misc.SoftDelete(ctx, kind.table(), extID, req.DeletedBy); err != nil {
		return err
	}
	s.recorder.Record(req.DeletedBy, string(kind), "delete",
		fmt.Sprintf("%s %s deleted", kind, extID), extID)
	return nil
}

func toMiscResponse(row *repository.LookupRow) *dto.MiscResponse {
	return &dto.MiscResponse{
		ExternalID:  row.ExternalID,
		Name:        row.Name,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		CreatedBy:   row.CreatedBy,
	}
}
