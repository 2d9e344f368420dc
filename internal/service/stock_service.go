package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/ids"
	"github.com/tddymnbt/CRCMS-API/internal/model"
	"github.com/tddymnbt/CRCMS-API/internal/repository"
)

// StockService owns every quantity change to stock units. All writes go
// through a locked read-check-write sequence inside one transaction, and
// each write appends exactly one movement to the ledger.
type StockService struct {
	stocks    repository.StockRepository
	movements repository.StockMovementRepository
	users     repository.UserRepository
	recorder  ActivityRecorder
	nowFn     nowFunc
}

func NewStockService(
	stocks repository.StockRepository,
	movements repository.StockMovementRepository,
	users repository.UserRepository,
	recorder ActivityRecorder,
) *StockService {
	return &StockService{
		stocks:    stocks,
		movements: movements,
		users:     users,
		recorder:  recorder,
		nowFn:     time.Now,
	}
}

// AdjustStock applies a manual increase or decrease. A decrease larger
// than the available quantity is rejected without writing anything.
func (s *StockService) AdjustStock(ctx context.Context, stockExtID string, req dto.UpdateStockRequest) (*model.Stock, error) {
	if req.Qty < 1 {
		return nil, fmt.Errorf("%w: adjustment quantity must be positive, got %d", ErrInvalidQuantity, req.Qty)
	}

	var updated *model.Stock
	err := runTx(ctx, s.stocks.DB(), func(tx *gorm.DB) error {
		stock, err := s.stocks.FindByExtIDForUpdateTx(tx, stockExtID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: stock %s", ErrNotFound, stockExtID)
			}
			return err
		}

		change := req.Qty
		mvType := model.MovementInbound
		if req.Type == "decrease" {
			if stock.AvailQty < req.Qty {
				return fmt.Errorf("%w: stock %s has %d available, requested decrease of %d",
					ErrInsufficientStock, stockExtID, stock.AvailQty, req.Qty)
			}
			change = -req.Qty
			mvType = model.MovementOutbound
		}

		if err := s.appendMovementTx(tx, stock, mvType, model.SourceStockAdjustment, change, req.UpdatedBy); err != nil {
			return err
		}

		stock.AvailQty += change
		stock.UpdatedBy = &req.UpdatedBy
		if err := s.stocks.SaveTx(tx, stock); err != nil {
			return err
		}
		updated = stock
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(req.UpdatedBy, "stocks", "adjust",
		fmt.Sprintf("Stock %s adjusted (%s %d)", stockExtID, req.Type, req.Qty), stockExtID)
	return updated, nil
}

// ReserveTx removes qty units for a sale line. Must run inside the sale's
// transaction so the whole sale fails atomically when any line is short.
// source must be SALE or LAYAWAY; sold_qty tracks both.
func (s *StockService) ReserveTx(tx *gorm.DB, stockExtID string, qty int, source model.MovementSource, actor string) (*model.Stock, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: reservation quantity must be positive, got %d", ErrInvalidQuantity, qty)
	}
	stock, err := s.stocks.FindByExtIDForUpdateTx(tx, stockExtID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: stock %s", ErrNotFound, stockExtID)
		}
		return nil, err
	}
	if stock.AvailQty < qty {
		return nil, fmt.Errorf("%w: stock %s has %d available, requested %d",
			ErrInsufficientStock, stockExtID, stock.AvailQty, qty)
	}

	if err := s.appendMovementTx(tx, stock, model.MovementOutbound, source, -qty, actor); err != nil {
		return nil, err
	}

	stock.AvailQty -= qty
	if source.Sold() {
		stock.SoldQty += qty
	}
	stock.UpdatedBy = &actor
	if err := s.stocks.SaveTx(tx, stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// ReleaseTx returns qty units to stock when a sale is cancelled, undoing
// the matching reservation's effect on avail_qty and sold_qty.
func (s *StockService) ReleaseTx(tx *gorm.DB, stockExtID string, qty int, actor string) (*model.Stock, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: release quantity must be positive, got %d", ErrInvalidQuantity, qty)
	}
	stock, err := s.stocks.FindByExtIDForUpdateTx(tx, stockExtID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: stock %s", ErrNotFound, stockExtID)
		}
		return nil, err
	}

	if err := s.appendMovementTx(tx, stock, model.MovementInbound, model.SourceCancel, qty, actor); err != nil {
		return nil, err
	}

	stock.AvailQty += qty
	stock.SoldQty -= qty
	if stock.SoldQty < 0 {
		stock.SoldQty = 0
	}
	stock.UpdatedBy = &actor
	if err := s.stocks.SaveTx(tx, stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// CreateInitialTx creates the stock row for a new product along with its
// opening inbound movement.
func (s *StockService) CreateInitialTx(tx *gorm.DB, productExtID string, req dto.InitialStockRequest, isConsigned bool, consignedDate *time.Time, actor string) (*model.Stock, error) {
	stock := &model.Stock{
		ExternalID:    ids.New(ids.PrefixStock),
		ProductExtID:  productExtID,
		IsConsigned:   isConsigned,
		ConsignedDate: consignedDate,
		MinQty:        req.MinQty,
		AvailQty:      0,
		CreatedBy:     actor,
	}
	if err := s.stocks.CreateTx(tx, stock); err != nil {
		return nil, err
	}

	if err := s.appendMovementTx(tx, stock, model.MovementInbound, model.SourceNewProduct, req.QtyInStock, actor); err != nil {
		return nil, err
	}

	stock.AvailQty = req.QtyInStock
	if err := s.stocks.SaveTx(tx, stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// appendMovementTx writes the ledger entry for a quantity change. QtyBefore
// and QtyAfter snapshot the stock row as seen under the row lock.
func (s *StockService) appendMovementTx(tx *gorm.DB, stock *model.Stock, mvType model.MovementType, source model.MovementSource, change int, actor string) error {
	return s.movements.CreateTx(tx, &model.StockMovement{
		ExternalID: ids.New(ids.PrefixStockMovement),
		StockExtID: stock.ExternalID,
		Type:       mvType,
		Source:     source,
		QtyBefore:  stock.AvailQty,
		QtyChange:  change,
		QtyAfter:   stock.AvailQty + change,
		CreatedBy:  actor,
	})
}

// ListMovements returns a stock unit's movement history newest first.
func (s *StockService) ListMovements(ctx context.Context, stockExtID string, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	stock, err := s.stocks.FindByExtID(ctx, stockExtID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: stock %s", ErrNotFound, stockExtID)
		}
		return nil, err
	}

	movements, total, err := s.movements.List(ctx, stockExtID, filter)
	if err != nil {
		return nil, err
	}

	performers := map[string]string{}
	data := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		data = append(data, dto.MovementResponse{
			StockExtID:   m.StockExtID,
			ProductExtID: stock.ProductExtID,
			Type:         string(m.Type),
			Source:       string(m.Source),
			QtyBefore:    m.QtyBefore,
			QtyChange:    m.QtyChange,
			QtyAfter:     m.QtyAfter,
			Status:       movementStatus(m),
			PerformedBy:  s.resolvePerformer(ctx, m.CreatedBy, performers),
			CreatedAt:    m.CreatedAt,
		})
	}
	return &dto.MovementListResponse{
		Data: data,
		Meta: pageMeta(filter.Page, filter.Limit, total),
	}, nil
}

// VerifyLedger replays a stock unit's movements from zero and checks that
// the chain is internally consistent and lands on the stored avail_qty.
func (s *StockService) VerifyLedger(ctx context.Context, stockExtID string) error {
	stock, err := s.stocks.FindByExtID(ctx, stockExtID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: stock %s", ErrNotFound, stockExtID)
		}
		return err
	}

	movements, err := s.movements.ListAll(ctx, stockExtID)
	if err != nil {
		return err
	}

	qty := 0
	for _, m := range movements {
		if m.QtyBefore != qty || m.QtyAfter != qty+m.QtyChange {
			return fmt.Errorf("%w: movement %s breaks the ledger chain", ErrConflict, m.ExternalID)
		}
		qty = m.QtyAfter
	}
	if qty != stock.AvailQty {
		return fmt.Errorf("%w: ledger replays to %d but stock %s holds %d",
			ErrConflict, qty, stockExtID, stock.AvailQty)
	}
	return nil
}

func movementStatus(m model.StockMovement) string {
	if m.QtyChange >= 0 {
		return fmt.Sprintf("Stock increased by %d", m.QtyChange)
	}
	return fmt.Sprintf("Stock decreased by %d", -m.QtyChange)
}

// resolvePerformer maps a stored actor id to the user's display name,
// falling back to the raw value for actors that are not users.
func (s *StockService) resolvePerformer(ctx context.Context, actor string, cache map[string]string) string {
	if name, ok := cache[actor]; ok {
		return name
	}
	name := actor
	if u, err := s.users.FindByExtID(ctx, actor); err == nil {
		name = u.DisplayName()
	}
	cache[actor] = name
	return name
}
