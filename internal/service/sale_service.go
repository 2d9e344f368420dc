package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/ids"
	"github.com/tddymnbt/CRCMS-API/internal/model"
	"github.com/tddymnbt/CRCMS-API/internal/repository"
)

// SaleService runs the sales transactions: creation, payments, cancellation
// and layaway due-date extensions. Every mutating operation executes as one
// database transaction under the relevant row locks, with a bounded retry
// on lock conflicts.
type SaleService struct {
	sales    repository.SaleRepository
	stocks   repository.StockRepository
	products repository.ProductRepository
	clients  repository.ClientRepository
	stockSvc *StockService
	recorder ActivityRecorder
	nowFn    nowFunc
}

func NewSaleService(
	sales repository.SaleRepository,
	stocks repository.StockRepository,
	products repository.ProductRepository,
	clients repository.ClientRepository,
	stockSvc *StockService,
	recorder ActivityRecorder,
) *SaleService {
	return &SaleService{
		sales:    sales,
		stocks:   stocks,
		products: products,
		clients:  clients,
		stockSvc: stockSvc,
		recorder: recorder,
		nowFn:    time.Now,
	}
}

// CreateSale registers a sale. The request is validated as a whole first
// (duplicate lines, shortages across every line), then stock is reserved
// under row locks inside one transaction: either all lines commit or none
// do, and a single short line aborts the whole sale.
func (s *SaleService) CreateSale(ctx context.Context, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	saleType := model.SaleType(req.Type)
	if !saleType.Valid() {
		return nil, fmt.Errorf("%w: unknown sale type %q", ErrValidation, req.Type)
	}
	if saleType == model.SaleTypeLayaway && req.Layaway == nil {
		return nil, fmt.Errorf("%w: layaway sales require a layaway plan", ErrValidation)
	}
	if saleType == model.SaleTypeRegular && req.Layaway != nil {
		return nil, fmt.Errorf("%w: regular sales cannot carry a layaway plan", ErrValidation)
	}
	if err := normalizeDiscount(&req); err != nil {
		return nil, err
	}
	if !req.Payment.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrValidation)
	}

	if _, err := s.clients.FindByExtID(ctx, req.ClientExtID); err != nil {
		return nil, refErr(err, "client", req.ClientExtID)
	}
	if err := s.validateLines(ctx, req.Items); err != nil {
		return nil, err
	}

	source := model.SourceSale
	if saleType == model.SaleTypeLayaway {
		source = model.SourceLayaway
	}

	var sale *model.Sale
	err := withTxRetry(ctx, func() error {
		return runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
			items := make([]model.SaleItem, 0, len(req.Items))
			saleExtID := ids.New(ids.PrefixSale)

			for _, line := range req.Items {
				stock, err := s.stockSvc.ReserveTx(tx, line.StockExtID, line.Qty, source, req.CreatedBy)
				if err != nil {
					return err
				}
				product, err := s.products.FindByExtID(ctx, stock.ProductExtID)
				if err != nil {
					return refErr(err, "product", stock.ProductExtID)
				}
				items = append(items, model.SaleItem{
					ExternalID: ids.New(ids.PrefixSaleItem),
					SaleExtID:  saleExtID,
					StockExtID: line.StockExtID,
					Qty:        line.Qty,
					UnitPrice:  product.Price,
					Subtotal:   product.Price.Mul(decimal.NewFromInt(int64(line.Qty))).Round(2),
					CreatedBy:  req.CreatedBy,
				})
			}

			total := saleTotal(items, req.IsDiscounted, req.DiscountPercent, req.DiscountFlatRate)
			if req.Payment.Amount.GreaterThan(total) {
				return fmt.Errorf("%w: payment %s exceeds sale total %s",
					ErrPaymentExceedsBalance, req.Payment.Amount.StringFixed(2), total.StringFixed(2))
			}

			status := model.SaleStatusFullyPaid
			if saleType == model.SaleTypeRegular {
				if !req.Payment.Amount.Equal(total) {
					return fmt.Errorf("%w: regular sales must be paid in full (%s of %s)",
						ErrValidation, req.Payment.Amount.StringFixed(2), total.StringFixed(2))
				}
			} else if req.Payment.Amount.LessThan(total) {
				status = model.SaleStatusDeposit
			}

			sale = &model.Sale{
				ExternalID:       saleExtID,
				ClientExtID:      req.ClientExtID,
				Type:             saleType,
				TotalAmount:      total,
				IsDiscounted:     req.IsDiscounted,
				DiscountPercent:  req.DiscountPercent,
				DiscountFlatRate: req.DiscountFlatRate,
				DatePurchased:    req.DatePurchased,
				Status:           status,
				CreatedBy:        req.CreatedBy,
			}
			if err := s.sales.CreateTx(tx, sale); err != nil {
				return err
			}
			if err := s.sales.CreateItemsTx(tx, items); err != nil {
				return err
			}

			payment := &model.PaymentLog{
				ExternalID:     ids.New(ids.PrefixPayment),
				SaleExtID:      saleExtID,
				Amount:         req.Payment.Amount,
				PaymentDate:    req.Payment.PaymentDate,
				PaymentMethod:  req.Payment.PaymentMethod,
				IsDeposit:      status == model.SaleStatusDeposit,
				IsFinalPayment: status == model.SaleStatusFullyPaid,
				CreatedBy:      req.CreatedBy,
			}
			if err := s.sales.CreatePaymentTx(tx, payment); err != nil {
				return err
			}

			if saleType == model.SaleTypeLayaway {
				due := total.Sub(req.Payment.Amount).Round(2)
				layawayStatus := model.LayawayStatusUnpaid
				var paidDate *time.Time
				if status == model.SaleStatusFullyPaid {
					layawayStatus = model.LayawayStatusPaid
					d := req.Payment.PaymentDate
					paidDate = &d
				}
				layaway := &model.SaleLayaway{
					SaleExtID:      saleExtID,
					NoOfMonths:     req.Layaway.NoOfMonths,
					AmountDue:      due,
					PaymentDate:    paidDate,
					CurrentDueDate: req.Layaway.DueDate,
					OrigDueDate:    req.Layaway.DueDate,
					Status:         layawayStatus,
					CreatedBy:      req.CreatedBy,
				}
				if err := s.sales.CreateLayawayTx(tx, layaway); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(req.CreatedBy, "sales", "create",
		fmt.Sprintf("Sale %s (%s) created for %s", sale.ExternalID, sale.Type.Description(), sale.TotalAmount.StringFixed(2)),
		sale.ExternalID)
	return s.FindOne(ctx, sale.ExternalID)
}

// RecordPayment appends a payment to a layaway sale's ledger. The sale
// row is locked so the outstanding balance is read and settled atomically:
// two concurrent payments can never overpay the sale between them.
func (s *SaleService) RecordPayment(ctx context.Context, req dto.RecordPaymentRequest) (*dto.SaleResponse, error) {
	if !req.Payment.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrValidation)
	}

	var settled bool
	err := withTxRetry(ctx, func() error {
		settled = false
		return runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
			sale, err := s.sales.FindByExtIDForUpdateTx(tx, req.SaleExtID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: sale %s", ErrNotFound, req.SaleExtID)
				}
				return err
			}
			if sale.Status == model.SaleStatusCancelled {
				return fmt.Errorf("%w: sale %s is cancelled", ErrInvalidTransition, req.SaleExtID)
			}
			if sale.Type != model.SaleTypeLayaway {
				return fmt.Errorf("%w: sale %s is not a layaway sale", ErrValidation, req.SaleExtID)
			}

			payments, err := s.sales.FindPaymentsTx(tx, req.SaleExtID)
			if err != nil {
				return err
			}
			paid := decimal.Zero
			for _, p := range payments {
				paid = paid.Add(p.Amount)
			}
			outstanding := sale.TotalAmount.Sub(paid)
			if !outstanding.IsPositive() {
				// Nothing owed: reject the payment, but settle any status
				// drift before doing so. The repair commits even though the
				// payment is refused.
				settled = true
				if sale.Status != model.SaleStatusFullyPaid {
					sale.Status = model.SaleStatusFullyPaid
					if err := s.sales.SaveTx(tx, sale); err != nil {
						return err
					}
					layaway, err := s.sales.FindLayawayTx(tx, req.SaleExtID)
					if err != nil {
						if errors.Is(err, gorm.ErrRecordNotFound) {
							return fmt.Errorf("%w: layaway plan for sale %s", ErrNotFound, req.SaleExtID)
						}
						return err
					}
					layaway.AmountDue = decimal.Zero
					layaway.Status = model.LayawayStatusPaid
					layaway.UpdatedBy = &req.CreatedBy
					if err := s.sales.SaveLayawayTx(tx, layaway); err != nil {
						return err
					}
				}
				return nil
			}
			if req.Payment.Amount.GreaterThan(outstanding) {
				return fmt.Errorf("%w: payment %s exceeds outstanding %s",
					ErrPaymentExceedsBalance, req.Payment.Amount.StringFixed(2), outstanding.StringFixed(2))
			}

			isFinal := req.Payment.Amount.Equal(outstanding)
			payment := &model.PaymentLog{
				ExternalID:     ids.New(ids.PrefixPayment),
				SaleExtID:      req.SaleExtID,
				Amount:         req.Payment.Amount,
				PaymentDate:    req.Payment.PaymentDate,
				PaymentMethod:  req.Payment.PaymentMethod,
				IsFinalPayment: isFinal,
				CreatedBy:      req.CreatedBy,
			}
			if err := s.sales.CreatePaymentTx(tx, payment); err != nil {
				return err
			}

			if isFinal {
				sale.Status = model.SaleStatusFullyPaid
				if err := s.sales.SaveTx(tx, sale); err != nil {
					return err
				}
			}

			layaway, err := s.sales.FindLayawayTx(tx, req.SaleExtID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: layaway plan for sale %s", ErrNotFound, req.SaleExtID)
				}
				return err
			}
			layaway.AmountDue = outstanding.Sub(req.Payment.Amount).Round(2)
			d := req.Payment.PaymentDate
			layaway.PaymentDate = &d
			layaway.UpdatedBy = &req.CreatedBy
			if isFinal {
				layaway.Status = model.LayawayStatusPaid
			}
			if err := s.sales.SaveLayawayTx(tx, layaway); err != nil {
				return err
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if settled {
		return nil, fmt.Errorf("%w: sale %s", ErrNoOutstandingBalance, req.SaleExtID)
	}

	s.recorder.Record(req.CreatedBy, "sales", "payment",
		fmt.Sprintf("Payment of %s recorded against sale %s", req.Payment.Amount.StringFixed(2), req.SaleExtID),
		req.SaleExtID)
	return s.FindOne(ctx, req.SaleExtID)
}

// CancelSale voids a sale and returns its reserved stock. The sale row
// lock makes the release happen exactly once: a second cancel finds the
// sale already Cancelled and is rejected. Recorded payments stay on the
// ledger; refunds are handled outside the system.
func (s *SaleService) CancelSale(ctx context.Context, req dto.CancelSaleRequest) (*dto.SaleResponse, error) {
	err := withTxRetry(ctx, func() error {
		return runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
			sale, err := s.sales.FindByExtIDForUpdateTx(tx, req.SaleExtID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: sale %s", ErrNotFound, req.SaleExtID)
				}
				return err
			}
			if sale.Status == model.SaleStatusCancelled {
				return fmt.Errorf("%w: sale %s is already cancelled", ErrInvalidTransition, req.SaleExtID)
			}

			items, err := s.sales.FindItems(ctx, req.SaleExtID)
			if err != nil {
				return err
			}
			for _, item := range items {
				if _, err := s.stockSvc.ReleaseTx(tx, item.StockExtID, item.Qty, req.CancelledBy); err != nil {
					return err
				}
			}

			now := s.nowFn()
			sale.Status = model.SaleStatusCancelled
			sale.CancelledAt = &now
			sale.CancelledBy = &req.CancelledBy
			return s.sales.SaveTx(tx, sale)
		})
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(req.CancelledBy, "sales", "cancel",
		fmt.Sprintf("Sale %s cancelled", req.SaleExtID), req.SaleExtID)
	return s.FindOne(ctx, req.SaleExtID)
}

// ExtendDueDate moves a layaway plan's current due date forward. Only
// layaway sales still in Deposit can be extended, and the new date must be
// later than the current one. The original due date never changes.
func (s *SaleService) ExtendDueDate(ctx context.Context, saleExtID string, req dto.ExtendDueDateRequest) (*dto.SaleResponse, error) {
	err := withTxRetry(ctx, func() error {
		return runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
			sale, err := s.sales.FindByExtIDForUpdateTx(tx, saleExtID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: sale %s", ErrNotFound, saleExtID)
				}
				return err
			}
			if sale.Type != model.SaleTypeLayaway {
				return fmt.Errorf("%w: sale %s is not a layaway sale", ErrValidation, saleExtID)
			}
			if sale.Status != model.SaleStatusDeposit {
				return fmt.Errorf("%w: sale %s is %s", ErrInvalidTransition, saleExtID, sale.Status)
			}

			layaway, err := s.sales.FindLayawayTx(tx, saleExtID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: layaway plan for sale %s", ErrNotFound, saleExtID)
				}
				return err
			}
			if !req.DueDate.After(layaway.CurrentDueDate) {
				return fmt.Errorf("%w: new due date must be after the current due date", ErrValidation)
			}

			layaway.CurrentDueDate = req.DueDate
			layaway.IsExtended = true
			layaway.UpdatedBy = &req.UpdatedBy
			return s.sales.SaveLayawayTx(tx, layaway)
		})
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(req.UpdatedBy, "sales", "extend",
		fmt.Sprintf("Due date of sale %s extended to %s", saleExtID, req.DueDate.Format("2006-01-02")),
		saleExtID)
	return s.FindOne(ctx, saleExtID)
}

// FindOne returns the full sale view: customer, lines, payment history and
// layaway plan.
func (s *SaleService) FindOne(ctx context.Context, saleExtID string) (*dto.SaleResponse, error) {
	sale, err := s.sales.FindByExtID(ctx, saleExtID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: sale %s", ErrNotFound, saleExtID)
		}
		return nil, err
	}
	resp, err := s.assemble(ctx, sale)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// FindAll lists sales matching the filter, each rendered as the full view.
func (s *SaleService) FindAll(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Mode == "CT" && filter.ClientExtID == "" {
		return nil, fmt.Errorf("%w: client_ext_id is required for client transactions", ErrValidation)
	}

	sales, total, err := s.sales.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	data := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		resp, err := s.assemble(ctx, &sales[i])
		if err != nil {
			return nil, err
		}
		data = append(data, *resp)
	}
	return &dto.SaleListResponse{
		Data: data,
		Meta: pageMeta(filter.Page, filter.Limit, total),
	}, nil
}

func (s *SaleService) assemble(ctx context.Context, sale *model.Sale) (*dto.SaleResponse, error) {
	data := saleViewData{Sale: sale, Lines: map[string]saleLineInfo{}}

	if client, err := s.clients.FindByExtID(ctx, sale.ClientExtID); err == nil {
		data.Client = client
	}

	var err error
	if data.Items, err = s.sales.FindItems(ctx, sale.ExternalID); err != nil {
		return nil, err
	}
	if data.Payments, err = s.sales.FindPayments(ctx, sale.ExternalID); err != nil {
		return nil, err
	}
	if sale.Type == model.SaleTypeLayaway {
		layaway, err := s.sales.FindLayaway(ctx, sale.ExternalID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		data.Layaway = layaway
	}

	for _, item := range data.Items {
		if _, ok := data.Lines[item.StockExtID]; ok {
			continue
		}
		stock, err := s.stocks.FindByExtID(ctx, item.StockExtID)
		if err != nil {
			continue
		}
		product, err := s.products.FindByExtID(ctx, stock.ProductExtID)
		if err != nil {
			continue
		}
		info := saleLineInfo{
			Name:        product.Name,
			Inclusions:  product.Inclusions,
			IsConsigned: stock.IsConsigned,
		}
		if product.Code != nil {
			info.Code = *product.Code
		}
		data.Lines[item.StockExtID] = info
	}

	resp := buildSaleResponse(data, s.nowFn())
	return &resp, nil
}

// normalizeDiscount enforces the discount shape: both fields are cleared
// when the sale is not discounted, and both are required when it is.
// Percent must stay within [0, 100] and the flat rate non-negative.
func normalizeDiscount(req *dto.CreateSaleRequest) error {
	if !req.IsDiscounted {
		req.DiscountPercent = nil
		req.DiscountFlatRate = nil
		return nil
	}
	if req.DiscountPercent == nil {
		return fmt.Errorf("%w: discount_percent is required on a discounted sale", ErrValidation)
	}
	if req.DiscountFlatRate == nil {
		return fmt.Errorf("%w: discount_flat_rate is required on a discounted sale", ErrValidation)
	}
	if req.DiscountPercent.IsNegative() || req.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: discount_percent must be between 0 and 100", ErrValidation)
	}
	if req.DiscountFlatRate.IsNegative() {
		return fmt.Errorf("%w: discount_flat_rate must not be negative", ErrValidation)
	}
	return nil
}

// validateLines checks the whole request before anything is reserved:
// duplicate lines are rejected and every quantity is compared against
// available stock, so the error names all offending lines at once. The
// reads here are unlocked; ReserveTx re-checks under the row lock.
func (s *SaleService) validateLines(ctx context.Context, items []dto.SaleItemRequest) error {
	seen := make(map[string]bool, len(items))
	var duplicates, missing, short []string
	for _, line := range items {
		if seen[line.StockExtID] {
			duplicates = append(duplicates, line.StockExtID)
			continue
		}
		seen[line.StockExtID] = true

		stock, err := s.stocks.FindByExtID(ctx, line.StockExtID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				missing = append(missing, line.StockExtID)
				continue
			}
			return err
		}
		if line.Qty > stock.AvailQty {
			short = append(short, fmt.Sprintf("%s (requested: %d, available: %d)",
				line.StockExtID, line.Qty, stock.AvailQty))
		}
	}
	if len(duplicates) > 0 {
		return fmt.Errorf("%w: duplicate stock_ext_id(s): %s", ErrValidation, strings.Join(duplicates, ", "))
	}
	if len(short) > 0 {
		return fmt.Errorf("%w: %s", ErrInsufficientStock, strings.Join(short, ", "))
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: stock(s) %s", ErrNotFound, strings.Join(missing, ", "))
	}
	return nil
}
