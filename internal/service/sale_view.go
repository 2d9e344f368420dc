package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/model"
)

// saleLineInfo is the catalog detail shown on a sale line, snapshotted
// from the stock unit's product.
type saleLineInfo struct {
	Name        string
	Code        string
	Inclusions  []string
	IsConsigned bool
}

// saleViewData is everything needed to render one sale. Callers prefetch
// it; buildSaleResponse itself performs no I/O.
type saleViewData struct {
	Sale     *model.Sale
	Client   *model.Client
	Items    []model.SaleItem
	Payments []model.PaymentLog
	Layaway  *model.SaleLayaway
	Lines    map[string]saleLineInfo // keyed by stock external id
}

// buildSaleResponse assembles the canonical sale view. The outstanding
// balance is recomputed from the payment ledger on every call and clamped
// at zero; the overdue flag compares dates only, relative to now.
func buildSaleResponse(data saleViewData, now time.Time) dto.SaleResponse {
	sale := data.Sale

	resp := dto.SaleResponse{
		SaleExtID:        sale.ExternalID,
		DatePurchased:    sale.DatePurchased,
		Type:             dto.SaleTypeResponse{Code: string(sale.Type), Description: sale.Type.Description()},
		TotalAmount:      sale.TotalAmount,
		IsDiscounted:     sale.IsDiscounted,
		DiscountPercent:  sale.DiscountPercent,
		DiscountFlatRate: sale.DiscountFlatRate,
		Status:           string(sale.Status),
		CreatedAt:        sale.CreatedAt,
		CreatedBy:        sale.CreatedBy,
		CancelledAt:      sale.CancelledAt,
		CancelledBy:      sale.CancelledBy,
	}

	resp.Customer = dto.CustomerResponse{ExternalID: sale.ClientExtID}
	if data.Client != nil {
		resp.Customer.Name = data.Client.FirstName + " " + data.Client.LastName
	}

	resp.Items = make([]dto.SaleLineResponse, 0, len(data.Items))
	for _, item := range data.Items {
		line := dto.SaleLineResponse{
			StockExtID: item.StockExtID,
			UnitPrice:  item.UnitPrice,
			Qty:        item.Qty,
			Subtotal:   item.Subtotal,
		}
		if info, ok := data.Lines[item.StockExtID]; ok {
			line.Name = info.Name
			line.Code = info.Code
			line.Inclusions = info.Inclusions
			line.IsConsigned = info.IsConsigned
		}
		resp.Items = append(resp.Items, line)
	}

	paid := decimal.Zero
	resp.PaymentHistory = make([]dto.PaymentLogResponse, 0, len(data.Payments))
	for _, p := range data.Payments {
		paid = paid.Add(p.Amount)
		resp.PaymentHistory = append(resp.PaymentHistory, dto.PaymentLogResponse{
			ExternalID:    p.ExternalID,
			Amount:        p.Amount,
			PaymentDate:   p.PaymentDate,
			PaymentMethod: p.PaymentMethod,
		})
	}

	outstanding := sale.TotalAmount.Sub(paid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	resp.OutstandingBalance = outstanding.Round(2)

	if data.Layaway != nil {
		resp.LayawayPlan = &dto.LayawayPlanResponse{
			IsOverdue:      sale.Status == model.SaleStatusDeposit && overdue(data.Layaway.CurrentDueDate, now),
			NoOfMonths:     data.Layaway.NoOfMonths,
			AmountDue:      data.Layaway.AmountDue,
			CurrentDueDate: data.Layaway.CurrentDueDate,
			OrigDueDate:    data.Layaway.OrigDueDate,
			IsExtended:     data.Layaway.IsExtended,
			Status:         string(data.Layaway.Status),
		}
	}
	return resp
}

// saleTotal prices a sale: sum of line subtotals, then the discount. A
// positive percent takes precedence and scales the sum; otherwise a
// positive flat rate subtracts from it. The result is rounded to 2
// decimal places and never negative.
func saleTotal(items []model.SaleItem, isDiscounted bool, percent, flatRate *decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	if isDiscounted {
		switch {
		case percent != nil && percent.IsPositive():
			total = total.Mul(decimal.NewFromInt(100).Sub(*percent)).Div(decimal.NewFromInt(100))
		case flatRate != nil && flatRate.IsPositive():
			total = total.Sub(*flatRate)
		}
	}
	if total.IsNegative() {
		total = decimal.Zero
	}
	return total.Round(2)
}
