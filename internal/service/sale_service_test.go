package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/model"
)

type saleFixture struct {
	svc      *SaleService
	stockSvc *StockService
	sales    *stubSaleRepo
	stocks   *stubStockRepo
	products *stubProductRepo
	clients  *stubClientRepo
}

func newSaleFixture() *saleFixture {
	sales := newStubSaleRepo()
	stocks := newStubStockRepo()
	products := newStubProductRepo()
	clients := newStubClientRepo()
	movements := newStubMovementRepo()
	users := newStubUserRepo()

	stockSvc := NewStockService(stocks, movements, users, NopRecorder{})
	svc := NewSaleService(sales, stocks, products, clients, stockSvc, NopRecorder{})

	clients.put(model.Client{ExternalID: "CL-1", FirstName: "Maria", LastName: "Cruz", CreatedBy: "U-1"})
	products.put(model.Product{
		ExternalID:    "PR-1",
		CategoryExtID: "CAT-1",
		BrandExtID:    "BR-1",
		Name:          "Classic Flap",
		Cost:          decimal.NewFromInt(60),
		Price:         decimal.NewFromInt(100),
		CreatedBy:     "U-1",
	})
	stocks.put(model.Stock{ExternalID: "ST-1", ProductExtID: "PR-1", AvailQty: 10, CreatedBy: "U-1"})

	return &saleFixture{svc: svc, stockSvc: stockSvc, sales: sales, stocks: stocks, products: products, clients: clients}
}

func regularSaleReq(amount decimal.Decimal) dto.CreateSaleRequest {
	return dto.CreateSaleRequest{
		ClientExtID:   "CL-1",
		Type:          "R",
		Items:         []dto.SaleItemRequest{{StockExtID: "ST-1", Qty: 2}},
		Payment:       dto.PaymentRequest{Amount: amount, PaymentDate: time.Now(), PaymentMethod: "cash"},
		DatePurchased: time.Now(),
		CreatedBy:     "U-1",
	}
}

func layawaySaleReq(deposit decimal.Decimal, due time.Time) dto.CreateSaleRequest {
	req := regularSaleReq(deposit)
	req.Type = "L"
	req.Layaway = &dto.LayawayRequest{NoOfMonths: 3, DueDate: due}
	return req
}

func TestCreateRegularSaleFullyPaid(t *testing.T) {
	f := newSaleFixture()

	resp, err := f.svc.CreateSale(context.Background(), regularSaleReq(decimal.NewFromInt(200)))
	require.NoError(t, err)

	assert.Equal(t, string(model.SaleStatusFullyPaid), resp.Status)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(200)))
	assert.True(t, resp.OutstandingBalance.IsZero())
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Classic Flap", resp.Items[0].Name)
	assert.Equal(t, "Maria Cruz", resp.Customer.Name)
	require.Len(t, resp.PaymentHistory, 1)
	assert.Nil(t, resp.LayawayPlan)

	stock := f.stocks.get("ST-1")
	assert.Equal(t, 8, stock.AvailQty)
	assert.Equal(t, 2, stock.SoldQty)

	payments, _ := f.sales.FindPayments(context.Background(), resp.SaleExtID)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].IsFinalPayment)
	assert.False(t, payments[0].IsDeposit)
}

func TestCreateRegularSalePartialPaymentRejected(t *testing.T) {
	f := newSaleFixture()

	_, err := f.svc.CreateSale(context.Background(), regularSaleReq(decimal.NewFromInt(150)))
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateLayawayDeposit(t *testing.T) {
	f := newSaleFixture()
	due := time.Now().AddDate(0, 3, 0)

	resp, err := f.svc.CreateSale(context.Background(), layawaySaleReq(decimal.NewFromInt(50), due))
	require.NoError(t, err)

	assert.Equal(t, string(model.SaleStatusDeposit), resp.Status)
	assert.True(t, resp.OutstandingBalance.Equal(decimal.NewFromInt(150)))
	require.NotNil(t, resp.LayawayPlan)
	assert.True(t, resp.LayawayPlan.AmountDue.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, string(model.LayawayStatusUnpaid), resp.LayawayPlan.Status)
	assert.False(t, resp.LayawayPlan.IsOverdue)

	payments, _ := f.sales.FindPayments(context.Background(), resp.SaleExtID)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].IsDeposit)
	assert.False(t, payments[0].IsFinalPayment)

	// sold via layaway still counts as sold stock
	stock := f.stocks.get("ST-1")
	assert.Equal(t, 8, stock.AvailQty)
	assert.Equal(t, 2, stock.SoldQty)
}

func TestCreateSaleLayawayPlanRules(t *testing.T) {
	f := newSaleFixture()

	// layaway without a plan
	req := regularSaleReq(decimal.NewFromInt(50))
	req.Type = "L"
	_, err := f.svc.CreateSale(context.Background(), req)
	require.ErrorIs(t, err, ErrValidation)

	// regular with a plan
	req = layawaySaleReq(decimal.NewFromInt(200), time.Now().AddDate(0, 1, 0))
	req.Type = "R"
	_, err = f.svc.CreateSale(context.Background(), req)
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateSaleInsufficientLineAbortsSale(t *testing.T) {
	f := newSaleFixture()
	f.stocks.put(model.Stock{ExternalID: "ST-2", ProductExtID: "PR-1", AvailQty: 1, CreatedBy: "U-1"})

	req := regularSaleReq(decimal.NewFromInt(400))
	req.Items = []dto.SaleItemRequest{
		{StockExtID: "ST-1", Qty: 2},
		{StockExtID: "ST-2", Qty: 2}, // only 1 available
	}
	_, err := f.svc.CreateSale(context.Background(), req)
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "ST-2 (requested: 2, available: 1)")

	// no sale record was written, no stock reserved
	sales, _, _ := f.sales.List(context.Background(), dto.SaleFilter{})
	assert.Empty(t, sales)
	assert.Equal(t, 10, f.stocks.get("ST-1").AvailQty)
}

func TestCreateSaleEnumeratesEveryShortLine(t *testing.T) {
	f := newSaleFixture()
	f.stocks.put(model.Stock{ExternalID: "ST-2", ProductExtID: "PR-1", AvailQty: 1, CreatedBy: "U-1"})

	req := regularSaleReq(decimal.NewFromInt(400))
	req.Items = []dto.SaleItemRequest{
		{StockExtID: "ST-1", Qty: 20},
		{StockExtID: "ST-2", Qty: 2},
	}
	_, err := f.svc.CreateSale(context.Background(), req)
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "ST-1 (requested: 20, available: 10)")
	assert.Contains(t, err.Error(), "ST-2 (requested: 2, available: 1)")
}

func TestCreateSaleDiscounts(t *testing.T) {
	f := newSaleFixture()

	// percent wins over the flat rate when both are given
	pct := decimal.NewFromInt(10)
	flat := decimal.NewFromInt(50)
	req := regularSaleReq(decimal.NewFromInt(180))
	req.IsDiscounted = true
	req.DiscountPercent = &pct
	req.DiscountFlatRate = &flat

	resp, err := f.svc.CreateSale(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(180)),
		"10%% off 200 should be 180, got %s", resp.TotalAmount)
}

func TestCreateSaleDiscountValidation(t *testing.T) {
	f := newSaleFixture()
	pct := decimal.NewFromInt(10)
	flat := decimal.NewFromInt(20)

	// discounted sales need both fields
	req := regularSaleReq(decimal.NewFromInt(200))
	req.IsDiscounted = true
	req.DiscountPercent = &pct
	_, err := f.svc.CreateSale(context.Background(), req)
	require.ErrorIs(t, err, ErrValidation)

	req = regularSaleReq(decimal.NewFromInt(200))
	req.IsDiscounted = true
	req.DiscountFlatRate = &flat
	_, err = f.svc.CreateSale(context.Background(), req)
	require.ErrorIs(t, err, ErrValidation)

	over := decimal.NewFromInt(120)
	req = regularSaleReq(decimal.NewFromInt(200))
	req.IsDiscounted = true
	req.DiscountPercent = &over
	req.DiscountFlatRate = &flat
	_, err = f.svc.CreateSale(context.Background(), req)
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateSaleClearsDiscountFieldsWhenNotDiscounted(t *testing.T) {
	f := newSaleFixture()
	flat := decimal.NewFromInt(20)

	req := regularSaleReq(decimal.NewFromInt(200))
	req.DiscountFlatRate = &flat

	resp, err := f.svc.CreateSale(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(200)),
		"stray discount values must not change the total, got %s", resp.TotalAmount)
	assert.Nil(t, resp.DiscountPercent)
	assert.Nil(t, resp.DiscountFlatRate)
}

func TestCreateSaleDuplicateLinesRejected(t *testing.T) {
	f := newSaleFixture()

	req := regularSaleReq(decimal.NewFromInt(300))
	req.Items = []dto.SaleItemRequest{
		{StockExtID: "ST-1", Qty: 2},
		{StockExtID: "ST-1", Qty: 1},
	}
	_, err := f.svc.CreateSale(context.Background(), req)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "ST-1")

	// nothing reserved, nothing written
	stock := f.stocks.get("ST-1")
	assert.Equal(t, 10, stock.AvailQty)
	sales, _, _ := f.sales.List(context.Background(), dto.SaleFilter{})
	assert.Empty(t, sales)
}

func TestRecordPaymentPartialThenFinal(t *testing.T) {
	f := newSaleFixture()
	created, err := f.svc.CreateSale(context.Background(),
		layawaySaleReq(decimal.NewFromInt(50), time.Now().AddDate(0, 3, 0)))
	require.NoError(t, err)

	pay := func(amount int64) (*dto.SaleResponse, error) {
		return f.svc.RecordPayment(context.Background(), dto.RecordPaymentRequest{
			SaleExtID: created.SaleExtID,
			Payment: dto.PaymentRequest{
				Amount: decimal.NewFromInt(amount), PaymentDate: time.Now(), PaymentMethod: "cash",
			},
			CreatedBy: "U-1",
		})
	}

	resp, err := pay(100)
	require.NoError(t, err)
	assert.Equal(t, string(model.SaleStatusDeposit), resp.Status)
	assert.True(t, resp.OutstandingBalance.Equal(decimal.NewFromInt(50)))
	assert.True(t, resp.LayawayPlan.AmountDue.Equal(decimal.NewFromInt(50)))

	resp, err = pay(50)
	require.NoError(t, err)
	assert.Equal(t, string(model.SaleStatusFullyPaid), resp.Status)
	assert.True(t, resp.OutstandingBalance.IsZero())
	assert.Equal(t, string(model.LayawayStatusPaid), resp.LayawayPlan.Status)

	payments, _ := f.sales.FindPayments(context.Background(), created.SaleExtID)
	require.Len(t, payments, 3)
	final := payments[len(payments)-1]
	assert.True(t, final.IsFinalPayment)
}

func TestRecordPaymentNeverExceedsTotal(t *testing.T) {
	f := newSaleFixture()
	created, err := f.svc.CreateSale(context.Background(),
		layawaySaleReq(decimal.NewFromInt(50), time.Now().AddDate(0, 3, 0)))
	require.NoError(t, err)

	_, err = f.svc.RecordPayment(context.Background(), dto.RecordPaymentRequest{
		SaleExtID: created.SaleExtID,
		Payment: dto.PaymentRequest{
			Amount: decimal.NewFromInt(151), PaymentDate: time.Now(), PaymentMethod: "cash",
		},
		CreatedBy: "U-1",
	})
	require.ErrorIs(t, err, ErrPaymentExceedsBalance)

	// ledger untouched
	payments, _ := f.sales.FindPayments(context.Background(), created.SaleExtID)
	assert.Len(t, payments, 1)
}

func TestRecordPaymentOnSettledSale(t *testing.T) {
	f := newSaleFixture()
	// layaway paid in full at creation lands directly on Fully paid
	created, err := f.svc.CreateSale(context.Background(),
		layawaySaleReq(decimal.NewFromInt(200), time.Now().AddDate(0, 3, 0)))
	require.NoError(t, err)
	require.Equal(t, string(model.SaleStatusFullyPaid), created.Status)

	_, err = f.svc.RecordPayment(context.Background(), dto.RecordPaymentRequest{
		SaleExtID: created.SaleExtID,
		Payment: dto.PaymentRequest{
			Amount: decimal.NewFromInt(10), PaymentDate: time.Now(), PaymentMethod: "cash",
		},
		CreatedBy: "U-1",
	})
	require.ErrorIs(t, err, ErrNoOutstandingBalance)

	// the rejected payment never reaches the ledger
	payments, _ := f.sales.FindPayments(context.Background(), created.SaleExtID)
	assert.Len(t, payments, 1)
}

func TestRecordPaymentSettlesDriftedStatus(t *testing.T) {
	f := newSaleFixture()
	// a sale whose ledger already covers the total but whose status never
	// caught up; the rejected payment settles it
	_ = f.sales.CreateTx(nil, &model.Sale{
		ExternalID: "S-drift", ClientExtID: "CL-1",
		Type: model.SaleTypeLayaway, Status: model.SaleStatusDeposit,
		TotalAmount: decimal.NewFromInt(100), CreatedBy: "U-1",
	})
	_ = f.sales.CreatePaymentTx(nil, &model.PaymentLog{
		ExternalID: "P-drift", SaleExtID: "S-drift",
		Amount: decimal.NewFromInt(100), CreatedBy: "U-1",
	})
	_ = f.sales.CreateLayawayTx(nil, &model.SaleLayaway{
		SaleExtID: "S-drift", NoOfMonths: 3,
		AmountDue: decimal.NewFromInt(100), Status: model.LayawayStatusUnpaid,
		CurrentDueDate: time.Now().AddDate(0, 3, 0), OrigDueDate: time.Now().AddDate(0, 3, 0),
		CreatedBy: "U-1",
	})

	_, err := f.svc.RecordPayment(context.Background(), dto.RecordPaymentRequest{
		SaleExtID: "S-drift",
		Payment: dto.PaymentRequest{
			Amount: decimal.NewFromInt(10), PaymentDate: time.Now(), PaymentMethod: "cash",
		},
		CreatedBy: "U-1",
	})
	require.ErrorIs(t, err, ErrNoOutstandingBalance)

	sale, _ := f.sales.FindByExtID(context.Background(), "S-drift")
	assert.Equal(t, model.SaleStatusFullyPaid, sale.Status)
	layaway, _ := f.sales.FindLayaway(context.Background(), "S-drift")
	assert.Equal(t, model.LayawayStatusPaid, layaway.Status)
	assert.True(t, layaway.AmountDue.IsZero())
	payments, _ := f.sales.FindPayments(context.Background(), "S-drift")
	assert.Len(t, payments, 1)
}

func TestRecordPaymentOnRegularSaleRejected(t *testing.T) {
	f := newSaleFixture()
	created, err := f.svc.CreateSale(context.Background(), regularSaleReq(decimal.NewFromInt(200)))
	require.NoError(t, err)

	_, err = f.svc.RecordPayment(context.Background(), dto.RecordPaymentRequest{
		SaleExtID: created.SaleExtID,
		Payment: dto.PaymentRequest{
			Amount: decimal.NewFromInt(10), PaymentDate: time.Now(), PaymentMethod: "cash",
		},
		CreatedBy: "U-1",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestRecordPaymentOnCancelledSale(t *testing.T) {
	f := newSaleFixture()
	created, err := f.svc.CreateSale(context.Background(),
		layawaySaleReq(decimal.NewFromInt(50), time.Now().AddDate(0, 3, 0)))
	require.NoError(t, err)

	_, err = f.svc.CancelSale(context.Background(), dto.CancelSaleRequest{
		SaleExtID: created.SaleExtID, CancelledBy: "U-1",
	})
	require.NoError(t, err)

	_, err = f.svc.RecordPayment(context.Background(), dto.RecordPaymentRequest{
		SaleExtID: created.SaleExtID,
		Payment: dto.PaymentRequest{
			Amount: decimal.NewFromInt(10), PaymentDate: time.Now(), PaymentMethod: "cash",
		},
		CreatedBy: "U-1",
	})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelSaleReleasesStockExactlyOnce(t *testing.T) {
	f := newSaleFixture()
	created, err := f.svc.CreateSale(context.Background(),
		layawaySaleReq(decimal.NewFromInt(50), time.Now().AddDate(0, 3, 0)))
	require.NoError(t, err)

	resp, err := f.svc.CancelSale(context.Background(), dto.CancelSaleRequest{
		SaleExtID: created.SaleExtID, CancelledBy: "U-2",
	})
	require.NoError(t, err)
	assert.Equal(t, string(model.SaleStatusCancelled), resp.Status)
	require.NotNil(t, resp.CancelledBy)
	assert.Equal(t, "U-2", *resp.CancelledBy)

	stock := f.stocks.get("ST-1")
	assert.Equal(t, 10, stock.AvailQty)
	assert.Equal(t, 0, stock.SoldQty)

	// second cancel is rejected and must not release stock again
	_, err = f.svc.CancelSale(context.Background(), dto.CancelSaleRequest{
		SaleExtID: created.SaleExtID, CancelledBy: "U-2",
	})
	require.ErrorIs(t, err, ErrInvalidTransition)

	stock = f.stocks.get("ST-1")
	assert.Equal(t, 10, stock.AvailQty)
	assert.Equal(t, 0, stock.SoldQty)
}

func TestCancelKeepsPaymentLedger(t *testing.T) {
	f := newSaleFixture()
	created, err := f.svc.CreateSale(context.Background(),
		layawaySaleReq(decimal.NewFromInt(50), time.Now().AddDate(0, 3, 0)))
	require.NoError(t, err)

	resp, err := f.svc.CancelSale(context.Background(), dto.CancelSaleRequest{
		SaleExtID: created.SaleExtID, CancelledBy: "U-1",
	})
	require.NoError(t, err)
	require.Len(t, resp.PaymentHistory, 1)
}

func TestExtendDueDate(t *testing.T) {
	f := newSaleFixture()
	due := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	created, err := f.svc.CreateSale(context.Background(),
		layawaySaleReq(decimal.NewFromInt(50), due))
	require.NoError(t, err)

	// earlier than current due date
	_, err = f.svc.ExtendDueDate(context.Background(), created.SaleExtID, dto.ExtendDueDateRequest{
		DueDate: due.AddDate(0, 0, -1), UpdatedBy: "U-1",
	})
	require.ErrorIs(t, err, ErrValidation)

	newDue := due.AddDate(0, 1, 0)
	resp, err := f.svc.ExtendDueDate(context.Background(), created.SaleExtID, dto.ExtendDueDateRequest{
		DueDate: newDue, UpdatedBy: "U-1",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.LayawayPlan)
	assert.True(t, resp.LayawayPlan.IsExtended)
	assert.True(t, resp.LayawayPlan.CurrentDueDate.Equal(newDue))
	// original due date is immutable
	assert.True(t, resp.LayawayPlan.OrigDueDate.Equal(due))
}

func TestExtendDueDateOnlyForDepositLayaways(t *testing.T) {
	f := newSaleFixture()
	created, err := f.svc.CreateSale(context.Background(), regularSaleReq(decimal.NewFromInt(200)))
	require.NoError(t, err)

	_, err = f.svc.ExtendDueDate(context.Background(), created.SaleExtID, dto.ExtendDueDateRequest{
		DueDate: time.Now().AddDate(0, 1, 0), UpdatedBy: "U-1",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateSaleUnknownClient(t *testing.T) {
	f := newSaleFixture()
	req := regularSaleReq(decimal.NewFromInt(200))
	req.ClientExtID = "CL-missing"
	_, err := f.svc.CreateSale(context.Background(), req)
	require.ErrorIs(t, err, ErrNotFound)
}
