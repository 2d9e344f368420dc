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
	"github.com/tddymnbt/CRCMS-API/internal/repository"
)

func TestSalesStatsCustomRange(t *testing.T) {
	stats := newStubStatsRepo()
	stats.totals[model.SaleStatusFullyPaid] = repository.StatusTotals{
		TotalAmount: decimal.NewFromInt(500), TotalCount: 3,
	}
	stats.totals[model.SaleStatusDeposit] = repository.StatusTotals{
		TotalAmount: decimal.NewFromInt(120), TotalCount: 2,
	}
	svc := NewStatsService(stats)

	resp, err := svc.SalesStats(context.Background(), dto.StatsFilter{
		Mode: "A", DateFrom: "2026-08-01", DateTo: "2026-08-31",
	})
	require.NoError(t, err)

	require.NotNil(t, resp.DataRange)
	require.NotNil(t, resp.RangePaidSales)
	assert.True(t, resp.RangePaidSales.TotalAmount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, int64(3), resp.RangePaidSales.TotalCount)
	// pending bucket reflects money still owed, not face value
	assert.True(t, resp.RangePendingSales.TotalAmount.Equal(decimal.NewFromInt(120)))
	// series buckets are omitted when a range is given
	assert.Nil(t, resp.PaidSales)
}

func TestSalesStatsSeries(t *testing.T) {
	stats := newStubStatsRepo()
	stats.totals[model.SaleStatusCancelled] = repository.StatusTotals{
		TotalAmount: decimal.NewFromInt(90), TotalCount: 1,
	}
	svc := NewStatsService(stats)
	svc.nowFn = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }

	resp, err := svc.SalesStats(context.Background(), dto.StatsFilter{Mode: "A"})
	require.NoError(t, err)

	assert.Nil(t, resp.DataRange)
	require.NotNil(t, resp.CancelledSales)
	assert.Equal(t, int64(1), resp.CancelledSales.Total.TotalCount)
}

func TestSalesStatsInvalidRange(t *testing.T) {
	svc := NewStatsService(newStubStatsRepo())

	_, err := svc.SalesStats(context.Background(), dto.StatsFilter{
		DateFrom: "2026-08-31", DateTo: "2026-08-01",
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.SalesStats(context.Background(), dto.StatsFilter{DateFrom: "not-a-date"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCustomerFrequencySplitsNewAndRepeat(t *testing.T) {
	stats := newStubStatsRepo()
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	stats.orders = []repository.CustomerOrdersRow{
		// first purchase inside the window, several orders: new AND repeat
		{ClientExtID: "CL-1", FirstName: "Maria", LastName: "Cruz", Orders: 4, FirstOrder: from.AddDate(0, 0, 2)},
		// long-time customer returning: repeat only
		{ClientExtID: "CL-2", FirstName: "Jo", LastName: "Tan", Orders: 2, FirstOrder: from.AddDate(-1, 0, 0)},
		// single first order in the window: new only
		{ClientExtID: "CL-3", FirstName: "Lea", LastName: "Sy", Orders: 1, FirstOrder: from.AddDate(0, 0, 5)},
	}
	svc := NewStatsService(stats)

	resp, err := svc.CustomerFrequency(context.Background(), dto.StatsFilter{
		DateFrom: "2026-08-01", DateTo: "2026-08-31",
	})
	require.NoError(t, err)

	m := resp.CustomRange
	require.NotNil(t, m)
	assert.Equal(t, 2, m.NewCustomers)
	assert.Equal(t, 2, m.RepeatCustomers)
	require.Len(t, m.TopRepeatCustomers, 2)
	// ordered by order count
	assert.Equal(t, "CL-1", m.TopRepeatCustomers[0].CustomerID)
	assert.Equal(t, int64(4), m.TopRepeatCustomers[0].Orders)
}

func TestCustomerFrequencyRequiresBothBounds(t *testing.T) {
	svc := NewStatsService(newStubStatsRepo())
	_, err := svc.CustomerFrequency(context.Background(), dto.StatsFilter{DateFrom: "2026-08-01"})
	require.ErrorIs(t, err, ErrValidation)
}
