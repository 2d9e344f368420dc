package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/model"
	"github.com/tddymnbt/CRCMS-API/internal/repository"
)

const statsTopCustomers = 5

// StatsService computes the sales and customer aggregates. Everything is
// derived from the sales and payment tables on demand; nothing is cached
// or pre-aggregated.
type StatsService struct {
	stats repository.StatsRepository
	nowFn nowFunc
}

func NewStatsService(stats repository.StatsRepository) *StatsService {
	return &StatsService{stats: stats, nowFn: time.Now}
}

// SalesStats aggregates sales by status. With an explicit date range only
// the range buckets are filled; otherwise the standard time series (total,
// today, yesterday, last week/month/year) is returned per status.
func (s *StatsService) SalesStats(ctx context.Context, filter dto.StatsFilter) (*dto.SalesStatsResponse, error) {
	saleType, err := statsSaleType(filter.Mode)
	if err != nil {
		return nil, err
	}

	if filter.DateFrom != "" || filter.DateTo != "" {
		from, to, err := parseRange(filter.DateFrom, filter.DateTo)
		if err != nil {
			return nil, err
		}

		resp := &dto.SalesStatsResponse{
			DataRange: &dto.DateRange{From: filter.DateFrom, To: filter.DateTo},
		}
		if resp.RangePaidSales, err = s.bucket(ctx, model.SaleStatusFullyPaid, saleType, from, to); err != nil {
			return nil, err
		}
		if resp.RangePendingSales, err = s.bucket(ctx, model.SaleStatusDeposit, saleType, from, to); err != nil {
			return nil, err
		}
		if resp.RangeCancelledSales, err = s.bucket(ctx, model.SaleStatusCancelled, saleType, from, to); err != nil {
			return nil, err
		}
		return resp, nil
	}

	resp := &dto.SalesStatsResponse{}
	if resp.PaidSales, err = s.series(ctx, model.SaleStatusFullyPaid, saleType); err != nil {
		return nil, err
	}
	if resp.PendingSales, err = s.series(ctx, model.SaleStatusDeposit, saleType); err != nil {
		return nil, err
	}
	if resp.CancelledSales, err = s.series(ctx, model.SaleStatusCancelled, saleType); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *StatsService) bucket(ctx context.Context, status model.SaleStatus, saleType model.SaleType, from, to *time.Time) (*dto.StatusBucket, error) {
	totals, err := s.stats.SumByStatus(ctx, status, saleType, from, to)
	if err != nil {
		return nil, err
	}
	return &dto.StatusBucket{TotalAmount: totals.TotalAmount, TotalCount: totals.TotalCount}, nil
}

func (s *StatsService) series(ctx context.Context, status model.SaleStatus, saleType model.SaleType) (*dto.StatusSeries, error) {
	now := s.nowFn()
	today := sameDate(now)
	yesterday := today.AddDate(0, 0, -1)
	lastWeek := today.AddDate(0, 0, -7)
	lastMonth := today.AddDate(0, -1, 0)
	lastYear := today.AddDate(-1, 0, 0)

	out := &dto.StatusSeries{}
	for _, w := range []struct {
		dst      *dto.StatusBucket
		from, to *time.Time
	}{
		{&out.Total, nil, nil},
		{&out.Today, &today, nil},
		{&out.Yesterday, &yesterday, &today},
		{&out.LastWeek, &lastWeek, nil},
		{&out.LastMonth, &lastMonth, nil},
		{&out.LastYear, &lastYear, nil},
	} {
		b, err := s.bucket(ctx, status, saleType, w.from, w.to)
		if err != nil {
			return nil, err
		}
		*w.dst = *b
	}
	return out, nil
}

// CustomerFrequency splits customers into new vs repeat per window. A
// customer is new in a window when their first-ever purchase falls inside
// it; repeat when they ordered more than once within the window.
func (s *StatsService) CustomerFrequency(ctx context.Context, filter dto.StatsFilter) (*dto.CustomerFrequencyResponse, error) {
	if filter.DateFrom != "" || filter.DateTo != "" {
		from, to, err := parseRange(filter.DateFrom, filter.DateTo)
		if err != nil {
			return nil, err
		}
		if from == nil || to == nil {
			return nil, fmt.Errorf("%w: both date_from and date_to are required for a custom range", ErrValidation)
		}
		metrics, err := s.frequency(ctx, *from, *to)
		if err != nil {
			return nil, err
		}
		return &dto.CustomerFrequencyResponse{
			DataRange:   &dto.DateRange{From: filter.DateFrom, To: filter.DateTo},
			CustomRange: metrics,
		}, nil
	}

	now := s.nowFn()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	resp := &dto.CustomerFrequencyResponse{}
	var err error
	if resp.ThisMonth, err = s.frequency(ctx, monthStart, now); err != nil {
		return nil, err
	}
	if resp.LastMonth, err = s.frequency(ctx, monthStart.AddDate(0, -1, 0), monthStart); err != nil {
		return nil, err
	}
	if resp.LastSixMos, err = s.frequency(ctx, monthStart.AddDate(0, -6, 0), now); err != nil {
		return nil, err
	}
	if resp.LastYear, err = s.frequency(ctx, monthStart.AddDate(-1, 0, 0), now); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *StatsService) frequency(ctx context.Context, from, to time.Time) (*dto.FrequencyMetrics, error) {
	rows, err := s.stats.CustomerOrders(ctx, from, to)
	if err != nil {
		return nil, err
	}

	metrics := &dto.FrequencyMetrics{TopRepeatCustomers: []dto.TopCustomer{}}
	for _, row := range rows {
		if !row.FirstOrder.Before(from) && !row.FirstOrder.After(to) {
			metrics.NewCustomers++
		}
		if row.Orders > 1 {
			metrics.RepeatCustomers++
			metrics.TopRepeatCustomers = append(metrics.TopRepeatCustomers, dto.TopCustomer{
				CustomerID:   row.ClientExtID,
				CustomerName: row.FirstName + " " + row.LastName,
				Orders:       row.Orders,
			})
		}
	}

	sort.SliceStable(metrics.TopRepeatCustomers, func(i, j int) bool {
		return metrics.TopRepeatCustomers[i].Orders > metrics.TopRepeatCustomers[j].Orders
	})
	if len(metrics.TopRepeatCustomers) > statsTopCustomers {
		metrics.TopRepeatCustomers = metrics.TopRepeatCustomers[:statsTopCustomers]
	}
	return metrics, nil
}

func statsSaleType(mode string) (model.SaleType, error) {
	switch mode {
	case "", "A":
		return "", nil
	case "R":
		return model.SaleTypeRegular, nil
	case "L":
		return model.SaleTypeLayaway, nil
	default:
		return "", fmt.Errorf("%w: unknown stats mode %q", ErrValidation, mode)
	}
}

// parseRange parses the inclusive YYYY-MM-DD bounds. The upper bound is
// pushed to end of day so a single-day range covers the whole day.
func parseRange(fromStr, toStr string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if fromStr != "" {
		t, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid date_from %q", ErrValidation, fromStr)
		}
		from = &t
	}
	if toStr != "" {
		t, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid date_to %q", ErrValidation, toStr)
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, fmt.Errorf("%w: date_to is before date_from", ErrValidation)
	}
	return from, to, nil
}
