package service

import (
	"context"
	"fmt"
	"time"

	"go-pos-inventory/internal/repository"
)

// Report periods accepted by ReportWindow.
const (
	PeriodToday  = "today"
	PeriodWeek   = "week"
	PeriodMonth  = "month"
	PeriodYear   = "year"
	PeriodCustom = "custom"
)

type DashboardService interface {
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
	GetFinancialSummary(ctx context.Context, period, from, to string) (*repository.FinancialSummary, error)
}

type dashboardService struct {
	reportRepo repository.ReportRepository
	now        func() time.Time
}

func NewDashboardService(reportRepo repository.ReportRepository) DashboardService {
	return &dashboardService{reportRepo: reportRepo, now: time.Now}
}

func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	end := truncateDay(s.now()).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -days)
	return s.reportRepo.GetStockMovement(ctx, start, end)
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	return s.reportRepo.GetDashboardStats(ctx)
}

func (s *dashboardService) GetFinancialSummary(ctx context.Context, period, from, to string) (*repository.FinancialSummary, error) {
	start, end, err := ReportWindow(period, from, to, s.now())
	if err != nil {
		return nil, err
	}
	return s.reportRepo.GetFinancialSummary(ctx, start, end)
}

// ReportWindow resolves a period name into a half-open [start, end) range of
// whole days. Weeks start on Monday. Custom ranges include both end dates.
// An empty period means today.
func ReportWindow(period, from, to string, now time.Time) (time.Time, time.Time, error) {
	today := truncateDay(now)
	tomorrow := today.AddDate(0, 0, 1)

	switch period {
	case "", PeriodToday:
		return today, tomorrow, nil
	case PeriodWeek:
		offset := (int(today.Weekday()) + 6) % 7
		return today.AddDate(0, 0, -offset), tomorrow, nil
	case PeriodMonth:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return start, start.AddDate(0, 1, 0), nil
	case PeriodYear:
		start := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location())
		return start, start.AddDate(1, 0, 0), nil
	case PeriodCustom:
		start, err := time.ParseInLocation("2006-01-02", from, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, &ValidationError{Field: "start_date", Message: "use YYYY-MM-DD"}
		}
		end, err := time.ParseInLocation("2006-01-02", to, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, &ValidationError{Field: "end_date", Message: "use YYYY-MM-DD"}
		}
		if end.Before(start) {
			return time.Time{}, time.Time{}, &ValidationError{Field: "end_date", Message: "must not be before start_date"}
		}
		return start, end.AddDate(0, 0, 1), nil
	}
	return time.Time{}, time.Time{}, &ValidationError{Field: "range", Message: fmt.Sprintf("unknown period %q", period)}
}
