package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-pos-inventory/internal/model"
)

// LowStockThreshold is the stock level under which a product counts as low.
const LowStockThreshold = 10

// StockMovementData is one day of the inbound/outbound chart.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// DashboardStats untuk overview stats
type DashboardStats struct {
	TotalProducts  int64           `json:"total_products"`
	LowStockCount  int64           `json:"low_stock_count"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
}

// FinancialSummary covers one reporting window. Net = sales + cash in - cash out.
type FinancialSummary struct {
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	TotalSales decimal.Decimal `json:"total_sales"`
	CashIn     decimal.Decimal `json:"cash_in"`
	CashOut    decimal.Decimal `json:"cash_out"`
	Net        decimal.Decimal `json:"net"`
}

type ReportRepository interface {
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
	GetStockMovement(ctx context.Context, start, end time.Time) ([]StockMovementData, error)
	GetFinancialSummary(ctx context.Context, start, end time.Time) (*FinancialSummary, error)
}

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db}
}

func (r *reportRepo) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	db := r.db.WithContext(ctx)
	var stats DashboardStats

	if err := db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Product{}).Where("stock < ?", LowStockThreshold).Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}

	// valuation at cost, not at list price
	valuation, err := sumDecimal(db.Model(&model.Product{}).Select("SUM(stock * cost)"))
	if err != nil {
		return nil, err
	}
	stats.TotalValuation = valuation.Round(2)
	return &stats, nil
}

func (r *reportRepo) GetStockMovement(ctx context.Context, start, end time.Time) ([]StockMovementData, error) {
	rows, err := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN movement_type = 'IN' THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN movement_type = 'OUT' THEN quantity ELSE 0 END), 0) as outbound
		`).
		Where("created_at >= ? AND created_at < ?", start, end).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []StockMovementData
	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}
	return results, rows.Err()
}

func (r *reportRepo) GetFinancialSummary(ctx context.Context, start, end time.Time) (*FinancialSummary, error) {
	db := r.db.WithContext(ctx)
	out := &FinancialSummary{Start: start, End: end}

	var err error
	out.TotalSales, err = sumDecimal(db.Model(&model.Sale{}).
		Select("SUM(total_amount)").
		Where("receipt_number IS NOT NULL AND created_at >= ? AND created_at < ?", start, end))
	if err != nil {
		return nil, err
	}

	out.CashIn, err = sumDecimal(db.Model(&model.CashTransaction{}).
		Select("SUM(amount)").
		Where("type = ? AND date >= ? AND date < ?", model.CashIn, start, end))
	if err != nil {
		return nil, err
	}

	out.CashOut, err = sumDecimal(db.Model(&model.CashTransaction{}).
		Select("SUM(amount)").
		Where("type = ? AND date >= ? AND date < ?", model.CashOut, start, end))
	if err != nil {
		return nil, err
	}

	out.Net = out.TotalSales.Add(out.CashIn).Sub(out.CashOut)
	return out, nil
}

func sumDecimal(q *gorm.DB) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := q.Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
