package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pos-inventory/internal/model"
)

func TestFinancialSummaryNetsSalesAndCash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	today := time.Now().Format("2006-01-02")
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	soap := f.createProduct(t, "Soap", "5.00", 10)
	_, err := f.saleService.CommitSale(ctx, f.seller, []CartItem{
		{ProductID: soap.ID, Quantity: 8, UnitPrice: dec("5.00")},
	})
	require.NoError(t, err)

	for _, req := range []*CashRequest{
		{Type: model.CashIn, Amount: dec("100.00"), Description: "opening float"},
		{Type: model.CashOut, Amount: dec("30.00"), Description: "courier", Date: today},
		{Type: model.CashIn, Amount: dec("50.00"), Description: "yesterday's float", Date: yesterday},
	} {
		_, err := f.cashService.Record(ctx, req, f.seller)
		require.NoError(t, err)
	}

	summary, err := f.dashboard.GetFinancialSummary(ctx, PeriodCustom, today, today)
	require.NoError(t, err)
	assert.Equal(t, "40.00", summary.TotalSales.StringFixed(2))
	assert.Equal(t, "100.00", summary.CashIn.StringFixed(2))
	assert.Equal(t, "30.00", summary.CashOut.StringFixed(2))
	assert.Equal(t, "110.00", summary.Net.StringFixed(2))

	start, end, err := ReportWindow(PeriodToday, "", "", time.Now())
	require.NoError(t, err)
	listed, err := f.cashService.List(ctx, start, end)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestRecordCashValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.cashService.Record(context.Background(), &CashRequest{Type: model.CashIn, Amount: dec("0")}, f.seller)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "amount", vErr.Field)

	_, err = f.cashService.Record(context.Background(), &CashRequest{Type: "SIDEWAYS", Amount: dec("5")}, f.seller)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "type", vErr.Field)
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	soap := f.createProduct(t, "Soap", "5.00", 10)
	f.createProduct(t, "Rice 1kg", "12.50", 20)
	_, err := f.saleService.CommitSale(ctx, f.seller, []CartItem{
		{ProductID: soap.ID, Quantity: 8, UnitPrice: dec("5.00")},
	})
	require.NoError(t, err)

	stats, err := f.dashboard.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalProducts)
	assert.EqualValues(t, 1, stats.LowStockCount)
	// (2 + 20) units at cost 1.00
	assert.Equal(t, "22.00", stats.TotalValuation.StringFixed(2))
}
