package service

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/pkg/database"
)

func TestCommitSaleDecrementsStockAndTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soap := f.createProduct(t, "Soap", "5.00", 10)
	rice := f.createProduct(t, "Rice 1kg", "12.50", 5)

	sale, err := f.saleService.CommitSale(ctx, f.seller, []CartItem{
		{ProductID: soap.ID, Quantity: 3, UnitPrice: dec("5.00")},
		{ProductID: rice.ID, Quantity: 2, UnitPrice: dec("12.50")},
	})
	require.NoError(t, err)

	assert.Equal(t, "40.00", sale.TotalAmount.StringFixed(2))
	assert.Equal(t, "REC-000001", sale.Receipt())
	assert.Len(t, sale.Items, 2)
	assert.Equal(t, 7, f.stockOf(t, soap))
	assert.Equal(t, 3, f.stockOf(t, rice))

	stored, err := f.saleService.GetByReceipt(ctx, "REC-000001")
	require.NoError(t, err)
	assert.Equal(t, f.seller.ID, stored.SalespersonID)
	assert.Len(t, stored.Items, 2)
	assert.Equal(t, "40.00", stored.TotalAmount.StringFixed(2))
}

func TestCommitSaleUsesCounterPrice(t *testing.T) {
	f := newFixture(t)
	soap := f.createProduct(t, "Soap", "5.00", 10)

	sale, err := f.saleService.CommitSale(context.Background(), f.seller, []CartItem{
		{ProductID: soap.ID, Quantity: 4, UnitPrice: dec("4.50")},
	})
	require.NoError(t, err)

	assert.Equal(t, "18.00", sale.Items[0].LineTotal.StringFixed(2))
	assert.Equal(t, "18.00", sale.TotalAmount.StringFixed(2))
}

func TestCommitSaleInsufficientStock(t *testing.T) {
	f := newFixture(t)
	soap := f.createProduct(t, "Soap", "5.00", 2)

	_, err := f.saleService.CommitSale(context.Background(), f.seller, []CartItem{
		{ProductID: soap.ID, Quantity: 3, UnitPrice: dec("5.00")},
	})

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr), "got %v", err)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, "Insufficient stock for Soap. Available: 2, requested: 3", stockErr.Error())

	assert.Equal(t, 2, f.stockOf(t, soap))
	assert.Zero(t, f.count(t, &model.Sale{}))
}

func TestCommitSaleRollsBackEarlierLines(t *testing.T) {
	f := newFixture(t)
	soap := f.createProduct(t, "Soap", "5.00", 10)
	rice := f.createProduct(t, "Rice 1kg", "12.50", 2)

	_, err := f.saleService.CommitSale(context.Background(), f.seller, []CartItem{
		{ProductID: soap.ID, Quantity: 1, UnitPrice: dec("5.00")},
		{ProductID: rice.ID, Quantity: 5, UnitPrice: dec("12.50")},
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 10, f.stockOf(t, soap))
	assert.Equal(t, 2, f.stockOf(t, rice))
	assert.Zero(t, f.count(t, &model.Sale{}))
	assert.Zero(t, f.count(t, &model.SaleItem{}))
}

func TestCommitSaleEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.saleService.CommitSale(context.Background(), f.seller, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = f.saleService.CommitSale(context.Background(), f.seller, []CartItem{})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, f.count(t, &model.Sale{}))
}

func TestCommitSaleOnlySkippedLinesRecordsZeroSale(t *testing.T) {
	f := newFixture(t)
	soap := f.createProduct(t, "Soap", "5.00", 10)

	sale, err := f.saleService.CommitSale(context.Background(), f.seller, []CartItem{
		{ProductID: soap.ID, Quantity: 0, UnitPrice: dec("5.00")},
		{ProductID: soap.ID, Quantity: -2, UnitPrice: dec("5.00")},
	})
	require.NoError(t, err)

	assert.Equal(t, "0.00", sale.TotalAmount.StringFixed(2))
	assert.Equal(t, "REC-000001", sale.Receipt())
	assert.Empty(t, sale.Items)
	assert.Zero(t, f.count(t, &model.SaleItem{}))
	assert.Equal(t, 10, f.stockOf(t, soap))
}

func TestCommitSaleRoundsCounterPriceToCents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soap := f.createProduct(t, "Soap", "1.00", 10)
	rice := f.createProduct(t, "Rice 1kg", "1.00", 10)

	sale, err := f.saleService.CommitSale(ctx, f.seller, []CartItem{
		{ProductID: soap.ID, Quantity: 3, UnitPrice: dec("1.005")},
		{ProductID: rice.ID, Quantity: 3, UnitPrice: dec("1.005")},
	})
	require.NoError(t, err)

	stored, err := f.saleService.GetByReceipt(ctx, sale.Receipt())
	require.NoError(t, err)

	sum := dec("0")
	for _, item := range stored.Items {
		assert.Equal(t, "1.01", item.UnitPrice.StringFixed(2))
		sum = sum.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	assert.Equal(t, "6.06", sum.StringFixed(2))
	assert.True(t, stored.TotalAmount.Equal(sum), "total %s, lines %s", stored.TotalAmount, sum)
}

func TestCommitSaleSkipsNonPositiveLines(t *testing.T) {
	f := newFixture(t)
	soap := f.createProduct(t, "Soap", "5.00", 10)

	sale, err := f.saleService.CommitSale(context.Background(), f.seller, []CartItem{
		{ProductID: soap.ID, Quantity: 0, UnitPrice: dec("5.00")},
		{ProductID: soap.ID, Quantity: 2, UnitPrice: dec("5.00")},
	})
	require.NoError(t, err)
	assert.Len(t, sale.Items, 1)
	assert.Equal(t, 8, f.stockOf(t, soap))
}

func TestCommitSaleRejectsNegativePrice(t *testing.T) {
	f := newFixture(t)
	soap := f.createProduct(t, "Soap", "5.00", 10)

	_, err := f.saleService.CommitSale(context.Background(), f.seller, []CartItem{
		{ProductID: soap.ID, Quantity: 1, UnitPrice: dec("-1.00")},
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "price", vErr.Field)
	assert.Equal(t, 10, f.stockOf(t, soap))
}

func TestCommitSaleUnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.saleService.CommitSale(context.Background(), f.seller, []CartItem{
		{ProductID: uuid.New(), Quantity: 1, UnitPrice: dec("5.00")},
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Zero(t, f.count(t, &model.Sale{}))
}

func TestReceiptNumbersIncrease(t *testing.T) {
	f := newFixture(t)
	soap := f.createProduct(t, "Soap", "5.00", 10)

	var receipts []string
	for i := 0; i < 3; i++ {
		sale, err := f.saleService.CommitSale(context.Background(), f.seller, []CartItem{
			{ProductID: soap.ID, Quantity: 1, UnitPrice: dec("5.00")},
		})
		require.NoError(t, err)
		receipts = append(receipts, sale.Receipt())
	}

	assert.Equal(t, []string{"REC-000001", "REC-000002", "REC-000003"}, receipts)
}

// On SQLite the fixture's single connection makes the two commits run one
// after the other, so this checks the stock arithmetic under contention, not
// the row lock. The Postgres variant below exercises FOR UPDATE.
func TestConcurrentSalesNeverOversell(t *testing.T) {
	assertNoOversell(t, newFixture(t))
}

func TestConcurrentSalesNeverOversellPostgres(t *testing.T) {
	dsn := os.Getenv("POS_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("POS_TEST_DATABASE_URL not set")
	}
	db, err := database.Connect(database.Options{DSN: dsn, MaxOpenConns: 10, MaxIdleConns: 2})
	require.NoError(t, err)
	assertNoOversell(t, newFixtureWithDB(t, db))
}

func assertNoOversell(t *testing.T, f *fixture) {
	t.Helper()
	soap := f.createProduct(t, "Soap "+uuid.NewString(), "5.00", 10)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.saleService.CommitSale(context.Background(), f.seller, []CartItem{
				{ProductID: soap.ID, Quantity: 6, UnitPrice: dec("5.00")},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var stockErr *InsufficientStockError
		assert.ErrorAs(t, err, &stockErr)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 4, f.stockOf(t, soap))

	n, err := f.sales.CountByProduct(context.Background(), soap.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestGetByReceiptNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.saleService.GetByReceipt(context.Background(), "REC-999999")
	assert.ErrorIs(t, err, ErrSaleNotFound)
}
