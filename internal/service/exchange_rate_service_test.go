package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pos-inventory/internal/model"
)

func TestProductsHaveNoUSDPriceBeforeFirstRate(t *testing.T) {
	f := newFixture(t)
	soap := f.createProduct(t, "Soap", "70.00", 1)

	assert.Nil(t, soap.PriceSecondary)

	_, err := f.rateService.Current(context.Background())
	assert.ErrorIs(t, err, ErrNoExchangeRate)
}

func TestApplyNewRateRepricesCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soap := f.createProduct(t, "Soap", "70.00", 1)

	// the first rate only fills in USD prices
	first, err := f.rateService.ApplyNewRate(ctx, dec("6.96"), f.seller)
	require.NoError(t, err)
	assert.Equal(t, 0, first.ProductsUpdated)

	fresh, err := f.products.FindByID(ctx, soap.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh.PriceSecondary)
	assert.Equal(t, "10.06", fresh.PriceSecondary.StringFixed(2))
	assert.Equal(t, "70.00", fresh.Price.StringFixed(2))

	// the second one keeps USD prices and moves BOB prices
	second, err := f.rateService.ApplyNewRate(ctx, dec("7.00"), f.seller)
	require.NoError(t, err)
	assert.Equal(t, 1, second.ProductsUpdated)

	fresh, err = f.products.FindByID(ctx, soap.ID)
	require.NoError(t, err)
	assert.Equal(t, "70.42", fresh.Price.StringFixed(2))
	require.NotNil(t, fresh.PriceSecondary)
	assert.Equal(t, "10.06", fresh.PriceSecondary.StringFixed(2))

	current, err := f.rateService.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "7.0000", current.Rate.StringFixed(4))

	history, err := f.rateService.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestNewProductsPickUpCurrentRate(t *testing.T) {
	f := newFixture(t)

	_, err := f.rateService.ApplyNewRate(context.Background(), dec("6.96"), f.seller)
	require.NoError(t, err)

	soap := f.createProduct(t, "Soap", "70.00", 1)
	require.NotNil(t, soap.PriceSecondary)
	assert.Equal(t, "10.06", soap.PriceSecondary.StringFixed(2))
}

func TestApplyNewRateRejectsNonPositive(t *testing.T) {
	f := newFixture(t)

	for _, rate := range []string{"0", "-6.96"} {
		_, err := f.rateService.ApplyNewRate(context.Background(), dec(rate), f.seller)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr, rate)
		assert.Equal(t, "rate", vErr.Field)
	}

	history, err := f.rateService.History(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRepriceIgnoresUSDPriceRefreshedBySale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.rateService.ApplyNewRate(ctx, dec("6.96"), f.seller)
	require.NoError(t, err)
	soap := f.createProduct(t, "Soap", "69.60", 5)
	require.Equal(t, "10.00", soap.PriceSecondary.StringFixed(2))

	previous, err := f.rates.Latest(ctx)
	require.NoError(t, err)

	// the new rate row lands, then a sale saves the product before the
	// reprice loop reaches it
	next := &model.ExchangeRate{Rate: dec("7.00")}
	require.NoError(t, f.rates.Create(ctx, next))
	_, err = f.saleService.CommitSale(ctx, f.seller, []CartItem{
		{ProductID: soap.ID, Quantity: 1, UnitPrice: dec("69.60")},
	})
	require.NoError(t, err)

	svc := f.rateService.(*exchangeRateService)
	repriced, err := svc.repriceOne(ctx, soap.ID, previous, next.Rate, f.seller)
	require.NoError(t, err)
	assert.True(t, repriced)

	fresh, err := f.products.FindByID(ctx, soap.ID)
	require.NoError(t, err)
	assert.Equal(t, "70.00", fresh.Price.StringFixed(2))
	require.NotNil(t, fresh.PriceSecondary)
	assert.Equal(t, "10.00", fresh.PriceSecondary.StringFixed(2))
	assert.Equal(t, 4, fresh.Stock)
}
