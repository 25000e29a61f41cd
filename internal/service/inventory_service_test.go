package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pos-inventory/internal/model"
)

func TestRecordInboundMovementUpdatesStockAndCost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soap := f.createProduct(t, "Soap", "5.00", 5)

	cost := dec("3.50")
	movement, err := f.inventory.RecordMovement(ctx, soap.ID, &MovementRequest{
		Type:     model.MovementIn,
		Quantity: 10,
		UnitCost: &cost,
	}, f.seller)
	require.NoError(t, err)
	assert.Equal(t, 15, movement.Product.Stock)

	fresh, err := f.inventory.GetProduct(ctx, soap.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, fresh.Stock)
	assert.Equal(t, "3.50", fresh.Cost.StringFixed(2))

	list, err := f.inventory.ListMovements(ctx, soap.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.MovementIn, list[0].Type)
	assert.Equal(t, f.seller.ID, list[0].UserID)
}

func TestRecordOutboundMovementRequiresReason(t *testing.T) {
	f := newFixture(t)
	soap := f.createProduct(t, "Soap", "5.00", 5)

	_, err := f.inventory.RecordMovement(context.Background(), soap.ID, &MovementRequest{
		Type:     model.MovementOut,
		Quantity: 1,
		Reason:   "   ",
	}, f.seller)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "reason", vErr.Field)
	assert.Equal(t, 5, f.stockOf(t, soap))
	assert.Zero(t, f.count(t, &model.StockMovement{}))
}

func TestRecordOutboundMovementMayGoNegative(t *testing.T) {
	f := newFixture(t)
	soap := f.createProduct(t, "Soap", "5.00", 2)

	_, err := f.inventory.RecordMovement(context.Background(), soap.ID, &MovementRequest{
		Type:     model.MovementOut,
		Quantity: 5,
		Reason:   "damaged in transit",
	}, f.seller)
	require.NoError(t, err)
	assert.Equal(t, -3, f.stockOf(t, soap))
}

func TestRecordMovementValidation(t *testing.T) {
	f := newFixture(t)
	soap := f.createProduct(t, "Soap", "5.00", 2)

	_, err := f.inventory.RecordMovement(context.Background(), soap.ID, &MovementRequest{
		Type:     model.MovementIn,
		Quantity: 0,
	}, f.seller)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "quantity", vErr.Field)

	_, err = f.inventory.RecordMovement(context.Background(), uuid.New(), &MovementRequest{
		Type:     model.MovementIn,
		Quantity: 1,
	}, f.seller)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUpdateMovementNoteLeavesStockAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soap := f.createProduct(t, "Soap", "5.00", 10)

	movement, err := f.inventory.RecordMovement(ctx, soap.ID, &MovementRequest{
		Type:     model.MovementOut,
		Quantity: 4,
		Reason:   "expired",
	}, f.seller)
	require.NoError(t, err)
	require.Equal(t, 6, f.stockOf(t, soap))

	for _, note := range []string{"expired batch", "expired batch 2024-03"} {
		updated, err := f.inventory.UpdateMovementNote(ctx, movement.ID, note, f.seller)
		require.NoError(t, err)
		assert.Equal(t, note, updated.Reason)
	}
	assert.Equal(t, 6, f.stockOf(t, soap))

	_, err = f.inventory.UpdateMovementNote(ctx, movement.ID, "", f.seller)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)

	_, err = f.inventory.UpdateMovementNote(ctx, uuid.New(), "x", f.seller)
	assert.ErrorIs(t, err, ErrMovementNotFound)
}

func TestUpdateProductKeepsStock(t *testing.T) {
	f := newFixture(t)
	soap := f.createProduct(t, "Soap", "5.00", 10)

	updated, err := f.inventory.UpdateProduct(context.Background(), soap.ID, &ProductRequest{
		Name:  "Soap bar",
		Price: dec("6.00"),
		Cost:  dec("2.00"),
		Stock: 99,
	}, f.seller)
	require.NoError(t, err)
	assert.Equal(t, "Soap bar", updated.Name)
	assert.Equal(t, 10, f.stockOf(t, soap))
}

func TestCreateProductRejectsDuplicateBarcode(t *testing.T) {
	f := newFixture(t)
	code := "7790001"
	req := func() *ProductRequest {
		b := code
		return &ProductRequest{Name: "Soap", Price: dec("5.00"), Cost: decimal.Zero, Barcode: &b}
	}

	_, err := f.inventory.CreateProduct(context.Background(), req(), f.seller)
	require.NoError(t, err)

	_, err = f.inventory.CreateProduct(context.Background(), req(), f.seller)
	assert.ErrorIs(t, err, ErrBarcodeExists)
}

func TestDeleteProductInUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soap := f.createProduct(t, "Soap", "5.00", 10)
	spare := f.createProduct(t, "Sponge", "2.00", 3)

	_, err := f.saleService.CommitSale(ctx, f.seller, []CartItem{
		{ProductID: soap.ID, Quantity: 1, UnitPrice: dec("5.00")},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, f.inventory.DeleteProduct(ctx, soap.ID, f.seller), ErrProductInUse)

	require.NoError(t, f.inventory.DeleteProduct(ctx, spare.ID, f.seller))
	_, err = f.inventory.GetProduct(ctx, spare.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalogListsInStockProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cat, err := f.categoryService.Create(ctx, &CategoryRequest{Name: "Cleaning"}, f.seller)
	require.NoError(t, err)

	_, err = f.inventory.CreateProduct(ctx, &ProductRequest{
		Name: "Bleach", CategoryID: &cat.ID, Price: dec("9.00"), Cost: dec("4.00"), Stock: 3,
	}, f.seller)
	require.NoError(t, err)
	f.createProduct(t, "Soap", "5.00", 10)
	f.createProduct(t, "Sold out", "1.00", 0)

	all, err := f.inventory.Catalog(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byCategory, err := f.inventory.Catalog(ctx, "CLEAN")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Bleach", byCategory[0].Name)
	assert.Equal(t, "Cleaning", byCategory[0].CategoryName())
}

func TestDeleteCategoryUncategorisesProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cat, err := f.categoryService.Create(ctx, &CategoryRequest{Name: "Cleaning"}, f.seller)
	require.NoError(t, err)
	bleach, err := f.inventory.CreateProduct(ctx, &ProductRequest{
		Name: "Bleach", CategoryID: &cat.ID, Price: dec("9.00"), Cost: dec("4.00"), Stock: 3,
	}, f.seller)
	require.NoError(t, err)

	require.NoError(t, f.categoryService.Delete(ctx, cat.ID))

	fresh, err := f.inventory.GetProduct(ctx, bleach.ID)
	require.NoError(t, err)
	assert.Nil(t, fresh.CategoryID)
	assert.Equal(t, "Uncategorized", fresh.CategoryName())

	assert.ErrorIs(t, f.categoryService.Delete(ctx, cat.ID), ErrCategoryNotFound)
}

func TestDeleteUserWithSales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soap := f.createProduct(t, "Soap", "5.00", 10)
	idle := f.createUser(t, "idle@example.com")

	_, err := f.saleService.CommitSale(ctx, f.seller, []CartItem{
		{ProductID: soap.ID, Quantity: 1, UnitPrice: dec("5.00")},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, f.userService.DeleteUser(ctx, f.seller.ID), ErrUserHasSales)
	assert.NoError(t, f.userService.DeleteUser(ctx, idle.ID))
}
