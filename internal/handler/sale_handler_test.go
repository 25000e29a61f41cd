package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pos-inventory/internal/middleware"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/service"
)

var testActor = model.Actor{ID: uuid.MustParse("3f1c7a52-2a3e-4c1b-9a0e-0d6b8f0d7c11"), Name: "Ana", Email: "ana@example.com"}

type fakeSaleService struct {
	sale  *model.Sale
	err   error
	items []service.CartItem
	actor model.Actor
}

func (f *fakeSaleService) CommitSale(_ context.Context, actor model.Actor, items []service.CartItem) (*model.Sale, error) {
	f.actor = actor
	f.items = items
	return f.sale, f.err
}

func (f *fakeSaleService) GetByReceipt(context.Context, string) (*model.Sale, error) {
	return nil, service.ErrSaleNotFound
}

func (f *fakeSaleService) List(context.Context, repository.SaleFilter) ([]model.Sale, error) {
	return nil, nil
}

func newTestApp(register func(app *fiber.App)) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		middleware.SetActor(c, testActor, model.RoleSalesperson, model.SalespersonPrivileges)
		return c.Next()
	})
	register(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestCommitSaleSuccess(t *testing.T) {
	receipt := "REC-000042"
	fake := &fakeSaleService{sale: &model.Sale{ID: 42, ReceiptNumber: &receipt, TotalAmount: decimal.RequireFromString("40")}}
	h := NewSaleHandler(fake)
	app := newTestApp(func(app *fiber.App) { app.Post("/sales", h.CommitSale) })

	productID := uuid.New()
	status, body := doJSON(t, app, "POST", "/sales",
		`{"items":[{"id":"`+productID.String()+`","quantity":3,"price":5.5}]}`)

	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "REC-000042", body["sale_id"])
	assert.Equal(t, "40.00", body["total_amount"])

	require.Len(t, fake.items, 1)
	assert.Equal(t, productID, fake.items[0].ProductID)
	assert.Equal(t, 3, fake.items[0].Quantity)
	assert.Equal(t, "5.50", fake.items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, testActor.ID, fake.actor.ID)
}

func TestCommitSaleFailureStaysOK(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"insufficient stock", &service.InsufficientStockError{ProductName: "Soap", Available: 2, Requested: 3}, "Insufficient stock for Soap. Available: 2, requested: 3"},
		{"empty cart", service.ErrEmptyCart, service.ErrEmptyCart.Error()},
		{"store failure", errors.New("connection reset by peer"), "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSaleHandler(&fakeSaleService{err: tt.err})
			app := newTestApp(func(app *fiber.App) { app.Post("/sales", h.CommitSale) })

			status, body := doJSON(t, app, "POST", "/sales", `{"items":[]}`)
			assert.Equal(t, 200, status)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.want, body["error"])
		})
	}
}

func TestCommitSaleInvalidJSON(t *testing.T) {
	h := NewSaleHandler(&fakeSaleService{})
	app := newTestApp(func(app *fiber.App) { app.Post("/sales", h.CommitSale) })

	status, body := doJSON(t, app, "POST", "/sales", `{"items":`)
	assert.Equal(t, 200, status)
	assert.Equal(t, false, body["success"])
}

func TestGetSaleNotFound(t *testing.T) {
	h := NewSaleHandler(&fakeSaleService{})
	app := newTestApp(func(app *fiber.App) { app.Get("/sales/:receipt", h.GetSale) })

	status, body := doJSON(t, app, "GET", "/sales/REC-000001", "")
	assert.Equal(t, 404, status)
	assert.Equal(t, service.ErrSaleNotFound.Error(), body["error"])
}
