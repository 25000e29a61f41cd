package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"go-pos-inventory/internal/middleware"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/service"
)

type SaleHandler struct {
	service service.SaleService
}

func NewSaleHandler(s service.SaleService) *SaleHandler {
	return &SaleHandler{service: s}
}

type commitSaleRequest struct {
	Items []service.CartItem `json:"items"`
}

// CommitSale registers a sale from the POS cart.
// POST /api/v1/sales
//
// The POS client reads the outcome from the body: this endpoint answers 200
// with success false instead of using error status codes.
func (h *SaleHandler) CommitSale(c *fiber.Ctx) error {
	var req commitSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.JSON(fiber.Map{"success": false, "error": "Invalid JSON"})
	}

	sale, err := h.service.CommitSale(c.UserContext(), middleware.Actor(c), req.Items)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "error": saleErrorMessage(err)})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"sale_id":      sale.Receipt(),
		"total_amount": sale.TotalAmount.StringFixed(2),
	})
}

func saleErrorMessage(err error) string {
	var stockErr *service.InsufficientStockError
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &stockErr), errors.As(err, &vErr):
		return err.Error()
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrConcurrencyFailure),
		errors.Is(err, service.ErrConstraintViolation):
		return err.Error()
	}
	return "Internal Server Error"
}

// GetSale returns one sale with its lines.
// GET /api/v1/sales/:receipt
func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	sale, err := h.service.GetByReceipt(c.UserContext(), c.Params("receipt"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale)
}

// GetSales lists sales, newest first.
// GET /api/v1/sales?from=YYYY-MM-DD&to=YYYY-MM-DD&salesperson_id=&limit=
func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	var filter repository.SaleFilter

	if from := c.Query("from"); from != "" {
		t, err := time.ParseInLocation("2006-01-02", from, time.Local)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid from date, use YYYY-MM-DD"})
		}
		filter.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.ParseInLocation("2006-01-02", to, time.Local)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid to date, use YYYY-MM-DD"})
		}
		filter.To = t.AddDate(0, 0, 1)
	}
	if sp := c.Query("salesperson_id"); sp != "" {
		id, err := parseUUID(sp)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid salesperson ID"})
		}
		filter.SalespersonID = &id
	}
	filter.Limit, _ = strconv.Atoi(c.Query("limit", "100"))

	sales, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sales)
}
