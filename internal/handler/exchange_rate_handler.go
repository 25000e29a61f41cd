package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"go-pos-inventory/internal/middleware"
	"go-pos-inventory/internal/service"
)

type ExchangeRateHandler struct {
	service service.ExchangeRateService
}

func NewExchangeRateHandler(s service.ExchangeRateService) *ExchangeRateHandler {
	return &ExchangeRateHandler{service: s}
}

// SetRate records a new rate and reprices the catalog.
// POST /api/v1/exchange-rates
func (h *ExchangeRateHandler) SetRate(c *fiber.Ctx) error {
	var req struct {
		Rate decimal.Decimal `json:"rate"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	result, err := h.service.ApplyNewRate(c.UserContext(), req.Rate, middleware.Actor(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message": fmt.Sprintf("Exchange rate updated to %s. Prices recalculated for %d products.",
			result.Rate.Rate.StringFixed(2), result.ProductsUpdated),
		"products_updated": result.ProductsUpdated,
		"data":             result.Rate,
	})
}

// GET /api/v1/exchange-rates/current
func (h *ExchangeRateHandler) GetCurrent(c *fiber.Ctx) error {
	rate, err := h.service.Current(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rate)
}

// GET /api/v1/exchange-rates
func (h *ExchangeRateHandler) GetHistory(c *fiber.Ctx) error {
	rates, err := h.service.History(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rates)
}
