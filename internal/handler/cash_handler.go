package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-pos-inventory/internal/middleware"
	"go-pos-inventory/internal/service"
)

type CashHandler struct {
	service service.CashService
}

func NewCashHandler(s service.CashService) *CashHandler {
	return &CashHandler{service: s}
}

// CreateCashTransaction records a cash drawer movement.
// POST /api/v1/cash-transactions
func (h *CashHandler) CreateCashTransaction(c *fiber.Ctx) error {
	var req service.CashRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	tx, err := h.service.Record(c.UserContext(), &req, middleware.Actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Cash transaction recorded", "data": tx})
}

// GetCashTransactions lists drawer movements for a period.
// GET /api/v1/cash-transactions?range=today|week|month|year|custom&start_date=&end_date=
func (h *CashHandler) GetCashTransactions(c *fiber.Ctx) error {
	start, end, err := service.ReportWindow(c.Query("range", service.PeriodMonth), c.Query("start_date"), c.Query("end_date"), timeNow())
	if err != nil {
		return respondError(c, err)
	}

	txs, err := h.service.List(c.UserContext(), start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(txs)
}
