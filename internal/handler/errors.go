package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"go-pos-inventory/internal/service"
)

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

// respondError maps service errors onto status codes. Unknown errors become
// a bare 500 so store details do not leak.
func respondError(c *fiber.Ctx, err error) error {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		return c.Status(400).JSON(fiber.Map{
			"error":  vErr.Error(),
			"fields": fiber.Map{vErr.Field: vErr.Message},
		})
	}

	var stockErr *service.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.Status(409).JSON(fiber.Map{"error": stockErr.Error()})
	}

	switch {
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrMovementNotFound),
		errors.Is(err, service.ErrSaleNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRoleNotFound),
		errors.Is(err, service.ErrNoExchangeRate):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, service.ErrProductInUse),
		errors.Is(err, service.ErrUserHasSales),
		errors.Is(err, service.ErrBarcodeExists),
		errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrConstraintViolation),
		errors.Is(err, service.ErrConcurrencyFailure):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, service.ErrEmptyCart):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
}
