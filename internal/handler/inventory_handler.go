package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-pos-inventory/internal/middleware"
	"go-pos-inventory/internal/service"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.service.CreateProduct(c.UserContext(), &req, middleware.Actor(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), productID, &req, middleware.Actor(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	if err := h.service.DeleteProduct(c.UserContext(), productID, middleware.Actor(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	product, err := h.service.GetProduct(c.UserContext(), productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// GetCatalog lists in-stock products for the POS screen.
// GET /api/v1/catalog?q=
func (h *InventoryHandler) GetCatalog(c *fiber.Ctx) error {
	products, err := h.service.Catalog(c.UserContext(), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}

	items := make([]fiber.Map, 0, len(products))
	for i := range products {
		p := &products[i]
		items = append(items, fiber.Map{
			"id":        p.ID,
			"name":      p.Name,
			"price":     p.Price,
			"price_usd": p.PriceSecondary,
			"stock":     p.Stock,
			"barcode":   p.Barcode,
			"category":  p.CategoryName(),
		})
	}
	return c.JSON(items)
}

// CreateMovement records an IN/OUT stock adjustment.
// POST /api/v1/products/:id/stock-movements
func (h *InventoryHandler) CreateMovement(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req service.MovementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	movement, err := h.service.RecordMovement(c.UserContext(), productID, &req, middleware.Actor(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Stock movement recorded", "data": movement})
}

// GetMovements returns the ledger of one product, newest first.
// GET /api/v1/products/:id/stock-movements
func (h *InventoryHandler) GetMovements(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	movements, err := h.service.ListMovements(c.UserContext(), productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(movements)
}

// UpdateMovement edits the reason of a ledger entry.
// PATCH /api/v1/stock-movements/:id
func (h *InventoryHandler) UpdateMovement(c *fiber.Ctx) error {
	movementID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid stock movement ID"})
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	movement, err := h.service.UpdateMovementNote(c.UserContext(), movementID, req.Reason, middleware.Actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock movement updated", "data": movement})
}
