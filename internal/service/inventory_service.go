package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-pos-inventory/internal/metrics"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/ws"
)

// ProductRequest is the editable part of a product. Stock is only taken on
// create; afterwards it moves through the ledger.
type ProductRequest struct {
	Name       string          `json:"name" validate:"required,max=200"`
	CategoryID *uuid.UUID      `json:"category_id"`
	Price      decimal.Decimal `json:"price" validate:"decimal_gte0"`
	Cost       decimal.Decimal `json:"cost" validate:"decimal_gte0"`
	Stock      int             `json:"stock" validate:"gte=0"`
	Barcode    *string         `json:"barcode" validate:"omitempty,max=100"`
}

// MovementRequest is a manual stock adjustment.
type MovementRequest struct {
	Type     model.MovementType `json:"movement_type" validate:"required,oneof=IN OUT"`
	Quantity int                `json:"quantity" validate:"gt=0"`
	UnitCost *decimal.Decimal   `json:"unit_cost" validate:"omitempty,decimal_gte0"`
	Reason   string             `json:"reason"`
}

const reasonRequired = "reason required for outbound movement"

type InventoryService interface {
	CreateProduct(ctx context.Context, req *ProductRequest, actor model.Actor) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductRequest, actor model.Actor) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID, actor model.Actor) error
	GetAllProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	Catalog(ctx context.Context, query string) ([]model.Product, error)

	RecordMovement(ctx context.Context, productID uuid.UUID, req *MovementRequest, actor model.Actor) (*model.StockMovement, error)
	UpdateMovementNote(ctx context.Context, id uuid.UUID, reason string, actor model.Actor) (*model.StockMovement, error)
	ListMovements(ctx context.Context, productID uuid.UUID) ([]model.StockMovement, error)
}

type inventoryService struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	categoryRepo repository.CategoryRepository
	saleRepo     repository.SaleRepository
	catalog      CatalogCache
	wsHub        *ws.Hub
	log          *slog.Logger
	lockTimeout  time.Duration
}

type InventoryDeps struct {
	DB          *gorm.DB
	Products    repository.ProductRepository
	Movements   repository.StockMovementRepository
	Categories  repository.CategoryRepository
	Sales       repository.SaleRepository
	Catalog     CatalogCache
	Hub         *ws.Hub
	Log         *slog.Logger
	LockTimeout time.Duration
}

func NewInventoryService(d InventoryDeps) InventoryService {
	if d.Catalog == nil {
		d.Catalog = noopCatalog{}
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return &inventoryService{
		db:           d.DB,
		productRepo:  d.Products,
		movementRepo: d.Movements,
		categoryRepo: d.Categories,
		saleRepo:     d.Sales,
		catalog:      d.Catalog,
		wsHub:        d.Hub,
		log:          d.Log,
		lockTimeout:  d.LockTimeout,
	}
}

func normalizeBarcode(b *string) *string {
	if b == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*b)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *inventoryService) checkProductRequest(ctx context.Context, req *ProductRequest, self uuid.UUID) error {
	if err := firstValidationError(req); err != nil {
		return err
	}
	req.Barcode = normalizeBarcode(req.Barcode)
	if req.Barcode != nil {
		existing, err := s.productRepo.FindByBarcode(ctx, *req.Barcode)
		if err == nil && existing.ID != self {
			return ErrBarcodeExists
		}
		if err != nil && !repository.IsNotFound(err) {
			return err
		}
	}
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *req.CategoryID); err != nil {
			if repository.IsNotFound(err) {
				return ErrCategoryNotFound
			}
			return err
		}
	}
	return nil
}

func (s *inventoryService) CreateProduct(ctx context.Context, req *ProductRequest, actor model.Actor) (*model.Product, error) {
	if err := s.checkProductRequest(ctx, req, uuid.Nil); err != nil {
		return nil, err
	}

	userID := actor.ID.String()
	product := &model.Product{
		Name:            strings.TrimSpace(req.Name),
		CategoryID:      req.CategoryID,
		Price:           req.Price.Round(2),
		Cost:            req.Cost.Round(2),
		Stock:           req.Stock,
		Barcode:         req.Barcode,
		CreatedByUserID: &userID,
		UpdatedByUserID: &userID,
	}
	product.CreatedBy = userID
	product.UpdatedBy = userID

	if err := s.productRepo.Create(s.db.WithContext(ctx), product); err != nil {
		return nil, classifyStoreError(err)
	}

	s.catalog.Invalidate(ctx)
	s.wsHub.Publish(ws.EventStockUpdate, map[string]interface{}{
		"action":  "product_created",
		"product": productPayload(product),
		"user":    actorPayload(actor),
		"message": fmt.Sprintf("%s created product '%s'", actor.Name, product.Name),
	})
	return product, nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductRequest, actor model.Actor) (*model.Product, error) {
	if err := s.checkProductRequest(ctx, req, id); err != nil {
		return nil, err
	}

	var updated *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.SetLockTimeout(tx, s.lockTimeout); err != nil {
			return err
		}
		existing, err := s.productRepo.LockByID(tx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrProductNotFound
			}
			return err
		}

		userID := actor.ID.String()
		existing.Name = strings.TrimSpace(req.Name)
		existing.CategoryID = req.CategoryID
		existing.Price = req.Price.Round(2)
		existing.Cost = req.Cost.Round(2)
		existing.Barcode = req.Barcode
		existing.UpdatedBy = userID
		existing.UpdatedByUserID = &userID

		if err := s.productRepo.Save(tx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, classifyStoreError(err)
	}

	s.catalog.Invalidate(ctx)
	s.wsHub.Publish(ws.EventStockUpdate, map[string]interface{}{
		"action":  "product_updated",
		"product": productPayload(updated),
		"user":    actorPayload(actor),
		"message": fmt.Sprintf("%s updated product '%s'", actor.Name, updated.Name),
	})
	return updated, nil
}

// DeleteProduct removes a product and, by cascade, its ledger entries.
// Products that appear on any sale are kept.
func (s *inventoryService) DeleteProduct(ctx context.Context, id uuid.UUID, actor model.Actor) error {
	n, err := s.saleRepo.CountByProduct(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrProductInUse
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrProductNotFound
		}
		return classifyStoreError(err)
	}

	s.catalog.Invalidate(ctx)
	s.log.Info("product deleted", "product", id, "user", actor.ID)
	s.wsHub.Publish(ws.EventStockUpdate, map[string]interface{}{
		"action":  "product_deleted",
		"product": map[string]interface{}{"id": id},
		"user":    actorPayload(actor),
	})
	return nil
}

func (s *inventoryService) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx)
}

func (s *inventoryService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// Catalog serves the POS product picker from cache when it can.
func (s *inventoryService) Catalog(ctx context.Context, query string) ([]model.Product, error) {
	if products, ok := s.catalog.GetCatalog(ctx, query); ok {
		return products, nil
	}
	products, err := s.productRepo.Catalog(ctx, query)
	if err != nil {
		return nil, err
	}
	s.catalog.SetCatalog(ctx, query, products)
	return products, nil
}

// RecordMovement appends a ledger entry and applies it to the product stock
// in one transaction. An inbound entry with a unit cost also becomes the
// product's cost. Outbound entries may take stock below zero; they are
// write-offs and corrections, not sales.
func (s *inventoryService) RecordMovement(ctx context.Context, productID uuid.UUID, req *MovementRequest, actor model.Actor) (*model.StockMovement, error) {
	if err := firstValidationError(req); err != nil {
		return nil, err
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if req.Type == model.MovementOut && req.Reason == "" {
		return nil, &ValidationError{Field: "reason", Message: reasonRequired}
	}

	userID := actor.ID.String()
	movement := &model.StockMovement{
		ProductID: productID,
		Type:      req.Type,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		UserID:    actor.ID,
	}
	if req.UnitCost != nil {
		cost := req.UnitCost.Round(2)
		movement.UnitCost = &cost
	}
	movement.CreatedBy = userID
	movement.UpdatedBy = userID

	var product *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.SetLockTimeout(tx, s.lockTimeout); err != nil {
			return err
		}
		var err error
		product, err = s.productRepo.LockByID(tx, productID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrProductNotFound
			}
			return err
		}

		if err := s.movementRepo.Append(tx, movement); err != nil {
			return err
		}

		if movement.Type == model.MovementIn && movement.UnitCost != nil {
			product.Cost = *movement.UnitCost
		}
		return s.productRepo.AdjustStock(tx, product, movement.Delta(), userID)
	})
	if err != nil {
		return nil, classifyStoreError(err)
	}

	metrics.StockMovements.WithLabelValues(string(movement.Type)).Inc()
	s.catalog.Invalidate(ctx)
	s.log.Info("stock movement recorded",
		"product", product.ID,
		"type", movement.Type,
		"quantity", movement.Quantity,
		"stock", product.Stock,
	)

	verb := "added"
	if movement.Type == model.MovementOut {
		verb = "removed"
	}
	s.wsHub.Publish(ws.EventStockUpdate, map[string]interface{}{
		"action": "movement_recorded",
		"movement": map[string]interface{}{
			"id":            movement.ID,
			"movement_type": movement.Type,
			"quantity":      movement.Quantity,
			"product_id":    product.ID,
			"new_stock":     product.Stock,
		},
		"user":    actorPayload(actor),
		"message": fmt.Sprintf("%s %s %d units of '%s' (%s)", actor.Name, verb, movement.Quantity, product.Name, movement.Type),
	})

	movement.Product = product
	return movement, nil
}

// UpdateMovementNote edits the reason of an existing entry. Stock is never
// touched: only the creation of an entry moves stock.
func (s *inventoryService) UpdateMovementNote(ctx context.Context, id uuid.UUID, reason string, actor model.Actor) (*model.StockMovement, error) {
	movement, err := s.movementRepo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrMovementNotFound
		}
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if movement.Type == model.MovementOut && reason == "" {
		return nil, &ValidationError{Field: "reason", Message: reasonRequired}
	}

	movement.Reason = reason
	movement.UpdatedBy = actor.ID.String()
	if err := s.movementRepo.Save(ctx, movement); err != nil {
		return nil, classifyStoreError(err)
	}
	return movement, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, productID uuid.UUID) ([]model.StockMovement, error) {
	return s.movementRepo.FindByProduct(ctx, productID)
}

func productPayload(p *model.Product) map[string]interface{} {
	return map[string]interface{}{
		"id":        p.ID,
		"name":      p.Name,
		"stock":     p.Stock,
		"price":     p.Price,
		"price_usd": p.PriceSecondary,
	}
}

func actorPayload(a model.Actor) map[string]interface{} {
	return map[string]interface{}{
		"id":    a.ID,
		"name":  a.Name,
		"email": a.Email,
	}
}
