package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-pos-inventory/internal/metrics"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/ws"
)

// CartItem is one line as submitted by the counter: the product, how many
// units and the unit price agreed with the customer.
type CartItem struct {
	ProductID uuid.UUID       `json:"id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
}

type SaleService interface {
	CommitSale(ctx context.Context, actor model.Actor, items []CartItem) (*model.Sale, error)
	GetByReceipt(ctx context.Context, receipt string) (*model.Sale, error)
	List(ctx context.Context, filter repository.SaleFilter) ([]model.Sale, error)
}

// SaleOptions bounds how long a commit may take overall and how long it may
// wait on any single product row lock.
type SaleOptions struct {
	Timeout     time.Duration
	LockTimeout time.Duration
}

type saleService struct {
	db          *gorm.DB
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	catalog     CatalogCache
	wsHub       *ws.Hub
	log         *slog.Logger
	opts        SaleOptions
}

func NewSaleService(db *gorm.DB, saleRepo repository.SaleRepository, productRepo repository.ProductRepository, catalog CatalogCache, hub *ws.Hub, log *slog.Logger, opts SaleOptions) SaleService {
	if catalog == nil {
		catalog = noopCatalog{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &saleService{
		db:          db,
		saleRepo:    saleRepo,
		productRepo: productRepo,
		catalog:     catalog,
		wsHub:       hub,
		log:         log,
		opts:        opts,
	}
}

// CommitSale records a sale atomically: every line's product row is locked,
// checked and decremented, the lines are written and the sale receives its
// receipt number, all in one transaction. Any failure, timeout or
// cancellation leaves no trace of the sale and no stock change.
//
// Lines with a quantity of zero or less are skipped. A cart made only of
// such lines still commits, as a 0.00 sale with its own receipt.
func (s *saleService) CommitSale(ctx context.Context, actor model.Actor, items []CartItem) (*model.Sale, error) {
	if len(items) == 0 {
		metrics.SalesFailed.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}
	for _, item := range items {
		if item.Quantity > 0 && item.UnitPrice.IsNegative() {
			metrics.SalesFailed.WithLabelValues("validation").Inc()
			return nil, &ValidationError{Field: "price", Message: "unit price cannot be negative"}
		}
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	var sale *model.Sale
	var touched []model.Product

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.SetLockTimeout(tx, s.opts.LockTimeout); err != nil {
			return err
		}

		sale = &model.Sale{SalespersonID: actor.ID, TotalAmount: decimal.Zero}
		if err := s.saleRepo.Create(tx, sale); err != nil {
			return err
		}

		total := decimal.Zero
		for _, item := range items {
			if item.Quantity <= 0 {
				continue
			}

			product, err := s.productRepo.LockByID(tx, item.ProductID)
			if err != nil {
				if repository.IsNotFound(err) {
					return fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
				}
				return err
			}

			if product.Stock < item.Quantity {
				return &InsufficientStockError{
					ProductID:   product.ID.String(),
					ProductName: product.Name,
					Available:   product.Stock,
					Requested:   item.Quantity,
				}
			}

			if err := s.productRepo.AdjustStock(tx, product, -item.Quantity, actor.ID.String()); err != nil {
				return err
			}

			line := &model.SaleItem{
				SaleID:    sale.ID,
				ProductID: product.ID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			}
			if err := s.saleRepo.CreateItem(tx, line); err != nil {
				return err
			}

			total = total.Add(line.LineTotal)
			sale.Items = append(sale.Items, *line)
			touched = append(touched, *product)
		}

		sale.TotalAmount = total
		return s.saleRepo.AssignReceiptNumber(tx, sale)
	})

	metrics.SaleCommitDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		err = classifyStoreError(err)
		metrics.SalesFailed.WithLabelValues(failureReason(err)).Inc()
		s.log.Warn("sale rolled back", "salesperson", actor.ID, "err", err)
		return nil, err
	}

	metrics.SalesCommitted.Inc()
	s.log.Info("sale committed",
		"receipt", sale.Receipt(),
		"salesperson", actor.ID,
		"lines", len(sale.Items),
		"total", sale.TotalAmount.StringFixed(2),
	)

	s.catalog.Invalidate(context.WithoutCancel(ctx))
	s.publish(actor, sale, touched)

	return sale, nil
}

func (s *saleService) publish(actor model.Actor, sale *model.Sale, touched []model.Product) {
	stock := make([]map[string]interface{}, 0, len(touched))
	for _, p := range touched {
		stock = append(stock, map[string]interface{}{
			"id":    p.ID,
			"name":  p.Name,
			"stock": p.Stock,
		})
	}
	s.wsHub.Publish(ws.EventSaleCommitted, map[string]interface{}{
		"receipt_number": sale.Receipt(),
		"total_amount":   sale.TotalAmount,
		"products":       stock,
		"user": map[string]interface{}{
			"id":    actor.ID,
			"name":  actor.Name,
			"email": actor.Email,
		},
		"message": fmt.Sprintf("%s registered sale %s", actor.Name, sale.Receipt()),
	})
}

func failureReason(err error) string {
	var stockErr *InsufficientStockError
	var vErr *ValidationError
	switch {
	case errors.As(err, &stockErr):
		return "insufficient_stock"
	case errors.As(err, &vErr):
		return "validation"
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, ErrConcurrencyFailure):
		return "concurrency"
	case errors.Is(err, ErrConstraintViolation):
		return "constraint"
	}
	return "store"
}

func (s *saleService) GetByReceipt(ctx context.Context, receipt string) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByReceipt(ctx, receipt)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return sale, nil
}

func (s *saleService) List(ctx context.Context, filter repository.SaleFilter) ([]model.Sale, error) {
	return s.saleRepo.FindAll(ctx, filter)
}
