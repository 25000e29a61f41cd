package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-pos-inventory/internal/metrics"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/pricing"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/ws"
)

// RateChangeResult is what ApplyNewRate reports back to the administrator.
type RateChangeResult struct {
	Rate            *model.ExchangeRate `json:"rate"`
	ProductsUpdated int                 `json:"products_updated"`
}

type ExchangeRateService interface {
	ApplyNewRate(ctx context.Context, rate decimal.Decimal, actor model.Actor) (*RateChangeResult, error)
	Current(ctx context.Context) (*model.ExchangeRate, error)
	History(ctx context.Context) ([]model.ExchangeRate, error)
}

type exchangeRateService struct {
	db          *gorm.DB
	rateRepo    repository.ExchangeRateRepository
	productRepo repository.ProductRepository
	catalog     CatalogCache
	wsHub       *ws.Hub
	log         *slog.Logger
	lockTimeout time.Duration
}

func NewExchangeRateService(db *gorm.DB, rateRepo repository.ExchangeRateRepository, productRepo repository.ProductRepository, catalog CatalogCache, hub *ws.Hub, log *slog.Logger, lockTimeout time.Duration) ExchangeRateService {
	if catalog == nil {
		catalog = noopCatalog{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &exchangeRateService{
		db:          db,
		rateRepo:    rateRepo,
		productRepo: productRepo,
		catalog:     catalog,
		wsHub:       hub,
		log:         log,
		lockTimeout: lockTimeout,
	}
}

// ApplyNewRate records rate as the latest BOB/USD rate and reprices the
// catalog so that USD prices stay put: with a previous rate in place every
// product gets price = round2(price / previous) × rate. Every product is
// re-saved, which also gives products a USD price on the very first rate.
//
// The USD price is recomputed from the locked row and the previous rate, not
// read from price_usd: a sale saved after the new rate row exists has
// already refreshed price_usd at the new rate.
//
// Products are updated one short transaction at a time. If one fails, the
// ones before it stay repriced and the error says how many.
func (s *exchangeRateService) ApplyNewRate(ctx context.Context, rate decimal.Decimal, actor model.Actor) (*RateChangeResult, error) {
	if !rate.IsPositive() {
		return nil, &ValidationError{Field: "rate", Message: ErrInvalidRate.Error()}
	}

	previous, err := s.rateRepo.Latest(ctx)
	if err != nil {
		return nil, classifyStoreError(err)
	}

	record := &model.ExchangeRate{Rate: rate.Round(4)}
	if actor.ID != uuid.Nil {
		id := actor.ID
		record.SetByUserID = &id
	}
	if err := s.rateRepo.Create(ctx, record); err != nil {
		return nil, classifyStoreError(err)
	}

	ids, err := s.productRepo.ListIDs(ctx)
	if err != nil {
		return nil, classifyStoreError(err)
	}

	updated := 0
	for _, id := range ids {
		repriced, err := s.repriceOne(ctx, id, previous, record.Rate, actor)
		if err != nil {
			s.catalog.Invalidate(context.WithoutCancel(ctx))
			metrics.ProductsRepriced.Add(float64(updated))
			return nil, fmt.Errorf("reprice product %s after %d updates: %w", id, updated, classifyStoreError(err))
		}
		if repriced {
			updated++
		}
	}

	metrics.ProductsRepriced.Add(float64(updated))
	s.catalog.Invalidate(context.WithoutCancel(ctx))
	s.log.Info("exchange rate applied", "rate", record.Rate.StringFixed(4), "products_updated", updated, "user", actor.ID)

	s.wsHub.Publish(ws.EventPriceUpdate, map[string]interface{}{
		"rate":             record.Rate,
		"products_updated": updated,
		"user": map[string]interface{}{
			"id":    actor.ID,
			"name":  actor.Name,
			"email": actor.Email,
		},
		"message": fmt.Sprintf("%s set the exchange rate to %s", actor.Name, record.Rate.StringFixed(2)),
	})

	return &RateChangeResult{Rate: record, ProductsUpdated: updated}, nil
}

// repriceOne reports whether the product's primary price was recalculated.
// Without a previous rate there is nothing to convert from. A product deleted
// since the id listing is skipped.
func (s *exchangeRateService) repriceOne(ctx context.Context, id uuid.UUID, previous *model.ExchangeRate, rate decimal.Decimal, actor model.Actor) (bool, error) {
	repriced := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.SetLockTimeout(tx, s.lockTimeout); err != nil {
			return err
		}
		product, err := s.productRepo.LockByID(tx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil
			}
			return err
		}

		if usd := pricing.SecondaryPrice(product.Price, previous); usd != nil {
			product.Price = pricing.Reprice(*usd, rate)
			repriced = true
		}
		product.UpdatedBy = actor.ID.String()
		return s.productRepo.Save(tx, product)
	})
	return repriced, err
}

func (s *exchangeRateService) Current(ctx context.Context) (*model.ExchangeRate, error) {
	rate, err := s.rateRepo.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, ErrNoExchangeRate
	}
	return rate, nil
}

func (s *exchangeRateService) History(ctx context.Context) ([]model.ExchangeRate, error) {
	return s.rateRepo.FindAll(ctx)
}
