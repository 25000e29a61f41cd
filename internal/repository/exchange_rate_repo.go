package repository

import (
	"context"

	"gorm.io/gorm"

	"go-pos-inventory/internal/model"
)

type ExchangeRateRepository interface {
	Create(ctx context.Context, rate *model.ExchangeRate) error
	Latest(ctx context.Context) (*model.ExchangeRate, error)
	FindAll(ctx context.Context) ([]model.ExchangeRate, error)
}

type exchangeRateRepo struct {
	db *gorm.DB
}

func NewExchangeRateRepo(db *gorm.DB) ExchangeRateRepository {
	return &exchangeRateRepo{db}
}

func (r *exchangeRateRepo) Create(ctx context.Context, rate *model.ExchangeRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

// Latest returns nil, nil when no rate has been set yet.
func (r *exchangeRateRepo) Latest(ctx context.Context) (*model.ExchangeRate, error) {
	return latestRate(r.db.WithContext(ctx))
}

// FindAll returns the rate history, newest first.
func (r *exchangeRateRepo) FindAll(ctx context.Context) ([]model.ExchangeRate, error) {
	var rates []model.ExchangeRate
	err := r.db.WithContext(ctx).Order("set_at DESC").Order("id DESC").Find(&rates).Error
	return rates, err
}
