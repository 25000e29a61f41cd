package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-pos-inventory/internal/model"
)

type CashRepository interface {
	Create(ctx context.Context, tx *model.CashTransaction) error
	FindBetween(ctx context.Context, start, end time.Time) ([]model.CashTransaction, error)
}

type cashRepo struct {
	db *gorm.DB
}

func NewCashRepo(db *gorm.DB) CashRepository {
	return &cashRepo{db}
}

func (r *cashRepo) Create(ctx context.Context, tx *model.CashTransaction) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(tx).Error
}

// FindBetween lists cash movements dated in [start, end), newest first.
func (r *cashRepo) FindBetween(ctx context.Context, start, end time.Time) ([]model.CashTransaction, error) {
	var txs []model.CashTransaction
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("date >= ? AND date < ?", start, end).
		Order("date DESC").
		Order("created_at DESC").
		Find(&txs).Error
	return txs, err
}
