package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-pos-inventory/internal/model"
)

type StockMovementRepository interface {
	Append(tx *gorm.DB, movement *model.StockMovement) error
	Save(ctx context.Context, movement *model.StockMovement) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockMovement, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]model.StockMovement, error)
}

type stockMovementRepo struct {
	db *gorm.DB
}

func NewStockMovementRepo(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db}
}

// Append inserts a new ledger entry. Stock is not touched here; the caller
// adjusts the product in the same transaction.
func (r *stockMovementRepo) Append(tx *gorm.DB, movement *model.StockMovement) error {
	return tx.Omit(clause.Associations).Create(movement).Error
}

// Save rewrites an existing entry (its reason, typically). It never changes
// product stock, however many times it is called.
func (r *stockMovementRepo) Save(ctx context.Context, movement *model.StockMovement) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(movement).Error
}

func (r *stockMovementRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StockMovement, error) {
	var movement model.StockMovement
	if err := r.db.WithContext(ctx).Preload("Product").Preload("User").First(&movement, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

func (r *stockMovementRepo) FindByProduct(ctx context.Context, productID uuid.UUID) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&movements).Error
	return movements, err
}
