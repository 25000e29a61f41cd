package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/pricing"
)

type ProductRepository interface {
	Create(tx *gorm.DB, product *model.Product) error
	Save(tx *gorm.DB, product *model.Product) error
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	AdjustStock(tx *gorm.DB, product *model.Product, delta int, updatedBy string) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
	Catalog(ctx context.Context, query string) ([]model.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

// Create inserts product with its USD price derived from the latest rate.
func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	rate, err := latestRate(tx)
	if err != nil {
		return err
	}
	pricing.ApplySecondaryPrice(product, rate)
	return tx.Omit(clause.Associations).Create(product).Error
}

// Save persists every column of product. The derived USD price is always
// recomputed first, so a product saved after a rate change picks up the new rate.
func (r *productRepo) Save(tx *gorm.DB, product *model.Product) error {
	rate, err := latestRate(tx)
	if err != nil {
		return err
	}
	pricing.ApplySecondaryPrice(product, rate)
	return tx.Omit(clause.Associations).Save(product).Error
}

// LockByID reads a product and holds its row lock until tx ends.
func (r *productRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := tx.Clauses(ForUpdate).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// AdjustStock applies a signed delta to a product previously locked in tx.
// Negative results are allowed; callers that must not oversell check first.
func (r *productRepo) AdjustStock(tx *gorm.DB, product *model.Product, delta int, updatedBy string) error {
	product.Stock += delta
	product.UpdatedBy = updatedBy
	product.UpdatedByUserID = &updatedBy
	return r.Save(tx, product)
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Preload("Category").Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "barcode = ?", barcode).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Product{}).Order("name ASC").Pluck("id", &ids).Error
	return ids, err
}

// Catalog lists in-stock products for the point of sale. A non-empty query
// matches the product name or the category name, case-insensitively.
func (r *productRepo) Catalog(ctx context.Context, query string) ([]model.Product, error) {
	q := r.db.WithContext(ctx).
		Select("products.*").
		Preload("Category").
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Where("products.stock > 0")

	if term := strings.TrimSpace(query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(products.name) LIKE ? OR LOWER(categories.name) LIKE ?", like, like)
	}

	var products []model.Product
	err := q.Order("products.name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsNotFound reports whether err is gorm's record-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
