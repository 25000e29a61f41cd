package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/pricing"
)

// ReceiptPrefix starts every receipt number.
const ReceiptPrefix = "REC-"

var ErrReceiptAssigned = errors.New("receipt number already assigned")

// FormatReceiptNumber renders a sale id as REC-000042. Ids come from the
// database sequence, so numbers are unique and increase with commit order of
// the inserts; widths above six digits simply grow.
func FormatReceiptNumber(saleID uint) string {
	return fmt.Sprintf("%s%06d", ReceiptPrefix, saleID)
}

// SaleFilter narrows List. Zero values mean no restriction.
type SaleFilter struct {
	SalespersonID *uuid.UUID
	From          time.Time
	To            time.Time
	Limit         int
}

type SaleRepository interface {
	Create(tx *gorm.DB, sale *model.Sale) error
	CreateItem(tx *gorm.DB, item *model.SaleItem) error
	AssignReceiptNumber(tx *gorm.DB, sale *model.Sale) error
	FindByReceipt(ctx context.Context, receipt string) (*model.Sale, error)
	FindAll(ctx context.Context, filter SaleFilter) ([]model.Sale, error)
	CountBySalesperson(ctx context.Context, userID uuid.UUID) (int64, error)
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

// Create inserts the sale header with no receipt number; the row id it gets
// back is what AssignReceiptNumber formats.
func (r *saleRepo) Create(tx *gorm.DB, sale *model.Sale) error {
	sale.ReceiptNumber = nil
	return tx.Omit(clause.Associations).Create(sale).Error
}

// CreateItem inserts a sale line, deriving its line total first.
func (r *saleRepo) CreateItem(tx *gorm.DB, item *model.SaleItem) error {
	pricing.ApplyLineTotal(item)
	return tx.Omit(clause.Associations).Create(item).Error
}

// AssignReceiptNumber stores the sale total and its receipt number. A sale
// that already has a receipt is never renumbered.
func (r *saleRepo) AssignReceiptNumber(tx *gorm.DB, sale *model.Sale) error {
	if sale.ID == 0 {
		return errors.New("sale has no id")
	}
	receipt := FormatReceiptNumber(sale.ID)
	res := tx.Model(&model.Sale{}).
		Where("id = ? AND receipt_number IS NULL", sale.ID).
		Updates(map[string]interface{}{
			"total_amount":   sale.TotalAmount.Round(pricing.MoneyPlaces),
			"receipt_number": receipt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrReceiptAssigned
	}
	sale.ReceiptNumber = &receipt
	return nil
}

func (r *saleRepo) FindByReceipt(ctx context.Context, receipt string) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.WithContext(ctx).
		Preload("Salesperson").
		Preload("Items").
		Preload("Items.Product").
		First(&sale, "receipt_number = ?", receipt).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) FindAll(ctx context.Context, filter SaleFilter) ([]model.Sale, error) {
	q := r.db.WithContext(ctx).Preload("Salesperson").Preload("Items")
	if filter.SalespersonID != nil {
		q = q.Where("salesperson_id = ?", *filter.SalespersonID)
	}
	if !filter.From.IsZero() {
		q = q.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("created_at < ?", filter.To)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var sales []model.Sale
	err := q.Order("id DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) CountBySalesperson(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Sale{}).Where("salesperson_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *saleRepo) CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.SaleItem{}).Where("product_id = ?", productID).Count(&n).Error
	return n, err
}
