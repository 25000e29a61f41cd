package repository

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-pos-inventory/internal/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "repo.db") + "?_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.Role{}, &model.Privilege{}, &model.User{}, &model.Category{},
		&model.Product{}, &model.ExchangeRate{}, &model.Sale{}, &model.SaleItem{}))
	return db
}

func TestFormatReceiptNumber(t *testing.T) {
	assert.Equal(t, "REC-000001", FormatReceiptNumber(1))
	assert.Equal(t, "REC-004217", FormatReceiptNumber(4217))
	assert.Equal(t, "REC-1234567", FormatReceiptNumber(1234567))
}

func TestAssignReceiptNumberOnce(t *testing.T) {
	db := openTestDB(t)
	user := &model.User{Email: "a@example.com", FullName: "A", Password: "x"}
	require.NoError(t, db.Create(user).Error)

	repo := NewSaleRepo(db)
	sale := &model.Sale{SalespersonID: user.ID, TotalAmount: decimal.RequireFromString("12.345")}
	require.NoError(t, repo.Create(db, sale))
	require.NoError(t, repo.AssignReceiptNumber(db, sale))
	assert.Equal(t, FormatReceiptNumber(sale.ID), sale.Receipt())

	assert.ErrorIs(t, repo.AssignReceiptNumber(db, sale), ErrReceiptAssigned)

	var stored model.Sale
	require.NoError(t, db.First(&stored, sale.ID).Error)
	assert.Equal(t, "12.35", stored.TotalAmount.StringFixed(2))
}

func TestProductSaveRefreshesSecondaryPrice(t *testing.T) {
	db := openTestDB(t)
	repo := NewProductRepo(db)

	p := &model.Product{Name: "Soap", Price: decimal.RequireFromString("70.00"), Cost: decimal.Zero}
	require.NoError(t, repo.Create(db, p))
	assert.Nil(t, p.PriceSecondary)

	require.NoError(t, db.Create(&model.ExchangeRate{Rate: decimal.RequireFromString("6.96")}).Error)

	locked, err := repo.LockByID(db, p.ID)
	require.NoError(t, err)
	require.NoError(t, repo.AdjustStock(db, locked, 5, uuid.NewString()))

	fresh, err := repo.FindByID(t.Context(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, fresh.Stock)
	require.NotNil(t, fresh.PriceSecondary)
	assert.Equal(t, "10.06", fresh.PriceSecondary.StringFixed(2))
}
