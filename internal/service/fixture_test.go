package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
)

// fixture wires the services against a real database. On SQLite the pool is
// capped at one connection, so transactions from concurrent callers queue up
// instead of tripping over SQLite's single writer.
type fixture struct {
	db *gorm.DB

	products   repository.ProductRepository
	categories repository.CategoryRepository
	sales      repository.SaleRepository
	movements  repository.StockMovementRepository
	rates      repository.ExchangeRateRepository
	users      repository.UserRepository

	saleService     SaleService
	inventory       InventoryService
	rateService     ExchangeRateService
	categoryService CategoryService
	userService     UserService
	cashService     CashService
	dashboard       DashboardService

	seller model.Actor
}

// newFixture runs against a throwaway SQLite file.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "pos.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return newFixtureWithDB(t, db)
}

// newFixtureWithDB migrates db and wires the services on top of it. Rows are
// not cleaned up, so callers on a shared database use unique names.
func newFixtureWithDB(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Privilege{},
		&model.Role{},
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.ExchangeRate{},
		&model.Sale{},
		&model.SaleItem{},
		&model.StockMovement{},
		&model.CashTransaction{},
	))

	f := &fixture{
		db:         db,
		products:   repository.NewProductRepo(db),
		categories: repository.NewCategoryRepo(db),
		sales:      repository.NewSaleRepo(db),
		movements:  repository.NewStockMovementRepo(db),
		rates:      repository.NewExchangeRateRepo(db),
		users:      repository.NewUserRepo(db),
	}

	f.saleService = NewSaleService(db, f.sales, f.products, nil, nil, nil, SaleOptions{})
	f.inventory = NewInventoryService(InventoryDeps{
		DB:         db,
		Products:   f.products,
		Movements:  f.movements,
		Categories: f.categories,
		Sales:      f.sales,
	})
	f.rateService = NewExchangeRateService(db, f.rates, f.products, nil, nil, nil, 0)
	f.categoryService = NewCategoryService(f.categories, nil)
	f.userService = NewUserService(f.users, repository.NewPrivilegeRepo(db), repository.NewRoleRepo(db), f.sales)
	f.cashService = NewCashService(repository.NewCashRepo(db))
	f.dashboard = NewDashboardService(repository.NewReportRepo(db))

	seller := f.createUser(t, "seller-"+uuid.NewString()+"@example.com")
	f.seller = model.Actor{ID: seller.ID, Name: seller.FullName, Email: seller.Email}
	return f
}

func (f *fixture) createUser(t *testing.T, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, FullName: "Test " + email, Password: "x", IsActive: true}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *fixture) createProduct(t *testing.T, name, price string, stock int) *model.Product {
	t.Helper()
	p, err := f.inventory.CreateProduct(context.Background(), &ProductRequest{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Cost:  decimal.RequireFromString("1.00"),
		Stock: stock,
	}, f.seller)
	require.NoError(t, err)
	return p
}

func (f *fixture) stockOf(t *testing.T, p *model.Product) int {
	t.Helper()
	fresh, err := f.products.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	return fresh.Stock
}

func (f *fixture) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
