package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"go-pos-inventory/internal/repository"
	"go-pos-inventory/pkg/validator"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrConcurrencyFailure  = errors.New("the operation conflicted with a concurrent update, please retry")
	ErrConstraintViolation = errors.New("the change conflicts with existing data")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductInUse        = errors.New("product is referenced by sales and cannot be deleted")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrMovementNotFound    = errors.New("stock movement not found")
	ErrSaleNotFound        = errors.New("sale not found")
	ErrUserHasSales        = errors.New("user has registered sales and cannot be deleted")
	ErrBarcodeExists       = errors.New("barcode already exists")
	ErrInvalidRate         = errors.New("exchange rate must be greater than zero")
	ErrNoExchangeRate      = errors.New("no exchange rate has been set")
)

// ValidationError reports a single invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InsufficientStockError aborts a sale when a line asks for more units than
// the locked product row holds.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s. Available: %d, requested: %d", e.ProductName, e.Available, e.Requested)
}

// firstValidationError turns the first struct validation failure into a
// ValidationError, or returns nil.
func firstValidationError(v interface{}) error {
	errs := validator.ValidateStruct(v)
	if len(errs) == 0 {
		return nil
	}
	for field, msg := range validator.Fields(errs[:1]) {
		return &ValidationError{Field: field, Message: msg}
	}
	return nil
}

// classifyStoreError maps driver and gorm errors onto the service sentinels,
// keeping the original error in the chain.
func classifyStoreError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrConcurrencyFailure, err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23503", "23514":
			return fmt.Errorf("%w: %s", ErrConstraintViolation, pgErr.Message)
		case "55P03", "40001", "40P01":
			return fmt.Errorf("%w: %s", ErrConcurrencyFailure, pgErr.Message)
		}
	}

	if errors.Is(err, repository.ErrReceiptAssigned) {
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	}
	return err
}
