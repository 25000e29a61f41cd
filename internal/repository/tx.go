package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-pos-inventory/internal/model"
)

// ForUpdate is the row lock used on product rows. Dialects without row locks
// (SQLite) drop the clause and rely on their own write serialisation.
var ForUpdate = clause.Locking{Strength: "UPDATE"}

// SetLockTimeout bounds how long the current transaction waits on a row lock.
// Only Postgres understands it; other dialects are left alone.
func SetLockTimeout(tx *gorm.DB, d time.Duration) error {
	if d <= 0 || tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", d.Milliseconds())).Error
}

// latestRate returns the most recent exchange rate visible to db, or nil when
// none has been recorded. Ties on set_at go to the higher id.
func latestRate(db *gorm.DB) (*model.ExchangeRate, error) {
	var rate model.ExchangeRate
	err := db.Order("set_at DESC").Order("id DESC").Limit(1).Take(&rate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rate, nil
}
