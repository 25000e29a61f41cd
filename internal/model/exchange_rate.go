package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExchangeRate is BOB per one USD. Rows are history: never updated, never deleted.
type ExchangeRate struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Rate        decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"rate"`
	SetAt       time.Time       `gorm:"autoCreateTime;index;not null" json:"set_at"`
	SetByUserID *uuid.UUID      `gorm:"type:uuid" json:"set_by_user_id,omitempty"`
}

func (r ExchangeRate) String() string {
	return fmt.Sprintf("1 USD = %s BOB (%s)", r.Rate.StringFixed(4), r.SetAt.Format("2006-01-02 15:04"))
}
