package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CashDirection string

const (
	CashIn  CashDirection = "IN"
	CashOut CashDirection = "OUT"
)

// CashTransaction is a manual cash-drawer movement (float, petty cash,
// withdrawals) recorded outside of sales.
type CashTransaction struct {
	BaseModel
	Type        CashDirection   `gorm:"type:varchar(3);not null;index" json:"type"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description string          `gorm:"type:varchar(255)" json:"description"`
	Date        time.Time       `gorm:"type:date;not null;index" json:"date"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User           `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"user,omitempty"`
}
