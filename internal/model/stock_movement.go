package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// StockMovement is an append-only ledger entry. The product stock is adjusted
// once, in the transaction that inserts the entry; later edits never touch it.
type StockMovement struct {
	BaseModel
	ProductID uuid.UUID        `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	Product   *Product         `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"product,omitempty" validate:"-"`
	Type      MovementType     `gorm:"column:movement_type;type:varchar(3);not null" json:"movement_type" validate:"required,oneof=IN OUT"`
	Quantity  int              `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	UnitCost  *decimal.Decimal `gorm:"type:decimal(10,2)" json:"unit_cost,omitempty"`
	Reason    string           `gorm:"type:text" json:"reason"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User            `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"user,omitempty" validate:"-"`
}

// Delta is the signed stock change this movement applies.
func (m *StockMovement) Delta() int {
	if m.Type == MovementOut {
		return -m.Quantity
	}
	return m.Quantity
}
