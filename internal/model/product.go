package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is priced in the primary currency (BOB). PriceSecondary is the USD
// price derived from the latest exchange rate and is rewritten by the
// repository on every save; it is nil while no exchange rate exists.
type Product struct {
	BaseModel
	Name           string           `gorm:"type:varchar(200);not null" json:"name"`
	CategoryID     *uuid.UUID       `gorm:"type:uuid;index" json:"category_id"`
	Category       *Category        `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"category,omitempty"`
	Price          decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	Cost           decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"cost"`
	Stock          int              `gorm:"not null;default:0" json:"stock"`
	Barcode        *string          `gorm:"type:varchar(100);uniqueIndex" json:"barcode"`
	PriceSecondary *decimal.Decimal `gorm:"type:decimal(10,2)" json:"price_usd"`

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	UpdatedByUserID *string `gorm:"type:varchar(255)" json:"updated_by_user_id,omitempty"`
}

// CategoryName returns the category label used by the POS screen.
func (p *Product) CategoryName() string {
	if p.Category == nil {
		return "Uncategorized"
	}
	return p.Category.Name
}
