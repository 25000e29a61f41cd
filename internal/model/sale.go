package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is one committed checkout. ID comes from the database sequence and is
// the source of the receipt number; ReceiptNumber stays NULL only inside the
// transaction that creates the sale.
type Sale struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	SalespersonID uuid.UUID       `gorm:"type:uuid;not null;index" json:"salesperson_id"`
	Salesperson   *User           `gorm:"foreignKey:SalespersonID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"salesperson,omitempty"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_amount"`
	ReceiptNumber *string         `gorm:"type:varchar(50);uniqueIndex" json:"receipt_number"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// Receipt returns the receipt number or an empty string before it is assigned.
func (s *Sale) Receipt() string {
	if s.ReceiptNumber == nil {
		return ""
	}
	return *s.ReceiptNumber
}

// SaleItem is a line of a sale. UnitPrice is the price agreed at the counter,
// which may differ from the product's list price.
type SaleItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SaleID    uint            `gorm:"not null;index" json:"sale_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`
}
