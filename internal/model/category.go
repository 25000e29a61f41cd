package model

// Category groups products. Deleting a category leaves its products uncategorised.
type Category struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);not null" json:"name" validate:"required,max=100"`
	Description string `gorm:"type:text" json:"description"`
}
