package models

// Product is a catalog entry. Price is expressed in minor currency units.
type Product struct {
	BaseModel

	Name         string `gorm:"size:30;not null" json:"name"`
	Price        int64  `gorm:"not null;check:price >= 0" json:"price"`
	Category     string `gorm:"size:50;not null;index" json:"category"`
	Availability bool   `gorm:"not null;default:true" json:"availability"`
}

// TableName pins the products table name.
func (Product) TableName() string {
	return "products"
}
