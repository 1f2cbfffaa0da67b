// internal/domain/product/entity.go
package product

import "time"

// Product represents a catalog entry
type Product struct {
	ID              uint      `gorm:"primaryKey" json:"_id"`
	Name            string    `gorm:"not null;size:255" json:"name"`
	Description     string    `gorm:"type:text;not null" json:"description"`
	Image           string    `gorm:"size:500;default:''" json:"image"`
	Price           float64   `gorm:"not null" json:"price"`
	Category        string    `gorm:"not null;size:100;index" json:"category"`
	Rating          float64   `gorm:"not null;default:0" json:"rating"`
	NumbersOfRating int       `gorm:"not null;default:0" json:"numbersOfRating"`
	Stock           bool      `gorm:"not null" json:"stock"`
	Slug            string    `gorm:"uniqueIndex;size:300" json:"slug"`
	Discount        float64   `gorm:"not null;default:0" json:"discount"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TableName overrides the table name for Product
func (Product) TableName() string {
	return "products"
}

