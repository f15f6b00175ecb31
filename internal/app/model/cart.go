package model

import (
	"time"

	"gorm.io/gorm"
)

// Cart is a per-customer reservation against a shelf. UpdatedAt doubles as
// the abandonment marker for the expiry reclaim task.
type Cart struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	CustomerID    uint           `gorm:"not null;index" json:"customer_id"`
	PriceOptionID uint           `gorm:"not null;index" json:"price_option_id"`
	Amount        int            `gorm:"not null;default:1" json:"amount"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Cart) TableName() string {
	return "carts"
}

// Shelf tracks available inventory for a price option.
type Shelf struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	PriceOptionID uint      `gorm:"not null;uniqueIndex" json:"price_option_id"`
	Quantity      int       `gorm:"not null;default:0" json:"quantity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Shelf) TableName() string {
	return "shelves"
}
