package model

import (
	"time"

	"gorm.io/gorm"
)

// Customer is the commerce identity. UserID is nil for an anonymous
// customer scoped to a browser session; logging in merges that customer's
// cart into the user's own customer and deletes the anonymous record.
type Customer struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    *uint          `gorm:"index" json:"user_id,omitempty"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Notes     string         `gorm:"type:text" json:"notes"`
	Fax       string         `json:"fax"`
	Company   string         `json:"company"`
	Gender    string         `json:"gender"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	BillingAddressID  *uint `json:"billing_address_id,omitempty"`
	DeliveryAddressID *uint `json:"delivery_address_id,omitempty"`

	Addresses []Address `gorm:"foreignKey:CustomerID" json:"addresses,omitempty"`
}

func (Customer) TableName() string {
	return "customers"
}

// SetAddress records the customer's billing or delivery address slot.
func (c *Customer) SetAddress(addressType string, address *Address) {
	switch addressType {
	case AddressBilling:
		c.BillingAddressID = &address.ID
	case AddressDelivery:
		c.DeliveryAddressID = &address.ID
	}
}

const (
	AddressBilling  = "billing"
	AddressDelivery = "delivery"
)

type Address struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	CustomerID uint           `gorm:"not null;index" json:"customer_id"`
	Type       string         `gorm:"size:20;not null" json:"type"`
	CountryID  *uint          `json:"country_id,omitempty"`
	City       string         `gorm:"not null" json:"city"`
	Street     string         `gorm:"not null" json:"street"`
	Apartment  string         `json:"apartment"`
	ZipCode    string         `gorm:"size:20" json:"zip_code"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Address) TableName() string {
	return "addresses"
}
