package model

import (
	"time"

	"gorm.io/gorm"
)

type BankAccount struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	BankName  string         `gorm:"not null" json:"bank_name"`
	IBAN      string         `gorm:"column:iban;not null" json:"iban"`
	SWIFT     string         `gorm:"column:swift;not null" json:"swift"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (BankAccount) TableName() string {
	return "bank_accounts"
}

// CheckOwner reports whether the account belongs to the given user.
func (b *BankAccount) CheckOwner(user *User) bool {
	return user != nil && b.UserID == user.ID
}
