package models

import "gorm.io/gorm"

// User is the authenticated identity that owns an account. The ledger engine
// itself never touches users; it only sees resolved account identifiers.
type User struct {
	gorm.Model
	Name         string   `gorm:"not null" json:"name"`
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	Password     string   `gorm:"not null" json:"-"`
	TokenVersion int      `gorm:"default:1" json:"-"`
	Account      *Account `gorm:"foreignKey:UserID" json:"account,omitempty"`
}
