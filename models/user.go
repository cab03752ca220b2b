package models

import (
	"time"
)

const (
	// RoleBase free plan, capped transactions, ARS only
	RoleBase = "base"
	// RolePro paid plan
	RolePro = "pro"
)

const (
	CurrencyARS = "ARS"
	CurrencyUSD = "USD"
)

// User account and business profile
type User struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	Username          string    `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email             string    `json:"email" gorm:"uniqueIndex;size:100;not null"`
	Password          string    `json:"-" gorm:"size:255;not null"`
	BusinessName      string    `json:"businessName" gorm:"size:120;default:''"`
	MainCurrency      string    `json:"mainCurrency" gorm:"size:3;default:ARS"`
	Role              string    `json:"role" gorm:"size:10;default:base;index"`
	ProfileConfigured bool      `json:"profileConfigured" gorm:"default:false"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// TableName table name
func (User) TableName() string {
	return "users"
}

// IsPro reports whether the user is on the paid plan
func (u *User) IsPro() bool {
	return u != nil && u.Role == RolePro
}

// ValidCurrency reports whether c is a supported main currency
func ValidCurrency(c string) bool {
	return c == CurrencyARS || c == CurrencyUSD
}
