package models

import (
	"time"
)

const (
	// TypeIngreso income
	TypeIngreso = "INGRESO"
	// TypeEgreso expense
	TypeEgreso = "EGRESO"
)

// ValidType reports whether t is INGRESO or EGRESO
func ValidType(t string) bool {
	return t == TypeIngreso || t == TypeEgreso
}

// Category user-owned income/expense bucket.
// Deactivated categories stay referenced by historical transactions.
type Category struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"userId" gorm:"not null;uniqueIndex:idx_categories_user_name,priority:1"`
	Name          string    `json:"name" gorm:"size:50;not null;uniqueIndex:idx_categories_user_name,priority:2"`
	Type          string    `json:"type" gorm:"size:10;not null;index"`
	MonthlyBudget float64   `json:"monthlyBudget" gorm:"type:decimal(12,2);not null;default:0"`
	IsActive      bool      `json:"isActive" gorm:"not null;default:true;index"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TableName table name
func (Category) TableName() string {
	return "categories"
}
