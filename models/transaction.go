package models

import (
	"time"
)

// Transaction dated, categorized ledger entry. Immutable once created except for deletion.
type Transaction struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"userId" gorm:"not null;index:idx_transactions_user_date,priority:1"`
	CategoryID  uint      `json:"categoryId" gorm:"not null;index"`
	Type        string    `json:"type" gorm:"size:10;not null;index"`
	Amount      float64   `json:"amount" gorm:"type:decimal(12,2);not null"`
	Date        time.Time `json:"date" gorm:"not null;index:idx_transactions_user_date,priority:2"`
	Description string    `json:"description" gorm:"size:255;not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Category    *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// TableName table name
func (Transaction) TableName() string {
	return "transactions"
}

// CategoryName joined category name, empty when not loaded
func (t *Transaction) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return t.Category.Name
}
