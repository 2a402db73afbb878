package models

import "gorm.io/gorm"

// Kind is the direction of a monetary movement, shared by transactions and
// categories.
type Kind string

const (
	KindIncome  Kind = "INCOME"
	KindExpense Kind = "EXPENSE"
)

// Category classifies transactions. A mixed category accepts both kinds;
// every other category only accepts transactions matching its own kind.
type Category struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name      string         `json:"name" gorm:"type:varchar(255);not null;uniqueIndex"`
	Kind      Kind           `json:"kind" gorm:"type:varchar(16);not null"`
	Mixed     bool           `json:"mixed" gorm:"not null;default:false"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
