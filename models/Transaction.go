package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the user-facing monetary event. Amount is always a positive
// magnitude; the sign of its balance impact comes from Kind.
type Transaction struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(64)"`
	CategoryID    string          `json:"categoryId" gorm:"type:varchar(64);not null;index"`
	SubCategoryID string          `json:"subCategoryId" gorm:"type:varchar(64);not null;index"`
	AccountID     string          `json:"accountId" gorm:"type:varchar(64);not null;index"`
	Date          time.Time       `json:"date" gorm:"type:date;not null;index"`
	Description   string          `json:"description" gorm:"type:text"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(15,2);not null"`
	Kind          Kind            `json:"kind" gorm:"type:varchar(16);not null"`
	CreatedBy     string          `json:"createdBy" gorm:"type:varchar(64)"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	Category    Category    `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	SubCategory SubCategory `json:"subCategory,omitempty" gorm:"foreignKey:SubCategoryID"`
	Account     Account     `json:"account,omitempty" gorm:"foreignKey:AccountID"`
}
