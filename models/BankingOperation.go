package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BankingDirection string

const (
	DirectionWithdrawal BankingDirection = "WITHDRAWAL"
	DirectionDeposit    BankingDirection = "DEPOSIT"
)

// BankingOperation is a bank/cash transfer attached to a BANK account.
// CheckNumber is mandatory for withdrawals and unique across all operations
// when present (MySQL unique indexes allow multiple NULLs).
type BankingOperation struct {
	ID          string           `json:"id" gorm:"primaryKey;type:varchar(64)"`
	AccountID   string           `json:"accountId" gorm:"type:varchar(64);not null;index"`
	Date        time.Time        `json:"date" gorm:"type:date;not null"`
	Description string           `json:"description" gorm:"type:text"`
	Amount      decimal.Decimal  `json:"amount" gorm:"type:decimal(15,2);not null"`
	Direction   BankingDirection `json:"direction" gorm:"type:varchar(16);not null"`
	CheckNumber *string          `json:"checkNumber,omitempty" gorm:"type:varchar(32);uniqueIndex"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`

	Account Account `json:"account,omitempty" gorm:"foreignKey:AccountID"`
}
