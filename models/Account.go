package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountKind string

const (
	AccountCash      AccountKind = "CASH"
	AccountBank      AccountKind = "BANK"
	AccountSecretary AccountKind = "SECRETARY"
)

// Account is a balance-bearing pool of money. Balance is only ever written
// through the ledger package; everything else treats it as read-only.
type Account struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name      string          `json:"name" gorm:"type:varchar(255);not null;uniqueIndex"`
	Kind      AccountKind     `json:"kind" gorm:"type:varchar(16);not null;index"`
	Balance   decimal.Decimal `json:"balance" gorm:"type:decimal(15,2);not null"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
