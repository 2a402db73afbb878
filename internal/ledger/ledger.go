// Package ledger owns every write to Account.Balance. Movements are passed as
// positive magnitudes; the sign comes from the transaction kind (or, for pair
// movements, from which account is the source).
//
// All functions operate on the caller's transaction handle and never open
// their own. Atomicity and isolation are the caller's responsibility.
package ledger

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"treasury/internal/apperr"
	"treasury/models"
)

// Apply adds the movement's signed delta to the account balance and returns
// the new balance. INCOME adds the amount, EXPENSE subtracts it.
func Apply(tx *gorm.DB, accountID string, amount decimal.Decimal, kind models.Kind) (decimal.Decimal, error) {
	return adjust(tx, accountID, delta(amount, kind))
}

// Reverse undoes a previous Apply with the same arguments. Apply followed by
// Reverse restores the stored balance exactly.
func Reverse(tx *gorm.DB, accountID string, amount decimal.Decimal, kind models.Kind) (decimal.Decimal, error) {
	return adjust(tx, accountID, delta(amount, kind).Neg())
}

// Move debits fromID and credits toID by the same amount. Run inside one
// transaction, either both legs land or neither does.
func Move(tx *gorm.DB, fromID, toID string, amount decimal.Decimal) error {
	if _, err := adjust(tx, fromID, amount.Neg()); err != nil {
		return err
	}
	_, err := adjust(tx, toID, amount)
	return err
}

func delta(amount decimal.Decimal, kind models.Kind) decimal.Decimal {
	if kind == models.KindExpense {
		return amount.Neg()
	}
	return amount
}

func adjust(tx *gorm.DB, accountID string, d decimal.Decimal) (decimal.Decimal, error) {
	var acc models.Account
	if err := tx.First(&acc, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, apperr.NotFoundf("account %s not found", accountID)
		}
		return decimal.Zero, err
	}
	balance := acc.Balance.Add(d)
	if err := tx.Model(&models.Account{}).Where("id = ?", acc.ID).
		Update("balance", balance).Error; err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}
