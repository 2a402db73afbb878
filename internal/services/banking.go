package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"treasury/internal/apperr"
	"treasury/internal/ledger"
	"treasury/models"
)

// BankingService keeps banking operations, the cash and bank accounts, and
// optionally a linked transaction consistent with each other. Standalone
// operations open their own atomic unit; the reconcile entry points run on the
// transaction lifecycle's handle.
type BankingService struct {
	DB  *gorm.DB
	Log zerolog.Logger
}

type CreateBankingOperationInput struct {
	AccountID   string
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Direction   models.BankingDirection
	CheckNumber string
}

type UpdateBankingOperationInput struct {
	Date        *time.Time
	Description *string
	Amount      *decimal.Decimal
	Direction   *models.BankingDirection
	CheckNumber *string
}

func (s BankingService) CreateStandalone(input CreateBankingOperationInput) (*models.BankingOperation, error) {
	if input.Direction != models.DirectionWithdrawal && input.Direction != models.DirectionDeposit {
		return nil, apperr.Validationf("direction must be WITHDRAWAL or DEPOSIT")
	}
	if !input.Amount.IsPositive() {
		return nil, apperr.Validationf("amount must be positive")
	}
	if input.Date.IsZero() {
		return nil, apperr.Validationf("date is required")
	}
	if input.Direction == models.DirectionWithdrawal && input.CheckNumber == "" {
		return nil, apperr.Validationf("check number is required for withdrawals")
	}

	var bank models.Account
	if err := s.DB.First(&bank, "id = ?", input.AccountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("account %s not found", input.AccountID)
		}
		return nil, err
	}
	if bank.Kind != models.AccountBank {
		return nil, apperr.Validationf("account %q is not a bank account", bank.Name)
	}

	op := models.BankingOperation{
		ID:          uuid.NewString(),
		AccountID:   bank.ID,
		Date:        input.Date,
		Description: input.Description,
		Amount:      input.Amount,
		Direction:   input.Direction,
	}
	if input.CheckNumber != "" {
		op.CheckNumber = &input.CheckNumber
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		cash, err := s.cashAccount(tx)
		if err != nil {
			return err
		}
		if op.CheckNumber != nil {
			if err := s.ensureCheckNumberFree(tx, *op.CheckNumber, ""); err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations).Create(&op).Error; err != nil {
			if apperr.IsDuplicate(err) {
				return apperr.Conflictf("check number %q already used", input.CheckNumber)
			}
			return err
		}
		return s.applyPair(tx, &op, cash.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.getOperation(op.ID)
}

func (s BankingService) UpdateStandalone(id string, input UpdateBankingOperationInput) (*models.BankingOperation, error) {
	old, err := s.getOperation(id)
	if err != nil {
		return nil, err
	}

	updated := *old
	if input.Date != nil {
		updated.Date = *input.Date
	}
	if input.Description != nil {
		updated.Description = *input.Description
	}
	if input.Amount != nil {
		updated.Amount = *input.Amount
	}
	if input.Direction != nil {
		updated.Direction = *input.Direction
	}
	if input.CheckNumber != nil {
		if *input.CheckNumber == "" {
			updated.CheckNumber = nil
		} else {
			updated.CheckNumber = input.CheckNumber
		}
	}

	if updated.Direction != models.DirectionWithdrawal && updated.Direction != models.DirectionDeposit {
		return nil, apperr.Validationf("direction must be WITHDRAWAL or DEPOSIT")
	}
	if !updated.Amount.IsPositive() {
		return nil, apperr.Validationf("amount must be positive")
	}
	if updated.Direction == models.DirectionWithdrawal && updated.CheckNumber == nil {
		return nil, apperr.Validationf("check number is required for withdrawals")
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		cash, err := s.cashAccount(tx)
		if err != nil {
			return err
		}
		if updated.CheckNumber != nil {
			if err := s.ensureCheckNumberFree(tx, *updated.CheckNumber, old.ID); err != nil {
				return err
			}
		}
		if err := s.reversePair(tx, old, cash.ID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(&updated).Error; err != nil {
			return err
		}
		return s.applyPair(tx, &updated, cash.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.getOperation(id)
}

func (s BankingService) DeleteStandalone(id string) error {
	old, err := s.getOperation(id)
	if err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		cash, err := s.cashAccount(tx)
		if err != nil {
			return err
		}
		if err := s.reversePair(tx, old, cash.ID); err != nil {
			return err
		}
		return tx.Delete(&models.BankingOperation{}, "id = ?", id).Error
	})
}

func (s BankingService) List() ([]models.BankingOperation, error) {
	var list []models.BankingOperation
	if err := s.DB.Preload("Account").Order("date DESC, created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// attachOnCreate creates the banking leg of a freshly inserted banking-linked
// transaction: a WITHDRAWAL operation against the institutional bank account
// plus the bank-to-cash pair movement. Runs on the lifecycle's handle.
func (s BankingService) attachOnCreate(tx *gorm.DB, txn *models.Transaction) error {
	check := ExtractCheckNumber(txn.Description)
	cash, err := s.cashAccount(tx)
	if err != nil {
		return err
	}
	bank, err := s.bankAccount(tx)
	if err != nil {
		return err
	}
	if err := s.ensureCheckNumberFree(tx, check, ""); err != nil {
		return err
	}
	op := models.BankingOperation{
		ID:          uuid.NewString(),
		AccountID:   bank.ID,
		Date:        txn.Date,
		Description: txn.Description,
		Amount:      txn.Amount,
		Direction:   models.DirectionWithdrawal,
		CheckNumber: &check,
	}
	if err := tx.Omit(clause.Associations).Create(&op).Error; err != nil {
		if apperr.IsDuplicate(err) {
			return apperr.Conflictf("check number %q already used", check)
		}
		return err
	}
	return ledger.Move(tx, bank.ID, cash.ID, op.Amount)
}

// reconcileUpdate rewrites the banking leg and the narrative leg of an edited
// transaction. Write order is fixed: banking reversal, banking reapplication,
// narrative reversal, row persist, narrative reapplication. The two legs touch
// the cash account independently and are unwound and reapplied independently.
func (s BankingService) reconcileUpdate(tx *gorm.DB, old *models.Transaction, eff effectiveTransaction) error {
	var oldCheck, newCheck string
	if old.Kind == models.KindExpense {
		oldCheck = ExtractCheckNumber(old.Description)
	}
	if eff.Kind == models.KindExpense {
		newCheck = ExtractCheckNumber(eff.Description)
	}

	cash, err := s.cashAccount(tx)
	if err != nil {
		return err
	}

	degraded := false
	var oldOp *models.BankingOperation
	if oldCheck != "" {
		oldOp, err = s.findByCheckNumber(tx, oldCheck)
		if err != nil {
			return err
		}
		if oldOp == nil {
			// Data-integrity gap: the linked operation is gone. Degrade the
			// whole edit to a plain transaction instead of failing it.
			degraded = true
			s.Log.Warn().
				Str("transaction", old.ID).
				Str("checkNumber", oldCheck).
				Msg("linked banking operation not found, treating as plain transaction")
		} else if err := ledger.Move(tx, cash.ID, oldOp.AccountID, oldOp.Amount); err != nil {
			return err
		}
	}

	switch {
	case degraded:
	case newCheck != "" && oldOp != nil && newCheck == oldCheck:
		oldOp.Date = eff.Date
		oldOp.Description = eff.Description
		oldOp.Amount = eff.Amount
		if err := tx.Omit(clause.Associations).Save(oldOp).Error; err != nil {
			return err
		}
		if err := ledger.Move(tx, oldOp.AccountID, cash.ID, eff.Amount); err != nil {
			return err
		}
	case newCheck != "":
		if oldOp != nil {
			if err := tx.Delete(&models.BankingOperation{}, "id = ?", oldOp.ID).Error; err != nil {
				return err
			}
		}
		if err := s.ensureCheckNumberFree(tx, newCheck, ""); err != nil {
			return err
		}
		bank, err := s.bankAccount(tx)
		if err != nil {
			return err
		}
		op := models.BankingOperation{
			ID:          uuid.NewString(),
			AccountID:   bank.ID,
			Date:        eff.Date,
			Description: eff.Description,
			Amount:      eff.Amount,
			Direction:   models.DirectionWithdrawal,
			CheckNumber: &newCheck,
		}
		if err := tx.Omit(clause.Associations).Create(&op).Error; err != nil {
			if apperr.IsDuplicate(err) {
				return apperr.Conflictf("check number %q already used", newCheck)
			}
			return err
		}
		if err := ledger.Move(tx, bank.ID, cash.ID, eff.Amount); err != nil {
			return err
		}
	case oldOp != nil:
		// Link removed by the edit.
		if err := tx.Delete(&models.BankingOperation{}, "id = ?", oldOp.ID).Error; err != nil {
			return err
		}
	}

	if _, err := ledger.Reverse(tx, old.AccountID, old.Amount, old.Kind); err != nil {
		return err
	}
	if err := persistEffective(tx, old.ID, eff); err != nil {
		return err
	}
	_, err = ledger.Apply(tx, eff.AccountID, eff.Amount, eff.Kind)
	return err
}

// detachOnDelete unwinds the banking leg of a banking-linked transaction that
// is being deleted. A missing linked operation is logged and skipped.
func (s BankingService) detachOnDelete(tx *gorm.DB, txn *models.Transaction) error {
	check := ExtractCheckNumber(txn.Description)
	op, err := s.findByCheckNumber(tx, check)
	if err != nil {
		return err
	}
	if op == nil {
		s.Log.Warn().
			Str("transaction", txn.ID).
			Str("checkNumber", check).
			Msg("linked banking operation not found, deleting as plain transaction")
		return nil
	}
	cash, err := s.cashAccount(tx)
	if err != nil {
		return err
	}
	if err := ledger.Move(tx, cash.ID, op.AccountID, op.Amount); err != nil {
		return err
	}
	return tx.Delete(&models.BankingOperation{}, "id = ?", op.ID).Error
}

// applyPair lands a standalone operation's effect on both accounts. A deposit
// moves cash into the bank account, a withdrawal moves bank money into cash.
func (s BankingService) applyPair(tx *gorm.DB, op *models.BankingOperation, cashID string) error {
	if op.Direction == models.DirectionDeposit {
		return ledger.Move(tx, cashID, op.AccountID, op.Amount)
	}
	return ledger.Move(tx, op.AccountID, cashID, op.Amount)
}

func (s BankingService) reversePair(tx *gorm.DB, op *models.BankingOperation, cashID string) error {
	if op.Direction == models.DirectionDeposit {
		return ledger.Move(tx, op.AccountID, cashID, op.Amount)
	}
	return ledger.Move(tx, cashID, op.AccountID, op.Amount)
}

// cashAccount resolves the single cash register account. The system assumes
// exactly one; its absence is a deployment defect, not a caller mistake.
func (s BankingService) cashAccount(tx *gorm.DB) (*models.Account, error) {
	var acc models.Account
	if err := tx.First(&acc, "kind = ?", models.AccountCash).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Preconditionf("no cash account configured")
		}
		return nil, err
	}
	return &acc, nil
}

func (s BankingService) bankAccount(tx *gorm.DB) (*models.Account, error) {
	var acc models.Account
	if err := tx.First(&acc, "kind = ?", models.AccountBank).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Preconditionf("no bank account configured")
		}
		return nil, err
	}
	return &acc, nil
}

func (s BankingService) findByCheckNumber(tx *gorm.DB, check string) (*models.BankingOperation, error) {
	var op models.BankingOperation
	if err := tx.First(&op, "check_number = ?", check).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &op, nil
}

func (s BankingService) ensureCheckNumberFree(tx *gorm.DB, check, excludeID string) error {
	q := tx.Model(&models.BankingOperation{}).Where("check_number = ?", check)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var cnt int64
	if err := q.Count(&cnt).Error; err != nil {
		return err
	}
	if cnt > 0 {
		return apperr.Conflictf("check number %q already used", check)
	}
	return nil
}

func (s BankingService) getOperation(id string) (*models.BankingOperation, error) {
	var op models.BankingOperation
	if err := s.DB.Preload("Account").First(&op, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("banking operation %s not found", id)
		}
		return nil, err
	}
	return &op, nil
}
