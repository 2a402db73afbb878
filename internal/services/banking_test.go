package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"treasury/internal/apperr"
	"treasury/internal/auth"
	"treasury/internal/logger"
	"treasury/models"
)

func TestCreateStandaloneWithdrawal(t *testing.T) {
	svc, f := setupLifecycle(t)
	banking := svc.Banking

	op, err := banking.CreateStandalone(CreateBankingOperationInput{
		AccountID:   f.bank.ID,
		Date:        testDate(),
		Description: "retrait especes",
		Amount:      d("2000"),
		Direction:   models.DirectionWithdrawal,
		CheckNumber: "001",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if op.CheckNumber == nil || *op.CheckNumber != "001" {
		t.Fatalf("check number = %v, want 001", op.CheckNumber)
	}
	assertBalance(t, banking.DB, f.bank.ID, "3000")
	assertBalance(t, banking.DB, f.cash.ID, "2000")

	_, err = banking.CreateStandalone(CreateBankingOperationInput{
		AccountID:   f.bank.ID,
		Date:        testDate(),
		Amount:      d("10"),
		Direction:   models.DirectionWithdrawal,
		CheckNumber: "001",
	})
	if apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("duplicate check number = %v, want Conflict", err)
	}
	// Conflict rolls back everything.
	assertBalance(t, banking.DB, f.bank.ID, "3000")
	assertBalance(t, banking.DB, f.cash.ID, "2000")
}

func TestCreateStandaloneDeposit(t *testing.T) {
	svc, f := setupLifecycle(t)
	banking := svc.Banking

	// Put money in the cash register first.
	if err := (AccountService{DB: banking.DB}).Transfer(f.bank.ID, f.cash.ID, d("1000")); err != nil {
		t.Fatalf("fund cash: %v", err)
	}

	_, err := banking.CreateStandalone(CreateBankingOperationInput{
		AccountID: f.bank.ID,
		Date:      testDate(),
		Amount:    d("600"),
		Direction: models.DirectionDeposit,
	})
	if err != nil {
		t.Fatalf("create deposit: %v", err)
	}
	assertBalance(t, banking.DB, f.cash.ID, "400")
	assertBalance(t, banking.DB, f.bank.ID, "4600")
}

func TestCreateStandaloneValidation(t *testing.T) {
	svc, f := setupLifecycle(t)
	banking := svc.Banking

	_, err := banking.CreateStandalone(CreateBankingOperationInput{
		AccountID: f.bank.ID,
		Date:      testDate(),
		Amount:    d("10"),
		Direction: models.DirectionWithdrawal,
	})
	if apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("withdrawal without check number = %v, want Validation", err)
	}

	_, err = banking.CreateStandalone(CreateBankingOperationInput{
		AccountID: f.cash.ID,
		Date:      testDate(),
		Amount:    d("10"),
		Direction: models.DirectionDeposit,
	})
	if apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("deposit on non-bank account = %v, want Validation", err)
	}

	_, err = banking.CreateStandalone(CreateBankingOperationInput{
		AccountID: "nope",
		Date:      testDate(),
		Amount:    d("10"),
		Direction: models.DirectionDeposit,
	})
	if apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("unknown account = %v, want NotFound", err)
	}
}

func TestCreateStandaloneNeedsCashAccount(t *testing.T) {
	db := testDB(t)
	bank := seedAccount(t, db, "Compte courant", models.AccountBank, d("5000"))
	banking := BankingService{DB: db, Log: zerolog.Nop()}

	_, err := banking.CreateStandalone(CreateBankingOperationInput{
		AccountID:   bank.ID,
		Date:        testDate(),
		Amount:      d("10"),
		Direction:   models.DirectionWithdrawal,
		CheckNumber: "001",
	})
	if apperr.KindOf(err) != apperr.FailedPrecondition {
		t.Fatalf("missing cash account = %v, want FailedPrecondition", err)
	}
	assertBalance(t, db, bank.ID, "5000")
}

func TestStandaloneUpdateAndDeleteRoundTrip(t *testing.T) {
	svc, f := setupLifecycle(t)
	banking := svc.Banking

	op, err := banking.CreateStandalone(CreateBankingOperationInput{
		AccountID:   f.bank.ID,
		Date:        testDate(),
		Amount:      d("2000"),
		Direction:   models.DirectionWithdrawal,
		CheckNumber: "010",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Shrink the withdrawal.
	amount := d("500")
	if _, err := banking.UpdateStandalone(op.ID, UpdateBankingOperationInput{Amount: &amount}); err != nil {
		t.Fatalf("update amount: %v", err)
	}
	assertBalance(t, banking.DB, f.bank.ID, "4500")
	assertBalance(t, banking.DB, f.cash.ID, "500")

	// Flip it into a deposit; the check number is no longer mandatory.
	direction := models.DirectionDeposit
	if _, err := banking.UpdateStandalone(op.ID, UpdateBankingOperationInput{Direction: &direction}); err != nil {
		t.Fatalf("update direction: %v", err)
	}
	assertBalance(t, banking.DB, f.bank.ID, "5500")
	assertBalance(t, banking.DB, f.cash.ID, "-500")

	if err := banking.DeleteStandalone(op.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertBalance(t, banking.DB, f.bank.ID, "5000")
	assertBalance(t, banking.DB, f.cash.ID, "0")

	if err := banking.DeleteStandalone(op.ID); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("second delete = %v, want NotFound", err)
	}
}

func TestStandaloneUpdateChecksUniqueness(t *testing.T) {
	svc, f := setupLifecycle(t)
	banking := svc.Banking

	mk := func(check string) *models.BankingOperation {
		t.Helper()
		op, err := banking.CreateStandalone(CreateBankingOperationInput{
			AccountID:   f.bank.ID,
			Date:        testDate(),
			Amount:      d("100"),
			Direction:   models.DirectionWithdrawal,
			CheckNumber: check,
		})
		if err != nil {
			t.Fatalf("create %s: %v", check, err)
		}
		return op
	}
	mk("020")
	op2 := mk("021")

	taken := "020"
	if _, err := banking.UpdateStandalone(op2.ID, UpdateBankingOperationInput{CheckNumber: &taken}); apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("update to taken check number = %v, want Conflict", err)
	}
	// Updating an operation while keeping its own check number is fine.
	if _, err := banking.UpdateStandalone(op2.ID, UpdateBankingOperationInput{Description: ptr("libelle")}); err != nil {
		t.Fatalf("self-preserving update: %v", err)
	}
}

func ptr[T any](v T) *T { return &v }

// Scenario: an expense whose description carries a check number creates the
// paired banking operation. The banking leg credits cash with the very amount
// the narrative leg then removes, so cash nets to zero and only the bank
// balance drops.
func TestBankingLinkedCreate(t *testing.T) {
	svc, f := setupLifecycle(t)

	_, err := svc.Create(CreateTransactionInput{
		CategoryID:    f.expenseCat.ID,
		SubCategoryID: f.expenseSub.ID,
		AccountID:     f.cash.ID,
		Date:          testDate(),
		Description:   "Paiement CHQ-002",
		Amount:        d("1500"),
		Kind:          models.KindExpense,
	}, auth.Actor{Role: auth.RoleAdmin})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	assertBalance(t, svc.DB, f.cash.ID, "0")
	assertBalance(t, svc.DB, f.bank.ID, "3500")

	var op models.BankingOperation
	if err := svc.DB.First(&op, "check_number = ?", "002").Error; err != nil {
		t.Fatalf("paired operation not created: %v", err)
	}
	if op.Direction != models.DirectionWithdrawal || !op.Amount.Equal(d("1500")) {
		t.Fatalf("operation = %s %s, want WITHDRAWAL 1500", op.Direction, op.Amount)
	}

	// Reusing the check number in another transaction must conflict.
	_, err = svc.Create(CreateTransactionInput{
		CategoryID:    f.expenseCat.ID,
		SubCategoryID: f.expenseSub.ID,
		AccountID:     f.cash.ID,
		Date:          testDate(),
		Description:   "autre CHQ-002",
		Amount:        d("10"),
		Kind:          models.KindExpense,
	}, auth.Actor{Role: auth.RoleAdmin})
	if apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("duplicate check number = %v, want Conflict", err)
	}
	assertBalance(t, svc.DB, f.cash.ID, "0")
	assertBalance(t, svc.DB, f.bank.ID, "3500")
}

func TestBankingLinkedUpdateAmount(t *testing.T) {
	svc, f := setupLifecycle(t)

	txn, err := svc.Create(CreateTransactionInput{
		CategoryID:    f.expenseCat.ID,
		SubCategoryID: f.expenseSub.ID,
		AccountID:     f.cash.ID,
		Date:          testDate(),
		Description:   "Paiement CHQ-002",
		Amount:        d("1500"),
		Kind:          models.KindExpense,
	}, auth.Actor{Role: auth.RoleAdmin})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	amount := d("1000")
	if _, err := svc.Update(txn.ID, UpdateTransactionInput{Amount: &amount}, auth.Actor{Role: auth.RoleAdmin}); err != nil {
		t.Fatalf("update: %v", err)
	}
	assertBalance(t, svc.DB, f.cash.ID, "0")
	assertBalance(t, svc.DB, f.bank.ID, "4000")

	var op models.BankingOperation
	if err := svc.DB.First(&op, "check_number = ?", "002").Error; err != nil {
		t.Fatalf("load operation: %v", err)
	}
	if !op.Amount.Equal(d("1000")) {
		t.Fatalf("operation amount = %s, want 1000", op.Amount)
	}

	var row models.Transaction
	if err := svc.DB.First(&row, "id = ?", txn.ID).Error; err != nil {
		t.Fatalf("reload transaction: %v", err)
	}
	if !row.Amount.Equal(d("1000")) {
		t.Fatalf("transaction amount = %s, want 1000", row.Amount)
	}
}

func TestBankingLinkedCheckNumberChange(t *testing.T) {
	svc, f := setupLifecycle(t)

	txn, err := svc.Create(CreateTransactionInput{
		CategoryID:    f.expenseCat.ID,
		SubCategoryID: f.expenseSub.ID,
		AccountID:     f.cash.ID,
		Date:          testDate(),
		Description:   "Paiement CHQ-002",
		Amount:        d("1500"),
		Kind:          models.KindExpense,
	}, auth.Actor{Role: auth.RoleAdmin})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	desc := "Paiement CHQ-003"
	if _, err := svc.Update(txn.ID, UpdateTransactionInput{Description: &desc}, auth.Actor{Role: auth.RoleAdmin}); err != nil {
		t.Fatalf("update: %v", err)
	}

	var cnt int64
	svc.DB.Model(&models.BankingOperation{}).Where("check_number = ?", "002").Count(&cnt)
	if cnt != 0 {
		t.Fatal("old operation should be gone")
	}
	svc.DB.Model(&models.BankingOperation{}).Where("check_number = ?", "003").Count(&cnt)
	if cnt != 1 {
		t.Fatal("new operation should exist")
	}
	// Same amount, so balances are unchanged by the renumbering.
	assertBalance(t, svc.DB, f.cash.ID, "0")
	assertBalance(t, svc.DB, f.bank.ID, "3500")
}

func TestBankingLinkRemoved(t *testing.T) {
	svc, f := setupLifecycle(t)

	txn, err := svc.Create(CreateTransactionInput{
		CategoryID:    f.expenseCat.ID,
		SubCategoryID: f.expenseSub.ID,
		AccountID:     f.cash.ID,
		Date:          testDate(),
		Description:   "Paiement CHQ-002",
		Amount:        d("1500"),
		Kind:          models.KindExpense,
	}, auth.Actor{Role: auth.RoleAdmin})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	desc := "paiement en especes"
	if _, err := svc.Update(txn.ID, UpdateTransactionInput{Description: &desc}, auth.Actor{Role: auth.RoleAdmin}); err != nil {
		t.Fatalf("update: %v", err)
	}

	var cnt int64
	svc.DB.Model(&models.BankingOperation{}).Count(&cnt)
	if cnt != 0 {
		t.Fatal("operation should be deleted when the link is removed")
	}
	// Only the plain expense remains: cash down by 1500, bank untouched.
	assertBalance(t, svc.DB, f.cash.ID, "-1500")
	assertBalance(t, svc.DB, f.bank.ID, "5000")
}

func TestBankingLinkedDeleteRestoresBothAccounts(t *testing.T) {
	svc, f := setupLifecycle(t)

	txn, err := svc.Create(CreateTransactionInput{
		CategoryID:    f.expenseCat.ID,
		SubCategoryID: f.expenseSub.ID,
		AccountID:     f.cash.ID,
		Date:          testDate(),
		Description:   "Paiement CHQ-002",
		Amount:        d("1500"),
		Kind:          models.KindExpense,
	}, auth.Actor{Role: auth.RoleAdmin})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(txn.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertBalance(t, svc.DB, f.cash.ID, "0")
	assertBalance(t, svc.DB, f.bank.ID, "5000")

	var cnt int64
	svc.DB.Model(&models.BankingOperation{}).Count(&cnt)
	if cnt != 0 {
		t.Fatal("paired operation should be deleted with the transaction")
	}
}

func TestMissingLinkedOperationDegrades(t *testing.T) {
	var buf bytes.Buffer
	svc, f := setupLifecycle(t)
	log := logger.NewWithWriter(&buf)
	svc.Banking.Log = log

	txn, err := svc.Create(CreateTransactionInput{
		CategoryID:    f.expenseCat.ID,
		SubCategoryID: f.expenseSub.ID,
		AccountID:     f.cash.ID,
		Date:          testDate(),
		Description:   "Paiement CHQ-777",
		Amount:        d("1500"),
		Kind:          models.KindExpense,
	}, auth.Actor{Role: auth.RoleAdmin})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Simulate the data-integrity gap: the paired operation vanished.
	if err := svc.DB.Delete(&models.BankingOperation{}, "check_number = ?", "777").Error; err != nil {
		t.Fatal(err)
	}

	amount := d("500")
	if _, err := svc.Update(txn.ID, UpdateTransactionInput{Amount: &amount}, auth.Actor{Role: auth.RoleAdmin}); err != nil {
		t.Fatalf("update should degrade, not fail: %v", err)
	}
	// Only the narrative leg moves: reverse 1500, reapply 500.
	assertBalance(t, svc.DB, f.cash.ID, "1000")
	assertBalance(t, svc.DB, f.bank.ID, "3500")
	if !strings.Contains(buf.String(), "banking operation not found") {
		t.Error("anomaly should be logged")
	}

	if err := svc.Delete(txn.ID); err != nil {
		t.Fatalf("delete should degrade, not fail: %v", err)
	}
	assertBalance(t, svc.DB, f.cash.ID, "1500")
}
