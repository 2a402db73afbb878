package services

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"treasury/internal/apperr"
	"treasury/internal/auth"
	"treasury/internal/ledger"
	"treasury/models"
)

// TransactionService orchestrates the lifecycle of user-facing transactions
// and keeps exactly one account balance consistent with each of them. Edits of
// banking-linked transactions are handed over to the BankingService, which
// then owns every balance adjustment for that edit.
type TransactionService struct {
	DB      *gorm.DB
	Banking BankingService
}

type CreateTransactionInput struct {
	CategoryID    string
	SubCategoryID string
	AccountID     string
	Date          time.Time
	Description   string
	Amount        decimal.Decimal
	Kind          models.Kind
}

type UpdateTransactionInput struct {
	CategoryID    *string
	SubCategoryID *string
	AccountID     *string
	Date          *time.Time
	Description   *string
	Amount        *decimal.Decimal
	Kind          *models.Kind
}

// effectiveTransaction is the post-patch state of a transaction, computed by
// overlaying an update on the stored row before any write happens.
type effectiveTransaction struct {
	CategoryID    string
	SubCategoryID string
	AccountID     string
	Date          time.Time
	Description   string
	Amount        decimal.Decimal
	Kind          models.Kind
}

func (s TransactionService) Create(input CreateTransactionInput, actor auth.Actor) (*models.Transaction, error) {
	if input.CategoryID == "" || input.SubCategoryID == "" || input.AccountID == "" {
		return nil, apperr.Validationf("category, sub-category and account are required")
	}
	if input.Date.IsZero() {
		return nil, apperr.Validationf("date is required")
	}
	if !input.Amount.IsPositive() {
		return nil, apperr.Validationf("amount must be positive")
	}
	category, subCategory, err := s.loadAssignment(input.CategoryID, input.SubCategoryID)
	if err != nil {
		return nil, err
	}
	if err := ValidateCategoryAssignment(*category, *subCategory, input.Kind); err != nil {
		return nil, err
	}
	if err := s.ensureAccountExists(input.AccountID); err != nil {
		return nil, err
	}

	txn := models.Transaction{
		ID:            uuid.NewString(),
		CategoryID:    input.CategoryID,
		SubCategoryID: input.SubCategoryID,
		AccountID:     input.AccountID,
		Date:          input.Date,
		Description:   input.Description,
		Amount:        input.Amount,
		Kind:          input.Kind,
		CreatedBy:     actor.ID,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&txn).Error; err != nil {
			return err
		}
		if bankingLinked(txn.Kind, txn.Description) {
			if err := s.Banking.attachOnCreate(tx, &txn); err != nil {
				return err
			}
		}
		_, err := ledger.Apply(tx, txn.AccountID, txn.Amount, txn.Kind)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.get(txn.ID)
}

func (s TransactionService) Update(id string, input UpdateTransactionInput, actor auth.Actor) (*models.Transaction, error) {
	old, err := s.get(id)
	if err != nil {
		return nil, err
	}

	eff := effectiveTransaction{
		CategoryID:    old.CategoryID,
		SubCategoryID: old.SubCategoryID,
		AccountID:     old.AccountID,
		Date:          old.Date,
		Description:   old.Description,
		Amount:        old.Amount,
		Kind:          old.Kind,
	}
	if input.CategoryID != nil {
		eff.CategoryID = *input.CategoryID
	}
	if input.SubCategoryID != nil {
		eff.SubCategoryID = *input.SubCategoryID
	}
	if input.AccountID != nil {
		eff.AccountID = *input.AccountID
	}
	if input.Date != nil {
		eff.Date = *input.Date
	}
	if input.Description != nil {
		eff.Description = *input.Description
	}
	if input.Amount != nil {
		eff.Amount = *input.Amount
	}
	if input.Kind != nil {
		eff.Kind = *input.Kind
	}

	if !eff.Amount.IsPositive() {
		return nil, apperr.Validationf("amount must be positive")
	}
	if eff.CategoryID != old.CategoryID || eff.SubCategoryID != old.SubCategoryID || eff.Kind != old.Kind {
		category, subCategory, err := s.loadAssignment(eff.CategoryID, eff.SubCategoryID)
		if err != nil {
			return nil, err
		}
		if err := ValidateCategoryAssignment(*category, *subCategory, eff.Kind); err != nil {
			return nil, err
		}
	}
	if eff.AccountID != old.AccountID {
		if err := s.ensureAccountExists(eff.AccountID); err != nil {
			return nil, err
		}
	}

	oldLinked := bankingLinked(old.Kind, old.Description)
	newLinked := bankingLinked(eff.Kind, eff.Description)

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if oldLinked || newLinked {
			return s.Banking.reconcileUpdate(tx, old, eff)
		}
		if _, err := ledger.Reverse(tx, old.AccountID, old.Amount, old.Kind); err != nil {
			return err
		}
		if err := persistEffective(tx, old.ID, eff); err != nil {
			return err
		}
		_, err := ledger.Apply(tx, eff.AccountID, eff.Amount, eff.Kind)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.get(id)
}

func (s TransactionService) Delete(id string) error {
	old, err := s.get(id)
	if err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if bankingLinked(old.Kind, old.Description) {
			if err := s.Banking.detachOnDelete(tx, old); err != nil {
				return err
			}
		}
		if _, err := ledger.Reverse(tx, old.AccountID, old.Amount, old.Kind); err != nil {
			return err
		}
		return tx.Delete(&models.Transaction{}, "id = ?", id).Error
	})
}

func (s TransactionService) List() ([]models.Transaction, error) {
	var list []models.Transaction
	err := s.DB.Preload("Category").Preload("SubCategory").Preload("Account").
		Order("date DESC, created_at DESC").Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

type RecapLine struct {
	SubCategoryID   string          `json:"subCategoryId"`
	SubCategoryName string          `json:"subCategoryName"`
	Income          decimal.Decimal `json:"income"`
	Expense         decimal.Decimal `json:"expense"`
	Net             decimal.Decimal `json:"net"`
}

type RecapGroup struct {
	CategoryID   string          `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
	Net          decimal.Decimal `json:"net"`
	Lines        []RecapLine     `json:"lines"`
}

type Recap struct {
	From    time.Time       `json:"from"`
	To      time.Time       `json:"to"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
	Groups  []RecapGroup    `json:"groups"`
}

// Recapitulate aggregates transactions in a date range by category then
// sub-category. Secretaries only see their own account; admins see everything
// except secretary sub-account activity. Pure read, no ledger interaction.
func (s TransactionService) Recapitulate(from, to time.Time, actor auth.Actor) (*Recap, error) {
	q := s.DB.Preload("Category").Preload("SubCategory").
		Where("transactions.date >= ? AND transactions.date <= ?", from, to)
	if actor.Role == auth.RoleSecretary {
		if actor.LinkedAccountID == "" {
			return nil, apperr.Validationf("secretary actor has no linked account")
		}
		q = q.Where("transactions.account_id = ?", actor.LinkedAccountID)
	} else {
		q = q.Where("transactions.account_id NOT IN (?)",
			s.DB.Model(&models.Account{}).Select("id").Where("kind = ?", models.AccountSecretary))
	}

	var txns []models.Transaction
	if err := q.Find(&txns).Error; err != nil {
		return nil, err
	}

	recap := &Recap{From: from, To: to}
	groups := make(map[string]*RecapGroup)
	lines := make(map[string]map[string]*RecapLine)
	for _, t := range txns {
		g, ok := groups[t.CategoryID]
		if !ok {
			g = &RecapGroup{CategoryID: t.CategoryID, CategoryName: t.Category.Name}
			groups[t.CategoryID] = g
			lines[t.CategoryID] = make(map[string]*RecapLine)
		}
		l, ok := lines[t.CategoryID][t.SubCategoryID]
		if !ok {
			l = &RecapLine{SubCategoryID: t.SubCategoryID, SubCategoryName: t.SubCategory.Name}
			lines[t.CategoryID][t.SubCategoryID] = l
		}
		if t.Kind == models.KindIncome {
			g.Income = g.Income.Add(t.Amount)
			l.Income = l.Income.Add(t.Amount)
			recap.Income = recap.Income.Add(t.Amount)
		} else {
			g.Expense = g.Expense.Add(t.Amount)
			l.Expense = l.Expense.Add(t.Amount)
			recap.Expense = recap.Expense.Add(t.Amount)
		}
	}

	for cid, g := range groups {
		g.Net = g.Income.Sub(g.Expense)
		for _, l := range lines[cid] {
			l.Net = l.Income.Sub(l.Expense)
			g.Lines = append(g.Lines, *l)
		}
		sort.Slice(g.Lines, func(i, j int) bool { return g.Lines[i].SubCategoryName < g.Lines[j].SubCategoryName })
		recap.Groups = append(recap.Groups, *g)
	}
	sort.Slice(recap.Groups, func(i, j int) bool { return recap.Groups[i].CategoryName < recap.Groups[j].CategoryName })
	recap.Net = recap.Income.Sub(recap.Expense)
	return recap, nil
}

func (s TransactionService) get(id string) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.DB.Preload("Category").Preload("SubCategory").Preload("Account").
		First(&txn, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("transaction %s not found", id)
		}
		return nil, err
	}
	return &txn, nil
}

func (s TransactionService) loadAssignment(categoryID, subCategoryID string) (*models.Category, *models.SubCategory, error) {
	var category models.Category
	if err := s.DB.First(&category, "id = ?", categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFoundf("category %s not found", categoryID)
		}
		return nil, nil, err
	}
	var subCategory models.SubCategory
	if err := s.DB.First(&subCategory, "id = ?", subCategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFoundf("sub-category %s not found", subCategoryID)
		}
		return nil, nil, err
	}
	return &category, &subCategory, nil
}

func (s TransactionService) ensureAccountExists(id string) error {
	var cnt int64
	if err := s.DB.Model(&models.Account{}).Where("id = ?", id).Count(&cnt).Error; err != nil {
		return err
	}
	if cnt == 0 {
		return apperr.NotFoundf("account %s not found", id)
	}
	return nil
}

func persistEffective(tx *gorm.DB, id string, eff effectiveTransaction) error {
	return tx.Model(&models.Transaction{}).Where("id = ?", id).Updates(map[string]any{
		"category_id":     eff.CategoryID,
		"sub_category_id": eff.SubCategoryID,
		"account_id":      eff.AccountID,
		"date":            eff.Date,
		"description":     eff.Description,
		"amount":          eff.Amount,
		"kind":            eff.Kind,
	}).Error
}
