package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"treasury/internal/apperr"
	"treasury/internal/ledger"
	"treasury/models"
)

type AccountService struct {
	DB *gorm.DB
}

type CreateAccountInput struct {
	Name string
	Kind models.AccountKind
}

func (s AccountService) Create(input CreateAccountInput) (*models.Account, error) {
	switch input.Kind {
	case models.AccountCash, models.AccountBank, models.AccountSecretary:
	default:
		return nil, apperr.Validationf("kind must be CASH, BANK or SECRETARY")
	}
	if input.Name == "" {
		return nil, apperr.Validationf("name is required")
	}
	var cnt int64
	if err := s.DB.Model(&models.Account{}).Where("name = ?", input.Name).Count(&cnt).Error; err != nil {
		return nil, err
	}
	if cnt > 0 {
		return nil, apperr.Conflictf("account %q already exists", input.Name)
	}
	acc := models.Account{
		ID:      uuid.NewString(),
		Name:    input.Name,
		Kind:    input.Kind,
		Balance: decimal.Zero,
	}
	if err := s.DB.Create(&acc).Error; err != nil {
		if apperr.IsDuplicate(err) {
			return nil, apperr.Conflictf("account %q already exists", input.Name)
		}
		return nil, err
	}
	return &acc, nil
}

func (s AccountService) Get(id string) (*models.Account, error) {
	var acc models.Account
	if err := s.DB.First(&acc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("account %s not found", id)
		}
		return nil, err
	}
	return &acc, nil
}

func (s AccountService) List() ([]models.Account, error) {
	var list []models.Account
	if err := s.DB.Order("name").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Transfer funds a destination account from a source account, the flow used
// to provision secretary sub-accounts from the cash register.
func (s AccountService) Transfer(fromID, toID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperr.Validationf("amount must be positive")
	}
	if fromID == toID {
		return apperr.Validationf("source and destination accounts must differ")
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return ledger.Move(tx, fromID, toID, amount)
	})
}
