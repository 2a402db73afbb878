package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"treasury/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	// A pooled second connection would see a different :memory: database.
	sqlDB.SetMaxOpenConns(1)
	err = db.AutoMigrate(
		&models.Account{},
		&models.Category{},
		&models.SubCategory{},
		&models.Transaction{},
		&models.BankingOperation{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedAccount(t *testing.T, db *gorm.DB, name string, kind models.AccountKind, balance decimal.Decimal) models.Account {
	t.Helper()
	acc := models.Account{ID: uuid.NewString(), Name: name, Kind: kind, Balance: balance}
	if err := db.Create(&acc).Error; err != nil {
		t.Fatalf("seed account %s: %v", name, err)
	}
	return acc
}

func seedCategory(t *testing.T, db *gorm.DB, name string, kind models.Kind, mixed bool) (models.Category, models.SubCategory) {
	t.Helper()
	cat := models.Category{ID: uuid.NewString(), Name: name, Kind: kind, Mixed: mixed}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("seed category %s: %v", name, err)
	}
	sub := models.SubCategory{ID: uuid.NewString(), Name: name + " misc", CategoryID: cat.ID}
	if err := db.Create(&sub).Error; err != nil {
		t.Fatalf("seed sub-category: %v", err)
	}
	return cat, sub
}

func balance(t *testing.T, db *gorm.DB, accountID string) decimal.Decimal {
	t.Helper()
	var acc models.Account
	if err := db.First(&acc, "id = ?", accountID).Error; err != nil {
		t.Fatalf("load account %s: %v", accountID, err)
	}
	return acc.Balance
}

func assertBalance(t *testing.T, db *gorm.DB, accountID, want string) {
	t.Helper()
	got := balance(t, db, accountID)
	if !got.Equal(d(want)) {
		t.Fatalf("balance = %s, want %s", got, want)
	}
}

func testDate() time.Time {
	return time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
}
