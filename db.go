package main

import (
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"treasury/models"
)

func initDB(dsn string) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("get sql db: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("ping db: %v", err)
	}

	if err := migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if os.Getenv("SEED_DEV") == "1" {
		if err := seedDevData(db); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}
	return db
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.Category{},
		&models.SubCategory{},
		&models.Transaction{},
		&models.BankingOperation{},
	)
}

// seedDevData provisions the singleton cash and bank accounts plus a couple of
// categories so a fresh database is usable right away.
func seedDevData(db *gorm.DB) error {
	var cnt int64
	if err := db.Model(&models.Account{}).Count(&cnt).Error; err != nil {
		return err
	}
	if cnt == 0 {
		accounts := []models.Account{
			{ID: uuid.NewString(), Name: "Caisse", Kind: models.AccountCash, Balance: decimal.Zero},
			{ID: uuid.NewString(), Name: "Compte courant", Kind: models.AccountBank, Balance: decimal.Zero},
		}
		if err := db.Create(&accounts).Error; err != nil {
			return err
		}
	}

	if err := db.Model(&models.Category{}).Count(&cnt).Error; err != nil {
		return err
	}
	if cnt == 0 {
		donations := models.Category{ID: uuid.NewString(), Name: "Dons", Kind: models.KindIncome}
		expenses := models.Category{ID: uuid.NewString(), Name: "Fonctionnement", Kind: models.KindExpense}
		projects := models.Category{ID: uuid.NewString(), Name: "Projets", Kind: models.KindExpense, Mixed: true}
		if err := db.Create(&[]models.Category{donations, expenses, projects}).Error; err != nil {
			return err
		}
		subs := []models.SubCategory{
			{ID: uuid.NewString(), Name: "Dons ponctuels", CategoryID: donations.ID},
			{ID: uuid.NewString(), Name: "Cotisations", CategoryID: donations.ID},
			{ID: uuid.NewString(), Name: "Fournitures", CategoryID: expenses.ID},
			{ID: uuid.NewString(), Name: "Loyer", CategoryID: expenses.ID},
			{ID: uuid.NewString(), Name: "Divers", CategoryID: projects.ID},
		}
		if err := db.Create(&subs).Error; err != nil {
			return err
		}
	}
	return nil
}
