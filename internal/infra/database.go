package infra

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tddymnbt/CRCMS-API/internal/model"
)

// NewDatabase opens the Postgres connection pool and runs migrations.
func NewDatabase(databaseURL string, debug bool) (*gorm.DB, error) {
	level := logger.Warn
	if debug {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Client{},
		&model.Category{},
		&model.Brand{},
		&model.Authenticator{},
		&model.Product{},
		&model.ProductCondition{},
		&model.Stock{},
		&model.StockMovement{},
		&model.Sale{},
		&model.SaleItem{},
		&model.PaymentLog{},
		&model.SaleLayaway{},
		&model.ActivityLog{},
	)
}
