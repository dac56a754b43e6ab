package db

import (
	"fmt"

	"gorm.io/gorm"

	"docscan/internal/logger"
	"docscan/internal/model"
)

// models lists tables in dependency order.
func models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.CreditRequest{},
		&model.ScanRecord{},
	}
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops all tables, dependents first.
func Reset(db *gorm.DB) error {
	tables := models()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(tables[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	logger.Info("tables dropped")
	return nil
}
