// Package persistence provides database storage implementations.
package persistence

import (
	"fmt"

	"github.com/helixml/codevar/internal/database"
)

// AutoMigrate runs GORM auto migration for all models.
func AutoMigrate(db database.Database) error {
	if err := db.GORM().AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// allModels returns every GORM model that AutoMigrate manages.
func allModels() []any {
	return []any{
		&SessionEntryModel{},
	}
}
