package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/cementplant-backend/internal/domain/plant"
)

// AutoMigrateAll creates or widens the plant tables. The production schema is
// owned by the ingestion side; this is for local stacks and tests.
func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(plant.Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Running auto-migrations")
	return AutoMigrateAll(s.db)
}
