package infra

import (
	"fmt"

	"fuelstation/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// over every model, then applies the idempotent SQL patches GORM cannot
// express (partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Unique violations surface as gorm.ErrDuplicatedKey.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations registers the id callback, migrates every model and applies
// the schema patches. Tests call it on an in-memory sqlite database.
func RunMigrations(db *gorm.DB) error {
	if err := model.RegisterIDCallback(db); err != nil {
		return fmt.Errorf("register id callback: %w", err)
	}
	if err := db.AutoMigrate(model.Tables()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate
// cannot express. Both postgres and sqlite accept partial indexes with
// IF NOT EXISTS.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At most one active shift per station and day.
		{"active shift per station and date", `
CREATE UNIQUE INDEX IF NOT EXISTS idx_shifts_active_station_date
    ON shifts (station_id, date)
    WHERE state IN ('draft', 'running', 'done', 'waiting_approval')`},
		{"shift type per station and date", `
CREATE UNIQUE INDEX IF NOT EXISTS idx_shifts_station_type_date
    ON shifts (station_id, type_id, date)
    WHERE state <> 'cancelled'`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
