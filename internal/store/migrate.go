package store

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	aggregateTable       = "usage_statistics"
	legacyAggregateTable = "usage_stats"

	currentSchemaVersion = 2
)

// migrate brings the database up to the current schema version. It is safe
// to run against a fresh file, a pre-versioning database, or one that is
// already current.
func (s *Store) migrate() error {
	s.migrateMu.Lock()
	defer s.migrateMu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureSchemaVersion(tx); err != nil {
			return err
		}

		version, err := schemaVersion(tx)
		if err != nil {
			return err
		}

		if version < 2 {
			if err := migrateUsageStats(tx); err != nil {
				return fmt.Errorf("usage stats migration: %w", err)
			}
			if err := recordVersion(tx, 2); err != nil {
				return err
			}
		}

		// Table and column creation for the current models happens after
		// the versioned steps so renames see the pre-migration layout.
		return tx.AutoMigrate(&Prompt{}, &Variable{}, &Generation{}, &DailyUsage{})
	})
}

// ensureSchemaVersion creates the version table on first contact and seeds
// it with version 1, the implicit version of every pre-tracking database.
func ensureSchemaVersion(tx *gorm.DB) error {
	if !tx.Migrator().HasTable(&SchemaVersion{}) {
		if err := tx.Migrator().CreateTable(&SchemaVersion{}); err != nil {
			return fmt.Errorf("create schema_version table: %w", err)
		}
	}

	var count int64
	if err := tx.Model(&SchemaVersion{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count schema versions: %w", err)
	}
	if count == 0 {
		return recordVersion(tx, 1)
	}
	return nil
}

func schemaVersion(tx *gorm.DB) (int, error) {
	var version int
	err := tx.Model(&SchemaVersion{}).
		Select("COALESCE(MAX(version), 0)").
		Scan(&version).Error
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

func recordVersion(tx *gorm.DB, version int) error {
	row := SchemaVersion{Version: version, AppliedAt: time.Now()}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("record schema version %d: %w", version, err)
	}
	return nil
}

// migrateUsageStats moves daily aggregates from the retired usage_stats
// table into usage_statistics. Rows are copied keyed by date, existing
// dates win, and the legacy table is dropped afterwards. Databases that
// never had the legacy table pass straight through.
func migrateUsageStats(tx *gorm.DB) error {
	if !tx.Migrator().HasTable(legacyAggregateTable) {
		return nil
	}

	if !tx.Migrator().HasTable(aggregateTable) {
		if err := tx.Migrator().CreateTable(&DailyUsage{}); err != nil {
			return fmt.Errorf("create %s: %w", aggregateTable, err)
		}
	}

	var rows []DailyUsage
	if err := tx.Table(legacyAggregateTable).Find(&rows).Error; err != nil {
		return fmt.Errorf("read %s: %w", legacyAggregateTable, err)
	}

	if len(rows) > 0 {
		for i := range rows {
			rows[i].ID = 0
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			DoNothing: true,
		}).Create(&rows).Error
		if err != nil {
			return fmt.Errorf("copy rows to %s: %w", aggregateTable, err)
		}
	}

	if err := tx.Migrator().DropTable(legacyAggregateTable); err != nil {
		return fmt.Errorf("drop %s: %w", legacyAggregateTable, err)
	}
	return nil
}

// SchemaVersion reports the highest migration version applied to the
// database.
func (s *Store) SchemaVersion() (int, error) {
	return schemaVersion(s.db)
}
