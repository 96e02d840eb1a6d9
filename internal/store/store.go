package store

import (
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store wraps a single SQLite connection handle. It is created with Open
// and released with Close; no package-level state is held.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger

	// migrateMu serializes the one-time migration against concurrent
	// opens of the same Store value.
	migrateMu sync.Mutex

	// aggOnce caches the aggregate table resolution for the store lifetime.
	aggOnce  sync.Once
	aggTable string
}

// Options configures a Store.
type Options struct {
	// Logger is the structured logger to use. Defaults to slog.Default().
	Logger *slog.Logger
}

// Open opens (creating if necessary) the database at path and runs schema
// migration. A migration failure aborts the open.
func Open(path string, opts Options) (*Store, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	s := &Store{
		db:     db,
		logger: opts.Logger.With("component", "store"),
	}

	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}

	version, err := s.SchemaVersion()
	if err != nil {
		return nil, err
	}
	s.logger.Info("store opened", "path", path, "schema_version", version)

	return s, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access database handle: %w", err)
	}
	return sqlDB.Close()
}

// aggregateTableName resolves which daily-aggregate table queries should
// target: usage_statistics when present, otherwise the pre-migration
// usage_stats. The check runs once per store lifetime; it never inspects
// driver error strings.
func (s *Store) aggregateTableName() string {
	s.aggOnce.Do(func() {
		m := s.db.Migrator()
		switch {
		case m.HasTable(aggregateTable):
			s.aggTable = aggregateTable
		case m.HasTable(legacyAggregateTable):
			s.aggTable = legacyAggregateTable
			s.logger.Warn("using legacy usage table", "table", legacyAggregateTable)
		default:
			s.aggTable = aggregateTable
		}
	})
	return s.aggTable
}
