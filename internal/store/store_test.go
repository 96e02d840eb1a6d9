package store

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "easel.db"), Options{Logger: testLogger()})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// openRaw opens a database file without running migration, for seeding
// legacy layouts.
func openRaw(t *testing.T, path string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}
	return db
}

func closeRaw(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB() error = %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close raw db: %v", err)
	}
}

func TestOpen_FreshDatabase(t *testing.T) {
	s := newTestStore(t)

	version, err := s.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("SchemaVersion() = %d, want %d", version, currentSchemaVersion)
	}

	for _, table := range []string{
		"prompt_history", "template_variables", "generation_history",
		"usage_statistics", "schema_version",
	} {
		if !s.db.Migrator().HasTable(table) {
			t.Errorf("table %s missing after open", table)
		}
	}
	if s.db.Migrator().HasTable(legacyAggregateTable) {
		t.Errorf("fresh database should not have %s", legacyAggregateTable)
	}
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "no-such-dir", "easel.db"), Options{Logger: testLogger()})
	if err == nil {
		t.Fatal("Open() with unwritable path should fail")
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "easel.db")

	s, err := Open(path, Options{Logger: testLogger()})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := s.AddPrompt("a lighthouse at dusk"); err != nil {
		t.Fatalf("AddPrompt() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s, err = Open(path, Options{Logger: testLogger()})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	prompts, err := s.ListPrompts(PromptFilter{})
	if err != nil {
		t.Fatalf("ListPrompts() error = %v", err)
	}
	if len(prompts) != 1 {
		t.Errorf("got %d prompts after reopen, want 1", len(prompts))
	}

	// Reopening must not stack more version rows.
	var count int64
	if err := s.db.Model(&SchemaVersion{}).Count(&count).Error; err != nil {
		t.Fatalf("count versions: %v", err)
	}
	if count != 2 {
		t.Errorf("schema_version rows = %d, want 2", count)
	}
}
