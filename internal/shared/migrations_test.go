package shared

import (
	"database/sql"
	"errors"
	"testing"
)

func newMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) != 2 {
			t.Fatalf("expected 2 migrations, got %d", len(migrations))
		}
		if migrations[0].String() != "0000_create_kv_store" || migrations[1].String() != "0001_create_import_batches" {
			t.Errorf("unexpected migrations %s, %s", migrations[0], migrations[1])
		}

		for _, m := range migrations {
			if m.Up == "" || m.Down == "" {
				t.Errorf("migration %s missing up or down SQL", m)
			}
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db := newMemoryDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		if _, err := db.Exec("SELECT 1 FROM kv_store LIMIT 1"); err != nil {
			t.Errorf("kv_store table should exist after migrations: %v", err)
		}

		rolled, err := RollbackMigration(db)
		if err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}
		if rolled.Version != 1 || rolled.Name != "create_import_batches" {
			t.Errorf("expected newest migration to be rolled back, got %s", rolled)
		}
		if _, err := db.Exec("SELECT 1 FROM import_batches LIMIT 1"); err == nil {
			t.Error("import_batches table should be dropped by rollback")
		}
		if _, err := db.Exec("SELECT 1 FROM kv_store LIMIT 1"); err != nil {
			t.Errorf("kv_store table should survive a single rollback: %v", err)
		}

		if rolled, err = RollbackMigration(db); err != nil || rolled.Version != 0 {
			t.Fatalf("second rollback = %v, %v", rolled, err)
		}

		if _, err := RollbackMigration(db); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument with nothing applied, got %v", err)
		}

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to re-run migrations after rollback: %v", err)
		}
		if _, err := db.Exec("SELECT 1 FROM import_batches LIMIT 1"); err != nil {
			t.Errorf("import_batches should be recreated: %v", err)
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db := newMemoryDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}
		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 migrations to be applied, got %d", count)
		}
	})
}

func TestMigrationStatus(t *testing.T) {
	t.Run("pending then applied", func(t *testing.T) {
		db := newMemoryDB(t)

		states, err := MigrationStatus(db)
		if err != nil {
			t.Fatalf("MigrationStatus() before migrating error = %v", err)
		}
		for _, s := range states {
			if s.Applied || !s.AppliedAt.IsZero() {
				t.Errorf("expected %s to be pending, got %+v", s.Migration, s)
			}
		}

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		states, err = MigrationStatus(db)
		if err != nil {
			t.Fatalf("MigrationStatus() error = %v", err)
		}
		if len(states) != 2 {
			t.Fatalf("expected 2 states, got %d", len(states))
		}
		for _, s := range states {
			if !s.Applied || s.AppliedAt.IsZero() {
				t.Errorf("expected %s to be applied with a timestamp, got %+v", s.Migration, s)
			}
		}
	})

	t.Run("unknown applied version", func(t *testing.T) {
		db := newMemoryDB(t)
		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (42)"); err != nil {
			t.Fatalf("failed to insert version: %v", err)
		}

		if _, err := MigrationStatus(db); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
		if err := RunMigrations(db); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected RunMigrations to refuse unknown schema, got %v", err)
		}
	})
}

func TestSplitStatements(t *testing.T) {
	script := `-- leading comment; with a semicolon
CREATE TABLE a (id TEXT); -- trailing
CREATE INDEX idx_a ON a(id);

`
	got := splitStatements(script)
	if len(got) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(got), got)
	}
	if got[0] != "CREATE TABLE a (id TEXT)" || got[1] != "CREATE INDEX idx_a ON a(id)" {
		t.Errorf("unexpected statements %q", got)
	}
}
