package shared

import (
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		version, err := MigrationVersion(db)
		if err != nil {
			t.Fatalf("failed to read migration version: %v", err)
		}
		if version == 0 {
			t.Error("expected at least one migration to be applied")
		}

		for _, table := range []string{"categories", "subcategories", "soundtracks"} {
			if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
				t.Errorf("%s table should exist after migrations: %v", table, err)
			}
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		newVersion, err := MigrationVersion(db)
		if err != nil {
			t.Fatalf("failed to read migration version after rollback: %v", err)
		}
		if newVersion >= version {
			t.Errorf("expected version to decrease after rollback, got %d (was %d)", newVersion, version)
		}

		if _, err := db.Exec("SELECT 1 FROM categories LIMIT 1"); err == nil {
			t.Error("categories table should be dropped after rollback")
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}
	})

	t.Run("Foreign Keys Enforced", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		_, err = db.Exec("INSERT INTO subcategories (category_id, name, description) VALUES (42, 'orphan', 'x')")
		if err == nil {
			t.Error("expected foreign key violation for missing category")
		}
	})

	t.Run("Rollback Without Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RollbackMigration(db); err == nil {
			t.Error("expected error when nothing has been applied")
		}
	})
}
