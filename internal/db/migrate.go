package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// Migrate applies the SQL files under migrations/ in filename order, once
// each. The directory is searched upward from the working directory so the
// server, the tooling and the e2e harness all find it regardless of where
// they run from.
func Migrate(db *gorm.DB) error {
	dir, err := findMigrationsDir("migrations")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`).Error; err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return err
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := applyMigration(db, path); err != nil {
			return err
		}
	}

	return nil
}

func applyMigration(db *gorm.DB, path string) error {
	name := filepath.Base(path)

	var count int64
	if err := db.Raw("SELECT COUNT(1) FROM schema_migrations WHERE filename = ?", name).Scan(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	sql := strings.TrimSpace(string(contents))
	if sql == "" {
		return nil
	}

	if err := db.Exec(sql).Error; err != nil {
		return fmt.Errorf("apply migration %s: %w", name, err)
	}

	return db.Exec("INSERT INTO schema_migrations (filename) VALUES (?)", name).Error
}

func findMigrationsDir(dirName string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, dirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
