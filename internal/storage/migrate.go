package storage

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SchemaVersion is the newest catalog cache schema this build knows.
const SchemaVersion = 2

// schema applies the embedded migrations to one database file.
type schema struct {
	m *migrate.Migrate
}

func openSchema(dbPath string) (*schema, error) {
	dir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to access migrations: %w", err)
	}
	source, err := iofs.New(dir, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	// golang-migrate wants forward slashes and a leading slash on Windows drives.
	p := filepath.ToSlash(dbPath)
	if filepath.IsAbs(dbPath) && p[0] != '/' {
		p = "/" + p
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, "sqlite://"+p)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache schema: %w", err)
	}
	return &schema{m: m}, nil
}

func (s *schema) upgrade() error {
	if v, _, err := s.version(); err == nil && v > SchemaVersion {
		return fmt.Errorf("cache schema version %d is newer than supported version %d", v, SchemaVersion)
	}
	if err := s.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to upgrade cache schema: %w", err)
	}
	return nil
}

func (s *schema) rollback() error {
	if err := s.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back cache schema: %w", err)
	}
	return nil
}

// version returns 0 for a database with no migrations applied.
func (s *schema) version() (uint, bool, error) {
	v, dirty, err := s.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read cache schema version: %w", err)
	}
	return v, dirty, nil
}

func (s *schema) close() error {
	srcErr, dbErr := s.m.Close()
	return errors.Join(srcErr, dbErr)
}

func upgradeSchema(dbPath string) error {
	s, err := openSchema(dbPath)
	if err != nil {
		return err
	}
	if err := s.upgrade(); err != nil {
		_ = s.close()
		return err
	}
	return s.close()
}

// ensureSchema brings the database at dbPath to SchemaVersion. The cache
// only holds data that can be fetched again, so a database that cannot be
// upgraded (dirty, unreadable or from a newer build) is deleted and created
// afresh. rebuilt reports whether that happened.
func ensureSchema(dbPath string) (rebuilt bool, err error) {
	firstErr := upgradeSchema(dbPath)
	if firstErr == nil {
		return false, nil
	}

	if err := removeDatabase(dbPath); err != nil {
		return false, errors.Join(firstErr, err)
	}
	if err := upgradeSchema(dbPath); err != nil {
		return true, errors.Join(firstErr, err)
	}
	return true, nil
}

// removeDatabase deletes a SQLite file together with its WAL and shared
// memory files.
func removeDatabase(dbPath string) error {
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove cache database: %w", err)
		}
	}
	return nil
}
