package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/registrar/internal/record"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema (courses, students, admins)
const currentSchemaVersion = 1

// Default admin account inserted when the admins table is empty.
// The password is hashed before it is stored.
const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
)

// Sentinel errors returned by record lookups and creates. Callers
// should match with errors.Is.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists indicates a create collided with an existing key.
	ErrAlreadyExists = errors.New("record already exists")
)

// Store provides durable storage for registrar records.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically, and inserts
// the default admin account if no admin record exists yet.
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1) // Single writer to avoid SQLITE_BUSY errors
	db.SetMaxIdleConns(1) // Keep one connection ready

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{db: db}
	if err := s.bootstrapAdmin(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
// Should be called when the store is no longer needed.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and stamps the
// schema version. This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}

	return nil
}

// bootstrapAdmin inserts the default admin record if the admins table
// is empty. Runs once at Open, never per connection.
func (s *Store) bootstrapAdmin(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM admins").Scan(&count); err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	cred, err := record.NewCredential(defaultAdminPassword)
	if err != nil {
		return err
	}
	return s.CreateAdmin(ctx, record.Admin{
		Username:   defaultAdminUsername,
		Credential: cred,
	})
}
