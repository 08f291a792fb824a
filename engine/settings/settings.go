// Package settings is the SQLite-backed key/value store for global
// calculation settings such as the consumable coefficients.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/WessleyAI/installbom/engine/catalog"
	"github.com/WessleyAI/installbom/pkg/qty"

	_ "modernc.org/sqlite"
)

// Setting keys.
const (
	KeyClipsPerMeter = "clips_per_meter"
	KeyTiesPerMeter  = "ties_per_meter"
)

const schema = `CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL DEFAULT (unixepoch())
)`

// Store reads and writes settings rows.
type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the settings database at path.
// ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("settings: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("settings: open: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("settings: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("settings: schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Get returns the raw value for key and whether it exists.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("settings: get %s: %w", key, err)
	}
	return v, true, nil
}

// Set upserts a value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = unixepoch()`,
		key, value)
	if err != nil {
		return fmt.Errorf("settings: set %s: %w", key, err)
	}
	return nil
}

// Coefficients reads the consumable coefficients. Missing, unparsable or
// negative values read as 0, which disables the derivation.
func (s *Store) Coefficients(ctx context.Context) (catalog.Coefficients, error) {
	clips, err := s.number(ctx, KeyClipsPerMeter)
	if err != nil {
		return catalog.Coefficients{}, err
	}
	ties, err := s.number(ctx, KeyTiesPerMeter)
	if err != nil {
		return catalog.Coefficients{}, err
	}
	return catalog.Coefficients{ClipsPerMeter: clips, TiesPerMeter: ties}, nil
}

// SetCoefficients stores both coefficients.
func (s *Store) SetCoefficients(ctx context.Context, c catalog.Coefficients) error {
	if err := s.Set(ctx, KeyClipsPerMeter, strconv.FormatFloat(c.ClipsPerMeter, 'f', -1, 64)); err != nil {
		return err
	}
	return s.Set(ctx, KeyTiesPerMeter, strconv.FormatFloat(c.TiesPerMeter, 'f', -1, 64))
}

func (s *Store) number(ctx context.Context, key string) (float64, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return 0, err
	}
	return qty.NonNegative(qty.Value(raw)), nil
}
