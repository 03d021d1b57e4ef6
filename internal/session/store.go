package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"

	"polereview/internal/config"
	"polereview/internal/lookup"
)

// Store manages review session persistence backed by SQLite. The database
// lives inside the working directory so the whole session travels with the
// copied photo tree.
type Store struct {
	db   *sql.DB
	path string
}

// ErrPoleNotFound indicates a lookup for a pole id the store has never seen.
var ErrPoleNotFound = errors.New("pole not found")

const (
	metaOriginalRoot = "original_parent_folder"
	metaLookupMain   = "lookup_main"
	metaLookupPN     = "lookup_pn"
	metaLookupDR     = "lookup_dr"
)

// Open initializes or connects to the session database under the configured
// working directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.WorkDir, "session.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

// SetMeta records the original photo root and lookup source paths.
func (s *Store) SetMeta(ctx context.Context, meta Meta) error {
	ctx = ensureContext(ctx)
	pairs := map[string]string{
		metaOriginalRoot: meta.OriginalRoot,
		metaLookupMain:   meta.Sources.Main,
		metaLookupPN:     meta.Sources.PN,
		metaLookupDR:     meta.Sources.DR,
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin meta tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	for key, value := range pairs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO session_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
			key, value); err != nil {
			return fmt.Errorf("store meta %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// Meta returns the recorded session context; missing keys yield zero values.
func (s *Store) Meta(ctx context.Context) (Meta, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM session_meta")
	if err != nil {
		return Meta{}, fmt.Errorf("read session meta: %w", err)
	}
	defer rows.Close()

	var meta Meta
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Meta{}, fmt.Errorf("scan session meta: %w", err)
		}
		switch key {
		case metaOriginalRoot:
			meta.OriginalRoot = value
		case metaLookupMain:
			meta.Sources.Main = value
		case metaLookupPN:
			meta.Sources.PN = value
		case metaLookupDR:
			meta.Sources.DR = value
		}
	}
	return meta, rows.Err()
}

func marshalJSON(v any, what string) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", what, err)
	}
	return string(data), nil
}

func unmarshalInto(raw string, v any) error {
	return json.Unmarshal([]byte(raw), v)
}

func unmarshalChecklist(raw string) (map[string]bool, error) {
	checklist := make(map[string]bool)
	if raw == "" {
		return checklist, nil
	}
	if err := json.Unmarshal([]byte(raw), &checklist); err != nil {
		return nil, fmt.Errorf("decode checklist: %w", err)
	}
	return checklist, nil
}

func unmarshalLookup(raw string) ([]lookup.Record, error) {
	var records []lookup.Record
	if raw == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("decode lookup records: %w", err)
	}
	return records, nil
}
