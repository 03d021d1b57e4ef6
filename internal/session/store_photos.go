package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"polereview/internal/markup"
)

func (s *Store) photosFor(ctx context.Context, poleID string) ([]PhotoEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT original, marked_up, pending_json FROM photos WHERE pole_id = ? ORDER BY position, original", poleID)
	if err != nil {
		return nil, fmt.Errorf("list photos for %s: %w", poleID, err)
	}
	defer rows.Close()

	var photos []PhotoEntry
	for rows.Next() {
		var (
			entry       PhotoEntry
			pendingJSON string
		)
		if err := rows.Scan(&entry.Original, &entry.MarkedUp, &pendingJSON); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		if pendingJSON != "" && pendingJSON != "[]" {
			if err := unmarshalInto(pendingJSON, &entry.PendingMarkups); err != nil {
				return nil, fmt.Errorf("decode pending markups for %s: %w", entry.Original, err)
			}
		}
		photos = append(photos, entry)
	}
	return photos, rows.Err()
}

func (s *Store) pendingFor(ctx context.Context, tx *sql.Tx, poleID, original string) ([]markup.Pending, error) {
	var raw string
	err := tx.QueryRowContext(ctx,
		"SELECT pending_json FROM photos WHERE pole_id = ? AND original = ?", poleID, original).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("photo %s not found under pole %s", original, poleID)
	}
	if err != nil {
		return nil, fmt.Errorf("read pending markups: %w", err)
	}
	var pending []markup.Pending
	if raw != "" && raw != "[]" {
		if err := unmarshalInto(raw, &pending); err != nil {
			return nil, fmt.Errorf("decode pending markups: %w", err)
		}
	}
	return pending, nil
}

// AddPending appends one drawn annotation to a photo's pending list.
func (s *Store) AddPending(ctx context.Context, poleID, original string, pending markup.Pending) error {
	ctx = ensureContext(ctx)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin pending tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := s.pendingFor(ctx, tx, poleID, original)
	if err != nil {
		return err
	}
	current = append(current, pending)
	encoded, err := marshalJSON(current, "pending markups")
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE photos SET pending_json = ? WHERE pole_id = ? AND original = ?",
		encoded, poleID, original); err != nil {
		return fmt.Errorf("write pending markups: %w", err)
	}
	return tx.Commit()
}

// SetPending replaces the pending annotation list on a photo.
func (s *Store) SetPending(ctx context.Context, poleID, original string, pending []markup.Pending) error {
	ctx = ensureContext(ctx)
	encoded, err := marshalJSON(pending, "pending markups")
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE photos SET pending_json = ? WHERE pole_id = ? AND original = ?",
		encoded, poleID, original)
	if err != nil {
		return fmt.Errorf("write pending markups: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write pending markups: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("photo %s not found under pole %s", original, poleID)
	}
	return nil
}

// ClearPending discards all pending annotations on a photo.
func (s *Store) ClearPending(ctx context.Context, poleID, original string) error {
	ctx = ensureContext(ctx)
	_, err := s.db.ExecContext(ctx,
		"UPDATE photos SET pending_json = '[]' WHERE pole_id = ? AND original = ?", poleID, original)
	if err != nil {
		return fmt.Errorf("clear pending markups: %w", err)
	}
	return nil
}

// SetMarked records the burned markup copy for a photo.
func (s *Store) SetMarked(ctx context.Context, poleID, original, markedPath string) error {
	ctx = ensureContext(ctx)
	res, err := s.db.ExecContext(ctx,
		"UPDATE photos SET marked_up = ? WHERE pole_id = ? AND original = ?",
		markedPath, poleID, original)
	if err != nil {
		return fmt.Errorf("record marked image: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record marked image: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("photo %s not found under pole %s", original, poleID)
	}
	return nil
}
