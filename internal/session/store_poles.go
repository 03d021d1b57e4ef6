package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"polereview/internal/lookup"
	"polereview/internal/photostore"
)

// InitFromScan seeds the store from a photo tree scan. Existing poles keep
// their review state; photos are synced so newly discovered files appear and
// marked copies found on disk are recorded.
func (s *Store) InitFromScan(ctx context.Context, folders []photostore.PoleFolder, checklist []string) error {
	ctx = ensureContext(ctx)

	defaults := make(map[string]bool, len(checklist))
	for _, key := range checklist {
		defaults[key] = true
	}
	checklistJSON, err := marshalJSON(defaults, "checklist defaults")
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin scan tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for position, folder := range folders {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO poles (id, position, checklist_json) VALUES (?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET position = excluded.position`,
			folder.ID, position, checklistJSON); err != nil {
			return fmt.Errorf("upsert pole %s: %w", folder.ID, err)
		}
		for photoPos, photo := range folder.Photos {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO photos (pole_id, position, original, marked_up) VALUES (?, ?, ?, ?)
				 ON CONFLICT(pole_id, original) DO UPDATE SET
				     position = excluded.position,
				     marked_up = CASE WHEN excluded.marked_up != '' THEN excluded.marked_up ELSE photos.marked_up END`,
				folder.ID, photoPos, photo.Original, photo.MarkedUp); err != nil {
				return fmt.Errorf("upsert photo %s: %w", photo.Original, err)
			}
		}
	}

	return tx.Commit()
}

// ListPoles returns every pole in display order with photos and lookup data.
func (s *Store) ListPoles(ctx context.Context) ([]*Pole, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, position, reviewed, notes, checklist_json, lookup_json FROM poles ORDER BY position, id")
	if err != nil {
		return nil, fmt.Errorf("list poles: %w", err)
	}
	defer rows.Close()

	var poles []*Pole
	for rows.Next() {
		pole, err := scanPole(rows)
		if err != nil {
			return nil, err
		}
		poles = append(poles, pole)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, pole := range poles {
		photos, err := s.photosFor(ctx, pole.ID)
		if err != nil {
			return nil, err
		}
		pole.Photos = photos
	}
	return poles, nil
}

// GetPole returns one pole by id, or ErrPoleNotFound.
func (s *Store) GetPole(ctx context.Context, id string) (*Pole, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT id, position, reviewed, notes, checklist_json, lookup_json FROM poles WHERE id = ?", id)
	pole, err := scanPole(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPoleNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	photos, err := s.photosFor(ctx, id)
	if err != nil {
		return nil, err
	}
	pole.Photos = photos
	return pole, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPole(row rowScanner) (*Pole, error) {
	var (
		pole          Pole
		reviewed      int
		checklistJSON string
		lookupJSON    string
	)
	if err := row.Scan(&pole.ID, &pole.Position, &reviewed, &pole.Notes, &checklistJSON, &lookupJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan pole: %w", err)
	}
	pole.Reviewed = reviewed != 0

	checklist, err := unmarshalChecklist(checklistJSON)
	if err != nil {
		return nil, err
	}
	pole.Checklist = checklist

	records, err := unmarshalLookup(lookupJSON)
	if err != nil {
		return nil, err
	}
	pole.Lookup = records
	return &pole, nil
}

func (s *Store) updatePole(ctx context.Context, id, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update pole %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update pole %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrPoleNotFound, id)
	}
	return nil
}

// SetReviewed toggles the reviewed flag.
func (s *Store) SetReviewed(ctx context.Context, id string, reviewed bool) error {
	ctx = ensureContext(ctx)
	value := 0
	if reviewed {
		value = 1
	}
	return s.updatePole(ctx, id, "UPDATE poles SET reviewed = ? WHERE id = ?", value, id)
}

// SetNotes replaces the free-form notes text.
func (s *Store) SetNotes(ctx context.Context, id, notes string) error {
	ctx = ensureContext(ctx)
	return s.updatePole(ctx, id, "UPDATE poles SET notes = ? WHERE id = ?", notes, id)
}

// SetCheck records one checklist answer.
func (s *Store) SetCheck(ctx context.Context, id, key string, passed bool) error {
	ctx = ensureContext(ctx)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin checklist tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	err = tx.QueryRowContext(ctx, "SELECT checklist_json FROM poles WHERE id = ?", id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrPoleNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("read checklist for %s: %w", id, err)
	}

	checklist, err := unmarshalChecklist(raw)
	if err != nil {
		return err
	}
	checklist[key] = passed
	encoded, err := marshalJSON(checklist, "checklist")
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE poles SET checklist_json = ? WHERE id = ?", encoded, id); err != nil {
		return fmt.Errorf("write checklist for %s: %w", id, err)
	}
	return tx.Commit()
}

// SetChecklist replaces the full checklist map.
func (s *Store) SetChecklist(ctx context.Context, id string, checklist map[string]bool) error {
	ctx = ensureContext(ctx)
	encoded, err := marshalJSON(checklist, "checklist")
	if err != nil {
		return err
	}
	return s.updatePole(ctx, id, "UPDATE poles SET checklist_json = ? WHERE id = ?", encoded, id)
}

// SetLookup replaces the merged lookup records attached to a pole.
func (s *Store) SetLookup(ctx context.Context, id string, records []lookup.Record) error {
	ctx = ensureContext(ctx)
	encoded, err := marshalJSON(records, "lookup records")
	if err != nil {
		return err
	}
	return s.updatePole(ctx, id, "UPDATE poles SET lookup_json = ? WHERE id = ?", encoded, id)
}

// SetOrder rewrites the display order. Poles absent from ids keep their
// position and sort after the reordered set.
func (s *Store) SetOrder(ctx context.Context, ids []string) error {
	ctx = ensureContext(ctx)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for position, id := range ids {
		if _, err := tx.ExecContext(ctx, "UPDATE poles SET position = ? WHERE id = ?", position, id); err != nil {
			return fmt.Errorf("reorder pole %s: %w", id, err)
		}
	}
	return tx.Commit()
}
