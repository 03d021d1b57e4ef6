package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"polereview/internal/fileutil"
	"polereview/internal/logging"
	"polereview/internal/lookup"
	"polereview/internal/markup"
)

// File is the portable session document. Photo paths inside it are base
// names; loading re-resolves them against the current working tree.
type File struct {
	OriginalParentFolder string              `json:"original_parent_folder"`
	LookupSources        FileSources         `json:"lookup_sources"`
	Poles                map[string]FilePole `json:"poles"`
	PoleOrder            []string            `json:"pole_order"`
}

// FileSources names the three lookup spreadsheets the session was built from.
type FileSources struct {
	Main string `json:"main"`
	PN   string `json:"pn"`
	DR   string `json:"dr"`
}

// FilePole is the serialized review state for one pole.
type FilePole struct {
	Reviewed  bool            `json:"reviewed"`
	Notes     string          `json:"notes"`
	Checklist map[string]bool `json:"checklist"`
	Photos    []FilePhoto     `json:"photos"`
}

// FilePhoto is one photo entry with paths reduced to base names.
type FilePhoto struct {
	Original       string           `json:"original"`
	MarkedUp       string           `json:"marked_up,omitempty"`
	PendingMarkups []markup.Pending `json:"pending_markups,omitempty"`
}

// Export snapshots the store into a portable session document.
func Export(ctx context.Context, store *Store) (*File, error) {
	ctx = ensureContext(ctx)
	meta, err := store.Meta(ctx)
	if err != nil {
		return nil, err
	}
	poles, err := store.ListPoles(ctx)
	if err != nil {
		return nil, err
	}

	file := &File{
		OriginalParentFolder: meta.OriginalRoot,
		LookupSources: FileSources{
			Main: meta.Sources.Main,
			PN:   meta.Sources.PN,
			DR:   meta.Sources.DR,
		},
		Poles:     make(map[string]FilePole, len(poles)),
		PoleOrder: make([]string, 0, len(poles)),
	}
	for _, pole := range poles {
		entry := FilePole{
			Reviewed:  pole.Reviewed,
			Notes:     pole.Notes,
			Checklist: pole.Checklist,
			Photos:    make([]FilePhoto, 0, len(pole.Photos)),
		}
		for _, photo := range pole.Photos {
			filePhoto := FilePhoto{
				Original:       filepath.Base(photo.Original),
				PendingMarkups: photo.PendingMarkups,
			}
			if photo.MarkedUp != "" {
				filePhoto.MarkedUp = filepath.Base(photo.MarkedUp)
			}
			entry.Photos = append(entry.Photos, filePhoto)
		}
		file.Poles[pole.ID] = entry
		file.PoleOrder = append(file.PoleOrder, pole.ID)
	}
	return file, nil
}

// Write serializes the document to path atomically.
func (f *File) Write(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// LoadFile parses a session document from disk.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse session file %s: %w", path, err)
	}
	return &file, nil
}

// Apply overlays a loaded document onto the store: the original tree and
// lookup source paths are restored as session metadata, then per-pole review
// state is overlaid. Only poles already present in the store are touched;
// entries for poles the current photo tree does not contain are skipped.
// Marked image paths are re-resolved against workDir and dropped when the
// file no longer exists.
func Apply(ctx context.Context, store *Store, file *File, workDir string, logger *slog.Logger) error {
	ctx = ensureContext(ctx)
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "session")

	meta := Meta{
		OriginalRoot: file.OriginalParentFolder,
		Sources: lookup.Sources{
			Main: file.LookupSources.Main,
			PN:   file.LookupSources.PN,
			DR:   file.LookupSources.DR,
		},
	}
	if err := store.SetMeta(ctx, meta); err != nil {
		return err
	}

	for id, entry := range file.Poles {
		pole, err := store.GetPole(ctx, id)
		if err != nil {
			logger.Debug("skipping pole absent from current tree", logging.String(logging.FieldPoleID, id))
			continue
		}
		if err := store.SetReviewed(ctx, id, entry.Reviewed); err != nil {
			return err
		}
		if err := store.SetNotes(ctx, id, entry.Notes); err != nil {
			return err
		}
		if len(entry.Checklist) > 0 {
			if err := store.SetChecklist(ctx, id, entry.Checklist); err != nil {
				return err
			}
		}
		if err := applyPhotos(ctx, store, pole, entry.Photos, workDir, logger); err != nil {
			return err
		}
	}

	if len(file.PoleOrder) > 0 {
		if err := store.SetOrder(ctx, file.PoleOrder); err != nil {
			return err
		}
	}
	return nil
}

func applyPhotos(ctx context.Context, store *Store, pole *Pole, photos []FilePhoto, workDir string, logger *slog.Logger) error {
	byName := make(map[string]FilePhoto, len(photos))
	for _, photo := range photos {
		byName[photo.Original] = photo
	}
	for _, current := range pole.Photos {
		saved, ok := byName[filepath.Base(current.Original)]
		if !ok {
			continue
		}
		if len(saved.PendingMarkups) > 0 {
			if err := store.SetPending(ctx, pole.ID, current.Original, saved.PendingMarkups); err != nil {
				return err
			}
		}
		if saved.MarkedUp == "" {
			continue
		}
		resolved := filepath.Join(workDir, pole.ID, saved.MarkedUp)
		if _, err := os.Stat(resolved); err != nil {
			logger.Warn("marked image missing after load",
				logging.String(logging.FieldPoleID, pole.ID),
				logging.String(logging.FieldPhoto, saved.MarkedUp))
			continue
		}
		if err := store.SetMarked(ctx, pole.ID, current.Original, resolved); err != nil {
			return err
		}
	}
	return nil
}
