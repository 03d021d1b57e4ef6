package photostore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Photo pairs an original image with its marked-up sibling, when one exists.
type Photo struct {
	Original string `json:"original"`
	MarkedUp string `json:"marked_up,omitempty"`
}

// PoleFolder is one discovered pole subdirectory and its ordered photo list.
type PoleFolder struct {
	ID     string  `json:"id"`
	Dir    string  `json:"dir"`
	Photos []Photo `json:"photos"`
}

// photoExtensions are the recognized image types. HEIC files are listed so
// the review can count them, but decoding is not supported.
var photoExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".heic": {},
}

// IsPhoto reports whether the filename carries a recognized image extension.
func IsPhoto(name string) bool {
	_, ok := photoExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Scan discovers pole folders under root. Immediate subdirectories are pole
// identifiers; files named <markedPrefix><original> attach to their sibling
// original instead of counting as photos of their own. Orphan marked files
// (no matching original) are ignored. Ordering is collated numerically so
// "pole2" sorts before "pole10".
func Scan(root, markedPrefix string) ([]PoleFolder, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read photo root %s: %w", root, err)
	}

	collator := collate.New(language.Und, collate.Numeric, collate.IgnoreCase)

	var folders []PoleFolder
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		photos, err := scanFolder(dir, markedPrefix, collator)
		if err != nil {
			return nil, err
		}
		folders = append(folders, PoleFolder{
			ID:     entry.Name(),
			Dir:    dir,
			Photos: photos,
		})
	}

	sort.Slice(folders, func(i, j int) bool {
		return collator.CompareString(folders[i].ID, folders[j].ID) < 0
	})
	return folders, nil
}

func scanFolder(dir, markedPrefix string, collator *collate.Collator) ([]Photo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read pole folder %s: %w", dir, err)
	}

	originals := make([]string, 0, len(entries))
	marked := map[string]string{}
	for _, entry := range entries {
		if entry.IsDir() || !IsPhoto(entry.Name()) {
			continue
		}
		name := entry.Name()
		if markedPrefix != "" && strings.HasPrefix(name, markedPrefix) {
			marked[strings.TrimPrefix(name, markedPrefix)] = name
			continue
		}
		originals = append(originals, name)
	}

	sort.Slice(originals, func(i, j int) bool {
		return collator.CompareString(originals[i], originals[j]) < 0
	})

	photos := make([]Photo, 0, len(originals))
	for _, name := range originals {
		photo := Photo{Original: filepath.Join(dir, name)}
		if markedName, ok := marked[name]; ok {
			photo.MarkedUp = filepath.Join(dir, markedName)
		}
		photos = append(photos, photo)
	}
	return photos, nil
}
