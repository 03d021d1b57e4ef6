package photostore

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"polereview/internal/fileutil"
	"polereview/internal/logging"
)

// ImportStats summarizes a bulk photo copy.
type ImportStats struct {
	Copied  int `json:"copied"`
	Skipped int `json:"skipped"`
}

// spareBytes is kept free on the destination filesystem beyond the tree size.
const spareBytes = 256 << 20

// Import copies the photo tree under srcRoot into workDir. The copy is
// best-effort: individual file failures are logged and skipped, the import
// continues with the remaining files. A destination that cannot plausibly
// hold the tree fails before any file is copied.
func Import(ctx context.Context, srcRoot, workDir string, logger *slog.Logger) (ImportStats, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "photostore")

	stats := ImportStats{}
	info, err := os.Stat(srcRoot)
	if err != nil {
		return stats, fmt.Errorf("inspect photo root: %w", err)
	}
	if !info.IsDir() {
		return stats, fmt.Errorf("photo root %s is not a directory", srcRoot)
	}

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return stats, fmt.Errorf("create working directory: %w", err)
	}

	if err := checkCapacity(srcRoot, workDir); err != nil {
		return stats, err
	}

	walkErr := filepath.WalkDir(srcRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("skipping unreadable entry", logging.String("path", path), logging.Error(err))
			stats.Skipped++
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(srcRoot, path)
		if relErr != nil {
			return relErr
		}
		target := filepath.Join(workDir, rel)

		if entry.IsDir() {
			if mkErr := os.MkdirAll(target, 0o755); mkErr != nil {
				logger.Warn("skipping directory", logging.String("path", path), logging.Error(mkErr))
				stats.Skipped++
				return fs.SkipDir
			}
			return nil
		}

		if copyErr := fileutil.CopyFile(path, target); copyErr != nil {
			logger.Warn("skipping file", logging.String("path", path), logging.Error(copyErr))
			stats.Skipped++
			return nil
		}
		stats.Copied++
		return nil
	})
	if walkErr != nil {
		return stats, fmt.Errorf("import photo tree: %w", walkErr)
	}

	logger.Info("photo import finished",
		logging.Int("copied", stats.Copied),
		logging.Int("skipped", stats.Skipped))
	return stats, nil
}

func checkCapacity(srcRoot, workDir string) error {
	need, err := fileutil.TreeSize(srcRoot)
	if err != nil {
		// Size probe failures are not fatal; the per-file copy reports them.
		return nil
	}
	total, free, err := fileutil.FreeSpace(workDir)
	if err != nil || total == 0 {
		return nil
	}
	if uint64(need)+spareBytes > free {
		return fmt.Errorf("working directory %s has %d bytes free, photo tree needs %d", workDir, free, need)
	}
	return nil
}
