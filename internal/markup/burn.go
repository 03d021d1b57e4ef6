package markup

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"polereview/internal/fileutil"
	"polereview/internal/logging"
)

// BurnRequest describes one save of pending markups for a single photo.
type BurnRequest struct {
	// OriginalPath is the full-resolution source image in the original tree.
	OriginalPath string
	// WorkingDir receives a mirrored copy of the burned image so the session
	// keeps referencing files inside the working tree. Empty skips mirroring.
	WorkingDir string
	// Markups are the pending annotations, each with the display ratio it was
	// drawn at.
	Markups []Pending
	// StrokeWidth is the outline width at viewport scale.
	StrokeWidth int
}

// BurnResult reports where the burned image was written.
type BurnResult struct {
	SourceMarked  string
	WorkingMarked string
}

const jpegQuality = 92

// Burn renders the pending markups as ellipse outlines onto a copy of the
// full-resolution original and writes it under the marked prefix, first next
// to the original, then mirrored into the working directory. The original
// file is never modified; a failed write leaves no partial state. Each call
// re-derives from the complete rect list, so repeated saves supersede the
// prior burned image.
func Burn(req BurnRequest, markedPrefix string, logger *slog.Logger) (BurnResult, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "markup")

	if len(req.Markups) == 0 {
		return BurnResult{}, errors.New("no pending markups to burn")
	}
	if markedPrefix == "" {
		return BurnResult{}, errors.New("marked prefix must not be empty")
	}

	src, err := imaging.Open(req.OriginalPath, imaging.AutoOrientation(true))
	if err != nil {
		return BurnResult{}, fmt.Errorf("decode original %s: %w", req.OriginalPath, err)
	}

	dc := gg.NewContextForImage(src)
	dc.SetRGB255(224, 32, 32)
	for _, pending := range req.Markups {
		r := pending.Rect.Normalize().ToSource(pending.Ratio)
		cx := (r.X1 + r.X2) / 2
		cy := (r.Y1 + r.Y2) / 2
		rx := (r.X2 - r.X1) / 2
		ry := (r.Y2 - r.Y1) / 2
		dc.SetLineWidth(ScaleStroke(req.StrokeWidth, pending.Ratio))
		dc.DrawEllipse(cx, cy, rx, ry)
		dc.Stroke()
	}

	encoded, err := encodeByExtension(req.OriginalPath, dc)
	if err != nil {
		return BurnResult{}, err
	}

	dir := filepath.Dir(req.OriginalPath)
	name := markedPrefix + filepath.Base(req.OriginalPath)
	sourceMarked := filepath.Join(dir, name)
	if err := fileutil.WriteFileAtomic(sourceMarked, encoded, 0o644); err != nil {
		return BurnResult{}, fmt.Errorf("write marked image: %w", err)
	}

	result := BurnResult{SourceMarked: sourceMarked}
	if req.WorkingDir != "" {
		workingMarked := filepath.Join(req.WorkingDir, name)
		if err := fileutil.CopyFile(sourceMarked, workingMarked); err != nil {
			return result, fmt.Errorf("mirror marked image into working copy: %w", err)
		}
		result.WorkingMarked = workingMarked
	}

	logger.Info("burned markups",
		logging.String(logging.FieldPhoto, req.OriginalPath),
		logging.Int("markups", len(req.Markups)),
		logging.String("marked", sourceMarked))
	return result, nil
}

func encodeByExtension(path string, dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		if err := png.Encode(&buf, dc.Image()); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	case ".jpg", ".jpeg":
		if err := jpeg.Encode(&buf, dc.Image(), &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	default:
		return nil, fmt.Errorf("cannot encode markups for %s: unsupported extension", path)
	}
	return buf.Bytes(), nil
}
