package report

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"image/jpeg"
	"image/png"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/disintegration/imaging"

	"polereview/internal/config"
	"polereview/internal/fileutil"
	"polereview/internal/logging"
	"polereview/internal/session"
)

//go:embed report.gohtml
var reportTemplate string

const jpegQuality = 80

// Options control what the exporter includes.
type Options struct {
	Title string
	// FlaggedOnly drops poles without a failed checklist item, markup, note,
	// or PN/DR lookup match.
	FlaggedOnly bool
}

// Exporter renders session state into a self-contained HTML document with
// all imagery embedded as base64 data URIs.
type Exporter struct {
	cfg    *config.Config
	logger *slog.Logger
	tmpl   *template.Template
}

// NewExporter builds an exporter bound to the configured rendition sizes.
func NewExporter(cfg *config.Config, logger *slog.Logger) (*Exporter, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return &Exporter{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "report"),
		tmpl:   tmpl,
	}, nil
}

type pageData struct {
	Title       string
	GeneratedAt string
	FlaggedOnly bool
	Poles       []poleData
}

type poleData struct {
	ID         string
	Reviewed   bool
	Flagged    bool
	Notes      string
	Checklist  []checkData
	Lookup     []lookupData
	BarcodeURI template.URL
	Photos     []photoData
}

type checkData struct {
	Label  string
	Passed bool
}

type lookupData struct {
	Type        string
	ID          string
	Info        string
	Location    string
	Requirement string
}

type photoData struct {
	Name     string
	Anchor   string
	Marked   bool
	GridURI  template.URL
	ModalURI template.URL
}

// Export writes the report for the store's current state to outPath.
func (e *Exporter) Export(ctx context.Context, store *session.Store, outPath string, opts Options) error {
	poles, err := store.ListPoles(ctx)
	if err != nil {
		return err
	}

	title := opts.Title
	if title == "" {
		title = "Pole Photo Review"
	}
	data := pageData{
		Title:       title,
		GeneratedAt: time.Now().Format("2006-01-02 15:04"),
		FlaggedOnly: opts.FlaggedOnly,
	}

	for _, pole := range poles {
		flagged := pole.Flagged()
		if opts.FlaggedOnly && !flagged {
			continue
		}
		data.Poles = append(data.Poles, e.renderPole(pole, flagged))
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if err := fileutil.WriteFileAtomic(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	e.logger.Info("report exported",
		logging.String("path", outPath),
		logging.Int("poles", len(data.Poles)),
		logging.Bool("flagged_only", opts.FlaggedOnly))
	return nil
}

func (e *Exporter) renderPole(pole *session.Pole, flagged bool) poleData {
	out := poleData{
		ID:       pole.ID,
		Reviewed: pole.Reviewed,
		Flagged:  flagged,
		Notes:    pole.Notes,
	}

	for _, item := range e.cfg.Checklist.Items {
		passed, known := pole.Checklist[item]
		if !known {
			passed = true
		}
		out.Checklist = append(out.Checklist, checkData{Label: checklistLabel(item), Passed: passed})
	}

	for _, rec := range pole.Lookup {
		out.Lookup = append(out.Lookup, lookupData{
			Type:        string(rec.Type),
			ID:          rec.ID,
			Info:        rec.Info,
			Location:    rec.Location,
			Requirement: rec.Requirement,
		})
	}

	if uri, err := barcodeDataURI(pole.ID); err != nil {
		e.logger.Warn("barcode render failed",
			logging.String(logging.FieldPoleID, pole.ID),
			logging.Error(err))
	} else {
		out.BarcodeURI = uri
	}

	for i, photo := range pole.Photos {
		path := photo.Original
		marked := false
		if photo.MarkedUp != "" {
			path = photo.MarkedUp
			marked = true
		}
		grid, err := e.imageDataURI(path, e.cfg.Report.GridMaxPx)
		if err != nil {
			e.logger.Warn("photo skipped in report",
				logging.String(logging.FieldPoleID, pole.ID),
				logging.String(logging.FieldPhoto, path),
				logging.Error(err))
			continue
		}
		modal, err := e.imageDataURI(path, e.cfg.Report.ModalMaxPx)
		if err != nil {
			e.logger.Warn("photo skipped in report",
				logging.String(logging.FieldPoleID, pole.ID),
				logging.String(logging.FieldPhoto, path),
				logging.Error(err))
			continue
		}
		out.Photos = append(out.Photos, photoData{
			Name:     filepath.Base(path),
			Anchor:   fmt.Sprintf("photo-%s-%d", pole.ID, i),
			Marked:   marked,
			GridURI:  grid,
			ModalURI: modal,
		})
	}
	return out
}

// imageDataURI loads the photo, bounds its longest side at maxPx without
// upscaling, and returns it as a base64 JPEG data URI.
func (e *Exporter) imageDataURI(path string, maxPx int) (template.URL, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > maxPx || bounds.Dy() > maxPx {
		img = imaging.Fit(img, maxPx, maxPx, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	return template.URL("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}

func barcodeDataURI(value string) (template.URL, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return "", err
	}
	scaled, err := barcode.Scale(code, 300, 48)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return "", err
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}

// checklistLabel turns a snake_case checklist key into display text.
func checklistLabel(key string) string {
	words := strings.Split(key, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
