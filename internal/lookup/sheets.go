package lookup

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sentinel errors callers branch on when a source sheet cannot be used.
var (
	ErrMissingColumn     = errors.New("required column missing")
	ErrUnsupportedFormat = errors.New("unsupported sheet format")
)

// Fixed column positions of the headerless supplemental sheets.
const (
	pnColBarcode  = 0
	pnColID       = 2
	pnColInfo     = 4
	pnColLocation = 5

	drColBarcode     = 0
	drColID          = 3
	drColInfoA       = 4
	drColInfoB       = 5
	drColLocation    = 8
	drColRequirement = 12
)

// Required headers of the main sheet. Matching is case-insensitive.
var mainRequiredHeaders = []string{"Barcode ID", "Latitude", "Longitude"}

// LoadMainSheet reads the main barcode sheet. The first row is the header;
// the request column is the first header containing "request"
// (case-insensitive) and is optional.
func LoadMainSheet(path string) ([]MainRow, error) {
	rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("main sheet %s: %w: empty file", path, ErrMissingColumn)
	}

	header := rows[0]
	barcodeIdx, err := requiredColumn(header, mainRequiredHeaders[0], path)
	if err != nil {
		return nil, err
	}
	latIdx, err := requiredColumn(header, mainRequiredHeaders[1], path)
	if err != nil {
		return nil, err
	}
	lonIdx, err := requiredColumn(header, mainRequiredHeaders[2], path)
	if err != nil {
		return nil, err
	}
	requestIdx := -1
	for i, name := range header {
		if strings.Contains(strings.ToLower(name), "request") {
			requestIdx = i
			break
		}
	}

	result := make([]MainRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		barcode := strings.TrimSpace(cell(row, barcodeIdx))
		if barcode == "" {
			continue
		}
		entry := MainRow{
			Barcode:   barcode,
			Latitude:  strings.TrimSpace(cell(row, latIdx)),
			Longitude: strings.TrimSpace(cell(row, lonIdx)),
		}
		if requestIdx >= 0 {
			entry.Request = strings.TrimSpace(cell(row, requestIdx))
		}
		result = append(result, entry)
	}
	return result, nil
}

// LoadPNSheet reads the headerless PN sheet at its fixed column positions.
// Every PN row carries Requirement "Required".
func LoadPNSheet(path string) ([]Record, error) {
	rows, err := readWorkbook(path)
	if err != nil {
		return nil, err
	}

	result := make([]Record, 0, len(rows))
	for _, row := range rows {
		barcode := strings.TrimSpace(cell(row, pnColBarcode))
		if barcode == "" {
			continue
		}
		result = append(result, Record{
			Barcode:     barcode,
			Type:        TypePN,
			ID:          strings.TrimSpace(cell(row, pnColID)),
			Info:        strings.TrimSpace(cell(row, pnColInfo)),
			Location:    strings.TrimSpace(cell(row, pnColLocation)),
			Requirement: "Required",
		})
	}
	return result, nil
}

// LoadDRSheet reads the headerless DR sheet at its fixed column positions.
// The two info fragments are joined with a single space and trimmed.
func LoadDRSheet(path string) ([]Record, error) {
	rows, err := readWorkbook(path)
	if err != nil {
		return nil, err
	}

	result := make([]Record, 0, len(rows))
	for _, row := range rows {
		barcode := strings.TrimSpace(cell(row, drColBarcode))
		if barcode == "" {
			continue
		}
		info := strings.TrimSpace(cell(row, drColInfoA) + " " + cell(row, drColInfoB))
		result = append(result, Record{
			Barcode:     barcode,
			Type:        TypeDR,
			ID:          strings.TrimSpace(cell(row, drColID)),
			Info:        info,
			Location:    strings.TrimSpace(cell(row, drColLocation)),
			Requirement: strings.TrimSpace(cell(row, drColRequirement)),
		})
	}
	return result, nil
}

// readTable dispatches on the file extension: CSV or xlsx workbook.
func readTable(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx", ".xlsm":
		return readWorkbook(path)
	case ".xls":
		return nil, fmt.Errorf("%s: %w: legacy .xls workbooks are not readable, convert to .xlsx or .csv", path, ErrUnsupportedFormat)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sheet: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", path, err)
	}
	return rows, nil
}

func readWorkbook(path string) ([][]string, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".xls" {
		return nil, fmt.Errorf("%s: %w: legacy .xls workbooks are not readable, convert to .xlsx", path, ErrUnsupportedFormat)
	}
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read workbook %s: %w", path, err)
	}
	return rows, nil
}

func requiredColumn(header []string, name, path string) (int, error) {
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("main sheet %s: %w: %q", path, ErrMissingColumn, name)
}

// cell returns the column value or "" when the row is shorter than idx.
// Workbook readers drop trailing empty cells, so short rows are routine.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
