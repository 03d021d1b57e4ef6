// Package lookup reconciles the three engineering spreadsheets (main barcode
// sheet, PN sheet, DR sheet) into one merged per-barcode record set.
//
// The main sheet is read by header name, the supplemental sheets by fixed
// column position. Merge semantics are a left join that preserves every
// main-sheet barcode: matched barcodes fan out one row per PN/DR record,
// unmatched barcodes collapse to a single N/A placeholder. Load failures are
// terminal for the merge; the review session continues without lookup data.
package lookup
