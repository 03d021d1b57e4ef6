// Package report renders the review session into a single self-contained
// HTML file: per-pole checklist and lookup tables, a Code 128 barcode, and
// photos embedded as base64 data URIs at grid and modal sizes.
package report
