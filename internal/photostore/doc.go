// Package photostore copies a source photo tree into the working directory
// and discovers per-pole photo folders.
//
// Immediate subdirectories of the photo root are pole identifiers. Files
// carrying the marked prefix pair with their sibling originals so the review
// session can track original/annotated pairs. Imports are best-effort; scans
// are deterministic with numeric collation.
package photostore
