// Command polereview reviews utility-pole inspection photos from the
// terminal: it imports a photo tree into a working copy, merges barcode
// lookup spreadsheets, records checklist answers and notes, burns ellipse
// annotations into marked photo copies, and exports an HTML report. The
// serve subcommand runs the image cache and a local HTTP API.
package main
