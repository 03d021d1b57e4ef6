// Package logging assembles structured slog loggers used across polereview
// components.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and provides attr helpers plus a no-op logger for tests and wiring code
// that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape and routing.
package logging
