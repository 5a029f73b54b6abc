// Package logging assembles structured slog loggers and formatting helpers used
// across bidsmeta.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so conversion code can tag log
// lines with run identifiers, dataset names and file paths. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
