// Package logging assembles structured slog loggers and formatting helpers used
// across FastScribe.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with video IDs, backend names, and request IDs. Console output goes to
// stderr; an optional daily JSON file under the log directory receives a copy
// of every record. A no-op logger is provided for tests and wiring code that
// cannot fail.
package logging
