// Package logging assembles the structured slog loggers used across trisetra.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so controller code can tag log
// lines with task IDs, detail-view sessions and request correlation IDs. A
// no-op logger is provided for tests and wiring code that cannot fail.
package logging
