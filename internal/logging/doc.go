// Package logging assembles structured slog loggers and formatting helpers used
// across factwatch.
//
// It owns the console and JSON handlers, level parsing and output plumbing, and
// context helpers that tag log lines with session, cycle and request IDs. The
// daemon logs human-readable lines to stdout and JSON lines to a file in the log
// directory. NewNop serves tests and wiring code that cannot fail.
package logging
