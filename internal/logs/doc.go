// Package logs reads the daemon's JSON log file for `factwatch logs`.
//
// Tail returns the last N lines or everything after a byte offset, optionally
// waiting for new lines, and Filter narrows JSON lines by level, event type or
// session. Offsets let a follow loop resume where the previous call stopped.
package logs
