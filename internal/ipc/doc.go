// Package ipc exposes the daemon over JSON-RPC on a Unix socket and ships the
// matching client used by the CLI.
//
// Request and response types wrap the HTTP API DTOs from internal/api so both
// surfaces report the same shapes. The server runs inside factwatchd; the
// client dials with a short timeout so CLI commands fail fast when the daemon
// is offline.
package ipc
