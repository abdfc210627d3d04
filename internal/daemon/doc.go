// Package daemon coordinates the long-running factwatch process.
//
// It wires configuration, the settings store, the claim aggregator, the
// overlay panel and hub, and the verification client into a single lifecycle
// with flock-based locking to prevent multiple instances. At most one playback
// session is attached at a time; attaching builds a monitor loop that follows
// the session's play and pause events.
//
// Keep orchestration logic here: cycle behaviour lives in monitor, result
// bookkeeping in factcheck, and rendering in overlay. The daemon also serves
// the HTTP API and overlay page when paths.api_bind is set.
package daemon
