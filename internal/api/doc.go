// Package api defines wire-format types and converters for the HTTP API and
// IPC layer. It translates factcheck results, playback sessions and loop state
// into transport-friendly DTOs that the CLI, the overlay page and browser
// extensions can consume without importing internal packages.
//
// # Key Types
//
// Result/Claim: transport representation of a verification result with its
// MM:SS video time and normalized verdicts.
//
// DisputedClaim: one TopDisputed group.
//
// DaemonStatus: lock, session, loop, history and dependency state.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript consumers. Timestamps use
// RFC3339 with milliseconds. Verdicts are exposed as their lowercase names.
package api
