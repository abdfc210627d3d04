// Package main hosts the factwatch CLI.
//
// Most commands translate into IPC calls against the daemon: session control
// (attach, play, pause, seek, caption), history and disputed-claim reports,
// the enabled toggle, and the overlay panel. `check` talks to Gemini directly
// so a single claim can be verified without a running daemon.
package main
