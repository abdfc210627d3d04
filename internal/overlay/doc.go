// Package overlay turns verification results into the floating fact-check
// panel.
//
// Panel keeps the most recent entries (five by default), sanitizes every model
// supplied string with bluemonday, and pushes new entries to browsers over a
// websocket Hub. PageHandler serves a self-contained HTML page that renders
// the panel and stays live through the hub.
package overlay
