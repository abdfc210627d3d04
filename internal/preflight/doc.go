// Package preflight provides readiness checks for the services and paths
// factwatch depends on.
//
// The daemon runs RunAll at startup and logs failures without refusing to
// start, since the operator can fix a missing key or binary while it runs.
// "factwatch status --check" prints the same results.
package preflight
