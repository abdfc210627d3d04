// Package settings persists small user toggles in SQLite.
//
// The store is a key/value table guarded by a schema_version row. Schema
// changes bump schemaVersion; users delete the database to adopt them. The only
// toggle today is the "enabled" flag, which defaults to on when unset.
package settings
