// Package report persists simulation runs.
//
// Available stores:
//   - JSONLStore: one JSON document per line in a single file
//   - RotatingJSONLStore: JSONL with size based rotation through lumberjack
//   - SQLiteStore: a runs table in a SQLite database
package report
