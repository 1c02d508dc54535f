// Package ddl renders SQLite DDL for the canonical game table: it maps
// logical field types onto SQLite affinities and wraps the shared CREATE
// TABLE renderer with SQLite quoting.
package ddl

import "strings"

// MapType maps a logical field type ("text", "date", "numeric", ...) onto a
// SQLite column type. SQLite typing is dynamic, so the mapping prefers
// canonical affinities:
//   - integer-ish types -> INTEGER
//   - float-ish types   -> REAL
//   - numeric/decimal   -> NUMERIC (holds int and float scores alike)
//   - date/time         -> TEXT (ISO-8601 day strings)
//   - everything else   -> TEXT
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "INTEGER"
	case "float", "double", "real":
		return "REAL"
	case "numeric", "decimal":
		return "NUMERIC"
	case "date", "datetime", "timestamp":
		return "TEXT"
	default:
		return "TEXT"
	}
}
