// Package ddl contains MySQL-specific helpers for generating DDL.
package ddl

import "strings"

// MapType normalizes a loosely-specified logical type into a MySQL SQL type.
//
//	"int"/"integer"/"bigint" -> BIGINT
//	"float"/"double"/"real"  -> DOUBLE
//	"numeric"/"decimal"      -> DOUBLE
//	"bool"/"boolean"         -> TINYINT(1)
//	"date"                   -> DATE
//	"datetime"/"timestamp"   -> DATETIME
//	everything else          -> TEXT
//
// Fixed-point DECIMAL needs an explicit precision in MySQL, so loose numeric
// kinds map to DOUBLE instead.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "float", "double", "real":
		return "DOUBLE"
	case "numeric", "decimal":
		return "DOUBLE"
	case "bool", "boolean":
		return "TINYINT(1)"
	case "date":
		return "DATE"
	case "datetime", "timestamp":
		return "DATETIME"
	default:
		return "TEXT"
	}
}
