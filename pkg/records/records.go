// Package records defines the row type shared by parsers, transformers and
// storage backends.
package records

// Record is one tabular row keyed by field name. Values are deliberately
// untyped: parsers produce strings, transformers may replace them with typed
// values, and nil marks a missing or unparseable cell.
type Record map[string]any
