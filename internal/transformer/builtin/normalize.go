// Package builtin contains the reusable transformers the ingest pipeline is
// assembled from: string normalization, type coercion and de-duplication.
package builtin

import (
	"fmt"
	"strings"

	"gamedata/pkg/records"
)

const nbspace = " "

// Normalize canonicalizes string fields: NBSP becomes ASCII space and
// leading/trailing whitespace is stripped. Records are mutated in place.
//
// With Fields set, the named columns are treated as string-typed: non-string
// values are stringified first (nil becomes the empty string) and then
// normalized. With Fields empty, every field of every record is normalized
// but only values that already are strings are touched.
type Normalize struct {
	Fields []string
}

func (n Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		if len(n.Fields) == 0 {
			for k, v := range r {
				if s, ok := v.(string); ok {
					r[k] = normalizeString(s)
				}
			}
			continue
		}
		for _, k := range n.Fields {
			v, ok := r[k]
			if !ok {
				continue
			}
			r[k] = normalizeString(stringify(v))
		}
	}
	return in
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func normalizeString(s string) string {
	if strings.Contains(s, nbspace) {
		s = strings.ReplaceAll(s, nbspace, " ")
	}
	if HasEdgeSpace(s) {
		s = strings.TrimSpace(s)
	}
	return s
}

// HasEdgeSpace reports whether s starts or ends with ASCII whitespace. It is
// a cheap pre-check that lets the hot path skip TrimSpace allocations.
func HasEdgeSpace(s string) bool {
	if s == "" {
		return false
	}
	isSpace := func(b byte) bool {
		return b == ' ' || b == '\t' || b == '\n' || b == '\r'
	}
	return isSpace(s[0]) || isSpace(s[len(s)-1])
}
