package schema

import (
	"fmt"

	"gamedata/pkg/records"
)

// Mapping is a complete, per-source resolution result: canonical field name to
// the source column bound to it. A Mapping always covers all seven canonical
// fields; partial mappings are never produced.
type Mapping map[string]string

// ResolveError reports the first canonical field no source column could
// satisfy. Resolution is fail-fast, so Field is deterministic: it is the
// earliest unmet field in canonical order.
type ResolveError struct {
	Field string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("no source column matches canonical field %q", e.Field)
}

// Resolve maps one source's column names onto the canonical schema.
//
// For each canonical field, in canonical order, the source columns are scanned
// in their given order; the first column whose folded name equals any folded
// alias of the field is bound. Ties therefore resolve to the earliest source
// column, and a column is not consumed by binding (a pathological source could
// feed two fields from one column). The first field with no match aborts
// resolution with a *ResolveError; later fields are not examined.
//
// Resolve is a pure function over the column names.
func Resolve(columns []string) (Mapping, error) {
	folded := make([]string, len(columns))
	for i, c := range columns {
		folded[i] = FoldName(c)
	}

	m := make(Mapping, len(canonical))
	for _, f := range canonical {
		accepted := foldedAliases[f.Name]
		idx := -1
		for i, fc := range folded {
			if accepted[fc] {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, &ResolveError{Field: f.Name}
		}
		m[f.Name] = columns[idx]
	}
	return m, nil
}

// Project builds a canonical record from a source row by pulling each bound
// source column. Cells absent from the row come through as nil.
func (m Mapping) Project(rec records.Record) records.Record {
	out := make(records.Record, len(canonical))
	for _, f := range canonical {
		out[f.Name] = rec[m[f.Name]]
	}
	return out
}
