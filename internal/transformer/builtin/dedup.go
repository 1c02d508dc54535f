package builtin

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"

	"gamedata/pkg/records"
)

// DeDup removes records that are exact duplicates of an earlier record across
// the key fields. The first occurrence in input order is kept; later
// duplicates are discarded, so output order is input order. Equality is by
// value, field by field, and nil equals nil; a key field missing from a
// record compares like an explicit nil. No fuzzy matching.
//
// Candidate duplicates are found through an xxh3 hash of the composed key;
// equality is then confirmed field by field, so a hash collision can never
// drop a distinct record. The input slice is filtered in place.
type DeDup struct {
	// Keys are the fields that make up identity, e.g. the full canonical
	// column set.
	Keys []string
}

func (d DeDup) Apply(in []records.Record) []records.Record {
	if len(in) == 0 || len(d.Keys) == 0 {
		return in
	}

	// hash bucket -> indexes into out of records sharing that hash
	seen := make(map[uint64][]int, len(in))
	out := in[:0]

	for _, r := range in {
		h := d.hashKey(r)
		dup := false
		for _, i := range seen[h] {
			if d.equalKey(out[i], r) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen[h] = append(seen[h], len(out))
		out = append(out, r)
	}
	return out
}

// hashKey composes the key fields into one string and hashes it. \x1f
// separates fields and \x00 stands in for nil; the composition is only a
// bucketing aid, equalKey has the final word.
func (d DeDup) hashKey(r records.Record) uint64 {
	var b strings.Builder
	for i, k := range d.Keys {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		v, ok := r[k]
		if !ok || v == nil {
			b.WriteByte('\x00')
			continue
		}
		if s, isStr := v.(string); isStr {
			b.WriteString(s)
			continue
		}
		b.WriteString(fmt.Sprint(v))
	}
	return xxh3.HashString(b.String())
}

func (d DeDup) equalKey(a, b records.Record) bool {
	for _, k := range d.Keys {
		if !valueEqual(a[k], b[k]) {
			return false
		}
	}
	return true
}

// valueEqual compares two cells: nil only equals nil, strings compare
// directly, and other types compare on their printed form so values typed
// identically by earlier transforms stay equal.
func valueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as == bs
	}
	if aok != bok {
		return false
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
