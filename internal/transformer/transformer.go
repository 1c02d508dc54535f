// Package transformer defines the dataset-shaping steps applied between
// parsing and persistence.
package transformer

import "gamedata/pkg/records"

// Transformer reshapes a batch of records. Implementations may mutate the
// input slice and its record maps in place; callers must not rely on the
// input surviving unchanged.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Chain is an ordered list of transformers applied left to right.
type Chain []Transformer

func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}
