package builtin

import (
	"strconv"
	"strings"
	"time"

	"gamedata/pkg/records"
)

// DefaultDateLayouts are the date spellings accepted by Coerce when none are
// configured, tried in order.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Coerce parses date and numeric fields into typed values. Unlike a
// validator, it never rejects a record: a cell that cannot be parsed is
// replaced with nil, so malformed data degrades to null instead of failing
// the run. Records are mutated in place.
//
// Coerce is idempotent: values it has already typed (time.Time, int64,
// float64, nil) pass through unchanged.
type Coerce struct {
	DateFields   []string
	NumberFields []string
	Layouts      []string // date layouts, tried in order; empty means DefaultDateLayouts
}

func (c Coerce) Apply(in []records.Record) []records.Record {
	layouts := c.Layouts
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	for _, r := range in {
		for _, f := range c.DateFields {
			if v, ok := r[f]; ok {
				r[f] = coerceDate(v, layouts)
			}
		}
		for _, f := range c.NumberFields {
			if v, ok := r[f]; ok {
				r[f] = coerceNumber(v)
			}
		}
	}
	return in
}

func coerceDate(v any, layouts []string) any {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		return t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		for _, layout := range layouts {
			if d, err := time.Parse(layout, s); err == nil {
				return d
			}
		}
		return nil
	default:
		return coerceDate(stringify(v), layouts)
	}
}

func coerceNumber(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case int64:
		return t
	case float64:
		return t
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case float32:
		return float64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return nil
	default:
		return coerceNumber(stringify(v))
	}
}
