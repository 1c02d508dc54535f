// Package schema defines the canonical game-results row shape and resolves
// arbitrary source column names into it.
//
// The canonical schema is a fixed, ordered set of seven fields. Sources are
// free to spell their columns however they like; an alias table maps the
// spellings seen in the wild onto canonical fields. Matching is insensitive to
// case, surrounding whitespace, accents and the separators space, underscore,
// dash and dot, so "OppScore", "opp_score" and "Opp Score" all name the same
// column.
package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical field names.
const (
	FieldTeamName = "team_name"
	FieldDate     = "date"
	FieldSite     = "site"
	FieldOppName  = "opp_name"
	FieldWL       = "w_l"
	FieldPts      = "pts"
	FieldOppPts   = "opp_pts"
)

// Field describes one canonical column: its name and logical type. Logical
// types are the storage-neutral kinds each backend's MapType understands.
type Field struct {
	Name string
	Type string // "text", "date" or "numeric"
}

// canonical is the process-wide schema, in persisted column order.
var canonical = []Field{
	{Name: FieldTeamName, Type: "text"},
	{Name: FieldDate, Type: "date"},
	{Name: FieldSite, Type: "text"},
	{Name: FieldOppName, Type: "text"},
	{Name: FieldWL, Type: "text"},
	{Name: FieldPts, Type: "numeric"},
	{Name: FieldOppPts, Type: "numeric"},
}

// aliases maps each canonical field to the source spellings accepted for it.
// The canonical name itself is always listed first. Spellings are compared
// after FoldName, so entries here are readable rather than pre-folded.
var aliases = map[string][]string{
	FieldTeamName: {"team_name", "team", "teamname"},
	FieldDate:     {"date", "data", "game_date", "gamedate"},
	FieldSite:     {"site", "location", "venue"},
	FieldOppName:  {"opp_name", "opponent", "opp", "opposing_team"},
	FieldWL:       {"w_l", "wl", "result", "win_loss"},
	FieldPts:      {"pts", "points", "score", "team_score"},
	FieldOppPts:   {"opp_pts", "opp_points", "opponent_points", "opp_score"},
}

// foldedAliases is the fold-time lookup built from aliases.
var foldedAliases = func() map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(aliases))
	for field, names := range aliases {
		set := make(map[string]bool, len(names))
		for _, n := range names {
			set[FoldName(n)] = true
		}
		out[field] = set
	}
	return out
}()

// Fields returns the canonical schema in column order. The caller may keep or
// modify the returned slice.
func Fields() []Field {
	out := make([]Field, len(canonical))
	copy(out, canonical)
	return out
}

// Columns returns the canonical column names in persisted order.
func Columns() []string {
	out := make([]string, len(canonical))
	for i, f := range canonical {
		out[i] = f.Name
	}
	return out
}

// StringColumns returns the canonical fields of logical type "text".
func StringColumns() []string { return columnsOfType("text") }

// DateColumns returns the canonical fields of logical type "date".
func DateColumns() []string { return columnsOfType("date") }

// NumberColumns returns the canonical fields of logical type "numeric".
func NumberColumns() []string { return columnsOfType("numeric") }

func columnsOfType(typ string) []string {
	var out []string
	for _, f := range canonical {
		if f.Type == typ {
			out = append(out, f.Name)
		}
	}
	return out
}

// Aliases returns the accepted source spellings for a canonical field, the
// canonical name first. It returns nil for unknown fields.
func Aliases(field string) []string {
	names, ok := aliases[field]
	if !ok {
		return nil
	}
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// foldTransformer strips combining marks so accented spellings compare equal
// to their ASCII forms. Decompose, drop nonspacing marks, recompose.
var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// FoldName normalizes a column name for alias comparison: lowercase, trim,
// strip accents, then keep only letters and digits. Separators (space,
// underscore, dash, dot) and any other punctuation carry no identity.
func FoldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	ascii, _, _ := transform.String(foldTransformer, s)

	var b strings.Builder
	b.Grow(len(ascii))
	for _, r := range ascii {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
