// Package ddl defines a small, backend-agnostic model for SQL DDL and a
// renderer for CREATE TABLE statements. Storage backends adapt the shared
// model to their dialect through RenderOptions: identifier quoting and the
// IF NOT EXISTS clause differ per engine, the column-list shape does not.
package ddl

import (
	"fmt"
	"strings"
)

// RenderOptions carries the dialect-specific parts of a CREATE TABLE render.
type RenderOptions struct {
	// QuoteIdent quotes a single identifier segment. When nil, identifiers
	// are emitted verbatim.
	QuoteIdent func(string) string

	// IfNotExists adds the IF NOT EXISTS clause. Engines without that
	// clause (SQL Server) leave it off and guard existence themselves.
	IfNotExists bool
}

// Render builds a CREATE TABLE statement from a TableDef.
//
// Each column is rendered as
//
//	<Name> <SQLType> [NOT NULL] [DEFAULT <Default>]
//
// with NOT NULL added when Nullable is false and Default emitted as a raw
// expression. Columns marked PrimaryKey are collected into a trailing
// PRIMARY KEY (...) constraint. A dotted FQN is quoted per segment.
func Render(t TableDef, opt RenderOptions) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	quote := opt.QuoteIdent
	if quote == nil {
		quote = func(s string) string { return s }
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)

		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}

		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}

		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, quote(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	clause := "CREATE TABLE"
	if opt.IfNotExists {
		clause = "CREATE TABLE IF NOT EXISTS"
	}

	stmt := fmt.Sprintf(
		"%s %s (\n  %s\n);",
		clause,
		quoteFQN(fqn, quote),
		strings.Join(cols, ",\n  "),
	)
	return stmt, nil
}

// quoteFQN quotes each non-empty dotted segment of fqn.
func quoteFQN(fqn string, quote func(string) string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}
