package ddl

import (
	"strings"

	gddl "gamedata/internal/ddl"
)

// BuildCreateTableSQL renders a SQLite CREATE TABLE IF NOT EXISTS statement
// for the given definition, with double-quoted identifiers.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.Render(t, gddl.RenderOptions{
		QuoteIdent:  quoteIdent,
		IfNotExists: true,
	})
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
