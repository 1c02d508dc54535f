package ddl

import (
	"fmt"
	"strings"

	gddl "gamedata/internal/ddl"
)

// BuildCreateTableSQL returns a T-SQL script that creates a table matching
// the provided definition if it does not already exist. T-SQL has no CREATE
// TABLE IF NOT EXISTS, so the statement is wrapped in an OBJECT_ID guard:
//
//	IF OBJECT_ID(N'[dbo].[games_raw]', N'U') IS NULL
//	BEGIN
//	CREATE TABLE [dbo].[games_raw] (
//	  [team_name] NVARCHAR(MAX),
//	  ...
//	);
//	END;
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	inner, err := gddl.Render(t, gddl.RenderOptions{QuoteIdent: quoteIdent})
	if err != nil {
		return "", err
	}

	fqn := quoteFQN(strings.TrimSpace(t.FQN))
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n%s\nEND;",
		fqn, inner,
	), nil
}

// quoteIdent quotes a single identifier segment for SQL Server using
// bracket syntax, escaping any closing brackets.
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// quoteFQN quotes a possibly schema-qualified table name, e.g.:
//
//	"dbo.games_raw" -> [dbo].[games_raw]
//	"games_raw"     -> [games_raw]
func quoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quoteIdent(p))
	}
	return strings.Join(out, ".")
}
