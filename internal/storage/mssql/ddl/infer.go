package ddl

import (
	"fmt"
	"strings"

	gddl "gamedata/internal/ddl"
	"gamedata/internal/schema"
)

// FromSchema derives the SQL Server table definition for the canonical game
// columns. When columns is empty the full canonical schema is used;
// otherwise the definition is restricted to the named columns, in order,
// with unknown names falling back to NVARCHAR(MAX).
//
// Every column is nullable: cleaning stores unparseable dates and scores as
// NULL rather than dropping the row.
func FromSchema(table string, columns []string) (gddl.TableDef, error) {
	if strings.TrimSpace(table) == "" {
		return gddl.TableDef{}, fmt.Errorf("mssql ddl: missing table")
	}

	fields := schema.Fields()
	if len(columns) == 0 {
		defs := make([]gddl.ColumnDef, 0, len(fields))
		for _, f := range fields {
			defs = append(defs, gddl.ColumnDef{
				Name:     f.Name,
				SQLType:  MapType(f.Type),
				Nullable: true,
			})
		}
		return gddl.TableDef{FQN: table, Columns: defs}, nil
	}

	byName := make(map[string]schema.Field, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}
	defs := make([]gddl.ColumnDef, 0, len(columns))
	for _, name := range columns {
		defs = append(defs, gddl.ColumnDef{
			Name:     name,
			SQLType:  MapType(byName[name].Type),
			Nullable: true,
		})
	}
	return gddl.TableDef{FQN: table, Columns: defs}, nil
}
