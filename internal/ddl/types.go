package ddl

// ColumnDef describes a single column of a table definition. Fields are
// database-agnostic; quoting and dialect adjustments happen at render time.
//
//   - Name: logical column name, unquoted (e.g. "team_name")
//   - SQLType: target SQL type after backend mapping (e.g. TEXT, BIGINT, DATE)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Default: raw default expression, emitted verbatim
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the fully-qualified table name (FQN) and an ordered list of
// columns. The FQN is expected in dotted form (e.g., "main.games_raw") and is
// quoted per-segment by dialect renderers.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}
