package mysql

// Config holds MySQL repository configuration.
type Config struct {
	// DSN is the go-sql-driver connection string, e.g.
	// "user:pass@tcp(localhost:3306)/games".
	DSN string

	// Table is the destination table name, optionally database-qualified,
	// e.g. "games.games_raw".
	Table string

	// Columns optionally restricts and orders the columns used when the
	// table is created. Empty means the full canonical schema.
	Columns []string
}
