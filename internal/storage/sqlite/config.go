package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "data/master.db"
	//   "file:games.db?cache=shared"
	//   ":memory:"
	DSN string

	// Table is the destination table name. SQLite does not use schemas the
	// way Postgres does; dotted names such as "main.games_raw" are still
	// quoted per segment and passed through.
	Table string

	// Columns is the ordered list of destination columns. When empty, the
	// full canonical game schema is used for table creation.
	Columns []string
}
