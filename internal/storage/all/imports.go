// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register their factories with the storage package.
//
// In other words, importing this package makes the following storage kinds
// available at runtime:
//
//   - "sqlite"   (gamedata/internal/storage/sqlite)
//   - "postgres" (gamedata/internal/storage/postgres)
//   - "mysql"    (gamedata/internal/storage/mysql)
//   - "mssql"    (gamedata/internal/storage/mssql)
//
// Typical usage (in cmd/collect/main.go or a similar wiring layer):
//
//	package main
//
//	import (
//	    "context"
//
//	    _ "gamedata/internal/storage/all" // enable all built-in backends
//
//	    "gamedata/internal/storage"
//	)
//
//	func main() {
//	    ctx := context.Background()
//
//	    repo, err := storage.New(ctx, storage.Config{
//	        Kind:  "sqlite",
//	        DSN:   "data/master.db",
//	        Table: "games_raw",
//	    })
//	    if err != nil {
//	        // handle error
//	    }
//	    defer repo.Close()
//
//	    // From this point on, the caller can remain fully backend-agnostic:
//	    // EnsureSchema, Load and Count all go through storage.Repository,
//	    // regardless of which backend is behind it.
//	}
//
// This pattern keeps backend-specific wiring in a single, small package and
// lets the rest of the application (pipeline, CLI) depend only on the storage
// abstraction rather than individual backends.
package all

import (
	_ "gamedata/internal/storage/mssql"
	_ "gamedata/internal/storage/mysql"
	_ "gamedata/internal/storage/postgres"
	_ "gamedata/internal/storage/sqlite"
)
