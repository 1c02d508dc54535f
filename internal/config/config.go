// Package config defines the run configuration for the ingestion pipeline.
// It is intentionally small, explicit, and dependency-free so a run can be
// described by CLI flags, a JSON file on disk, or both (flags win).
//
// Design goals:
//
//  1. Stability: changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: Go field names mirror the JSON keys used in config files.
//  3. Minimalism: no third-party config libraries; decoding is performed by
//     the standard library.
//
// Example file:
//
//	{
//	  "job": "games",
//	  "dataset": "nateduncan/2011current-ncaa-basketball-games",
//	  "table": "games_raw",
//	  "db": "data/master.db",
//	  "if_exists": "replace",
//	  "storage": { "kind": "sqlite" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Config describes one pipeline run.
type Config struct {
	// Job names the run for metrics labeling and log prefixes.
	Job string `json:"job"`

	// Dataset is a Kaggle dataset reference ("owner/slug"). When set, the
	// pipeline downloads and extracts it before discovery. Mutually optional
	// with DataDir; at least one must be set.
	Dataset string `json:"dataset"`

	// DataDir is a local directory containing the delimited input files.
	// Used directly when Dataset is empty; also the cache root for downloads.
	DataDir string `json:"data_dir"`

	// Table is the destination table name, optionally schema-qualified.
	Table string `json:"table"`

	// DB is the SQLite database path. It doubles as the storage DSN when
	// Storage.DSN is empty and the kind is "sqlite".
	DB string `json:"db"`

	// Storage selects the destination backend.
	Storage Storage `json:"storage"`

	// IfExists is the write mode for existing table content:
	// "replace" or "append".
	IfExists string `json:"if_exists"`

	// Preview is the number of rows shown in the run summary.
	Preview int `json:"preview"`

	// Verbose enables per-source diagnostics in logs.
	Verbose bool `json:"verbose"`
}

// Storage selects the sink used to persist canonical rows.
type Storage struct {
	// Kind selects the backend: "sqlite", "postgres", "mysql", "mssql".
	Kind string `json:"kind"`

	// DSN is the backend connection string. Empty with kind "sqlite" means
	// derive it from Config.DB.
	DSN string `json:"dsn"`
}

// Defaults mirrored by the cmd/collect flag set.
const (
	DefaultJob      = "games"
	DefaultDataset  = "nateduncan/2011current-ncaa-basketball-games"
	DefaultDataDir  = "data"
	DefaultTable    = "games_raw"
	DefaultDB       = "data/master.db"
	DefaultIfExists = "replace"
	DefaultStorage  = "sqlite"
	DefaultPreview  = 5
)

// Default returns a Config with every field at its documented default.
func Default() Config {
	return Config{
		Job:      DefaultJob,
		Dataset:  DefaultDataset,
		DataDir:  DefaultDataDir,
		Table:    DefaultTable,
		DB:       DefaultDB,
		Storage:  Storage{Kind: DefaultStorage},
		IfExists: DefaultIfExists,
		Preview:  DefaultPreview,
	}
}

// Load reads a JSON config file and decodes it over *c, so keys missing from
// the file keep their current (typically default) values.
func Load(path string, c *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// StorageDSN returns the DSN the storage backend should open: the explicit
// Storage.DSN when present, otherwise the SQLite database path.
func (c Config) StorageDSN() string {
	if dsn := strings.TrimSpace(c.Storage.DSN); dsn != "" {
		return dsn
	}
	return c.DB
}
