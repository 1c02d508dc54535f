// This file adds a lightweight linter/validator for Config values. It
// performs static checks over a decoded Config and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Config.
//
// Path is a dotted path into the config (e.g. "storage.kind", "if_exists").
// Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue in the slice is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static validation of a Config.
//
// It does not mutate the config. Callers decide whether to treat warnings as
// fatal.
//
// Example:
//
//	cfg := config.Default()
//	issues := config.Validate(cfg)
//	for _, iss := range issues {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
func Validate(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels metrics and identifies runs",
		})
	}

	if strings.TrimSpace(c.Dataset) == "" && strings.TrimSpace(c.DataDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "dataset",
			Message:  "dataset and data_dir are both empty; the pipeline has no way to find input files",
		})
	}

	if strings.TrimSpace(c.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "table",
			Message:  "table must not be empty",
		})
	}

	switch c.IfExists {
	case "replace", "append":
	case "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "if_exists",
			Message:  `if_exists must not be empty; use "replace" or "append"`,
		})
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "if_exists",
			Message:  fmt.Sprintf(`unknown if_exists %q; use "replace" or "append"`, c.IfExists),
		})
	}

	issues = append(issues, validateStorage(c)...)

	if c.Preview < 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "preview",
			Message:  fmt.Sprintf("preview=%d; negative values disable the summary preview", c.Preview),
		})
	}

	return issues
}

// validateStorage validates backend selection and connection settings.
func validateStorage(c Config) []Issue {
	var issues []Issue

	s := c.Storage
	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
		return issues
	}

	// Unknown kinds are warnings for forward compatibility; the factory
	// registry is the source of truth at run time.
	known := map[string]struct{}{
		"sqlite":   {},
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}

	switch s.Kind {
	case "sqlite":
		if strings.TrimSpace(s.DSN) == "" && strings.TrimSpace(c.DB) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "db",
				Message:  "sqlite storage needs db (or storage.dsn) to locate the database file",
			})
		}
	default:
		if strings.TrimSpace(s.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "storage.dsn",
				Message:  fmt.Sprintf("storage kind %q requires storage.dsn", s.Kind),
			})
		}
	}

	return issues
}
