package ingest

import "fmt"

// NoInputError means discovery found no delimited files to ingest. It is
// fatal: an empty run would silently replace the destination table with
// nothing.
type NoInputError struct {
	Dir string
}

func (e *NoInputError) Error() string {
	return fmt.Sprintf("no csv sources under %s", e.Dir)
}

// ResolveError wraps a schema resolution failure with the source it came
// from, so the operator knows which file to fix. The wrapped error names the
// unmet canonical field.
type ResolveError struct {
	Source string
	Err    error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.Source, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// PersistenceError wraps any failure to open, prepare or write the
// destination table. It is fatal; backends roll back, so the table is left
// as it was.
type PersistenceError struct {
	Table string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist to %s: %v", e.Table, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// VerificationMismatch reports that the read-back count after the load does
// not match the expected row count. It is recorded as a warning on the
// Report, never returned as the run error: the write itself succeeded.
type VerificationMismatch struct {
	Table string
	Want  int64
	Got   int64
}

func (e *VerificationMismatch) Error() string {
	return fmt.Sprintf("verify %s: table holds %d rows, expected %d", e.Table, e.Got, e.Want)
}
