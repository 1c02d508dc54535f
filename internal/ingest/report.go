package ingest

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"

	"gamedata/internal/schema"
	"gamedata/internal/storage"
	"gamedata/pkg/records"
)

// Report is the outcome of one ingest run. On a fatal error Run still
// returns the Report accumulated so far, so the counts and state trace up to
// the failure are available.
type Report struct {
	RunID   uuid.UUID
	Table   string
	Mode    storage.Mode
	States  []StateTiming
	Sources []string

	RowsRead          int
	RowsSkipped       int
	RowsCombined      int
	DuplicatesRemoved int
	RowsWritten       int64
	VerifiedCount     int64

	Warnings []string

	// Preview holds the first cleaned rows, canonical fields only.
	Preview []records.Record

	Elapsed time.Duration
}

// warnf records a non-fatal condition on the report and logs it.
func (r *Report) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	log.Printf("ingest: warning: %s", msg)
}

// Render writes the human-readable run summary.
func (r *Report) Render(w io.Writer) {
	fmt.Fprintf(w, "run %s finished in %s\n", r.RunID, r.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "sources (%d):\n", len(r.Sources))
	for _, s := range r.Sources {
		fmt.Fprintf(w, "  %s\n", s)
	}
	if r.RowsSkipped > 0 {
		fmt.Fprintf(w, "skipped %s malformed rows\n", humanize.Comma(int64(r.RowsSkipped)))
	}
	fmt.Fprintf(w, "combined %s rows into %s unique rows (%s duplicates removed)\n",
		humanize.Comma(int64(r.RowsCombined)),
		humanize.Comma(int64(r.RowsCombined-r.DuplicatesRemoved)),
		humanize.Comma(int64(r.DuplicatesRemoved)))
	fmt.Fprintf(w, "wrote %s rows to %s (%s); read-back count %s\n",
		humanize.Comma(r.RowsWritten), r.Table, r.Mode, humanize.Comma(r.VerifiedCount))
	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "warnings (%d):\n", len(r.Warnings))
		for _, msg := range r.Warnings {
			fmt.Fprintf(w, "  - %s\n", msg)
		}
	}
	if len(r.Preview) > 0 {
		fmt.Fprintf(w, "first %d rows:\n", len(r.Preview))
		tb := tablewriter.NewWriter(w)
		tb.SetHeader(schema.Columns())
		tb.SetAutoFormatHeaders(false)
		for _, rec := range r.Preview {
			tb.Append(previewCells(rec))
		}
		tb.Render()
	}
}

// previewCells formats one canonical record for the preview table, column
// order matching schema.Columns.
func previewCells(rec records.Record) []string {
	cols := schema.Columns()
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = cellString(rec[c])
	}
	return out
}

// cellString renders a cleaned cell: nil is blank, dates render as
// YYYY-MM-DD, everything else via its default formatting.
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.Format("2006-01-02")
	default:
		return fmt.Sprint(t)
	}
}
