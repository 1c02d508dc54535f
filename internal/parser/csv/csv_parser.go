// Package csv parses delimited text files into records, tolerating the mess
// real exports carry: UTF-8 BOMs, ragged rows and stray quoting.
//
// The parser deliberately keeps header cells as the source spells them
// (trimmed, BOM-stripped); reconciling spellings into the canonical schema is
// the resolver's job, not the parser's.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"gamedata/pkg/records"
)

// Options configures the CSV parser behavior. The zero value reads
// comma-separated data with a header row.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing ASCII whitespace from each cell value.
	// Header cells are always trimmed regardless.
	TrimSpace bool

	// MaxRows, when > 0, stops reading after that many data rows. Sampling
	// tools use this; the pipeline reads everything.
	MaxRows int
}

// Table is one parsed source: the header exactly as given and the data rows
// keyed by those header cells.
type Table struct {
	Header []string
	Rows   []records.Record

	// Skipped counts rows dropped for parse errors or width mismatches.
	Skipped int
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// skipLogLimit caps per-source skip logging so one corrupt file cannot flood
// the log.
const skipLogLimit = 400

// Parse consumes CSV records from r. The first record is the header; rows
// whose width differs from the header, and rows encoding/csv cannot parse,
// are skipped and counted rather than failing the source (soft-fail). Empty
// cells come through as nil.
func (p *Parser) Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	// Width is enforced against the header below so ragged rows skip instead
	// of aborting the read.
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	t := &Table{Header: headerCells(head)}

	for line := 1; ; line++ {
		if p.opt.MaxRows > 0 && len(t.Rows) >= p.opt.MaxRows {
			break
		}
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if t.Skipped < skipLogLimit {
				log.Printf("csv: skipping row %d: %v", line, err)
			}
			t.Skipped++
			continue
		}
		if len(row) != len(t.Header) {
			if t.Skipped < skipLogLimit {
				log.Printf("csv: skipping row %d: incorrect number of fields (expected %d, got %d)", line, len(t.Header), len(row))
			}
			t.Skipped++
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			key := keyFor(i, t.Header)
			// Duplicated header names collapse into one key; the first
			// occurrence wins, matching how the resolver binds columns.
			if _, exists := rec[key]; exists {
				continue
			}
			rec[key] = emptyToNil(val)
		}
		t.Rows = append(t.Rows, rec)
	}

	return t, nil
}

// keyFor returns the column key for index idx, using the header when its cell
// is non-empty, otherwise synthesizing a "col_N" name.
func keyFor(idx int, header []string) string {
	if idx < len(header) && header[idx] != "" {
		return header[idx]
	}
	return fmt.Sprintf("col_%d", idx)
}

// emptyToNil converts an empty string to nil; all other values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// headerCells strips a UTF-8 BOM from the first cell and trims each cell. The
// spelling is otherwise preserved for the resolver.
func headerCells(h []string) []string {
	res := StripHeaderBOM(append([]string(nil), h...))
	for i, c := range res {
		res[i] = strings.TrimSpace(c)
	}
	return res
}
