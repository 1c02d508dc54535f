// Package probe inspects a single delimited source, either a local path or a
// URL, and reports how it would bind to the canonical game schema: the header
// as parsed, each canonical field's bound source column or its absence, and
// the first few data rows. It is read-only and applies no inference beyond
// the alias table; its point is to explain, before a run, why ingestion will
// succeed or where it will fail.
package probe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"gamedata/internal/datasource/file"
	"gamedata/internal/datasource/httpds"
	"gamedata/internal/parser/csv"
	"gamedata/internal/schema"
)

// Defaults for zero-valued Options.
const (
	DefaultSample   = 10
	DefaultMaxBytes = 64 << 10
)

// Options controls sampling.
type Options struct {
	// Sample caps how many data rows are read and reported. Zero means
	// DefaultSample.
	Sample int

	// Comma is the field delimiter; zero means ','.
	Comma rune

	// MaxBytes bounds how much of a URL target is fetched; the tail of the
	// fetch may cut a row in half, which shows up as a skipped row. Zero
	// means DefaultMaxBytes. Local files are read row-bounded instead.
	MaxBytes int

	// HTTP serves URL targets. Nil means a default client.
	HTTP *httpds.Client
}

// Binding is one canonical field's resolution against the source header.
type Binding struct {
	Field  string
	Column string // source column bound to Field; "" when none matches
}

// Result is the full diagnostic for one source.
type Result struct {
	Source   string
	Header   []string
	Bindings []Binding
	// Missing lists the canonical fields with no matching column, in
	// canonical order. Ingestion fails fast on the first of these.
	Missing []string
	// Rows holds up to Sample data rows as display cells aligned to Header.
	Rows    [][]string
	Skipped int
}

// Resolved reports whether every canonical field found a column, i.e.
// whether ingestion of this source would get past resolution.
func (r *Result) Resolved() bool { return len(r.Missing) == 0 }

// Inspect reads a bounded sample of target and reports its schema bindings.
// Targets starting with http:// or https:// are fetched; anything else is a
// local path.
func Inspect(ctx context.Context, target string, opt Options) (*Result, error) {
	if opt.Sample <= 0 {
		opt.Sample = DefaultSample
	}

	rd, err := openTarget(ctx, target, opt)
	if err != nil {
		return nil, err
	}
	defer rd.Close()

	t, err := csv.NewParser(csv.Options{Comma: opt.Comma, MaxRows: opt.Sample}).Parse(rd)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", target, err)
	}

	res := &Result{
		Source:  target,
		Header:  t.Header,
		Skipped: t.Skipped,
	}
	res.Bindings, res.Missing = bindHeader(t.Header)

	keys := displayHeader(t.Header)
	for _, rec := range t.Rows {
		cells := make([]string, len(keys))
		for i, k := range keys {
			if v := rec[k]; v != nil {
				cells[i] = fmt.Sprint(v)
			}
		}
		res.Rows = append(res.Rows, cells)
	}
	return res, nil
}

// openTarget returns a reader over the sample bytes of target.
func openTarget(ctx context.Context, target string, opt Options) (io.ReadCloser, error) {
	if isURL(target) {
		client := opt.HTTP
		if client == nil {
			client = httpds.NewClient(httpds.Config{})
		}
		n := opt.MaxBytes
		if n <= 0 {
			n = DefaultMaxBytes
		}
		data, err := client.FetchFirstBytes(ctx, target, n)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return file.NewLocal(target).Open(ctx)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// bindHeader resolves every canonical field against the header the same way
// the resolver does (first matching column in header order binds), but keeps
// going past the first failure so the report covers all fields.
func bindHeader(header []string) ([]Binding, []string) {
	folded := make([]string, len(header))
	for i, h := range header {
		folded[i] = schema.FoldName(h)
	}

	fields := schema.Fields()
	bindings := make([]Binding, 0, len(fields))
	var missing []string
	for _, f := range fields {
		accepted := make(map[string]bool)
		for _, a := range schema.Aliases(f.Name) {
			accepted[schema.FoldName(a)] = true
		}
		b := Binding{Field: f.Name}
		for i, fc := range folded {
			if accepted[fc] {
				b.Column = header[i]
				break
			}
		}
		if b.Column == "" {
			missing = append(missing, f.Name)
		}
		bindings = append(bindings, b)
	}
	return bindings, missing
}

// displayHeader substitutes col_N for unnamed header cells, matching the keys
// the parser files row values under.
func displayHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if h == "" {
			out[i] = fmt.Sprintf("col_%d", i)
			continue
		}
		out[i] = h
	}
	return out
}

// Render writes the diagnostic as text.
func (r *Result) Render(w io.Writer) {
	fmt.Fprintf(w, "source: %s\n", r.Source)
	fmt.Fprintf(w, "header (%d columns): %s\n", len(r.Header), strings.Join(displayHeader(r.Header), ", "))

	width := 0
	for _, b := range r.Bindings {
		if len(b.Field) > width {
			width = len(b.Field)
		}
	}
	fmt.Fprintln(w, "bindings:")
	for _, b := range r.Bindings {
		if b.Column == "" {
			fmt.Fprintf(w, "  %-*s  MISSING\n", width, b.Field)
			continue
		}
		fmt.Fprintf(w, "  %-*s  <- %s\n", width, b.Field, b.Column)
	}
	if len(r.Missing) > 0 {
		fmt.Fprintf(w, "unresolved: ingestion would fail on canonical field %q\n", r.Missing[0])
	}

	if len(r.Rows) > 0 {
		if r.Skipped > 0 {
			fmt.Fprintf(w, "sample (%d rows, %d skipped):\n", len(r.Rows), r.Skipped)
		} else {
			fmt.Fprintf(w, "sample (%d rows):\n", len(r.Rows))
		}
		tb := tablewriter.NewWriter(w)
		tb.SetHeader(displayHeader(r.Header))
		tb.SetAutoFormatHeaders(false)
		for _, row := range r.Rows {
			tb.Append(row)
		}
		tb.Render()
	}
}
