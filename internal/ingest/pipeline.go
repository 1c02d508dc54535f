// Package ingest is the end-to-end pipeline: discover delimited sources,
// resolve each onto the canonical game schema, concatenate, de-duplicate,
// clean, persist, and verify the write with a read-back count.
//
// The pipeline is strictly single-threaded: sources are processed one at a
// time in discovery order, and a Pipeline runs exactly once. It never
// retries; recovery belongs to the acquisition collaborators (the dataset
// client retries downloads, the pipeline does not). Every state transition
// is logged and recorded as a metrics step.
package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"gamedata/internal/datasource"
	"gamedata/internal/datasource/file"
	"gamedata/internal/metrics"
	"gamedata/internal/parser/csv"
	"gamedata/internal/schema"
	"gamedata/internal/storage"
	"gamedata/internal/transformer"
	"gamedata/internal/transformer/builtin"
	"gamedata/pkg/records"
)

// Downloader fetches a remote dataset ref (owner/slug) and returns the local
// directory its delimited files were extracted into. kaggle.Client satisfies
// it.
type Downloader interface {
	Download(ctx context.Context, ref string) (string, error)
}

// Options parameterizes one ingest run.
type Options struct {
	// Job labels metrics and log lines for this run.
	Job string

	// Dataset is an optional provider ref ("owner/slug"). When set,
	// Downloader fetches it and discovery runs over the returned directory;
	// when empty, discovery runs over DataDir directly.
	Dataset string

	// DataDir is the directory of delimited files to ingest (and, by
	// convention, the download cache the Downloader extracts into).
	DataDir string

	// Downloader is required when Dataset is set.
	Downloader Downloader

	// Table is the destination table name.
	Table string

	// Kind and DSN select the storage backend, as registered with the
	// storage factory.
	Kind string
	DSN  string

	// Mode picks what happens to rows already in the table.
	Mode storage.Mode

	// Preview is how many cleaned rows the Report keeps for display.
	Preview int
}

// Pipeline executes one ingest run. It is not safe for concurrent use and
// must not be reused after Run returns.
type Pipeline struct {
	opt   Options
	state State
	ran   bool
}

// New validates the options and returns an idle Pipeline.
func New(opt Options) (*Pipeline, error) {
	if opt.Table == "" {
		return nil, fmt.Errorf("ingest: table must not be empty")
	}
	if opt.Kind == "" {
		return nil, fmt.Errorf("ingest: storage kind must not be empty")
	}
	if opt.Dataset == "" && opt.DataDir == "" {
		return nil, fmt.Errorf("ingest: nothing to ingest: set a dataset ref or a data dir")
	}
	if opt.Dataset != "" && opt.Downloader == nil {
		return nil, fmt.Errorf("ingest: dataset %q set but no downloader provided", opt.Dataset)
	}
	return &Pipeline{opt: opt, state: StateIdle}, nil
}

// State returns the pipeline's current (or terminal) state.
func (p *Pipeline) State() State { return p.state }

// sourceTable is one resolved source: its rows already projected onto the
// canonical fields, in file order.
type sourceTable struct {
	name    string
	rows    []records.Record
	skipped int
}

// Run walks the state machine to completion. On a fatal condition it returns
// the partial Report alongside the error and the pipeline lands in
// StateFailed; otherwise the pipeline lands in StateDone and the Report
// carries any verification warnings.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	if p.ran {
		return nil, fmt.Errorf("ingest: pipeline already ran (state %s)", p.state)
	}
	p.ran = true

	rep := &Report{
		RunID: uuid.New(),
		Table: p.opt.Table,
		Mode:  p.opt.Mode,
	}
	started := time.Now()
	defer func() { rep.Elapsed = time.Since(started) }()

	log.Printf("ingest: run %s starting (table %s, mode %s)", rep.RunID, p.opt.Table, p.opt.Mode)

	// DiscoverSources
	var sources []datasource.Source
	if err := p.runState(rep, StateDiscoverSources, func() error {
		var err error
		sources, err = p.discover(ctx)
		return err
	}); err != nil {
		return rep, err
	}
	for _, s := range sources {
		rep.Sources = append(rep.Sources, s.Name())
	}
	metrics.RecordSources(p.opt.Job, int64(len(sources)))
	log.Printf("ingest: discovered %d source(s)", len(sources))

	// ResolvePerSource
	var tables []sourceTable
	if err := p.runState(rep, StateResolvePerSource, func() error {
		var err error
		tables, err = p.resolve(ctx, sources)
		return err
	}); err != nil {
		return rep, err
	}
	for _, t := range tables {
		rep.RowsRead += len(t.rows)
		rep.RowsSkipped += t.skipped
	}
	metrics.RecordRows(p.opt.Job, "read", int64(rep.RowsRead))
	metrics.RecordRows(p.opt.Job, "skipped", int64(rep.RowsSkipped))

	// Concatenate
	var rows []records.Record
	_ = p.runState(rep, StateConcatenate, func() error {
		rows = make([]records.Record, 0, rep.RowsRead)
		for _, t := range tables {
			rows = append(rows, t.rows...)
		}
		return nil
	})
	rep.RowsCombined = len(rows)
	metrics.RecordRows(p.opt.Job, "combined", int64(rep.RowsCombined))

	// Deduplicate
	_ = p.runState(rep, StateDeduplicate, func() error {
		rows = builtin.DeDup{Keys: schema.Columns()}.Apply(rows)
		return nil
	})
	rep.DuplicatesRemoved = rep.RowsCombined - len(rows)
	metrics.RecordRows(p.opt.Job, "duplicates_removed", int64(rep.DuplicatesRemoved))
	log.Printf("ingest: combined %d rows into %d unique rows", rep.RowsCombined, len(rows))

	// Clean
	_ = p.runState(rep, StateClean, func() error {
		rows = transformer.Chain{
			builtin.Normalize{Fields: schema.StringColumns()},
			builtin.Coerce{DateFields: schema.DateColumns(), NumberFields: schema.NumberColumns()},
		}.Apply(rows)
		return nil
	})

	// Persist
	var repo storage.Repository
	defer func() {
		if repo != nil {
			repo.Close()
		}
	}()
	preCount := int64(-1) // rows already in the table; -1 = unknown
	if err := p.runState(rep, StatePersist, func() error {
		r, err := storage.New(ctx, storage.Config{
			Kind:    p.opt.Kind,
			DSN:     p.opt.DSN,
			Table:   p.opt.Table,
			Columns: schema.Columns(),
		})
		if err != nil {
			return &PersistenceError{Table: p.opt.Table, Err: err}
		}
		repo = r
		if err := repo.EnsureSchema(ctx); err != nil {
			return &PersistenceError{Table: p.opt.Table, Err: err}
		}
		if p.opt.Mode == storage.ModeAppend {
			if n, err := repo.Count(ctx); err == nil {
				preCount = n
			} else {
				rep.warnf("pre-load count failed: %v", err)
			}
		}
		n, err := repo.Load(ctx, schema.Columns(), bindRows(rows, schema.Columns()), p.opt.Mode)
		if err != nil {
			return &PersistenceError{Table: p.opt.Table, Err: err}
		}
		rep.RowsWritten = n
		return nil
	}); err != nil {
		return rep, err
	}
	metrics.RecordRows(p.opt.Job, "written", rep.RowsWritten)
	log.Printf("ingest: wrote %d rows to %s", rep.RowsWritten, p.opt.Table)

	// Verify. Mismatch and count failure are warnings, never run errors, so
	// this state cannot reach Failed.
	_ = p.runState(rep, StateVerify, func() error {
		got, err := repo.Count(ctx)
		if err != nil {
			rep.warnf("verification failed: %v", err)
			return nil
		}
		rep.VerifiedCount = got
		want := rep.RowsWritten
		if p.opt.Mode == storage.ModeAppend {
			if preCount < 0 {
				rep.warnf("verification skipped: prior row count unknown")
				return nil
			}
			want = preCount + rep.RowsWritten
		}
		if got != want {
			rep.warnf("%v", &VerificationMismatch{Table: p.opt.Table, Want: want, Got: got})
			return nil
		}
		log.Printf("ingest: verification: %d rows confirmed in %s", got, p.opt.Table)
		return nil
	})

	p.state = StateDone
	if n := p.opt.Preview; n > 0 {
		if n > len(rows) {
			n = len(rows)
		}
		rep.Preview = rows[:n]
	}
	return rep, nil
}

// runState advances to s, executes fn, and records the timing and metrics
// step. A non-nil error moves the pipeline to StateFailed.
func (p *Pipeline) runState(rep *Report, s State, fn func() error) error {
	p.state = s
	start := time.Now()
	err := fn()
	d := time.Since(start)
	metrics.RecordStep(p.opt.Job, s.String(), err, d)
	rep.States = append(rep.States, StateTiming{State: s, Elapsed: d})
	if err != nil {
		p.state = StateFailed
		log.Printf("ingest: %s failed: %v", s, err)
	}
	return err
}

// discover resolves the input directory (downloading the dataset first when
// one is configured) and lists its delimited sources.
func (p *Pipeline) discover(ctx context.Context) ([]datasource.Source, error) {
	dir := p.opt.DataDir
	if p.opt.Dataset != "" {
		d, err := p.opt.Downloader.Download(ctx, p.opt.Dataset)
		if err != nil {
			return nil, err
		}
		dir = d
	}
	locals, err := file.DiscoverSources(dir)
	if err != nil {
		return nil, err
	}
	if len(locals) == 0 {
		return nil, &NoInputError{Dir: dir}
	}
	out := make([]datasource.Source, len(locals))
	for i, l := range locals {
		out[i] = l
	}
	return out, nil
}

// resolve parses each source and projects its rows onto the canonical
// fields. Any source whose header cannot satisfy the full canonical schema
// aborts the run; by then nothing has been written.
func (p *Pipeline) resolve(ctx context.Context, sources []datasource.Source) ([]sourceTable, error) {
	parser := csv.NewParser(csv.Options{})
	out := make([]sourceTable, 0, len(sources))
	for _, src := range sources {
		t, err := parseSource(ctx, parser, src)
		if err != nil {
			return nil, err
		}
		mapping, err := schema.Resolve(t.Header)
		if err != nil {
			return nil, &ResolveError{Source: src.Name(), Err: err}
		}
		rows := make([]records.Record, len(t.Rows))
		for i, r := range t.Rows {
			rows[i] = mapping.Project(r)
		}
		out = append(out, sourceTable{name: src.Name(), rows: rows, skipped: t.Skipped})
		log.Printf("ingest: %s: %d rows (%d skipped)", src.Name(), len(rows), t.Skipped)
	}
	return out, nil
}

// parseSource opens, parses and closes one source.
func parseSource(ctx context.Context, parser *csv.Parser, src datasource.Source) (*csv.Table, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	t, err := parser.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.Name(), err)
	}
	return t, nil
}

// bindRows flattens records into positional rows aligned to cols, the shape
// Repository.Load expects. Missing cells bind as nil.
func bindRows(rows []records.Record, cols []string) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		vals := make([]any, len(cols))
		for j, c := range cols {
			vals[j] = r[c]
		}
		out[i] = vals
	}
	return out
}
