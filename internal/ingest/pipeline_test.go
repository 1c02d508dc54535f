package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gamedata/internal/schema"
	"gamedata/internal/storage"
	_ "gamedata/internal/storage/sqlite"
)

const canonicalHeader = "team_name,date,site,opp_name,w_l,pts,opp_pts\n"

// writeCSV drops a CSV fixture into dir and returns its path.
func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

// sqliteOptions builds Options for a run out of dataDir into a fresh
// file-backed SQLite database. The db lives in its own subdirectory so tests
// can also assert it was never created.
func sqliteOptions(t *testing.T, dataDir string) (Options, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "out", "test.db")
	return Options{
		Job:     "test",
		DataDir: dataDir,
		Table:   "games_raw",
		Kind:    "sqlite",
		DSN:     dbPath,
		Mode:    storage.ModeReplace,
		Preview: 5,
	}, dbPath
}

// countRows opens the database through the storage factory and returns the
// destination table's row count.
func countRows(t *testing.T, dbPath string) int64 {
	t.Helper()
	repo, err := storage.New(context.Background(), storage.Config{
		Kind:    "sqlite",
		DSN:     dbPath,
		Table:   "games_raw",
		Columns: schema.Columns(),
	})
	if err != nil {
		t.Fatalf("open db for count: %v", err)
	}
	defer repo.Close()
	n, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// statesOf extracts the traversal order from a report.
func statesOf(rep *Report) []State {
	out := make([]State, len(rep.States))
	for i, st := range rep.States {
		out[i] = st.State
	}
	return out
}

/*
TestRunMixedHeaders ingests the same game twice: once under survey-style
column names and once under the canonical names. Resolution must map both
headers onto the same schema, and the exact-duplicate row must be dropped, so
exactly one row lands in the table.
*/
func TestRunMixedHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCSV(t, dir, "a_survey.csv",
		"Team,Date,Site,Opponent,Result,Score,OppScore\nDuke,2023-01-01,Home,UNC,W,70,60\n")
	writeCSV(t, dir, "b_canonical.csv",
		canonicalHeader+"Duke,2023-01-01,Home,UNC,W,70,60\n")

	opt, dbPath := sqliteOptions(t, dir)
	p, err := New(opt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := p.State(); got != StateDone {
		t.Errorf("state = %s, want done", got)
	}
	if len(rep.Sources) != 2 {
		t.Errorf("sources = %v, want 2 entries", rep.Sources)
	}
	if rep.RowsRead != 2 || rep.RowsCombined != 2 {
		t.Errorf("read/combined = %d/%d, want 2/2", rep.RowsRead, rep.RowsCombined)
	}
	if rep.DuplicatesRemoved != 1 {
		t.Errorf("duplicates removed = %d, want 1", rep.DuplicatesRemoved)
	}
	if rep.RowsWritten != 1 {
		t.Errorf("rows written = %d, want 1", rep.RowsWritten)
	}
	if rep.VerifiedCount != 1 {
		t.Errorf("verified count = %d, want 1", rep.VerifiedCount)
	}
	if len(rep.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", rep.Warnings)
	}
	if n := countRows(t, dbPath); n != 1 {
		t.Errorf("table has %d rows, want 1", n)
	}

	// The surviving row must be the cleaned, typed one.
	if len(rep.Preview) != 1 {
		t.Fatalf("preview = %d rows, want 1", len(rep.Preview))
	}
	row := rep.Preview[0]
	if got := row["team_name"]; got != "Duke" {
		t.Errorf("team_name = %#v, want Duke", got)
	}
	d, ok := row["date"].(time.Time)
	if !ok || !d.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %#v, want 2023-01-01", row["date"])
	}
	if got := row["pts"]; got != int64(70) {
		t.Errorf("pts = %#v, want int64 70", got)
	}
	if got := row["opp_pts"]; got != int64(60) {
		t.Errorf("opp_pts = %#v, want int64 60", got)
	}

	want := []State{
		StateDiscoverSources, StateResolvePerSource, StateConcatenate,
		StateDeduplicate, StateClean, StatePersist, StateVerify,
	}
	got := statesOf(rep)
	if len(got) != len(want) {
		t.Fatalf("state trace = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("state trace = %v, want %v", got, want)
		}
	}
}

/*
TestRunMissingField aborts when one source cannot satisfy the canonical
schema. The error names both the offending source and the first unmet field,
and nothing is written: the database file is never even created.
*/
func TestRunMissingField(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCSV(t, dir, "bad.csv",
		"Team,Date,Opponent,Result,Score,OppScore\nDuke,2023-01-01,UNC,W,70,60\n")
	writeCSV(t, dir, "good.csv",
		canonicalHeader+"Duke,2023-01-01,Home,UNC,W,70,60\n")

	opt, dbPath := sqliteOptions(t, dir)
	p, err := New(opt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rep, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("Run succeeded, want resolution failure")
	}

	var rerr *ResolveError
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %v (%T), want *ResolveError", err, err)
	}
	if filepath.Base(rerr.Source) != "bad.csv" {
		t.Errorf("source = %q, want bad.csv", rerr.Source)
	}
	var serr *schema.ResolveError
	if !errors.As(err, &serr) || serr.Field != "site" {
		t.Errorf("wrapped field error = %v, want field site", err)
	}

	if got := p.State(); got != StateFailed {
		t.Errorf("state = %s, want failed", got)
	}
	if rep.RowsWritten != 0 {
		t.Errorf("rows written = %d, want 0", rep.RowsWritten)
	}
	if _, err := os.Stat(dbPath); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("db file exists at %s; nothing should have been written", dbPath)
	}
}

/*
TestRunUnparseableDate keeps rows whose cells fail to parse: the bad date
degrades to null and the row still persists.
*/
func TestRunUnparseableDate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCSV(t, dir, "games.csv",
		canonicalHeader+"Duke,not-a-date,Home,UNC,W,70,60\n")

	opt, dbPath := sqliteOptions(t, dir)
	p, err := New(opt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rep.RowsWritten != 1 {
		t.Fatalf("rows written = %d, want 1", rep.RowsWritten)
	}
	if len(rep.Preview) != 1 {
		t.Fatalf("preview = %d rows, want 1", len(rep.Preview))
	}
	if got := rep.Preview[0]["date"]; got != nil {
		t.Errorf("date = %#v, want nil", got)
	}
	if got := rep.Preview[0]["team_name"]; got != "Duke" {
		t.Errorf("team_name = %#v, want Duke", got)
	}
	if n := countRows(t, dbPath); n != 1 {
		t.Errorf("table has %d rows, want 1", n)
	}
}

func TestRunNoSources(t *testing.T) {
	t.Parallel()

	opt, _ := sqliteOptions(t, t.TempDir())
	p, err := New(opt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = p.Run(context.Background())

	var nerr *NoInputError
	if !errors.As(err, &nerr) {
		t.Fatalf("error = %v (%T), want *NoInputError", err, err)
	}
	if got := p.State(); got != StateFailed {
		t.Errorf("state = %s, want failed", got)
	}
}

/*
TestRunAppendVerify runs the same two-row source twice: first replacing,
then appending. The append run must verify against prior count plus written
count, so four rows in the table is not a mismatch.
*/
func TestRunAppendVerify(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCSV(t, dir, "games.csv", canonicalHeader+
		"Duke,2023-01-01,Home,UNC,W,70,60\n"+
		"Duke,2023-01-02,Away,UNC,L,58,61\n")

	opt, dbPath := sqliteOptions(t, dir)
	p1, err := New(opt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p1.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	opt.Mode = storage.ModeAppend
	p2, err := New(opt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rep, err := p2.Run(context.Background())
	if err != nil {
		t.Fatalf("append run: %v", err)
	}

	if rep.RowsWritten != 2 {
		t.Errorf("rows written = %d, want 2", rep.RowsWritten)
	}
	if rep.VerifiedCount != 4 {
		t.Errorf("verified count = %d, want 4", rep.VerifiedCount)
	}
	if len(rep.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", rep.Warnings)
	}
	if n := countRows(t, dbPath); n != 4 {
		t.Errorf("table has %d rows, want 4", n)
	}
}

// fakeDownloader returns a fixed directory instead of fetching anything.
type fakeDownloader struct {
	dir    string
	err    error
	gotRef string
}

func (f *fakeDownloader) Download(_ context.Context, ref string) (string, error) {
	f.gotRef = ref
	if f.err != nil {
		return "", f.err
	}
	return f.dir, nil
}

func TestRunWithDownloader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCSV(t, dir, "games.csv",
		canonicalHeader+"Duke,2023-01-01,Home,UNC,W,70,60\n")
	dl := &fakeDownloader{dir: dir}

	opt, _ := sqliteOptions(t, "")
	opt.Dataset = "someowner/some-games"
	opt.Downloader = dl

	p, err := New(opt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if dl.gotRef != "someowner/some-games" {
		t.Errorf("downloader ref = %q", dl.gotRef)
	}
	if rep.RowsWritten != 1 {
		t.Errorf("rows written = %d, want 1", rep.RowsWritten)
	}
}

func TestRunDownloadFailure(t *testing.T) {
	t.Parallel()

	dl := &fakeDownloader{err: errors.New("dataset unreachable")}

	opt, _ := sqliteOptions(t, "")
	opt.Dataset = "someowner/some-games"
	opt.Downloader = dl

	p, err := New(opt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = p.Run(context.Background())
	if err == nil || !errors.Is(err, dl.err) {
		t.Fatalf("error = %v, want download failure", err)
	}
	if got := p.State(); got != StateFailed {
		t.Errorf("state = %s, want failed", got)
	}
}

// stubRepo is a storage.Repository with scripted results, registered under
// per-test kinds to exercise persist and verify edges without a database.
type stubRepo struct {
	loadErr    error
	countAfter int64
	countErr   error
	written    int64
	closed     bool
}

func (s *stubRepo) EnsureSchema(context.Context) error { return nil }

func (s *stubRepo) Load(_ context.Context, _ []string, rows [][]any, _ storage.Mode) (int64, error) {
	if s.loadErr != nil {
		return 0, s.loadErr
	}
	s.written = int64(len(rows))
	return s.written, nil
}

func (s *stubRepo) Count(context.Context) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.countAfter, nil
}

func (s *stubRepo) Close() { s.closed = true }

// registerStub installs stub under kind and returns Options wired to it.
func registerStub(t *testing.T, kind string, stub *stubRepo) Options {
	t.Helper()
	storage.Register(kind, func(context.Context, storage.Config) (storage.Repository, error) {
		return stub, nil
	})

	dir := t.TempDir()
	writeCSV(t, dir, "games.csv",
		canonicalHeader+"Duke,2023-01-01,Home,UNC,W,70,60\n")
	return Options{
		Job:     "test",
		DataDir: dir,
		Table:   "games_raw",
		Kind:    kind,
		Mode:    storage.ModeReplace,
	}
}

/*
TestRunVerificationMismatch forces the read-back count away from the written
count. The run must still succeed; the mismatch surfaces only as a warning.
*/
func TestRunVerificationMismatch(t *testing.T) {
	t.Parallel()

	stub := &stubRepo{countAfter: 5}
	opt := registerStub(t, "ingest_test_mismatch", stub)

	p, err := New(opt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := p.State(); got != StateDone {
		t.Errorf("state = %s, want done", got)
	}
	if len(rep.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", rep.Warnings)
	}
	want := (&VerificationMismatch{Table: "games_raw", Want: 1, Got: 5}).Error()
	if rep.Warnings[0] != want {
		t.Errorf("warning = %q, want %q", rep.Warnings[0], want)
	}
	if rep.VerifiedCount != 5 {
		t.Errorf("verified count = %d, want 5", rep.VerifiedCount)
	}
	if !stub.closed {
		t.Error("repository was not closed")
	}
}

func TestRunCountFailureIsWarning(t *testing.T) {
	t.Parallel()

	stub := &stubRepo{countErr: errors.New("connection lost")}
	opt := registerStub(t, "ingest_test_counterr", stub)

	p, err := New(opt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := p.State(); got != StateDone {
		t.Errorf("state = %s, want done", got)
	}
	if len(rep.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", rep.Warnings)
	}
}

func TestRunPersistFailure(t *testing.T) {
	t.Parallel()

	stub := &stubRepo{loadErr: errors.New("disk full")}
	opt := registerStub(t, "ingest_test_loaderr", stub)

	p, err := New(opt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rep, err := p.Run(context.Background())

	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v (%T), want *PersistenceError", err, err)
	}
	if !errors.Is(err, stub.loadErr) {
		t.Errorf("error does not wrap the load failure: %v", err)
	}
	if got := p.State(); got != StateFailed {
		t.Errorf("state = %s, want failed", got)
	}
	if rep.RowsWritten != 0 {
		t.Errorf("rows written = %d, want 0", rep.RowsWritten)
	}
	if !stub.closed {
		t.Error("repository was not closed")
	}
}

func TestRunUnknownStorageKind(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCSV(t, dir, "games.csv",
		canonicalHeader+"Duke,2023-01-01,Home,UNC,W,70,60\n")

	p, err := New(Options{
		Job:     "test",
		DataDir: dir,
		Table:   "games_raw",
		Kind:    "ingest_test_never_registered",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = p.Run(context.Background())

	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v (%T), want *PersistenceError", err, err)
	}
	if got := p.State(); got != StateFailed {
		t.Errorf("state = %s, want failed", got)
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opt     Options
		wantErr string
	}{
		{
			name:    "missing table",
			opt:     Options{Kind: "sqlite", DataDir: "data"},
			wantErr: "table must not be empty",
		},
		{
			name:    "missing kind",
			opt:     Options{Table: "games_raw", DataDir: "data"},
			wantErr: "storage kind must not be empty",
		},
		{
			name:    "no input",
			opt:     Options{Table: "games_raw", Kind: "sqlite"},
			wantErr: "nothing to ingest",
		},
		{
			name:    "dataset without downloader",
			opt:     Options{Table: "games_raw", Kind: "sqlite", Dataset: "owner/slug"},
			wantErr: "no downloader",
		},
		{
			name: "ok",
			opt:  Options{Table: "games_raw", Kind: "sqlite", DataDir: "data"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := New(tt.opt)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("New: %v", err)
				}
				if got := p.State(); got != StateIdle {
					t.Errorf("state = %s, want idle", got)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestRunTwice(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCSV(t, dir, "games.csv",
		canonicalHeader+"Duke,2023-01-01,Home,UNC,W,70,60\n")

	opt, _ := sqliteOptions(t, dir)
	p, err := New(opt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("second Run succeeded, want already-ran error")
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		s    State
		want string
	}{
		{StateIdle, "idle"},
		{StateDiscoverSources, "discover_sources"},
		{StateResolvePerSource, "resolve_per_source"},
		{StateConcatenate, "concatenate"},
		{StateDeduplicate, "deduplicate"},
		{StateClean, "clean"},
		{StatePersist, "persist"},
		{StateVerify, "verify"},
		{StateDone, "done"},
		{StateFailed, "failed"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.s), got, tt.want)
		}
	}
}

