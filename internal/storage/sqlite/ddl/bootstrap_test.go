package ddl

import (
	"context"
	"errors"
	"strings"
	"testing"

	gddl "gamedata/internal/ddl"
)

// fakeExecer is a test double for Execer used to verify EnsureTable behavior
// without hitting a real database.
type fakeExecer struct {
	execCalls int
	lastSQL   string
	err       error
}

func (f *fakeExecer) Exec(ctx context.Context, sql string) error {
	f.execCalls++
	f.lastSQL = sql
	return f.err
}

// TestEnsureTableExecutesSQL verifies that EnsureTable builds a CREATE TABLE
// statement and passes it to the Execer.
func TestEnsureTableExecutesSQL(t *testing.T) {
	t.Parallel()

	def := gddl.TableDef{
		FQN: "games_raw",
		Columns: []gddl.ColumnDef{
			{Name: "team_name", SQLType: "TEXT", Nullable: true},
		},
	}

	var ex fakeExecer
	ctx := context.Background()

	if err := EnsureTable(ctx, &ex, def); err != nil {
		t.Fatalf("EnsureTable() error = %v", err)
	}

	if ex.execCalls != 1 {
		t.Fatalf("Exec called %d times, want 1", ex.execCalls)
	}
	if ex.lastSQL == "" {
		t.Fatalf("Exec was called with empty SQL")
	}
	if !strings.HasPrefix(ex.lastSQL, "CREATE TABLE IF NOT EXISTS") {
		t.Fatalf("Exec SQL does not start with CREATE TABLE IF NOT EXISTS:\n%s", ex.lastSQL)
	}
}

// TestEnsureTablePropagatesBuildError verifies that EnsureTable propagates
// BuildCreateTableSQL errors and does not call Exec.
func TestEnsureTablePropagatesBuildError(t *testing.T) {
	t.Parallel()

	def := gddl.TableDef{
		FQN:     "", // triggers BuildCreateTableSQL error
		Columns: []gddl.ColumnDef{{Name: "team_name", SQLType: "TEXT"}},
	}

	var ex fakeExecer
	ctx := context.Background()

	err := EnsureTable(ctx, &ex, def)
	if err == nil {
		t.Fatalf("EnsureTable() error = nil, want non-nil")
	}
	if ex.execCalls != 0 {
		t.Fatalf("Exec called %d times, want 0 when build fails", ex.execCalls)
	}
}

// TestEnsureTablePropagatesExecError verifies that Exec failures surface to
// the caller.
func TestEnsureTablePropagatesExecError(t *testing.T) {
	t.Parallel()

	def := gddl.TableDef{
		FQN: "games_raw",
		Columns: []gddl.ColumnDef{
			{Name: "team_name", SQLType: "TEXT", Nullable: true},
		},
	}

	boom := errors.New("disk full")
	ex := fakeExecer{err: boom}

	err := EnsureTable(context.Background(), &ex, def)
	if !errors.Is(err, boom) {
		t.Fatalf("EnsureTable() error = %v, want %v", err, boom)
	}
}
