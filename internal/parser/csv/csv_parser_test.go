package csv_test

import (
	"reflect"
	"strings"
	"testing"

	pcsv "gamedata/internal/parser/csv"
	"gamedata/pkg/records"
)

func TestParseKeepsHeaderSpelling(t *testing.T) {
	in := "Team, Date ,Site,Opponent,Result,Score,OppScore\n" +
		"Duke,2023-01-01,Home,UNC,W,70,60\n"

	tbl, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	wantHeader := []string{"Team", "Date", "Site", "Opponent", "Result", "Score", "OppScore"}
	if !reflect.DeepEqual(tbl.Header, wantHeader) {
		t.Fatalf("header = %#v, want %#v", tbl.Header, wantHeader)
	}
	if len(tbl.Rows) != 1 || tbl.Skipped != 0 {
		t.Fatalf("rows=%d skipped=%d, want 1/0", len(tbl.Rows), tbl.Skipped)
	}
	want := records.Record{
		"Team": "Duke", "Date": "2023-01-01", "Site": "Home",
		"Opponent": "UNC", "Result": "W", "Score": "70", "OppScore": "60",
	}
	if !reflect.DeepEqual(tbl.Rows[0], want) {
		t.Fatalf("row mismatch:\n got: %#v\nwant: %#v", tbl.Rows[0], want)
	}
}

func TestParseStripsBOM(t *testing.T) {
	in := "\uFEFFteam_name,date\nDuke,2023-01-01\n"
	tbl, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tbl.Header[0] != "team_name" {
		t.Fatalf("BOM not stripped from header: %q", tbl.Header[0])
	}
	if tbl.Rows[0]["team_name"] != "Duke" {
		t.Fatalf("row not keyed by stripped header: %#v", tbl.Rows[0])
	}
}

/*
TestParseSkipsRaggedRows verifies soft-fail semantics: rows whose width
differs from the header are skipped and counted, never fatal, and the
surviving rows parse normally.
*/
func TestParseSkipsRaggedRows(t *testing.T) {
	in := strings.Join([]string{
		"team_name,date,site",
		"Duke,2023-01-01,Home",
		"short,row",
		"way,too,long,row",
		"UNC,2023-01-02,Away",
	}, "\n") + "\n"

	tbl, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("rows=%d, want 2: %#v", len(tbl.Rows), tbl.Rows)
	}
	if tbl.Skipped != 2 {
		t.Fatalf("skipped=%d, want 2", tbl.Skipped)
	}
	if tbl.Rows[1]["team_name"] != "UNC" {
		t.Fatalf("row after skips mismatch: %#v", tbl.Rows[1])
	}
}

func TestParseEmptyCellsBecomeNil(t *testing.T) {
	in := "team_name,date,site\nDuke,,Home\n"
	tbl, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v := tbl.Rows[0]["date"]; v != nil {
		t.Fatalf("empty cell = %#v, want nil", v)
	}
}

func TestParseTrimSpaceOption(t *testing.T) {
	in := "team_name,date\n Duke ,2023-01-01\n"

	plain, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if plain.Rows[0]["team_name"] != " Duke " {
		t.Fatalf("cells must stay raw without TrimSpace: %#v", plain.Rows[0]["team_name"])
	}

	trimmed, err := pcsv.NewParser(pcsv.Options{TrimSpace: true}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if trimmed.Rows[0]["team_name"] != "Duke" {
		t.Fatalf("TrimSpace cell = %#v, want %q", trimmed.Rows[0]["team_name"], "Duke")
	}
}

func TestParseDelimiterAndMaxRows(t *testing.T) {
	in := "team_name;date\nDuke;2023-01-01\nUNC;2023-01-02\nWake;2023-01-03\n"
	tbl, err := pcsv.NewParser(pcsv.Options{Comma: ';', MaxRows: 2}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("MaxRows ignored: got %d rows", len(tbl.Rows))
	}
	if tbl.Rows[0]["date"] != "2023-01-01" {
		t.Fatalf("semicolon split failed: %#v", tbl.Rows[0])
	}
}

func TestParseDuplicateHeaderFirstWins(t *testing.T) {
	in := "team,team,date\nDuke,Blue Devils,2023-01-01\n"
	tbl, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tbl.Rows[0]["team"] != "Duke" {
		t.Fatalf("duplicate header kept %#v, want first cell", tbl.Rows[0]["team"])
	}
}

func TestParseEmptyInputFails(t *testing.T) {
	if _, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader("")); err == nil {
		t.Fatalf("expected error for input with no header")
	}
}

func TestParseUnnamedColumnSynthesized(t *testing.T) {
	in := "team_name,,date\nDuke,x,2023-01-01\n"
	tbl, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tbl.Rows[0]["col_1"] != "x" {
		t.Fatalf("unnamed column not synthesized: %#v", tbl.Rows[0])
	}
}

// BenchmarkParse measures the full-file parse path on a mid-size source.
// Run with `go test -bench=BenchmarkParse -benchmem`.
func BenchmarkParse(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("team_name,date,site,opp_name,w_l,pts,opp_pts\n")
	for i := 0; i < 10_000; i++ {
		sb.WriteString("Duke,2023-01-01,Home,UNC,W,70,60\n")
	}
	in := sb.String()
	p := pcsv.NewParser(pcsv.Options{})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tbl, err := p.Parse(strings.NewReader(in))
		if err != nil {
			b.Fatalf("parse: %v", err)
		}
		if len(tbl.Rows) != 10_000 {
			b.Fatalf("rows=%d", len(tbl.Rows))
		}
	}
}
