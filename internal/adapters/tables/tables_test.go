package tables

import (
	"context"
	"delivery-route-builder/internal/domain"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestStatusCSVMergesByTitle(t *testing.T) {
	dir := t.TempDir()
	store := NewStatusCSV(dir)
	ctx := context.Background()

	first := []domain.StatusRow{
		{Title: "02.14 Nos", Flags: domain.FlagsThrough(domain.StageWritable)},
		{Title: "02.14 Eric", Flags: domain.FlagsThrough(domain.StageDistributed)},
	}
	if err := store.SaveStatuses(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	second := []domain.StatusRow{
		{Title: "02.14 Nos", Flags: domain.FlagsThrough(domain.StageDistributed)},
		{Title: "02.14 Hank", Flags: domain.FlagsThrough(domain.StageOptimized)},
	}
	if err := store.SaveStatuses(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, StatusFileName))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	want := strings.Join([]string{
		"title,initialized,writable,stops_uploaded,optimized,distributed",
		"02.14 Nos,true,true,true,true,true",
		"02.14 Eric,true,true,true,true,true",
		"02.14 Hank,true,true,true,true,false",
		"",
	}, "\n")
	if string(raw) != want {
		t.Fatalf("file =\n%s\nwant\n%s", raw, want)
	}

	rows, err := store.ListStatuses(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	if rows[0].Title != "02.14 Eric" || rows[1].Title != "02.14 Hank" || rows[2].Title != "02.14 Nos" {
		t.Fatalf("rows not ordered by title: %+v", rows)
	}
	if rows[1].Flags != domain.FlagsThrough(domain.StageOptimized) {
		t.Fatalf("hank flags = %+v", rows[1].Flags)
	}
}

func TestStatusCSVMissingFileIsEmpty(t *testing.T) {
	store := NewStatusCSV(filepath.Join(t.TempDir(), "nested"))

	rows, err := store.ListStatuses(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("len(rows) = %d, want 0", len(rows))
	}
}

func TestStatusCSVRejectsForeignHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, StatusFileName)
	if err := os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := &StatusCSV{Path: path}
	if _, err := store.ListStatuses(context.Background()); err == nil {
		t.Fatalf("expected error for unexpected header")
	}
	if err := store.SaveStatuses(context.Background(), []domain.StatusRow{{Title: "x"}}); err == nil {
		t.Fatalf("expected save to refuse to overwrite a foreign file")
	}
}

func manifest() []domain.ManifestRow {
	return []domain.ManifestRow{
		{RouteTitle: "02.14 Eric", DriverName: "Eric Smith", StopNo: 1, Name: "A", Address: "1 Main St, Ballard", OrderCount: 1, BoxType: "BASIC", Neighborhood: "Ballard"},
		{RouteTitle: "02.14 Eric", DriverName: "Eric Smith", StopNo: 2, Name: "B, Jr.", Address: "2 Main St, Ballard", OrderCount: 2, BoxType: "GF", Neighborhood: "Ballard"},
		{RouteTitle: "02.14 Hank", DriverName: "Hank Hill", StopNo: 1, Name: "C", Address: "3 Pine St", OrderCount: 1, BoxType: "VEGAN", Neighborhood: "Fremont", Email: "c@example.com"},
	}
}

func TestWriteRouteCSVs(t *testing.T) {
	dir := t.TempDir()

	paths, err := WriteRouteCSVs(dir, manifest())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("len(paths) = %d, want 2", len(paths))
	}
	if filepath.Base(paths[0]) != "02.14 Eric.csv" {
		t.Fatalf("paths[0] = %q", paths[0])
	}

	f, err := os.Open(paths[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(recs))
	}
	if strings.Join(recs[0], "|") != "Stop #|Name|Address|Phone|Notes|Order Count|Box Type|Neighborhood|Email|Driver" {
		t.Fatalf("header = %v", recs[0])
	}
	if recs[2][0] != "2" || recs[2][1] != "B, Jr." || recs[2][5] != "2" || recs[2][9] != "Eric Smith" {
		t.Fatalf("row 2 = %v", recs[2])
	}
}

func TestWriteWorkbookOneSheetPerRoute(t *testing.T) {
	path := filepath.Join(t.TempDir(), WorkbookFileName)

	if err := WriteWorkbook(path, manifest()); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "02.14 Eric" || sheets[1] != "02.14 Hank" {
		t.Fatalf("sheets = %v", sheets)
	}

	rows, err := f.GetRows("02.14 Hank")
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0][0] != "Stop #" || rows[0][9] != "Driver" || rows[1][2] != "3 Pine St" || rows[1][8] != "c@example.com" || rows[1][9] != "Hank Hill" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestWriteWorkbookRejectsEmpty(t *testing.T) {
	if err := WriteWorkbook(filepath.Join(t.TempDir(), WorkbookFileName), nil); err == nil {
		t.Fatalf("expected error for empty manifest")
	}
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{}

	tests := []struct {
		title string
		want  string
	}{
		{"02.14 Jane #1", "02.14 Jane #1"},
		{"a/b:c?", "a.b-c"},
		{"02.14 Jane #1", "02.14 Jane #1 (2)"},
		{strings.Repeat("x", 40), strings.Repeat("x", 31)},
		{strings.Repeat("x", 40), strings.Repeat("x", 27) + " (2)"},
		{"", "Route"},
	}
	for _, tt := range tests {
		if got := SheetName(tt.title, used); got != tt.want {
			t.Fatalf("SheetName(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestWriteRouteCSVsKeepsCollidingTitlesApart(t *testing.T) {
	dir := t.TempDir()
	rows := []domain.ManifestRow{
		{RouteTitle: "02.14 a:b", StopNo: 1, Name: "first"},
		{RouteTitle: "02.14 a-b", StopNo: 1, Name: "second"},
		{RouteTitle: "02.14 A-B", StopNo: 1, Name: "third"},
	}

	paths, err := WriteRouteCSVs(dir, rows)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	want := []string{"02.14 a-b.csv", "02.14 a-b (2).csv", "02.14 A-B (3).csv"}
	if len(paths) != len(want) {
		t.Fatalf("len(paths) = %d, want %d", len(paths), len(want))
	}
	for i, p := range paths {
		if filepath.Base(p) != want[i] {
			t.Fatalf("paths[%d] = %q, want %q", i, filepath.Base(p), want[i])
		}
		raw, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		if !strings.Contains(string(raw), rows[i].Name) {
			t.Fatalf("%s does not hold %q:\n%s", want[i], rows[i].Name, raw)
		}
	}
}
