package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/partsdesk/tosshin/models"
	"github.com/xuri/excelize/v2"
)

func testRow(keyword string) models.ResultRow {
	return models.ResultRow{
		Keyword: keyword,
		Maker:   "NISSAN MOTOR CO",
		Weight:  "12.5kg",
		Price:   "$45.00",
		URL:     "https://www.tosshin.com/parts-search?keyword=" + keyword,
	}
}

func TestWorkbook_HeaderAndRows(t *testing.T) {
	dir := t.TempDir()

	wb, err := NewWorkbook(dir)
	if err != nil {
		t.Fatalf("NewWorkbook: %v", err)
	}
	wb.RetryPrompt = func(string) bool { return false }

	if wb.RowCount() != 1 {
		t.Errorf("fresh workbook row count = %d, want 1 (header only)", wb.RowCount())
	}

	keywords := []string{"31100-4A00C", "21010-AX025", "54500-1HM0A"}
	for _, kw := range keywords {
		if err := wb.AppendRow(testRow(kw)); err != nil {
			t.Fatalf("AppendRow(%s): %v", kw, err)
		}
	}

	if got, want := wb.RowCount(), len(keywords)+1; got != want {
		t.Errorf("row count = %d, want %d (header + rows)", got, want)
	}

	if err := wb.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	f, err := excelize.OpenFile(filepath.Join(dir, WorkbookFileName))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Tosshin Data")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != len(keywords)+1 {
		t.Fatalf("sheet has %d rows, want %d", len(rows), len(keywords)+1)
	}

	wantHeader := []string{"Maker", "Keyword", "Weight", "Price", "URL"}
	for i, h := range wantHeader {
		if rows[0][i] != h {
			t.Errorf("header column %d = %q, want %q", i, rows[0][i], h)
		}
	}

	for i, kw := range keywords {
		if rows[i+1][1] != kw {
			t.Errorf("data row %d keyword = %q, want %q", i, rows[i+1][1], kw)
		}
	}
}

func TestWorkbook_MakerHyperlink(t *testing.T) {
	dir := t.TempDir()

	wb, err := NewWorkbook(dir)
	if err != nil {
		t.Fatalf("NewWorkbook: %v", err)
	}

	row := testRow("31100-4A00C")
	if err := wb.AppendRow(row); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	if err := wb.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	f, err := excelize.OpenFile(filepath.Join(dir, WorkbookFileName))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	linked, target, err := f.GetCellHyperLink("Tosshin Data", "A2")
	if err != nil {
		t.Fatalf("GetCellHyperLink: %v", err)
	}
	if !linked {
		t.Fatal("maker cell A2 has no hyperlink")
	}
	if target != row.URL {
		t.Errorf("hyperlink target = %q, want %q", target, row.URL)
	}
}

func TestWorkbook_PriceWrittenAsNumber(t *testing.T) {
	dir := t.TempDir()

	wb, err := NewWorkbook(dir)
	if err != nil {
		t.Fatalf("NewWorkbook: %v", err)
	}
	if err := wb.AppendRow(testRow("31100-4A00C")); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	if err := wb.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	f, err := excelize.OpenFile(filepath.Join(dir, WorkbookFileName))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	raw, err := f.GetCellValue("Tosshin Data", "D2", excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if raw != "45" {
		t.Errorf("raw price cell = %q, want numeric 45", raw)
	}
}

func TestWorkbook_SaveGivesUpWhenPromptDeclines(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "out")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	wb, err := NewWorkbook(sub)
	if err != nil {
		t.Fatalf("NewWorkbook: %v", err)
	}

	prompts := 0
	wb.RetryPrompt = func(string) bool {
		prompts++
		return false
	}

	// Make the save fail by removing the target directory.
	if err := os.RemoveAll(sub); err != nil {
		t.Fatal(err)
	}

	if err := wb.Save(); err == nil {
		t.Fatal("expected Save to fail with the output directory gone")
	}
	if prompts != 1 {
		t.Errorf("prompt consulted %d times, want 1", prompts)
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"$45.00", 45.0, true},
		{"$1,234.56", 1234.56, true},
		{"1234", 1234, true},
		{"¥2,500", 2500, true},
		{" $9.99 ", 9.99, true},
		{"ASK", 0, false},
		{"", 0, false},
		{"12-34", 0, false},
	}

	for _, tt := range tests {
		got, ok := parsePrice(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("parsePrice(%q) = (%v, %v), want (%v, %v)",
				tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
