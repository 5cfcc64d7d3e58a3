package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/fluxholes/internal/model"
)

func baseSettings() model.HoleSettings {
	s := model.DefaultHoleSettings()
	s.HoleLayer = 100
	s.HoleZoneLayer = 1
	return s
}

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "Name,Grid,Size\nA,5,1\nB,4,0.5\n", ','},
		{"semicolon", "Name;Grid;Size\nA;5;1\nB;4;0,5\n", ';'},
		{"tab", "Name\tGrid\tSize\nA\t5\t1\nB\t4\t0.5\n", '\t'},
		{"pipe", "Name|Grid|Size\nA|5|1\nB|4|0.5\n", '|'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCSVDelimiter([]byte(tt.data)); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// ─── DetectJobColumns Tests ────────────────────────────────

func TestDetectJobColumns_StandardHeaders(t *testing.T) {
	row := []string{"Name", "Hole Layer", "Zone Layer", "Grid Size", "Hole Size", "Grid Type", "Hole Type"}
	mapping, isHeader := DetectJobColumns(row)

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{0, 1, 2, 3, 4, 5, 6}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectJobColumns_AliasesAndOrder(t *testing.T) {
	row := []string{"  SHAPE ", "pitch", "Radius", "tiling", "job"}
	mapping, isHeader := DetectJobColumns(row)

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if mapping.HoleType != 0 || mapping.GridSize != 1 || mapping.HoleSize != 2 || mapping.GridType != 3 || mapping.Name != 4 {
		t.Errorf("unexpected mapping %+v", mapping)
	}
	if mapping.HoleLayer != -1 || mapping.ZoneLayer != -1 {
		t.Errorf("absent columns should be -1, got %+v", mapping)
	}
}

func TestDetectJobColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectJobColumns([]string{"fine", "100", "1", "2.5", "0.5"})
	if isHeader {
		t.Error("expected no header")
	}
	if mapping.GridSize != 3 || mapping.HoleSize != 4 {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── CSV Job Import Tests ──────────────────────────────────

func TestImportJobsCSVFromReader_WithHeaders(t *testing.T) {
	data := "Name,Zone Layer,Grid Size,Hole Size,Grid Type,Hole Type\n" +
		"coarse,2,5,1,triangle,circle\n" +
		"fine,3,2.5,0.4,square,square\n"
	result := ImportJobsCSVFromReader(strings.NewReader(data), ',', baseSettings())

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(result.Jobs))
	}

	j := result.Jobs[1]
	if j.Name != "fine" {
		t.Errorf("expected name 'fine', got %q", j.Name)
	}
	if j.Settings.HoleZoneLayer != 3 || j.Settings.GridSize != 2.5 || j.Settings.HoleSize != 0.4 {
		t.Errorf("unexpected settings %+v", j.Settings)
	}
	if j.Settings.GridType != model.GridSquare || j.Settings.HoleType != model.HoleSquare {
		t.Errorf("unexpected kinds %s/%s", j.Settings.GridType, j.Settings.HoleType)
	}
	if j.Settings.HoleLayer != 100 {
		t.Errorf("absent hole layer should come from base, got %d", j.Settings.HoleLayer)
	}
}

func TestImportJobsCSVFromReader_Positional(t *testing.T) {
	data := "a,7,1,5,1\nb,8,1,4,0.5,hex,round\n"
	result := ImportJobsCSVFromReader(strings.NewReader(data), ',', baseSettings())

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(result.Jobs))
	}
	if result.Jobs[0].Settings.HoleLayer != 7 {
		t.Errorf("expected hole layer 7, got %d", result.Jobs[0].Settings.HoleLayer)
	}
	if result.Jobs[0].Settings.GridType != model.GridTriangle {
		t.Errorf("absent grid type should come from base, got %s", result.Jobs[0].Settings.GridType)
	}
	if result.Jobs[1].Settings.HoleType != model.HoleCircle {
		t.Errorf("expected circle, got %s", result.Jobs[1].Settings.HoleType)
	}
}

func TestImportJobsCSVFromReader_UnrecognisedHeaderSkipped(t *testing.T) {
	data := "what,out,in,pitch-ish,d\nx,1,2,5,1\n"
	result := ImportJobsCSVFromReader(strings.NewReader(data), ',', baseSettings())
	if len(result.Jobs) != 1 {
		t.Fatalf("expected 1 job, got %d (errors %v)", len(result.Jobs), result.Errors)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "header") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a header warning, got %v", result.Warnings)
	}
}

func TestImportJobsCSVFromReader_RowErrors(t *testing.T) {
	data := "Name,Grid Size,Hole Size,Grid Type,Hole Type\n" +
		"ok,5,1,,\n" +
		"bad-grid,abc,1,,\n" +
		"zero,0,1,,\n" +
		"neg-hole,5,-1,,\n" +
		"weird,5,1,pentagon,\n" +
		"star,5,1,,star\n" +
		"missing,,1,,\n" +
		",,,,\n"
	result := ImportJobsCSVFromReader(strings.NewReader(data), ',', baseSettings())

	if len(result.Jobs) != 1 {
		t.Errorf("expected 1 valid job, got %d", len(result.Jobs))
	}
	if len(result.Errors) != 6 {
		t.Errorf("expected 6 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	if !strings.Contains(result.Errors[0], "Line 3") {
		t.Errorf("expected error to name the line, got %q", result.Errors[0])
	}
}

func TestImportJobsCSVFromReader_MissingRequiredColumn(t *testing.T) {
	data := "Name,Grid Size\nx,5\n"
	result := ImportJobsCSVFromReader(strings.NewReader(data), ',', baseSettings())
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Hole Size") {
		t.Errorf("expected missing Hole Size error, got %v", result.Errors)
	}
	if len(result.Jobs) != 0 {
		t.Errorf("expected no jobs, got %d", len(result.Jobs))
	}
}

func TestImportJobsCSVFromReader_DefaultName(t *testing.T) {
	data := "Grid,Size\n5,1\n4,1\n"
	result := ImportJobsCSVFromReader(strings.NewReader(data), ',', baseSettings())
	if len(result.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d (%v)", len(result.Jobs), result.Errors)
	}
	if result.Jobs[1].Name != "Job 2" {
		t.Errorf("expected 'Job 2', got %q", result.Jobs[1].Name)
	}
}

func TestImportJobsCSVFromReader_OnlyHeaders(t *testing.T) {
	result := ImportJobsCSVFromReader(strings.NewReader("Grid Size,Hole Size\n"), ',', baseSettings())
	if len(result.Errors) == 0 {
		t.Error("expected an error for a header-only file")
	}
}

func TestImportJobsCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.csv")
	content := "Name;Grid Size;Hole Size\nA;5;1\nB;2;0.5\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportJobs(path, baseSettings())
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Jobs) != 2 {
		t.Errorf("expected 2 jobs, got %d", len(result.Jobs))
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "semicolon") {
		t.Errorf("expected semicolon warning, got %v", result.Warnings)
	}
}

func TestImportJobsCSV_FileNotFound(t *testing.T) {
	result := ImportJobsCSV("/nonexistent/jobs.csv", baseSettings())
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

func TestImportJobsCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	result := ImportJobsCSV(path, baseSettings())
	if len(result.Errors) == 0 || result.Errors[0] != "File is empty" {
		t.Errorf("expected 'File is empty', got %v", result.Errors)
	}
}

// ─── Excel Job Import Tests ────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportJobsExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Job", "Hole Layer", "Zone Layer", "Grid Size", "Hole Size", "Grid Type", "Hole Type"},
		{"board", 50, 1, 5, 1, "Triangle", "Circle"},
		{"frame", 51, 2, 3.5, 0.75, "Square", "Square"},
	})

	result := ImportJobs(path, baseSettings())
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(result.Jobs))
	}
	j := result.Jobs[1]
	if j.Name != "frame" || j.Settings.HoleLayer != 51 || j.Settings.GridSize != 3.5 || j.Settings.HoleSize != 0.75 {
		t.Errorf("unexpected job %+v", j)
	}
}

func TestImportJobsExcel_FileNotFound(t *testing.T) {
	result := ImportJobsExcel("/nonexistent/jobs.xlsx", baseSettings())
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}
