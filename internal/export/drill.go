package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DrillHeader is the column layout shared by the XLSX and CSV drill tables.
var DrillHeader = []string{"Run", "#", "X", "Y", "Hole Type", "Hole Size", "Layer"}

// maxSheetName is the Excel limit on sheet name length.
const maxSheetName = 31

func drillRows(run Run) [][]interface{} {
	s := run.Result.Settings
	rows := make([][]interface{}, 0, len(run.Result.Placements))
	for i, p := range run.Result.Placements {
		rows = append(rows, []interface{}{run.Name, i + 1, p.X, p.Y, s.HoleType.String(), s.HoleSize, s.HoleLayer})
	}
	return rows
}

// ExportDrillXLSX writes one worksheet per run listing every hole centre.
func ExportDrillXLSX(path string, runs []Run) error {
	if len(runs) == 0 {
		return fmt.Errorf("no runs to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	used := make(map[string]bool)
	for i, run := range runs {
		name := sheetName(run.Name, i, used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", name, err)
		}

		header := make([]interface{}, len(DrillHeader))
		for j, h := range DrillHeader {
			header[j] = h
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		for j, row := range drillRows(run) {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return fmt.Errorf("failed to write row %d: %w", j+2, err)
			}
		}
		if err := f.SetColWidth(name, "A", "A", 20); err != nil {
			return err
		}
		if err := f.SetColWidth(name, "C", "D", 14); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write XLSX file: %w", err)
	}
	return nil
}

// sheetName derives a unique, Excel-safe sheet name from a run name.
func sheetName(name string, index int, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if clean == "" {
		clean = fmt.Sprintf("Run %d", index+1)
	}
	if len([]rune(clean)) > maxSheetName {
		clean = string([]rune(clean)[:maxSheetName])
	}

	candidate := clean
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		base := []rune(clean)
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		candidate = string(base) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

// ExportDrillCSV writes all runs into a single CSV drill table.
func ExportDrillCSV(path string, runs []Run) error {
	if len(runs) == 0 {
		return fmt.Errorf("no runs to export")
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(DrillHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, run := range runs {
		s := run.Result.Settings
		for i, p := range run.Result.Placements {
			record := []string{
				run.Name,
				strconv.Itoa(i + 1),
				strconv.FormatFloat(p.X, 'f', -1, 64),
				strconv.FormatFloat(p.Y, 'f', -1, 64),
				s.HoleType.String(),
				strconv.FormatFloat(s.HoleSize, 'f', -1, 64),
				strconv.Itoa(s.HoleLayer),
			}
			if err := w.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return nil
}
