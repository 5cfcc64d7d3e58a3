// Package importer reads layered designs (DXF, GeoJSON) into a
// layout.Design and hole-job lists (CSV, Excel) into placement settings.
// Malformed entities and rows are reported as errors or warnings and
// skipped; an import only fails outright when nothing usable was found.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/fluxholes/internal/layout"
	"github.com/piwi3910/fluxholes/internal/model"
)

// ImportResult holds the outcome of a design import.
type ImportResult struct {
	Design    *layout.Design
	Polygons  int // Polygons added to Design
	Instances int // Hole instances added to Design
	Errors    []string
	Warnings  []string
}

// Job is one placement run read from a job list.
type Job struct {
	Name     string
	Settings model.HoleSettings
}

// JobResult holds the outcome of a job-list import.
type JobResult struct {
	Jobs     []Job
	Errors   []string
	Warnings []string
}

// ColumnMapping maps job fields to column indices; -1 means absent.
type ColumnMapping struct {
	Name      int
	HoleLayer int
	ZoneLayer int
	GridSize  int
	HoleSize  int
	GridType  int
	HoleType  int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"name":       {"name", "job", "label", "description", "desc"},
	"hole_layer": {"hole layer", "hole_layer", "output layer", "out layer", "layer"},
	"zone_layer": {"zone layer", "zone_layer", "hole zone", "hole zone layer", "region layer", "zone"},
	"grid_size":  {"grid size", "grid_size", "grid", "pitch", "spacing", "step"},
	"hole_size":  {"hole size", "hole_size", "size", "radius", "side"},
	"grid_type":  {"grid type", "grid_type", "tiling", "lattice", "pattern"},
	"hole_type":  {"hole type", "hole_type", "shape", "kind"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}
		if weighted := score*10 + firstCols; weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectJobColumns examines a header row and returns a ColumnMapping.
// Matching is case-insensitive against the known aliases. When no header
// cell is recognised it returns the positional mapping (name, hole layer,
// zone layer, grid size, hole size, grid type, hole type) and false.
func DetectJobColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{-1, -1, -1, -1, -1, -1, -1}
	fields := map[string]*int{
		"name":       &mapping.Name,
		"hole_layer": &mapping.HoleLayer,
		"zone_layer": &mapping.ZoneLayer,
		"grid_size":  &mapping.GridSize,
		"hole_size":  &mapping.HoleSize,
		"grid_type":  &mapping.GridType,
		"hole_type":  &mapping.HoleType,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias && *fields[role] == -1 {
					*fields[role] = i
					isHeader = true
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{0, 1, 2, 3, 4, 5, 6}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseJobRow builds a Job from row, starting from base for absent cells.
// Returns the job and an error message, empty on success.
func parseJobRow(row []string, mapping ColumnMapping, base model.HoleSettings, rowLabel string, jobCount int) (Job, string) {
	job := Job{Name: getCell(row, mapping.Name), Settings: base}
	if job.Name == "" {
		job.Name = fmt.Sprintf("Job %d", jobCount+1)
	}
	s := &job.Settings

	for _, f := range []struct {
		idx  int
		name string
		dst  *int
	}{
		{mapping.HoleLayer, "hole layer", &s.HoleLayer},
		{mapping.ZoneLayer, "zone layer", &s.HoleZoneLayer},
	} {
		if v := getCell(row, f.idx); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return Job{}, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, f.name, v)
			}
			*f.dst = n
		}
	}

	for _, f := range []struct {
		idx  int
		name string
		dst  *float64
	}{
		{mapping.GridSize, "grid size", &s.GridSize},
		{mapping.HoleSize, "hole size", &s.HoleSize},
	} {
		v := getCell(row, f.idx)
		if v == "" {
			return Job{}, fmt.Sprintf("%s: Missing %s value", rowLabel, f.name)
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Job{}, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, f.name, v)
		}
		*f.dst = n
	}

	if v := getCell(row, mapping.GridType); v != "" {
		g, ok := model.ParseGridType(v)
		if !ok {
			return Job{}, fmt.Sprintf("%s: Unknown grid type '%s'", rowLabel, v)
		}
		s.GridType = g
	}
	if v := getCell(row, mapping.HoleType); v != "" {
		h, ok := model.ParseHoleType(v)
		if !ok {
			return Job{}, fmt.Sprintf("%s: Unknown hole type '%s'", rowLabel, v)
		}
		s.HoleType = h
	}

	if err := s.Validate(); err != nil {
		return Job{}, fmt.Sprintf("%s: %v", rowLabel, err)
	}
	return job, ""
}

// ImportJobsCSV imports a hole-job list from a CSV file. The delimiter is
// detected automatically; cells left empty take their value from base.
func ImportJobsCSV(path string, base model.HoleSettings) JobResult {
	result := JobResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}
	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := readCSV(bytes.NewReader(data), delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	return importJobRows(records, "Line", base, result.Warnings)
}

// ImportJobsCSVFromReader imports a hole-job list with a known delimiter.
func ImportJobsCSVFromReader(reader io.Reader, delimiter rune, base model.HoleSettings) JobResult {
	records, err := readCSV(reader, delimiter)
	if err != nil {
		return JobResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	return importJobRows(records, "Line", base, nil)
}

func readCSV(r io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// ImportJobsExcel imports a hole-job list from the first sheet of an Excel file.
func ImportJobsExcel(path string, base model.HoleSettings) JobResult {
	result := JobResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}
	return importJobRows(rows, "Row", base, nil)
}

// ImportJobs dispatches on the file extension: .xlsx/.xlsm/.xls go to
// ImportJobsExcel, everything else to ImportJobsCSV.
func ImportJobs(path string, base model.HoleSettings) JobResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		return ImportJobsExcel(path, base)
	default:
		return ImportJobsCSV(path, base)
	}
}

func importJobRows(rows [][]string, rowPrefix string, base model.HoleSettings, initialWarnings []string) JobResult {
	result := JobResult{Warnings: initialWarnings}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	mapping, hasHeader := DetectJobColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		if mapping.GridSize == -1 {
			missing = append(missing, "Grid Size")
		}
		if mapping.HoleSize == -1 {
			missing = append(missing, "Hole Size")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if v := getCell(rows[0], mapping.GridSize); v != "" {
		// Unrecognised header: the grid size column is not numeric
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		job, errMsg := parseJobRow(row, mapping, base, rowLabel, len(result.Jobs))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Jobs = append(result.Jobs, job)
	}

	if len(result.Jobs) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
	}
	return result
}
