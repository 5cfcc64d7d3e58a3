package export

import (
	"fmt"
	"os"

	"github.com/piwi3910/fluxholes/internal/gcode"
	"github.com/piwi3910/fluxholes/internal/model"
)

// ExportGCode writes a single program machining the holes of every run and
// returns its move summary.
func ExportGCode(path, title string, runs []Run, machine model.MachineSettings) (gcode.Summary, error) {
	if len(runs) == 0 {
		return gcode.Summary{}, fmt.Errorf("no runs to export")
	}
	sections := make([]gcode.Section, len(runs))
	for i, r := range runs {
		sections[i] = gcode.Section{Name: r.Name, Result: r.Result}
	}

	code, err := gcode.New(machine).Generate(title, sections)
	if err != nil {
		return gcode.Summary{}, err
	}
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		return gcode.Summary{}, fmt.Errorf("failed to write G-code file: %w", err)
	}
	return gcode.Summarize(gcode.Parse(code), machine), nil
}
