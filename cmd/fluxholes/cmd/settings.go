package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/fluxholes/internal/export"
	"github.com/piwi3910/fluxholes/internal/importer"
	"github.com/piwi3910/fluxholes/internal/layout"
	"github.com/piwi3910/fluxholes/internal/model"
	"github.com/piwi3910/fluxholes/internal/project"
)

// holeFlags are the placement parameters accepted on the command line.
// Only flags the user actually set override the config and preset values.
type holeFlags struct {
	preset    string
	zoneLayer int
	holeLayer int
	grid      float64
	hole      float64
	gridType  string
	holeType  string
	workers   int
}

func (f *holeFlags) register(cmd *cobra.Command) {
	d := model.DefaultHoleSettings()
	fs := cmd.Flags()
	fs.StringVar(&f.preset, "preset", "", "start from a saved hole preset")
	fs.IntVar(&f.zoneLayer, "zone-layer", d.HoleZoneLayer, "layer whose polygons bound the placement region")
	fs.IntVar(&f.holeLayer, "hole-layer", d.HoleLayer, "output layer for the holes")
	fs.Float64Var(&f.grid, "grid", d.GridSize, "lattice spacing")
	fs.Float64Var(&f.hole, "hole", d.HoleSize, "hole radius (circle) or side (square)")
	fs.StringVar(&f.gridType, "grid-type", string(d.GridType), "lattice: triangle or square")
	fs.StringVar(&f.holeType, "hole-type", string(d.HoleType), "hole shape: circle or square")
	fs.IntVar(&f.workers, "workers", d.Workers, "parallel filter workers")
}

// settings resolves built-in defaults, then the config, then the preset,
// then explicitly set flags.
func (f *holeFlags) settings(cmd *cobra.Command, g *globals, cfg model.AppConfig) (model.HoleSettings, error) {
	var s model.HoleSettings
	cfg.ApplyToHoles(&s)

	if f.preset != "" {
		store, err := project.LoadPresets(g.presetPath())
		if err != nil {
			return s, fmt.Errorf("failed to load presets: %w", err)
		}
		p := store.FindByName(f.preset)
		if p == nil {
			return s, fmt.Errorf("preset %q not found", f.preset)
		}
		workers := s.Workers
		s = p.Settings
		if s.Workers == 0 {
			s.Workers = workers
		}
		g.logf("using preset %q", f.preset)
	}

	fs := cmd.Flags()
	if fs.Changed("zone-layer") {
		s.HoleZoneLayer = f.zoneLayer
	}
	if fs.Changed("hole-layer") {
		s.HoleLayer = f.holeLayer
	}
	if fs.Changed("grid") {
		s.GridSize = f.grid
	}
	if fs.Changed("hole") {
		s.HoleSize = f.hole
	}
	if fs.Changed("workers") {
		s.Workers = f.workers
	}
	if fs.Changed("grid-type") {
		gt, ok := model.ParseGridType(f.gridType)
		if !ok {
			return s, fmt.Errorf("unknown grid type %q", f.gridType)
		}
		s.GridType = gt
	}
	if fs.Changed("hole-type") {
		ht, ok := model.ParseHoleType(f.holeType)
		if !ok {
			return s, fmt.Errorf("unknown hole type %q", f.holeType)
		}
		s.HoleType = ht
	}
	return s, s.Validate()
}

// zoneFlags are the exclusion zone construction parameters.
type zoneFlags struct {
	circuitLayers   []int
	exclusionLayers []int
	margin          float64
	subgrid         int
}

func (f *zoneFlags) register(cmd *cobra.Command) {
	d := model.DefaultZoneSettings()
	fs := cmd.Flags()
	fs.IntSliceVar(&f.circuitLayers, "circuit-layers", nil, "layers buffered by the circuit margin")
	fs.IntSliceVar(&f.exclusionLayers, "exclusion-layers", nil, "layers excluded as-is")
	fs.Float64Var(&f.margin, "margin", d.CircuitMargin, "clearance around circuit layers")
	fs.IntVar(&f.subgrid, "subgrid", d.SubgridCount, "acceleration grid resolution per axis")
}

func (f *zoneFlags) settings(cmd *cobra.Command, cfg model.AppConfig) (model.ZoneSettings, error) {
	var s model.ZoneSettings
	cfg.ApplyToZone(&s)

	fs := cmd.Flags()
	if fs.Changed("circuit-layers") {
		s.CircuitLayers = f.circuitLayers
	}
	if fs.Changed("exclusion-layers") {
		s.ExclusionLayers = f.exclusionLayers
	}
	if fs.Changed("margin") {
		s.CircuitMargin = f.margin
	}
	if fs.Changed("subgrid") {
		s.SubgridCount = f.subgrid
	}
	return s, s.Validate()
}

// loadDesign imports a DXF or GeoJSON design, logging warnings.
func loadDesign(g *globals, path string) (*layout.Design, error) {
	result := importer.ImportDesign(path)
	for _, w := range result.Warnings {
		g.logf("%s: %s", path, w)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("failed to import %s: %s", path, strings.Join(result.Errors, "; "))
	}
	g.logf("imported %d polygons and %d holes from %s", result.Polygons, result.Instances, path)
	return result.Design, nil
}

// writeDesign picks the output format from the file extension.
func writeDesign(path string, d *layout.Design) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return export.ExportGeoJSON(path, d)
	case ".dxf":
		return export.ExportDXF(path, d)
	default:
		return fmt.Errorf("unsupported output format %q (use .dxf, .geojson or .json)", filepath.Ext(path))
	}
}

// outputFlags select the optional report, drill table and G-code outputs.
type outputFlags struct {
	report    string
	drill     string
	gcode     string
	tool      float64
	depth     float64
	passDepth float64
	feed      float64
	plunge    float64
}

func (f *outputFlags) register(cmd *cobra.Command) {
	m := model.DefaultMachineSettings()
	fs := cmd.Flags()
	fs.StringVar(&f.report, "report", "", "write a PDF placement report")
	fs.StringVar(&f.drill, "drill", "", "write a drill table (.xlsx or .csv)")
	fs.StringVar(&f.gcode, "gcode", "", "write a G-code program machining the holes")
	fs.Float64Var(&f.tool, "tool", m.ToolDiameter, "G-code tool diameter")
	fs.Float64Var(&f.depth, "depth", m.Depth, "G-code hole depth")
	fs.Float64Var(&f.passDepth, "pass-depth", m.PassDepth, "G-code depth per pass")
	fs.Float64Var(&f.feed, "feed", m.FeedRate, "G-code feed rate (mm/min)")
	fs.Float64Var(&f.plunge, "plunge", m.PlungeRate, "G-code plunge rate (mm/min)")
}

func (f *outputFlags) machine(cmd *cobra.Command, cfg model.AppConfig) model.MachineSettings {
	m := cfg.Machine
	fs := cmd.Flags()
	if fs.Changed("tool") {
		m.ToolDiameter = f.tool
	}
	if fs.Changed("depth") {
		m.Depth = f.depth
	}
	if fs.Changed("pass-depth") {
		m.PassDepth = f.passDepth
	}
	if fs.Changed("feed") {
		m.FeedRate = f.feed
	}
	if fs.Changed("plunge") {
		m.PlungeRate = f.plunge
	}
	return m
}

// write produces every requested output for runs.
func (f *outputFlags) write(cmd *cobra.Command, g *globals, cfg model.AppConfig, d *layout.Design, runs []export.Run) error {
	w := cmd.OutOrStdout()
	if f.report != "" {
		if err := export.ExportReport(f.report, d, runs); err != nil {
			return err
		}
		printf(w, "Report written to %s\n", f.report)
	}
	if f.drill != "" {
		var err error
		if strings.EqualFold(filepath.Ext(f.drill), ".csv") {
			err = export.ExportDrillCSV(f.drill, runs)
		} else {
			err = export.ExportDrillXLSX(f.drill, runs)
		}
		if err != nil {
			return err
		}
		printf(w, "Drill table written to %s\n", f.drill)
	}
	if f.gcode != "" {
		sum, err := export.ExportGCode(f.gcode, d.Name, runs, f.machine(cmd, cfg))
		if err != nil {
			return err
		}
		printf(w, "G-code written to %s (%d plunges, %.1f min estimated)\n", f.gcode, sum.Plunges, sum.Minutes)
		g.logf("G-code: %d moves, %.1f cut, %.1f rapid", sum.Moves, sum.CutDistance, sum.RapidDistance)
	}
	return nil
}

func printRun(w io.Writer, run export.Run) {
	r := run.Result
	s := r.Settings
	printf(w, "%s [%s]: %s grid %g, %s, layer %d -> %d\n", run.Name, r.RunID,
		s.GridType, s.GridSize, model.HoleSpec{Kind: s.HoleType, Size: s.HoleSize}.Describe(),
		s.HoleZoneLayer, s.HoleLayer)
	printf(w, "  Candidates: %d  Placed: %d (%.1f%%)  Outside zone: %d  Excluded: %d\n",
		r.Candidates, r.Accepted(), r.AcceptanceRate(), r.RejectedOutside, r.RejectedExcluded)
}

// rememberFile records path in the recent files list of the config.
func rememberFile(g *globals, cfg model.AppConfig, path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	cfg.AddRecentFile(path)
	if err := project.SaveAppConfig(g.configPath(), cfg); err != nil {
		g.logf("could not update recent files: %v", err)
	}
}
