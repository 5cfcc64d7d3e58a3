// Package gcode turns placement runs into a G-code program and reads
// programs back for inspection.
package gcode

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/piwi3910/fluxholes/internal/model"
)

const (
	rapidMove     = "G0"
	feedMove      = "G1"
	commentPrefix = ";"
)

// rowEpsilon groups placements into lattice rows.
const rowEpsilon = 1e-9

// Section is one placement run in a program.
type Section struct {
	Name   string
	Result model.HoleResult
}

// Generator produces G-code that machines placed holes.
//
// Circle holes no wider than the tool are peck drilled. Wider circles are
// milled with full G2 arcs, one per pass, with the tool path inset by the
// tool radius. Square holes are milled along their inset perimeter; squares
// narrower than the tool are skipped with a warning comment.
type Generator struct {
	Settings model.MachineSettings
}

func New(settings model.MachineSettings) *Generator {
	return &Generator{Settings: settings}
}

// Generate produces a complete program for the given sections.
func (g *Generator) Generate(title string, sections []Section) (string, error) {
	if err := g.Settings.Validate(); err != nil {
		return "", err
	}
	var b strings.Builder

	g.writeHeader(&b, title, sections)
	for i, s := range sections {
		g.writeSection(&b, s, i+1)
	}
	g.writeFooter(&b)
	return b.String(), nil
}

func (g *Generator) writeHeader(b *strings.Builder, title string, sections []Section) {
	s := g.Settings
	holes := 0
	for _, sec := range sections {
		holes += sec.Result.Accepted()
	}

	b.WriteString(g.comment(fmt.Sprintf("fluxholes G-code - %s", title)))
	b.WriteString(g.comment(fmt.Sprintf("Runs: %d, Holes: %d", len(sections), holes)))
	b.WriteString(g.comment(fmt.Sprintf("Tool: %gmm, Feed: %.0f mm/min, Plunge: %.0f mm/min",
		s.ToolDiameter, s.FeedRate, s.PlungeRate)))
	b.WriteString(g.comment(fmt.Sprintf("Depth: %gmm in %d pass(es)", s.Depth, s.Passes())))
	b.WriteString("\n")

	b.WriteString("G90\nG21\nG17\n")
	if s.SpindleSpeed > 0 {
		fmt.Fprintf(b, "M3 S%d\n", s.SpindleSpeed)
	}
	fmt.Fprintf(b, "%s Z%s\n", rapidMove, g.format(s.SafeZ))
	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	b.WriteString("\n")
	b.WriteString(g.comment("=== Job complete ==="))
	fmt.Fprintf(b, "%s Z%s\n", rapidMove, g.format(g.Settings.SafeZ))
	if g.Settings.SpindleSpeed > 0 {
		b.WriteString("M5\n")
	}
	fmt.Fprintf(b, "%s X%s Y%s\n", rapidMove, g.format(0), g.format(0))
	b.WriteString("M30\n")
}

func (g *Generator) writeSection(b *strings.Builder, sec Section, index int) {
	r := sec.Result
	s := r.Settings
	spec := model.HoleSpec{Kind: s.HoleType, Size: s.HoleSize, Layer: s.HoleLayer}
	if r.Template != nil {
		spec = r.Template.Spec
	}

	b.WriteString(g.comment(fmt.Sprintf("--- Run %d: %s (%s, %d holes, layer %d) ---",
		index, sec.Name, spec.Describe(), r.Accepted(), spec.Layer)))

	for i, p := range Serpentine(r.Placements) {
		switch {
		case spec.Kind == model.HoleSquare:
			g.writeSquare(b, p, spec.Size, i+1)
		case 2*spec.Size <= g.Settings.ToolDiameter+rowEpsilon:
			g.writeDrill(b, p)
		default:
			g.writeCircle(b, p, spec.Size)
		}
	}
	b.WriteString("\n")
}

// writeDrill peck drills at p, retracting after every pass.
func (g *Generator) writeDrill(b *strings.Builder, p model.Placement) {
	s := g.Settings
	fmt.Fprintf(b, "%s X%s Y%s\n", rapidMove, g.format(p.X), g.format(p.Y))
	for pass := 1; pass <= s.Passes(); pass++ {
		fmt.Fprintf(b, "%s Z%s F%s\n", feedMove, g.format(-g.passDepth(pass)), g.format(s.PlungeRate))
		fmt.Fprintf(b, "%s Z%s\n", rapidMove, g.format(s.SafeZ))
	}
}

// writeCircle mills a circle of radius r centred on p.
func (g *Generator) writeCircle(b *strings.Builder, p model.Placement, r float64) {
	s := g.Settings
	pr := r - s.ToolDiameter/2
	startX := p.X + pr

	fmt.Fprintf(b, "%s X%s Y%s\n", rapidMove, g.format(startX), g.format(p.Y))
	for pass := 1; pass <= s.Passes(); pass++ {
		fmt.Fprintf(b, "%s Z%s F%s\n", feedMove, g.format(-g.passDepth(pass)), g.format(s.PlungeRate))
		fmt.Fprintf(b, "G2 X%s Y%s I%s J%s F%s\n",
			g.format(startX), g.format(p.Y), g.format(-pr), g.format(0), g.format(s.FeedRate))
	}
	fmt.Fprintf(b, "%s Z%s\n", rapidMove, g.format(s.SafeZ))
}

// writeSquare mills the perimeter of a square of side a centred on p.
func (g *Generator) writeSquare(b *strings.Builder, p model.Placement, a float64, holeNum int) {
	s := g.Settings
	half := a/2 - s.ToolDiameter/2
	if half < -rowEpsilon {
		b.WriteString(g.comment(fmt.Sprintf("WARNING: hole %d at (%s, %s) is narrower than the tool, skipped",
			holeNum, g.format(p.X), g.format(p.Y))))
		return
	}
	if half <= rowEpsilon {
		g.writeDrill(b, p)
		return
	}

	x0, y0 := p.X-half, p.Y-half
	x1, y1 := p.X+half, p.Y+half
	fmt.Fprintf(b, "%s X%s Y%s\n", rapidMove, g.format(x0), g.format(y0))
	for pass := 1; pass <= s.Passes(); pass++ {
		fmt.Fprintf(b, "%s Z%s F%s\n", feedMove, g.format(-g.passDepth(pass)), g.format(s.PlungeRate))
		fmt.Fprintf(b, "%s X%s Y%s F%s\n", feedMove, g.format(x1), g.format(y0), g.format(s.FeedRate))
		fmt.Fprintf(b, "%s X%s Y%s\n", feedMove, g.format(x1), g.format(y1))
		fmt.Fprintf(b, "%s X%s Y%s\n", feedMove, g.format(x0), g.format(y1))
		fmt.Fprintf(b, "%s X%s Y%s\n", feedMove, g.format(x0), g.format(y0))
	}
	fmt.Fprintf(b, "%s Z%s\n", rapidMove, g.format(s.SafeZ))
}

func (g *Generator) passDepth(pass int) float64 {
	return math.Min(float64(pass)*g.Settings.PassDepth, g.Settings.Depth)
}

// comment wraps text in the comment syntax.
func (g *Generator) comment(text string) string {
	return commentPrefix + " " + text + "\n"
}

// format formats a coordinate with the configured decimal places.
func (g *Generator) format(v float64) string {
	out := fmt.Sprintf("%.*f", g.Settings.DecimalPlaces, v)
	if strings.Trim(out, "-0.") == "" {
		return fmt.Sprintf("%.*f", g.Settings.DecimalPlaces, 0.0)
	}
	return out
}

// Serpentine reorders placements so that every other lattice row is
// visited right to left. Placements come from the engine bottom row first
// with x increasing, so this only reverses runs of equal Y.
func Serpentine(placements []model.Placement) []model.Placement {
	out := slices.Clone(placements)
	row := 0
	for start := 0; start < len(out); {
		end := start + 1
		for end < len(out) && math.Abs(out[end].Y-out[start].Y) <= rowEpsilon {
			end++
		}
		if row%2 == 1 {
			slices.Reverse(out[start:end])
		}
		row++
		start = end
	}
	return out
}
