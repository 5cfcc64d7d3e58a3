package model

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// GridType selects the lattice used to generate candidate hole centres.
type GridType string

const (
	GridTriangle GridType = "triangle" // Hexagonal close packing, rows offset by half a step
	GridSquare   GridType = "square"   // Cartesian grid
)

func (g GridType) String() string {
	switch g {
	case GridTriangle:
		return "Triangle"
	case GridSquare:
		return "Square"
	default:
		return "Unknown"
	}
}

// ParseGridType accepts the canonical names plus a few common aliases.
func ParseGridType(s string) (GridType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "triangle", "triangular", "tri", "hex", "hexagonal":
		return GridTriangle, true
	case "square", "sq", "cartesian", "rect":
		return GridSquare, true
	default:
		return "", false
	}
}

// HoleType selects the shape cut at every accepted point.
type HoleType string

const (
	HoleCircle HoleType = "circle" // Size is the radius
	HoleSquare HoleType = "square" // Size is the side length
)

func (h HoleType) String() string {
	switch h {
	case HoleCircle:
		return "Circle"
	case HoleSquare:
		return "Square"
	default:
		return "Unknown"
	}
}

// ParseHoleType accepts the canonical names plus a few common aliases.
func ParseHoleType(s string) (HoleType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "circle", "circ", "round", "c":
		return HoleCircle, true
	case "square", "sq", "s":
		return HoleSquare, true
	default:
		return "", false
	}
}

// ZoneSettings configures how the exclusion zone and its acceleration grid
// are built. These are fixed for the lifetime of a hole zone.
type ZoneSettings struct {
	CircuitLayers   []int   `json:"circuit_layers"`   // Layers that get buffered by CircuitMargin
	CircuitMargin   float64 `json:"circuit_margin"`   // Minimum clearance from circuit shapes
	ExclusionLayers []int   `json:"exclusion_layers"` // Layers excluded as-is
	SubgridCount    int     `json:"subgrid_count"`    // Acceleration grid is SubgridCount x SubgridCount
}

// HoleSettings configures a single placement run.
type HoleSettings struct {
	HoleLayer     int      `json:"hole_layer"`      // Output layer for the holes
	HoleZoneLayer int      `json:"hole_zone_layer"` // Layer whose polygons bound the placement region
	GridSize      float64  `json:"grid_size"`       // Lattice spacing
	HoleSize      float64  `json:"hole_size"`       // Radius (circle) or side (square)
	GridType      GridType `json:"grid_type"`
	HoleType      HoleType `json:"hole_type"`
	Workers       int      `json:"workers,omitempty"` // >1 filters candidates in parallel
}

// DefaultSubgridCount is the acceleration grid resolution used when none is given.
const DefaultSubgridCount = 25

func DefaultZoneSettings() ZoneSettings {
	return ZoneSettings{
		CircuitLayers:   []int{},
		CircuitMargin:   12.0,
		ExclusionLayers: []int{},
		SubgridCount:    DefaultSubgridCount,
	}
}

func DefaultHoleSettings() HoleSettings {
	return HoleSettings{
		HoleLayer:     0,
		HoleZoneLayer: 0,
		GridSize:      5.0,
		HoleSize:      1.0,
		GridType:      GridTriangle,
		HoleType:      HoleCircle,
		Workers:       1,
	}
}

// HoleSpec describes the shape instantiated at each placement.
type HoleSpec struct {
	Kind  HoleType `json:"kind"`
	Size  float64  `json:"size"`
	Layer int      `json:"layer"`
}

// Describe returns a short human-readable description, e.g. "circle r=2".
func (h HoleSpec) Describe() string {
	if h.Kind == HoleSquare {
		return fmt.Sprintf("square a=%g", h.Size)
	}
	return fmt.Sprintf("circle r=%g", h.Size)
}

// HoleTemplate is a hole shape built once per run and referenced by every
// placement of that run. Outline is centred on the origin.
type HoleTemplate struct {
	ID      string      `json:"id"`
	Spec    HoleSpec    `json:"spec"`
	Outline orb.Polygon `json:"-"`
}

// CircleSegments is the number of vertices used for circular hole outlines.
const CircleSegments = 64

// NewHoleTemplate builds the outline for the given hole kind and size.
// The caller is expected to have validated size and kind.
func NewHoleTemplate(kind HoleType, size float64, layer int) *HoleTemplate {
	var ring orb.Ring
	switch kind {
	case HoleSquare:
		h := size / 2
		ring = orb.Ring{{-h, -h}, {h, -h}, {h, h}, {-h, h}, {-h, -h}}
	default:
		ring = make(orb.Ring, 0, CircleSegments+1)
		for i := 0; i < CircleSegments; i++ {
			angle := 2 * math.Pi * float64(i) / float64(CircleSegments)
			ring = append(ring, orb.Point{size * math.Cos(angle), size * math.Sin(angle)})
		}
		ring = append(ring, ring[0])
	}
	return &HoleTemplate{
		ID:      uuid.New().String()[:8],
		Spec:    HoleSpec{Kind: kind, Size: size, Layer: layer},
		Outline: orb.Polygon{ring},
	}
}

// At returns the template outline translated to origin.
func (t *HoleTemplate) At(origin orb.Point) orb.Polygon {
	out := make(orb.Polygon, len(t.Outline))
	for i, ring := range t.Outline {
		r := make(orb.Ring, len(ring))
		for j, p := range ring {
			r[j] = orb.Point{p[0] + origin[0], p[1] + origin[1]}
		}
		out[i] = r
	}
	return out
}

// Placement is one accepted hole centre.
type Placement struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	TemplateID string  `json:"template_id"`
}

// Point returns the placement centre as an orb point.
func (p Placement) Point() orb.Point {
	return orb.Point{p.X, p.Y}
}

// HoleResult summarises one placement run. An empty Placements slice is a
// valid outcome, not an error.
type HoleResult struct {
	RunID            string        `json:"run_id"`
	Settings         HoleSettings  `json:"settings"`
	Template         *HoleTemplate `json:"template"`
	Placements       []Placement   `json:"placements"`
	Candidates       int           `json:"candidates"`        // Lattice points generated
	RejectedOutside  int           `json:"rejected_outside"`  // Not strictly inside the hole zone
	RejectedExcluded int           `json:"rejected_excluded"` // Inside the exclusion zone
}

// NewRunID returns a short identifier for a placement run.
func NewRunID() string {
	return uuid.New().String()[:8]
}

// Accepted returns the number of placed holes.
func (r HoleResult) Accepted() int {
	return len(r.Placements)
}

// AcceptanceRate returns the accepted share of candidates as a percentage.
func (r HoleResult) AcceptanceRate() float64 {
	if r.Candidates == 0 {
		return 0
	}
	return float64(len(r.Placements)) / float64(r.Candidates) * 100.0
}

// HoleArea returns the area of a single hole of this run's template.
func (r HoleResult) HoleArea() float64 {
	if r.Template == nil {
		return 0
	}
	s := r.Template.Spec
	if s.Kind == HoleSquare {
		return s.Size * s.Size
	}
	return math.Pi * s.Size * s.Size
}

// TotalHoleArea returns the combined nominal area of all placed holes.
func (r HoleResult) TotalHoleArea() float64 {
	return r.HoleArea() * float64(len(r.Placements))
}

// ErrInvalidSettings indicates a settings value outside its allowed range.
var ErrInvalidSettings = errors.New("model: invalid settings")

// Validate checks the construction parameters of a hole zone.
func (s ZoneSettings) Validate() error {
	if s.CircuitMargin < 0 || math.IsNaN(s.CircuitMargin) || math.IsInf(s.CircuitMargin, 0) {
		return fmt.Errorf("%w: circuit margin must be a finite value >= 0, got %g", ErrInvalidSettings, s.CircuitMargin)
	}
	if s.SubgridCount < 1 {
		return fmt.Errorf("%w: subgrid count must be >= 1, got %d", ErrInvalidSettings, s.SubgridCount)
	}
	return nil
}

// Validate checks the parameters of a placement run.
func (s HoleSettings) Validate() error {
	if !(s.GridSize > 0) || math.IsInf(s.GridSize, 0) {
		return fmt.Errorf("%w: grid size must be > 0, got %g", ErrInvalidSettings, s.GridSize)
	}
	if !(s.HoleSize > 0) || math.IsInf(s.HoleSize, 0) {
		return fmt.Errorf("%w: hole size must be > 0, got %g", ErrInvalidSettings, s.HoleSize)
	}
	switch s.GridType {
	case GridTriangle, GridSquare:
	default:
		return fmt.Errorf("%w: unknown grid type %q", ErrInvalidSettings, string(s.GridType))
	}
	switch s.HoleType {
	case HoleCircle, HoleSquare:
	default:
		return fmt.Errorf("%w: unknown hole type %q", ErrInvalidSettings, string(s.HoleType))
	}
	if s.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidSettings, s.Workers)
	}
	return nil
}
