package engine

import (
	"iter"
	"math"

	"github.com/paulmach/orb"

	"github.com/piwi3910/fluxholes/internal/model"
)

// countEpsilon absorbs rounding when an extent is an exact multiple of the
// grid step.
const countEpsilon = 1e-9

// Lattice is a finite set of candidate hole centres covering a bounding box.
//
// Square lattices place one point at the centre of every whole grid cell
// that fits in the box: point (i, j) is at (min_x+(i+0.5)*grid,
// min_y+(j+0.5)*grid), half a step in from the minimum corner, so no point
// lies on the box edge. Triangular lattices are centred on the box midpoint with
// rows grid*sqrt(3)/2 apart and every odd row shifted by half a step.
type Lattice struct {
	kind  model.GridType
	bound orb.Bound
	step  float64
	nx    int
	ny    int
}

// NewLattice validates the grid parameters and prepares the lattice. No
// points are generated until Points is ranged over.
func NewLattice(kind model.GridType, bound orb.Bound, gridSize float64) (*Lattice, error) {
	if !(gridSize > 0) || math.IsInf(gridSize, 0) {
		return nil, invalidf("grid size must be > 0, got %g", gridSize)
	}
	w, h := bound.Max[0]-bound.Min[0], bound.Max[1]-bound.Min[1]
	if w < 0 || h < 0 {
		return nil, invalidf("bounds %v are inverted", bound)
	}

	l := &Lattice{kind: kind, bound: bound, step: gridSize}
	switch kind {
	case model.GridSquare:
		l.nx = int(math.Floor(w/gridSize + countEpsilon))
		l.ny = int(math.Floor(h/gridSize + countEpsilon))
	case model.GridTriangle:
		l.nx = int(math.Floor(w/2/(2*gridSize) + countEpsilon))
		l.ny = int(math.Floor(h/2/(math.Sqrt(3)*gridSize) + countEpsilon))
	default:
		return nil, invalidf("unknown grid type %q", string(kind))
	}
	return l, nil
}

// Kind returns the tiling of the lattice.
func (l *Lattice) Kind() model.GridType { return l.kind }

// Step returns the horizontal spacing between neighbouring points.
func (l *Lattice) Step() float64 { return l.step }

// RowStep returns the vertical spacing between rows.
func (l *Lattice) RowStep() float64 {
	if l.kind == model.GridTriangle {
		return l.step * math.Sqrt(3) / 2
	}
	return l.step
}

// Len returns the number of points Points yields.
func (l *Lattice) Len() int {
	if l.kind == model.GridSquare {
		return l.nx * l.ny
	}
	even := (2*l.ny + 1) * (4*l.nx + 1)
	odd := 2 * l.ny * 4 * l.nx
	return even + odd
}

// Points returns the lattice points row by row, bottom row first and x
// increasing within a row. Each range over the sequence starts afresh.
func (l *Lattice) Points() iter.Seq[orb.Point] {
	if l.kind == model.GridSquare {
		return l.square
	}
	return l.triangle
}

func (l *Lattice) square(yield func(orb.Point) bool) {
	for j := 0; j < l.ny; j++ {
		y := l.bound.Min[1] + (float64(j)+0.5)*l.step
		for i := 0; i < l.nx; i++ {
			x := l.bound.Min[0] + (float64(i)+0.5)*l.step
			if !yield(orb.Point{x, y}) {
				return
			}
		}
	}
}

func (l *Lattice) triangle(yield func(orb.Point) bool) {
	c := l.bound.Center()
	dy := l.RowStep()
	for r := -2 * l.ny; r <= 2*l.ny; r++ {
		y := c[1] + float64(r)*dy
		last, offset := 2*l.nx, 0.0
		if r%2 != 0 {
			last, offset = 2*l.nx-1, l.step/2
		}
		for i := -2 * l.nx; i <= last; i++ {
			if !yield(orb.Point{c[0] + float64(i)*l.step + offset, y}) {
				return
			}
		}
	}
}
