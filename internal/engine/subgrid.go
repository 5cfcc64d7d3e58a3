package engine

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/piwi3910/fluxholes/internal/geometry"
)

// guardRatio is the share of the smaller cell dimension added around every
// cell window on top of the margin.
const guardRatio = 0.01

// Subgrid partitions an exclusion zone into n x n cells over a bounding box.
// Each cell keeps the part of the zone inside its window: the cell
// rectangle grown by the margin plus a small guard. Every point that maps
// to a cell lies strictly inside that window, so testing the cell patch
// gives the same answer as testing the whole zone.
//
// A Subgrid is immutable after construction and safe for concurrent use.
type Subgrid struct {
	bound orb.Bound
	n     int
	pad   float64
	cells []geometry.Region // indexed by sx*n + sy
}

// NewSubgrid clips zone into n x n cells over bound. margin is the largest
// distance by which exclusion material may extend past the geometry it was
// derived from.
func NewSubgrid(zone geometry.Region, bound orb.Bound, n int, margin float64) (*Subgrid, error) {
	if n < 1 {
		return nil, invalidf("subgrid count must be >= 1, got %d", n)
	}
	if margin < 0 {
		return nil, invalidf("subgrid margin must be >= 0, got %g", margin)
	}
	if err := checkBound(bound); err != nil {
		return nil, err
	}

	s := &Subgrid{
		bound: bound,
		n:     n,
		pad:   margin + Guard(bound, n, margin),
		cells: make([]geometry.Region, n*n),
	}
	for sx := 0; sx < n; sx++ {
		for sy := 0; sy < n; sy++ {
			s.cells[sx*n+sy] = zone.Clip(s.Window(sx, sy))
		}
	}
	return s, nil
}

// checkBound rejects bounds that cannot be partitioned.
func checkBound(b orb.Bound) error {
	w, h := b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]
	if !(w > 0) || !(h > 0) || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return invalidf("design bounds %v have zero width or height", b)
	}
	return nil
}

// Guard returns the extra padding added to each cell window beyond margin.
func Guard(bound orb.Bound, n int, margin float64) float64 {
	cw := (bound.Max[0] - bound.Min[0]) / float64(n)
	ch := (bound.Max[1] - bound.Min[1]) / float64(n)
	return guardRatio*math.Min(cw, ch) + 2*geometry.ArcTolerance(margin)
}

// CellOf maps p to the indices of its cell in an n x n partition of bound.
// Points on or beyond an edge resolve to the nearest edge cell.
func CellOf(bound orb.Bound, n int, p orb.Point) (int, int) {
	return cellIndex(bound.Min[0], bound.Max[0], n, p[0]), cellIndex(bound.Min[1], bound.Max[1], n, p[1])
}

func cellIndex(lo, hi float64, n int, v float64) int {
	size := hi - lo
	if !(size > 0) {
		return 0
	}
	f := math.Floor(float64(n) * (v - lo) / size)
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f > float64(n-1):
		return n - 1
	}
	return int(f)
}

// CellBound returns the unpadded rectangle of cell (sx, sy).
func CellBound(bound orb.Bound, n, sx, sy int) orb.Bound {
	cw := (bound.Max[0] - bound.Min[0]) / float64(n)
	ch := (bound.Max[1] - bound.Min[1]) / float64(n)
	return orb.Bound{
		Min: orb.Point{bound.Min[0] + float64(sx)*cw, bound.Min[1] + float64(sy)*ch},
		Max: orb.Point{bound.Min[0] + float64(sx+1)*cw, bound.Min[1] + float64(sy+1)*ch},
	}
}

// Window returns the clipping window of cell (sx, sy).
func (s *Subgrid) Window(sx, sy int) orb.Bound {
	return CellBound(s.bound, s.n, sx, sy).Pad(s.pad)
}

// Contains reports whether p lies strictly inside the exclusion zone.
func (s *Subgrid) Contains(p orb.Point) bool {
	sx, sy := CellOf(s.bound, s.n, p)
	return s.cells[sx*s.n+sy].Contains(p)
}

// Cell returns the clipped exclusion patch of cell (sx, sy).
func (s *Subgrid) Cell(sx, sy int) geometry.Region {
	return s.cells[sx*s.n+sy]
}

// Count returns the number of cells along each axis.
func (s *Subgrid) Count() int { return s.n }

// Bound returns the partitioned bounding box.
func (s *Subgrid) Bound() orb.Bound { return s.bound }
