package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ErrInvalidPolygon indicates a polygon that cannot take part in region
// operations.
var ErrInvalidPolygon = errors.New("geometry: invalid polygon")

// CloseRing returns r with its first point repeated at the end if it is not
// already closed. r itself is never modified.
func CloseRing(r orb.Ring) orb.Ring {
	if len(r) == 0 || r.Closed() {
		return r
	}
	out := make(orb.Ring, len(r), len(r)+1)
	copy(out, r)
	return append(out, r[0])
}

// CleanRing returns a closed copy of r without consecutive duplicate
// vertices. Repeated closing points collapse into one.
func CleanRing(r orb.Ring) orb.Ring {
	out := make(orb.Ring, 0, len(r)+1)
	for _, p := range r {
		if len(out) == 0 || p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	for len(out) > 1 && out[len(out)-1] == out[0] {
		out = out[:len(out)-1]
	}
	if len(out) > 0 {
		out = append(out, out[0])
	}
	return out
}

// ValidatePolygon checks every ring of poly after CleanRing. Each ring needs
// at least three distinct vertices, finite coordinates, a non-zero area and
// no self-intersections. Holes must lie inside the outer ring, and no two
// rings may cross or nest.
func ValidatePolygon(poly orb.Polygon) error {
	if len(poly) == 0 {
		return fmt.Errorf("%w: no rings", ErrInvalidPolygon)
	}
	rings := make([]orb.Ring, len(poly))
	for i, ring := range poly {
		rings[i] = CleanRing(ring)
		if err := validateRing(rings[i]); err != nil {
			return fmt.Errorf("%w: ring %d: %v", ErrInvalidPolygon, i, err)
		}
	}
	for i := 1; i < len(rings); i++ {
		if !planar.RingContains(rings[0], rings[i][0]) {
			return fmt.Errorf("%w: hole %d lies outside the outer ring", ErrInvalidPolygon, i)
		}
		for j := 0; j < i; j++ {
			if ringsCross(rings[i], rings[j]) {
				return fmt.Errorf("%w: ring %d crosses ring %d", ErrInvalidPolygon, i, j)
			}
			if j > 0 && (planar.RingContains(rings[j], rings[i][0]) || planar.RingContains(rings[i], rings[j][0])) {
				return fmt.Errorf("%w: hole %d overlaps hole %d", ErrInvalidPolygon, i, j)
			}
		}
	}
	return nil
}

// ringsCross reports whether an edge of a properly crosses an edge of b.
// Rings touching at a vertex do not cross.
func ringsCross(a, b orb.Ring) bool {
	for i := 0; i+1 < len(a); i++ {
		for j := 0; j+1 < len(b); j++ {
			if segmentsCross(a[i], a[i+1], b[j], b[j+1]) {
				return true
			}
		}
	}
	return false
}

func validateRing(r orb.Ring) error {
	for _, p := range r {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) || math.IsInf(p[0], 0) || math.IsInf(p[1], 0) {
			return errors.New("non-finite coordinate")
		}
	}
	distinct := make(map[orb.Point]struct{}, len(r))
	for _, p := range r {
		distinct[p] = struct{}{}
	}
	if len(distinct) < 3 {
		return fmt.Errorf("%d distinct vertices, need at least 3", len(distinct))
	}
	if planar.Area(r) == 0 {
		return errors.New("zero area")
	}
	if i, j, ok := selfIntersection(r); ok {
		return fmt.Errorf("edges %d and %d intersect", i, j)
	}
	return nil
}

// selfIntersection finds two non-adjacent edges of a closed ring that touch.
func selfIntersection(r orb.Ring) (int, int, bool) {
	n := len(r) - 1 // number of edges
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // share the closing vertex
			}
			if segmentsTouch(r[i], r[i+1], r[j], r[j+1]) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// segmentsCross reports whether ab and cd intersect at a single point
// interior to both.
func segmentsCross(a, b, c, d orb.Point) bool {
	d1 := cross(c, d, a)
	d2 := cross(c, d, b)
	d3 := cross(a, b, c)
	d4 := cross(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func segmentsTouch(a, b, c, d orb.Point) bool {
	if segmentsCross(a, b, c, d) {
		return true
	}
	d1 := cross(c, d, a)
	d2 := cross(c, d, b)
	d3 := cross(a, b, c)
	d4 := cross(a, b, d)
	return (d1 == 0 && onSegment(c, d, a)) ||
		(d2 == 0 && onSegment(c, d, b)) ||
		(d3 == 0 && onSegment(a, b, c)) ||
		(d4 == 0 && onSegment(a, b, d))
}

func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

func onSegment(a, b, p orb.Point) bool {
	return math.Min(a[0], b[0]) <= p[0] && p[0] <= math.Max(a[0], b[0]) &&
		math.Min(a[1], b[1]) <= p[1] && p[1] <= math.Max(a[1], b[1])
}

// Normalize returns a copy of poly with every ring cleaned by CleanRing,
// the outer ring counter-clockwise and holes clockwise.
func Normalize(poly orb.Polygon) orb.Polygon {
	out := make(orb.Polygon, len(poly))
	for i, ring := range poly {
		r := CleanRing(ring)
		want := orb.CCW
		if i > 0 {
			want = orb.CW
		}
		if r.Orientation() != want {
			r.Reverse()
		}
		out[i] = r
	}
	return out
}
