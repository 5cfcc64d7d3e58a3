package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// Circle approximates a circle by an n-gon with its vertices on the circle,
// counter-clockwise from angle 0.
func Circle(c orb.Point, r float64, n int) orb.Polygon {
	if n < 3 {
		n = 3
	}
	ring := make(orb.Ring, 0, n+1)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		ring = append(ring, orb.Point{c[0] + r*math.Cos(a), c[1] + r*math.Sin(a)})
	}
	return orb.Polygon{append(ring, ring[0])}
}

// Rect returns the counter-clockwise rectangle covering b.
func Rect(b orb.Bound) orb.Polygon {
	return orb.Polygon{{
		{b.Min[0], b.Min[1]},
		{b.Max[0], b.Min[1]},
		{b.Max[0], b.Max[1]},
		{b.Min[0], b.Max[1]},
		{b.Min[0], b.Min[1]},
	}}
}

// SegmentsFor returns the number of segments needed so that a polygonal
// approximation of a circle of radius r deviates from it by at most tol.
func SegmentsFor(r, tol float64) int {
	if r <= 0 || tol <= 0 || tol >= r {
		return 8
	}
	n := int(math.Ceil(math.Pi / math.Acos(1-tol/r)))
	if n < 8 {
		return 8
	}
	return n
}
