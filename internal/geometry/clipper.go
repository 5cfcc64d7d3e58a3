package geometry

import (
	"errors"
	"fmt"
	"math"
	"sort"

	clipper "github.com/ctessum/go.clipper"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Scale is the number of integer steps per design unit used by the
// boolean operations.
const Scale = 1e6

// arcToleranceRatio bounds the chord deviation of round joins relative to
// the buffer distance.
const arcToleranceRatio = 1e-3

var (
	// ErrClip indicates the polygon clipper rejected its input.
	ErrClip = errors.New("geometry: boolean operation failed")
	// ErrNegativeDistance indicates a buffer was requested with a negative distance.
	ErrNegativeDistance = errors.New("geometry: buffer distance must not be negative")
)

// ArcTolerance returns the largest deviation between a round join and its
// polygonal approximation when buffering by d.
func ArcTolerance(d float64) float64 {
	return math.Abs(d) * arcToleranceRatio
}

// Union merges polygons into a region without overlapping polygons.
func Union(polys orb.MultiPolygon) (Region, error) {
	if len(polys) == 0 {
		return Region{}, nil
	}
	c := clipper.NewClipper(clipper.IoStrictlySimple)
	c.AddPaths(toPaths(polys), clipper.PtSubject, true)
	solution, ok := c.Execute1(clipper.CtUnion, clipper.PftNonZero, clipper.PftNonZero)
	if !ok {
		return Region{}, fmt.Errorf("%w: union of %d polygons", ErrClip, len(polys))
	}
	return NewRegion(fromPaths(solution)), nil
}

// Buffer grows every boundary of polys outward by d using round joins and
// returns the union of the result. The approximation of each round join
// lies on or outside the true offset curve, so every point within d of
// polys is covered. A zero distance is a plain union.
func Buffer(polys orb.MultiPolygon, d float64) (Region, error) {
	if d < 0 {
		return Region{}, fmt.Errorf("%w: got %g", ErrNegativeDistance, d)
	}
	if d == 0 || len(polys) == 0 {
		return Union(polys)
	}
	tol := ArcTolerance(d)
	co := clipper.NewClipperOffset()
	co.ArcTolerance = tol * Scale
	co.AddPaths(toPaths(polys), clipper.JtRound, clipper.EtClosedPolygon)
	solution := co.Execute((d + tol) * Scale)
	return NewRegion(fromPaths(solution)), nil
}

// UnionRegions merges several regions into one.
func UnionRegions(regions ...Region) (Region, error) {
	var all orb.MultiPolygon
	for _, r := range regions {
		all = append(all, r.polygons...)
	}
	return Union(all)
}

// toPaths converts polygons to clipper paths with outer rings
// counter-clockwise and holes clockwise, as the non-zero fill rule expects.
func toPaths(polys orb.MultiPolygon) clipper.Paths {
	paths := make(clipper.Paths, 0, len(polys))
	for _, poly := range polys {
		for i, ring := range poly {
			want := orb.CCW
			if i > 0 {
				want = orb.CW
			}
			if p := toPath(ring, want); len(p) >= 3 {
				paths = append(paths, p)
			}
		}
	}
	return paths
}

func toPath(ring orb.Ring, want orb.Orientation) clipper.Path {
	n := len(ring)
	if n > 1 && ring[0] == ring[n-1] {
		n-- // clipper paths are implicitly closed
	}
	if n < 3 {
		return nil
	}
	path := make(clipper.Path, n)
	for i := 0; i < n; i++ {
		path[i] = &clipper.IntPoint{
			X: clipper.CInt(math.Round(ring[i][0] * Scale)),
			Y: clipper.CInt(math.Round(ring[i][1] * Scale)),
		}
	}
	if o := CloseRing(ring).Orientation(); o != 0 && o != want {
		for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
			path[i], path[j] = path[j], path[i]
		}
	}
	return path
}

func fromPath(path clipper.Path) orb.Ring {
	ring := make(orb.Ring, 0, len(path)+1)
	for _, p := range path {
		ring = append(ring, orb.Point{float64(p.X) / Scale, float64(p.Y) / Scale})
	}
	return CloseRing(ring)
}

// fromPaths rebuilds polygons from a clipper solution: counter-clockwise
// paths are outer rings, clockwise paths are holes assigned to the
// smallest outer ring covering them.
func fromPaths(paths clipper.Paths) orb.MultiPolygon {
	type outer struct {
		poly orb.Polygon
		area float64
	}
	var outers []outer
	var holes []orb.Ring
	for _, path := range paths {
		if len(path) < 3 {
			continue
		}
		ring := fromPath(path)
		switch ring.Orientation() {
		case orb.CCW:
			outers = append(outers, outer{poly: orb.Polygon{ring}, area: math.Abs(planar.Area(ring))})
		case orb.CW:
			holes = append(holes, ring)
		}
	}

	// smallest first, so the first covering outer is the tightest
	order := make([]int, len(outers))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return outers[order[a]].area < outers[order[b]].area
	})

	for _, h := range holes {
		for _, idx := range order {
			o := &outers[idx]
			if planar.RingContains(o.poly[0], h[0]) {
				o.poly = append(o.poly, h)
				break
			}
		}
	}

	mp := make(orb.MultiPolygon, len(outers))
	for i, o := range outers {
		mp[i] = o.poly
	}
	return mp
}
