// Package geometry provides the planar region operations used by the hole
// placement engine: containment, clipping, union and buffering of polygons.
//
// Coordinates are design units. Boolean operations run on an integer grid
// of Scale steps per unit, so their results are exact to 1/Scale.
package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/planar"
)

// BoundaryTolerance is the distance within which a point counts as lying
// on a polygon boundary. Boolean results are rounded to 1/Scale, so a
// point on an input edge may sit up to that far from the rounded edge.
var BoundaryTolerance = 1 / Scale

// Region is a set of independent polygons describing a planar area. The
// zero value is the empty region.
type Region struct {
	polygons orb.MultiPolygon
	bounds   []orb.Bound
	bound    orb.Bound
}

// NewRegion wraps mp without copying it. The caller must not modify mp
// afterwards.
func NewRegion(mp orb.MultiPolygon) Region {
	r := Region{polygons: mp, bounds: make([]orb.Bound, len(mp))}
	for i, p := range mp {
		r.bounds[i] = p.Bound()
		if i == 0 {
			r.bound = r.bounds[i]
		} else {
			r.bound = r.bound.Union(r.bounds[i])
		}
	}
	return r
}

// Polygons returns the polygons making up the region.
func (r Region) Polygons() orb.MultiPolygon {
	return r.polygons
}

// Len returns the number of polygons.
func (r Region) Len() int {
	return len(r.polygons)
}

// IsEmpty reports whether the region has no polygons.
func (r Region) IsEmpty() bool {
	return len(r.polygons) == 0
}

// Bound returns the bounding box of the region. The empty region has the
// zero bound, a single point at the origin.
func (r Region) Bound() orb.Bound {
	return r.bound
}

// Area returns the total area of the region.
func (r Region) Area() float64 {
	if r.IsEmpty() {
		return 0
	}
	return planar.Area(r.polygons)
}

// Contains reports whether p lies strictly inside the region. Points on a
// polygon boundary, including hole boundaries, are not contained.
func (r Region) Contains(p orb.Point) bool {
	for i, poly := range r.polygons {
		if !r.bounds[i].Contains(p) {
			continue
		}
		if OnBoundary(poly, p) {
			continue
		}
		if planar.PolygonContains(poly, p) {
			return true
		}
	}
	return false
}

// Covers reports whether p lies inside the region or on its boundary.
func (r Region) Covers(p orb.Point) bool {
	for i, poly := range r.polygons {
		if !r.bounds[i].Contains(p) {
			continue
		}
		if planar.PolygonContains(poly, p) || OnBoundary(poly, p) {
			return true
		}
	}
	return false
}

// Clip returns the part of the region inside b. Points strictly inside b
// have the same membership in the result as in r.
func (r Region) Clip(b orb.Bound) Region {
	var mp orb.MultiPolygon
	for i, poly := range r.polygons {
		if !r.bounds[i].Intersects(b) {
			continue
		}
		// clip works in place, so hand it a copy
		if p := clip.Polygon(b, poly.Clone()); len(p) > 0 {
			mp = append(mp, p)
		}
	}
	return NewRegion(mp)
}

// OnBoundary reports whether p lies within BoundaryTolerance of any ring of poly.
func OnBoundary(poly orb.Polygon, p orb.Point) bool {
	return planar.DistanceFrom(poly, p) <= BoundaryTolerance
}
