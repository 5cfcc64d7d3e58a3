// Package layout holds an in-memory layered design: polygons grouped by
// integer layer plus placed hole instances. It is the geometry source the
// placement engine reads from and writes holes into.
package layout

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/paulmach/orb"

	"github.com/piwi3910/fluxholes/internal/geometry"
	"github.com/piwi3910/fluxholes/internal/model"
)

// ErrInvalidPolygon is returned by AddPolygon for geometry that fails
// validation.
var ErrInvalidPolygon = geometry.ErrInvalidPolygon

// Instance is one placement of a shared hole template.
type Instance struct {
	Template *model.HoleTemplate
	Origin   orb.Point
}

// Outline returns the instance outline in design coordinates.
func (i Instance) Outline() orb.Polygon {
	return i.Template.At(i.Origin)
}

// LayerStats summarises one layer.
type LayerStats struct {
	Layer     int
	Polygons  int
	Instances int
	Bound     orb.Bound
}

// Design is a layered collection of polygons and hole instances. It is
// safe for concurrent use.
//
// Polygons memoizes its per-layer result. The cache is dropped and
// Version is incremented by every mutation and by Invalidate, so a
// result is only ever served for the geometry it was computed from.
type Design struct {
	Name string

	mu        sync.RWMutex
	layers    map[int][]orb.Polygon
	instances []Instance
	version   uint64
	cache     map[int][]orb.Polygon
}

// NewDesign creates an empty design.
func NewDesign(name string) *Design {
	return &Design{
		Name:   name,
		layers: make(map[int][]orb.Polygon),
		cache:  make(map[int][]orb.Polygon),
	}
}

// AddPolygon validates p and stores it on layer with its outer ring
// counter-clockwise and holes clockwise.
func (d *Design) AddPolygon(layer int, p orb.Polygon) error {
	if err := geometry.ValidatePolygon(p); err != nil {
		return fmt.Errorf("layer %d: %w", layer, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.layers[layer] = append(d.layers[layer], geometry.Normalize(p))
	d.touch()
	return nil
}

// AddInstance places one instance of t at origin on the template's layer.
func (d *Design) AddInstance(t *model.HoleTemplate, origin orb.Point) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.instances = append(d.instances, Instance{Template: t, Origin: origin})
	d.touch()
}

// Invalidate drops cached layer results. Callers that change geometry
// reachable from the design by other means must call it.
func (d *Design) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.touch()
}

// touch must be called with mu held for writing.
func (d *Design) touch() {
	d.version++
	clear(d.cache)
}

// Version returns a counter that changes whenever the geometry changes.
func (d *Design) Version() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Polygons returns the polygons on layer followed by the outlines of the
// hole instances placed on it.
func (d *Design) Polygons(layer int) []orb.Polygon {
	d.mu.RLock()
	polys, ok := d.cache[layer]
	d.mu.RUnlock()
	if ok {
		return slices.Clone(polys)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if polys, ok := d.cache[layer]; ok {
		return slices.Clone(polys)
	}
	polys = slices.Clone(d.layers[layer])
	for _, inst := range d.instances {
		if inst.Template.Spec.Layer == layer {
			polys = append(polys, inst.Outline())
		}
	}
	d.cache[layer] = polys
	return slices.Clone(polys)
}

// Bounds returns the bounding box of every polygon and instance. An empty
// design has the zero bound.
func (d *Design) Bounds() orb.Bound {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var b orb.Bound
	first := true
	extend := func(o orb.Bound) {
		if first {
			b, first = o, false
			return
		}
		b = b.Union(o)
	}
	for _, polys := range d.layers {
		for _, p := range polys {
			extend(p.Bound())
		}
	}
	for _, inst := range d.instances {
		extend(inst.Outline().Bound())
	}
	return b
}

// Layers returns every layer holding polygons or instances, ascending.
func (d *Design) Layers() []int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	seen := make(map[int]bool)
	for l, polys := range d.layers {
		if len(polys) > 0 {
			seen[l] = true
		}
	}
	for _, inst := range d.instances {
		seen[inst.Template.Spec.Layer] = true
	}
	layers := make([]int, 0, len(seen))
	for l := range seen {
		layers = append(layers, l)
	}
	sort.Ints(layers)
	return layers
}

// Instances returns the placed hole instances in insertion order.
func (d *Design) Instances() []Instance {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.instances)
}

// RawPolygons returns only the polygons added with AddPolygon on layer.
func (d *Design) RawPolygons(layer int) []orb.Polygon {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.layers[layer])
}

// Stats summarises every layer, ascending by layer.
func (d *Design) Stats() []LayerStats {
	var stats []LayerStats
	for _, l := range d.Layers() {
		raw := d.RawPolygons(l)
		all := d.Polygons(l)
		s := LayerStats{Layer: l, Polygons: len(raw), Instances: len(all) - len(raw)}
		for i, p := range all {
			if i == 0 {
				s.Bound = p.Bound()
			} else {
				s.Bound = s.Bound.Union(p.Bound())
			}
		}
		stats = append(stats, s)
	}
	return stats
}
