package importer

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/fluxholes/internal/geometry"
	"github.com/piwi3910/fluxholes/internal/layout"
)

// chainTolerance is the largest gap between LINE/ARC endpoints that still
// joins them into one outline.
const chainTolerance = 0.01

// arcSegments is the number of segments used for a full circle; arcs and
// bulges use a proportional share.
const arcSegments = 64

// segment is a straight piece of a LINE or flattened ARC, used for
// chaining loose entities into closed outlines.
type segment struct {
	start orb.Point
	end   orb.Point
}

// ImportDXF reads a DXF file into a design. Every layer whose name is an
// integer becomes that layer; closed LWPOLYLINEs, CIRCLEs and chains of
// LINEs/ARCs become polygons, with outlines nested inside another outline
// on the same layer turned into its holes.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	rings := make(map[int][]orb.Ring)
	segments := make(map[int][]segment)
	skippedLayers := make(map[string]bool)

	for _, ent := range entities {
		name := "0"
		if l := ent.Layer(); l != nil {
			name = l.Name()
		}
		layer, err := strconv.Atoi(strings.TrimSpace(name))
		if err != nil {
			skippedLayers[name] = true
			continue
		}

		switch e := ent.(type) {
		case *entity.LwPolyline:
			ring := lwPolylineToRing(e)
			if len(ring) < 3 {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Layer %d: skipped LWPOLYLINE with fewer than 3 vertices", layer))
				continue
			}
			if !e.Closed && !pointsClose(ring[0], ring[len(ring)-1], chainTolerance) {
				segments[layer] = append(segments[layer], pointsToSegments(ring)...)
				continue
			}
			rings[layer] = append(rings[layer], ring)

		case *entity.Circle:
			if e.Radius <= 0 {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Layer %d: skipped CIRCLE with radius %g", layer, e.Radius))
				continue
			}
			c := geometry.Circle(orb.Point{e.Center[0], e.Center[1]}, e.Radius, arcSegments)
			rings[layer] = append(rings[layer], c[0])

		case *entity.Arc:
			if pts := arcToPoints(e); len(pts) >= 2 {
				segments[layer] = append(segments[layer], pointsToSegments(pts)...)
			}

		case *entity.Line:
			segments[layer] = append(segments[layer], segment{
				start: orb.Point{e.Start[0], e.Start[1]},
				end:   orb.Point{e.End[0], e.End[1]},
			})

		default:
			// Unsupported entity types are silently skipped
		}
	}

	for name := range skippedLayers {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Skipped layer %q: layer names must be integers", name))
	}
	sort.Strings(result.Warnings)

	for layer, segs := range segments {
		closed, open := chainSegments(segs, chainTolerance)
		rings[layer] = append(rings[layer], closed...)
		if open > 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Layer %d: %d open chain(s) of LINE/ARC entities ignored", layer, open))
		}
	}

	design := layout.NewDesign(path)
	addRings(design, rings, &result)
	result.Design = design

	if result.Polygons == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
	}
	return result
}

// addRings nests each layer's rings and adds the resulting polygons to d.
// Layers are visited in ascending order so warnings are stable.
func addRings(d *layout.Design, rings map[int][]orb.Ring, result *ImportResult) {
	layers := make([]int, 0, len(rings))
	for l := range rings {
		layers = append(layers, l)
	}
	sort.Ints(layers)

	for _, layer := range layers {
		for _, poly := range nestRings(rings[layer]) {
			if err := d.AddPolygon(layer, poly); err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("Dropped invalid shape: %v", err))
				continue
			}
			result.Polygons++
		}
	}
}

// nestRings groups rings into polygons by containment depth: a ring at even
// depth starts a polygon, a ring at odd depth becomes a hole of the ring
// directly containing it.
func nestRings(rings []orb.Ring) []orb.Polygon {
	type node struct {
		ring   orb.Ring
		area   float64
		parent int
		depth  int
		poly   int
	}
	nodes := make([]node, len(rings))
	for i, r := range rings {
		r = geometry.CloseRing(r)
		nodes[i] = node{ring: r, area: math.Abs(planar.Area(r)), parent: -1, poly: -1}
	}
	// largest first, so parents are resolved before children
	sort.SliceStable(nodes, func(a, b int) bool { return nodes[a].area > nodes[b].area })

	var polys []orb.Polygon
	for i := range nodes {
		n := &nodes[i]
		for j := i - 1; j >= 0; j-- {
			if nodes[j].area > n.area && planar.RingContains(nodes[j].ring, n.ring[0]) {
				n.parent = j
				n.depth = nodes[j].depth + 1
				break
			}
		}
		if n.depth%2 == 0 {
			n.poly = len(polys)
			polys = append(polys, orb.Polygon{n.ring})
			continue
		}
		parent := nodes[n.parent].poly
		polys[parent] = append(polys[parent], n.ring)
	}
	return polys
}

// lwPolylineToRing converts a DXF LWPOLYLINE entity to a ring.
// Bulge values on vertices produce interpolated arc segments.
func lwPolylineToRing(lw *entity.LwPolyline) orb.Ring {
	var ring orb.Ring
	n := len(lw.Vertices)
	for i := 0; i < n; i++ {
		v := lw.Vertices[i]
		current := orb.Point{v[0], v[1]}

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		last := i == n-1 && !lw.Closed
		if math.Abs(bulge) > 1e-9 && !last {
			nv := lw.Vertices[(i+1)%n]
			arc := bulgeArcPoints(current, orb.Point{nv[0], nv[1]}, bulge)
			ring = append(ring, arc[:len(arc)-1]...)
		} else {
			ring = append(ring, current)
		}
	}
	return ring
}

// bulgeArcPoints generates points along an arc defined by two endpoints and a
// DXF bulge factor. The bulge is the tangent of 1/4 the included angle,
// positive for counter-clockwise arcs.
func bulgeArcPoints(p1, p2 orb.Point, bulge float64) []orb.Point {
	dx, dy := p2[0]-p1[0], p2[1]-p1[1]
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return []orb.Point{p1, p2}
	}

	sweep := 4 * math.Atan(bulge)
	radius := chord / (2 * math.Sin(math.Abs(sweep)/2))

	// centre lies on the chord bisector, left of p1->p2 for positive bulge
	mx, my := (p1[0]+p2[0])/2, (p1[1]+p2[1])/2
	// negative for arcs longer than a half circle
	h := radius * math.Cos(math.Abs(sweep)/2)
	nx, ny := -dy/chord, dx/chord
	if bulge < 0 {
		nx, ny = -nx, -ny
	}
	cx, cy := mx+nx*h, my+ny*h

	start := math.Atan2(p1[1]-cy, p1[0]-cx)
	steps := max(2, int(math.Ceil(math.Abs(sweep)/(2*math.Pi)*arcSegments)))
	pts := make([]orb.Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		a := start + sweep*float64(i)/float64(steps)
		pts = append(pts, orb.Point{cx + radius*math.Cos(a), cy + radius*math.Sin(a)})
	}
	pts[0], pts[steps] = p1, p2
	return pts
}

// arcToPoints flattens a DXF ARC, which always runs counter-clockwise from
// its start angle to its end angle in degrees.
func arcToPoints(a *entity.Arc) []orb.Point {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius
	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	steps := max(2, int(math.Ceil((endRad-startRad)/(2*math.Pi)*arcSegments)))
	pts := make([]orb.Point, steps+1)
	for i := 0; i <= steps; i++ {
		angle := startRad + float64(i)/float64(steps)*(endRad-startRad)
		pts[i] = orb.Point{cx + r*math.Cos(angle), cy + r*math.Sin(angle)}
	}
	return pts
}

func pointsToSegments(pts []orb.Point) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments connects segments end to end into closed rings. It returns
// the closed rings and the number of chains that did not close.
func chainSegments(segs []segment, tolerance float64) ([]orb.Ring, int) {
	used := make([]bool, len(segs))
	var rings []orb.Ring
	open := 0

	for startIdx := range segs {
		if used[startIdx] {
			continue
		}
		chain := []orb.Point{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		for changed := true; changed; {
			changed = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
				} else if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
				} else {
					continue
				}
				used[i] = true
				changed = true
				break
			}
		}

		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			chain[len(chain)-1] = chain[0]
			rings = append(rings, orb.Ring(chain))
		} else {
			open++
		}
	}

	sort.SliceStable(rings, func(i, j int) bool {
		return math.Abs(planar.Area(rings[i])) > math.Abs(planar.Area(rings[j]))
	})
	return rings, open
}

func pointsClose(a, b orb.Point, tolerance float64) bool {
	return math.Hypot(a[0]-b[0], a[1]-b[1]) <= tolerance
}
