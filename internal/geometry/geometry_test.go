package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(minX, minY, side float64) orb.Polygon {
	return Rect(orb.Bound{Min: orb.Point{minX, minY}, Max: orb.Point{minX + side, minY + side}})
}

// ─── Region ───

func TestRegionZeroValue(t *testing.T) {
	var r Region
	assert.True(t, r.IsEmpty())
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, orb.Bound{}, r.Bound())
	assert.Equal(t, 0.0, r.Area())
	assert.False(t, r.Contains(orb.Point{0, 0}))
}

func TestRegionContainsIsStrict(t *testing.T) {
	r := NewRegion(orb.MultiPolygon{square(0, 0, 10)})

	assert.True(t, r.Contains(orb.Point{5, 5}))
	assert.False(t, r.Contains(orb.Point{0, 5}), "left edge")
	assert.False(t, r.Contains(orb.Point{10, 10}), "corner")
	assert.False(t, r.Contains(orb.Point{11, 5}))

	assert.True(t, r.Covers(orb.Point{0, 5}))
	assert.True(t, r.Covers(orb.Point{10, 10}))
	assert.False(t, r.Covers(orb.Point{11, 5}))
}

func TestRegionContainsRespectsHoles(t *testing.T) {
	outer := square(0, 0, 10)[0]
	hole := square(4, 4, 2)[0].Clone()
	hole.Reverse()
	r := NewRegion(orb.MultiPolygon{{outer, hole}})

	assert.False(t, r.Contains(orb.Point{5, 5}), "inside hole")
	assert.False(t, r.Contains(orb.Point{4, 5}), "on hole boundary")
	assert.True(t, r.Contains(orb.Point{2, 2}))
	assert.InDelta(t, 96.0, r.Area(), 1e-9)
}

func TestRegionBound(t *testing.T) {
	r := NewRegion(orb.MultiPolygon{square(0, 0, 2), square(10, -5, 1)})
	assert.Equal(t, orb.Bound{Min: orb.Point{0, -5}, Max: orb.Point{11, 2}}, r.Bound())
}

func TestRegionClip(t *testing.T) {
	r := NewRegion(orb.MultiPolygon{square(0, 0, 10), square(20, 20, 5)})
	original := r.Polygons()[0].Clone()

	c := r.Clip(orb.Bound{Min: orb.Point{5, 5}, Max: orb.Point{15, 15}})
	require.Equal(t, 1, c.Len())
	assert.InDelta(t, 25.0, c.Area(), 1e-9)
	assert.True(t, c.Contains(orb.Point{7, 7}))
	assert.False(t, c.Contains(orb.Point{3, 3}))

	assert.Equal(t, original, r.Polygons()[0], "clip must not modify the source region")
}

func TestRegionClipPreservesInteriorMembership(t *testing.T) {
	outer := Circle(orb.Point{50, 50}, 20, 48)
	r := NewRegion(orb.MultiPolygon{outer})
	b := orb.Bound{Min: orb.Point{40, 40}, Max: orb.Point{75, 60}}
	c := r.Clip(b)

	for x := 40.5; x < 75; x += 1.0 {
		for y := 40.5; y < 60; y += 1.0 {
			p := orb.Point{x, y}
			assert.Equal(t, r.Contains(p), c.Contains(p), "point %v", p)
		}
	}
}

func TestUnionBoundaryWithinRounding(t *testing.T) {
	// 200/3 is not representable on the 1/Scale grid
	maxX := 200.0 / 3
	r, err := Union(orb.MultiPolygon{Rect(orb.Bound{Max: orb.Point{maxX, 10}})})
	require.NoError(t, err)

	assert.False(t, r.Contains(orb.Point{maxX, 5}), "point on the input edge")
	assert.True(t, r.Covers(orb.Point{maxX, 5}))
	assert.True(t, r.Contains(orb.Point{maxX - 1e-3, 5}))
}

// ─── Union ───

func TestUnionEmpty(t *testing.T) {
	r, err := Union(nil)
	require.NoError(t, err)
	assert.True(t, r.IsEmpty())
}

func TestUnionOverlappingSquares(t *testing.T) {
	r, err := Union(orb.MultiPolygon{square(0, 0, 10), square(5, 5, 10)})
	require.NoError(t, err)

	assert.Equal(t, 1, r.Len())
	assert.InDelta(t, 175.0, r.Area(), 1e-6)
	assert.True(t, r.Contains(orb.Point{2, 2}))
	assert.True(t, r.Contains(orb.Point{12, 12}))
	assert.True(t, r.Contains(orb.Point{7, 7}))
	assert.False(t, r.Contains(orb.Point{12, 2}))
}

func TestUnionDisjointSquares(t *testing.T) {
	r, err := Union(orb.MultiPolygon{square(0, 0, 1), square(5, 5, 1)})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
	assert.InDelta(t, 2.0, r.Area(), 1e-6)
}

func TestUnionKeepsHoles(t *testing.T) {
	frame := orb.Polygon{square(0, 0, 10)[0], square(3, 3, 4)[0]}
	r, err := Union(orb.MultiPolygon{frame})
	require.NoError(t, err)

	require.Equal(t, 1, r.Len())
	assert.Len(t, r.Polygons()[0], 2)
	assert.False(t, r.Contains(orb.Point{5, 5}))
	assert.True(t, r.Contains(orb.Point{1, 1}))
	assert.InDelta(t, 84.0, r.Area(), 1e-6)
}

func TestUnionIgnoresWinding(t *testing.T) {
	cw := square(0, 0, 4)[0].Clone()
	cw.Reverse()
	r, err := Union(orb.MultiPolygon{{cw}})
	require.NoError(t, err)
	assert.InDelta(t, 16.0, r.Area(), 1e-6)
	assert.True(t, r.Contains(orb.Point{2, 2}))
}

func TestUnionRegions(t *testing.T) {
	a := NewRegion(orb.MultiPolygon{square(0, 0, 2)})
	b := NewRegion(orb.MultiPolygon{square(1, 0, 2)})
	r, err := UnionRegions(a, b, Region{})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())
	assert.InDelta(t, 6.0, r.Area(), 1e-6)
}

// ─── Buffer ───

func TestBufferNegativeDistance(t *testing.T) {
	_, err := Buffer(orb.MultiPolygon{square(0, 0, 1)}, -1)
	assert.True(t, errors.Is(err, ErrNegativeDistance))
}

func TestBufferZeroIsUnion(t *testing.T) {
	r, err := Buffer(orb.MultiPolygon{square(0, 0, 10)}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, r.Area(), 1e-6)
	assert.False(t, r.Contains(orb.Point{10.5, 5}))
}

func TestBufferNeverUnderIncludes(t *testing.T) {
	const d = 2.0
	src := orb.MultiPolygon{square(0, 0, 10)}
	r, err := Buffer(src, d)
	require.NoError(t, err)

	// points just inside the true offset curve, all around the square
	for i := 0; i < 360; i += 5 {
		a := float64(i) * math.Pi / 180
		corner := orb.Point{10, 10}
		p := orb.Point{corner[0] + (d-0.01)*math.Cos(a), corner[1] + (d-0.01)*math.Sin(a)}
		if p[0] < 10 || p[1] < 10 {
			continue
		}
		assert.True(t, r.Contains(p), "corner arc point %v", p)
	}
	assert.True(t, r.Contains(orb.Point{-d + 0.01, 5}))
	assert.True(t, r.Contains(orb.Point{5, 10 + d - 0.01}))

	// and nothing far outside
	assert.False(t, r.Contains(orb.Point{-d - 0.1, 5}))
	assert.False(t, r.Contains(orb.Point{10 + 1.5, 10 + 1.5}), "beyond the rounded corner")

	want := (10+2*d)*(10+2*d) - (4-math.Pi)*d*d
	assert.InDelta(t, want, r.Area(), want*0.01)
}

func TestBufferMergesNearbyShapes(t *testing.T) {
	r, err := Buffer(orb.MultiPolygon{square(0, 0, 2), square(3, 0, 2)}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())
	assert.True(t, r.Contains(orb.Point{2.5, 1}))
}

func TestArcTolerance(t *testing.T) {
	assert.Equal(t, 0.0, ArcTolerance(0))
	assert.InDelta(t, 0.012, ArcTolerance(12), 1e-12)
	assert.InDelta(t, 0.012, ArcTolerance(-12), 1e-12)
}

// ─── Validation ───

func TestValidatePolygon(t *testing.T) {
	tests := []struct {
		name  string
		poly  orb.Polygon
		valid bool
	}{
		{"square", square(0, 0, 1), true},
		{"unclosed triangle", orb.Polygon{{{0, 0}, {1, 0}, {0, 1}}}, true},
		{"empty", orb.Polygon{}, false},
		{"two points", orb.Polygon{{{0, 0}, {1, 0}, {0, 0}}}, false},
		{"collinear", orb.Polygon{{{0, 0}, {1, 0}, {2, 0}, {0, 0}}}, false},
		{"bowtie", orb.Polygon{{{0, 0}, {2, 2}, {2, 0}, {0, 2}, {0, 0}}}, false},
		{"nan", orb.Polygon{{{0, 0}, {math.NaN(), 0}, {0, 1}, {0, 0}}}, false},
		{"hole inside", orb.Polygon{square(0, 0, 10)[0], square(2, 2, 2)[0]}, true},
		{"hole outside", orb.Polygon{square(0, 0, 10)[0], square(20, 20, 2)[0]}, false},
		{"repeated vertex", orb.Polygon{{{0, 0}, {10, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}, true},
		{"repeated closing point", orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}, {0, 0}}}, true},
		{"hole crosses outer", orb.Polygon{square(0, 0, 10)[0], square(8, 2, 4)[0]}, false},
		{"holes overlap", orb.Polygon{square(0, 0, 10)[0], square(2, 2, 3)[0], square(4, 4, 3)[0]}, false},
		{"hole inside hole", orb.Polygon{square(0, 0, 10)[0], square(2, 2, 6)[0], square(4, 4, 1)[0]}, false},
		{"two separate holes", orb.Polygon{square(0, 0, 10)[0], square(1, 1, 2)[0], square(6, 6, 2)[0]}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePolygon(tt.poly)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidPolygon), "got %v", err)
			}
		})
	}
}

func TestCloseRing(t *testing.T) {
	open := orb.Ring{{0, 0}, {1, 0}, {0, 1}}
	closed := CloseRing(open)
	assert.Len(t, closed, 4)
	assert.True(t, closed.Closed())
	assert.Len(t, open, 3, "input untouched")

	already := orb.Ring{{0, 0}, {1, 0}, {0, 1}, {0, 0}}
	assert.Equal(t, already, CloseRing(already))
}

func TestCleanRing(t *testing.T) {
	in := orb.Ring{{0, 0}, {10, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}, {0, 0}}
	got := CleanRing(in)
	assert.Equal(t, orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}, got)
	assert.Len(t, in, 7, "input untouched")

	assert.Equal(t, orb.Ring{{0, 0}, {1, 0}, {0, 1}, {0, 0}}, CleanRing(orb.Ring{{0, 0}, {1, 0}, {0, 1}}))
	assert.Empty(t, CleanRing(nil))
}

func TestNormalizeDropsRepeatedVertices(t *testing.T) {
	n := Normalize(orb.Polygon{{{0, 0}, {10, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}})
	assert.Len(t, n[0], 5)
	require.NoError(t, ValidatePolygon(n))
}

func TestNormalize(t *testing.T) {
	outer := square(0, 0, 10)[0].Clone()
	outer.Reverse()
	hole := square(2, 2, 2)[0]

	n := Normalize(orb.Polygon{outer, hole})
	assert.Equal(t, orb.CCW, n[0].Orientation())
	assert.Equal(t, orb.CW, n[1].Orientation())
	assert.Equal(t, orb.CW, outer.Orientation(), "input untouched")
}

// ─── Shapes ───

func TestCircle(t *testing.T) {
	c := Circle(orb.Point{1, 2}, 3, 16)
	require.Len(t, c, 1)
	assert.Len(t, c[0], 17)
	assert.True(t, c[0].Closed())
	assert.Equal(t, orb.CCW, c[0].Orientation())
	for _, p := range c[0] {
		assert.InDelta(t, 3.0, math.Hypot(p[0]-1, p[1]-2), 1e-9)
	}
}

func TestSegmentsFor(t *testing.T) {
	assert.Equal(t, 8, SegmentsFor(0, 0.1))
	n := SegmentsFor(10, 0.01)
	assert.Greater(t, n, 8)
	// the sagitta of one segment must be within tolerance
	assert.LessOrEqual(t, 10*(1-math.Cos(math.Pi/float64(n))), 0.01+1e-12)
}
