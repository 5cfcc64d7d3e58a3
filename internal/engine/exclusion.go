package engine

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/piwi3910/fluxholes/internal/geometry"
)

// BuildExclusionZone returns the region where hole centres must never be
// placed: the union of every polygon on exclusionLayers with the polygons
// on circuitLayers grown outward by margin. Empty layer lists contribute
// nothing; a zero margin unions the circuit polygons unchanged.
func BuildExclusionZone(src Source, circuitLayers []int, margin float64, exclusionLayers []int) (geometry.Region, error) {
	if margin < 0 {
		return geometry.Region{}, invalidf("circuit margin must be >= 0, got %g", margin)
	}

	circuit, err := geometry.Buffer(collect(src, circuitLayers), margin)
	if err != nil {
		return geometry.Region{}, fmt.Errorf("buffering circuit layers: %w", err)
	}

	all := collect(src, exclusionLayers)
	if len(all) == 0 {
		return circuit, nil
	}
	zone, err := geometry.Union(append(all, circuit.Polygons()...))
	if err != nil {
		return geometry.Region{}, fmt.Errorf("merging exclusion layers: %w", err)
	}
	return zone, nil
}

// collect gathers the polygons of every listed layer, visiting each layer
// once.
func collect(src Source, layers []int) orb.MultiPolygon {
	var mp orb.MultiPolygon
	seen := make(map[int]bool, len(layers))
	for _, l := range layers {
		if seen[l] {
			continue
		}
		seen[l] = true
		mp = append(mp, src.Polygons(l)...)
	}
	return mp
}
