package engine

import (
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/paulmach/orb"

	"github.com/piwi3910/fluxholes/internal/geometry"
	"github.com/piwi3910/fluxholes/internal/model"
)

// Source is the layout the engine reads geometry from and adds holes to.
type Source interface {
	// Polygons returns the valid polygons on layer.
	Polygons(layer int) []orb.Polygon
	// Bounds returns the bounding box of all geometry in the layout.
	Bounds() orb.Bound
	// AddInstance places one instance of t with its origin at origin.
	AddInstance(t *model.HoleTemplate, origin orb.Point)
}

// HoleZone places holes on a layout while keeping clear of its exclusion
// zone. The exclusion zone and its subgrid are built once by New; every
// placement run reads the placement region fresh from the source.
type HoleZone struct {
	src      Source
	settings model.ZoneSettings
	bound    orb.Bound
	zone     geometry.Region
	grid     *Subgrid
}

// New validates settings, builds the exclusion zone from src and
// partitions it into the subgrid.
func New(src Source, settings model.ZoneSettings) (*HoleZone, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	bound := src.Bounds()
	if err := checkBound(bound); err != nil {
		return nil, err
	}

	zone, err := BuildExclusionZone(src, settings.CircuitLayers, settings.CircuitMargin, settings.ExclusionLayers)
	if err != nil {
		return nil, err
	}
	grid, err := NewSubgrid(zone, bound, settings.SubgridCount, settings.CircuitMargin)
	if err != nil {
		return nil, err
	}

	return &HoleZone{
		src:      src,
		settings: settings,
		bound:    bound,
		zone:     zone,
		grid:     grid,
	}, nil
}

// Settings returns the construction settings.
func (h *HoleZone) Settings() model.ZoneSettings { return h.settings }

// Bound returns the design bounds captured at construction.
func (h *HoleZone) Bound() orb.Bound { return h.bound }

// Zone returns the full exclusion zone.
func (h *HoleZone) Zone() geometry.Region { return h.zone }

// Subgrid returns the partitioned exclusion zone.
func (h *HoleZone) Subgrid() *Subgrid { return h.grid }

// Excluded reports whether p lies strictly inside the exclusion zone.
func (h *HoleZone) Excluded(p orb.Point) bool {
	return h.grid.Contains(p)
}

type verdict uint8

const (
	accepted verdict = iota
	outside
	excluded
)

func (h *HoleZone) judge(zone geometry.Region, p orb.Point) verdict {
	if !zone.Contains(p) {
		return outside
	}
	if h.grid.Contains(p) {
		return excluded
	}
	return accepted
}

// Accepted yields the candidates lying strictly inside zone and not inside
// the exclusion zone, in candidate order. Stopping early is allowed.
func (h *HoleZone) Accepted(zone geometry.Region, candidates iter.Seq[orb.Point]) iter.Seq[orb.Point] {
	return func(yield func(orb.Point) bool) {
		for p := range candidates {
			if h.judge(zone, p) != accepted {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// PlacementRegion unions the polygons currently on layer.
func (h *HoleZone) PlacementRegion(layer int) (geometry.Region, error) {
	region, err := geometry.Union(h.src.Polygons(layer))
	if err != nil {
		return geometry.Region{}, fmt.Errorf("building placement region on layer %d: %w", layer, err)
	}
	return region, nil
}

// Plan computes the placements CreateHoles would make without touching the
// source. An empty placement list is a valid result.
func (h *HoleZone) Plan(s model.HoleSettings) (model.HoleResult, error) {
	if err := s.Validate(); err != nil {
		return model.HoleResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	lattice, err := NewLattice(s.GridType, h.bound, s.GridSize)
	if err != nil {
		return model.HoleResult{}, err
	}
	region, err := h.PlacementRegion(s.HoleZoneLayer)
	if err != nil {
		return model.HoleResult{}, err
	}

	tmpl := model.NewHoleTemplate(s.HoleType, s.HoleSize, s.HoleLayer)
	result := model.HoleResult{
		RunID:      model.NewRunID(),
		Settings:   s,
		Template:   tmpl,
		Placements: []model.Placement{},
	}

	record := func(p orb.Point, v verdict) {
		result.Candidates++
		switch v {
		case accepted:
			result.Placements = append(result.Placements, model.Placement{X: p[0], Y: p[1], TemplateID: tmpl.ID})
		case outside:
			result.RejectedOutside++
		case excluded:
			result.RejectedExcluded++
		}
	}

	if s.Workers > 1 {
		points := make([]orb.Point, 0, lattice.Len())
		for p := range lattice.Points() {
			points = append(points, p)
		}
		for i, v := range h.judgeAll(region, points, s.Workers) {
			record(points[i], v)
		}
		return result, nil
	}

	for p := range lattice.Points() {
		record(p, h.judge(region, p))
	}
	return result, nil
}

// judgeAll evaluates points on a fixed pool of workers, each taking a
// contiguous chunk. Verdicts come back in point order.
func (h *HoleZone) judgeAll(zone geometry.Region, points []orb.Point, workers int) []verdict {
	verdicts := make([]verdict, len(points))
	if workers > len(points) {
		workers = len(points)
	}
	if workers < 1 {
		return verdicts
	}
	chunk := (len(points) + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < len(points); start += chunk {
		end := min(start+chunk, len(points))
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				verdicts[i] = h.judge(zone, points[i])
			}
		}(start, end)
	}
	wg.Wait()
	return verdicts
}

// CreateHoles runs Plan and adds one hole instance to the source for every
// placement, in lattice order. The hole template is shared by all of them.
func (h *HoleZone) CreateHoles(s model.HoleSettings) (model.HoleResult, error) {
	result, err := h.Plan(s)
	if err != nil {
		return result, err
	}
	for _, p := range result.Placements {
		h.src.AddInstance(result.Template, p.Point())
	}
	return result, nil
}

// IsInvalidInput reports whether err was caused by an invalid parameter.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
