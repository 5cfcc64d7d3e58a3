package importer

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/piwi3910/fluxholes/internal/layout"
	"github.com/piwi3910/fluxholes/internal/model"
)

// LayerProperty is the feature property holding the integer layer number.
const LayerProperty = "layer"

// ImportGeoJSON reads a FeatureCollection into a design. Every feature
// needs a numeric "layer" property and a Polygon or MultiPolygon geometry;
// other features are skipped with a warning. Features carrying a complete
// hole description (template, hole_type, hole_size and origin) become
// instances, one shared template per template ID.
func ImportGeoJSON(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot parse GeoJSON: %v", err))
		return result
	}

	design := layout.NewDesign(path)
	templates := make(map[string]*model.HoleTemplate)
	for i, f := range fc.Features {
		label := fmt.Sprintf("Feature %d", i+1)
		layer, ok := featureLayer(f.Properties)
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: missing or non-integer %q property, skipped", label, LayerProperty))
			continue
		}

		if h, ok := featureHole(f.Properties, layer); ok {
			tmpl := templates[h.id]
			if tmpl == nil {
				tmpl = model.NewHoleTemplate(h.spec.Kind, h.spec.Size, layer)
				tmpl.ID = h.id
				templates[h.id] = tmpl
			}
			if tmpl.Spec == h.spec {
				design.AddInstance(tmpl, h.origin)
				result.Instances++
				continue
			}
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: template %s redefined as %s, kept as polygon", label, h.id, h.spec.Describe()))
		}

		var polys []orb.Polygon
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			polys = []orb.Polygon{g}
		case orb.MultiPolygon:
			polys = g
		default:
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: unsupported geometry %s, skipped", label, geometryType(f.Geometry)))
			continue
		}

		for _, p := range polys {
			if err := design.AddPolygon(layer, p); err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: dropped invalid shape: %v", label, err))
				continue
			}
			result.Polygons++
		}
	}

	result.Design = design
	if result.Polygons == 0 && result.Instances == 0 {
		result.Errors = append(result.Errors, "No polygons found in GeoJSON file")
	}
	return result
}

func featureLayer(props geojson.Properties) (int, bool) {
	switch v := props[LayerProperty].(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	default:
		return 0, false
	}
}

type featureHoleProps struct {
	id     string
	spec   model.HoleSpec
	origin orb.Point
}

func featureHole(props geojson.Properties, layer int) (featureHoleProps, bool) {
	var h featureHoleProps
	id, ok := props["template"].(string)
	if !ok || id == "" {
		return h, false
	}
	kindName, _ := props["hole_type"].(string)
	kind, ok := model.ParseHoleType(kindName)
	if !ok {
		return h, false
	}
	size, ok := props["hole_size"].(float64)
	if !ok || !(size > 0) || math.IsInf(size, 0) {
		return h, false
	}
	origin, ok := props["origin"].([]interface{})
	if !ok || len(origin) != 2 {
		return h, false
	}
	x, okX := origin[0].(float64)
	y, okY := origin[1].(float64)
	if !okX || !okY {
		return h, false
	}
	h.id = id
	h.spec = model.HoleSpec{Kind: kind, Size: size, Layer: layer}
	h.origin = orb.Point{x, y}
	return h, true
}

func geometryType(g orb.Geometry) string {
	if g == nil {
		return "<none>"
	}
	return g.GeoJSONType()
}

// ImportDesign dispatches on the file extension: .geojson and .json go to
// ImportGeoJSON, everything else to ImportDXF.
func ImportDesign(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return ImportGeoJSON(path)
	default:
		return ImportDXF(path)
	}
}
