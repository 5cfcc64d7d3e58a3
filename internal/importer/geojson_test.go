package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

const sampleCollection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"layer": 1},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[100,0],[100,80],[0,80],[0,0]]]}},
    {"type": "Feature", "properties": {"layer": "2"},
     "geometry": {"type": "MultiPolygon", "coordinates": [
        [[[10,10],[20,10],[20,20],[10,20],[10,10]]],
        [[[30,30],[40,30],[40,40],[30,40],[30,30]]]]}},
    {"type": "Feature", "properties": {"name": "no layer"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}},
    {"type": "Feature", "properties": {"layer": 3},
     "geometry": {"type": "LineString", "coordinates": [[0,0],[5,5]]}},
    {"type": "Feature", "properties": {"layer": 1.5},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}},
    {"type": "Feature", "properties": {"layer": 4},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[2,2],[2,0],[0,2],[0,0]]]}}
  ]
}`

// ─── ImportGeoJSON Tests ───────────────────────────────────

func TestImportGeoJSON(t *testing.T) {
	path := writeTemp(t, "design.geojson", sampleCollection)
	result := ImportGeoJSON(path)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Polygons != 3 {
		t.Errorf("expected 3 polygons, got %d", result.Polygons)
	}
	if n := len(result.Design.Polygons(1)); n != 1 {
		t.Errorf("expected 1 polygon on layer 1, got %d", n)
	}
	if n := len(result.Design.Polygons(2)); n != 2 {
		t.Errorf("expected 2 polygons on layer 2, got %d", n)
	}
	if n := len(result.Design.Polygons(4)); n != 0 {
		t.Errorf("self-intersecting shape should be dropped, got %d", n)
	}
	if len(result.Warnings) != 4 {
		t.Errorf("expected 4 warnings, got %d: %v", len(result.Warnings), result.Warnings)
	}
	if !strings.Contains(strings.Join(result.Warnings, "\n"), "LineString") {
		t.Errorf("expected unsupported geometry warning, got %v", result.Warnings)
	}
}

const holeCollection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature",
     "properties": {"layer": 9, "template": "a1", "hole_type": "square", "hole_size": 2, "origin": [5, 5]},
     "geometry": {"type": "Polygon", "coordinates": [[[4,4],[6,4],[6,6],[4,6],[4,4]]]}},
    {"type": "Feature",
     "properties": {"layer": 9, "template": "a1", "hole_type": "square", "hole_size": 2, "origin": [9, 5]},
     "geometry": {"type": "Polygon", "coordinates": [[[8,4],[10,4],[10,6],[8,6],[8,4]]]}},
    {"type": "Feature",
     "properties": {"layer": 9, "template": "a1", "hole_type": "square", "hole_size": 3, "origin": [20, 5]},
     "geometry": {"type": "Polygon", "coordinates": [[[18.5,3.5],[21.5,3.5],[21.5,6.5],[18.5,6.5],[18.5,3.5]]]}},
    {"type": "Feature",
     "properties": {"layer": 9, "template": "b2", "hole_type": "square"},
     "geometry": {"type": "Polygon", "coordinates": [[[30,30],[31,30],[31,31],[30,31],[30,30]]]}}
  ]
}`

func TestImportGeoJSON_HoleInstances(t *testing.T) {
	path := writeTemp(t, "holes.geojson", holeCollection)
	result := ImportGeoJSON(path)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Instances != 2 {
		t.Fatalf("expected 2 instances, got %d", result.Instances)
	}
	// a redefined template and an incomplete hole fall back to polygons
	if result.Polygons != 2 {
		t.Errorf("expected 2 polygons, got %d", result.Polygons)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "redefined") {
		t.Errorf("expected one redefinition warning, got %v", result.Warnings)
	}

	insts := result.Design.Instances()
	if insts[0].Template != insts[1].Template {
		t.Error("instances of one template ID should share the template")
	}
	if id := insts[0].Template.ID; id != "a1" {
		t.Errorf("expected template ID a1, got %q", id)
	}
	if o := insts[1].Origin; o[0] != 9 || o[1] != 5 {
		t.Errorf("expected origin (9, 5), got %v", o)
	}
	if n := len(result.Design.Polygons(9)); n != 4 {
		t.Errorf("expected 4 outlines on layer 9, got %d", n)
	}
}

func TestImportGeoJSON_NoPolygons(t *testing.T) {
	path := writeTemp(t, "empty.geojson", `{"type":"FeatureCollection","features":[]}`)
	result := ImportGeoJSON(path)
	if len(result.Errors) == 0 {
		t.Error("expected error for empty collection")
	}
}

func TestImportGeoJSON_Malformed(t *testing.T) {
	path := writeTemp(t, "bad.geojson", `{"type":`)
	result := ImportGeoJSON(path)
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "Cannot parse") {
		t.Errorf("expected parse error, got %v", result.Errors)
	}
}

func TestImportDesign_Dispatch(t *testing.T) {
	path := writeTemp(t, "design.json", sampleCollection)
	result := ImportDesign(path)
	if result.Polygons != 3 {
		t.Errorf("expected .json to import as GeoJSON, got %d polygons (%v)", result.Polygons, result.Errors)
	}

	result = ImportDesign("/nonexistent/design.dxf")
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "DXF") {
		t.Errorf("expected DXF error, got %v", result.Errors)
	}
}
