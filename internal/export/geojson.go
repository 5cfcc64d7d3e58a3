package export

import (
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"

	"github.com/piwi3910/fluxholes/internal/layout"
)

// ExportGeoJSON writes a design as a FeatureCollection. Each polygon and
// each placed hole becomes one feature with a numeric "layer" property,
// the format importer.ImportGeoJSON reads back. Hole features also carry
// the template ID, kind and size and the placement origin, so the importer
// rebuilds them as instances of shared templates.
func ExportGeoJSON(path string, d *layout.Design) error {
	fc := geojson.NewFeatureCollection()

	for _, layer := range d.Layers() {
		for _, poly := range d.RawPolygons(layer) {
			f := geojson.NewFeature(poly)
			f.Properties["layer"] = layer
			fc.Append(f)
		}
	}
	for _, inst := range d.Instances() {
		f := geojson.NewFeature(inst.Outline())
		f.Properties["layer"] = inst.Template.Spec.Layer
		f.Properties["template"] = inst.Template.ID
		f.Properties["hole_type"] = string(inst.Template.Spec.Kind)
		f.Properties["hole_size"] = inst.Template.Spec.Size
		f.Properties["origin"] = []float64{inst.Origin[0], inst.Origin[1]}
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write GeoJSON file: %w", err)
	}
	return nil
}
