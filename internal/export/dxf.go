package export

import (
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/fluxholes/internal/layout"
	"github.com/piwi3910/fluxholes/internal/model"
)

// ExportDXF writes a design to a DXF file. Every polygon ring becomes a
// closed LWPOLYLINE on the layer named after its layer number. Circle holes
// are written as CIRCLE entities, square holes as closed LWPOLYLINEs.
func ExportDXF(path string, d *layout.Design) error {
	dw := dxf.NewDrawing()

	for _, layer := range d.Layers() {
		polys := d.RawPolygons(layer)
		if len(polys) == 0 {
			continue
		}
		if err := useLayer(dw, layer); err != nil {
			return err
		}
		for _, poly := range polys {
			for _, ring := range poly {
				if _, err := dw.LwPolyline(true, ringVertices(ring)...); err != nil {
					return fmt.Errorf("failed to write polygon on layer %d: %w", layer, err)
				}
			}
		}
	}

	for _, inst := range d.Instances() {
		spec := inst.Template.Spec
		if err := useLayer(dw, spec.Layer); err != nil {
			return err
		}
		var err error
		switch spec.Kind {
		case model.HoleCircle:
			_, err = dw.Circle(inst.Origin[0], inst.Origin[1], 0, spec.Size)
		default:
			_, err = dw.LwPolyline(true, ringVertices(inst.Outline()[0])...)
		}
		if err != nil {
			return fmt.Errorf("failed to write hole at (%g, %g): %w", inst.Origin[0], inst.Origin[1], err)
		}
	}

	if err := dw.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write DXF file: %w", err)
	}
	return nil
}

// useLayer makes the layer current, creating it on first use.
func useLayer(dw *drawing.Drawing, layer int) error {
	name := strconv.Itoa(layer)
	if err := dw.ChangeLayer(name); err == nil {
		return nil
	}
	if _, err := dw.AddLayer(name, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add layer %s: %w", name, err)
	}
	return nil
}

// ringVertices drops the closing point; LWPOLYLINE closure is a flag.
func ringVertices(ring orb.Ring) [][]float64 {
	n := len(ring)
	if ring.Closed() {
		n--
	}
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = []float64{ring[i][0], ring[i][1]}
	}
	return out
}
