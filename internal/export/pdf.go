// Package export writes designs and placement runs to files: DXF and
// GeoJSON designs, PDF placement reports and drill tables.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/paulmach/orb"

	"github.com/piwi3910/fluxholes/internal/layout"
	"github.com/piwi3910/fluxholes/internal/model"
)

// layerColor represents an RGB color for a layer outline.
type layerColor struct {
	R, G, B int
}

var layerColors = []layerColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	listRowH     = 4.5
	listCols     = 4
)

// ExportReport generates a PDF report for one or more placement runs on d.
// The first page summarises every run and carries a QR stamp per run; each
// run then gets a plot page and a coordinate listing.
func ExportReport(path string, d *layout.Design, runs []Run) error {
	if len(runs) == 0 {
		return fmt.Errorf("no runs to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	if err := renderSummaryPage(pdf, d, runs); err != nil {
		return err
	}

	for _, run := range runs {
		pdf.AddPage()
		renderPlotPage(pdf, d, run)
		renderCoordinates(pdf, run)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF file: %w", err)
	}
	return nil
}

// renderSummaryPage draws the overview table and the run stamps.
func renderSummaryPage(pdf *fpdf.Fpdf, d *layout.Design, runs []Run) error {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Hole Placement Summary: "+d.Name, "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	b := d.Bounds()
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(200, 6, fmt.Sprintf("Design extent: (%.3f, %.3f) - (%.3f, %.3f)   Layers: %d",
		b.Min[0], b.Min[1], b.Max[0], b.Max[1], len(d.Layers())), "", 0, "L", false, 0, "")
	y += 10

	colWidths := []float64{45, 30, 30, 25, 25, 25, 25, 25, 37}
	headers := []string{"Run", "Grid", "Hole", "Layers", "Candidates", "Placed", "Outside", "Excluded", "Hole Area"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, run := range runs {
		r := run.Result
		rowData := []string{
			run.Name,
			fmt.Sprintf("%s %g", r.Settings.GridType, r.Settings.GridSize),
			model.HoleSpec{Kind: r.Settings.HoleType, Size: r.Settings.HoleSize}.Describe(),
			fmt.Sprintf("%d -> %d", r.Settings.HoleZoneLayer, r.Settings.HoleLayer),
			fmt.Sprintf("%d", r.Candidates),
			fmt.Sprintf("%d (%.1f%%)", r.Accepted(), r.AcceptanceRate()),
			fmt.Sprintf("%d", r.RejectedOutside),
			fmt.Sprintf("%d", r.RejectedExcluded),
			fmt.Sprintf("%.2f", r.TotalHoleArea()),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		xPos = marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
		if y > pageHeight-marginBottom-stampHeight-10 {
			pdf.AddPage()
			y = marginTop
		}
	}

	// Stamps wrap across the page and continue on new pages
	y += 8
	x := marginLeft
	for i, stamp := range CollectRunStamps(runs) {
		if x+stampWidth > pageWidth-marginRight {
			x = marginLeft
			y += stampHeight + 4
		}
		if y+stampHeight > pageHeight-marginBottom {
			pdf.AddPage()
			x, y = marginLeft, marginTop
		}
		if err := renderStamp(pdf, x, y, stamp, i); err != nil {
			return fmt.Errorf("failed to render stamp for %q: %w", stamp.Name, err)
		}
		x += stampWidth + 4
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by fluxholes", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}

// plotFrame maps design coordinates onto the page, y pointing up.
type plotFrame struct {
	bound            orb.Bound
	scale            float64
	offsetX, offsetY float64
	canvasH          float64
}

func (f plotFrame) point(p orb.Point) (float64, float64) {
	return f.offsetX + (p[0]-f.bound.Min[0])*f.scale,
		f.offsetY + f.canvasH - (p[1]-f.bound.Min[1])*f.scale
}

func newPlotFrame(b orb.Bound) plotFrame {
	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight

	w, h := b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]
	scale := 1.0
	if w > 0 && h > 0 {
		scale = math.Min(drawWidth/w, drawHeight/h)
	}
	canvasW := w * scale
	return plotFrame{
		bound:   b,
		scale:   scale,
		offsetX: marginLeft + (drawWidth-canvasW)/2,
		offsetY: drawAreaTop,
		canvasH: h * scale,
	}
}

// renderPlotPage draws the design outlines and the run's holes.
func renderPlotPage(pdf *fpdf.Fpdf, d *layout.Design, run Run) {
	r := run.Result
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, "Run: "+run.Name, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Run %s | %d of %d candidates placed | %d outside zone | %d excluded",
		r.RunID, r.Accepted(), r.Candidates, r.RejectedOutside, r.RejectedExcluded)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	frame := newPlotFrame(d.Bounds())

	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.2)
	x0, y0 := frame.point(orb.Point{frame.bound.Min[0], frame.bound.Max[1]})
	pdf.Rect(x0, y0, (frame.bound.Max[0]-frame.bound.Min[0])*frame.scale, frame.canvasH, "D")

	layers := d.Layers()
	for i, layer := range layers {
		col := layerColors[i%len(layerColors)]
		pdf.SetDrawColor(col.R, col.G, col.B)
		pdf.SetLineWidth(0.3)
		if layer == r.Settings.HoleZoneLayer {
			pdf.SetLineWidth(0.6)
		}
		for _, poly := range d.RawPolygons(layer) {
			for _, ring := range poly {
				pts := make([]fpdf.PointType, 0, len(ring))
				for _, p := range ring {
					px, py := frame.point(p)
					pts = append(pts, fpdf.PointType{X: px, Y: py})
				}
				pdf.Polygon(pts, "D")
			}
		}
	}

	pdf.SetFillColor(30, 30, 30)
	size := r.Settings.HoleSize * frame.scale
	for _, pl := range r.Placements {
		px, py := frame.point(pl.Point())
		if r.Settings.HoleType == model.HoleSquare {
			s := math.Max(size, 0.4)
			pdf.Rect(px-s/2, py-s/2, s, s, "F")
		} else {
			pdf.Circle(px, py, math.Max(size, 0.2), "F")
		}
	}

	drawLayerLegend(pdf, layers, r.Settings.HoleZoneLayer, frame.offsetY+frame.canvasH+4)
}

// drawLayerLegend renders one swatch per layer below the plot.
func drawLayerLegend(pdf *fpdf.Fpdf, layers []int, zoneLayer int, startY float64) {
	if len(layers) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(20, 4, "Layers:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 22
	for i, layer := range layers {
		col := layerColors[i%len(layerColors)]
		label := fmt.Sprintf("%d", layer)
		if layer == zoneLayer {
			label += " (zone)"
		}
		labelW := pdf.GetStringWidth(label) + 6
		if xPos+labelW > pageWidth-marginRight {
			startY += 5
			xPos = marginLeft
		}
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")
		xPos += labelW + 2
	}
}

// renderCoordinates lists every placement in columns, adding pages as needed.
func renderCoordinates(pdf *fpdf.Fpdf, run Run) {
	placements := run.Result.Placements
	if len(placements) == 0 {
		return
	}

	colRows := (pageHeight - drawAreaTop - marginBottom - listRowH) / listRowH
	rowsPerCol := int(colRows)
	perPage := rowsPerCol * listCols
	colW := (pageWidth - marginLeft - marginRight) / listCols

	for start := 0; start < len(placements); start += perPage {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetXY(marginLeft, marginTop)
		title := fmt.Sprintf("Hole Coordinates: %s (%d-%d of %d)", run.Name,
			start+1, min(start+perPage, len(placements)), len(placements))
		pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

		for c := 0; c < listCols; c++ {
			x := marginLeft + float64(c)*colW
			pdf.SetFont("Helvetica", "B", 8)
			pdf.SetFillColor(230, 230, 230)
			pdf.SetXY(x, drawAreaTop)
			pdf.CellFormat(14, listRowH, "#", "1", 0, "C", true, 0, "")
			pdf.CellFormat((colW-16)/2, listRowH, "X", "1", 0, "C", true, 0, "")
			pdf.CellFormat((colW-16)/2, listRowH, "Y", "1", 0, "C", true, 0, "")
		}

		pdf.SetFont("Helvetica", "", 8)
		end := min(start+perPage, len(placements))
		for i := start; i < end; i++ {
			k := i - start
			x := marginLeft + float64(k/rowsPerCol)*colW
			y := drawAreaTop + listRowH*float64(k%rowsPerCol+1)
			pl := placements[i]
			pdf.SetXY(x, y)
			pdf.CellFormat(14, listRowH, fmt.Sprintf("%d", i+1), "LR", 0, "R", false, 0, "")
			pdf.CellFormat((colW-16)/2, listRowH, fmt.Sprintf("%.4f", pl.X), "LR", 0, "R", false, 0, "")
			pdf.CellFormat((colW-16)/2, listRowH, fmt.Sprintf("%.4f", pl.Y), "LR", 0, "R", false, 0, "")
		}
	}
}
