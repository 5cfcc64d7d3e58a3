package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/fluxholes/internal/model"
)

// Run is one placement run as shown in reports and drill tables.
type Run struct {
	Name   string
	Result model.HoleResult
}

// RunStamp holds the run metadata encoded into a report's QR stamp.
type RunStamp struct {
	RunID      string  `json:"run"`
	Name       string  `json:"name"`
	GridType   string  `json:"grid_type"`
	GridSize   float64 `json:"grid_size"`
	Hole       string  `json:"hole"`
	HoleLayer  int     `json:"hole_layer"`
	ZoneLayer  int     `json:"zone_layer"`
	Candidates int     `json:"candidates"`
	Accepted   int     `json:"accepted"`
	TemplateID string  `json:"template,omitempty"`
}

// Stamp layout constants (mm).
const (
	stampWidth   = 88.0
	stampHeight  = 30.0
	qrSize       = 26.0
	stampPadding = 2.0
)

// NewRunStamp extracts the stamp data for a run.
func NewRunStamp(run Run) RunStamp {
	r := run.Result
	s := RunStamp{
		RunID:      r.RunID,
		Name:       run.Name,
		GridType:   string(r.Settings.GridType),
		GridSize:   r.Settings.GridSize,
		Hole:       model.HoleSpec{Kind: r.Settings.HoleType, Size: r.Settings.HoleSize}.Describe(),
		HoleLayer:  r.Settings.HoleLayer,
		ZoneLayer:  r.Settings.HoleZoneLayer,
		Candidates: r.Candidates,
		Accepted:   r.Accepted(),
	}
	if r.Template != nil {
		s.TemplateID = r.Template.ID
	}
	return s
}

// CollectRunStamps returns one stamp per run, in order.
func CollectRunStamps(runs []Run) []RunStamp {
	stamps := make([]RunStamp, 0, len(runs))
	for _, r := range runs {
		stamps = append(stamps, NewRunStamp(r))
	}
	return stamps
}

// renderStamp draws a bordered stamp with the QR code on the right and
// the run summary on the left.
func renderStamp(pdf *fpdf.Fpdf, x, y float64, stamp RunStamp, index int) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, stampWidth, stampHeight, "D")

	qrData, err := json.Marshal(stamp)
	if err != nil {
		return fmt.Errorf("failed to marshal run stamp: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%d_%s", index, stamp.RunID)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	qrX := x + stampWidth - qrSize - stampPadding
	qrY := y + (stampHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + stampPadding
	textW := stampWidth - qrSize - 3*stampPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+stampPadding)
	name := stamp.Name
	if pdf.GetStringWidth(name) > textW {
		for len(name) > 0 && pdf.GetStringWidth(name+"...") > textW {
			name = name[:len(name)-1]
		}
		name += "..."
	}
	pdf.CellFormat(textW, 4.5, name, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	lines := []string{
		fmt.Sprintf("%s grid %g", stamp.GridType, stamp.GridSize),
		stamp.Hole,
		fmt.Sprintf("Layer %d -> %d", stamp.ZoneLayer, stamp.HoleLayer),
		fmt.Sprintf("%d / %d placed", stamp.Accepted, stamp.Candidates),
	}
	for i, line := range lines {
		pdf.SetXY(textX, y+stampPadding+5+float64(i)*3.8)
		pdf.CellFormat(textW, 3.5, line, "", 1, "L", false, 0, "")
	}

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+stampHeight-stampPadding-3)
	pdf.CellFormat(textW, 3, "Run "+stamp.RunID, "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}
