package model

import "fmt"

// MachineSettings configures the G-code program that machines placed holes.
// Distances are in millimetres, rates in mm/min.
type MachineSettings struct {
	ToolDiameter  float64 `json:"tool_diameter"`
	FeedRate      float64 `json:"feed_rate"`
	PlungeRate    float64 `json:"plunge_rate"`
	RapidRate     float64 `json:"rapid_rate"` // Only used for time estimates
	SpindleSpeed  int     `json:"spindle_speed"`
	SafeZ         float64 `json:"safe_z"`
	Depth         float64 `json:"depth"`      // Final hole depth
	PassDepth     float64 `json:"pass_depth"` // Depth per pass or peck
	DecimalPlaces int     `json:"decimal_places"`
}

func DefaultMachineSettings() MachineSettings {
	return MachineSettings{
		ToolDiameter:  0.8,
		FeedRate:      600,
		PlungeRate:    200,
		RapidRate:     3000,
		SpindleSpeed:  12000,
		SafeZ:         2,
		Depth:         1.6,
		PassDepth:     1.6,
		DecimalPlaces: 3,
	}
}

// Validate checks that the machine settings can produce a program.
func (m MachineSettings) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"tool diameter", m.ToolDiameter},
		{"feed rate", m.FeedRate},
		{"plunge rate", m.PlungeRate},
		{"rapid rate", m.RapidRate},
		{"safe Z", m.SafeZ},
		{"depth", m.Depth},
		{"pass depth", m.PassDepth},
	} {
		if !(f.v > 0) {
			return fmt.Errorf("%w: %s must be > 0, got %g", ErrInvalidSettings, f.name, f.v)
		}
	}
	if m.DecimalPlaces < 0 || m.DecimalPlaces > 6 {
		return fmt.Errorf("%w: decimal places must be 0-6, got %d", ErrInvalidSettings, m.DecimalPlaces)
	}
	return nil
}

// Passes returns how many passes reach Depth at PassDepth per pass.
func (m MachineSettings) Passes() int {
	n := int(m.Depth / m.PassDepth)
	if float64(n)*m.PassDepth < m.Depth-1e-9 {
		n++
	}
	return max(n, 1)
}
