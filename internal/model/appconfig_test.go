package model

import "testing"

func TestDefaultAppConfigMatchesDefaults(t *testing.T) {
	cfg := DefaultAppConfig()
	if cfg.DefaultZone.CircuitMargin != DefaultZoneSettings().CircuitMargin {
		t.Errorf("zone defaults differ: %+v", cfg.DefaultZone)
	}
	if cfg.DefaultHoles != DefaultHoleSettings() {
		t.Errorf("hole defaults differ: %+v", cfg.DefaultHoles)
	}
	if cfg.RecentFiles == nil {
		t.Error("RecentFiles should not be nil")
	}
}

func TestApplyToZone(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.DefaultZone.CircuitLayers = []int{2, 4}
	cfg.DefaultZone.CircuitMargin = 3
	cfg.DefaultZone.SubgridCount = 10

	var s ZoneSettings
	cfg.ApplyToZone(&s)
	if s.CircuitMargin != 3 || s.SubgridCount != 10 || len(s.CircuitLayers) != 2 {
		t.Errorf("unexpected zone settings %+v", s)
	}

	s.CircuitLayers[0] = 99
	if cfg.DefaultZone.CircuitLayers[0] != 2 {
		t.Error("ApplyToZone must copy layer slices")
	}
}

func TestApplyToHoles(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.DefaultHoles.GridSize = 7
	cfg.Workers = 6

	var s HoleSettings
	cfg.ApplyToHoles(&s)
	if s.GridSize != 7 {
		t.Errorf("expected grid size 7, got %f", s.GridSize)
	}
	if s.Workers != 6 {
		t.Errorf("expected workers 6, got %d", s.Workers)
	}
}

func TestAddRecentFile(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.AddRecentFile("a.dxf")
	cfg.AddRecentFile("b.dxf")
	cfg.AddRecentFile("a.dxf")
	if len(cfg.RecentFiles) != 2 || cfg.RecentFiles[0] != "a.dxf" {
		t.Errorf("expected [a.dxf b.dxf], got %v", cfg.RecentFiles)
	}

	for i := 0; i < 20; i++ {
		cfg.AddRecentFile(string(rune('c'+i)) + ".dxf")
	}
	if len(cfg.RecentFiles) != maxRecentFiles {
		t.Errorf("expected %d recent files, got %d", maxRecentFiles, len(cfg.RecentFiles))
	}
}

func TestDefaultMachineSettingsValid(t *testing.T) {
	cfg := DefaultAppConfig()
	if cfg.Machine != DefaultMachineSettings() {
		t.Errorf("machine defaults differ: %+v", cfg.Machine)
	}
	if err := cfg.Machine.Validate(); err != nil {
		t.Errorf("default machine settings invalid: %v", err)
	}
}

func TestMachineSettingsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*MachineSettings)
	}{
		{"zero tool", func(m *MachineSettings) { m.ToolDiameter = 0 }},
		{"negative feed", func(m *MachineSettings) { m.FeedRate = -1 }},
		{"zero plunge", func(m *MachineSettings) { m.PlungeRate = 0 }},
		{"zero safe Z", func(m *MachineSettings) { m.SafeZ = 0 }},
		{"zero depth", func(m *MachineSettings) { m.Depth = 0 }},
		{"zero pass depth", func(m *MachineSettings) { m.PassDepth = 0 }},
		{"too many decimals", func(m *MachineSettings) { m.DecimalPlaces = 9 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DefaultMachineSettings()
			tt.modify(&m)
			if err := m.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestMachineSettingsPasses(t *testing.T) {
	tests := []struct {
		depth, pass float64
		want        int
	}{
		{1.6, 1.6, 1},
		{1.6, 0.5, 4},
		{1.5, 0.5, 3},
		{0.2, 1.0, 1},
	}
	for _, tt := range tests {
		m := DefaultMachineSettings()
		m.Depth, m.PassDepth = tt.depth, tt.pass
		if got := m.Passes(); got != tt.want {
			t.Errorf("Passes(%g/%g) = %d, want %d", tt.depth, tt.pass, got, tt.want)
		}
	}
}
