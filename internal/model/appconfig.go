package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Defaults applied when a command does not override them
	DefaultZone  ZoneSettings    `json:"default_zone"`
	DefaultHoles HoleSettings    `json:"default_holes"`
	Machine      MachineSettings `json:"machine"`

	// Application preferences
	Workers     int      `json:"workers"` // Parallel filter workers, 0 or 1 = sequential
	RecentFiles []string `json:"recent_files"`
}

// maxRecentFiles bounds the RecentFiles list.
const maxRecentFiles = 10

// DefaultAppConfig returns an AppConfig populated with the built-in defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		DefaultZone:  DefaultZoneSettings(),
		DefaultHoles: DefaultHoleSettings(),
		Machine:      DefaultMachineSettings(),
		Workers:      1,
		RecentFiles:  []string{},
	}
}

// ApplyToZone copies the stored zone defaults into s.
func (c AppConfig) ApplyToZone(s *ZoneSettings) {
	s.CircuitLayers = append([]int(nil), c.DefaultZone.CircuitLayers...)
	s.CircuitMargin = c.DefaultZone.CircuitMargin
	s.ExclusionLayers = append([]int(nil), c.DefaultZone.ExclusionLayers...)
	s.SubgridCount = c.DefaultZone.SubgridCount
}

// ApplyToHoles copies the stored hole defaults into s, including the
// configured worker count.
func (c AppConfig) ApplyToHoles(s *HoleSettings) {
	*s = c.DefaultHoles
	s.Workers = c.Workers
}

// AddRecentFile moves path to the front of RecentFiles, dropping
// duplicates and trimming the list.
func (c *AppConfig) AddRecentFile(path string) {
	files := []string{path}
	for _, f := range c.RecentFiles {
		if f != path {
			files = append(files, f)
		}
	}
	if len(files) > maxRecentFiles {
		files = files[:maxRecentFiles]
	}
	c.RecentFiles = files
}
