package model

import (
	"time"

	"github.com/google/uuid"
)

// HolePreset is a named, reusable set of placement parameters.
type HolePreset struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
	Settings    HoleSettings `json:"settings"`
}

// NewHolePreset creates a preset from the given settings.
func NewHolePreset(name, description string, settings HoleSettings) HolePreset {
	now := time.Now().UTC().Format(time.RFC3339)
	return HolePreset{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Settings:    settings,
	}
}

// PresetStore holds a collection of hole presets.
type PresetStore struct {
	Presets []HolePreset `json:"presets"`
}

// NewPresetStore creates an empty preset store.
func NewPresetStore() PresetStore {
	return PresetStore{
		Presets: []HolePreset{},
	}
}

// Put adds p, replacing any preset with the same name.
func (ps *PresetStore) Put(p HolePreset) {
	for i := range ps.Presets {
		if ps.Presets[i].Name == p.Name {
			p.ID = ps.Presets[i].ID
			p.CreatedAt = ps.Presets[i].CreatedAt
			ps.Presets[i] = p
			return
		}
	}
	ps.Presets = append(ps.Presets, p)
}

// Remove removes a preset by ID or name. Returns true if found and removed.
func (ps *PresetStore) Remove(key string) bool {
	for i, p := range ps.Presets {
		if p.ID == key || p.Name == key {
			ps.Presets = append(ps.Presets[:i], ps.Presets[i+1:]...)
			return true
		}
	}
	return false
}

// FindByName returns a pointer to the preset with the given name, or nil.
func (ps *PresetStore) FindByName(name string) *HolePreset {
	for i := range ps.Presets {
		if ps.Presets[i].Name == name {
			return &ps.Presets[i]
		}
	}
	return nil
}

// Names returns the preset names in stored order.
func (ps *PresetStore) Names() []string {
	names := make([]string, len(ps.Presets))
	for i, p := range ps.Presets {
		names[i] = p.Name
	}
	return names
}
