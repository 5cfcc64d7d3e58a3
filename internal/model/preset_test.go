package model

import "testing"

func TestNewHolePreset(t *testing.T) {
	s := DefaultHoleSettings()
	s.GridSize = 3
	p := NewHolePreset("vent", "board venting", s)

	if p.ID == "" || p.CreatedAt == "" || p.CreatedAt != p.UpdatedAt {
		t.Errorf("unexpected metadata %+v", p)
	}
	if p.Name != "vent" || p.Description != "board venting" || p.Settings.GridSize != 3 {
		t.Errorf("unexpected preset %+v", p)
	}
}

func TestPresetStore_PutRemoveFind(t *testing.T) {
	store := NewPresetStore()
	a := NewHolePreset("a", "", DefaultHoleSettings())
	store.Put(a)
	store.Put(NewHolePreset("b", "", DefaultHoleSettings()))

	if names := store.Names(); len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("unexpected names %v", names)
	}

	updated := DefaultHoleSettings()
	updated.HoleSize = 9
	store.Put(NewHolePreset("a", "changed", updated))
	if len(store.Presets) != 2 {
		t.Fatalf("Put with an existing name should replace, got %d presets", len(store.Presets))
	}
	found := store.FindByName("a")
	if found == nil || found.Settings.HoleSize != 9 || found.Description != "changed" {
		t.Fatalf("unexpected preset %+v", found)
	}
	if found.ID != a.ID || found.CreatedAt != a.CreatedAt {
		t.Error("replacing a preset should keep its ID and creation time")
	}

	if !store.Remove(a.ID) {
		t.Error("expected removal by ID")
	}
	if !store.Remove("b") {
		t.Error("expected removal by name")
	}
	if store.Remove("b") {
		t.Error("removing twice should report false")
	}
	if store.FindByName("a") != nil || len(store.Presets) != 0 {
		t.Error("store should be empty")
	}
}
