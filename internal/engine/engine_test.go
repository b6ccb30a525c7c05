package engine

import (
	"testing"
	"time"

	"github.com/bookself/bookself/internal/store"
)

func TestEngineSingleOwnerStart(t *testing.T) {
	e := New(store.New(), nil, time.Hour)
	defer e.Stop()

	if !e.Start() {
		t.Fatal("first Start() = false, want true")
	}
	if e.Start() {
		t.Error("second Start() = true, want false")
	}
	if !e.Running() {
		t.Error("Running() = false after Start")
	}
}

func TestEngineStopThenRestart(t *testing.T) {
	e := New(store.New(), nil, time.Hour)

	e.Start()
	e.Stop()
	if e.Running() {
		t.Fatal("Running() = true after Stop")
	}
	// Stop when already stopped is a no-op.
	e.Stop()

	if !e.Start() {
		t.Error("Start() after Stop = false, want true")
	}
	e.Stop()
}

func TestEngineTick(t *testing.T) {
	state := store.New()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	state.ReplacePages(map[string]store.KnowledgePage{
		"1": {ID: "1", Retention: 100, LastUpdated: now.Add(-10 * time.Hour)},
	})

	e := New(state, nil, time.Hour)
	e.Tick(now)

	page, _ := state.GetPage("1")
	if page.Retention != 99 {
		t.Errorf("retention = %d, want 99", page.Retention)
	}

	// A second tick at the same instant leaves everything untouched.
	before := state.Pages()
	e.Tick(now)
	after := state.Pages()
	if before["1"].Retention != after["1"].Retention {
		t.Errorf("retention changed on repeat tick: %d -> %d",
			before["1"].Retention, after["1"].Retention)
	}
}

func TestEngineTickSnapshotIsolation(t *testing.T) {
	state := store.New()
	now := time.Now()
	state.ReplacePages(map[string]store.KnowledgePage{
		"1": {ID: "1", Retention: 100, LastUpdated: now.Add(-100 * time.Hour)},
	})

	snapshot := state.Pages()
	New(state, nil, time.Hour).Tick(now)

	// The snapshot taken before the tick is unaffected.
	if snapshot["1"].Retention != 100 {
		t.Errorf("snapshot retention = %d, want 100", snapshot["1"].Retention)
	}
}
