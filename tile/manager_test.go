// tile/manager_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tile

import "testing"

func TestManagerAddDedupsByNameAndMergesTasks(t *testing.T) {
	m := NewManager(Config{}, nil)

	t1 := m.Add(36.7, -120.2, TaskSync)
	if m.NumTiles() != 1 {
		t.Fatalf("NumTiles() = %d after first Add, want 1", m.NumTiles())
	}

	t2 := m.Add(36.9, -120.1, TaskHiresMap) // same 1x1 tile as t1
	if m.NumTiles() != 1 {
		t.Fatalf("NumTiles() = %d after overlapping Add, want 1 (same tile)", m.NumTiles())
	}
	if t1 != t2 {
		t.Fatalf("Add returned a different *Tile for the same region")
	}
	if t1.Tasks() != TaskSync|TaskHiresMap {
		t.Errorf("Tasks() = %v, want TaskSync|TaskHiresMap (merged)", t1.Tasks())
	}

	m.Add(10.0, 10.0, TaskSync) // a different tile entirely
	if m.NumTiles() != 2 {
		t.Errorf("NumTiles() = %d after a non-overlapping Add, want 2", m.NumTiles())
	}
}

func TestManagerCheckSceneryDropsFinishedTiles(t *testing.T) {
	m := NewManager(Config{}, nil)
	tl := m.Add(36.7, -120.2, TaskSync)
	// Simulate a tile with nothing left to do without spawning a real
	// rsync subprocess: DoSomeWork on an empty task set is a no-op that
	// keeps returning TaskNone.
	tl.SetTasks(TaskNone)

	remaining := m.CheckScenery()
	if remaining != 0 {
		t.Errorf("CheckScenery() = %d, want 0 once the only tile finishes", remaining)
	}
	if m.NumTiles() != 0 {
		t.Errorf("NumTiles() = %d after the tile finished, want 0", m.NumTiles())
	}
}

func TestManagerTileAtLatLonAndWithName(t *testing.T) {
	m := NewManager(Config{}, nil)
	tl := m.Add(36.7, -120.2, TaskSync)

	if m.TileAtLatLon(36.9, -120.1) != tl {
		t.Errorf("TileAtLatLon did not find the tile covering that point")
	}
	if m.TileWithName("w121n36") != tl {
		t.Errorf("TileWithName did not find the tile by name")
	}
	if m.TileWithName("e000n00") != nil {
		t.Errorf("TileWithName found a tile for a name that was never added")
	}
}
