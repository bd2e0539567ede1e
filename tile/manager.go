// tile/manager.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tile

import (
	"github.com/atlasfg/atlas/log"
)

// Manager keeps track of tiles scheduled for processing and drives them
// forward one DoSomeWork step per main-loop tick, per tile (spec §4.6).
type Manager struct {
	tiles []*Tile
	cfg   Config
	lg    *log.Logger
}

func NewManager(cfg Config, lg *log.Logger) *Manager {
	return &Manager{cfg: cfg, lg: lg}
}

// Add schedules tasks on the tile containing (lat, lon), creating it if
// the manager doesn't already have one for that region.
func (m *Manager) Add(lat, lon float64, tasks Task) *Tile {
	name, _, _, _ := LatLonToTile(lat, lon)
	if t := m.TileWithName(name); t != nil {
		t.SetTasks(t.Tasks() | tasks)
		return t
	}

	t := New(lat, lon, m.cfg, m.lg)
	t.SetTasks(tasks)
	m.tiles = append(m.tiles, t)
	return t
}

// Remove aborts t's current task (if any) and drops it from the queue.
func (m *Manager) Remove(t *Tile) {
	for i, x := range m.tiles {
		if x == t {
			x.Abort()
			m.tiles = append(m.tiles[:i], m.tiles[i+1:]...)
			return
		}
	}
}

func (m *Manager) NumTiles() int   { return len(m.tiles) }
func (m *Manager) Tiles() []*Tile { return m.tiles }

func (m *Manager) NthTile(n int) *Tile {
	if n < 0 || n >= len(m.tiles) {
		return nil
	}
	return m.tiles[n]
}

func (m *Manager) TileAtLatLon(lat, lon float64) *Tile {
	name, _, _, _ := LatLonToTile(lat, lon)
	return m.TileWithName(name)
}

func (m *Manager) TileWithName(name string) *Tile {
	for _, t := range m.tiles {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// CheckScenery drives every pending tile forward by one step, dropping
// any that have finished every scheduled task. It returns the number of
// tiles still in progress.
func (m *Manager) CheckScenery() int {
	live := m.tiles[:0]
	for _, t := range m.tiles {
		if t.DoSomeWork() != TaskNone {
			live = append(live, t)
		}
	}
	m.tiles = live
	return len(m.tiles)
}
