// atlas/controller_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package atlas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/atlasfg/atlas/log"
	"github.com/atlasfg/atlas/navdb"
	"github.com/atlasfg/atlas/palette"
	"github.com/atlasfg/atlas/search"
	"github.com/atlasfg/atlas/tile"
)

func newTestController(t *testing.T) *Controller {
	t.Helper()
	db := &navdb.DB{Searcher: search.New()}
	lg := log.New(false, "error", t.TempDir())
	return NewController(db, tile.Config{AtlasRoot: t.TempDir()}, lg)
}

func writeTestTrackFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	contents := "$GPRMC,120000,A,3700.000,N,12200.000,W,100.0,90.0,010118,0.0,E*00\n" +
		"$GPGGA,120000,3700.000,N,12200.000,W,1,08,0.9,5000,F,0.0,M,,*00\n" +
		"$PATLA,113.00,090.0,112.00,180.0,400*00\n"
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestSetterPublishesOnlyOnChange(t *testing.T) {
	c := newTestController(t)
	var fired int
	c.Subscribe(EventLightingOn, func(Event) { fired++ })

	c.SetLightingOn(false) // flags.LightingOn already false: no-op
	if fired != 0 {
		t.Fatalf("fired = %d after no-op set, want 0", fired)
	}

	c.SetLightingOn(true)
	if fired != 1 {
		t.Fatalf("fired = %d after real change, want 1", fired)
	}
	if !c.Flags().LightingOn {
		t.Errorf("Flags().LightingOn = false, want true")
	}

	c.SetLightingOn(true) // repeat: still a no-op
	if fired != 1 {
		t.Errorf("fired = %d after repeat set, want 1", fired)
	}
}

func TestLoadTrackPublishesFlightTrackList(t *testing.T) {
	c := newTestController(t)
	path := writeTestTrackFile(t, t.TempDir(), "flight.txt")

	var fired int
	c.Subscribe(EventFlightTrackList, func(Event) { fired++ })

	tr, err := c.LoadTrack(path)
	if err != nil {
		t.Fatalf("LoadTrack: %v", err)
	}
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
	if c.Tracks.Len() != 1 {
		t.Errorf("Tracks.Len() = %d, want 1", c.Tracks.Len())
	}

	c.SetCurrentTrack(tr)
	if c.CurrentTrack() != tr {
		t.Errorf("CurrentTrack() did not return the track just set")
	}
}

func TestRemoveTrackClearsCurrentTrack(t *testing.T) {
	c := newTestController(t)
	path := writeTestTrackFile(t, t.TempDir(), "flight.txt")

	tr, err := c.LoadTrack(path)
	if err != nil {
		t.Fatalf("LoadTrack: %v", err)
	}
	c.SetCurrentTrack(tr)

	var newTrackEvents int
	c.Subscribe(EventNewFlightTrack, func(Event) { newTrackEvents++ })

	c.RemoveTrack(tr)

	if c.CurrentTrack() != nil {
		t.Errorf("CurrentTrack() = %v after removing it, want nil", c.CurrentTrack())
	}
	if newTrackEvents != 1 {
		t.Errorf("NewFlightTrack fired %d times removing the current track, want 1", newTrackEvents)
	}
	if c.Tracks.Len() != 0 {
		t.Errorf("Tracks.Len() = %d after removal, want 0", c.Tracks.Len())
	}
}

func TestLoadPaletteFiresNewPaletteOnlyOnce(t *testing.T) {
	c := newTestController(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "default.ap")
	contents := "base 0\nelevation 0 0 100 0\n"
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing palette: %v", err)
	}

	var newPalette, paletteList int
	c.Subscribe(EventNewPalette, func(Event) { newPalette++ })
	c.Subscribe(EventPaletteList, func(Event) { paletteList++ })

	if _, err := c.LoadPalette(path); err != nil {
		t.Fatalf("LoadPalette: %v", err)
	}
	if _, err := c.LoadPalette(path); err != nil {
		t.Fatalf("second LoadPalette: %v", err)
	}

	if newPalette != 1 {
		t.Errorf("NewPalette fired %d times, want 1 (second load dedups by path)", newPalette)
	}
	if paletteList != 2 {
		t.Errorf("PaletteList fired %d times, want 2 (fires on every call)", paletteList)
	}
}

func TestSetCurrentPaletteNoopWhenUnchanged(t *testing.T) {
	c := newTestController(t)
	var fired int
	c.Subscribe(EventPalette, func(Event) { fired++ })

	c.SetCurrentPalette(palette.NaP)
	if fired != 0 {
		t.Errorf("fired = %d selecting the already-current NaP index, want 0", fired)
	}
}
