// atlas/controller.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package atlas

import (
	"github.com/atlasfg/atlas/flighttrack"
	"github.com/atlasfg/atlas/geo"
	"github.com/atlasfg/atlas/log"
	"github.com/atlasfg/atlas/navdb"
	"github.com/atlasfg/atlas/palette"
	"github.com/atlasfg/atlas/search"
	"github.com/atlasfg/atlas/tile"
)

// Controller is the sole mutator of every subsystem's state: the
// navaid database, the tile manager, the palette list, and the
// flight-track list (spec §5). Every operation that changes anything
// visible runs through one of its methods, so the NotificationBus sees
// every change and only that change.
type Controller struct {
	*NotificationBus

	DB       *navdb.DB
	Tiles    *tile.Manager
	Palettes *palette.List
	Tracks   *flighttrack.List

	flags Flags

	currentTrack *flighttrack.Track

	lg *log.Logger
}

// NewController wires up a controller around an already-loaded navaid
// database and a tile-manager configuration. The palette list and
// flight-track list start out empty; callers populate them with
// LoadPaletteDir and LoadTrack/AddUDPTrack/AddSerialTrack.
func NewController(db *navdb.DB, tileCfg tile.Config, lg *log.Logger) *Controller {
	return &Controller{
		NotificationBus: NewNotificationBus(),
		DB:              db,
		Tiles:           tile.NewManager(tileCfg, lg),
		Palettes:        palette.NewList(),
		Tracks:          flighttrack.NewList(),
		lg:              lg,
	}
}

// Flags returns a snapshot of the current rendering/display policy.
func (c *Controller) Flags() Flags { return c.flags }

func (c *Controller) SetDiscreteContours(v bool) {
	if c.flags.DiscreteContours == v {
		return
	}
	c.flags.DiscreteContours = v
	c.Publish(EventDiscreteContours, v)
}

func (c *Controller) SetContourLines(v bool) {
	if c.flags.ContourLines == v {
		return
	}
	c.flags.ContourLines = v
	c.Publish(EventContourLines, v)
}

func (c *Controller) SetLightingOn(v bool) {
	if c.flags.LightingOn == v {
		return
	}
	c.flags.LightingOn = v
	c.Publish(EventLightingOn, v)
}

func (c *Controller) SetSmoothShading(v bool) {
	if c.flags.SmoothShading == v {
		return
	}
	c.flags.SmoothShading = v
	c.Publish(EventSmoothShading, v)
}

func (c *Controller) SetAzimuth(v float64) {
	if c.flags.Azimuth == v {
		return
	}
	c.flags.Azimuth = v
	c.Publish(EventAzimuth, v)
}

func (c *Controller) SetElevation(v float64) {
	if c.flags.Elevation == v {
		return
	}
	c.flags.Elevation = v
	c.Publish(EventElevation, v)
}

func (c *Controller) SetOversampling(v int) {
	if c.flags.Oversampling == v {
		return
	}
	c.flags.Oversampling = v
	c.Publish(EventOversampling, v)
}

func (c *Controller) SetImageType(v string) {
	if c.flags.ImageType == v {
		return
	}
	c.flags.ImageType = v
	c.Publish(EventImageType, v)
}

func (c *Controller) SetJPEGQuality(v int) {
	if c.flags.JPEGQuality == v {
		return
	}
	c.flags.JPEGQuality = v
	c.Publish(EventJPEGQuality, v)
}

func (c *Controller) SetDegMinSec(v bool) {
	if c.flags.DegMinSec == v {
		return
	}
	c.flags.DegMinSec = v
	c.Publish(EventDegMinSec, v)
}

func (c *Controller) SetMagTrue(v bool) {
	if c.flags.MagTrue == v {
		return
	}
	c.flags.MagTrue = v
	c.Publish(EventMagTrue, v)
}

func (c *Controller) SetMEFs(v bool) {
	if c.flags.MEFs == v {
		return
	}
	c.flags.MEFs = v
	c.Publish(EventMEFs, v)
}

func (c *Controller) SetShowTrackInfo(v bool) {
	if c.flags.ShowTrackInfo == v {
		return
	}
	c.flags.ShowTrackInfo = v
	c.Publish(EventShowTrackInfo, v)
}

// SetTrackLimit changes the sample-count limit applied to the current
// track's rendering; since it changes what's drawn for an existing
// track rather than the list of tracks, it's a FlightTrackModified
// event rather than FlightTrackList.
func (c *Controller) SetTrackLimit(v int) {
	if c.flags.TrackLimit == v {
		return
	}
	c.flags.TrackLimit = v
	if c.currentTrack != nil {
		c.Publish(EventFlightTrackModified, c.currentTrack)
	}
}

// SetCurrentPalette selects palette i as current, publishing Palette
// if the selection actually changed.
func (c *Controller) SetCurrentPalette(i int) {
	if c.Palettes.CurrentIndex() == i {
		return
	}
	c.Palettes.SetCurrent(i)
	c.Publish(EventPalette, i)
}

// SetPaletteBase changes the current palette's elevation offset. It
// affects what the current palette renders, not which palette is
// selected, so it publishes Palette rather than PaletteList.
func (c *Controller) SetPaletteBase(v float64) {
	if c.flags.PaletteBase == v {
		return
	}
	c.flags.PaletteBase = v
	c.Publish(EventPalette, v)
}

// LoadPalette loads path into the palette list, publishing NewPalette
// if it wasn't already loaded and PaletteList regardless (the list
// changed position/identity bookkeeping even on a no-op dedup hit, so
// callers can always re-read it after calling this).
func (c *Controller) LoadPalette(path string) (int, error) {
	before := c.Palettes.Len()
	idx, err := c.Palettes.Load(path)
	if err != nil {
		return idx, err
	}
	if c.Palettes.Len() > before {
		c.Publish(EventNewPalette, idx)
	}
	c.Publish(EventPaletteList, c.Palettes)
	return idx, nil
}

// LoadPaletteDir loads every ".ap" file in dir.
func (c *Controller) LoadPaletteDir(dir string) error {
	before := c.Palettes.Len()
	if err := c.Palettes.LoadDir(dir); err != nil {
		return err
	}
	if c.Palettes.Len() > before {
		c.Publish(EventNewPalette, c.Palettes.Len()-1)
	}
	c.Publish(EventPaletteList, c.Palettes)
	return nil
}

// RemovePalette drops the palette at index i.
func (c *Controller) RemovePalette(i int) {
	c.Palettes.Remove(i)
	c.Publish(EventPaletteList, c.Palettes)
}

// CurrentTrack returns the track currently in focus, or nil.
func (c *Controller) CurrentTrack() *flighttrack.Track { return c.currentTrack }

// SetCurrentTrack changes which track is in focus.
func (c *Controller) SetCurrentTrack(t *flighttrack.Track) {
	if c.currentTrack == t {
		return
	}
	c.currentTrack = t
	c.Publish(EventNewFlightTrack, t)
}

// SetMark moves the current track's replay position. Passing an
// out-of-range index (including -1) returns it to following the live
// tail.
func (c *Controller) SetMark(i int) {
	t := c.currentTrack
	if t == nil {
		return
	}
	if t.Mark() == i {
		return
	}
	t.SetMark(i)
	c.Publish(EventMoved, i)
}

// AddUDPTrack adds a live network-sourced track to the list.
func (c *Controller) AddUDPTrack(port, maxBuffer int) (*flighttrack.Track, error) {
	t, err := c.Tracks.AddUDP(port, maxBuffer)
	if err != nil {
		return nil, err
	}
	c.Publish(EventFlightTrackList, c.Tracks)
	return t, nil
}

// AddSerialTrack adds a live serial-sourced track to the list.
func (c *Controller) AddSerialTrack(device string, baud, maxBuffer int) (*flighttrack.Track, error) {
	t, err := c.Tracks.AddSerial(device, baud, maxBuffer)
	if err != nil {
		return nil, err
	}
	c.Publish(EventFlightTrackList, c.Tracks)
	return t, nil
}

// LoadTrack adds a file-backed track, rejecting a path already open
// elsewhere in the list.
func (c *Controller) LoadTrack(path string) (*flighttrack.Track, error) {
	t, err := c.Tracks.LoadFile(path)
	if err != nil {
		return nil, err
	}
	c.Publish(EventFlightTrackList, c.Tracks)
	return t, nil
}

// ClearTrack discards every sample on t.
func (c *Controller) ClearTrack(t *flighttrack.Track) {
	t.Clear()
	c.Publish(EventFlightTrackModified, t)
}

// SaveTrack writes t back to its file path, if it has unsaved changes.
func (c *Controller) SaveTrack(t *flighttrack.Track) error {
	return t.Save()
}

// SaveTrackAs retargets t at path and saves it there, re-sorting the
// list since its NiceName changes with the file name.
func (c *Controller) SaveTrackAs(t *flighttrack.Track, path string) error {
	if err := c.Tracks.SaveAs(t, path); err != nil {
		return err
	}
	c.Publish(EventFlightTrackList, c.Tracks)
	return nil
}

// RemoveTrack drops t from the list entirely, clearing it as the
// current track first if it was selected.
func (c *Controller) RemoveTrack(t *flighttrack.Track) {
	if t == c.currentTrack {
		c.SetCurrentTrack(nil)
	}
	c.Tracks.Remove(t)
	c.Publish(EventFlightTrackList, c.Tracks)
}

// DetachTrack closes t's live I/O channel but keeps its recorded
// samples in the list.
func (c *Controller) DetachTrack(t *flighttrack.Track) {
	c.Tracks.Detach(t)
	c.Publish(EventFlightTrackList, c.Tracks)
}

// CheckForInput polls every live track for newly arrived samples. When
// the current track gets new data and its mark was following the live
// tail, it publishes AircraftMoved ahead of FlightTrackModified so a
// UI can recentre the map before redrawing the track itself (spec
// §4.8). It returns the total number of samples added across every
// live track.
func (c *Controller) CheckForInput() int {
	total := 0
	for _, t := range c.Tracks.Tracks() {
		if !t.Live() {
			continue
		}
		wasFollowingTail := t.Mark() < 0
		n := t.CheckForInput()
		if n == 0 {
			continue
		}
		total += n
		if t == c.currentTrack && wasFollowingTail {
			c.Publish(EventAircraftMoved, t)
		}
		c.Publish(EventFlightTrackModified, t)
	}
	return total
}

// CheckScenery drives every pending tile forward one step and
// publishes SceneryChanged for any tile that finished all its
// scheduled tasks this tick.
func (c *Controller) CheckScenery() int {
	before := append([]*tile.Tile(nil), c.Tiles.Tiles()...)
	remaining := c.Tiles.CheckScenery()

	after := make(map[*tile.Tile]bool, len(c.Tiles.Tiles()))
	for _, t := range c.Tiles.Tiles() {
		after[t] = true
	}
	for _, t := range before {
		if !after[t] {
			c.Publish(EventSceneryChanged, t)
		}
	}
	return remaining
}

// FindMatches runs an incremental navaid/fix/airport search centred at
// centre, resuming the previous scan if str repeats the last query
// (search.Searcher's own resumability), returning true if the result
// set changed.
func (c *Controller) FindMatches(str string, centre geo.Vec3, max int) bool {
	return c.DB.Searcher.FindMatches(str, centre, max)
}

// SearchResults returns whatever FindMatches has accumulated so far.
func (c *Controller) SearchResults() []search.Searchable {
	return c.DB.Searcher.Results()
}
