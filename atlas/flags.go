// atlas/flags.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package atlas

// Flags holds the controller's rendering and display policy: the
// small pieces of persistent state a renderer or UI consults on every
// frame (spec §4.8). Controller's setters are the only way to change
// them, so every change can be compared against its old value and
// published.
type Flags struct {
	DiscreteContours bool
	ContourLines     bool
	LightingOn       bool
	SmoothShading    bool
	Azimuth          float64
	Elevation        float64
	Oversampling     int
	ImageType        string
	JPEGQuality      int
	PaletteBase      float64
	DegMinSec        bool
	MagTrue          bool
	MEFs             bool
	ShowTrackInfo    bool
	TrackLimit       int
}
