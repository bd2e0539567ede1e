// flighttrack/sample.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package flighttrack stores and replays FlightGear flight-recording
// sessions: a bounded ring of position samples read from a file or a
// live socket/serial stream, using the three-line Atlas/NMEA wire
// protocol the original recorder speaks.
package flighttrack

import (
	"time"

	"github.com/atlasfg/atlas/culler"
	"github.com/atlasfg/atlas/geo"
)

// Sample is one recorded position report. Heading and speed mean
// different things depending on the protocol flavour that produced it:
// atlas gives true heading and KEAS, nmea gives true track and
// ground speed.
type Sample struct {
	Time time.Time

	Lat, Lon float64
	AltFt    float64
	HdgDeg   float64
	SpdKt    float64

	Nav1FreqKHz, Nav2FreqKHz int
	Nav1Radial, Nav2Radial   float64
	AdfFreqKHz               int

	// EstTOffsetS is the estimated time offset, in seconds, from the
	// first sample in the track (§4.5 "derived-value maintenance").
	EstTOffsetS float64
	Cart        geo.Vec3
	// CumDistM is the cumulative great-circle-ish (ECEF chord) distance
	// from the first sample, in metres.
	CumDistM float64

	navaids       []culler.Object
	navaidsLoaded bool
}

// recalcCart recomputes Cart from Lat/Lon/AltFt; called whenever a sample's
// position fields are set, since Cart must always stay consistent with
// them (spec invariant).
func (s *Sample) recalcCart() {
	s.Cart = geo.GeodToCart(geo.LatLon{Lat: s.Lat, Lon: s.Lon}, s.AltFt*feetToMetres)
}

const feetToMetres = 0.3048

// isParkedSentinel reports whether s looks like FlightGear's
// "parked at (0,0)" startup sentinel, which recorders should never add
// to a track (spec §4.5 "Insertion filter").
func (s *Sample) isParkedSentinel() bool {
	return abs(s.Lat) < 0.001 && abs(s.Lon) < 0.001 && abs(s.SpdKt) < 0.001 &&
		abs(s.HdgDeg) < 0.001 && abs(s.AltFt) < 0.001
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// InRangeNavaids computes (and caches) the navaids this sample has
// tuned: a point search at s.Cart against idx, filtered to results
// whose frequency matches Nav1, Nav2, or the ADF frequency (spec §4.5
// "Navaid lock-on per sample"). The computation is lazy and only runs
// once per sample, regardless of how often it's queried.
func (s *Sample) InRangeNavaids(idx *culler.Culler) []culler.Object {
	if s.navaidsLoaded {
		return s.navaids
	}
	s.navaidsLoaded = true

	type freqHaver interface {
		TunedFreqKHz() []int
	}

	for _, obj := range idx.PointIntersections(s.Cart) {
		fh, ok := obj.(freqHaver)
		if !ok {
			continue
		}
		for _, f := range fh.TunedFreqKHz() {
			if f != 0 && (f == s.Nav1FreqKHz || f == s.Nav2FreqKHz || f == s.AdfFreqKHz) {
				s.navaids = append(s.navaids, obj)
				break
			}
		}
	}

	return s.navaids
}
