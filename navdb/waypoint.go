// navdb/waypoint.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package navdb loads Atlas's navaid, fix, airway, and airport database
// from FlightGear's four fixed-line-format data files, assembles
// composite navaid systems (VOR-DME, VORTAC, NDB-DME, ILS), resolves
// airway endpoints, and exposes the result to the spatial index and
// searcher.
//
// Rather than the original's Waypoint -> Fix/Navaid -> NDB/VOR/DME/...
// inheritance hierarchy, every point on the globe is a single Waypoint
// struct tagged with a Kind; type-specific fields that don't apply to a
// given Kind are simply left zero. Operations that would have been
// virtual methods on the old hierarchy (Tokens, AsString) switch on Kind
// instead.
package navdb

import (
	"fmt"
	"strings"

	"github.com/atlasfg/atlas/geo"
)

// Kind tags what a Waypoint represents.
type Kind int

const (
	KindFix Kind = iota
	KindNDB
	KindVOR
	KindDME
	KindTACAN
	KindLOC
	KindGS
	KindMarker
)

func (k Kind) String() string {
	switch k {
	case KindFix:
		return "FIX"
	case KindNDB:
		return "NDB"
	case KindVOR:
		return "VOR"
	case KindDME:
		return "DME"
	case KindTACAN:
		return "TACAN"
	case KindLOC:
		return "ILS"
	case KindGS:
		return "GS"
	case KindMarker:
		return "MKR"
	default:
		return "?"
	}
}

// MarkerKind distinguishes the three kinds of ILS marker beacon.
type MarkerKind int

const (
	MarkerOuter MarkerKind = iota
	MarkerMiddle
	MarkerInner
)

func (m MarkerKind) tag() string {
	switch m {
	case MarkerOuter:
		return "OM:"
	case MarkerMiddle:
		return "MM:"
	case MarkerInner:
		return "IM:"
	default:
		return "MKR:"
	}
}

// Waypoint is the single node type on the globe: a Fix, navaid, or
// marker beacon. Subtype-specific attributes that don't apply to Kind
// are left at their zero value.
type Waypoint struct {
	ID   string
	Name string
	Kind Kind
	Loc  geo.LatLon

	ElevM  float64 // navaids only
	FreqKHz int    // navaids (kHz; ADF frequencies are also kHz)
	RangeM float64 // declared reception range in metres; also the bounding-sphere radius

	// VOR/TACAN
	SlavedVariationDeg float64
	// DME/TACAN
	BiasM float64
	// LOC/GS
	TrueHeadingDeg float64
	// GS only
	SlopeDeg float64
	// Marker only
	HeadingDeg float64
	MarkerKind MarkerKind

	Subtype string // raw subtype token from the file, e.g. "VOR-DME", "ILS-cat-I"

	// Enroute is true once any low-altitude airway segment references
	// this waypoint as an endpoint (Fix only; spec §4.4).
	Enroute bool

	// SecondaryFreqKHz holds a merged DME partner's frequency for a
	// VOR-DME/VORTAC/NDB-DME composite (spec §4.4's "DME frequency is
	// stored as the partner's secondary frequency" rule); zero if none.
	SecondaryFreqKHz int

	bounds geo.Sphere
}

// calcBounds sets w.bounds from Loc/ElevM/RangeM. A fix has radius
// zero; a marker gets a fixed ~1 nm radius, since the source files
// don't declare one.
func (w *Waypoint) calcBounds() {
	var r float64
	switch w.Kind {
	case KindFix:
		r = 0
	case KindMarker:
		r = 1852 // ~1 nm
	default:
		r = w.RangeM
	}
	center := geo.GeodToCart(w.Loc, w.ElevM)
	w.bounds = geo.Sphere{Center: center, Radius: r}
}

// Bounds implements culler.Object.
func (w *Waypoint) Bounds() geo.Sphere { return w.bounds }

// Location implements culler.Object's grid-bucketing need.
func (w *Waypoint) Location() geo.LatLon { return w.Loc }

// Cart implements search.Searchable's positional need, returning the
// waypoint's ECEF position.
func (w *Waypoint) Cart() geo.Vec3 { return w.bounds.Center }

// TunedFreqKHz returns every frequency a flight-track sample's
// nav1/nav2/adf field could match against this waypoint: its primary
// frequency and, for a VOR-DME/VORTAC/NDB-DME composite, the merged
// partner's secondary frequency (flighttrack §4.5 "Navaid lock-on per
// sample").
func (w *Waypoint) TunedFreqKHz() []int {
	if w.SecondaryFreqKHz != 0 {
		return []int{w.FreqKHz, w.SecondaryFreqKHz}
	}
	return []int{w.FreqKHz}
}

// typeTag returns the search index type prefix for w's Kind (spec
// §4.3: "VOR:", "AIR:", "FIX:", "ILS:", "NDB:", "MKR:", "DME:", plus
// "OM:"/"MM:"/"IM:" for markers). GS shares "ILS:" with LOC (the
// original merges NAV_ILS/NAV_GS into one token) and TACAN shares
// "DME:" with DME (TACAN is a DME subclass with no token of its own).
func (w *Waypoint) typeTag() string {
	switch w.Kind {
	case KindMarker:
		return w.MarkerKind.tag()
	case KindGS:
		return "ILS:"
	case KindTACAN:
		return "DME:"
	default:
		return w.Kind.String() + ":"
	}
}

// Tokens implements search.Searchable: the type tag plus every
// whitespace-split word of the id and name, used for case-insensitive
// matching (the searcher itself lower-cases before comparing).
func (w *Waypoint) Tokens() []string {
	tokens := []string{w.typeTag()}
	tokens = append(tokens, strings.Fields(w.ID)...)
	tokens = append(tokens, strings.Fields(w.Name)...)
	return tokens
}

// AsString implements search.Searchable, matching the original's
// "<TYPE>: <id> <name>" display format.
func (w *Waypoint) AsString() string {
	if w.Name == "" {
		return fmt.Sprintf("%s %s", w.typeTag(), w.ID)
	}
	return fmt.Sprintf("%s %s %s", w.typeTag(), w.ID, w.Name)
}
