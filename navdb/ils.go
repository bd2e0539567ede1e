// navdb/ils.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdb

import "strings"

// ILS is a localizer plus whatever of its glideslope, DME, and marker
// beacons were found alongside it (spec §3: "ILS{loc, gs?, dme?,
// markers:set} -- a LOC plus optional matching components; id/name =
// LOC's id/name").
type ILS struct {
	Loc     *Waypoint
	GS      *Waypoint
	DME     *Waypoint
	Markers []*Waypoint
}

// ID and Name forward the localizer's: an ILS is keyed and displayed
// as its LOC.
func (i *ILS) ID() string   { return i.Loc.ID }
func (i *ILS) Name() string { return i.Loc.Name }

// NavaidSystems is the collection of composite navaid systems
// assembled after loading, plus the owner(navaid) lookup spec §3
// requires ("each navaid belongs to at most one system"). VOR-DME,
// VORTAC, and NDB-DME are folded into a single Waypoint at parse time
// (navaid.go's parseDME) and so never need an owner entry of their
// own; ILS is the one system that still spans multiple Waypoints once
// loading finishes, so it's the only kind tracked here.
type NavaidSystems struct {
	ILS   []*ILS
	owner map[*Waypoint]*ILS
}

// Owner returns the ILS w belongs to, or nil if w isn't part of one.
func (s *NavaidSystems) Owner(w *Waypoint) *ILS {
	if s == nil {
		return nil
	}
	return s.owner[w]
}

// AssembleILS groups LOC/GS/DME-ILS/marker waypoints into ILS systems,
// one per localizer (spec §4.4: "at the end of loading, iterate
// localizers: create an ILS; if a GS exists with the same id, attach
// it; if a DME of subtype DME-ILS exists with the same id, attach it;
// match markers by airport/runway name suffix"). nav.dat gives no
// direct id link between a localizer and its marker beacons, so
// markers are matched by the runway designator that's the first token
// of both the localizer's and the marker's Name (navaid.go's
// parseNavaidLine comment on ILS naming).
func AssembleILS(navaids []*Waypoint) *NavaidSystems {
	systems := &NavaidSystems{owner: make(map[*Waypoint]*ILS)}

	byID := make(map[string][]*Waypoint)
	var markers []*Waypoint
	for _, w := range navaids {
		byID[w.ID] = append(byID[w.ID], w)
		if w.Kind == KindMarker {
			markers = append(markers, w)
		}
	}

	for _, w := range navaids {
		if w.Kind != KindLOC {
			continue
		}

		ils := &ILS{Loc: w}
		systems.owner[w] = ils

		for _, cand := range byID[w.ID] {
			switch {
			case cand.Kind == KindGS && ils.GS == nil:
				ils.GS = cand
				systems.owner[cand] = ils
			case cand.Kind == KindDME && cand.Subtype == "DME-ILS" && ils.DME == nil:
				ils.DME = cand
				systems.owner[cand] = ils
			}
		}

		if suffix := runwaySuffix(w.Name); suffix != "" {
			for _, m := range markers {
				if systems.owner[m] != nil {
					continue
				}
				if runwaySuffix(m.Name) == suffix {
					ils.Markers = append(ils.Markers, m)
					systems.owner[m] = ils
				}
			}
		}

		systems.ILS = append(systems.ILS, ils)
	}

	return systems
}

// runwaySuffix returns the first whitespace-delimited token of a
// localizer or marker's Name, which nav.dat gives as the owning
// runway's designator (e.g. "28R" in "28R ILS-cat-I" or "28R OM").
func runwaySuffix(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
