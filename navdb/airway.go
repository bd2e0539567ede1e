// navdb/airway.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdb

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/atlasfg/atlas/atlaserr"
	"github.com/atlasfg/atlas/geo"
)

// resolveCacheSize bounds the endpoint-resolution memo: a busy enroute
// structure references the same few hundred navaids/fixes from
// thousands of airway segments, so caching the nearest-match lookup by
// "id@lat,lon" avoids repeating the GeoInverse scan over every
// candidate for every segment that shares an endpoint.
const resolveCacheSize = 4096

// AirwaySegment is one segment of an airway: two endpoints, an
// altitude band, and the airway's name (several segments typically
// share a name; GroupAirways collects them into Airway aggregates).
type AirwaySegment struct {
	Name             string
	Low              bool // spec §4.4/SUPPLEMENTED FEATURES: "low" vs. "high" enroute structure
	BaseFL, TopFL    int
	Start, End       AirwayEnd
	LengthM          float64
}

// Airway is a named, ordered sequence of segments (spec §3): a
// "highway in the sky", classified as low- or high-altitude. Prepend
// and Append do no connectivity validation -- the loader is
// responsible for adding segments in sequence.
type Airway struct {
	Name     string
	Low      bool
	Segments []*AirwaySegment
}

// NewAirway starts a new Airway aggregate from its first segment.
func NewAirway(name string, low bool, first *AirwaySegment) *Airway {
	return &Airway{Name: name, Low: low, Segments: []*AirwaySegment{first}}
}

// Prepend adds segment to the start of the airway.
func (a *Airway) Prepend(segment *AirwaySegment) {
	a.Segments = append([]*AirwaySegment{segment}, a.Segments...)
}

// Append adds segment to the end of the airway.
func (a *Airway) Append(segment *AirwaySegment) {
	a.Segments = append(a.Segments, segment)
}

// NumWaypoints is the number of distinct waypoints the airway passes
// through: one more than its segment count.
func (a *Airway) NumWaypoints() int { return len(a.Segments) + 1 }

// NthWaypoint returns the ith waypoint along the airway (0-indexed):
// segment i-1's resolved end, or segment 0's resolved start for i==0
// (spec §3).
func (a *Airway) NthWaypoint(i int) *Waypoint {
	if i == 0 {
		return a.Segments[0].Start.Resolved
	}
	return a.Segments[i-1].End.Resolved
}

// GroupAirways collects segments sharing a name and low/high
// classification into Airway aggregates, preserving each segment's
// load order within its airway (spec §4.4: "the loader must add
// segments in sequence").
func GroupAirways(segments []*AirwaySegment) []*Airway {
	index := make(map[string]*Airway)
	var airways []*Airway
	for _, seg := range segments {
		key := seg.Name + "\x00low=" + strconv.FormatBool(seg.Low)
		awy, ok := index[key]
		if !ok {
			awy = NewAirway(seg.Name, seg.Low, seg)
			index[key] = awy
			airways = append(airways, awy)
			continue
		}
		awy.Append(seg)
	}
	return airways
}

// AirwayEnd is one endpoint of an airway segment, resolved (if possible)
// against the loaded navaid/fix set.
type AirwayEnd struct {
	ID       string
	Loc      geo.LatLon
	Resolved *Waypoint // nil if no navpoint could be matched
}

// navpoint is a position-tagged entry in the by-id lookup multimap used
// to resolve airway endpoints, mirroring the original's _navPoints
// multimap of navaid-or-fix entries keyed by id.
type navpoint struct {
	loc geo.LatLon
	w   *Waypoint
}

// LoadAirways parses a FlightGear awy.dat v640 stream (already
// decompressed). navpoints is a by-id multimap of every previously
// loaded navaid and fix, used to resolve each airway endpoint's
// identifier to an actual Waypoint: an exact id+position match is
// preferred; failing that, the nearest same-id entry by great-circle
// distance is used. A fix endpoint on a low-altitude segment sets that
// fix's Enroute flag (spec's low/high enroute clarification); high
// segments do not, since "enroute" in the search index specifically
// marks low-altitude-structure fixes.
func LoadAirways(r io.Reader, navpoints map[string][]navpoint, elog *atlaserr.ErrorLogger) ([]*AirwaySegment, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 4096), 1<<20)

	if !scanner.Scan() {
		return nil, &atlaserr.IoError{Path: "awy.dat", Err: fmt.Errorf("empty file")}
	}
	if !scanner.Scan() {
		return nil, &atlaserr.IoError{Path: "awy.dat", Err: fmt.Errorf("missing version line")}
	}
	versionLine := strings.TrimSpace(scanner.Text())
	version, err := strconv.Atoi(strings.Fields(versionLine)[0])
	if err != nil || version != 640 {
		return nil, &atlaserr.BadVersion{File: "awy.dat", Expected: "640", Found: versionLine}
	}

	resolveCache, _ := lru.New[string, *Waypoint](resolveCacheSize)

	var segments []*AirwaySegment
	lineNo := 2
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		if line == "99" {
			break
		}

		a, perr := parseAirwayLine(line)
		if perr != nil {
			elog.Push(fmt.Sprintf("awy.dat:%d", lineNo))
			elog.ErrorString(perr.Error())
			elog.Pop()
			continue
		}

		a.Start.Resolved = resolveEnd(a.Start, navpoints, resolveCache)
		a.End.Resolved = resolveEnd(a.End, navpoints, resolveCache)
		markEnroute(a.Start.Resolved, a.Low)
		markEnroute(a.End.Resolved, a.Low)

		_, _, distM := geo.GeoInverse(a.Start.Loc, a.End.Loc)
		a.LengthM = distM

		segments = append(segments, a)
	}

	return segments, nil
}

// parseAirwayLine parses one awy.dat record:
//
//	<id1> <lat1> <lon1> <id2> <lat2> <lon2> <low|high> <base_fl> <top_fl> <name>
func parseAirwayLine(line string) (*AirwaySegment, error) {
	fields := strings.Fields(line)
	if len(fields) < 10 {
		return nil, &atlaserr.BadRecord{File: "awy.dat", Why: "too few fields"}
	}

	lat1, e1 := strconv.ParseFloat(fields[1], 64)
	lon1, e2 := strconv.ParseFloat(fields[2], 64)
	lat2, e3 := strconv.ParseFloat(fields[4], 64)
	lon2, e4 := strconv.ParseFloat(fields[5], 64)
	lowHigh, e5 := strconv.Atoi(fields[6])
	base, e6 := strconv.Atoi(fields[7])
	top, e7 := strconv.Atoi(fields[8])
	if e1 != nil || e2 != nil || e3 != nil || e4 != nil || e5 != nil || e6 != nil || e7 != nil {
		return nil, &atlaserr.BadRecord{File: "awy.dat", Why: "bad numeric field"}
	}
	if lowHigh != 1 && lowHigh != 2 {
		return nil, &atlaserr.BadRecord{File: "awy.dat", Why: fmt.Sprintf("bad low/high code %d", lowHigh)}
	}

	return &AirwaySegment{
		Name:   strings.Join(fields[9:], " "),
		Low:    lowHigh == 1,
		BaseFL: base,
		TopFL:  top,
		Start:  AirwayEnd{ID: fields[0], Loc: geo.LatLon{Lat: lat1, Lon: lon1}},
		End:    AirwayEnd{ID: fields[3], Loc: geo.LatLon{Lat: lat2, Lon: lon2}},
	}, nil
}

// resolveEnd finds the Waypoint matching end's id, preferring an exact
// position match and falling back to the nearest candidate, memoizing
// the result per distinct (id, position) pair.
func resolveEnd(end AirwayEnd, navpoints map[string][]navpoint, cache *lru.Cache[string, *Waypoint]) *Waypoint {
	key := fmt.Sprintf("%s@%.6f,%.6f", end.ID, end.Loc.Lat, end.Loc.Lon)
	if cache != nil {
		if w, ok := cache.Get(key); ok {
			return w
		}
	}

	candidates := navpoints[end.ID]
	if len(candidates) == 0 {
		return nil
	}

	var resolved *Waypoint
	for _, c := range candidates {
		if c.loc == end.Loc {
			resolved = c.w
			break
		}
	}

	if resolved == nil {
		best := candidates[0]
		_, _, bestDist := geo.GeoInverse(best.loc, end.Loc)
		for _, c := range candidates[1:] {
			_, _, d := geo.GeoInverse(c.loc, end.Loc)
			if d < bestDist {
				best, bestDist = c, d
			}
		}
		resolved = best.w
	}

	if cache != nil {
		cache.Add(key, resolved)
	}
	return resolved
}

// markEnroute sets w.Enroute when w is a Fix and the airway segment
// that references it is a low-altitude segment; navaids don't carry an
// Enroute flag since they're already always shown.
func markEnroute(w *Waypoint, low bool) {
	if w != nil && w.Kind == KindFix && low {
		w.Enroute = true
	}
}
