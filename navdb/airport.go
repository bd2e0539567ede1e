// navdb/airport.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdb

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/atlasfg/atlas/atlaserr"
	"github.com/atlasfg/atlas/geo"
)

// ATCCode identifies the kind of ATC frequency an apt.dat code-5x record
// carries (spec §4.4's airport record codes 50-54, extended here to the
// full 50-56 range the original file format defines).
type ATCCode int

const (
	ATCWeather ATCCode = 50
	ATCUnicom  ATCCode = 51
	ATCDel     ATCCode = 52
	ATCGnd     ATCCode = 53
	ATCTwr     ATCCode = 54
	ATCApp     ATCCode = 55
	ATCDep     ATCCode = 56
)

// Runway is one physical runway (or, despite the name, a distinct
// approach direction isn't modeled separately: apt.dat gives one record
// per physical strip).
type Runway struct {
	ID            string // this end's designator, e.g. "09L"
	OtherLabel    string // the opposite end's designator, e.g. "27R"
	Loc           geo.LatLon // runway centre point as given in the file
	HeadingDeg    float64
	LengthM       float64
	WidthM        float64
	Lit           bool

	bounds geo.Sphere // oriented rectangle inscribed in a sphere (spec §3)
}

// Bounds implements culler.Object, letting a runway be culled and
// drawn as its own spatial entity rather than only via its airport.
func (r *Runway) Bounds() geo.Sphere { return r.bounds }

// Location implements culler.Object's grid-bucketing need.
func (r *Runway) Location() geo.LatLon { return r.Loc }

// ATCFrequency is one labeled frequency entry under a given ATCCode
// (e.g. GND "DE GAULLE GND" -> {121925, ...}); apt.dat may repeat a
// label across several lines with different (or duplicate)
// frequencies, so values are deduplicated and kept sorted.
type ATCFrequency struct {
	Label   string
	KHz     []int
}

// Airport is one airport, seaport, or heliport loaded from apt.dat.
// Only full airports (code 1) are kept; seaports and heliports (codes
// 16/17) are recognized (so the new-record boundary is detected
// correctly) but not retained, per spec's airport-only scope.
type Airport struct {
	ID         string
	Name       string
	ElevM      float64
	Controlled bool
	Loc        geo.LatLon // centroid of runway centre points
	Lighting   bool
	Beacon     bool
	BeaconLoc  geo.LatLon

	Runways   []Runway
	ATC       map[ATCCode][]ATCFrequency

	bounds geo.Sphere
}

func (a *Airport) Bounds() geo.Sphere      { return a.bounds }
func (a *Airport) Location() geo.LatLon    { return a.Loc }
func (a *Airport) Cart() geo.Vec3          { return a.bounds.Center }
func (a *Airport) Tokens() []string {
	tokens := []string{"AIR:"}
	tokens = append(tokens, strings.Fields(a.ID)...)
	tokens = append(tokens, strings.Fields(a.Name)...)
	return tokens
}
func (a *Airport) AsString() string {
	return fmt.Sprintf("AIR: %s %s", a.ID, a.Name)
}

// apt.dat record codes.
const (
	aptNewAirport = 1
	aptSeaport    = 16
	aptHeliport   = 17
	aptRunway     = 10
	aptBeacon     = 18
)

// LoadAirports parses a FlightGear apt.dat v810/v1000 stream (already
// decompressed). The version check accepts either, since the two share
// the record codes this loader cares about (1/10/16/17/18/50-56); later
// codes added in v1000 (taxiways, parking, etc.) are simply not
// recognized and fall through the switch's default, same as an unknown
// code in v810.
func LoadAirports(r io.Reader, elog *atlaserr.ErrorLogger) ([]*Airport, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 4096), 1<<20)

	if !scanner.Scan() {
		return nil, &atlaserr.IoError{Path: "apt.dat", Err: fmt.Errorf("empty file")}
	}
	if !scanner.Scan() {
		return nil, &atlaserr.IoError{Path: "apt.dat", Err: fmt.Errorf("missing version line")}
	}
	versionLine := strings.TrimSpace(scanner.Text())
	version, err := strconv.Atoi(strings.Fields(versionLine)[0])
	if err != nil || (version != 810 && version != 1000) {
		return nil, &atlaserr.BadVersion{File: "apt.dat", Expected: "810 or 1000", Found: versionLine}
	}

	var airports []*Airport
	var cur *Airport
	freqLabels := map[ATCCode]map[string]map[int]struct{}{}

	finish := func() {
		if cur == nil {
			return
		}
		cur.ATC = flattenFreqs(freqLabels)
		freqLabels = map[ATCCode]map[string]map[int]struct{}{}
		cur.calcCentroidAndBounds()
		airports = append(airports, cur)
		cur = nil
	}

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

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		code, err := strconv.Atoi(fields[0])
		if err != nil {
			elog.Push(fmt.Sprintf("apt.dat:%d", lineNo))
			elog.ErrorString("bad line code")
			elog.Pop()
			continue
		}
		rest := fields[1:]

		switch {
		case code == aptNewAirport || code == aptSeaport || code == aptHeliport:
			finish()
			if code != aptNewAirport {
				continue // seaport/heliport: record the boundary, keep nothing
			}
			if len(rest) < 4 {
				elog.Push(fmt.Sprintf("apt.dat:%d", lineNo))
				elog.ErrorString("malformed airport header")
				elog.Pop()
				continue
			}
			elevFt, e1 := strconv.ParseFloat(rest[0], 64)
			controlled, e2 := strconv.Atoi(rest[1])
			if e1 != nil || e2 != nil {
				elog.Push(fmt.Sprintf("apt.dat:%d", lineNo))
				elog.ErrorString("malformed airport header fields")
				elog.Pop()
				continue
			}
			id := rest[3]
			name := strings.Join(rest[4:], " ")
			cur = &Airport{
				ID:         id,
				Name:       name,
				ElevM:      elevFt * 0.3048,
				Controlled: controlled == 1,
			}

		case code == aptRunway:
			if cur == nil {
				continue
			}
			if len(rest) < 8 {
				elog.Push(fmt.Sprintf("apt.dat:%d", lineNo))
				elog.ErrorString("malformed runway record")
				elog.Pop()
				continue
			}
			rwyID := rest[2]
			if rwyID == "xxx" || strings.HasPrefix(rwyID, "H") {
				continue
			}
			if i := strings.IndexByte(rwyID, 'x'); i > 0 {
				rwyID = rwyID[:i]
			}

			lat, e1 := strconv.ParseFloat(rest[0], 64)
			lon, e2 := strconv.ParseFloat(rest[1], 64)
			heading, e3 := strconv.ParseFloat(rest[3], 64)
			length, e4 := strconv.ParseFloat(rest[4], 64)
			width, e5 := strconv.ParseFloat(rest[7], 64)
			if e1 != nil || e2 != nil || e3 != nil || e4 != nil || e5 != nil {
				elog.Push(fmt.Sprintf("apt.dat:%d", lineNo))
				elog.ErrorString("malformed runway numeric fields")
				elog.Pop()
				continue
			}

			lit := false
			if len(rest) > 8 {
				lighting := rest[8]
				if len(lighting) >= 5 && (lighting[1] != '1' || lighting[4] != '1') {
					lit = true
				}
			}
			if lit {
				cur.Lighting = true
			}

			cur.Runways = append(cur.Runways, Runway{
				ID:         rwyID,
				OtherLabel: reciprocalLabel(rwyID),
				Loc:        geo.LatLon{Lat: lat, Lon: lon},
				HeadingDeg: heading,
				LengthM:    length * 0.3048,
				WidthM:     width * 0.3048,
				Lit:        lit,
			})

		case code == aptBeacon:
			if cur == nil || len(rest) < 3 {
				continue
			}
			lat, e1 := strconv.ParseFloat(rest[0], 64)
			lon, e2 := strconv.ParseFloat(rest[1], 64)
			beaconType, e3 := strconv.Atoi(rest[2])
			if e1 == nil && e2 == nil && e3 == nil && beaconType != 0 {
				cur.Beacon = true
				cur.BeaconLoc = geo.LatLon{Lat: lat, Lon: lon}
			}

		case code >= int(ATCWeather) && code <= int(ATCDep):
			if cur == nil || len(rest) < 2 {
				continue
			}
			freq, err := strconv.Atoi(rest[0])
			if err != nil {
				continue
			}
			label := strings.Join(rest[1:], " ")

			// apt.dat's communications frequencies are given as an
			// integer missing a significant digit for 25 kHz spacing;
			// frequencies ending in 2 or 7 need a trailing 5 appended
			// after scaling to kHz. The rule is applied to every
			// frequency; 8.33 kHz channels are not told apart from
			// 25 kHz ones.
			var khz int
			if freq%10 == 2 || freq%10 == 7 {
				khz = freq*10 + 5
			} else {
				khz = freq * 10
			}

			atcCode := ATCCode(code)
			if freqLabels[atcCode] == nil {
				freqLabels[atcCode] = map[string]map[int]struct{}{}
			}
			if freqLabels[atcCode][label] == nil {
				freqLabels[atcCode][label] = map[int]struct{}{}
			}
			freqLabels[atcCode][label][khz] = struct{}{}
		}
	}
	finish()

	return airports, nil
}

func flattenFreqs(m map[ATCCode]map[string]map[int]struct{}) map[ATCCode][]ATCFrequency {
	out := make(map[ATCCode][]ATCFrequency, len(m))
	for code, labels := range m {
		var freqs []ATCFrequency
		for label, set := range labels {
			khz := make([]int, 0, len(set))
			for f := range set {
				khz = append(khz, f)
			}
			sort.Ints(khz)
			freqs = append(freqs, ATCFrequency{Label: label, KHz: khz})
		}
		sort.Slice(freqs, func(i, j int) bool { return freqs[i].Label < freqs[j].Label })
		out[code] = freqs
	}
	return out
}

// reciprocalLabel derives a runway's opposite-end designator from its
// own (e.g. "09L" -> "27R"): the heading number shifts by 18 (mod 36,
// 1-based) and an L/R side suffix swaps; a centerline "C" suffix (or
// no suffix) is unchanged. Returns "" if label isn't of that form.
func reciprocalLabel(label string) string {
	label = strings.TrimSpace(label)
	i := 0
	for i < len(label) && label[i] >= '0' && label[i] <= '9' {
		i++
	}
	if i == 0 {
		return ""
	}
	n, err := strconv.Atoi(label[:i])
	if err != nil || n < 1 || n > 36 {
		return ""
	}

	other := n + 18
	if other > 36 {
		other -= 36
	}

	suffix := label[i:]
	switch suffix {
	case "L":
		suffix = "R"
	case "R":
		suffix = "L"
	}

	return fmt.Sprintf("%02d%s", other, suffix)
}

// runwayCorners returns the four corners of the runway's oriented
// rectangle: center offset along the heading by half the length to
// each threshold, then across the heading by half the width to each
// side (spec's "rotation heading->pitch->roll from the lon/lat frame"
// corner construction, worked here as geodesic offsets rather than a
// 3D rotation matrix, since Atlas's geo package has no orientation
// type to feed one through).
func runwayCorners(center geo.LatLon, headingDeg, lengthM, widthM float64) [4]geo.LatLon {
	halfLenNM := (lengthM / 2) * geo.NMPerMetre
	halfWidNM := (widthM / 2) * geo.NMPerMetre

	near := geo.Offset(center, headingDeg+180, halfLenNM)
	far := geo.Offset(center, headingDeg, halfLenNM)

	return [4]geo.LatLon{
		geo.Offset(near, headingDeg-90, halfWidNM),
		geo.Offset(near, headingDeg+90, halfWidNM),
		geo.Offset(far, headingDeg-90, halfWidNM),
		geo.Offset(far, headingDeg+90, halfWidNM),
	}
}

// calcCentroidAndBounds sets a.Loc to the centroid of the runway centre
// points (a single runway's own centre if there's only one; an airport
// with no runways gets the zero LatLon), sets each runway's own oriented-
// rectangle bounds, and extends a.bounds to cover every runway's four
// corners.
func (a *Airport) calcCentroidAndBounds() {
	a.bounds = geo.EmptySphere()
	if len(a.Runways) == 0 {
		a.Loc = geo.LatLon{}
		return
	}

	var sumLat, sumLon float64
	for i := range a.Runways {
		rwy := &a.Runways[i]

		sumLat += rwy.Loc.Lat
		sumLon += rwy.Loc.Lon

		rwy.bounds = geo.EmptySphere().ExtendPoint(geo.GeodToCart(rwy.Loc, a.ElevM))
		for _, c := range runwayCorners(rwy.Loc, rwy.HeadingDeg, rwy.LengthM, rwy.WidthM) {
			corner := geo.GeodToCart(c, a.ElevM)
			rwy.bounds = rwy.bounds.ExtendPoint(corner)
			a.bounds = a.bounds.ExtendPoint(corner)
		}
	}
	a.Loc = geo.LatLon{Lat: sumLat / float64(len(a.Runways)), Lon: sumLon / float64(len(a.Runways))}
}
