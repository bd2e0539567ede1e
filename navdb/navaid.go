// navdb/navaid.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdb

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atlasfg/atlas/atlaserr"
	"github.com/atlasfg/atlas/geo"
)

// navaidLineCode is the first field of a nav.dat line, identifying what
// kind of record the rest of the line holds.
type navaidLineCode int

const (
	lineNDB   navaidLineCode = 2
	lineVOR   navaidLineCode = 3
	lineILS   navaidLineCode = 4 // localizer-type, airport name follows
	lineLOC   navaidLineCode = 5
	lineGS    navaidLineCode = 6
	lineOM    navaidLineCode = 7
	lineMM    navaidLineCode = 8
	lineIM    navaidLineCode = 9
	lineDME1  navaidLineCode = 12
	lineDME2  navaidLineCode = 13
)

const markerRangeM = 1852 // nav.dat declares no marker range; use ~1 nm

// NavaidResult is the outcome of loading one nav.dat file: every
// standalone Waypoint created, keyed by id for the airway/ILS assembly
// passes that follow, plus per-record errors the caller may choose to
// log and continue past.
type NavaidResult struct {
	Waypoints []*Waypoint
	ByID      map[string][]*Waypoint
}

// LoadNavaids parses a FlightGear nav.dat v810 stream (already
// decompressed), building one Waypoint per standalone navaid and
// merging DME/NDB-DME partners into the earlier VOR or NDB they share
// an id with (position is not compared), per the "great DME shift of
// 2007.09" rule: data
// cycles after 2007.09 require looking one token further back to find
// a DME's real subtype.
func LoadNavaids(r io.Reader, cycle float64, elog *atlaserr.ErrorLogger) (*NavaidResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 4096), 1<<20)

	if !scanner.Scan() {
		return nil, &atlaserr.IoError{Path: "nav.dat", Err: fmt.Errorf("empty file")}
	} // Windows/Mac header line, discarded.
	if !scanner.Scan() {
		return nil, &atlaserr.IoError{Path: "nav.dat", Err: fmt.Errorf("missing version line")}
	}
	versionLine := scanner.Text()
	version, ok := parseNavaidVersion(versionLine)
	if !ok || version != 810 {
		return nil, &atlaserr.BadVersion{File: "nav.dat", Expected: "810", Found: versionLine}
	}

	result := &NavaidResult{ByID: make(map[string][]*Waypoint)}

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

		w, merge, err := parseNavaidLine(line, cycle, result)
		if err != nil {
			elog.Push(fmt.Sprintf("nav.dat:%d", lineNo))
			elog.ErrorString(err.Error())
			elog.Pop()
			continue
		}
		if merge || w == nil {
			continue
		}

		w.calcBounds()
		result.Waypoints = append(result.Waypoints, w)
		result.ByID[w.ID] = append(result.ByID[w.ID], w)
	}

	return result, nil
}

// parseNavaidVersion extracts the leading integer from a nav.dat
// version line, which historically reads either "810 Version - data
// cycle 2008.05" or "810 Version - DAFIF data cycle 2007.09".
func parseNavaidVersion(line string) (int, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseNavaidLine parses one nav.dat record. It returns (waypoint, merge,
// err): merge is true when the record was a DME/NDB-DME partner that was
// folded into a previously loaded navaid rather than creating its own
// Waypoint.
func parseNavaidLine(line string, cycle float64, result *NavaidResult) (w *Waypoint, merge bool, err error) {
	fields := strings.Fields(line)
	if len(fields) < 8 {
		return nil, false, &atlaserr.BadRecord{File: "nav.dat", Why: "too few fields"}
	}

	codeN, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, false, &atlaserr.BadRecord{File: "nav.dat", Why: "bad line code"}
	}
	code := navaidLineCode(codeN)

	lat, err1 := strconv.ParseFloat(fields[1], 64)
	lon, err2 := strconv.ParseFloat(fields[2], 64)
	elevFt, err3 := strconv.Atoi(fields[3])
	freq, err4 := strconv.Atoi(fields[4])
	rangeNM, err5 := strconv.Atoi(fields[5])
	magvar, err6 := strconv.ParseFloat(fields[6], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
		return nil, false, &atlaserr.BadRecord{File: "nav.dat", Why: "bad numeric field"}
	}
	id := fields[7]

	// Navaid frequencies are given in 10s of kHz except NDBs, which are
	// already in kHz.
	if code != lineNDB {
		freq *= 10
	}

	// Everything after the first 8 fields is "<...name...> <subtype>",
	// with the subtype the last whitespace-delimited token. For ILS
	// records (code 4) the name's first token is the airport id, which
	// we don't need, so it's dropped before re-joining. Unlike the
	// original source, which strips the trailing subtype token out of
	// the stored name, Name here keeps it: Atlas's search display shows
	// the full file name verbatim ("SAN FRANCISCO VOR", not "SAN
	// FRANCISCO"), and the subtype is still recovered separately for
	// Kind dispatch and DME-partner classification.
	rest := fields[8:]
	if code == lineILS && len(rest) > 0 {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return nil, false, &atlaserr.BadRecord{File: "nav.dat", Why: "missing name/subtype"}
	}
	subtype := rest[len(rest)-1]
	name := strings.Join(rest, " ")

	loc := geo.LatLon{Lat: lat, Lon: lon}
	elevM := float64(elevFt) * 0.3048

	switch code {
	case lineNDB:
		w = &Waypoint{ID: id, Name: name, Kind: KindNDB, Loc: loc, ElevM: elevM,
			FreqKHz: freq, RangeM: float64(rangeNM) * geo.MetresPerNM, Subtype: subtype}
		return w, false, nil

	case lineVOR:
		w = &Waypoint{ID: id, Name: name, Kind: KindVOR, Loc: loc, ElevM: elevM,
			FreqKHz: freq, RangeM: float64(rangeNM) * geo.MetresPerNM,
			SlavedVariationDeg: magvar, Subtype: subtype}
		return w, false, nil

	case lineILS, lineLOC:
		w = &Waypoint{ID: id, Name: name, Kind: KindLOC, Loc: loc, ElevM: elevM,
			FreqKHz: freq, RangeM: float64(rangeNM) * geo.MetresPerNM,
			TrueHeadingDeg: magvar, Subtype: subtype}
		return w, false, nil

	case lineGS:
		w = &Waypoint{ID: id, Name: name, Kind: KindGS, Loc: loc, ElevM: elevM,
			FreqKHz: freq, RangeM: float64(rangeNM) * geo.MetresPerNM,
			SlopeDeg: magvar, Subtype: subtype}
		return w, false, nil

	case lineOM, lineMM, lineIM:
		mk := MarkerOuter
		if code == lineMM {
			mk = MarkerMiddle
		} else if code == lineIM {
			mk = MarkerInner
		}
		w = &Waypoint{ID: id, Name: name, Kind: KindMarker, Loc: loc, ElevM: elevM,
			RangeM: markerRangeM, HeadingDeg: magvar, MarkerKind: mk, Subtype: subtype}
		return w, false, nil

	case lineDME1, lineDME2:
		return parseDME(id, name, loc, elevM, freq, rangeNM, magvar, subtype, cycle, rest, result)

	default:
		return nil, false, &atlaserr.BadRecord{File: "nav.dat", Why: fmt.Sprintf("unrecognized line code %d", codeN)}
	}
}

// parseDME handles the DME/DME-ILS/TACAN/composite-partner records
// (line codes 12/13). A real standalone DME or DME-ILS gets its own
// Waypoint; a VOR-DME/VORTAC/NDB-DME pairing is merged into the navaid
// of the same id that was already loaded, as its secondary frequency.
func parseDME(id, name string, loc geo.LatLon, elevM float64, freq, rangeNM int, magvar float64,
	subtype string, cycle float64, rest []string, result *NavaidResult) (*Waypoint, bool, error) {

	// For data cycles after 2007.09, a paired DME's trailing token is a
	// generic suffix rather than its real subtype; to find the real
	// subtype we look one token further back, unless the trailing token
	// is "DME-ILS", which is kept as is.
	if cycle > 2007.09 && subtype != "DME-ILS" && len(rest) >= 2 {
		prior := rest[len(rest)-2]
		switch prior {
		case "NDB-DME", "TACAN", "VORTAC", "VOR-DME":
			subtype = prior
		}
	}

	// DME bias (magvar field, repurposed) is in nautical miles.
	biasM := magvar * geo.MetresPerNM

	switch subtype {
	case "DME-ILS":
		w := &Waypoint{ID: id, Name: name, Kind: KindDME, Loc: loc, ElevM: elevM,
			FreqKHz: freq, RangeM: float64(rangeNM) * geo.MetresPerNM, BiasM: biasM, Subtype: subtype}
		return w, false, nil

	case "TACAN":
		w := &Waypoint{ID: id, Name: name, Kind: KindTACAN, Loc: loc, ElevM: elevM,
			FreqKHz: freq, RangeM: float64(rangeNM) * geo.MetresPerNM, BiasM: biasM, Subtype: subtype}
		return w, false, nil

	case "DME":
		w := &Waypoint{ID: id, Name: name, Kind: KindDME, Loc: loc, ElevM: elevM,
			FreqKHz: freq, RangeM: float64(rangeNM) * geo.MetresPerNM, BiasM: biasM, Subtype: subtype}
		return w, false, nil

	case "VOR-DME", "VORTAC", "NDB-DME":
		for _, partner := range result.ByID[id] {
			if (partner.Kind == KindVOR || partner.Kind == KindNDB) && partner.SecondaryFreqKHz == 0 {
				partner.SecondaryFreqKHz = freq
				return nil, true, nil
			}
		}
		return nil, false, &atlaserr.BadRecord{File: "nav.dat", Why: fmt.Sprintf("no matching navaid for %s partner %q", subtype, id)}

	default:
		return nil, false, &atlaserr.BadRecord{File: "nav.dat", Why: fmt.Sprintf("unrecognized DME subtype %q", subtype)}
	}
}
