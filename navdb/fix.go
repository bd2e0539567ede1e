// navdb/fix.go
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

// LoadFixes parses a FlightGear fix.dat v600 stream (already
// decompressed) into plain Fix waypoints. Enroute status isn't known
// until the airway file is loaded; every Fix starts with Enroute false.
func LoadFixes(r io.Reader, elog *atlaserr.ErrorLogger) ([]*Waypoint, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 4096), 1<<20)

	if !scanner.Scan() {
		return nil, &atlaserr.IoError{Path: "fix.dat", Err: fmt.Errorf("empty file")}
	}
	if !scanner.Scan() {
		return nil, &atlaserr.IoError{Path: "fix.dat", Err: fmt.Errorf("missing version line")}
	}
	versionLine := strings.TrimSpace(scanner.Text())
	version, err := strconv.Atoi(strings.Fields(versionLine)[0])
	if err != nil || version != 600 {
		return nil, &atlaserr.BadVersion{File: "fix.dat", Expected: "600", Found: versionLine}
	}

	var fixes []*Waypoint
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
		if len(fields) != 3 {
			elog.Push(fmt.Sprintf("fix.dat:%d", lineNo))
			elog.ErrorString("expected 3 fields, got %d", len(fields))
			elog.Pop()
			continue
		}
		lat, err1 := strconv.ParseFloat(fields[0], 64)
		lon, err2 := strconv.ParseFloat(fields[1], 64)
		if err1 != nil || err2 != nil {
			elog.Push(fmt.Sprintf("fix.dat:%d", lineNo))
			elog.ErrorString("bad lat/lon")
			elog.Pop()
			continue
		}

		w := &Waypoint{
			ID:   fields[2],
			Name: fields[2],
			Kind: KindFix,
			Loc:  geo.LatLon{Lat: lat, Lon: lon},
		}
		w.calcBounds()
		fixes = append(fixes, w)
	}

	return fixes, nil
}
