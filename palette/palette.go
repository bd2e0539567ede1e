// palette/palette.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package palette loads and manages Atlas's ".ap" elevation colour
// tables: ordered elevation->colour bands plus a named-material colour
// lookup, used to shade rendered maps (spec §4.7).
package palette

import (
	"bufio"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
)

// Entry is one elevation band: every altitude at or above Elevation
// (and below the next entry's) renders as Color.
type Entry struct {
	Elevation int
	Color     color.RGBA
}

// Palette is one loaded ".ap" colour table.
type Palette struct {
	Path      string
	Entries   []Entry
	Materials map[string]color.RGBA
	Base      float64
}

// Load reads a ".ap" file: blank lines and "#"/"//"-prefixed comments
// are skipped; an "elevation <metres> <r> <g> <b>" line adds an
// elevation band, a "material <name> <r> <g> <b>" line adds a named
// material colour, and a "base <metres>" line sets the palette's
// elevation offset. Entries are kept in file order (callers expect
// ascending elevation).
func Load(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p := &Palette{Path: path, Materials: make(map[string]color.RGBA)}

	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		fields := strings.Fields(line)
		switch strings.ToLower(fields[0]) {
		case "elevation":
			e, c, err := parseBand(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			p.Entries = append(p.Entries, Entry{Elevation: e, Color: c})

		case "material":
			if len(fields) < 5 {
				return nil, fmt.Errorf("%s:%d: malformed material line", path, lineNo)
			}
			_, c, err := parseBand(append([]string{"0"}, fields[2:]...))
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			p.Materials[fields[1]] = c

		case "base":
			if len(fields) != 2 {
				return nil, fmt.Errorf("%s:%d: malformed base line", path, lineNo)
			}
			b, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			p.Base = b

		default:
			return nil, fmt.Errorf("%s:%d: unrecognized directive %q", path, lineNo, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return p, nil
}

func parseBand(fields []string) (int, color.RGBA, error) {
	if len(fields) != 4 {
		return 0, color.RGBA{}, fmt.Errorf("expected 4 fields, got %d", len(fields))
	}
	elev, err1 := strconv.Atoi(fields[0])
	r, err2 := strconv.Atoi(fields[1])
	g, err3 := strconv.Atoi(fields[2])
	b, err4 := strconv.Atoi(fields[3])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return 0, color.RGBA{}, fmt.Errorf("malformed numeric field")
	}
	return elev, color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}, nil
}

// ColorAt returns the colour of the band containing elevation metres,
// or false if the palette has no entries at or below it.
func (p *Palette) ColorAt(elevation int) (color.RGBA, bool) {
	best := -1
	for i, e := range p.Entries {
		if e.Elevation <= elevation && (best < 0 || e.Elevation > p.Entries[best].Elevation) {
			best = i
		}
	}
	if best < 0 {
		return color.RGBA{}, false
	}
	return p.Entries[best].Color, true
}
