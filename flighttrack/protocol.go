// flighttrack/protocol.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flighttrack

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseMessage parses one complete 3-line message (GPRMC, GPGGA, then
// either PATLA or GPGSA) into a Sample. It returns the sample, whether
// the triple was atlas-flavoured (as opposed to nmea), and whether
// parsing succeeded; per spec all three lines must parse or the whole
// triple is rejected.
func parseMessage(lines [3]string) (*Sample, bool, bool) {
	s := &Sample{}
	haveRMC, haveGGA, haveFlavour := false, false, false
	isAtlas := false

	for _, line := range lines {
		body := strings.TrimPrefix(line, "$")
		if i := strings.IndexByte(body, '*'); i >= 0 {
			body = body[:i]
		}
		fields := strings.Split(body, ",")
		if len(fields) == 0 {
			return nil, false, false
		}

		switch {
		case fields[0] == "GPRMC" && (len(fields) == 12 || len(fields) == 13):
			if !parseRMC(fields, s) {
				return nil, false, false
			}
			haveRMC = true

		case fields[0] == "GPGGA" && len(fields) == 15:
			if !parseGGA(fields, s) {
				return nil, false, false
			}
			haveGGA = true

		case fields[0] == "PATLA" && len(fields) == 6:
			if !parsePATLA(fields, s) {
				return nil, false, false
			}
			isAtlas = true
			haveFlavour = true

		case fields[0] == "GPGSA" && len(fields) == 18:
			isAtlas = false
			haveFlavour = true

		default:
			return nil, false, false
		}
	}

	if !haveRMC || !haveGGA || !haveFlavour {
		return nil, false, false
	}

	s.recalcCart()
	return s, isAtlas, true
}

// parseRMC fills in the time and speed/heading fields from a GPRMC
// sentence. Position fields are present in GPRMC too, but GPGGA is
// authoritative since it also carries altitude, so they're ignored here.
func parseRMC(fields []string, s *Sample) bool {
	utc := fields[1]
	date := fields[9]
	if len(utc) < 6 || len(date) < 4 {
		return false
	}

	hour, err1 := strconv.Atoi(utc[0:2])
	minute, err2 := strconv.Atoi(utc[2:4])
	second, err3 := strconv.Atoi(utc[4:6])
	day, err4 := strconv.Atoi(date[0:2])
	month, err5 := strconv.Atoi(date[2:4])
	yearField, err6 := strconv.Atoi(date[4:])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
		return false
	}

	// atlas's $GPRMC is 12 fields long; nmea's is 13 (it adds a trailing
	// mode-indicator field). nmea also truncates its year to 2 digits,
	// requiring the <90 => +2000 correction; atlas's year field is used
	// directly.
	year := yearField
	if len(fields) == 13 && yearField < 90 {
		year += 100
	}

	s.Time = time.Date(1900+year, time.Month(month), day, hour, minute, second, 0, time.UTC)

	spd, err7 := strconv.ParseFloat(fields[7], 64)
	hdg, err8 := strconv.ParseFloat(fields[8], 64)
	if err7 != nil || err8 != nil {
		return false
	}
	s.SpdKt = spd
	s.HdgDeg = hdg

	return true
}

// parseGGA fills in latitude, longitude, and altitude.
func parseGGA(fields []string, s *Sample) bool {
	lat, ok := parseAngle(fields[2], fields[3], "S")
	if !ok {
		return false
	}
	lon, ok := parseAngle(fields[4], fields[5], "W")
	if !ok {
		return false
	}

	alt, err := strconv.ParseFloat(fields[9], 64)
	if err != nil {
		return false
	}
	if fields[10] == "M" {
		alt *= metresToFeet
	}

	s.Lat, s.Lon, s.AltFt = lat, lon, alt
	return true
}

const metresToFeet = 1 / feetToMetres

// parseAngle parses a DDMM.MMM or DDDMM.MMM token plus its N/S or E/W
// direction letter into signed decimal degrees.
func parseAngle(token, dir, negLetter string) (float64, bool) {
	dot := strings.IndexByte(token, '.')
	if dot < 2 {
		return 0, false
	}
	degDigits := dot - 2
	deg, err1 := strconv.Atoi(token[:degDigits])
	min, err2 := strconv.ParseFloat(token[degDigits:], 64)
	if err1 != nil || err2 != nil {
		return 0, false
	}
	v := float64(deg) + min/60.0
	if dir == negLetter {
		v = -v
	}
	return v, true
}

// parsePATLA fills in nav1/nav2/adf. Its presence marks the triple as
// atlas-flavoured.
func parsePATLA(fields []string, s *Sample) bool {
	nav1Freq, e1 := strconv.ParseFloat(fields[1], 64)
	nav1Rad, e2 := strconv.ParseFloat(fields[2], 64)
	nav2Freq, e3 := strconv.ParseFloat(fields[3], 64)
	nav2Rad, e4 := strconv.ParseFloat(fields[4], 64)
	adf, e5 := strconv.Atoi(fields[5])
	if e1 != nil || e2 != nil || e3 != nil || e4 != nil || e5 != nil {
		return false
	}

	// VOR frequencies arrive as MHz floats (e.g. 113.00); stored
	// internally as kHz integers (113000) to match navdb.Waypoint's
	// FreqKHz unit.
	s.Nav1FreqKHz = int(nav1Freq * 1000)
	s.Nav1Radial = nav1Rad
	s.Nav2FreqKHz = int(nav2Freq * 1000)
	s.Nav2Radial = nav2Rad
	s.AdfFreqKHz = adf

	return true
}

// writeMessage renders s back into the 3-line wire format, matching
// whichever flavour (atlas or nmea) the track was recorded in.
func writeMessage(s *Sample, atlas bool) [3]string {
	t := s.Time.UTC()
	hms := fmt.Sprintf("%02d%02d%02d", t.Hour(), t.Minute(), t.Second())

	var dmy string
	if atlas {
		dmy = fmt.Sprintf("%02d%02d%02d", t.Day(), int(t.Month()), t.Year()-1900)
	} else {
		dmy = fmt.Sprintf("%02d%02d%02d", t.Day(), int(t.Month()), (t.Year()-1900)%100)
	}

	latStr, latDir := formatAngle(s.Lat, 2, "N", "S")
	lonStr, lonDir := formatAngle(s.Lon, 3, "E", "W")

	rmcBody := fmt.Sprintf("GPRMC,%s,A,%s,%s,%s,%s,%s,%s,%s,0.000,E",
		hms, latStr, latDir, lonStr, lonDir, fmtSpeed(s.SpdKt), fmtSpeed(s.HdgDeg), dmy)
	if !atlas {
		rmcBody += ",A"
	}

	ggaBody := fmt.Sprintf("GPGGA,%s,%s,%s,%s,%s,1,,,%.0f,F,,,,",
		hms, latStr, latDir, lonStr, lonDir, s.AltFt)

	var thirdBody string
	if atlas {
		thirdBody = fmt.Sprintf("PATLA,%.2f,%.1f,%.2f,%.1f,%d",
			float64(s.Nav1FreqKHz)/1000.0, s.Nav1Radial,
			float64(s.Nav2FreqKHz)/1000.0, s.Nav2Radial, s.AdfFreqKHz)
	} else {
		thirdBody = "GPGSA,A,3,01,02,03,,05,,07,,09,,11,12,0.9,0.9,2.0"
	}

	return [3]string{
		"$" + rmcBody + "*" + checksumHex(rmcBody),
		"$" + ggaBody + "*" + checksumHex(ggaBody),
		"$" + thirdBody + "*" + checksumHex(thirdBody),
	}
}

func fmtSpeed(v float64) string { return fmt.Sprintf("%05.1f", v) }

// formatAngle renders an absolute value of degrees into the
// "ddmm.mmm" (degWidth=2, latitude) or "dddmm.mmm" (degWidth=3,
// longitude) token plus its direction letter.
func formatAngle(v float64, degWidth int, pos, neg string) (token, dir string) {
	dir = pos
	if v < 0 {
		dir = neg
		v = -v
	}
	deg := int(v)
	min := (v - float64(deg)) * 60.0

	return fmt.Sprintf("%0*d%06.3f", degWidth, deg, min), dir
}

// checksumHex is the two-digit uppercase hex XOR checksum NMEA-style
// sentences use, computed over body (the text between '$' and '*').
func checksumHex(body string) string {
	var sum byte
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}
	return fmt.Sprintf("%02X", sum)
}
