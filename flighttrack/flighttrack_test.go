// flighttrack/flighttrack_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flighttrack

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func approxEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestAtlasProtocolRoundTrip(t *testing.T) {
	lines := [3]string{
		"$GPRMC,120000,A,3700.000,N,12200.000,W,100.0,90.0,010118,0.0,E*00",
		"$GPGGA,120000,3700.000,N,12200.000,W,1,08,0.9,5000,F,0.0,M,,*00",
		"$PATLA,113.00,090.0,112.00,180.0,400*00",
	}

	s, atlas, ok := parseMessage(lines)
	if !ok {
		t.Fatalf("parseMessage failed to parse a well-formed triple")
	}
	if !atlas {
		t.Fatalf("expected atlas flavour (PATLA present)")
	}
	if !approxEqual(s.Lat, 37.0, 1e-6) || !approxEqual(s.Lon, -122.0, 1e-6) {
		t.Errorf("lat/lon = %v/%v, want 37.0/-122.0", s.Lat, s.Lon)
	}
	if s.AltFt != 5000 {
		t.Errorf("alt = %v, want 5000", s.AltFt)
	}
	if s.HdgDeg != 90 || s.SpdKt != 100 {
		t.Errorf("hdg/spd = %v/%v, want 90/100", s.HdgDeg, s.SpdKt)
	}
	if s.Nav1FreqKHz != 113000 {
		t.Errorf("nav1 freq = %d, want 113000", s.Nav1FreqKHz)
	}
	if s.Nav1Radial != 90 {
		t.Errorf("nav1 radial = %v, want 90", s.Nav1Radial)
	}
	if s.AdfFreqKHz != 400 {
		t.Errorf("adf freq = %d, want 400", s.AdfFreqKHz)
	}

	// Round trip: write the sample back out and re-parse it.
	written := writeMessage(s, atlas)
	s2, atlas2, ok2 := parseMessage(written)
	if !ok2 {
		t.Fatalf("re-parsing a written message failed: %v", written)
	}
	if !atlas2 {
		t.Errorf("expected round-tripped message to stay atlas-flavoured")
	}
	if !approxEqual(s.Lat, s2.Lat, 1e-6) || !approxEqual(s.Lon, s2.Lon, 1e-6) {
		t.Errorf("round trip changed lat/lon: %v/%v -> %v/%v", s.Lat, s.Lon, s2.Lat, s2.Lon)
	}
	if s.AltFt != s2.AltFt || s.Nav1FreqKHz != s2.Nav1FreqKHz || s.AdfFreqKHz != s2.AdfFreqKHz {
		t.Errorf("round trip changed derived fields: %+v -> %+v", s, s2)
	}
}

func TestBufferEviction(t *testing.T) {
	tr := &Track{mark: -1, maxBuffer: 3}

	base := [3]string{
		"$GPRMC,120000,A,3700.000,N,12200.000,W,100.0,90.0,010118,0.0,E*00",
		"$GPGGA,120000,3700.000,N,12200.000,W,1,08,0.9,5000,F,0.0,M,,*00",
		"$PATLA,113.00,090.0,112.00,180.0,400*00",
	}

	// Five distinct positions, one degree of longitude apart, well
	// outside the default tolerance.
	for i := 0; i < 5; i++ {
		lon := 122 + i
		rmc := "$GPRMC,12000" + itoa(i) + ",A,3700.000,N," + itoa3(lon) + "00.000,W,100.0,90.0,010118,0.0,E*00"
		gga := "$GPGGA,12000" + itoa(i) + ",3700.000,N," + itoa3(lon) + "00.000,W,1,08,0.9,5000,F,0.0,M,,*00"
		lines := [3]string{rmc, gga, base[2]}

		s, atlas, ok := parseMessage(lines)
		if !ok {
			t.Fatalf("sample %d failed to parse: %v", i, lines)
		}
		tr.isAtlasProtocol = atlas
		tr.addPoint(s, DefaultTolerance)

		if i == 3 {
			if tr.Size() != 3 {
				t.Fatalf("after 4th insertion: size = %d, want 3", tr.Size())
			}
			if tr.At(0).CumDistM != 0 {
				t.Errorf("after eviction: samples[0].CumDistM = %v, want 0", tr.At(0).CumDistM)
			}
		}
	}

	if tr.Size() != 3 {
		t.Fatalf("final size = %d, want 3 (max_buffer)", tr.Size())
	}
}

func itoa(i int) string {
	return string(rune('0' + i))
}

func itoa3(i int) string {
	s := ""
	if i >= 100 {
		s += string(rune('0' + i/100))
		i %= 100
	} else {
		s += "0"
	}
	s += string(rune('0'+i/10)) + string(rune('0'+i%10))
	return s
}

func TestCumDistInvariant(t *testing.T) {
	tr := &Track{mark: -1}

	lines := [][3]string{
		{
			"$GPRMC,120000,A,3700.000,N,12200.000,W,100.0,90.0,010118,0.0,E*00",
			"$GPGGA,120000,3700.000,N,12200.000,W,1,08,0.9,5000,F,0.0,M,,*00",
			"$PATLA,113.00,090.0,112.00,180.0,400*00",
		},
		{
			"$GPRMC,120010,A,3701.000,N,12200.000,W,100.0,90.0,010118,0.0,E*00",
			"$GPGGA,120010,3701.000,N,12200.000,W,1,08,0.9,5000,F,0.0,M,,*00",
			"$PATLA,113.00,090.0,112.00,180.0,400*00",
		},
	}

	for _, l := range lines {
		s, atlas, ok := parseMessage(l)
		if !ok {
			t.Fatalf("failed to parse %v", l)
		}
		tr.isAtlasProtocol = atlas
		tr.addPoint(s, DefaultTolerance)
	}

	if tr.Size() != 2 {
		t.Fatalf("size = %d, want 2", tr.Size())
	}
	if tr.At(0).CumDistM != 0 {
		t.Errorf("samples[0].CumDistM = %v, want 0", tr.At(0).CumDistM)
	}
	if got := tr.At(1).CumDistM; got <= 0 {
		t.Errorf("samples[1].CumDistM = %v, want > 0 (moved 1nm north)", got)
	}
}

func TestSaveAndReload(t *testing.T) {
	tr := &Track{mark: -1}
	s, atlas, ok := parseMessage([3]string{
		"$GPRMC,120000,A,3700.000,N,12200.000,W,100.0,90.0,010118,0.0,E*00",
		"$GPGGA,120000,3700.000,N,12200.000,W,1,08,0.9,5000,F,0.0,M,,*00",
		"$PATLA,113.00,090.0,112.00,180.0,400*00",
	})
	if !ok {
		t.Fatalf("setup: parseMessage failed")
	}
	tr.isAtlasProtocol = atlas
	tr.addPoint(s, -1.0)

	path := filepath.Join(t.TempDir(), "flight.txt")
	tr.filePath = path
	if err := tr.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if tr.Modified() {
		t.Errorf("expected Modified() == false immediately after Save")
	}

	reloaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if reloaded.Size() != 1 {
		t.Fatalf("reloaded size = %d, want 1", reloaded.Size())
	}
	if !approxEqual(reloaded.At(0).Lat, s.Lat, 1e-6) {
		t.Errorf("reloaded lat = %v, want %v", reloaded.At(0).Lat, s.Lat)
	}

	os.Remove(path)
}

// TestEstTOffsetGrouping exercises the §8 invariant: adjacent samples
// sharing the same integer time are spaced evenly within that second.
func TestEstTOffsetGrouping(t *testing.T) {
	tr := &Track{mark: -1}

	// Three samples, all timestamped 12:00:00, at distinct positions so
	// none is rejected by the tolerance filter.
	for i := 0; i < 3; i++ {
		lon := 122 + i
		s, atlas, ok := parseMessage([3]string{
			"$GPRMC,120000,A,3700.000,N," + itoa3(lon) + "00.000,W,100.0,90.0,010118,0.0,E*00",
			"$GPGGA,120000,3700.000,N," + itoa3(lon) + "00.000,W,1,08,0.9,5000,F,0.0,M,,*00",
			"$PATLA,113.00,090.0,112.00,180.0,400*00",
		})
		if !ok {
			t.Fatalf("sample %d failed to parse", i)
		}
		tr.isAtlasProtocol = atlas
		tr.addPoint(s, DefaultTolerance)
	}

	if tr.Size() != 3 {
		t.Fatalf("size = %d, want 3", tr.Size())
	}
	for i := 0; i < 2; i++ {
		got := tr.At(i+1).EstTOffsetS - tr.At(i).EstTOffsetS
		want := 1.0 / 3.0
		if !approxEqual(got, want, 1e-6) {
			t.Errorf("offset step %d = %v, want %v", i, got, want)
		}
	}
}
