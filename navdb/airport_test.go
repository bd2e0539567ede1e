// navdb/airport_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdb

import (
	"strings"
	"testing"

	"github.com/atlasfg/atlas/atlaserr"
)

func TestReciprocalLabel(t *testing.T) {
	cases := []struct{ label, want string }{
		{"09", "27"},
		{"28R", "10L"},
		{"01L", "19R"},
		{"36", "18"},
		{"xxx", ""},
	}
	for _, c := range cases {
		if got := reciprocalLabel(c.label); got != c.want {
			t.Errorf("reciprocalLabel(%q) = %q, want %q", c.label, got, c.want)
		}
	}
}

func TestLoadAirportsSetsRunwayOtherLabelAndBounds(t *testing.T) {
	fixture := "I\n810 Version\n" +
		"1   13  1 0 KSFO SAN FRANCISCO INTL\n" +
		"10  37.61900 -122.37500 28R 280.0 11870 0 0 200.0 11111\n" +
		"99\n"
	elog := &atlaserr.ErrorLogger{}
	airports, err := LoadAirports(strings.NewReader(fixture), elog)
	if err != nil {
		t.Fatalf("LoadAirports: %v", err)
	}
	if len(airports) != 1 || len(airports[0].Runways) != 1 {
		t.Fatalf("expected 1 airport with 1 runway, got %+v", airports)
	}

	rwy := &airports[0].Runways[0]
	if rwy.ID != "28R" {
		t.Fatalf("runway ID = %q, want 28R", rwy.ID)
	}
	if rwy.OtherLabel != "10L" {
		t.Errorf("OtherLabel = %q, want 10L", rwy.OtherLabel)
	}
	if rwy.Bounds().Empty() {
		t.Errorf("runway bounds were never set")
	}
	if rwy.Bounds().Radius <= 0 {
		t.Errorf("runway bounds radius = %v, want > 0 (covers a physical strip)", rwy.Bounds().Radius)
	}
}
