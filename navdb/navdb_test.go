// navdb/navdb_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdb

import (
	"errors"
	"strings"
	"testing"

	"github.com/atlasfg/atlas/atlaserr"
	"github.com/atlasfg/atlas/geo"
	"github.com/atlasfg/atlas/search"
)

const navFixture = "I\n" +
	"810 Version - data cycle 2008.05\n" +
	"3  37.61899  -122.37408  13  11580  130  17.0  SFO  SAN FRANCISCO VOR\n" +
	"99\n"

func TestVORLookupEndToEnd(t *testing.T) {
	elog := &atlaserr.ErrorLogger{}
	result, err := LoadNavaids(strings.NewReader(navFixture), 2008.05, elog)
	if err != nil {
		t.Fatalf("LoadNavaids: %v", err)
	}
	if elog.HaveErrors() {
		t.Fatalf("unexpected parse errors: %s", elog.String())
	}
	if len(result.Waypoints) != 1 {
		t.Fatalf("expected 1 navaid, got %d", len(result.Waypoints))
	}

	s := search.New()
	var searchable []search.Searchable
	for _, w := range result.Waypoints {
		searchable = append(searchable, w)
	}
	s.AddAll(searchable)

	centre := geo.GeodToCart(geo.LatLon{Lat: 37.6, Lon: -122.4}, 0)
	s.FindMatches("sfo", centre, 0)

	results := s.Results()
	if len(results) != 1 {
		t.Fatalf("expected exactly 1 match, got %d", len(results))
	}
	if !strings.HasPrefix(results[0].AsString(), "VOR: SFO SAN FRANCISCO VOR") {
		t.Errorf("expected AsString to start with %q, got %q",
			"VOR: SFO SAN FRANCISCO VOR", results[0].AsString())
	}
}

func TestAirwayFixUpgradeEndToEnd(t *testing.T) {
	foo := &Waypoint{ID: "FOO", Name: "FOO", Kind: KindFix, Loc: geo.LatLon{Lat: 40.0, Lon: -120.0}}
	foo.calcBounds()
	bar := &Waypoint{ID: "BAR", Name: "BAR", Kind: KindFix, Loc: geo.LatLon{Lat: 41.0, Lon: -119.0}}
	bar.calcBounds()

	navpoints := map[string][]navpoint{
		"FOO": {{loc: foo.Loc, w: foo}},
		"BAR": {{loc: bar.Loc, w: bar}},
	}

	awyFixture := "I\n" +
		"640 Version\n" +
		"FOO 40.0 -120.0 BAR 41.0 -119.0 1 0 999 V1\n" +
		"99\n"

	elog := &atlaserr.ErrorLogger{}
	airways, err := LoadAirways(strings.NewReader(awyFixture), navpoints, elog)
	if err != nil {
		t.Fatalf("LoadAirways: %v", err)
	}
	if elog.HaveErrors() {
		t.Fatalf("unexpected parse errors: %s", elog.String())
	}
	if len(airways) != 1 {
		t.Fatalf("expected 1 airway segment, got %d", len(airways))
	}

	if !foo.Enroute {
		t.Errorf("expected FOO.Enroute == true after loading a low airway referencing it")
	}
	if !bar.Enroute {
		t.Errorf("expected BAR.Enroute == true: it is the other endpoint of the same low airway")
	}
}

func TestAirwayHighSegmentDoesNotMarkEnroute(t *testing.T) {
	foo := &Waypoint{ID: "FOO", Name: "FOO", Kind: KindFix, Loc: geo.LatLon{Lat: 40.0, Lon: -120.0}}
	foo.calcBounds()
	navpoints := map[string][]navpoint{"FOO": {{loc: foo.Loc, w: foo}}}

	awyFixture := "I\n" +
		"640 Version\n" +
		"FOO 40.0 -120.0 BAR 41.0 -119.0 2 180 999 J1\n" +
		"99\n"

	elog := &atlaserr.ErrorLogger{}
	_, err := LoadAirways(strings.NewReader(awyFixture), navpoints, elog)
	if err != nil {
		t.Fatalf("LoadAirways: %v", err)
	}
	if foo.Enroute {
		t.Errorf("a high-altitude-only airway shouldn't mark its fix endpoint enroute")
	}
}

func TestLoadFixesBasic(t *testing.T) {
	fixture := "I\n600\n40.0 -120.0 BAZ\n99\n"
	elog := &atlaserr.ErrorLogger{}
	fixes, err := LoadFixes(strings.NewReader(fixture), elog)
	if err != nil {
		t.Fatalf("LoadFixes: %v", err)
	}
	if len(fixes) != 1 || fixes[0].ID != "BAZ" {
		t.Fatalf("expected 1 fix named BAZ, got %+v", fixes)
	}
}

func TestLoadNavaidsRejectsBadVersion(t *testing.T) {
	elog := &atlaserr.ErrorLogger{}
	_, err := LoadNavaids(strings.NewReader("I\n600 Version - data cycle 2008.05\n99\n"), 2008.05, elog)
	if err == nil {
		t.Fatalf("expected an error for a non-810 version header")
	}
	var badVersion *atlaserr.BadVersion
	if !errors.As(err, &badVersion) {
		t.Errorf("expected a BadVersion error, got %T: %v", err, err)
	}
}

func TestFixHasZeroRadiusBounds(t *testing.T) {
	fixture := "I\n600\n40.0 -120.0 BAZ\n99\n"
	elog := &atlaserr.ErrorLogger{}
	fixes, err := LoadFixes(strings.NewReader(fixture), elog)
	if err != nil {
		t.Fatalf("LoadFixes: %v", err)
	}
	if got := fixes[0].Bounds().Radius; got != 0 {
		t.Errorf("fix bounds radius = %v, want 0", got)
	}
}

func TestTypeTagMapsGSAndTACANToSharedTags(t *testing.T) {
	gs := &Waypoint{ID: "IGS", Kind: KindGS}
	if got := gs.typeTag(); got != "ILS:" {
		t.Errorf("GS typeTag() = %q, want %q", got, "ILS:")
	}
	tacan := &Waypoint{ID: "TAC", Kind: KindTACAN}
	if got := tacan.typeTag(); got != "DME:" {
		t.Errorf("TACAN typeTag() = %q, want %q", got, "DME:")
	}
}

func TestGroupAirwaysBuildsOrderedAggregate(t *testing.T) {
	foo := &Waypoint{ID: "FOO", Kind: KindFix}
	bar := &Waypoint{ID: "BAR", Kind: KindFix}
	baz := &Waypoint{ID: "BAZ", Kind: KindFix}

	seg1 := &AirwaySegment{Name: "V1", Low: true, Start: AirwayEnd{Resolved: foo}, End: AirwayEnd{Resolved: bar}}
	seg2 := &AirwaySegment{Name: "V1", Low: true, Start: AirwayEnd{Resolved: bar}, End: AirwayEnd{Resolved: baz}}
	seg3 := &AirwaySegment{Name: "J1", Low: false, Start: AirwayEnd{Resolved: foo}, End: AirwayEnd{Resolved: bar}}

	airways := GroupAirways([]*AirwaySegment{seg1, seg2, seg3})
	if len(airways) != 2 {
		t.Fatalf("expected 2 airways, got %d", len(airways))
	}

	v1 := airways[0]
	if v1.Name != "V1" || len(v1.Segments) != 2 {
		t.Fatalf("expected V1 with 2 segments, got %+v", v1)
	}
	if v1.NumWaypoints() != 3 {
		t.Errorf("NumWaypoints() = %d, want 3", v1.NumWaypoints())
	}
	if v1.NthWaypoint(0) != foo || v1.NthWaypoint(1) != bar || v1.NthWaypoint(2) != baz {
		t.Errorf("NthWaypoint sequence wrong: %v %v %v", v1.NthWaypoint(0), v1.NthWaypoint(1), v1.NthWaypoint(2))
	}
}

func TestAssembleILSAttachesGSAndMarkersBySuffix(t *testing.T) {
	loc := &Waypoint{ID: "ISFO", Name: "28R ILS-cat-I", Kind: KindLOC}
	gs := &Waypoint{ID: "ISFO", Name: "28R ILS-cat-I", Kind: KindGS}
	dme := &Waypoint{ID: "ISFO", Name: "28R ILS-cat-I", Kind: KindDME, Subtype: "DME-ILS"}
	om := &Waypoint{ID: "OM", Name: "28R OM", Kind: KindMarker, MarkerKind: MarkerOuter}
	unrelated := &Waypoint{ID: "OM", Name: "10L OM", Kind: KindMarker, MarkerKind: MarkerOuter}

	systems := AssembleILS([]*Waypoint{loc, gs, dme, om, unrelated})
	if len(systems.ILS) != 1 {
		t.Fatalf("expected 1 ILS system, got %d", len(systems.ILS))
	}

	ils := systems.ILS[0]
	if ils.GS != gs {
		t.Errorf("ILS.GS = %v, want %v", ils.GS, gs)
	}
	if ils.DME != dme {
		t.Errorf("ILS.DME = %v, want %v", ils.DME, dme)
	}
	if len(ils.Markers) != 1 || ils.Markers[0] != om {
		t.Errorf("ILS.Markers = %v, want [%v]", ils.Markers, om)
	}
	if systems.Owner(gs) != ils || systems.Owner(om) != ils {
		t.Errorf("Owner lookup didn't resolve GS/marker back to the ILS")
	}
	if systems.Owner(unrelated) != nil {
		t.Errorf("Owner(unrelated) = %v, want nil (different runway suffix)", systems.Owner(unrelated))
	}
}
