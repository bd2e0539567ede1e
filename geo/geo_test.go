// geo/geo_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"math"
	"testing"
)

func TestGeodCartRoundTrip(t *testing.T) {
	pts := []struct {
		ll   LatLon
		elev float64
	}{
		{LatLon{40.6328888, -73.771385}, 4}, // JFK VOR
		{LatLon{0, 0}, 0},
		{LatLon{-33.9399, 151.1753}, 21}, // SYD
		{LatLon{89.9, 10}, 1000},
	}

	for _, p := range pts {
		v := GeodToCart(p.ll, p.elev)
		ll2, elev2 := CartToGeod(v)
		if math.Abs(ll2.Lat-p.ll.Lat) > 1e-6 {
			t.Errorf("%v: got lat %.9g, expected %.9g", p.ll, ll2.Lat, p.ll.Lat)
		}
		if math.Abs(ll2.Lon-p.ll.Lon) > 1e-6 {
			t.Errorf("%v: got lon %.9g, expected %.9g", p.ll, ll2.Lon, p.ll.Lon)
		}
		if math.Abs(elev2-p.elev) > 1e-3 {
			t.Errorf("%v: got elev %.9g, expected %.9g", p.ll, elev2, p.elev)
		}
	}
}

func TestGeoInverseKnownDistance(t *testing.T) {
	// JFK to LAX, great-circle distance is approximately 2145 nm.
	jfk := LatLon{40.6413, -73.7781}
	lax := LatLon{33.9416, -118.4085}

	_, _, distM := GeoInverse(jfk, lax)
	distNM := distM * NMPerMetre

	if math.Abs(distNM-2144) > 10 {
		t.Errorf("got %.1f nm, expected approximately 2144 nm", distNM)
	}
}

func TestGeoInverseCoincident(t *testing.T) {
	p := LatLon{51.5, -0.1}
	az1, az2, dist := GeoInverse(p, p)
	if az1 != 0 || az2 != 0 || dist != 0 {
		t.Errorf("coincident points: got (%v, %v, %v), expected (0, 0, 0)", az1, az2, dist)
	}
}

func TestParseLatLon(t *testing.T) {
	tests := []struct {
		lat, lon string
		want     LatLon
	}{
		{"N40.37.58.400", "W073.46.17.000", LatLon{40.632888888, -73.771388888}},
		{"40.6328888", "-73.771385", LatLon{40.6328888, -73.771385}},
		{"S33:56:23", "E151:10:31", LatLon{-33.939722, 151.175277}},
	}

	for _, tc := range tests {
		got, err := ParseLatLon(tc.lat, tc.lon)
		if err != nil {
			t.Fatalf("%s/%s: unexpected error: %v", tc.lat, tc.lon, err)
		}
		if math.Abs(got.Lat-tc.want.Lat) > 1e-4 {
			t.Errorf("%s: got lat %.6f, expected %.6f", tc.lat, got.Lat, tc.want.Lat)
		}
		if math.Abs(got.Lon-tc.want.Lon) > 1e-4 {
			t.Errorf("%s: got lon %.6f, expected %.6f", tc.lon, got.Lon, tc.want.Lon)
		}
	}

	if _, err := ParseLatLon("", "W073.46.17.000"); err == nil {
		t.Errorf("expected error for empty latitude string")
	}
}

func TestSphereExtendPoint(t *testing.T) {
	s := EmptySphere()
	if !s.Empty() {
		t.Fatalf("EmptySphere should report Empty()")
	}

	s = s.ExtendPoint(Vec3{0, 0, 0})
	if s.Radius != 0 || s.Center != (Vec3{0, 0, 0}) {
		t.Errorf("first ExtendPoint should produce a zero-radius sphere at the point")
	}

	s = s.ExtendPoint(Vec3{10, 0, 0})
	if math.Abs(s.Radius-5) > 1e-9 {
		t.Errorf("got radius %v, expected 5", s.Radius)
	}
	if !s.Inside(Vec3{0, 0, 0}) || !s.Inside(Vec3{10, 0, 0}) {
		t.Errorf("sphere should contain both extension points")
	}
}

func TestSphereExtendSphereContainment(t *testing.T) {
	big := Sphere{Center: Vec3{0, 0, 0}, Radius: 100}
	small := Sphere{Center: Vec3{10, 0, 0}, Radius: 5}

	u := big.ExtendSphere(small)
	if u != big {
		t.Errorf("extending a sphere by one it already contains should not change it")
	}
}

func TestSphereIntersects(t *testing.T) {
	a := Sphere{Center: Vec3{0, 0, 0}, Radius: 5}
	b := Sphere{Center: Vec3{8, 0, 0}, Radius: 5}
	c := Sphere{Center: Vec3{20, 0, 0}, Radius: 5}

	if !a.Intersects(b) {
		t.Errorf("a and b should intersect")
	}
	if a.Intersects(c) {
		t.Errorf("a and c should not intersect")
	}
}

func TestFrustumContainsFrustum(t *testing.T) {
	f := Frustum{
		Eye:       Vec3{0, 0, 0},
		Look:      Vec3{1, 0, 0},
		HalfAngle: math.Pi / 8,
		Far:       1000,
	}

	inFront := Sphere{Center: Vec3{100, 0, 0}, Radius: 1}
	if !f.ContainsFrustum(inFront) {
		t.Errorf("sphere directly ahead should be visible")
	}

	behind := Sphere{Center: Vec3{-100, 0, 0}, Radius: 1}
	if f.ContainsFrustum(behind) {
		t.Errorf("sphere behind the eye should not be visible")
	}

	tooFar := Sphere{Center: Vec3{5000, 0, 0}, Radius: 1}
	if f.ContainsFrustum(tooFar) {
		t.Errorf("sphere beyond Far should not be visible")
	}
}

func TestMagneticVariationPlausible(t *testing.T) {
	// Spot check: variation should vary smoothly and not panic for a
	// range of representative positions and dates.
	pts := []LatLon{
		{40.63, -73.77},
		{51.47, -0.45},
		{-33.87, 151.21},
	}
	for _, p := range pts {
		v := MagneticVariation(p, 0, JulianDate(1700000000))
		if math.IsNaN(v) || math.Abs(v) > 180 {
			t.Errorf("%v: got implausible magnetic variation %v", p, v)
		}
	}
}
