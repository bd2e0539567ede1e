// culler/culler_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package culler

import (
	"math"
	"testing"

	"github.com/atlasfg/atlas/geo"
)

type fakeObj struct {
	loc    geo.LatLon
	radius float64
}

func (f *fakeObj) Location() geo.LatLon { return f.loc }
func (f *fakeObj) Bounds() geo.Sphere {
	center := geo.GeodToCart(f.loc, 0)
	return geo.Sphere{Center: center, Radius: f.radius}
}

func TestIndicesWithinRange(t *testing.T) {
	pts := []geo.LatLon{
		{0, 0}, {89.9, 179.9}, {-89.9, -179.9}, {45, -100}, {-45, 100},
	}
	for _, p := range pts {
		i0, i1, i2 := indices(p)
		if i0 < 0 || i0 >= numL0 {
			t.Errorf("%v: i0 %d out of range", p, i0)
		}
		if i1 < 0 || i1 >= numL1 {
			t.Errorf("%v: i1 %d out of range", p, i1)
		}
		if i2 < 0 || i2 >= numL2 {
			t.Errorf("%v: i2 %d out of range", p, i2)
		}
	}
}

func TestAddAndPointIntersections(t *testing.T) {
	c := New()
	obj := &fakeObj{loc: geo.LatLon{Lat: 37.619, Lon: -122.375}, radius: 10000}
	c.Add(obj)

	inside := geo.GeodToCart(geo.LatLon{Lat: 37.619, Lon: -122.374}, 0)
	results := c.PointIntersections(inside)
	found := false
	for _, o := range results {
		if o == Object(obj) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected point search to find the object near its centre")
	}

	farAway := geo.GeodToCart(geo.LatLon{Lat: -37, Lon: 57}, 0)
	if len(c.PointIntersections(farAway)) != 0 {
		t.Errorf("expected no matches far from the object")
	}
}

func TestFrustumFullyContainsReturnsObject(t *testing.T) {
	c := New()
	obj := &fakeObj{loc: geo.LatLon{Lat: 0, Lon: 0}, radius: 1000}
	c.Add(obj)

	eye := geo.GeodToCart(geo.LatLon{Lat: 0, Lon: 0}, 1e7)
	// Looking straight down at the object, so the cone holds its whole
	// bounding sphere.
	f := geo.Frustum{
		Eye:       eye,
		Look:      geo.Vec3{X: -1, Y: 0, Z: 0},
		HalfAngle: math.Pi / 2,
		Far:       0,
	}

	results := c.Intersections(f)
	found := false
	for _, o := range results {
		if o == Object(obj) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected frustum search that contains the object's bounds to return it")
	}
}

func TestAttachedSearchInvalidatesOnAdd(t *testing.T) {
	c := New()
	s := c.Attach()
	eye := geo.GeodToCart(geo.LatLon{Lat: 0, Lon: 0}, 1e7)
	s.Move(eye, geo.Vec3{X: 0, Y: 0, Z: -1})
	s.Zoom(math.Pi/2, 0)

	before := len(s.Intersections())

	c.Add(&fakeObj{loc: geo.LatLon{Lat: 0, Lon: 0}, radius: 1000})

	after := s.Intersections()
	if len(after) <= before {
		t.Errorf("expected the attached search to pick up the newly added object")
	}
}

func TestAttachedPointSearchInvalidatesOnAdd(t *testing.T) {
	c := New()
	p := c.AttachPoint()
	point := geo.GeodToCart(geo.LatLon{Lat: 10, Lon: 10}, 0)
	p.SetPoint(point)

	before := len(p.Intersections())
	c.Add(&fakeObj{loc: geo.LatLon{Lat: 10, Lon: 10}, radius: 50000})
	after := p.Intersections()
	if len(after) <= before {
		t.Errorf("expected the attached point search to pick up the newly added object")
	}
}
