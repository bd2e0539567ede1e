// geo/sphere.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	gomath "math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sphere is a bounding sphere in ECEF space: every point it must contain
// lies within Radius metres of Center. It plays the role for the spatial
// index that Extent2D plays for 2D bounding boxes: a cheap, composable
// conservative bound that can be grown to cover more points and tested for
// overlap against a view frustum.
type Sphere struct {
	Center Vec3
	Radius float64
}

// EmptySphere returns a sphere that contains nothing; the first call to
// ExtendPoint or ExtendSphere on it takes on the shape of whatever it's
// extended by.
func EmptySphere() Sphere {
	return Sphere{Radius: -1}
}

// Empty reports whether s has never been extended to cover any point.
func (s Sphere) Empty() bool {
	return s.Radius < 0
}

// ExtendPoint returns the smallest sphere that contains both s and p,
// growing the radius and shifting the center as little as possible.
func (s Sphere) ExtendPoint(p Vec3) Sphere {
	if s.Empty() {
		return Sphere{Center: p, Radius: 0}
	}

	d := Distance(s.Center, p)
	if d <= s.Radius {
		return s
	}

	// Move the center halfway toward p by the amount needed so p lies
	// exactly on the new sphere's surface.
	newRadius := (s.Radius + d) / 2
	t := (newRadius - s.Radius) / d
	return Sphere{
		Center: r3.Add(s.Center, r3.Scale(t, r3.Sub(p, s.Center))),
		Radius: newRadius,
	}
}

// ExtendSphere returns the smallest sphere that contains both s and o.
func (s Sphere) ExtendSphere(o Sphere) Sphere {
	if s.Empty() {
		return o
	}
	if o.Empty() {
		return s
	}

	d := Distance(s.Center, o.Center)
	if s.Radius >= d+o.Radius {
		return s
	}
	if o.Radius >= d+s.Radius {
		return o
	}

	newRadius := (s.Radius + o.Radius + d) / 2
	t := (newRadius - s.Radius) / d
	return Sphere{
		Center: r3.Add(s.Center, r3.Scale(t, r3.Sub(o.Center, s.Center))),
		Radius: newRadius,
	}
}

// Union is an alias for ExtendSphere, matching the naming used by the
// rest of the bounding-volume API.
func (s Sphere) Union(o Sphere) Sphere {
	return s.ExtendSphere(o)
}

// Inside reports whether p lies within the sphere.
func (s Sphere) Inside(p Vec3) bool {
	if s.Empty() {
		return false
	}
	return Distance(s.Center, p) <= s.Radius
}

// Intersects reports whether s and o overlap.
func (s Sphere) Intersects(o Sphere) bool {
	if s.Empty() || o.Empty() {
		return false
	}
	return Distance(s.Center, o.Center) <= s.Radius+o.Radius
}

// Frustum is a simplified view volume for culling: an eye point, a unit
// look direction, and a half-angle (radians) describing a cone of view.
// It approximates the camera's visible region closely enough to cull
// spheres that fall entirely outside of it without the cost of a full
// six-plane frustum.
type Frustum struct {
	Eye       Vec3
	Look      Vec3 // unit vector
	HalfAngle float64
	Far       float64 // maximum view distance, metres; 0 means unbounded
}

// ContainsFrustum reports whether s might be visible within f: it returns
// false only when s is provably entirely outside the cone (or beyond
// Far), so it is safe to use as a conservative culling test that never
// discards something that should be drawn.
func (f Frustum) ContainsFrustum(s Sphere) bool {
	if s.Empty() {
		return false
	}

	toCenter := r3.Sub(s.Center, f.Eye)
	dist := r3.Norm(toCenter)

	if f.Far > 0 && dist-s.Radius > f.Far {
		return false
	}
	if dist <= s.Radius {
		// Eye is inside the sphere.
		return true
	}

	cosAngle := r3.Dot(toCenter, f.Look) / dist
	angle := gomath.Acos(clampUnit(cosAngle))

	// Angular radius subtended by the sphere, as seen from the eye.
	angularRadius := gomath.Asin(clampUnit(s.Radius / dist))

	return angle-angularRadius <= f.HalfAngle
}

// Classification is the three-way result of testing a bounding sphere
// against a Frustum.
type Classification int

const (
	Outside Classification = iota
	Inside
	Intersects
)

func (c Classification) String() string {
	switch c {
	case Outside:
		return "Outside"
	case Inside:
		return "Inside"
	case Intersects:
		return "Intersects"
	default:
		return "Classification(?)"
	}
}

// Classify reports whether s lies entirely outside f, entirely inside f,
// or straddles its boundary. Inner nodes of the spatial index use this to
// decide whether to prune a subtree (Outside), flush it whole
// (Inside), or recurse into it (Intersects).
func (f Frustum) Classify(s Sphere) Classification {
	if s.Empty() {
		return Outside
	}

	toCenter := r3.Sub(s.Center, f.Eye)
	dist := r3.Norm(toCenter)

	if f.Far > 0 && dist-s.Radius > f.Far {
		return Outside
	}
	if dist <= s.Radius {
		// Eye is inside the sphere: never provably Outside, but also
		// not provably Inside the cone (the sphere may extend behind
		// the eye), so treat conservatively as Intersects.
		return Intersects
	}

	cosAngle := r3.Dot(toCenter, f.Look) / dist
	angle := gomath.Acos(clampUnit(cosAngle))
	angularRadius := gomath.Asin(clampUnit(s.Radius / dist))

	if angle-angularRadius > f.HalfAngle {
		return Outside
	}
	if angle+angularRadius <= f.HalfAngle && (f.Far <= 0 || dist+s.Radius <= f.Far) {
		return Inside
	}
	return Intersects
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
