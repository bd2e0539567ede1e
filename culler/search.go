// culler/search.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package culler

import "github.com/atlasfg/atlas/geo"

// Search is a cached frustum query attached to a Culler: Zoom and Move
// mark it dirty, and Intersections only re-walks the index when it is.
// This is the dirty-flag cache design note from spec §9: the attached
// Search subscribes to index mutations via a back-reference (it's added
// to the Culler's list in Attach) that flips its own dirty flag.
type Search struct {
	culler  *Culler
	frustum geo.Frustum
	dirty   bool
	cached  []Object
}

// Attach creates a Search bound to c. The Culler holds a back-reference
// so future Add calls mark it dirty.
func (c *Culler) Attach() *Search {
	s := &Search{culler: c, dirty: true}
	c.searches = append(c.searches, s)
	return s
}

// Zoom sets the view volume's shape (left/right/bottom/top conceptually
// fold into HalfAngle/Far for Atlas's simplified cone frustum) and marks
// the search dirty.
func (s *Search) Zoom(halfAngle, far float64) {
	s.frustum.HalfAngle = halfAngle
	s.frustum.Far = far
	s.dirty = true
}

// Move updates the eye position and look direction and marks the search
// dirty.
func (s *Search) Move(eye, look geo.Vec3) {
	s.frustum.Eye = eye
	s.frustum.Look = look
	s.dirty = true
}

// Intersections returns the cached result, recomputing it first if the
// search or the underlying index has changed since the last call.
func (s *Search) Intersections() []Object {
	if s.dirty {
		s.cached = s.culler.Intersections(s.frustum)
		s.dirty = false
	}
	return s.cached
}

// PointSearch is the point-query analogue of Search.
type PointSearch struct {
	culler *Culler
	point  geo.Vec3
	dirty  bool
	cached []Object
}

// AttachPoint creates a PointSearch bound to c.
func (c *Culler) AttachPoint() *PointSearch {
	p := &PointSearch{culler: c, dirty: true}
	c.pointSrch = append(c.pointSrch, p)
	return p
}

// SetPoint moves the query point and marks the search dirty.
func (p *PointSearch) SetPoint(point geo.Vec3) {
	p.point = point
	p.dirty = true
}

// Intersections returns the cached result, recomputing it first if the
// search point or the underlying index has changed since the last call.
func (p *PointSearch) Intersections() []Object {
	if p.dirty {
		p.cached = p.culler.PointIntersections(p.point)
		p.dirty = false
	}
	return p.cached
}
