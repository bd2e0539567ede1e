// culler/culler.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package culler implements Atlas's hierarchical spatial index: a
// three-level grid of bounding spheres over the whole globe (18 cells of
// 60°x60°, each split into 36 cells of 10°x10°, each split into 100 cells
// of 1°x1°) that answers "what's in this view frustum?" and "what
// contains this point?" in sublinear time, the way
// mmp-vice/aviation/db.go's on-demand quantized AirspaceGrid/MVAGrid
// buckets objects into a coarse map-keyed grid and refines on query —
// generalized here to a fixed three-level hierarchy with lazy bounds and
// a dirty-flag cache, per the design note on incremental search and dirty
// flags.
package culler

import (
	"math"

	"github.com/samber/lo"

	"github.com/atlasfg/atlas/geo"
)

const (
	numL0 = 18  // 6 longitude bands x 3 latitude bands, 60x60 deg each
	numL1 = 36  // 6x6, 10x10 deg each
	numL2 = 100 // 10x10, 1x1 deg each
)

// Object is anything the culler can hold: a navaid, airport, fix, or
// other entity with a location and a bounding sphere.
type Object interface {
	Bounds() geo.Sphere
	Location() geo.LatLon
}

// Culler is the root of the three-level hierarchy.
type Culler struct {
	l0        [numL0]*l0Node
	searches  []*Search
	pointSrch []*PointSearch
}

type l0Node struct {
	bounds geo.Sphere
	dirty  bool
	kids   [numL1]*l1Node
}

type l1Node struct {
	bounds geo.Sphere
	dirty  bool
	kids   [numL2]*leaf
}

type leaf struct {
	bounds  geo.Sphere
	objects []Object
}

// New returns an empty Culler.
func New() *Culler {
	return &Culler{}
}

// indices computes the L0/L1/L2 cell indices for a geographic position.
func indices(p geo.LatLon) (i0, i1, i2 int) {
	lon := math.Mod(p.Lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	lat := p.Lat + 90
	if lat < 0 {
		lat = 0
	}
	if lat >= 180 {
		lat = 180 - 1e-9
	}

	lonBand0, latBand0 := int(lon/60), int(lat/60)
	if latBand0 > 2 {
		latBand0 = 2
	}
	i0 = latBand0*6 + lonBand0

	remLon1, remLat1 := math.Mod(lon, 60), math.Mod(lat, 60)
	lonBand1, latBand1 := int(remLon1/10), int(remLat1/10)
	if lonBand1 > 5 {
		lonBand1 = 5
	}
	if latBand1 > 5 {
		latBand1 = 5
	}
	i1 = latBand1*6 + lonBand1

	remLon2, remLat2 := math.Mod(remLon1, 10), math.Mod(remLat1, 10)
	lonBand2, latBand2 := int(remLon2), int(remLat2)
	if lonBand2 > 9 {
		lonBand2 = 9
	}
	if latBand2 > 9 {
		latBand2 = 9
	}
	i2 = latBand2*10 + lonBand2

	return i0, i1, i2
}

// Add inserts obj into the hierarchy, creating whatever branch nodes are
// needed, extends the leaf's bounds immediately, and marks every
// ancestor (and every attached Search/PointSearch) dirty so the next
// query recomputes what it needs to.
func (c *Culler) Add(obj Object) {
	i0, i1, i2 := indices(obj.Location())

	n0 := c.l0[i0]
	if n0 == nil {
		n0 = &l0Node{bounds: geo.EmptySphere()}
		c.l0[i0] = n0
	}
	n1 := n0.kids[i1]
	if n1 == nil {
		n1 = &l1Node{bounds: geo.EmptySphere()}
		n0.kids[i1] = n1
	}
	lf := n1.kids[i2]
	if lf == nil {
		lf = &leaf{bounds: geo.EmptySphere()}
		n1.kids[i2] = lf
	}

	lf.objects = append(lf.objects, obj)
	lf.bounds = lf.bounds.ExtendSphere(obj.Bounds())
	n1.dirty = true
	n0.dirty = true

	for _, s := range c.searches {
		s.dirty = true
	}
	for _, p := range c.pointSrch {
		p.dirty = true
	}
}

// refresh returns n1's bounds, recomputing it (and cleaning any dirty
// children) first if it's marked dirty.
func (n1 *l1Node) refresh() geo.Sphere {
	if n1.dirty {
		b := geo.EmptySphere()
		for _, lf := range n1.kids {
			if lf != nil {
				b = b.ExtendSphere(lf.bounds)
			}
		}
		n1.bounds = b
		n1.dirty = false
	}
	return n1.bounds
}

func (n0 *l0Node) refresh() geo.Sphere {
	if n0.dirty {
		b := geo.EmptySphere()
		for _, n1 := range n0.kids {
			if n1 != nil {
				b = b.ExtendSphere(n1.refresh())
			}
		}
		n0.bounds = b
		n0.dirty = false
	}
	return n0.bounds
}

// Intersections returns every object whose bounds intersect f, pruning
// whole subtrees that lie entirely outside f and flushing whole subtrees
// that lie entirely inside f without per-object retesting.
func (c *Culler) Intersections(f geo.Frustum) []Object {
	var out []Object
	for _, n0 := range c.l0 {
		if n0 == nil {
			continue
		}
		out = append(out, intersectL0(n0, f)...)
	}
	return out
}

func intersectL0(n0 *l0Node, f geo.Frustum) []Object {
	bounds := n0.refresh()
	switch f.Classify(bounds) {
	case geo.Outside:
		return nil
	case geo.Inside:
		return grabAllL0(n0)
	default:
		var out []Object
		for _, n1 := range n0.kids {
			if n1 != nil {
				out = append(out, intersectL1(n1, f)...)
			}
		}
		return out
	}
}

func intersectL1(n1 *l1Node, f geo.Frustum) []Object {
	bounds := n1.refresh()
	switch f.Classify(bounds) {
	case geo.Outside:
		return nil
	case geo.Inside:
		return grabAllL1(n1)
	default:
		var out []Object
		for _, lf := range n1.kids {
			if lf != nil {
				out = append(out, intersectLeaf(lf, f)...)
			}
		}
		return out
	}
}

func intersectLeaf(lf *leaf, f geo.Frustum) []Object {
	switch f.Classify(lf.bounds) {
	case geo.Outside:
		return nil
	case geo.Inside:
		return append([]Object(nil), lf.objects...)
	default:
		return lo.Filter(lf.objects, func(o Object, _ int) bool {
			return f.Classify(o.Bounds()) != geo.Outside
		})
	}
}

func grabAllL0(n0 *l0Node) []Object {
	var out []Object
	for _, n1 := range n0.kids {
		if n1 != nil {
			out = append(out, grabAllL1(n1)...)
		}
	}
	return out
}

func grabAllL1(n1 *l1Node) []Object {
	var out []Object
	for _, lf := range n1.kids {
		if lf != nil {
			out = append(out, lf.objects...)
		}
	}
	return out
}

// PointIntersections returns every object whose bounds contain p,
// following the same prune/recurse structure as Intersections but
// testing distance-to-centre instead of a frustum classification.
func (c *Culler) PointIntersections(p geo.Vec3) []Object {
	var out []Object
	for _, n0 := range c.l0 {
		if n0 == nil {
			continue
		}
		bounds := n0.refresh()
		if !bounds.Inside(p) {
			continue
		}
		for _, n1 := range n0.kids {
			if n1 == nil {
				continue
			}
			b1 := n1.refresh()
			if !b1.Inside(p) {
				continue
			}
			for _, lf := range n1.kids {
				if lf == nil || !lf.bounds.Inside(p) {
					continue
				}
				out = append(out, lo.Filter(lf.objects, func(o Object, _ int) bool {
					return o.Bounds().Inside(p)
				})...)
			}
		}
	}
	return out
}
