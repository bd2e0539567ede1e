// tile/name.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package tile manages the scenery tiles backing Atlas's maps: naming,
// per-tile task scheduling, and the non-blocking external-process
// driver (rsync, then the Map tool) that syncs and renders them.
package tile

import (
	"fmt"
	"math"
	"strconv"

	"github.com/atlasfg/atlas/util"
)

// LatLonToTile computes the standard 7-character tile name (e.g.
// "w121n36"), its 10x10-degree parent directory ("w130n30"), and the
// latitude/longitude of the tile's center, for the tile containing
// (lat, lon). Out-of-range coordinates are clipped: lat to [-90, 89],
// lon to [-180, 179].
func LatLonToTile(lat, lon float64) (name, parentDir string, centerLat, centerLon float64) {
	ilat := util.Clamp(int(math.Floor(lat)), -90, 89)
	ilon := util.Clamp(int(math.Floor(lon)), -180, 179)

	lat10 := int(math.Floor(float64(ilat)/10.0)) * 10
	lon10 := int(math.Floor(float64(ilon)/10.0)) * 10

	centerLat = float64(ilat) + 0.5
	centerLon = float64(ilon) + 0.5

	ns := byte('n')
	if ilat < 0 {
		ns = 's'
	}
	ew := byte('e')
	if ilon < 0 {
		ew = 'w'
	}

	name = fmt.Sprintf("%c%03d%c%02d", ew, util.Abs(ilon), ns, util.Abs(ilat))
	parentDir = fmt.Sprintf("%c%03d%c%02d", ew, util.Abs(lon10), ns, util.Abs(lat10))
	return
}

// NameToCentre is the exact inverse of LatLonToTile's name: given a
// 7-character tile name, it returns the latitude/longitude of the
// tile's center.
func NameToCentre(name string) (lat, lon float64, ok bool) {
	if len(name) != 7 {
		return 0, 0, false
	}
	ew, ns := name[0], name[4]
	if (ew != 'e' && ew != 'w') || (ns != 'n' && ns != 's') {
		return 0, 0, false
	}

	ilon, err1 := strconv.Atoi(name[1:4])
	ilat, err2 := strconv.Atoi(name[5:7])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}

	if ew == 'w' {
		ilon = -ilon
	}
	if ns == 's' {
		ilat = -ilat
	}

	return float64(ilat) + 0.5, float64(ilon) + 0.5, true
}

