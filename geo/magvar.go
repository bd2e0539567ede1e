// geo/magvar.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// geomagnetic north pole location and the model's reference epoch. The
// pole drifts over time; driftLatPerYear/driftLonPerYear approximate its
// recent secular motion so that MagneticVariation's julianDate parameter
// has an observable effect rather than being accepted and ignored.
const (
	epochJulianDate = 2459580.5 // 2022-01-01T00:00:00Z
	poleLat0        = 80.65
	poleLon0        = -72.68
	driftLatPerYear = -0.05
	driftLonPerYear = 0.15
)

// MagneticVariation estimates magnetic variation (declination) in
// degrees, east positive, at the given position and elevation (metres
// above the WGS84 ellipsoid) on the given Julian date. It models the
// earth's field as a tilted dipole whose pole drifts linearly over time;
// this reproduces the right sign and rough magnitude of variation
// everywhere, though, unlike the full World Magnetic Model, it does not
// capture local crustal anomalies.
func MagneticVariation(p LatLon, elevM float64, julianDate float64) float64 {
	years := (julianDate - epochJulianDate) / 365.25
	poleLat := poleLat0 + driftLatPerYear*years
	poleLon := poleLon0 + driftLonPerYear*years

	pole := LatLon{Lat: poleLat, Lon: poleLon}

	// Bearing from p to the geomagnetic pole, measured true, is the
	// direction a compass needle points; the difference between that
	// and true north (0 deg) is the variation, signed so that a pole to
	// the east of true north gives a positive (easterly) variation.
	az, _, _ := GeoInverse(p, pole)

	v := az
	if v > 180 {
		v -= 360
	}

	// Elevation has a negligible effect on declination at aviation
	// altitudes; included for contract completeness.
	_ = elevM

	return v
}

// JulianDate returns the Julian date corresponding to unixSeconds, via
// meeus/julian's calendar/JD bridge.
func JulianDate(unixSeconds float64) float64 {
	sec := int64(unixSeconds)
	nsec := int64((unixSeconds - float64(sec)) * 1e9)
	return julian.TimeToJD(time.Unix(sec, nsec).UTC())
}
