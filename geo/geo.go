// geo/geo.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package geo provides the geodesy and bounding-volume primitives that the
// rest of Atlas builds on: conversions between geographic (lat/lon) and
// earth-centered-earth-fixed (ECEF) cartesian coordinates, great-circle
// distance and bearing, magnetic variation lookup, and bounding-sphere
// arithmetic used by the spatial index.
package geo

import (
	"fmt"
	gomath "math"

	"gonum.org/v1/gonum/spatial/r3"
)

// WGS84 ellipsoid constants.
const (
	wgs84A  = 6378137.0         // semi-major axis, metres
	wgs84F  = 1 / 298.257223563 // flattening
	wgs84E2 = wgs84F * (2 - wgs84F)
)

// LatLon is a geographic position in degrees. Southern latitudes and
// western longitudes are negative.
type LatLon struct {
	Lat, Lon float64
}

func (p LatLon) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Lat, p.Lon)
}

// IsZero reports whether p is the zero value; used as a sentinel for
// "no location" in contexts where an explicit bool return is awkward.
func (p LatLon) IsZero() bool {
	return p.Lat == 0 && p.Lon == 0
}

// Vec3 is a 3D cartesian point or vector, in metres when it represents an
// ECEF position. It is an alias for gonum's r3.Vec so that culler and
// navdb code can hand ECEF positions directly to gonum's vector and
// spatial routines without a conversion step.
type Vec3 = r3.Vec

// Distance returns the straight-line (chord) distance between two ECEF
// points, in metres.
func Distance(a, b Vec3) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// Radians converts degrees to radians.
func Radians(d float64) float64 { return d / 180 * gomath.Pi }

// Degrees converts radians to degrees.
func Degrees(r float64) float64 { return r * 180 / gomath.Pi }

// GeodToCart converts a geodetic position (degrees, metres elevation
// above the WGS84 ellipsoid) to ECEF cartesian coordinates.
func GeodToCart(p LatLon, elevM float64) Vec3 {
	lat, lon := Radians(p.Lat), Radians(p.Lon)
	sinLat, cosLat := gomath.Sincos(lat)
	sinLon, cosLon := gomath.Sincos(lon)

	n := wgs84A / gomath.Sqrt(1-wgs84E2*sinLat*sinLat)

	return Vec3{
		X: (n + elevM) * cosLat * cosLon,
		Y: (n + elevM) * cosLat * sinLon,
		Z: (n*(1-wgs84E2) + elevM) * sinLat,
	}
}

// CartToGeod converts an ECEF cartesian position back to geodetic
// lat/lon/elevation using Bowring's iterative method, which converges to
// millimetre precision in a handful of iterations for terrestrial
// altitudes.
func CartToGeod(v Vec3) (p LatLon, elevM float64) {
	r := gomath.Hypot(v.X, v.Y)
	if r == 0 && v.Z == 0 {
		return LatLon{}, -wgs84A
	}

	lon := gomath.Atan2(v.Y, v.X)
	lat := gomath.Atan2(v.Z, r*(1-wgs84E2))

	for range 5 {
		sinLat := gomath.Sin(lat)
		n := wgs84A / gomath.Sqrt(1-wgs84E2*sinLat*sinLat)
		elevM = r/gomath.Cos(lat) - n
		lat = gomath.Atan2(v.Z, r*(1-wgs84E2*n/(n+elevM)))
	}

	return LatLon{Lat: Degrees(lat), Lon: Degrees(lon)}, elevM
}

// GeoInverse solves the geodetic inverse problem on the WGS84 ellipsoid
// via Vincenty's formula, returning the forward azimuth at a, the reverse
// azimuth at b (the bearing from b back toward a, i.e. the heading one
// would have arriving at b plus 180 degrees), and the distance between
// them in metres. The iteration stops after 200 steps even if it has not
// converged, which can happen for points very close to antipodal; the
// last iterate is then used as is, with no separate antipodal fallback.
func GeoInverse(a, b LatLon) (az1, az2, distM float64) {
	if a.Lat == b.Lat && a.Lon == b.Lon {
		return 0, 0, 0
	}

	const b_ = wgs84A * (1 - wgs84F)
	L := Radians(b.Lon - a.Lon)
	U1 := gomath.Atan((1 - wgs84F) * gomath.Tan(Radians(a.Lat)))
	U2 := gomath.Atan((1 - wgs84F) * gomath.Tan(Radians(b.Lat)))
	sinU1, cosU1 := gomath.Sincos(U1)
	sinU2, cosU2 := gomath.Sincos(U2)

	lambda := L
	var cosSqAlpha, sinSigma, cosSigma, sigma, cos2SigmaM float64
	for range 200 {
		sinLambda, cosLambda := gomath.Sincos(lambda)
		sinSigma = gomath.Sqrt(gomath.Pow(cosU2*sinLambda, 2) +
			gomath.Pow(cosU1*sinU2-sinU1*cosU2*cosLambda, 2))
		if sinSigma == 0 {
			return 0, 0, 0 // coincident points
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = gomath.Atan2(sinSigma, cosSigma)
		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		if cosSqAlpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		} else {
			cos2SigmaM = 0 // equatorial line
		}
		C := wgs84F / 16 * cosSqAlpha * (4 + wgs84F*(4-3*cosSqAlpha))
		lambdaPrev := lambda
		lambda = L + (1-C)*wgs84F*sinAlpha*
			(sigma + C*sinSigma*(cos2SigmaM+C*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if gomath.Abs(lambda-lambdaPrev) < 1e-12 {
			break
		}
	}

	uSq := cosSqAlpha * (wgs84A*wgs84A - b_*b_) / (b_ * b_)
	A := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	B := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := B * sinSigma * (cos2SigmaM + B/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
		B/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
	distM = b_ * A * (sigma - deltaSigma)

	sinLambda, cosLambda := gomath.Sincos(lambda)
	az1 = gomath.Mod(Degrees(gomath.Atan2(cosU2*sinLambda, cosU1*sinU2-sinU1*cosU2*cosLambda))+360, 360)
	az2 = gomath.Mod(Degrees(gomath.Atan2(cosU1*sinLambda, -sinU1*cosU2+cosU1*sinU2*cosLambda))+180, 360)

	return az1, az2, distM
}

// NMPerMetre converts a distance in metres to nautical miles.
const NMPerMetre = 1.0 / 1852.0

// MetresPerNM converts a distance in nautical miles to metres.
const MetresPerNM = 1852.0
