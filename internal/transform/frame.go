// Package transform builds the time-dependent rotation that carries points
// fixed on the Earth's surface into the Sun-referenced frame used by the
// ephemeris, and places observers in that frame.
//
// The rotation is composed of three parts applied in a fixed order:
//
//	R(t) = R_orbit(t) · R_equinox(t) · R_day(t)
//
// R_day spins the Earth about its polar axis at the sidereal rate, counted
// from the March equinox of 1900. R_equinox tilts the equatorial plane onto
// the ecliptic using the obliquity of date. R_orbit follows the Earth's
// elliptical motion, rotating by the change in true anomaly since the same
// equinox so that it is the identity at the reference epoch.
//
// At the reference epoch the meridian at ReferenceMeridianDeg faces the Sun.
// Reversing the order of the factors misaligns the frame.
package transform

import (
	"math"

	"github.com/pedrokkrause/fourier-ephem/internal/ephemeris"
	"github.com/pedrokkrause/fourier-ephem/internal/vecmath"
)

const (
	// EquinoxEpoch is the March equinox of 1900 (1900-03-21 07:35 UT) in
	// days since 1899-12-30.
	EquinoxEpoch = 36605.3161689815

	// ReferenceMeridianDeg is the geographic longitude that faces the Sun
	// at EquinoxEpoch.
	ReferenceMeridianDeg = 68.05

	// SiderealDayDays is the Earth's rotation period relative to the equinox.
	SiderealDayDays = 0.9972695662744252
)

// DayAngle returns the Earth's rotation angle in radians since EquinoxEpoch.
func DayAngle(t float64) float64 {
	return 2 * math.Pi / SiderealDayDays * (t - EquinoxEpoch)
}

// DayRotation returns the rotation about +Z by angle (radians).
func DayRotation(angle float64) vecmath.Matrix3 {
	c, s := math.Cos(angle), math.Sin(angle)
	return vecmath.Matrix3{
		{c, -s, 0},
		{s, c, 0},
		{0, 0, 1},
	}
}

// EquinoxRotation returns the rotation about +X that takes equatorial
// coordinates to ecliptic coordinates for obliquity obl (radians).
func EquinoxRotation(obl float64) vecmath.Matrix3 {
	c, s := math.Cos(obl), math.Sin(obl)
	return vecmath.Matrix3{
		{1, 0, 0},
		{0, c, s},
		{0, -s, c},
	}
}

// OrbitRotation returns the rotation about +Z by -angle (radians): as the
// Earth advances along its orbit the Sun-referenced axes turn with it.
func OrbitRotation(angle float64) vecmath.Matrix3 {
	c, s := math.Cos(angle), math.Sin(angle)
	return vecmath.Matrix3{
		{c, s, 0},
		{-s, c, 0},
		{0, 0, 1},
	}
}

// OrbitAngle returns the true anomaly advance since EquinoxEpoch. Using the
// difference rather than the raw anomaly keeps the rotation continuous and
// anchored to the reference epoch.
func OrbitAngle(t float64) float64 {
	return ephemeris.TrueAnomaly(t) - ephemeris.TrueAnomaly(EquinoxEpoch)
}

// FrameAt returns R(t), the rotation from the Earth-fixed reference frame
// (X toward ReferenceMeridianDeg on the equator, Z toward the north pole)
// into the Sun-referenced frame at time t.
func FrameAt(t float64) vecmath.Matrix3 {
	day := DayRotation(DayAngle(t))
	equinox := EquinoxRotation(vecmath.DegToRad(ephemeris.Obliquity(t)))
	orbit := OrbitRotation(OrbitAngle(t))
	return orbit.Mul(equinox).Mul(day)
}
