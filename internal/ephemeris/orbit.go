package ephemeris

import "math"

const (
	// PerihelionEpoch is a perihelion passage of the Earth-Moon barycenter
	// (2000-01-03).
	PerihelionEpoch = 36528.9967245370

	// TropicalYearDays is the mean tropical year.
	TropicalYearDays = 365.24218

	// Eccentricity of the Earth's orbit.
	Eccentricity = 0.01671022
)

// SunDistance returns the Earth-Sun distance in km, a single sinusoid
// around the mean distance.
func SunDistance(t float64) float64 {
	return 149618828.7 + 2499293.007*math.Sin(0.017201970017786433*t-1.62743406471495)
}

// Obliquity returns the obliquity of the ecliptic in degrees. It decreases
// linearly with time.
func Obliquity(t float64) float64 {
	return 23.45229001425579 - 0.000000356200235759373*t
}

// MeanAnomaly returns the Earth's mean anomaly in radians. It is not reduced
// to [0, 2π).
func MeanAnomaly(t float64) float64 {
	return 2 * math.Pi / TropicalYearDays * (t - PerihelionEpoch)
}

// TrueAnomaly returns the Earth's true anomaly in radians using the equation
// of center truncated at e⁵.
func TrueAnomaly(t float64) float64 {
	ma := MeanAnomaly(t)
	e := Eccentricity
	e2 := e * e
	e3 := e2 * e
	e4 := e3 * e
	e5 := e4 * e

	return ma +
		(2*e-e3/4+5.0/96.0*e5)*math.Sin(ma) +
		(5.0/4.0*e2-11.0/24.0*e4)*math.Sin(2*ma) +
		13.0/12.0*e3*math.Sin(3*ma)
}
