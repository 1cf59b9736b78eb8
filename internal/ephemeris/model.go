package ephemeris

import (
	"math"

	"github.com/pedrokkrause/fourier-ephem/internal/vecmath"
)

// Physical radii in km.
const (
	SunRadiusKm   = 696342.0
	MoonRadiusKm  = 1737.4
	EarthRadiusKm = 6371.0
)

const (
	// SynodicMonthDays is the mean period between new moons.
	SynodicMonthDays = 29.530589

	// DefaultLongitudeOffsetDeg is the phase of the secular longitude term
	// that matches the fitted coefficient tables.
	DefaultLongitudeOffsetDeg = 262827.5235067

	// DefaultDistanceMeanKm is the mean Earth-Moon distance added to the
	// distance series.
	DefaultDistanceMeanKm = 385000.4411
)

// Tables holds the three fitted lunar series and the constants that go
// with them. Tables are loaded once and never mutated.
type Tables struct {
	Longitude HarmonicSeries // degrees, residual from uniform synodic motion
	Latitude  HarmonicSeries // degrees
	Distance  HarmonicSeries // km, residual from DistanceMeanKm

	LongitudeOffsetDeg float64
	DistanceMeanKm     float64
}

// Model evaluates lunar and solar positions from a set of Tables.
// Safe for concurrent use.
type Model struct {
	tables Tables
}

// NewModel creates a Model. Zero offsets in tables are replaced by the
// defaults for the fitted tables.
func NewModel(tables Tables) *Model {
	if tables.LongitudeOffsetDeg == 0 {
		tables.LongitudeOffsetDeg = DefaultLongitudeOffsetDeg
	}
	if tables.DistanceMeanKm == 0 {
		tables.DistanceMeanKm = DefaultDistanceMeanKm
	}
	return &Model{tables: tables}
}

// MoonGSE returns the Moon's latitude (°), longitude (°) and geocentric
// distance (km) in the Sun-referenced frame at time t.
//
// The longitude is not wrapped: it grows by 360° every synodic month.
func (m *Model) MoonGSE(t float64) (latDeg, lonDeg, distKm float64) {
	lonDeg = m.tables.Longitude.Eval(t) + 360.0/SynodicMonthDays*t - m.tables.LongitudeOffsetDeg
	latDeg = m.tables.Latitude.Eval(t)
	distKm = m.tables.Distance.Eval(t) + m.tables.DistanceMeanKm
	return latDeg, lonDeg, distKm
}

// MoonPosition returns the Moon's geocentric Cartesian position in km.
func (m *Model) MoonPosition(t float64) vecmath.Vec3 {
	latDeg, lonDeg, dist := m.MoonGSE(t)
	lat := vecmath.DegToRad(latDeg)
	lon := vecmath.DegToRad(lonDeg)

	dcosLat := dist * math.Cos(lat)
	return vecmath.Vec3{
		X: dcosLat * math.Cos(lon),
		Y: dcosLat * math.Sin(lon),
		Z: dist * math.Sin(lat),
	}
}

// SunDistance returns the Earth-Sun distance in km.
func (m *Model) SunDistance(t float64) float64 {
	return SunDistance(t)
}

// SunPosition returns the Sun's geocentric position. By construction of the
// frame the Sun is always on the +X axis.
func (m *Model) SunPosition(t float64) vecmath.Vec3 {
	return vecmath.Vec3{X: SunDistance(t)}
}
