package transform

import (
	"math"

	"github.com/pedrokkrause/fourier-ephem/internal/ephemeris"
	"github.com/pedrokkrause/fourier-ephem/internal/vecmath"
)

// Observer is a point on the Earth's surface at a given instant, placed in
// the Sun-referenced frame. Observers are computed on demand and never
// stored across time samples.
type Observer struct {
	T        float64         // days since 1899-12-30
	LatDeg   float64         // north positive
	LonDeg   float64         // east positive
	Position vecmath.Vec3    // km
	Rotation vecmath.Matrix3 // FrameAt(T)
}

// SurfacePoint returns the Earth-fixed position (km) of a latitude/longitude
// pair in degrees, relative to the reference meridian. Latitudes outside
// [-90, 90] and any longitude are accepted and wrap through the usual
// trigonometric identities.
func SurfacePoint(latDeg, lonDeg float64) vecmath.Vec3 {
	return UnitSurfacePoint(latDeg, lonDeg).Scale(ephemeris.EarthRadiusKm)
}

// UnitSurfacePoint is SurfacePoint on the unit sphere.
func UnitSurfacePoint(latDeg, lonDeg float64) vecmath.Vec3 {
	lat := vecmath.DegToRad(latDeg)
	lon := vecmath.DegToRad(lonDeg - ReferenceMeridianDeg)
	return vecmath.FromLatLon(lat, lon)
}

// ObserverPosition returns the position (km) at time t of an observer at
// latDeg, lonDeg.
func ObserverPosition(t, latDeg, lonDeg float64) vecmath.Vec3 {
	return FrameAt(t).Apply(SurfacePoint(latDeg, lonDeg))
}

// NewObserver is ObserverPosition that also keeps the frame rotation, which
// is needed to find the local north for azimuths.
func NewObserver(t, latDeg, lonDeg float64) Observer {
	rot := FrameAt(t)
	return Observer{
		T:        t,
		LatDeg:   latDeg,
		LonDeg:   lonDeg,
		Position: rot.Apply(SurfacePoint(latDeg, lonDeg)),
		Rotation: rot,
	}
}

// NorthPole returns the direction of the Earth's rotation axis in the
// Sun-referenced frame.
func (o Observer) NorthPole() vecmath.Vec3 {
	return o.Rotation.Apply(vecmath.Vec3{Z: 1})
}

// SubsolarPoint returns the geographic latitude and longitude (degrees,
// longitude in (-180, 180]) where the Sun is at the zenith at time t.
func SubsolarPoint(t float64) (latDeg, lonDeg float64) {
	// The Sun lies on +X; map that direction back to Earth-fixed axes.
	d := FrameAt(t).Transpose().Apply(vecmath.Vec3{X: 1})
	latDeg = vecmath.RadToDeg(math.Asin(math.Max(-1, math.Min(1, d.Z))))
	lonDeg = vecmath.RadToDeg(math.Atan2(d.Y, d.X)) + ReferenceMeridianDeg
	lonDeg -= 360 * math.Round(lonDeg/360)
	return latDeg, lonDeg
}
