// Package vecmath provides the small amount of 3-D linear algebra shared by
// the ephemeris, frame and geometry packages.
package vecmath

import "math"

// Vec3 is a Cartesian vector in kilometers (or unitless for directions).
type Vec3 struct {
	X, Y, Z float64
}

// Dot returns the scalar product of v and o.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v Vec3) Scale(k float64) Vec3 {
	return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// Norm2 returns the squared magnitude.
func (v Vec3) Norm2() float64 {
	return v.Dot(v)
}

// Norm returns the magnitude.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// IsFinite reports whether every component is neither NaN nor ±Inf.
func (v Vec3) IsFinite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// FromLatLon returns the unit vector for a latitude/longitude pair given in
// radians, with longitude measured from the +X axis.
func FromLatLon(lat, lon float64) Vec3 {
	clat := math.Cos(lat)
	return Vec3{
		X: clat * math.Cos(lon),
		Y: clat * math.Sin(lon),
		Z: math.Sin(lat),
	}
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
