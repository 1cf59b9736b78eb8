// Package geometry computes apparent angular quantities of bodies as seen
// from an observer: altitude, azimuth, separation, angular radius and the
// fraction of one disk covered by another. All inputs are Cartesian
// positions in km in the shared Sun-referenced frame; results are in
// degrees unless stated otherwise.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/pedrokkrause/fourier-ephem/internal/vecmath"
)

// ErrDomain is returned when the geometry is degenerate: a zero-length
// direction, a non-finite input, or an inverse cosine argument outside
// [-1, 1] by more than rounding error.
var ErrDomain = errors.New("geometry: undefined for input")

// acosTolerance is how far outside [-1, 1] a cosine may drift through
// rounding before it is treated as a domain error instead of clamped.
const acosTolerance = 1e-9

// acos is math.Acos with clamping of rounding drift and ErrDomain for
// anything further out.
func acos(c float64) (float64, error) {
	switch {
	case math.IsNaN(c):
		return 0, fmt.Errorf("%w: arccos of NaN", ErrDomain)
	case c > 1+acosTolerance || c < -1-acosTolerance:
		return 0, fmt.Errorf("%w: arccos argument %g", ErrDomain, c)
	case c > 1:
		c = 1
	case c < -1:
		c = -1
	}
	return math.Acos(c), nil
}

// angle returns the angle in radians between u and v.
func angle(u, v vecmath.Vec3) (float64, error) {
	if !u.IsFinite() || !v.IsFinite() {
		return 0, fmt.Errorf("%w: non-finite vector", ErrDomain)
	}
	n := math.Sqrt(u.Norm2() * v.Norm2())
	if n == 0 {
		return 0, fmt.Errorf("%w: zero-length vector", ErrDomain)
	}
	return acos(u.Dot(v) / n)
}

// Altitude returns the geometric altitude of body above the observer's
// horizon, taking the horizon as the plane normal to the observer's
// position vector.
func Altitude(observer, body vecmath.Vec3) (float64, error) {
	a, err := angle(body.Sub(observer), observer)
	if err != nil {
		return 0, fmt.Errorf("altitude: %w", err)
	}
	return 90 - vecmath.RadToDeg(a), nil
}

// Azimuth returns the navigational azimuth of body (0 = north, 90 = east)
// for an observer whose frame rotation is rot. The local north is the
// rotated polar axis projected onto the observer's tangent plane, so the
// azimuth is undefined at the poles and for a body at the zenith.
func Azimuth(observer vecmath.Vec3, rot vecmath.Matrix3, body vecmath.Vec3) (float64, error) {
	if !observer.IsFinite() || observer.Norm2() == 0 {
		return 0, fmt.Errorf("azimuth: %w: observer position", ErrDomain)
	}
	up := observer.Scale(1 / observer.Norm())

	dir := body.Sub(observer)
	az := dir.Sub(up.Scale(dir.Dot(up)))
	pole := rot.Apply(vecmath.Vec3{Z: 1})
	north := pole.Sub(up.Scale(pole.Dot(up)))

	// Angle from south, so a body due south reads 0 before the offset.
	theta, err := angle(az, north.Scale(-1))
	if err != nil {
		return 0, fmt.Errorf("azimuth: %w", err)
	}
	// north × east points down: a negative sign means the body is east.
	if north.Cross(az).Dot(observer) < 0 {
		theta = -theta
	}
	deg := math.Mod(vecmath.RadToDeg(theta)+180, 360)
	if deg < 0 {
		deg += 360
	}
	return deg, nil
}

// Separation returns the angular distance in degrees between two bodies as
// seen by the observer.
func Separation(observer, body1, body2 vecmath.Vec3) (float64, error) {
	a, err := separation(observer, body1, body2)
	if err != nil {
		return 0, err
	}
	return vecmath.RadToDeg(a), nil
}

func separation(observer, body1, body2 vecmath.Vec3) (float64, error) {
	a, err := angle(body1.Sub(observer), body2.Sub(observer))
	if err != nil {
		return 0, fmt.Errorf("separation: %w", err)
	}
	return a, nil
}

// AngularRadius returns the apparent radius in degrees of a body of the
// given physical radius (km). It uses the small-angle approximation
// radius/distance, which is accurate for the Sun and Moon.
func AngularRadius(observer, body vecmath.Vec3, radiusKm float64) (float64, error) {
	a, err := angularRadius(observer, body, radiusKm)
	if err != nil {
		return 0, err
	}
	return vecmath.RadToDeg(a), nil
}

func angularRadius(observer, body vecmath.Vec3, radiusKm float64) (float64, error) {
	d := body.Sub(observer)
	if !d.IsFinite() || math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) {
		return 0, fmt.Errorf("angular radius: %w: non-finite input", ErrDomain)
	}
	dist := d.Norm()
	if dist == 0 {
		return 0, fmt.Errorf("angular radius: %w: observer at body centre", ErrDomain)
	}
	if radiusKm <= 0 {
		return 0, fmt.Errorf("angular radius: %w: radius %g km", ErrDomain, radiusKm)
	}
	return radiusKm / dist, nil
}
