package geometry

import (
	"fmt"
	"math"

	"github.com/pedrokkrause/fourier-ephem/internal/ephemeris"
	"github.com/pedrokkrause/fourier-ephem/internal/vecmath"
)

// DiskOverlap returns the fraction of disk 1 covered by disk 2, given the
// two angular radii r1, r2 and the separation of their centres, all in
// the same angular unit. Radii must be positive.
//
// The disks are treated as flat circles: disjoint disks give 0, a disk
// entirely inside the other gives the ratio of areas, and a partial
// overlap adds the two circular segments cut off by the common chord.
func DiskOverlap(r1, r2, sep float64) float64 {
	if sep >= r1+r2 {
		return 0
	}
	small, large := math.Min(r1, r2), math.Max(r1, r2)
	var area float64
	if small+sep <= large {
		area = math.Pi * small * small
	} else {
		alpha := 2 * clampedAcos((r1*r1+sep*sep-r2*r2)/(2*r1*sep))
		beta := 2 * clampedAcos((r2*r2+sep*sep-r1*r1)/(2*r2*sep))
		area = 0.5*r2*r2*(beta-math.Sin(beta)) + 0.5*r1*r1*(alpha-math.Sin(alpha))
	}
	f := area / (math.Pi * r1 * r1)
	return math.Max(0, math.Min(1, f))
}

// clampedAcos is used where the argument comes from a valid triangle and
// can only leave [-1, 1] through rounding.
func clampedAcos(c float64) float64 {
	return math.Acos(math.Max(-1, math.Min(1, c)))
}

// Overlap returns the fraction of body1's apparent disk hidden by body2's
// apparent disk as seen by the observer. Radii are physical radii in km.
// The result is in [0, 1]; a positive value means body2 occults body1.
func Overlap(observer, body1, body2 vecmath.Vec3, radius1Km, radius2Km float64) (float64, error) {
	r1, err := angularRadius(observer, body1, radius1Km)
	if err != nil {
		return 0, fmt.Errorf("overlap: %w", err)
	}
	r2, err := angularRadius(observer, body2, radius2Km)
	if err != nil {
		return 0, fmt.Errorf("overlap: %w", err)
	}
	sep, err := separation(observer, body1, body2)
	if err != nil {
		return 0, fmt.Errorf("overlap: %w", err)
	}
	return DiskOverlap(r1, r2, sep), nil
}

// SolarOcclusion is Overlap for the Sun hidden by the Moon.
func SolarOcclusion(observer, sun, moon vecmath.Vec3) (float64, error) {
	return Overlap(observer, sun, moon, ephemeris.SunRadiusKm, ephemeris.MoonRadiusKm)
}
