package transform

import (
	"math"
	"testing"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/pedrokkrause/fourier-ephem/internal/vecmath"
)

var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

func days(tm time.Time) float64 {
	return tm.Sub(excelEpoch).Hours() / 24
}

func TestFrameAtIsOrthonormal(t *testing.T) {
	for _, tt := range []float64{EquinoxEpoch, 36526.5, 42968.75, 47000.123, 55000.9} {
		r := FrameAt(tt)
		if d := r.Transpose().Mul(r).MaxAbsDiff(vecmath.Identity()); d > 1e-12 {
			t.Errorf("t=%.4f: |RᵀR - I| = %g", tt, d)
		}
	}
}

func TestOrbitAngleZeroAtEpoch(t *testing.T) {
	if a := OrbitAngle(EquinoxEpoch); a != 0 {
		t.Errorf("OrbitAngle(EquinoxEpoch) = %g, want 0", a)
	}
	if d := OrbitRotation(0).MaxAbsDiff(vecmath.Identity()); d != 0 {
		t.Errorf("OrbitRotation(0) differs from identity by %g", d)
	}
}

func TestReferenceMeridianFacesSunAtEpoch(t *testing.T) {
	p := FrameAt(EquinoxEpoch).Apply(UnitSurfacePoint(0, ReferenceMeridianDeg))
	if math.Abs(p.X-1) > 1e-9 || math.Abs(p.Y) > 1e-9 || math.Abs(p.Z) > 1e-9 {
		t.Errorf("reference meridian at epoch = %+v, want (1, 0, 0)", p)
	}
}

func TestRotationSenses(t *testing.T) {
	q := math.Pi / 2

	// Day rotation turns +X toward +Y.
	if v := DayRotation(q).Apply(vecmath.Vec3{X: 1}); math.Abs(v.Y-1) > 1e-12 {
		t.Errorf("DayRotation(π/2)·X = %+v, want +Y", v)
	}
	// Orbit rotation turns +X toward -Y.
	if v := OrbitRotation(q).Apply(vecmath.Vec3{X: 1}); math.Abs(v.Y+1) > 1e-12 {
		t.Errorf("OrbitRotation(π/2)·X = %+v, want -Y", v)
	}
	// Equinox rotation tilts +Z toward +Y.
	if v := EquinoxRotation(q).Apply(vecmath.Vec3{Z: 1}); math.Abs(v.Y-1) > 1e-12 {
		t.Errorf("EquinoxRotation(π/2)·Z = %+v, want +Y", v)
	}
}

// The day angle advances at the sidereal rate, so its change between two
// instants must match the change in Greenwich mean sidereal time.
func TestDayAngleTracksSiderealTime(t *testing.T) {
	gmst := func(tm time.Time) float64 {
		return satellite.GSTimeFromDate(tm.Year(), int(tm.Month()), tm.Day(),
			tm.Hour(), tm.Minute(), tm.Second())
	}
	wrap := func(a float64) float64 {
		return a - 2*math.Pi*math.Round(a/(2*math.Pi))
	}

	tests := []struct {
		name   string
		t1, t2 time.Time
	}{
		{"six hours", time.Date(2017, 8, 21, 12, 0, 0, 0, time.UTC), time.Date(2017, 8, 21, 18, 0, 0, 0, time.UTC)},
		{"one month", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 1, 31, 7, 30, 0, 0, time.UTC)},
		{"one decade", time.Date(2005, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2015, 3, 1, 17, 0, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			want := wrap(gmst(tc.t2) - gmst(tc.t1))
			got := wrap(DayAngle(days(tc.t2)) - DayAngle(days(tc.t1)))
			if math.Abs(wrap(got-want)) > 1e-5 {
				t.Errorf("day angle change = %.8f rad, GMST change = %.8f rad", got, want)
			}
		})
	}
}
