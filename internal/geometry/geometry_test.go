package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/soniakeys/meeus/v3/refraction"
	"github.com/soniakeys/unit"

	"github.com/pedrokkrause/fourier-ephem/internal/vecmath"
)

const earthKm = 6371.0

// equator is an observer on the equator facing +X with north along +Z.
var equator = vecmath.Vec3{X: earthKm}

func angDiff(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return math.Abs(d)
}

func TestAltitude(t *testing.T) {
	tests := []struct {
		name string
		body vecmath.Vec3
		want float64
	}{
		{"zenith", vecmath.Vec3{X: 1e8}, 90},
		{"horizon", equator.Add(vecmath.Vec3{Y: 1e5}), 0},
		{"nadir", vecmath.Vec3{X: -1e8}, -90},
		{"45 degrees", equator.Add(vecmath.Vec3{X: 1e5, Z: 1e5}), 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Altitude(equator, tt.body)
			if err != nil {
				t.Fatalf("Altitude: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Altitude = %.12f, want %v", got, tt.want)
			}
		})
	}
}

func TestAzimuthCompassPoints(t *testing.T) {
	rot := vecmath.Identity()
	tests := []struct {
		name   string
		offset vecmath.Vec3
		want   float64
	}{
		{"north", vecmath.Vec3{Z: 1e5}, 0},
		{"east", vecmath.Vec3{Y: 1e5}, 90},
		{"south", vecmath.Vec3{Z: -1e5}, 180},
		{"west", vecmath.Vec3{Y: -1e5}, 270},
		{"north-east and raised", vecmath.Vec3{X: 3e4, Y: 1e5, Z: 1e5}, 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Azimuth(equator, rot, equator.Add(tt.offset))
			if err != nil {
				t.Fatalf("Azimuth: %v", err)
			}
			if got < 0 || got >= 360 {
				t.Errorf("Azimuth = %v, outside [0, 360)", got)
			}
			if angDiff(got, tt.want) > 1e-9 {
				t.Errorf("Azimuth = %.12f, want %v", got, tt.want)
			}
		})
	}
}

func TestAzimuthUndefined(t *testing.T) {
	rot := vecmath.Identity()
	pole := vecmath.Vec3{Z: earthKm}
	if _, err := Azimuth(pole, rot, vecmath.Vec3{X: 1e8}); !errors.Is(err, ErrDomain) {
		t.Errorf("azimuth at the pole: err = %v, want ErrDomain", err)
	}
	if _, err := Azimuth(equator, rot, vecmath.Vec3{X: 1e8}); !errors.Is(err, ErrDomain) {
		t.Errorf("azimuth of zenith: err = %v, want ErrDomain", err)
	}
}

func TestSeparation(t *testing.T) {
	origin := vecmath.Vec3{}
	got, err := Separation(origin, vecmath.Vec3{X: 5}, vecmath.Vec3{Y: 2})
	if err != nil {
		t.Fatalf("Separation: %v", err)
	}
	if math.Abs(got-90) > 1e-12 {
		t.Errorf("Separation = %v, want 90", got)
	}

	body := vecmath.Vec3{X: 1, Y: 2, Z: 3}
	if _, err := Separation(body, body, vecmath.Vec3{X: 9}); !errors.Is(err, ErrDomain) {
		t.Errorf("observer at body: err = %v, want ErrDomain", err)
	}
	nan := vecmath.Vec3{X: math.NaN()}
	if _, err := Separation(origin, nan, body); !errors.Is(err, ErrDomain) {
		t.Errorf("NaN body: err = %v, want ErrDomain", err)
	}
}

func TestAcosClampsRounding(t *testing.T) {
	if got, err := acos(1 + 1e-12); err != nil || got != 0 {
		t.Errorf("acos(1+1e-12) = %v, %v; want 0, nil", got, err)
	}
	if got, err := acos(-1 - 1e-12); err != nil || got != math.Pi {
		t.Errorf("acos(-1-1e-12) = %v, %v; want π, nil", got, err)
	}
	if _, err := acos(1.001); !errors.Is(err, ErrDomain) {
		t.Errorf("acos(1.001): err = %v, want ErrDomain", err)
	}
}

func TestAngularRadius(t *testing.T) {
	got, err := AngularRadius(vecmath.Vec3{}, vecmath.Vec3{X: 149597870.7}, 696342)
	if err != nil {
		t.Fatalf("AngularRadius: %v", err)
	}
	// Mean solar semidiameter is about 16 arcminutes.
	if math.Abs(got*60-16.0) > 0.1 {
		t.Errorf("sun semidiameter = %.3f', want ~16'", got*60)
	}
	if _, err := AngularRadius(vecmath.Vec3{}, vecmath.Vec3{}, 1); !errors.Is(err, ErrDomain) {
		t.Errorf("zero distance: err = %v, want ErrDomain", err)
	}
	if _, err := AngularRadius(vecmath.Vec3{}, vecmath.Vec3{X: 1}, 0); !errors.Is(err, ErrDomain) {
		t.Errorf("zero radius: err = %v, want ErrDomain", err)
	}
}

func TestAtmosphericCorrectionMatchesSaemundsson(t *testing.T) {
	// At 10 °C and 1010 hPa the scaling factor is exactly 1.
	for _, h := range []float64{0.5, 2, 5, 10, 20, 45, 70, 89} {
		want := h + refraction.Saemundsson(unit.AngleFromDeg(h)).Deg()
		got := AtmosphericCorrection(h, 10, 1010)
		if math.Abs(got-want) > 0.01 {
			t.Errorf("h=%v: corrected = %.5f, meeus = %.5f", h, got, want)
		}
	}
}

func TestAtmosphericCorrectionConditions(t *testing.T) {
	for _, h := range []float64{0, -0.5, -30} {
		if got := AtmosphericCorrection(h, DefaultTemperatureC, DefaultPressureHPa); got != h {
			t.Errorf("below horizon h=%v changed to %v", h, got)
		}
	}

	std := AtmosphericCorrection(10, DefaultTemperatureC, DefaultPressureHPa)
	if std <= 10 {
		t.Errorf("refraction should raise the apparent altitude, got %v", std)
	}
	// Cold dense air refracts more than warm thin air.
	cold := AtmosphericCorrection(10, -20, 1040)
	warm := AtmosphericCorrection(10, 35, 950)
	if !(cold > std && std > warm) {
		t.Errorf("expected cold > standard > warm, got %v, %v, %v", cold, std, warm)
	}
}

func TestDiskOverlap(t *testing.T) {
	tests := []struct {
		name      string
		r1, r2, d float64
		want      float64
		tolerance float64
	}{
		{"disjoint", 1, 1, 3, 0, 0},
		{"touching", 1, 0.5, 1.5, 0, 0},
		{"identical concentric", 1, 1, 0, 1, 0},
		{"small occluder inside", 1, 0.5, 0.2, 0.25, 1e-15},
		{"large occluder covers", 0.5, 1, 0.3, 1, 0},
		{"internally tangent", 1, 0.5, 0.5, 0.25, 1e-15},
		// Lens of two unit circles one radius apart: 2π/3 - √3/2.
		{"equal radii half overlap", 1, 1, 1, (2*math.Pi/3 - math.Sqrt(3)/2) / math.Pi, 1e-12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiskOverlap(tt.r1, tt.r2, tt.d)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("DiskOverlap(%v, %v, %v) = %.15f, want %.15f", tt.r1, tt.r2, tt.d, got, tt.want)
			}
		})
	}
}

func TestDiskOverlapMonotonic(t *testing.T) {
	for _, radii := range [][2]float64{{1, 1}, {1, 1.05}, {1, 0.3}, {0.3, 1}} {
		prev := math.Inf(1)
		for d := 0.0; d <= 2.5; d += 0.001 {
			got := DiskOverlap(radii[0], radii[1], d)
			if got < 0 || got > 1 {
				t.Fatalf("radii %v d=%v: fraction %v outside [0, 1]", radii, d, got)
			}
			if got > prev+1e-12 {
				t.Fatalf("radii %v: fraction rose from %v to %v at d=%v", radii, prev, got, d)
			}
			prev = got
		}
	}
}

func TestSolarOcclusion(t *testing.T) {
	sun := vecmath.Vec3{X: 1.496e8}

	// Moon on the Sun-observer line at perigee: total.
	moon := equator.Add(vecmath.Vec3{X: 363300})
	got, err := SolarOcclusion(equator, sun, moon)
	if err != nil {
		t.Fatalf("SolarOcclusion: %v", err)
	}
	if got != 1 {
		t.Errorf("central eclipse at perigee = %v, want 1", got)
	}

	// At apogee the Moon looks smaller than the Sun: annular.
	moon = equator.Add(vecmath.Vec3{X: 405500})
	got, err = SolarOcclusion(equator, sun, moon)
	if err != nil {
		t.Fatalf("SolarOcclusion: %v", err)
	}
	if got <= 0.8 || got >= 1 {
		t.Errorf("annular fraction = %v, want in (0.8, 1)", got)
	}

	// Moon a few degrees off the Sun: nothing hidden.
	moon = equator.Add(vecmath.Vec3{X: 384400, Y: 30000})
	got, err = SolarOcclusion(equator, sun, moon)
	if err != nil {
		t.Fatalf("SolarOcclusion: %v", err)
	}
	if got != 0 {
		t.Errorf("separated fraction = %v, want 0", got)
	}

	if _, err := SolarOcclusion(sun, sun, moon); !errors.Is(err, ErrDomain) {
		t.Errorf("observer at the Sun: err = %v, want ErrDomain", err)
	}
}
