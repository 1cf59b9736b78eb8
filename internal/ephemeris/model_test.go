package ephemeris_test

import (
	"math"
	"testing"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/solar"

	"github.com/pedrokkrause/fourier-ephem/internal/coeffstore"
	"github.com/pedrokkrause/fourier-ephem/internal/ephemeris"
)

// jdOffset converts the day count (days since 1899-12-30) to a Julian Day.
const jdOffset = 2415018.5

// auKm is the astronomical unit in km.
const auKm = 149597870.7

func seedModel(t *testing.T) *ephemeris.Model {
	t.Helper()
	tables, err := coeffstore.Seed()
	if err != nil {
		t.Fatalf("loading seed tables: %v", err)
	}
	return ephemeris.NewModel(tables)
}

func wrap180(deg float64) float64 {
	return deg - 360*math.Round(deg/360)
}

func TestHarmonicSeriesEval(t *testing.T) {
	s := ephemeris.NewHarmonicSeries([]ephemeris.Term{
		{Amplitude: 2, Omega: 0, Phase: math.Pi / 2},
		{Amplitude: 1, Omega: math.Pi, Phase: 0},
	})

	tests := []struct {
		t    float64
		want float64
	}{
		{0, 2},
		{0.5, 3},
		{1.5, 1},
	}
	for _, tt := range tests {
		if got := s.Eval(tt.t); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Eval(%v) = %.15f, want %v", tt.t, got, tt.want)
		}
	}

	var empty ephemeris.HarmonicSeries
	if got := empty.Eval(123.4); got != 0 {
		t.Errorf("empty series Eval = %v, want 0", got)
	}
}

func TestHarmonicSeriesIsImmutable(t *testing.T) {
	terms := []ephemeris.Term{{Amplitude: 1, Omega: 1, Phase: 0}}
	s := ephemeris.NewHarmonicSeries(terms)
	terms[0].Amplitude = 100

	got := s.Terms()
	if got[0].Amplitude != 1 {
		t.Fatalf("series changed after mutating constructor input: %+v", got[0])
	}
	got[0].Amplitude = 50
	if s.Terms()[0].Amplitude != 1 {
		t.Fatal("series changed after mutating Terms() result")
	}
}

func TestSecularLongitudeTerm(t *testing.T) {
	// With empty residual tables only the uniform synodic motion remains.
	m := ephemeris.NewModel(ephemeris.Tables{LongitudeOffsetDeg: 10, DistanceMeanKm: 384400})

	_, lon0, dist := m.MoonGSE(0)
	if lon0 != -10 {
		t.Errorf("lon(0) = %v, want -10", lon0)
	}
	if dist != 384400 {
		t.Errorf("distance = %v, want mean distance", dist)
	}

	_, lon1, _ := m.MoonGSE(ephemeris.SynodicMonthDays)
	if math.Abs(lon1-lon0-360) > 1e-9 {
		t.Errorf("longitude advanced %.12f° over one synodic month, want 360°", lon1-lon0)
	}
}

// TestMoonAgainstMeeus compares the seed-driven model with the full
// abridged ELP series implemented by meeus.
func TestMoonAgainstMeeus(t *testing.T) {
	m := seedModel(t)

	const (
		lonTolDeg  = 0.1
		latTolDeg  = 0.05
		distTolKm  = 100.0
		startDay   = 18264.0 // 1950-01-01
		endDay     = 54789.0 // 2050-01-01
		sampleDays = 731.3
	)

	for day := startDay; day < endDay; day += sampleDays {
		jde := day + jdOffset
		λ, β, Δ := moonposition.Position(jde)
		sunLon, _ := solar.True(base.J2000Century(jde))

		lat, lon, dist := m.MoonGSE(day)

		if d := math.Abs(wrap180(lon - (λ.Deg() - sunLon.Deg()))); d > lonTolDeg {
			t.Errorf("t=%.1f: GSE longitude off by %.4f°", day, d)
		}
		if d := math.Abs(lat - β.Deg()); d > latTolDeg {
			t.Errorf("t=%.1f: latitude off by %.4f°", day, d)
		}
		if d := math.Abs(dist - Δ); d > distTolKm {
			t.Errorf("t=%.1f: distance off by %.1f km", day, d)
		}
	}
}

func TestMoonPositionMatchesGSE(t *testing.T) {
	m := seedModel(t)
	day := 42968.75 // 2017-08-21 18:00

	lat, lon, dist := m.MoonGSE(day)
	p := m.MoonPosition(day)

	if math.Abs(p.Norm()-dist) > 1e-6 {
		t.Errorf("|moon| = %.6f, want %.6f", p.Norm(), dist)
	}
	if got := math.Asin(p.Z/p.Norm()) * 180 / math.Pi; math.Abs(got-lat) > 1e-9 {
		t.Errorf("latitude from vector = %.9f, want %.9f", got, lat)
	}
	if got := math.Atan2(p.Y, p.X) * 180 / math.Pi; math.Abs(wrap180(got-lon)) > 1e-9 {
		t.Errorf("longitude from vector = %.9f, want %.9f", got, wrap180(lon))
	}

	// Close to new moon the Moon must lie near the Sun-Earth line.
	if math.Abs(lat) > 1 || math.Abs(wrap180(lon)) > 2 {
		t.Errorf("2017-08-21 18:00: moon at lat=%.3f lon=%.3f, expected near conjunction", lat, wrap180(lon))
	}
}

func TestSunDistance(t *testing.T) {
	for day := 36526.5; day < 51000; day += 97.3 {
		want := solar.Radius(base.J2000Century(day+jdOffset)) * auKm
		got := ephemeris.SunDistance(day)
		if math.Abs(got-want) > 1e5 {
			t.Errorf("t=%.1f: sun distance %.0f km, meeus %.0f km", day, got, want)
		}
	}

	m := seedModel(t)
	if p := m.SunPosition(40000); p.Y != 0 || p.Z != 0 || p.X != ephemeris.SunDistance(40000) {
		t.Errorf("sun position %+v not on +X axis", p)
	}
}

func TestObliquity(t *testing.T) {
	for day := 18264.0; day < 54789; day += 1000 {
		want := nutation.MeanObliquity(day + jdOffset).Deg()
		got := ephemeris.Obliquity(day)
		if math.Abs(got-want) > 0.01 {
			t.Errorf("t=%.0f: obliquity %.5f°, meeus %.5f°", day, got, want)
		}
	}
	if ephemeris.Obliquity(50000) >= ephemeris.Obliquity(40000) {
		t.Error("obliquity should decrease with time")
	}
}

// keplerTrueAnomaly solves Kepler's equation by Newton iteration.
func keplerTrueAnomaly(ma, e float64) float64 {
	E := ma
	for i := 0; i < 20; i++ {
		E -= (E - e*math.Sin(E) - ma) / (1 - e*math.Cos(E))
	}
	return 2 * math.Atan2(math.Sqrt(1+e)*math.Sin(E/2), math.Sqrt(1-e)*math.Cos(E/2))
}

func TestTrueAnomalyEquationOfCenter(t *testing.T) {
	for k := 0; k < 24; k++ {
		day := ephemeris.PerihelionEpoch + float64(k)*ephemeris.TropicalYearDays/24
		ma := ephemeris.MeanAnomaly(day)
		got := ephemeris.TrueAnomaly(day)
		want := keplerTrueAnomaly(math.Remainder(ma, 2*math.Pi), ephemeris.Eccentricity)

		// The series stops at e⁵, which leaves a residual of order e⁴·sin 4M.
		if d := math.Abs(math.Remainder(got-want, 2*math.Pi)); d > 2e-7 {
			t.Errorf("M=%.4f rad: true anomaly off by %.2e rad", ma, d)
		}
	}

	if got := ephemeris.MeanAnomaly(ephemeris.PerihelionEpoch); got != 0 {
		t.Errorf("mean anomaly at perihelion = %v, want 0", got)
	}
}
