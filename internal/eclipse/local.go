package eclipse

import (
	"errors"

	"github.com/pedrokkrause/fourier-ephem/internal/ephemeris"
	"github.com/pedrokkrause/fourier-ephem/internal/geometry"
	"github.com/pedrokkrause/fourier-ephem/internal/transform"
)

// Atmosphere is the air used when correcting altitudes for refraction.
type Atmosphere struct {
	TemperatureC float64
	PressureHPa  float64
}

// StandardAtmosphere returns the default refraction conditions.
func StandardAtmosphere() Atmosphere {
	return Atmosphere{
		TemperatureC: geometry.DefaultTemperatureC,
		PressureHPa:  geometry.DefaultPressureHPa,
	}
}

// Circumstances describes the Sun and Moon as seen from one place at one
// instant.
type Circumstances struct {
	T      float64
	LatDeg float64
	LonDeg float64

	// Fraction of the solar disk covered by the Moon, 0..1.
	Fraction float64

	SunAltitudeDeg         float64
	SunApparentAltitudeDeg float64
	SunAzimuthDeg          float64
	// HasAzimuth is false at the poles and when the Sun is at the zenith.
	HasAzimuth bool

	MoonAltitudeDeg float64
	SeparationDeg   float64
	SunRadiusDeg    float64
	MoonRadiusDeg   float64
}

// SunVisible reports whether the Sun's centre is above the geometric horizon.
func (c Circumstances) SunVisible() bool {
	return c.SunAltitudeDeg >= 0
}

// Local computes the circumstances at (latDeg, lonDeg) and time t.
func Local(model *ephemeris.Model, t, latDeg, lonDeg float64, atm Atmosphere) (Circumstances, error) {
	obs := transform.NewObserver(t, latDeg, lonDeg)
	sun := model.SunPosition(t)
	moon := model.MoonPosition(t)

	c := Circumstances{T: t, LatDeg: latDeg, LonDeg: lonDeg}
	var err error
	if c.Fraction, err = geometry.SolarOcclusion(obs.Position, sun, moon); err != nil {
		return Circumstances{}, err
	}
	if c.SunAltitudeDeg, err = geometry.Altitude(obs.Position, sun); err != nil {
		return Circumstances{}, err
	}
	if c.MoonAltitudeDeg, err = geometry.Altitude(obs.Position, moon); err != nil {
		return Circumstances{}, err
	}
	if c.SeparationDeg, err = geometry.Separation(obs.Position, sun, moon); err != nil {
		return Circumstances{}, err
	}
	if c.SunRadiusDeg, err = geometry.AngularRadius(obs.Position, sun, ephemeris.SunRadiusKm); err != nil {
		return Circumstances{}, err
	}
	if c.MoonRadiusDeg, err = geometry.AngularRadius(obs.Position, moon, ephemeris.MoonRadiusKm); err != nil {
		return Circumstances{}, err
	}
	c.SunApparentAltitudeDeg = geometry.AtmosphericCorrection(c.SunAltitudeDeg, atm.TemperatureC, atm.PressureHPa)

	az, err := geometry.Azimuth(obs.Position, obs.Rotation, sun)
	switch {
	case err == nil:
		c.SunAzimuthDeg, c.HasAzimuth = az, true
	case !errors.Is(err, geometry.ErrDomain):
		return Circumstances{}, err
	}
	return c, nil
}
