package geometry

import "math"

// Standard atmosphere used when an observer does not supply conditions.
const (
	DefaultTemperatureC = 15.0
	DefaultPressureHPa  = 1013.0
)

// AtmosphericCorrection returns the apparent altitude (degrees) of a body
// at geometric altitude altDeg, using Sæmundsson's refraction formula
// scaled for air temperature (°C) and pressure (hPa). Altitudes at or
// below the horizon are returned unchanged.
func AtmosphericCorrection(altDeg, temperatureC, pressureHPa float64) float64 {
	if !(altDeg > 0) {
		return altDeg
	}
	arg := (altDeg + 10.3/(altDeg+5.11)) * math.Pi / 180
	arcmin := 1.02 / math.Tan(arg)
	arcmin *= (pressureHPa / 1010) * (283 / (273 + temperatureC))
	return altDeg + arcmin/60
}
