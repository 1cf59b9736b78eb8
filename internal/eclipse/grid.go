package eclipse

import (
	"math"

	"github.com/pedrokkrause/fourier-ephem/internal/transform"
	"github.com/pedrokkrause/fourier-ephem/internal/vecmath"
)

// LatLon is a geographic location in degrees.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GridPoint is one observer of the search grid. Surface holds the
// Earth-fixed position, which is rotated into place for each time step.
type GridPoint struct {
	LatLon
	Surface vecmath.Vec3
}

// Grid is a fixed set of observers spread over the globe. It is built once
// and only read afterwards, so it can be shared between goroutines.
type Grid []GridPoint

// NewGrid builds a grid every spacingDeg degrees of latitude (-90..90) and
// longitude (-180 up to but excluding 180). Each pole appears once.
func NewGrid(spacingDeg float64) Grid {
	if !(spacingDeg > 0) {
		spacingDeg = DefaultGridSpacingDeg
	}
	const eps = 1e-9

	var g Grid
	for i := 0; ; i++ {
		lat := -90 + float64(i)*spacingDeg
		if lat > 90+eps {
			break
		}
		pole := math.Abs(math.Abs(lat)-90) < eps
		for j := 0; ; j++ {
			lon := -180 + float64(j)*spacingDeg
			if lon >= 180-eps || (pole && j > 0) {
				break
			}
			g = append(g, GridPoint{
				LatLon:  LatLon{Lat: lat, Lon: lon},
				Surface: transform.SurfacePoint(lat, lon),
			})
		}
	}
	return g
}
