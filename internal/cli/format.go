package cli

import (
	"fmt"
	"math"
)

const (
	dateLayout   = "2006-01-02"
	minuteLayout = "2006-01-02 15:04 MST"
)

// formatLatLon renders a position as 40°N 100°W.
func formatLatLon(lat, lon float64) string {
	ns, ew := "N", "E"
	if lat < 0 {
		ns = "S"
	}
	if lon < 0 {
		ew = "W"
	}
	return fmt.Sprintf("%s°%s %s°%s", trimDeg(math.Abs(lat)), ns, trimDeg(math.Abs(lon)), ew)
}

func trimDeg(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
