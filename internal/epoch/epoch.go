// Package epoch converts between calendar time and the engine's time scale:
// fractional days since 1899-12-30 00:00 UTC, the spreadsheet serial date.
package epoch

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

const (
	// JDOffset is the Julian Day of day zero.
	JDOffset = 2415018.5

	// unixDays is 1970-01-01 on this scale.
	unixDays = 25569.0

	secondsPerDay = 86400.0
)

// ErrBadDate is returned for input that is not a recognised date or time.
var ErrBadDate = errors.New("epoch: unrecognised date")

// layouts accepted by Parse, most specific first.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// FromTime returns t on the day scale.
func FromTime(t time.Time) float64 {
	return unixDays + (float64(t.Unix())+float64(t.Nanosecond())/1e9)/secondsPerDay
}

// ToTime returns the UTC instant for day count d, rounded to the
// microsecond.
func ToTime(d float64) time.Time {
	us := math.Round((d - unixDays) * secondsPerDay * 1e6)
	return time.UnixMicro(int64(us)).UTC()
}

// FromDate returns midnight UTC of a Gregorian calendar date.
func FromDate(year int, month time.Month, day int) float64 {
	return julian.CalendarGregorianToJD(year, int(month), float64(day)) - JDOffset
}

// ToJD returns the Julian Day of day count d.
func ToJD(d float64) float64 {
	return d + JDOffset
}

// FromJD returns the day count of Julian Day jd.
func FromJD(jd float64) float64 {
	return jd - JDOffset
}

// Parse reads a date, a date and time, or a bare day count. Times without
// a zone are UTC.
func Parse(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty input", ErrBadDate)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), nil
		}
	}
	if d, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(d) && !math.IsInf(d, 0) {
		return d, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadDate, s)
}

// Format renders day count d as an RFC 3339 UTC timestamp, rounded to the
// second. Times built by repeated addition of fractional steps drift by a
// few microseconds and would otherwise truncate to the previous second.
func Format(d float64) string {
	return ToTime(d).Round(time.Second).Format(time.RFC3339)
}
