package eclipse

import (
	"context"
	"math"
)

// ctxCheckInterval is how many coarse samples pass between cancellation
// checks.
const ctxCheckInterval = 1024

// Proximity returns the coarse closeness measure of the Moon to the
// Sun-Earth line at t: the hypotenuse of the Moon's Sun-referenced
// latitude and wrapped longitude, in degrees.
func (s *Searcher) Proximity(t float64) float64 {
	lat, lon, _ := s.model.MoonGSE(t)
	lon -= 360 * math.Round(lon/360)
	return math.Hypot(lat, lon)
}

// Scan walks [start, end) at the coarse step and returns the times at which
// the Moon came within the candidate threshold of the Sun-Earth line.
//
// After a candidate the scan jumps ahead by the skip interval. It also
// jumps when the proximity turns from falling to rising, since that month's
// closest approach has passed without reaching the threshold. The sample
// before a jump is forgotten so the turn must be seen afresh afterwards.
//
// Two events closer together than the skip interval cannot both be
// reported. New moons are a synodic month apart, so this is accepted.
func (s *Searcher) Scan(ctx context.Context, start, end float64) ([]float64, error) {
	var (
		candidates []float64
		prev       float64
		havePrev   bool
		falling    bool
	)

	t := start
	for n := 0; t < end; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return candidates, err
			}
		}

		d := s.Proximity(t)
		if d < s.cfg.ThresholdDeg {
			candidates = append(candidates, t)
			t += s.cfg.SkipDays
			havePrev, falling = false, false
			continue
		}

		if havePrev {
			rising := d > prev
			if rising && falling {
				t += s.cfg.SkipDays
				havePrev, falling = false, false
				continue
			}
			falling = !rising
		}

		prev, havePrev = d, true
		t += s.cfg.CoarseStepDays
	}
	return candidates, nil
}
