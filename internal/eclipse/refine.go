package eclipse

import (
	"context"
	"fmt"

	"github.com/pedrokkrause/fourier-ephem/internal/geometry"
	"github.com/pedrokkrause/fourier-ephem/internal/transform"
)

// refineState is the state of the refinement of one candidate.
type refineState int

const (
	stateScanning refineState = iota
	stateConfirmed
	stateExhausted
)

func (st refineState) String() string {
	switch st {
	case stateScanning:
		return "scanning"
	case stateConfirmed:
		return "confirmed"
	case stateExhausted:
		return "exhausted"
	}
	return fmt.Sprintf("refineState(%d)", int(st))
}

// Refine looks for a grid observer that sees part of the Sun covered by the
// Moon while the Sun is above its horizon. It steps from FineLeadDays
// before the candidate, FineSteps times at FineStepDays, and stops at the
// first hit. ok is false when the window is exhausted without a hit; such
// candidates are coarse-threshold false positives, not errors.
func (s *Searcher) Refine(ctx context.Context, candidate float64) (e Eclipse, ok bool, err error) {
	t := candidate - s.cfg.FineLeadDays
	state := stateScanning

	for step := 0; ; {
		switch state {
		case stateScanning:
			if step >= s.cfg.FineSteps {
				state = stateExhausted
				continue
			}
			if err := ctx.Err(); err != nil {
				return Eclipse{}, false, err
			}
			p, hit, err := s.witness(t)
			if err != nil {
				return Eclipse{}, false, fmt.Errorf("refining candidate %.5f at %.5f: %w", candidate, t, err)
			}
			if hit {
				e = Eclipse{Candidate: candidate, Time: t, Observer: p}
				state = stateConfirmed
				continue
			}
			step++
			t += s.cfg.FineStepDays

		case stateConfirmed:
			return e, true, nil

		case stateExhausted:
			return Eclipse{}, false, nil
		}
	}
}

// witness returns the first grid observer that sees an occultation of the
// Sun with the Sun above the horizon at time t.
func (s *Searcher) witness(t float64) (LatLon, bool, error) {
	rot := transform.FrameAt(t)
	sun := s.model.SunPosition(t)
	moon := s.model.MoonPosition(t)

	for _, p := range s.grid {
		obs := rot.Apply(p.Surface)
		if obs.Dot(sun) < 0 {
			continue
		}
		f, err := geometry.SolarOcclusion(obs, sun, moon)
		if err != nil {
			return LatLon{}, false, err
		}
		if f > 0 {
			return p.LatLon, true, nil
		}
	}
	return LatLon{}, false, nil
}
