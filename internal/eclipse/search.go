// Package eclipse finds solar eclipses in a span of time. A cheap coarse
// scan of the Moon's position relative to the Sun flags candidate new
// moons, and each candidate is then refined hour by hour against a grid of
// observers to confirm that somebody on Earth actually sees the Sun
// partly covered.
package eclipse

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/pedrokkrause/fourier-ephem/internal/ephemeris"
	"github.com/pedrokkrause/fourier-ephem/internal/metrics"
)

// Defaults for Config.
const (
	DefaultCoarseStepDays = 1.0 / 24
	DefaultSkipDays       = 29.0
	DefaultThresholdDeg   = 1.8
	DefaultFineLeadDays   = 1.0
	DefaultFineStepDays   = 1.0 / 24
	DefaultFineSteps      = 48
	DefaultGridSpacingDeg = 10.0
)

// Config tunes the search. Zero fields take the defaults.
type Config struct {
	CoarseStepDays float64 // coarse scan step
	SkipDays       float64 // jump after a candidate or a passed minimum
	ThresholdDeg   float64 // proximity below which a sample is a candidate
	FineLeadDays   float64 // refinement starts this long before a candidate
	FineStepDays   float64 // refinement step
	FineSteps      int     // refinement steps per candidate
	GridSpacingDeg float64 // observer grid spacing
	Workers        int     // candidates refined concurrently
}

// DefaultConfig returns the search parameters that reproduce hourly
// eclipse times on a 10° observer grid.
func DefaultConfig() Config {
	return Config{
		CoarseStepDays: DefaultCoarseStepDays,
		SkipDays:       DefaultSkipDays,
		ThresholdDeg:   DefaultThresholdDeg,
		FineLeadDays:   DefaultFineLeadDays,
		FineStepDays:   DefaultFineStepDays,
		FineSteps:      DefaultFineSteps,
		GridSpacingDeg: DefaultGridSpacingDeg,
		Workers:        runtime.NumCPU(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if !(c.CoarseStepDays > 0) {
		c.CoarseStepDays = d.CoarseStepDays
	}
	if !(c.SkipDays > 0) {
		c.SkipDays = d.SkipDays
	}
	if !(c.ThresholdDeg > 0) {
		c.ThresholdDeg = d.ThresholdDeg
	}
	if !(c.FineLeadDays > 0) {
		c.FineLeadDays = d.FineLeadDays
	}
	if !(c.FineStepDays > 0) {
		c.FineStepDays = d.FineStepDays
	}
	if c.FineSteps <= 0 {
		c.FineSteps = d.FineSteps
	}
	if !(c.GridSpacingDeg > 0) {
		c.GridSpacingDeg = d.GridSpacingDeg
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	return c
}

// Eclipse is a confirmed eclipse. Time is the first refinement step at
// which Observer saw the Sun partly covered, so the true first contact lies
// within one step before it.
type Eclipse struct {
	Candidate float64 `json:"candidate"`
	Time      float64 `json:"time"`
	Observer  LatLon  `json:"observer"`
}

// Result is the outcome of a search. Candidates and Eclipses are in time
// order; Dropped counts candidates whose refinement found nothing.
type Result struct {
	Candidates []float64 `json:"candidates"`
	Eclipses   []Eclipse `json:"eclipses"`
	Dropped    int       `json:"dropped"`
}

// Searcher runs eclipse searches against one ephemeris model. It holds only
// read-only state and is safe for concurrent use.
type Searcher struct {
	model  *ephemeris.Model
	cfg    Config
	grid   Grid
	logger *slog.Logger
}

// NewSearcher creates a searcher and builds its observer grid.
func NewSearcher(model *ephemeris.Model, cfg Config, logger *slog.Logger) *Searcher {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{
		model:  model,
		cfg:    cfg,
		grid:   NewGrid(cfg.GridSpacingDeg),
		logger: logger,
	}
}

// Config returns the effective configuration.
func (s *Searcher) Config() Config { return s.cfg }

// Grid returns the observer grid. Callers must not modify it.
func (s *Searcher) Grid() Grid { return s.grid }

// Search scans [start, end) for candidates and refines each of them.
// Candidates are refined concurrently, bounded by Config.Workers.
func (s *Searcher) Search(ctx context.Context, start, end float64) (Result, error) {
	if !(end > start) {
		return Result{}, fmt.Errorf("search span [%v, %v) is empty", start, end)
	}
	began := time.Now()

	candidates, err := s.Scan(ctx, start, end)
	if err != nil {
		return Result{}, fmt.Errorf("coarse scan: %w", err)
	}
	s.logger.Debug("coarse scan complete",
		"candidates", len(candidates),
		"duration_ms", time.Since(began).Milliseconds(),
	)

	type outcome struct {
		e   Eclipse
		ok  bool
		err error
	}
	outcomes := make([]outcome, len(candidates))
	sem := make(chan struct{}, s.cfg.Workers)
	var wg sync.WaitGroup

	for i, c := range candidates {
		wg.Add(1)
		go func(idx int, candidate float64) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				outcomes[idx].err = ctx.Err()
				return
			}

			e, ok, err := s.Refine(ctx, candidate)
			outcomes[idx] = outcome{e: e, ok: ok, err: err}
		}(i, c)
	}
	wg.Wait()

	res := Result{Candidates: candidates}
	for i, o := range outcomes {
		if o.err != nil {
			return Result{}, o.err
		}
		if !o.ok {
			res.Dropped++
			s.logger.Debug("candidate dropped", "candidate", candidates[i])
			continue
		}
		res.Eclipses = append(res.Eclipses, o.e)
	}

	elapsed := time.Since(began)
	metrics.RecordSearch(elapsed, len(candidates), len(res.Eclipses), res.Dropped)
	s.logger.Info("eclipse search complete",
		"start", start,
		"end", end,
		"candidates", len(candidates),
		"confirmed", len(res.Eclipses),
		"dropped", res.Dropped,
		"duration_ms", elapsed.Milliseconds(),
	)
	return res, nil
}
