// Package render shades an equirectangular world map by how much of the
// Sun the Moon hides at each location, producing one image per frame time.
package render

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pedrokkrause/fourier-ephem/internal/ephemeris"
	"github.com/pedrokkrause/fourier-ephem/internal/geometry"
	"github.com/pedrokkrause/fourier-ephem/internal/metrics"
	"github.com/pedrokkrause/fourier-ephem/internal/transform"
	"github.com/pedrokkrause/fourier-ephem/internal/vecmath"
)

// Defaults for an animation.
const (
	DefaultStepDays = 5.0 / 1440
	DefaultFrames   = 70
)

// Frame is one rendered animation frame.
type Frame struct {
	Index  int
	T      float64
	Image  *image.RGBA
	Hits   int64
	Misses int64
}

// scene holds everything about a frame time that is shared by all pixels.
type scene struct {
	rot  vecmath.Matrix3
	sun  vecmath.Vec3
	moon vecmath.Vec3
}

func newScene(model *ephemeris.Model, t float64) scene {
	return scene{
		rot:  transform.FrameAt(t),
		sun:  model.SunPosition(t),
		moon: model.MoonPosition(t),
	}
}

func (sc scene) cell(latDeg, lonDeg float64) (Cell, error) {
	obs := sc.rot.Apply(transform.SurfacePoint(latDeg, lonDeg))
	covered, err := geometry.SolarOcclusion(obs, sc.sun, sc.moon)
	if err != nil {
		return Cell{}, err
	}
	alt, err := geometry.Altitude(obs, sc.sun)
	if err != nil {
		return Cell{}, err
	}
	return Cell{Brightness: 1 - covered, SunVisible: alt >= 0}, nil
}

// Renderer shades copies of a base map. The base map and the model are
// only read, so one Renderer can serve many frames at once.
type Renderer struct {
	model   *ephemeris.Model
	base    *image.RGBA
	workers int
	logger  *slog.Logger
}

// NewRenderer prepares a renderer for base, which must be an
// equirectangular map spanning longitudes -180..180 left to right and
// latitudes 90..-90 top to bottom.
func NewRenderer(model *ephemeris.Model, base image.Image, workers int, logger *slog.Logger) *Renderer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := base.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), base, b.Min, draw.Src)
	return &Renderer{
		model:   model,
		base:    rgba,
		workers: workers,
		logger:  logger,
	}
}

// CellAt computes the cell for one location at time t without memoising.
func (r *Renderer) CellAt(t, latDeg, lonDeg float64) (Cell, error) {
	return newScene(r.model, t).cell(latDeg, lonDeg)
}

// pixelLatLon maps a pixel to the rounded-degree cell containing its centre.
func pixelLatLon(x, y, w, h int) (lat, lon int) {
	lon = RoundDegrees(((float64(x)+0.5)/float64(w) - 0.5) * 360)
	lat = RoundDegrees(-((float64(y)+0.5)/float64(h) - 0.5) * 180)
	return lat, lon
}

// RenderFrame shades one frame at time t using cache, which is reset to t
// first.
func (r *Renderer) RenderFrame(t float64, cache *FrameCache) (*image.RGBA, error) {
	cache.Reset(t)
	sc := newScene(r.model, t)

	img := image.NewRGBA(r.base.Rect)
	copy(img.Pix, r.base.Pix)

	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			lat, lon := pixelLatLon(x, y, w, h)
			cell, err := cache.GetOrCompute(lat, lon, func() (Cell, error) {
				return sc.cell(float64(lat), float64(lon))
			})
			if err != nil {
				return nil, fmt.Errorf("pixel (%d, %d) at %d°, %d°: %w", x, y, lat, lon, err)
			}
			if !cell.Darkened() {
				continue
			}
			i := img.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				img.Pix[i+c] = uint8(math.Round(cell.Brightness * float64(img.Pix[i+c])))
			}
		}
	}
	return img, nil
}

// Render shades frames frames starting at start and spaced step days
// apart, in parallel. Each worker owns its own FrameCache. emit is called
// from worker goroutines as frames complete, in no particular order; an
// error from emit stops the render.
func (r *Renderer) Render(ctx context.Context, start, step float64, frames int, emit func(Frame) error) error {
	if frames <= 0 {
		return fmt.Errorf("frame count %d must be positive", frames)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	began := time.Now()
	for i := 0; i < frames; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t := start + float64(i)*step
			cache := NewFrameCache(t)

			frameStart := time.Now()
			img, err := r.RenderFrame(t, cache)
			if err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			hits, misses := cache.Stats()
			metrics.RecordFrame(time.Since(frameStart), hits, misses)

			return emit(Frame{Index: i, T: t, Image: img, Hits: hits, Misses: misses})
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.logger.Info("render complete",
		"frames", frames,
		"workers", r.workers,
		"duration_ms", time.Since(began).Milliseconds(),
	)
	return nil
}
