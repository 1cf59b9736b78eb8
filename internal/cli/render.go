package cli

import (
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pedrokkrause/fourier-ephem/internal/epoch"
	"github.com/pedrokkrause/fourier-ephem/internal/render"
)

var (
	renderMap         string
	renderStart       string
	renderFrames      int
	renderStepMinutes float64
	renderOut         string
	renderQuality     int
	renderWorkers     int
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render an eclipse animation over a world map",
	Long: `Darkens an equirectangular world map (JPEG or PNG, longitude -180..180 left to
right, latitude 90..-90 top to bottom) by the fraction of the Sun the Moon
covers at each location, one JPEG per frame.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVar(&renderMap, "map", "", "base map image (required)")
	f.StringVar(&renderStart, "start", "", "time of the first frame (required)")
	f.IntVarP(&renderFrames, "frames", "n", 0, "number of frames (0 uses the config)")
	f.Float64Var(&renderStepMinutes, "step", 0, "minutes between frames (0 uses the config)")
	f.StringVarP(&renderOut, "out", "o", "frames", "output directory")
	f.IntVar(&renderQuality, "quality", 90, "JPEG quality, 1-100")
	f.IntVarP(&renderWorkers, "workers", "w", 0, "render workers (0 uses the config)")
	_ = renderCmd.MarkFlagRequired("map")
	_ = renderCmd.MarkFlagRequired("start")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	start, err := epoch.Parse(renderStart)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	if renderQuality < 1 || renderQuality > 100 {
		return fmt.Errorf("--quality %d outside [1, 100]", renderQuality)
	}

	frames := cfg.Render.Frames
	if renderFrames > 0 {
		frames = renderFrames
	}
	step := cfg.Render.StepDays()
	if renderStepMinutes > 0 {
		step = renderStepMinutes / 1440
	}
	workers := cfg.Render.Workers
	if renderWorkers > 0 {
		workers = renderWorkers
	}

	base, err := decodeImage(renderMap)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(renderOut, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var written atomic.Int64
	r := render.NewRenderer(model, base, workers, logger)
	err = r.Render(ctx, start, step, frames, func(f render.Frame) error {
		path := filepath.Join(renderOut, fmt.Sprintf("frame_%03d.jpg", f.Index))
		n, err := writeJPEG(path, f.Image, renderQuality)
		if err != nil {
			return err
		}
		written.Add(n)
		logger.Info("frame written", "index", f.Index, "time", epoch.Format(f.T), "path", path, "cache_hits", f.Hits)
		return nil
	})
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	cmd.Printf("Rendered %d frames from %s to %s (%s)\n",
		frames, epoch.Format(start), renderOut, humanize.Bytes(uint64(written.Load())))
	return nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open map: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode map %s: %w", path, err)
	}
	return img, nil
}

func writeJPEG(path string, img image.Image, quality int) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		f.Close()
		return 0, fmt.Errorf("failed to encode %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return 0, err
	}
	return info.Size(), f.Close()
}
