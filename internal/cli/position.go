package cli

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pedrokkrause/fourier-ephem/internal/ephemeris"
	"github.com/pedrokkrause/fourier-ephem/internal/epoch"
	"github.com/pedrokkrause/fourier-ephem/internal/transform"
)

var positionAt string

var positionCmd = &cobra.Command{
	Use:   "position",
	Short: "Show Sun and Moon positions at an instant",
	Args:  cobra.NoArgs,
	RunE:  runPosition,
}

func init() {
	positionCmd.Flags().StringVar(&positionAt, "at", "", "instant to evaluate (default now)")
	rootCmd.AddCommand(positionCmd)
}

// parseInstant parses s, or returns the current time when s is empty.
func parseInstant(s, flag string) (float64, error) {
	if s == "" {
		return epoch.FromTime(time.Now()), nil
	}
	t, err := epoch.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s: %w", flag, err)
	}
	return t, nil
}

func runPosition(cmd *cobra.Command, _ []string) error {
	t, err := parseInstant(positionAt, "at")
	if err != nil {
		return err
	}

	lat, lon, dist := model.MoonGSE(t)
	lon -= 360 * math.Round(lon/360)
	sLat, sLon := transform.SubsolarPoint(t)

	cmd.Printf("Time         %s (day %.6f, JD %.6f)\n", epoch.Format(t), t, epoch.ToJD(t))
	cmd.Printf("Moon         lat %+.4f°  lon %+.4f° from the Sun  distance %s km\n",
		lat, lon, humanize.CommafWithDigits(dist, 1))
	cmd.Printf("Sun          distance %s km\n", humanize.Comma(int64(math.Round(model.SunDistance(t)))))
	cmd.Printf("Obliquity    %.5f°\n", ephemeris.Obliquity(t))
	cmd.Printf("Subsolar     %s\n", formatLatLon(round2(sLat), round2(sLon)))
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
