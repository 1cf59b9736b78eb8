package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pedrokkrause/fourier-ephem/internal/eclipse"
	"github.com/pedrokkrause/fourier-ephem/internal/epoch"
)

var (
	occultAt       string
	occultLat      float64
	occultLon      float64
	occultTemp     float64
	occultPressure float64
	occultJSON     bool
)

var occultationCmd = &cobra.Command{
	Use:   "occultation",
	Short: "Show how much of the Sun the Moon covers from one place",
	Long: `Computes the fraction of the solar disk hidden by the Moon for an observer on
the surface, along with the geometric and refracted solar altitude.`,
	Args: cobra.NoArgs,
	RunE: runOccultation,
}

func init() {
	f := occultationCmd.Flags()
	f.StringVar(&occultAt, "at", "", "instant to evaluate (default now)")
	f.Float64Var(&occultLat, "lat", 0, "observer latitude in degrees, north positive")
	f.Float64Var(&occultLon, "lon", 0, "observer longitude in degrees, east positive")
	f.Float64Var(&occultTemp, "temp", 0, "air temperature in °C for refraction (default from config)")
	f.Float64Var(&occultPressure, "pressure", 0, "air pressure in hPa for refraction (default from config)")
	f.BoolVar(&occultJSON, "json", false, "output as JSON")
	_ = occultationCmd.MarkFlagRequired("lat")
	_ = occultationCmd.MarkFlagRequired("lon")
	rootCmd.AddCommand(occultationCmd)
}

type occultationOutput struct {
	Time              string   `json:"time"`
	Lat               float64  `json:"lat"`
	Lon               float64  `json:"lon"`
	Fraction          float64  `json:"fraction"`
	SunVisible        bool     `json:"sun_visible"`
	SunAltitudeDeg    float64  `json:"sun_altitude_deg"`
	SunApparentAltDeg float64  `json:"sun_apparent_altitude_deg"`
	SunAzimuthDeg     *float64 `json:"sun_azimuth_deg,omitempty"`
	MoonAltitudeDeg   float64  `json:"moon_altitude_deg"`
	SeparationDeg     float64  `json:"separation_deg"`
}

func runOccultation(cmd *cobra.Command, _ []string) error {
	t, err := parseInstant(occultAt, "at")
	if err != nil {
		return err
	}
	if occultLat < -90 || occultLat > 90 {
		return fmt.Errorf("--lat %g outside [-90, 90]", occultLat)
	}
	if occultLon < -180 || occultLon > 180 {
		return fmt.Errorf("--lon %g outside [-180, 180]", occultLon)
	}

	atm := eclipse.Atmosphere{
		TemperatureC: cfg.Atmosphere.TemperatureC,
		PressureHPa:  cfg.Atmosphere.PressureHPa,
	}
	if cmd.Flags().Changed("temp") {
		atm.TemperatureC = occultTemp
	}
	if cmd.Flags().Changed("pressure") {
		if occultPressure <= 0 {
			return fmt.Errorf("--pressure must be positive, got %g", occultPressure)
		}
		atm.PressureHPa = occultPressure
	}

	c, err := eclipse.Local(model, t, occultLat, occultLon, atm)
	if err != nil {
		return fmt.Errorf("occultation failed: %w", err)
	}

	if occultJSON {
		out := occultationOutput{
			Time:              epoch.Format(t),
			Lat:               occultLat,
			Lon:               occultLon,
			Fraction:          c.Fraction,
			SunVisible:        c.SunVisible(),
			SunAltitudeDeg:    c.SunAltitudeDeg,
			SunApparentAltDeg: c.SunApparentAltitudeDeg,
			MoonAltitudeDeg:   c.MoonAltitudeDeg,
			SeparationDeg:     c.SeparationDeg,
		}
		if c.HasAzimuth {
			az := c.SunAzimuthDeg
			out.SunAzimuthDeg = &az
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Observer     %s at %s\n", formatLatLon(occultLat, occultLon), epoch.Format(t))
	cmd.Printf("Covered      %.1f%% of the solar disk\n", 100*c.Fraction)
	if !c.SunVisible() {
		cmd.Printf("Sun          below the horizon (%.2f°)\n", c.SunAltitudeDeg)
	} else {
		cmd.Printf("Sun          altitude %.2f° (apparent %.2f°)", c.SunAltitudeDeg, c.SunApparentAltitudeDeg)
		if c.HasAzimuth {
			cmd.Printf("  azimuth %.2f°", c.SunAzimuthDeg)
		}
		cmd.Println()
	}
	cmd.Printf("Moon         altitude %.2f°  separation %.4f°\n", c.MoonAltitudeDeg, c.SeparationDeg)
	cmd.Printf("Radii        Sun %.4f°  Moon %.4f°\n", c.SunRadiusDeg, c.MoonRadiusDeg)
	return nil
}
