// Package cli implements the eclipsectl command tree.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pedrokkrause/fourier-ephem/internal/coeffstore"
	"github.com/pedrokkrause/fourier-ephem/internal/config"
	"github.com/pedrokkrause/fourier-ephem/internal/ephemeris"
)

// Set with -ldflags "-X .../internal/cli.version=..." at build time.
var version = "dev"

var (
	configPath       string
	coefficientsPath string
	verbose          bool
)

// Populated by loadEnvironment before any subcommand runs.
var (
	cfg    config.Config
	model  *ephemeris.Model
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "eclipsectl",
	Short: "Sun and Moon ephemeris and solar eclipse tools",
	Long: `eclipsectl evaluates a harmonic lunar ephemeris and a Keplerian solar orbit,
searches date ranges for solar eclipses and renders occultation maps.

Dates are accepted as RFC 3339 timestamps (2017-08-21T18:25:00Z), as
"2006-01-02 15:04" style strings in UTC, or as fractional days since
1899-12-30.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnvironment,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&coefficientsPath, "coefficients", "", "coefficient file overriding the embedded tables")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadEnvironment(cmd *cobra.Command, _ []string) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	c, err := config.Load(configPath, logger)
	if err != nil {
		return err
	}
	if coefficientsPath != "" {
		c.CoefficientsFile = coefficientsPath
	}

	tables, err := coeffstore.Open(c.CoefficientsFile)
	if err != nil {
		return fmt.Errorf("failed to load coefficients: %w", err)
	}
	cfg = c
	model = ephemeris.NewModel(tables)
	return nil
}
