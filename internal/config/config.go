// Package config loads service and CLI settings from an optional YAML file
// and ECLIPSE_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pedrokkrause/fourier-ephem/internal/eclipse"
	"github.com/pedrokkrause/fourier-ephem/internal/geometry"
	"github.com/pedrokkrause/fourier-ephem/internal/render"
)

// Config is the complete runtime configuration.
type Config struct {
	HTTPAddr         string           `yaml:"http_addr"`
	CoefficientsFile string           `yaml:"coefficients_file"` // empty uses the embedded tables
	LogLevel         string           `yaml:"log_level"`
	Search           SearchConfig     `yaml:"search"`
	Render           RenderConfig     `yaml:"render"`
	Atmosphere       AtmosphereConfig `yaml:"atmosphere"`
	API              APIConfig        `yaml:"api"`
}

// SearchConfig tunes the eclipse search.
type SearchConfig struct {
	CoarseStepMinutes float64 `yaml:"coarse_step_minutes"`
	SkipDays          float64 `yaml:"skip_days"`
	ThresholdDeg      float64 `yaml:"threshold_deg"`
	FineLeadHours     float64 `yaml:"fine_lead_hours"`
	FineStepMinutes   float64 `yaml:"fine_step_minutes"`
	FineSteps         int     `yaml:"fine_steps"`
	GridSpacingDeg    float64 `yaml:"grid_spacing_deg"`
	Workers           int     `yaml:"workers"`
}

// RenderConfig tunes occultation animations.
type RenderConfig struct {
	Workers          int     `yaml:"workers"`
	FrameStepMinutes float64 `yaml:"frame_step_minutes"`
	Frames           int     `yaml:"frames"`
}

// AtmosphereConfig is the air used for refraction-corrected altitudes.
type AtmosphereConfig struct {
	TemperatureC float64 `yaml:"temperature_c"`
	PressureHPa  float64 `yaml:"pressure_hpa"`
}

// APIConfig bounds the work a single HTTP request may ask for.
type APIConfig struct {
	MaxSpanYears      float64 `yaml:"max_span_years"`
	RequestTimeoutSec int     `yaml:"request_timeout_seconds"`
	// Concurrent eclipse searches admitted per client address and overall.
	SearchesPerClient int `yaml:"searches_per_client"`
	MaxSearches       int `yaml:"max_searches"`
	// TrustProxy attributes requests by X-Forwarded-For / X-Real-IP.
	TrustProxy bool `yaml:"trust_proxy"`
	// AuthToken, when set, is required as a bearer token on /api/ routes.
	AuthToken string `yaml:"auth_token"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		HTTPAddr: ":8080",
		LogLevel: "info",
		Search: SearchConfig{
			CoarseStepMinutes: 60,
			SkipDays:          eclipse.DefaultSkipDays,
			ThresholdDeg:      eclipse.DefaultThresholdDeg,
			FineLeadHours:     24,
			FineStepMinutes:   60,
			FineSteps:         eclipse.DefaultFineSteps,
			GridSpacingDeg:    eclipse.DefaultGridSpacingDeg,
			Workers:           runtime.NumCPU(),
		},
		Render: RenderConfig{
			Workers:          runtime.NumCPU(),
			FrameStepMinutes: 5,
			Frames:           render.DefaultFrames,
		},
		Atmosphere: AtmosphereConfig{
			TemperatureC: geometry.DefaultTemperatureC,
			PressureHPa:  geometry.DefaultPressureHPa,
		},
		API: APIConfig{
			MaxSpanYears:      25,
			RequestTimeoutSec: 60,
			SearchesPerClient: 2,
			MaxSearches:       8,
		},
	}
}

// Load reads path (if not empty) over the defaults, applies environment
// overrides and normalises the result.
func Load(path string, logger *slog.Logger) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv(logger)
	cfg.normalize()
	return cfg, nil
}

// normalize replaces out-of-range values with defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	if strings.TrimSpace(c.HTTPAddr) == "" {
		c.HTTPAddr = def.HTTPAddr
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		c.LogLevel = def.LogLevel
	}

	s, ds := &c.Search, def.Search
	if s.CoarseStepMinutes <= 0 {
		s.CoarseStepMinutes = ds.CoarseStepMinutes
	}
	if s.SkipDays <= 0 {
		s.SkipDays = ds.SkipDays
	}
	if s.ThresholdDeg <= 0 {
		s.ThresholdDeg = ds.ThresholdDeg
	}
	if s.FineLeadHours <= 0 {
		s.FineLeadHours = ds.FineLeadHours
	}
	if s.FineStepMinutes <= 0 {
		s.FineStepMinutes = ds.FineStepMinutes
	}
	if s.FineSteps <= 0 {
		s.FineSteps = ds.FineSteps
	}
	if s.GridSpacingDeg <= 0 || s.GridSpacingDeg > 90 {
		s.GridSpacingDeg = ds.GridSpacingDeg
	}
	if s.Workers <= 0 {
		s.Workers = ds.Workers
	}

	r, dr := &c.Render, def.Render
	if r.Workers <= 0 {
		r.Workers = dr.Workers
	}
	if r.FrameStepMinutes <= 0 {
		r.FrameStepMinutes = dr.FrameStepMinutes
	}
	if r.Frames <= 0 {
		r.Frames = dr.Frames
	}

	if c.Atmosphere.TemperatureC <= -273.15 {
		c.Atmosphere.TemperatureC = def.Atmosphere.TemperatureC
	}
	if c.Atmosphere.PressureHPa <= 0 {
		c.Atmosphere.PressureHPa = def.Atmosphere.PressureHPa
	}

	if c.API.MaxSpanYears <= 0 {
		c.API.MaxSpanYears = def.API.MaxSpanYears
	}
	if c.API.RequestTimeoutSec <= 0 {
		c.API.RequestTimeoutSec = def.API.RequestTimeoutSec
	}
	if c.API.SearchesPerClient <= 0 {
		c.API.SearchesPerClient = def.API.SearchesPerClient
	}
	if c.API.MaxSearches <= 0 {
		c.API.MaxSearches = def.API.MaxSearches
	}
}

// Eclipse converts the search settings into the engine's units.
func (s SearchConfig) Eclipse() eclipse.Config {
	return eclipse.Config{
		CoarseStepDays: s.CoarseStepMinutes / 1440,
		SkipDays:       s.SkipDays,
		ThresholdDeg:   s.ThresholdDeg,
		FineLeadDays:   s.FineLeadHours / 24,
		FineStepDays:   s.FineStepMinutes / 1440,
		FineSteps:      s.FineSteps,
		GridSpacingDeg: s.GridSpacingDeg,
		Workers:        s.Workers,
	}
}

// StepDays returns the frame spacing in days.
func (r RenderConfig) StepDays() float64 {
	return r.FrameStepMinutes / 1440
}

// SlogLevel returns the configured log level.
func (c Config) SlogLevel() slog.Level {
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(strings.TrimSpace(s)))
	return lvl, err
}

func (c *Config) applyEnv(logger *slog.Logger) {
	if v := os.Getenv("ECLIPSE_HTTP_ADDR"); v != "" {
		c.HTTPAddr = v
	}
	if v := os.Getenv("ECLIPSE_COEFFICIENTS"); v != "" {
		c.CoefficientsFile = v
	}
	if v := os.Getenv("ECLIPSE_LOG_LEVEL"); v != "" {
		if _, err := parseLevel(v); err != nil {
			logger.Warn("invalid ECLIPSE_LOG_LEVEL value, keeping configured level", "value", v, "level", c.LogLevel)
		} else {
			c.LogLevel = v
		}
	}

	envInt(logger, "ECLIPSE_SEARCH_WORKERS", &c.Search.Workers)
	envFloat(logger, "ECLIPSE_SEARCH_THRESHOLD_DEG", &c.Search.ThresholdDeg)
	envFloat(logger, "ECLIPSE_GRID_SPACING_DEG", &c.Search.GridSpacingDeg)
	envInt(logger, "ECLIPSE_RENDER_WORKERS", &c.Render.Workers)
	envInt(logger, "ECLIPSE_RENDER_FRAMES", &c.Render.Frames)
	envFloat(logger, "ECLIPSE_RENDER_STEP_MINUTES", &c.Render.FrameStepMinutes)
	envFloat(logger, "ECLIPSE_PRESSURE_HPA", &c.Atmosphere.PressureHPa)
	envFloat(logger, "ECLIPSE_MAX_SPAN_YEARS", &c.API.MaxSpanYears)
	envInt(logger, "ECLIPSE_REQUEST_TIMEOUT", &c.API.RequestTimeoutSec)
	envInt(logger, "ECLIPSE_SEARCHES_PER_CLIENT", &c.API.SearchesPerClient)
	envInt(logger, "ECLIPSE_MAX_SEARCHES", &c.API.MaxSearches)

	if v := os.Getenv("ECLIPSE_AUTH_TOKEN"); v != "" {
		c.API.AuthToken = v
	}
	if v := os.Getenv("ECLIPSE_TRUST_PROXY"); v != "" {
		trust, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid ECLIPSE_TRUST_PROXY value, keeping configured value", "value", v, "trust_proxy", c.API.TrustProxy)
		} else {
			c.API.TrustProxy = trust
		}
	}

	// Temperatures may be zero or negative, so only parse errors are rejected.
	if v := os.Getenv("ECLIPSE_TEMPERATURE_C"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			logger.Warn("invalid ECLIPSE_TEMPERATURE_C value, using default", "value", v, "default", c.Atmosphere.TemperatureC)
		} else {
			c.Atmosphere.TemperatureC = f
		}
	}
}

func envInt(logger *slog.Logger, key string, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		logger.Warn("invalid "+key+" value, using default", "value", v, "default", *dst)
		return
	}
	*dst = n
}

func envFloat(logger *slog.Logger, key string, dst *float64) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || !(f > 0) {
		logger.Warn("invalid "+key+" value, using default", "value", v, "default", *dst)
		return
	}
	*dst = f
}
