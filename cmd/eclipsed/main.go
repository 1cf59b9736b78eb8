package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pedrokkrause/fourier-ephem/internal/api"
	"github.com/pedrokkrause/fourier-ephem/internal/coeffstore"
	"github.com/pedrokkrause/fourier-ephem/internal/config"
	"github.com/pedrokkrause/fourier-ephem/internal/eclipse"
	"github.com/pedrokkrause/fourier-ephem/internal/ephemeris"
	"github.com/pedrokkrause/fourier-ephem/internal/health"
)

func main() {
	configPath := flag.String("config", os.Getenv("ECLIPSE_CONFIG"), "path to a YAML config file")
	flag.Parse()

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	cfg, err := config.Load(*configPath, logger)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.SlogLevel())

	model, err := loadModel(cfg, logger)
	if err != nil {
		logger.Error("failed to load coefficients", "error", err)
		os.Exit(1)
	}

	searcher := eclipse.NewSearcher(model, cfg.Search.Eclipse(), logger)
	readiness := &health.Readiness{}

	srv := api.NewServer(cfg.HTTPAddr, logger, api.Deps{
		Model:     model,
		Searcher:  searcher,
		Readiness: readiness,
		Config:    cfg,
	})

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server",
			"addr", cfg.HTTPAddr,
			"search_workers", searcher.Config().Workers,
			"grid_points", len(searcher.Grid()),
			"auth_enabled", cfg.API.AuthToken != "",
			"trust_proxy", cfg.API.TrustProxy,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()
	readiness.SetReady(true)

	<-ctx.Done()
	readiness.SetReady(false)
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func loadModel(cfg config.Config, logger *slog.Logger) (*ephemeris.Model, error) {
	tables, err := coeffstore.Open(cfg.CoefficientsFile)
	if err != nil {
		return nil, err
	}
	source := cfg.CoefficientsFile
	if source == "" {
		source = "embedded"
	}
	logger.Info("coefficients loaded",
		"source", source,
		"longitude_terms", tables.Longitude.Len(),
		"latitude_terms", tables.Latitude.Len(),
		"distance_terms", tables.Distance.Len(),
	)
	return ephemeris.NewModel(tables), nil
}
