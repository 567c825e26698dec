package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eraceo/apmlive/internal/config"
	"github.com/eraceo/apmlive/internal/export"
	"github.com/eraceo/apmlive/internal/input"
	"github.com/eraceo/apmlive/internal/logger"
	"github.com/eraceo/apmlive/internal/pid"
	"github.com/eraceo/apmlive/internal/telemetry"
	"github.com/eraceo/apmlive/internal/tracker"
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		logger.Init(false, false, logger.IsService())
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	applyLogLevel(cfg)
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write PID file")
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove PID file")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx); err != nil {
		logger.Error().Err(err).Msg("error in main loop")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	t, err := tracker.New(coreConfig(cfg), nil)
	if err != nil {
		return err
	}

	collector, err := telemetry.NewService(telemetryConfig(cfg), logger.Default())
	if err != nil {
		return err
	}
	defer func() {
		if err := collector.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close telemetry")
		}
	}()

	if cfg.Monitor || cfg.Verbose {
		t.AddObserver("status", logSnapshot)
	}

	if cfg.Telemetry {
		t.AddObserver("telemetry", func(s tracker.Snapshot) {
			if err := collector.Record(ctx, &s); err != nil {
				logger.Error().Err(err).Msg("failed to record snapshot")
			}
		})
	}

	if cfg.Export {
		exporter, err := export.New(exportConfig(cfg), logger.Default())
		if err != nil {
			return err
		}
		defer func() {
			if err := exporter.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close exporter")
			}
		}()
		t.AddObserver("export", exporter.Notify)
	}

	var source input.Source
	if cfg.Demo {
		source, err = input.NewSynthetic(cfg.DemoAPM)
		if err != nil {
			return err
		}
		logger.Info().Int("apm", cfg.DemoAPM).Msg("Demo mode: generating synthetic input")
	}

	t.Start()
	if source != nil {
		source.Start(t)
	}

	<-ctx.Done()

	if source != nil {
		source.Stop()
	}
	t.Stop()

	return nil
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func applyLogLevel(cfg *config.Config) {
	if cfg.Debug || cfg.Verbose {
		return
	}

	switch cfg.LogLevel {
	case "debug":
		logger.SetLogLevel(logger.DebugLevel)
	case "info":
		logger.SetLogLevel(logger.InfoLevel)
	case "warning":
		logger.SetLogLevel(logger.WarnLevel)
	case "error":
		logger.SetLogLevel(logger.ErrorLevel)
	}
}

func coreConfig(cfg *config.Config) tracker.Config {
	return tracker.Config{
		WindowSize:     time.Duration(cfg.WindowSize) * time.Second,
		APSWindow:      time.Duration(cfg.APSWindow) * time.Second,
		PruneGrace:     time.Duration(cfg.PruneGrace) * time.Second,
		UpdateInterval: time.Duration(cfg.UpdateInterval) * time.Millisecond,
		StopTimeout:    time.Duration(cfg.StopTimeout) * time.Millisecond,
	}
}

func telemetryConfig(cfg *config.Config) telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.Enabled = cfg.Telemetry
	tc.DBPath = cfg.TelemetryDB

	return tc
}

func exportConfig(cfg *config.Config) export.Config {
	return export.Config{
		Dir:      cfg.ExportDir,
		Interval: time.Duration(cfg.ExportInterval) * time.Millisecond,
		Fields:   cfg.ExportFields,
	}
}

func logSnapshot(s tracker.Snapshot) {
	logger.Info().
		Float64("apm", s.CurrentAPM).
		Float64("avg_apm", s.AvgAPM).
		Float64("aps", s.APS).
		Int64("total_actions", s.TotalActions).
		Int64("session_seconds", s.SessionTime).
		Msg("")
}
