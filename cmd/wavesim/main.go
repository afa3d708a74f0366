// Package main is the entry point for the headless water simulation.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-water/internal/config"
	"github.com/Faultbox/midgard-water/internal/logger"
	"github.com/Faultbox/midgard-water/internal/sim"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Midgard Water ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	s, err := sim.New(cfg)
	if err != nil {
		logger.Error("failed to create simulation", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("simulation error", zap.Error(err))
		os.Exit(1)
	}

	mesh := s.Surface().Mesh()
	logger.Info("simulation closed normally",
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Int("samples", len(s.Samples())),
	)
}
