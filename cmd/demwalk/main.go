// Package main is the entry point for the demwalk terrain walker.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/demwalk/internal/bridge"
	"github.com/Faultbox/demwalk/internal/config"
	"github.com/Faultbox/demwalk/internal/dem"
	"github.com/Faultbox/demwalk/internal/ground"
	"github.com/Faultbox/demwalk/internal/logger"
	"github.com/Faultbox/demwalk/internal/nav"
	"github.com/Faultbox/demwalk/internal/terrain"
	"github.com/Faultbox/demwalk/internal/viewer"
)

// Synthetic terrain used when no DEM is given.
const (
	synthSize      = 200
	synthSpacing   = 1.0
	synthAmplitude = 6.0
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== demwalk ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	grid, err := loadGrid(cfg.Terrain)
	if err != nil {
		logger.Error("failed to load terrain", zap.Error(err))
		os.Exit(1)
	}

	sampled, err := dem.Sample(grid, cfg.Terrain.Downsample)
	if err != nil {
		logger.Error("failed to downsample terrain", zap.Error(err))
		os.Exit(1)
	}

	mesh, err := terrain.Build(sampled)
	if err != nil {
		logger.Error("failed to build mesh", zap.Error(err))
		os.Exit(1)
	}
	if cfg.Terrain.Classify {
		mesh.Classify()
	}
	logger.Info("terrain mesh ready",
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int("triangles", len(mesh.Triangles)),
	)

	surface := ground.NewSurface(mesh)
	min, max := surface.Bounds()

	navigator := nav.New(surface, nav.Params{
		Speed:           cfg.Navigator.Speed,
		EyeHeight:       cfg.Navigator.EyeHeight,
		Sensitivity:     cfg.Navigator.Sensitivity,
		TurnSpeed:       cfg.Navigator.TurnSpeed,
		ClimbFraction:   cfg.Navigator.ClimbFraction,
		DescendFraction: cfg.Navigator.DescendFraction,
	}, nav.Pose{
		// Start in the middle of the footprint, dropped onto the ground.
		Position: mgl64.Vec3{
			(min.X() + max.X()) / 2,
			(min.Y() + max.Y()) / 2,
			max.Z(),
		},
	})

	app, err := viewer.NewApp(viewer.AppConfig{
		Title:         "demwalk",
		Width:         cfg.Graphics.Width,
		Height:        cfg.Graphics.Height,
		Fullscreen:    cfg.Graphics.Fullscreen,
		VSync:         cfg.Graphics.VSync,
		FOV:           cfg.Graphics.FOV,
		MarkerSpacing: markerSpacing(min, max),
	}, mesh, surface, navigator)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	if cfg.Bridge.Enabled {
		srv := bridge.NewServer(mesh)
		if err := srv.Start(cfg.Bridge.Listen); err != nil {
			logger.Error("failed to start bridge", zap.Error(err))
			os.Exit(1)
		}
		defer srv.Close()
		app.SetPoseSink(srv)
	}

	if err := app.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	if n := navigator.Misses(); n > 0 {
		logger.Warn("ground queries missed during walk", zap.Int("count", n))
	}
	logger.Info("viewer closed normally")
}

// loadGrid loads the configured DEM, or builds synthetic rolling hills when
// no path is set.
func loadGrid(cfg config.TerrainConfig) (*dem.Grid, error) {
	if cfg.DEMPath == "" {
		logger.Info("no DEM configured, generating rolling hills")
		return dem.RollingHills(synthSize, synthSize, synthSpacing, synthAmplitude)
	}

	switch strings.ToLower(filepath.Ext(cfg.DEMPath)) {
	case ".asc":
		return dem.LoadASC(cfg.DEMPath)
	case ".png", ".tif", ".tiff":
		return dem.LoadImage(cfg.DEMPath, cfg.CellSize, cfg.MinElev, cfg.MaxElev)
	default:
		return nil, fmt.Errorf("unsupported DEM format: %s", cfg.DEMPath)
	}
}

// markerSpacing spreads roughly eight reference posts across the larger
// footprint axis.
func markerSpacing(min, max mgl64.Vec3) float64 {
	span := max.X() - min.X()
	if dy := max.Y() - min.Y(); dy > span {
		span = dy
	}
	return span / 8
}
