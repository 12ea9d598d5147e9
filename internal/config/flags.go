package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagDEM        = flag.String("dem", "", "Path to a DEM file (.asc, .png or .tif)")
	flagDownsample = flag.Int("downsample", 0, "Keep every Nth DEM sample")
	flagBridge     = flag.String("bridge", "", "Enable the pose bridge on this listen address")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagDEM != "" {
		cfg.Terrain.DEMPath = *flagDEM
	}
	if *flagDownsample > 0 {
		cfg.Terrain.Downsample = *flagDownsample
	}
	if *flagBridge != "" {
		cfg.Bridge.Enabled = true
		cfg.Bridge.Listen = *flagBridge
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
}
