// Package config handles configuration loading and management.
package config

// Config holds all application settings.
type Config struct {
	Terrain   TerrainConfig   `yaml:"terrain"`
	Navigator NavigatorConfig `yaml:"navigator"`
	Graphics  GraphicsConfig  `yaml:"graphics"`
	Bridge    BridgeConfig    `yaml:"bridge"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// TerrainConfig holds DEM input and mesh construction settings.
type TerrainConfig struct {
	DEMPath    string  `yaml:"dem_path"`   // Path to a .asc or image DEM; empty for synthetic terrain
	Downsample int     `yaml:"downsample"` // Keep every Nth sample in both axes
	Classify   bool    `yaml:"classify"`   // Attach elevation-band vertex colors
	CellSize   float64 `yaml:"cell_size"`  // Ground spacing for image DEMs
	MinElev    float64 `yaml:"min_elev"`   // Elevation mapped to black for image DEMs
	MaxElev    float64 `yaml:"max_elev"`   // Elevation mapped to white for image DEMs
}

// NavigatorConfig holds ground-following movement settings.
type NavigatorConfig struct {
	Speed           float64 `yaml:"speed"`            // Walk speed in units/sec
	EyeHeight       float64 `yaml:"eye_height"`       // Camera height above ground
	Sensitivity     float64 `yaml:"sensitivity"`      // Mouse look degrees per normalized unit
	TurnSpeed       float64 `yaml:"turn_speed"`       // Keyboard turn rate in degrees/sec
	ClimbFraction   float64 `yaml:"climb_fraction"`   // Displacement kept when blocked uphill
	DescendFraction float64 `yaml:"descend_fraction"` // Displacement kept on steep descents
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	FOV        float64 `yaml:"fov"` // Vertical field of view in degrees
}

// BridgeConfig holds pose broadcast settings.
type BridgeConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"` // WebSocket listen address
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			DEMPath:    "",
			Downsample: 1,
			Classify:   true,
			CellSize:   1.0,
			MinElev:    0,
			MaxElev:    100,
		},
		Navigator: NavigatorConfig{
			Speed:           5.0,
			EyeHeight:       1.7,
			Sensitivity:     50.0,
			TurnSpeed:       100.0,
			ClimbFraction:   0.2,
			DescendFraction: 0.5,
		},
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FOV:        60,
		},
		Bridge: BridgeConfig{
			Enabled: false,
			Listen:  "127.0.0.1:8780",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
