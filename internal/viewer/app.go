package viewer

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/demwalk/internal/ground"
	"github.com/Faultbox/demwalk/internal/nav"
	"github.com/Faultbox/demwalk/internal/terrain"
)

// AppConfig holds viewer configuration.
type AppConfig struct {
	Title         string
	Width         int
	Height        int
	Fullscreen    bool
	VSync         bool
	FOV           float64
	MarkerSpacing float64 // Reference post interval; 0 disables markers
}

// PoseSink receives the walker pose after every simulation step.
type PoseSink interface {
	BroadcastPose(nav.Pose)
}

// App owns the window, renderer and walk loop.
type App struct {
	config    AppConfig
	window    *Window
	input     *Input
	camera    *Camera
	renderer  *MeshRenderer
	navigator *nav.Navigator
	sink      PoseSink
	running   bool
}

// NewApp creates the window, uploads the mesh and wires the navigator.
func NewApp(cfg AppConfig, mesh *terrain.Mesh, surface *ground.Surface, navigator *nav.Navigator) (*App, error) {
	zap.L().Info("initializing viewer",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
	)

	a := &App{
		config:    cfg,
		navigator: navigator,
	}

	var err error
	a.window, err = NewWindow(WindowConfig{
		Title:      cfg.Title,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Fullscreen: cfg.Fullscreen,
		VSync:      cfg.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer needs the OpenGL context the window created.
	a.renderer, err = NewMeshRenderer()
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	a.renderer.Resize(cfg.Width, cfg.Height)
	a.renderer.UploadTerrain(mesh)

	if cfg.MarkerSpacing > 0 {
		a.renderer.UploadMarkers(BuildMarkers(surface, cfg.MarkerSpacing))
	}

	a.input = NewInput()
	a.camera = NewCamera(cfg.FOV)

	zap.L().Info("viewer initialized")
	return a, nil
}

// SetPoseSink attaches a pose broadcast target.
func (a *App) SetPoseSink(s PoseSink) {
	a.sink = s
}

// Run starts the walk loop and blocks until the window is closed.
func (a *App) Run() error {
	a.running = true

	lastTime := time.Now()
	frameCount := 0
	hudTimer := time.Now()

	zap.L().Info("starting walk loop")

	for a.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if a.input.Poll() {
			a.running = false
			break
		}
		if w, h, ok := a.input.Resized(); ok {
			a.renderer.Resize(w, h)
			a.config.Width, a.config.Height = w, h
		}

		winW, winH := a.window.Size()
		pose := a.navigator.Step(a.input.Intent(winW, winH), dt)
		if a.sink != nil {
			a.sink.BroadcastPose(pose)
		}

		viewProj := a.camera.ProjectionMatrix(winW, winH).Mul4(a.camera.ViewMatrix(pose))
		a.renderer.Render(viewProj)
		a.window.SwapBuffers()

		// Pose HUD in the window title, refreshed once a second.
		frameCount++
		if time.Since(hudTimer) >= time.Second {
			a.window.SetTitle(fmt.Sprintf("%s | x=%.1f y=%.1f z=%.1f hdg=%.0f | %d fps",
				a.config.Title,
				pose.Position.X(), pose.Position.Y(), pose.Position.Z(),
				pose.Heading, frameCount))
			zap.L().Debug("pose",
				zap.Float64("x", pose.Position.X()),
				zap.Float64("y", pose.Position.Y()),
				zap.Float64("z", pose.Position.Z()),
				zap.Float64("heading", pose.Heading),
				zap.Float64("pitch", pose.Pitch),
				zap.Int("fps", frameCount),
			)
			frameCount = 0
			hudTimer = time.Now()
		}
	}

	return nil
}

// Close cleans up viewer resources.
func (a *App) Close() {
	zap.L().Info("closing viewer")

	if a.renderer != nil {
		a.renderer.Destroy()
	}
	if a.window != nil {
		a.window.Close()
	}
}
