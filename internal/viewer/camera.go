package viewer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/demwalk/internal/nav"
)

// Camera builds view and projection matrices from a walker pose. The world
// is Z-up; heading 0 looks along +Y.
type Camera struct {
	FOV  float64 // Vertical field of view in degrees
	Near float32
	Far  float32
}

// NewCamera creates a camera with the given field of view.
func NewCamera(fov float64) *Camera {
	return &Camera{
		FOV:  fov,
		Near: 0.1,
		Far:  10000,
	}
}

// ViewMatrix returns the view matrix for the given pose.
func (c *Camera) ViewMatrix(p nav.Pose) mgl32.Mat4 {
	h := p.Heading * math.Pi / 180
	pitch := p.Pitch * math.Pi / 180

	forward := mgl32.Vec3{
		float32(math.Sin(h) * math.Cos(pitch)),
		float32(math.Cos(h) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
	}

	eye := mgl32.Vec3{
		float32(p.Position.X()),
		float32(p.Position.Y()),
		float32(p.Position.Z()),
	}
	up := mgl32.Vec3{0, 0, 1}
	return mgl32.LookAtV(eye, eye.Add(forward), up)
}

// ProjectionMatrix returns the perspective projection for the given
// viewport size.
func (c *Camera) ProjectionMatrix(width, height int) mgl32.Mat4 {
	if height == 0 {
		height = 1
	}
	aspect := float32(width) / float32(height)
	return mgl32.Perspective(mgl32.DegToRad(float32(c.FOV)), aspect, c.Near, c.Far)
}
