// Package nav implements ground-following first-person navigation over a
// terrain surface.
package nav

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/demwalk/internal/ground"
)

// Pose is the observer state: world position, compass heading in degrees
// wrapped to [0, 360) and pitch in degrees clamped to [-89, 89].
type Pose struct {
	Position mgl64.Vec3
	Heading  float64
	Pitch    float64
}

// Intent is the per-step input: movement and turn keys plus look deltas in
// normalized screen units.
type Intent struct {
	Forward, Backward bool
	Left, Right       bool
	TurnLeft          bool
	TurnRight         bool
	LookDX, LookDY    float64
}

// Params tunes the navigator. Heading follows the compass convention fixed
// here: 0 degrees faces +Y and the planar forward vector is
// (sin heading, cos heading, 0).
//
// ClimbFraction and DescendFraction are empirical tuning values with no
// physical rationale, so they are parameters rather than constants.
type Params struct {
	Speed           float64 // meters per second
	EyeHeight       float64 // meters above the ground surface
	Sensitivity     float64 // degrees per normalized look unit
	TurnSpeed       float64 // degrees per second for the turn keys
	ClimbFraction   float64 // displacement applied against a too-steep rise
	DescendFraction float64 // displacement applied down a too-steep drop
}

// DefaultParams returns walking-pace parameters matching a 1.7m observer.
func DefaultParams() Params {
	return Params{
		Speed:           5.0,
		EyeHeight:       1.7,
		Sensitivity:     50.0,
		TurnSpeed:       100.0,
		ClimbFraction:   0.2,
		DescendFraction: 0.5,
	}
}

// Navigator resolves observer movement against a ground surface each step.
// It is single-threaded: Step must not be called concurrently.
type Navigator struct {
	surface *ground.Surface
	params  Params
	pose    Pose
	misses  int
}

// New creates a navigator at the given start pose. When the surface covers
// the start position the observer is snapped onto it.
func New(surface *ground.Surface, params Params, start Pose) *Navigator {
	start.Heading = wrapHeading(start.Heading)
	start.Pitch = clampPitch(start.Pitch)
	if hit, ok := surface.HeightAt(start.Position.X(), start.Position.Y()); ok {
		start.Position[2] = hit.Height + params.EyeHeight
	}
	return &Navigator{surface: surface, params: params, pose: start}
}

// Pose returns the current observer pose.
func (n *Navigator) Pose() Pose { return n.pose }

// Misses returns how many ground queries at the observer's position have
// missed the mesh footprint since creation. Diagnostics only.
func (n *Navigator) Misses() int { return n.misses }

// Step advances the observer by one simulation step of dt seconds. Movement
// is resolved first, then look input, and the result is the new pose.
//
// A step the observer cannot climb (ground rises by more than speed*dt) is
// approached by ClimbFraction of the intended displacement; a matching drop
// is descended by DescendFraction. After either branch the height is
// re-queried at the final planar position so the observer never floats above
// or clips through the surface.
func (n *Navigator) Step(in Intent, dt float64) Pose {
	p := &n.params

	if in.TurnLeft {
		n.pose.Heading = wrapHeading(n.pose.Heading + p.TurnSpeed*dt)
	}
	if in.TurnRight {
		n.pose.Heading = wrapHeading(n.pose.Heading - p.TurnSpeed*dt)
	}

	if move := n.moveVector(in); move.Len() > 0 {
		delta := move.Normalize().Mul(p.Speed * dt)
		n.resolveMove(delta, p.Speed*dt)
	}

	n.pose.Heading = wrapHeading(n.pose.Heading - in.LookDX*p.Sensitivity)
	n.pose.Pitch = clampPitch(n.pose.Pitch + in.LookDY*p.Sensitivity)

	return n.pose
}

// moveVector combines the movement keys into a heading-relative planar
// direction. Not normalized.
func (n *Navigator) moveVector(in Intent) mgl64.Vec3 {
	h := mgl64.DegToRad(n.pose.Heading)
	forward := mgl64.Vec3{math.Sin(h), math.Cos(h), 0}
	right := mgl64.Vec3{math.Cos(h), -math.Sin(h), 0}

	var move mgl64.Vec3
	if in.Forward {
		move = move.Add(forward)
	}
	if in.Backward {
		move = move.Sub(forward)
	}
	if in.Right {
		move = move.Add(right)
	}
	if in.Left {
		move = move.Sub(right)
	}
	return move
}

func (n *Navigator) resolveMove(delta mgl64.Vec3, maxClimb float64) {
	pos := n.pose.Position
	desired := pos.Add(delta)

	desiredHit, ok := n.surface.HeightAt(desired.X(), desired.Y())
	if !ok {
		// The intended position is off the mesh. Hold the pose; walking off
		// the footprint is recoverable, not fatal.
		n.miss(desired.X(), desired.Y())
		return
	}

	// Last known ground height when the current position misses (the
	// observer may have been placed on the boundary).
	currentGround := pos.Z() - n.params.EyeHeight
	if hit, ok := n.surface.HeightAt(pos.X(), pos.Y()); ok {
		currentGround = hit.Height
	}

	diff := desiredHit.Height - currentGround
	switch {
	case math.Abs(diff) <= maxClimb:
		pos = desired
	case diff > 0:
		pos = pos.Add(delta.Mul(n.params.ClimbFraction))
	default:
		pos = pos.Add(delta.Mul(n.params.DescendFraction))
	}

	// Final re-anchor at the committed planar position. This also covers the
	// partial-displacement branches, whose height has not been queried yet.
	if hit, ok := n.surface.HeightAt(pos.X(), pos.Y()); ok {
		pos[2] = hit.Height + n.params.EyeHeight
	} else {
		n.miss(pos.X(), pos.Y())
	}
	n.pose.Position = pos
}

func (n *Navigator) miss(x, y float64) {
	n.misses++
	zap.L().Debug("ground query miss",
		zap.Float64("x", x), zap.Float64("y", y), zap.Int("total", n.misses))
}

func wrapHeading(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

func clampPitch(p float64) float64 {
	if p < -89 {
		return -89
	}
	if p > 89 {
		return 89
	}
	return p
}
