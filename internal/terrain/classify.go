package terrain

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// Elevation classes, from low to high terrain.
const (
	ClassGround = iota
	ClassHill
	ClassRock
)

// Class colors are visualization-only gray tones.
var classColors = [3]mgl64.Vec3{
	{0.95, 0.95, 0.95},
	{0.75, 0.75, 0.75},
	{0.55, 0.55, 0.55},
}

// Classify labels each vertex by relative elevation and attaches the class
// color as per-vertex data. Thresholds sit at 30% and 60% of the elevation
// range. Topology is untouched. Returns the per-class vertex counts.
func (m *Mesh) Classify() [3]int {
	var counts [3]int
	if len(m.Vertices) == 0 {
		return counts
	}

	minZ, maxZ := m.Vertices[0].Z(), m.Vertices[0].Z()
	for _, v := range m.Vertices[1:] {
		if v.Z() < minZ {
			minZ = v.Z()
		}
		if v.Z() > maxZ {
			maxZ = v.Z()
		}
	}
	groundMax := minZ + 0.3*(maxZ-minZ)
	hillMax := minZ + 0.6*(maxZ-minZ)

	m.Colors = make([]mgl64.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		class := ClassGround
		switch {
		case v.Z() >= hillMax:
			class = ClassRock
		case v.Z() >= groundMax:
			class = ClassHill
		}
		m.Colors[i] = classColors[class]
		counts[class]++
	}

	zap.L().Debug("terrain classified",
		zap.Float64("ground_below", groundMax),
		zap.Float64("rock_above", hillMax),
		zap.Int("ground", counts[ClassGround]),
		zap.Int("hill", counts[ClassHill]),
		zap.Int("rock", counts[ClassRock]))
	return counts
}
