package viewer

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/demwalk/internal/ground"
	"github.com/Faultbox/demwalk/internal/terrain"
)

const (
	markerHeight    = 3.0
	markerHalfWidth = 0.15
)

var markerColor = mgl64.Vec3{0.85, 0.2, 0.15}

// BuildMarkers places reference posts on the ground at regular intervals
// across the terrain footprint. They give the walker a sense of scale and
// make ground anchoring visually checkable.
func BuildMarkers(s *ground.Surface, spacing float64) *terrain.Mesh {
	if spacing <= 0 {
		return nil
	}
	min, max := s.Bounds()

	m := &terrain.Mesh{}
	count := 0
	for x := min.X() + spacing/2; x < max.X(); x += spacing {
		for y := min.Y() + spacing/2; y < max.Y(); y += spacing {
			hit, ok := s.HeightAt(x, y)
			if !ok {
				continue
			}
			appendPost(m, x, y, hit.Height)
			count++
		}
	}
	if count == 0 {
		return nil
	}

	m.ComputeNormals()
	m.Colors = make([]mgl64.Vec3, len(m.Vertices))
	for i := range m.Colors {
		m.Colors[i] = markerColor
	}

	zap.L().Debug("markers placed", zap.Int("count", count), zap.Float64("spacing", spacing))
	return m
}

// appendPost adds a thin box from the ground up at (x, y).
func appendPost(m *terrain.Mesh, x, y, z float64) {
	base := uint32(len(m.Vertices))
	w := markerHalfWidth
	top := z + markerHeight

	m.Vertices = append(m.Vertices,
		mgl64.Vec3{x - w, y - w, z},   // 0
		mgl64.Vec3{x + w, y - w, z},   // 1
		mgl64.Vec3{x + w, y + w, z},   // 2
		mgl64.Vec3{x - w, y + w, z},   // 3
		mgl64.Vec3{x - w, y - w, top}, // 4
		mgl64.Vec3{x + w, y - w, top}, // 5
		mgl64.Vec3{x + w, y + w, top}, // 6
		mgl64.Vec3{x - w, y + w, top}, // 7
	)

	faces := [][3]uint32{
		// Sides
		{0, 1, 5}, {0, 5, 4},
		{1, 2, 6}, {1, 6, 5},
		{2, 3, 7}, {2, 7, 6},
		{3, 0, 4}, {3, 4, 7},
		// Top
		{4, 5, 6}, {4, 6, 7},
	}
	for _, f := range faces {
		m.Triangles = append(m.Triangles, [3]uint32{base + f[0], base + f[1], base + f[2]})
	}
}
