package viewer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/demwalk/internal/terrain"
)

const meshVertexShader = `#version 410 core
layout(location = 0) in vec3 aPos;
layout(location = 1) in vec3 aNormal;
layout(location = 2) in vec3 aColor;

uniform mat4 uViewProj;

out vec3 vNormal;
out vec3 vColor;

void main() {
    vNormal = aNormal;
    vColor = aColor;
    gl_Position = uViewProj * vec4(aPos, 1.0);
}
`

const meshFragmentShader = `#version 410 core
in vec3 vNormal;
in vec3 vColor;

uniform vec3 uLightDir;
uniform vec3 uAmbient;
uniform vec3 uDiffuse;

out vec4 fragColor;

void main() {
    float diff = max(dot(normalize(vNormal), -normalize(uLightDir)), 0.0);
    vec3 lit = vColor * (uAmbient + uDiffuse * diff);
    fragColor = vec4(lit, 1.0);
}
`

// defaultColor is used for meshes without classification colors.
var defaultColor = [3]float32{0.8, 0.8, 0.8}

type batch struct {
	vao   uint32
	vbo   uint32
	ebo   uint32
	count int32
}

// MeshRenderer draws triangle meshes with per-vertex colors and simple
// directional lighting.
type MeshRenderer struct {
	program     uint32
	locViewProj int32
	locLightDir int32
	locAmbient  int32
	locDiffuse  int32

	terrain batch
	markers batch

	// Lighting
	LightDir mgl32.Vec3
	Ambient  mgl32.Vec3
	Diffuse  mgl32.Vec3
}

// NewMeshRenderer compiles the mesh shader. The OpenGL context must exist.
func NewMeshRenderer() (*MeshRenderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}
	zap.L().Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	program, err := compileProgram(meshVertexShader, meshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}

	r := &MeshRenderer{
		program:     program,
		locViewProj: uniform(program, "uViewProj"),
		locLightDir: uniform(program, "uLightDir"),
		locAmbient:  uniform(program, "uAmbient"),
		locDiffuse:  uniform(program, "uDiffuse"),
		LightDir:    mgl32.Vec3{-0.4, -0.3, -0.85},
		Ambient:     mgl32.Vec3{0.35, 0.35, 0.35},
		Diffuse:     mgl32.Vec3{0.75, 0.75, 0.75},
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.ClearColor(0.53, 0.75, 0.92, 1.0)

	return r, nil
}

// UploadTerrain uploads the walkable mesh to the GPU.
func (r *MeshRenderer) UploadTerrain(m *terrain.Mesh) {
	r.deleteBatch(&r.terrain)
	r.terrain = r.uploadMesh(m)
	zap.L().Debug("terrain uploaded",
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("triangles", len(m.Triangles)),
	)
}

// UploadMarkers uploads reference marker geometry to the GPU.
func (r *MeshRenderer) UploadMarkers(m *terrain.Mesh) {
	r.deleteBatch(&r.markers)
	if m == nil || len(m.Triangles) == 0 {
		return
	}
	r.markers = r.uploadMesh(m)
}

// uploadMesh builds an interleaved pos/normal/color buffer and index buffer.
func (r *MeshRenderer) uploadMesh(m *terrain.Mesh) batch {
	stride := 9 // pos(3) + normal(3) + color(3)
	verts := make([]float32, 0, len(m.Vertices)*stride)
	for i, v := range m.Vertices {
		verts = append(verts,
			float32(v.X()), float32(v.Y()), float32(v.Z()))
		n := m.Normals[i]
		verts = append(verts,
			float32(n.X()), float32(n.Y()), float32(n.Z()))
		if m.Colors != nil {
			c := m.Colors[i]
			verts = append(verts,
				float32(c.X()), float32(c.Y()), float32(c.Z()))
		} else {
			verts = append(verts, defaultColor[0], defaultColor[1], defaultColor[2])
		}
	}

	indices := make([]uint32, 0, len(m.Triangles)*3)
	for _, tri := range m.Triangles {
		indices = append(indices, tri[0], tri[1], tri[2])
	}

	var b batch
	b.count = int32(len(indices))

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, unsafe.Pointer(&verts[0]), gl.STATIC_DRAW)

	byteStride := int32(stride * 4)

	// Position (location 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, byteStride, 0)
	gl.EnableVertexAttribArray(0)

	// Normal (location 1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, byteStride, 3*4)
	gl.EnableVertexAttribArray(1)

	// Color (location 2)
	gl.VertexAttribPointerWithOffset(2, 3, gl.FLOAT, false, byteStride, 6*4)
	gl.EnableVertexAttribArray(2)

	gl.GenBuffers(1, &b.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return b
}

// Render draws the terrain and markers with the given view-projection.
func (r *MeshRenderer) Render(viewProj mgl32.Mat4) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.locViewProj, 1, false, &viewProj[0])
	gl.Uniform3f(r.locLightDir, r.LightDir.X(), r.LightDir.Y(), r.LightDir.Z())
	gl.Uniform3f(r.locAmbient, r.Ambient.X(), r.Ambient.Y(), r.Ambient.Z())
	gl.Uniform3f(r.locDiffuse, r.Diffuse.X(), r.Diffuse.Y(), r.Diffuse.Z())

	r.drawBatch(r.terrain)
	r.drawBatch(r.markers)
}

func (r *MeshRenderer) drawBatch(b batch) {
	if b.vao == 0 {
		return
	}
	gl.BindVertexArray(b.vao)
	gl.DrawElements(gl.TRIANGLES, b.count, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// Resize updates the OpenGL viewport.
func (r *MeshRenderer) Resize(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (r *MeshRenderer) deleteBatch(b *batch) {
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
		b.vao = 0
	}
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
		b.vbo = 0
	}
	if b.ebo != 0 {
		gl.DeleteBuffers(1, &b.ebo)
		b.ebo = 0
	}
	b.count = 0
}

// Destroy releases all GPU resources.
func (r *MeshRenderer) Destroy() {
	r.deleteBatch(&r.terrain)
	r.deleteBatch(&r.markers)
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
}
