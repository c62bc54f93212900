package kernel

import "math"

// Mesh is a triangle mesh suitable for rendering or export.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // GlobalId of the product this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

func (m *Mesh) vertex(i uint32) Vec3 {
	return Vec3{float64(m.Vertices[3*i]), float64(m.Vertices[3*i+1]), float64(m.Vertices[3*i+2])}
}

// Volume returns the enclosed volume by the divergence theorem. The mesh must
// be closed; orientation is ignored.
func (m *Mesh) Volume() float64 {
	var v float64
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.vertex(m.Indices[i]), m.vertex(m.Indices[i+1]), m.vertex(m.Indices[i+2])
		v += a.Dot(b.Cross(c))
	}
	return math.Abs(v) / 6
}

// Area returns the total triangle area.
func (m *Mesh) Area() float64 {
	var s float64
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.vertex(m.Indices[i]), m.vertex(m.Indices[i+1]), m.vertex(m.Indices[i+2])
		s += b.Sub(a).Cross(c.Sub(a)).Len() / 2
	}
	return s
}

// AddTriangle appends a flat-shaded triangle.
func (m *Mesh) AddTriangle(a, b, c Vec3) {
	n := b.Sub(a).Cross(c.Sub(a)).Unit()
	base := uint32(m.VertexCount())
	for _, p := range [3]Vec3{a, b, c} {
		m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
		m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	m.Indices = append(m.Indices, base, base+1, base+2)
}

// Append adds all triangles of o to m.
func (m *Mesh) Append(o *Mesh) {
	base := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, o.Vertices...)
	m.Normals = append(m.Normals, o.Normals...)
	for _, i := range o.Indices {
		m.Indices = append(m.Indices, base+i)
	}
}
