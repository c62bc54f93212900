package kernel

import (
	"fmt"
	"math"
)

// Frame is a right-handed orthonormal coordinate system.
type Frame struct {
	Origin  Vec3
	X, Y, Z Vec3
}

// WorldFrame is the identity frame.
var WorldFrame = Frame{X: XAxis, Y: YAxis, Z: ZAxis}

// NewFrame builds a frame from an origin, a Z axis and an approximate X
// direction. The X direction is projected onto the plane normal to Z; when it
// is parallel to Z an arbitrary perpendicular is chosen.
func NewFrame(origin, axis, refDir Vec3) (Frame, error) {
	z := axis.Unit()
	if z.Len() == 0 {
		return Frame{}, fmt.Errorf("frame axis: %w", ErrDegenerate)
	}
	x := refDir.Sub(z.Scale(refDir.Dot(z)))
	if x.Len() < 1e-9 {
		x = z.Perpendicular()
	}
	x = x.Unit()
	return Frame{Origin: origin, X: x, Y: z.Cross(x), Z: z}, nil
}

// ToWorld maps local frame coordinates to world coordinates.
func (f Frame) ToWorld(p Vec3) Vec3 {
	return f.Origin.Add(f.X.Scale(p.X)).Add(f.Y.Scale(p.Y)).Add(f.Z.Scale(p.Z))
}

// ToLocal maps world coordinates into the frame.
func (f Frame) ToLocal(p Vec3) Vec3 {
	d := p.Sub(f.Origin)
	return Vec3{d.Dot(f.X), d.Dot(f.Y), d.Dot(f.Z)}
}

// Transform returns the affine transform equivalent to ToWorld.
func (f Frame) Transform() Transform {
	return Transform{
		M: [3][3]float64{
			{f.X.X, f.Y.X, f.Z.X},
			{f.X.Y, f.Y.Y, f.Z.Y},
			{f.X.Z, f.Y.Z, f.Z.Z},
		},
		T: f.Origin,
	}
}

// Transform is an affine map p -> M·p + T.
type Transform struct {
	M [3][3]float64
	T Vec3
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{M: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

// Translation returns a pure translation.
func Translation(v Vec3) Transform {
	t := Identity()
	t.T = v
	return t
}

// Scaling returns a non-uniform scale about the origin.
func Scaling(sx, sy, sz float64) Transform {
	return Transform{M: [3][3]float64{{sx, 0, 0}, {0, sy, 0}, {0, 0, sz}}}
}

// Rotation returns a rotation of angle radians about axis through the origin.
func Rotation(axis Vec3, angle float64) Transform {
	a := axis.Unit()
	c, s := math.Cos(angle), math.Sin(angle)
	t := 1 - c
	return Transform{M: [3][3]float64{
		{t*a.X*a.X + c, t*a.X*a.Y - s*a.Z, t*a.X*a.Z + s*a.Y},
		{t*a.X*a.Y + s*a.Z, t*a.Y*a.Y + c, t*a.Y*a.Z - s*a.X},
		{t*a.X*a.Z - s*a.Y, t*a.Y*a.Z + s*a.X, t*a.Z*a.Z + c},
	}}
}

// Apply maps a point.
func (t Transform) Apply(p Vec3) Vec3 {
	return t.ApplyDir(p).Add(t.T)
}

// ApplyDir maps a direction (no translation).
func (t Transform) ApplyDir(d Vec3) Vec3 {
	m := t.M
	return Vec3{
		m[0][0]*d.X + m[0][1]*d.Y + m[0][2]*d.Z,
		m[1][0]*d.X + m[1][1]*d.Y + m[1][2]*d.Z,
		m[2][0]*d.X + m[2][1]*d.Y + m[2][2]*d.Z,
	}
}

// Mul returns the composition t∘o: apply o first, then t.
func (t Transform) Mul(o Transform) Transform {
	var r Transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.M[i][j] = t.M[i][0]*o.M[0][j] + t.M[i][1]*o.M[1][j] + t.M[i][2]*o.M[2][j]
		}
	}
	r.T = t.Apply(o.T)
	return r
}

// Det returns the determinant of the linear part.
func (t Transform) Det() float64 {
	m := t.M
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// Inverse returns the inverse transform.
func (t Transform) Inverse() (Transform, error) {
	det := t.Det()
	if math.Abs(det) < 1e-15 {
		return Transform{}, fmt.Errorf("singular transform: %w", ErrDegenerate)
	}
	m := t.M
	inv := 1 / det
	var r Transform
	r.M[0][0] = (m[1][1]*m[2][2] - m[1][2]*m[2][1]) * inv
	r.M[0][1] = (m[0][2]*m[2][1] - m[0][1]*m[2][2]) * inv
	r.M[0][2] = (m[0][1]*m[1][2] - m[0][2]*m[1][1]) * inv
	r.M[1][0] = (m[1][2]*m[2][0] - m[1][0]*m[2][2]) * inv
	r.M[1][1] = (m[0][0]*m[2][2] - m[0][2]*m[2][0]) * inv
	r.M[1][2] = (m[0][2]*m[1][0] - m[0][0]*m[1][2]) * inv
	r.M[2][0] = (m[1][0]*m[2][1] - m[1][1]*m[2][0]) * inv
	r.M[2][1] = (m[0][1]*m[2][0] - m[0][0]*m[2][1]) * inv
	r.M[2][2] = (m[0][0]*m[1][1] - m[0][1]*m[1][0]) * inv
	r.T = r.ApplyDir(t.T).Neg()
	return r, nil
}

// IsIdentity reports whether t is the identity within 1e-12.
func (t Transform) IsIdentity() bool {
	id := Identity()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(t.M[i][j]-id.M[i][j]) > 1e-12 {
				return false
			}
		}
	}
	return t.T.Len() <= 1e-12
}

// MinScale returns a lower bound on how much t shrinks distances. It is the
// smallest column length, exact for rotations and axis-aligned scales.
func (t Transform) MinScale() float64 {
	s := math.Inf(1)
	for j := 0; j < 3; j++ {
		col := Vec3{t.M[0][j], t.M[1][j], t.M[2][j]}
		s = math.Min(s, col.Len())
	}
	return s
}
