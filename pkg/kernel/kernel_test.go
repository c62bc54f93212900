package kernel

import (
	"math"
	"testing"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

// tetra returns the unit right tetrahedron, volume 1/6.
func tetra() *Mesh {
	o, x, y, z := V(0, 0, 0), V(1, 0, 0), V(0, 1, 0), V(0, 0, 1)
	m := &Mesh{}
	m.AddTriangle(o, y, x)
	m.AddTriangle(o, x, z)
	m.AddTriangle(o, z, y)
	m.AddTriangle(x, y, z)
	return m
}

func TestMeshVolume(t *testing.T) {
	m := tetra()
	if got := m.Volume(); math.Abs(got-1.0/6) > 1e-6 {
		t.Errorf("Volume() = %f, want %f", got, 1.0/6)
	}
	if m.TriangleCount() != 4 || m.VertexCount() != 12 {
		t.Errorf("counts = %d triangles, %d vertices", m.TriangleCount(), m.VertexCount())
	}
}

func TestMeshAppend(t *testing.T) {
	m := tetra()
	m.Append(tetra())
	if m.TriangleCount() != 8 {
		t.Fatalf("TriangleCount() = %d, want 8", m.TriangleCount())
	}
	if m.Indices[len(m.Indices)-1] != 23 {
		t.Errorf("appended indices not rebased: last = %d", m.Indices[len(m.Indices)-1])
	}
}

// --- Vector and transform tests ---

func TestVecOps(t *testing.T) {
	a, b := V(1, 0, 0), V(0, 1, 0)
	if got := a.Cross(b); got != ZAxis {
		t.Errorf("X × Y = %v, want Z", got)
	}
	if got := V(3, 4, 0).Len(); got != 5 {
		t.Errorf("Len = %f, want 5", got)
	}
	if !a.Parallel(V(-2, 0, 0), 1e-9) {
		t.Error("X and -2X should be parallel")
	}
	if a.Parallel(b, 1e-9) {
		t.Error("X and Y should not be parallel")
	}
	if got := V(0, 0, 0).Unit(); got != (Vec3{}) {
		t.Errorf("Unit of zero = %v", got)
	}
	if p := V(0, 0, 5).Perpendicular(); math.Abs(p.Dot(ZAxis)) > 1e-12 || math.Abs(p.Len()-1) > 1e-12 {
		t.Errorf("Perpendicular = %v", p)
	}
}

func TestNewell(t *testing.T) {
	square := []Vec3{V(0, 0, 0), V(2, 0, 0), V(2, 2, 0), V(0, 2, 0)}
	n := Newell(square)
	if n.Unit() != ZAxis || math.Abs(n.Len()-8) > 1e-12 {
		t.Errorf("Newell = %v, want (0,0,8)", n)
	}
	if Newell([]Vec3{V(0, 0, 0), V(1, 0, 0), V(2, 0, 0)}).Len() != 0 {
		t.Error("collinear points should have zero normal")
	}
}

func TestNewFrame(t *testing.T) {
	tests := []struct {
		name   string
		axis   Vec3
		refDir Vec3
		wantX  Vec3
	}{
		{"default", ZAxis, XAxis, XAxis},
		{"skewed ref", ZAxis, V(1, 0, 1), XAxis},
		{"ref parallel to axis", ZAxis, V(0, 0, 3), ZAxis.Perpendicular()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFrame(V(1, 2, 3), tt.axis, tt.refDir)
			if err != nil {
				t.Fatalf("NewFrame: %v", err)
			}
			if !f.X.Near(tt.wantX, 1e-12) {
				t.Errorf("X = %v, want %v", f.X, tt.wantX)
			}
			if !f.X.Cross(f.Y).Near(f.Z, 1e-12) {
				t.Error("frame is not right-handed")
			}
			p := V(0.5, -2, 7)
			if back := f.ToLocal(f.ToWorld(p)); !back.Near(p, 1e-12) {
				t.Errorf("round trip = %v, want %v", back, p)
			}
		})
	}
	if _, err := NewFrame(Vec3{}, Vec3{}, XAxis); err == nil {
		t.Error("zero axis should fail")
	}
}

func TestTransformCompose(t *testing.T) {
	rot := Rotation(ZAxis, math.Pi/2)
	move := Translation(V(10, 0, 0))
	// rotate first, then translate
	tr := move.Mul(rot)
	if got := tr.Apply(V(1, 0, 0)); !got.Near(V(10, 1, 0), 1e-12) {
		t.Errorf("Apply = %v, want (10,1,0)", got)
	}
	inv, err := tr.Inverse()
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	if !inv.Mul(tr).IsIdentity() {
		t.Error("inverse composed with transform is not identity")
	}
	if _, err := Scaling(1, 0, 1).Inverse(); err == nil {
		t.Error("singular transform should not invert")
	}
	if s := Scaling(2, 3, 0.5).MinScale(); s != 0.5 {
		t.Errorf("MinScale = %f, want 0.5", s)
	}
}

func TestFrameTransformMatchesToWorld(t *testing.T) {
	f, _ := NewFrame(V(1, 1, 1), V(0, 1, 0), V(1, 0, 0))
	p := V(2, 3, 4)
	if a, b := f.Transform().Apply(p), f.ToWorld(p); !a.Near(b, 1e-12) {
		t.Errorf("Transform().Apply = %v, ToWorld = %v", a, b)
	}
}

// --- Sampling with a stub curve ---

// stubLine is a minimal Curve: the X axis over [0, 1].
type stubLine struct{}

func (stubLine) Domain() (float64, float64) { return 0, 1 }
func (stubLine) Point(t float64) Vec3       { return V(t, 0, 0) }
func (stubLine) Project(p Vec3) float64     { return p.X }
func (stubLine) Closed() bool               { return false }
func (stubLine) Normal() (Vec3, bool)       { return Vec3{}, false }
func (stubLine) Segments(_, _ float64) int  { return 4 }

// stubCircle is a closed unit circle over [0, 2π).
type stubCircle struct{}

func (stubCircle) Domain() (float64, float64) { return 0, 2 * math.Pi }
func (stubCircle) Point(t float64) Vec3       { return V(math.Cos(t), math.Sin(t), 0) }
func (stubCircle) Project(p Vec3) float64     { return math.Atan2(p.Y, p.X) }
func (stubCircle) Closed() bool               { return true }
func (stubCircle) Normal() (Vec3, bool)       { return ZAxis, true }
func (stubCircle) Segments(t0, t1 float64) int {
	return ArcSegments(t1-t0, 8)
}

var (
	_ Curve = stubLine{}
	_ Curve = stubCircle{}
)

func TestSample(t *testing.T) {
	pts := SampleAll(stubLine{})
	if len(pts) != 5 {
		t.Fatalf("len = %d, want 5", len(pts))
	}
	if pts[4] != V(1, 0, 0) {
		t.Errorf("last = %v", pts[4])
	}

	// a zero-length range on a closed curve wraps once around
	full := Sample(stubCircle{}, 0, 0)
	if len(full) != 9 {
		t.Fatalf("full circle samples = %d, want 9", len(full))
	}
	if !full[0].Near(full[8], 1e-12) {
		t.Error("full circle should end where it starts")
	}
}

func TestCrossesAxis(t *testing.T) {
	tests := []struct {
		name string
		pts  []Vec3
		want bool
	}{
		{"one side", []Vec3{V(1, 0, 0), V(2, 5, 0)}, false},
		{"both sides", []Vec3{V(-1, 0, 0), V(1, 1, 0)}, true},
		{"touches axis", []Vec3{V(0, 0, 0), V(1, 1, 0), V(0, 2, 0)}, false},
		{"within tolerance", []Vec3{V(-1e-5, 0, 0), V(1, 1, 0)}, false},
		{"out of plane", []Vec3{V(1, 0, 0), V(0, 1, 1)}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CrossesAxis(tt.pts, V(0, 0, 0), V(0, 1, 0), 1e-4); got != tt.want {
				t.Errorf("CrossesAxis = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTargetString(t *testing.T) {
	if TargetSolid.String() != "solid" || TargetOpenShell.String() != "open shell" {
		t.Error("unexpected target names")
	}
	if Target(9).String() != "unknown" {
		t.Error("out-of-range target should be unknown")
	}
}
