package sdfx

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/ifcgeom/pkg/kernel"
)

// cubeFaces returns the six faces of the unit cube, outward oriented.
func cubeFaces() [][]kernel.Vec3 {
	v := kernel.V
	return [][]kernel.Vec3{
		{v(0, 0, 0), v(0, 1, 0), v(1, 1, 0), v(1, 0, 0)},
		{v(0, 0, 1), v(1, 0, 1), v(1, 1, 1), v(0, 1, 1)},
		{v(0, 0, 0), v(1, 0, 0), v(1, 0, 1), v(0, 0, 1)},
		{v(0, 1, 0), v(0, 1, 1), v(1, 1, 1), v(1, 1, 0)},
		{v(0, 0, 0), v(0, 0, 1), v(0, 1, 1), v(0, 1, 0)},
		{v(1, 0, 0), v(1, 1, 0), v(1, 1, 1), v(1, 0, 1)},
	}
}

func addPolyFace(t *testing.T, b kernel.BrepBuilder, pts []kernel.Vec3) error {
	t.Helper()
	b.StartFace(nil, true)
	b.StartLoop(true)
	for _, p := range pts {
		b.AddPoint(p)
	}
	if err := b.StopLoop(); err != nil {
		b.AbortFace()
		return err
	}
	return b.StopFace()
}

func TestBrepBuilderCube(t *testing.T) {
	k := testKernel()
	b := k.NewBrepBuilder()
	b.StartFaceSet(kernel.TargetSolid)
	faces := cubeFaces()
	// reversed faces are healed by orientation propagation
	faces[2] = reversed(faces[2])
	for _, f := range faces {
		if err := addPolyFace(t, b, f); err != nil {
			t.Fatalf("face rejected: %v", err)
		}
	}
	shape, err := b.StopFaceSet()
	if err != nil {
		t.Fatalf("StopFaceSet: %v", err)
	}
	if _, ok := shape.(kernel.Solid); !ok {
		t.Fatalf("shape is %T, want a solid", shape)
	}
	if n := shape.(kernel.Faceted).FaceCount(); n != 6 {
		t.Errorf("FaceCount = %d, want 6", n)
	}
	if v := volume(t, k, shape); math.Abs(v-1) > 1e-5 {
		t.Errorf("volume = %f, want 1", v)
	}
}

func TestBrepBuilderInsideOutCube(t *testing.T) {
	k := testKernel()
	b := k.NewBrepBuilder()
	b.StartFaceSet(kernel.TargetSolid)
	for _, f := range cubeFaces() {
		if err := addPolyFace(t, b, reversed(f)); err != nil {
			t.Fatal(err)
		}
	}
	shape, err := b.StopFaceSet()
	if err != nil {
		t.Fatalf("StopFaceSet: %v", err)
	}
	s := shape.(*sdfxSolid)
	if v := s.poly.volume(); math.Abs(v-1) > 1e-9 {
		t.Errorf("signed volume = %f, want +1 after flipping", v)
	}
	inside := s.s.Evaluate(vec(kernel.V(0.5, 0.5, 0.5)))
	outside := s.s.Evaluate(vec(kernel.V(2, 0.5, 0.5)))
	if inside >= 0 || outside <= 0 {
		t.Errorf("sdf inside = %f, outside = %f", inside, outside)
	}
	if math.Abs(outside-1) > 1e-9 {
		t.Errorf("distance from (2, .5, .5) = %f, want 1", outside)
	}
}

func TestBrepBuilderOpenSet(t *testing.T) {
	k := testKernel()
	faces := cubeFaces()[1:]

	b := k.NewBrepBuilder()
	b.StartFaceSet(kernel.TargetSolid)
	for _, f := range faces {
		if err := addPolyFace(t, b, f); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := b.StopFaceSet(); !errors.Is(err, kernel.ErrNotClosed) {
		t.Fatalf("missing face: error = %v, want ErrNotClosed", err)
	}

	b.StartFaceSet(kernel.TargetOpenShell)
	for _, f := range faces {
		if err := addPolyFace(t, b, f); err != nil {
			t.Fatal(err)
		}
	}
	shape, err := b.StopFaceSet()
	if err != nil {
		t.Fatalf("open shell: %v", err)
	}
	sh, ok := shape.(kernel.Shell)
	if !ok {
		t.Fatalf("shape is %T, want a shell", shape)
	}
	if sh.FaceCount() != 5 || sh.Closed() {
		t.Errorf("shell faces = %d closed = %v, want 5 open", sh.FaceCount(), sh.Closed())
	}
	m, err := k.ToMesh(sh)
	if err != nil || m.TriangleCount() != 10 {
		t.Errorf("shell mesh: %v, %d triangles", err, m.TriangleCount())
	}
}

func TestBrepBuilderDegenerateLoop(t *testing.T) {
	k := testKernel()
	b := k.NewBrepBuilder()
	b.StartFaceSet(kernel.TargetOpenShell)
	if err := addPolyFace(t, b, cubeFaces()[0]); err != nil {
		t.Fatal(err)
	}

	b.StartFace(nil, true)
	b.StartLoop(true)
	b.AddPoint(kernel.V(0, 0, 5))
	b.AddPoint(kernel.V(1, 0, 5))
	b.AddPoint(kernel.V(1, 0, 5.00001)) // welds into the previous vertex
	if err := b.StopLoop(); !errors.Is(err, kernel.ErrDegenerate) {
		t.Fatalf("StopLoop error = %v, want ErrDegenerate", err)
	}
	if err := b.StopFace(); !errors.Is(err, kernel.ErrDegenerate) {
		t.Fatalf("StopFace error = %v, want ErrDegenerate", err)
	}
	if b.FaceCount() != 1 {
		t.Errorf("FaceCount = %d, want 1", b.FaceCount())
	}

	// an aborted face leaves the set unchanged
	b.StartFace(nil, true)
	b.StartLoop(true)
	b.AddPoint(kernel.V(0, 0, 9))
	b.AbortFace()
	shape, err := b.StopFaceSet()
	if err != nil {
		t.Fatal(err)
	}
	if n := shape.(kernel.Shell).FaceCount(); n != 1 {
		t.Errorf("FaceCount = %d, want 1", n)
	}
}

func TestBrepBuilderScopeErrors(t *testing.T) {
	b := testKernel().NewBrepBuilder()
	b.StartFaceSet(kernel.TargetSolid)
	if err := b.StopLoop(); err == nil {
		t.Error("StopLoop outside a face should fail")
	}
	if err := b.StopFace(); err == nil {
		t.Error("StopFace outside a face should fail")
	}
	if _, err := b.StopFaceSet(); !errors.Is(err, kernel.ErrDegenerate) {
		t.Errorf("empty set error = %v, want ErrDegenerate", err)
	}
}

func TestBrepBuilderCurvedEdges(t *testing.T) {
	k := New(WithCurveSegments(32))
	circle, err := k.Circle(kernel.WorldFrame, 1)
	if err != nil {
		t.Fatal(err)
	}
	start := kernel.V(1, 0, 0)
	b := k.NewBrepBuilder()
	b.StartFaceSet(kernel.TargetOpenShell)
	b.StartFace(k.Plane(kernel.WorldFrame), true)
	b.StartLoop(true)
	b.AddEdge(circle, start, start, true)
	if err := b.StopLoop(); err != nil {
		t.Fatal(err)
	}
	if err := b.StopFace(); err != nil {
		t.Fatal(err)
	}
	shape, err := b.StopFaceSet()
	if err != nil {
		t.Fatal(err)
	}
	m, err := k.ToMesh(shape)
	if err != nil {
		t.Fatal(err)
	}
	if a := m.Area(); math.Abs(a-math.Pi)/math.Pi > 0.01 {
		t.Errorf("disc area = %f, want ~pi", a)
	}
}

func TestBrepBuilderShortEdge(t *testing.T) {
	v := kernel.V
	square := []kernel.Vec3{v(0, 0, 0), v(1, 0, 0), v(1, 1, 0), v(0, 1, 0)}
	notched := []kernel.Vec3{v(0, 0, 0), v(1, 0, 0), v(1, 1, 0), v(0.005, 1, 0), v(0, 1, 0)}
	tests := []struct {
		name    string
		opts    []Option
		face    []kernel.Vec3
		wantErr bool
	}{
		{"long edges", []Option{WithShortEdge(0.01)}, square, false},
		{"edge below limit", []Option{WithShortEdge(0.01)}, notched, true},
		{"limit disabled", nil, notched, false},
		{"edge above limit", []Option{WithShortEdge(0.001)}, notched, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(tt.opts...).NewBrepBuilder()
			b.StartFaceSet(kernel.TargetOpenShell)
			err := addPolyFace(t, b, tt.face)
			if tt.wantErr != (err != nil) {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, kernel.ErrDegenerate) {
				t.Errorf("error = %v, want ErrDegenerate", err)
			}
		})
	}

	// a closed curved edge is measured along the curve
	k := New(WithShortEdge(0.01))
	circle, err := k.Circle(kernel.WorldFrame, 1)
	if err != nil {
		t.Fatal(err)
	}
	b := k.NewBrepBuilder()
	b.StartFaceSet(kernel.TargetOpenShell)
	b.StartFace(k.Plane(kernel.WorldFrame), true)
	b.StartLoop(true)
	b.AddEdge(circle, v(1, 0, 0), v(1, 0, 0), true)
	if err := b.StopLoop(); err != nil {
		t.Errorf("circle rejected: %v", err)
	}
}

func TestExtrudeWithHole(t *testing.T) {
	k := testKernel()
	v := kernel.V
	outer := []kernel.Vec3{v(0, 0, 0), v(2, 0, 0), v(2, 2, 0), v(0, 2, 0)}
	hole := []kernel.Vec3{v(0.5, 0.5, 0), v(1.5, 0.5, 0), v(1.5, 1.5, 0), v(0.5, 1.5, 0)}
	tests := []struct {
		name string
		hole []kernel.Vec3
	}{
		{"hole wound like outer", hole},
		{"hole wound against outer", reversed(hole)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := kernel.Profile{Outer: outer, Holes: [][]kernel.Vec3{tt.hole}}
			s := mustSolid(t)(k.Extrude(p, kernel.ZAxis, 1))
			if got := volume(t, k, s); math.Abs(got-3) > 1e-4 {
				t.Errorf("volume = %f, want 3", got)
			}
			// skewed extrusion keeps the volume
			skew := mustSolid(t)(k.Extrude(p, kernel.V(1, 0, 1), math.Sqrt2))
			if got := volume(t, k, skew); math.Abs(got-3) > 1e-4 {
				t.Errorf("skewed volume = %f, want 3", got)
			}
			if _, err := k.Extrude(p, kernel.XAxis, 1); !errors.Is(err, kernel.ErrDegenerate) {
				t.Errorf("in-plane direction error = %v, want ErrDegenerate", err)
			}
		})
	}
}

func TestRevolve(t *testing.T) {
	k := testKernel()
	v := kernel.V
	// rectangle x in [1, 2], y in [0, 1] about the Y axis
	p := kernel.Profile{Outer: []kernel.Vec3{v(1, 0, 0), v(2, 0, 0), v(2, 1, 0), v(1, 1, 0)}}
	s := mustSolid(t)(k.Revolve(p, kernel.Vec3{}, kernel.YAxis, 2*math.Pi))
	want := math.Pi * 3
	if got := volume(t, k, s); math.Abs(got-want)/want > 0.02 {
		t.Errorf("volume = %f, want ~%f", got, want)
	}
	half := mustSolid(t)(k.Revolve(p, kernel.Vec3{}, kernel.YAxis, math.Pi))
	if got := volume(t, k, half); math.Abs(got-want/2)/want > 0.02 {
		t.Errorf("half volume = %f, want ~%f", got, want/2)
	}

	crossing := kernel.Profile{Outer: []kernel.Vec3{v(-1, 0, 0), v(1, 0, 0), v(1, 1, 0), v(-1, 1, 0)}}
	if _, err := k.Revolve(crossing, kernel.Vec3{}, kernel.YAxis, math.Pi); !errors.Is(err, kernel.ErrDegenerate) {
		t.Errorf("crossing profile error = %v, want ErrDegenerate", err)
	}
}
