package brep

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/chazu/ifcgeom/pkg/diag"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/kernel/sdfx"
	"github.com/chazu/ifcgeom/pkg/record"
)

// polyFace is a planar face with one outer loop.
type polyFace struct {
	id      record.ID
	pts     []kernel.Vec3
	invalid string
}

func (f *polyFace) ID() record.ID           { return f.id }
func (f *polyFace) Surface() kernel.Surface { return nil }
func (f *polyFace) SameSense() bool         { return true }

func (f *polyFace) ValidForCreation() (bool, string) {
	return f.invalid == "", f.invalid
}

func (f *polyFace) AddBounds(b kernel.BrepBuilder) error {
	return Loop(b, true, func() error {
		for _, p := range f.pts {
			b.AddPoint(p)
		}
		return nil
	})
}

func cube() []Face {
	v := kernel.V
	loops := [][]kernel.Vec3{
		{v(0, 0, 0), v(0, 1, 0), v(1, 1, 0), v(1, 0, 0)},
		{v(0, 0, 1), v(1, 0, 1), v(1, 1, 1), v(0, 1, 1)},
		{v(0, 0, 0), v(1, 0, 0), v(1, 0, 1), v(0, 0, 1)},
		{v(0, 1, 0), v(0, 1, 1), v(1, 1, 1), v(1, 1, 0)},
		{v(0, 0, 0), v(0, 0, 1), v(0, 1, 1), v(0, 1, 0)},
		{v(1, 0, 0), v(1, 1, 0), v(1, 1, 1), v(1, 0, 1)},
	}
	faces := make([]Face, len(loops))
	for i, l := range loops {
		faces[i] = &polyFace{id: record.ID(10 + i), pts: l}
	}
	return faces
}

func newKernel() kernel.Kernel {
	return sdfx.New(sdfx.WithMeshCells(40))
}

func TestAssembleStrict(t *testing.T) {
	var c diag.Collector
	res := Assemble(Request{ID: 1, Faces: cube(), Policies: SolidPolicies, Kernel: newKernel(), Diag: &c})
	if res.Shape == nil {
		t.Fatal("no shape")
	}
	if res.Policy != "strict" {
		t.Errorf("policy = %q, want strict", res.Policy)
	}
	if !kernel.IsSolid(res.Shape) {
		t.Errorf("shape is %T, want a solid", res.Shape)
	}
	if len(c.Diagnostics) != 0 {
		t.Errorf("diagnostics = %v, want none", c.Diagnostics)
	}
}

func TestAssembleInvalidFaceFallsBack(t *testing.T) {
	faces := cube()
	faces[3].(*polyFace).invalid = "loop #99: 2 points"

	var c diag.Collector
	res := Assemble(Request{ID: 1, Faces: faces, Policies: SolidPolicies, Kernel: newKernel(), Diag: &c})
	if res.Shape == nil {
		t.Fatal("lenient pass should produce a shell")
	}
	if res.Policy != "lenient" {
		t.Errorf("policy = %q, want lenient", res.Policy)
	}
	sh, ok := res.Shape.(kernel.Shell)
	if !ok {
		t.Fatalf("shape is %T, want a shell", res.Shape)
	}
	if sh.FaceCount() != 5 || sh.Closed() {
		t.Errorf("faces = %d closed = %v, want 5 open", sh.FaceCount(), sh.Closed())
	}
	if len(c.Diagnostics) != 2 {
		t.Fatalf("diagnostics = %v, want 2", c.Diagnostics)
	}
	if got := c.ForID(1); len(got) != 1 || !strings.Contains(got[0].Message, "degraded") {
		t.Errorf("container diagnostics = %v", got)
	}
	if got := c.ForID(13); len(got) != 1 || !strings.Contains(got[0].Message, "loop #99") {
		t.Errorf("face diagnostics = %v", got)
	}
	if len(res.Dropped) != 1 || res.Dropped[0] != 13 {
		t.Errorf("dropped = %v, want [#13]", res.Dropped)
	}
	if c.Count(diag.SeverityError) != 0 {
		t.Error("a rescued set should not report errors")
	}
}

func TestAssembleBuilderRejectsFace(t *testing.T) {
	faces := cube()
	// collinear points fail in the builder, not in validation
	faces[0].(*polyFace).pts = []kernel.Vec3{kernel.V(0, 0, 0), kernel.V(0.5, 0, 0), kernel.V(1, 0, 0)}

	var c diag.Collector
	res := Assemble(Request{ID: 1, Faces: faces, Policies: SolidPolicies, Kernel: newKernel(), Diag: &c})
	if res.Policy != "lenient" || res.Shape == nil {
		t.Fatalf("policy = %q shape = %v", res.Policy, res.Shape)
	}
	if got := c.ForID(10); len(got) != 1 || !strings.Contains(got[0].Message, "face dropped") {
		t.Errorf("face diagnostics = %v", got)
	}
}

func TestAssembleAllPoliciesFail(t *testing.T) {
	faces := cube()
	for _, f := range faces {
		f.(*polyFace).invalid = "broken"
	}
	var c diag.Collector
	res := Assemble(Request{ID: 1, Faces: faces, Policies: SolidPolicies, Kernel: newKernel(), Diag: &c})
	if res.Shape != nil {
		t.Fatalf("shape = %v, want nil", res.Shape)
	}
	if c.Count(diag.SeverityError) != 1 || len(c.Diagnostics) != 1 {
		t.Errorf("diagnostics = %v, want exactly one error", c.Diagnostics)
	}
}

func TestAssembleSurfacePolicy(t *testing.T) {
	faces := cube()[:2]
	var c diag.Collector
	res := Assemble(Request{ID: 1, Faces: faces, Policies: SurfacePolicies, Kernel: newKernel(), Diag: &c})
	if res.Shape == nil || res.Policy != "surface" {
		t.Fatalf("policy = %q shape = %v", res.Policy, res.Shape)
	}
	if len(c.Diagnostics) != 0 {
		t.Errorf("surface models are open by nature, got %v", c.Diagnostics)
	}
	m, err := newKernel().ToMesh(res.Shape)
	if err != nil {
		t.Fatal(err)
	}
	if a := m.Area(); math.Abs(a-2) > 1e-9 {
		t.Errorf("area = %f, want 2", a)
	}
}

// recorder is a builder that counts scope calls.
type recorder struct {
	kernel.BrepBuilder
	aborts int
	loops  int
}

func (r *recorder) StartLoop(outer bool) { r.loops++; r.BrepBuilder.StartLoop(outer) }
func (r *recorder) AbortFace()           { r.aborts++; r.BrepBuilder.AbortFace() }

type failingFace struct{ polyFace }

func (f *failingFace) AddBounds(b kernel.BrepBuilder) error {
	return Loop(b, true, func() error { return errors.New("edge curve missing") })
}

func TestAddFaceReleasesScopes(t *testing.T) {
	r := &recorder{BrepBuilder: newKernel().NewBrepBuilder()}
	r.StartFaceSet(kernel.TargetOpenShell)
	err := AddFace(r, &failingFace{polyFace{id: 5}})
	if err == nil || !strings.Contains(err.Error(), "edge curve missing") {
		t.Fatalf("error = %v", err)
	}
	if r.aborts != 1 {
		t.Errorf("aborts = %d, want 1", r.aborts)
	}
	if r.FaceCount() != 0 {
		t.Errorf("FaceCount = %d, want 0", r.FaceCount())
	}
	if err := AddFace(r, cube()[0]); err != nil {
		t.Fatalf("builder unusable after abort: %v", err)
	}
	if r.aborts != 1 || r.FaceCount() != 1 {
		t.Errorf("aborts = %d faces = %d", r.aborts, r.FaceCount())
	}
}
