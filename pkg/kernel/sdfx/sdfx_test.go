package sdfx

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/ifcgeom/pkg/kernel"
)

// testKernel keeps marching cubes coarse so implicit solids mesh quickly.
func testKernel() *SdfxKernel {
	return New(WithMeshCells(40), WithHalfSpaceExtent(10))
}

// mustSolid is used as mustSolid(t)(k.Box(...)).
func mustSolid(t *testing.T) func(kernel.Solid, error) kernel.Solid {
	return func(s kernel.Solid, err error) kernel.Solid {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s == nil {
			t.Fatal("nil solid")
		}
		return s
	}
}

func volume(t *testing.T, k *SdfxKernel, s kernel.Shape) float64 {
	t.Helper()
	m, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if m.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	return m.Volume()
}

func TestBox(t *testing.T) {
	k := testKernel()
	box := mustSolid(t)(k.Box(100, 50, 25))
	mesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	// A box should produce exactly 12 triangles (2 per face, 6 faces).
	if triCount := mesh.TriangleCount(); triCount != 12 {
		t.Fatalf("box triangle count: %d (expected 12)", triCount)
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if v := mesh.Volume(); math.Abs(v-125000) > 1 {
		t.Errorf("volume = %f, want 125000", v)
	}
	if f := box.(kernel.Faceted).FaceCount(); f != 6 {
		t.Errorf("FaceCount = %d, want 6", f)
	}
}

func TestBoxDegenerate(t *testing.T) {
	k := testKernel()
	if _, err := k.Box(1, 0, 1); !errors.Is(err, kernel.ErrDegenerate) {
		t.Errorf("zero-width box error = %v, want ErrDegenerate", err)
	}
}

func TestBoundingBox(t *testing.T) {
	k := testKernel()
	box := mustSolid(t)(k.Box(100, 50, 25))
	min, max := box.BoundingBox()

	const tol = 0.01
	expectMin := [3]float64{0, 0, 0}
	expectMax := [3]float64{100, 50, 25}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
}

func TestCylinder(t *testing.T) {
	k := testKernel()
	cyl := mustSolid(t)(k.Cylinder(50, 10))
	min, max := cyl.BoundingBox()
	if math.Abs(min[2]) > 0.01 || math.Abs(max[2]-50) > 0.01 {
		t.Errorf("cylinder z range = [%f, %f], want [0, 50]", min[2], max[2])
	}
	want := math.Pi * 100 * 50
	if v := volume(t, k, cyl); math.Abs(v-want)/want > 0.05 {
		t.Errorf("cylinder volume = %f, want ~%f", v, want)
	}
}

func TestDifference(t *testing.T) {
	k := testKernel()
	a := mustSolid(t)(k.Box(1, 1, 1))
	b := k.Translate(mustSolid(t)(k.Box(1, 1, 1)), kernel.V(0.5, 0.5, 0.5))
	diff := mustSolid(t)(k.Difference(a, b))
	v := volume(t, k, diff)
	if v >= 1 {
		t.Fatalf("difference volume %f should be less than 1", v)
	}
	if math.Abs(v-0.875) > 0.05 {
		t.Errorf("difference volume = %f, want ~0.875", v)
	}
}

func TestDifferenceDisjointKeepsFirst(t *testing.T) {
	k := testKernel()
	a := mustSolid(t)(k.Box(1, 1, 1))
	b := k.Translate(mustSolid(t)(k.Box(1, 1, 1)), kernel.V(5, 5, 5))
	diff := mustSolid(t)(k.Difference(a, b))
	if diff != a {
		t.Error("difference with a disjoint operand should return the first operand")
	}
}

func TestBooleanFailures(t *testing.T) {
	k := testKernel()
	a := mustSolid(t)(k.Box(50, 50, 50))
	// shares the y=0, y=50, z=0 and z=50 planes with a
	flush := k.Translate(mustSolid(t)(k.Box(50, 50, 50)), kernel.V(30, 0, 0))
	far := k.Translate(mustSolid(t)(k.Box(1, 1, 1)), kernel.V(100, 0, 0))

	tests := []struct {
		name string
		op   func() (kernel.Solid, error)
	}{
		{"coincident union", func() (kernel.Solid, error) { return k.Union(a, flush) }},
		{"coincident difference", func() (kernel.Solid, error) { return k.Difference(a, flush) }},
		{"disjoint intersection", func() (kernel.Solid, error) { return k.Intersection(a, far) }},
		{"nil operand", func() (kernel.Solid, error) { return k.Union(a, nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.op()
			if !errors.Is(err, kernel.ErrBooleanFailed) {
				t.Fatalf("error = %v, want ErrBooleanFailed", err)
			}
			if s != nil {
				t.Error("failed Boolean should return nil")
			}
		})
	}

	// shifting the operand off the shared planes succeeds
	shifted := k.Translate(flush, kernel.V(0, 0.01, 0.01))
	if _, err := k.Union(a, shifted); err != nil {
		t.Errorf("shifted union failed: %v", err)
	}
}

func TestUnionAndIntersection(t *testing.T) {
	k := testKernel()
	a := mustSolid(t)(k.Box(1, 1, 1))
	b := k.Translate(mustSolid(t)(k.Box(1, 1, 1)), kernel.V(0.5, 0.25, 0.25))
	u := mustSolid(t)(k.Union(a, b))
	i := mustSolid(t)(k.Intersection(a, b))
	vu, vi := volume(t, k, u), volume(t, k, i)
	if vu <= 1 || vu >= 2 {
		t.Errorf("union volume = %f, want in (1, 2)", vu)
	}
	if vi <= 0 || vi >= 1 {
		t.Errorf("intersection volume = %f, want in (0, 1)", vi)
	}
}

func TestHalfSpaceClip(t *testing.T) {
	k := testKernel()
	a := mustSolid(t)(k.Box(1, 1, 1))
	hs := mustSolid(t)(k.HalfSpace(kernel.V(0, 0, 0.4), kernel.ZAxis))
	min, max := hs.BoundingBox()
	if math.Abs(max[2]-0.4) > 1e-9 || math.Abs(min[2]+9.6) > 1e-9 {
		t.Errorf("half space z range = [%f, %f]", min[2], max[2])
	}
	clipped := mustSolid(t)(k.Difference(a, hs))
	if v := volume(t, k, clipped); math.Abs(v-0.6) > 0.05 {
		t.Errorf("clipped volume = %f, want ~0.6", v)
	}
}

func TestTranslate(t *testing.T) {
	k := testKernel()
	box := mustSolid(t)(k.Box(10, 10, 10))
	translated := k.Translate(box, kernel.V(100, 200, 300))
	min, max := translated.BoundingBox()

	const tol = 1e-9
	expectMin := [3]float64{100, 200, 300}
	expectMax := [3]float64{110, 210, 310}
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
}

func TestTransformRotate(t *testing.T) {
	k := testKernel()
	box := mustSolid(t)(k.Box(100, 10, 10))

	// A long box along X rotated 90 degrees around Z should extend along Y instead.
	rotated := k.Transform(box, kernel.Rotation(kernel.ZAxis, math.Pi/2))
	min, max := rotated.BoundingBox()
	xExtent := max[0] - min[0]
	yExtent := max[1] - min[1]

	const tol = 1e-6
	if math.Abs(xExtent-10) > tol {
		t.Errorf("rotated X extent = %f, expected ~10", xExtent)
	}
	if math.Abs(yExtent-100) > tol {
		t.Errorf("rotated Y extent = %f, expected ~100", yExtent)
	}

	// mirroring keeps the volume positive
	mirrored := k.Transform(box, kernel.Scaling(-1, 1, 1))
	if v := volume(t, k, mirrored); math.Abs(v-10000) > 1 {
		t.Errorf("mirrored volume = %f, want 10000", v)
	}
}

func TestTransformImplicit(t *testing.T) {
	k := testKernel()
	sphere := mustSolid(t)(k.Sphere(1))
	moved := k.Transform(sphere, kernel.Translation(kernel.V(5, 0, 0)))
	min, max := moved.BoundingBox()
	if math.Abs(min[0]-4) > 0.01 || math.Abs(max[0]-6) > 0.01 {
		t.Errorf("moved sphere x range = [%f, %f], want [4, 6]", min[0], max[0])
	}
}

func TestToMeshErrors(t *testing.T) {
	k := testKernel()
	if _, err := k.ToMesh(nil); err == nil {
		t.Error("ToMesh(nil) should fail")
	}
}
