package sdfx

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/ifcgeom/pkg/kernel"
)

func near(a, b kernel.Vec3) bool { return a.Near(b, 1e-9) }

func TestNURBSQuarterCircle(t *testing.T) {
	k := New()
	w := math.Sqrt2 / 2
	c, err := k.NURBSCurve(2,
		[]kernel.Vec3{kernel.V(1, 0, 0), kernel.V(1, 1, 0), kernel.V(0, 1, 0)},
		[]float64{1, w, 1},
		[]float64{0, 0, 0, 1, 1, 1})
	if err != nil {
		t.Fatalf("NURBSCurve: %v", err)
	}
	for _, s := range []float64{0, 0.25, 0.5, 0.75, 1} {
		if r := c.Point(s).Len(); math.Abs(r-1) > 1e-12 {
			t.Errorf("|P(%g)| = %f, want 1", s, r)
		}
	}
	if !near(c.Point(1), kernel.V(0, 1, 0)) {
		t.Errorf("P(1) = %v", c.Point(1))
	}
	if n, ok := c.Normal(); !ok || !near(n, kernel.ZAxis) {
		t.Errorf("Normal = %v, %v", n, ok)
	}
	p := c.Point(0.3)
	if got := c.Project(p); math.Abs(got-0.3) > 1e-6 {
		t.Errorf("Project = %f, want 0.3", got)
	}
}

func TestNURBSCurveValidation(t *testing.T) {
	k := New()
	pts := []kernel.Vec3{kernel.V(0, 0, 0), kernel.V(1, 0, 0), kernel.V(2, 1, 0)}
	tests := []struct {
		name    string
		degree  int
		ctrl    []kernel.Vec3
		weights []float64
		knots   []float64
	}{
		{"zero degree", 0, pts, nil, []float64{0, 1, 2, 3}},
		{"one control point", 1, pts[:1], nil, []float64{0, 0, 1}},
		{"knot count", 2, pts, nil, []float64{0, 0, 1, 1}},
		{"decreasing knots", 2, pts, nil, []float64{0, 0, 1, 0, 1, 1}},
		{"weight count", 2, pts, []float64{1, 1}, []float64{0, 0, 0, 1, 1, 1}},
		{"negative weight", 2, pts, []float64{1, -1, 1}, []float64{0, 0, 0, 1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := k.NURBSCurve(tt.degree, tt.ctrl, tt.weights, tt.knots)
			if !errors.Is(err, kernel.ErrDegenerate) {
				t.Fatalf("error = %v, want ErrDegenerate", err)
			}
			if c != nil {
				t.Error("invalid curve should be nil")
			}
		})
	}
}

func TestNURBSSurfacePlane(t *testing.T) {
	k := New()
	ctrl := [][]kernel.Vec3{
		{kernel.V(0, 0, 0), kernel.V(0, 1, 0)},
		{kernel.V(1, 0, 0), kernel.V(1, 1, 0)},
	}
	s, err := k.NURBSSurface(1, 1, ctrl, nil, []float64{0, 0, 1, 1}, []float64{0, 0, 1, 1})
	if err != nil {
		t.Fatalf("NURBSSurface: %v", err)
	}
	if got := s.Point(0.25, 0.75); !near(got, kernel.V(0.25, 0.75, 0)) {
		t.Errorf("Point = %v", got)
	}
	if _, err := k.NURBSSurface(1, 1, ctrl[:1], nil, nil, nil); !errors.Is(err, kernel.ErrDegenerate) {
		t.Errorf("single row error = %v", err)
	}
}

func TestTrimmedCircle(t *testing.T) {
	k := New()
	c, _ := k.Circle(kernel.WorldFrame, 2)
	tests := []struct {
		name  string
		sense bool
		mid   kernel.Vec3
	}{
		{"with sense", true, kernel.V(math.Sqrt2, math.Sqrt2, 0)},
		{"against sense", false, kernel.V(-math.Sqrt2, -math.Sqrt2, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arc, err := k.Trim(c, 0, math.Pi/2, tt.sense)
			if err != nil {
				t.Fatal(err)
			}
			if !near(arc.Point(0), kernel.V(2, 0, 0)) || !near(arc.Point(1), kernel.V(0, 2, 0)) {
				t.Errorf("ends = %v, %v", arc.Point(0), arc.Point(1))
			}
			if got := arc.Point(0.5); !got.Near(tt.mid, 1e-9) {
				t.Errorf("mid = %v, want %v", got, tt.mid)
			}
		})
	}
}

func TestPolyline(t *testing.T) {
	k := New()
	pl, err := k.Polyline([]kernel.Vec3{kernel.V(0, 0, 0), kernel.V(1, 0, 0), kernel.V(1, 1, 0)})
	if err != nil {
		t.Fatal(err)
	}
	if got := pl.Project(kernel.V(1.2, 0.5, 0)); math.Abs(got-1.5) > 1e-12 {
		t.Errorf("Project = %f, want 1.5", got)
	}
	// sampling between mid-segment parameters keeps the corner
	pts := kernel.Sample(pl, 0.5, 1.5)
	if len(pts) != 3 || !near(pts[1], kernel.V(1, 0, 0)) {
		t.Errorf("Sample = %v", pts)
	}
	if _, err := k.Polyline(nil); !errors.Is(err, kernel.ErrDegenerate) {
		t.Errorf("empty polyline error = %v", err)
	}
}

func TestOffsetCurve(t *testing.T) {
	k := New()
	base, _ := k.Line(kernel.Vec3{}, kernel.XAxis)
	off, err := k.OffsetCurve(base, 2, kernel.ZAxis)
	if err != nil {
		t.Fatal(err)
	}
	// X × Z = -Y
	if got := off.Point(3); !got.Near(kernel.V(3, -2, 0), 1e-6) {
		t.Errorf("Point = %v, want (3,-2,0)", got)
	}
	if _, err := k.OffsetCurve(base, 1, kernel.Vec3{}); !errors.Is(err, kernel.ErrDegenerate) {
		t.Errorf("zero ref direction error = %v", err)
	}
}

func TestRevolvedSurfaceAxisCheck(t *testing.T) {
	k := New()
	off, _ := k.Polyline([]kernel.Vec3{kernel.V(1, 0, 0), kernel.V(2, 0, 1)})
	s, err := k.RevolvedSurface(off, kernel.Vec3{}, kernel.ZAxis)
	if err != nil {
		t.Fatalf("RevolvedSurface: %v", err)
	}
	if got := s.Point(math.Pi/2, 0); !got.Near(kernel.V(0, 1, 0), 1e-12) {
		t.Errorf("Point = %v, want (0,1,0)", got)
	}

	crossing, _ := k.Polyline([]kernel.Vec3{kernel.V(-1, 0, 0), kernel.V(1, 0, 1)})
	if _, err := k.RevolvedSurface(crossing, kernel.Vec3{}, kernel.ZAxis); !errors.Is(err, kernel.ErrDegenerate) {
		t.Errorf("crossing profile error = %v, want ErrDegenerate", err)
	}
	touching, _ := k.Polyline([]kernel.Vec3{kernel.V(0, 0, 0), kernel.V(1, 0, 1)})
	if _, err := k.RevolvedSurface(touching, kernel.Vec3{}, kernel.ZAxis); err != nil {
		t.Errorf("profile touching the axis should be accepted: %v", err)
	}
}

func TestExtrudedSurfacePlanar(t *testing.T) {
	k := New()
	l, _ := k.Line(kernel.Vec3{}, kernel.XAxis)
	s, err := k.ExtrudedSurface(l, kernel.ZAxis)
	if err != nil {
		t.Fatal(err)
	}
	f, ok := s.Planar()
	if !ok || !near(f.Z.Neg(), kernel.YAxis) {
		t.Errorf("Planar = %v, %v", f, ok)
	}
	c, _ := k.Circle(kernel.WorldFrame, 1)
	cs, _ := k.ExtrudedSurface(c, kernel.ZAxis)
	if _, ok := cs.Planar(); ok {
		t.Error("extruded circle is not planar")
	}
}

func TestExtrudedSurfaceAngleTolerance(t *testing.T) {
	// extrusion 0.005 rad off the profile line
	dir := kernel.V(math.Cos(0.005), math.Sin(0.005), 0)
	tests := []struct {
		name   string
		k      *SdfxKernel
		planar bool
	}{
		{"default tolerance", New(), true},
		{"wide tolerance", New(WithAngleTolerance(0.01)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := tt.k.Line(kernel.Vec3{}, kernel.XAxis)
			s, err := tt.k.ExtrudedSurface(l, dir)
			if err != nil {
				t.Fatal(err)
			}
			if _, ok := s.Planar(); ok != tt.planar {
				t.Errorf("Planar = %v, want %v", ok, tt.planar)
			}
		})
	}
}
