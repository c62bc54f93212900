package ifc

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/chazu/ifcgeom/pkg/diag"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/record"
	"github.com/chazu/ifcgeom/pkg/store"
)

// Curve is a curve entity. Geometry is nil when construction failed; the
// failure was reported when the curve was loaded.
type Curve interface {
	store.Entity
	Geometry() kernel.Curve
}

var (
	_ Curve = (*Line)(nil)
	_ Curve = (*Circle)(nil)
	_ Curve = (*Ellipse)(nil)
	_ Curve = (*Polyline)(nil)
	_ Curve = (*TrimmedCurve)(nil)
	_ Curve = (*BSplineCurve)(nil)
	_ Curve = (*OffsetCurve3D)(nil)
)

type curveBase struct {
	store.Base
	c kernel.Curve
}

func (c *curveBase) Geometry() kernel.Curve { return c.c }

// curve reads a required curve reference with usable geometry.
func curve(s *store.Session, r record.Record, name string) (kernel.Curve, error) {
	id, err := record.Reference(r, name)
	if err != nil {
		return nil, err
	}
	c, ok := store.As[Curve](s, id)
	if !ok || c.Geometry() == nil {
		return nil, fmt.Errorf("%s: curve %s unusable", name, id)
	}
	return c.Geometry(), nil
}

// Line is an unbounded line. Magnitude is the length of one parameter
// unit.
type Line struct {
	curveBase
	Magnitude float64
}

func (l *Line) Load(s *store.Session, r record.Record) error {
	p, err := point(s, r, "Pnt")
	if err != nil {
		return err
	}
	id, err := record.Reference(r, "Dir")
	if err != nil {
		return err
	}
	v, ok := store.As[*Vector](s, id)
	if !ok {
		return fmt.Errorf("Dir: vector %s unusable", id)
	}
	d, ok := v.Dir(s)
	if !ok {
		return fmt.Errorf("Dir: vector %s has no direction", id)
	}
	l.Magnitude = v.Magnitude
	l.c, err = s.Kernel().Line(p, d)
	return err
}

// Circle is a full circle in its placement's XY plane.
type Circle struct {
	curveBase
	Radius float64
}

func (c *Circle) Load(s *store.Session, r record.Record) error {
	rad, err := record.Float(r, "Radius")
	if err != nil {
		return err
	}
	if rad <= 0 {
		return fmt.Errorf("radius %g: %w", rad, kernel.ErrDegenerate)
	}
	c.Radius = s.Units().Length(rad)
	c.c, err = s.Kernel().Circle(placement(s, r, "Position"), c.Radius)
	return err
}

// Ellipse is a full ellipse in its placement's XY plane.
type Ellipse struct{ curveBase }

func (e *Ellipse) Load(s *store.Session, r record.Record) error {
	a, err := record.Float(r, "SemiAxis1")
	if err != nil {
		return err
	}
	b, err := record.Float(r, "SemiAxis2")
	if err != nil {
		return err
	}
	if a <= 0 || b <= 0 {
		return fmt.Errorf("semi axes %g, %g: %w", a, b, kernel.ErrDegenerate)
	}
	e.c, err = s.Kernel().Ellipse(placement(s, r, "Position"), s.Units().Length(a), s.Units().Length(b))
	return err
}

// Polyline is a chain of straight segments.
type Polyline struct {
	curveBase
	Points []kernel.Vec3
}

func (p *Polyline) Load(s *store.Session, r record.Record) error {
	pts, err := points(s, r, "Points")
	if err != nil {
		return err
	}
	if len(pts) < 2 {
		return fmt.Errorf("polyline has %d points: %w", len(pts), kernel.ErrDegenerate)
	}
	p.Points = pts
	p.c, err = s.Kernel().Polyline(pts)
	return err
}

// ---------------------------------------------------------------------------
// B-spline curves
// ---------------------------------------------------------------------------

// BSplineCurve is a B-spline with explicit knots, rational when the record
// carries weights.
type BSplineCurve struct {
	curveBase
	Degree  int
	Control []kernel.Vec3
	Weights []float64
	Knots   []float64 // expanded by multiplicity
}

func (b *BSplineCurve) Load(s *store.Session, r record.Record) error {
	deg, err := record.Integer(r, "Degree")
	if err != nil {
		return err
	}
	ctrl, err := points(s, r, "ControlPointsList")
	if err != nil {
		return err
	}
	mults, err := record.Integers(r, "KnotMultiplicities")
	if err != nil {
		return err
	}
	knots, err := record.Floats(r, "Knots")
	if err != nil {
		return err
	}
	expanded, err := expandKnots(deg, len(ctrl), mults, knots)
	if err != nil {
		return err
	}
	if _, ok := r.Attr("WeightsData"); ok {
		w, err := record.Floats(r, "WeightsData")
		if err != nil {
			return err
		}
		if len(w) != len(ctrl) {
			return fmt.Errorf("%d weights for %d control points", len(w), len(ctrl))
		}
		b.Weights = w
	}
	b.Degree, b.Control, b.Knots = deg, ctrl, expanded
	b.c, err = s.Kernel().NURBSCurve(deg, ctrl, b.Weights, expanded)
	return err
}

// errBSpline reports inconsistent B-spline definitions.
var errBSpline = errors.New("invalid b-spline")

// expandKnots validates a knot definition and repeats each knot by its
// multiplicity.
func expandKnots(degree, points int, mults []int, knots []float64) ([]float64, error) {
	if degree <= 0 {
		return nil, fmt.Errorf("%w: degree %d", errBSpline, degree)
	}
	if points <= 1 {
		return nil, fmt.Errorf("%w: %d control points", errBSpline, points)
	}
	if len(mults) != len(knots) {
		return nil, fmt.Errorf("%w: %d multiplicities for %d knots", errBSpline, len(mults), len(knots))
	}
	var out []float64
	for i, m := range mults {
		if m <= 0 {
			return nil, fmt.Errorf("%w: multiplicity %d", errBSpline, m)
		}
		for j := 0; j < m; j++ {
			out = append(out, knots[i])
		}
	}
	if want := points + degree + 1; len(out) != want {
		return nil, fmt.Errorf("%w: %d knots, want %d", errBSpline, len(out), want)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Derived curves
// ---------------------------------------------------------------------------

// OffsetCurve3D offsets a planar base curve within its plane.
type OffsetCurve3D struct {
	curveBase
	Distance     float64
	RefDirection kernel.Vec3
}

func (o *OffsetCurve3D) Load(s *store.Session, r record.Record) error {
	base, err := curve(s, r, "BasisCurve")
	if err != nil {
		return err
	}
	d, err := record.Float(r, "Distance")
	if err != nil {
		return err
	}
	o.Distance = s.Units().Length(d)

	ref, explicit := kernel.Vec3{}, false
	if id := record.OptionalReference(r, "RefDirection"); !id.IsNull() {
		if dir, ok := store.As[*Direction](s, id); ok && dir.Valid() {
			ref, explicit = dir.D, true
		}
	}
	if !explicit {
		n, ok := base.Normal()
		if !ok {
			// a straight base has no plane of its own
			n = kernel.ZAxis
			t0, t1 := base.Domain()
			if tan := base.Point(t1).Sub(base.Point(t0)); tan.Parallel(n, s.Tolerances().Angle) {
				n = kernel.XAxis
			}
			diag.Warnf(s.Diag(), o.ID(), "no RefDirection and the base curve is not planar, using (%g, %g, %g)", n.X, n.Y, n.Z)
		}
		ref = n
	}
	o.RefDirection = ref
	o.c, err = s.Kernel().OffsetCurve(base, o.Distance, ref)
	return err
}

// TrimmedCurve bounds a base curve by parameters or points.
type TrimmedCurve struct {
	curveBase
	SenseAgreement bool
}

func (t *TrimmedCurve) Load(s *store.Session, r record.Record) error {
	id, err := record.Reference(r, "BasisCurve")
	if err != nil {
		return err
	}
	basis, ok := store.As[Curve](s, id)
	if !ok || basis.Geometry() == nil {
		return fmt.Errorf("BasisCurve: curve %s unusable", id)
	}
	base := basis.Geometry()
	t.SenseAgreement = record.OptionalLogical(r, "SenseAgreement", true)
	master := strings.ToUpper(record.OptionalText(r, "MasterRepresentation"))

	t0, err := trimParameter(s, r, "Trim1", basis, master)
	if err != nil {
		return err
	}
	t1, err := trimParameter(s, r, "Trim2", basis, master)
	if err != nil {
		return err
	}
	t.c, err = s.Kernel().Trim(base, t0, t1, t.SenseAgreement)
	return err
}

// trimParameter reads a trimming select. A cartesian point is projected
// onto the basis; a parameter is converted to the basis' parameter space.
// The master representation picks one when both are given.
func trimParameter(s *store.Session, r record.Record, name string, basis Curve, master string) (float64, error) {
	v, err := record.Raw(r, name)
	if err != nil {
		return 0, err
	}
	items, err := v.Items()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	var (
		param    float64
		hasParam bool
		pt       kernel.Vec3
		hasPoint bool
	)
	for _, it := range items {
		switch it.Kind() {
		case record.KindRef:
			ref, _ := it.Ref()
			if p, ok := store.As[*CartesianPoint](s, ref); ok && p.Valid() {
				pt, hasPoint = p.P, true
			}
		case record.KindReal, record.KindInt:
			param, _ = it.Float()
			hasParam = true
		}
	}
	usePoint := hasPoint && (master != "PARAMETER" || !hasParam)
	switch {
	case usePoint:
		return basis.Geometry().Project(pt), nil
	case hasParam:
		return curveParameter(s, basis, param), nil
	}
	return 0, fmt.Errorf("%s: no usable trimming value", name)
}

// curveParameter converts a raw trimming parameter: conics use plane
// angles, lines count multiples of their direction vector, others are
// unitless.
func curveParameter(s *store.Session, c Curve, p float64) float64 {
	switch c := c.(type) {
	case *Circle, *Ellipse:
		a := s.Units().Angle(p)
		return math.Mod(math.Mod(a, 2*math.Pi)+2*math.Pi, 2*math.Pi)
	case *Line:
		return p * c.Magnitude
	}
	return p
}
