package ifc

import (
	"fmt"

	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/record"
	"github.com/chazu/ifcgeom/pkg/store"
)

// Surface is a surface entity. Geometry is nil when construction failed.
type Surface interface {
	store.Entity
	Geometry() kernel.Surface
}

var (
	_ Surface = (*Plane)(nil)
	_ Surface = (*ExtrusionSurface)(nil)
	_ Surface = (*RevolutionSurface)(nil)
	_ Surface = (*BSplineSurface)(nil)
)

type surfaceBase struct {
	store.Base
	s kernel.Surface
}

func (s *surfaceBase) Geometry() kernel.Surface { return s.s }

// Plane is an unbounded plane.
type Plane struct {
	surfaceBase
	Frame kernel.Frame
}

func (p *Plane) Load(s *store.Session, r record.Record) error {
	p.Frame = placement(s, r, "Position")
	p.s = s.Kernel().Plane(p.Frame)
	return nil
}

// profileCurve places a profile's outline and turns it into a polyline.
func profileCurve(s *store.Session, r record.Record, position kernel.Frame) (kernel.Curve, error) {
	id, err := record.Reference(r, "SweptCurve")
	if err != nil {
		return nil, err
	}
	p, ok := store.As[Profile](s, id)
	if !ok || !p.Valid() {
		return nil, fmt.Errorf("SweptCurve: profile %s unusable", id)
	}
	outline := p.Outline()
	pts := make([]kernel.Vec3, len(outline))
	for i, q := range outline {
		pts[i] = position.ToWorld(q)
	}
	return s.Kernel().Polyline(pts)
}

// ExtrusionSurface sweeps a profile outline along a direction.
type ExtrusionSurface struct{ surfaceBase }

func (e *ExtrusionSurface) Load(s *store.Session, r record.Record) error {
	pos := placement(s, r, "Position")
	c, err := profileCurve(s, r, pos)
	if err != nil {
		return err
	}
	id, err := record.Reference(r, "ExtrudedDirection")
	if err != nil {
		return err
	}
	d, ok := store.As[*Direction](s, id)
	if !ok || !d.Valid() {
		return fmt.Errorf("ExtrudedDirection: direction %s unusable", id)
	}
	depth, err := record.Float(r, "Depth")
	if err != nil {
		return err
	}
	if depth <= 0 {
		return fmt.Errorf("depth %g: %w", depth, kernel.ErrDegenerate)
	}
	dir := pos.Transform().ApplyDir(d.D).Scale(s.Units().Length(depth))
	e.s, err = s.Kernel().ExtrudedSurface(c, dir)
	return err
}

// RevolutionSurface sweeps a profile outline around an axis. Profiles that
// cross the axis are rejected.
type RevolutionSurface struct{ surfaceBase }

func (v *RevolutionSurface) Load(s *store.Session, r record.Record) error {
	pos := placement(s, r, "Position")
	c, err := profileCurve(s, r, pos)
	if err != nil {
		return err
	}
	id, err := record.Reference(r, "AxisPosition")
	if err != nil {
		return err
	}
	axis, ok := store.As[*Axis1Placement](s, id)
	if !ok || !axis.Valid() {
		return fmt.Errorf("AxisPosition: placement %s unusable", id)
	}
	t := pos.Transform()
	origin, dir := t.Apply(axis.Location), t.ApplyDir(axis.Axis).Unit()
	if dir.Len() > 0 && kernel.CrossesAxis(kernel.SampleAll(c), origin, dir, s.Tolerances().Vertex) {
		return fmt.Errorf("SweptCurve crosses the axis of revolution: %w", kernel.ErrDegenerate)
	}
	v.s, err = s.Kernel().RevolvedSurface(c, origin, dir)
	return err
}

// BSplineSurface is a B-spline surface with explicit knots, rational when
// weights are present.
type BSplineSurface struct {
	surfaceBase
	UDegree, VDegree int
}

func (b *BSplineSurface) Load(s *store.Session, r record.Record) error {
	ud, err := record.Integer(r, "UDegree")
	if err != nil {
		return err
	}
	vd, err := record.Integer(r, "VDegree")
	if err != nil {
		return err
	}
	grid, err := record.ReferenceGrid(r, "ControlPointsList")
	if err != nil {
		return err
	}
	if len(grid) == 0 {
		return fmt.Errorf("%w: empty control net", errBSpline)
	}
	ctrl := make([][]kernel.Vec3, len(grid))
	for i, row := range grid {
		for _, p := range store.Resolve(s, store.RefsTo[*CartesianPoint](row)) {
			ctrl[i] = append(ctrl[i], p.P)
		}
		if len(ctrl[i]) != len(grid[0]) {
			return fmt.Errorf("%w: control row %d has %d points, want %d", errBSpline, i, len(ctrl[i]), len(grid[0]))
		}
	}

	knotsOf := func(mName, kName string, deg, n int) ([]float64, error) {
		m, err := record.Integers(r, mName)
		if err != nil {
			return nil, err
		}
		k, err := record.Floats(r, kName)
		if err != nil {
			return nil, err
		}
		return expandKnots(deg, n, m, k)
	}
	uk, err := knotsOf("UMultiplicities", "UKnots", ud, len(ctrl))
	if err != nil {
		return fmt.Errorf("u: %w", err)
	}
	vk, err := knotsOf("VMultiplicities", "VKnots", vd, len(ctrl[0]))
	if err != nil {
		return fmt.Errorf("v: %w", err)
	}

	var weights [][]float64
	if _, ok := r.Attr("WeightsData"); ok {
		if weights, err = record.FloatGrid(r, "WeightsData"); err != nil {
			return err
		}
	}
	b.UDegree, b.VDegree = ud, vd
	b.s, err = s.Kernel().NURBSSurface(ud, vd, ctrl, weights, uk, vk)
	return err
}
