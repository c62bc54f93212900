package ifc

import (
	"fmt"

	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/record"
	"github.com/chazu/ifcgeom/pkg/store"
)

// Profile is a planar cross section in its own XY plane.
type Profile interface {
	store.Entity
	// Outline is the outer boundary. Closed outlines do not repeat their
	// first point.
	Outline() []kernel.Vec3
	// Area returns the bounded region, or false for open profiles.
	Area() (kernel.Profile, bool)
}

var (
	_ Profile = (*RectangleProfile)(nil)
	_ Profile = (*CircleProfile)(nil)
	_ Profile = (*ArbitraryProfile)(nil)
	_ Profile = (*OpenProfile)(nil)
)

type areaProfile struct {
	store.Base
	area kernel.Profile
}

func (p *areaProfile) Outline() []kernel.Vec3       { return p.area.Outer }
func (p *areaProfile) Area() (kernel.Profile, bool) { return p.area, true }

func placed(f kernel.Frame, pts []kernel.Vec3) []kernel.Vec3 {
	out := make([]kernel.Vec3, len(pts))
	for i, p := range pts {
		out[i] = f.ToWorld(p)
	}
	return out
}

// closedOutline samples a closed curve without its repeated end point.
func closedOutline(c kernel.Curve, tol float64) []kernel.Vec3 {
	pts := kernel.SampleAll(c)
	for len(pts) > 1 && pts[0].Near(pts[len(pts)-1], tol) {
		pts = pts[:len(pts)-1]
	}
	return pts
}

// RectangleProfile is a rectangle centred on its position.
type RectangleProfile struct {
	areaProfile
	XDim, YDim float64
}

func (p *RectangleProfile) Load(s *store.Session, r record.Record) error {
	x, err := record.Float(r, "XDim")
	if err != nil {
		return err
	}
	y, err := record.Float(r, "YDim")
	if err != nil {
		return err
	}
	if x <= 0 || y <= 0 {
		return fmt.Errorf("dimensions %g x %g: %w", x, y, kernel.ErrDegenerate)
	}
	p.XDim, p.YDim = s.Units().Length(x), s.Units().Length(y)
	hx, hy := p.XDim/2, p.YDim/2
	p.area.Outer = placed(placement(s, r, "Position"), []kernel.Vec3{
		kernel.V(-hx, -hy, 0), kernel.V(hx, -hy, 0), kernel.V(hx, hy, 0), kernel.V(-hx, hy, 0),
	})
	return nil
}

// CircleProfile is a disc centred on its position.
type CircleProfile struct {
	areaProfile
	Radius float64
}

func (p *CircleProfile) Load(s *store.Session, r record.Record) error {
	rad, err := record.Float(r, "Radius")
	if err != nil {
		return err
	}
	if rad <= 0 {
		return fmt.Errorf("radius %g: %w", rad, kernel.ErrDegenerate)
	}
	p.Radius = s.Units().Length(rad)
	c, err := s.Kernel().Circle(placement(s, r, "Position"), p.Radius)
	if err != nil {
		return err
	}
	p.area.Outer = closedOutline(c, s.Tolerances().Vertex)
	return nil
}

// ArbitraryProfile is bounded by an arbitrary closed curve, with optional
// inner curves cutting voids.
type ArbitraryProfile struct {
	areaProfile
}

func (p *ArbitraryProfile) Load(s *store.Session, r record.Record) error {
	outer, err := curve(s, r, "OuterCurve")
	if err != nil {
		return err
	}
	tol := s.Tolerances().Vertex
	p.area.Outer = closedOutline(outer, tol)
	if len(p.area.Outer) < 3 {
		return fmt.Errorf("outer curve has %d points: %w", len(p.area.Outer), kernel.ErrDegenerate)
	}
	ids, err := record.OptionalReferences(r, "InnerCurves")
	if err != nil {
		return err
	}
	for _, c := range store.Resolve(s, store.RefsTo[Curve](ids)) {
		if c.Geometry() == nil {
			continue
		}
		if hole := closedOutline(c.Geometry(), tol); len(hole) >= 3 {
			p.area.Holes = append(p.area.Holes, hole)
		}
	}
	return nil
}

// OpenProfile is a centre line; it bounds no area.
type OpenProfile struct {
	store.Base
	outline []kernel.Vec3
}

func (p *OpenProfile) Load(s *store.Session, r record.Record) error {
	c, err := curve(s, r, "Curve")
	if err != nil {
		return err
	}
	p.outline = kernel.SampleAll(c)
	return nil
}

func (p *OpenProfile) Outline() []kernel.Vec3       { return p.outline }
func (p *OpenProfile) Area() (kernel.Profile, bool) { return kernel.Profile{}, false }
