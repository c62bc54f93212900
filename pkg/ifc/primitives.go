package ifc

import (
	"fmt"

	"github.com/chazu/ifcgeom/pkg/diag"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/record"
	"github.com/chazu/ifcgeom/pkg/store"
)

// Placement is an axis placement in two or three dimensions.
type Placement interface {
	store.Entity
	Frame() kernel.Frame
}

var (
	_ Placement = (*Axis2Placement2D)(nil)
	_ Placement = (*Axis2Placement3D)(nil)
)

// CartesianPoint is a point scaled to working length units. Two-dimensional
// points get Z = 0.
type CartesianPoint struct {
	store.Base
	P kernel.Vec3
}

func (c *CartesianPoint) Load(s *store.Session, r record.Record) error {
	cs, err := record.Floats(r, "Coordinates")
	if err != nil {
		return err
	}
	if len(cs) < 1 || len(cs) > 3 {
		return fmt.Errorf("point has %d coordinates", len(cs))
	}
	var xyz [3]float64
	for i, v := range cs {
		xyz[i] = s.Units().Length(v)
	}
	c.P = kernel.V(xyz[0], xyz[1], xyz[2])
	return nil
}

// Direction is a unit vector. Directions are not scaled.
type Direction struct {
	store.Base
	D kernel.Vec3
}

func (d *Direction) Load(_ *store.Session, r record.Record) error {
	cs, err := record.Floats(r, "DirectionRatios")
	if err != nil {
		return err
	}
	if len(cs) < 2 || len(cs) > 3 {
		return fmt.Errorf("direction has %d ratios", len(cs))
	}
	var xyz [3]float64
	copy(xyz[:], cs)
	v := kernel.V(xyz[0], xyz[1], xyz[2])
	if v.Len() < 1e-12 {
		return fmt.Errorf("zero direction: %w", kernel.ErrDegenerate)
	}
	d.D = v.Unit()
	return nil
}

// Vector is a direction with a scaled magnitude.
type Vector struct {
	store.Base
	Orientation store.Ref[*Direction]
	Magnitude   float64
}

func (v *Vector) Load(s *store.Session, r record.Record) error {
	id, err := record.Reference(r, "Orientation")
	if err != nil {
		return err
	}
	v.Orientation = store.RefTo[*Direction](id)
	m, err := record.Float(r, "Magnitude")
	if err != nil {
		return err
	}
	v.Magnitude = s.Units().Length(m)
	return nil
}

// Dir returns the unit direction, or false if it did not resolve.
func (v *Vector) Dir(s *store.Session) (kernel.Vec3, bool) {
	d, ok := v.Orientation.Get(s)
	if !ok || !d.Valid() {
		return kernel.Vec3{}, false
	}
	return d.D, true
}

// point reads a required point reference.
func point(s *store.Session, r record.Record, name string) (kernel.Vec3, error) {
	id, err := record.Reference(r, name)
	if err != nil {
		return kernel.Vec3{}, err
	}
	p, ok := store.As[*CartesianPoint](s, id)
	if !ok || !p.Valid() {
		return kernel.Vec3{}, fmt.Errorf("%s: point %s unusable", name, id)
	}
	return p.P, nil
}

// points reads a list of point references.
func points(s *store.Session, r record.Record, name string) ([]kernel.Vec3, error) {
	ids, err := record.References(r, name)
	if err != nil {
		return nil, err
	}
	out := make([]kernel.Vec3, 0, len(ids))
	for _, p := range store.Resolve(s, store.RefsTo[*CartesianPoint](ids)) {
		if p.Valid() {
			out = append(out, p.P)
		}
	}
	return out, nil
}

// optionalDirection reads a direction or returns def. A reference that does
// not resolve is reported and defaulted.
func optionalDirection(s *store.Session, r record.Record, name string, def kernel.Vec3) kernel.Vec3 {
	id := record.OptionalReference(r, name)
	if id.IsNull() {
		return def
	}
	d, ok := store.As[*Direction](s, id)
	if !ok || !d.Valid() {
		diag.Warnf(s.Diag(), r.ID(), "%s unusable, using default (%g, %g, %g)", name, def.X, def.Y, def.Z)
		return def
	}
	return d.D
}

// ---------------------------------------------------------------------------
// Placements
// ---------------------------------------------------------------------------

// Axis1Placement is a location and an axis direction.
type Axis1Placement struct {
	store.Base
	Location kernel.Vec3
	Axis     kernel.Vec3
}

func (a *Axis1Placement) Load(s *store.Session, r record.Record) error {
	loc, err := point(s, r, "Location")
	if err != nil {
		return err
	}
	a.Location = loc
	a.Axis = optionalDirection(s, r, "Axis", kernel.ZAxis)
	return nil
}

// Axis2Placement2D is a frame in the XY plane.
type Axis2Placement2D struct {
	store.Base
	frame kernel.Frame
}

func (a *Axis2Placement2D) Load(s *store.Session, r record.Record) error {
	loc, err := point(s, r, "Location")
	if err != nil {
		return err
	}
	ref := optionalDirection(s, r, "RefDirection", kernel.XAxis)
	ref.Z = 0
	f, err := kernel.NewFrame(loc, kernel.ZAxis, ref)
	if err != nil {
		return err
	}
	a.frame = f
	return nil
}

func (a *Axis2Placement2D) Frame() kernel.Frame { return a.frame }

// Axis2Placement3D is a right-handed frame. Axis defaults to Z and
// RefDirection to X.
type Axis2Placement3D struct {
	store.Base
	frame kernel.Frame
}

func (a *Axis2Placement3D) Load(s *store.Session, r record.Record) error {
	loc, err := point(s, r, "Location")
	if err != nil {
		return err
	}
	axis := optionalDirection(s, r, "Axis", kernel.ZAxis)
	ref := optionalDirection(s, r, "RefDirection", kernel.XAxis)
	f, err := kernel.NewFrame(loc, axis, ref)
	if err != nil {
		return err
	}
	a.frame = f
	return nil
}

func (a *Axis2Placement3D) Frame() kernel.Frame { return a.frame }

// placement reads an optional placement reference; a missing one is the
// world frame.
func placement(s *store.Session, r record.Record, name string) kernel.Frame {
	id := record.OptionalReference(r, name)
	if id.IsNull() {
		return kernel.WorldFrame
	}
	p, ok := store.As[Placement](s, id)
	if !ok || !p.Valid() {
		return kernel.WorldFrame
	}
	return p.Frame()
}

// LocalPlacement places a product relative to another placement.
type LocalPlacement struct {
	store.Base
	PlacementRelTo store.Ref[*LocalPlacement]

	relative kernel.Transform
	world    kernel.Transform
	loaded   bool
}

func (l *LocalPlacement) Load(s *store.Session, r record.Record) error {
	l.PlacementRelTo = store.RefTo[*LocalPlacement](record.OptionalReference(r, "PlacementRelTo"))
	l.relative = placement(s, r, "RelativePlacement").Transform()
	l.world = l.relative
	if parent, ok := l.PlacementRelTo.Get(s); ok && parent.Valid() {
		if !parent.loaded {
			diag.Warnf(s.Diag(), l.ID(), "placement %s is its own ancestor, ignoring it", parent.ID())
		} else {
			l.world = parent.world.Mul(l.relative)
		}
	}
	l.loaded = true
	return nil
}

// Transform returns the placement in world coordinates.
func (l *LocalPlacement) Transform() kernel.Transform { return l.world }

// TransformOperator is a cartesian transformation operator, possibly with
// non-uniform scale.
type TransformOperator struct {
	store.Base
	scale   [3]float64
	rotated kernel.Transform
}

func (t *TransformOperator) Load(s *store.Session, r record.Record) error {
	origin, err := point(s, r, "LocalOrigin")
	if err != nil {
		return err
	}
	sc, err := record.OptionalFloat(r, "Scale", 1)
	if err != nil {
		return err
	}
	sy, sz := sc, sc
	if _, ok := r.Attr("Scale2"); ok {
		if sy, err = record.OptionalFloat(r, "Scale2", sc); err != nil {
			return err
		}
		if sz, err = record.OptionalFloat(r, "Scale3", sc); err != nil {
			return err
		}
	}
	if sc <= 0 || sy <= 0 || sz <= 0 {
		return fmt.Errorf("non-positive scale (%g, %g, %g)", sc, sy, sz)
	}
	t.scale = [3]float64{sc, sy, sz}

	z := optionalDirection(s, r, "Axis3", kernel.ZAxis)
	x := optionalDirection(s, r, "Axis1", kernel.XAxis)
	f, err := kernel.NewFrame(origin, z, x)
	if err != nil {
		return err
	}
	t.rotated = f.Transform()
	return nil
}

// Unscaled returns the rotation and translation of the operator.
func (t *TransformOperator) Unscaled() kernel.Transform { return t.rotated }

// Transform returns the full operator, scale included.
func (t *TransformOperator) Transform() kernel.Transform {
	return t.rotated.Mul(kernel.Scaling(t.scale[0], t.scale[1], t.scale[2]))
}
