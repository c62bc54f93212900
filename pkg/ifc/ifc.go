// Package ifc holds the concrete entity materializers: geometric primitives,
// topology, profiles, solids and the product/representation chain that
// leads to them. Entities read their records in Load and produce kernel
// geometry on demand through CreateGeometry.
package ifc

import (
	"github.com/chazu/ifcgeom/pkg/csg"
	"github.com/chazu/ifcgeom/pkg/diag"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/record"
	"github.com/chazu/ifcgeom/pkg/resolve"
	"github.com/chazu/ifcgeom/pkg/schema"
	"github.com/chazu/ifcgeom/pkg/store"
)

// GeometryCreator is implemented by every geometry-bearing entity.
//
// lcs places the entity without any mapping scale; scaledLcs is lcs with
// the scale of enclosing mapped items applied and is the transform the
// created geometry ends up in. contextID, when not null, restricts creation
// to shape representations of that representation context.
type GeometryCreator interface {
	CreateGeometry(sc *Scope, lcs, scaledLcs kernel.Transform, contextID record.ID) []kernel.Shape
}

// solidBuilder is implemented by items with a solid in their own
// coordinates, usable as a CSG operand.
type solidBuilder interface {
	store.Entity
	localShape(sc *Scope) kernel.Shape
}

// Scope is the geometry creation context of one session.
type Scope struct {
	Session *store.Session
	Kernel  kernel.Kernel
	CSG     *csg.Evaluator
	// Extent bounds the prism of polygonal bounded half spaces.
	Extent float64

	shapes  map[record.ID]kernel.Shape
	mapping map[record.ID]bool
}

// ScopeOption configures a Scope.
type ScopeOption func(*Scope)

// WithExtent sets the depth used for bounded half-space prisms.
func WithExtent(e float64) ScopeOption {
	return func(sc *Scope) { sc.Extent = e }
}

// NewScope creates a geometry scope over s. The CSG evaluator shifts failed
// operands by the session's configured shift distance.
func NewScope(s *store.Session, opts ...ScopeOption) *Scope {
	sc := &Scope{
		Session: s,
		Kernel:  s.Kernel(),
		Extent:  1000,
		shapes:  make(map[record.ID]kernel.Shape),
		mapping: make(map[record.ID]bool),
	}
	for _, o := range opts {
		o(sc)
	}
	sc.CSG = &csg.Evaluator{
		Kernel:        sc.Kernel,
		Diag:          s.Diag(),
		ShiftDistance: s.Tolerances().ShiftDistance,
		Leaf:          sc.leaf,
	}
	return sc
}

// Diag returns the session's diagnostics sink.
func (sc *Scope) Diag() diag.Sink { return sc.Session.Diag() }

// shape memoizes the local shape of an item, including failures, so an item
// used several times reports its problems once.
func (sc *Scope) shape(e solidBuilder) kernel.Shape {
	if s, ok := sc.shapes[e.ID()]; ok {
		return s
	}
	sc.shapes[e.ID()] = nil
	s := e.localShape(sc)
	sc.shapes[e.ID()] = s
	return s
}

// solid returns the local shape of e if it is a solid.
func (sc *Scope) solid(e solidBuilder) kernel.Solid {
	s := sc.shape(e)
	if s == nil {
		return nil
	}
	solid, ok := s.(kernel.Solid)
	if !ok || !kernel.IsSolid(s) {
		diag.Errorf(sc.Diag(), e.ID(), "%s is not a closed solid and cannot take part in a boolean", e.Type())
		return nil
	}
	return solid
}

func (sc *Scope) leaf(op csg.Operand) kernel.Solid {
	b, ok := op.(solidBuilder)
	if !ok {
		return nil
	}
	return sc.solid(b)
}

// place returns the local shape of e in scaledLcs.
func (sc *Scope) place(e solidBuilder, scaledLcs kernel.Transform) []kernel.Shape {
	if !e.Valid() {
		return nil
	}
	s := sc.shape(e)
	if s == nil {
		return nil
	}
	return []kernel.Shape{sc.Kernel.Transform(s, scaledLcs)}
}

// transformSolid applies t to a solid.
func transformSolid(k kernel.Kernel, s kernel.Solid, t kernel.Transform) kernel.Solid {
	if s == nil {
		return nil
	}
	if out, ok := k.Transform(s, t).(kernel.Solid); ok {
		return out
	}
	return nil
}

// ---------------------------------------------------------------------------
// Registration
// ---------------------------------------------------------------------------

// Register adds every entity of this package to r.
func Register(r *resolve.Registry) {
	r.Add(schema.CartesianPoint, func() store.Loader { return &CartesianPoint{} })
	r.Add(schema.Direction, func() store.Loader { return &Direction{} })
	r.Add(schema.Vector, func() store.Loader { return &Vector{} })
	r.Add(schema.Axis1Placement, func() store.Loader { return &Axis1Placement{} })
	r.Add(schema.Axis2Placement2D, func() store.Loader { return &Axis2Placement2D{} })
	r.Add(schema.Axis2Placement3D, func() store.Loader { return &Axis2Placement3D{} })
	r.Add(schema.CartesianTransformOperator3, func() store.Loader { return &TransformOperator{} })
	r.Add(schema.LocalPlacement, func() store.Loader { return &LocalPlacement{} })

	r.Add(schema.Line, func() store.Loader { return &Line{} })
	r.Add(schema.Circle, func() store.Loader { return &Circle{} })
	r.Add(schema.Ellipse, func() store.Loader { return &Ellipse{} })
	r.Add(schema.Polyline, func() store.Loader { return &Polyline{} })
	r.Add(schema.TrimmedCurve, func() store.Loader { return &TrimmedCurve{} })
	r.Add(schema.BSplineCurveWithKnots, func() store.Loader { return &BSplineCurve{} })
	r.Add(schema.OffsetCurve3D, func() store.Loader { return &OffsetCurve3D{} })

	r.Add(schema.Plane, func() store.Loader { return &Plane{} })
	r.Add(schema.SurfaceOfLinearExtrusion, func() store.Loader { return &ExtrusionSurface{} })
	r.Add(schema.SurfaceOfRevolution, func() store.Loader { return &RevolutionSurface{} })
	r.Add(schema.BSplineSurfaceWithKnots, func() store.Loader { return &BSplineSurface{} })

	r.Add(schema.RectangleProfileDef, func() store.Loader { return &RectangleProfile{} })
	r.Add(schema.CircleProfileDef, func() store.Loader { return &CircleProfile{} })
	r.Add(schema.ArbitraryClosedProfileDef, func() store.Loader { return &ArbitraryProfile{} })
	r.Add(schema.ArbitraryOpenProfileDef, func() store.Loader { return &OpenProfile{} })

	r.Add(schema.VertexPoint, func() store.Loader { return &VertexPoint{} })
	r.Add(schema.Edge, func() store.Loader { return &Edge{} })
	r.Add(schema.OrientedEdge, func() store.Loader { return &OrientedEdge{} })
	r.Add(schema.PolyLoop, func() store.Loader { return &PolyLoop{} })
	r.Add(schema.EdgeLoop, func() store.Loader { return &EdgeLoop{} })
	r.Add(schema.VertexLoop, func() store.Loader { return &VertexLoop{} })
	r.Add(schema.FaceBound, func() store.Loader { return &FaceBound{} })
	r.Add(schema.Face, func() store.Loader { return &Face{} })
	r.Add(schema.ConnectedFaces, func() store.Loader { return &Shell{} })

	r.Add(schema.FacetedBrep, func() store.Loader { return &Brep{} })
	r.Add(schema.AdvancedBrep, func() store.Loader { return &Brep{} })
	r.Add(schema.CsgSolid, func() store.Loader { return &CsgSolid{} })
	r.Add(schema.BooleanResult, func() store.Loader { return &BooleanResult{} })
	r.Add(schema.Block, func() store.Loader { return &Block{} })
	r.Add(schema.RightCircularCylinder, func() store.Loader { return &Cylinder{} })
	r.Add(schema.Sphere, func() store.Loader { return &Sphere{} })
	r.Add(schema.HalfSpaceSolid, func() store.Loader { return &HalfSpace{} })
	r.Add(schema.PolygonalBoundedHalfSpace, func() store.Loader { return &BoundedHalfSpace{} })
	r.Add(schema.ExtrudedAreaSolid, func() store.Loader { return &ExtrudedAreaSolid{} })
	r.Add(schema.RevolvedAreaSolid, func() store.Loader { return &RevolvedAreaSolid{} })
	r.Add(schema.ShellBasedSurfaceModel, func() store.Loader { return &SurfaceModel{} })
	r.Add(schema.FaceBasedSurfaceModel, func() store.Loader { return &SurfaceModel{} })
	r.Add(schema.MappedItem, func() store.Loader { return &MappedItem{} })

	r.Add(schema.RepresentationMap, func() store.Loader { return &RepresentationMap{} })
	r.Add(schema.ShapeRepresentation, func() store.Loader { return &ShapeRepresentation{} })
	r.Add(schema.ProductDefinitionShape, func() store.Loader { return &ProductShape{} })
	r.Add(schema.Product, func() store.Loader { return &Product{} })
}

// NewRegistry returns a registry with every entity of this package.
func NewRegistry() *resolve.Registry {
	r := resolve.NewRegistry()
	Register(r)
	return r
}
