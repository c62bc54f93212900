package ifc

import (
	"fmt"

	"github.com/chazu/ifcgeom/pkg/brep"
	"github.com/chazu/ifcgeom/pkg/csg"
	"github.com/chazu/ifcgeom/pkg/diag"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/record"
	"github.com/chazu/ifcgeom/pkg/schema"
	"github.com/chazu/ifcgeom/pkg/store"
)

// Compile-time interface checks.
var (
	_ csg.Operand = (*Brep)(nil)
	_ csg.Operand = (*CsgSolid)(nil)
	_ csg.Operand = (*BooleanResult)(nil)
	_ csg.Operand = (*Block)(nil)
	_ csg.Operand = (*Cylinder)(nil)
	_ csg.Operand = (*Sphere)(nil)
	_ csg.Operand = (*HalfSpace)(nil)
	_ csg.Operand = (*BoundedHalfSpace)(nil)
	_ csg.Operand = (*ExtrudedAreaSolid)(nil)
	_ csg.Operand = (*RevolvedAreaSolid)(nil)

	_ GeometryCreator = (*Brep)(nil)
	_ GeometryCreator = (*BooleanResult)(nil)
	_ GeometryCreator = (*CsgSolid)(nil)
	_ GeometryCreator = (*Block)(nil)
	_ GeometryCreator = (*ExtrudedAreaSolid)(nil)
	_ GeometryCreator = (*SurfaceModel)(nil)
	_ GeometryCreator = (*MappedItem)(nil)
)

// item is the base of solid items. Items have no preferred shift direction
// unless they override SuggestedShift.
type item struct {
	store.Base
}

func (item) SuggestedShift() (kernel.Vec3, bool) { return kernel.Vec3{}, false }

// ---------------------------------------------------------------------------
// B-rep solids and surface models
// ---------------------------------------------------------------------------

// Brep is a manifold solid B-rep, optionally with inner void shells.
type Brep struct {
	item
	Outer store.Ref[*Shell]
	Voids []store.Ref[*Shell]
}

func (b *Brep) Load(s *store.Session, r record.Record) error {
	id, err := record.Reference(r, "Outer")
	if err != nil {
		return err
	}
	b.Outer = store.RefTo[*Shell](id)
	if r.IsSubtypeOf(schema.FacetedBrepWithVoids) || r.IsSubtypeOf(schema.AdvancedBrepWithVoids) {
		ids, err := record.OptionalReferences(r, "Voids")
		if err != nil {
			return err
		}
		b.Voids = store.RefsTo[*Shell](ids)
	}
	// solids do not tolerate invalid faces in their first pass
	for _, sh := range store.Resolve(s, append([]store.Ref[*Shell]{b.Outer}, b.Voids...)) {
		sh.AllowInvalidFaces = false
	}
	return nil
}

func (b *Brep) localShape(sc *Scope) kernel.Shape {
	outer, ok := b.Outer.Get(sc.Session)
	if !ok || !outer.Valid() {
		return nil
	}
	shape := sc.shape(outer)
	if !kernel.IsSolid(shape) || len(b.Voids) == 0 {
		return shape
	}
	solid := shape.(kernel.Solid)
	for _, void := range store.Resolve(sc.Session, b.Voids) {
		res := void.assemble(sc, []brep.Policy{brep.Strict})
		v, ok := res.Shape.(kernel.Solid)
		if !ok || !kernel.IsSolid(v) {
			diag.Warnf(sc.Diag(), b.ID(), "void %s is not closed, ignoring it", void.ID())
			continue
		}
		cut, err := sc.Kernel.Difference(solid, v)
		if err != nil {
			diag.Warnf(sc.Diag(), b.ID(), "void %s could not be removed: %v", void.ID(), err)
			continue
		}
		solid = cut
	}
	return solid
}

func (b *Brep) CreateGeometry(sc *Scope, _, scaledLcs kernel.Transform, _ record.ID) []kernel.Shape {
	return sc.place(b, scaledLcs)
}

// localShape lets shells share the scope memo. The shell's policy decides
// between solid and surface assembly.
func (sh *Shell) localShape(sc *Scope) kernel.Shape {
	return sh.assemble(sc, sh.Policies()).Shape
}

// SurfaceModel is a shell- or face-based surface model. Its shells tolerate
// invalid faces.
type SurfaceModel struct {
	store.Base
	Shells []store.Ref[*Shell]
}

func (m *SurfaceModel) Load(s *store.Session, r record.Record) error {
	name := "SbsmBoundary"
	if r.IsSubtypeOf(schema.FaceBasedSurfaceModel) {
		name = "FbsmFaces"
	}
	ids, err := record.References(r, name)
	if err != nil {
		return err
	}
	m.Shells = store.RefsTo[*Shell](ids)
	for _, sh := range store.Resolve(s, m.Shells) {
		sh.AllowInvalidFaces = true
	}
	return nil
}

func (m *SurfaceModel) CreateGeometry(sc *Scope, _, scaledLcs kernel.Transform, _ record.ID) []kernel.Shape {
	var out []kernel.Shape
	for _, sh := range store.Resolve(sc.Session, m.Shells) {
		out = append(out, sc.place(sh, scaledLcs)...)
	}
	return out
}

// ---------------------------------------------------------------------------
// Boolean trees
// ---------------------------------------------------------------------------

// BooleanResult combines two operands. Clipping results are differences
// whose second operand is a half space.
type BooleanResult struct {
	item
	Operator      csg.Op
	FirstOperand  store.Ref[csg.Operand]
	SecondOperand store.Ref[csg.Operand]
}

func (b *BooleanResult) Load(_ *store.Session, r record.Record) error {
	op, err := record.Text(r, "Operator")
	if err != nil {
		return err
	}
	if b.Operator, err = csg.ParseOp(op); err != nil {
		return err
	}
	first, err := record.Reference(r, "FirstOperand")
	if err != nil {
		return err
	}
	second, err := record.Reference(r, "SecondOperand")
	if err != nil {
		return err
	}
	b.FirstOperand = store.RefTo[csg.Operand](first)
	b.SecondOperand = store.RefTo[csg.Operand](second)
	return nil
}

func (b *BooleanResult) localShape(sc *Scope) kernel.Shape {
	if s := sc.CSG.Evaluate(&booleanNode{b: b, sc: sc}); s != nil {
		return s
	}
	return nil
}

func (b *BooleanResult) CreateGeometry(sc *Scope, _, scaledLcs kernel.Transform, _ record.ID) []kernel.Shape {
	return sc.place(b, scaledLcs)
}

// operand resolves a Boolean operand for evaluation.
func (sc *Scope) operand(r store.Ref[csg.Operand]) csg.Operand {
	op, ok := r.Get(sc.Session)
	if !ok {
		return nil
	}
	if e, ok := op.(store.Entity); ok && !e.Valid() {
		return nil
	}
	if b, ok := op.(*BooleanResult); ok {
		return &booleanNode{b: b, sc: sc}
	}
	return op
}

// booleanNode is a Boolean result bound to a scope.
type booleanNode struct {
	b  *BooleanResult
	sc *Scope
}

var _ csg.Boolean = (*booleanNode)(nil)

func (n *booleanNode) ID() record.ID    { return n.b.ID() }
func (n *booleanNode) Operator() csg.Op { return n.b.Operator }

func (n *booleanNode) Operands() (csg.Operand, csg.Operand) {
	return n.sc.operand(n.b.FirstOperand), n.sc.operand(n.b.SecondOperand)
}

// SuggestedShift follows the first operand of the subtree.
func (n *booleanNode) SuggestedShift() (kernel.Vec3, bool) {
	if first := n.sc.operand(n.b.FirstOperand); first != nil {
		return first.SuggestedShift()
	}
	return kernel.Vec3{}, false
}

// CsgSolid wraps a Boolean tree or a single primitive.
type CsgSolid struct {
	item
	TreeRootExpression store.Ref[csg.Operand]
}

func (c *CsgSolid) Load(_ *store.Session, r record.Record) error {
	id, err := record.Reference(r, "TreeRootExpression")
	if err != nil {
		return err
	}
	c.TreeRootExpression = store.RefTo[csg.Operand](id)
	return nil
}

func (c *CsgSolid) localShape(sc *Scope) kernel.Shape {
	if s := sc.CSG.Evaluate(sc.operand(c.TreeRootExpression)); s != nil {
		return s
	}
	return nil
}

func (c *CsgSolid) CreateGeometry(sc *Scope, _, scaledLcs kernel.Transform, _ record.ID) []kernel.Shape {
	return sc.place(c, scaledLcs)
}

// ---------------------------------------------------------------------------
// CSG primitives
// ---------------------------------------------------------------------------

// positive reads a required length that must be greater than zero.
func positive(s *store.Session, r record.Record, name string) (float64, error) {
	v, err := record.Float(r, name)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s %g: %w", name, v, kernel.ErrDegenerate)
	}
	return s.Units().Length(v), nil
}

// primitive is a CSG primitive placed by a frame.
type primitive struct {
	item
	Position kernel.Frame
}

// SuggestedShift moves primitives along their local Z axis.
func (p *primitive) SuggestedShift() (kernel.Vec3, bool) { return p.Position.Z, true }

func (p *primitive) finish(sc *Scope, s kernel.Solid, err error) kernel.Shape {
	if err != nil {
		diag.Errorf(sc.Diag(), p.ID(), "%s could not be built: %v", p.Type(), err)
		return nil
	}
	if s := transformSolid(sc.Kernel, s, p.Position.Transform()); s != nil {
		return s
	}
	return nil
}

// Block is a box with one corner at its position.
type Block struct {
	primitive
	XLength, YLength, ZLength float64
}

func (b *Block) Load(s *store.Session, r record.Record) error {
	var err error
	b.Position = placement(s, r, "Position")
	if b.XLength, err = positive(s, r, "XLength"); err != nil {
		return err
	}
	if b.YLength, err = positive(s, r, "YLength"); err != nil {
		return err
	}
	b.ZLength, err = positive(s, r, "ZLength")
	return err
}

func (b *Block) localShape(sc *Scope) kernel.Shape {
	s, err := sc.Kernel.Box(b.XLength, b.YLength, b.ZLength)
	return b.finish(sc, s, err)
}

func (b *Block) CreateGeometry(sc *Scope, _, scaledLcs kernel.Transform, _ record.ID) []kernel.Shape {
	return sc.place(b, scaledLcs)
}

// Cylinder is a right circular cylinder standing on its position.
type Cylinder struct {
	primitive
	Height, Radius float64
}

func (c *Cylinder) Load(s *store.Session, r record.Record) error {
	var err error
	c.Position = placement(s, r, "Position")
	if c.Height, err = positive(s, r, "Height"); err != nil {
		return err
	}
	c.Radius, err = positive(s, r, "Radius")
	return err
}

func (c *Cylinder) localShape(sc *Scope) kernel.Shape {
	s, err := sc.Kernel.Cylinder(c.Height, c.Radius)
	return c.finish(sc, s, err)
}

func (c *Cylinder) CreateGeometry(sc *Scope, _, scaledLcs kernel.Transform, _ record.ID) []kernel.Shape {
	return sc.place(c, scaledLcs)
}

// Sphere is centred on its position.
type Sphere struct {
	primitive
	Radius float64
}

func (p *Sphere) Load(s *store.Session, r record.Record) error {
	var err error
	p.Position = placement(s, r, "Position")
	p.Radius, err = positive(s, r, "Radius")
	return err
}

// SuggestedShift is undefined for a sphere.
func (p *Sphere) SuggestedShift() (kernel.Vec3, bool) { return kernel.Vec3{}, false }

func (p *Sphere) localShape(sc *Scope) kernel.Shape {
	s, err := sc.Kernel.Sphere(p.Radius)
	return p.finish(sc, s, err)
}

func (p *Sphere) CreateGeometry(sc *Scope, _, scaledLcs kernel.Transform, _ record.ID) []kernel.Shape {
	return sc.place(p, scaledLcs)
}

// ---------------------------------------------------------------------------
// Half spaces
// ---------------------------------------------------------------------------

// HalfSpace is the region on one side of a plane. With AgreementFlag set
// the plane normal points away from the material.
type HalfSpace struct {
	item
	Plane         kernel.Frame
	AgreementFlag bool
}

func (h *HalfSpace) Load(s *store.Session, r record.Record) error {
	id, err := record.Reference(r, "BaseSurface")
	if err != nil {
		return err
	}
	surf, ok := store.As[Surface](s, id)
	if !ok || surf.Geometry() == nil {
		return fmt.Errorf("BaseSurface: surface %s unusable", id)
	}
	f, ok := surf.Geometry().Planar()
	if !ok {
		return fmt.Errorf("BaseSurface: %s is not planar", surf.Type())
	}
	h.Plane = f
	h.AgreementFlag, err = record.Logical(r, "AgreementFlag")
	return err
}

// Normal returns the outward normal of the material.
func (h *HalfSpace) Normal() kernel.Vec3 {
	if h.AgreementFlag {
		return h.Plane.Z
	}
	return h.Plane.Z.Neg()
}

// SuggestedShift moves the half space along its outward normal.
func (h *HalfSpace) SuggestedShift() (kernel.Vec3, bool) { return h.Normal(), true }

func (h *HalfSpace) localShape(sc *Scope) kernel.Shape {
	s, err := sc.Kernel.HalfSpace(h.Plane.Origin, h.Normal())
	if err != nil {
		diag.Errorf(sc.Diag(), h.ID(), "half space could not be built: %v", err)
		return nil
	}
	return s
}

// BoundedHalfSpace is a half space cut down to a prism over a polygon.
type BoundedHalfSpace struct {
	HalfSpace
	Position kernel.Frame
	Boundary []kernel.Vec3
}

func (h *BoundedHalfSpace) Load(s *store.Session, r record.Record) error {
	if err := h.HalfSpace.Load(s, r); err != nil {
		return err
	}
	h.Position = placement(s, r, "Position")
	c, err := curve(s, r, "PolygonalBoundary")
	if err != nil {
		return err
	}
	h.Boundary = closedOutline(c, s.Tolerances().Vertex)
	if len(h.Boundary) < 3 {
		return fmt.Errorf("boundary has %d points: %w", len(h.Boundary), kernel.ErrDegenerate)
	}
	return nil
}

func (h *BoundedHalfSpace) localShape(sc *Scope) kernel.Shape {
	hs, ok := h.HalfSpace.localShape(sc).(kernel.Solid)
	if !ok {
		return nil
	}
	prism, err := sc.Kernel.Extrude(kernel.Profile{Outer: h.Boundary}, kernel.ZAxis, 2*sc.Extent)
	if err != nil {
		diag.Errorf(sc.Diag(), h.ID(), "boundary prism could not be built: %v", err)
		return nil
	}
	prism = sc.Kernel.Translate(prism, kernel.V(0, 0, -sc.Extent))
	prism = transformSolid(sc.Kernel, prism, h.Position.Transform())
	s, err := sc.Kernel.Intersection(hs, prism)
	if err != nil {
		diag.Errorf(sc.Diag(), h.ID(), "bounded half space is empty: %v", err)
		return nil
	}
	return s
}

// ---------------------------------------------------------------------------
// Swept solids
// ---------------------------------------------------------------------------

// swept is the common part of swept area solids.
type swept struct {
	item
	SweptArea store.Ref[Profile]
	Position  kernel.Frame
}

func (w *swept) load(s *store.Session, r record.Record) error {
	id, err := record.Reference(r, "SweptArea")
	if err != nil {
		return err
	}
	w.SweptArea = store.RefTo[Profile](id)
	w.Position = placement(s, r, "Position")
	return nil
}

// area returns the profile region, reporting open or missing profiles.
func (w *swept) area(sc *Scope) (kernel.Profile, bool) {
	p, ok := w.SweptArea.Get(sc.Session)
	if !ok || !p.Valid() {
		return kernel.Profile{}, false
	}
	a, ok := p.Area()
	if !ok {
		diag.Errorf(sc.Diag(), w.ID(), "profile %s is open and bounds no area", p.ID())
	}
	return a, ok
}

func (w *swept) finish(sc *Scope, s kernel.Solid, err error) kernel.Shape {
	if err != nil {
		diag.Errorf(sc.Diag(), w.ID(), "%s could not be built: %v", w.Type(), err)
		return nil
	}
	if s := transformSolid(sc.Kernel, s, w.Position.Transform()); s != nil {
		return s
	}
	return nil
}

// ExtrudedAreaSolid sweeps a profile along a direction.
type ExtrudedAreaSolid struct {
	swept
	Direction kernel.Vec3 // in Position coordinates
	Depth     float64
}

func (e *ExtrudedAreaSolid) Load(s *store.Session, r record.Record) error {
	if err := e.load(s, r); err != nil {
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
	e.Direction = d.D
	e.Depth, err = positive(s, r, "Depth")
	return err
}

// SuggestedShift moves the solid along its extrusion.
func (e *ExtrudedAreaSolid) SuggestedShift() (kernel.Vec3, bool) {
	return e.Position.Transform().ApplyDir(e.Direction), true
}

func (e *ExtrudedAreaSolid) localShape(sc *Scope) kernel.Shape {
	a, ok := e.area(sc)
	if !ok {
		return nil
	}
	s, err := sc.Kernel.Extrude(a, e.Direction, e.Depth)
	return e.finish(sc, s, err)
}

func (e *ExtrudedAreaSolid) CreateGeometry(sc *Scope, _, scaledLcs kernel.Transform, _ record.ID) []kernel.Shape {
	return sc.place(e, scaledLcs)
}

// RevolvedAreaSolid revolves a profile about an axis in its plane.
type RevolvedAreaSolid struct {
	swept
	Axis  store.Ref[*Axis1Placement]
	Angle float64 // radians
}

func (v *RevolvedAreaSolid) Load(s *store.Session, r record.Record) error {
	if err := v.load(s, r); err != nil {
		return err
	}
	id, err := record.Reference(r, "Axis")
	if err != nil {
		return err
	}
	v.Axis = store.RefTo[*Axis1Placement](id)
	a, err := record.Float(r, "Angle")
	if err != nil {
		return err
	}
	v.Angle = s.Units().Angle(a)
	return nil
}

func (v *RevolvedAreaSolid) localShape(sc *Scope) kernel.Shape {
	a, ok := v.area(sc)
	if !ok {
		return nil
	}
	axis, ok := v.Axis.Get(sc.Session)
	if !ok || !axis.Valid() {
		return nil
	}
	s, err := sc.Kernel.Revolve(a, axis.Location, axis.Axis, v.Angle)
	return v.finish(sc, s, err)
}

func (v *RevolvedAreaSolid) CreateGeometry(sc *Scope, _, scaledLcs kernel.Transform, _ record.ID) []kernel.Shape {
	return sc.place(v, scaledLcs)
}

// ---------------------------------------------------------------------------
// Mapped items
// ---------------------------------------------------------------------------

// RepresentationMap is a representation defined once and placed by mapped
// items.
type RepresentationMap struct {
	store.Base
	Origin               kernel.Frame
	MappedRepresentation store.Ref[*ShapeRepresentation]
}

func (m *RepresentationMap) Load(s *store.Session, r record.Record) error {
	m.Origin = placement(s, r, "MappingOrigin")
	id, err := record.Reference(r, "MappedRepresentation")
	if err != nil {
		return err
	}
	m.MappedRepresentation = store.RefTo[*ShapeRepresentation](id)
	return nil
}

// MappedItem instantiates a representation map under a transformation.
type MappedItem struct {
	store.Base
	MappingSource store.Ref[*RepresentationMap]
	MappingTarget store.Ref[*TransformOperator]
}

func (m *MappedItem) Load(_ *store.Session, r record.Record) error {
	src, err := record.Reference(r, "MappingSource")
	if err != nil {
		return err
	}
	tgt, err := record.Reference(r, "MappingTarget")
	if err != nil {
		return err
	}
	m.MappingSource = store.RefTo[*RepresentationMap](src)
	m.MappingTarget = store.RefTo[*TransformOperator](tgt)
	return nil
}

// CreateGeometry places the mapped representation by target ∘ origin. The
// unscaled transform gets only the rotation and translation of the target.
func (m *MappedItem) CreateGeometry(sc *Scope, lcs, scaledLcs kernel.Transform, contextID record.ID) []kernel.Shape {
	src, ok := m.MappingSource.Get(sc.Session)
	if !ok || !src.Valid() {
		return nil
	}
	tgt, ok := m.MappingTarget.Get(sc.Session)
	if !ok || !tgt.Valid() {
		return nil
	}
	rep, ok := src.MappedRepresentation.Get(sc.Session)
	if !ok || !rep.Valid() {
		return nil
	}
	if sc.mapping[m.ID()] {
		diag.Errorf(sc.Diag(), m.ID(), "mapped item maps itself")
		return nil
	}
	sc.mapping[m.ID()] = true
	defer delete(sc.mapping, m.ID())

	origin := src.Origin.Transform()
	return rep.CreateGeometry(sc,
		lcs.Mul(tgt.Unscaled()).Mul(origin),
		scaledLcs.Mul(tgt.Transform()).Mul(origin),
		contextID)
}
