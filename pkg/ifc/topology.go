package ifc

import (
	"fmt"

	"github.com/chazu/ifcgeom/pkg/brep"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/record"
	"github.com/chazu/ifcgeom/pkg/schema"
	"github.com/chazu/ifcgeom/pkg/store"
)

// ---------------------------------------------------------------------------
// Vertices and edges
// ---------------------------------------------------------------------------

// VertexPoint is a vertex with an optional point.
type VertexPoint struct {
	store.Base
	Point *kernel.Vec3
}

func (v *VertexPoint) Load(s *store.Session, r record.Record) error {
	p, err := point(s, r, "VertexGeometry")
	if err != nil {
		return err
	}
	v.Point = &p
	return nil
}

// EdgeElement is implemented by edges and oriented edges.
type EdgeElement interface {
	store.Entity
	// Start and End return the bounding points, false when unknown.
	Start() (kernel.Vec3, bool)
	End() (kernel.Vec3, bool)
	// Curve returns the edge geometry; nil means a straight segment.
	Curve() kernel.Curve
	// SameSense reports whether Curve runs from Start to End.
	SameSense() bool
}

var (
	_ EdgeElement = (*Edge)(nil)
	_ EdgeElement = (*OrientedEdge)(nil)
)

func vertex(s *store.Session, id record.ID) *kernel.Vec3 {
	if id.IsNull() {
		return nil
	}
	v, ok := store.As[*VertexPoint](s, id)
	if !ok || !v.Valid() {
		return nil
	}
	return v.Point
}

func deref(p *kernel.Vec3) (kernel.Vec3, bool) {
	if p == nil {
		return kernel.Vec3{}, false
	}
	return *p, true
}

// Edge is a plain edge or an edge curve.
type Edge struct {
	store.Base
	start, end *kernel.Vec3
	curve      kernel.Curve
	sameSense  bool
}

func (e *Edge) Load(s *store.Session, r record.Record) error {
	e.start = vertex(s, record.OptionalReference(r, "EdgeStart"))
	e.end = vertex(s, record.OptionalReference(r, "EdgeEnd"))
	e.sameSense = true
	if r.IsSubtypeOf(schema.EdgeCurve) {
		c, err := curve(s, r, "EdgeGeometry")
		if err != nil {
			return err
		}
		e.curve = c
		e.sameSense = record.OptionalLogical(r, "SameSense", true)
	}
	return nil
}

func (e *Edge) Start() (kernel.Vec3, bool) { return deref(e.start) }
func (e *Edge) End() (kernel.Vec3, bool)   { return deref(e.end) }
func (e *Edge) Curve() kernel.Curve        { return e.curve }
func (e *Edge) SameSense() bool            { return e.sameSense }

// OrientedEdge traverses its edge element forwards or backwards. Its own
// start and end are derived from the element, swapped when Orientation is
// false, unless the record states them explicitly.
type OrientedEdge struct {
	store.Base
	EdgeElement store.Ref[EdgeElement]
	Orientation bool

	start, end *kernel.Vec3
	curve      kernel.Curve
	sameSense  bool
}

func (o *OrientedEdge) Load(s *store.Session, r record.Record) error {
	id, err := record.Reference(r, "EdgeElement")
	if err != nil {
		return err
	}
	o.EdgeElement = store.RefTo[EdgeElement](id)
	o.Orientation, err = record.Logical(r, "Orientation")
	if err != nil {
		return err
	}
	el, ok := o.EdgeElement.Get(s)
	if !ok {
		return fmt.Errorf("EdgeElement: edge %s unusable", id)
	}
	from, to := el.Start, el.End
	if !o.Orientation {
		from, to = el.End, el.Start
	}
	if p, ok := from(); ok {
		o.start = &p
	}
	if p, ok := to(); ok {
		o.end = &p
	}
	// explicit vertices win over derived ones
	if p := vertex(s, record.OptionalReference(r, "EdgeStart")); p != nil {
		o.start = p
	}
	if p := vertex(s, record.OptionalReference(r, "EdgeEnd")); p != nil {
		o.end = p
	}
	o.curve = el.Curve()
	o.sameSense = el.SameSense() == o.Orientation
	return nil
}

func (o *OrientedEdge) Start() (kernel.Vec3, bool) { return deref(o.start) }
func (o *OrientedEdge) End() (kernel.Vec3, bool)   { return deref(o.end) }
func (o *OrientedEdge) Curve() kernel.Curve        { return o.curve }
func (o *OrientedEdge) SameSense() bool            { return o.sameSense }

// ---------------------------------------------------------------------------
// Loops
// ---------------------------------------------------------------------------

// Loop is a face boundary. A loop that cannot bound a face stays loaded but
// invalid; the problem is reported by the face that uses it.
type Loop interface {
	store.Entity
	// Problem explains why the loop is unusable, or is empty.
	Problem() string
	// emit adds the loop's points or edges to the loop in progress.
	emit(b kernel.BrepBuilder, forward bool)
}

var (
	_ Loop = (*PolyLoop)(nil)
	_ Loop = (*EdgeLoop)(nil)
	_ Loop = (*VertexLoop)(nil)
)

type loopBase struct {
	store.Base
	problem string
}

func (l *loopBase) Problem() string { return l.problem }

func (l *loopBase) reject(format string, args ...any) {
	l.problem = fmt.Sprintf(format, args...)
	l.Invalidate()
}

// trimClosing drops trailing points that coincide with the first point.
func trimClosing(pts []kernel.Vec3, tol float64) []kernel.Vec3 {
	for len(pts) > 1 && pts[len(pts)-1].Near(pts[0], tol) {
		pts = pts[:len(pts)-1]
	}
	return pts
}

// PolyLoop is a polygon of points.
type PolyLoop struct {
	loopBase
	Points []kernel.Vec3
}

func (l *PolyLoop) Load(s *store.Session, r record.Record) error {
	pts, err := points(s, r, "Polygon")
	if err != nil {
		return err
	}
	l.Points = trimClosing(pts, s.Tolerances().Vertex)
	if len(l.Points) < 3 {
		l.reject("poly loop has %d distinct points", len(l.Points))
	}
	return nil
}

func (l *PolyLoop) emit(b kernel.BrepBuilder, forward bool) {
	n := len(l.Points)
	for i := range l.Points {
		if forward {
			b.AddPoint(l.Points[i])
		} else {
			b.AddPoint(l.Points[n-1-i])
		}
	}
}

type loopEdge struct {
	start, end kernel.Vec3
	curve      kernel.Curve
	sameSense  bool
}

// EdgeLoop is a closed chain of oriented edges.
type EdgeLoop struct {
	loopBase
	edges []loopEdge
}

func (l *EdgeLoop) Load(s *store.Session, r record.Record) error {
	ids, err := record.References(r, "EdgeList")
	if err != nil {
		return err
	}
	curved := false
	for _, e := range store.Resolve(s, store.RefsTo[EdgeElement](ids)) {
		start, ok1 := e.Start()
		end, ok2 := e.End()
		if !ok1 || !ok2 {
			l.reject("edge %s has no end points", e.ID())
			return nil
		}
		l.edges = append(l.edges, loopEdge{start: start, end: end, curve: e.Curve(), sameSense: e.SameSense()})
		curved = curved || e.Curve() != nil
	}
	if len(l.edges) == 0 {
		l.reject("edge loop has no edges")
		return nil
	}
	if !curved {
		starts := make([]kernel.Vec3, len(l.edges))
		for i, e := range l.edges {
			starts[i] = e.start
		}
		if n := len(trimClosing(starts, s.Tolerances().Vertex)); n < 3 {
			l.reject("edge loop has %d distinct points", n)
		}
	}
	return nil
}

func (l *EdgeLoop) emit(b kernel.BrepBuilder, forward bool) {
	n := len(l.edges)
	for i := range l.edges {
		if forward {
			e := l.edges[i]
			b.AddEdge(e.curve, e.start, e.end, e.sameSense)
		} else {
			e := l.edges[n-1-i]
			b.AddEdge(e.curve, e.end, e.start, !e.sameSense)
		}
	}
}

// VertexLoop is a single-vertex loop. It never bounds an area.
type VertexLoop struct {
	loopBase
}

func (l *VertexLoop) Load(_ *store.Session, r record.Record) error {
	if _, err := record.Reference(r, "LoopVertex"); err != nil {
		return err
	}
	l.reject("vertex loop bounds no area")
	return nil
}

func (l *VertexLoop) emit(kernel.BrepBuilder, bool) {}

// ---------------------------------------------------------------------------
// Faces
// ---------------------------------------------------------------------------

// FaceBound is a loop with an orientation; outer bounds are flagged.
type FaceBound struct {
	store.Base
	Bound       store.Ref[Loop]
	Orientation bool
	Outer       bool
}

func (f *FaceBound) Load(s *store.Session, r record.Record) error {
	id, err := record.Reference(r, "Bound")
	if err != nil {
		return err
	}
	f.Bound = store.RefTo[Loop](id)
	f.Orientation = record.OptionalLogical(r, "Orientation", true)
	f.Outer = r.IsSubtypeOf(schema.FaceOuterBound)
	return nil
}

// Face is a face with one or more bounds, lying on an optional surface.
type Face struct {
	store.Base
	Bounds      []store.Ref[*FaceBound]
	FaceSurface store.Ref[Surface]
	Sense       bool
}

func (f *Face) Load(s *store.Session, r record.Record) error {
	ids, err := record.References(r, "Bounds")
	if err != nil {
		return err
	}
	f.Bounds = store.RefsTo[*FaceBound](ids)
	f.Sense = true
	if r.IsSubtypeOf(schema.FaceSurface) {
		f.FaceSurface = store.RefTo[Surface](record.OptionalReference(r, "FaceSurface"))
		f.Sense = record.OptionalLogical(r, "SameSense", true)
	}
	return nil
}

// bound is a resolved face bound.
type bound struct {
	id      record.ID
	loop    Loop
	forward bool
	outer   bool
}

// view binds a face to a scope for assembly.
func (f *Face) view(sc *Scope) *faceView {
	v := &faceView{face: f}
	if !f.Valid() {
		v.problem = "face could not be read"
		return v
	}
	for _, fb := range store.Resolve(sc.Session, f.Bounds) {
		if !fb.Valid() {
			v.problem = fmt.Sprintf("bound %s could not be read", fb.ID())
			return v
		}
		loop, ok := fb.Bound.Get(sc.Session)
		if !ok {
			v.problem = fmt.Sprintf("bound %s has no loop", fb.ID())
			return v
		}
		if p := loop.Problem(); p != "" {
			v.problem = fmt.Sprintf("loop %s: %s", loop.ID(), p)
			return v
		}
		if !loop.Valid() {
			v.problem = fmt.Sprintf("loop %s could not be read", loop.ID())
			return v
		}
		v.bounds = append(v.bounds, bound{id: fb.ID(), loop: loop, forward: fb.Orientation, outer: fb.Outer})
	}
	if len(v.bounds) == 0 {
		v.problem = "face has no bounds"
		return v
	}
	outer := false
	for _, b := range v.bounds {
		outer = outer || b.outer
	}
	if !outer {
		// without an explicit outer bound the first one is outer
		v.bounds[0].outer = true
	}
	if surf, ok := f.FaceSurface.Get(sc.Session); ok {
		v.surface = surf.Geometry()
	}
	return v
}

// faceView is a face resolved against a scope.
type faceView struct {
	face    *Face
	bounds  []bound
	surface kernel.Surface
	problem string
}

var _ brep.Face = (*faceView)(nil)

func (v *faceView) ID() record.ID           { return v.face.ID() }
func (v *faceView) Surface() kernel.Surface { return v.surface }
func (v *faceView) SameSense() bool         { return v.face.Sense }

func (v *faceView) ValidForCreation() (bool, string) {
	return v.problem == "", v.problem
}

func (v *faceView) AddBounds(b kernel.BrepBuilder) error {
	for _, bd := range v.bounds {
		err := brep.Loop(b, bd.outer, func() error {
			bd.loop.emit(b, bd.forward)
			return nil
		})
		if err != nil {
			return fmt.Errorf("bound %s: %w", bd.id, err)
		}
	}
	return nil
}

// Shell is a connected face set. AllowInvalidFaces is set by the container
// that materializes it: surface models tolerate invalid faces, solids do
// not.
type Shell struct {
	store.Base
	Faces             []store.Ref[*Face]
	Closed            bool
	AllowInvalidFaces bool
}

func (sh *Shell) Load(_ *store.Session, r record.Record) error {
	ids, err := record.References(r, "CfsFaces")
	if err != nil {
		return err
	}
	sh.Faces = store.RefsTo[*Face](ids)
	sh.Closed = r.IsSubtypeOf(schema.ClosedShell)
	return nil
}

// Policies returns the construction policies matching the shell's
// tolerance of invalid faces.
func (sh *Shell) Policies() []brep.Policy {
	if sh.AllowInvalidFaces {
		return brep.SurfacePolicies
	}
	return brep.SolidPolicies
}

// assemble builds the shell's faces under its policies.
func (sh *Shell) assemble(sc *Scope, policies []brep.Policy) brep.Result {
	faces := make([]brep.Face, 0, len(sh.Faces))
	for _, f := range store.Resolve(sc.Session, sh.Faces) {
		faces = append(faces, f.view(sc))
	}
	return brep.Assemble(brep.Request{
		ID:       sh.ID(),
		Faces:    faces,
		Policies: policies,
		Kernel:   sc.Kernel,
		Diag:     sc.Diag(),
	})
}
