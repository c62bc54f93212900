// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
//
// Solids built from explicit faces (B-reps, extrusions, revolutions, boxes)
// keep their polyhedral boundary next to the signed distance function, so
// they mesh exactly and take part in coincident-face checks. Boolean results
// and curved primitives exist only as SDFs and mesh through marching cubes.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface checks.
var (
	_ kernel.Kernel  = (*SdfxKernel)(nil)
	_ kernel.Solid   = (*sdfxSolid)(nil)
	_ kernel.Faceted = (*sdfxSolid)(nil)
	_ kernel.Shell   = (*sdfxShell)(nil)
)

// Defaults for the tunable options.
const (
	defaultMeshCells       = 200
	defaultCurveSegments   = 24
	defaultTolerance       = 1e-4
	defaultHalfSpaceExtent = 1000
	defaultAngleTolerance  = math.Pi / 1800
)

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid. poly is set when
// the exact boundary is known.
type sdfxSolid struct {
	s     sdf.SDF3
	poly  *polyhedron
	faces int
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	if s.poly != nil {
		return s.poly.bounds()
	}
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// FaceCount returns the number of B-rep faces, or 0 for implicit solids.
func (s *sdfxSolid) FaceCount() int { return s.faces }

// sdfxShell is an open or closed face set without a volume.
type sdfxShell struct {
	poly   *polyhedron
	faces  int
	closed bool
}

func (s *sdfxShell) BoundingBox() (min, max [3]float64) { return s.poly.bounds() }
func (s *sdfxShell) FaceCount() int                     { return s.faces }
func (s *sdfxShell) Closed() bool                       { return s.closed }

// Option configures an SdfxKernel.
type Option func(*SdfxKernel)

// WithMeshCells sets the marching-cubes resolution along the longest axis.
func WithMeshCells(n int) Option {
	return func(k *SdfxKernel) { k.meshCells = n }
}

// WithCurveSegments sets how many segments approximate a full turn.
func WithCurveSegments(n int) Option {
	return func(k *SdfxKernel) { k.curveSegments = n }
}

// WithTolerance sets the vertex welding distance.
func WithTolerance(tol float64) Option {
	return func(k *SdfxKernel) { k.tol = tol }
}

// WithShortEdge rejects loop edges longer than the vertex tolerance but
// shorter than l. Zero accepts every edge.
func WithShortEdge(l float64) Option {
	return func(k *SdfxKernel) { k.shortEdge = l }
}

// WithAngleTolerance sets the angle in radians below which two directions
// count as parallel.
func WithAngleTolerance(a float64) Option {
	return func(k *SdfxKernel) { k.angTol = a }
}

// WithHalfSpaceExtent sets the size of the box standing in for a half space.
func WithHalfSpaceExtent(e float64) Option {
	return func(k *SdfxKernel) { k.halfSpaceExtent = e }
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	meshCells       int
	curveSegments   int
	tol             float64
	shortEdge       float64
	angTol          float64
	halfSpaceExtent float64
}

// New returns a new SdfxKernel.
func New(opts ...Option) *SdfxKernel {
	k := &SdfxKernel{
		meshCells:       defaultMeshCells,
		curveSegments:   defaultCurveSegments,
		tol:             defaultTolerance,
		angTol:          defaultAngleTolerance,
		halfSpaceExtent: defaultHalfSpaceExtent,
	}
	for _, o := range opts {
		o(k)
	}
	return k
}

// unwrap extracts the underlying solid from a kernel.Solid.
func unwrap(s kernel.Solid) (*sdfxSolid, error) {
	if s == nil {
		return nil, fmt.Errorf("nil operand: %w", kernel.ErrBooleanFailed)
	}
	ss, ok := s.(*sdfxSolid)
	if !ok {
		return nil, fmt.Errorf("foreign solid %T: %w", s, kernel.ErrBooleanFailed)
	}
	return ss, nil
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

func vec(p kernel.Vec3) v3.Vec   { return v3.Vec{X: p.X, Y: p.Y, Z: p.Z} }
func unvec(p v3.Vec) kernel.Vec3 { return kernel.Vec3{X: p.X, Y: p.Y, Z: p.Z} }

func fromPoly(p *polyhedron, faces int) *sdfxSolid {
	return &sdfxSolid{s: &polySDF{p: p}, poly: p, faces: faces}
}

// ----------------------------------------------------------------------------
// Primitives
// ----------------------------------------------------------------------------

// Box creates a box with the given dimensions and its minimum corner at the
// origin. sdf.Box3D centers the box at the origin, so it is translated by
// half-dimensions.
func (k *SdfxKernel) Box(x, y, z float64) (kernel.Solid, error) {
	if x <= 0 || y <= 0 || z <= 0 {
		return nil, fmt.Errorf("box %gx%gx%g: %w", x, y, z, kernel.ErrDegenerate)
	}
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Box3D: %w", err)
	}
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	return &sdfxSolid{
		s:     sdf.Transform3D(s, m),
		poly:  boxPoly(kernel.Vec3{}, kernel.V(x, y, z)),
		faces: 6,
	}, nil
}

// Cylinder creates a cylinder standing on the XY plane along +Z.
func (k *SdfxKernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	if height <= 0 || radius <= 0 {
		return nil, fmt.Errorf("cylinder h=%g r=%g: %w", height, radius, kernel.ErrDegenerate)
	}
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Cylinder3D: %w", err)
	}
	return wrap(sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Z: height / 2}))), nil
}

// Sphere creates a sphere centred at the origin.
func (k *SdfxKernel) Sphere(radius float64) (kernel.Solid, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("sphere r=%g: %w", radius, kernel.ErrDegenerate)
	}
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Sphere3D: %w", err)
	}
	return wrap(s), nil
}

// HalfSpace returns a cube of the configured extent whose top face lies on
// the plane, centred on origin. Operands larger than the extent are clipped.
func (k *SdfxKernel) HalfSpace(origin, normal kernel.Vec3) (kernel.Solid, error) {
	f, err := kernel.NewFrame(origin, normal, normal.Perpendicular())
	if err != nil {
		return nil, fmt.Errorf("half space: %w", err)
	}
	e := k.halfSpaceExtent
	box, err := k.Box(e, e, e)
	if err != nil {
		return nil, err
	}
	// local cube spans [-e/2, e/2] x [-e/2, e/2] x [-e, 0]
	local := kernel.Translation(kernel.V(-e/2, -e/2, -e))
	return k.Transform(box, f.Transform().Mul(local)).(kernel.Solid), nil
}

// ----------------------------------------------------------------------------
// Boolean operations
// ----------------------------------------------------------------------------

// operands validates a Boolean's inputs. Coincident faces between two
// polyhedral operands are rejected, as a B-rep kernel would.
func (k *SdfxKernel) operands(op string, a, b kernel.Solid) (*sdfxSolid, *sdfxSolid, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: first operand: %w", op, err)
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: second operand: %w", op, err)
	}
	if sa.poly != nil && sb.poly != nil && coincidentFaces(sa.poly, sb.poly, k.tol) {
		return nil, nil, fmt.Errorf("%s: operands have coincident faces: %w", op, kernel.ErrBooleanFailed)
	}
	return sa, sb, nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	sa, sb, err := k.operands("union", a, b)
	if err != nil {
		return nil, err
	}
	return wrap(sdf.Union3D(sa.s, sb.s)), nil
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	sa, sb, err := k.operands("difference", a, b)
	if err != nil {
		return nil, err
	}
	if !overlaps(sa, sb) {
		return sa, nil
	}
	return wrap(sdf.Difference3D(sa.s, sb.s)), nil
}

// Intersection returns the intersection of two solids. Disjoint operands
// fail because the result would be empty.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	sa, sb, err := k.operands("intersection", a, b)
	if err != nil {
		return nil, err
	}
	if !overlaps(sa, sb) {
		return nil, fmt.Errorf("intersection: operands are disjoint: %w", kernel.ErrBooleanFailed)
	}
	return wrap(sdf.Intersect3D(sa.s, sb.s)), nil
}

func overlaps(a, b *sdfxSolid) bool {
	amin, amax := a.BoundingBox()
	bmin, bmax := b.BoundingBox()
	for i := 0; i < 3; i++ {
		if amax[i] < bmin[i] || bmax[i] < amin[i] {
			return false
		}
	}
	return true
}

// ----------------------------------------------------------------------------
// Transforms
// ----------------------------------------------------------------------------

// Translate moves a solid by v.
func (k *SdfxKernel) Translate(s kernel.Solid, v kernel.Vec3) kernel.Solid {
	ss, err := unwrap(s)
	if err != nil {
		return s
	}
	m := sdf.Translate3d(vec(v))
	out := &sdfxSolid{s: sdf.Transform3D(ss.s, m), faces: ss.faces}
	if ss.poly != nil {
		out.poly = ss.poly.transform(kernel.Translation(v))
	}
	return out
}

// Transform applies an affine transform to a solid or shell. Unknown shapes
// are returned unchanged.
func (k *SdfxKernel) Transform(s kernel.Shape, t kernel.Transform) kernel.Shape {
	switch v := s.(type) {
	case *sdfxSolid:
		if t.IsIdentity() {
			return v
		}
		out := &sdfxSolid{faces: v.faces}
		if v.poly != nil {
			out.poly = v.poly.transform(t)
			out.s = &polySDF{p: out.poly}
		} else {
			out.s = newTransformed(v.s, t)
		}
		return out
	case *sdfxShell:
		if t.IsIdentity() {
			return v
		}
		return &sdfxShell{poly: v.poly.transform(t), faces: v.faces, closed: v.closed}
	default:
		return s
	}
}

// ----------------------------------------------------------------------------
// Mesh output
// ----------------------------------------------------------------------------

// ToMesh converts a shape to a triangle mesh. Polyhedral shapes are
// triangulated exactly; implicit solids use marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Shape) (*kernel.Mesh, error) {
	switch v := s.(type) {
	case *sdfxShell:
		return v.poly.mesh(), nil
	case *sdfxSolid:
		if v.poly != nil {
			return v.poly.mesh(), nil
		}
		return k.marchingCubes(v.s), nil
	case nil:
		return nil, fmt.Errorf("to mesh: nil shape: %w", kernel.ErrDegenerate)
	default:
		return nil, fmt.Errorf("to mesh: unsupported shape %T", s)
	}
}

func (k *SdfxKernel) marchingCubes(sdf3 sdf.SDF3) *kernel.Mesh {
	renderer := render.NewMarchingCubesUniform(k.meshCells)
	triangles := render.ToTriangles(sdf3, renderer)

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}
	return &kernel.Mesh{Vertices: vertices, Normals: normals, Indices: indices}
}

// segmentsFor returns a segment count for a sweep angle.
func (k *SdfxKernel) segmentsFor(sweep float64) int {
	return kernel.ArcSegments(math.Abs(sweep), k.curveSegments)
}
