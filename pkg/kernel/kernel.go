// Package kernel defines the abstract geometry kernel consumed by the
// reconstruction core: curves, surfaces, solids, Boolean operations and a
// B-rep builder. Implementations (see pkg/kernel/sdfx) provide the numerics
// behind this interface so the rest of the system never depends on a
// particular backend.
package kernel

import "errors"

// Sentinel errors returned by kernel implementations.
var (
	// ErrDegenerate reports geometry too small or malformed to construct.
	ErrDegenerate = errors.New("degenerate geometry")

	// ErrNotClosed reports a face set that does not bound a volume.
	ErrNotClosed = errors.New("face set is not closed")

	// ErrBooleanFailed reports a Boolean operation the kernel could not
	// complete for the given operands.
	ErrBooleanFailed = errors.New("boolean operation failed")
)

// Shape is any result of geometry creation: a solid or a shell.
type Shape interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Solid is an opaque handle to a closed volume.
// Implementations wrap their internal representation.
type Solid interface {
	Shape
}

// Shell is a possibly open set of connected faces.
type Shell interface {
	Shape
	FaceCount() int
	Closed() bool
}

// IsSolid reports whether s is a solid rather than a shell.
func IsSolid(s Shape) bool {
	if s == nil {
		return false
	}
	_, shell := s.(Shell)
	return !shell
}

// Faceted is implemented by shapes that know their face count, including
// solids built from explicit faces.
type Faceted interface {
	FaceCount() int
}

// Profile is a planar area in the XY plane of its local frame: an outer
// boundary and optional holes. Z coordinates are ignored.
type Profile struct {
	Outer []Vec3
	Holes [][]Vec3
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Curves
	Line(origin, dir Vec3) (Curve, error)
	Circle(f Frame, radius float64) (Curve, error)
	Ellipse(f Frame, semiAxis1, semiAxis2 float64) (Curve, error)
	Polyline(points []Vec3) (Curve, error)
	// NURBSCurve takes the expanded knot vector (multiplicities applied).
	// A nil weights slice makes the curve non-rational.
	NURBSCurve(degree int, ctrl []Vec3, weights, knots []float64) (Curve, error)
	OffsetCurve(base Curve, distance float64, refDir Vec3) (Curve, error)
	Trim(c Curve, t0, t1 float64, sense bool) (Curve, error)

	// Surfaces
	Plane(f Frame) Surface
	ExtrudedSurface(profile Curve, dir Vec3) (Surface, error)
	RevolvedSurface(profile Curve, axisOrigin, axisDir Vec3) (Surface, error)
	NURBSSurface(uDegree, vDegree int, ctrl [][]Vec3, weights [][]float64, uKnots, vKnots []float64) (Surface, error)

	// Primitives. Box has its minimum corner at the origin; Cylinder
	// stands on the XY plane along +Z; Sphere is centred at the origin.
	Box(x, y, z float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)
	Sphere(radius float64) (Solid, error)
	// HalfSpace is the region behind the plane through origin with the
	// given outward normal.
	HalfSpace(origin, normal Vec3) (Solid, error)

	// Swept solids
	Extrude(p Profile, dir Vec3, depth float64) (Solid, error)
	Revolve(p Profile, axisOrigin, axisDir Vec3, angle float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) (Solid, error)
	Difference(a, b Solid) (Solid, error)
	Intersection(a, b Solid) (Solid, error)

	// Transforms
	Translate(s Solid, v Vec3) Solid
	Transform(s Shape, t Transform) Shape

	// B-rep construction
	NewBrepBuilder() BrepBuilder

	// Mesh output
	ToMesh(s Shape) (*Mesh, error)
}
