package kernel

import "math"

// Vec3 is a point or direction in working units.
type Vec3 struct {
	X, Y, Z float64
}

// V is shorthand for Vec3{x, y, z}.
func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// Common axis directions.
var (
	XAxis = Vec3{X: 1}
	YAxis = Vec3{Y: 1}
	ZAxis = Vec3{Z: 1}
)

func (a Vec3) Add(b Vec3) Vec3             { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3             { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3        { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Neg() Vec3                   { return Vec3{-a.X, -a.Y, -a.Z} }
func (a Vec3) Dot(b Vec3) float64          { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vec3) Len() float64                { return math.Sqrt(a.Dot(a)) }
func (a Vec3) Dist(b Vec3) float64         { return a.Sub(b).Len() }
func (a Vec3) Array() [3]float64           { return [3]float64{a.X, a.Y, a.Z} }
func (a Vec3) Lerp(b Vec3, t float64) Vec3 { return a.Add(b.Sub(a).Scale(t)) }

// Cross returns a × b.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Unit returns a normalized copy. The zero vector stays zero.
func (a Vec3) Unit() Vec3 {
	l := a.Len()
	if l == 0 {
		return a
	}
	return a.Scale(1 / l)
}

// Near reports whether a and b are within tol of each other.
func (a Vec3) Near(b Vec3, tol float64) bool {
	return a.Dist(b) <= tol
}

// Parallel reports whether a and b point along the same line within the
// angular tolerance tol (radians). Zero vectors are never parallel.
func (a Vec3) Parallel(b Vec3, tol float64) bool {
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return false
	}
	return a.Cross(b).Len()/(la*lb) <= math.Sin(tol)
}

// Perpendicular returns some unit vector orthogonal to a.
func (a Vec3) Perpendicular() Vec3 {
	ref := XAxis
	if math.Abs(a.Unit().X) > 0.9 {
		ref = YAxis
	}
	return a.Cross(ref).Unit()
}

// Newell returns the area-weighted normal of a polygon; its length is twice
// the polygon's area. Collinear or empty input yields the zero vector.
func Newell(pts []Vec3) Vec3 {
	var n Vec3
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

// Centroid returns the average of pts.
func Centroid(pts []Vec3) Vec3 {
	var c Vec3
	if len(pts) == 0 {
		return c
	}
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.Scale(1 / float64(len(pts)))
}
