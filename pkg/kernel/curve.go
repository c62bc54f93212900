package kernel

import "math"

// Curve is a parametric curve created by a Kernel.
type Curve interface {
	// Domain returns the parameter range.
	Domain() (t0, t1 float64)
	// Point evaluates the curve.
	Point(t float64) Vec3
	// Project returns the parameter of the curve point nearest p.
	Project(p Vec3) float64
	// Closed reports whether the curve ends where it starts.
	Closed() bool
	// Normal returns the normal of the curve's plane, if it is planar.
	Normal() (Vec3, bool)
	// Segments suggests how many straight segments approximate [t0, t1].
	Segments(t0, t1 float64) int
}

// Surface is a parametric surface created by a Kernel.
type Surface interface {
	Point(u, v float64) Vec3
	// Planar returns the surface frame when the surface is a plane.
	Planar() (Frame, bool)
}

// RangeSampler is implemented by curves whose exact shape needs specific
// sample points, such as polyline vertices.
type RangeSampler interface {
	SampleRange(t0, t1 float64) []Vec3
}

// Sample returns points along c from t0 to t1 inclusive. On a closed curve a
// range with t1 <= t0 wraps once around the domain.
func Sample(c Curve, t0, t1 float64) []Vec3 {
	if c.Closed() && t1 <= t0+1e-12 {
		d0, d1 := c.Domain()
		t1 += d1 - d0
	}
	if rs, ok := c.(RangeSampler); ok {
		return rs.SampleRange(t0, t1)
	}
	n := c.Segments(t0, t1)
	if n < 1 {
		n = 1
	}
	pts := make([]Vec3, 0, n+1)
	for i := 0; i <= n; i++ {
		pts = append(pts, c.Point(t0+(t1-t0)*float64(i)/float64(n)))
	}
	return pts
}

// SampleAll samples the whole domain of c.
func SampleAll(c Curve) []Vec3 {
	t0, t1 := c.Domain()
	return Sample(c, t0, t1)
}

// ArcSegments returns a segment count for an arc of the given sweep with n
// segments per full turn.
func ArcSegments(sweep float64, n int) int {
	s := int(math.Ceil(math.Abs(sweep) / (2 * math.Pi) * float64(n)))
	if s < 1 {
		s = 1
	}
	return s
}

// CrossesAxis reports whether points lie strictly on both sides of the axis
// within their common plane. Each point's radial offset is measured against
// the first clearly off-axis point. axis must be a unit vector.
func CrossesAxis(pts []Vec3, origin, axis Vec3, tol float64) bool {
	var ref Vec3
	pos, neg := false, false
	for _, p := range pts {
		d := p.Sub(origin)
		r := d.Sub(axis.Scale(d.Dot(axis)))
		if r.Len() <= tol {
			continue
		}
		if ref.Len() == 0 {
			ref = r.Unit()
		}
		s := r.Dot(ref)
		switch {
		case s > tol:
			pos = true
		case s < -tol:
			neg = true
		}
	}
	return pos && neg
}
