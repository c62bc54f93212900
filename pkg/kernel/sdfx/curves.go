package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/ifcgeom/pkg/kernel"
)

// lineExtent bounds the parameter range of an unbounded line.
const lineExtent = 1e6

var (
	_ kernel.Curve        = (*line)(nil)
	_ kernel.Curve        = (*conic)(nil)
	_ kernel.Curve        = (*polyline)(nil)
	_ kernel.Curve        = (*nurbsCurve)(nil)
	_ kernel.Curve        = (*offsetCurve)(nil)
	_ kernel.Curve        = (*trimmedCurve)(nil)
	_ kernel.RangeSampler = (*polyline)(nil)
	_ kernel.RangeSampler = (*trimmedCurve)(nil)
)

// ----------------------------------------------------------------------------
// Line
// ----------------------------------------------------------------------------

type line struct {
	origin, dir kernel.Vec3
}

func (k *SdfxKernel) Line(origin, dir kernel.Vec3) (kernel.Curve, error) {
	if dir.Len() < 1e-12 {
		return nil, fmt.Errorf("line direction: %w", kernel.ErrDegenerate)
	}
	return &line{origin: origin, dir: dir}, nil
}

func (l *line) Domain() (float64, float64)  { return -lineExtent, lineExtent }
func (l *line) Point(t float64) kernel.Vec3 { return l.origin.Add(l.dir.Scale(t)) }
func (l *line) Closed() bool                { return false }
func (l *line) Normal() (kernel.Vec3, bool) { return kernel.Vec3{}, false }
func (l *line) Segments(_, _ float64) int   { return 1 }
func (l *line) Project(p kernel.Vec3) float64 {
	return p.Sub(l.origin).Dot(l.dir) / l.dir.Dot(l.dir)
}

// ----------------------------------------------------------------------------
// Circle and ellipse
// ----------------------------------------------------------------------------

// conic is an ellipse in the XY plane of its frame; a circle when a == b.
// The parameter is the angle in radians.
type conic struct {
	k    *SdfxKernel
	f    kernel.Frame
	a, b float64
}

func (k *SdfxKernel) Circle(f kernel.Frame, radius float64) (kernel.Curve, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("circle radius %g: %w", radius, kernel.ErrDegenerate)
	}
	return &conic{k: k, f: f, a: radius, b: radius}, nil
}

func (k *SdfxKernel) Ellipse(f kernel.Frame, semiAxis1, semiAxis2 float64) (kernel.Curve, error) {
	if semiAxis1 <= 0 || semiAxis2 <= 0 {
		return nil, fmt.Errorf("ellipse semi axes %g, %g: %w", semiAxis1, semiAxis2, kernel.ErrDegenerate)
	}
	return &conic{k: k, f: f, a: semiAxis1, b: semiAxis2}, nil
}

func (c *conic) Domain() (float64, float64)  { return 0, 2 * math.Pi }
func (c *conic) Closed() bool                { return true }
func (c *conic) Normal() (kernel.Vec3, bool) { return c.f.Z, true }

func (c *conic) Point(t float64) kernel.Vec3 {
	return c.f.ToWorld(kernel.V(c.a*math.Cos(t), c.b*math.Sin(t), 0))
}

func (c *conic) Project(p kernel.Vec3) float64 {
	q := c.f.ToLocal(p)
	t := math.Atan2(q.Y/c.b, q.X/c.a)
	if t < 0 {
		t += 2 * math.Pi
	}
	return t
}

func (c *conic) Segments(t0, t1 float64) int {
	return c.k.segmentsFor(t1 - t0)
}

// ----------------------------------------------------------------------------
// Polyline
// ----------------------------------------------------------------------------

// polyline is parameterized by vertex index: t in [i, i+1] spans segment i.
type polyline struct {
	k   *SdfxKernel
	pts []kernel.Vec3
}

func (k *SdfxKernel) Polyline(points []kernel.Vec3) (kernel.Curve, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("polyline with %d points: %w", len(points), kernel.ErrDegenerate)
	}
	return &polyline{k: k, pts: points}, nil
}

func (c *polyline) Domain() (float64, float64) { return 0, float64(len(c.pts) - 1) }

func (c *polyline) Closed() bool {
	return c.pts[0].Near(c.pts[len(c.pts)-1], c.k.tol)
}

func (c *polyline) Normal() (kernel.Vec3, bool) {
	n := kernel.Newell(c.pts)
	if n.Len() < 1e-12 || !planar(c.pts, n.Unit(), c.k.tol) {
		return kernel.Vec3{}, false
	}
	return n.Unit(), true
}

// wrap maps t into the domain for closed polylines and clamps otherwise.
func (c *polyline) wrap(t float64) float64 {
	_, end := c.Domain()
	if c.Closed() {
		t = math.Mod(t, end)
		if t < 0 {
			t += end
		}
		return t
	}
	return math.Max(0, math.Min(end, t))
}

func (c *polyline) Point(t float64) kernel.Vec3 {
	_, end := c.Domain()
	if c.Closed() && t >= end {
		t = c.wrap(t)
	}
	t = math.Max(0, math.Min(end, t))
	i := int(math.Floor(t))
	if i >= len(c.pts)-1 {
		return c.pts[len(c.pts)-1]
	}
	return c.pts[i].Lerp(c.pts[i+1], t-float64(i))
}

func (c *polyline) Project(p kernel.Vec3) float64 {
	best, bestD := 0.0, math.Inf(1)
	for i := 0; i+1 < len(c.pts); i++ {
		a, b := c.pts[i], c.pts[i+1]
		ab := b.Sub(a)
		s := 0.0
		if l2 := ab.Dot(ab); l2 > 0 {
			s = math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l2))
		}
		if d := p.Dist(a.Add(ab.Scale(s))); d < bestD {
			best, bestD = float64(i)+s, d
		}
	}
	return best
}

func (c *polyline) Segments(t0, t1 float64) int {
	return int(math.Ceil(t1)-math.Floor(t0)) + 1
}

// SampleRange returns the end points plus every vertex strictly between.
func (c *polyline) SampleRange(t0, t1 float64) []kernel.Vec3 {
	pts := []kernel.Vec3{c.Point(t0)}
	for i := math.Floor(t0) + 1; i < t1; i++ {
		pts = append(pts, c.Point(i))
	}
	return append(pts, c.Point(t1))
}

// ----------------------------------------------------------------------------
// Offset curve
// ----------------------------------------------------------------------------

// offsetCurve displaces its base along tangent × refDir.
type offsetCurve struct {
	base   kernel.Curve
	dist   float64
	refDir kernel.Vec3
}

func (k *SdfxKernel) OffsetCurve(base kernel.Curve, distance float64, refDir kernel.Vec3) (kernel.Curve, error) {
	if base == nil {
		return nil, fmt.Errorf("offset curve: nil base: %w", kernel.ErrDegenerate)
	}
	if refDir.Len() < 1e-12 {
		return nil, fmt.Errorf("offset curve: zero reference direction: %w", kernel.ErrDegenerate)
	}
	return &offsetCurve{base: base, dist: distance, refDir: refDir.Unit()}, nil
}

func (c *offsetCurve) Domain() (float64, float64)    { return c.base.Domain() }
func (c *offsetCurve) Closed() bool                  { return c.base.Closed() }
func (c *offsetCurve) Normal() (kernel.Vec3, bool)   { return c.base.Normal() }
func (c *offsetCurve) Project(p kernel.Vec3) float64 { return c.base.Project(p) }
func (c *offsetCurve) Segments(t0, t1 float64) int   { return c.base.Segments(t0, t1) }

func (c *offsetCurve) Point(t float64) kernel.Vec3 {
	p := c.base.Point(t)
	t0, t1 := c.base.Domain()
	h := (t1 - t0) * 1e-6
	tan := c.base.Point(t + h).Sub(c.base.Point(t - h))
	off := tan.Cross(c.refDir).Unit()
	return p.Add(off.Scale(c.dist))
}

// ----------------------------------------------------------------------------
// Trimmed curve
// ----------------------------------------------------------------------------

// trimmedCurve reparameterizes base over [0, 1] from t0 to t1. When sense
// is false the base is traversed against its parameterization.
type trimmedCurve struct {
	base   kernel.Curve
	t0, t1 float64
}

func (k *SdfxKernel) Trim(c kernel.Curve, t0, t1 float64, sense bool) (kernel.Curve, error) {
	if c == nil {
		return nil, fmt.Errorf("trim: nil basis curve: %w", kernel.ErrDegenerate)
	}
	if c.Closed() {
		d0, d1 := c.Domain()
		period := d1 - d0
		if sense && t1 <= t0 {
			t1 += period
		}
		if !sense && t0 <= t1 {
			t0 += period
		}
	}
	if math.Abs(t1-t0) < 1e-12 {
		return nil, fmt.Errorf("trim: empty parameter range: %w", kernel.ErrDegenerate)
	}
	return &trimmedCurve{base: c, t0: t0, t1: t1}, nil
}

func (c *trimmedCurve) at(s float64) float64 { return c.t0 + s*(c.t1-c.t0) }

func (c *trimmedCurve) Domain() (float64, float64)  { return 0, 1 }
func (c *trimmedCurve) Point(s float64) kernel.Vec3 { return c.base.Point(c.at(s)) }
func (c *trimmedCurve) Normal() (kernel.Vec3, bool) { return c.base.Normal() }

func (c *trimmedCurve) Closed() bool {
	return c.Point(0).Near(c.Point(1), 1e-9)
}

func (c *trimmedCurve) Project(p kernel.Vec3) float64 {
	return projectBySampling(c, p, c.Segments(0, 1)*4)
}

func (c *trimmedCurve) Segments(s0, s1 float64) int {
	a, b := c.at(s0), c.at(s1)
	if a > b {
		a, b = b, a
	}
	return c.base.Segments(a, b)
}

// SampleRange samples the base between the mapped parameters.
func (c *trimmedCurve) SampleRange(s0, s1 float64) []kernel.Vec3 {
	a, b := c.at(s0), c.at(s1)
	if a <= b {
		return sampleOpen(c.base, a, b)
	}
	return reversed(sampleOpen(c.base, b, a))
}

// sampleOpen samples [t0, t1] without the closed-curve wrap of kernel.Sample.
func sampleOpen(c kernel.Curve, t0, t1 float64) []kernel.Vec3 {
	if rs, ok := c.(kernel.RangeSampler); ok {
		return rs.SampleRange(t0, t1)
	}
	n := max(1, c.Segments(t0, t1))
	pts := make([]kernel.Vec3, 0, n+1)
	for i := 0; i <= n; i++ {
		pts = append(pts, c.Point(t0+(t1-t0)*float64(i)/float64(n)))
	}
	return pts
}
