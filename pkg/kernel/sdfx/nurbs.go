package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/ifcgeom/pkg/kernel"
)

// basis holds a validated knot vector for one parametric direction.
type basis struct {
	degree int
	knots  []float64
	n      int // number of control points
}

func newBasis(degree, n int, knots []float64) (basis, error) {
	switch {
	case degree < 1:
		return basis{}, fmt.Errorf("degree %d: %w", degree, kernel.ErrDegenerate)
	case n < degree+1:
		return basis{}, fmt.Errorf("%d control points for degree %d: %w", n, degree, kernel.ErrDegenerate)
	case len(knots) != n+degree+1:
		return basis{}, fmt.Errorf("%d knots, want %d: %w", len(knots), n+degree+1, kernel.ErrDegenerate)
	}
	for i := 1; i < len(knots); i++ {
		if knots[i] < knots[i-1] {
			return basis{}, fmt.Errorf("knots decrease at %d: %w", i, kernel.ErrDegenerate)
		}
	}
	b := basis{degree: degree, knots: knots, n: n}
	if t0, t1 := b.domain(); t1-t0 <= 0 {
		return basis{}, fmt.Errorf("empty knot domain: %w", kernel.ErrDegenerate)
	}
	return b, nil
}

func (b basis) domain() (float64, float64) {
	return b.knots[b.degree], b.knots[b.n]
}

// spans returns the number of non-empty knot spans.
func (b basis) spans() int {
	s := 0
	for i := b.degree; i < b.n; i++ {
		if b.knots[i+1] > b.knots[i] {
			s++
		}
	}
	return s
}

// span finds the knot span index containing t.
func (b basis) span(t float64) int {
	p, U := b.degree, b.knots
	if t >= U[b.n] {
		// last non-empty span
		i := b.n - 1
		for i > p && U[i] == U[i+1] {
			i--
		}
		return i
	}
	if t <= U[p] {
		i := p
		for i < b.n-1 && U[i] == U[i+1] {
			i++
		}
		return i
	}
	lo, hi := p, b.n
	mid := (lo + hi) / 2
	for t < U[mid] || t >= U[mid+1] {
		if t < U[mid] {
			hi = mid
		} else {
			lo = mid
		}
		mid = (lo + hi) / 2
	}
	return mid
}

// funcs returns the degree+1 non-zero basis functions at t in span i.
func (b basis) funcs(i int, t float64) []float64 {
	p, U := b.degree, b.knots
	N := make([]float64, p+1)
	left := make([]float64, p+1)
	right := make([]float64, p+1)
	N[0] = 1
	for j := 1; j <= p; j++ {
		left[j] = t - U[i+1-j]
		right[j] = U[i+j] - t
		saved := 0.0
		for r := 0; r < j; r++ {
			den := right[r+1] + left[j-r]
			tmp := 0.0
			if den != 0 {
				tmp = N[r] / den
			}
			N[r] = saved + right[r+1]*tmp
			saved = left[j-r] * tmp
		}
		N[j] = saved
	}
	return N
}

// nurbsCurve is a (rational) B-spline curve.
type nurbsCurve struct {
	k       *SdfxKernel
	b       basis
	ctrl    []kernel.Vec3
	weights []float64
}

func (k *SdfxKernel) NURBSCurve(degree int, ctrl []kernel.Vec3, weights, knots []float64) (kernel.Curve, error) {
	if len(ctrl) < 2 {
		return nil, fmt.Errorf("nurbs curve: %d control points: %w", len(ctrl), kernel.ErrDegenerate)
	}
	b, err := newBasis(degree, len(ctrl), knots)
	if err != nil {
		return nil, fmt.Errorf("nurbs curve: %w", err)
	}
	if err := checkWeights(weights, len(ctrl)); err != nil {
		return nil, fmt.Errorf("nurbs curve: %w", err)
	}
	return &nurbsCurve{k: k, b: b, ctrl: ctrl, weights: weights}, nil
}

func checkWeights(w []float64, n int) error {
	if w == nil {
		return nil
	}
	if len(w) != n {
		return fmt.Errorf("%d weights for %d control points: %w", len(w), n, kernel.ErrDegenerate)
	}
	for i, x := range w {
		if x <= 0 || math.IsNaN(x) {
			return fmt.Errorf("weight %d is %g: %w", i, x, kernel.ErrDegenerate)
		}
	}
	return nil
}

func (c *nurbsCurve) Domain() (float64, float64) { return c.b.domain() }

func (c *nurbsCurve) Point(t float64) kernel.Vec3 {
	t0, t1 := c.b.domain()
	t = math.Max(t0, math.Min(t1, t))
	i := c.b.span(t)
	N := c.b.funcs(i, t)
	var p kernel.Vec3
	w := 0.0
	for j := 0; j <= c.b.degree; j++ {
		k := i - c.b.degree + j
		wk := 1.0
		if c.weights != nil {
			wk = c.weights[k]
		}
		p = p.Add(c.ctrl[k].Scale(N[j] * wk))
		w += N[j] * wk
	}
	if w == 0 {
		return p
	}
	return p.Scale(1 / w)
}

func (c *nurbsCurve) Closed() bool {
	t0, t1 := c.b.domain()
	return c.Point(t0).Near(c.Point(t1), c.k.tol)
}

func (c *nurbsCurve) Normal() (kernel.Vec3, bool) {
	n := kernel.Newell(c.ctrl)
	if n.Len() < 1e-12 || !planar(c.ctrl, n.Unit(), c.k.tol) {
		return kernel.Vec3{}, false
	}
	return n.Unit(), true
}

func (c *nurbsCurve) Segments(t0, t1 float64) int {
	d0, d1 := c.b.domain()
	per := c.b.spans() * max(4, 2*c.b.degree)
	return int(math.Ceil(math.Abs(t1-t0) / (d1 - d0) * float64(per)))
}

func (c *nurbsCurve) Project(p kernel.Vec3) float64 {
	return projectBySampling(c, p, c.b.spans()*16)
}

// projectBySampling finds the nearest parameter by dense sampling followed
// by a golden-section refinement around the best sample.
func projectBySampling(c kernel.Curve, p kernel.Vec3, n int) float64 {
	t0, t1 := c.Domain()
	if n < 16 {
		n = 16
	}
	step := (t1 - t0) / float64(n)
	best, bestD := t0, math.Inf(1)
	for i := 0; i <= n; i++ {
		t := t0 + step*float64(i)
		if d := c.Point(t).Dist(p); d < bestD {
			best, bestD = t, d
		}
	}
	a, b := math.Max(t0, best-step), math.Min(t1, best+step)
	const g = 0.6180339887498949
	x1, x2 := b-g*(b-a), a+g*(b-a)
	f1, f2 := c.Point(x1).Dist(p), c.Point(x2).Dist(p)
	for i := 0; i < 40; i++ {
		if f1 < f2 {
			b, x2, f2 = x2, x1, f1
			x1 = b - g*(b-a)
			f1 = c.Point(x1).Dist(p)
		} else {
			a, x1, f1 = x1, x2, f2
			x2 = a + g*(b-a)
			f2 = c.Point(x2).Dist(p)
		}
	}
	t := (a + b) / 2
	if c.Point(t).Dist(p) > bestD {
		return best
	}
	return t
}

// nurbsSurface is a (rational) tensor-product B-spline surface.
type nurbsSurface struct {
	u, v    basis
	ctrl    [][]kernel.Vec3
	weights [][]float64
}

func (k *SdfxKernel) NURBSSurface(uDegree, vDegree int, ctrl [][]kernel.Vec3, weights [][]float64, uKnots, vKnots []float64) (kernel.Surface, error) {
	if len(ctrl) < 2 || len(ctrl[0]) < 2 {
		return nil, fmt.Errorf("nurbs surface: control grid too small: %w", kernel.ErrDegenerate)
	}
	for i, row := range ctrl {
		if len(row) != len(ctrl[0]) {
			return nil, fmt.Errorf("nurbs surface: ragged control row %d: %w", i, kernel.ErrDegenerate)
		}
	}
	ub, err := newBasis(uDegree, len(ctrl), uKnots)
	if err != nil {
		return nil, fmt.Errorf("nurbs surface u: %w", err)
	}
	vb, err := newBasis(vDegree, len(ctrl[0]), vKnots)
	if err != nil {
		return nil, fmt.Errorf("nurbs surface v: %w", err)
	}
	if weights != nil {
		if len(weights) != len(ctrl) {
			return nil, fmt.Errorf("nurbs surface: %d weight rows for %d control rows: %w", len(weights), len(ctrl), kernel.ErrDegenerate)
		}
		for _, row := range weights {
			if err := checkWeights(row, len(ctrl[0])); err != nil {
				return nil, fmt.Errorf("nurbs surface: %w", err)
			}
		}
	}
	return &nurbsSurface{u: ub, v: vb, ctrl: ctrl, weights: weights}, nil
}

func (s *nurbsSurface) Point(u, v float64) kernel.Vec3 {
	u0, u1 := s.u.domain()
	v0, v1 := s.v.domain()
	u = math.Max(u0, math.Min(u1, u))
	v = math.Max(v0, math.Min(v1, v))
	iu, iv := s.u.span(u), s.v.span(v)
	Nu, Nv := s.u.funcs(iu, u), s.v.funcs(iv, v)
	var p kernel.Vec3
	w := 0.0
	for a := 0; a <= s.u.degree; a++ {
		for b := 0; b <= s.v.degree; b++ {
			i, j := iu-s.u.degree+a, iv-s.v.degree+b
			wij := 1.0
			if s.weights != nil {
				wij = s.weights[i][j]
			}
			f := Nu[a] * Nv[b] * wij
			p = p.Add(s.ctrl[i][j].Scale(f))
			w += f
		}
	}
	if w == 0 {
		return p
	}
	return p.Scale(1 / w)
}

func (s *nurbsSurface) Planar() (kernel.Frame, bool) { return kernel.Frame{}, false }
