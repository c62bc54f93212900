package sdfx

import (
	"math"
	"sort"

	"github.com/chazu/ifcgeom/pkg/kernel"
)

// rayDir is the direction used for inside tests. It is deliberately not
// aligned with any axis so rays rarely graze edges of axis-aligned faces.
var rayDir = kernel.V(0.5773, 0.5779, 0.5767).Unit()

// face is a planar polygon with optional holes. loops[0] is the outer
// boundary, counter-clockwise seen from normal.
type face struct {
	loops  [][]kernel.Vec3
	normal kernel.Vec3
	origin kernel.Vec3
	u, v   kernel.Vec3
	lo, hi kernel.Vec3
}

func newFace(loops [][]kernel.Vec3) (*face, bool) {
	if len(loops) == 0 || len(loops[0]) < 3 {
		return nil, false
	}
	n := kernel.Newell(loops[0])
	if n.Len() < 1e-18 {
		return nil, false
	}
	f := &face{loops: loops, normal: n.Unit(), origin: loops[0][0]}
	f.u = f.normal.Perpendicular()
	f.v = f.normal.Cross(f.u)
	f.lo = kernel.V(math.Inf(1), math.Inf(1), math.Inf(1))
	f.hi = f.lo.Neg()
	for _, l := range loops {
		for _, p := range l {
			f.lo = kernel.V(math.Min(f.lo.X, p.X), math.Min(f.lo.Y, p.Y), math.Min(f.lo.Z, p.Z))
			f.hi = kernel.V(math.Max(f.hi.X, p.X), math.Max(f.hi.Y, p.Y), math.Max(f.hi.Z, p.Z))
		}
	}
	return f, true
}

func (f *face) flipped() *face {
	loops := make([][]kernel.Vec3, len(f.loops))
	for i, l := range f.loops {
		loops[i] = reversed(l)
	}
	g, _ := newFace(loops)
	return g
}

func (f *face) to2D(p kernel.Vec3) [2]float64 {
	d := p.Sub(f.origin)
	return [2]float64{d.Dot(f.u), d.Dot(f.v)}
}

// inside reports whether the in-plane point q lies inside the face,
// counting crossings over all loops so holes are excluded.
func (f *face) inside(q [2]float64) bool {
	in := false
	for _, l := range f.loops {
		for i, j := 0, len(l)-1; i < len(l); j, i = i, i+1 {
			a, b := f.to2D(l[i]), f.to2D(l[j])
			if (a[1] > q[1]) != (b[1] > q[1]) {
				x := a[0] + (q[1]-a[1])*(b[0]-a[0])/(b[1]-a[1])
				if q[0] < x {
					in = !in
				}
			}
		}
	}
	return in
}

// distance returns the unsigned distance from p to the face.
func (f *face) distance(p kernel.Vec3) float64 {
	h := p.Sub(f.origin).Dot(f.normal)
	if f.inside(f.to2D(p.Sub(f.normal.Scale(h)))) {
		return math.Abs(h)
	}
	d := math.Inf(1)
	for _, l := range f.loops {
		for i := range l {
			d = math.Min(d, segmentDistance(p, l[i], l[(i+1)%len(l)]))
		}
	}
	return d
}

// hit reports whether the ray from p along rayDir crosses the face.
func (f *face) hit(p kernel.Vec3) bool {
	den := f.normal.Dot(rayDir)
	if math.Abs(den) < 1e-12 {
		return false
	}
	t := f.normal.Dot(f.origin.Sub(p)) / den
	if t <= 0 {
		return false
	}
	return f.inside(f.to2D(p.Add(rayDir.Scale(t))))
}

// triangles triangulates the face, holes included.
func (f *face) triangles() [][3]kernel.Vec3 {
	var pts []kernel.Vec3
	var flat [][2]float64
	rings := make([][]int, len(f.loops))
	for i, l := range f.loops {
		for _, p := range l {
			rings[i] = append(rings[i], len(pts))
			pts = append(pts, p)
			flat = append(flat, f.to2D(p))
		}
	}
	var out [][3]kernel.Vec3
	for _, t := range triangulate(flat, rings) {
		out = append(out, [3]kernel.Vec3{pts[t[0]], pts[t[1]], pts[t[2]]})
	}
	return out
}

// polyhedron is a set of planar faces with outward normals.
type polyhedron struct {
	faces  []*face
	lo, hi kernel.Vec3
}

func newPolyhedron(faces []*face) *polyhedron {
	p := &polyhedron{faces: faces}
	p.lo = kernel.V(math.Inf(1), math.Inf(1), math.Inf(1))
	p.hi = p.lo.Neg()
	for _, f := range faces {
		p.lo = kernel.V(math.Min(p.lo.X, f.lo.X), math.Min(p.lo.Y, f.lo.Y), math.Min(p.lo.Z, f.lo.Z))
		p.hi = kernel.V(math.Max(p.hi.X, f.hi.X), math.Max(p.hi.Y, f.hi.Y), math.Max(p.hi.Z, f.hi.Z))
	}
	return p
}

func (p *polyhedron) bounds() (min, max [3]float64) {
	return p.lo.Array(), p.hi.Array()
}

// contains reports whether q is inside the (closed) polyhedron by ray parity.
func (p *polyhedron) contains(q kernel.Vec3) bool {
	if q.X < p.lo.X || q.Y < p.lo.Y || q.Z < p.lo.Z || q.X > p.hi.X || q.Y > p.hi.Y || q.Z > p.hi.Z {
		return false
	}
	n := 0
	for _, f := range p.faces {
		if f.hit(q) {
			n++
		}
	}
	return n%2 == 1
}

// volume returns the signed enclosed volume; positive when normals point out.
func (p *polyhedron) volume() float64 {
	var v float64
	for _, f := range p.faces {
		for _, t := range f.triangles() {
			v += t[0].Dot(t[1].Cross(t[2]))
		}
	}
	return v / 6
}

func (p *polyhedron) flipped() *polyhedron {
	faces := make([]*face, 0, len(p.faces))
	for _, f := range p.faces {
		if g := f.flipped(); g != nil {
			faces = append(faces, g)
		}
	}
	return newPolyhedron(faces)
}

// transform maps every vertex; mirroring transforms reverse the loops to
// keep normals outward.
func (p *polyhedron) transform(t kernel.Transform) *polyhedron {
	mirror := t.Det() < 0
	faces := make([]*face, 0, len(p.faces))
	for _, f := range p.faces {
		loops := make([][]kernel.Vec3, len(f.loops))
		for i, l := range f.loops {
			m := make([]kernel.Vec3, len(l))
			for j, q := range l {
				m[j] = t.Apply(q)
			}
			if mirror {
				m = reversed(m)
			}
			loops[i] = m
		}
		if g, ok := newFace(loops); ok {
			faces = append(faces, g)
		}
	}
	return newPolyhedron(faces)
}

func (p *polyhedron) mesh() *kernel.Mesh {
	m := &kernel.Mesh{}
	for _, f := range p.faces {
		for _, t := range f.triangles() {
			m.AddTriangle(t[0], t[1], t[2])
		}
	}
	return m
}

// coincidentFaces reports whether a face of a lies on a face of b with
// overlapping extent.
func coincidentFaces(a, b *polyhedron, tol float64) bool {
	for _, fa := range a.faces {
		for _, fb := range b.faces {
			if math.Abs(fa.normal.Dot(fb.normal)) < 1-1e-9 {
				continue
			}
			if math.Abs(fb.origin.Sub(fa.origin).Dot(fa.normal)) > tol {
				continue
			}
			if rectOverlap(fa, fb, tol) {
				return true
			}
		}
	}
	return false
}

// rectOverlap compares the in-plane bounding rectangles of two coplanar faces.
func rectOverlap(fa, fb *face, tol float64) bool {
	alo, ahi := rect(fa, fa)
	blo, bhi := rect(fa, fb)
	for i := 0; i < 2; i++ {
		if math.Min(ahi[i], bhi[i])-math.Max(alo[i], blo[i]) <= tol {
			return false
		}
	}
	return true
}

func rect(frame, f *face) (lo, hi [2]float64) {
	lo = [2]float64{math.Inf(1), math.Inf(1)}
	hi = [2]float64{math.Inf(-1), math.Inf(-1)}
	for _, p := range f.loops[0] {
		q := frame.to2D(p)
		for i := 0; i < 2; i++ {
			lo[i] = math.Min(lo[i], q[i])
			hi[i] = math.Max(hi[i], q[i])
		}
	}
	return lo, hi
}

// boxPoly returns the axis-aligned box between lo and hi.
func boxPoly(lo, hi kernel.Vec3) *polyhedron {
	c := func(i int) kernel.Vec3 {
		p := lo
		if i&1 != 0 {
			p.X = hi.X
		}
		if i&2 != 0 {
			p.Y = hi.Y
		}
		if i&4 != 0 {
			p.Z = hi.Z
		}
		return p
	}
	quads := [6][4]int{
		{0, 2, 3, 1}, // -Z
		{4, 5, 7, 6}, // +Z
		{0, 1, 5, 4}, // -Y
		{2, 6, 7, 3}, // +Y
		{0, 4, 6, 2}, // -X
		{1, 3, 7, 5}, // +X
	}
	faces := make([]*face, 0, 6)
	for _, q := range quads {
		f, _ := newFace([][]kernel.Vec3{{c(q[0]), c(q[1]), c(q[2]), c(q[3])}})
		faces = append(faces, f)
	}
	return newPolyhedron(faces)
}

func reversed(l []kernel.Vec3) []kernel.Vec3 {
	r := make([]kernel.Vec3, len(l))
	for i, p := range l {
		r[len(l)-1-i] = p
	}
	return r
}

func segmentDistance(p, a, b kernel.Vec3) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Dist(a)
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l2))
	return p.Dist(a.Add(ab.Scale(t)))
}

// ----------------------------------------------------------------------------
// Triangulation
// ----------------------------------------------------------------------------

func cross2(o, a, b [2]float64) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

func area2(pts [][2]float64, ring []int) float64 {
	var s float64
	for i := range ring {
		a, b := pts[ring[i]], pts[ring[(i+1)%len(ring)]]
		s += a[0]*b[1] - b[0]*a[1]
	}
	return s / 2
}

func reverseInts(r []int) []int {
	out := make([]int, len(r))
	for i, v := range r {
		out[len(r)-1-i] = v
	}
	return out
}

// segmentsCross reports a proper crossing of segments ab and cd.
func segmentsCross(a, b, c, d [2]float64) bool {
	d1, d2 := cross2(a, b, c), cross2(a, b, d)
	d3, d4 := cross2(c, d, a), cross2(c, d, b)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// triangulate ear-clips a polygon given as an outer ring and hole rings of
// indices into pts. Holes are first bridged into the outer ring.
func triangulate(pts [][2]float64, rings [][]int) [][3]int {
	if len(rings) == 0 || len(rings[0]) < 3 {
		return nil
	}
	ring := rings[0]
	if area2(pts, ring) < 0 {
		ring = reverseInts(ring)
	}
	holes := make([][]int, 0, len(rings)-1)
	for _, h := range rings[1:] {
		if len(h) < 3 {
			continue
		}
		if area2(pts, h) > 0 {
			h = reverseInts(h)
		}
		holes = append(holes, h)
	}
	maxX := func(h []int) (int, float64) {
		best, x := 0, math.Inf(-1)
		for i, idx := range h {
			if pts[idx][0] > x {
				best, x = i, pts[idx][0]
			}
		}
		return best, x
	}
	sort.SliceStable(holes, func(i, j int) bool {
		_, xi := maxX(holes[i])
		_, xj := maxX(holes[j])
		return xi > xj
	})
	for hi, h := range holes {
		mi, _ := maxX(h)
		ring = bridge(pts, ring, h, mi, holes[hi:])
	}
	return earClip(pts, ring)
}

// bridge splices hole h into ring through the nearest visible ring vertex.
func bridge(pts [][2]float64, ring, h []int, mi int, pending [][]int) []int {
	m := pts[h[mi]]
	order := make([]int, len(ring))
	for i := range order {
		order[i] = i
	}
	dist := func(i int) float64 {
		p := pts[ring[i]]
		return math.Hypot(p[0]-m[0], p[1]-m[1])
	}
	sort.SliceStable(order, func(a, b int) bool { return dist(order[a]) < dist(order[b]) })

	visible := func(o [2]float64) bool {
		check := func(r []int) bool {
			for i := range r {
				a, b := pts[r[i]], pts[r[(i+1)%len(r)]]
				if segmentsCross(m, o, a, b) {
					return false
				}
			}
			return true
		}
		if !check(ring) {
			return false
		}
		for _, r := range pending {
			if !check(r) {
				return false
			}
		}
		return true
	}
	best := order[0]
	for _, j := range order {
		if visible(pts[ring[j]]) {
			best = j
			break
		}
	}
	out := make([]int, 0, len(ring)+len(h)+2)
	out = append(out, ring[:best+1]...)
	out = append(out, h[mi:]...)
	out = append(out, h[:mi+1]...)
	out = append(out, ring[best:]...)
	return out
}

func earClip(pts [][2]float64, ring []int) [][3]int {
	lo := [2]float64{math.Inf(1), math.Inf(1)}
	hi := [2]float64{math.Inf(-1), math.Inf(-1)}
	for _, i := range ring {
		for k := 0; k < 2; k++ {
			lo[k] = math.Min(lo[k], pts[i][k])
			hi[k] = math.Max(hi[k], pts[i][k])
		}
	}
	size := math.Max(hi[0]-lo[0], hi[1]-lo[1])
	eps := 1e-12 * size * size

	idx := append([]int(nil), ring...)
	var tris [][3]int
	for len(idx) > 3 {
		n := len(idx)
		clipped := false
		for i := 0; i < n; i++ {
			a, b, c := idx[(i+n-1)%n], idx[i], idx[(i+1)%n]
			pa, pb, pc := pts[a], pts[b], pts[c]
			if cross2(pa, pb, pc) <= eps {
				continue
			}
			ear := true
			for _, j := range idx {
				p := pts[j]
				if j == a || j == b || j == c || p == pa || p == pb || p == pc {
					continue
				}
				if cross2(pa, pb, p) >= -eps && cross2(pb, pc, p) >= -eps && cross2(pc, pa, p) >= -eps {
					ear = false
					break
				}
			}
			if ear {
				tris = append(tris, [3]int{a, b, c})
				idx = append(idx[:i], idx[i+1:]...)
				clipped = true
				break
			}
		}
		if clipped {
			continue
		}
		// drop a collinear vertex, or give up with a fan
		removed := false
		for i := 0; i < n; i++ {
			a, b, c := idx[(i+n-1)%n], idx[i], idx[(i+1)%n]
			if math.Abs(cross2(pts[a], pts[b], pts[c])) <= eps {
				idx = append(idx[:i], idx[i+1:]...)
				removed = true
				break
			}
		}
		if !removed {
			for i := 1; i+1 < len(idx); i++ {
				tris = append(tris, [3]int{idx[0], idx[i], idx[i+1]})
			}
			return tris
		}
	}
	if len(idx) == 3 && math.Abs(cross2(pts[idx[0]], pts[idx[1]], pts[idx[2]])) > eps {
		tris = append(tris, [3]int{idx[0], idx[1], idx[2]})
	}
	return tris
}
