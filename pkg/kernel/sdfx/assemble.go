package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/ifcgeom/pkg/kernel"
)

// welder merges points closer than tol into shared vertices.
type welder struct {
	tol   float64
	cells map[[3]int64][]int
	pts   []kernel.Vec3
}

func newWelder(tol float64) *welder {
	return &welder{tol: tol, cells: make(map[[3]int64][]int)}
}

func (w *welder) cell(p kernel.Vec3) [3]int64 {
	return [3]int64{
		int64(math.Floor(p.X / w.tol)),
		int64(math.Floor(p.Y / w.tol)),
		int64(math.Floor(p.Z / w.tol)),
	}
}

// add returns the index of the vertex at p, creating it when needed.
func (w *welder) add(p kernel.Vec3) int {
	c := w.cell(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, i := range w.cells[[3]int64{c[0] + dx, c[1] + dy, c[2] + dz}] {
					if w.pts[i].Dist(p) <= w.tol {
						return i
					}
				}
			}
		}
	}
	i := len(w.pts)
	w.pts = append(w.pts, p)
	w.cells[c] = append(w.cells[c], i)
	return i
}

// cleanLoop drops repeated consecutive vertices and a closing duplicate.
func cleanLoop(l []int) []int {
	out := make([]int, 0, len(l))
	for _, i := range l {
		if len(out) > 0 && out[len(out)-1] == i {
			continue
		}
		out = append(out, i)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

// faceSet accumulates welded faces before they become a polyhedron.
type faceSet struct {
	w     *welder
	faces [][][]int // face -> loops -> vertex indices
}

func newFaceSet(tol float64) *faceSet {
	return &faceSet{w: newWelder(tol)}
}

// addFace welds and cleans the loops of one face. Inner loops are wound
// against the outer one. Loops collapsing below three vertices are
// dropped; the face is dropped when its outer loop is.
// Faces that are not planar within tol are split into a triangle fan.
func (fs *faceSet) addFace(loops [][]kernel.Vec3) bool {
	var idx [][]int
	for i, l := range loops {
		welded := make([]int, len(l))
		for j, p := range l {
			welded[j] = fs.w.add(p)
		}
		welded = cleanLoop(welded)
		if len(welded) < 3 {
			if i == 0 {
				return false
			}
			continue
		}
		idx = append(idx, welded)
	}
	if len(idx) == 0 {
		return false
	}
	pts := fs.points(idx[0])
	n := kernel.Newell(pts)
	if n.Len() < fs.w.tol*fs.w.tol {
		return false
	}
	for i := 1; i < len(idx); i++ {
		if kernel.Newell(fs.points(idx[i])).Dot(n) > 0 {
			idx[i] = reverseInts(idx[i])
		}
	}
	if len(idx) == 1 && !planar(pts, n.Unit(), fs.w.tol) {
		c := fs.w.add(kernel.Centroid(pts))
		for i := range idx[0] {
			tri := []int{idx[0][i], idx[0][(i+1)%len(idx[0])], c}
			fs.faces = append(fs.faces, [][]int{tri})
		}
		return true
	}
	fs.faces = append(fs.faces, idx)
	return true
}

func (fs *faceSet) points(l []int) []kernel.Vec3 {
	out := make([]kernel.Vec3, len(l))
	for i, v := range l {
		out[i] = fs.w.pts[v]
	}
	return out
}

func planar(pts []kernel.Vec3, n kernel.Vec3, tol float64) bool {
	c := kernel.Centroid(pts)
	for _, p := range pts {
		if math.Abs(p.Sub(c).Dot(n)) > tol {
			return false
		}
	}
	return true
}

type edgeUse struct {
	face    int
	forward bool // traversed from lower to higher vertex index
}

func (fs *faceSet) edges() map[[2]int][]edgeUse {
	m := make(map[[2]int][]edgeUse)
	for fi, loops := range fs.faces {
		for _, l := range loops {
			for i := range l {
				a, b := l[i], l[(i+1)%len(l)]
				key := [2]int{a, b}
				if a > b {
					key = [2]int{b, a}
				}
				m[key] = append(m[key], edgeUse{face: fi, forward: a < b})
			}
		}
	}
	return m
}

// closed reports whether every edge is shared by exactly two faces.
func (fs *faceSet) closed(edges map[[2]int][]edgeUse) bool {
	for _, uses := range edges {
		if len(uses) != 2 {
			return false
		}
	}
	return len(edges) > 0
}

// neighbour is an adjacent face; same is set when both faces traverse the
// shared edge in the same direction.
type neighbour struct {
	other int
	same  bool
}

// orient makes neighbouring faces traverse shared edges in opposite
// directions, flipping faces breadth-first from face 0 of each component.
func (fs *faceSet) orient(edges map[[2]int][]edgeUse) {
	adj := make([][]neighbour, len(fs.faces))
	for _, uses := range edges {
		if len(uses) != 2 || uses[0].face == uses[1].face {
			continue
		}
		a, b := uses[0], uses[1]
		same := a.forward == b.forward
		adj[a.face] = append(adj[a.face], neighbour{b.face, same})
		adj[b.face] = append(adj[b.face], neighbour{a.face, same})
	}
	flip := make([]bool, len(fs.faces))
	seen := make([]bool, len(fs.faces))
	for start := range fs.faces {
		if seen[start] {
			continue
		}
		seen[start] = true
		queue := []int{start}
		for len(queue) > 0 {
			f := queue[0]
			queue = queue[1:]
			for _, n := range adj[f] {
				if seen[n.other] {
					continue
				}
				seen[n.other] = true
				flip[n.other] = flip[f] != n.same
				queue = append(queue, n.other)
			}
		}
	}
	for i, f := range flip {
		if f {
			for j, l := range fs.faces[i] {
				fs.faces[i][j] = reverseInts(l)
			}
		}
	}
}

func (fs *faceSet) polyhedron() *polyhedron {
	faces := make([]*face, 0, len(fs.faces))
	for _, loops := range fs.faces {
		pl := make([][]kernel.Vec3, len(loops))
		for i, l := range loops {
			pl[i] = fs.points(l)
		}
		if f, ok := newFace(pl); ok {
			faces = append(faces, f)
		}
	}
	return newPolyhedron(faces)
}

// solid closes the face set into an outward-oriented polyhedron.
func (fs *faceSet) solid() (*polyhedron, error) {
	if len(fs.faces) == 0 {
		return nil, fmt.Errorf("empty face set: %w", kernel.ErrDegenerate)
	}
	edges := fs.edges()
	if !fs.closed(edges) {
		return nil, kernel.ErrNotClosed
	}
	fs.orient(edges)
	p := fs.polyhedron()
	v := p.volume()
	tol := fs.w.tol
	if math.Abs(v) <= tol*tol*tol {
		return nil, fmt.Errorf("zero volume: %w", kernel.ErrDegenerate)
	}
	if v < 0 {
		p = p.flipped()
	}
	return p, nil
}

// shell returns the faces as-is with their closedness.
func (fs *faceSet) shell() (*polyhedron, bool, error) {
	if len(fs.faces) == 0 {
		return nil, false, fmt.Errorf("empty face set: %w", kernel.ErrDegenerate)
	}
	edges := fs.edges()
	return fs.polyhedron(), fs.closed(edges), nil
}
