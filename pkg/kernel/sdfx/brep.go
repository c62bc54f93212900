package sdfx

import (
	"errors"
	"fmt"

	"github.com/chazu/ifcgeom/pkg/kernel"
)

var _ kernel.BrepBuilder = (*brepBuilder)(nil)

// errNoFace reports a face or loop call outside its enclosing scope.
var errNoFace = errors.New("no face in progress")

// brepBuilder collects faces into a faceSet. A face is only added to the
// set by a successful StopFace.
type brepBuilder struct {
	k      *SdfxKernel
	target kernel.Target
	set    *faceSet
	count  int

	face   [][]kernel.Vec3 // loops of the face in progress
	inFace bool
	bad    bool // a loop of the current face failed
	loop   []kernel.Vec3
	outer  bool
	inLoop bool

	corners []kernel.Vec3   // edge start points of the current loop
	arcs    map[int]float64 // sampled length of curved edges by corner
}

// NewBrepBuilder returns a builder producing polyhedral solids and shells.
func (k *SdfxKernel) NewBrepBuilder() kernel.BrepBuilder {
	return &brepBuilder{k: k, set: newFaceSet(k.tol)}
}

func (b *brepBuilder) StartFaceSet(target kernel.Target) {
	b.target = target
	b.set = newFaceSet(b.k.tol)
	b.count = 0
	b.AbortFace()
}

// StartFace begins a face. The surface only matters for curved faces, which
// are approximated by their sampled boundary.
func (b *brepBuilder) StartFace(_ kernel.Surface, _ bool) {
	b.AbortFace()
	b.inFace = true
}

func (b *brepBuilder) StartLoop(outer bool) {
	b.resetLoop()
	b.outer = outer
	b.inLoop = true
}

func (b *brepBuilder) resetLoop() {
	b.loop = b.loop[:0]
	b.corners = b.corners[:0]
	b.arcs = nil
}

func (b *brepBuilder) AddPoint(p kernel.Vec3) {
	b.loop = append(b.loop, p)
	b.corners = append(b.corners, p)
}

func (b *brepBuilder) AddEdge(c kernel.Curve, from, to kernel.Vec3, sameSense bool) {
	b.corners = append(b.corners, from)
	if c == nil {
		b.loop = append(b.loop, from)
		return
	}
	var pts []kernel.Vec3
	if sameSense {
		pts = kernel.Sample(c, c.Project(from), c.Project(to))
	} else {
		pts = reversed(kernel.Sample(c, c.Project(to), c.Project(from)))
	}
	if len(pts) == 0 {
		b.loop = append(b.loop, from)
		return
	}
	var length float64
	for i := 1; i < len(pts); i++ {
		length += pts[i].Dist(pts[i-1])
	}
	if b.arcs == nil {
		b.arcs = make(map[int]float64)
	}
	b.arcs[len(b.corners)-1] = length
	// the end point belongs to the next edge
	b.loop = append(b.loop, from)
	b.loop = append(b.loop, pts[1:len(pts)-1]...)
}

// shortEdge returns the length of the first edge of the current loop that
// is longer than the vertex tolerance but shorter than the short-edge
// length. Shorter edges are welded away by dedupe.
func (b *brepBuilder) shortEdge() (float64, bool) {
	if b.k.shortEdge <= 0 {
		return 0, false
	}
	n := len(b.corners)
	for i, p := range b.corners {
		l, ok := b.arcs[i]
		if !ok {
			l = p.Dist(b.corners[(i+1)%n])
		}
		if l > b.k.tol && l < b.k.shortEdge {
			return l, true
		}
	}
	return 0, false
}

// StopLoop closes the current loop. A loop with fewer than three distinct
// vertices, or with an edge below the short-edge length, fails and poisons
// the face.
func (b *brepBuilder) StopLoop() error {
	if !b.inFace || !b.inLoop {
		return fmt.Errorf("stop loop: %w", errNoFace)
	}
	b.inLoop = false
	if l, short := b.shortEdge(); short {
		b.bad = true
		return fmt.Errorf("edge of length %g is shorter than %g: %w", l, b.k.shortEdge, kernel.ErrDegenerate)
	}
	pts := dedupe(b.loop, b.k.tol)
	if len(pts) < 3 {
		b.bad = true
		return fmt.Errorf("loop has %d distinct vertices: %w", len(pts), kernel.ErrDegenerate)
	}
	if b.outer {
		b.face = append([][]kernel.Vec3{pts}, b.face...)
	} else {
		b.face = append(b.face, pts)
	}
	return nil
}

// StopFace commits the face in progress.
func (b *brepBuilder) StopFace() error {
	if !b.inFace {
		return fmt.Errorf("stop face: %w", errNoFace)
	}
	defer b.AbortFace()
	if b.bad || len(b.face) == 0 {
		return fmt.Errorf("face has no valid loops: %w", kernel.ErrDegenerate)
	}
	if !b.set.addFace(b.face) {
		return fmt.Errorf("face collapses after welding: %w", kernel.ErrDegenerate)
	}
	b.count++
	return nil
}

// AbortFace discards the face in progress, if any.
func (b *brepBuilder) AbortFace() {
	b.face = nil
	b.inFace = false
	b.bad = false
	b.resetLoop()
	b.inLoop = false
}

// FaceCount returns the number of committed faces.
func (b *brepBuilder) FaceCount() int { return b.count }

// StopFaceSet finishes the set according to its target.
func (b *brepBuilder) StopFaceSet() (kernel.Shape, error) {
	b.AbortFace()
	switch b.target {
	case kernel.TargetSolid:
		p, err := b.set.solid()
		if err != nil {
			return nil, err
		}
		return fromPoly(p, b.count), nil
	default:
		p, closed, err := b.set.shell()
		if err != nil {
			return nil, err
		}
		return &sdfxShell{poly: p, faces: b.count, closed: closed}, nil
	}
}

// dedupe removes consecutive near-duplicates and a closing duplicate.
func dedupe(pts []kernel.Vec3, tol float64) []kernel.Vec3 {
	out := make([]kernel.Vec3, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && out[len(out)-1].Near(p, tol) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0].Near(out[len(out)-1], tol) {
		out = out[:len(out)-1]
	}
	return out
}
