package sdfx

import (
	"math"

	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface checks.
var (
	_ sdf.SDF3 = (*polySDF)(nil)
	_ sdf.SDF3 = (*transformed)(nil)
)

// polySDF evaluates the signed distance to a closed polyhedron: the
// unsigned distance to the nearest face, negative inside.
type polySDF struct {
	p *polyhedron
}

// Evaluate returns the signed distance from p to the polyhedron boundary.
func (s *polySDF) Evaluate(p v3.Vec) float64 {
	q := unvec(p)
	d := math.Inf(1)
	for _, f := range s.p.faces {
		d = math.Min(d, f.distance(q))
	}
	if s.p.contains(q) {
		return -d
	}
	return d
}

// BoundingBox returns the polyhedron bounds.
func (s *polySDF) BoundingBox() sdf.Box3 {
	min, max := s.p.bounds()
	return sdf.Box3{
		Min: v3.Vec{X: min[0], Y: min[1], Z: min[2]},
		Max: v3.Vec{X: max[0], Y: max[1], Z: max[2]},
	}
}

// transformed applies an affine transform to an SDF3. Distances are scaled
// by the transform's smallest column length, which keeps them a lower bound.
type transformed struct {
	s     sdf.SDF3
	t     kernel.Transform
	inv   kernel.Transform
	scale float64
	bb    sdf.Box3
}

func newTransformed(s sdf.SDF3, t kernel.Transform) sdf.SDF3 {
	inv, err := t.Inverse()
	if err != nil {
		return s
	}
	bb := s.BoundingBox()
	lo := kernel.V(math.Inf(1), math.Inf(1), math.Inf(1))
	hi := lo.Neg()
	for i := 0; i < 8; i++ {
		c := kernel.V(bb.Min.X, bb.Min.Y, bb.Min.Z)
		if i&1 != 0 {
			c.X = bb.Max.X
		}
		if i&2 != 0 {
			c.Y = bb.Max.Y
		}
		if i&4 != 0 {
			c.Z = bb.Max.Z
		}
		w := t.Apply(c)
		lo = kernel.V(math.Min(lo.X, w.X), math.Min(lo.Y, w.Y), math.Min(lo.Z, w.Z))
		hi = kernel.V(math.Max(hi.X, w.X), math.Max(hi.Y, w.Y), math.Max(hi.Z, w.Z))
	}
	return &transformed{
		s:     s,
		t:     t,
		inv:   inv,
		scale: t.MinScale(),
		bb:    sdf.Box3{Min: vec(lo), Max: vec(hi)},
	}
}

func (s *transformed) Evaluate(p v3.Vec) float64 {
	return s.s.Evaluate(vec(s.inv.Apply(unvec(p)))) * s.scale
}

func (s *transformed) BoundingBox() sdf.Box3 { return s.bb }
