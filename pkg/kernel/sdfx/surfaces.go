package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/ifcgeom/pkg/kernel"
)

var (
	_ kernel.Surface = (*plane)(nil)
	_ kernel.Surface = (*extrudedSurface)(nil)
	_ kernel.Surface = (*revolvedSurface)(nil)
	_ kernel.Surface = (*nurbsSurface)(nil)
)

type plane struct {
	f kernel.Frame
}

func (k *SdfxKernel) Plane(f kernel.Frame) kernel.Surface { return &plane{f: f} }

func (s *plane) Point(u, v float64) kernel.Vec3 { return s.f.ToWorld(kernel.V(u, v, 0)) }
func (s *plane) Planar() (kernel.Frame, bool)   { return s.f, true }

// extrudedSurface sweeps a profile curve along a direction; v is the
// distance along dir.
type extrudedSurface struct {
	profile kernel.Curve
	dir     kernel.Vec3
	angTol  float64
}

func (k *SdfxKernel) ExtrudedSurface(profile kernel.Curve, dir kernel.Vec3) (kernel.Surface, error) {
	if profile == nil {
		return nil, fmt.Errorf("extruded surface: nil profile: %w", kernel.ErrDegenerate)
	}
	if dir.Len() < 1e-12 {
		return nil, fmt.Errorf("extruded surface: zero direction: %w", kernel.ErrDegenerate)
	}
	return &extrudedSurface{profile: profile, dir: dir.Unit(), angTol: k.angTol}, nil
}

func (s *extrudedSurface) Point(u, v float64) kernel.Vec3 {
	return s.profile.Point(u).Add(s.dir.Scale(v))
}

// Planar reports a plane when the profile is a straight line.
func (s *extrudedSurface) Planar() (kernel.Frame, bool) {
	l, ok := s.profile.(*line)
	if !ok || l.dir.Parallel(s.dir, s.angTol) {
		return kernel.Frame{}, false
	}
	f, err := kernel.NewFrame(l.origin, l.dir.Cross(s.dir), l.dir)
	return f, err == nil
}

// revolvedSurface rotates a profile curve about an axis; u is the rotation
// angle and v the profile parameter.
type revolvedSurface struct {
	profile kernel.Curve
	origin  kernel.Vec3
	axis    kernel.Vec3
}

// RevolvedSurface rejects profiles that cross the axis of revolution.
func (k *SdfxKernel) RevolvedSurface(profile kernel.Curve, axisOrigin, axisDir kernel.Vec3) (kernel.Surface, error) {
	if profile == nil {
		return nil, fmt.Errorf("revolved surface: nil profile: %w", kernel.ErrDegenerate)
	}
	if axisDir.Len() < 1e-12 {
		return nil, fmt.Errorf("revolved surface: zero axis: %w", kernel.ErrDegenerate)
	}
	axis := axisDir.Unit()
	t0, t1 := profile.Domain()
	if t1-t0 > 2*lineExtent-1 {
		// unbounded lines: check a finite stretch around the origin
		t0, t1 = -1, 1
	}
	if kernel.CrossesAxis(sampleOpen(profile, t0, t1), axisOrigin, axis, k.tol) {
		return nil, fmt.Errorf("revolved surface: profile crosses the axis: %w", kernel.ErrDegenerate)
	}
	return &revolvedSurface{profile: profile, origin: axisOrigin, axis: axis}, nil
}

func (s *revolvedSurface) Point(u, v float64) kernel.Vec3 {
	p := s.profile.Point(v).Sub(s.origin)
	return kernel.Rotation(s.axis, u).Apply(p).Add(s.origin)
}

func (s *revolvedSurface) Planar() (kernel.Frame, bool) { return kernel.Frame{}, false }

// ----------------------------------------------------------------------------
// Swept solids
// ----------------------------------------------------------------------------

// profileLoops validates a profile and returns its loops on the XY plane,
// holes wound against the outer boundary.
func (k *SdfxKernel) profileLoops(p kernel.Profile) ([][]kernel.Vec3, error) {
	flat := func(l []kernel.Vec3) []kernel.Vec3 {
		out := make([]kernel.Vec3, len(l))
		for i, q := range l {
			out[i] = kernel.V(q.X, q.Y, 0)
		}
		return dedupe(out, k.tol)
	}
	outer := flat(p.Outer)
	if len(outer) < 3 || kernel.Newell(outer).Len() < k.tol*k.tol {
		return nil, fmt.Errorf("profile outer boundary: %w", kernel.ErrDegenerate)
	}
	loops := [][]kernel.Vec3{outer}
	n := kernel.Newell(outer)
	for _, h := range p.Holes {
		hl := flat(h)
		if len(hl) < 3 {
			continue
		}
		if kernel.Newell(hl).Dot(n) > 0 {
			hl = reversed(hl)
		}
		loops = append(loops, hl)
	}
	return loops, nil
}

// Extrude sweeps a profile along dir by depth. dir must not lie in the
// profile plane.
func (k *SdfxKernel) Extrude(p kernel.Profile, dir kernel.Vec3, depth float64) (kernel.Solid, error) {
	loops, err := k.profileLoops(p)
	if err != nil {
		return nil, fmt.Errorf("extrude: %w", err)
	}
	d := dir.Unit().Scale(depth)
	if depth <= 0 || math.Abs(d.Z) < k.tol {
		return nil, fmt.Errorf("extrude: direction %v depth %g: %w", dir, depth, kernel.ErrDegenerate)
	}
	fs := newFaceSet(k.tol)
	top := make([][]kernel.Vec3, len(loops))
	for i, l := range loops {
		top[i] = make([]kernel.Vec3, len(l))
		for j, q := range l {
			top[i][j] = q.Add(d)
		}
	}
	fs.addFace(loops)
	fs.addFace(top)
	for i, l := range loops {
		for j := range l {
			a, b := l[j], l[(j+1)%len(l)]
			fs.addFace([][]kernel.Vec3{{a, b, top[i][(j+1)%len(l)], top[i][j]}})
		}
	}
	poly, err := fs.solid()
	if err != nil {
		return nil, fmt.Errorf("extrude: %w", err)
	}
	return fromPoly(poly, len(fs.faces)), nil
}

// Revolve sweeps a profile about an axis in its plane by angle radians.
func (k *SdfxKernel) Revolve(p kernel.Profile, axisOrigin, axisDir kernel.Vec3, angle float64) (kernel.Solid, error) {
	loops, err := k.profileLoops(p)
	if err != nil {
		return nil, fmt.Errorf("revolve: %w", err)
	}
	if angle <= 0 || angle > 2*math.Pi+1e-9 {
		return nil, fmt.Errorf("revolve: angle %g: %w", angle, kernel.ErrDegenerate)
	}
	if axisDir.Len() < 1e-12 {
		return nil, fmt.Errorf("revolve: zero axis: %w", kernel.ErrDegenerate)
	}
	axis := axisDir.Unit()
	var all []kernel.Vec3
	for _, l := range loops {
		all = append(all, l...)
	}
	if kernel.CrossesAxis(all, axisOrigin, axis, k.tol) {
		return nil, fmt.Errorf("revolve: profile crosses the axis: %w", kernel.ErrDegenerate)
	}
	full := angle >= 2*math.Pi-1e-9
	n := k.segmentsFor(angle)
	ring := func(q kernel.Vec3, i int) kernel.Vec3 {
		if full && i == n {
			i = 0
		}
		r := kernel.Rotation(axis, angle*float64(i)/float64(n))
		return r.Apply(q.Sub(axisOrigin)).Add(axisOrigin)
	}
	fs := newFaceSet(k.tol)
	for _, l := range loops {
		for j := range l {
			a, b := l[j], l[(j+1)%len(l)]
			for i := 0; i < n; i++ {
				fs.addFace([][]kernel.Vec3{{ring(a, i), ring(b, i), ring(b, i+1), ring(a, i+1)}})
			}
		}
	}
	if !full {
		end := make([][]kernel.Vec3, len(loops))
		for i, l := range loops {
			end[i] = make([]kernel.Vec3, len(l))
			for j, q := range l {
				end[i][j] = ring(q, n)
			}
		}
		fs.addFace(loops)
		fs.addFace(end)
	}
	poly, err := fs.solid()
	if err != nil {
		return nil, fmt.Errorf("revolve: %w", err)
	}
	return fromPoly(poly, len(fs.faces)), nil
}
