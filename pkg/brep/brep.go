// Package brep assembles faces into solids or shells through an ordered list
// of construction policies. Each policy is tried in turn until one yields a
// shape; only the policy that succeeds reports diagnostics, so a strict
// attempt that fails stays silent when a lenient fallback rescues it.
package brep

import (
	"fmt"

	"github.com/chazu/ifcgeom/pkg/diag"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/record"
)

// Policy is one construction mode.
type Policy struct {
	Name   string
	Target kernel.Target
	// AllowInvalidFaces skips faces that cannot be built instead of
	// failing the whole set.
	AllowInvalidFaces bool
	// Degraded marks a fallback result, announced with one warning.
	Degraded bool
}

var (
	// Strict requires every face and a closed result.
	Strict = Policy{Name: "strict", Target: kernel.TargetSolid}
	// Lenient drops bad faces and settles for an open shell.
	Lenient = Policy{Name: "lenient", Target: kernel.TargetOpenShell, AllowInvalidFaces: true, Degraded: true}
	// Surface builds surface models, which are open by nature.
	Surface = Policy{Name: "surface", Target: kernel.TargetOpenShell, AllowInvalidFaces: true}
)

// SolidPolicies is the policy order for B-rep solids.
var SolidPolicies = []Policy{Strict, Lenient}

// SurfacePolicies is the policy order for surface models.
var SurfacePolicies = []Policy{Surface}

// Face is a face entity as seen by the assembler.
type Face interface {
	ID() record.ID
	// ValidForCreation reports whether the face can be built, and why not.
	ValidForCreation() (bool, string)
	Surface() kernel.Surface
	SameSense() bool
	// AddBounds emits the face's loops into b, using Loop for each.
	AddBounds(b kernel.BrepBuilder) error
}

// Request describes one face set to assemble.
type Request struct {
	ID       record.ID // owning solid or surface model
	Faces    []Face
	Policies []Policy
	Kernel   kernel.Kernel
	Diag     diag.Sink
}

// Result is the outcome of Assemble. Shape is nil when every policy failed.
type Result struct {
	Shape   kernel.Shape
	Policy  string
	Dropped []record.ID
}

type dropped struct {
	id     record.ID
	reason string
}

// Assemble evaluates the request's policies in order until one yields a
// shape. The succeeding policy reports one warning when it is degraded and
// one warning per dropped face; if all fail a single error is reported.
func Assemble(req Request) Result {
	sink := req.Diag
	if sink == nil {
		sink = diag.Discard
	}
	for _, p := range req.Policies {
		shape, drops, err := attempt(req, p)
		if err != nil {
			continue
		}
		if p.Degraded {
			diag.Warnf(sink, req.ID, "could not build a %s, degraded to %s (%s policy)", kernel.TargetSolid, p.Target, p.Name)
		}
		res := Result{Shape: shape, Policy: p.Name}
		for _, d := range drops {
			diag.Warnf(sink, d.id, "face dropped: %s", d.reason)
			res.Dropped = append(res.Dropped, d.id)
		}
		return res
	}
	diag.Errorf(sink, req.ID, "no construction policy produced geometry from %d faces", len(req.Faces))
	return Result{}
}

// attempt runs one policy with a fresh builder.
func attempt(req Request, p Policy) (kernel.Shape, []dropped, error) {
	b := req.Kernel.NewBrepBuilder()
	b.StartFaceSet(p.Target)
	var drops []dropped
	for _, f := range req.Faces {
		if ok, reason := f.ValidForCreation(); !ok {
			if !p.AllowInvalidFaces {
				return nil, nil, fmt.Errorf("face %s: %s", f.ID(), reason)
			}
			drops = append(drops, dropped{f.ID(), reason})
			continue
		}
		if err := AddFace(b, f); err != nil {
			if !p.AllowInvalidFaces {
				return nil, nil, fmt.Errorf("face %s: %w", f.ID(), err)
			}
			drops = append(drops, dropped{f.ID(), err.Error()})
		}
	}
	if b.FaceCount() == 0 {
		return nil, nil, fmt.Errorf("no faces: %w", kernel.ErrDegenerate)
	}
	shape, err := b.StopFaceSet()
	if err != nil {
		return nil, nil, err
	}
	return shape, drops, nil
}

// AddFace emits one face. The face scope is aborted on every failure path
// so a rejected face leaves the set unchanged.
func AddFace(b kernel.BrepBuilder, f Face) (err error) {
	b.StartFace(f.Surface(), f.SameSense())
	committed := false
	defer func() {
		if !committed {
			b.AbortFace()
		}
	}()
	if err := f.AddBounds(b); err != nil {
		return err
	}
	if err := b.StopFace(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Loop emits one loop scope. StopLoop runs even when emit fails.
func Loop(b kernel.BrepBuilder, outer bool, emit func() error) error {
	b.StartLoop(outer)
	err := emit()
	if stopErr := b.StopLoop(); err == nil {
		err = stopErr
	}
	return err
}
