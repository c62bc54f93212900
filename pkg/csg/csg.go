// Package csg evaluates Boolean trees bottom-up. When the kernel rejects an
// operation, the second operand is nudged along its suggested direction and
// the operation retried, which resolves most coplanar-face failures.
package csg

import (
	"fmt"
	"strings"

	"github.com/chazu/ifcgeom/pkg/diag"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/record"
)

// Op is a Boolean operator.
type Op int

const (
	Union Op = iota
	Difference
	Intersection
)

func (o Op) String() string {
	switch o {
	case Union:
		return "union"
	case Difference:
		return "difference"
	case Intersection:
		return "intersection"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// ParseOp parses an operator enumeration such as .DIFFERENCE.
func ParseOp(s string) (Op, error) {
	switch strings.ToUpper(strings.Trim(s, ".")) {
	case "UNION":
		return Union, nil
	case "DIFFERENCE":
		return Difference, nil
	case "INTERSECTION":
		return Intersection, nil
	default:
		return 0, fmt.Errorf("unknown boolean operator %q", s)
	}
}

// Operand is anything that can take part in a Boolean.
type Operand interface {
	ID() record.ID
	// SuggestedShift returns the direction in which this operand may be
	// moved to get a failed Boolean past a degenerate configuration.
	SuggestedShift() (kernel.Vec3, bool)
}

// Boolean is an operator node. Either operand may be nil when its
// reference could not be resolved.
type Boolean interface {
	Operand
	Operator() Op
	Operands() (first, second Operand)
}

// Evaluator applies Boolean trees through a kernel.
type Evaluator struct {
	Kernel kernel.Kernel
	Diag   diag.Sink
	// ShiftDistance is the retry offset in model units. Zero disables
	// retries.
	ShiftDistance float64
	// Leaf builds the solid of a non-Boolean operand.
	Leaf func(Operand) kernel.Solid
}

// Evaluate returns the solid of op or nil. Children are evaluated before
// their parent.
func (e *Evaluator) Evaluate(op Operand) kernel.Solid {
	return e.eval(op, make(map[record.ID]bool))
}

func (e *Evaluator) sink() diag.Sink {
	if e.Diag == nil {
		return diag.Discard
	}
	return e.Diag
}

func (e *Evaluator) eval(op Operand, path map[record.ID]bool) kernel.Solid {
	if op == nil {
		return nil
	}
	b, ok := op.(Boolean)
	if !ok {
		if e.Leaf == nil {
			return nil
		}
		return e.Leaf(op)
	}
	id := b.ID()
	if path[id] {
		diag.Errorf(e.sink(), id, "boolean tree refers back to itself")
		return nil
	}
	path[id] = true
	defer delete(path, id)

	first, second := b.Operands()
	a := e.eval(first, path)
	if a == nil {
		return nil
	}
	s := e.eval(second, path)
	if s == nil {
		if b.Operator() == Intersection {
			diag.Errorf(e.sink(), id, "intersection with a missing second operand is empty")
			return nil
		}
		diag.Warnf(e.sink(), id, "%s with a missing second operand, keeping the first operand", b.Operator())
		return a
	}
	return e.apply(id, b.Operator(), a, s, second)
}

// apply runs op with up to three placements of the second operand: as is,
// then shifted by plus and minus ShiftDistance along its suggested direction.
func (e *Evaluator) apply(id record.ID, op Op, a, b kernel.Solid, second Operand) kernel.Solid {
	shifts := []kernel.Vec3{{}}
	if dir, ok := second.SuggestedShift(); ok && e.ShiftDistance > 0 && dir.Len() > 0 {
		d := dir.Unit().Scale(e.ShiftDistance)
		shifts = append(shifts, d, d.Neg())
	}
	for i, shift := range shifts {
		operand := b
		if i > 0 {
			operand = e.Kernel.Translate(b, shift)
		}
		res, err := e.run(op, a, operand)
		if err == nil {
			return res
		}
		if i < len(shifts)-1 {
			next := shifts[i+1]
			diag.Warnf(e.sink(), id, "%s failed (%v), retrying with second operand shifted by (%g, %g, %g)",
				op, err, next.X, next.Y, next.Z)
			continue
		}
		diag.Errorf(e.sink(), id, "%s failed after %d attempts: %v", op, len(shifts), err)
	}
	return nil
}

func (e *Evaluator) run(op Op, a, b kernel.Solid) (kernel.Solid, error) {
	switch op {
	case Union:
		return e.Kernel.Union(a, b)
	case Difference:
		return e.Kernel.Difference(a, b)
	case Intersection:
		return e.Kernel.Intersection(a, b)
	default:
		return nil, fmt.Errorf("%s: %w", op, kernel.ErrBooleanFailed)
	}
}
