package csg

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/ifcgeom/pkg/diag"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/record"
)

// ---------------------------------------------------------------------------
// Stub kernel
// ---------------------------------------------------------------------------

type stubSolid struct {
	name  string
	shift kernel.Vec3
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) { return }

// stubKernel records Boolean calls and fails the first failN of them.
type stubKernel struct {
	kernel.Kernel
	failN int
	calls []string
}

func (k *stubKernel) boolean(op string, a, b kernel.Solid) (kernel.Solid, error) {
	sa, sb := a.(*stubSolid), b.(*stubSolid)
	k.calls = append(k.calls, op+"("+sa.name+","+sb.name+")")
	if k.failN > 0 {
		k.failN--
		return nil, kernel.ErrBooleanFailed
	}
	return &stubSolid{name: op + "(" + sa.name + "," + sb.name + ")", shift: sb.shift}, nil
}

func (k *stubKernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean("u", a, b)
}

func (k *stubKernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean("d", a, b)
}

func (k *stubKernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean("i", a, b)
}

func (k *stubKernel) Translate(s kernel.Solid, v kernel.Vec3) kernel.Solid {
	ss := s.(*stubSolid)
	return &stubSolid{name: ss.name, shift: ss.shift.Add(v)}
}

// ---------------------------------------------------------------------------
// Stub operands
// ---------------------------------------------------------------------------

type leaf struct {
	id    record.ID
	name  string
	shift *kernel.Vec3
}

func (l *leaf) ID() record.ID { return l.id }

func (l *leaf) SuggestedShift() (kernel.Vec3, bool) {
	if l.shift == nil {
		return kernel.Vec3{}, false
	}
	return *l.shift, true
}

type node struct {
	id            record.ID
	op            Op
	first, second Operand
}

func (n *node) ID() record.ID                       { return n.id }
func (n *node) SuggestedShift() (kernel.Vec3, bool) { return kernel.Vec3{}, false }
func (n *node) Operator() Op                        { return n.op }
func (n *node) Operands() (Operand, Operand)        { return n.first, n.second }

func newEvaluator(k *stubKernel, sink diag.Sink) *Evaluator {
	return &Evaluator{
		Kernel:        k,
		Diag:          sink,
		ShiftDistance: 0.5,
		Leaf: func(op Operand) kernel.Solid {
			return &stubSolid{name: op.(*leaf).name}
		},
	}
}

func up() *kernel.Vec3 {
	v := kernel.V(0, 0, 2)
	return &v
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestEvaluatePostOrder(t *testing.T) {
	k := &stubKernel{}
	tree := &node{id: 1, op: Difference,
		first:  &node{id: 2, op: Union, first: &leaf{id: 3, name: "a"}, second: &leaf{id: 4, name: "b"}},
		second: &leaf{id: 5, name: "c"},
	}
	var c diag.Collector
	s := newEvaluator(k, &c).Evaluate(tree)
	if s == nil {
		t.Fatal("nil result")
	}
	want := []string{"u(a,b)", "d(u(a,b),c)"}
	if diff := cmp.Diff(want, k.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if len(c.Diagnostics) != 0 {
		t.Errorf("diagnostics = %v", c.Diagnostics)
	}
}

func TestEvaluateShiftRetry(t *testing.T) {
	tests := []struct {
		name      string
		failN     int
		wantNil   bool
		wantShift kernel.Vec3
		warnings  int
		errors    int
	}{
		{name: "first attempt", failN: 0, warnings: 0},
		{name: "positive shift", failN: 1, wantShift: kernel.V(0, 0, 0.5), warnings: 1},
		{name: "negative shift", failN: 2, wantShift: kernel.V(0, 0, -0.5), warnings: 2},
		{name: "all attempts fail", failN: 3, wantNil: true, warnings: 2, errors: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := &stubKernel{failN: tt.failN}
			tree := &node{id: 1, op: Difference, first: &leaf{id: 2, name: "a"}, second: &leaf{id: 3, name: "b", shift: up()}}
			var c diag.Collector
			s := newEvaluator(k, &c).Evaluate(tree)
			if tt.wantNil {
				if s != nil {
					t.Fatalf("result = %v, want nil", s)
				}
			} else {
				if s == nil {
					t.Fatal("nil result")
				}
				if got := s.(*stubSolid).shift; got != tt.wantShift {
					t.Errorf("operand shift = %v, want %v", got, tt.wantShift)
				}
			}
			if got := c.Count(diag.SeverityWarning); got != tt.warnings {
				t.Errorf("warnings = %d, want %d", got, tt.warnings)
			}
			if got := c.Count(diag.SeverityError); got != tt.errors {
				t.Errorf("errors = %d, want %d", got, tt.errors)
			}
		})
	}
}

func TestEvaluateNoSuggestedShift(t *testing.T) {
	k := &stubKernel{failN: 1}
	tree := &node{id: 1, op: Union, first: &leaf{id: 2, name: "a"}, second: &leaf{id: 3, name: "b"}}
	var c diag.Collector
	if s := newEvaluator(k, &c).Evaluate(tree); s != nil {
		t.Fatalf("result = %v, want nil", s)
	}
	if len(k.calls) != 1 {
		t.Errorf("attempts = %d, want 1", len(k.calls))
	}
	if len(c.Diagnostics) != 1 || c.Diagnostics[0].Severity != diag.SeverityError {
		t.Errorf("diagnostics = %v, want one error", c.Diagnostics)
	}
}

func TestEvaluateMissingOperands(t *testing.T) {
	a := &leaf{id: 2, name: "a"}
	tests := []struct {
		name     string
		tree     *node
		want     string
		severity diag.Severity
		diags    int
	}{
		{name: "missing first", tree: &node{id: 1, op: Union, second: a}},
		{name: "union missing second", tree: &node{id: 1, op: Union, first: a}, want: "a", severity: diag.SeverityWarning, diags: 1},
		{name: "difference missing second", tree: &node{id: 1, op: Difference, first: a}, want: "a", severity: diag.SeverityWarning, diags: 1},
		{name: "intersection missing second", tree: &node{id: 1, op: Intersection, first: a}, severity: diag.SeverityError, diags: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c diag.Collector
			s := newEvaluator(&stubKernel{}, &c).Evaluate(tt.tree)
			got := ""
			if s != nil {
				got = s.(*stubSolid).name
			}
			if got != tt.want {
				t.Errorf("result = %q, want %q", got, tt.want)
			}
			if len(c.Diagnostics) != tt.diags {
				t.Fatalf("diagnostics = %v, want %d", c.Diagnostics, tt.diags)
			}
			if tt.diags > 0 && c.Diagnostics[0].Severity != tt.severity {
				t.Errorf("severity = %s, want %s", c.Diagnostics[0].Severity, tt.severity)
			}
		})
	}
}

func TestEvaluateCycle(t *testing.T) {
	root := &node{id: 1, op: Union, second: &leaf{id: 3, name: "b"}}
	root.first = &node{id: 2, op: Union, first: root, second: &leaf{id: 4, name: "c"}}
	var c diag.Collector
	if s := newEvaluator(&stubKernel{}, &c).Evaluate(root); s != nil {
		t.Fatalf("result = %v, want nil", s)
	}
	if len(c.Diagnostics) != 1 || !strings.Contains(c.Diagnostics[0].Message, "refers back") {
		t.Errorf("diagnostics = %v", c.Diagnostics)
	}
}

func TestParseOp(t *testing.T) {
	for in, want := range map[string]Op{".UNION.": Union, "difference": Difference, "INTERSECTION": Intersection} {
		got, err := ParseOp(in)
		if err != nil || got != want {
			t.Errorf("ParseOp(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseOp("XOR"); err == nil {
		t.Error("ParseOp(XOR) should fail")
	}
}
