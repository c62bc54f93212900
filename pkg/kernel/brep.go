package kernel

// Target selects what a B-rep face set must produce.
type Target int

const (
	// TargetSolid requires a closed, consistently oriented face set.
	TargetSolid Target = iota
	// TargetOpenShell accepts any non-empty face set.
	TargetOpenShell
)

// String returns the target name.
func (t Target) String() string {
	switch t {
	case TargetSolid:
		return "solid"
	case TargetOpenShell:
		return "open shell"
	default:
		return "unknown"
	}
}

// BrepBuilder assembles faces into a solid or shell. Calls nest as
// face set > face > loop. A face whose loops fail is discarded by StopFace
// or AbortFace without affecting faces already committed.
type BrepBuilder interface {
	StartFaceSet(target Target)
	StartFace(s Surface, sameSense bool)
	StartLoop(outer bool)
	// AddPoint appends a vertex to the current loop.
	AddPoint(p Vec3)
	// AddEdge appends the edge from -> to. A nil curve is a straight
	// segment; otherwise the curve is sampled between the projections of
	// the end points, against its parameterization when sameSense is false.
	AddEdge(c Curve, from, to Vec3, sameSense bool)
	StopLoop() error
	StopFace() error
	AbortFace()
	FaceCount() int
	StopFaceSet() (Shape, error)
}
