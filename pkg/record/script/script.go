// Package script loads record models written as Lisp forms. Sources are
// evaluated in a sandboxed zygomys interpreter; each entity form adds one
// record to the model:
//
//	(schema "IFC4")
//	(def origin (entity 1 "IfcCartesianPoint" :Coordinates [0.0 0.0 0.0]))
//	(entity "IfcAxis2Placement3D" :Location origin :Axis nil :RefDirection nil)
//
// Integers and floats become Int and Real values, strings become String,
// true and false become Bool, and arrays or lists become List. (ref N),
// (enum "T") and (derived) build references, enumerations and the derived
// marker; nil is the null value. Use [] for an empty list, since an empty
// Lisp list reads as nil. entity returns a reference to its record, so
// forms can be bound with def and passed as attribute values. An entity
// without an id takes the next id after the highest one seen so far,
// skipping every literal id named by an entity form anywhere in the source.
package script

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chazu/ifcgeom/pkg/record"
	"github.com/chazu/ifcgeom/pkg/schema"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError is a non-fatal problem in the source: a parse error, a runtime
// error in a form, or an invalid entity definition.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// DefaultTimeout bounds a single evaluation.
const DefaultTimeout = 5 * time.Second

// Loader evaluates model sources. It is safe for concurrent use; every load
// runs in a fresh sandbox.
type Loader struct {
	// Timeout bounds each evaluation; zero means DefaultTimeout.
	Timeout time.Duration
	// Schema is the version of models that do not declare one.
	Schema schema.Version
}

// NewLoader returns a loader with the default timeout producing IFC4 models
// unless a source says otherwise.
func NewLoader() *Loader {
	return &Loader{Timeout: DefaultTimeout, Schema: schema.IFC4}
}

// Load evaluates source into a model.
//
// Return semantics:
//   - On success: model, nil, nil
//   - On errors in the source: nil, eval errors, nil
//   - On timeout, cancellation or panic: nil, nil, error
func (l *Loader) Load(ctx context.Context, source string) (*record.Model, []EvalError, error) {
	ch := make(chan loadResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- loadResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		m, evalErrs, err := l.evaluate(source)
		ch <- loadResult{model: m, errors: evalErrs, err: err}
	}()

	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return waitWithTimeout(ctx, ch, timeout)
}

// LoadFile reads and evaluates a model file.
func (l *Loader) LoadFile(ctx context.Context, path string) (*record.Model, []EvalError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading model: %w", err)
	}
	return l.Load(ctx, string(data))
}

func (l *Loader) evaluate(source string) (*record.Model, []EvalError, error) {
	version := l.Schema
	if version == schema.VersionUnknown {
		version = schema.IFC4
	}
	m := record.NewModel(version)
	if strings.TrimSpace(source) == "" {
		return m, nil, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()

	b := &modelBuilder{model: m, next: 1}
	b.reserveExplicitIDs(source)
	b.register(env)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return m, nil, nil
}

// linePattern matches zygomys messages of the form "Error on line N: ...".
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts an interpreter error into eval errors, keeping
// the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
