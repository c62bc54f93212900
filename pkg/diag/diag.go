// Package diag carries import diagnostics: (identifier, message, severity,
// fatal) tuples reported by the materializer and the geometry builders.
package diag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chazu/ifcgeom/pkg/record"
)

// Severity indicates how serious a diagnostic is.
type Severity int

const (
	SeverityError   Severity = iota // entity or geometry abandoned
	SeverityWarning                 // degraded or defaulted
	SeverityInfo                    // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Diagnostic is a single finding about one record.
type Diagnostic struct {
	ID       record.ID // record concerned (Null if none)
	Message  string
	Severity Severity
	Fatal    bool // the whole run cannot continue
}

func (d Diagnostic) Error() string {
	if d.ID.IsNull() {
		return fmt.Sprintf("[%s] %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", d.Severity, d.ID, d.Message)
}

// Sink accepts diagnostics.
type Sink interface {
	Report(d Diagnostic)
}

// Discard drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Report(Diagnostic) {}

// ---------------------------------------------------------------------------
// Convenience reporters
// ---------------------------------------------------------------------------

// Errorf reports a recoverable error.
func Errorf(s Sink, id record.ID, format string, args ...any) {
	s.Report(Diagnostic{ID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

// Warnf reports a warning.
func Warnf(s Sink, id record.ID, format string, args ...any) {
	s.Report(Diagnostic{ID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
}

// Fatalf reports an error that aborts the run.
func Fatalf(s Sink, id record.ID, format string, args ...any) {
	s.Report(Diagnostic{ID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityError, Fatal: true})
}

// ---------------------------------------------------------------------------
// Sinks
// ---------------------------------------------------------------------------

// Collector stores every diagnostic in arrival order.
type Collector struct {
	Diagnostics []Diagnostic
}

// Report appends d.
func (c *Collector) Report(d Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

// Count returns the number of diagnostics with the given severity.
func (c *Collector) Count(s Severity) int {
	n := 0
	for _, d := range c.Diagnostics {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// ForID returns the diagnostics reported against id.
func (c *Collector) ForID(id record.ID) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.Diagnostics {
		if d.ID == id {
			out = append(out, d)
		}
	}
	return out
}

// HasFatal reports whether any fatal diagnostic was collected.
func (c *Collector) HasFatal() bool {
	for _, d := range c.Diagnostics {
		if d.Fatal {
			return true
		}
	}
	return false
}

// Reset drops collected diagnostics.
func (c *Collector) Reset() { c.Diagnostics = nil }

// SlogSink forwards diagnostics to a structured logger.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink returns a sink writing to logger. A nil logger uses
// slog.Default().
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

// Report logs d at the level matching its severity.
func (s *SlogSink) Report(d Diagnostic) {
	level := slog.LevelInfo
	switch d.Severity {
	case SeverityError:
		level = slog.LevelError
	case SeverityWarning:
		level = slog.LevelWarn
	}
	s.logger.LogAttrs(context.Background(), level, d.Message,
		slog.Int("id", int(d.ID)),
		slog.Bool("fatal", d.Fatal),
	)
}

// Tee fans a diagnostic out to several sinks.
type Tee []Sink

// Report forwards d to every sink.
func (t Tee) Report(d Diagnostic) {
	for _, s := range t {
		s.Report(d)
	}
}

// Once suppresses repeated diagnostics for the same (id, message) so that
// retries do not log the same root cause twice.
type Once struct {
	next Sink
	seen map[onceKey]struct{}
}

type onceKey struct {
	id  record.ID
	msg string
}

// NewOnce wraps next.
func NewOnce(next Sink) *Once {
	return &Once{next: next, seen: make(map[onceKey]struct{})}
}

// Report forwards d unless an identical (id, message) was already reported.
func (o *Once) Report(d Diagnostic) {
	k := onceKey{id: d.ID, msg: d.Message}
	if _, dup := o.seen[k]; dup {
		return
	}
	o.seen[k] = struct{}{}
	o.next.Report(d)
}
