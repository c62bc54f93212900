// Package store materializes source records into typed entities. A Session
// owns the identity cache for one import run: every record is materialized
// at most once, and entities reference each other only by identifier, so
// cyclic graphs resolve to shared cached instances.
package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/chazu/ifcgeom/pkg/config"
	"github.com/chazu/ifcgeom/pkg/diag"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/record"
	"github.com/chazu/ifcgeom/pkg/schema"
	"github.com/chazu/ifcgeom/pkg/units"
	"github.com/google/uuid"
)

// ErrUnresolved is returned by Require when a record cannot be materialized.
var ErrUnresolved = errors.New("record could not be materialized")

// Options configures a Session. Source and Resolver are required.
type Options struct {
	Source   record.Source
	Resolver Resolver
	// Version overrides Source.Schema() when set.
	Version    schema.Version
	Units      units.Converter
	Kernel     kernel.Kernel
	Diag       diag.Sink
	Tolerances *config.Tolerances
	Logger     *slog.Logger
}

// Stats summarizes a session.
type Stats struct {
	Materialized int
	Invalid      int
	Unresolved   int
	Duplicates   int
}

// Session is the identity cache and context of one import run. It is not
// safe for concurrent use.
type Session struct {
	src      record.Source
	resolver Resolver
	version  schema.Version
	units    units.Converter
	kernel   kernel.Kernel
	diag     diag.Sink
	tol      config.Tolerances
	logger   *slog.Logger

	cache      map[record.ID]Entity
	failed     map[record.ID]error
	globals    map[uuid.UUID]record.ID
	duplicates []record.ID
	stats      Stats
}

// NewSession creates an empty session.
func NewSession(o Options) *Session {
	s := &Session{
		src:      o.Source,
		resolver: o.Resolver,
		version:  o.Version,
		units:    o.Units,
		kernel:   o.Kernel,
		diag:     o.Diag,
		logger:   o.Logger,
		cache:    make(map[record.ID]Entity),
		failed:   make(map[record.ID]error),
		globals:  make(map[uuid.UUID]record.ID),
	}
	if s.version == schema.VersionUnknown && o.Source != nil {
		s.version = o.Source.Schema()
	}
	if s.units == nil {
		s.units = units.Identity
	}
	if s.diag == nil {
		s.diag = diag.Discard
	}
	if o.Tolerances != nil {
		s.tol = *o.Tolerances
	} else {
		s.tol = *config.Default().Tolerances
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

func (s *Session) Source() record.Source         { return s.src }
func (s *Session) Version() schema.Version       { return s.version }
func (s *Session) Units() units.Converter        { return s.units }
func (s *Session) Kernel() kernel.Kernel         { return s.kernel }
func (s *Session) Diag() diag.Sink               { return s.diag }
func (s *Session) Tolerances() config.Tolerances { return s.tol }
func (s *Session) Logger() *slog.Logger          { return s.logger }

// Lookup returns a cached entity without materializing.
func (s *Session) Lookup(id record.ID) (Entity, bool) {
	e, ok := s.cache[id]
	return e, ok
}

// Materialize returns the entity for id, creating it on first use. Problems
// are reported as recoverable diagnostics and yield nil. An entity whose
// Load fails is kept in the cache, marked invalid and returned.
func (s *Session) Materialize(id record.ID) Entity {
	e, _ := s.materialize(id, false)
	return e
}

// Require is Materialize for structural references: failure to resolve
// the record is reported as fatal and returned as an error.
func (s *Session) Require(id record.ID) (Entity, error) {
	return s.materialize(id, true)
}

func (s *Session) report(id record.ID, fatal bool, err error) {
	d := diag.Diagnostic{ID: id, Message: err.Error(), Severity: diag.SeverityError, Fatal: fatal}
	s.diag.Report(d)
}

func (s *Session) materialize(id record.ID, fatal bool) (Entity, error) {
	if e, ok := s.cache[id]; ok {
		return e, nil
	}
	if err, ok := s.failed[id]; ok {
		return nil, err
	}
	if id.IsNull() {
		err := fmt.Errorf("null reference: %w", ErrUnresolved)
		s.report(id, fatal, err)
		return nil, err
	}
	rec := s.src.Record(id)
	if rec == nil {
		err := fmt.Errorf("missing reference %s: %w", id, ErrUnresolved)
		s.fail(id, fatal, err)
		return nil, err
	}
	factory, resolved, err := s.resolver.Resolve(rec, s.version)
	if err != nil {
		err = fmt.Errorf("%s: %w", err, ErrUnresolved)
		s.fail(id, fatal, err)
		return nil, err
	}

	e := factory()
	b := e.base()
	b.id, b.tag, b.resolved = id, rec.Type(), resolved
	// registered before Load so cycles resolve to this instance
	s.cache[id] = e
	s.stats.Materialized++
	s.logger.Debug("materialize", "id", id.String(), "type", rec.Type(), "as", resolved)

	if err := e.Load(s, rec); err != nil {
		b.invalid = true
		s.report(id, false, fmt.Errorf("%s: %w", rec.Type(), err))
	}
	if !e.Valid() {
		s.stats.Invalid++
	}
	s.trackGlobalID(e)
	return e, nil
}

func (s *Session) fail(id record.ID, fatal bool, err error) {
	s.failed[id] = err
	s.stats.Unresolved++
	s.report(id, fatal, err)
}

// globalIdentified is implemented by entities carrying a GlobalId.
type globalIdentified interface {
	GlobalID() string
}

func (s *Session) trackGlobalID(e Entity) {
	g, ok := e.(globalIdentified)
	if !ok || g.GlobalID() == "" {
		return
	}
	u, err := DecodeGlobalID(g.GlobalID())
	if err != nil {
		diag.Warnf(s.diag, e.ID(), "%v", err)
		return
	}
	if first, dup := s.globals[u]; dup {
		s.duplicates = append(s.duplicates, e.ID())
		s.stats.Duplicates++
		diag.Warnf(s.diag, e.ID(), "duplicate GlobalId %s, keeping %s", g.GlobalID(), first)
		return
	}
	s.globals[u] = e.ID()
}

// Canonical returns the first entity materialized with the given GlobalId.
func (s *Session) Canonical(globalID string) (Entity, bool) {
	u, err := DecodeGlobalID(globalID)
	if err != nil {
		return nil, false
	}
	id, ok := s.globals[u]
	if !ok {
		return nil, false
	}
	return s.cache[id], true
}

// Duplicates returns the ids of entities whose GlobalId was already taken.
func (s *Session) Duplicates() []record.ID {
	return append([]record.ID(nil), s.duplicates...)
}

// Stats returns counters for the session so far.
func (s *Session) Stats() Stats { return s.stats }
