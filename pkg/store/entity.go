package store

import (
	"github.com/chazu/ifcgeom/pkg/record"
	"github.com/chazu/ifcgeom/pkg/schema"
)

// Entity is a materialized record. Concrete entities embed Base.
type Entity interface {
	ID() record.ID
	// Type returns the concrete type tag of the source record.
	Type() string
	// ResolvedType returns the tag the entity was materialized as, which may
	// be a supertype of Type.
	ResolvedType() string
	// Valid reports whether Load completed.
	Valid() bool

	base() *Base
}

// Loader is an Entity that can read itself from a record.
type Loader interface {
	Entity
	// Load reads the record. Referenced entities are obtained through the
	// session, never copied. An error marks the entity invalid.
	Load(s *Session, r record.Record) error
}

// Factory allocates an empty entity of one type.
type Factory func() Loader

// Resolver maps a record to the factory of its most-derived supported type.
type Resolver interface {
	Resolve(r record.Record, v schema.Version) (f Factory, resolvedTag string, err error)
}

// Base carries identity and validity for entities. It is set by the session
// before Load runs.
type Base struct {
	id       record.ID
	tag      string
	resolved string
	invalid  bool
}

func (b *Base) ID() record.ID        { return b.id }
func (b *Base) Type() string         { return b.tag }
func (b *Base) ResolvedType() string { return b.resolved }
func (b *Base) Valid() bool          { return !b.invalid }
func (b *Base) base() *Base          { return b }

// Invalidate marks the entity unusable. Load implementations call it when
// they keep partial state but must not be used for geometry.
func (b *Base) Invalidate() { b.invalid = true }
