// Package resolve maps record type tags to entity factories. Registrations
// carry a schema version range; resolution walks the record's supertype
// lineage and picks the most-derived registered type valid for the version.
package resolve

import (
	"errors"
	"fmt"

	"github.com/chazu/ifcgeom/pkg/record"
	"github.com/chazu/ifcgeom/pkg/schema"
	"github.com/chazu/ifcgeom/pkg/store"
)

// ErrUnhandledSubtype reports a record with no registered type in its
// lineage for the session's schema version.
var ErrUnhandledSubtype = errors.New("unhandled subtype")

var _ store.Resolver = (*Registry)(nil)

type entry struct {
	versions schema.Range
	factory  store.Factory
}

// Registry is a (tag, version range) -> factory table.
type Registry struct {
	entries map[string][]entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string][]entry)}
}

// Register adds a factory for tag over a version range. Several ranges may
// be registered for one tag; the first matching registration wins.
func (r *Registry) Register(tag string, versions schema.Range, f store.Factory) {
	t := schema.Normalize(tag)
	r.entries[t] = append(r.entries[t], entry{versions: versions, factory: f})
}

// Add registers f for tag from the version that introduced tag onwards.
func (r *Registry) Add(tag string, f store.Factory) {
	r.Register(tag, schema.Since(schema.Introduced(tag)), f)
}

func (r *Registry) lookup(tag string, v schema.Version) (store.Factory, bool) {
	for _, e := range r.entries[tag] {
		if e.versions.Contains(v) {
			return e.factory, true
		}
	}
	return nil, false
}

// Resolve returns the factory for the most-derived registered type of rec.
func (r *Registry) Resolve(rec record.Record, v schema.Version) (store.Factory, string, error) {
	for _, tag := range schema.Lineage(rec.Type()) {
		if f, ok := r.lookup(tag, v); ok {
			return f, tag, nil
		}
	}
	if !schema.Known(rec.Type()) {
		return nil, "", fmt.Errorf("%w %s: not in the %s type table", ErrUnhandledSubtype, rec.Type(), v)
	}
	return nil, "", fmt.Errorf("%w %s for %s", ErrUnhandledSubtype, rec.Type(), v)
}
