// Package record defines the source-record accessor consumed by the
// materializer: identifiers, subtype predicates and typed attribute getters
// with explicit null, missing and derived semantics. Physical file parsing
// lives elsewhere; Model is an in-memory implementation for loaders and tests.
package record

import (
	"errors"
	"fmt"
	"sort"

	"github.com/chazu/ifcgeom/pkg/schema"
)

// ID is the identifier of a record in the source graph. Zero is the null
// handle.
type ID int

// Null is the null handle.
const Null ID = 0

// IsNull reports whether id is the null handle.
func (id ID) IsNull() bool { return id <= 0 }

func (id ID) String() string { return fmt.Sprintf("#%d", int(id)) }

var (
	// ErrMissing reports an attribute that is absent, null ($) or derived (*).
	ErrMissing = errors.New("attribute missing")
	// ErrWrongType reports an attribute holding a value of another kind.
	ErrWrongType = errors.New("attribute has wrong type")
)

// Record is one node of the source graph.
type Record interface {
	ID() ID
	// Type returns the concrete type tag in canonical spelling.
	Type() string
	// IsSubtypeOf reports whether the record's type is tag or derives from it.
	IsSubtypeOf(tag string) bool
	// Attr returns the named attribute. ok is false when the record has no
	// such attribute at all.
	Attr(name string) (v Value, ok bool)
}

// Source gives access to the records of one model.
type Source interface {
	// Record returns the record with the given id, or nil.
	Record(id ID) Record
	// IDs returns every record id in ascending order.
	IDs() []ID
	// Schema returns the schema version the model was written against.
	Schema() schema.Version
}

// ---------------------------------------------------------------------------
// In-memory model
// ---------------------------------------------------------------------------

// Entry is a record held by a Model.
type Entry struct {
	id    ID
	tag   string
	attrs map[string]Value
}

// ID returns the record identifier.
func (e *Entry) ID() ID { return e.id }

// Type returns the canonical type tag.
func (e *Entry) Type() string { return e.tag }

// IsSubtypeOf consults the schema type table.
func (e *Entry) IsSubtypeOf(tag string) bool { return schema.IsSubtype(e.tag, tag) }

// Attr returns the named attribute.
func (e *Entry) Attr(name string) (Value, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// Set assigns an attribute, replacing any previous value.
func (e *Entry) Set(name string, v Value) *Entry {
	e.attrs[name] = v
	return e
}

// Model is a mutable in-memory Source.
type Model struct {
	version schema.Version
	entries map[ID]*Entry
}

// Compile-time interface checks.
var _ Source = (*Model)(nil)
var _ Record = (*Entry)(nil)

// NewModel returns an empty model for the given schema version.
func NewModel(v schema.Version) *Model {
	return &Model{version: v, entries: make(map[ID]*Entry)}
}

// Add creates or replaces the record with the given id.
func (m *Model) Add(id ID, tag string, attrs map[string]Value) *Entry {
	e := &Entry{id: id, tag: schema.Normalize(tag), attrs: make(map[string]Value, len(attrs))}
	for k, v := range attrs {
		e.attrs[k] = v
	}
	m.entries[id] = e
	return e
}

// Record returns the record with the given id, or nil.
func (m *Model) Record(id ID) Record {
	e, ok := m.entries[id]
	if !ok {
		return nil
	}
	return e
}

// IDs returns every record id in ascending order.
func (m *Model) IDs() []ID {
	ids := make([]ID, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Schema returns the model's schema version.
func (m *Model) Schema() schema.Version { return m.version }

// SetSchema changes the model's schema version.
func (m *Model) SetSchema(v schema.Version) { m.version = v }

// Len returns the number of records.
func (m *Model) Len() int { return len(m.entries) }

// OfType returns the ids of all records that are tag or one of its subtypes,
// in ascending order.
func OfType(src Source, tag string) []ID {
	var out []ID
	for _, id := range src.IDs() {
		if r := src.Record(id); r != nil && r.IsSubtypeOf(tag) {
			out = append(out, id)
		}
	}
	return out
}
