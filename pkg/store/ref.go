package store

import (
	"fmt"
	"reflect"

	"github.com/chazu/ifcgeom/pkg/diag"
	"github.com/chazu/ifcgeom/pkg/record"
)

// As materializes id and asserts it to T. A record of the wrong type is
// reported once and yields ok == false. Invalid entities are returned with
// ok == true; callers check Valid.
func As[T any](s *Session, id record.ID) (T, bool) {
	var zero T
	e := s.Materialize(id)
	if e == nil {
		return zero, false
	}
	v, ok := e.(T)
	if !ok {
		diag.Errorf(s.Diag(), id, "%s cannot be used as %s", e.Type(), typeName[T]())
		return zero, false
	}
	return v, true
}

func typeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// Ref is a typed handle to another entity. It holds only the identifier;
// the entity is fetched from the session on demand.
type Ref[T any] struct {
	ID record.ID
}

// RefTo returns a handle for id.
func RefTo[T any](id record.ID) Ref[T] { return Ref[T]{ID: id} }

// RefsTo returns handles for ids.
func RefsTo[T any](ids []record.ID) []Ref[T] {
	out := make([]Ref[T], len(ids))
	for i, id := range ids {
		out[i] = Ref[T]{ID: id}
	}
	return out
}

// IsNull reports whether the handle is empty.
func (r Ref[T]) IsNull() bool { return r.ID.IsNull() }

// Get resolves the handle. A null handle yields ok == false silently.
func (r Ref[T]) Get(s *Session) (T, bool) {
	if r.ID.IsNull() {
		var zero T
		return zero, false
	}
	return As[T](s, r.ID)
}

func (r Ref[T]) String() string { return fmt.Sprintf("%s<%s>", r.ID, typeName[T]()) }

// Resolve fetches every handle, skipping those that do not resolve.
func Resolve[T any](s *Session, refs []Ref[T]) []T {
	out := make([]T, 0, len(refs))
	for _, r := range refs {
		if v, ok := r.Get(s); ok {
			out = append(out, v)
		}
	}
	return out
}
