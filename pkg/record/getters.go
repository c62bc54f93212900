package record

import "fmt"

// attr fetches a named attribute; an absent attribute is reported as
// ErrMissing, like $.
func attr(r Record, name string) (Value, error) {
	v, ok := r.Attr(name)
	if !ok || v.IsNull() {
		return v, fmt.Errorf("%s.%s: %w", r.Type(), name, ErrMissing)
	}
	return v, nil
}

func wrap(r Record, name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %w", r.Type(), name, err)
}

// ---------------------------------------------------------------------------
// Scalars
// ---------------------------------------------------------------------------

// Float returns a required numeric attribute.
func Float(r Record, name string) (float64, error) {
	v, err := attr(r, name)
	if err != nil {
		return 0, err
	}
	f, err := v.Float()
	return f, wrap(r, name, err)
}

// OptionalFloat returns a numeric attribute, or def when it is missing.
// A present value of the wrong type is still an error.
func OptionalFloat(r Record, name string, def float64) (float64, error) {
	v, ok := r.Attr(name)
	if !ok || v.IsNull() {
		return def, nil
	}
	f, err := v.Float()
	if err != nil {
		return def, wrap(r, name, err)
	}
	return f, nil
}

// Integer returns a required integer attribute.
func Integer(r Record, name string) (int, error) {
	v, err := attr(r, name)
	if err != nil {
		return 0, err
	}
	i, err := v.Int()
	return i, wrap(r, name, err)
}

// Text returns a required string or enum attribute.
func Text(r Record, name string) (string, error) {
	v, err := attr(r, name)
	if err != nil {
		return "", err
	}
	s, err := v.Str()
	return s, wrap(r, name, err)
}

// OptionalText returns a string attribute or "" when missing.
func OptionalText(r Record, name string) string {
	v, ok := r.Attr(name)
	if !ok || v.IsNull() {
		return ""
	}
	s, err := v.Str()
	if err != nil {
		return ""
	}
	return s
}

// Logical returns a required boolean attribute.
func Logical(r Record, name string) (bool, error) {
	v, err := attr(r, name)
	if err != nil {
		return false, err
	}
	b, err := v.Bool()
	return b, wrap(r, name, err)
}

// OptionalLogical returns a boolean attribute, or def when missing or
// unknown.
func OptionalLogical(r Record, name string, def bool) bool {
	v, ok := r.Attr(name)
	if !ok || v.IsNull() {
		return def
	}
	b, err := v.Bool()
	if err != nil {
		return def
	}
	return b
}

// ---------------------------------------------------------------------------
// References
// ---------------------------------------------------------------------------

// Reference returns a required instance reference.
func Reference(r Record, name string) (ID, error) {
	v, err := attr(r, name)
	if err != nil {
		return Null, err
	}
	id, err := v.Ref()
	return id, wrap(r, name, err)
}

// OptionalReference returns an instance reference or Null when missing.
func OptionalReference(r Record, name string) ID {
	v, ok := r.Attr(name)
	if !ok || v.IsNull() {
		return Null
	}
	id, err := v.Ref()
	if err != nil {
		return Null
	}
	return id
}

// IsDerived reports whether the named attribute is present as '*'.
func IsDerived(r Record, name string) bool {
	v, ok := r.Attr(name)
	return ok && v.Kind() == KindDerived
}

// ---------------------------------------------------------------------------
// Aggregates
// ---------------------------------------------------------------------------

// Floats returns a required aggregate of numbers.
func Floats(r Record, name string) ([]float64, error) {
	v, err := attr(r, name)
	if err != nil {
		return nil, err
	}
	return floatsOf(r, name, v)
}

func floatsOf(r Record, name string, v Value) ([]float64, error) {
	items, err := v.Items()
	if err != nil {
		return nil, wrap(r, name, err)
	}
	out := make([]float64, len(items))
	for i, it := range items {
		f, err := it.Float()
		if err != nil {
			return nil, wrap(r, fmt.Sprintf("%s[%d]", name, i), err)
		}
		out[i] = f
	}
	return out, nil
}

// Integers returns a required aggregate of integers.
func Integers(r Record, name string) ([]int, error) {
	v, err := attr(r, name)
	if err != nil {
		return nil, err
	}
	items, err := v.Items()
	if err != nil {
		return nil, wrap(r, name, err)
	}
	out := make([]int, len(items))
	for i, it := range items {
		n, err := it.Int()
		if err != nil {
			return nil, wrap(r, fmt.Sprintf("%s[%d]", name, i), err)
		}
		out[i] = n
	}
	return out, nil
}

// References returns a required aggregate of instance references. Null
// members are skipped.
func References(r Record, name string) ([]ID, error) {
	v, err := attr(r, name)
	if err != nil {
		return nil, err
	}
	return refsOf(r, name, v)
}

// OptionalReferences returns an aggregate of references, or nil when
// missing.
func OptionalReferences(r Record, name string) ([]ID, error) {
	v, ok := r.Attr(name)
	if !ok || v.IsNull() {
		return nil, nil
	}
	return refsOf(r, name, v)
}

func refsOf(r Record, name string, v Value) ([]ID, error) {
	items, err := v.Items()
	if err != nil {
		return nil, wrap(r, name, err)
	}
	out := make([]ID, 0, len(items))
	for i, it := range items {
		if it.IsNull() {
			continue
		}
		id, err := it.Ref()
		if err != nil {
			return nil, wrap(r, fmt.Sprintf("%s[%d]", name, i), err)
		}
		out = append(out, id)
	}
	return out, nil
}

// ReferenceGrid returns a required list of lists of references, as used by
// B-spline surface control nets.
func ReferenceGrid(r Record, name string) ([][]ID, error) {
	v, err := attr(r, name)
	if err != nil {
		return nil, err
	}
	rows, err := v.Items()
	if err != nil {
		return nil, wrap(r, name, err)
	}
	out := make([][]ID, len(rows))
	for i, row := range rows {
		ids, err := refsOf(r, fmt.Sprintf("%s[%d]", name, i), row)
		if err != nil {
			return nil, err
		}
		out[i] = ids
	}
	return out, nil
}

// FloatGrid returns a required list of lists of numbers.
func FloatGrid(r Record, name string) ([][]float64, error) {
	v, err := attr(r, name)
	if err != nil {
		return nil, err
	}
	rows, err := v.Items()
	if err != nil {
		return nil, wrap(r, name, err)
	}
	out := make([][]float64, len(rows))
	for i, row := range rows {
		fs, err := floatsOf(r, fmt.Sprintf("%s[%d]", name, i), row)
		if err != nil {
			return nil, err
		}
		out[i] = fs
	}
	return out, nil
}

// Raw returns the attribute value as-is, for select types whose member kind
// decides the interpretation (e.g. trimming selects).
func Raw(r Record, name string) (Value, error) {
	return attr(r, name)
}
