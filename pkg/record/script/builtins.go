package script

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/chazu/ifcgeom/pkg/record"
	"github.com/chazu/ifcgeom/pkg/schema"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites model source before zygomys reads it:
//
//  1. Keywords become marked string literals: :Coordinates -> "__kw_Coordinates".
//     Attribute names then need no global symbols.
//
//  2. ; line comments become // comments, the zygomys syntax.
//
// String literals are copied unchanged.
func preprocessSource(source string) string {
	out := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			j := skipString(b, i, '"')
			out = append(out, b[i:j]...)
			i = j
		case b[i] == '`':
			j := skipString(b, i, '`')
			out = append(out, b[i:j]...)
			i = j
		case b[i] == ';':
			out = append(out, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				out = append(out, b[i])
				i++
			}
		case b[i] == ':' && i+1 < len(b) && b[i+1] == '=':
			out = append(out, b[i], b[i+1])
			i += 2
		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, b[i+1:j]...)
			out = append(out, '"')
			i = j
		default:
			out = append(out, b[i])
			i++
		}
	}
	return string(out)
}

// skipString returns the index just past the literal opened at b[i].
// Backslash escapes apply to double-quoted strings only.
func skipString(b []byte, i int, quote byte) int {
	i++
	for i < len(b) && b[i] != quote {
		if quote == '"' && b[i] == '\\' && i+1 < len(b) {
			i++
		}
		i++
	}
	if i < len(b) {
		i++
	}
	return i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

// ---------------------------------------------------------------------------
// Values passed through the interpreter
// ---------------------------------------------------------------------------

// sexpValue carries a record value that has no native zygomys form:
// references, enumerations and the derived marker.
type sexpValue struct {
	val record.Value
}

func (v *sexpValue) SexpString(ps *zygo.PrintState) string { return v.val.String() }
func (v *sexpValue) Type() *zygo.RegisteredType            { return nil }

// kwPrefix marks keywords rewritten by preprocessSource.
const kwPrefix = "__kw_"

func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs is an argument list split into keyword and positional arguments.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	order      []string
	positional []zygo.Sexp
}

// parseArgs splits args. A trailing keyword without a value is bound to nil.
func parseArgs(args []zygo.Sexp) kwArgs {
	res := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			res.positional = append(res.positional, args[i])
			continue
		}
		if _, seen := res.kw[name]; !seen {
			res.order = append(res.order, name)
		}
		if i+1 < len(args) {
			res.kw[name] = args[i+1]
			i++
		} else {
			res.kw[name] = zygo.SexpNull
		}
	}
	return res
}

// toValue converts an evaluated expression to a record value.
func toValue(s zygo.Sexp) (record.Value, error) {
	switch v := s.(type) {
	case *sexpValue:
		return v.val, nil
	case *zygo.SexpInt:
		return record.Int(int(v.Val)), nil
	case *zygo.SexpFloat:
		return record.Real(v.Val), nil
	case *zygo.SexpBool:
		return record.Bool(v.Val), nil
	case *zygo.SexpStr:
		if name, ok := isKW(v); ok {
			return record.Value{}, fmt.Errorf("keyword :%s used as a value", name)
		}
		return record.String(v.S), nil
	case *zygo.SexpArray:
		return toList(v.Val)
	case *zygo.SexpPair:
		items, err := zygo.ListToArray(v)
		if err != nil {
			return record.Value{}, err
		}
		return toList(items)
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return record.NullValue(), nil
		}
	}
	return record.Value{}, fmt.Errorf("unsupported value %T (%s)", s, s.SexpString(nil))
}

func toList(items []zygo.Sexp) (record.Value, error) {
	vals := make([]record.Value, len(items))
	for i, it := range items {
		v, err := toValue(it)
		if err != nil {
			return record.Value{}, fmt.Errorf("item %d: %w", i, err)
		}
		vals[i] = v
	}
	return record.List(vals...), nil
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toID(s zygo.Sexp) (record.ID, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		if v.Val <= 0 {
			return record.Null, fmt.Errorf("record id must be positive, got %d", v.Val)
		}
		return record.ID(v.Val), nil
	case *sexpValue:
		if id, err := v.val.Ref(); err == nil {
			return id, nil
		}
	}
	return record.Null, fmt.Errorf("expected record id, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtins
// ---------------------------------------------------------------------------

// modelBuilder receives the records defined by one evaluation.
type modelBuilder struct {
	model    *record.Model
	next     record.ID
	reserved map[record.ID]bool // ids claimed by (entity N ...) forms
}

// explicitIDPattern finds literal ids given to entity forms.
var explicitIDPattern = regexp.MustCompile(`\(entity\s+(\d+)[\s)]`)

// reserveExplicitIDs records every literal entity id in source. Arguments
// are evaluated before the enclosing form, so a nested entity would
// otherwise take the id its parent names.
func (b *modelBuilder) reserveExplicitIDs(source string) {
	b.reserved = make(map[record.ID]bool)
	for _, m := range explicitIDPattern.FindAllStringSubmatch(source, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			b.reserved[record.ID(n)] = true
		}
	}
}

// alloc returns the next free id that no explicit entity form claims.
func (b *modelBuilder) alloc() record.ID {
	for b.reserved[b.next] || b.model.Record(b.next) != nil {
		b.next++
	}
	return b.next
}

func (b *modelBuilder) register(env *zygo.Zlisp) {
	// (schema "IFC2X3")
	env.AddFunction("schema", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("schema requires one version string")
		}
		s, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("schema: %w", err)
		}
		v, err := schema.ParseVersion(s)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("schema: %w", err)
		}
		b.model.SetSchema(v)
		return zygo.SexpNull, nil
	})

	// (entity [id] "IfcTag" :Attr value ...)
	env.AddFunction("entity", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		pos := pa.positional
		var id record.ID
		if len(pos) > 0 {
			if _, ok := pos[0].(*zygo.SexpInt); ok {
				var err error
				if id, err = toID(pos[0]); err != nil {
					return zygo.SexpNull, fmt.Errorf("entity: %w", err)
				}
				pos = pos[1:]
			}
		}
		if id.IsNull() {
			id = b.alloc()
		}
		if len(pos) != 1 {
			return zygo.SexpNull, fmt.Errorf("entity %s: expected one type tag, got %d positional arguments", id, len(pos))
		}
		tag, err := toString(pos[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("entity %s: type: %w", id, err)
		}
		if b.model.Record(id) != nil {
			return zygo.SexpNull, fmt.Errorf("entity %s defined twice", id)
		}
		attrs := make(map[string]record.Value, len(pa.kw))
		for _, k := range pa.order {
			v, err := toValue(pa.kw[k])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("entity %s: %s: %w", id, k, err)
			}
			attrs[k] = v
		}
		b.model.Add(id, tag, attrs)
		if id >= b.next {
			b.next = id + 1
		}
		return &sexpValue{val: record.Ref(id)}, nil
	})

	// (ref 12)
	env.AddFunction("ref", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("ref requires one record id")
		}
		id, err := toID(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ref: %w", err)
		}
		return &sexpValue{val: record.Ref(id)}, nil
	})

	// (enum "DIFFERENCE")
	env.AddFunction("enum", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("enum requires one name")
		}
		s, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("enum: %w", err)
		}
		return &sexpValue{val: record.Enum(s)}, nil
	})

	// (derived)
	env.AddFunction("derived", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 0 {
			return zygo.SexpNull, fmt.Errorf("derived takes no arguments")
		}
		return &sexpValue{val: record.Derived()}, nil
	})
}
