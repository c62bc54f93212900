package record

import (
	"fmt"
	"strings"
)

// Kind enumerates attribute value kinds.
type Kind int

const (
	KindNull    Kind = iota // $
	KindDerived             // *
	KindInt
	KindReal
	KindString
	KindEnum // .ENUM.
	KindBool
	KindRef
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindDerived:
		return "derived"
	case KindInt:
		return "int"
	case KindReal:
		return "real"
	case KindString:
		return "string"
	case KindEnum:
		return "enum"
	case KindBool:
		return "bool"
	case KindRef:
		return "ref"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a single attribute value.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
	ref  ID
	list []Value
}

// Constructors.

func NullValue() Value          { return Value{kind: KindNull} }
func Derived() Value            { return Value{kind: KindDerived} }
func Int(i int) Value           { return Value{kind: KindInt, num: float64(i)} }
func Real(f float64) Value      { return Value{kind: KindReal, num: f} }
func String(s string) Value     { return Value{kind: KindString, str: s} }
func Enum(s string) Value       { return Value{kind: KindEnum, str: strings.ToUpper(strings.Trim(s, "."))} }
func Bool(b bool) Value         { return Value{kind: KindBool, b: b} }
func Ref(id ID) Value           { return Value{kind: KindRef, ref: id} }
func List(items ...Value) Value { return Value{kind: KindList, list: items} }

// Reals builds a list of reals.
func Reals(fs ...float64) Value {
	items := make([]Value, len(fs))
	for i, f := range fs {
		items[i] = Real(f)
	}
	return List(items...)
}

// Refs builds a list of references.
func Refs(ids ...ID) Value {
	items := make([]Value, len(ids))
	for i, id := range ids {
		items[i] = Ref(id)
	}
	return List(items...)
}

// Ints builds a list of integers.
func Ints(is ...int) Value {
	items := make([]Value, len(is))
	for i, n := range is {
		items[i] = Int(n)
	}
	return List(items...)
}

// Kind returns the value kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null or derived.
func (v Value) IsNull() bool { return v.kind == KindNull || v.kind == KindDerived }

// Float returns the numeric value of an int or real.
func (v Value) Float() (float64, error) {
	switch v.kind {
	case KindInt, KindReal:
		return v.num, nil
	case KindNull, KindDerived:
		return 0, ErrMissing
	}
	return 0, fmt.Errorf("%w: want number, got %s", ErrWrongType, v.kind)
}

// Int returns the value of an int (or an integral real).
func (v Value) Int() (int, error) {
	switch v.kind {
	case KindInt:
		return int(v.num), nil
	case KindReal:
		if v.num == float64(int(v.num)) {
			return int(v.num), nil
		}
	case KindNull, KindDerived:
		return 0, ErrMissing
	}
	return 0, fmt.Errorf("%w: want int, got %s", ErrWrongType, v.kind)
}

// Str returns the value of a string or enum.
func (v Value) Str() (string, error) {
	switch v.kind {
	case KindString, KindEnum:
		return v.str, nil
	case KindNull, KindDerived:
		return "", ErrMissing
	}
	return "", fmt.Errorf("%w: want string, got %s", ErrWrongType, v.kind)
}

// Bool returns a boolean. STEP logicals .T./.F./.TRUE./.FALSE. are accepted;
// .U. and .UNKNOWN. are reported missing.
func (v Value) Bool() (bool, error) {
	switch v.kind {
	case KindBool:
		return v.b, nil
	case KindEnum:
		switch v.str {
		case "T", "TRUE":
			return true, nil
		case "F", "FALSE":
			return false, nil
		case "U", "UNKNOWN":
			return false, ErrMissing
		}
	case KindNull, KindDerived:
		return false, ErrMissing
	}
	return false, fmt.Errorf("%w: want boolean, got %s", ErrWrongType, v.kind)
}

// Ref returns the referenced id.
func (v Value) Ref() (ID, error) {
	switch v.kind {
	case KindRef:
		return v.ref, nil
	case KindNull, KindDerived:
		return Null, ErrMissing
	}
	return Null, fmt.Errorf("%w: want reference, got %s", ErrWrongType, v.kind)
}

// Items returns the elements of a list.
func (v Value) Items() ([]Value, error) {
	switch v.kind {
	case KindList:
		return v.list, nil
	case KindNull, KindDerived:
		return nil, ErrMissing
	}
	return nil, fmt.Errorf("%w: want list, got %s", ErrWrongType, v.kind)
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "$"
	case KindDerived:
		return "*"
	case KindInt:
		return fmt.Sprintf("%d", int(v.num))
	case KindReal:
		return fmt.Sprintf("%g", v.num)
	case KindString:
		return fmt.Sprintf("'%s'", v.str)
	case KindEnum:
		return "." + v.str + "."
	case KindBool:
		if v.b {
			return ".T."
		}
		return ".F."
	case KindRef:
		return v.ref.String()
	case KindList:
		parts := make([]string, len(v.list))
		for i, it := range v.list {
			parts[i] = it.String()
		}
		return "(" + strings.Join(parts, ",") + ")"
	}
	return "?"
}
