// Package schema describes the entity type system of the source models:
// schema versions, canonical type tags and the supertype table used to find
// the most-derived supported type of a record.
package schema

import (
	"fmt"
	"strings"
)

// Version identifies a schema release. Versions are ordered.
type Version int

const (
	VersionUnknown Version = iota
	IFC2X3
	IFC4
	IFC4X3
)

func (v Version) String() string {
	switch v {
	case IFC2X3:
		return "IFC2X3"
	case IFC4:
		return "IFC4"
	case IFC4X3:
		return "IFC4X3"
	default:
		return "unknown"
	}
}

// ParseVersion accepts the FILE_SCHEMA spellings seen in the wild
// ("IFC2X3", "IFC2x3_TC1", "IFC4", "IFC4ADD2", "IFC4X3_ADD2").
func ParseVersion(s string) (Version, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(u, "IFC2X3"):
		return IFC2X3, nil
	case strings.HasPrefix(u, "IFC4X3"):
		return IFC4X3, nil
	case strings.HasPrefix(u, "IFC4"):
		return IFC4, nil
	}
	return VersionUnknown, fmt.Errorf("schema: unsupported version %q", s)
}

// Range is an inclusive version range. A zero Max means "no upper bound".
type Range struct {
	Min Version
	Max Version
}

// All covers every known version.
var All = Range{Min: IFC2X3}

// Since returns the open range starting at v.
func Since(v Version) Range {
	return Range{Min: v}
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v Version) bool {
	if v < r.Min {
		return false
	}
	return r.Max == VersionUnknown || v <= r.Max
}

// Normalize returns the canonical (upper-case) spelling of a type tag.
func Normalize(tag string) string {
	return strings.ToUpper(strings.TrimSpace(tag))
}

// Lineage returns tag followed by its supertypes, most derived first.
// Tags missing from the table yield a one-element lineage.
func Lineage(tag string) []string {
	t := Normalize(tag)
	out := []string{t}
	seen := map[string]bool{t: true}
	for {
		p, ok := supertypes[t]
		if !ok || seen[p] {
			return out
		}
		out = append(out, p)
		seen[p] = true
		t = p
	}
}

// IsSubtype reports whether tag equals ancestor or derives from it.
func IsSubtype(tag, ancestor string) bool {
	a := Normalize(ancestor)
	for _, t := range Lineage(tag) {
		if t == a {
			return true
		}
	}
	return false
}

// Known reports whether tag is present in the type table.
func Known(tag string) bool {
	t := Normalize(tag)
	if _, ok := supertypes[t]; ok {
		return true
	}
	_, ok := roots[t]
	return ok
}

// Introduced returns the first version that defines tag.
func Introduced(tag string) Version {
	if v, ok := introduced[Normalize(tag)]; ok {
		return v
	}
	return IFC2X3
}
