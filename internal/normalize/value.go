// Package normalize turns loosely shaped registration fields into canonical,
// deterministic strings.
//
// Upstream sources hand back a field as nothing, a single value, or a list that
// may hold duplicates, nulls and mixed representations. Value models exactly
// those three shapes, and every normalizer here is total over it: the worst
// case is core.Unknown.
package normalize

import (
	"strings"
	"time"
)

type scalarKind uint8

const (
	scalarNull scalarKind = iota
	scalarText
	scalarTime
)

// Scalar is one raw entry: null, free text, or a structured timestamp.
type Scalar struct {
	kind scalarKind
	text string
	time time.Time
}

func Null() Scalar {
	return Scalar{}
}

func Text(s string) Scalar {
	return Scalar{kind: scalarText, text: s}
}

func Time(t time.Time) Scalar {
	return Scalar{kind: scalarTime, time: t}
}

// IsNull reports whether the entry carries nothing. Blank text counts as null.
func (s Scalar) IsNull() bool {
	switch s.kind {
	case scalarText:
		return strings.TrimSpace(s.text) == ""
	case scalarTime:
		return s.time.IsZero()
	default:
		return true
	}
}

// String renders the entry the way it would print; timestamps use RFC 3339.
func (s Scalar) String() string {
	switch s.kind {
	case scalarText:
		return s.text
	case scalarTime:
		return s.time.Format(time.RFC3339)
	default:
		return ""
	}
}

type shape uint8

const (
	shapeAbsent shape = iota
	shapeScalar
	shapeList
)

// Value is the raw content of one logical field. The zero Value is absent.
type Value struct {
	shape shape
	items []Scalar
}

func Absent() Value {
	return Value{}
}

func Single(s Scalar) Value {
	return Value{shape: shapeScalar, items: []Scalar{s}}
}

func List(items ...Scalar) Value {
	if len(items) == 0 {
		return Value{}
	}
	copied := make([]Scalar, len(items))
	copy(copied, items)
	return Value{shape: shapeList, items: copied}
}

// SingleText is Single(Text(s)) with "" mapped to Absent.
func SingleText(s string) Value {
	if s == "" {
		return Absent()
	}
	return Single(Text(s))
}

// TextList builds a list of text entries; empty input is Absent.
func TextList(items []string) Value {
	if len(items) == 0 {
		return Absent()
	}
	scalars := make([]Scalar, len(items))
	for i, item := range items {
		scalars[i] = Text(item)
	}
	return Value{shape: shapeList, items: scalars}
}

func (v Value) IsAbsent() bool {
	return v.shape == shapeAbsent
}

// First returns the first entry of a list, or the scalar itself.
func (v Value) First() (Scalar, bool) {
	if len(v.items) == 0 {
		return Scalar{}, false
	}
	return v.items[0], true
}

// present returns the non-null entries in input order.
func (v Value) present() []Scalar {
	out := make([]Scalar, 0, len(v.items))
	for _, item := range v.items {
		if !item.IsNull() {
			out = append(out, item)
		}
	}
	return out
}
