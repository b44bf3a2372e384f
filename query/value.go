// Package query implements the filter data model: typed leaf Values,
// JSON-pointer-like Paths, filter atoms (Expr), a Query, and the
// hand-rolled expression parser that turns operator keystrokes into a
// list of Exprs.
package query

import (
	"encoding/json"
	"fmt"
)

// Kind tags the two leaf types a Value can hold.
type Kind uint8

const (
	KindNumber Kind = iota
	KindString
)

// Value is a tagged union of Number (float64) and String. Equality is
// structural; ordering is defined only within the same tag.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Number constructs a numeric Value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// String constructs a string Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Kind reports whether the Value holds a number or a string.
func (v Value) Kind() Kind { return v.kind }

// IsNumber reports whether v holds a Number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// IsString reports whether v holds a String.
func (v Value) IsString() bool { return v.kind == KindString }

// Num returns the numeric payload; only meaningful when IsNumber.
func (v Value) Num() float64 { return v.num }

// Str returns the string payload; only meaningful when IsString.
func (v Value) Str() string { return v.str }

// FromJSON converts a decoded JSON leaf into a Value. It returns false
// for anything that isn't a bare number or string (objects, arrays,
// null, booleans).
func FromJSON(raw interface{}) (Value, bool) {
	switch x := raw.(type) {
	case float64:
		return Number(x), true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Value{}, false
		}
		return Number(f), true
	case string:
		return String(x), true
	default:
		return Value{}, false
	}
}

// Equal reports structural equality. Cross-tag comparisons are always
// unequal rather than panicking, keeping Equal a total function.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == KindNumber {
		return v.num == o.num
	}
	return v.str == o.str
}

// Less reports v < o within the same tag. Cross-tag comparisons return
// false rather than panicking.
func (v Value) Less(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == KindNumber {
		return v.num < o.num
	}
	return v.str < o.str
}

// Greater reports v > o within the same tag.
func (v Value) Greater(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == KindNumber {
		return v.num > o.num
	}
	return v.str > o.str
}

// String renders the Value for display: numbers as encoding/json
// renders the float64, strings JSON-quoted. The number's source text is
// not kept, so a log value written as 1.0 displays as 1.
func (v Value) String() string {
	if v.kind == KindNumber {
		return formatNumber(v.num)
	}
	b, err := json.Marshal(v.str)
	if err != nil {
		return fmt.Sprintf("%q", v.str)
	}
	return string(b)
}

func formatNumber(n float64) string {
	b, err := json.Marshal(n)
	if err != nil {
		return fmt.Sprintf("%v", n)
	}
	return string(b)
}
