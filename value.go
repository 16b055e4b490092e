package venice

import (
	"strconv"
	"strings"
)

// Tag discriminates the variants of a [Value]. The numeric order is part
// of the foreign ABI and must not change.
type Tag uint32

const (
	TagInteger Tag = iota
	TagList
	TagString
)

// String returns the variant name for the tag.
func (t Tag) String() string {
	switch t {
	case TagInteger:
		return "integer"
	case TagList:
		return "list"
	case TagString:
		return "string"
	default:
		return "Tag(" + strconv.FormatUint(uint64(t), 10) + ")"
	}
}

// Value is the discriminated runtime representation of a language-level
// datum: an integer, a string, or a list. It is the unit of exchange
// across the foreign function boundary.
//
// The representation is flat: the scalar and the payload pointers are held
// directly in the struct, so integer values involve no allocation at all.
// The tag determines which arm is valid, and the checked accessors make
// the wrong-arm class of bug unrepresentable; there is no way to read a
// stale or garbage payload.
//
// A Value exclusively owns its payload. There is no sharing and no cycle:
// values are constructed strictly bottom-up, so a list can never reach
// itself. Destroy consumes the value and everything it transitively owns.
//
// The zero Value is the integer 0.
type Value struct {
	tag  Tag
	i    int64
	str  *StringBuffer
	list *List
}

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

// IntValue constructs an integer value. No heap allocation is involved.
//
//	v := rt.IntValue(42)
//	v.Int() // 42
func (rt *Runtime) IntValue(i int64) Value {
	return Value{tag: TagInteger, i: i}
}

// StringValue constructs a string value by copying s.
//
//	v := rt.StringValue("42")
//	v.Str().String() // "42"
func (rt *Runtime) StringValue(s string) Value {
	return Value{tag: TagString, str: rt.NewString(s)}
}

// WrapString constructs a string value that adopts an existing buffer.
// Ownership of s transfers to the value; the caller must not destroy s
// separately.
func (rt *Runtime) WrapString(s *StringBuffer) Value {
	return Value{tag: TagString, str: s}
}

// ListValue constructs a list value holding the given values, in order.
// With no arguments it is the empty, appendable list.
//
//	v := rt.ListValue(rt.IntValue(1), rt.StringValue("two"))
//	v.List().Length() // 2
func (rt *Runtime) ListValue(values ...Value) Value {
	return Value{tag: TagList, list: rt.ListOf(values...)}
}

// WrapList constructs a list value that adopts an existing list.
// Ownership of l transfers to the value; the caller must not destroy l
// separately.
func (rt *Runtime) WrapList(l *List) Value {
	return Value{tag: TagList, list: l}
}

// -----------------------------------------------------------------------------
// Tag Checks and Accessors
// -----------------------------------------------------------------------------

// Tag returns the value's variant tag.
func (v Value) Tag() Tag { return v.tag }

// IsInt reports whether the value is an integer.
func (v Value) IsInt() bool { return v.tag == TagInteger }

// IsString reports whether the value is a string.
func (v Value) IsString() bool { return v.tag == TagString }

// IsList reports whether the value is a list.
func (v Value) IsList() bool { return v.tag == TagList }

// Int returns the integer payload. Panics if the value is not an integer.
func (v Value) Int() int64 {
	if v.tag != TagInteger {
		panic("Value.Int: not an integer")
	}
	return v.i
}

// Str returns the owned string buffer. Panics if the value is not a string.
func (v Value) Str() *StringBuffer {
	if v.tag != TagString {
		panic("Value.Str: not a string")
	}
	return v.str
}

// List returns the owned list. Panics if the value is not a list.
func (v Value) List() *List {
	if v.tag != TagList {
		panic("Value.List: not a list")
	}
	return v.list
}

// -----------------------------------------------------------------------------
// Operations
// -----------------------------------------------------------------------------

// Append moves elem into the value's list, growing the backing buffer when
// it is full, exactly as [List.Append] does. Panics if the value is not a
// list.
func (v Value) Append(elem Value) {
	if v.tag != TagList {
		panic("Value.Append: not a list")
	}
	v.list.Append(elem)
}

// Destroy releases everything the value transitively owns: a string value
// releases its buffer, a list value destroys every element depth-first and
// then the backing buffer, an integer owns nothing. The value and its
// payload must not be used again; a second Destroy of the same payload
// panics.
func (v Value) Destroy() {
	switch v.tag {
	case TagInteger:
		// no heap payload
	case TagString:
		v.str.Destroy()
	case TagList:
		v.list.Destroy()
	}
}

// String renders the value for diagnostics: integers bare, strings quoted,
// lists bracketed.
//
//	rt.ListValue(rt.IntValue(1), rt.StringValue("two")).String()
//	// `[1, "two"]`
func (v Value) String() string {
	switch v.tag {
	case TagInteger:
		return strconv.FormatInt(v.i, 10)
	case TagString:
		return strconv.Quote(v.str.String())
	case TagList:
		var b strings.Builder
		b.WriteByte('[')
		for i := uint64(0); i < v.list.length; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(v.list.items[i].String())
		}
		b.WriteByte(']')
		return b.String()
	default:
		return "<invalid>"
	}
}

// Equal reports whether two values have the same tag and, recursively, the
// same contents.
func (v Value) Equal(other Value) bool {
	if v.tag != other.tag {
		return false
	}
	switch v.tag {
	case TagInteger:
		return v.i == other.i
	case TagString:
		return v.str.String() == other.str.String()
	case TagList:
		if v.list.length != other.list.length {
			return false
		}
		for i := uint64(0); i < v.list.length; i++ {
			if !v.list.items[i].Equal(other.list.items[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
