package record

import (
	"fmt"
	"math"
	"strconv"
)

// ValueType is the type tag of a property [Value].
type ValueType uint8

const (
	ValueNone ValueType = iota
	ValueInt
	ValueFloat
	ValueBool
	ValueString
)

func (t ValueType) String() string {
	switch t {
	case ValueNone:
		return "none"
	case ValueInt:
		return "int"
	case ValueFloat:
		return "float"
	case ValueBool:
		return "bool"
	case ValueString:
		return "string"
	default:
		return fmt.Sprintf("value_type(%d)", uint8(t))
	}
}

// Value is an immutable inline property value. The zero value is [ValueNone].
type Value struct {
	typ  ValueType
	bits uint64
	str  string
}

// IntValue returns an integer value.
func IntValue(v int64) Value {
	return Value{typ: ValueInt, bits: uint64(v)}
}

// FloatValue returns a floating point value.
func FloatValue(v float64) Value {
	return Value{typ: ValueFloat, bits: math.Float64bits(v)}
}

// BoolValue returns a boolean value.
func BoolValue(v bool) Value {
	var bits uint64
	if v {
		bits = 1
	}

	return Value{typ: ValueBool, bits: bits}
}

// StringValue returns a string value. Strings longer than
// [MaxInlineValueBytes] are accepted here and rejected when encoded.
func StringValue(v string) Value {
	return Value{typ: ValueString, str: v}
}

// ParseValue interprets s as int, float, bool, or falls back to string.
func ParseValue(s string) Value {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntValue(i)
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return FloatValue(f)
	}

	if b, err := strconv.ParseBool(s); err == nil {
		return BoolValue(b)
	}

	return StringValue(s)
}

// Type returns the type tag.
func (v Value) Type() ValueType { return v.typ }

// Int returns the integer and whether v holds one.
func (v Value) Int() (int64, bool) {
	return int64(v.bits), v.typ == ValueInt
}

// Float returns the float and whether v holds one.
func (v Value) Float() (float64, bool) {
	return math.Float64frombits(v.bits), v.typ == ValueFloat
}

// Bool returns the boolean and whether v holds one.
func (v Value) Bool() (bool, bool) {
	return v.bits != 0, v.typ == ValueBool
}

// Str returns the string and whether v holds one.
func (v Value) Str() (string, bool) {
	return v.str, v.typ == ValueString
}

// Equal reports whether v and o are the same value.
func (v Value) Equal(o Value) bool {
	return v.typ == o.typ && v.bits == o.bits && v.str == o.str
}

// String formats the value for display.
func (v Value) String() string {
	switch v.typ {
	case ValueInt:
		return strconv.FormatInt(int64(v.bits), 10)
	case ValueFloat:
		return strconv.FormatFloat(math.Float64frombits(v.bits), 'g', -1, 64)
	case ValueBool:
		return strconv.FormatBool(v.bits != 0)
	case ValueString:
		return strconv.Quote(v.str)
	default:
		return "<none>"
	}
}
