package sql

import (
	"bytes"
	"time"
)

// Value represents any literal value carried by an expression or row.
// Valid underlying types mirror DataType:
// - int64
// - float64
// - string
// - bool
// - time.Time
// - []byte
type Value interface{}

// Helper constructors for typed values
func Int(i int64) Value      { return i }
func Float(f float64) Value  { return f }
func String(s string) Value  { return s }
func Bool(b bool) Value      { return b }
func Time(t time.Time) Value { return t }
func Bytes(b []byte) Value   { return b }

// TypeOf maps a literal value to its DataType. The second return is false
// when the underlying Go type is not one of the valid value types.
func TypeOf(v Value) (DataType, bool) {
	switch v.(type) {
	case int64:
		return TypeInt, true
	case float64:
		return TypeFloat, true
	case string:
		return TypeString, true
	case bool:
		return TypeBool, true
	case time.Time:
		return TypeTime, true
	case []byte:
		return TypeBytes, true
	default:
		return TypeInvalid, false
	}
}

// ValuesEqual compares two literal values. Values of different underlying
// types are never equal; there is no implicit coercion between numeric and
// string values.
func ValuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case []byte:
		bv, ok := b.([]byte)
		return ok && bytes.Equal(av, bv)
	default:
		return false
	}
}
