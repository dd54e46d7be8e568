package sql

import (
	"fmt"
	"strings"
)

// DataType identifies the scalar type of a column or literal
type DataType int

const (
	TypeInvalid DataType = iota
	TypeInt
	TypeFloat
	TypeString
	TypeBool
	TypeTime
	TypeBytes
)

// String returns the lowercase type name
func (t DataType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeTime:
		return "time"
	case TypeBytes:
		return "bytes"
	default:
		return "invalid"
	}
}

// ColumnID is the stable identifier a column reference is bound to during
// resolution. Rewrites carry ids through unchanged; they are never re-assigned
// once a tree is built.
type ColumnID int64

// Column is a named, typed output column of a plan node
type Column struct {
	Name string
	Type DataType
	ID   ColumnID
}

// String renders the column as name:type#id
func (c Column) String() string {
	return fmt.Sprintf("%s:%s#%d", c.Name, c.Type, c.ID)
}

// Equal compares name, type, and id
func (c Column) Equal(other Column) bool {
	return c == other
}

// Schema is the ordered list of output columns a plan node produces
type Schema []Column

// Equal compares two schemas column by column, order included
func (s Schema) Equal(other Schema) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Contains reports whether the schema produces the given column id
func (s Schema) Contains(id ColumnID) bool {
	for _, c := range s {
		if c.ID == id {
			return true
		}
	}
	return false
}

// IndexOf returns the position of the column with the given id, or -1
func (s Schema) IndexOf(id ColumnID) int {
	for i, c := range s {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// String renders the schema as (a:int#1, b:string#2)
func (s Schema) String() string {
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
