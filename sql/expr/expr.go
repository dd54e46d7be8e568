// Package expr defines the expression variants carried as plan-node payloads:
// resolved column references, typed literals, comparisons, and boolean
// connectives. Expressions are immutable; every transformation builds new ones.
package expr

import (
	"fmt"

	"github.com/calderdb/calder/sql"
)

// Expression is the closed variant set of payload expressions
type Expression interface {
	fmt.Stringer

	// Type is the data type the expression evaluates to
	Type() sql.DataType

	// Children returns the immediate sub-expressions, left to right
	Children() []Expression

	// Equal reports deep structural equality
	Equal(other Expression) bool
}

// ColumnRef is a column reference bound to a stable id during resolution
type ColumnRef struct {
	Name     string
	ID       sql.ColumnID
	DataType sql.DataType
}

func (c *ColumnRef) Type() sql.DataType     { return c.DataType }
func (c *ColumnRef) Children() []Expression { return nil }
func (c *ColumnRef) String() string         { return fmt.Sprintf("%s#%d", c.Name, c.ID) }

func (c *ColumnRef) Equal(other Expression) bool {
	o, ok := other.(*ColumnRef)
	return ok && c.Name == o.Name && c.ID == o.ID && c.DataType == o.DataType
}

// Literal is a typed constant
type Literal struct {
	Value    sql.Value
	DataType sql.DataType
}

// True and False are the boolean literal singletons
var (
	True  = &Literal{Value: true, DataType: sql.TypeBool}
	False = &Literal{Value: false, DataType: sql.TypeBool}
)

// NewLiteral builds a literal, deriving the data type from the value
func NewLiteral(v sql.Value) (*Literal, error) {
	t, ok := sql.TypeOf(v)
	if !ok {
		return nil, fmt.Errorf("unsupported literal type %T", v)
	}
	return &Literal{Value: v, DataType: t}, nil
}

func (l *Literal) Type() sql.DataType     { return l.DataType }
func (l *Literal) Children() []Expression { return nil }

func (l *Literal) String() string {
	if l.DataType == sql.TypeString {
		return fmt.Sprintf("%q", l.Value)
	}
	return fmt.Sprintf("%v", l.Value)
}

func (l *Literal) Equal(other Expression) bool {
	o, ok := other.(*Literal)
	return ok && l.DataType == o.DataType && sql.ValuesEqual(l.Value, o.Value)
}

// IsBool reports whether the literal is the given boolean constant
func (l *Literal) IsBool(b bool) bool {
	v, ok := l.Value.(bool)
	return ok && l.DataType == sql.TypeBool && v == b
}

// CompareOp identifies a comparison operator
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// String returns the SQL spelling of the operator
func (op CompareOp) String() string {
	switch op {
	case OpEq:
		return "="
	case OpNe:
		return "<>"
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	default:
		return "?"
	}
}

// Compare is a binary comparison producing a boolean
type Compare struct {
	Op    CompareOp
	Left  Expression
	Right Expression
}

func (c *Compare) Type() sql.DataType     { return sql.TypeBool }
func (c *Compare) Children() []Expression { return []Expression{c.Left, c.Right} }

func (c *Compare) String() string {
	return fmt.Sprintf("(%s %s %s)", c.Left, c.Op, c.Right)
}

func (c *Compare) Equal(other Expression) bool {
	o, ok := other.(*Compare)
	return ok && c.Op == o.Op && c.Left.Equal(o.Left) && c.Right.Equal(o.Right)
}

// And is boolean conjunction
type And struct {
	Left  Expression
	Right Expression
}

func (a *And) Type() sql.DataType     { return sql.TypeBool }
func (a *And) Children() []Expression { return []Expression{a.Left, a.Right} }
func (a *And) String() string         { return fmt.Sprintf("(%s AND %s)", a.Left, a.Right) }

func (a *And) Equal(other Expression) bool {
	o, ok := other.(*And)
	return ok && a.Left.Equal(o.Left) && a.Right.Equal(o.Right)
}

// Or is boolean disjunction
type Or struct {
	Left  Expression
	Right Expression
}

func (o *Or) Type() sql.DataType     { return sql.TypeBool }
func (o *Or) Children() []Expression { return []Expression{o.Left, o.Right} }
func (o *Or) String() string         { return fmt.Sprintf("(%s OR %s)", o.Left, o.Right) }

func (o *Or) Equal(other Expression) bool {
	v, ok := other.(*Or)
	return ok && o.Left.Equal(v.Left) && o.Right.Equal(v.Right)
}

// Not is boolean negation
type Not struct {
	Input Expression
}

func (n *Not) Type() sql.DataType     { return sql.TypeBool }
func (n *Not) Children() []Expression { return []Expression{n.Input} }
func (n *Not) String() string         { return fmt.Sprintf("(NOT %s)", n.Input) }

func (n *Not) Equal(other Expression) bool {
	o, ok := other.(*Not)
	return ok && n.Input.Equal(o.Input)
}

// Alias names a projection output without changing its value
type Alias struct {
	Name  string
	Input Expression
}

func (a *Alias) Type() sql.DataType     { return a.Input.Type() }
func (a *Alias) Children() []Expression { return []Expression{a.Input} }
func (a *Alias) String() string         { return fmt.Sprintf("%s AS %s", a.Input, a.Name) }

func (a *Alias) Equal(other Expression) bool {
	o, ok := other.(*Alias)
	return ok && a.Name == o.Name && a.Input.Equal(o.Input)
}

// Columns collects every column id referenced anywhere in the expression
func Columns(e Expression) []sql.ColumnID {
	var ids []sql.ColumnID
	var walk func(Expression)
	walk = func(e Expression) {
		if ref, ok := e.(*ColumnRef); ok {
			ids = append(ids, ref.ID)
			return
		}
		for _, child := range e.Children() {
			walk(child)
		}
	}
	walk(e)
	return ids
}

// OutputColumn derives the output column an expression produces when used as
// a projection item. Column references keep their name and id; aliases rename
// their input; anything else produces a fresh unnamed column with id 0, which
// the resolver replaces with a bound id.
func OutputColumn(e Expression) sql.Column {
	switch v := e.(type) {
	case *ColumnRef:
		return sql.Column{Name: v.Name, Type: v.DataType, ID: v.ID}
	case *Alias:
		col := OutputColumn(v.Input)
		col.Name = v.Name
		return col
	default:
		return sql.Column{Name: e.String(), Type: e.Type()}
	}
}
