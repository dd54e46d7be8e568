package plan

import (
	"fmt"
	"strings"

	"github.com/calderdb/calder/sql"
	"github.com/calderdb/calder/sql/expr"
)

// Relation is a leaf scan of a catalog table. It is the only node that stores
// its schema directly; everything above derives its own.
type Relation struct {
	Database string
	Table    string
	Cols     sql.Schema
}

func NewRelation(database, table string, cols sql.Schema) *Relation {
	return &Relation{Database: database, Table: table, Cols: cols}
}

func (r *Relation) Schema() sql.Schema { return r.Cols }
func (r *Relation) Children() []Node   { return nil }

func (r *Relation) WithChildren(children ...Node) (Node, error) {
	if len(children) != 0 {
		return nil, fmt.Errorf("relation %s.%s takes no children, got %d", r.Database, r.Table, len(children))
	}
	return r, nil
}

func (r *Relation) Equal(other Node) bool {
	o, ok := other.(*Relation)
	return ok && r.Database == o.Database && r.Table == o.Table && r.Cols.Equal(o.Cols)
}

func (r *Relation) String() string {
	return fmt.Sprintf("Relation %s.%s %s", r.Database, r.Table, r.Cols)
}

// Filter keeps the input rows its condition evaluates to true for
type Filter struct {
	Condition expr.Expression
	Input     Node
}

func NewFilter(condition expr.Expression, input Node) *Filter {
	return &Filter{Condition: condition, Input: input}
}

func (f *Filter) Schema() sql.Schema { return f.Input.Schema() }
func (f *Filter) Children() []Node   { return []Node{f.Input} }

func (f *Filter) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("filter takes one child, got %d", len(children))
	}
	return &Filter{Condition: f.Condition, Input: children[0]}, nil
}

func (f *Filter) Equal(other Node) bool {
	o, ok := other.(*Filter)
	return ok && f.Condition.Equal(o.Condition) && f.Input.Equal(o.Input)
}

func (f *Filter) String() string {
	return fmt.Sprintf("Filter %s", f.Condition)
}

// Project evaluates a projection list over its input
type Project struct {
	Projections []expr.Expression
	Input       Node
}

func NewProject(projections []expr.Expression, input Node) *Project {
	return &Project{Projections: projections, Input: input}
}

func (p *Project) Schema() sql.Schema {
	out := make(sql.Schema, len(p.Projections))
	for i, e := range p.Projections {
		out[i] = expr.OutputColumn(e)
	}
	return out
}

func (p *Project) Children() []Node { return []Node{p.Input} }

func (p *Project) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("project takes one child, got %d", len(children))
	}
	return &Project{Projections: p.Projections, Input: children[0]}, nil
}

func (p *Project) Equal(other Node) bool {
	o, ok := other.(*Project)
	if !ok || len(p.Projections) != len(o.Projections) {
		return false
	}
	for i := range p.Projections {
		if !p.Projections[i].Equal(o.Projections[i]) {
			return false
		}
	}
	return p.Input.Equal(o.Input)
}

func (p *Project) String() string {
	parts := make([]string, len(p.Projections))
	for i, e := range p.Projections {
		parts[i] = e.String()
	}
	return fmt.Sprintf("Project [%s]", strings.Join(parts, ", "))
}

// SubqueryAlias names a nested query block. It carries only the alias and is
// schema-transparent: removing it does not change the derivable output columns.
type SubqueryAlias struct {
	Alias string
	Input Node
}

func NewSubqueryAlias(alias string, input Node) *SubqueryAlias {
	return &SubqueryAlias{Alias: alias, Input: input}
}

func (s *SubqueryAlias) Schema() sql.Schema { return s.Input.Schema() }
func (s *SubqueryAlias) Children() []Node   { return []Node{s.Input} }

func (s *SubqueryAlias) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("subquery alias %q takes one child, got %d", s.Alias, len(children))
	}
	return &SubqueryAlias{Alias: s.Alias, Input: children[0]}, nil
}

func (s *SubqueryAlias) Equal(other Node) bool {
	o, ok := other.(*SubqueryAlias)
	return ok && s.Alias == o.Alias && s.Input.Equal(o.Input)
}

func (s *SubqueryAlias) String() string {
	return fmt.Sprintf("SubqueryAlias %s", s.Alias)
}

// JoinKind discriminates join flavors
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeft
	JoinCross
)

func (k JoinKind) String() string {
	switch k {
	case JoinInner:
		return "inner"
	case JoinLeft:
		return "left"
	case JoinCross:
		return "cross"
	default:
		return "unknown"
	}
}

// Join combines two inputs; Condition is nil for cross joins
type Join struct {
	Kind      JoinKind
	Condition expr.Expression
	Left      Node
	Right     Node
}

func NewJoin(kind JoinKind, condition expr.Expression, left, right Node) *Join {
	return &Join{Kind: kind, Condition: condition, Left: left, Right: right}
}

func (j *Join) Schema() sql.Schema {
	left := j.Left.Schema()
	right := j.Right.Schema()
	out := make(sql.Schema, 0, len(left)+len(right))
	out = append(out, left...)
	out = append(out, right...)
	return out
}

func (j *Join) Children() []Node { return []Node{j.Left, j.Right} }

func (j *Join) WithChildren(children ...Node) (Node, error) {
	if len(children) != 2 {
		return nil, fmt.Errorf("%s join takes two children, got %d", j.Kind, len(children))
	}
	return &Join{Kind: j.Kind, Condition: j.Condition, Left: children[0], Right: children[1]}, nil
}

func (j *Join) Equal(other Node) bool {
	o, ok := other.(*Join)
	if !ok || j.Kind != o.Kind {
		return false
	}
	if (j.Condition == nil) != (o.Condition == nil) {
		return false
	}
	if j.Condition != nil && !j.Condition.Equal(o.Condition) {
		return false
	}
	return j.Left.Equal(o.Left) && j.Right.Equal(o.Right)
}

func (j *Join) String() string {
	if j.Condition == nil {
		return fmt.Sprintf("Join %s", j.Kind)
	}
	return fmt.Sprintf("Join %s on %s", j.Kind, j.Condition)
}

// Limit caps the number of rows produced
type Limit struct {
	N     int64
	Input Node
}

func NewLimit(n int64, input Node) *Limit {
	return &Limit{N: n, Input: input}
}

func (l *Limit) Schema() sql.Schema { return l.Input.Schema() }
func (l *Limit) Children() []Node   { return []Node{l.Input} }

func (l *Limit) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("limit takes one child, got %d", len(children))
	}
	return &Limit{N: l.N, Input: children[0]}, nil
}

func (l *Limit) Equal(other Node) bool {
	o, ok := other.(*Limit)
	return ok && l.N == o.N && l.Input.Equal(o.Input)
}

func (l *Limit) String() string {
	return fmt.Sprintf("Limit %d", l.N)
}

// Distinct removes duplicate rows
type Distinct struct {
	Input Node
}

func NewDistinct(input Node) *Distinct {
	return &Distinct{Input: input}
}

func (d *Distinct) Schema() sql.Schema { return d.Input.Schema() }
func (d *Distinct) Children() []Node   { return []Node{d.Input} }

func (d *Distinct) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("distinct takes one child, got %d", len(children))
	}
	return &Distinct{Input: children[0]}, nil
}

func (d *Distinct) Equal(other Node) bool {
	o, ok := other.(*Distinct)
	return ok && d.Input.Equal(o.Input)
}

func (d *Distinct) String() string { return "Distinct" }

// SortKey orders by one expression
type SortKey struct {
	Expr expr.Expression
	Desc bool
}

func (k SortKey) String() string {
	if k.Desc {
		return k.Expr.String() + " DESC"
	}
	return k.Expr.String() + " ASC"
}

func (k SortKey) Equal(other SortKey) bool {
	return k.Desc == other.Desc && k.Expr.Equal(other.Expr)
}

// Sort orders the input rows by its keys
type Sort struct {
	Keys  []SortKey
	Input Node
}

func NewSort(keys []SortKey, input Node) *Sort {
	return &Sort{Keys: keys, Input: input}
}

func (s *Sort) Schema() sql.Schema { return s.Input.Schema() }
func (s *Sort) Children() []Node   { return []Node{s.Input} }

func (s *Sort) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("sort takes one child, got %d", len(children))
	}
	return &Sort{Keys: s.Keys, Input: children[0]}, nil
}

func (s *Sort) Equal(other Node) bool {
	o, ok := other.(*Sort)
	if !ok || len(s.Keys) != len(o.Keys) {
		return false
	}
	for i := range s.Keys {
		if !s.Keys[i].Equal(o.Keys[i]) {
			return false
		}
	}
	return s.Input.Equal(o.Input)
}

func (s *Sort) String() string {
	parts := make([]string, len(s.Keys))
	for i, k := range s.Keys {
		parts[i] = k.String()
	}
	return fmt.Sprintf("Sort [%s]", strings.Join(parts, ", "))
}

// Union concatenates two inputs with matching column counts; the output
// schema is the left input's.
type Union struct {
	Left  Node
	Right Node
}

func NewUnion(left, right Node) *Union {
	return &Union{Left: left, Right: right}
}

func (u *Union) Schema() sql.Schema { return u.Left.Schema() }
func (u *Union) Children() []Node   { return []Node{u.Left, u.Right} }

func (u *Union) WithChildren(children ...Node) (Node, error) {
	if len(children) != 2 {
		return nil, fmt.Errorf("union takes two children, got %d", len(children))
	}
	return &Union{Left: children[0], Right: children[1]}, nil
}

func (u *Union) Equal(other Node) bool {
	o, ok := other.(*Union)
	return ok && u.Left.Equal(o.Left) && u.Right.Equal(o.Right)
}

func (u *Union) String() string { return "Union" }

// AggregateFunc is one aggregate computation with its resolved output column
type AggregateFunc struct {
	Name string          // count, sum, min, max, avg
	Arg  expr.Expression // nil for count(*)
	Out  sql.Column
}

func (a AggregateFunc) String() string {
	if a.Arg == nil {
		return fmt.Sprintf("%s(*)", a.Name)
	}
	return fmt.Sprintf("%s(%s)", a.Name, a.Arg)
}

func (a AggregateFunc) Equal(other AggregateFunc) bool {
	if a.Name != other.Name || a.Out != other.Out {
		return false
	}
	if (a.Arg == nil) != (other.Arg == nil) {
		return false
	}
	return a.Arg == nil || a.Arg.Equal(other.Arg)
}

// Aggregate groups its input and computes aggregate functions per group
type Aggregate struct {
	Groupings []expr.Expression
	Aggs      []AggregateFunc
	Input     Node
}

func NewAggregate(groupings []expr.Expression, aggs []AggregateFunc, input Node) *Aggregate {
	return &Aggregate{Groupings: groupings, Aggs: aggs, Input: input}
}

func (a *Aggregate) Schema() sql.Schema {
	out := make(sql.Schema, 0, len(a.Groupings)+len(a.Aggs))
	for _, g := range a.Groupings {
		out = append(out, expr.OutputColumn(g))
	}
	for _, agg := range a.Aggs {
		out = append(out, agg.Out)
	}
	return out
}

func (a *Aggregate) Children() []Node { return []Node{a.Input} }

func (a *Aggregate) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("aggregate takes one child, got %d", len(children))
	}
	return &Aggregate{Groupings: a.Groupings, Aggs: a.Aggs, Input: children[0]}, nil
}

func (a *Aggregate) Equal(other Node) bool {
	o, ok := other.(*Aggregate)
	if !ok || len(a.Groupings) != len(o.Groupings) || len(a.Aggs) != len(o.Aggs) {
		return false
	}
	for i := range a.Groupings {
		if !a.Groupings[i].Equal(o.Groupings[i]) {
			return false
		}
	}
	for i := range a.Aggs {
		if !a.Aggs[i].Equal(o.Aggs[i]) {
			return false
		}
	}
	return a.Input.Equal(o.Input)
}

func (a *Aggregate) String() string {
	groups := make([]string, len(a.Groupings))
	for i, g := range a.Groupings {
		groups[i] = g.String()
	}
	aggs := make([]string, len(a.Aggs))
	for i, f := range a.Aggs {
		aggs[i] = f.String()
	}
	return fmt.Sprintf("Aggregate group=[%s] aggs=[%s]",
		strings.Join(groups, ", "), strings.Join(aggs, ", "))
}
