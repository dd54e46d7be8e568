// Package resolve turns a SQL SELECT into a fully-resolved logical plan tree:
// tables are looked up in the catalog, every column reference is bound to a
// stable id, and nested query blocks are wrapped in SubqueryAlias nodes for
// the rewrite engine to strip. All name binding happens here; rewrites never
// re-bind.
package resolve

import (
	"fmt"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/opcode"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	"github.com/calderdb/calder/sql"
	"github.com/calderdb/calder/sql/catalog"
	"github.com/calderdb/calder/sql/expr"
	"github.com/calderdb/calder/sql/plan"
)

// Resolver binds parsed statements against a catalog
type Resolver struct {
	parser    *parser.Parser
	catalog   *catalog.Catalog
	defaultDB string
	nextID    sql.ColumnID
}

// NewResolver creates a resolver reading table metadata from the catalog.
// Unqualified table names resolve against defaultDB.
func NewResolver(cat *catalog.Catalog, defaultDB string) *Resolver {
	return &Resolver{
		parser:    parser.New(),
		catalog:   cat,
		defaultDB: defaultDB,
	}
}

// Resolve parses a single SELECT statement and returns the resolved tree.
// Column ids are assigned fresh per call and are unique within the tree.
func (r *Resolver) Resolve(query string) (plan.Node, error) {
	stmts, _, err := r.parser.Parse(query, "", "")
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}
	if len(stmts) != 1 {
		return nil, fmt.Errorf("expected one statement, got %d", len(stmts))
	}
	sel, ok := stmts[0].(*ast.SelectStmt)
	if !ok {
		return nil, fmt.Errorf("unsupported statement %T, only SELECT is resolved", stmts[0])
	}

	r.nextID = 0
	return r.resolveSelect(sel)
}

func (r *Resolver) resolveSelect(sel *ast.SelectStmt) (plan.Node, error) {
	if sel.From == nil || sel.From.TableRefs == nil {
		return nil, fmt.Errorf("SELECT without FROM is not resolvable")
	}
	if sel.GroupBy != nil {
		return nil, fmt.Errorf("GROUP BY is not supported by the resolver")
	}
	if sel.Having != nil {
		return nil, fmt.Errorf("HAVING is not supported by the resolver")
	}

	node, err := r.resolveResultSet(sel.From.TableRefs)
	if err != nil {
		return nil, err
	}
	scope := node.Schema()

	if sel.Where != nil {
		condition, err := r.resolveExpr(sel.Where, scope)
		if err != nil {
			return nil, err
		}
		node = plan.NewFilter(asPredicate(condition), node)
	}

	if sel.OrderBy != nil {
		keys := make([]plan.SortKey, len(sel.OrderBy.Items))
		for i, item := range sel.OrderBy.Items {
			keyExpr, err := r.resolveExpr(item.Expr, scope)
			if err != nil {
				return nil, err
			}
			keys[i] = plan.SortKey{Expr: keyExpr, Desc: item.Desc}
		}
		node = plan.NewSort(keys, node)
	}

	projections, err := r.resolveFields(sel.Fields, scope)
	if err != nil {
		return nil, err
	}
	node = plan.NewProject(projections, node)

	if sel.Distinct {
		node = plan.NewDistinct(node)
	}

	if sel.Limit != nil {
		node, err = r.resolveLimit(sel.Limit, node)
		if err != nil {
			return nil, err
		}
	}

	return node, nil
}

func (r *Resolver) resolveResultSet(rs ast.ResultSetNode) (plan.Node, error) {
	switch n := rs.(type) {
	case *ast.Join:
		left, err := r.resolveResultSet(n.Left)
		if err != nil {
			return nil, err
		}
		if n.Right == nil {
			return left, nil
		}
		right, err := r.resolveResultSet(n.Right)
		if err != nil {
			return nil, err
		}

		var kind plan.JoinKind
		switch n.Tp {
		case ast.CrossJoin:
			kind = plan.JoinCross
		case ast.LeftJoin:
			kind = plan.JoinLeft
		default:
			return nil, fmt.Errorf("unsupported join type %v", n.Tp)
		}

		var condition expr.Expression
		if n.On != nil {
			scope := append(append(sql.Schema{}, left.Schema()...), right.Schema()...)
			condition, err = r.resolveExpr(n.On.Expr, scope)
			if err != nil {
				return nil, err
			}
			condition = asPredicate(condition)
			if kind == plan.JoinCross {
				kind = plan.JoinInner
			}
		}
		return plan.NewJoin(kind, condition, left, right), nil

	case *ast.TableSource:
		return r.resolveTableSource(n)

	default:
		return nil, fmt.Errorf("unsupported table reference %T", rs)
	}
}

func (r *Resolver) resolveTableSource(src *ast.TableSource) (plan.Node, error) {
	switch s := src.Source.(type) {
	case *ast.TableName:
		db := s.Schema.L
		if db == "" {
			db = r.defaultDB
		}
		tbl, err := r.catalog.GetTable(db, s.Name.L)
		if err != nil {
			return nil, fmt.Errorf("resolving %s.%s: %w", db, s.Name.L, err)
		}
		cols := make(sql.Schema, len(tbl.Columns))
		for i, c := range tbl.Columns {
			r.nextID++
			cols[i] = sql.Column{Name: c.Name, Type: c.Type, ID: r.nextID}
		}
		var node plan.Node = plan.NewRelation(db, tbl.Name, cols)
		if alias := src.AsName.L; alias != "" {
			node = plan.NewSubqueryAlias(alias, node)
		}
		return node, nil

	case *ast.SelectStmt:
		child, err := r.resolveSelect(s)
		if err != nil {
			return nil, err
		}
		alias := src.AsName.L
		if alias == "" {
			return nil, fmt.Errorf("subquery in FROM requires an alias")
		}
		return plan.NewSubqueryAlias(alias, child), nil

	default:
		return nil, fmt.Errorf("unsupported table source %T", src.Source)
	}
}

func (r *Resolver) resolveFields(fields *ast.FieldList, scope sql.Schema) ([]expr.Expression, error) {
	if fields == nil || len(fields.Fields) == 0 {
		return nil, fmt.Errorf("empty select list")
	}
	var out []expr.Expression
	for _, field := range fields.Fields {
		if field.WildCard != nil {
			for _, col := range scope {
				out = append(out, &expr.ColumnRef{Name: col.Name, ID: col.ID, DataType: col.Type})
			}
			continue
		}
		e, err := r.resolveExpr(field.Expr, scope)
		if err != nil {
			return nil, err
		}
		if name := field.AsName.L; name != "" {
			e = &expr.Alias{Name: name, Input: e}
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *Resolver) resolveLimit(limit *ast.Limit, input plan.Node) (plan.Node, error) {
	if limit.Offset != nil {
		return nil, fmt.Errorf("LIMIT with OFFSET is not supported by the resolver")
	}
	count, err := r.resolveExpr(limit.Count, nil)
	if err != nil {
		return nil, err
	}
	lit, ok := count.(*expr.Literal)
	if !ok || lit.DataType != sql.TypeInt {
		return nil, fmt.Errorf("LIMIT count must be an integer literal, got %s", count)
	}
	return plan.NewLimit(lit.Value.(int64), input), nil
}

func (r *Resolver) resolveExpr(node ast.ExprNode, scope sql.Schema) (expr.Expression, error) {
	switch n := node.(type) {
	case *ast.ColumnNameExpr:
		return resolveColumn(n, scope)

	case ast.ValueExpr:
		return literalOf(n.GetValue())

	case *ast.BinaryOperationExpr:
		left, err := r.resolveExpr(n.L, scope)
		if err != nil {
			return nil, err
		}
		right, err := r.resolveExpr(n.R, scope)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case opcode.LogicAnd:
			return &expr.And{Left: left, Right: right}, nil
		case opcode.LogicOr:
			return &expr.Or{Left: left, Right: right}, nil
		case opcode.EQ:
			return &expr.Compare{Op: expr.OpEq, Left: left, Right: right}, nil
		case opcode.NE:
			return &expr.Compare{Op: expr.OpNe, Left: left, Right: right}, nil
		case opcode.LT:
			return &expr.Compare{Op: expr.OpLt, Left: left, Right: right}, nil
		case opcode.LE:
			return &expr.Compare{Op: expr.OpLe, Left: left, Right: right}, nil
		case opcode.GT:
			return &expr.Compare{Op: expr.OpGt, Left: left, Right: right}, nil
		case opcode.GE:
			return &expr.Compare{Op: expr.OpGe, Left: left, Right: right}, nil
		default:
			return nil, fmt.Errorf("unsupported operator %s", n.Op)
		}

	case *ast.UnaryOperationExpr:
		if n.Op != opcode.Not {
			return nil, fmt.Errorf("unsupported unary operator %s", n.Op)
		}
		input, err := r.resolveExpr(n.V, scope)
		if err != nil {
			return nil, err
		}
		return &expr.Not{Input: input}, nil

	case *ast.ParenthesesExpr:
		return r.resolveExpr(n.Expr, scope)

	default:
		return nil, fmt.Errorf("unsupported expression %T", node)
	}
}

func resolveColumn(n *ast.ColumnNameExpr, scope sql.Schema) (expr.Expression, error) {
	name := n.Name.Name.L
	var found *sql.Column
	for i := range scope {
		if strings.EqualFold(scope[i].Name, name) {
			if found != nil {
				return nil, fmt.Errorf("ambiguous column %q", name)
			}
			found = &scope[i]
		}
	}
	if found == nil {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	return &expr.ColumnRef{Name: found.Name, ID: found.ID, DataType: found.Type}, nil
}

// asPredicate applies MySQL truthiness to a condition: numeric literals in a
// boolean position (the condition itself, or an operand of AND/OR/NOT) become
// boolean literals, non-zero meaning true. The parser lexes TRUE and FALSE as
// the integers 1 and 0, so without this step resolved trees would never carry
// a boolean literal and constant predicates could not fold.
func asPredicate(e expr.Expression) expr.Expression {
	switch v := e.(type) {
	case *expr.Literal:
		switch value := v.Value.(type) {
		case int64:
			return boolLiteral(value != 0)
		case float64:
			return boolLiteral(value != 0)
		}
		return e
	case *expr.And:
		return &expr.And{Left: asPredicate(v.Left), Right: asPredicate(v.Right)}
	case *expr.Or:
		return &expr.Or{Left: asPredicate(v.Left), Right: asPredicate(v.Right)}
	case *expr.Not:
		return &expr.Not{Input: asPredicate(v.Input)}
	default:
		return e
	}
}

func boolLiteral(b bool) *expr.Literal {
	if b {
		return expr.True
	}
	return expr.False
}

// literalOf converts a parser literal into a typed Literal. Parser integers
// arrive as int64 or uint64 depending on sign; both bind to the int type.
func literalOf(v interface{}) (expr.Expression, error) {
	switch value := v.(type) {
	case int64:
		return &expr.Literal{Value: value, DataType: sql.TypeInt}, nil
	case uint64:
		return &expr.Literal{Value: int64(value), DataType: sql.TypeInt}, nil
	case float64:
		return &expr.Literal{Value: value, DataType: sql.TypeFloat}, nil
	case string:
		return &expr.Literal{Value: value, DataType: sql.TypeString}, nil
	case []byte:
		return &expr.Literal{Value: value, DataType: sql.TypeBytes}, nil
	default:
		return nil, fmt.Errorf("unsupported literal type %T", v)
	}
}
