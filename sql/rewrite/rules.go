package rewrite

import (
	"github.com/calderdb/calder/sql"
	"github.com/calderdb/calder/sql/expr"
	"github.com/calderdb/calder/sql/plan"
)

// EliminateSubqueryAliases removes every named subquery wrapper, replacing it
// with its single child. The wrapper is schema-transparent so no reference
// held by an ancestor is invalidated. Bottom-up traversal collapses nested
// wrappers inner-to-outer in one pass, making the rule idempotent.
func EliminateSubqueryAliases() Rule {
	return Rule{
		Name: "eliminate-subquery-aliases",
		Apply: func(n plan.Node) (plan.Node, error) {
			return plan.TransformUp(n, func(n plan.Node) (plan.Node, error) {
				if alias, ok := n.(*plan.SubqueryAlias); ok {
					return alias.Input, nil
				}
				return n, nil
			})
		},
	}
}

// CombineFilters merges adjacent filters into one with an AND-ed predicate.
// Bottom-up traversal collapses a whole filter chain in a single pass.
func CombineFilters() Rule {
	return Rule{
		Name: "combine-filters",
		Apply: func(n plan.Node) (plan.Node, error) {
			return plan.TransformUp(n, func(n plan.Node) (plan.Node, error) {
				outer, ok := n.(*plan.Filter)
				if !ok {
					return n, nil
				}
				inner, ok := outer.Input.(*plan.Filter)
				if !ok {
					return n, nil
				}
				condition := &expr.And{Left: outer.Condition, Right: inner.Condition}
				return plan.NewFilter(condition, inner.Input), nil
			})
		},
	}
}

// SimplifyFilters folds boolean constants in filter predicates and drops
// filters whose predicate folds to true. Predicates that fold to false are
// left in place; there is no empty-relation node to lower them to.
func SimplifyFilters() Rule {
	return Rule{
		Name: "simplify-filters",
		Apply: func(n plan.Node) (plan.Node, error) {
			return plan.TransformUp(n, func(n plan.Node) (plan.Node, error) {
				filter, ok := n.(*plan.Filter)
				if !ok {
					return n, nil
				}
				folded := expr.FoldBool(filter.Condition)
				if lit, ok := folded.(*expr.Literal); ok && lit.IsBool(true) {
					return filter.Input, nil
				}
				if folded.Equal(filter.Condition) {
					return n, nil
				}
				return plan.NewFilter(folded, filter.Input), nil
			})
		},
	}
}

// CollapseProjects merges a projection over a projection by substituting the
// inner projection's expressions into the outer's column references. The pair
// is left unchanged when the outer references a column the inner does not
// produce with a bound id.
func CollapseProjects() Rule {
	return Rule{
		Name: "collapse-projects",
		Apply: func(n plan.Node) (plan.Node, error) {
			return plan.TransformUp(n, func(n plan.Node) (plan.Node, error) {
				outer, ok := n.(*plan.Project)
				if !ok {
					return n, nil
				}
				inner, ok := outer.Input.(*plan.Project)
				if !ok {
					return n, nil
				}

				byID := make(map[sql.ColumnID]expr.Expression, len(inner.Projections))
				for _, p := range inner.Projections {
					col := expr.OutputColumn(p)
					if col.ID == 0 {
						continue
					}
					byID[col.ID] = stripAlias(p)
				}

				merged := make([]expr.Expression, len(outer.Projections))
				for i, p := range outer.Projections {
					sub, ok := substitute(p, byID)
					if !ok {
						return n, nil
					}
					// Substitution must not rename or re-bind the output
					// column the outer projection promised its ancestors
					want := expr.OutputColumn(p)
					if got := expr.OutputColumn(sub); got != want {
						sub = &expr.Alias{Name: want.Name, Input: sub}
						if expr.OutputColumn(sub) != want {
							return n, nil
						}
					}
					merged[i] = sub
				}
				return plan.NewProject(merged, inner.Input), nil
			})
		},
	}
}

// PruneNoopLimit collapses stacked limits, keeping the smaller row cap
func PruneNoopLimit() Rule {
	return Rule{
		Name: "prune-noop-limit",
		Apply: func(n plan.Node) (plan.Node, error) {
			return plan.TransformUp(n, func(n plan.Node) (plan.Node, error) {
				outer, ok := n.(*plan.Limit)
				if !ok {
					return n, nil
				}
				inner, ok := outer.Input.(*plan.Limit)
				if !ok {
					return n, nil
				}
				limit := outer.N
				if inner.N < limit {
					limit = inner.N
				}
				return plan.NewLimit(limit, inner.Input), nil
			})
		},
	}
}

// DefaultBatches is the standard rewrite pipeline: a single analysis-cleanup
// pass that strips subquery wrappers, then operator simplification run to a
// fixed point.
func DefaultBatches(maxIterations int) []Batch {
	if maxIterations < 1 {
		maxIterations = 100
	}
	return []Batch{
		{
			Name:     "finish-analysis",
			Strategy: Once,
			Rules:    []Rule{EliminateSubqueryAliases()},
		},
		{
			Name:     "simplification",
			Strategy: FixedPoint(maxIterations),
			Rules: []Rule{
				CombineFilters(),
				SimplifyFilters(),
				CollapseProjects(),
				PruneNoopLimit(),
			},
		},
	}
}

// stripAlias unwraps projection naming so substituted expressions do not
// carry stale output names into the merged projection
func stripAlias(e expr.Expression) expr.Expression {
	if alias, ok := e.(*expr.Alias); ok {
		return alias.Input
	}
	return e
}

// substitute rebuilds e with column references replaced by the expressions
// that produce them. Returns false when a referenced id has no replacement.
func substitute(e expr.Expression, byID map[sql.ColumnID]expr.Expression) (expr.Expression, bool) {
	switch v := e.(type) {
	case *expr.ColumnRef:
		replacement, ok := byID[v.ID]
		if !ok {
			return nil, false
		}
		return replacement, true

	case *expr.Literal:
		return v, true

	case *expr.Alias:
		input, ok := substitute(v.Input, byID)
		if !ok {
			return nil, false
		}
		return &expr.Alias{Name: v.Name, Input: input}, true

	case *expr.Compare:
		left, lok := substitute(v.Left, byID)
		right, rok := substitute(v.Right, byID)
		if !lok || !rok {
			return nil, false
		}
		return &expr.Compare{Op: v.Op, Left: left, Right: right}, true

	case *expr.And:
		left, lok := substitute(v.Left, byID)
		right, rok := substitute(v.Right, byID)
		if !lok || !rok {
			return nil, false
		}
		return &expr.And{Left: left, Right: right}, true

	case *expr.Or:
		left, lok := substitute(v.Left, byID)
		right, rok := substitute(v.Right, byID)
		if !lok || !rok {
			return nil, false
		}
		return &expr.Or{Left: left, Right: right}, true

	case *expr.Not:
		input, ok := substitute(v.Input, byID)
		if !ok {
			return nil, false
		}
		return &expr.Not{Input: input}, true

	default:
		return nil, false
	}
}
