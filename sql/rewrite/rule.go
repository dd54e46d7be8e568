// Package rewrite is the rule-based engine that simplifies logical plan
// trees: named pure rules are grouped into ordered batches, and an executor
// runs each batch once or to a structural fixed point under an iteration cap.
package rewrite

import (
	"fmt"

	"github.com/calderdb/calder/sql/plan"
)

// Rule is a named, pure tree-to-tree transformation. Apply must be total over
// well-formed trees: when the target pattern is absent it returns a
// structurally equal tree, and it never depends on state between calls.
type Rule struct {
	Name  string
	Apply func(plan.Node) (plan.Node, error)
}

// Strategy decides how a batch's rule sequence is repeated
type Strategy struct {
	maxIterations int // 0 means a single pass
}

// Once applies every rule in the batch exactly one pass
var Once = Strategy{}

// FixedPoint repeats the full rule sequence until the tree stops changing or
// max passes have run, whichever comes first
func FixedPoint(max int) Strategy {
	if max < 1 {
		max = 1
	}
	return Strategy{maxIterations: max}
}

// IsOnce reports whether the strategy is a single pass
func (s Strategy) IsOnce() bool { return s.maxIterations == 0 }

// MaxIterations returns the pass cap; 1 for Once
func (s Strategy) MaxIterations() int {
	if s.IsOnce() {
		return 1
	}
	return s.maxIterations
}

func (s Strategy) String() string {
	if s.IsOnce() {
		return "once"
	}
	return fmt.Sprintf("fixed-point(%d)", s.maxIterations)
}

// Batch is an ordered group of rules sharing one convergence strategy
type Batch struct {
	Name     string
	Strategy Strategy
	Rules    []Rule
}
