package rewrite

import (
	"fmt"

	"github.com/calderdb/calder/sql/plan"
)

// NodeError marks a failure with the specific node a rule could not rewrite.
// Rules return it from inside a traversal so the executor can attribute the
// failure precisely.
type NodeError struct {
	Node plan.Node
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("at node %q: %v", e.Node, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// RuleError is a rule failure attributed to its batch and rule name, carrying
// the offending node for diagnosis. A rule failure aborts the current pass;
// rules are expected to be total over well-formed trees, so this indicates a
// malformed input tree or a rule bug.
type RuleError struct {
	Batch string
	Rule  string
	Node  plan.Node
	Err   error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rewrite batch %q rule %q failed: %v", e.Batch, e.Rule, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// NonConvergence records a FixedPoint batch that exhausted its iteration cap
// without reaching structural equality. It is a reportable condition, not an
// error: the last tree produced is still returned.
type NonConvergence struct {
	Batch      string
	Iterations int
}

func (n NonConvergence) String() string {
	return fmt.Sprintf("batch %q did not converge after %d iterations", n.Batch, n.Iterations)
}

// Report is the per-execution outcome summary
type Report struct {
	NonConvergence []NonConvergence
}

// Converged reports whether every FixedPoint batch reached a fixed point
func (r *Report) Converged() bool {
	return len(r.NonConvergence) == 0
}
