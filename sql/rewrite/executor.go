package rewrite

import (
	"errors"

	"github.com/calderdb/calder/sql/plan"
	"github.com/calderdb/calder/sql/trace"
)

// Executor runs an ordered list of batches over a plan tree. It is pure,
// synchronous, and deterministic: the same tree and batch list always produce
// a structurally equal output tree.
type Executor struct {
	batches []Batch
	tracer  *trace.Collector
}

// NewExecutor creates an executor; tracer may be nil
func NewExecutor(batches []Batch, tracer *trace.Collector) *Executor {
	return &Executor{batches: batches, tracer: tracer}
}

// Batches returns the configured batch list in execution order
func (e *Executor) Batches() []Batch { return e.batches }

// Execute runs every batch in order, feeding each batch's output tree to the
// next. A rule failure aborts the whole execution with a *RuleError; hitting
// a FixedPoint iteration cap is recorded in the Report and the last tree is
// still returned.
func (e *Executor) Execute(n plan.Node) (plan.Node, *Report, error) {
	report := &Report{}
	e.tracer.Emit(trace.ExecutorBegin, "", "", map[string]interface{}{
		"batches": len(e.batches),
	})

	current := n
	for _, batch := range e.batches {
		result, err := e.executeBatch(batch, current, report)
		if err != nil {
			return nil, report, err
		}
		current = result
	}

	e.tracer.Emit(trace.ExecutorDone, "", "", map[string]interface{}{
		"nodes": plan.Count(current),
	})
	return current, report, nil
}

// executeBatch runs one batch to completion per its strategy
func (e *Executor) executeBatch(batch Batch, n plan.Node, report *Report) (plan.Node, error) {
	e.tracer.Emit(trace.BatchBegin, batch.Name, "", map[string]interface{}{
		"strategy": batch.Strategy.String(),
	})

	current := n
	maxIterations := batch.Strategy.MaxIterations()
	converged := false

	for iteration := 1; iteration <= maxIterations; iteration++ {
		passStart := current

		for _, rule := range batch.Rules {
			result, err := rule.Apply(current)
			if err != nil {
				return nil, e.ruleFailure(batch, rule, current, err)
			}
			if result == nil {
				return nil, e.ruleFailure(batch, rule, current,
					errors.New("rule returned a nil tree"))
			}
			if result != current && !plan.Equal(result, current) {
				e.tracer.Emit(trace.RuleApplied, batch.Name, rule.Name, map[string]interface{}{
					"nodes": plan.Count(result),
				})
				current = result
			}
		}

		if batch.Strategy.IsOnce() {
			break
		}
		if plan.Equal(passStart, current) {
			converged = true
			e.tracer.Emit(trace.BatchConverged, batch.Name, "", map[string]interface{}{
				"iterations": iteration,
			})
			break
		}
	}

	if !batch.Strategy.IsOnce() && !converged {
		report.NonConvergence = append(report.NonConvergence, NonConvergence{
			Batch:      batch.Name,
			Iterations: maxIterations,
		})
		e.tracer.Emit(trace.BatchMaxIterations, batch.Name, "", map[string]interface{}{
			"iterations": maxIterations,
		})
	}

	e.tracer.Emit(trace.BatchDone, batch.Name, "", nil)
	return current, nil
}

// ruleFailure wraps a rule error with batch/rule attribution and the
// offending node. Rules that pinpoint the node return a *NodeError; otherwise
// the whole input tree is attached.
func (e *Executor) ruleFailure(batch Batch, rule Rule, input plan.Node, err error) error {
	node := input
	var nodeErr *NodeError
	if errors.As(err, &nodeErr) {
		node = nodeErr.Node
		err = nodeErr.Err
	}
	e.tracer.Emit(trace.ErrorRule, batch.Name, rule.Name, map[string]interface{}{
		"error": err.Error(),
	})
	return &RuleError{Batch: batch.Name, Rule: rule.Name, Node: node, Err: err}
}
