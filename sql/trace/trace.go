// Package trace provides a low-overhead event stream for rewrite runs so that
// every change, convergence, and failure is attributable to a named rule and
// batch.
package trace

import (
	"time"

	"github.com/google/uuid"
)

// Event name constants following hierarchical naming pattern
const (
	// Executor lifecycle
	ExecutorBegin = "executor/begin"
	ExecutorDone  = "executor/done"

	// Batch execution
	BatchBegin         = "batch/begin"
	BatchConverged     = "batch/converged"
	BatchMaxIterations = "batch/max-iterations"
	BatchDone          = "batch/done"

	// Rule application
	RuleApplied = "rule/applied"

	// Errors
	ErrorRule = "error/rule"
)

// Event is a single annotation emitted during a rewrite run
type Event struct {
	Name  string    // Event name using the hierarchical constants above
	Time  time.Time // When the event occurred
	RunID string    // Identifies the executor invocation
	Batch string    // Batch name, empty for executor-level events
	Rule  string    // Rule name, empty for batch/executor-level events
	Data  map[string]interface{}
}

// Handler processes events as they occur
type Handler func(event Event)

// Collector forwards events for one rewrite run. A nil Collector or a
// Collector without a handler discards everything at near-zero cost.
type Collector struct {
	enabled bool
	handler Handler
	runID   string
	events  []Event
}

// NewCollector creates a collector with a fresh run id
func NewCollector(handler Handler) *Collector {
	return &Collector{
		enabled: handler != nil,
		handler: handler,
		runID:   uuid.NewString(),
		events:  make([]Event, 0, 32),
	}
}

// Enabled reports whether emitted events are observed
func (c *Collector) Enabled() bool {
	return c != nil && c.enabled
}

// RunID returns the identifier for this run, or "" when disabled
func (c *Collector) RunID() string {
	if c == nil {
		return ""
	}
	return c.runID
}

// Emit records an event and forwards it to the handler
func (c *Collector) Emit(name, batch, rule string, data map[string]interface{}) {
	if !c.Enabled() {
		return
	}
	event := Event{
		Name:  name,
		Time:  time.Now(),
		RunID: c.runID,
		Batch: batch,
		Rule:  rule,
		Data:  data,
	}
	c.events = append(c.events, event)
	c.handler(event)
}

// Events returns everything emitted so far
func (c *Collector) Events() []Event {
	if c == nil {
		return nil
	}
	return c.events
}
