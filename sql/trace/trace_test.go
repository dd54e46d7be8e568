package trace

import (
	"strings"
	"testing"
)

func TestCollectorRecordsAndForwards(t *testing.T) {
	var handled []Event
	c := NewCollector(func(e Event) { handled = append(handled, e) })

	if !c.Enabled() {
		t.Fatal("collector with a handler should be enabled")
	}
	if c.RunID() == "" {
		t.Error("expected a run id")
	}

	c.Emit(RuleApplied, "simplification", "combine-filters", map[string]interface{}{"nodes": 3})
	c.Emit(BatchConverged, "simplification", "", map[string]interface{}{"iterations": 2})

	if len(handled) != 2 || len(c.Events()) != 2 {
		t.Fatalf("handled %d, recorded %d, want 2 each", len(handled), len(c.Events()))
	}
	first := handled[0]
	if first.Name != RuleApplied || first.Batch != "simplification" || first.Rule != "combine-filters" {
		t.Errorf("event = %+v", first)
	}
	if first.RunID != c.RunID() {
		t.Error("events should carry the collector's run id")
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.Emit(RuleApplied, "b", "r", nil) // must not panic
	if c.Enabled() {
		t.Error("nil collector is disabled")
	}
	if c.Events() != nil {
		t.Error("nil collector has no events")
	}

	disabled := NewCollector(nil)
	disabled.Emit(RuleApplied, "b", "r", nil)
	if len(disabled.Events()) != 0 {
		t.Error("disabled collector must not record")
	}
}

func TestFormatterAttributesEvents(t *testing.T) {
	var buf strings.Builder
	f := NewOutputFormatter(discardWriter{&buf})

	line := f.Format(Event{
		Name:  RuleApplied,
		Batch: "simplification",
		Rule:  "combine-filters",
		Data:  map[string]interface{}{"nodes": 3},
	})
	if !strings.Contains(line, "combine-filters") {
		t.Errorf("rule name missing from %q", line)
	}

	line = f.Format(Event{
		Name:  BatchMaxIterations,
		Batch: "oscillator",
		Data:  map[string]interface{}{"iterations": 7},
	})
	if !strings.Contains(line, "oscillator") || !strings.Contains(line, "7") {
		t.Errorf("non-convergence line missing attribution: %q", line)
	}

	line = f.Format(Event{
		Name:  ErrorRule,
		Batch: "breaking",
		Rule:  "fragile",
		Data:  map[string]interface{}{"error": "unexpected payload"},
	})
	for _, want := range []string{"breaking", "fragile", "unexpected payload"} {
		if !strings.Contains(line, want) {
			t.Errorf("error line %q missing %q", line, want)
		}
	}
}

// discardWriter keeps the formatter off the *os.File color-detection path
type discardWriter struct{ b *strings.Builder }

func (w discardWriter) Write(p []byte) (int, error) { return w.b.Write(p) }
