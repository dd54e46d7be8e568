package trace

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// OutputFormatter formats events for human-readable display
type OutputFormatter struct {
	useColor bool
	writer   io.Writer
}

// NewOutputFormatter creates a formatter with color support detection
func NewOutputFormatter(w io.Writer) *OutputFormatter {
	if w == nil {
		w = os.Stdout
	}
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isTerminal(f.Fd())
	}
	return &OutputFormatter{useColor: useColor, writer: w}
}

// Handle implements the Handler contract - prints events as they occur
func (f *OutputFormatter) Handle(event Event) {
	output := f.Format(event)
	if output != "" {
		fmt.Fprintln(f.writer, output)
	}
}

// Format converts an event to a human-readable line
func (f *OutputFormatter) Format(event Event) string {
	switch event.Name {
	case ExecutorBegin:
		return fmt.Sprintf("%s run=%s batches=%v",
			f.colorize("=== rewrite begin", color.FgGreen), event.RunID, event.Data["batches"])

	case ExecutorDone:
		return fmt.Sprintf("%s run=%s nodes=%v",
			f.colorize("=== rewrite done", color.FgGreen), event.RunID, event.Data["nodes"])

	case BatchBegin:
		return fmt.Sprintf("%s %s (%v)",
			f.colorize("batch", color.FgBlue), event.Batch, event.Data["strategy"])

	case BatchConverged:
		return fmt.Sprintf("%s %s after %v pass(es)",
			f.colorize("converged", color.FgCyan), event.Batch, event.Data["iterations"])

	case BatchMaxIterations:
		return fmt.Sprintf("%s %s stopped at iteration cap %v",
			f.colorize("⚠ not converged", color.FgYellow), event.Batch, event.Data["iterations"])

	case BatchDone:
		return fmt.Sprintf("%s %s", f.colorize("batch done", color.FgBlue), event.Batch)

	case RuleApplied:
		arrow := f.colorize(" → ", color.FgYellow)
		return fmt.Sprintf("  %s %s%s%v nodes",
			f.colorize("rule", color.FgCyan), event.Rule, arrow, event.Data["nodes"])

	case ErrorRule:
		return fmt.Sprintf("%s batch=%s rule=%s: %v",
			f.colorize("✗ rule failed", color.FgRed), event.Batch, event.Rule, event.Data["error"])

	default:
		return fmt.Sprintf("%s %s", event.Name, renderData(event.Data))
	}
}

func (f *OutputFormatter) colorize(text string, attrs ...color.Attribute) string {
	if !f.useColor {
		return text
	}
	return color.New(attrs...).Sprint(text)
}

func renderData(data map[string]interface{}) string {
	if len(data) == 0 {
		return ""
	}
	parts := make([]string, 0, len(data))
	for k, v := range data {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(parts, " ")
}

// ConsoleHandler creates a handler that prints formatted events to stderr
func ConsoleHandler() Handler {
	formatter := NewOutputFormatter(os.Stderr)
	return formatter.Handle
}

// isTerminal checks if the file descriptor is a terminal.
// This is a simplified version - in production you'd use a proper terminal detection library.
func isTerminal(fd uintptr) bool {
	return fd == uintptr(1) || fd == uintptr(2) // stdout or stderr
}
