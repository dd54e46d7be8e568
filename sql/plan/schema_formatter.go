package plan

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/calderdb/calder/sql"
)

// SchemaFormatter renders derived schemas as markdown tables for explain
// output
type SchemaFormatter struct{}

// NewSchemaFormatter creates a formatter with default settings
func NewSchemaFormatter() *SchemaFormatter {
	return &SchemaFormatter{}
}

// FormatSchema formats a schema as a markdown table of column, type, and id
func (f *SchemaFormatter) FormatSchema(s sql.Schema) string {
	if len(s) == 0 {
		return "_Empty schema_"
	}

	tableString := &strings.Builder{}
	alignment := make([]tw.Align, 3)
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	table := tablewriter.NewTable(tableString,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header([]string{"column", "type", "id"})
	for _, col := range s {
		table.Append([]string{col.Name, col.Type.String(), fmt.Sprintf("%d", col.ID)})
	}
	table.Render()

	tableString.WriteString(fmt.Sprintf("\n_%d columns_\n", len(s)))
	return tableString.String()
}

// FormatNode formats a node's one-line description with its derived schema
func (f *SchemaFormatter) FormatNode(n Node) string {
	return fmt.Sprintf("%s\n\n%s", n, f.FormatSchema(n.Schema()))
}
