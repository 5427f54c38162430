package acceptor

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/mcp-base/mcp-acceptor/runner"
	"github.com/mcp-base/mcp-acceptor/types"
)

// ResultFormatter is responsible for formatting and displaying run results.
// FormatResults returns the rendered table so callers can also persist a
// plain-text copy.
type ResultFormatter interface {
	FormatResults(result *runner.RunnerResult) (string, error)
}

// ConsoleResultFormatter implements the ResultFormatter interface.
type ConsoleResultFormatter struct{}

// NewConsoleResultFormatter creates a new ConsoleResultFormatter.
func NewConsoleResultFormatter() *ConsoleResultFormatter {
	return &ConsoleResultFormatter{}
}

// FormatResults renders the run results as a table, mirrored to stdout.
func (f *ConsoleResultFormatter) FormatResults(result *runner.RunnerResult) (string, error) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("MCP Acceptance Results (%s)", formatDuration(result.Duration)))

	t.AppendHeader(table.Row{
		"Plugin", "Tool", "Duration", "Status", "Message", "Error",
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Plugin", WidthMax: 40},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Message", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Error", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, o := range result.Outcomes {
		t.AppendRow(table.Row{
			o.PluginName,
			o.ToolName,
			formatDuration(o.Duration),
			getResultString(o.Status),
			o.Message,
			o.Error,
		})
	}

	// Update the table style setting based on result status
	if result.Status == types.TestStatusPass {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	// Add summary footer
	t.AppendFooter(table.Row{
		"TOTAL",
		"",
		formatDuration(result.Duration),
		getResultString(result.Status),
		fmt.Sprintf("%d tests: %d passed, %d failed, %d skipped",
			result.Stats.Total, result.Stats.Passed, result.Stats.Failed, result.Stats.Skipped),
		"",
	})

	return t.Render(), nil
}
