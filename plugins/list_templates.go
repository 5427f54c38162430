package plugins

import (
	"context"
	"fmt"

	"github.com/mcp-base/mcp-acceptor/mcp"
	"github.com/mcp-base/mcp-acceptor/plugin"
	"github.com/mcp-base/mcp-acceptor/types"
)

// ListTemplates verifies the list_templates tool returns the template catalog.
type ListTemplates struct{ plugin.Meta }

func NewListTemplates() *ListTemplates {
	return &ListTemplates{plugin.Meta{
		PluginName: "ListTemplates",
		Tool:       "list_templates",
		Desc:       "Verifies list_templates returns available templates",
	}}
}

func (p *ListTemplates) Run(ctx context.Context, sess mcp.Session) (types.Outcome, error) {
	result, err := sess.CallTool(ctx, p.ToolName(), map[string]interface{}{})
	if err != nil {
		return plugin.Fail(p, "Tool call failed", err.Error()), nil
	}
	text := result.Text()

	// bin/ scripts live in a separate package, so only core templates are
	// expected here.
	expectedSections := []string{
		"Server Templates",
		"Container Templates",
		"Helm Chart Templates",
		"Utility Templates",
		"Utility Scripts",
	}
	expectedTemplates := []string{
		"entry_point.py.j2",
		"prompt_registry.py.j2",
		"Dockerfile.j2",
		"Chart.yaml.j2",
		"Makefile.j2",
	}

	if missing := missingFrom(text, expectedSections); len(missing) > 0 {
		return plugin.Fail(p, fmt.Sprintf("Missing sections: %v", missing), ""), nil
	}
	if missing := missingFrom(text, expectedTemplates); len(missing) > 0 {
		return plugin.Fail(p, fmt.Sprintf("Missing templates: %v", missing), ""), nil
	}
	return plugin.Pass(p, "Found all expected sections and templates"), nil
}
