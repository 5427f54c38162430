package plugins

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcp-base/mcp-acceptor/mcp"
	"github.com/mcp-base/mcp-acceptor/plugin"
	"github.com/mcp-base/mcp-acceptor/types"
)

// GetPattern verifies the get_pattern tool serves pattern documentation,
// including the generation-workflow pattern agents depend on, and that an
// unknown pattern name yields an error response.
type GetPattern struct{ plugin.Meta }

func NewGetPattern() *GetPattern {
	return &GetPattern{plugin.Meta{
		PluginName: "GetPattern",
		Tool:       "get_pattern",
		Desc:       "Verifies get_pattern retrieves pattern documentation",
		RunAfter:   []string{"ListPatterns"},
	}}
}

func (p *GetPattern) Run(ctx context.Context, sess mcp.Session) (types.Outcome, error) {
	result, err := sess.CallTool(ctx, p.ToolName(), map[string]interface{}{
		"name": "fastmcp-tools",
	})
	if err != nil {
		return plugin.Fail(p, "Tool call failed", err.Error()), nil
	}
	text := result.Text()

	if strings.HasPrefix(text, "Error:") {
		return plugin.Fail(p, "Pattern retrieval failed", text), nil
	}
	if isErr, detail := mcp.OperationalError(text); isErr {
		return plugin.Fail(p, "Pattern retrieval failed", detail), nil
	}
	if !strings.Contains(text, "#") && len(text) < 100 {
		return plugin.Fail(p, "Pattern content doesn't look like documentation", ""), nil
	}

	// generation-workflow carries the constraints code generation agents rely
	// on, so its critical markers are checked verbatim.
	workflow, err := sess.CallTool(ctx, p.ToolName(), map[string]interface{}{
		"name": "generation-workflow",
	})
	if err != nil {
		return plugin.Fail(p, "Tool call failed", err.Error()), nil
	}
	workflowMarkers := []string{
		"Resources vs Tools",
		"ONLY Python scripts",
		"Shell scripts (.sh) are NOT allowed",
		"generate_server_scaffold",
	}
	if missing := missingFrom(workflow.Text(), workflowMarkers); len(missing) > 0 {
		return plugin.Fail(p, fmt.Sprintf("generation-workflow pattern missing critical markers: %v", missing), ""), nil
	}

	invalid, err := sess.CallTool(ctx, p.ToolName(), map[string]interface{}{
		"name": "nonexistent-pattern",
	})
	if err != nil {
		return plugin.Fail(p, "Tool call failed", err.Error()), nil
	}
	invalidText := invalid.Text()
	if !strings.Contains(invalidText, "Error:") && !strings.Contains(invalidText, "Unknown pattern") {
		return plugin.Fail(p, "Invalid pattern name did not return error", ""), nil
	}

	return plugin.Pass(p, "Pattern retrieval works correctly"), nil
}
