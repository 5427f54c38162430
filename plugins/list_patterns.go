package plugins

import (
	"context"
	"fmt"

	"github.com/mcp-base/mcp-acceptor/mcp"
	"github.com/mcp-base/mcp-acceptor/plugin"
	"github.com/mcp-base/mcp-acceptor/types"
)

// ListPatterns verifies the list_patterns tool returns the pattern catalog.
type ListPatterns struct{ plugin.Meta }

func NewListPatterns() *ListPatterns {
	return &ListPatterns{plugin.Meta{
		PluginName: "ListPatterns",
		Tool:       "list_patterns",
		Desc:       "Verifies list_patterns returns available pattern documentation",
	}}
}

func (p *ListPatterns) Run(ctx context.Context, sess mcp.Session) (types.Outcome, error) {
	result, err := sess.CallTool(ctx, p.ToolName(), map[string]interface{}{})
	if err != nil {
		return plugin.Fail(p, "Tool call failed", err.Error()), nil
	}
	text := result.Text()

	expectedPatterns := []string{
		"fastmcp-tools",
		"authentication",
		"kubernetes-integration",
		"helm-chart",
		"testing",
		"deployment",
	}

	if missing := missingFrom(text, expectedPatterns); len(missing) > 0 {
		return plugin.Fail(p, fmt.Sprintf("Missing patterns: %v", missing), ""), nil
	}
	return plugin.Pass(p, fmt.Sprintf("Found all %d expected patterns", len(expectedPatterns))), nil
}
