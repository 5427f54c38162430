package plugins

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcp-base/mcp-acceptor/mcp"
	"github.com/mcp-base/mcp-acceptor/plugin"
	"github.com/mcp-base/mcp-acceptor/types"
)

// RenderTemplate verifies the render_template tool substitutes server
// parameters into the entry point template.
type RenderTemplate struct{ plugin.Meta }

func NewRenderTemplate() *RenderTemplate {
	return &RenderTemplate{plugin.Meta{
		PluginName: "RenderTemplate",
		Tool:       "render_template",
		Desc:       "Verifies render_template produces valid output",
		RunAfter:   []string{"ListTemplates"},
	}}
}

func (p *RenderTemplate) Run(ctx context.Context, sess mcp.Session) (types.Outcome, error) {
	result, err := sess.CallTool(ctx, p.ToolName(), map[string]interface{}{
		"template_path":     "server/entry_point.py.j2",
		"server_name":       "Test MCP Server",
		"port":              9000,
		"default_namespace": "test-ns",
	})
	if err != nil {
		return plugin.Fail(p, "Tool call failed", err.Error()), nil
	}
	text := result.Text()

	if strings.HasPrefix(text, "Error") {
		return plugin.Fail(p, "Template rendering failed", text), nil
	}

	expected := []string{
		"#!/usr/bin/env python3", // shebang
		"test_mcp_server",        // snake case name
		"9000",                   // port
	}
	if missing := missingFrom(text, expected); len(missing) > 0 {
		return plugin.Fail(p, fmt.Sprintf("Missing expected content: %v", missing), ""), nil
	}

	return plugin.Pass(p, "Template rendered correctly with server_name='Test MCP Server'"), nil
}
