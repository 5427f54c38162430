package plugins

import (
	"context"
	"fmt"

	"github.com/mcp-base/mcp-acceptor/mcp"
	"github.com/mcp-base/mcp-acceptor/plugin"
	"github.com/mcp-base/mcp-acceptor/types"
)

// ReadTemplateResource verifies a template resource can be read and carries
// the expected Python entry point content. It hard-depends on ListResources;
// if the resource listing is broken there is nothing meaningful to read.
type ReadTemplateResource struct{ plugin.Meta }

func NewReadTemplateResource() *ReadTemplateResource {
	return &ReadTemplateResource{plugin.Meta{
		PluginName: "ReadTemplateResource",
		Tool:       "read_resource",
		Desc:       "Verifies reading template://server/entry_point.py",
		DependsOn:  []string{"ListResources"},
	}}
}

func (p *ReadTemplateResource) Run(ctx context.Context, sess mcp.Session) (types.Outcome, error) {
	result, err := sess.ReadResource(ctx, "template://server/entry_point.py")
	if err != nil {
		return plugin.Fail(p, "Failed to read template resource", err.Error()), nil
	}
	text := result.Text()

	expectedMarkers := []string{
		"#!/usr/bin/env python3",
		"FastMCP",
		"def main():",
	}
	if missing := missingFrom(text, expectedMarkers); len(missing) > 0 {
		return plugin.Fail(p, fmt.Sprintf("Template missing expected content: %v", missing), ""), nil
	}

	return plugin.Pass(p, fmt.Sprintf("Successfully read template (%d bytes)", len(text))), nil
}

// ReadPatternResource verifies a pattern resource can be read as markdown
// documentation. It runs after ReadTemplateResource but does not require it
// to pass.
type ReadPatternResource struct{ plugin.Meta }

func NewReadPatternResource() *ReadPatternResource {
	return &ReadPatternResource{plugin.Meta{
		PluginName: "ReadPatternResource",
		Tool:       "read_resource",
		Desc:       "Verifies reading pattern://fastmcp-tools",
		DependsOn:  []string{"ListResources"},
		RunAfter:   []string{"ReadTemplateResource"},
	}}
}

func (p *ReadPatternResource) Run(ctx context.Context, sess mcp.Session) (types.Outcome, error) {
	result, err := sess.ReadResource(ctx, "pattern://fastmcp-tools")
	if err != nil {
		return plugin.Fail(p, "Failed to read pattern resource", err.Error()), nil
	}
	text := result.Text()

	expectedMarkers := []string{
		"# FastMCP Tool Implementation Pattern",
		"@mcp.tool",
	}
	if missing := missingFrom(text, expectedMarkers); len(missing) > 0 {
		return plugin.Fail(p, fmt.Sprintf("Pattern missing expected content: %v", missing), ""), nil
	}

	return plugin.Pass(p, fmt.Sprintf("Successfully read pattern (%d bytes)", len(text))), nil
}
