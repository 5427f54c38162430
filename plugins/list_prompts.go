package plugins

import (
	"context"
	"fmt"

	"github.com/mcp-base/mcp-acceptor/mcp"
	"github.com/mcp-base/mcp-acceptor/plugin"
	"github.com/mcp-base/mcp-acceptor/types"
)

// ListPrompts verifies the prompts/list endpoint responds. The server
// currently defines no prompts, so an empty list is a pass.
type ListPrompts struct{ plugin.Meta }

func NewListPrompts() *ListPrompts {
	return &ListPrompts{plugin.Meta{
		PluginName: "ListPrompts",
		Tool:       "list_prompts",
		Desc:       "Verifies prompts/list works (currently no prompts defined)",
	}}
}

func (p *ListPrompts) Run(ctx context.Context, sess mcp.Session) (types.Outcome, error) {
	result, err := sess.ListPrompts(ctx)
	if err != nil {
		return plugin.Fail(p, "Failed to list prompts", err.Error()), nil
	}
	return plugin.Pass(p, fmt.Sprintf("Prompts list returned successfully (%d prompts)", len(result.Prompts))), nil
}
