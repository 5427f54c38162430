package plugins

import (
	"context"
	"fmt"

	"github.com/mcp-base/mcp-acceptor/mcp"
	"github.com/mcp-base/mcp-acceptor/plugin"
	"github.com/mcp-base/mcp-acceptor/types"
)

// ListResources verifies the resources/list endpoint exposes every template
// and pattern resource the server is expected to serve.
type ListResources struct{ plugin.Meta }

func NewListResources() *ListResources {
	return &ListResources{plugin.Meta{
		PluginName: "ListResources",
		Tool:       "list_resources",
		Desc:       "Verifies server exposes expected resources",
	}}
}

func (p *ListResources) Run(ctx context.Context, sess mcp.Session) (types.Outcome, error) {
	result, err := sess.ListResources(ctx)
	if err != nil {
		return plugin.Fail(p, "Failed to list resources", err.Error()), nil
	}

	expected := []string{
		"template://server/entry_point.py",
		"template://server/auth_fastmcp.py",
		"template://server/auth_oidc.py",
		"template://server/mcp_context.py",
		"template://server/user_hash.py",
		"template://server/tools.py",
		"template://container/Dockerfile",
		"template://container/requirements.txt",
		"template://helm/Chart.yaml",
		"template://helm/values.yaml",
		"template://Makefile",
		"pattern://fastmcp-tools",
		"pattern://authentication",
		"pattern://kubernetes-integration",
		"pattern://helm-chart",
		"pattern://testing",
		"pattern://deployment",
	}

	uris := make(map[string]struct{})
	for _, uri := range result.URIs() {
		uris[uri] = struct{}{}
	}

	var missing []string
	for _, uri := range expected {
		if _, ok := uris[uri]; !ok {
			missing = append(missing, uri)
		}
	}
	if len(missing) > 0 {
		head := missing
		if len(head) > 3 {
			head = head[:3]
		}
		return plugin.Fail(p, fmt.Sprintf("Missing %d resource(s): %v...", len(missing), head), ""), nil
	}

	return plugin.Pass(p, fmt.Sprintf("Found all %d expected resources", len(expected))), nil
}
