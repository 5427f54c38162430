package plugins

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcp-base/mcp-acceptor/mcp"
	"github.com/mcp-base/mcp-acceptor/plugin"
	"github.com/mcp-base/mcp-acceptor/types"
)

// GenerateServerScaffold verifies the generate_server_scaffold tool produces
// a complete project description in its JSON return format.
type GenerateServerScaffold struct{ plugin.Meta }

func NewGenerateServerScaffold() *GenerateServerScaffold {
	return &GenerateServerScaffold{plugin.Meta{
		PluginName: "GenerateServerScaffold",
		Tool:       "generate_server_scaffold",
		Desc:       "Verifies scaffold generation produces complete project",
		RunAfter:   []string{"RenderTemplate"},
	}}
}

func (p *GenerateServerScaffold) Run(ctx context.Context, sess mcp.Session) (types.Outcome, error) {
	result, err := sess.CallTool(ctx, p.ToolName(), map[string]interface{}{
		"server_name": "My Test Server",
	})
	if err != nil {
		return plugin.Fail(p, "Tool call failed", err.Error()), nil
	}
	text := result.Text()

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return plugin.Fail(p, "Response is not valid JSON", fmt.Sprintf("Got: %s", excerpt(text, 200))), nil
	}

	requiredFields := []string{"project_id", "server_name", "file_count", "files", "resource_links", "quick_start"}
	var missingFields []string
	for _, f := range requiredFields {
		if _, ok := raw[f]; !ok {
			missingFields = append(missingFields, f)
		}
	}
	if len(missingFields) > 0 {
		return plugin.Fail(p, fmt.Sprintf("Missing required fields: %v", missingFields),
			fmt.Sprintf("Data: %s", excerpt(text, 500))), nil
	}

	var data struct {
		ProjectID     string            `json:"project_id"`
		FileCount     int               `json:"file_count"`
		Files         []string          `json:"files"`
		ResourceLinks []json.RawMessage `json:"resource_links"`
		QuickStart    []string          `json:"quick_start"`
	}
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return plugin.Fail(p, "Response fields have unexpected types", err.Error()), nil
	}

	// bin/ scripts are no longer part of the scaffold, they ship in a
	// separate package.
	expectedFiles := []string{
		"src/my_test_server_server.py",
		"src/my_test_server_tools.py",
		"src/prompt_registry.py",
		"Dockerfile",
		"requirements.txt",
		"Makefile",
		"chart/Chart.yaml",
		"chart/values.yaml",
		"chart/templates/prompts-configmap.yaml",
		"test/test-mcp.py",
		"test/plugins/__init__.py",
	}

	listed := make(map[string]struct{}, len(data.Files))
	for _, f := range data.Files {
		listed[f] = struct{}{}
	}
	var missingFiles []string
	for _, f := range expectedFiles {
		if _, ok := listed[f]; !ok {
			missingFiles = append(missingFiles, f)
		}
	}
	if len(missingFiles) > 0 {
		return plugin.Fail(p, fmt.Sprintf("Missing expected files: %v", missingFiles), ""), nil
	}

	if data.FileCount != len(data.Files) {
		return plugin.Fail(p, fmt.Sprintf("file_count (%d) doesn't match files array length (%d)",
			data.FileCount, len(data.Files)), ""), nil
	}
	if len(data.QuickStart) == 0 {
		return plugin.Fail(p, "quick_start should be a non-empty list", ""), nil
	}

	return plugin.Pass(p, fmt.Sprintf(
		"Scaffold generated successfully with all expected components (project_id: %s)", data.ProjectID)), nil
}
