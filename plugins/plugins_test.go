package plugins

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcp-base/mcp-acceptor/mcp"
	"github.com/mcp-base/mcp-acceptor/types"
)

// fakeSession scripts server behavior per test.
type fakeSession struct {
	callTool  func(name string, args map[string]interface{}) (*mcp.ToolResult, error)
	resources []string
	content   map[string]string // resource URI -> text
	prompts   []mcp.Prompt
	err       error
}

func (f *fakeSession) CallTool(_ context.Context, name string, args map[string]interface{}) (*mcp.ToolResult, error) {
	if f.callTool == nil {
		return textResult(""), f.err
	}
	return f.callTool(name, args)
}

func (f *fakeSession) ListResources(context.Context) (*mcp.ResourceList, error) {
	if f.err != nil {
		return nil, f.err
	}
	list := &mcp.ResourceList{}
	for _, uri := range f.resources {
		list.Resources = append(list.Resources, mcp.Resource{URI: uri})
	}
	return list, nil
}

func (f *fakeSession) ReadResource(_ context.Context, uri string) (*mcp.ResourceContents, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &mcp.ResourceContents{Contents: []mcp.ResourceContent{
		{URI: uri, Text: f.content[uri]},
	}}, nil
}

func (f *fakeSession) ListPrompts(context.Context) (*mcp.PromptList, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &mcp.PromptList{Prompts: f.prompts}, nil
}

func textResult(text string) *mcp.ToolResult {
	return &mcp.ToolResult{Content: []mcp.Content{{Type: "text", Text: text}}}
}

func toolSession(responses map[string]string) *fakeSession {
	return &fakeSession{callTool: func(name string, args map[string]interface{}) (*mcp.ToolResult, error) {
		return textResult(responses[name]), nil
	}}
}

func TestDefaultsFormValidPluginSet(t *testing.T) {
	plugins := Defaults()
	require.Len(t, plugins, 10)

	names := make(map[string]bool, len(plugins))
	for _, p := range plugins {
		assert.False(t, names[p.Name()], "duplicate plugin name %q", p.Name())
		names[p.Name()] = true
		assert.NotEmpty(t, p.ToolName())
		assert.NotEmpty(t, p.Description())
	}

	// Every declared edge points at a plugin in the set.
	for _, p := range plugins {
		for _, dep := range append(p.HardDeps(), p.SoftOrder()...) {
			assert.True(t, names[dep], "plugin %q references unknown plugin %q", p.Name(), dep)
		}
	}
}

func TestListTemplates(t *testing.T) {
	p := NewListTemplates()
	fullCatalog := strings.Join([]string{
		"Server Templates", "Container Templates", "Helm Chart Templates",
		"Utility Templates", "Utility Scripts",
		"entry_point.py.j2", "prompt_registry.py.j2", "Dockerfile.j2",
		"Chart.yaml.j2", "Makefile.j2",
	}, "\n")

	outcome, err := p.Run(context.Background(), toolSession(map[string]string{"list_templates": fullCatalog}))
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusPass, outcome.Status)

	outcome, err = p.Run(context.Background(), toolSession(map[string]string{"list_templates": "Server Templates only"}))
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusFail, outcome.Status)
	assert.Contains(t, outcome.Message, "Missing sections")
}

func TestListPatterns(t *testing.T) {
	p := NewListPatterns()
	full := "fastmcp-tools authentication kubernetes-integration helm-chart testing deployment"

	outcome, err := p.Run(context.Background(), toolSession(map[string]string{"list_patterns": full}))
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusPass, outcome.Status)
	assert.Contains(t, outcome.Message, "6 expected patterns")

	outcome, err = p.Run(context.Background(), toolSession(map[string]string{"list_patterns": "fastmcp-tools"}))
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusFail, outcome.Status)
	assert.Contains(t, outcome.Message, "Missing patterns")
}

func goodPatternSession() *fakeSession {
	workflow := strings.Join([]string{
		"# Generation Workflow", "Resources vs Tools", "ONLY Python scripts",
		"Shell scripts (.sh) are NOT allowed", "generate_server_scaffold",
	}, "\n")
	return &fakeSession{callTool: func(name string, args map[string]interface{}) (*mcp.ToolResult, error) {
		switch args["name"] {
		case "fastmcp-tools":
			return textResult("# FastMCP Tool Implementation Pattern\n" + strings.Repeat("doc ", 50)), nil
		case "generation-workflow":
			return textResult(workflow), nil
		default:
			return textResult("Error: Unknown pattern 'nonexistent-pattern'"), nil
		}
	}}
}

func TestGetPattern(t *testing.T) {
	p := NewGetPattern()

	outcome, err := p.Run(context.Background(), goodPatternSession())
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusPass, outcome.Status)
}

func TestGetPatternFailsOnErrorResponse(t *testing.T) {
	p := NewGetPattern()
	sess := toolSession(map[string]string{"get_pattern": "Error: pattern store unavailable"})

	outcome, err := p.Run(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusFail, outcome.Status)
	assert.Equal(t, "Pattern retrieval failed", outcome.Message)
}

func TestGetPatternFailsOnMissingWorkflowMarkers(t *testing.T) {
	p := NewGetPattern()
	sess := &fakeSession{callTool: func(name string, args map[string]interface{}) (*mcp.ToolResult, error) {
		if args["name"] == "fastmcp-tools" {
			return textResult("# FastMCP Tool Implementation Pattern\n" + strings.Repeat("doc ", 50)), nil
		}
		return textResult("# Generation Workflow without the critical bits"), nil
	}}

	outcome, err := p.Run(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusFail, outcome.Status)
	assert.Contains(t, outcome.Message, "missing critical markers")
}

func TestGetPatternFailsWhenInvalidNameAccepted(t *testing.T) {
	p := NewGetPattern()
	sess := &fakeSession{callTool: func(name string, args map[string]interface{}) (*mcp.ToolResult, error) {
		switch args["name"] {
		case "fastmcp-tools":
			return textResult("# FastMCP Tool Implementation Pattern\n" + strings.Repeat("doc ", 50)), nil
		case "generation-workflow":
			return goodPatternSession().callTool(name, args)
		default:
			// Server happily returns content for a bogus name.
			return textResult("# Some Pattern"), nil
		}
	}}

	outcome, err := p.Run(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusFail, outcome.Status)
	assert.Equal(t, "Invalid pattern name did not return error", outcome.Message)
}

func TestRenderTemplate(t *testing.T) {
	p := NewRenderTemplate()
	rendered := "#!/usr/bin/env python3\n# test_mcp_server on port 9000\n"

	outcome, err := p.Run(context.Background(), toolSession(map[string]string{"render_template": rendered}))
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusPass, outcome.Status)
}

func TestRenderTemplateFailures(t *testing.T) {
	p := NewRenderTemplate()

	outcome, err := p.Run(context.Background(), toolSession(map[string]string{
		"render_template": "Error rendering template: no such template",
	}))
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusFail, outcome.Status)
	assert.Equal(t, "Template rendering failed", outcome.Message)

	outcome, err = p.Run(context.Background(), toolSession(map[string]string{
		"render_template": "#!/usr/bin/env python3\nwrong_name on port 8000",
	}))
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusFail, outcome.Status)
	assert.Contains(t, outcome.Message, "Missing expected content")
}

func allExpectedResources() []string {
	return []string{
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
}

func TestListResources(t *testing.T) {
	p := NewListResources()

	outcome, err := p.Run(context.Background(), &fakeSession{resources: allExpectedResources()})
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusPass, outcome.Status)
	assert.Contains(t, outcome.Message, "17 expected resources")

	outcome, err = p.Run(context.Background(), &fakeSession{resources: allExpectedResources()[:10]})
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusFail, outcome.Status)
	assert.Contains(t, outcome.Message, "Missing 7 resource(s)")
}

func TestReadTemplateResource(t *testing.T) {
	p := NewReadTemplateResource()
	sess := &fakeSession{content: map[string]string{
		"template://server/entry_point.py": "#!/usr/bin/env python3\nfrom fastmcp import FastMCP\ndef main():\n    pass\n",
	}}

	outcome, err := p.Run(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusPass, outcome.Status)

	outcome, err = p.Run(context.Background(), &fakeSession{content: map[string]string{
		"template://server/entry_point.py": "not python",
	}})
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusFail, outcome.Status)
	assert.Contains(t, outcome.Message, "Template missing expected content")
}

func TestReadPatternResource(t *testing.T) {
	p := NewReadPatternResource()
	sess := &fakeSession{content: map[string]string{
		"pattern://fastmcp-tools": "# FastMCP Tool Implementation Pattern\n\nUse @mcp.tool decorators.",
	}}

	outcome, err := p.Run(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusPass, outcome.Status)
}

func TestListPrompts(t *testing.T) {
	p := NewListPrompts()

	outcome, err := p.Run(context.Background(), &fakeSession{})
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusPass, outcome.Status)
	assert.Contains(t, outcome.Message, "0 prompts")

	outcome, err = p.Run(context.Background(), &fakeSession{err: assert.AnError})
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusFail, outcome.Status)
	assert.Equal(t, "Failed to list prompts", outcome.Message)
}

func scaffoldResponse(t *testing.T, mutate func(map[string]interface{})) string {
	t.Helper()
	files := []string{
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
	data := map[string]interface{}{
		"project_id":     "my-test-server-abc12345",
		"server_name":    "My Test Server",
		"file_count":     len(files),
		"files":          files,
		"resource_links": []string{"artifact://my-test-server-abc12345/Makefile"},
		"quick_start":    []string{"make install", "make run"},
	}
	if mutate != nil {
		mutate(data)
	}
	out, err := json.Marshal(data)
	require.NoError(t, err)
	return string(out)
}

func TestGenerateServerScaffold(t *testing.T) {
	p := NewGenerateServerScaffold()
	sess := toolSession(map[string]string{
		"generate_server_scaffold": scaffoldResponse(t, nil),
	})

	outcome, err := p.Run(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusPass, outcome.Status)
	assert.Contains(t, outcome.Message, "my-test-server-abc12345")
}

func TestGenerateServerScaffoldRejectsNonJSON(t *testing.T) {
	p := NewGenerateServerScaffold()
	sess := toolSession(map[string]string{
		"generate_server_scaffold": "## Scaffold Created\nnot json at all",
	})

	outcome, err := p.Run(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusFail, outcome.Status)
	assert.Equal(t, "Response is not valid JSON", outcome.Message)
}

func TestGenerateServerScaffoldMissingFields(t *testing.T) {
	p := NewGenerateServerScaffold()
	sess := toolSession(map[string]string{
		"generate_server_scaffold": scaffoldResponse(t, func(data map[string]interface{}) {
			delete(data, "quick_start")
			delete(data, "resource_links")
		}),
	})

	outcome, err := p.Run(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusFail, outcome.Status)
	assert.Contains(t, outcome.Message, "Missing required fields")
	assert.Contains(t, outcome.Message, "quick_start")
}

func TestGenerateServerScaffoldFileCountMismatch(t *testing.T) {
	p := NewGenerateServerScaffold()
	sess := toolSession(map[string]string{
		"generate_server_scaffold": scaffoldResponse(t, func(data map[string]interface{}) {
			data["file_count"] = 99
		}),
	})

	outcome, err := p.Run(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusFail, outcome.Status)
	assert.Contains(t, outcome.Message, "doesn't match files array length")
}

func binScriptContent(markers ...string) string {
	return "#!/usr/bin/env python3\n# " + strings.Join(markers, " ") + "\n"
}

func binScriptsSession(artifacts map[string]string) *fakeSession {
	summary := "**Project ID**: `bin-test-server-abc12345`\n" + strings.Join(requiredBinScripts, "\n")
	return &fakeSession{callTool: func(name string, args map[string]interface{}) (*mcp.ToolResult, error) {
		if name == "get_artifact" {
			return textResult(artifacts[args["path"].(string)]), nil
		}
		return textResult(summary), nil
	}}
}

func defaultBinArtifacts() map[string]string {
	return map[string]string{
		"bin/add-user.py":       binScriptContent("Auth0", "user"),
		"bin/create-secrets.py": binScriptContent("Kubernetes", "Secret"),
		"bin/make-config.py":    binScriptContent("config", "auth0-config"),
		"bin/setup-auth0.py":    binScriptContent("Auth0", "tenant"),
		"bin/setup-rbac.py":     binScriptContent("RBAC", "ServiceAccount"),
	}
}

func TestBinScripts(t *testing.T) {
	p := NewBinScripts()

	outcome, err := p.Run(context.Background(), binScriptsSession(defaultBinArtifacts()))
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusPass, outcome.Status)
	assert.Contains(t, outcome.Message, "Python only")
}

func TestBinScriptsRejectsShellShebang(t *testing.T) {
	p := NewBinScripts()
	artifacts := defaultBinArtifacts()
	artifacts["bin/setup-rbac.py"] = "#!/bin/bash\nkubectl apply -f rbac.yaml\n"

	outcome, err := p.Run(context.Background(), binScriptsSession(artifacts))
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusFail, outcome.Status)
	assert.Contains(t, outcome.Message, "forbidden shell script patterns")
}

func TestBinScriptsRequiresProjectID(t *testing.T) {
	p := NewBinScripts()
	sess := toolSession(map[string]string{
		"generate_server_scaffold": "scaffold written, no id line here",
	})

	outcome, err := p.Run(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusFail, outcome.Status)
	assert.Equal(t, "Could not extract project_id from scaffold output", outcome.Message)
}

func TestExtractProjectID(t *testing.T) {
	assert.Equal(t, "srv-1", extractProjectID("**Project ID**: `srv-1`"))
	assert.Equal(t, "srv-2", extractProjectID("intro\n**Project ID**: `srv-2`\ntrailer"))
	assert.Empty(t, extractProjectID("no id anywhere"))
	assert.Empty(t, extractProjectID("Project ID: srv-3 without backticks"))
}
