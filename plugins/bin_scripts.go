package plugins

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcp-base/mcp-acceptor/mcp"
	"github.com/mcp-base/mcp-acceptor/plugin"
	"github.com/mcp-base/mcp-acceptor/types"
)

// requiredBinScripts must all be generated when include_bin is set.
var requiredBinScripts = []string{
	"bin/add-user.py",
	"bin/create-secrets.py",
	"bin/make-config.py",
	"bin/setup-auth0.py",
	"bin/setup-rbac.py",
}

// Shell shebangs are forbidden in generated bin scripts. Docs may mention
// them, actual script content may not.
var forbiddenScriptPatterns = []string{
	"#!/bin/bash",
	"#!/bin/sh",
}

// binScriptMarkers maps each bin script to content it is expected to carry.
var binScriptMarkers = map[string][]string{
	"bin/add-user.py":       {"Auth0", "user"},
	"bin/create-secrets.py": {"Kubernetes", "Secret"},
	"bin/make-config.py":    {"config", "auth0-config"},
	"bin/setup-auth0.py":    {"Auth0", "tenant"},
	"bin/setup-rbac.py":     {"RBAC", "ServiceAccount"},
}

// BinScripts verifies scaffold bin scripts are generated in summary mode and
// honor the Python-only constraint, fetching each script through the
// get_artifact tool.
type BinScripts struct{ plugin.Meta }

func NewBinScripts() *BinScripts {
	return &BinScripts{plugin.Meta{
		PluginName: "BinScripts",
		Tool:       "generate_server_scaffold",
		Desc:       "Verifies bin scripts are Python-only (no shell scripts)",
		RunAfter:   []string{"GenerateServerScaffold"},
	}}
}

func (p *BinScripts) Run(ctx context.Context, sess mcp.Session) (types.Outcome, error) {
	// Summary mode exposes the project_id needed for artifact fetches.
	result, err := sess.CallTool(ctx, p.ToolName(), map[string]interface{}{
		"server_name":        "Bin Test Server",
		"output_description": "summary",
		"port":               8080,
		"default_namespace":  "default",
		"include_helm":       false,
		"include_test":       false,
		"include_bin":        true,
	})
	if err != nil {
		return plugin.Fail(p, "Tool call failed", err.Error()), nil
	}
	text := result.Text()

	if strings.HasPrefix(text, "Error") {
		return plugin.Fail(p, "Scaffold generation failed", text), nil
	}
	if isErr, detail := mcp.OperationalError(text); isErr {
		return plugin.Fail(p, "Scaffold generation failed", detail), nil
	}

	projectID := extractProjectID(text)
	if projectID == "" {
		return plugin.Fail(p, "Could not extract project_id from scaffold output",
			fmt.Sprintf("Output: %s", excerpt(text, 500))), nil
	}

	if missing := missingFrom(text, requiredBinScripts); len(missing) > 0 {
		return plugin.Fail(p, fmt.Sprintf("Missing required bin scripts: %v", missing), ""), nil
	}

	pythonShebangs := 0
	markersFound := 0
	var forbiddenFound []string

	for _, scriptPath := range requiredBinScripts {
		artifact, err := sess.CallTool(ctx, "get_artifact", map[string]interface{}{
			"project_id": projectID,
			"path":       scriptPath,
		})
		if err != nil {
			return plugin.Fail(p, fmt.Sprintf("Failed to fetch artifact: %s", scriptPath), err.Error()), nil
		}
		content := artifact.Text()
		if strings.HasPrefix(content, "Error") {
			return plugin.Fail(p, fmt.Sprintf("Failed to fetch artifact: %s", scriptPath), content), nil
		}

		if strings.Contains(content, "#!/usr/bin/env python3") {
			pythonShebangs++
		}
		for _, pattern := range forbiddenScriptPatterns {
			if strings.Contains(content, pattern) {
				forbiddenFound = append(forbiddenFound, fmt.Sprintf("%s: %s", scriptPath, pattern))
			}
		}
		for _, marker := range binScriptMarkers[scriptPath] {
			if strings.Contains(content, marker) {
				markersFound++
				break
			}
		}
	}

	if len(forbiddenFound) > 0 {
		return plugin.Fail(p, fmt.Sprintf("Found forbidden shell script patterns: %v", forbiddenFound), ""), nil
	}
	if pythonShebangs < 4 {
		return plugin.Fail(p, fmt.Sprintf("Expected Python shebangs for bin scripts, found only %d", pythonShebangs), ""), nil
	}
	if markersFound < 3 {
		return plugin.Fail(p, fmt.Sprintf("Bin scripts missing expected content markers (found %d/%d)",
			markersFound, len(requiredBinScripts)), ""), nil
	}

	return plugin.Pass(p, fmt.Sprintf("All %d bin scripts generated correctly (Python only, %d with shebangs)",
		len(requiredBinScripts), pythonShebangs)), nil
}

// extractProjectID pulls the project id out of a summary line of the form
// **Project ID**: `bin-test-server-abc12345`
func extractProjectID(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, "Project ID") || !strings.Contains(line, "`") {
			continue
		}
		parts := strings.Split(line, "`")
		if len(parts) >= 2 {
			return parts[1]
		}
	}
	return ""
}
