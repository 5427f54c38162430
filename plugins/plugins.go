// Package plugins contains the acceptance test plugins for the mcp-base
// scaffold generator server. Each plugin exercises one tool or endpoint of
// the server under test and reports a single outcome.
package plugins

import (
	"strings"

	"github.com/mcp-base/mcp-acceptor/plugin"
)

// Defaults returns the full plugin set in registration order. The runner
// reorders it to satisfy declared dependencies.
func Defaults() []plugin.Plugin {
	return []plugin.Plugin{
		NewListTemplates(),
		NewListPatterns(),
		NewGetPattern(),
		NewRenderTemplate(),
		NewListResources(),
		NewReadTemplateResource(),
		NewReadPatternResource(),
		NewListPrompts(),
		NewGenerateServerScaffold(),
		NewBinScripts(),
	}
}

// missingFrom returns the wanted strings that do not occur in text.
func missingFrom(text string, wanted []string) []string {
	var missing []string
	for _, w := range wanted {
		if !strings.Contains(text, w) {
			missing = append(missing, w)
		}
	}
	return missing
}

// excerpt truncates s for inclusion in a failure message.
func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
