// Package plugin defines the contract every mcp-acceptor test unit
// implements. Plugins are constructed explicitly by the host and handed to
// the registry as a slice; there is no discovery mechanism and no global
// registration.
package plugin

import (
	"context"

	"github.com/mcp-base/mcp-acceptor/mcp"
	"github.com/mcp-base/mcp-acceptor/types"
)

// Plugin is a named, independent test unit bound to one tool of the server
// under test.
//
// HardDeps names plugins that must pass before this one runs; if any of them
// fail the runner skips this plugin without invoking Run. SoftOrder names
// plugins this one prefers to run after, with no failure propagation.
// Run is invoked at most once per run, sequentially, with the shared session.
type Plugin interface {
	Name() string
	ToolName() string
	Description() string
	HardDeps() []string
	SoftOrder() []string
	Run(ctx context.Context, sess mcp.Session) (types.Outcome, error)
}

// Meta carries the static identity of a plugin. Concrete plugins embed it so
// they only have to implement Run.
type Meta struct {
	PluginName string
	Tool       string
	Desc       string
	DependsOn  []string
	RunAfter   []string
}

func (m Meta) Name() string        { return m.PluginName }
func (m Meta) ToolName() string    { return m.Tool }
func (m Meta) Description() string { return m.Desc }
func (m Meta) HardDeps() []string  { return m.DependsOn }
func (m Meta) SoftOrder() []string { return m.RunAfter }

// Pass builds a passing Outcome for the plugin. The runner stamps Duration.
func Pass(p Plugin, message string) types.Outcome {
	return types.Outcome{
		PluginName: p.Name(),
		ToolName:   p.ToolName(),
		Status:     types.TestStatusPass,
		Message:    message,
	}
}

// Fail builds a failing Outcome for the plugin. errDetail may be empty.
func Fail(p Plugin, message, errDetail string) types.Outcome {
	return types.Outcome{
		PluginName: p.Name(),
		ToolName:   p.ToolName(),
		Status:     types.TestStatusFail,
		Message:    message,
		Error:      errDetail,
	}
}
