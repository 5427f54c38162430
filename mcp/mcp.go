// Package mcp provides a minimal Model Context Protocol client for driving
// a server under test over streamable HTTP.
package mcp

import "context"

// Session is the capability handle test plugins use to interact with the
// server under test. The runner treats it as opaque and never mutates it;
// any state a plugin creates through the session is the plugin's own
// responsibility.
type Session interface {
	// CallTool invokes a named tool with the given arguments.
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*ToolResult, error)
	// ListResources enumerates the passive resources the server exposes.
	ListResources(ctx context.Context) (*ResourceList, error)
	// ReadResource fetches the content of a named resource.
	ReadResource(ctx context.Context, uri string) (*ResourceContents, error)
	// ListPrompts enumerates the prompt definitions the server exposes.
	ListPrompts(ctx context.Context) (*PromptList, error)
}

// ServerInfo describes the server reached during initialization.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Content is a single content block in a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ToolResult is the structured result of a tools/call request.
type ToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Text returns the first text content block, or an empty string.
func (r *ToolResult) Text() string {
	for _, c := range r.Content {
		if c.Type == "text" {
			return c.Text
		}
	}
	return ""
}

// Resource describes a single entry from resources/list.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ResourceList is the result of a resources/list request.
type ResourceList struct {
	Resources []Resource `json:"resources"`
}

// URIs returns the URIs of all listed resources.
func (l *ResourceList) URIs() []string {
	uris := make([]string, 0, len(l.Resources))
	for _, r := range l.Resources {
		uris = append(uris, r.URI)
	}
	return uris
}

// ResourceContent is a single content block of a resources/read result.
type ResourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"`
}

// ResourceContents is the result of a resources/read request.
type ResourceContents struct {
	Contents []ResourceContent `json:"contents"`
}

// Text returns the first text content block, or an empty string.
func (r *ResourceContents) Text() string {
	for _, c := range r.Contents {
		if c.Text != "" {
			return c.Text
		}
	}
	return ""
}

// Prompt describes a single entry from prompts/list.
type Prompt struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// PromptList is the result of a prompts/list request.
type PromptList struct {
	Prompts []Prompt `json:"prompts"`
}
