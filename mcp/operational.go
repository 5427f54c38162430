package mcp

import "regexp"

// Tools can complete the transport round-trip successfully while the
// underlying operation failed (RBAC denials, unreachable backends). Plugins
// are responsible for classifying such responses; the runner never inspects
// tool output. These patterns mirror the failure modes the scaffold servers
// are known to surface as plain text.
var operationalErrorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Error (?:listing|getting|creating|updating|deleting|scaling)`),
	regexp.MustCompile(`(?i)Kubernetes API Error`),
	regexp.MustCompile(`\d{3} Forbidden`),
	regexp.MustCompile(`(?i)is forbidden:`),
	regexp.MustCompile(`(?i)cannot (?:list|get|create|update|delete|patch) resource`),
	regexp.MustCompile(`(?i)Permission denied`),
	regexp.MustCompile(`(?i)Unauthorized`),
	regexp.MustCompile(`(?i)Authentication failed`),
	regexp.MustCompile(`(?i)Connection refused`),
	regexp.MustCompile(`(?i)Connection timeout`),
	regexp.MustCompile(`(?i)No route to host`),
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// OperationalError checks whether a tool response contains an application
// level error payload. Returns true and a trimmed error excerpt when one of
// the known error markers is present.
func OperationalError(responseText string) (bool, string) {
	for _, pattern := range operationalErrorPatterns {
		loc := pattern.FindStringIndex(responseText)
		if loc == nil {
			continue
		}
		start := loc[0] - 50
		if start < 0 {
			start = 0
		}
		end := loc[1] + 450
		if end > len(responseText) {
			end = len(responseText)
		}
		excerpt := whitespaceRun.ReplaceAllString(responseText[start:end], " ")
		return true, excerpt
	}
	return false, ""
}
