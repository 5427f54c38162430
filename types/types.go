// Package types contains shared types used across the mcp-acceptor testing framework
package types

import "time"

// TestStatus represents the possible states of a plugin execution
type TestStatus string

const (
	TestStatusPass TestStatus = "pass"
	TestStatusFail TestStatus = "fail"
	TestStatusSkip TestStatus = "skip"
)

// String implements the Stringer interface for TestStatus
func (s TestStatus) String() string {
	return string(s)
}

// Outcome captures the result of a single plugin execution. Exactly one
// Outcome is produced per plugin per run, either by the plugin itself or
// synthesized by the runner on skip, timeout or panic.
type Outcome struct {
	PluginName string
	ToolName   string
	Status     TestStatus
	Message    string
	Error      string
	Duration   time.Duration
}

// Passed returns true if the plugin passed.
func (o Outcome) Passed() bool {
	return o.Status == TestStatusPass
}

// Stats tracks plugin statistics for a run.
type Stats struct {
	Total     int
	Passed    int
	Failed    int
	Skipped   int
	StartTime time.Time
	EndTime   time.Time
}

// Record updates the stats for a single outcome.
func (s *Stats) Record(status TestStatus) {
	s.Total++
	switch status {
	case TestStatusPass:
		s.Passed++
	case TestStatusSkip:
		s.Skipped++
	default:
		s.Failed++
	}
}

// NotPassed returns the number of plugins that did not pass. Skipped plugins
// count here because their tool was never verified.
func (s Stats) NotPassed() int {
	return s.Failed + s.Skipped
}
