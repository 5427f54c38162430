// Package reporting serializes plugin run results into the interchange
// formats consumed by CI systems.
package reporting

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/mcp-base/mcp-acceptor/runner"
	"github.com/mcp-base/mcp-acceptor/types"
)

// Format selects the report serialization.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJUnit Format = "junit"
)

// ParseFormat validates a format name from the command line.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatJUnit:
		return FormatJUnit, nil
	default:
		return "", errors.Errorf("unknown report format %q", name)
	}
}

// Summary carries the aggregate counts of a run. Skipped plugins count as
// failed here: their tool was never verified.
type Summary struct {
	Total      int     `json:"total"`
	Passed     int     `json:"passed"`
	Failed     int     `json:"failed"`
	DurationMs float64 `json:"duration_ms"`
}

// TestReport is the serialized form of a single plugin outcome.
type TestReport struct {
	PluginName string  `json:"plugin_name"`
	ToolName   string  `json:"tool_name"`
	Passed     bool    `json:"passed"`
	Message    string  `json:"message"`
	Error      string  `json:"error,omitempty"`
	DurationMs float64 `json:"duration_ms"`
}

// Report is the complete machine-readable result of one run, with tests in
// execution order.
type Report struct {
	Timestamp time.Time    `json:"timestamp"`
	Transport string       `json:"transport"`
	URL       string       `json:"url,omitempty"`
	RunID     string       `json:"run_id,omitempty"`
	Cancelled bool         `json:"cancelled,omitempty"`
	Summary   Summary      `json:"summary"`
	Tests     []TestReport `json:"tests"`
}

// NewReport builds a Report from runner results. The outcome order is
// preserved; every input plugin of an uncancelled run appears exactly once.
func NewReport(result *runner.RunnerResult, url string) *Report {
	report := &Report{
		Timestamp: time.Now().UTC(),
		Transport: "http",
		URL:       url,
		RunID:     result.RunID,
		Cancelled: result.Cancelled,
		Summary: Summary{
			Total:  result.Stats.Total,
			Passed: result.Stats.Passed,
			Failed: result.Stats.NotPassed(),
		},
		Tests: make([]TestReport, 0, len(result.Outcomes)),
	}

	var totalMs float64
	for _, o := range result.Outcomes {
		ms := float64(o.Duration.Microseconds()) / 1000.0
		totalMs += ms
		report.Tests = append(report.Tests, TestReport{
			PluginName: o.PluginName,
			ToolName:   o.ToolName,
			Passed:     o.Status == types.TestStatusPass,
			Message:    o.Message,
			Error:      o.Error,
			DurationMs: ms,
		})
	}
	report.Summary.DurationMs = totalMs
	return report
}

// WriteJSON serializes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return errors.Wrap(err, "encoding report")
	}
	return nil
}

// ParseJSON parses a report previously written by WriteJSON.
func ParseJSON(data []byte) (*Report, error) {
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, errors.Wrap(err, "decoding report")
	}
	return &report, nil
}

// Save writes the report to path in the given format.
func (r *Report) Save(path string, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating report file %s", path)
	}
	defer f.Close()

	switch format {
	case FormatJUnit:
		return r.WriteJUnit(f)
	default:
		return r.WriteJSON(f)
	}
}
