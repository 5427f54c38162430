package runner

import (
	"fmt"
	"io"
	"sync"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/mcp-base/mcp-acceptor/types"
)

// ProgressReporter receives per-plugin lifecycle events during a run. It is
// observability only; nothing in the run depends on it.
type ProgressReporter interface {
	PluginStarted(name, tool string)
	PluginCompleted(outcome types.Outcome)
}

type noOpProgress struct{}

// NewNoOpProgress creates a progress reporter that does nothing.
func NewNoOpProgress() ProgressReporter {
	return &noOpProgress{}
}

func (n *noOpProgress) PluginStarted(name, tool string)       {}
func (n *noOpProgress) PluginCompleted(outcome types.Outcome) {}

// writerProgress prints one line per plugin to a text stream.
type writerProgress struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWriterProgress creates a progress reporter that writes PASS/FAIL/SKIP
// lines to w.
func NewWriterProgress(w io.Writer) ProgressReporter {
	return &writerProgress{w: w}
}

func (p *writerProgress) PluginStarted(name, tool string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "  %s (%s)... ", name, tool)
}

func (p *writerProgress) PluginCompleted(outcome types.Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch outcome.Status {
	case types.TestStatusPass:
		fmt.Fprintln(p.w, text.FgGreen.Sprint("PASS"))
	case types.TestStatusSkip:
		// Skipped plugins never started, so the prefix is printed here.
		fmt.Fprintf(p.w, "  %s (%s)... %s\n",
			outcome.PluginName, outcome.ToolName, text.FgYellow.Sprintf("SKIP (%s)", outcome.Message))
		return
	default:
		fmt.Fprintln(p.w, text.FgRed.Sprint("FAIL"))
	}

	if outcome.Duration > 0 {
		fmt.Fprintf(p.w, "    Duration: %.1fms\n", float64(outcome.Duration.Microseconds())/1000.0)
	}
	if outcome.Message != "" {
		fmt.Fprintf(p.w, "    %s\n", outcome.Message)
	}
	if outcome.Error != "" {
		fmt.Fprintf(p.w, "    %s\n", text.FgRed.Sprintf("Error: %s", outcome.Error))
	}
}
