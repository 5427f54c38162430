// Package runner executes an ordered set of test plugins against a live MCP
// session, one at a time, cascading hard-dependency failures into skips.
package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mcp-base/mcp-acceptor/mcp"
	"github.com/mcp-base/mcp-acceptor/metrics"
	"github.com/mcp-base/mcp-acceptor/plugin"
	"github.com/mcp-base/mcp-acceptor/registry"
	"github.com/mcp-base/mcp-acceptor/types"
)

// RunnerResult captures the complete results of a plugin run.
type RunnerResult struct {
	RunID    string
	Outcomes []types.Outcome
	Stats    types.Stats
	Status   types.TestStatus
	Duration time.Duration
	// Cancelled marks a run that was abandoned between plugin invocations.
	// A cancelled run carries outcomes only for the plugins that completed.
	Cancelled bool
}

// TestRunner defines the interface for running a configured plugin set.
type TestRunner interface {
	RunAllPlugins(ctx context.Context) (*RunnerResult, error)
}

// Config for the test runner.
type Config struct {
	Registry *registry.Registry
	Session  mcp.Session
	Progress ProgressReporter
	Log      log.Logger
}

type runner struct {
	registry *registry.Registry
	ordered  []plugin.Plugin
	session  mcp.Session
	progress ProgressReporter
	log      log.Logger
}

// NewTestRunner creates a new test runner instance. The execution order is
// fixed at construction from the registry's plugin list.
func NewTestRunner(cfg Config) (TestRunner, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if cfg.Session == nil {
		return nil, errors.New("session is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}
	if cfg.Progress == nil {
		cfg.Progress = NewNoOpProgress()
	}

	ordered := ResolveOrder(cfg.Registry.Plugins(), cfg.Log)
	cfg.Log.Info("NewTestRunner()", "plugins", len(ordered))

	return &runner{
		registry: cfg.Registry,
		ordered:  ordered,
		session:  cfg.Session,
		progress: cfg.Progress,
		log:      cfg.Log,
	}, nil
}

// RunAllPlugins implements the TestRunner interface. Every plugin in the
// resolved order produces exactly one outcome; an individual failure never
// aborts the remaining sequence. Cancellation is checked between invocations
// only, so a plugin that has started always runs to completion or to its
// timeout.
func (r *runner) RunAllPlugins(ctx context.Context) (*RunnerResult, error) {
	start := time.Now()
	result := &RunnerResult{
		RunID: uuid.New().String(),
		Stats: types.Stats{StartTime: start},
	}
	r.log.Debug("Running all plugins", "run_id", result.RunID)

	failed := make(map[string]bool)

	for _, p := range r.ordered {
		select {
		case <-ctx.Done():
			r.log.Warn("Run cancelled; abandoning remaining plugins",
				"run_id", result.RunID, "completed", len(result.Outcomes))
			result.Cancelled = true
		default:
		}
		if result.Cancelled {
			break
		}

		outcome := r.runPlugin(ctx, p, failed)
		if !outcome.Passed() {
			failed[p.Name()] = true
		}

		result.Outcomes = append(result.Outcomes, outcome)
		result.Stats.Record(outcome.Status)
		r.progress.PluginCompleted(outcome)
		metrics.RecordValidation(result.RunID, outcome.PluginName, outcome.ToolName, string(outcome.Status))
	}

	result.Duration = time.Since(start)
	result.Stats.EndTime = time.Now()
	if result.Stats.NotPassed() == 0 && !result.Cancelled {
		result.Status = types.TestStatusPass
	} else {
		result.Status = types.TestStatusFail
	}
	return result, nil
}

// runPlugin produces the single outcome for one plugin: a synthesized skip
// when a hard dependency already failed, otherwise the invocation result.
func (r *runner) runPlugin(ctx context.Context, p plugin.Plugin, failed map[string]bool) types.Outcome {
	if deps := failedDeps(p, failed); len(deps) > 0 {
		r.log.Info("Skipping plugin, dependency failed", "plugin", p.Name(), "failed", deps)
		return types.Outcome{
			PluginName: p.Name(),
			ToolName:   p.ToolName(),
			Status:     types.TestStatusSkip,
			Message:    fmt.Sprintf("skipped - failed dependency: %s", strings.Join(deps, ", ")),
		}
	}

	r.progress.PluginStarted(p.Name(), p.ToolName())
	start := time.Now()
	outcome := r.invoke(ctx, p)
	outcome.Duration = time.Since(start)
	return outcome
}

// failedDeps returns the plugin's hard dependencies that failed or were
// skipped earlier in the run, in declaration order.
func failedDeps(p plugin.Plugin, failed map[string]bool) []string {
	var deps []string
	for _, dep := range p.HardDeps() {
		if failed[dep] {
			deps = append(deps, dep)
		}
	}
	return deps
}

type invokeResult struct {
	outcome types.Outcome
	err     error
}

// invoke runs a single plugin under its timeout budget with a panic boundary.
// A plugin that overruns its budget is abandoned, never killed; its goroutine
// is left to drain into the buffered channel.
func (r *runner) invoke(ctx context.Context, p plugin.Plugin) types.Outcome {
	budget := r.registry.Timeout(p.Name())
	pluginCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	ch := make(chan invokeResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				ch <- invokeResult{err: fmt.Errorf("panic: %v", rec)}
			}
		}()
		outcome, err := p.Run(pluginCtx, r.session)
		ch <- invokeResult{outcome: outcome, err: err}
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err != nil {
			// A plugin that honors its context surfaces the expired budget
			// as DeadlineExceeded; attribute that as a timeout, not a fault.
			if errors.Is(res.err, context.DeadlineExceeded) && pluginCtx.Err() != nil {
				r.log.Error("Plugin timed out", "plugin", p.Name(), "budget", budget)
				return plugin.Fail(p, "timed out", "")
			}
			r.log.Error("Plugin failed with an error", "plugin", p.Name(), "err", res.err)
			return plugin.Fail(p, "unexpected error during test", res.err.Error())
		}
		return res.outcome
	case <-timer.C:
		r.log.Error("Plugin timed out", "plugin", p.Name(), "budget", budget)
		return plugin.Fail(p, "timed out", "")
	}
}

// formatDuration formats the duration to seconds with 1 decimal place.
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// String returns a formatted string representation of the run results.
func (r *RunnerResult) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Plugin Run Results (%s):\n", formatDuration(r.Duration)))
	b.WriteString(fmt.Sprintf("Total: %d, Passed: %d, Failed: %d, Skipped: %d\n",
		r.Stats.Total, r.Stats.Passed, r.Stats.Failed, r.Stats.Skipped))
	if r.Cancelled {
		b.WriteString("Run was cancelled before all plugins completed\n")
	}
	for _, o := range r.Outcomes {
		b.WriteString(fmt.Sprintf("├── %s (%s) [%s] %s\n",
			o.PluginName, formatDuration(o.Duration), o.Status, o.Message))
		if o.Error != "" {
			b.WriteString(fmt.Sprintf("│       └── Error: %s\n", o.Error))
		}
	}
	return b.String()
}
