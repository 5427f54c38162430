package runner

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcp-base/mcp-acceptor/mcp"
	"github.com/mcp-base/mcp-acceptor/plugin"
	"github.com/mcp-base/mcp-acceptor/registry"
	"github.com/mcp-base/mcp-acceptor/types"
)

// stubSession satisfies mcp.Session for plugins that never touch the server.
type stubSession struct{}

func (stubSession) CallTool(context.Context, string, map[string]interface{}) (*mcp.ToolResult, error) {
	return &mcp.ToolResult{}, nil
}
func (stubSession) ListResources(context.Context) (*mcp.ResourceList, error) {
	return &mcp.ResourceList{}, nil
}
func (stubSession) ReadResource(context.Context, string) (*mcp.ResourceContents, error) {
	return &mcp.ResourceContents{}, nil
}
func (stubSession) ListPrompts(context.Context) (*mcp.PromptList, error) {
	return &mcp.PromptList{}, nil
}

func newTestRunner(t *testing.T, timeout time.Duration, plugins ...plugin.Plugin) TestRunner {
	t.Helper()
	reg, err := registry.NewRegistry(registry.Config{
		Plugins:        plugins,
		DefaultTimeout: timeout,
		Log:            log.New(),
	})
	require.NoError(t, err)

	r, err := NewTestRunner(Config{
		Registry: reg,
		Session:  stubSession{},
		Log:      log.New(),
	})
	require.NoError(t, err)
	return r
}

func failing(name string, dependsOn, runAfter []string) *fakePlugin {
	p := newFakePlugin(name, dependsOn, runAfter)
	p.run = func(ctx context.Context, sess mcp.Session) (types.Outcome, error) {
		return plugin.Fail(p, "boom", "detail"), nil
	}
	return p
}

func outcomeByName(t *testing.T, result *RunnerResult, name string) types.Outcome {
	t.Helper()
	for _, o := range result.Outcomes {
		if o.PluginName == name {
			return o
		}
	}
	t.Fatalf("no outcome for plugin %q", name)
	return types.Outcome{}
}

func TestRunAllPluginsAllPass(t *testing.T) {
	r := newTestRunner(t, time.Second,
		newFakePlugin("A", nil, nil),
		newFakePlugin("B", nil, nil),
	)

	result, err := r.RunAllPlugins(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.TestStatusPass, result.Status)
	assert.Equal(t, 2, result.Stats.Total)
	assert.Equal(t, 2, result.Stats.Passed)
	assert.Zero(t, result.Stats.Failed)
	assert.Zero(t, result.Stats.Skipped)
	assert.NotEmpty(t, result.RunID)
	assert.False(t, result.Cancelled)
}

func TestRunAllPluginsSkipsOnFailedHardDependency(t *testing.T) {
	r := newTestRunner(t, time.Second,
		failing("A", nil, nil),
		newFakePlugin("B", []string{"A"}, nil),
		newFakePlugin("C", []string{"B"}, nil),
	)

	result, err := r.RunAllPlugins(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.TestStatusFail, result.Status)
	assert.Equal(t, types.TestStatusFail, outcomeByName(t, result, "A").Status)

	// B is skipped because A failed, and the skip cascades into C.
	b := outcomeByName(t, result, "B")
	assert.Equal(t, types.TestStatusSkip, b.Status)
	assert.Equal(t, "skipped - failed dependency: A", b.Message)

	c := outcomeByName(t, result, "C")
	assert.Equal(t, types.TestStatusSkip, c.Status)
	assert.Equal(t, "skipped - failed dependency: B", c.Message)

	assert.Equal(t, 3, result.Stats.Total)
	assert.Equal(t, 1, result.Stats.Failed)
	assert.Equal(t, 2, result.Stats.Skipped)
}

func TestRunAllPluginsSoftOrderFailureDoesNotSkip(t *testing.T) {
	r := newTestRunner(t, time.Second,
		failing("A", nil, nil),
		newFakePlugin("B", nil, []string{"A"}),
	)

	result, err := r.RunAllPlugins(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.TestStatusFail, outcomeByName(t, result, "A").Status)
	assert.Equal(t, types.TestStatusPass, outcomeByName(t, result, "B").Status)
}

func TestRunAllPluginsIsolatesPanic(t *testing.T) {
	panicking := newFakePlugin("panics", nil, nil)
	panicking.run = func(ctx context.Context, sess mcp.Session) (types.Outcome, error) {
		panic("kaboom")
	}

	r := newTestRunner(t, time.Second,
		panicking,
		newFakePlugin("after", nil, nil),
	)

	result, err := r.RunAllPlugins(context.Background())
	require.NoError(t, err)

	p := outcomeByName(t, result, "panics")
	assert.Equal(t, types.TestStatusFail, p.Status)
	assert.Equal(t, "unexpected error during test", p.Message)
	assert.Contains(t, p.Error, "kaboom")

	// The run continues past the panic.
	assert.Equal(t, types.TestStatusPass, outcomeByName(t, result, "after").Status)
}

func TestRunAllPluginsFailsOnPluginError(t *testing.T) {
	erroring := newFakePlugin("errors", nil, nil)
	erroring.run = func(ctx context.Context, sess mcp.Session) (types.Outcome, error) {
		return types.Outcome{}, assert.AnError
	}

	r := newTestRunner(t, time.Second, erroring)

	result, err := r.RunAllPlugins(context.Background())
	require.NoError(t, err)

	o := outcomeByName(t, result, "errors")
	assert.Equal(t, types.TestStatusFail, o.Status)
	assert.Contains(t, o.Error, assert.AnError.Error())
}

func TestRunAllPluginsTimesOutSlowPlugin(t *testing.T) {
	slow := newFakePlugin("slow", nil, nil)
	slow.run = func(ctx context.Context, sess mcp.Session) (types.Outcome, error) {
		time.Sleep(500 * time.Millisecond)
		return plugin.Pass(slow, "too late"), nil
	}

	r := newTestRunner(t, 50*time.Millisecond,
		slow,
		newFakePlugin("next", nil, nil),
	)

	result, err := r.RunAllPlugins(context.Background())
	require.NoError(t, err)

	o := outcomeByName(t, result, "slow")
	assert.Equal(t, types.TestStatusFail, o.Status)
	assert.Equal(t, "timed out", o.Message)

	// A timeout counts as a failure but does not abort the run.
	assert.Equal(t, types.TestStatusPass, outcomeByName(t, result, "next").Status)
	assert.Equal(t, types.TestStatusFail, result.Status)
}

func TestRunAllPluginsTimeoutOfContextHonoringPlugin(t *testing.T) {
	// A well-behaved plugin propagates the expired budget as its error (the
	// real MCP client aborts the HTTP request at the deadline). That must be
	// attributed as a timeout, not as a plugin fault.
	polite := newFakePlugin("polite", nil, nil)
	polite.run = func(ctx context.Context, sess mcp.Session) (types.Outcome, error) {
		<-ctx.Done()
		return types.Outcome{}, ctx.Err()
	}

	r := newTestRunner(t, 20*time.Millisecond, polite)

	// Repeat to cover both orders the result and the timer can become ready.
	for i := 0; i < 20; i++ {
		result, err := r.RunAllPlugins(context.Background())
		require.NoError(t, err)

		o := outcomeByName(t, result, "polite")
		assert.Equal(t, types.TestStatusFail, o.Status)
		assert.Equal(t, "timed out", o.Message)
		assert.Empty(t, o.Error)
	}
}

func TestRunAllPluginsTimeoutSkipsHardDependents(t *testing.T) {
	slow := newFakePlugin("slow", nil, nil)
	slow.run = func(ctx context.Context, sess mcp.Session) (types.Outcome, error) {
		time.Sleep(500 * time.Millisecond)
		return plugin.Pass(slow, "too late"), nil
	}

	r := newTestRunner(t, 50*time.Millisecond,
		slow,
		newFakePlugin("dependent", []string{"slow"}, nil),
	)

	result, err := r.RunAllPlugins(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.TestStatusSkip, outcomeByName(t, result, "dependent").Status)
}

func TestRunAllPluginsCancellationStopsBetweenPlugins(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	first := newFakePlugin("first", nil, nil)
	first.run = func(ctx context.Context, sess mcp.Session) (types.Outcome, error) {
		cancel()
		return plugin.Pass(first, "done"), nil
	}

	r := newTestRunner(t, time.Second,
		first,
		newFakePlugin("never", nil, nil),
	)

	result, err := r.RunAllPlugins(ctx)
	require.NoError(t, err)

	// The in-flight plugin completes, the rest of the sequence is abandoned.
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, "first", result.Outcomes[0].PluginName)
	assert.True(t, result.Cancelled)
	assert.Equal(t, types.TestStatusFail, result.Status)
}

func TestRunAllPluginsEveryPluginProducesOneOutcome(t *testing.T) {
	r := newTestRunner(t, time.Second,
		failing("A", nil, nil),
		newFakePlugin("B", []string{"A"}, nil),
		newFakePlugin("C", nil, nil),
		failing("D", nil, []string{"C"}),
	)

	result, err := r.RunAllPlugins(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Outcomes, 4)
	assert.Equal(t, result.Stats.Total, len(result.Outcomes))
	assert.Equal(t, result.Stats.Total, result.Stats.Passed+result.Stats.Failed+result.Stats.Skipped)
}

func TestRunAllPluginsStampsDurations(t *testing.T) {
	timed := newFakePlugin("timed", nil, nil)
	timed.run = func(ctx context.Context, sess mcp.Session) (types.Outcome, error) {
		time.Sleep(20 * time.Millisecond)
		return plugin.Pass(timed, "done"), nil
	}

	r := newTestRunner(t, time.Second, timed)

	result, err := r.RunAllPlugins(context.Background())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, outcomeByName(t, result, "timed").Duration, 20*time.Millisecond)
	assert.GreaterOrEqual(t, result.Duration, 20*time.Millisecond)
}

func TestRunAllPluginsRerunYieldsSameCounts(t *testing.T) {
	r := newTestRunner(t, time.Second,
		newFakePlugin("A", nil, nil),
		newFakePlugin("B", []string{"A"}, nil),
		newFakePlugin("C", nil, []string{"B"}),
	)

	first, err := r.RunAllPlugins(context.Background())
	require.NoError(t, err)
	second, err := r.RunAllPlugins(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Stats.Total, second.Stats.Total)
	assert.Equal(t, first.Stats.Passed, second.Stats.Passed)
	assert.Equal(t, first.Stats.Failed, second.Stats.Failed)
	assert.Equal(t, first.Stats.Skipped, second.Stats.Skipped)
	assert.Equal(t, first.Status, second.Status)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRunnerResultString(t *testing.T) {
	result := &RunnerResult{
		RunID:    "run-1",
		Duration: 1500 * time.Millisecond,
		Stats:    types.Stats{Total: 2, Passed: 1, Failed: 1},
		Status:   types.TestStatusFail,
		Outcomes: []types.Outcome{
			{PluginName: "A", ToolName: "a", Status: types.TestStatusPass, Message: "ok"},
			{PluginName: "B", ToolName: "b", Status: types.TestStatusFail, Message: "boom", Error: "detail"},
		},
	}

	s := result.String()
	assert.Contains(t, s, "Total: 2, Passed: 1, Failed: 1, Skipped: 0")
	assert.Contains(t, s, "A")
	assert.Contains(t, s, "Error: detail")
}
