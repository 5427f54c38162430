package acceptor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/mcp-base/mcp-acceptor/mcp"
	"github.com/mcp-base/mcp-acceptor/metrics"
	"github.com/mcp-base/mcp-acceptor/plugin"
	"github.com/mcp-base/mcp-acceptor/registry"
	"github.com/mcp-base/mcp-acceptor/reporting"
	"github.com/mcp-base/mcp-acceptor/runner"
	"github.com/mcp-base/mcp-acceptor/types"
)

// Acceptor drives acceptance test runs against a single MCP server.
type Acceptor struct {
	ctx       context.Context
	config    *Config
	version   string
	client    *mcp.Client
	registry  *registry.Registry
	runner    runner.TestRunner
	scheduler RunScheduler
	result    *runner.RunnerResult

	running atomic.Bool

	shutdownCallback func(error) // Callback to signal application shutdown
}

// New creates an Acceptor for the given explicit plugin list. The plugin set
// is fixed for the lifetime of the Acceptor; there is no discovery and no
// process-wide plugin state.
func New(ctx context.Context, config *Config, version string, plugins []plugin.Plugin, shutdownCallback func(error)) (*Acceptor, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating acceptor with config",
		"serverURL", config.ServerURL,
		"pluginSettings", config.PluginSettings,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce)

	reg, err := registry.NewRegistry(registry.Config{
		Plugins:        plugins,
		SettingsFile:   config.PluginSettings,
		DefaultTimeout: config.DefaultTimeout,
		Log:            config.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	client := mcp.NewClient(config.ServerURL, config.Log)

	testRunner, err := runner.NewTestRunner(runner.Config{
		Registry: reg,
		Session:  client,
		Progress: runner.NewWriterProgress(os.Stdout),
		Log:      config.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create test runner: %w", err)
	}
	config.Log.Info("acceptor.New: created registry and test runner")

	return &Acceptor{
		ctx:              ctx,
		config:           config,
		version:          version,
		client:           client,
		registry:         reg,
		runner:           testRunner,
		scheduler:        NewDefaultRunScheduler(config.RunInterval, config.RunOnce, config.Log),
		shutdownCallback: shutdownCallback,
	}, nil
}

// Start connects to the server under test and runs the acceptance tests,
// once or periodically depending on configuration.
func (a *Acceptor) Start(ctx context.Context) error {
	a.ctx = ctx
	a.running.Store(true)

	if a.config.RunOnce {
		a.config.Log.Info("Starting mcp-acceptor in run-once mode")
	} else {
		a.config.Log.Info("Starting mcp-acceptor in continuous mode", "interval", a.config.RunInterval)
	}

	a.config.Log.Info("Connecting to MCP server", "endpoint", a.client.Endpoint())
	info, err := a.client.Initialize(ctx)
	if err != nil {
		return NewRuntimeError(fmt.Errorf("failed to connect to server: %w", err))
	}
	a.config.Log.Info("Connected to server", "name", info.Name, "version", info.Version)

	a.scheduler.RegisterCallback(a.runTests)

	if a.config.RunOnce {
		if err := a.scheduler.Start(ctx); err != nil {
			return err
		}
		a.config.Log.Info("Tests completed, exiting (run-once mode)")

		if a.result != nil && a.result.Status == types.TestStatusFail {
			a.config.Log.Warn("Run-once test run completed with failures, returning exit code 1")
			return NewTestFailureError(a.result.String())
		}

		// Only needed in run-once mode when all tests passed
		go func() {
			a.shutdownCallback(nil)
		}()
		return nil
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}
	a.config.Log.Debug("mcp-acceptor started successfully")
	return nil
}

// runTests runs all plugins and processes the results
func (a *Acceptor) runTests() error {
	a.config.Log.Info("Running all plugins...")
	result, err := a.runner.RunAllPlugins(a.ctx)
	if err != nil {
		// This is a runtime error (not a test failure)
		a.config.Log.Error("Runtime error running tests", "error", err)
		return NewRuntimeError(err)
	}
	a.result = result

	rendered, err := NewConsoleResultFormatter().FormatResults(result)
	if err != nil {
		a.config.Log.Error("Error formatting results", "error", err)
	}
	fmt.Println(result.String())

	if a.config.TextOutputFile != "" && rendered != "" {
		if err := reporting.SaveText(a.config.TextOutputFile, rendered+"\n"+result.String()); err != nil {
			a.config.Log.Error("Error saving text results", "error", err)
		} else {
			a.config.Log.Info("Text results saved", "path", a.config.TextOutputFile)
		}
	}

	if a.config.OutputFile != "" {
		report := reporting.NewReport(result, a.client.Endpoint())
		if err := report.Save(a.config.OutputFile, a.config.ReportFormat); err != nil {
			a.config.Log.Error("Error saving report", "error", err)
			return NewRuntimeError(err)
		}
		a.config.Log.Info("Test report saved",
			"path", a.config.OutputFile, "format", a.config.ReportFormat)
	}

	metrics.RecordAcceptance(
		result.RunID,
		string(result.Status),
		result.Stats.Total,
		result.Stats.Passed,
		result.Stats.NotPassed(),
		result.Duration,
	)

	a.config.Log.Info("Test run completed", "run_id", result.RunID, "status", result.Status)
	return nil
}

// Result returns the most recent run result, nil before the first run.
func (a *Acceptor) Result() *runner.RunnerResult {
	return a.result
}

// Stop stops the acceptor service.
func (a *Acceptor) Stop(ctx context.Context) error {
	a.config.Log.Info("Stopping mcp-acceptor")

	if !a.running.Load() {
		a.config.Log.Debug("Service already stopped, nothing to do")
		return nil
	}
	a.running.Store(false)

	if err := a.scheduler.Stop(); err != nil {
		return err
	}

	a.config.Log.Info("mcp-acceptor stopped successfully")
	return nil
}

// Stopped returns true if the acceptor service is stopped.
func (a *Acceptor) Stopped() bool {
	return !a.running.Load()
}

// WaitForShutdown blocks until all goroutines have terminated.
// This is useful in tests to ensure complete cleanup before moving on.
func (a *Acceptor) WaitForShutdown(ctx context.Context) error {
	return a.scheduler.WaitForShutdown(ctx)
}
