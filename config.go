// Package acceptor runs dependency-ordered acceptance test plugins against a
// live MCP server and reports the results.
package acceptor

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/mcp-base/mcp-acceptor/flags"
	"github.com/mcp-base/mcp-acceptor/reporting"
)

// Config holds the application configuration
type Config struct {
	ServerURL      string           // Base URL of the MCP server under test
	PluginSettings string           // Optional path to a plugin settings YAML file
	OutputFile     string           // Report file destination, empty to skip
	ReportFormat   reporting.Format // Report serialization format
	TextOutputFile string           // Plain-text results copy, empty to skip
	DefaultTimeout time.Duration    // Per-plugin timeout override, 0 to use settings
	RunInterval    time.Duration    // Interval between test runs
	RunOnce        bool             // Indicates if the service should exit after one run
	Log            log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, logger log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	serverURL := ctx.String(flags.ServerURL.Name)
	if serverURL == "" {
		return nil, errors.New("server URL is required")
	}

	format, err := reporting.ParseFormat(ctx.String(flags.ReportFormat.Name))
	if err != nil {
		return nil, fmt.Errorf("invalid report format: %w", err)
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)
	runOnce := runInterval == 0

	return &Config{
		ServerURL:      serverURL,
		PluginSettings: ctx.String(flags.PluginSettings.Name),
		OutputFile:     ctx.String(flags.OutputFile.Name),
		ReportFormat:   format,
		TextOutputFile: ctx.String(flags.TextOutputFile.Name),
		DefaultTimeout: ctx.Duration(flags.DefaultTimeout.Name),
		RunInterval:    runInterval,
		RunOnce:        runOnce,
		Log:            logger,
	}, nil
}
