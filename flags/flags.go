package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "MCP_ACCEPTOR"

func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	ServerURL = &cli.StringFlag{
		Name:    "url",
		Aliases: []string{"u"},
		Value:   "http://localhost:8000",
		EnvVars: prefixEnvVars("URL"),
		Usage:   "Base URL of the MCP server under test",
	}
	PluginSettings = &cli.StringFlag{
		Name:    "plugin-settings",
		Value:   "",
		EnvVars: prefixEnvVars("PLUGIN_SETTINGS"),
		Usage:   "Path to an optional plugin settings file (eg. 'plugins.yaml')",
	}
	OutputFile = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Value:   "",
		EnvVars: prefixEnvVars("OUTPUT"),
		Usage:   "Save the test report to a file",
	}
	ReportFormat = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "json",
		EnvVars: prefixEnvVars("FORMAT"),
		Usage:   "Report format: 'json' or 'junit'",
	}
	TextOutputFile = &cli.StringFlag{
		Name:    "text-output",
		Value:   "",
		EnvVars: prefixEnvVars("TEXT_OUTPUT"),
		Usage:   "Save a plain-text copy of the results table to a file",
	}
	DefaultTimeout = &cli.DurationFlag{
		Name:    "timeout",
		Value:   0,
		EnvVars: prefixEnvVars("TIMEOUT"),
		Usage:   "Default per-plugin timeout (eg. '30s'). Overrides the settings file default.",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: prefixEnvVars("RUN_INTERVAL"),
		Usage:   "Interval between test runs (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
)

var requiredFlags = []cli.Flag{
	ServerURL,
}

var optionalFlags = []cli.Flag{
	PluginSettings,
	OutputFile,
	ReportFormat,
	TextOutputFile,
	DefaultTimeout,
	RunInterval,
}

var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		name := f.Names()[0]
		if !ctx.IsSet(name) && ctx.String(name) == "" {
			return fmt.Errorf("flag %s is required", name)
		}
	}
	return nil
}
