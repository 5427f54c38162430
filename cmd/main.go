package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	acceptor "github.com/mcp-base/mcp-acceptor"
	"github.com/mcp-base/mcp-acceptor/exitcodes"
	"github.com/mcp-base/mcp-acceptor/flags"
	"github.com/mcp-base/mcp-acceptor/plugins"
	"github.com/mcp-base/mcp-acceptor/service"
)

var (
	Version   = "v0.3.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "mcp-acceptor"
	app.Usage = "MCP Server Acceptance Tester Service"
	app.Description = "mcp-acceptor runs acceptance test plugins against an MCP server"
	app.Flags = flags.Flags
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			// Use the exit code from the ExitCoder
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			// Check for typed runtime errors
			if acceptor.IsRuntimeError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
			} else if acceptor.IsTestFailureError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
			} else {
				// Unspecified errors default to a test failure exit
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start sidecar
	sidecar := service.New(app.Version)
	sidecar.Start(ctx)
	defer sidecar.Shutdown()

	app.Action = func(c *cli.Context) error {
		return run(c, sidecar)
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func run(ctx *cli.Context, sidecar *service.Service) error {
	logger := log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stdout, log.LevelInfo, true))
	log.SetDefault(logger)

	cfg, err := acceptor.NewConfig(ctx, logger)
	if err != nil {
		// Wrap in RuntimeError to signal this should exit with code 2
		return acceptor.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}

	appCtx, cancel := context.WithCancel(ctx.Context)
	defer cancel()

	svc, err := acceptor.New(appCtx, cfg, Version, plugins.Defaults(), func(error) { cancel() })
	if err != nil {
		return acceptor.NewRuntimeError(fmt.Errorf("failed to create acceptor: %w", err))
	}
	sidecar.SetRunningCheck(func() bool { return !svc.Stopped() })

	if err := svc.Start(appCtx); err != nil {
		return err
	}
	if cfg.RunOnce {
		return nil
	}

	// Continuous mode, block until interrupted
	<-appCtx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := svc.Stop(stopCtx); err != nil {
		return acceptor.NewRuntimeError(fmt.Errorf("failed to stop acceptor: %w", err))
	}
	return svc.WaitForShutdown(stopCtx)
}
