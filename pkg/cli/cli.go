// Package cli wires the provisioner into a cobra command. All behavior is
// driven by environment variables; positional arguments are forwarded
// verbatim to the in-container command.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/containerbuild/testenv/pkg/config"
	"github.com/containerbuild/testenv/pkg/executor"
	"github.com/containerbuild/testenv/pkg/log"
	"github.com/containerbuild/testenv/pkg/provision"
)

// Exit statuses beyond the inner command's own.
const (
	ExitFailure       = 1
	ExitUnknownAction = 2
)

// ExitError carries a specific process exit status up to main.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// App is the CLI application.
type App struct {
	rootCmd *cobra.Command
	stdout  io.Writer
	stderr  io.Writer
}

func New() *App {
	app := &App{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	app.rootCmd = &cobra.Command{
		Use:   "testenv [-- args...]",
		Short: "Provision a container test environment and run an action in it",
		Long: `testenv ensures a long-lived container exists for the configured
OS/runtime tuple, installs the project's dependency set into it and runs
the selected action (test, pylint or bandit) inside it.

Configuration is taken from the environment:

  ENGINE          container engine (default: podman; "docker" uses the API)
  OS              base image name (default: rockylinux)
  OS_VERSION      image tag (default: 8)
  PYTHON_VERSION  runtime version to install (default: 3.8)
  ACTION          test | pylint | bandit (default: test)
  EXTRA_MOUNT     extra host paths to mount at identical container paths
  PYPI_INDEX      alternate package index URL
  PACKAGE         project import name (default: derived from the directory)

Arguments after -- are appended verbatim to the in-container command.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(cmd *cobra.Command, args []string) error { return run(args, app.stdout, app.stderr) },
	}
	return app
}

func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		// configuration errors are fatal before any engine work; an
		// unrecognized action gets its own exit status
		log.Error("invalid configuration: %s", err)
		if errors.Is(err, config.ErrUnknownAction) {
			return &ExitError{Code: ExitUnknownAction}
		}
		return &ExitError{Code: ExitFailure}
	}

	engine, err := executor.New(cfg.Engine)
	if err != nil {
		return err
	}

	prov, err := provision.New(cfg, engine)
	if err != nil {
		return err
	}

	result, err := prov.Run(args)
	if err != nil {
		// a failed install step aborts the run with that step's status
		var stepErr *provision.StepError
		if errors.As(err, &stepErr) {
			fmt.Fprint(stderr, stepErr.Output)
			log.Error("%s", stepErr)
			return &ExitError{Code: stepErr.ExitCode}
		}
		return err
	}

	fmt.Fprint(stdout, result.Stdout)
	fmt.Fprint(stderr, result.Stderr)

	if result.ExitCode != 0 {
		return &ExitError{Code: result.ExitCode}
	}
	return nil
}
