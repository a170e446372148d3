package executor

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/containerbuild/testenv/pkg/common"
	"github.com/containerbuild/testenv/pkg/config"
	"github.com/containerbuild/testenv/pkg/log"
)

type cliExecutor struct {
	command string
	builder CommandBuilder
}

type localCommandBuilder struct{}

func (b *localCommandBuilder) ExecCommand(args ...string) *exec.Cmd {
	return exec.Command(args[0], args[1:]...)
}

func newCLIExecutor(command string) *cliExecutor {
	return &cliExecutor{
		command: command,
		builder: &localCommandBuilder{},
	}
}

func (e *cliExecutor) runCommand(cmd *exec.Cmd) (string, error) {
	commandLine := strings.Join(common.QuoteArgs(cmd.Args), " ")
	log.Debug("run: %s", commandLine)

	stdoutStderr, err := cmd.CombinedOutput()
	trimmed := strings.Trim(string(stdoutStderr), "\"\n")
	if err != nil {
		err = errors.Wrapf(err, "command failed: %s\noutput: %s", commandLine, trimmed)
	}
	return trimmed, err
}

func (e *cliExecutor) PullImage(ref string) error {
	_, err := e.runCommand(e.builder.ExecCommand(e.command, "pull", ref))
	return err
}

func (e *cliExecutor) ContainerExists(filter ContainerFilter) (bool, error) {
	out, err := e.runCommand(e.builder.ExecCommand(
		e.command, "ps", "-aq", "--filter", "name=^"+filter.Name+"$"))
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

func (e *cliExecutor) IsContainerRunning(name string) (bool, error) {
	out, err := e.runCommand(e.builder.ExecCommand(
		e.command, "ps", "-q", "--filter", "name=^"+name+"$"))
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// createArgs builds the argv for creating the long-lived container.
// Mount order is preserved; each bind carries the :z relabel flag so the
// mounted tree stays accessible under SELinux.
func createArgs(command string, cfg config.ContainerStartConfig) []string {
	args := []string{command, "run", "--name", cfg.Name, "-d", "-t", "-w", cfg.WorkDir}
	for _, m := range cfg.Mounts {
		args = append(args, "-v", m.HostPath+":"+m.ContainerPath+":z")
	}
	args = append(args, cfg.Image)
	return append(args, cfg.Command...)
}

func (e *cliExecutor) CreateContainer(cfg config.ContainerStartConfig) (string, error) {
	out, err := e.runCommand(e.builder.ExecCommand(createArgs(e.command, cfg)...))
	if err != nil {
		return "", err
	}

	id := strings.Split(out, "\n")[0]
	log.Info("created %s from %s (%s)", cfg.Name, cfg.Image, common.ContainerShortID(id))
	return id, nil
}

func (e *cliExecutor) StartContainer(name string) error {
	_, err := e.runCommand(e.builder.ExecCommand(e.command, "container", "start", name))
	return err
}

// execArgs builds the argv for running a command inside the container.
func execArgs(command, name, workDir string, env map[string]string, cmd []string) []string {
	args := []string{command, "exec", "-w", workDir}
	for k, v := range env {
		args = append(args, "-e", k+"="+v)
	}
	args = append(args, name)
	return append(args, cmd...)
}

func (e *cliExecutor) ExecContainer(name string, workDir string, env map[string]string, command []string) (ExecResult, error) {
	cmd := e.builder.ExecCommand(execArgs(e.command, name, workDir, env, command)...)
	log.Debug("exec: %s", strings.Join(common.QuoteArgs(cmd.Args), " "))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := ExecResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, errors.Wrapf(err, "exec in %s", name)
	}
	return result, nil
}
