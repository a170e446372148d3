// Package provision ensures the named test container exists and runs,
// installs the dependency set into it, and dispatches the selected action.
package provision

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/containerbuild/testenv/pkg/common"
	"github.com/containerbuild/testenv/pkg/config"
	"github.com/containerbuild/testenv/pkg/executor"
	"github.com/containerbuild/testenv/pkg/log"
	"github.com/containerbuild/testenv/pkg/packages"
)

// keepAliveCommand keeps the provisioned container running between execs.
var keepAliveCommand = []string{"sleep", "infinity"}

// architectures the default base images are published for
var imageArches = []string{"x86_64", "aarch64"}

type Provisioner struct {
	cfg      *config.Config
	exec     executor.Executor
	platform *packages.Platform
}

// StepError reports a dependency-installation step that exited non-zero.
type StepError struct {
	Argv     []string
	ExitCode int
	Output   string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: exit status %d",
		strings.Join(common.QuoteArgs(e.Argv), " "), e.ExitCode)
}

// New resolves the platform for the configured OS and surfaces the known
// limitations of the configuration up front.
func New(cfg *config.Config, exec executor.Executor) (*Provisioner, error) {
	platform, err := packages.PlatformFor(cfg.OS)
	if err != nil {
		return nil, err
	}

	if !platform.VersionSuffixOK {
		log.Warn("package suffix %q derived from version %q does not match the %s naming convention; installs may fail",
			packages.VersionSuffix(cfg.PythonVersion), cfg.PythonVersion, cfg.OS)
	}
	if ok, arch := common.HostArch(imageArches...); !ok && arch != "" {
		log.Warn("host architecture %s may have no %s base image", arch, cfg.Image())
	}

	return &Provisioner{
		cfg:      cfg,
		exec:     exec,
		platform: platform,
	}, nil
}

// EnsureContainer is the container state machine: absent containers are
// pulled, created and started; stopped containers are started in place;
// running containers are left alone. Re-running with the same
// configuration performs no engine mutation beyond the restart case.
func (p *Provisioner) EnsureContainer() error {
	name := p.cfg.ContainerName()
	filter := executor.ContainerFilter{Name: name}

	exists, err := p.exec.ContainerExists(filter)
	if err != nil {
		return errors.Wrapf(err, "querying for container %s", name)
	}

	if !exists {
		if err := p.exec.PullImage(p.cfg.Image()); err != nil {
			return err
		}
		_, err := p.exec.CreateContainer(config.ContainerStartConfig{
			Name:    name,
			Image:   p.cfg.Image(),
			WorkDir: p.cfg.WorkDir,
			Mounts:  p.mounts(),
			Command: keepAliveCommand,
		})
		if err != nil {
			return err
		}
		return executor.WaitForRunning(p.exec, name)
	}

	running, err := p.exec.IsContainerRunning(name)
	if err != nil {
		return errors.Wrapf(err, "querying state of container %s", name)
	}
	if running {
		log.Debug("container %s already running", name)
		return nil
	}

	log.Info("found stopped container %s, restarting; mounts cannot be updated after creation", name)
	if err := p.exec.StartContainer(name); err != nil {
		return err
	}
	return executor.WaitForRunning(p.exec, name)
}

// InstallDependencies runs the platform's install plan inside the
// container. The first failing step aborts the rest; installs mid-package-
// list are not resumable, so there is no partial-failure recovery.
func (p *Provisioner) InstallDependencies() error {
	plan := p.platform.InstallPlan(p.planOptions())
	for _, step := range plan {
		if err := p.runStep(step); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provisioner) planOptions() packages.PlanOptions {
	return packages.PlanOptions{
		PythonVersion: p.cfg.PythonVersion,
		IndexURL:      p.cfg.PyPIIndex,
	}
}

func (p *Provisioner) runStep(step packages.Step) error {
	res, err := p.exec.ExecContainer(p.cfg.ContainerName(), p.cfg.WorkDir, step.Env, step.Argv)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &StepError{
			Argv:     step.Argv,
			ExitCode: res.ExitCode,
			Output:   res.Stdout + res.Stderr,
		}
	}
	return nil
}

// RunAction executes the configured action inside the container, with the
// caller's trailing arguments appended verbatim. The returned result
// carries the inner command's exit status; a non-zero status is a normal
// outcome, not an error.
func (p *Provisioner) RunAction(extraArgs []string) (executor.ExecResult, error) {
	pre, command, err := p.actionCommand()
	if err != nil {
		return executor.ExecResult{}, err
	}

	if pre != nil {
		if err := p.runStep(*pre); err != nil {
			return executor.ExecResult{}, err
		}
	}

	command = append(command, extraArgs...)
	log.Info("running %s action: %s", p.cfg.Action, strings.Join(common.QuoteArgs(command), " "))
	return p.exec.ExecContainer(p.cfg.ContainerName(), p.cfg.WorkDir, nil, command)
}

// Run performs a complete provisioner cycle: ensure the container,
// install dependencies, run the action.
func (p *Provisioner) Run(extraArgs []string) (executor.ExecResult, error) {
	if err := p.EnsureContainer(); err != nil {
		return executor.ExecResult{}, err
	}
	if err := p.InstallDependencies(); err != nil {
		return executor.ExecResult{}, err
	}
	return p.RunAction(extraArgs)
}
