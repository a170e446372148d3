package executor

import (
	"os/exec"

	"github.com/containerbuild/testenv/pkg/config"
)

type ContainerFilter struct {
	Name string
}

// ExecResult carries the outcome of a command run inside a container.
// A non-zero ExitCode is not an error at this layer; callers decide.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor abstracts the container engine. One implementation talks to the
// docker daemon API, the other shells out to an engine binary (podman by
// default). Neither builds shell strings: every invocation is an argv vector.
type Executor interface {
	PullImage(ref string) error
	ContainerExists(filter ContainerFilter) (bool, error)
	IsContainerRunning(name string) (bool, error)
	CreateContainer(cfg config.ContainerStartConfig) (string, error)
	StartContainer(name string) error
	ExecContainer(name string, workDir string, env map[string]string, command []string) (ExecResult, error)
}

type CommandBuilder interface {
	ExecCommand(args ...string) *exec.Cmd
}

// New selects the executor implementation by engine name: "docker" uses the
// daemon API, anything else is treated as an engine binary to invoke.
func New(engine string) (Executor, error) {
	switch engine {
	case "docker":
		return newDockerAPIExecutor()
	default:
		return newCLIExecutor(engine), nil
	}
}
