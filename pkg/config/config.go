package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/thoas/go-funk"
)

// Action selects which command runs inside the provisioned container.
type Action string

const (
	ActionTest   Action = "test"
	ActionPylint Action = "pylint"
	ActionBandit Action = "bandit"
)

var SupportedActions = []string{
	string(ActionTest),
	string(ActionPylint),
	string(ActionBandit),
}

const (
	DefaultEngine        = "podman"
	DefaultOS            = "rockylinux"
	DefaultOSVersion     = "8"
	DefaultPythonVersion = "3.8"
	DefaultPyPIIndex     = "https://pypi.org/simple/"
)

// ErrUnknownAction marks a configuration error that must surface as exit
// status 2 before any provisioning work happens.
var ErrUnknownAction = errors.New("unknown action")

// Config holds every knob of a single provisioner run. It is built once
// from the environment and passed explicitly to each step.
type Config struct {
	Engine        string
	OS            string
	OSVersion     string
	PythonVersion string
	Action        Action
	ExtraMounts   []string
	PyPIIndex     string
	Package       string
	WorkDir       string
}

// Load reads the configuration from the environment, applying defaults
// for anything unset. It does not validate; call Validate afterwards.
func Load() (*Config, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "determining working directory")
	}

	mounts, err := shlex.Split(ReadEnvVar(envExtraMount))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", envExtraMount)
	}

	return &Config{
		Engine:        ReadEnvVarWithDefault(envEngine, DefaultEngine),
		OS:            ReadEnvVarWithDefault(envOS, DefaultOS),
		OSVersion:     ReadEnvVarWithDefault(envOSVersion, DefaultOSVersion),
		PythonVersion: ReadEnvVarWithDefault(envPythonVersion, DefaultPythonVersion),
		Action:        Action(ReadEnvVarWithDefault(envAction, string(ActionTest))),
		ExtraMounts:   mounts,
		PyPIIndex:     ReadEnvVarWithDefault(envPyPIIndex, DefaultPyPIIndex),
		Package:       ReadEnvVarWithDefault(envPackage, ImportName(workDir)),
		WorkDir:       workDir,
	}, nil
}

// Validate checks the configuration once, up front. Provisioning must not
// start when this returns an error.
func (c *Config) Validate() error {
	var result *multierror.Error

	if !funk.ContainsString(SupportedActions, string(c.Action)) {
		result = multierror.Append(result,
			fmt.Errorf("%w %q (supported: %s)",
				ErrUnknownAction, c.Action, strings.Join(SupportedActions, ", ")))
	}

	for name, value := range map[string]string{
		envEngine:        c.Engine,
		envOS:            c.OS,
		envOSVersion:     c.OSVersion,
		envPythonVersion: c.PythonVersion,
	} {
		if value == "" {
			result = multierror.Append(result, fmt.Errorf("%s must not be empty", name))
		}
	}

	return result.ErrorOrNil()
}

// ContainerName derives the deterministic container name for this
// configuration tuple. Distinct tuples get distinct containers.
func (c *Config) ContainerName() string {
	return fmt.Sprintf("testenv-%s-%s-py%s", c.OS, c.OSVersion, c.PythonVersion)
}

// Image returns the base image reference for this configuration.
func (c *Config) Image() string {
	return c.OS + ":" + c.OSVersion
}

// ImportName converts a directory name into the Python import name the
// project conventionally uses for its top-level package.
func ImportName(dir string) string {
	name := filepath.Base(dir)
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, ".", "_")
	return name
}
