package provision

import (
	"github.com/pkg/errors"

	"github.com/containerbuild/testenv/pkg/config"
	"github.com/containerbuild/testenv/pkg/packages"
)

const pylintVersion = "pylint==2.9.*"

// actionCommand selects the command template for the configured action,
// plus an optional one-off install the action needs. Action validity is
// checked at startup; reaching the default branch here means the caller
// skipped validation.
func (p *Provisioner) actionCommand() (*packages.Step, []string, error) {
	python := p.platform.Python(p.cfg.PythonVersion)

	switch p.cfg.Action {
	case config.ActionTest:
		return nil, []string{python, "-m", "pytest", "tests", "-vv"}, nil

	case config.ActionPylint:
		pre := packages.Step{Argv: p.platform.Pip(p.planOptions(), pylintVersion)}
		return &pre, []string{python, "-m", "pylint", p.cfg.Package, "tests"}, nil

	case config.ActionBandit:
		pre := packages.Step{Argv: p.platform.Pip(p.planOptions(), "bandit")}
		return &pre, []string{"bandit-baseline", "-r", p.cfg.Package, "-ll", "-ii"}, nil

	default:
		return nil, nil, errors.Wrapf(config.ErrUnknownAction, "%s", p.cfg.Action)
	}
}
