package packages

const (
	// pip is pinned below the last release line known to work with the
	// supported interpreter versions.
	pipUpperBound = "pip<21.1"

	// repo tooling needed before any repo can be enabled
	repoToolPackage = "dnf-plugins-core"

	// one ad-hoc tool the test environment needs beyond the manifests
	extraTool = "git+https://github.com/containerbuildsystem/osbs-client"
)

// Step is a single command to run inside the container: an argv vector
// plus optional extra environment. No shell is involved.
type Step struct {
	Argv []string
	Env  map[string]string
}

// PlanOptions parameterize an install plan for one configuration.
type PlanOptions struct {
	PythonVersion string
	IndexURL      string
}

// Pip builds a pip install argv for the requested interpreter, always
// routing through the configured package index.
func (p *Platform) Pip(opts PlanOptions, args ...string) []string {
	argv := []string{p.Python(opts.PythonVersion), "-m", "pip", "install", "--index-url", opts.IndexURL}
	return append(argv, args...)
}

// InstallPlan produces the ordered dependency-installation steps for this
// platform. The order is fixed: repos, system and runtime packages, pip
// upgrade, platform bootstrap, production manifest, the project itself,
// test manifest, extra tooling. Steps are not resumable; a failed step
// fails the whole run.
func (p *Platform) InstallPlan(opts PlanOptions) []Step {
	var steps []Step

	install := func(pkgs ...string) []string {
		argv := append([]string{}, p.PackageManager...)
		argv = append(argv, p.InstallArgs...)
		return append(argv, pkgs...)
	}

	if len(p.RepoEnable) > 0 {
		steps = append(steps, Step{Argv: install(repoToolPackage)})
		for _, repo := range p.RepoEnable {
			argv := append([]string{}, p.PackageManager...)
			argv = append(argv, "config-manager", "--set-enabled", repo)
			steps = append(steps, Step{Argv: argv})
		}
	}

	pkgs := append([]string{}, p.SystemPackages...)
	for _, tmpl := range p.RuntimePackages {
		pkgs = append(pkgs, renderVersion(tmpl, opts.PythonVersion))
	}
	steps = append(steps, Step{Argv: install(pkgs...)})

	steps = append(steps, Step{Argv: p.Pip(opts, "--upgrade", pipUpperBound)})

	for _, b := range p.Bootstrap {
		steps = append(steps, Step{
			Argv: p.Pip(opts, b.PipInstall...),
			Env:  b.Env,
		})
	}

	steps = append(steps,
		Step{Argv: p.Pip(opts, "-r", "requirements.txt")},
		Step{Argv: p.Pip(opts, ".")},
		Step{Argv: p.Pip(opts, "-r", "tests/requirements.txt")},
		Step{Argv: p.Pip(opts, extraTool)},
	)

	return steps
}
