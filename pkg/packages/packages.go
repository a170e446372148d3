// Package packages holds the per-OS dependency table. Supporting a new OS
// is a data change in platforms.yaml, not a code change.
package packages

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed platforms.yaml
var platformsYAML []byte

var ErrUnsupportedOS = errors.New("unsupported OS")

// Platform describes how one OS family installs the runtime and the
// system dependency set.
type Platform struct {
	Name            string          `yaml:"-"`
	PackageManager  []string        `yaml:"package_manager"`
	InstallArgs     []string        `yaml:"install_args"`
	RepoEnable      []string        `yaml:"repo_enable"`
	VersionSuffixOK bool            `yaml:"version_suffix_ok"`
	PythonCommand   string          `yaml:"python_command"`
	RuntimePackages []string        `yaml:"runtime_packages"`
	SystemPackages  []string        `yaml:"system_packages"`
	Bootstrap       []BootstrapStep `yaml:"bootstrap"`
}

// BootstrapStep is an extra pip install performed between the pip upgrade
// and the dependency manifests, optionally under extra environment.
type BootstrapStep struct {
	PipInstall []string          `yaml:"pip_install"`
	Env        map[string]string `yaml:"env"`
}

type platformTable struct {
	Platforms map[string]*Platform `yaml:"platforms"`
}

var (
	tableOnce sync.Once
	table     platformTable
	tableErr  error
)

func loadTable() (map[string]*Platform, error) {
	tableOnce.Do(func() {
		tableErr = yaml.Unmarshal(platformsYAML, &table)
	})
	if tableErr != nil {
		return nil, errors.Wrap(tableErr, "parsing platform table")
	}
	return table.Platforms, nil
}

// PlatformFor looks up the platform entry for an OS identifier.
func PlatformFor(osName string) (*Platform, error) {
	platforms, err := loadTable()
	if err != nil {
		return nil, err
	}
	p, ok := platforms[osName]
	if !ok {
		return nil, errors.Wrap(ErrUnsupportedOS, osName)
	}
	p.Name = osName
	return p, nil
}

// SupportedOS lists the OS identifiers present in the table.
func SupportedOS() ([]string, error) {
	platforms, err := loadTable()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(platforms))
	for name := range platforms {
		names = append(names, name)
	}
	return names, nil
}

// VersionSuffix derives the package-name suffix from a runtime version by
// stripping the separator: "3.8" becomes "38". This matches the RHEL-family
// convention but is known wrong for fedora; callers must consult
// Platform.VersionSuffixOK before trusting the derived names.
func VersionSuffix(version string) string {
	return strings.ReplaceAll(version, ".", "")
}

// Python returns the interpreter command for the requested version.
func (p *Platform) Python(version string) string {
	return renderVersion(p.PythonCommand, version)
}

func renderVersion(template, version string) string {
	return strings.NewReplacer(
		"{version}", version,
		"{suffix}", VersionSuffix(version),
	).Replace(template)
}
