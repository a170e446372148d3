package provision

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/containerbuild/testenv/pkg/config"
	"github.com/containerbuild/testenv/pkg/executor"
)

type recordedExec struct {
	workDir string
	env     map[string]string
	argv    []string
}

// fakeExecutor records every engine interaction. failAt fails the n-th
// exec (1-based) with failCode, mimicking a step exiting non-zero.
type fakeExecutor struct {
	exists  bool
	running bool

	pulled  []string
	created []config.ContainerStartConfig
	started []string
	execs   []recordedExec

	failAt   int
	failCode int
}

func (f *fakeExecutor) PullImage(ref string) error {
	f.pulled = append(f.pulled, ref)
	return nil
}

func (f *fakeExecutor) ContainerExists(filter executor.ContainerFilter) (bool, error) {
	return f.exists, nil
}

func (f *fakeExecutor) IsContainerRunning(name string) (bool, error) {
	return f.running, nil
}

func (f *fakeExecutor) CreateContainer(cfg config.ContainerStartConfig) (string, error) {
	f.created = append(f.created, cfg)
	f.exists = true
	f.running = true
	return "deadbeefcafe0123", nil
}

func (f *fakeExecutor) StartContainer(name string) error {
	f.started = append(f.started, name)
	f.running = true
	return nil
}

func (f *fakeExecutor) ExecContainer(name string, workDir string, env map[string]string, command []string) (executor.ExecResult, error) {
	f.execs = append(f.execs, recordedExec{workDir: workDir, env: env, argv: command})
	if f.failAt > 0 && len(f.execs) == f.failAt {
		return executor.ExecResult{ExitCode: f.failCode}, nil
	}
	return executor.ExecResult{}, nil
}

type ProvisionerTestSuite struct {
	suite.Suite
	cfg  *config.Config
	exec *fakeExecutor
}

func TestProvisioner(t *testing.T) {
	suite.Run(t, new(ProvisionerTestSuite))
}

func (s *ProvisionerTestSuite) SetupTest() {
	s.cfg = &config.Config{
		Engine:        "podman",
		OS:            "rockylinux",
		OSVersion:     "8",
		PythonVersion: "3.8",
		Action:        config.ActionTest,
		PyPIIndex:     config.DefaultPyPIIndex,
		Package:       "sample_project",
		WorkDir:       "/src/sample-project",
	}
	s.exec = &fakeExecutor{}
}

func (s *ProvisionerTestSuite) provisioner() *Provisioner {
	p, err := New(s.cfg, s.exec)
	s.Require().NoError(err)
	return p
}

func (s *ProvisionerTestSuite) TestCreatesContainerWhenAbsent() {
	err := s.provisioner().EnsureContainer()
	s.Require().NoError(err)

	s.Equal([]string{"rockylinux:8"}, s.exec.pulled)
	s.Require().Len(s.exec.created, 1)
	s.Empty(s.exec.started)

	created := s.exec.created[0]
	s.Equal("testenv-rockylinux-8-py3.8", created.Name)
	s.Equal("rockylinux:8", created.Image)
	s.Equal("/src/sample-project", created.WorkDir)
	s.Equal([]string{"sleep", "infinity"}, created.Command)
}

func (s *ProvisionerTestSuite) TestSecondRunIsNoOp() {
	p := s.provisioner()
	s.Require().NoError(p.EnsureContainer())
	s.Require().NoError(p.EnsureContainer())

	s.Len(s.exec.created, 1)
	s.Len(s.exec.pulled, 1)
	s.Empty(s.exec.started)
}

func (s *ProvisionerTestSuite) TestStoppedContainerIsStartedNotRecreated() {
	s.exec.exists = true
	s.exec.running = false

	err := s.provisioner().EnsureContainer()
	s.Require().NoError(err)

	s.Empty(s.exec.created)
	s.Empty(s.exec.pulled)
	s.Equal([]string{"testenv-rockylinux-8-py3.8"}, s.exec.started)
}

func (s *ProvisionerTestSuite) TestRunningContainerIsLeftAlone() {
	s.exec.exists = true
	s.exec.running = true

	err := s.provisioner().EnsureContainer()
	s.Require().NoError(err)

	s.Empty(s.exec.created)
	s.Empty(s.exec.started)
	s.Empty(s.exec.pulled)
}

func (s *ProvisionerTestSuite) TestMountListOrderAndIdentityMapping() {
	s.cfg.ExtraMounts = []string{"/srv/data", "/opt/tools", "/var/cache/build"}

	err := s.provisioner().EnsureContainer()
	s.Require().NoError(err)

	s.Require().Len(s.exec.created, 1)
	mounts := s.exec.created[0].Mounts
	s.Require().Len(mounts, 4)

	s.Equal(config.Mount{HostPath: "/src/sample-project", ContainerPath: "/src/sample-project"}, mounts[0])
	for i, path := range s.cfg.ExtraMounts {
		s.Equal(path, mounts[i+1].HostPath)
		s.Equal(path, mounts[i+1].ContainerPath)
	}
}

func (s *ProvisionerTestSuite) TestInstallRunsEveryStepInWorkDir() {
	err := s.provisioner().InstallDependencies()
	s.Require().NoError(err)

	s.NotEmpty(s.exec.execs)
	for _, e := range s.exec.execs {
		s.Equal("/src/sample-project", e.workDir)
	}
}

func (s *ProvisionerTestSuite) TestInstallFailsFast() {
	s.exec.failAt = 2
	s.exec.failCode = 1

	err := s.provisioner().InstallDependencies()
	s.Require().Error(err)

	var stepErr *StepError
	s.Require().ErrorAs(err, &stepErr)
	s.Equal(1, stepErr.ExitCode)
	s.Len(s.exec.execs, 2)
}

func (s *ProvisionerTestSuite) TestTestActionForwardsTrailingArgs() {
	extra := []string{"-k", "smoke", "--maxfail=1"}

	_, err := s.provisioner().RunAction(extra)
	s.Require().NoError(err)

	s.Require().Len(s.exec.execs, 1)
	argv := s.exec.execs[0].argv
	s.Equal([]string{"python3.8", "-m", "pytest", "tests", "-vv"}, argv[:5])
	s.Equal(extra, argv[5:])
}

func (s *ProvisionerTestSuite) TestPylintActionPreinstallsLinter() {
	s.cfg.Action = config.ActionPylint

	_, err := s.provisioner().RunAction(nil)
	s.Require().NoError(err)

	s.Require().Len(s.exec.execs, 2)
	s.Contains(s.exec.execs[0].argv, "pylint==2.9.*")
	s.Equal([]string{"python3.8", "-m", "pylint", "sample_project", "tests"}, s.exec.execs[1].argv)
}

func (s *ProvisionerTestSuite) TestBanditActionRunsBaseline() {
	s.cfg.Action = config.ActionBandit

	_, err := s.provisioner().RunAction(nil)
	s.Require().NoError(err)

	s.Require().Len(s.exec.execs, 2)
	s.Contains(s.exec.execs[0].argv, "bandit")
	s.Equal([]string{"bandit-baseline", "-r", "sample_project", "-ll", "-ii"}, s.exec.execs[1].argv)
}

func (s *ProvisionerTestSuite) TestInnerExitStatusIsNotAnError() {
	s.exec.failAt = 1
	s.exec.failCode = 5

	result, err := s.provisioner().RunAction(nil)
	s.Require().NoError(err)
	s.Equal(5, result.ExitCode)
}

func (s *ProvisionerTestSuite) TestFedoraResolvesWithWarning() {
	s.cfg.OS = "fedora"
	s.cfg.OSVersion = "34"

	p, err := New(s.cfg, s.exec)
	s.Require().NoError(err)
	s.NotNil(p)
}

func (s *ProvisionerTestSuite) TestUnsupportedOSRejected() {
	s.cfg.OS = "debian"

	_, err := New(s.cfg, s.exec)
	s.Require().Error(err)
}
