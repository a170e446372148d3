package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/containerbuild/testenv/pkg/config"
)

func TestCreateArgs(t *testing.T) {
	args := createArgs("podman", config.ContainerStartConfig{
		Name:    "testenv-rockylinux-8-py3.8",
		Image:   "rockylinux:8",
		WorkDir: "/src/project",
		Mounts: []config.Mount{
			{HostPath: "/src/project", ContainerPath: "/src/project"},
			{HostPath: "/srv/data", ContainerPath: "/srv/data"},
		},
		Command: []string{"sleep", "infinity"},
	})

	assert.Equal(t, []string{
		"podman", "run", "--name", "testenv-rockylinux-8-py3.8",
		"-d", "-t", "-w", "/src/project",
		"-v", "/src/project:/src/project:z",
		"-v", "/srv/data:/srv/data:z",
		"rockylinux:8",
		"sleep", "infinity",
	}, args)
}

func TestExecArgs(t *testing.T) {
	args := execArgs("podman", "ctr", "/src/project",
		map[string]string{"RPM_PY_SYS": "true"},
		[]string{"python3.8", "-m", "pip", "install", "rpm-py-installer"})

	assert.Equal(t, []string{
		"podman", "exec", "-w", "/src/project",
		"-e", "RPM_PY_SYS=true",
		"ctr",
		"python3.8", "-m", "pip", "install", "rpm-py-installer",
	}, args)
}

func TestRegistryFor(t *testing.T) {
	assert.Equal(t, "docker.io", registryFor("rockylinux:8"))
	assert.Equal(t, "docker.io", registryFor("library/rockylinux:8"))
	assert.Equal(t, "quay.io", registryFor("quay.io/org/image:tag"))
	assert.Equal(t, "localhost:5000", registryFor("localhost:5000/image"))
}

func TestHostFromServer(t *testing.T) {
	assert.Equal(t, "docker.io", hostFromServer("https://index.docker.io/v1/"))
	assert.Equal(t, "quay.io", hostFromServer("quay.io"))
	assert.Equal(t, "registry.example.com", hostFromServer("https://registry.example.com"))
}
