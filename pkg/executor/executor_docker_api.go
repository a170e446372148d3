package executor

import (
	"bytes"
	"context"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/pkg/errors"

	"github.com/containerbuild/testenv/pkg/common"
	"github.com/containerbuild/testenv/pkg/config"
	"github.com/containerbuild/testenv/pkg/log"
)

type dockerAPIExecutor struct {
	client      *client.Client
	authConfigs map[string]string
}

func newDockerAPIExecutor() (*dockerAPIExecutor, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, err
	}

	authConfigs, err := readRegistryAuth()
	if err != nil {
		log.Warn("reading registry auth files: %s", err)
		authConfigs = map[string]string{}
	}

	return &dockerAPIExecutor{
		client:      cli,
		authConfigs: authConfigs,
	}, nil
}

func (d *dockerAPIExecutor) PullImage(ref string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	opts := image.PullOptions{}
	if auth, ok := d.authConfigs[registryFor(ref)]; ok {
		opts.RegistryAuth = auth
	}

	reader, err := d.client.ImagePull(ctx, ref, opts)
	if err != nil {
		return errors.Wrapf(err, "pull %s", ref)
	}
	defer reader.Close()

	// the pull happens while the response body is consumed
	var sink bytes.Buffer
	if _, err := sink.ReadFrom(reader); err != nil {
		return errors.Wrapf(err, "pull %s", ref)
	}
	log.Info("pulled %s", ref)
	return nil
}

func (d *dockerAPIExecutor) ContainerExists(filter ContainerFilter) (bool, error) {
	_, err := d.client.ContainerInspect(context.Background(), filter.Name)
	if err != nil {
		if client.IsErrNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (d *dockerAPIExecutor) IsContainerRunning(name string) (bool, error) {
	containerJSON, err := d.client.ContainerInspect(context.Background(), name)
	if err != nil {
		return false, err
	}
	return containerJSON.State.Running, nil
}

func (d *dockerAPIExecutor) CreateContainer(startConfig config.ContainerStartConfig) (string, error) {
	ctx := context.Background()

	binds := make([]string, 0, len(startConfig.Mounts))
	for _, m := range startConfig.Mounts {
		binds = append(binds, m.HostPath+":"+m.ContainerPath+":z")
	}

	containerConfig := &container.Config{
		Image:      startConfig.Image,
		WorkingDir: startConfig.WorkDir,
		Cmd:        startConfig.Command,
		Tty:        true,
	}
	hostConfig := &container.HostConfig{
		Binds: binds,
	}

	resp, err := d.client.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, startConfig.Name)
	if err != nil {
		return "", errors.Wrapf(err, "create %s", startConfig.Name)
	}
	if err := d.client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", errors.Wrapf(err, "start %s", startConfig.Name)
	}

	log.Info("created %s from %s (%s)",
		startConfig.Name, startConfig.Image, common.ContainerShortID(resp.ID))
	return resp.ID, nil
}

func (d *dockerAPIExecutor) StartContainer(name string) error {
	err := d.client.ContainerStart(context.Background(), name, container.StartOptions{})
	if err != nil {
		return errors.Wrapf(err, "start %s", name)
	}
	return nil
}

func (d *dockerAPIExecutor) ExecContainer(name string, workDir string, env map[string]string, command []string) (ExecResult, error) {
	ctx := context.Background()

	execConfig := container.ExecOptions{
		AttachStdout: true,
		AttachStderr: true,
		WorkingDir:   workDir,
		Env:          envSlice(env),
		Cmd:          command,
	}

	resp, err := d.client.ContainerExecCreate(ctx, name, execConfig)
	if err != nil {
		return ExecResult{}, errors.Wrapf(err, "creating exec in %s", name)
	}

	attachResp, err := d.client.ContainerExecAttach(ctx, resp.ID, container.ExecAttachOptions{})
	if err != nil {
		return ExecResult{}, errors.Wrapf(err, "attaching to exec in %s", name)
	}
	defer attachResp.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdoutBuf, &stderrBuf, attachResp.Reader); err != nil {
		return ExecResult{}, errors.Wrap(err, "reading exec output")
	}

	execInspect, err := d.client.ContainerExecInspect(ctx, resp.ID)
	if err != nil {
		return ExecResult{}, errors.Wrap(err, "inspecting exec")
	}

	log.Debug("exec %s %v (exitCode=%d)", name, command, execInspect.ExitCode)
	return ExecResult{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		ExitCode: execInspect.ExitCode,
	}, nil
}

func envSlice(env map[string]string) []string {
	var result []string
	for k, v := range env {
		result = append(result, k+"="+v)
	}
	return result
}
