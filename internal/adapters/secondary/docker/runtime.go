package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"

	ports "dashboard-packaging-service/internal/core/ports/output"
)

// Runtime launches built images as supervised containers. One foreground
// process per container; the daemon's restart policy is left at "no", so a
// process exit terminates the container and nothing restarts it here.
type Runtime struct {
	cli         *client.Client
	stopTimeout int
}

// NewRuntime creates a new Runtime
func NewRuntime(cli *client.Client, stopTimeout int) *Runtime {
	return &Runtime{cli: cli, stopTimeout: stopTimeout}
}

func (r *Runtime) Launch(ctx context.Context, spec ports.LaunchSpec) (string, error) {
	port, err := nat.NewPort("tcp", fmt.Sprintf("%d", spec.Port))
	if err != nil {
		return "", fmt.Errorf("invalid port %d: %w", spec.Port, err)
	}

	cfg := &container.Config{
		Image:        spec.Image,
		Labels:       spec.Labels,
		ExposedPorts: nat.PortSet{port: struct{}{}},
	}
	hostCfg := &container.HostConfig{
		PortBindings: nat.PortMap{
			port: []nat.PortBinding{{
				HostIP:   spec.BindAddress,
				HostPort: fmt.Sprintf("%d", spec.Port),
			}},
		},
	}

	created, err := r.cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, spec.Name)
	if err != nil {
		return "", fmt.Errorf("create container: %w", err)
	}

	if err := r.cli.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		// leave no half-launched container behind
		_ = r.cli.ContainerRemove(ctx, created.ID, container.RemoveOptions{Force: true})
		return "", fmt.Errorf("start container: %w", err)
	}

	return created.ID, nil
}

func (r *Runtime) Stop(ctx context.Context, containerID string) error {
	timeout := r.stopTimeout
	if err := r.cli.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &timeout}); err != nil {
		return fmt.Errorf("stop container: %w", err)
	}
	return nil
}

func (r *Runtime) Remove(ctx context.Context, containerID string) error {
	if err := r.cli.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true}); err != nil {
		return fmt.Errorf("remove container: %w", err)
	}
	return nil
}

func (r *Runtime) Status(ctx context.Context, containerID string) (*ports.ContainerStatus, error) {
	inspect, err := r.cli.ContainerInspect(ctx, containerID)
	if err != nil {
		return nil, fmt.Errorf("inspect container: %w", err)
	}

	status := &ports.ContainerStatus{}
	if inspect.State != nil {
		status.Running = inspect.State.Running
		status.ExitCode = inspect.State.ExitCode
		status.Error = inspect.State.Error
		if inspect.State.Health != nil {
			status.Health = inspect.State.Health.Status
		}
	}
	return status, nil
}

func (r *Runtime) IsAvailable() bool {
	return r.cli != nil
}

// Ensure interface compliance
var _ ports.ContainerRuntime = (*Runtime)(nil)
