package docker

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"

	"github.com/melih/beacon-paas/internal/core/domain"
)

// Adapter implements ports.ContainerService using Docker SDK
type Adapter struct {
	cli       *client.Client
	stopGrace time.Duration
}

// NewAdapter creates a new Docker adapter instance
func NewAdapter(stopGrace time.Duration) (*Adapter, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	if stopGrace <= 0 {
		stopGrace = 10 * time.Second
	}
	return &Adapter{cli: cli, stopGrace: stopGrace}, nil
}

// ListContainers returns a list of running containers with details
func (a *Adapter) ListContainers(ctx context.Context) ([]domain.Container, error) {
	containers, err := a.cli.ContainerList(ctx, types.ContainerListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	var result []domain.Container
	for _, c := range containers {
		// Use the first name if available, remove slash
		name := ""
		if len(c.Names) > 0 {
			name = c.Names[0][1:]
		}

		ip := ""
		if c.NetworkSettings != nil {
			for _, n := range c.NetworkSettings.Networks {
				if n.IPAddress != "" {
					ip = n.IPAddress
					break
				}
			}
		}

		port, hostPort := 0, 0
		for _, p := range c.Ports {
			if p.PrivatePort != 0 {
				port = int(p.PrivatePort)
				hostPort = int(p.PublicPort)
				break
			}
		}

		result = append(result, domain.Container{
			ID:        c.ID[:12], // Short ID
			Name:      name,
			Image:     c.Image,
			Status:    c.Status,
			State:     c.State,
			IPAddress: ip,
			Port:      port,
			HostPort:  hostPort,
		})
	}
	return result, nil
}

// LaunchContainer creates and starts a container from a validated launch spec.
// The listener configuration is built programmatically: PORT travels as an
// environment variable, the app port is exposed, and the host binding is
// placed on the spec's bind address.
func (a *Adapter) LaunchContainer(ctx context.Context, spec domain.LaunchSpec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}

	if err := a.ensureImage(ctx, spec.Image); err != nil {
		return "", err
	}

	appPort, err := nat.NewPort("tcp", fmt.Sprintf("%d", spec.Port))
	if err != nil {
		return "", fmt.Errorf("invalid port %d: %w", spec.Port, err)
	}

	resp, err := a.cli.ContainerCreate(ctx,
		&container.Config{
			Image:        spec.Image,
			Env:          spec.Environment(),
			ExposedPorts: nat.PortSet{appPort: struct{}{}},
		},
		&container.HostConfig{
			PortBindings: nat.PortMap{
				appPort: []nat.PortBinding{{
					HostIP:   spec.BindAddress,
					HostPort: fmt.Sprintf("%d", spec.HostPort),
				}},
			},
		},
		nil, nil, spec.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}

	if err := a.cli.ContainerStart(ctx, resp.ID, types.ContainerStartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start container: %w", err)
	}

	return resp.ID, nil
}

// ensureImage pulls the image only when the daemon doesn't already have it,
// so locally built tags are used as-is.
func (a *Adapter) ensureImage(ctx context.Context, image string) error {
	if _, _, err := a.cli.ImageInspectWithRaw(ctx, image); err == nil {
		return nil
	} else if !client.IsErrNotFound(err) {
		return fmt.Errorf("failed to inspect image: %w", err)
	}

	reader, err := a.cli.ImagePull(ctx, image, types.ImagePullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image: %w", err)
	}
	defer reader.Close()
	io.Copy(os.Stdout, reader)
	return nil
}

// StopContainer stops a running container within the configured grace period,
// after which the daemon kills it.
func (a *Adapter) StopContainer(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, a.stopGrace+5*time.Second)
	defer cancel()
	grace := int(a.stopGrace.Seconds())
	return a.cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &grace})
}

// GetContainerLogs returns a stream of container logs
func (a *Adapter) GetContainerLogs(ctx context.Context, id string) (io.ReadCloser, error) {
	options := types.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     false,
		Timestamps: true,
	}
	return a.cli.ContainerLogs(ctx, id, options)
}

// WaitContainer blocks until the container leaves the running state and
// reports the terminal exit status: zero for clean shutdown, non-zero for
// startup failure or crash.
func (a *Adapter) WaitContainer(ctx context.Context, id string) (domain.ExitStatus, error) {
	statusCh, errCh := a.cli.ContainerWait(ctx, id, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		return domain.ExitStatus{}, fmt.Errorf("failed to wait for container: %w", err)
	case status := <-statusCh:
		out := domain.ExitStatus{Code: int(status.StatusCode)}
		if status.Error != nil {
			out.Error = status.Error.Message
		}
		return out, nil
	case <-ctx.Done():
		return domain.ExitStatus{}, ctx.Err()
	}
}
