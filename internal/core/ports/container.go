package ports

import (
	"context"
	"io"

	"github.com/melih/beacon-paas/internal/core/domain"
)

// ContainerService defines the core operations for managing containers.
// This interface allows us to switch between Docker, Podman, or Kubernetes
// without changing the business logic.
type ContainerService interface {
	ListContainers(ctx context.Context) ([]domain.Container, error)
	// LaunchContainer creates and starts a container from a validated spec.
	// The listener configuration (PORT env, exposed port, host binding) is
	// applied programmatically.
	LaunchContainer(ctx context.Context, spec domain.LaunchSpec) (string, error)
	StopContainer(ctx context.Context, id string) error
	GetContainerLogs(ctx context.Context, id string) (io.ReadCloser, error)
	// WaitContainer blocks until the container reaches a terminal state and
	// reports its exit status.
	WaitContainer(ctx context.Context, id string) (domain.ExitStatus, error)
}
