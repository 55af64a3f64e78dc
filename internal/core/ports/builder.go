package ports

import (
	"context"

	"github.com/melih/beacon-paas/internal/core/domain"
)

// BuilderService defines operations for building container images from source code.
type BuilderService interface {
	// BuildImage acquires the source named by the request, assembles a build
	// context with the dependency manifest installed ahead of the rest of the
	// tree, and builds an image. A failed build returns the daemon's
	// diagnostic; no image is tagged on failure.
	BuildImage(ctx context.Context, req domain.BuildRequest) (*domain.BuildResult, error)
}
