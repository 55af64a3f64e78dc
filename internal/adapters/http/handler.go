package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/melih/beacon-paas/internal/adapters/builder"
	"github.com/melih/beacon-paas/internal/core/domain"
	"github.com/melih/beacon-paas/internal/core/ports"
)

type ContainerHandler struct {
	service ports.ContainerService
	builder ports.BuilderService
}

func NewContainerHandler(service ports.ContainerService, b ports.BuilderService) *ContainerHandler {
	return &ContainerHandler{service: service, builder: b}
}

func (h *ContainerHandler) ListContainers(c *fiber.Ctx) error {
	containers, err := h.service.ListContainers(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(containers)
}

// BuildImage runs a build from a git repo or a local context directory.
func (h *ContainerHandler) BuildImage(c *fiber.Ctx) error {
	var req domain.BuildRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.ImageTag == "" {
		req.ImageTag = generatedTag(req)
	}

	result, err := h.builder.BuildImage(c.Context(), req)
	if err != nil {
		return c.Status(buildStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

type StartContainerRequest struct {
	Image    string            `json:"image"`
	RepoURL  string            `json:"repo_url"`
	Name     string            `json:"name"`
	Port     int               `json:"port"`
	HostPort int               `json:"host_port"`
	Env      map[string]string `json:"env"`
}

// StartContainer launches a container, building the image first when the
// request names a source repo instead of an existing image.
func (h *ContainerHandler) StartContainer(c *fiber.Ctx) error {
	var req StartContainerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	imageToRun := req.Image

	if req.RepoURL != "" {
		buildReq := domain.BuildRequest{
			RepoURL:  req.RepoURL,
			ImageTag: req.Image,
			Port:     req.Port,
		}
		if buildReq.ImageTag == "" {
			buildReq.ImageTag = generatedTag(buildReq)
		}
		imageToRun = buildReq.ImageTag

		// Blocking; a build queue would go here if builds get slow enough
		// to matter.
		if _, err := h.builder.BuildImage(c.Context(), buildReq); err != nil {
			return c.Status(buildStatus(err)).JSON(fiber.Map{
				"error": "Build failed: " + err.Error(),
			})
		}
	} else if imageToRun == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image name or Repo URL is required",
		})
	}

	spec := domain.LaunchSpec{
		Image:    imageToRun,
		Name:     req.Name,
		Port:     req.Port,
		HostPort: req.HostPort,
		Env:      req.Env,
	}
	containerID, err := h.service.LaunchContainer(c.Context(), spec)
	if err != nil {
		if isSpecError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    containerID,
		"image": imageToRun,
		"port":  spec.Port,
	})
}

func (h *ContainerHandler) StopContainer(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Container ID is required",
		})
	}

	if err := h.service.StopContainer(c.Context(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ContainerHandler) GetContainerLogs(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Container ID is required",
		})
	}

	logs, err := h.service.GetContainerLogs(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set("Content-Type", "text/plain")
	return c.SendStream(logs)
}

// WaitContainer blocks until the container exits and reports its status.
func (h *ContainerHandler) WaitContainer(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Container ID is required",
		})
	}

	status, err := h.service.WaitContainer(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(status)
}

// generatedTag derives an image tag when the caller doesn't care: the repo
// name when there is one, a random suffix otherwise.
func generatedTag(req domain.BuildRequest) string {
	base := "beacon-app"
	if req.RepoURL != "" {
		parts := strings.Split(strings.TrimSuffix(req.RepoURL, ".git"), "/")
		if name := parts[len(parts)-1]; name != "" {
			base = strings.ToLower(name)
		}
	}
	return base + "-" + uuid.NewString()[:8]
}

// buildStatus maps build errors: caller mistakes are 400, everything the
// daemon or installer reports is 500.
func buildStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoSource),
		errors.Is(err, domain.ErrTwoSources),
		errors.Is(err, domain.ErrNoImageTag),
		errors.Is(err, domain.ErrBadImageTag),
		errors.Is(err, domain.ErrNoEntryPoint),
		errors.Is(err, builder.ErrManifestMissing):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func isSpecError(err error) bool {
	return errors.Is(err, domain.ErrNoImage) ||
		errors.Is(err, domain.ErrPortUnset) ||
		errors.Is(err, domain.ErrPortRange)
}
