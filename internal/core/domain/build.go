package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Defaults for Python web-app builds. The manifest name is fixed by the pip
// ecosystem; the base image and entry point are overridable per request.
const (
	DefaultBaseImage  = "python:3.11-slim"
	DefaultManifest   = "requirements.txt"
	DefaultEntryPoint = "app.py"
	DefaultWorkDir    = "/app"
)

var (
	ErrNoSource     = errors.New("either repo_url or context_dir is required")
	ErrNoImageTag   = errors.New("image tag is required")
	ErrBadImageTag  = errors.New("image tag must not contain whitespace")
	ErrTwoSources   = errors.New("repo_url and context_dir are mutually exclusive")
	ErrNoEntryPoint = errors.New("entry point is required")
)

// BuildRequest describes a single image build: where the source comes from
// and how the resulting image should launch its server process.
type BuildRequest struct {
	// Exactly one of RepoURL (cloned) or ContextDir (used in place) is set.
	RepoURL    string `json:"repo_url,omitempty"`
	ContextDir string `json:"context_dir,omitempty"`

	ImageTag   string `json:"image_tag"`
	BaseImage  string `json:"base_image,omitempty"`
	Manifest   string `json:"manifest,omitempty"`
	EntryPoint string `json:"entry_point,omitempty"`
	Port       int    `json:"port,omitempty"` // EXPOSE'd port, informational
}

// Normalize fills the defaults and validates what cannot be defaulted.
func (r *BuildRequest) Normalize() error {
	if r.RepoURL == "" && r.ContextDir == "" {
		return ErrNoSource
	}
	if r.RepoURL != "" && r.ContextDir != "" {
		return ErrTwoSources
	}
	if r.ImageTag == "" {
		return ErrNoImageTag
	}
	if strings.ContainsAny(r.ImageTag, " \t\n") {
		return fmt.Errorf("%w: %q", ErrBadImageTag, r.ImageTag)
	}
	if r.BaseImage == "" {
		r.BaseImage = DefaultBaseImage
	}
	if r.Manifest == "" {
		r.Manifest = DefaultManifest
	}
	if r.EntryPoint == "" {
		r.EntryPoint = DefaultEntryPoint
	}
	return nil
}

// BuildResult is the terminal success state of a build.
type BuildResult struct {
	ImageTag string   `json:"image_tag"`
	ImageID  string   `json:"image_id,omitempty"`
	Steps    []string `json:"steps,omitempty"` // daemon step output, cache hits included
}

// CachedSteps reports how many recorded steps were served from the layer
// cache. Rebuilds with an unchanged manifest should show the install step here.
func (r BuildResult) CachedSteps() int {
	n := 0
	for _, s := range r.Steps {
		if strings.Contains(s, "Using cache") || strings.Contains(s, "CACHED") {
			n++
		}
	}
	return n
}
