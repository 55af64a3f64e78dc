package builder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/go-git/go-git/v5"

	"github.com/melih/beacon-paas/internal/adapters/dockerfile"
	"github.com/melih/beacon-paas/internal/core/domain"
)

// ErrManifestMissing is returned when the build context has no dependency
// manifest. The manifest must exist before anything is sent to the daemon:
// without it the dependency layer cannot be installed and the build is dead
// on arrival.
var ErrManifestMissing = errors.New("dependency manifest not found in build context")

type Adapter struct {
	cli *client.Client
}

func NewBuilderAdapter() (*Adapter, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli}, nil
}

// BuildImage acquires the source, validates and prepares the context, and
// builds the image. Build steps run strictly sequentially; the first failure
// aborts the build and surfaces the daemon's diagnostic.
func (a *Adapter) BuildImage(ctx context.Context, req domain.BuildRequest) (*domain.BuildResult, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	contextDir, cleanup, err := a.acquireSource(ctx, req)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := PrepareContext(contextDir, req); err != nil {
		return nil, err
	}

	tar, err := archive.TarWithOptions(contextDir, &archive.TarOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create build context: %w", err)
	}
	defer tar.Close()

	log.Printf("building image %s from %s", req.ImageTag, contextDir)
	resp, err := a.cli.ImageBuild(ctx, tar, types.ImageBuildOptions{
		Tags:       []string{req.ImageTag},
		Dockerfile: "Dockerfile",
		Remove:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build image: %w", err)
	}
	defer resp.Body.Close()

	steps, err := drainBuildStream(resp.Body)
	if err != nil {
		return nil, err
	}

	return &domain.BuildResult{ImageTag: req.ImageTag, Steps: steps}, nil
}

// acquireSource resolves the build request to a directory on disk: a shallow
// clone for git sources, the directory itself for local ones.
func (a *Adapter) acquireSource(ctx context.Context, req domain.BuildRequest) (string, func(), error) {
	if req.ContextDir != "" {
		info, err := os.Stat(req.ContextDir)
		if err != nil {
			return "", nil, fmt.Errorf("context dir: %w", err)
		}
		if !info.IsDir() {
			return "", nil, fmt.Errorf("context dir %s is not a directory", req.ContextDir)
		}
		return req.ContextDir, func() {}, nil
	}

	tmpDir, err := os.MkdirTemp("", "beacon-build-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(tmpDir) }

	log.Printf("cloning %s into %s", req.RepoURL, tmpDir)
	_, err = git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{
		URL:      req.RepoURL,
		Progress: os.Stdout,
		Depth:    1, // Shallow clone for speed
	})
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to clone repo: %w", err)
	}
	return tmpDir, cleanup, nil
}

// PrepareContext validates the source tree and injects a generated Dockerfile
// when the tree does not bring its own. The manifest and the entry point must
// both be present; their absence is a build-time failure, not something the
// container discovers at startup.
func PrepareContext(dir string, req domain.BuildRequest) error {
	manifestPath := filepath.Join(dir, req.Manifest)
	manifest, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrManifestMissing, req.Manifest)
		}
		return fmt.Errorf("read manifest: %w", err)
	}
	if _, err := os.Stat(filepath.Join(dir, req.EntryPoint)); err != nil {
		return fmt.Errorf("%w: %s not found in build context", domain.ErrNoEntryPoint, req.EntryPoint)
	}

	dockerfilePath := filepath.Join(dir, "Dockerfile")
	if _, err := os.Stat(dockerfilePath); err == nil {
		return nil // the repo's own Dockerfile wins
	}

	streamlit := manifestDeclares(manifest, "streamlit")
	rendered, err := dockerfile.Render(req, streamlit)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dockerfilePath, rendered, 0o644); err != nil {
		return fmt.Errorf("write dockerfile: %w", err)
	}
	return nil
}

// manifestDeclares reports whether the pip manifest names the given package,
// ignoring version pins and comments.
func manifestDeclares(manifest []byte, pkg string) bool {
	for _, line := range strings.Split(string(manifest), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name := strings.FieldsFunc(line, func(r rune) bool {
			return r == '=' || r == '>' || r == '<' || r == '~' || r == '[' || r == ' '
		})
		if len(name) > 0 && strings.EqualFold(name[0], pkg) {
			return true
		}
	}
	return false
}

// drainBuildStream reads the daemon's JSON build stream to completion,
// collecting step output. An error frame means the build failed; the
// installer's diagnostic comes back verbatim and no image has been tagged.
func drainBuildStream(body io.Reader) ([]string, error) {
	var steps []string
	dec := json.NewDecoder(body)
	for {
		var msg jsonmessage.JSONMessage
		if err := dec.Decode(&msg); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("decode build output: %w", err)
		}
		if msg.Error != nil {
			return nil, fmt.Errorf("build failed: %s", msg.Error.Message)
		}
		if s := strings.TrimSpace(msg.Stream); s != "" {
			steps = append(steps, s)
		}
	}
	return steps, nil
}
