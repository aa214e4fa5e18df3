package docker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/client"
	"github.com/google/uuid"
	"github.com/moby/go-archive"
	log "github.com/sirupsen/logrus"

	ports "dashboard-packaging-service/internal/core/ports/output"
)

// dockerfileName names the rendered recipe inside the build context.
// Prefixed so it never collides with user files, suffixed uniquely so
// concurrent builds over the same context cannot clobber each other's
// in-flight file; it is cleaned up after the build.
func dockerfileName() string {
	return fmt.Sprintf(".packager.%s.Dockerfile", uuid.NewString()[:8])
}

// NewClient creates a docker API client from the standard environment
// (DOCKER_HOST etc.) with API version negotiation.
func NewClient() (*client.Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return cli, nil
}

// Builder drives image builds through the docker daemon.
type Builder struct {
	cli *client.Client
}

// NewBuilder creates a new Builder
func NewBuilder(cli *client.Client) *Builder {
	return &Builder{cli: cli}
}

// Build tars the context directory, injects the rendered Dockerfile and runs
// the daemon build. The build is all-or-nothing: on any error the daemon
// publishes no tagged image, and intermediate containers are force-removed.
func (b *Builder) Build(ctx context.Context, contextDir, dockerfile, tag string) (*ports.ImageRef, error) {
	name := dockerfileName()
	dockerfilePath := filepath.Join(contextDir, name)
	if err := os.WriteFile(dockerfilePath, []byte(dockerfile), 0o644); err != nil {
		return nil, fmt.Errorf("write dockerfile into context: %w", err)
	}
	defer os.Remove(dockerfilePath)

	buildCtx, err := archive.TarWithOptions(contextDir, &archive.TarOptions{})
	if err != nil {
		return nil, fmt.Errorf("tar build context: %w", err)
	}
	defer buildCtx.Close()

	resp, err := b.cli.ImageBuild(ctx, buildCtx, build.ImageBuildOptions{
		Tags:        []string{tag},
		Dockerfile:  name,
		Remove:      true,
		ForceRemove: true,
	})
	if err != nil {
		return nil, fmt.Errorf("image build: %w", err)
	}
	defer resp.Body.Close()

	imageID, err := readBuildStream(resp.Body)
	if err != nil {
		return nil, err
	}

	if imageID == "" {
		// Older daemons omit the aux message; fall back to inspecting the tag
		inspect, err := b.cli.ImageInspect(ctx, tag)
		if err != nil {
			return nil, fmt.Errorf("inspect built image: %w", err)
		}
		imageID = inspect.ID
	}

	return &ports.ImageRef{ID: imageID, Tag: tag}, nil
}

// buildMessage is the subset of the daemon's build stream we care about.
type buildMessage struct {
	Stream string `json:"stream"`
	Error  string `json:"error"`
	Aux    struct {
		ID string `json:"ID"`
	} `json:"aux"`
}

func readBuildStream(body io.Reader) (string, error) {
	var imageID string

	dec := json.NewDecoder(body)
	for {
		var msg buildMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", fmt.Errorf("decode build output: %w", err)
		}
		if msg.Error != "" {
			return "", fmt.Errorf("build failed: %s", msg.Error)
		}
		if msg.Aux.ID != "" {
			imageID = msg.Aux.ID
		}
		if line := strings.TrimSpace(msg.Stream); line != "" {
			log.WithField("component", "docker-build").Debug(line)
		}
	}
	return imageID, nil
}

// Ensure interface compliance
var _ ports.ImageBuilder = (*Builder)(nil)
