package image

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
)

// Publisher is the container build-and-publish collaborator surface.
type Publisher interface {
	// Exists reports whether a manifest is already published at ref.
	// A missing manifest is reported as (false, nil); any other probe
	// failure is returned as an error.
	Exists(ctx context.Context, ref string) (bool, error)

	// Build builds the image from the context directory and tags it ref.
	Build(ctx context.Context, ref, contextDir string) error

	// Push publishes the tagged image.
	Push(ctx context.Context, ref string) error
}

// DockerPublisher implements Publisher with a remote registry manifest
// probe and the docker CLI for build and push.
type DockerPublisher struct {
	// Docker is the build tool binary, "docker" by default.
	Docker string
}

// NewDockerPublisher creates a publisher using the docker CLI.
func NewDockerPublisher() *DockerPublisher {
	return &DockerPublisher{Docker: "docker"}
}

// Exists implements Publisher via a manifest HEAD request against the
// registry, authenticated from the local keychain.
func (p *DockerPublisher) Exists(ctx context.Context, ref string) (bool, error) {
	parsed, err := name.ParseReference(ref)
	if err != nil {
		return false, fmt.Errorf("invalid image reference %q: %w", ref, err)
	}

	_, err = remote.Head(parsed,
		remote.WithContext(ctx),
		remote.WithAuthFromKeychain(authn.DefaultKeychain),
	)
	if err != nil {
		if isManifestUnknown(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to probe manifest for %s: %w", ref, err)
	}
	return true, nil
}

// isManifestUnknown reports whether the registry cleanly answered that
// no manifest exists at the reference.
func isManifestUnknown(err error) bool {
	var terr *transport.Error
	if errors.As(err, &terr) {
		if terr.StatusCode == http.StatusNotFound {
			return true
		}
		for _, diag := range terr.Errors {
			if diag.Code == transport.ManifestUnknownErrorCode {
				return true
			}
		}
	}
	return false
}

// Build implements Publisher.
func (p *DockerPublisher) Build(ctx context.Context, ref, contextDir string) error {
	cmd := exec.CommandContext(ctx, p.Docker, "build", "-t", ref, contextDir)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("image build for %s failed: %w", ref, err)
	}
	return nil
}

// Push implements Publisher.
func (p *DockerPublisher) Push(ctx context.Context, ref string) error {
	cmd := exec.CommandContext(ctx, p.Docker, "push", ref)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("image push for %s failed: %w", ref, err)
	}
	return nil
}

// MockPublisher is a function-field test double for Publisher.
type MockPublisher struct {
	ExistsFunc func(ctx context.Context, ref string) (bool, error)
	BuildFunc  func(ctx context.Context, ref, contextDir string) error
	PushFunc   func(ctx context.Context, ref string) error
}

var _ Publisher = (*MockPublisher)(nil)

// Exists implements Publisher.
func (m *MockPublisher) Exists(ctx context.Context, ref string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, ref)
	}
	return false, nil
}

// Build implements Publisher.
func (m *MockPublisher) Build(ctx context.Context, ref, contextDir string) error {
	if m.BuildFunc != nil {
		return m.BuildFunc(ctx, ref, contextDir)
	}
	return nil
}

// Push implements Publisher.
func (m *MockPublisher) Push(ctx context.Context, ref string) error {
	if m.PushFunc != nil {
		return m.PushFunc(ctx, ref)
	}
	return nil
}
