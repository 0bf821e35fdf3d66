package imagebuild

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"shipmate/pkg/logging"
)

const subsystem = "ImageBuild"

// BuilderBinary identifies the container build tool in use.
type BuilderBinary string

const (
	BinaryPodman BuilderBinary = "podman"
	BinaryDocker BuilderBinary = "docker"
)

// execCommandContext is a variable to allow mocking in tests
var execCommandContext = exec.CommandContext

// lookPath is a variable to allow mocking builder detection in tests
var lookPath = exec.LookPath

// Builder wraps a container build tool (podman preferred, docker as
// fallback) for image build and push operations.
type Builder struct {
	binary BuilderBinary
}

// NewBuilder creates a builder for an explicitly chosen binary. An empty
// name autodetects.
func NewBuilder(name string) (*Builder, error) {
	switch BuilderBinary(strings.ToLower(name)) {
	case "":
		return DetectBuilder()
	case BinaryPodman, BinaryDocker:
		binary := BuilderBinary(strings.ToLower(name))
		if _, err := lookPath(string(binary)); err != nil {
			return nil, fmt.Errorf("%s not found in PATH: %w", binary, err)
		}
		return &Builder{binary: binary}, nil
	default:
		return nil, fmt.Errorf("unsupported container builder: %s", name)
	}
}

// DetectBuilder returns a builder for the first available tool,
// preferring podman over docker.
func DetectBuilder() (*Builder, error) {
	for _, candidate := range []BuilderBinary{BinaryPodman, BinaryDocker} {
		if _, err := lookPath(string(candidate)); err == nil {
			logging.Debug(subsystem, "Using %s as container builder", candidate)
			return &Builder{binary: candidate}, nil
		}
	}
	return nil, fmt.Errorf("no container builder found in PATH (tried podman, docker)")
}

// Binary returns the name of the underlying build tool.
func (b *Builder) Binary() string {
	return string(b.binary)
}

// BuildOptions describes one image build.
type BuildOptions struct {
	// Ref is the full image reference to tag, e.g.
	// quay.io/acme/chat-gateway:1.2.0.
	Ref string

	// Containerfile is the build file path. Empty lets the tool pick its
	// default (Containerfile for podman, Dockerfile for docker).
	Containerfile string

	// ContextDir is the build context directory. Defaults to ".".
	ContextDir string

	// BuildArgs are passed through as --build-arg KEY=VALUE.
	BuildArgs map[string]string
}

// Build runs `<builder> build -t <ref> [-f <file>] <dir>` with output
// streamed to the caller's terminal.
func (b *Builder) Build(ctx context.Context, opts BuildOptions) error {
	if opts.Ref == "" {
		return fmt.Errorf("image reference must not be empty")
	}

	args := []string{"build", "-t", opts.Ref}
	if opts.Containerfile != "" {
		args = append(args, "-f", opts.Containerfile)
	}
	for key, value := range opts.BuildArgs {
		args = append(args, "--build-arg", fmt.Sprintf("%s=%s", key, value))
	}
	contextDir := opts.ContextDir
	if contextDir == "" {
		contextDir = "."
	}
	args = append(args, contextDir)

	logging.Info(subsystem, "Building %s with %s", opts.Ref, b.binary)
	logging.Debug(subsystem, "Running: %s %s", b.binary, strings.Join(args, " "))

	cmd := execCommandContext(ctx, string(b.binary), args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("image build failed: %w", err)
	}
	return nil
}

// Push runs `<builder> push <ref>` with output streamed to the caller's
// terminal.
func (b *Builder) Push(ctx context.Context, ref string) error {
	if ref == "" {
		return fmt.Errorf("image reference must not be empty")
	}

	logging.Info(subsystem, "Pushing %s with %s", ref, b.binary)

	cmd := execCommandContext(ctx, string(b.binary), "push", ref)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("image push failed: %w", err)
	}
	return nil
}

// ImageRef assembles an image reference from its parts. An empty
// registry yields a bare local reference.
func ImageRef(registry, name, tag string) string {
	ref := name + ":" + tag
	if registry != "" {
		ref = strings.TrimSuffix(registry, "/") + "/" + ref
	}
	return ref
}
