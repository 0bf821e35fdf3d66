package cmd

import (
	"context"
	"fmt"

	"shipmate/internal/cli"
	"shipmate/internal/imagebuild"

	"github.com/spf13/cobra"
)

var (
	buildForce         bool
	buildBuilder       string
	buildContainerfile string
	buildContextDir    string
	buildImageName     string
)

// buildCmd builds the chat gateway container image.
var buildCmd = &cobra.Command{
	Use:   "build [version] [tag] [registry]",
	Short: "Build the chat gateway container image",
	Long: `Build the chat gateway container image with podman or docker,
whichever is installed (podman preferred).

The positional arguments keep the original build script contract:
version defaults to "latest", the image tag defaults to the version,
and a registry turns the local build into a push. Pushes ask for
confirmation unless --force is given.

Examples:
  shipmate build
  shipmate build 1.2.0
  shipmate build 1.2.0 1.2.0-rc1
  shipmate build 1.2.0 1.2.0 quay.io/acme --force`,
	Args: cobra.MaximumNArgs(3),
	RunE: runBuild,
}

// buildCoordinates applies the positional defaults: version falls back
// to "latest", the tag to the version, and an empty registry keeps the
// build local.
func buildCoordinates(args []string) (version, tag, registry string) {
	version = "latest"
	if len(args) > 0 && args[0] != "" {
		version = args[0]
	}
	tag = version
	if len(args) > 1 && args[1] != "" {
		tag = args[1]
	}
	if len(args) > 2 {
		registry = args[2]
	}
	return version, tag, registry
}

func runBuild(cmd *cobra.Command, args []string) error {
	version, tag, registry := buildCoordinates(args)

	builder, err := imagebuild.NewBuilder(buildBuilder)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ref := imagebuild.ImageRef(registry, buildImageName, tag)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Building %s (version %s) with %s\n", ref, version, builder.Binary())

	err = builder.Build(ctx, imagebuild.BuildOptions{
		Ref:           ref,
		Containerfile: buildContainerfile,
		ContextDir:    buildContextDir,
		BuildArgs:     map[string]string{"VERSION": version},
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("built %s", ref)))

	if registry == "" {
		return nil
	}

	if !buildForce && !cli.Confirm(cmd.InOrStdin(), out, fmt.Sprintf("Push image %s?", ref)) {
		fmt.Fprintln(out, "Push skipped.")
		return nil
	}
	if err := builder.Push(ctx, ref); err != nil {
		return err
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("pushed %s", ref)))
	return nil
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().BoolVar(&buildForce, "force", false,
		"Push without asking for confirmation")
	buildCmd.Flags().StringVar(&buildBuilder, "builder", "",
		"Container build tool (podman or docker, default: autodetect)")
	buildCmd.Flags().StringVar(&buildContainerfile, "containerfile", "Containerfile",
		"Build file relative to the context directory")
	buildCmd.Flags().StringVar(&buildContextDir, "context", ".",
		"Build context directory")
	buildCmd.Flags().StringVar(&buildImageName, "image", "chat-gateway",
		"Image name without registry or tag")
}
