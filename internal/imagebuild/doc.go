// Package imagebuild wraps the container build tool used to produce the
// chat gateway image.
//
// The build command keeps the contract of the original build script:
// positional version, tag and registry arguments, a local build first,
// and an interactive confirmation before anything is pushed. podman is
// preferred when both tools are installed because the deployment targets
// run OpenShift; docker is the fallback for developer machines.
package imagebuild
