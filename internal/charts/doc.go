// Package charts renders and applies the deployment charts that ship
// with shipmate.
//
// Rendering is a client-only Helm dry-run: values files and --set
// overrides are merged onto the chart defaults, the templates are
// expanded and the result is returned as one multi-document manifest.
// No cluster access happens until the rendered objects are handed to
// the Applier, which writes them with server-side apply under the
// "shipmate" field owner.
//
// Every chart exposes the same exposure.type switch (none, ingress or
// route) to select how its Service is published. The value is
// validated before rendering so a typo fails fast instead of silently
// producing a ClusterIP-only release.
package charts
