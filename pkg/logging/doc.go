// Package logging provides shipmate's structured logging built on the
// standard slog package.
//
// Every log entry carries a subsystem identifier so output from the
// gateway, the MCP bridge, the assistant, and the chart tooling can be
// told apart in one stream:
//
//	logging.Init(logging.LevelInfo, os.Stdout, false)
//
//	logging.Info("bridge", "connected to %s", serverName)
//	logging.Error("gateway", err, "chat turn failed")
//
// The second Init argument selects the output writer and the third the
// JSON handler, which the gateway uses when running in a cluster. The
// command layer calls InitForCLI, which is Init with the text handler.
//
// Subsystems in use: bootstrap, config, gateway, bridge, aggregator,
// assistant, llamastack, status, charts, imagebuild, orchestrator.
//
// Init also routes controller-runtime's logr output through the same
// handler, so Kubernetes client machinery (informers, REST warnings)
// does not print through an unconfigured logger during chart applies.
package logging
