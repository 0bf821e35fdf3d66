// Package status probes every collaborator of the deployment (the
// gateway itself, the LLaMA Stack server, the inference model, the MCP
// bridge servers and Milvus) and assembles the results into a report.
//
// The report renders in two shapes: the plain-text block shown in the
// UI's system status tab and a terminal table for the status command.
// Probes run concurrently and record failures in their checks, so a
// dead collaborator never hides the state of the others.
package status
