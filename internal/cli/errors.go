package cli

import "fmt"

// ConfigError marks a failure in loading or interpreting configuration.
// The command layer maps it to its own exit code so scripts can tell a
// broken config apart from a broken deployment.
type ConfigError struct {
	// Err is the underlying failure.
	Err error
}

// Error returns the wrapped message prefixed with the failure class.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

// Unwrap exposes the underlying error for errors.Is/As chains.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// UnreachableError marks a collaborator (LLaMA Stack, an MCP server,
// Milvus, the running gateway) that could not be reached or reported
// itself unhealthy.
type UnreachableError struct {
	// Target names the collaborator, e.g. "llama-stack".
	Target string

	// Err is the underlying failure. May be nil when the collaborator
	// answered but reported failure.
	Err error
}

// Error returns a message naming the unreachable collaborator.
func (e *UnreachableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s is not reachable", e.Target)
	}
	return fmt.Sprintf("%s is not reachable: %v", e.Target, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/As chains.
func (e *UnreachableError) Unwrap() error {
	return e.Err
}
