package core

import (
	"fmt"
)

// ConfigurationError reports a missing token or API key. It is raised before any I/O.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s is not set", e.Field)
}

// RemoteHostError is a non-success response from the Git hosting API. Body holds
// the response document as returned by the host.
type RemoteHostError struct {
	Op     string
	Status int
	Body   string
}

func (e *RemoteHostError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("remote host returned %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("%s: remote host returned %d: %s", e.Op, e.Status, e.Body)
}

// IsNotFound reports whether the host answered 404.
func (e *RemoteHostError) IsNotFound() bool {
	return e.Status == 404
}

// AIResponseParseError means the model answered but the answer was not valid JSON
// for the requested result type.
type AIResponseParseError struct {
	Task Task
	Raw  string
	Err  error
}

func (e *AIResponseParseError) Error() string {
	return fmt.Sprintf("failed to parse %s response from model: %v", e.Task, e.Err)
}

func (e *AIResponseParseError) Unwrap() error { return e.Err }

// AIProviderError carries the upstream message of a failed model call.
type AIProviderError struct {
	Message string
	Err     error
}

func (e *AIProviderError) Error() string {
	return "AI provider error: " + e.Message
}

func (e *AIProviderError) Unwrap() error { return e.Err }

// FixApplicationError wraps the first failing step of a publish transaction.
// Steps completed before it are left in place.
type FixApplicationError struct {
	Step string
	Err  error
}

func (e *FixApplicationError) Error() string {
	return fmt.Sprintf("failed to apply fix at step %q: %v", e.Step, e.Err)
}

func (e *FixApplicationError) Unwrap() error { return e.Err }

// ValidationError describes a structurally incomplete proposal or request.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}
