// Package errs defines the failure kinds shared across the generation
// pipeline. Each kind is a distinct error type so callers can branch with
// errors.As without parsing messages.
package errs

import "fmt"

// ConfigurationError means required credentials or configuration are missing
// or malformed. Never retried.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

// NewConfigurationError formats a new ConfigurationError.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// ValidationError means an input violated a stated precondition. Raised
// before any network call and never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidationError formats a new ValidationError.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// serviceError carries a user-safe message plus the underlying cause. The
// cause is reachable through Unwrap for logging but is deliberately kept out
// of Error() so upstream payloads never leak to the user.
type serviceError struct {
	Msg string
	Err error
}

func (e *serviceError) Error() string { return e.Msg }
func (e *serviceError) Unwrap() error { return e.Err }

// ScriptServiceError means the text generation service failed after retries.
type ScriptServiceError struct{ serviceError }

// NewScriptServiceError wraps cause with a user-safe message.
func NewScriptServiceError(msg string, cause error) *ScriptServiceError {
	return &ScriptServiceError{serviceError{Msg: msg, Err: cause}}
}

// SpeechServiceError means the speech synthesis service failed after retries.
type SpeechServiceError struct{ serviceError }

// NewSpeechServiceError wraps cause with a user-safe message.
func NewSpeechServiceError(msg string, cause error) *SpeechServiceError {
	return &SpeechServiceError{serviceError{Msg: msg, Err: cause}}
}

// ImageServiceError means the image generation service failed after retries.
type ImageServiceError struct{ serviceError }

// NewImageServiceError wraps cause with a user-safe message.
func NewImageServiceError(msg string, cause error) *ImageServiceError {
	return &ImageServiceError{serviceError{Msg: msg, Err: cause}}
}

// CompilationError means the media compiler could not produce the output.
type CompilationError struct{ serviceError }

// NewCompilationError wraps cause with an actionable message.
func NewCompilationError(msg string, cause error) *CompilationError {
	return &CompilationError{serviceError{Msg: msg, Err: cause}}
}
