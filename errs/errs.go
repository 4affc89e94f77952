// Package errs defines the error taxonomy raised across the cache, loader
// and engine packages. Each kind is its own type so callers can match on it
// with errors.As, the same way the teacher's errors package assigns each
// diagnostic its own code.
package errs

import "fmt"

// InvalidArgumentError is raised when a required constructor or setter
// argument is missing or empty.
type InvalidArgumentError struct {
	Message string
}

func NewInvalidArgument(message string) *InvalidArgumentError {
	return &InvalidArgumentError{Message: message}
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}

// InvalidStateError is raised when an operation is attempted in a state
// that forbids it: a builder setter called after build(), or a loader
// presented with a capability token from a different engine.
type InvalidStateError struct {
	Message string
}

func NewInvalidState(message string) *InvalidStateError {
	return &InvalidStateError{Message: message}
}

func (e *InvalidStateError) Error() string {
	return e.Message
}

// CompileError wraps a compiler factory failure for one source.
type CompileError struct {
	SourceID string
	Message  string
	Cause    error
}

func NewCompileError(sourceID, message string, cause error) *CompileError {
	return &CompileError{SourceID: sourceID, Message: message, Cause: cause}
}

func (e *CompileError) Error() string {
	if e.SourceID == "" {
		return e.Message
	}
	return fmt.Sprintf("compile error for source %q: %s", e.SourceID, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Cause
}

// LoadError is raised when a class lookup fails in the parent, the layer
// stack, and the top cache (when present).
type LoadError struct {
	ClassName string
	Message   string
	Cause     error
}

func NewLoadError(className, message string) *LoadError {
	return &LoadError{ClassName: className, Message: message}
}

func NewLoadErrorWithCause(className, message string, cause error) *LoadError {
	return &LoadError{ClassName: className, Message: message, Cause: cause}
}

func (e *LoadError) Error() string {
	if e.ClassName == "" {
		return e.Message
	}
	return fmt.Sprintf("could not load class %q: %s", e.ClassName, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// LayerConflict names a class that is defined more than once among the
// probed layers. Layers are identified by their index in the slice that
// was passed to the operation that detected the conflict (setCodeLayers'
// layer stack, in practice), which keeps this package free of a dependency
// on the code package while still preserving "the full ordered list of
// defining layers" required by the conflict-detection invariant.
type LayerConflict struct {
	ClassName string
	Layers    []int
}

// ClassNameConflictError is raised by setCodeLayers' pre-check when
// forbidden duplicate class names are found, either across layers or
// between the parent resolver and the layers.
type ClassNameConflictError struct {
	Message         string
	AcrossLayers    []LayerConflict
	ParentAndLayers []LayerConflict
}

func NewClassNameConflictError(acrossLayers, parentAndLayers []LayerConflict) *ClassNameConflictError {
	n := len(acrossLayers) + len(parentAndLayers)
	return &ClassNameConflictError{
		Message:         fmt.Sprintf("found %d class name conflict(s)", n),
		AcrossLayers:    acrossLayers,
		ParentAndLayers: parentAndLayers,
	}
}

func (e *ClassNameConflictError) Error() string {
	return e.Message
}
