package aspect

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrSignature indicates a callable whose shape cannot be classified
	// into one of the supported invocation strategies.
	ErrSignature = errors.New("unsupported callable signature")

	// ErrArity indicates the argument count does not match the callable.
	ErrArity = errors.New("argument count mismatch")

	// ErrArgType indicates an argument is not assignable to its parameter.
	ErrArgType = errors.New("argument type mismatch")

	// ErrHook indicates a before- or after-hook failed.
	ErrHook = errors.New("aspect hook failed")

	// ErrCall indicates the wrapped call itself reported failure.
	ErrCall = errors.New("wrapped call failed")

	// ErrClosed indicates the proxy has been closed.
	ErrClosed = errors.New("proxy closed")

	// ErrNoTarget indicates a member call on a proxy without a target.
	ErrNoTarget = errors.New("proxy has no target")

	// ErrParams indicates an aspect rejected its parameters.
	ErrParams = errors.New("invalid aspect parameters")
)

// ConfigError represents a bind-time configuration error.
// It wraps a sentinel error with the callable and owner involved.
type ConfigError struct {
	Err      error  // Underlying sentinel error (ErrSignature, ErrArity, ...)
	Callable string // Type string of the callable
	Owner    string // Owner type, empty for free callables
	Detail   string
}

func (e *ConfigError) Error() string {
	msg := e.Err.Error()
	if e.Callable != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Callable)
	}
	if e.Owner != "" {
		msg = fmt.Sprintf("%s (owner %s)", msg, e.Owner)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Phase identifies where in the call lifecycle a hook ran.
type Phase string

// Hook phases.
const (
	PhaseBefore Phase = "before"
	PhaseAfter  Phase = "after"
)

// HookError represents a failure raised by an aspect hook.
type HookError struct {
	Aspect string // Type name of the failing aspect
	Phase  Phase
	Index  int   // Position of the aspect in the chain
	Cause  error // Error returned by the hook
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s hook of %s (#%d): %v", e.Phase, e.Aspect, e.Index, e.Cause)
}

// Unwrap exposes both the sentinel and the cause to errors.Is and errors.As.
func (e *HookError) Unwrap() []error {
	return []error{ErrHook, e.Cause}
}

// CallError represents a failure reported by the wrapped callable through
// its trailing error result.
type CallError struct {
	Function string
	Cause    error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Function, e.Cause)
}

// Unwrap exposes both the sentinel and the cause to errors.Is and errors.As.
func (e *CallError) Unwrap() []error {
	return []error{ErrCall, e.Cause}
}

// newConfigError creates a ConfigError for bind-time failures.
func newConfigError(sentinel error, callable, owner, detail string) error {
	return &ConfigError{
		Err:      sentinel,
		Callable: callable,
		Owner:    owner,
		Detail:   detail,
	}
}

// newHookError creates a HookError for a failing aspect.
func newHookError(phase Phase, index int, a Aspect, cause error) error {
	return &HookError{
		Aspect: aspectName(a),
		Phase:  phase,
		Index:  index,
		Cause:  cause,
	}
}

// isCallError reports whether err came from the wrapped call rather than a
// hook or bind-time check.
func isCallError(err error) bool {
	var ce *CallError
	return errors.As(err, &ce)
}
