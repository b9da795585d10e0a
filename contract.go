package aspect

import "reflect"

// Aspect is a cross-cutting behavior attached to a proxy. Before runs with
// the arguments about to be passed to the real call; After runs with its
// results. Both hooks are for side effects; a returned error aborts the
// invocation and propagates to the caller.
type Aspect interface {
	// Before runs ahead of the real call. c.Args holds the call arguments.
	Before(c *Call) error

	// After runs once the real call has returned. c.Results holds the
	// results, empty for void callables.
	After(c *Call) error
}

// ParamSetter is implemented by aspects that accept configuration through
// SetParam.
type ParamSetter interface {
	SetParams(args ...any) error
}

// ErrorObserver is implemented by aspects that must release per-call
// resources when their Before hook succeeded but their After hook will not
// run: a later before-hook failed, the call failed, or an earlier
// after-hook failed. OnError does not stand in for After.
type ErrorObserver interface {
	OnError(c *Call, err error)
}

// Named lets an aspect report a display name for errors and signals.
type Named interface {
	Name() string
}

// NopBefore provides a no-op Before hook for aspects that only observe
// results.
type NopBefore struct{}

// Before implements Aspect.
func (NopBefore) Before(*Call) error { return nil }

// NopAfter provides a no-op After hook for aspects that only observe
// arguments.
type NopAfter struct{}

// After implements Aspect.
func (NopAfter) After(*Call) error { return nil }

// aspectName returns the display name of an aspect.
func aspectName(a Aspect) string {
	if n, ok := a.(Named); ok {
		return n.Name()
	}
	return reflect.TypeOf(a).String()
}
