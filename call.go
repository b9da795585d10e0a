package aspect

import (
	"context"

	"github.com/google/uuid"
)

// Call carries one interception through the aspect chain. A Call is created
// per invocation and never shared, so per-call aspect state stored with Set
// cannot leak between overlapping invocations of the same proxy.
type Call struct {
	// ID uniquely identifies this invocation.
	ID uuid.UUID

	// Function is the runtime name of the wrapped callable.
	Function string

	// Signature is the introspected signature. Nil for Deref.
	Signature *Signature

	// Target is the bound instance for member calls, nil otherwise.
	Target any

	// Args holds the arguments about to be passed to the real call.
	Args []any

	// Results holds the real call's results. Empty for void callables
	// and always empty during the before phase.
	Results []any

	ctx   context.Context
	state map[any]any
}

func newCall(ctx context.Context, name string, sig *Signature, target any, args []any) *Call {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Call{
		ID:        uuid.New(),
		Function:  name,
		Signature: sig,
		Target:    target,
		Args:      args,
		ctx:       ctx,
	}
}

// Context returns the call's context.
func (c *Call) Context() context.Context {
	return c.ctx
}

// SetContext replaces the call's context for the hooks that follow.
func (c *Call) SetContext(ctx context.Context) {
	if ctx != nil {
		c.ctx = ctx
	}
}

// Set stores per-call state under key. Aspects conventionally key by a
// private type to avoid collisions.
func (c *Call) Set(key, value any) {
	if c.state == nil {
		c.state = make(map[any]any)
	}
	c.state[key] = value
}

// Value retrieves per-call state stored under key.
func (c *Call) Value(key any) (any, bool) {
	v, ok := c.state[key]
	return v, ok
}

// Void reports whether the call produces no result for after-hooks.
func (c *Call) Void() bool {
	return c.Signature == nil || c.Signature.Void()
}
