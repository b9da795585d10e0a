package aspect

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"sync/atomic"

	"github.com/zoobzio/sentinel"
)

// Proxy binds a target of type T to an aspect chain. Calls made through
// Invoke (or the typed Call/Do helpers) run every before-hook in chain
// order, the real call, then every after-hook in the same order.
//
// The target is either owned (New) or borrowed (Wrap). Closing an owned
// proxy releases the target and closes it if it implements io.Closer;
// closing a borrowed proxy never touches the target.
//
// Invocations run synchronously on the caller's goroutine. The built-in
// aspects keep per-call state on the Call, so concurrent Invoke on one
// proxy is safe for them. Aspects that keep state in their own fields are
// not; confine such a proxy to one goroutine, serialize calls, or give each
// goroutine its own proxy over a borrowed target. Configure aspects
// (SetParam, Configure, ConfigureMap) before the proxy is shared.
type Proxy[T any] struct {
	engine

	target *T
	owned  bool
	closed atomic.Bool

	// Type metadata
	owner    reflect.Type
	typeName string
	meta     *sentinel.Metadata
}

// New constructs a target with construct and returns a proxy that owns it.
// A nil construct allocates a zero T.
func New[T any](construct func() (*T, error), opts ...Option) (*Proxy[T], error) {
	var target *T
	if construct == nil {
		target = new(T)
	} else {
		t, err := construct()
		if err != nil {
			return nil, fmt.Errorf("construct target: %w", err)
		}
		if t == nil {
			return nil, newConfigError(ErrNoTarget, "", reflect.TypeFor[*T]().String(), "constructor returned nil")
		}
		target = t
	}
	return newProxy(target, true, opts), nil
}

// Wrap returns a proxy borrowing target. The caller keeps ownership and
// must keep target alive for as long as the proxy is used.
func Wrap[T any](target *T, opts ...Option) *Proxy[T] {
	return newProxy(target, false, opts)
}

func newProxy[T any](target *T, owned bool, opts []Option) *Proxy[T] {
	cfg := newConfig(opts)
	p := &Proxy[T]{
		engine: newEngine(cfg),
		target: target,
		owned:  owned,
		owner:  reflect.TypeFor[*T](),
	}

	p.typeName = p.owner.Elem().String()
	if p.owner.Elem().Kind() == reflect.Struct {
		meta := sentinel.Scan[T]()
		p.meta = &meta
		p.typeName = meta.TypeName
	}

	p.logger.Debug("aspect proxy created",
		"target", p.typeName,
		"aspects", len(p.aspects),
		"owned", owned,
	)
	emitProxyCreated(context.Background(), p.typeName, len(p.aspects), owned)
	return p
}

// Invoke calls fn through the aspect chain and returns its results.
//
// Binding follows fn's first parameter. When it is *T or T, as for the
// method expressions (*T).Method and T.Method, the call is bound to the held
// target and args exclude the receiver. This also applies to closures and
// helpers taking *T or T first. Any other function is called as a free
// function. Void callables return nil results.
//
// Arguments must be assignable to their parameter types. Values of another
// type with the same kind are converted, as are integers between integer
// and floating-point parameters and floats between float widths, provided
// the value fits. Anything else is an argument type mismatch.
//
// Errors: bind-time problems (non-function fn, wrong arity or argument
// types) return a *ConfigError before any hook runs. A failing hook returns
// a *HookError. A wrapped call whose trailing error result is non-nil
// returns its results and a *CallError, and its after-hooks are skipped.
func (p *Proxy[T]) Invoke(ctx context.Context, fn any, args ...any) ([]any, error) {
	out, err := p.invokeValues(ctx, fn, args)
	return valuesToAny(out), err
}

func (p *Proxy[T]) invokeValues(ctx context.Context, fn any, args []any) ([]reflect.Value, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}

	sig, err := Inspect(fn, p.owner)
	if err != nil {
		return nil, err
	}
	fv := reflect.ValueOf(fn)
	if fv.IsNil() {
		return nil, newConfigError(ErrSignature, sig.String(), typeString(sig.Owner), "nil function")
	}

	in, err := sig.bindArgs(args)
	if err != nil {
		return nil, err
	}

	var recv reflect.Value
	if sig.Member() {
		if p.target == nil {
			return nil, newConfigError(ErrNoTarget, sig.String(), typeString(sig.Owner), "")
		}
		recv = reflect.ValueOf(p.target)
		if sig.valueRecv {
			recv = recv.Elem()
		}
	}

	return p.invoke(ctx, fv, sig, recv, p.target, in)
}

// Deref runs the before-hooks with no arguments and returns the target, for
// the fluent style p.Deref().Method(). Unlike Invoke, this path never runs
// after-hooks: aspects observe entry but not completion. Hooks see a Call
// with a nil Signature.
func (p *Proxy[T]) Deref() (*T, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	if !Enabled {
		return p.target, nil
	}

	c := newCall(context.Background(), p.typeName, nil, p.target, nil)
	if ran, err := p.before(c); err != nil {
		p.fail(c, p.aspects[:ran], err)
		return nil, err
	}
	return p.target, nil
}

// Unwrap returns the target without running any hook.
func (p *Proxy[T]) Unwrap() *T {
	return p.target
}

// Owned reports whether the proxy owns its target.
func (p *Proxy[T]) Owned() bool {
	return p.owned
}

// Aspects returns a copy of the aspect chain in execution order.
func (p *Proxy[T]) Aspects() []Aspect {
	return p.chainAspects()
}

// Metadata returns the sentinel metadata of a struct target type.
func (p *Proxy[T]) Metadata() (sentinel.Metadata, bool) {
	if p.meta == nil {
		return sentinel.Metadata{}, false
	}
	return *p.meta, true
}

// Close releases the target. An owned target implementing io.Closer is
// closed; a borrowed target is left untouched. Further calls return
// ErrClosed. Close is idempotent and must not race with Invoke.
func (p *Proxy[T]) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	if p.owned && p.target != nil {
		if c, ok := any(p.target).(io.Closer); ok {
			err = c.Close()
		}
	}
	p.target = nil

	p.logger.Debug("aspect proxy closed",
		"target", p.typeName,
		"owned", p.owned,
		"error", err,
	)
	emitProxyClosed(context.Background(), p.typeName, p.owned, err)
	return err
}
