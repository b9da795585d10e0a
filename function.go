package aspect

import (
	"context"
	"reflect"
)

// FuncProxy binds a standalone function of type F to an aspect chain.
// It has no target instance and always uses a free strategy.
type FuncProxy[F any] struct {
	engine

	fn  reflect.Value
	sig *Signature
}

// NewFunc returns a proxy around fn. fn must be a non-nil function value;
// anything else fails with ErrSignature.
func NewFunc[F any](fn F, opts ...Option) (*FuncProxy[F], error) {
	sig, err := Inspect(fn, nil)
	if err != nil {
		return nil, err
	}
	fv := reflect.ValueOf(fn)
	if fv.IsNil() {
		return nil, newConfigError(ErrSignature, sig.String(), "", "nil function")
	}

	cfg := newConfig(opts)
	p := &FuncProxy[F]{
		engine: newEngine(cfg),
		fn:     fv,
		sig:    sig,
	}

	name := funcName(fv)
	p.logger.Debug("aspect function proxy created",
		"function", name,
		"aspects", len(p.aspects),
	)
	emitProxyCreated(context.Background(), name, len(p.aspects), false)
	return p, nil
}

// Signature returns the introspected signature of the wrapped function.
func (p *FuncProxy[F]) Signature() *Signature {
	return p.sig
}

// Aspects returns a copy of the aspect chain in execution order.
func (p *FuncProxy[F]) Aspects() []Aspect {
	return p.chainAspects()
}

// Invoke calls the wrapped function through the aspect chain. Errors follow
// Proxy.Invoke.
func (p *FuncProxy[F]) Invoke(ctx context.Context, args ...any) ([]any, error) {
	in, err := p.sig.bindArgs(args)
	if err != nil {
		return nil, err
	}
	out, err := p.invoke(ctx, p.fn, p.sig, reflect.Value{}, nil, in)
	return valuesToAny(out), err
}

// Call is Invoke with a background context.
func (p *FuncProxy[F]) Call(args ...any) ([]any, error) {
	return p.Invoke(context.Background(), args...)
}

// Func returns a function of type F that routes every call through the
// proxy, so call sites keep their shape. If F's last result is an error, a
// hook failure is returned there with zero values for the other results;
// otherwise a hook failure panics with the *HookError.
func (p *FuncProxy[F]) Func() F {
	ft := p.sig.Type()
	wrapped := reflect.MakeFunc(ft, func(in []reflect.Value) []reflect.Value {
		if p.sig.Variadic {
			in = spreadVariadic(in)
		}
		out, err := p.invoke(context.Background(), p.fn, p.sig, reflect.Value{}, nil, in)
		if err == nil || isCallError(err) {
			return out
		}
		if !p.sig.Fallible {
			panic(err)
		}
		zero := make([]reflect.Value, ft.NumOut())
		for i := range zero {
			zero[i] = reflect.Zero(ft.Out(i))
		}
		zero[len(zero)-1] = reflect.ValueOf(&err).Elem()
		return zero
	})
	return wrapped.Interface().(F)
}

// spreadVariadic expands the trailing slice MakeFunc hands a variadic
// function into individual arguments.
func spreadVariadic(in []reflect.Value) []reflect.Value {
	last := in[len(in)-1]
	out := make([]reflect.Value, 0, len(in)-1+last.Len())
	out = append(out, in[:len(in)-1]...)
	for i := 0; i < last.Len(); i++ {
		out = append(out, last.Index(i))
	}
	return out
}
