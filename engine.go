package aspect

import (
	"context"
	"log/slog"
	"reflect"
	"time"
)

// engine runs an aspect chain around real calls. It is shared by Proxy and
// FuncProxy.
type engine struct {
	aspects []Aspect
	logger  *slog.Logger
}

func newEngine(cfg *config) engine {
	return engine{
		aspects: cfg.aspects,
		logger:  cfg.logger,
	}
}

// strategyFunc performs the real call for one invocation strategy.
type strategyFunc func(fn, recv reflect.Value, in []reflect.Value) []reflect.Value

// strategies is indexed by Strategy. Member strategies bind the call to the
// receiver; the void/value split decides what after-hooks receive.
var strategies = [...]strategyFunc{
	StrategyFreeVoid: func(fn, _ reflect.Value, in []reflect.Value) []reflect.Value {
		fn.Call(in)
		return nil
	},
	StrategyFreeValue: func(fn, _ reflect.Value, in []reflect.Value) []reflect.Value {
		return fn.Call(in)
	},
	StrategyMemberVoid: func(fn, recv reflect.Value, in []reflect.Value) []reflect.Value {
		fn.Call(bindReceiver(recv, in))
		return nil
	},
	StrategyMemberValue: func(fn, recv reflect.Value, in []reflect.Value) []reflect.Value {
		return fn.Call(bindReceiver(recv, in))
	},
}

func bindReceiver(recv reflect.Value, in []reflect.Value) []reflect.Value {
	full := make([]reflect.Value, 0, len(in)+1)
	full = append(full, recv)
	return append(full, in...)
}

// invoke runs before-hooks, the real call, and after-hooks for one call.
// target is exposed to aspects for member strategies only.
func (e *engine) invoke(ctx context.Context, fn reflect.Value, sig *Signature, recv reflect.Value, target any, in []reflect.Value) ([]reflect.Value, error) {
	do := strategies[sig.Strategy]

	if !Enabled {
		out := do(fn, recv, in)
		return out, callFailure(funcName(fn), sig, out)
	}

	name := funcName(fn)
	if !sig.Member() {
		target = nil
	}
	c := newCall(ctx, name, sig, target, valuesToAny(in))

	start := time.Now()
	emitInvokeStart(c.Context(), c)

	out, err := e.around(c, func() ([]reflect.Value, error) {
		out := do(fn, recv, in)
		return out, callFailure(name, sig, out)
	})

	emitInvokeComplete(c.Context(), c, time.Since(start), err)
	return out, err
}

// around threads c through the chain. A before-hook failure skips the real
// call and all after-hooks. A failed real call skips all after-hooks. An
// after-hook failure skips the after-hooks that follow it. Aspects whose
// After is skipped after their Before ran get OnError.
func (e *engine) around(c *Call, call func() ([]reflect.Value, error)) ([]reflect.Value, error) {
	ran, err := e.before(c)
	if err != nil {
		e.fail(c, e.aspects[:ran], err)
		return nil, err
	}

	out, err := call()
	if err != nil {
		e.fail(c, e.aspects, err)
		return out, err
	}

	if !c.Signature.Void() {
		c.Results = valuesToAny(out)
	}

	if i, err := e.after(c); err != nil {
		e.fail(c, e.aspects[i+1:], err)
		return out, err
	}
	return out, nil
}

// before runs every before-hook in chain order and reports how many
// completed.
func (e *engine) before(c *Call) (int, error) {
	for i, a := range e.aspects {
		if err := a.Before(c); err != nil {
			herr := newHookError(PhaseBefore, i, a, err)
			e.logger.Debug("aspect before-hook failed",
				"function", c.Function,
				"aspect", aspectName(a),
				"error", err,
			)
			return i, herr
		}
	}
	return len(e.aspects), nil
}

// after runs every after-hook in chain order, not reversed. On failure it
// reports the index of the failing aspect.
func (e *engine) after(c *Call) (int, error) {
	for i, a := range e.aspects {
		if err := a.After(c); err != nil {
			e.logger.Debug("aspect after-hook failed",
				"function", c.Function,
				"aspect", aspectName(a),
				"error", err,
			)
			return i, newHookError(PhaseAfter, i, a, err)
		}
	}
	return len(e.aspects), nil
}

// fail notifies aspects that will not see an After for c.
func (e *engine) fail(c *Call, pending []Aspect, err error) {
	for _, a := range pending {
		if o, ok := a.(ErrorObserver); ok {
			o.OnError(c, err)
		}
	}
}

// chainAspects returns a copy of the chain.
func (e *engine) chainAspects() []Aspect {
	out := make([]Aspect, len(e.aspects))
	copy(out, e.aspects)
	return out
}

// callFailure extracts a non-nil trailing error result.
func callFailure(name string, sig *Signature, out []reflect.Value) error {
	if !sig.Fallible || len(out) == 0 {
		return nil
	}
	last := out[len(out)-1]
	if last.IsNil() {
		return nil
	}
	return &CallError{Function: name, Cause: last.Interface().(error)}
}

func valuesToAny(values []reflect.Value) []any {
	if len(values) == 0 {
		return nil
	}
	out := make([]any, len(values))
	for i, v := range values {
		if v.IsValid() && v.CanInterface() {
			out[i] = v.Interface()
		}
	}
	return out
}
