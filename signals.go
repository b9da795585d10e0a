package aspect

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for proxy events.
var (
	SignalProxyCreated   = capitan.NewSignal("aspect.proxy.created", "Proxy bound to a target")
	SignalProxyClosed    = capitan.NewSignal("aspect.proxy.closed", "Proxy released its target")
	SignalInvokeStart    = capitan.NewSignal("aspect.invoke.start", "Invocation beginning")
	SignalInvokeComplete = capitan.NewSignal("aspect.invoke.complete", "Invocation finished")
	SignalParamsSet      = capitan.NewSignal("aspect.params.set", "Aspect parameters configured")
)

// Keys for typed event data.
var (
	KeyTarget      = capitan.NewStringKey("target")
	KeyFunction    = capitan.NewStringKey("function")
	KeyStrategy    = capitan.NewStringKey("strategy")
	KeyCallID      = capitan.NewStringKey("call_id")
	KeyAspect      = capitan.NewStringKey("aspect")
	KeyAspectCount = capitan.NewIntKey("aspect_count")
	KeyMatched     = capitan.NewIntKey("matched")
	KeyOwnership   = capitan.NewStringKey("ownership")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
)

// emitProxyCreated emits an event when a proxy is bound.
func emitProxyCreated(ctx context.Context, target string, aspects int, owned bool) {
	capitan.Emit(ctx, SignalProxyCreated,
		KeyTarget.Field(target),
		KeyAspectCount.Field(aspects),
		KeyOwnership.Field(ownership(owned)),
	)
}

// emitProxyClosed emits an event when a proxy releases its target.
func emitProxyClosed(ctx context.Context, target string, owned bool, err error) {
	fields := []capitan.Field{
		KeyTarget.Field(target),
		KeyOwnership.Field(ownership(owned)),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalProxyClosed, fields...)
	} else {
		capitan.Emit(ctx, SignalProxyClosed, fields...)
	}
}

// emitInvokeStart emits an event when an invocation begins.
func emitInvokeStart(ctx context.Context, c *Call) {
	capitan.Emit(ctx, SignalInvokeStart,
		KeyFunction.Field(c.Function),
		KeyStrategy.Field(c.Signature.Strategy.String()),
		KeyCallID.Field(c.ID.String()),
	)
}

// emitInvokeComplete emits an event when an invocation finishes.
func emitInvokeComplete(ctx context.Context, c *Call, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyFunction.Field(c.Function),
		KeyStrategy.Field(c.Signature.Strategy.String()),
		KeyCallID.Field(c.ID.String()),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalInvokeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalInvokeComplete, fields...)
	}
}

// emitParamsSet emits an event when SetParam or Configure targets an
// aspect type.
func emitParamsSet(ctx context.Context, aspect string, matched int, err error) {
	fields := []capitan.Field{
		KeyAspect.Field(aspect),
		KeyMatched.Field(matched),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalParamsSet, fields...)
	} else {
		capitan.Emit(ctx, SignalParamsSet, fields...)
	}
}

func ownership(owned bool) string {
	if owned {
		return "owned"
	}
	return "borrowed"
}
