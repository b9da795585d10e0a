// Package aspect intercepts calls to functions and methods with an ordered
// chain of cross-cutting behaviors.
//
// A proxy binds a target to a chain of aspects fixed at construction. Each
// call made through the proxy runs every aspect's Before hook in chain
// order, then the real call, then every After hook in the same order.
//
// # Targets
//
// Proxy[T] holds an instance of T, either owned (New) or borrowed (Wrap).
// Method expressions on T are bound to the held instance; any other
// function is called as a free function:
//
//	p := aspect.Wrap(&cart, aspect.WithAspects(aspect.NewTimer("checkout")))
//	total, err := aspect.Call1(ctx, p, (*Cart).Checkout, coupon)
//
// FuncProxy[F] wraps a standalone function and can hand back a function of
// the same type:
//
//	fp, _ := aspect.NewFunc(strings.Count, aspect.WithAspects(aspect.NewPrinter()))
//	count := fp.Func()
//	n := count("cheese", "e")
//
// # Strategies
//
// Every callable is classified once per type into one of four invocation
// strategies: free or member, void or value-returning. Classification is
// cached; Inspect exposes it.
//
// # Aspects
//
// An aspect implements Before and After. Optional interfaces add
// parameters (ParamSetter), failure notification (ErrorObserver), a display
// name (Named), and a shared output sink (Reporting). Built-in aspects:
//
//   - Printer: reports arguments and results
//   - Profiler: prints a code-location banner when configured
//   - StackTrace: reports the caller's stack
//   - Timer: reports elapsed time, optionally to an OpenTelemetry histogram
//   - Tracing: wraps each call in an OpenTelemetry span
//   - Logging: writes slog records per call
//
// Aspect parameters are set by type, leaving other aspects untouched:
//
//	aspect.SetParam[*aspect.Timer](p, "checkout")
//	aspect.ConfigureMap[*aspect.StackTrace](p, map[string]any{"max_depth": 10})
//
// # Errors
//
// Bind-time problems return a *ConfigError. A failing hook returns a
// *HookError. A call whose trailing error result is non-nil returns a
// *CallError and skips the after-hooks. Use errors.Is with the Err
// sentinels or errors.As with the types.
//
// # Disabling
//
// Building with the noaspect tag makes Enabled false. Proxies then call
// straight through without running hooks or emitting invocation signals.
// Aspects write no diagnostic output, including the Profiler banner.
// Construction, Close and parameter signals still fire.
package aspect

// DefaultAspects returns a fresh Printer, Profiler, StackTrace and Timer,
// in that order.
func DefaultAspects() []Aspect {
	return []Aspect{
		NewPrinter(),
		NewProfiler(),
		NewStackTrace(),
		NewTimer(""),
	}
}
