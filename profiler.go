package aspect

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Location identifies a point in the source.
type Location struct {
	Function string `mapstructure:"function"`
	File     string `mapstructure:"file"`
	Line     int    `mapstructure:"line"`
	CallFrom string `mapstructure:"call_from"`
}

// String renders the location as "function (file:line)".
func (l Location) String() string {
	return l.Function + " (" + l.File + ":" + strconv.Itoa(l.Line) + ")"
}

// Here captures the location of its caller, and the function that called
// the caller as CallFrom.
func Here() Location {
	pcs := make([]uintptr, 2)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var loc Location
	f, more := frames.Next()
	loc.Function, loc.File, loc.Line = f.Function, f.File, f.Line
	if more {
		f, _ = frames.Next()
		loc.CallFrom = f.Function
	}
	return loc
}

const profilerRule = "======================================="

// Profiler prints a banner naming a code location when it is configured.
// Its hooks do nothing.
//
//	[aspect] [============] =======================================
//	[aspect] [function    ] main.compute
//	[aspect] [file        ] /src/main.go:42
//	[aspect] [call from   ] main.main
//	[aspect] [============] =======================================
type Profiler struct {
	NopBefore
	NopAfter
	Location `mapstructure:",squash"`

	reporter *Reporter
}

// NewProfiler returns a Profiler with no location.
func NewProfiler() *Profiler {
	return &Profiler{}
}

// Name implements Named.
func (p *Profiler) Name() string { return "profiler" }

// SetReporter implements Reporting.
func (p *Profiler) SetReporter(r *Reporter) { p.reporter = r }

// SetParams records a location and prints the banner. It accepts either a
// single Location or function, file, line and call-from values, in that
// order. Builds with the noaspect tag record the location silently.
func (p *Profiler) SetParams(args ...any) error {
	switch {
	case len(args) == 1:
		loc, ok := args[0].(Location)
		if !ok {
			return fmt.Errorf("%w: profiler: want Location, got %T", ErrParams, args[0])
		}
		p.Location = loc
	case len(args) == 4:
		fn, ok1 := args[0].(string)
		file, ok2 := args[1].(string)
		line, ok3 := args[2].(int)
		from, ok4 := args[3].(string)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return fmt.Errorf("%w: profiler: want (string, string, int, string), got (%T, %T, %T, %T)",
				ErrParams, args[0], args[1], args[2], args[3])
		}
		p.Location = Location{Function: fn, File: file, Line: line, CallFrom: from}
	default:
		return fmt.Errorf("%w: profiler: want 1 or 4 arguments, got %d", ErrParams, len(args))
	}
	if Enabled {
		p.Banner()
	}
	return nil
}

// Banner prints the configured location.
func (p *Profiler) Banner() {
	p.reporter.Line("[============] " + profilerRule)
	p.reporter.Line("[function    ] " + p.Function)
	p.reporter.Line("[file        ] " + p.File + ":" + strconv.Itoa(p.Line))
	if from := strings.TrimSpace(p.CallFrom); from != "" {
		p.reporter.Line("[call from   ] " + from)
	}
	p.reporter.Line("[============] " + profilerRule)
}
