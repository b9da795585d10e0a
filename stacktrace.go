package aspect

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// DefaultStackDepth bounds the frames a StackTrace reports.
const DefaultStackDepth = 50

// maxStackCapture bounds the raw program counters collected per capture.
const maxStackCapture = 4096

// Frame is one reported stack frame.
type Frame struct {
	// Depth is the frame's distance from the outermost reported frame,
	// which has depth 0.
	Depth    int
	Function string
	File     string
	Line     int
}

// String renders the frame as "function (file:line)".
func (f Frame) String() string {
	return fmt.Sprintf("%s (%s:%d)", f.Function, f.File, f.Line)
}

// selfPackage is this package's import path. Frames from it, and from the
// reflect and runtime packages that dispatch calls, are never reported.
var selfPackage = reflect.TypeFor[Call]().PkgPath()

// StackTrace reports the caller's stack before each call, innermost frame
// first:
//
//	[aspect] [Stack Trace ] [#2  ] main.handle (/src/main.go:30)
//	[aspect] [Stack Trace ] [#1  ] main.serve (/src/main.go:21)
//	[aspect] [Stack Trace ] [#0  ] main.main (/src/main.go:12)
//
// Frames past MaxDepth are dropped without notice.
type StackTrace struct {
	NopAfter

	// MaxDepth bounds the reported frames. Defaults to DefaultStackDepth.
	MaxDepth int `mapstructure:"max_depth"`

	reporter *Reporter
}

// NewStackTrace returns a StackTrace with the default bound.
func NewStackTrace() *StackTrace {
	return &StackTrace{MaxDepth: DefaultStackDepth}
}

// Name implements Named.
func (s *StackTrace) Name() string { return "stacktrace" }

// SetReporter implements Reporting.
func (s *StackTrace) SetReporter(r *Reporter) { s.reporter = r }

// SetParams sets MaxDepth.
func (s *StackTrace) SetParams(args ...any) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: stacktrace: want 1 argument, got %d", ErrParams, len(args))
	}
	depth, ok := args[0].(int)
	if !ok || depth <= 0 {
		return fmt.Errorf("%w: stacktrace: want positive int, got %v", ErrParams, args[0])
	}
	s.MaxDepth = depth
	return nil
}

type stackKey struct{}

// Before captures and reports the stack. The frames are kept on the call;
// see Stack.
func (s *StackTrace) Before(c *Call) error {
	limit := s.MaxDepth
	if limit <= 0 {
		limit = DefaultStackDepth
	}
	frames := captureStack(limit)
	c.Set(stackKey{}, frames)
	for _, f := range frames {
		s.reporter.Line(fmt.Sprintf("[Stack Trace ] [#%-3d] %s", f.Depth, f))
	}
	return nil
}

// Stack returns the frames a StackTrace captured for c.
func Stack(c *Call) []Frame {
	v, _ := c.Value(stackKey{})
	frames, _ := v.([]Frame)
	return frames
}

// captureStack returns up to limit caller frames, innermost first, with
// dispatch frames removed.
func captureStack(limit int) []Frame {
	pcs := make([]uintptr, 64)
	for {
		n := runtime.Callers(1, pcs)
		if n < len(pcs) || len(pcs) >= maxStackCapture {
			pcs = pcs[:n]
			break
		}
		pcs = make([]uintptr, len(pcs)*2)
	}

	var out []Frame
	frames := runtime.CallersFrames(pcs)
	for len(out) < limit {
		f, more := frames.Next()
		if !internalFrame(f.Function) {
			out = append(out, Frame{Function: f.Function, File: f.File, Line: f.Line})
		}
		if !more {
			break
		}
	}
	for i := range out {
		out[i].Depth = len(out) - i - 1
	}
	return out
}

func internalFrame(function string) bool {
	switch framePackage(function) {
	case "", selfPackage, "reflect", "runtime":
		return true
	}
	return false
}

// framePackage extracts the import path from a qualified function name
// such as "github.com/x/y.(*T[...]).M".
func framePackage(function string) string {
	if i := strings.IndexByte(function, '['); i >= 0 {
		function = function[:i]
	}
	slash := strings.LastIndexByte(function, '/')
	if dot := strings.IndexByte(function[slash+1:], '.'); dot >= 0 {
		return function[:slash+1+dot]
	}
	return function
}
