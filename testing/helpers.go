// Package testing provides fixtures for testing aspect proxies.
package testing

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/zoobzio/aspect"
)

// Tag is the reporter tag used by Output.
const Tag = "[test]"

// Output returns a reporter writing to a buffer, and the buffer.
func Output(tb testing.TB) (*aspect.Reporter, *bytes.Buffer) {
	tb.Helper()
	buf := &bytes.Buffer{}
	return aspect.NewReporter(buf, Tag), buf
}

// Lines splits reporter output into lines with the tag removed.
func Lines(buf *bytes.Buffer) []string {
	var out []string
	for _, l := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if l == "" {
			continue
		}
		out = append(out, strings.TrimPrefix(l, Tag+" "))
	}
	return out
}

// Log is a concurrency-safe event log shared by Recorders.
type Log struct {
	mu      sync.Mutex
	entries []string
}

// Add appends an entry.
func (l *Log) Add(entry string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

// Entries returns a copy of the log.
func (l *Log) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

// Recorder is an aspect that logs "<name>.before", "<name>.after" and
// "<name>.error" entries, and can be made to fail.
type Recorder struct {
	Label string
	Log   *Log

	// FailBefore and FailAfter are returned from the matching hook.
	FailBefore error
	FailAfter  error

	mu      sync.Mutex
	args    [][]any
	results [][]any
	params  []any
}

// NewRecorder returns a Recorder writing to log.
func NewRecorder(label string, log *Log) *Recorder {
	return &Recorder{Label: label, Log: log}
}

// Name implements aspect.Named.
func (r *Recorder) Name() string { return r.Label }

// Before implements aspect.Aspect.
func (r *Recorder) Before(c *aspect.Call) error {
	r.Log.Add(r.Label + ".before")
	r.mu.Lock()
	r.args = append(r.args, c.Args)
	r.mu.Unlock()
	return r.FailBefore
}

// After implements aspect.Aspect.
func (r *Recorder) After(c *aspect.Call) error {
	r.Log.Add(r.Label + ".after")
	r.mu.Lock()
	r.results = append(r.results, c.Results)
	r.mu.Unlock()
	return r.FailAfter
}

// OnError implements aspect.ErrorObserver.
func (r *Recorder) OnError(_ *aspect.Call, _ error) {
	r.Log.Add(r.Label + ".error")
}

// SetParams implements aspect.ParamSetter.
func (r *Recorder) SetParams(args ...any) error {
	if len(args) == 1 {
		if err, ok := args[0].(error); ok {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.params = append([]any(nil), args...)
	return nil
}

// Args returns the arguments seen by each Before.
func (r *Recorder) Args() [][]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]any(nil), r.args...)
}

// Results returns the results seen by each After.
func (r *Recorder) Results() [][]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]any(nil), r.results...)
}

// Params returns the last parameters accepted by SetParams.
func (r *Recorder) Params() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.params
}

// Observer is a second aspect type, used to check that parameters set by
// type leave other types untouched.
type Observer struct {
	aspect.NopBefore
	aspect.NopAfter

	Params []any
}

// SetParams implements aspect.ParamSetter.
func (o *Observer) SetParams(args ...any) error {
	o.Params = args
	return nil
}

// ErrDivideByZero is returned by Counter.Div.
var ErrDivideByZero = errors.New("divide by zero")

// Counter is a target type covering every invocation strategy.
type Counter struct {
	N     int
	Calls int
}

// Incr is a void method.
func (c *Counter) Incr() {
	c.Calls++
	c.N++
}

// Add is a value-returning method.
func (c *Counter) Add(n int) int {
	c.Calls++
	c.N += n
	return c.N
}

// Get has a value receiver.
func (c Counter) Get() int {
	return c.N
}

// Div fails on a zero divisor.
func (c *Counter) Div(a, b int) (int, error) {
	c.Calls++
	if b == 0 {
		return 0, ErrDivideByZero
	}
	return a / b, nil
}

// Sum is variadic.
func (c *Counter) Sum(xs ...int) int {
	c.Calls++
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

// Resource records whether it was closed.
type Resource struct {
	Closed   int
	CloseErr error
}

// Close implements io.Closer.
func (r *Resource) Close() error {
	r.Closed++
	return r.CloseErr
}

// Account carries fields the Printer redacts and masks.
type Account struct {
	ID       string   `json:"id" yaml:"id" xml:"id" bson:"id" msgpack:"id"`
	Email    string   `json:"email" yaml:"email" xml:"email" bson:"email" msgpack:"email" aspect.mask:"email"`
	Password string   `json:"password" yaml:"password" xml:"password" bson:"password" msgpack:"password" aspect.redact:"***"`
	Cards    []string `json:"cards" yaml:"cards" xml:"cards" bson:"cards" msgpack:"cards" aspect.mask:"card"`
}
