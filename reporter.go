package aspect

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// DefaultTag prefixes every diagnostic line written by the built-in aspects.
const DefaultTag = "[aspect]"

// Reporter writes human-readable diagnostic lines of the form
// "<tag> <field>: <value>". Lines from concurrent writers never interleave.
// A nil *Reporter writes to stdout with DefaultTag.
type Reporter struct {
	mu  sync.Mutex
	w   io.Writer
	tag string
}

// NewReporter returns a reporter writing to w. An empty tag uses DefaultTag.
func NewReporter(w io.Writer, tag string) *Reporter {
	if w == nil {
		w = os.Stdout
	}
	if tag == "" {
		tag = DefaultTag
	}
	return &Reporter{w: w, tag: tag}
}

var defaultReporter = NewReporter(os.Stdout, DefaultTag)

// Report writes a single "<tag> <field>: <value>" line.
func (r *Reporter) Report(field, value string) {
	r.Line(field + ": " + value)
}

// Line writes text after the tag with no field separator.
func (r *Reporter) Line(text string) {
	if r == nil {
		r = defaultReporter
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// Diagnostics are best-effort; a failing writer must not fail the call.
	_, _ = fmt.Fprintf(r.w, "%s %s\n", r.tag, text)
}

// Reportf formats the value and writes a single line.
func (r *Reporter) Reportf(field, format string, args ...any) {
	r.Report(field, fmt.Sprintf(format, args...))
}

// Tag returns the line prefix.
func (r *Reporter) Tag() string {
	if r == nil {
		return DefaultTag
	}
	return r.tag
}

// Reporting is implemented by aspects that write through a Reporter.
// WithReporter hands the proxy's reporter to every such aspect in the chain.
type Reporting interface {
	SetReporter(r *Reporter)
}
