package aspect

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultTimerMetric names the histogram a Timer records into.
const DefaultTimerMetric = "aspect.call.duration"

// Timer reports the time spent in each call:
//
//	[aspect] checkout elapsed: 1.204ms
//
// The start time is kept on the Call, so overlapping calls through one
// proxy are measured independently. Failed calls are not reported but are
// still recorded to the histogram when one is set.
type Timer struct {
	// Label names the timer in output. Defaults to the call's function name.
	Label string `mapstructure:"label"`

	histogram metric.Float64Histogram
	reporter  *Reporter
}

// NewTimer returns a Timer reporting under label.
func NewTimer(label string) *Timer {
	return &Timer{Label: label}
}

// Name implements Named.
func (t *Timer) Name() string { return "timer" }

// SetReporter implements Reporting.
func (t *Timer) SetReporter(r *Reporter) { t.reporter = r }

// SetParams sets the label.
func (t *Timer) SetParams(args ...any) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: timer: want 1 argument, got %d", ErrParams, len(args))
	}
	label, ok := args[0].(string)
	if !ok {
		return fmt.Errorf("%w: timer: want string label, got %T", ErrParams, args[0])
	}
	t.Label = label
	return nil
}

// UseMeter records call durations, in seconds, to a DefaultTimerMetric
// histogram created from meter.
func (t *Timer) UseMeter(meter metric.Meter) error {
	h, err := meter.Float64Histogram(DefaultTimerMetric,
		metric.WithDescription("Duration of calls made through an aspect proxy"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("timer histogram: %w", err)
	}
	t.histogram = h
	return nil
}

type timerKey struct{ t *Timer }

// Before records the start time.
func (t *Timer) Before(c *Call) error {
	c.Set(timerKey{t}, time.Now())
	return nil
}

// After reports the elapsed time.
func (t *Timer) After(c *Call) error {
	elapsed, ok := t.elapsed(c)
	if !ok {
		return nil
	}
	t.record(c, elapsed, "ok")
	t.reporter.Report(t.label(c)+" elapsed", elapsed.String())
	return nil
}

// OnError implements ErrorObserver.
func (t *Timer) OnError(c *Call, _ error) {
	if elapsed, ok := t.elapsed(c); ok {
		t.record(c, elapsed, "error")
	}
}

func (t *Timer) elapsed(c *Call) (time.Duration, bool) {
	v, ok := c.Value(timerKey{t})
	if !ok {
		return 0, false
	}
	return time.Since(v.(time.Time)), true
}

func (t *Timer) record(c *Call, elapsed time.Duration, status string) {
	if t.histogram == nil {
		return
	}
	t.histogram.Record(c.Context(), elapsed.Seconds(), metric.WithAttributes(
		attribute.String("function", c.Function),
		attribute.String("label", t.label(c)),
		attribute.String("status", status),
	))
}

func (t *Timer) label(c *Call) string {
	if t.Label != "" {
		return t.Label
	}
	return c.Function
}
