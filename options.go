package aspect

import "log/slog"

// Option configures a proxy at construction.
type Option func(*config)

type config struct {
	aspects  []Aspect
	logger   *slog.Logger
	reporter *Reporter
}

func newConfig(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.reporter != nil {
		for _, a := range cfg.aspects {
			if r, ok := a.(Reporting); ok {
				r.SetReporter(cfg.reporter)
			}
		}
	}
	return cfg
}

// WithAspects sets the aspect chain. Order is significant: before-hooks and
// after-hooks both run in the order given. Nil entries are ignored. The
// chain is fixed for the proxy's lifetime; repeated WithAspects options
// append.
func WithAspects(aspects ...Aspect) Option {
	return func(c *config) {
		for _, a := range aspects {
			if a != nil {
				c.aspects = append(c.aspects, a)
			}
		}
	}
}

// WithLogger sets the logger used for proxy lifecycle and hook failures.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithReporter routes the diagnostic output of every Reporting aspect in
// the chain to r.
func WithReporter(r *Reporter) Option {
	return func(c *config) {
		c.reporter = r
	}
}
