package aspect

import (
	"fmt"
	"log/slog"
	"time"
)

// Logging writes a structured record when a call starts, completes or
// fails.
type Logging struct {
	// Level is used for start and completion records. Failures always log
	// at error level.
	Level slog.Level `mapstructure:"level"`

	logger *slog.Logger
}

// NewLogging returns a Logging aspect writing to logger at debug level. A
// nil logger uses slog.Default().
func NewLogging(logger *slog.Logger) *Logging {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logging{Level: slog.LevelDebug, logger: logger}
}

// Name implements Named.
func (l *Logging) Name() string { return "logging" }

// SetParams sets the level.
func (l *Logging) SetParams(args ...any) error {
	if len(args) == 1 {
		if level, ok := args[0].(slog.Level); ok {
			l.Level = level
			return nil
		}
	}
	return fmt.Errorf("%w: logging: want a single slog.Level, got %v", ErrParams, args)
}

type loggingKey struct{ l *Logging }

// Before logs the call start.
func (l *Logging) Before(c *Call) error {
	c.Set(loggingKey{l}, time.Now())
	l.log().Log(c.Context(), l.Level, "aspect call started",
		"function", c.Function,
		"call_id", c.ID.String(),
		"args", len(c.Args),
	)
	return nil
}

// After logs the call completion.
func (l *Logging) After(c *Call) error {
	l.log().Log(c.Context(), l.Level, "aspect call completed",
		"function", c.Function,
		"call_id", c.ID.String(),
		"results", len(c.Results),
		"duration", l.since(c),
	)
	return nil
}

// OnError implements ErrorObserver.
func (l *Logging) OnError(c *Call, err error) {
	l.log().ErrorContext(c.Context(), "aspect call failed",
		"function", c.Function,
		"call_id", c.ID.String(),
		"duration", l.since(c),
		"error", err,
	)
}

func (l *Logging) since(c *Call) time.Duration {
	if v, ok := c.Value(loggingKey{l}); ok {
		return time.Since(v.(time.Time))
	}
	return 0
}

func (l *Logging) log() *slog.Logger {
	if l.logger == nil {
		return slog.Default()
	}
	return l.logger
}
