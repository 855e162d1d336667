package extensions

import (
	"context"
	"log/slog"

	statemesh "github.com/firatkiral/statemesh"
)

// LoggingObserver logs cell lifecycle events through slog.
type LoggingObserver struct {
	statemesh.BaseObserver
	logger *slog.Logger
}

// NewLoggingObserver creates a logging observer writing to the given
// handler. Use NewSilentHandler in tests.
func NewLoggingObserver(handler slog.Handler) *LoggingObserver {
	return &LoggingObserver{
		BaseObserver: statemesh.NewBaseObserver("logging"),
		logger:       slog.New(handler),
	}
}

func (o *LoggingObserver) OnInvalidate(cell statemesh.AnyCell) {
	o.logger.Debug("cell invalidated", "cell", cellLabel(cell))
}

func (o *LoggingObserver) OnChange(cell statemesh.AnyCell, value any) {
	o.logger.Info("cell changed", "cell", cellLabel(cell), "value", value)
}

func (o *LoggingObserver) OnError(cell statemesh.AnyCell, err error) {
	o.logger.Error("cell recompute failed", "cell", cellLabel(cell), "error", err.Error())
}

// SilentHandler is a slog.Handler that discards all log output
// Useful for testing when you don't want log output
type SilentHandler struct{}

// NewSilentHandler creates a new silent log handler
func NewSilentHandler() *SilentHandler {
	return &SilentHandler{}
}

func (h *SilentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return false // Never enabled, discards everything
}

func (h *SilentHandler) Handle(ctx context.Context, record slog.Record) error {
	return nil // Do nothing
}

func (h *SilentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h // Return self, no state to modify
}

func (h *SilentHandler) WithGroup(name string) slog.Handler {
	return h // Return self, no state to modify
}
