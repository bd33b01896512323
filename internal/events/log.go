package events

import (
	"context"
	"log/slog"
)

// LogSink writes events to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a sink logging to logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(ctx context.Context, ev Event) error {
	level := slog.LevelDebug
	switch ev.Type {
	case TargetFailed:
		level = slog.LevelError
	case TargetSkipped:
		level = slog.LevelWarn
	case RunStarted, RunFinished:
		level = slog.LevelInfo
	}

	attrs := []slog.Attr{slog.String("run_id", ev.RunID), slog.String("event", string(ev.Type))}
	if ev.Target != "" {
		attrs = append(attrs, slog.String("target", ev.Target))
	}
	if ev.Digest != "" {
		attrs = append(attrs, slog.String("digest", ev.Digest))
	}
	if ev.Error != "" {
		attrs = append(attrs, slog.String("error", ev.Error))
	}
	s.logger.LogAttrs(ctx, level, "Build event.", attrs...)
	return nil
}

func (s *LogSink) Close(ctx context.Context) error {
	return nil
}
