package app

import (
	"github.com/yourusername/vidgrab/internal/domain"
	"go.uber.org/zap"
)

// NopSink discards everything
type NopSink struct{}

func (NopSink) OnNotice(string) {}

func (NopSink) OnEvent(domain.RunEvent) {}

func (NopSink) OnOutcome(domain.RunOutcome) {}

// SinkFuncs adapts plain functions to domain.EventSink. Nil fields are
// skipped.
type SinkFuncs struct {
	Notice  func(message string)
	Event   func(event domain.RunEvent)
	Outcome func(outcome domain.RunOutcome)
}

func (f SinkFuncs) OnNotice(message string) {
	if f.Notice != nil {
		f.Notice(message)
	}
}

func (f SinkFuncs) OnEvent(event domain.RunEvent) {
	if f.Event != nil {
		f.Event(event)
	}
}

func (f SinkFuncs) OnOutcome(outcome domain.RunOutcome) {
	if f.Outcome != nil {
		f.Outcome(outcome)
	}
}

// MultiSink forwards every call to each sink in order
type MultiSink []domain.EventSink

// NewMultiSink drops nil entries
func NewMultiSink(sinks ...domain.EventSink) MultiSink {
	out := make(MultiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m MultiSink) OnNotice(message string) {
	for _, s := range m {
		s.OnNotice(message)
	}
}

func (m MultiSink) OnEvent(event domain.RunEvent) {
	for _, s := range m {
		s.OnEvent(event)
	}
}

func (m MultiSink) OnOutcome(outcome domain.RunOutcome) {
	for _, s := range m {
		s.OnOutcome(outcome)
	}
}

// LogSink writes a session's output to a zap logger. Progress and plain
// lines go to debug so the session log stays readable at info level.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink logging to logger
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (l *LogSink) OnNotice(message string) {
	l.logger.Info("Notice", zap.String("message", message))
}

func (l *LogSink) OnEvent(event domain.RunEvent) {
	fields := []zap.Field{
		zap.Int("seq", event.Seq),
		zap.String("line", event.Line),
	}
	switch event.Kind {
	case domain.EventError:
		l.logger.Error("Tool error", fields...)
	case domain.EventWarning:
		l.logger.Warn("Tool warning", fields...)
	case domain.EventProgress:
		if event.Progress != nil && event.Progress.Percent != nil {
			fields = append(fields, zap.Float64("percent", *event.Progress.Percent))
		}
		l.logger.Debug("Progress", fields...)
	default:
		l.logger.Debug("Output", fields...)
	}
}

func (l *LogSink) OnOutcome(outcome domain.RunOutcome) {
	fields := []zap.Field{
		zap.String("outcome", string(outcome.Kind)),
		zap.Int("exit_code", outcome.ExitCode),
		zap.Int("warnings", outcome.Warnings),
	}
	switch outcome.Kind {
	case domain.OutcomeSucceeded, domain.OutcomeCancelled:
		l.logger.Info("Run finished", fields...)
	default:
		l.logger.Error("Run failed", append(fields, zap.String("summary", outcome.Summary()))...)
	}
}
