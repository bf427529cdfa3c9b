package logger

import (
	"go.uber.org/zap"
)

// LoggerAdapter hands out the general logger and the category loggers. When
// no MultiLogger is available the general logger serves every category.
type LoggerAdapter struct {
	multiLogger *MultiLogger
	general     *zap.Logger
}

// NewLoggerAdapter creates an adapter over both loggers
func NewLoggerAdapter(multiLogger *MultiLogger, general *zap.Logger) *LoggerAdapter {
	if general == nil {
		general = zap.NewNop()
	}
	return &LoggerAdapter{
		multiLogger: multiLogger,
		general:     general,
	}
}

// NewSingleLoggerAdapter creates an adapter without category files
func NewSingleLoggerAdapter(general *zap.Logger) *LoggerAdapter {
	return NewLoggerAdapter(nil, general)
}

// General returns the process logger
func (la *LoggerAdapter) General() *zap.Logger {
	return la.general
}

// Session returns the logger session output is written to
func (la *LoggerAdapter) Session() *zap.Logger {
	if la.multiLogger != nil {
		return la.multiLogger.Session()
	}
	return la.general
}

// LogAppError logs to the general logger and, if present, the error file
func (la *LoggerAdapter) LogAppError(msg string, fields ...zap.Field) {
	la.general.Error(msg, fields...)
	if la.multiLogger != nil {
		la.multiLogger.LogAppError(msg, fields...)
	}
}

// LogsDir returns the category logs directory, or "" without a MultiLogger
func (la *LoggerAdapter) LogsDir() string {
	if la.multiLogger != nil {
		return la.multiLogger.GetLogsDir()
	}
	return ""
}

// Sync flushes all loggers
func (la *LoggerAdapter) Sync() error {
	var lastErr error
	if la.multiLogger != nil {
		lastErr = la.multiLogger.Sync()
	}
	if err := la.general.Sync(); err != nil {
		lastErr = err
	}
	return lastErr
}

// Close flushes the general logger and closes the category files
func (la *LoggerAdapter) Close() error {
	la.general.Sync()
	if la.multiLogger != nil {
		return la.multiLogger.Close()
	}
	return nil
}
