package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogCategory represents different log categories
type LogCategory string

const (
	CategorySession LogCategory = "session" // Session lifecycle and tool output (JSON)
	CategoryError   LogCategory = "error"   // Application errors (JSON)
)

// Categories lists every category written by MultiLogger
var Categories = []LogCategory{CategorySession, CategoryError}

// ValidCategory reports whether c is a known category
func ValidCategory(c LogCategory) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

const dateLayout = "20060102"

// logFileName returns "<category>-YYYYMMDD.log"
func logFileName(category LogCategory, date time.Time) string {
	return fmt.Sprintf("%s-%s.log", category, date.Format(dateLayout))
}

// MultiLogger writes each category to its own daily JSON file
type MultiLogger struct {
	loggers map[LogCategory]*zap.Logger
	files   map[LogCategory]*dailyFile
	config  MultiLoggerConfig
	mu      sync.RWMutex
}

// MultiLoggerConfig contains configuration for multi-output logging
type MultiLoggerConfig struct {
	Level   string // debug, info, warn, error
	LogsDir string // Directory for log files
}

// NewMultiLogger creates a new multi-output logger
func NewMultiLogger(config MultiLoggerConfig) (*MultiLogger, error) {
	if config.LogsDir == "" {
		return nil, fmt.Errorf("logs_dir must be specified")
	}

	if err := os.MkdirAll(config.LogsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	ml := &MultiLogger{
		loggers: make(map[LogCategory]*zap.Logger),
		files:   make(map[LogCategory]*dailyFile),
		config:  config,
	}

	levels := map[LogCategory]zapcore.Level{
		CategorySession: ParseLevel(config.Level, zapcore.InfoLevel),
		CategoryError:   zapcore.ErrorLevel,
	}

	for _, category := range Categories {
		file := &dailyFile{dir: config.LogsDir, category: category, now: time.Now}
		if err := file.open(); err != nil {
			ml.Close()
			return nil, fmt.Errorf("failed to create %s logger: %w", category, err)
		}
		ml.files[category] = file
		ml.loggers[category] = zap.New(zapcore.NewCore(jsonFileEncoder(), file, levels[category]))
	}

	return ml, nil
}

func jsonFileEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "msg"
	encoderConfig.LevelKey = "level"
	encoderConfig.CallerKey = ""
	return zapcore.NewJSONEncoder(encoderConfig)
}

// GetLogsDir returns the logs directory path
func (ml *MultiLogger) GetLogsDir() string {
	return ml.config.LogsDir
}

// GetLogger returns the logger for a category, or the error logger
func (ml *MultiLogger) GetLogger(category LogCategory) *zap.Logger {
	ml.mu.RLock()
	defer ml.mu.RUnlock()

	if logger, ok := ml.loggers[category]; ok {
		return logger
	}
	return ml.loggers[CategoryError]
}

// Session returns the session logger
func (ml *MultiLogger) Session() *zap.Logger {
	return ml.GetLogger(CategorySession)
}

// Error returns the error logger
func (ml *MultiLogger) Error() *zap.Logger {
	return ml.GetLogger(CategoryError)
}

// LogAppError logs an application-level error
func (ml *MultiLogger) LogAppError(msg string, fields ...zap.Field) {
	ml.Error().Error(msg, fields...)
}

// LogSessionEvent logs a session lifecycle event
func (ml *MultiLogger) LogSessionEvent(event string, fields ...zap.Field) {
	ml.Session().Info(event, fields...)
}

// Sync flushes all loggers
func (ml *MultiLogger) Sync() error {
	ml.mu.RLock()
	defer ml.mu.RUnlock()

	var lastErr error
	for _, logger := range ml.loggers {
		if err := logger.Sync(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Close flushes all loggers and closes their files
func (ml *MultiLogger) Close() error {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	var lastErr error
	for _, logger := range ml.loggers {
		if err := logger.Sync(); err != nil {
			lastErr = err
		}
	}
	for _, file := range ml.files {
		if err := file.close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// dailyFile is a WriteSyncer that switches to a new file when the date
// changes
type dailyFile struct {
	dir      string
	category LogCategory
	now      func() time.Time

	mu   sync.Mutex
	date string
	file *os.File
}

func (d *dailyFile) open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rotateLocked()
}

func (d *dailyFile) rotateLocked() error {
	now := d.now()
	date := now.Format(dateLayout)
	if d.file != nil && d.date == date {
		return nil
	}

	file, err := os.OpenFile(filepath.Join(d.dir, logFileName(d.category, now)), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if d.file != nil {
		d.file.Close()
	}
	d.file = file
	d.date = date
	return nil
}

func (d *dailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.rotateLocked(); err != nil {
		return 0, err
	}
	return d.file.Write(p)
}

func (d *dailyFile) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.file == nil {
		return nil
	}
	return d.file.Sync()
}

func (d *dailyFile) close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}
